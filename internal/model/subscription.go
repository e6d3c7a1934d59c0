package model

import "time"

// TechnicianSubscription holds a technician's browser push subscription for
// visit reminders.
type TechnicianSubscription struct {
	Endpoint     string    `gorm:"primaryKey"`
	TechnicianID int64     `gorm:"index;not null"`
	P256DH       string    `gorm:"column:p256dh;not null"`
	Auth         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`

	// Associations
	Technician Technician `gorm:"constraint:OnDelete:CASCADE"`
}
