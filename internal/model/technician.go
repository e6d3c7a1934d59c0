package model

import "time"

// Technician belongs to exactly one company. The today-view query relies on
// that: a technician id alone is enough to scope its results.
type Technician struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	CompanyID int64  `gorm:"index;not null" json:"company_id"`
	Name      string `gorm:"size:128;not null" json:"name"`
	Email     string `gorm:"size:256" json:"email"`
	Phone     string `gorm:"size:32" json:"phone"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Company Company `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
