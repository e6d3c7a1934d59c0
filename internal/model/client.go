package model

import "time"

// Client is a serviced customer site with a recurring maintenance schedule.
//
// NextDue is derived state: it is recomputed from SelectedMonths and Inactive
// whenever either changes (see store.SaveClient) and is never written
// directly by callers. Inactive clients carry the far-future sentinel.
type Client struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	CompanyID      int64     `gorm:"index;not null" json:"company_id"`
	CompanyName    string    `gorm:"size:256;not null" json:"company_name"`
	Address        string    `gorm:"size:256" json:"address"`
	Phone          string    `gorm:"size:32" json:"phone"`
	Email          string    `gorm:"size:256" json:"email"`
	ContactName    string    `gorm:"size:128" json:"contact_name"`
	Notes          string    `gorm:"size:1024" json:"notes"`
	SelectedMonths MonthSet  `gorm:"type:text" json:"selected_months"`
	Inactive       bool      `gorm:"not null;default:false" json:"inactive"`
	NextDue        time.Time `gorm:"not null" json:"next_due"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Associations
	Company   Company     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Parts     []Part      `gorm:"foreignKey:ClientID" json:"parts,omitempty"`
	Equipment []Equipment `gorm:"foreignKey:ClientID" json:"equipment,omitempty"`
}

// Part is an inventory line attached to a client.
type Part struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	CompanyID int64  `gorm:"index;not null" json:"company_id"`
	ClientID  int64  `gorm:"index;not null" json:"client_id"`
	Name      string `gorm:"size:256;not null" json:"name"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Equipment is a serviceable unit installed at a client site.
type Equipment struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	CompanyID    int64  `gorm:"index;not null" json:"company_id"`
	ClientID     int64  `gorm:"index;not null" json:"client_id"`
	Name         string `gorm:"size:256;not null" json:"name"`
	Model        string `gorm:"size:128" json:"model"`
	SerialNumber string `gorm:"size:128" json:"serial_number"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
