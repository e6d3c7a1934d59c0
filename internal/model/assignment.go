package model

import "time"

// CalendarAssignment places a client on the schedule for a year/month,
// optionally pinned to a day and hour. Day == nil means "on the list but not
// yet dated". JobNumber is allocated once at creation and never changes.
//
// Nothing enforces at most one assignment per (client, year, month); the
// reporting queries tolerate duplicates.
type CalendarAssignment struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	CompanyID       int64      `gorm:"index:idx_assignments_company_period;uniqueIndex:idx_assignments_company_job;not null" json:"company_id"`
	ClientID        int64      `gorm:"index;not null" json:"client_id"`
	Year            int        `gorm:"index:idx_assignments_company_period;not null" json:"year"`
	Month           int        `gorm:"index:idx_assignments_company_period;not null" json:"month"` // 1-12
	Day             *int       `json:"day"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
	ScheduledHour   *int       `json:"scheduled_hour"`
	AutoDueDate     bool       `gorm:"not null;default:false" json:"auto_due_date"`
	JobNumber       int64      `gorm:"uniqueIndex:idx_assignments_company_job;not null" json:"job_number"`
	TechnicianIDs   TechSet    `gorm:"type:text" json:"technician_ids"`
	Completed       bool       `gorm:"not null;default:false" json:"completed"`
	CompletionNotes *string    `json:"completion_notes"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Associations
	Client Client `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (CalendarAssignment) TableName() string { return "calendar_assignments" }

// MaintenanceRecord is the historical ground truth for one due cycle: the
// cycle identified by DueDate was serviced at CompletedAt (nil = still open).
// It exists independently of any calendar assignment.
type MaintenanceRecord struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	CompanyID   int64      `gorm:"index;not null" json:"company_id"`
	ClientID    int64      `gorm:"index;not null" json:"client_id"`
	DueDate     time.Time  `gorm:"not null" json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       string     `gorm:"size:1024" json:"notes"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Associations
	Client Client `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// JobCounter is the per-company job number source. LastValue holds the most
// recently issued number; the first issued number is JobNumberFloor.
type JobCounter struct {
	CompanyID int64 `gorm:"primaryKey"`
	LastValue int64 `gorm:"not null"`
	UpdatedAt time.Time
}

// JobNumberFloor is the first job number a fresh tenant is issued.
const JobNumberFloor = 10000
