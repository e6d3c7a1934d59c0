package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fieldservice-backend/internal/backup"
	"fieldservice-backend/internal/model"
)

// Store defines the persistence operations of the scheduling engine. All
// mutating operations take an explicit company id and validate tenant
// ownership before writing; the read queries in reconciler.go are advisory
// and run under ordinary isolation.
type Store interface {
	DB() *gorm.DB

	// Clients
	SaveClient(ctx context.Context, client *model.Client, asOf time.Time) error
	ListClients(ctx context.Context, companyID int64) ([]model.Client, error)
	ImportClients(ctx context.Context, companyID int64, records []backup.ClientRecord, asOf time.Time) (int, []error)

	// Calendar assignments
	CreateAssignment(ctx context.Context, companyID int64, params CreateAssignmentParams) (*model.CalendarAssignment, error)
	UpdateAssignment(ctx context.Context, companyID, assignmentID int64, upd AssignmentUpdate) (*model.CalendarAssignment, error)
	DeleteAssignment(ctx context.Context, companyID, assignmentID int64) error
	ListForPeriod(ctx context.Context, companyID int64, year, month int, technicianID *int64) ([]model.CalendarAssignment, error)
	ListForTechnicianToday(ctx context.Context, technicianID int64, asOf time.Time) ([]model.CalendarAssignment, error)

	// Reconciliation
	UnscheduledClients(ctx context.Context, companyID int64, year, month int) ([]model.Client, error)
	PastIncompleteAssignments(ctx context.Context, companyID int64, asOf time.Time) ([]model.CalendarAssignment, error)
	CompletedUnscheduledMaintenance(ctx context.Context, companyID int64) ([]model.MaintenanceRecord, error)
}

// gormStore implements Store on a GORM connection.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for thin read paths and tests.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
