package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fieldservice-backend/internal/model"
)

// newTestStore opens a per-test in-memory SQLite database. A single pooled
// connection keeps SQLite's shared-cache locking out of concurrent tests.
func newTestStore(t *testing.T) Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Company{},
		&model.Technician{},
		&model.Client{},
		&model.Part{},
		&model.Equipment{},
		&model.CalendarAssignment{},
		&model.MaintenanceRecord{},
		&model.JobCounter{},
		&model.TechnicianSubscription{},
	))

	return NewGormStore(db)
}

func seedCompany(t *testing.T, s Store, name string) model.Company {
	t.Helper()
	c := model.Company{Name: name}
	require.NoError(t, s.DB().Create(&c).Error)
	return c
}

func seedTechnician(t *testing.T, s Store, companyID int64, name string) model.Technician {
	t.Helper()
	tech := model.Technician{CompanyID: companyID, Name: name}
	require.NoError(t, s.DB().Create(&tech).Error)
	return tech
}

func seedClient(t *testing.T, s Store, companyID int64, name string, months model.MonthSet, inactive bool) model.Client {
	t.Helper()
	c := model.Client{
		CompanyID:      companyID,
		CompanyName:    name,
		SelectedMonths: months,
		Inactive:       inactive,
		NextDue:        time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.DB().Create(&c).Error)
	return c
}

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }
