package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fieldservice-backend/internal/model"
)

// mockSender records sent payloads and answers with a fixed status code.
type mockSender struct {
	mu       sync.Mutex
	status   int
	payloads []string
	targets  []string
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, string(payload))
	m.targets = append(m.targets, sub.Endpoint)
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
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
		&model.CalendarAssignment{},
		&model.TechnicianSubscription{},
	))
	return db
}

func seedAssignment(t *testing.T, db *gorm.DB, day *int, techIDs []int64) model.CalendarAssignment {
	t.Helper()
	company := model.Company{Name: "Co " + t.Name()}
	require.NoError(t, db.Create(&company).Error)
	client := model.Client{
		CompanyID:      company.ID,
		CompanyName:    "Acme",
		SelectedMonths: model.NewMonthSet(2),
		NextDue:        time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&client).Error)

	a := model.CalendarAssignment{
		CompanyID:     company.ID,
		ClientID:      client.ID,
		Year:          2024,
		Month:         3,
		Day:           day,
		JobNumber:     10000,
		TechnicianIDs: model.NewTechSet(techIDs...),
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch(123)

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, int64(123), job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestSendRemindersForAssignment(t *testing.T) {
	db := newTestDB(t)
	day := 12
	a := seedAssignment(t, db, &day, []int64{7})
	require.NoError(t, db.Create(&model.TechnicianSubscription{
		Endpoint:     "https://push.test/abc",
		TechnicianID: 7,
		P256DH:       "key",
		Auth:         "auth",
	}).Error)
	// Another technician's subscription must not be hit.
	require.NoError(t, db.Create(&model.TechnicianSubscription{
		Endpoint:     "https://push.test/other",
		TechnicianID: 9,
		P256DH:       "key",
		Auth:         "auth",
	}).Error)

	sender := &mockSender{status: http.StatusCreated}
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = sender

	wp.sendRemindersForAssignment(context.Background(), a.ID)

	require.Len(t, sender.payloads, 1)
	assert.Equal(t, []string{"https://push.test/abc"}, sender.targets)
	assert.Contains(t, sender.payloads[0], "Acme")
	assert.Contains(t, sender.payloads[0], "2024-03-12")
	assert.Contains(t, sender.payloads[0], "#10000")
}

func TestSendRemindersSkipsUndatedAssignments(t *testing.T) {
	db := newTestDB(t)
	a := seedAssignment(t, db, nil, []int64{7})
	require.NoError(t, db.Create(&model.TechnicianSubscription{
		Endpoint:     "https://push.test/abc",
		TechnicianID: 7,
		P256DH:       "key",
		Auth:         "auth",
	}).Error)

	sender := &mockSender{status: http.StatusCreated}
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = sender

	wp.sendRemindersForAssignment(context.Background(), a.ID)
	assert.Empty(t, sender.payloads)
}

func TestExpiredSubscriptionIsPruned(t *testing.T) {
	db := newTestDB(t)
	day := 12
	a := seedAssignment(t, db, &day, []int64{7})
	require.NoError(t, db.Create(&model.TechnicianSubscription{
		Endpoint:     "https://push.test/expired",
		TechnicianID: 7,
		P256DH:       "key",
		Auth:         "auth",
	}).Error)

	sender := &mockSender{status: http.StatusGone}
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = sender

	wp.sendRemindersForAssignment(context.Background(), a.ID)

	var count int64
	require.NoError(t, db.Model(&model.TechnicianSubscription{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
