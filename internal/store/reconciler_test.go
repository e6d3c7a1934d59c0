package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldservice-backend/internal/model"
)

func seedMaintenance(t *testing.T, s Store, companyID, clientID int64, due time.Time, completedAt *time.Time) model.MaintenanceRecord {
	t.Helper()
	rec := model.MaintenanceRecord{
		CompanyID:   companyID,
		ClientID:    clientID,
		DueDate:     due,
		CompletedAt: completedAt,
	}
	require.NoError(t, s.DB().Create(&rec).Error)
	return rec
}

func timePtr(t time.Time) *time.Time { return &t }

func clientNames(clients []model.Client) []string {
	names := make([]string, len(clients))
	for i, c := range clients {
		names[i] = c.CompanyName
	}
	return names
}

func TestUnscheduledClients(t *testing.T) {
	s := newTestStore(t)
	company := seedCompany(t, s, "Co")
	ctx := context.Background()

	// All selected for March (month index 2) unless noted.
	needsDate := seedClient(t, s, company.ID, "Needs Date", model.NewMonthSet(2), false)
	onList := seedClient(t, s, company.ID, "On List Undated", model.NewMonthSet(2), false)
	booked := seedClient(t, s, company.ID, "Booked", model.NewMonthSet(2), false)
	alreadyDone := seedClient(t, s, company.ID, "Already Done", model.NewMonthSet(2), false)
	doneLongAgo := seedClient(t, s, company.ID, "Done Long Ago", model.NewMonthSet(2), false)
	seedClient(t, s, company.ID, "Wrong Month", model.NewMonthSet(6), false)
	seedClient(t, s, company.ID, "Inactive", model.NewMonthSet(2), true)

	// Undated open assignment: surfaced.
	_, err := s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: onList.ID, Year: 2024, Month: 3})
	require.NoError(t, err)
	// Dated open assignment: not surfaced.
	_, err = s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: booked.ID, Year: 2024, Month: 3, Day: intPtr(14)})
	require.NoError(t, err)
	// Completion evidence for this cycle: not surfaced even without an assignment.
	seedMaintenance(t, s, company.ID, alreadyDone.ID,
		time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		timePtr(time.Date(2024, time.March, 16, 10, 0, 0, 0, time.UTC)))
	// Stale completion evidence from a past cycle: still surfaced.
	seedMaintenance(t, s, company.ID, doneLongAgo.ID,
		time.Date(2023, time.September, 15, 0, 0, 0, 0, time.UTC),
		timePtr(time.Date(2023, time.September, 15, 9, 0, 0, 0, time.UTC)))

	got, err := s.UnscheduledClients(ctx, company.ID, 2024, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"Needs Date", "On List Undated", "Done Long Ago"},
		clientNames(got))
	_ = needsDate
}

func TestUnscheduledClientsCompletedAssignmentDoesNotCount(t *testing.T) {
	s := newTestStore(t)
	company := seedCompany(t, s, "Co")
	ctx := context.Background()

	client := seedClient(t, s, company.ID, "Acme", model.NewMonthSet(2), false)
	a, err := s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: client.ID, Year: 2024, Month: 3, Day: intPtr(5)})
	require.NoError(t, err)

	// A completed assignment is no longer "scheduled"; with no maintenance
	// record either, the client is flagged again.
	done := true
	_, err = s.UpdateAssignment(ctx, company.ID, a.ID, AssignmentUpdate{Completed: &done})
	require.NoError(t, err)

	got, err := s.UnscheduledClients(ctx, company.ID, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, clientNames(got))
}

func TestUnscheduledClientsRejectsBadMonth(t *testing.T) {
	s := newTestStore(t)
	company := seedCompany(t, s, "Co")
	_, err := s.UnscheduledClients(context.Background(), company.ID, 2024, 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestPastIncompleteAssignments(t *testing.T) {
	s := newTestStore(t)
	company := seedCompany(t, s, "Co")
	ctx := context.Background()
	client := seedClient(t, s, company.ID, "Acme", model.NewMonthSet(2), false)

	asOf := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	lastYear, err := s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: client.ID, Year: 2023, Month: 12, Day: intPtr(4)})
	require.NoError(t, err)
	lastMonth, err := s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: client.ID, Year: 2024, Month: 2})
	require.NoError(t, err)
	// Current month: excluded.
	_, err = s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: client.ID, Year: 2024, Month: 3, Day: intPtr(1)})
	require.NoError(t, err)
	// Future: excluded.
	_, err = s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: client.ID, Year: 2024, Month: 9})
	require.NoError(t, err)
	// Past but completed: excluded.
	pastDone, err := s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: client.ID, Year: 2024, Month: 1, Day: intPtr(9)})
	require.NoError(t, err)
	done := true
	_, err = s.UpdateAssignment(ctx, company.ID, pastDone.ID, AssignmentUpdate{Completed: &done})
	require.NoError(t, err)

	got, err := s.PastIncompleteAssignments(ctx, company.ID, asOf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Oldest first.
	assert.Equal(t, lastYear.ID, got[0].ID)
	assert.Equal(t, lastMonth.ID, got[1].ID)
	for _, a := range got {
		assert.False(t, a.Completed)
		assert.Equal(t, "Acme", a.Client.CompanyName)
	}
}

func TestCompletedUnscheduledMaintenance(t *testing.T) {
	s := newTestStore(t)
	company := seedCompany(t, s, "Co")
	ctx := context.Background()
	client := seedClient(t, s, company.ID, "Acme", model.NewMonthSet(2), false)

	// Covered by an assignment in the due month (even a completed one).
	_, err := s.CreateAssignment(ctx, company.ID, CreateAssignmentParams{ClientID: client.ID, Year: 2024, Month: 3, Day: intPtr(5)})
	require.NoError(t, err)
	seedMaintenance(t, s, company.ID, client.ID,
		time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		timePtr(time.Date(2024, time.March, 15, 14, 0, 0, 0, time.UTC)))

	// Walk-in: completed with no assignment in its due month.
	walkIn := seedMaintenance(t, s, company.ID, client.ID,
		time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		timePtr(time.Date(2024, time.January, 20, 9, 0, 0, 0, time.UTC)))
	// Late completion still buckets by due date, not completion date.
	lateWalkIn := seedMaintenance(t, s, company.ID, client.ID,
		time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC),
		timePtr(time.Date(2024, time.February, 2, 9, 0, 0, 0, time.UTC)))
	// Open record: not completed, never listed here.
	seedMaintenance(t, s, company.ID, client.ID,
		time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), nil)

	got, err := s.CompletedUnscheduledMaintenance(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Most recently completed first.
	assert.Equal(t, lateWalkIn.ID, got[0].ID)
	assert.Equal(t, walkIn.ID, got[1].ID)
}
