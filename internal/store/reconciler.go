package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"fieldservice-backend/internal/model"
)

// The three reconciliation queries are advisory reads. Missing evidence
// (no maintenance history, unparseable technician set, zero due date) always
// flags a client rather than hiding it: false positives are cheap, missed
// overdue maintenance is not. A failed sub-query aborts the whole
// reconciliation with a retryable error; no partial result is returned.

// UnscheduledClients returns the active clients selected for the given
// month (1-12) that have neither a dated open assignment nor a completed
// maintenance record for this cycle. Clients with an undated open assignment
// are always surfaced.
func (s *gormStore) UnscheduledClients(ctx context.Context, companyID int64, year, month int) ([]model.Client, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidPeriod
	}

	var open []model.CalendarAssignment
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND year = ? AND month = ? AND completed = ?", companyID, year, month, false).
		Find(&open).Error
	if err != nil {
		return nil, fmt.Errorf("fetch open assignments for %d-%02d: %w", year, month, err)
	}

	scheduled := make(map[int64]bool)
	undated := make(map[int64]bool)
	for _, a := range open {
		if a.Day != nil {
			scheduled[a.ClientID] = true
		} else {
			undated[a.ClientID] = true
		}
	}

	var clients []model.Client
	err = s.db.WithContext(ctx).
		Where("company_id = ? AND inactive = ?", companyID, false).
		Order("company_name").
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("fetch active clients: %w", err)
	}

	out := make([]model.Client, 0)
	for _, c := range clients {
		// Month indices are 0-based on the client, 1-based in the query.
		if !c.SelectedMonths.Contains(month - 1) {
			continue
		}
		if undated[c.ID] {
			out = append(out, c)
			continue
		}
		if scheduled[c.ID] {
			continue
		}
		done, err := s.completedThisCycle(ctx, companyID, c.ID, year, month)
		if err != nil {
			return nil, fmt.Errorf("maintenance lookup for client %d: %w", c.ID, err)
		}
		if !done {
			out = append(out, c)
		}
	}
	return out, nil
}

// completedThisCycle reports whether the client's latest completed
// maintenance record is due-dated in the given year/month.
func (s *gormStore) completedThisCycle(ctx context.Context, companyID, clientID int64, year, month int) (bool, error) {
	var rec model.MaintenanceRecord
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND client_id = ? AND completed_at IS NOT NULL", companyID, clientID).
		Order("due_date DESC").
		First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil // no history means no evidence
	}
	if err != nil {
		return false, err
	}
	if rec.DueDate.IsZero() {
		return false, nil
	}
	return rec.DueDate.Year() == year && int(rec.DueDate.Month()) == month, nil
}

// PastIncompleteAssignments returns incomplete assignments dated strictly
// before the calendar month of asOf, oldest first.
func (s *gormStore) PastIncompleteAssignments(ctx context.Context, companyID int64, asOf time.Time) ([]model.CalendarAssignment, error) {
	year, month := asOf.Year(), int(asOf.Month())

	assignments := make([]model.CalendarAssignment, 0)
	err := s.db.WithContext(ctx).
		Preload("Client").
		Where("company_id = ? AND completed = ? AND (year < ? OR (year = ? AND month < ?))",
			companyID, false, year, year, month).
		Order("year, month, day, id").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("fetch past incomplete assignments: %w", err)
	}
	return assignments, nil
}

// CompletedUnscheduledMaintenance returns completed maintenance records with
// no assignment in the month of their due date: work done off-calendar
// (walk-ins, emergency visits). Most recently completed first. Bucketing is
// by DueDate even when CompletedAt landed in a later month.
func (s *gormStore) CompletedUnscheduledMaintenance(ctx context.Context, companyID int64) ([]model.MaintenanceRecord, error) {
	var records []model.MaintenanceRecord
	err := s.db.WithContext(ctx).
		Preload("Client").
		Where("company_id = ? AND completed_at IS NOT NULL", companyID).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("fetch completed maintenance: %w", err)
	}

	var assignments []model.CalendarAssignment
	err = s.db.WithContext(ctx).
		Select("client_id, year, month").
		Where("company_id = ?", companyID).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("fetch assignment periods: %w", err)
	}

	type periodKey struct {
		clientID    int64
		year, month int
	}
	covered := make(map[periodKey]bool, len(assignments))
	for _, a := range assignments {
		covered[periodKey{a.ClientID, a.Year, a.Month}] = true
	}

	out := make([]model.MaintenanceRecord, 0)
	for _, r := range records {
		if !r.DueDate.IsZero() {
			key := periodKey{r.ClientID, r.DueDate.Year(), int(r.DueDate.Month())}
			if covered[key] {
				continue
			}
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	return out, nil
}
