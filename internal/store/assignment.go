package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fieldservice-backend/internal/model"
)

// CreateAssignmentParams carries the fields for a new calendar assignment.
// Day may be nil: the client is placed on the month's list without a date.
type CreateAssignmentParams struct {
	ClientID      int64
	Year          int
	Month         int // 1-12
	Day           *int
	ScheduledHour *int
	AutoDueDate   bool
	TechnicianIDs []int64
}

// AssignmentUpdate is a partial update. An outer nil pointer leaves the field
// untouched; for the double-pointer fields, a non-nil outer pointer to a nil
// inner pointer clears the column. Completing attaches CompletionNotes;
// uncompleting is expected to pass CompletionNotes explicitly cleared, and
// the store clears it regardless.
type AssignmentUpdate struct {
	Day             **int
	ScheduledDate   **time.Time
	ScheduledHour   **int
	AutoDueDate     *bool
	Completed       *bool
	CompletionNotes **string
	TechnicianIDs   *[]int64
}

// CreateAssignment validates tenant ownership, allocates the job number and
// inserts the assignment in one transaction. On any error nothing is
// persisted and the caller retries the whole creation.
func (s *gormStore) CreateAssignment(ctx context.Context, companyID int64, params CreateAssignmentParams) (*model.CalendarAssignment, error) {
	if params.Month < 1 || params.Month > 12 || params.Year < 1 {
		return nil, ErrInvalidPeriod
	}
	if params.Day != nil && !validDay(params.Year, params.Month, *params.Day) {
		return nil, ErrInvalidPeriod
	}

	techs := model.NewTechSet(params.TechnicianIDs...)

	var created model.CalendarAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := verifyClientInCompany(tx, companyID, params.ClientID); err != nil {
			return err
		}
		if err := verifyTechniciansInCompany(tx, companyID, techs); err != nil {
			return err
		}

		jobNumber, err := nextJobNumber(tx, companyID)
		if err != nil {
			return fmt.Errorf("allocate job number: %w", err)
		}

		created = model.CalendarAssignment{
			CompanyID:     companyID,
			ClientID:      params.ClientID,
			Year:          params.Year,
			Month:         params.Month,
			Day:           params.Day,
			ScheduledHour: params.ScheduledHour,
			AutoDueDate:   params.AutoDueDate,
			JobNumber:     jobNumber,
			TechnicianIDs: techs,
		}
		if params.Day != nil {
			d := scheduledDate(params.Year, params.Month, *params.Day)
			created.ScheduledDate = &d
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAssignment applies a partial update to an assignment owned by the
// company. Returns ErrNotFound when the id is unknown to the tenant.
func (s *gormStore) UpdateAssignment(ctx context.Context, companyID, assignmentID int64, upd AssignmentUpdate) (*model.CalendarAssignment, error) {
	var updated model.CalendarAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.CalendarAssignment
		err := tx.Where("id = ? AND company_id = ?", assignmentID, companyID).First(&a).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load assignment %d: %w", assignmentID, err)
		}

		if upd.Day != nil {
			if *upd.Day != nil && !validDay(a.Year, a.Month, **upd.Day) {
				return ErrInvalidPeriod
			}
			a.Day = *upd.Day
			if a.Day != nil {
				d := scheduledDate(a.Year, a.Month, *a.Day)
				a.ScheduledDate = &d
			} else {
				a.ScheduledDate = nil
			}
		}
		if upd.ScheduledDate != nil {
			a.ScheduledDate = *upd.ScheduledDate
		}
		if upd.ScheduledHour != nil {
			a.ScheduledHour = *upd.ScheduledHour
		}
		if upd.AutoDueDate != nil {
			a.AutoDueDate = *upd.AutoDueDate
		}
		if upd.TechnicianIDs != nil {
			techs := model.NewTechSet((*upd.TechnicianIDs)...)
			if err := verifyTechniciansInCompany(tx, companyID, techs); err != nil {
				return err
			}
			a.TechnicianIDs = techs
		}
		if upd.Completed != nil {
			wasCompleted := a.Completed
			a.Completed = *upd.Completed
			switch {
			case a.Completed && upd.CompletionNotes != nil:
				a.CompletionNotes = *upd.CompletionNotes
			case !a.Completed && wasCompleted:
				// Uncompleting always drops the notes.
				a.CompletionNotes = nil
			}
		} else if upd.CompletionNotes != nil && a.Completed {
			a.CompletionNotes = *upd.CompletionNotes
		}

		if err := tx.Save(&a).Error; err != nil {
			return fmt.Errorf("save assignment %d: %w", assignmentID, err)
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAssignment hard-deletes a single assignment. No cascade.
func (s *gormStore) DeleteAssignment(ctx context.Context, companyID, assignmentID int64) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", assignmentID, companyID).
		Delete(&model.CalendarAssignment{})
	if res.Error != nil {
		return fmt.Errorf("delete assignment %d: %w", assignmentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForPeriod returns a company's assignments for a year/month, optionally
// narrowed to those containing the given technician. Membership is tested on
// the parsed set, not the stored text, so legacy encodings filter correctly.
func (s *gormStore) ListForPeriod(ctx context.Context, companyID int64, year, month int, technicianID *int64) ([]model.CalendarAssignment, error) {
	assignments := make([]model.CalendarAssignment, 0)
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND year = ? AND month = ?", companyID, year, month).
		Order("day, scheduled_hour, id").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("list assignments for %d-%02d: %w", year, month, err)
	}
	if technicianID == nil {
		return assignments, nil
	}

	filtered := assignments[:0]
	for _, a := range assignments {
		if a.TechnicianIDs.Contains(*technicianID) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// ListForTechnicianToday returns the technician's incomplete assignments for
// the calendar day of asOf, joined with their clients. Deliberately not
// company-scoped: a technician id implies a single company.
func (s *gormStore) ListForTechnicianToday(ctx context.Context, technicianID int64, asOf time.Time) ([]model.CalendarAssignment, error) {
	assignments := make([]model.CalendarAssignment, 0)
	err := s.db.WithContext(ctx).
		Preload("Client").
		Where("year = ? AND month = ? AND day = ? AND completed = ?",
			asOf.Year(), int(asOf.Month()), asOf.Day(), false).
		Order("scheduled_hour, id").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("list technician %d assignments: %w", technicianID, err)
	}

	mine := assignments[:0]
	for _, a := range assignments {
		if a.TechnicianIDs.Contains(technicianID) {
			mine = append(mine, a)
		}
	}
	return mine, nil
}

func verifyClientInCompany(tx *gorm.DB, companyID, clientID int64) error {
	var count int64
	if err := tx.Model(&model.Client{}).
		Where("id = ? AND company_id = ?", clientID, companyID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("verify client %d: %w", clientID, err)
	}
	if count == 0 {
		return ErrClientNotInTenant
	}
	return nil
}

func verifyTechniciansInCompany(tx *gorm.DB, companyID int64, techs model.TechSet) error {
	if len(techs) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&model.Technician{}).
		Where("id IN ? AND company_id = ?", []int64(techs), companyID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("verify technicians: %w", err)
	}
	if count != int64(len(techs)) {
		return ErrTechnicianNotInTenant
	}
	return nil
}

func validDay(year, month, day int) bool {
	if day < 1 || day > 31 {
		return false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return int(d.Month()) == month
}

func scheduledDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
