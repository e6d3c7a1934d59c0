package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fieldservice-backend/internal/backup"
	"fieldservice-backend/internal/model"
	"fieldservice-backend/internal/schedule"
)

// SaveClient creates or updates a client. This is the only writer of
// NextDue: the value is recomputed from SelectedMonths and Inactive on every
// save, so the stored date can never drift from the recurrence settings.
func (s *gormStore) SaveClient(ctx context.Context, client *model.Client, asOf time.Time) error {
	if client.CompanyID == 0 {
		return fmt.Errorf("save client: %w", ErrClientNotInTenant)
	}
	client.SelectedMonths = model.NewMonthSet(client.SelectedMonths...)
	if !client.Inactive && len(client.SelectedMonths) == 0 {
		return ErrNoRecurrenceMonths
	}
	client.NextDue = schedule.ComputeNextDue(client.SelectedMonths, client.Inactive, asOf)

	if client.ID != 0 {
		// Updates must stay inside the tenant.
		var existing model.Client
		err := s.db.WithContext(ctx).
			Where("id = ? AND company_id = ?", client.ID, client.CompanyID).
			First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load client %d: %w", client.ID, err)
		}
	}

	if err := s.db.WithContext(ctx).Save(client).Error; err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

// ListClients returns a company's clients with parts and equipment loaded,
// ordered by company name for stable export output.
func (s *gormStore) ListClients(ctx context.Context, companyID int64) ([]model.Client, error) {
	clients := make([]model.Client, 0)
	err := s.db.WithContext(ctx).
		Preload("Parts").
		Preload("Equipment").
		Where("company_id = ?", companyID).
		Order("company_name").
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("list clients for company %d: %w", companyID, err)
	}
	return clients, nil
}

// ImportClients restores decoded backup records into a company. Each record
// is its own transaction: one bad record is collected as an error and does
// not abort the rest. A record whose company name matches an existing client
// replaces that client's recurrence settings, parts and equipment.
func (s *gormStore) ImportClients(ctx context.Context, companyID int64, records []backup.ClientRecord, asOf time.Time) (int, []error) {
	var imported int
	var errs []error

	for i := range records {
		rec := records[i]
		if strings.TrimSpace(rec.Client.CompanyName) == "" {
			errs = append(errs, fmt.Errorf("record %d: empty company name", i+1))
			continue
		}
		if err := s.importOne(ctx, companyID, rec, asOf); err != nil {
			errs = append(errs, fmt.Errorf("record %d (%s): %w", i+1, rec.Client.CompanyName, err))
			continue
		}
		imported++
	}
	return imported, errs
}

func (s *gormStore) importOne(ctx context.Context, companyID int64, rec backup.ClientRecord, asOf time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client := rec.Client
		client.ID = 0
		client.CompanyID = companyID
		// Collections are written explicitly below, not via GORM associations.
		client.Parts = nil
		client.Equipment = nil
		client.SelectedMonths = model.NewMonthSet(client.SelectedMonths...)
		client.NextDue = schedule.ComputeNextDue(client.SelectedMonths, client.Inactive, asOf)

		var existing model.Client
		err := tx.Where("company_id = ? AND company_name = ?", companyID, client.CompanyName).
			First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			// New client.
		case err != nil:
			return fmt.Errorf("lookup existing client: %w", err)
		default:
			client.ID = existing.ID
			client.CreatedAt = existing.CreatedAt
			// Replace the collections wholesale; the backup is the truth.
			if err := tx.Where("client_id = ?", existing.ID).Delete(&model.Part{}).Error; err != nil {
				return fmt.Errorf("clear parts: %w", err)
			}
			if err := tx.Where("client_id = ?", existing.ID).Delete(&model.Equipment{}).Error; err != nil {
				return fmt.Errorf("clear equipment: %w", err)
			}
		}

		if err := tx.Save(&client).Error; err != nil {
			return fmt.Errorf("save client: %w", err)
		}

		for _, p := range rec.Parts {
			p.ID = 0
			p.CompanyID = companyID
			p.ClientID = client.ID
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("save part %q: %w", p.Name, err)
			}
		}
		for _, e := range rec.Equipment {
			e.ID = 0
			e.CompanyID = companyID
			e.ClientID = client.ID
			if err := tx.Create(&e).Error; err != nil {
				return fmt.Errorf("save equipment %q: %w", e.Name, err)
			}
		}
		return nil
	})
}
