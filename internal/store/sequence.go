package store

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"fieldservice-backend/internal/model"
)

// nextJobNumber issues the next job number for a company. The upsert and the
// read are one statement, so two concurrent creations for the same company
// can never observe the same counter value. Must run inside the same
// transaction as the assignment insert.
func nextJobNumber(tx *gorm.DB, companyID int64) (int64, error) {
	now := time.Now().UTC()

	var issued int64
	err := tx.Raw(
		`INSERT INTO job_counters (company_id, last_value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (company_id) DO UPDATE SET last_value = job_counters.last_value + 1, updated_at = ?
		 RETURNING last_value`,
		companyID, model.JobNumberFloor, now, now,
	).Scan(&issued).Error
	if err == nil && issued > 0 {
		return issued, nil
	}

	// Weaker path for backends without upsert+RETURNING. Races under true
	// concurrency, hence the warning.
	log.Printf("Warning: atomic job counter failed for company %d (%v); falling back to max(job_number)+1", companyID, err)
	return maxJobNumberFallback(tx, companyID)
}

func maxJobNumberFallback(tx *gorm.DB, companyID int64) (int64, error) {
	var issued int64
	err := tx.Model(&model.CalendarAssignment{}).
		Where("company_id = ?", companyID).
		Select(fmt.Sprintf("COALESCE(MAX(job_number), %d) + 1", model.JobNumberFloor-1)).
		Scan(&issued).Error
	if err != nil {
		return 0, fmt.Errorf("job number fallback for company %d: %w", companyID, err)
	}
	return issued, nil
}
