package store

import "errors"

// Sentinel errors callers are expected to branch on. Not-found is distinct
// from a tenant-ownership violation so "nothing to update" and "bad input"
// stay distinguishable at the API layer.
var (
	// ErrNotFound is returned when the requested record does not exist for
	// the given tenant.
	ErrNotFound = errors.New("no such record")

	// ErrClientNotInTenant is returned when a referenced client belongs to a
	// different company than the caller's.
	ErrClientNotInTenant = errors.New("client does not belong to company")

	// ErrTechnicianNotInTenant is returned when one or more referenced
	// technicians belong to a different company.
	ErrTechnicianNotInTenant = errors.New("technician does not belong to company")

	// ErrNoRecurrenceMonths is returned when an active client is saved with
	// an empty recurrence month set.
	ErrNoRecurrenceMonths = errors.New("active client needs at least one recurrence month")

	// ErrInvalidPeriod is returned for a month outside 1-12 or a day outside
	// the month.
	ErrInvalidPeriod = errors.New("invalid year/month/day")
)
