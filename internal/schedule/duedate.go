// Package schedule holds the pure scheduling calculations. Nothing here
// touches the database or the wall clock; callers pass the reference time in.
package schedule

import (
	"time"

	"fieldservice-backend/internal/model"
)

// FarFuture is the sentinel "no scheduled due date" value used for inactive
// clients and clients with no recurrence months.
var FarFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// DueDay is the day-of-month every due date is anchored to. Fixed policy,
// not configurable.
const DueDay = 15

// ComputeNextDue derives a client's next due date from its recurrence months
// (0-indexed) as of the given date.
//
// The current month only counts while asOf.Day() < DueDay; once the 15th has
// passed, that month's maintenance window is over and the date rolls to the
// next selected month, wrapping into next year if needed. A client whose only
// selected month is the current one therefore rolls a full year forward on
// the 15th.
func ComputeNextDue(months model.MonthSet, inactive bool, asOf time.Time) time.Time {
	if inactive || len(months) == 0 {
		return FarFuture
	}

	// NewMonthSet keeps months sorted; normalize anyway in case the caller
	// built the slice by hand.
	months = model.NewMonthSet(months...)

	currentMonth := int(asOf.Month()) - 1
	if months.Contains(currentMonth) && asOf.Day() < DueDay {
		return dueDate(asOf.Year(), currentMonth)
	}

	for _, m := range months {
		if m > currentMonth {
			return dueDate(asOf.Year(), m)
		}
	}

	// Past the last selected month this year; wrap to the first one next year.
	return dueDate(asOf.Year()+1, months[0])
}

func dueDate(year, monthIndex int) time.Time {
	return time.Date(year, time.Month(monthIndex+1), DueDay, 0, 0, 0, 0, time.UTC)
}
