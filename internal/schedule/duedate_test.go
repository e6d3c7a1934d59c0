package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldservice-backend/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeNextDue(t *testing.T) {
	testCases := []struct {
		name     string
		months   []int
		inactive bool
		asOf     time.Time
		expected time.Time
	}{
		{
			name:     "current month selected, before the 15th",
			months:   []int{2, 8}, // Mar, Sep
			asOf:     date(2024, time.March, 10),
			expected: date(2024, time.March, 15),
		},
		{
			name:     "current month selected, on the 15th rolls forward",
			months:   []int{2, 8},
			asOf:     date(2024, time.March, 15),
			expected: date(2024, time.September, 15),
		},
		{
			name:     "current month selected, after the 15th rolls forward",
			months:   []int{2, 8},
			asOf:     date(2024, time.March, 20),
			expected: date(2024, time.September, 15),
		},
		{
			name:     "past last selected month wraps to next year",
			months:   []int{5}, // Jun
			asOf:     date(2025, time.November, 1),
			expected: date(2026, time.June, 15),
		},
		{
			name:     "single month equal to current with day past anchor wraps a full year",
			months:   []int{6}, // Jul
			asOf:     date(2024, time.July, 15),
			expected: date(2025, time.July, 15),
		},
		{
			name:     "between selected months picks the next one",
			months:   []int{0, 6}, // Jan, Jul
			asOf:     date(2024, time.April, 3),
			expected: date(2024, time.July, 15),
		},
		{
			name:     "current month not selected, earlier month selected only",
			months:   []int{0}, // Jan
			asOf:     date(2024, time.February, 1),
			expected: date(2025, time.January, 15),
		},
		{
			name:     "december selected, asOf late december",
			months:   []int{11},
			asOf:     date(2024, time.December, 28),
			expected: date(2025, time.December, 15),
		},
		{
			name:     "inactive returns sentinel regardless of months",
			months:   []int{0, 5, 11},
			inactive: true,
			asOf:     date(2024, time.March, 1),
			expected: FarFuture,
		},
		{
			name:     "no months returns sentinel",
			months:   nil,
			asOf:     date(2024, time.March, 1),
			expected: FarFuture,
		},
		{
			name:     "unsorted input is normalized",
			months:   []int{8, 2},
			asOf:     date(2024, time.January, 1),
			expected: date(2024, time.March, 15),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeNextDue(model.MonthSet(tc.months), tc.inactive, tc.asOf)
			assert.Equal(t, tc.expected, got)

			// Same inputs, same output.
			assert.Equal(t, got, ComputeNextDue(model.MonthSet(tc.months), tc.inactive, tc.asOf))
		})
	}
}

func TestComputeNextDueEveryMonthBeforeAnchor(t *testing.T) {
	// With the current month selected and the day before the anchor, the due
	// date is always the 15th of the current month.
	for m := 0; m < 12; m++ {
		asOf := date(2024, time.Month(m+1), 14)
		got := ComputeNextDue(model.NewMonthSet(m), false, asOf)
		assert.Equal(t, date(2024, time.Month(m+1), 15), got, "month %d", m)
	}
}
