package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MonthSet is a set of calendar-month indices in [0, 11]. It is stored as a
// comma-joined string and always normalized (sorted, deduplicated) on the way
// in, so two equal sets have one canonical representation.
type MonthSet []int

// NewMonthSet builds a normalized MonthSet, discarding out-of-range values.
func NewMonthSet(months ...int) MonthSet {
	seen := make(map[int]bool, len(months))
	var out MonthSet
	for _, m := range months {
		if m < 0 || m > 11 || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// Contains reports whether the 0-indexed month is in the set.
func (s MonthSet) Contains(month int) bool {
	for _, m := range s {
		if m == month {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (s MonthSet) Value() (driver.Value, error) {
	parts := make([]string, len(s))
	for i, m := range s {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner.
func (s *MonthSet) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return fmt.Errorf("month set: %w", err)
	}
	var months []int
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("month set: bad element %q", p)
		}
		months = append(months, n)
	}
	*s = NewMonthSet(months...)
	return nil
}

// TechSet is a set of technician ids. Legacy rows stored this column as
// either a JSON array or a bare comma-joined string; Scan coerces both so
// nothing downstream ever sees the loose representation.
type TechSet []int64

// NewTechSet builds a normalized (sorted, deduplicated) TechSet.
func NewTechSet(ids ...int64) TechSet {
	seen := make(map[int64]bool, len(ids))
	var out TechSet
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether the technician id is in the set.
func (s TechSet) Contains(id int64) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer, writing the canonical JSON array form.
func (s TechSet) Value() (driver.Value, error) {
	if s == nil {
		s = TechSet{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *TechSet) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return fmt.Errorf("technician set: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*s = TechSet{}
		return nil
	}

	var ids []int64
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return fmt.Errorf("technician set: bad JSON array %q", raw)
		}
	} else {
		// Legacy comma-joined form ("3" or "3,7").
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return fmt.Errorf("technician set: bad element %q", p)
			}
			ids = append(ids, n)
		}
	}

	out := NewTechSet(ids...)
	if out == nil {
		out = TechSet{}
	}
	*s = out
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported column type %T", src)
	}
}
