// Package backup implements the flat-file client backup format: one CSV with
// a fixed header where each client occupies one MAIN row plus zero or more
// ADDITIONAL rows carrying overflow parts and equipment. Parts and equipment
// are zipped by row index; they have no semantic pairing.
package backup

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fieldservice-backend/internal/model"
	"fieldservice-backend/internal/schedule"
)

// Row tags. The first row of a client group is MAIN; overflow rows repeat
// the identity columns and are tagged ADDITIONAL.
const (
	RowMain       = "MAIN"
	RowAdditional = "ADDITIONAL"
)

// Header is the fixed, versioned column list. companyName must stay the
// leading column; consumers ignore unrecognized trailing columns.
var Header = []string{
	"companyName", "rowType", "address", "phone", "email", "contactName",
	"notes", "recurrenceMonths", "status", "partName", "partQuantity",
	"equipmentName", "equipmentModel", "equipmentSerial",
}

// ClientRecord bundles a client with its parts and equipment collections.
type ClientRecord struct {
	Client    model.Client
	Parts     []model.Part
	Equipment []model.Equipment
}

// RowError is a per-row validation failure collected during decode. Row is
// the 1-based line number in the file, counting the header.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// DecodeResult carries the decoded records plus the bookkeeping an import
// report needs.
type DecodeResult struct {
	Records []ClientRecord
	Errors  []RowError
	Skipped int
	Total   int // data rows seen, including skipped ones
}

var monthAbbrevs = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Encode writes the records to CSV text. A client with neither parts nor
// equipment still gets exactly one MAIN row.
func Encode(records []ClientRecord) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		rows := len(rec.Parts)
		if len(rec.Equipment) > rows {
			rows = len(rec.Equipment)
		}
		if rows == 0 {
			rows = 1
		}
		for i := 0; i < rows; i++ {
			tag := RowMain
			if i > 0 {
				tag = RowAdditional
			}
			row := []string{
				rec.Client.CompanyName,
				tag,
				rec.Client.Address,
				rec.Client.Phone,
				rec.Client.Email,
				rec.Client.ContactName,
				rec.Client.Notes,
				encodeMonths(rec.Client.SelectedMonths),
				encodeStatus(rec.Client.Inactive),
				"", "", "", "", "",
			}
			if i < len(rec.Parts) {
				row[9] = rec.Parts[i].Name
				row[10] = strconv.Itoa(rec.Parts[i].Quantity)
			}
			if i < len(rec.Equipment) {
				row[11] = rec.Equipment[i].Name
				row[12] = rec.Equipment[i].Model
				row[13] = rec.Equipment[i].SerialNumber
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("write row for %q: %w", rec.Client.CompanyName, err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Decode parses backup CSV text. Rows are grouped by company name: the first
// row naming a company starts its group and supplies the identity fields;
// any later row with that name only contributes its part/equipment cells,
// whatever its row tag says. Bad rows are collected as RowErrors and
// skipped, never fatal. NextDue is always recomputed as of asOf, never read
// from the file.
func Decode(text string, asOf time.Time) (*DecodeResult, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // ragged rows are handled per row below

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file: missing header row")
	}

	result := &DecodeResult{}
	byName := make(map[string]int) // company name -> index into Records

	for i, row := range rows[1:] {
		line := i + 2 // 1-based, header is line 1
		if isBlank(row) {
			continue
		}
		result.Total++

		name := ""
		if len(row) > 0 {
			name = strings.TrimSpace(row[0])
		}
		if name == "" {
			result.Errors = append(result.Errors, RowError{Row: line, Reason: "missing company name"})
			result.Skipped++
			continue
		}

		// Pad short rows; extra trailing columns are ignored.
		cells := make([]string, len(Header))
		copy(cells, row)

		idx, seen := byName[name]
		if !seen {
			months := decodeMonths(cells[7])
			inactive := strings.EqualFold(strings.TrimSpace(cells[8]), "Inactive")
			client := model.Client{
				CompanyName:    name,
				Address:        cells[2],
				Phone:          cells[3],
				Email:          cells[4],
				ContactName:    cells[5],
				Notes:          cells[6],
				SelectedMonths: months,
				Inactive:       inactive,
				NextDue:        schedule.ComputeNextDue(months, inactive, asOf),
			}
			result.Records = append(result.Records, ClientRecord{Client: client})
			idx = len(result.Records) - 1
			byName[name] = idx
		}

		rec := &result.Records[idx]
		if partName := strings.TrimSpace(cells[9]); partName != "" {
			qty := 1
			if q := strings.TrimSpace(cells[10]); q != "" {
				n, err := strconv.Atoi(q)
				if err != nil {
					result.Errors = append(result.Errors, RowError{
						Row:    line,
						Reason: fmt.Sprintf("bad part quantity %q", q),
					})
					result.Skipped++
					continue
				}
				qty = n
			}
			rec.Parts = append(rec.Parts, model.Part{Name: partName, Quantity: qty})
		}
		if equipName := strings.TrimSpace(cells[11]); equipName != "" {
			rec.Equipment = append(rec.Equipment, model.Equipment{
				Name:         equipName,
				Model:        cells[12],
				SerialNumber: cells[13],
			})
		}
	}

	return result, nil
}

func encodeMonths(months model.MonthSet) string {
	parts := make([]string, 0, len(months))
	for _, m := range model.NewMonthSet(months...) {
		parts = append(parts, monthAbbrevs[m])
	}
	return strings.Join(parts, ",")
}

// decodeMonths maps three-letter abbreviations back to month indices.
// Unrecognized names are dropped silently; they are not worth failing a
// restore over.
func decodeMonths(cell string) model.MonthSet {
	var months []int
	for _, token := range strings.Split(cell, ",") {
		token = strings.TrimSpace(token)
		for i, abbrev := range monthAbbrevs {
			if token == abbrev {
				months = append(months, i)
				break
			}
		}
	}
	return model.NewMonthSet(months...)
}

func encodeStatus(inactive bool) string {
	if inactive {
		return "Inactive"
	}
	return "Active"
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
