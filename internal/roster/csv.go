package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ImportRow is one parsed roster row from a CSV upload.
type ImportRow struct {
	FirstName string
	LastName  string
	StudentID string
	Email     string
}

// ParseImportCSV reads the upload format [serial, full name, cwid, email,
// added-by]. The header row is skipped and blank rows are ignored. Any bad
// row fails the whole parse so an import never partially applies.
func ParseImportCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImportFile, err)
	}

	var rows []ImportRow
	for i, fields := range records {
		if i == 0 {
			continue // header
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		if blankRow(fields) {
			continue
		}

		var fullName, cwid, email string
		if len(fields) > 1 {
			fullName = fields[1]
		}
		if len(fields) > 2 {
			cwid = fields[2]
		}
		if len(fields) > 3 {
			email = fields[3]
		}

		if fullName == "" {
			return nil, fmt.Errorf("%w: row %d: missing name", ErrBadImportFile, i+1)
		}
		parts := strings.Fields(fullName)
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: row %d: invalid name format for %q, must include both first and last name", ErrBadImportFile, i+1, fullName)
		}
		first := FormatName(parts[0])
		last := FormatName(strings.Join(parts[1:], " "))

		if cwid != "" && !ValidCWID(cwid) {
			return nil, fmt.Errorf("%w: row %d: invalid CWID format for student %s %s", ErrBadImportFile, i+1, first, last)
		}

		rows = append(rows, ImportRow{
			FirstName: first,
			LastName:  last,
			StudentID: cwid,
			Email:     email,
		})
	}
	return rows, nil
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
