package core

// validation.go checks the structure of an uploaded table before anything is
// aggregated or recorded.
//
// Validation happens at two levels:
//  1. Header validation: every required column must be present
//  2. Row validation: text cells must be non-empty, numeric cells must parse
//
// A single bad row fails the whole ingestion. Dropping it silently would skew
// the aggregates. Value ranges are not checked.

import (
	"fmt"
	"strings"
)

// MissingColumnError reports required columns absent from the header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column: %s", strings.Join(e.Columns, ", "))
}

// MalformedRowError reports the first cell that failed validation.
// Line is 1-based and counts the header as line 1.
type MalformedRowError struct {
	Line   int
	Column string
	Value  string
}

func (e *MalformedRowError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("line %d: required field %q is empty", e.Line, e.Column)
	}
	return fmt.Sprintf("line %d: invalid number in column %q: %q", e.Line, e.Column, e.Value)
}

// ValidateHeaders checks that every spec has a matching column and returns
// the header index.
func ValidateHeaders(header []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)

	var missing []string
	for _, spec := range specs {
		if _, ok := idx[strings.ToLower(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}
	return idx, nil
}

// Validate parses a raw table into a Dataset, preserving row order. Blank
// rows are skipped. Columns beyond the required set are ignored.
func Validate(table RawTable) (Dataset, error) {
	idx, err := ValidateHeaders(table.Header, EquipmentSpecs)
	if err != nil {
		return nil, err
	}

	ds := make(Dataset, 0, len(table.Rows))
	for i, row := range table.Rows {
		if isBlankRow(row) {
			continue
		}
		rec, err := parseRecord(row, idx, i+2)
		if err != nil {
			return nil, err
		}
		ds = append(ds, rec)
	}
	return ds, nil
}

func parseRecord(row []string, idx HeaderIndex, line int) (EquipmentRecord, error) {
	cell := func(col string) string {
		pos := idx[strings.ToLower(col)]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	text := func(col string) (string, error) {
		v := cell(col)
		if v == "" {
			return "", &MalformedRowError{Line: line, Column: col}
		}
		return v, nil
	}

	// Export artifacts are only stripped from numeric cells; names and
	// types are kept as written.
	number := func(col string) (float64, error) {
		v := CleanCell(cell(col))
		if v == "" {
			return 0, &MalformedRowError{Line: line, Column: col}
		}
		f, err := ParseNumber(v)
		if err != nil {
			return 0, &MalformedRowError{Line: line, Column: col, Value: v}
		}
		return f, nil
	}

	var (
		rec EquipmentRecord
		err error
	)
	if rec.Name, err = text(ColName); err != nil {
		return rec, err
	}
	if rec.Type, err = text(ColType); err != nil {
		return rec, err
	}
	if rec.Pressure, err = number(ColPressure); err != nil {
		return rec, err
	}
	if rec.Temperature, err = number(ColTemperature); err != nil {
		return rec, err
	}
	if rec.Flowrate, err = number(ColFlowrate); err != nil {
		return rec, err
	}
	return rec, nil
}
