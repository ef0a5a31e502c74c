package snotel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// nullTokens are the strings the upstream CSVs use for missing values.
var nullTokens = map[string]bool{
	"":     true,
	"NaN":  true,
	"NA":   true,
	"null": true,
}

// parseCSV decodes delimited text into a table. The first record is
// the header. Null tokens become nil cells, and each column's type is
// inferred: all-date columns become dates, all-numeric columns become
// float64, anything else stays a string.
func parseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaValidationError{Reason: "empty csv input"}
	}
	if err != nil {
		return nil, &SchemaValidationError{Reason: fmt.Sprintf("read csv header: %v", err)}
	}

	raw := make([][]any, len(header))
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SchemaValidationError{Reason: fmt.Sprintf("read csv record: %v", err)}
		}
		for i := range header {
			if nullTokens[record[i]] {
				raw[i] = append(raw[i], nil)
			} else {
				raw[i] = append(raw[i], record[i])
			}
		}
	}

	t := NewTable()
	for i, name := range header {
		typ, cells := inferColumn(raw[i])
		if err := t.AddColumn(name, typ, cells); err != nil {
			return nil, &SchemaValidationError{Column: name, Reason: err.Error()}
		}
	}
	return t, nil
}

func inferColumn(raw []any) (ColType, []any) {
	allDates := true
	allFloats := true
	seen := false
	for _, v := range raw {
		if v == nil {
			continue
		}
		seen = true
		s := v.(string)
		if allDates {
			if _, err := time.Parse(dateLayout, s); err != nil {
				allDates = false
			}
		}
		if allFloats {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				allFloats = false
			}
		}
		if !allDates && !allFloats {
			break
		}
	}
	if !seen {
		return TypeString, raw
	}

	cells := make([]any, len(raw))
	switch {
	case allDates:
		for i, v := range raw {
			if v == nil {
				continue
			}
			d, _ := time.Parse(dateLayout, v.(string))
			cells[i] = d
		}
		return TypeDate, cells
	case allFloats:
		for i, v := range raw {
			if v == nil {
				continue
			}
			f, _ := strconv.ParseFloat(v.(string), 64)
			cells[i] = f
		}
		return TypeFloat64, cells
	default:
		return TypeString, raw
	}
}
