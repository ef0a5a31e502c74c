package snotel

import "time"

// ExtremeStations returns the station codes holding the maximum and
// minimum values of the named metadata column, considering only
// stations still reporting: those whose end_date falls within the
// last two days. Null values are ignored.
func ExtremeStations(meta *Table, column string) (maxCode, minCode string, err error) {
	if meta.Key() == "" {
		return "", "", &SchemaValidationError{Reason: "metadata table has no key column"}
	}
	codes, _ := meta.Column(meta.Key())
	ends, ok := meta.Column("end_date")
	if !ok {
		return "", "", &SchemaValidationError{Column: "end_date", Reason: "column not present"}
	}
	col, ok := meta.Column(column)
	if !ok {
		return "", "", &SchemaValidationError{Column: column, Reason: "column not present"}
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -2)

	var maxVal, minVal float64
	found := false
	for i, v := range col.Cells {
		end, ok := ends.Cells[i].(time.Time)
		if !ok || !end.After(cutoff) || end.After(today) {
			continue
		}
		if v == nil {
			continue
		}
		fv, cerr := coerceCell(v, TypeFloat64)
		if cerr != nil {
			return "", "", &SchemaValidationError{Column: column, Reason: cerr.Error()}
		}
		f := fv.(float64)
		code := codes.Cells[i].(string)
		if !found || f > maxVal {
			maxVal, maxCode = f, code
		}
		if !found || f < minVal {
			minVal, minCode = f, code
		}
		found = true
	}
	if !found {
		return "", "", &SchemaValidationError{Column: column, Reason: "no currently reporting stations with values"}
	}
	return maxCode, minCode, nil
}
