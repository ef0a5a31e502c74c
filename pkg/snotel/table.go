package snotel

import (
	"fmt"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const dateLayout = "2006-01-02"

// ColType enumerates the cell types a column can hold.
type ColType int

const (
	TypeString ColType = iota
	TypeFloat64
	TypeFloat32
	TypeInt64
	TypeBool
	TypeDate
	TypeGeometry
)

func (t ColType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeFloat64:
		return "float64"
	case TypeFloat32:
		return "float32"
	case TypeInt64:
		return "int64"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	case TypeGeometry:
		return "geometry"
	}
	return "unknown"
}

// Column is one named column of a Table: a cell type plus one cell per
// row. A nil cell is a null.
type Column struct {
	Type  ColType
	Cells []any
}

// Table is a small column-ordered table. Columns keep their insertion
// order, cells are nullable, and one string column may be promoted to
// a unique row key.
type Table struct {
	names []string
	cols  map[string]*Column
	key   string
	index map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{cols: make(map[string]*Column)}
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	if len(t.names) == 0 {
		return 0
	}
	return len(t.cols[t.names[0]].Cells)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.cols[name]
	return c, ok
}

// AddColumn appends a column. The cell count must match the existing
// row count unless the table is still empty.
func (t *Table) AddColumn(name string, typ ColType, cells []any) error {
	if t.Has(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(t.names) > 0 && len(cells) != t.NumRows() {
		return fmt.Errorf("column %q has %d cells, table has %d rows", name, len(cells), t.NumRows())
	}
	t.names = append(t.names, name)
	t.cols[name] = &Column{Type: typ, Cells: cells}
	return nil
}

// Rename renames columns per the mapping. Source columns that are not
// present are ignored; columns not in the mapping pass through
// unrenamed.
func (t *Table) Rename(mapping map[string]string) {
	for from, to := range mapping {
		if from == to {
			continue
		}
		col, ok := t.cols[from]
		if !ok {
			continue
		}
		delete(t.cols, from)
		t.cols[to] = col
		for i, n := range t.names {
			if n == from {
				t.names[i] = to
				break
			}
		}
		if t.key == from {
			t.key = to
		}
	}
}

// Cast coerces every cell of the named column to the given type. A
// value that cannot be coerced fails the whole cast.
func (t *Table) Cast(name string, typ ColType) error {
	col, ok := t.cols[name]
	if !ok {
		return &SchemaValidationError{Column: name, Reason: "column not present"}
	}
	for i, v := range col.Cells {
		nv, err := coerceCell(v, typ)
		if err != nil {
			return &SchemaValidationError{Column: name, Reason: err.Error()}
		}
		col.Cells[i] = nv
	}
	col.Type = typ
	return nil
}

// SetKey promotes the named column to the table's unique row key. Key
// values are coerced to strings and must be non-null and unique.
func (t *Table) SetKey(name string) error {
	if err := t.Cast(name, TypeString); err != nil {
		return err
	}
	col := t.cols[name]
	index := make(map[string]int, len(col.Cells))
	for i, v := range col.Cells {
		if v == nil {
			return &SchemaValidationError{Column: name, Reason: "null value in key column"}
		}
		k := v.(string)
		if _, dup := index[k]; dup {
			return &SchemaValidationError{Column: name, Reason: fmt.Sprintf("duplicate key %q", k)}
		}
		index[k] = i
	}
	t.key = name
	t.index = index
	return nil
}

// Key returns the name of the key column, or "" if none is set.
func (t *Table) Key() string {
	return t.key
}

// Row returns the row with the given key value as a column→cell map.
func (t *Table) Row(key string) (map[string]any, bool) {
	if t.index == nil {
		return nil, false
	}
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	row := make(map[string]any, len(t.names))
	for _, n := range t.names {
		row[n] = t.cols[n].Cells[i]
	}
	return row, true
}

// Rows returns all rows as JSON-friendly maps: dates become
// YYYY-MM-DD strings and geometries become GeoJSON values.
func (t *Table) Rows() []map[string]any {
	rows := make([]map[string]any, t.NumRows())
	for i := range rows {
		row := make(map[string]any, len(t.names))
		for _, n := range t.names {
			row[n] = jsonCell(t.cols[n].Cells[i])
		}
		rows[i] = row
	}
	return rows
}

func jsonCell(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(dateLayout)
	case orb.Geometry:
		return geojson.NewGeometry(x)
	default:
		return v
	}
}

// FilterDates returns the rows whose date in the named column falls
// within the inclusive [start, end] range. Either bound may be empty.
// Rows with a null date are dropped when any bound is set.
func (t *Table) FilterDates(name, start, end string) (*Table, error) {
	if start == "" && end == "" {
		return t, nil
	}
	col, ok := t.cols[name]
	if !ok {
		return nil, &SchemaValidationError{Column: name, Reason: "column not present"}
	}

	var lo, hi time.Time
	var err error
	if start != "" {
		if lo, err = parseDate(start); err != nil {
			return nil, fmt.Errorf("invalid start date %q: %w", start, err)
		}
	}
	if end != "" {
		if hi, err = parseDate(end); err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", end, err)
		}
	}

	keep := make([]int, 0, len(col.Cells))
	for i, v := range col.Cells {
		d, ok := v.(time.Time)
		if !ok {
			continue
		}
		if start != "" && d.Before(lo) {
			continue
		}
		if end != "" && d.After(hi) {
			continue
		}
		keep = append(keep, i)
	}

	out := NewTable()
	for _, n := range t.names {
		src := t.cols[n]
		cells := make([]any, len(keep))
		for j, i := range keep {
			cells[j] = src.Cells[i]
		}
		out.names = append(out.names, n)
		out.cols[n] = &Column{Type: src.Type, Cells: cells}
	}
	return out, nil
}

// concatRelaxed vertically concatenates tables, taking the union of
// their columns. Columns missing from a table become nulls in its
// rows; columns whose types disagree are widened to a common type.
func concatRelaxed(tables []*Table) (*Table, error) {
	var names []string
	types := make(map[string]ColType)
	total := 0
	for _, t := range tables {
		total += t.NumRows()
		for _, n := range t.names {
			typ := t.cols[n].Type
			if have, ok := types[n]; ok {
				types[n] = widenType(have, typ)
			} else {
				names = append(names, n)
				types[n] = typ
			}
		}
	}

	out := NewTable()
	for _, n := range names {
		typ := types[n]
		cells := make([]any, 0, total)
		for _, t := range tables {
			src, ok := t.cols[n]
			if !ok {
				for i := 0; i < t.NumRows(); i++ {
					cells = append(cells, nil)
				}
				continue
			}
			for _, v := range src.Cells {
				nv, err := coerceCell(v, typ)
				if err != nil {
					return nil, &SchemaValidationError{Column: n, Reason: err.Error()}
				}
				cells = append(cells, nv)
			}
		}
		out.names = append(out.names, n)
		out.cols[n] = &Column{Type: typ, Cells: cells}
	}
	return out, nil
}

func widenType(a, b ColType) ColType {
	if a == b {
		return a
	}
	if isNumeric(a) && isNumeric(b) {
		return TypeFloat64
	}
	return TypeString
}

func isNumeric(t ColType) bool {
	return t == TypeFloat32 || t == TypeFloat64 || t == TypeInt64
}

// coerceCell converts a single cell to the target type. Nulls pass
// through unchanged.
func coerceCell(v any, typ ColType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case TypeString:
		switch x := v.(type) {
		case string:
			return x, nil
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		case float32:
			return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
		case int64:
			return strconv.FormatInt(x, 10), nil
		case bool:
			return strconv.FormatBool(x), nil
		case time.Time:
			return x.Format(dateLayout), nil
		}
	case TypeFloat64:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot cast %q to float64", x)
			}
			return f, nil
		}
	case TypeFloat32:
		switch x := v.(type) {
		case float32:
			return x, nil
		case float64:
			return float32(x), nil
		case int64:
			return float32(x), nil
		case string:
			f, err := strconv.ParseFloat(x, 32)
			if err != nil {
				return nil, fmt.Errorf("cannot cast %q to float32", x)
			}
			return float32(f), nil
		}
	case TypeInt64:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			return int64(x), nil
		case string:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot cast %q to int64", x)
			}
			return n, nil
		}
	case TypeBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, fmt.Errorf("cannot cast %q to bool", x)
			}
			return b, nil
		}
	case TypeDate:
		switch x := v.(type) {
		case time.Time:
			return x, nil
		case string:
			d, err := parseDate(x)
			if err != nil {
				return nil, fmt.Errorf("cannot cast %q to date", x)
			}
			return d, nil
		}
	case TypeGeometry:
		if g, ok := v.(orb.Geometry); ok {
			return g, nil
		}
	}
	return nil, fmt.Errorf("cannot cast %T value to %s", v, typ)
}

// parseDate accepts the date formats seen upstream: plain dates,
// dates with a time component, and RFC 3339.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{dateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
