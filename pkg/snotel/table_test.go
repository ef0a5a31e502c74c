package snotel

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRenamePassthrough(t *testing.T) {
	is := is.New(t)

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("WTEQ", TypeFloat64, []any{1.0}))
	is.NoErr(tbl.AddColumn("CUSTOM", TypeString, []any{"x"}))

	tbl.Rename(stationColumnMap)

	is.True(tbl.Has("swe_m"))
	is.True(!tbl.Has("WTEQ"))
	// Columns outside the map pass through unrenamed.
	is.True(tbl.Has("CUSTOM"))
	is.Equal(tbl.Names(), []string{"swe_m", "CUSTOM"})
}

func TestCastRejectsBadValue(t *testing.T) {
	is := is.New(t)

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("swe_m", TypeString, []any{"1.5", "oops"}))

	err := tbl.Cast("swe_m", TypeFloat32)
	var sve *SchemaValidationError
	is.True(errors.As(err, &sve))
	is.Equal(sve.Column, "swe_m")
}

func TestCastPreservesNulls(t *testing.T) {
	is := is.New(t)

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("swe_m", TypeFloat64, []any{1.5, nil}))
	is.NoErr(tbl.Cast("swe_m", TypeFloat32))

	col, _ := tbl.Column("swe_m")
	is.Equal(col.Cells[0], float32(1.5))
	is.Equal(col.Cells[1], nil)
}

func TestSetKeyRejectsDuplicates(t *testing.T) {
	is := is.New(t)

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("code", TypeString, []any{"A", "B", "A"}))

	err := tbl.SetKey("code")
	var sve *SchemaValidationError
	is.True(errors.As(err, &sve))
}

func TestSetKeyLookup(t *testing.T) {
	is := is.New(t)

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("code", TypeString, []any{"A", "B"}))
	is.NoErr(tbl.AddColumn("name", TypeString, []any{"Alpha", nil}))
	is.NoErr(tbl.SetKey("code"))

	row, ok := tbl.Row("B")
	is.True(ok)
	is.Equal(row["name"], nil)

	_, ok = tbl.Row("C")
	is.True(!ok)
}

func TestFilterDatesInclusive(t *testing.T) {
	is := is.New(t)

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("datetime", TypeDate, []any{
		date(2023, 1, 1), date(2023, 1, 2), date(2023, 1, 3),
	}))
	is.NoErr(tbl.AddColumn("swe_m", TypeFloat32, []any{
		float32(1), float32(2), float32(3),
	}))

	got, err := tbl.FilterDates("datetime", "2023-01-02", "2023-01-02")
	is.NoErr(err)
	is.Equal(got.NumRows(), 1)
	col, _ := got.Column("swe_m")
	is.Equal(col.Cells[0], float32(2))

	// Bounds are independent.
	got, err = tbl.FilterDates("datetime", "2023-01-02", "")
	is.NoErr(err)
	is.Equal(got.NumRows(), 2)

	got, err = tbl.FilterDates("datetime", "", "2023-01-02")
	is.NoErr(err)
	is.Equal(got.NumRows(), 2)

	// No bounds leaves the table untouched.
	got, err = tbl.FilterDates("datetime", "", "")
	is.NoErr(err)
	is.Equal(got.NumRows(), 3)
}

func TestConcatRelaxed(t *testing.T) {
	is := is.New(t)

	t1 := NewTable()
	is.NoErr(t1.AddColumn("datetime", TypeDate, []any{date(2023, 1, 1)}))
	is.NoErr(t1.AddColumn("WTEQ", TypeFloat64, []any{100.0}))

	t2 := NewTable()
	is.NoErr(t2.AddColumn("datetime", TypeDate, []any{date(2023, 1, 2)}))
	is.NoErr(t2.AddColumn("TAVG", TypeFloat64, []any{-1.5}))

	got, err := concatRelaxed([]*Table{t1, t2})
	is.NoErr(err)
	is.Equal(got.NumRows(), 2)
	is.Equal(got.Names(), []string{"datetime", "WTEQ", "TAVG"})

	wteq, _ := got.Column("WTEQ")
	is.Equal(wteq.Cells[1], nil)
	tavg, _ := got.Column("TAVG")
	is.Equal(tavg.Cells[0], nil)
}

func TestConcatRelaxedWidensNumericTypes(t *testing.T) {
	is := is.New(t)

	t1 := NewTable()
	is.NoErr(t1.AddColumn("v", TypeFloat32, []any{float32(1)}))
	t2 := NewTable()
	is.NoErr(t2.AddColumn("v", TypeFloat64, []any{2.0}))

	got, err := concatRelaxed([]*Table{t1, t2})
	is.NoErr(err)

	v, _ := got.Column("v")
	is.Equal(v.Type, TypeFloat64)
	is.Equal(v.Cells[0], float64(1))
	is.Equal(v.Cells[1], float64(2))
}

func TestRowsFormatsDates(t *testing.T) {
	is := is.New(t)

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("datetime", TypeDate, []any{date(2023, 1, 2)}))
	is.NoErr(tbl.AddColumn("swe_m", TypeFloat32, []any{nil}))

	rows := tbl.Rows()
	is.Equal(len(rows), 1)
	is.Equal(rows[0]["datetime"], "2023-01-02")
	is.Equal(rows[0]["swe_m"], nil)
}
