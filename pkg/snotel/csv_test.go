package snotel

import (
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestParseCSVTypeInference(t *testing.T) {
	is := is.New(t)

	input := "datetime,WTEQ,label\n" +
		"2023-01-01,100,abc\n" +
		"2023-01-02,101.5,def\n"

	tbl, err := parseCSV(strings.NewReader(input))
	is.NoErr(err)
	is.Equal(tbl.NumRows(), 2)

	dt, _ := tbl.Column("datetime")
	is.Equal(dt.Type, TypeDate)
	is.Equal(dt.Cells[0], time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	wteq, _ := tbl.Column("WTEQ")
	is.Equal(wteq.Type, TypeFloat64)
	is.Equal(wteq.Cells[1], 101.5)

	label, _ := tbl.Column("label")
	is.Equal(label.Type, TypeString)
}

func TestParseCSVNullTokens(t *testing.T) {
	is := is.New(t)

	input := "datetime,WTEQ,SNWD,PRCPSA,TAVG\n" +
		"2023-01-01,,NaN,NA,null\n"

	tbl, err := parseCSV(strings.NewReader(input))
	is.NoErr(err)

	for _, name := range []string{"WTEQ", "SNWD", "PRCPSA", "TAVG"} {
		col, _ := tbl.Column(name)
		is.Equal(col.Cells[0], nil)
	}
}

func TestParseCSVMixedColumnStaysString(t *testing.T) {
	is := is.New(t)

	input := "v\n1.5\nnot_a_float\n"
	tbl, err := parseCSV(strings.NewReader(input))
	is.NoErr(err)

	v, _ := tbl.Column("v")
	is.Equal(v.Type, TypeString)
	is.Equal(v.Cells[1], "not_a_float")
}

func TestParseCSVEmptyInput(t *testing.T) {
	is := is.New(t)

	_, err := parseCSV(strings.NewReader(""))
	is.True(err != nil)
}
