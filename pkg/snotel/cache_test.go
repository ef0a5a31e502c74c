package snotel

import (
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
)

func TestArtifactFreshness(t *testing.T) {
	is := is.New(t)

	store, err := newArtifactStore(t.TempDir())
	is.NoErr(err)

	// Missing artifact is never fresh.
	is.True(!store.fresh("missing", 24*time.Hour))

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("v", TypeFloat64, []any{1.0}))
	is.NoErr(store.save("v", tbl))
	is.True(store.fresh("v", 24*time.Hour))

	// Older than the threshold: stale.
	old := time.Now().Add(-48 * time.Hour)
	is.NoErr(os.Chtimes(store.path("v"), old, old))
	is.True(!store.fresh("v", 24*time.Hour))

	// A future mtime gives a negative age, which counts as fresh.
	future := time.Now().Add(48 * time.Hour)
	is.NoErr(os.Chtimes(store.path("v"), future, future))
	is.True(store.fresh("v", 24*time.Hour))
}

func TestArtifactRoundTrip(t *testing.T) {
	is := is.New(t)

	store, err := newArtifactStore(t.TempDir())
	is.NoErr(err)

	tbl := NewTable()
	is.NoErr(tbl.AddColumn("code", TypeString, []any{"A", "B"}))
	is.NoErr(tbl.AddColumn("swe_m", TypeFloat32, []any{float32(1.5), nil}))
	is.NoErr(tbl.AddColumn("begin_date", TypeDate, []any{date(1980, 1, 1), nil}))
	is.NoErr(tbl.AddColumn("geometry", TypeGeometry, []any{orb.Point{-120, 45}, nil}))
	is.NoErr(tbl.SetKey("code"))

	is.NoErr(store.save("stations", tbl))
	got, err := store.load("stations")
	is.NoErr(err)

	is.Equal(got.Names(), tbl.Names())
	is.Equal(got.Key(), "code")

	swe, _ := got.Column("swe_m")
	is.Equal(swe.Type, TypeFloat32)
	is.Equal(swe.Cells[0], float32(1.5))
	is.Equal(swe.Cells[1], nil)

	bd, _ := got.Column("begin_date")
	is.Equal(bd.Cells[0], date(1980, 1, 1))

	geom, _ := got.Column("geometry")
	is.Equal(geom.Cells[0], orb.Point{-120, 45})

	row, ok := got.Row("B")
	is.True(ok)
	is.Equal(row["swe_m"], nil)
}

func TestArtifactLoadMissing(t *testing.T) {
	is := is.New(t)

	store, err := newArtifactStore(t.TempDir())
	is.NoErr(err)

	_, err = store.load("missing")
	is.True(err != nil)
}
