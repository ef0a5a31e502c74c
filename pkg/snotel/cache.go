package snotel

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
)

const artifactExt = ".gob"

func init() {
	// Cell values travel through interface columns, so every concrete
	// cell type must be registered for gob.
	gob.Register("")
	gob.Register(float64(0))
	gob.Register(float32(0))
	gob.Register(int64(0))
	gob.Register(false)
	gob.Register(time.Time{})
	gob.Register(orb.Point{})
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// artifactStore persists table snapshots as one file per logical
// resource inside a single cache directory. Every write replaces the
// whole artifact; freshness is judged from the file's mtime alone.
type artifactStore struct {
	dir string
}

func newArtifactStore(dir string) (*artifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &CacheIOError{Op: "create", Path: dir, Err: err}
	}
	return &artifactStore{dir: dir}, nil
}

func (s *artifactStore) path(name string) string {
	return filepath.Join(s.dir, name+artifactExt)
}

// fresh reports whether the named artifact exists and was modified
// less than maxAge ago. A future mtime yields a negative age, which
// still counts as fresh.
func (s *artifactStore) fresh(name string, maxAge time.Duration) bool {
	info, err := os.Stat(s.path(name))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < maxAge
}

// tableSnapshot is the gob wire form of a Table.
type tableSnapshot struct {
	Names []string
	Key   string
	Cols  map[string]*Column
}

func (s *artifactStore) save(name string, t *Table) error {
	p := s.path(name)
	f, err := os.Create(p)
	if err != nil {
		return &CacheIOError{Op: "write", Path: p, Err: err}
	}
	defer f.Close()

	snap := tableSnapshot{Names: t.names, Key: t.key, Cols: t.cols}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return &CacheIOError{Op: "write", Path: p, Err: err}
	}
	return nil
}

func (s *artifactStore) load(name string) (*Table, error) {
	p := s.path(name)
	f, err := os.Open(p)
	if err != nil {
		return nil, &CacheIOError{Op: "read", Path: p, Err: err}
	}
	defer f.Close()

	var snap tableSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, &CacheIOError{Op: "read", Path: p, Err: err}
	}

	t := &Table{names: snap.Names, cols: snap.Cols}
	if t.cols == nil {
		t.cols = make(map[string]*Column)
	}
	if snap.Key != "" && t.Has(snap.Key) {
		if err := t.SetKey(snap.Key); err != nil {
			return nil, err
		}
	}
	return t, nil
}
