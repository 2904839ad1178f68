package manifest

import (
	"path/filepath"
	"testing"
)

func testSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_EmptyIsFirstRun(t *testing.T) {
	s := testSQLite(t)
	m, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Notes) != 0 || !m.LastSync.IsZero() {
		t.Errorf("expected empty manifest, got %+v", m)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := testSQLite(t)
	if err := s.Save(sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, got)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	s := testSQLite(t)
	if err := s.Save(sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	next := &Manifest{
		Notes: []Entry{{ID: "n3", Title: "only", Slug: "only-n3", Category: "其他", CategoryKey: "other", Hash: "cccc3333"}},
		Stats: Stats{TotalArticles: 1, Categories: map[string]int{"其他": 1}},
	}
	if err := s.Save(next); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Notes) != 1 || got.Notes[0].ID != "n3" {
		t.Errorf("notes = %+v, want only n3", got.Notes)
	}
	if len(got.Stats.Categories) != 1 || got.Stats.Categories["其他"] != 1 {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestOpen_SQLiteDriver(t *testing.T) {
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("store = %T, want *SQLiteStore", s)
	}
}
