package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/kbsite/internal/apperr"
)

func sample() *Manifest {
	return &Manifest{
		LastSync: Timestamp{time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)},
		Notes: []Entry{
			{ID: "n1", Title: "禪修筆記", Slug: "禪修筆記-n1", Category: "佛學", CategoryKey: "buddhism", Hash: "aaaa1111"},
			{ID: "n2", Title: "AI <news>", Slug: "ai-news-n2", Category: "AI技術", CategoryKey: "ai", Hash: "bbbb2222"},
		},
		Stats: Stats{TotalArticles: 2, Categories: map[string]int{"佛學": 1, "AI技術": 1}},
	}
}

func assertSample(t *testing.T, got *Manifest) {
	t.Helper()
	want := sample()
	if !got.LastSync.Equal(want.LastSync.Time) {
		t.Errorf("last_sync = %v, want %v", got.LastSync, want.LastSync)
	}
	if len(got.Notes) != len(want.Notes) {
		t.Fatalf("len(notes) = %d, want %d", len(got.Notes), len(want.Notes))
	}
	for i := range want.Notes {
		if got.Notes[i] != want.Notes[i] {
			t.Errorf("notes[%d] = %+v, want %+v", i, got.Notes[i], want.Notes[i])
		}
	}
	if got.Stats.TotalArticles != 2 || got.Stats.Categories["佛學"] != 1 || got.Stats.Categories["AI技術"] != 1 {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestJSONStore_MissingFileIsFirstRun(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "sync-log.json"))
	m, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Notes) != 0 || !m.LastSync.IsZero() {
		t.Errorf("expected empty manifest, got %+v", m)
	}
}

func TestJSONStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sync-log.json")
	s := NewJSONStore(path)
	if err := s.Save(sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, got)

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "禪修筆記") || !strings.Contains(string(raw), "AI <news>") {
		t.Errorf("manifest should keep unicode and markup characters unescaped: %s", raw)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".sync-log-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestJSONStore_ReadsLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync-log.json")
	legacy := `{
  "last_sync": "2025-01-02T03:04:05.123456",
  "synced_notes": [
    {"id": "abc", "title": "t", "slug": "t-abc", "category": "Claude_Code", "hash": "12345678"}
  ],
  "stats": {"total_articles": 1, "categories": {"Claude_Code": 1}}
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.LastSync.Year() != 2025 || m.LastSync.Nanosecond() != 123456000 {
		t.Errorf("last_sync = %v", m.LastSync)
	}
	c, ok := m.Notes[0].CategoryOf()
	if !ok || c.Key != "claude" {
		t.Errorf("category = %v, %v", c, ok)
	}
}

func TestJSONStore_NullLastSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync-log.json")
	_ = os.WriteFile(path, []byte(`{"synced_notes": [], "last_sync": null}`), 0o644)
	m, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !m.LastSync.IsZero() || m.Stats.Categories == nil {
		t.Errorf("manifest = %+v", m)
	}
}

func TestJSONStore_CorruptFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync-log.json")
	_ = os.WriteFile(path, []byte(`{"synced_notes": [`), 0o644)
	_, err := NewJSONStore(path).Load()
	if !errors.Is(err, apperr.ErrManifestUnreadable) {
		t.Errorf("err = %v, want ErrManifestUnreadable", err)
	}
}

func TestJSONStore_UnreadableIsError(t *testing.T) {
	// A directory in place of the file cannot be read.
	path := t.TempDir()
	_, err := NewJSONStore(path).Load()
	if !errors.Is(err, apperr.ErrManifestUnreadable) {
		t.Errorf("err = %v, want ErrManifestUnreadable", err)
	}
}

func TestJSONStore_EmptyNotesWrittenAsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync-log.json")
	s := NewJSONStore(path)
	for _, m := range []*Manifest{Empty(), {Stats: Stats{Categories: map[string]int{}}}} {
		if err := s.Save(m); err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"synced_notes": []`) {
			t.Errorf("synced_notes not an empty array:\n%s", data)
		}
	}
}

func TestLookup(t *testing.T) {
	m := sample()
	if m.Lookup()["n2"].Slug != "ai-news-n2" {
		t.Error("lookup by id failed")
	}
	if m.Lookup()["n1"].Hash != "aaaa1111" {
		t.Error("hash by id failed")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("etcd", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
}
