// Package manifest persists the record of the previous sync pass.
package manifest

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/starford/kbsite/internal/classify"
	"github.com/starford/kbsite/internal/models"
)

// Manifest is the state carried from one sync pass to the next.
type Manifest struct {
	LastSync Timestamp `json:"last_sync"`
	Notes    []Entry   `json:"synced_notes"`
	Stats    Stats     `json:"stats"`
}

// Entry records one synced note and the fingerprint it was rendered with.
type Entry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Category    string `json:"category"`
	CategoryKey string `json:"category_key,omitempty"`
	Hash        string `json:"hash"`
}

// Stats are the aggregate counts of a pass.
type Stats struct {
	TotalArticles int            `json:"total_articles"`
	Categories    map[string]int `json:"categories"`
}

// Store loads and saves manifests.
type Store interface {
	// Load returns the stored manifest, or an empty one when nothing has been
	// stored yet. Any other failure wraps apperr.ErrManifestUnreadable.
	Load() (*Manifest, error)
	// Save replaces the stored manifest.
	Save(m *Manifest) error
	Close() error
}

// Empty returns a manifest for a first run.
func Empty() *Manifest {
	return &Manifest{Notes: []Entry{}, Stats: Stats{Categories: map[string]int{}}}
}

// Lookup returns the entries keyed by note ID.
func (m *Manifest) Lookup() map[string]Entry {
	out := make(map[string]Entry, len(m.Notes))
	for _, e := range m.Notes {
		out[e.ID] = e
	}
	return out
}

// CategoryOf resolves the category stored on an entry. Entries written
// without a key resolve through the category name.
func (e Entry) CategoryOf() (models.Category, bool) {
	if e.CategoryKey != "" {
		return models.Category{Name: e.Category, Key: e.CategoryKey}, true
	}
	return classify.ByName(e.Category)
}

// Timestamp is a sync time. It decodes RFC 3339 as well as zone-less ISO
// timestamps and null.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"}

// MarshalJSON encodes the time as RFC 3339, or null when unset.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON decodes any of the accepted layouts.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var parsed time.Time
		if parsed, err = time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, err
}
