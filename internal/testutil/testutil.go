// Package testutil provides shared test helpers for output directories, manifests and notes.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/starford/kbsite/internal/manifest"
	"github.com/starford/kbsite/internal/models"
	"github.com/starford/kbsite/internal/storage"
)

// TestOutput creates a temporary output directory with a storage.Provider.
func TestOutput(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestManifest returns a JSON manifest store in a temporary directory and its path.
func TestManifest(t *testing.T) (string, *manifest.JSONStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sync-log.json")
	return path, manifest.NewJSONStore(path)
}

// Note builds a note whose body is a single paragraph of text. The preview
// mirrors the body so edits change the fingerprint.
func Note(id, title, text, updated string, tags ...string) models.Note {
	doc := fmt.Sprintf(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":%q}]}]}`, text)
	return models.Note{
		ID:          id,
		Title:       title,
		Tags:        tags,
		Content:     []byte(doc),
		ContentText: text,
		UpdatedAt:   updated,
	}
}
