package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/kbsite/internal/apperr"
)

// JSONStore keeps the manifest in a single JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the manifest file. A missing file is a first run.
func (s *JSONStore) Load() (*Manifest, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", apperr.ErrManifestUnreadable, s.path, err)
	}
	m := Empty()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", apperr.ErrManifestUnreadable, s.path, err)
	}
	if m.Stats.Categories == nil {
		m.Stats.Categories = map[string]int{}
	}
	return m, nil
}

// Save writes the manifest atomically: tmp file, fsync, rename.
func (s *JSONStore) Save(m *Manifest) error {
	if m.Notes == nil {
		cp := *m
		cp.Notes = []Entry{}
		m = &cp
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("manifest: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sync-log-tmp-*")
	if err != nil {
		return fmt.Errorf("manifest: create temp: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("manifest: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("manifest: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("manifest: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("manifest: rename: %w", err)
	}
	success = true
	return nil
}

// Close is a no-op for file-backed manifests.
func (s *JSONStore) Close() error { return nil }
