// Package source reads note collections exported by the knowledge base.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/starford/kbsite/internal/apperr"
	"github.com/starford/kbsite/internal/models"
)

// Source yields the notes for one sync pass.
type Source interface {
	Notes(ctx context.Context) ([]models.Note, error)
}

// File reads notes from a JSON export: either {"notes": [...]} or a bare array.
type File struct {
	Path string
}

// NewFile returns a Source reading the export at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Notes decodes the export file.
func (f *File) Notes(_ context.Context) ([]models.Note, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("source: %s: %w", f.Path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", f.Path, err)
	}
	notes, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", f.Path, err)
	}
	return notes, nil
}

// Remove deletes the export file once it has been consumed.
func (f *File) Remove() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("source: remove %s: %w", f.Path, err)
	}
	return nil
}

// Decode parses an export document.
func Decode(data []byte) ([]models.Note, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var notes []models.Note
		if err := json.Unmarshal(data, &notes); err != nil {
			return nil, fmt.Errorf("decode notes: %w", err)
		}
		return notes, nil
	}
	var doc struct {
		Notes []models.Note `json:"notes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return doc.Notes, nil
}
