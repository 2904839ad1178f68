// Package storage defines the site output file-system abstraction.
package storage

import "github.com/starford/kbsite/internal/models"

// Provider is the interface for output directory operations.
type Provider interface {
	// List returns metadata for every file under dir (relative to the output root).
	List(dir string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to the output root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the output root).
	Write(path string, content []byte) error
	// Exists reports whether a file exists at path.
	Exists(path string) (bool, error)
}
