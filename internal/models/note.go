// Package models defines the domain types shared across the site generator.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Note is one source item handed over by the notes export.
type Note struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Tags        []string        `json:"tags"`
	Content     json.RawMessage `json:"content"`
	ContentText string          `json:"contentText"`
	UpdatedAt   string          `json:"updatedAt"`
}

// Date returns the calendar part (YYYY-MM-DD) of UpdatedAt.
func (n Note) Date() string {
	if len(n.UpdatedAt) > 10 {
		return n.UpdatedAt[:10]
	}
	return n.UpdatedAt
}

// ShortID returns at most the first 8 characters of the note ID.
func (n Note) ShortID() string {
	if len(n.ID) > 8 {
		return n.ID[:8]
	}
	return n.ID
}

// Category is a topical bucket: a display name plus a URL-safe key.
type Category struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Display returns the name as shown on pages.
func (c Category) Display() string {
	return strings.ReplaceAll(c.Name, "_", " ")
}

// Article is the listing projection of a synced note.
type Article struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Tags     []string `json:"tags"`
	Updated  string   `json:"updated"`
	Category Category `json:"category"`
}

// Path returns the article page location relative to the site root.
func (a Article) Path() string {
	return "articles/" + a.Slug + ".html"
}

// FileMeta describes one file in the output directory.
type FileMeta struct {
	// Path is relative to the output root, slash-separated.
	Path      string
	Checksum  string
	UpdatedAt time.Time
}
