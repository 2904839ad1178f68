package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/kbsite/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	last_sync      TEXT    NOT NULL DEFAULT '',
	total_articles INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS synced_notes (
	position     INTEGER PRIMARY KEY,
	id           TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	slug         TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	category_key TEXT NOT NULL DEFAULT '',
	hash         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_synced_notes_id ON synced_notes(id);

CREATE TABLE IF NOT EXISTS category_stats (
	category TEXT PRIMARY KEY,
	count    INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore keeps the manifest in a SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %v", apperr.ErrManifestUnreadable, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: ping: %v", apperr.ErrManifestUnreadable, err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", apperr.ErrManifestUnreadable, err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Load reads the manifest. A database with no recorded run is a first run.
func (s *SQLiteStore) Load() (*Manifest, error) {
	var lastSync string
	var total int
	err := s.conn.QueryRow(`SELECT last_sync, total_articles FROM sync_runs WHERE id = 1`).Scan(&lastSync, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read run: %v", apperr.ErrManifestUnreadable, err)
	}

	m := Empty()
	m.Stats.TotalArticles = total
	if lastSync != "" {
		t, err := parseTimestamp(lastSync)
		if err != nil {
			return nil, fmt.Errorf("%w: last_sync: %v", apperr.ErrManifestUnreadable, err)
		}
		m.LastSync = Timestamp{t}
	}

	rows, err := s.conn.Query(`SELECT id, title, slug, category, category_key, hash FROM synced_notes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: read notes: %v", apperr.ErrManifestUnreadable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Slug, &e.Category, &e.CategoryKey, &e.Hash); err != nil {
			return nil, fmt.Errorf("%w: scan note: %v", apperr.ErrManifestUnreadable, err)
		}
		m.Notes = append(m.Notes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read notes: %v", apperr.ErrManifestUnreadable, err)
	}

	statRows, err := s.conn.Query(`SELECT category, count FROM category_stats`)
	if err != nil {
		return nil, fmt.Errorf("%w: read stats: %v", apperr.ErrManifestUnreadable, err)
	}
	defer statRows.Close()
	for statRows.Next() {
		var name string
		var count int
		if err := statRows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("%w: scan stats: %v", apperr.ErrManifestUnreadable, err)
		}
		m.Stats.Categories[name] = count
	}
	if err := statRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read stats: %v", apperr.ErrManifestUnreadable, err)
	}
	return m, nil
}

// Save replaces every stored row within one transaction.
func (s *SQLiteStore) Save(m *Manifest) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("manifest: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, stmt := range []string{`DELETE FROM synced_notes`, `DELETE FROM category_stats`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("manifest: clear: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO sync_runs (id, last_sync, total_articles)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_sync      = excluded.last_sync,
			total_articles = excluded.total_articles
	`, formatTimestamp(m.LastSync), m.Stats.TotalArticles)
	if err != nil {
		return fmt.Errorf("manifest: upsert run: %w", err)
	}

	if len(m.Notes) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO synced_notes (position, id, title, slug, category, category_key, hash) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("manifest: prepare note insert: %w", err)
		}
		defer stmt.Close()
		for i, e := range m.Notes {
			if _, err := stmt.Exec(i, e.ID, e.Title, e.Slug, e.Category, e.CategoryKey, e.Hash); err != nil {
				return fmt.Errorf("manifest: insert note: %w", err)
			}
		}
	}

	for name, count := range m.Stats.Categories {
		if _, err := tx.Exec(`INSERT INTO category_stats (category, count) VALUES (?, ?)`, name, count); err != nil {
			return fmt.Errorf("manifest: insert stats: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func formatTimestamp(t Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
