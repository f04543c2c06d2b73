// Package cache persists inferred schemas in a SQLite sidecar so repeated
// runs over a large unchanged dataset skip re-inference. Entries key on
// (source path, size, mtime); any change to the file invalidates its entry
// by missing the key.
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/trellis-data/trellis/internal/schema"
)

// SchemaCache is a handle to the sidecar database.
type SchemaCache struct {
	db *sql.DB
}

// Open opens or creates the sidecar at dbPath and ensures its schema.
func Open(dbPath string) (*SchemaCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Sidecar writes are rare and disposable; favor speed over durability.
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}

	ddl := `
	CREATE TABLE IF NOT EXISTS schemas (
		source TEXT NOT NULL,
		size INTEGER NOT NULL,
		mtime INTEGER NOT NULL,
		schema JSON NOT NULL,
		PRIMARY KEY (source, size, mtime)
	) WITHOUT ROWID;
	`
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SchemaCache{db: db}, nil
}

// Get returns the cached schema for a source file state, if present.
func (c *SchemaCache) Get(sourcePath string, size, mtime int64) (*schema.Schema, bool, error) {
	var encoded []byte
	err := c.db.QueryRow(
		"SELECT schema FROM schemas WHERE source = ? AND size = ? AND mtime = ?",
		sourcePath, size, mtime,
	).Scan(&encoded)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query schema cache: %w", err)
	}
	s, err := schema.Decode(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached schema: %w", err)
	}
	return s, true, nil
}

// Put stores the schema for a source file state, replacing stale entries
// for the same path.
func (c *SchemaCache) Put(sourcePath string, size, mtime int64, s *schema.Schema) error {
	encoded, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if _, err := c.db.Exec("DELETE FROM schemas WHERE source = ?", sourcePath); err != nil {
		return fmt.Errorf("evict stale schema: %w", err)
	}
	if _, err := c.db.Exec(
		"INSERT OR REPLACE INTO schemas (source, size, mtime, schema) VALUES (?, ?, ?, ?)",
		sourcePath, size, mtime, encoded,
	); err != nil {
		return fmt.Errorf("store schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (c *SchemaCache) Close() error {
	return c.db.Close()
}
