// ABOUTME: SQLite implementation of the link Store using modernc.org/sqlite
// ABOUTME: Stores the whole list as one JSON array row with automatic schema creation

package links

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a single-row key/value table
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite store at the given path.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "links")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps concurrent reads cheap while a save is in flight
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS link_lists (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite link store initialized", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get returns the stored list, or ErrNotFound when no list has been saved.
func (s *SQLiteStore) Get(ctx context.Context) ([]Link, error) {
	query := `SELECT value FROM link_lists WHERE key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, StorageKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading link list: %w", err)
	}

	var list []Link
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		return nil, fmt.Errorf("decoding link list: %w", err)
	}
	return list, nil
}

// Put replaces the stored list in a single write.
func (s *SQLiteStore) Put(ctx context.Context, list []Link) error {
	value, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding link list: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO link_lists (key, value, updated_at)
		VALUES (?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		StorageKey,
		string(value),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing link list: %w", err)
	}

	s.logger.Debug("saved link list", "count", len(list))
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
