package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pending_deletions (
	user_id TEXT PRIMARY KEY,
	deadline TEXT NOT NULL
);
`

// SQLiteStore keeps the snapshot in a SQLite database.
// Save replaces the whole table inside one transaction.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the snapshot database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, NewSnapshotError(BackendSQLite, "mkdir", path, err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, NewSnapshotError(BackendSQLite, "open", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports single writer

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, NewSnapshotError(BackendSQLite, "create_schema", path, err)
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: slog.Default().With("component", "deletion.snapshot.sqlite"),
	}, nil
}

// Load returns every stored entry. A fresh database yields an empty map.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, deadline FROM pending_deletions`)
	if err != nil {
		return nil, NewSnapshotError(BackendSQLite, "load", s.path, err)
	}
	defer rows.Close()

	entries := make(map[string]time.Time)
	for rows.Next() {
		var userID, raw string
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, NewSnapshotError(BackendSQLite, "scan", s.path, err)
		}
		deadline, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, NewSnapshotError(BackendSQLite, "decode", s.path,
				fmt.Errorf("user %q: %w", userID, err))
		}
		entries[userID] = deadline
	}
	if err := rows.Err(); err != nil {
		return nil, NewSnapshotError(BackendSQLite, "load", s.path, err)
	}

	s.logger.Info("snapshot loaded", "path", s.path, "entries", len(entries))
	return entries, nil
}

// Save replaces the stored snapshot with entries.
func (s *SQLiteStore) Save(ctx context.Context, entries map[string]time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewSnapshotError(BackendSQLite, "begin", s.path, err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_deletions`); err != nil {
		return NewSnapshotError(BackendSQLite, "clear", s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pending_deletions (user_id, deadline) VALUES (?, ?)`)
	if err != nil {
		return NewSnapshotError(BackendSQLite, "prepare", s.path, err)
	}
	defer stmt.Close()

	for userID, deadline := range entries {
		if _, err := stmt.ExecContext(ctx, userID, deadline.UTC().Format(time.RFC3339Nano)); err != nil {
			return NewSnapshotError(BackendSQLite, "insert", s.path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewSnapshotError(BackendSQLite, "commit", s.path, err)
	}

	s.logger.Info("snapshot saved", "path", s.path, "entries", len(entries))
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
