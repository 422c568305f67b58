// Package records provides the gallery account database used by purges.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Schema is the gallery account schema.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	image TEXT NOT NULL,
	ratio REAL NOT NULL DEFAULT 1.0,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_user ON posts(user_id);

CREATE TABLE IF NOT EXISTS friendships (
	requester_id TEXT NOT NULL,
	addressee_id TEXT NOT NULL,
	accepted INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (requester_id, addressee_id)
);

CREATE INDEX IF NOT EXISTS idx_friendships_addressee ON friendships(addressee_id);
`

// ErrUserNotFound is returned when a referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// Config contains configuration for the SQLite record store.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore implements purge.RecordStore on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

// NewSQLiteStore opens the database at cfg.Path and creates the schema.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 4
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open records db: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records schema: %w", err)
	}

	logger := slog.Default().With("component", "purge.records.sqlite")
	logger.Info("records store initialized", "path", cfg.Path, "max_open_conns", cfg.MaxOpenConns)

	return &SQLiteStore{db: db, config: cfg, logger: logger}, nil
}

// MediaKeys returns the image keys of every post owned by userID.
// An unknown user has no media.
func (s *SQLiteStore) MediaKeys(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image FROM posts WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query media keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan media key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media keys: %w", err)
	}
	return keys, nil
}

// DeleteAccount removes the user, their posts and every friendship edge in
// either direction within one transaction.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	statements := []struct {
		name  string
		query string
		args  []any
	}{
		{"posts", `DELETE FROM posts WHERE user_id = ?`, []any{userID}},
		{"friendships", `DELETE FROM friendships WHERE requester_id = ? OR addressee_id = ?`, []any{userID, userID}},
		{"user", `DELETE FROM users WHERE id = ?`, []any{userID}},
	}

	var removed int64
	for _, stmt := range statements {
		res, err := tx.ExecContext(ctx, stmt.query, stmt.args...)
		if err != nil {
			return fmt.Errorf("delete %s: %w", stmt.name, err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Debug("account records deleted", "user_id", userID, "rows", removed)
	return nil
}

// CreateUser inserts a user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, userID, username, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, created_at) VALUES (?, ?, ?, ?)`,
		userID, username, email, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AddPost records a post with the given image key for userID.
func (s *SQLiteStore) AddPost(ctx context.Context, userID, postID, image string, ratio float64) error {
	exists, err := s.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("add post for %q: %w", userID, ErrUserNotFound)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, image, ratio, created_at) VALUES (?, ?, ?, ?, ?)`,
		postID, userID, image, ratio, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// AddFriendship records a friend request from requester to addressee.
func (s *SQLiteStore) AddFriendship(ctx context.Context, requesterID, addresseeID string, accepted bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO friendships (requester_id, addressee_id, accepted, created_at)
		 VALUES (?, ?, ?, ?)`,
		requesterID, addresseeID, accepted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}
	return nil
}

// UserExists reports whether a user record exists.
func (s *SQLiteStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query user: %w", err)
	}
	return n > 0, nil
}

// CountFriendships returns the number of friendship edges touching userID.
func (s *SQLiteStore) CountFriendships(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM friendships WHERE requester_id = ? OR addressee_id = ?`,
		userID, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count friendships: %w", err)
	}
	return n, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
