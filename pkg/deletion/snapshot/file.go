package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps the snapshot in a JSON file:
//
//	{
//	  "user:8f2c": "2025-04-01T12:00:00Z",
//	  "user:91ab": "2025-04-03T08:30:00Z"
//	}
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: slog.Default().With("component", "deletion.snapshot.file"),
	}
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot file. A missing file yields an empty map.
func (s *FileStore) Load(ctx context.Context) (map[string]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("no snapshot found, starting empty", "path", s.path)
		return map[string]time.Time{}, nil
	}
	if err != nil {
		return nil, NewSnapshotError(BackendFile, "read", s.path, err)
	}

	var entries map[string]time.Time
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, NewSnapshotError(BackendFile, "decode", s.path, err)
	}
	if entries == nil {
		entries = map[string]time.Time{}
	}
	if _, ok := entries[""]; ok {
		return nil, NewSnapshotError(BackendFile, "decode", s.path,
			fmt.Errorf("entry with empty user id"))
	}

	s.logger.Info("snapshot loaded", "path", s.path, "entries", len(entries))
	return entries, nil
}

// Save writes entries to a temporary file next to the target, syncs it and
// renames it over the previous snapshot.
func (s *FileStore) Save(ctx context.Context, entries map[string]time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if entries == nil {
		entries = map[string]time.Time{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return NewSnapshotError(BackendFile, "encode", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewSnapshotError(BackendFile, "mkdir", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return NewSnapshotError(BackendFile, "create", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return NewSnapshotError(BackendFile, "write", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return NewSnapshotError(BackendFile, "sync", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return NewSnapshotError(BackendFile, "close", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return NewSnapshotError(BackendFile, "rename", s.path, err)
	}

	s.logger.Info("snapshot saved", "path", s.path, "entries", len(entries))
	return nil
}

// Close implements Store. FileStore holds no open resources.
func (s *FileStore) Close() error {
	return nil
}
