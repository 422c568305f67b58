package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStore_Delete(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("img"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	outside := filepath.Join(filepath.Dir(dir), "outside.jpg")

	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() failed: %v", err)
	}

	tests := []struct {
		name       string
		key        string
		wantErr    error
		wantAbsent string
	}{
		{name: "existing file", key: "a.jpg", wantAbsent: filepath.Join(dir, "a.jpg")},
		{name: "missing file", key: "missing.jpg"},
		{name: "empty key", key: "", wantErr: ErrInvalidKey},
		{name: "parent traversal", key: "../outside.jpg", wantErr: ErrInvalidKey},
		{name: "absolute path", key: outside, wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Delete(context.Background(), tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Delete(%q) error = %v, want %v", tt.key, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Delete(%q) failed: %v", tt.key, err)
			}
			if tt.wantAbsent != "" {
				if _, err := os.Stat(tt.wantAbsent); !os.IsNotExist(err) {
					t.Errorf("%s still exists", tt.wantAbsent)
				}
			}
		})
	}
}

func TestNewLocalStore_EmptyDir(t *testing.T) {
	if _, err := NewLocalStore(""); err == nil {
		t.Error("NewLocalStore(\"\") succeeded, want error")
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	if _, err := New(context.Background(), Config{Backend: "ftp"}); err == nil {
		t.Error("New() with unknown backend succeeded, want error")
	}
}
