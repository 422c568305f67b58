package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gallery.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
deletion:
  grace_period: 48h
  sweep_interval: 30m
  snapshot:
    backend: sqlite
    path: /var/lib/gallery/pending.db

purge:
  media:
    backend: s3
    s3:
      bucket: gallery-images
      region: eu-central-1
      force_path_style: true

server:
  enabled: false

telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Deletion.GracePeriod != 48*time.Hour {
		t.Errorf("expected grace period 48h, got %v", cfg.Deletion.GracePeriod)
	}
	if cfg.Deletion.SweepInterval != 30*time.Minute {
		t.Errorf("expected sweep interval 30m, got %v", cfg.Deletion.SweepInterval)
	}
	if cfg.Deletion.Snapshot.Backend != "sqlite" {
		t.Errorf("expected snapshot backend sqlite, got %q", cfg.Deletion.Snapshot.Backend)
	}
	if cfg.Purge.Media.S3.Bucket != "gallery-images" || !cfg.Purge.Media.S3.ForcePathStyle {
		t.Errorf("unexpected s3 config: %+v", cfg.Purge.Media.S3)
	}
	if cfg.Server.Enabled {
		t.Error("expected server to be disabled")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to be disabled")
	}

	// Defaults still apply to fields absent from the file.
	if cfg.Purge.Database.Path != DefaultDatabasePath {
		t.Errorf("expected default database path, got %q", cfg.Purge.Database.Path)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Deletion.GracePeriod != DefaultGracePeriod {
		t.Errorf("expected default grace period, got %v", cfg.Deletion.GracePeriod)
	}
	if cfg.Deletion.SweepInterval != DefaultSweepInterval {
		t.Errorf("expected default sweep interval, got %v", cfg.Deletion.SweepInterval)
	}
	if !cfg.Server.Enabled || !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected server and metrics to be enabled by default")
	}
	if cfg.Watch {
		t.Error("expected watch to be disabled by default")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "deletion: [unterminated",
			wantErr: "failed to parse",
		},
		{
			name:    "invalid duration",
			content: "deletion:\n  grace_period: soon\n",
			wantErr: "failed to parse",
		},
		{
			name:    "negative grace period",
			content: "deletion:\n  grace_period: -1h\n",
			wantErr: "deletion.grace_period",
		},
		{
			name:    "unknown media backend",
			content: "purge:\n  media:\n    backend: ftp\n",
			wantErr: "purge.media.backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
deletion:
  grace_period: 48h
server:
  listen_address: 127.0.0.1:9000
`)

	t.Setenv("GALLERY_DELETION_GRACE_PERIOD", "72h")
	t.Setenv("GALLERY_SERVER_LISTEN_ADDRESS", "0.0.0.0:9100")
	t.Setenv("GALLERY_PURGE_DATABASE_MAX_OPEN_CONNS", "8")
	t.Setenv("GALLERY_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("GALLERY_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("GALLERY_WATCH", "true")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Deletion.GracePeriod != 72*time.Hour {
		t.Errorf("expected grace period 72h, got %v", cfg.Deletion.GracePeriod)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9100" {
		t.Errorf("expected listen address override, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Purge.Database.MaxOpenConns != 8 {
		t.Errorf("expected max open conns 8, got %d", cfg.Purge.Database.MaxOpenConns)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics disabled by env")
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("expected sample ratio 0.25, got %v", cfg.Telemetry.Tracing.SampleRatio)
	}
	if !cfg.Watch {
		t.Error("expected watch enabled by env")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("GALLERY_DELETION_SWEEP_INTERVAL", "twice a day")

	_, err := LoadConfigWithEnvOverrides("")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "GALLERY_DELETION_SWEEP_INTERVAL" {
		t.Errorf("unexpected field %q", verr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Deletion.Snapshot.Path != DefaultSnapshotPath {
		t.Errorf("expected default snapshot path, got %q", cfg.Deletion.Snapshot.Path)
	}
}
