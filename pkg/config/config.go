package config

import "time"

// Config is the root configuration structure for the gallery deletion
// service.
type Config struct {
	// Deletion controls the grace period, sweep cadence and registry
	// snapshot location.
	Deletion DeletionConfig `yaml:"deletion"`

	// Purge configures the account database and media storage that a purge
	// removes data from.
	Purge PurgeConfig `yaml:"purge"`

	// Server contains the internal HTTP API configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch reloads the configuration file when it changes.
	// Only the grace period and log level are applied without a restart.
	// Default: false
	Watch bool `yaml:"watch"`
}

// DeletionConfig contains configuration for deferred account deletion.
type DeletionConfig struct {
	// GracePeriod is the delay between a deletion request and the purge.
	// Default: 720h (30 days)
	GracePeriod time.Duration `yaml:"grace_period"`

	// SweepInterval is the delay between two sweeps.
	// Default: 12h
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// Snapshot configures where pending deletions are persisted.
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// SnapshotConfig contains registry snapshot configuration.
type SnapshotConfig struct {
	// Backend is the snapshot backend.
	// Options: "file", "sqlite"
	// Default: "file"
	Backend string `yaml:"backend"`

	// Path is the snapshot file or database path.
	// Default: "data/pending_deletions.json"
	Path string `yaml:"path"`
}

// PurgeConfig contains configuration for the purge effector.
type PurgeConfig struct {
	// Database is the gallery account database.
	Database DatabaseConfig `yaml:"database"`

	// Media is the image storage.
	Media MediaConfig `yaml:"media"`
}

// DatabaseConfig contains SQLite account database configuration.
type DatabaseConfig struct {
	// Path is the database file path.
	// Default: "data/gallery.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// MediaConfig contains image storage configuration.
type MediaConfig struct {
	// Backend is the storage backend.
	// Options: "local", "s3"
	// Default: "local"
	Backend string `yaml:"backend"`

	// LocalDir is the image directory for the local backend.
	// Default: "images"
	LocalDir string `yaml:"local_dir"`

	// S3 configures the s3 backend.
	S3 S3Config `yaml:"s3"`
}

// S3Config contains S3 media storage configuration.
type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	Prefix         string `yaml:"prefix"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

// ServerConfig contains configuration for the internal HTTP API.
type ServerConfig struct {
	// Enabled starts the HTTP server.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8081"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive timeout.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "gallery"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled exports spans to an OTLP collector.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "gallery"
	ServiceName string `yaml:"service_name"`

	// Sampler is the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces kept by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}
