package config

import "time"

// Default values for configuration fields.
const (
	// Deletion defaults
	DefaultGracePeriod     = 30 * 24 * time.Hour
	DefaultSweepInterval   = 12 * time.Hour
	DefaultSnapshotBackend = "file"
	DefaultSnapshotPath    = "data/pending_deletions.json"

	// Purge defaults
	DefaultDatabasePath         = "data/gallery.db"
	DefaultDatabaseMaxOpenConns = 4
	DefaultDatabaseBusyTimeout  = 5 * time.Second
	DefaultMediaBackend         = "local"
	DefaultMediaLocalDir        = "images"

	// Server defaults
	DefaultServerEnabled   = true
	DefaultListenAddress   = "127.0.0.1:8081"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "gallery"

	// Tracing defaults
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "gallery"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
)

// Default returns a Config with every field set to its default value.
// Loading starts from this value so that booleans defaulting to true can
// still be switched off in YAML.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Enabled = DefaultServerEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Deletion defaults
	if cfg.Deletion.GracePeriod == 0 {
		cfg.Deletion.GracePeriod = DefaultGracePeriod
	}
	if cfg.Deletion.SweepInterval == 0 {
		cfg.Deletion.SweepInterval = DefaultSweepInterval
	}
	if cfg.Deletion.Snapshot.Backend == "" {
		cfg.Deletion.Snapshot.Backend = DefaultSnapshotBackend
	}
	if cfg.Deletion.Snapshot.Path == "" {
		cfg.Deletion.Snapshot.Path = DefaultSnapshotPath
	}

	// Purge defaults
	if cfg.Purge.Database.Path == "" {
		cfg.Purge.Database.Path = DefaultDatabasePath
	}
	if cfg.Purge.Database.MaxOpenConns == 0 {
		cfg.Purge.Database.MaxOpenConns = DefaultDatabaseMaxOpenConns
	}
	if cfg.Purge.Database.BusyTimeout == 0 {
		cfg.Purge.Database.BusyTimeout = DefaultDatabaseBusyTimeout
	}
	if cfg.Purge.Media.Backend == "" {
		cfg.Purge.Media.Backend = DefaultMediaBackend
	}
	if cfg.Purge.Media.LocalDir == "" {
		cfg.Purge.Media.LocalDir = DefaultMediaLocalDir
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
}
