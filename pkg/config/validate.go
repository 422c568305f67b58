package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// minSweepInterval is the resolution of the sweep schedule.
const minSweepInterval = time.Second

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateDeletion(&cfg.Deletion)...)
	errs = append(errs, validatePurge(&cfg.Purge)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateDeletion(cfg *DeletionConfig) []FieldError {
	var errs []FieldError

	if cfg.GracePeriod <= 0 {
		errs = append(errs, FieldError{
			Field:   "deletion.grace_period",
			Message: "grace period must be positive",
		})
	}
	if cfg.SweepInterval < minSweepInterval {
		errs = append(errs, FieldError{
			Field:   "deletion.sweep_interval",
			Message: fmt.Sprintf("sweep interval must be at least %s", minSweepInterval),
		})
	}

	switch cfg.Snapshot.Backend {
	case "file", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "deletion.snapshot.backend",
			Message: fmt.Sprintf("invalid snapshot backend %q: must be 'file' or 'sqlite'", cfg.Snapshot.Backend),
		})
	}
	if cfg.Snapshot.Path == "" {
		errs = append(errs, FieldError{
			Field:   "deletion.snapshot.path",
			Message: "snapshot path is required",
		})
	}

	return errs
}

func validatePurge(cfg *PurgeConfig) []FieldError {
	var errs []FieldError

	if cfg.Database.Path == "" {
		errs = append(errs, FieldError{
			Field:   "purge.database.path",
			Message: "database path is required",
		})
	}
	if cfg.Database.MaxOpenConns < 1 {
		errs = append(errs, FieldError{
			Field:   "purge.database.max_open_conns",
			Message: "max open connections must be at least 1",
		})
	}
	if cfg.Database.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "purge.database.busy_timeout",
			Message: "busy timeout cannot be negative",
		})
	}

	switch cfg.Media.Backend {
	case "local":
		if cfg.Media.LocalDir == "" {
			errs = append(errs, FieldError{
				Field:   "purge.media.local_dir",
				Message: "local directory is required for the local backend",
			})
		}
	case "s3":
		if cfg.Media.S3.Bucket == "" {
			errs = append(errs, FieldError{
				Field:   "purge.media.s3.bucket",
				Message: "bucket is required for the s3 backend",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "purge.media.backend",
			Message: fmt.Sprintf("invalid media backend %q: must be 'local' or 's3'", cfg.Media.Backend),
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	timeouts := []struct {
		field string
		value time.Duration
	}{
		{"server.read_timeout", cfg.ReadTimeout},
		{"server.write_timeout", cfg.WriteTimeout},
		{"server.idle_timeout", cfg.IdleTimeout},
		{"server.shutdown_timeout", cfg.ShutdownTimeout},
	}
	for _, to := range timeouts {
		if to.value < 0 {
			errs = append(errs, FieldError{
				Field:   to.field,
				Message: "timeout cannot be negative",
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
		if !validSamplers[cfg.Tracing.Sampler] {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %v", cfg.Tracing.SampleRatio),
			})
		}
	}

	return errs
}
