package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "GALLERY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields absent from the file keep their defaults. The result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the default configuration without validating.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention GALLERY_SECTION_FIELD (e.g., GALLERY_SERVER_LISTEN_ADDRESS).
// An empty path loads the defaults.
//
// The loading sequence is:
// 1. Start from default values
// 2. Load YAML from file
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies GALLERY_* environment variables to cfg.
// A variable that is set but cannot be parsed is an error.
func applyEnvOverrides(cfg *Config) error {
	e := envReader{}

	// Deletion overrides
	e.setDuration("DELETION_GRACE_PERIOD", &cfg.Deletion.GracePeriod)
	e.setDuration("DELETION_SWEEP_INTERVAL", &cfg.Deletion.SweepInterval)
	e.setString("DELETION_SNAPSHOT_BACKEND", &cfg.Deletion.Snapshot.Backend)
	e.setString("DELETION_SNAPSHOT_PATH", &cfg.Deletion.Snapshot.Path)

	// Purge overrides
	e.setString("PURGE_DATABASE_PATH", &cfg.Purge.Database.Path)
	e.setInt("PURGE_DATABASE_MAX_OPEN_CONNS", &cfg.Purge.Database.MaxOpenConns)
	e.setDuration("PURGE_DATABASE_BUSY_TIMEOUT", &cfg.Purge.Database.BusyTimeout)
	e.setString("PURGE_MEDIA_BACKEND", &cfg.Purge.Media.Backend)
	e.setString("PURGE_MEDIA_LOCAL_DIR", &cfg.Purge.Media.LocalDir)
	e.setString("PURGE_MEDIA_S3_BUCKET", &cfg.Purge.Media.S3.Bucket)
	e.setString("PURGE_MEDIA_S3_REGION", &cfg.Purge.Media.S3.Region)
	e.setString("PURGE_MEDIA_S3_ENDPOINT", &cfg.Purge.Media.S3.Endpoint)
	e.setString("PURGE_MEDIA_S3_PREFIX", &cfg.Purge.Media.S3.Prefix)
	e.setBool("PURGE_MEDIA_S3_FORCE_PATH_STYLE", &cfg.Purge.Media.S3.ForcePathStyle)

	// Server overrides
	e.setBool("SERVER_ENABLED", &cfg.Server.Enabled)
	e.setString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	e.setDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.setDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.setDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	e.setDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Telemetry overrides
	e.setString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	e.setString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	e.setBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.setString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	e.setString("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	e.setBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	e.setString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	e.setBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	e.setString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	e.setFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)

	e.setBool("WATCH", &cfg.Watch)

	if len(e.errs) > 0 {
		return ValidationError{Errors: e.errs}
	}
	return nil
}

// envReader reads typed GALLERY_* variables and collects parse failures.
type envReader struct {
	errs []FieldError
}

func (e *envReader) lookup(name string) (string, bool) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (e *envReader) fail(name, val, kind string) {
	e.errs = append(e.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("invalid %s %q", kind, val),
	})
}

func (e *envReader) setString(name string, dst *string) {
	if val, ok := e.lookup(name); ok {
		*dst = val
	}
}

func (e *envReader) setDuration(name string, dst *time.Duration) {
	if val, ok := e.lookup(name); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(name, val, "duration")
			return
		}
		*dst = d
	}
}

func (e *envReader) setInt(name string, dst *int) {
	if val, ok := e.lookup(name); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			e.fail(name, val, "integer")
			return
		}
		*dst = i
	}
}

func (e *envReader) setBool(name string, dst *bool) {
	if val, ok := e.lookup(name); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(name, val, "boolean")
			return
		}
		*dst = b
	}
}

func (e *envReader) setFloat(name string, dst *float64) {
	if val, ok := e.lookup(name); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			e.fail(name, val, "number")
			return
		}
		*dst = f
	}
}
