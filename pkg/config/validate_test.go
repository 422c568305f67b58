package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:      "sweep interval below one second",
			modify:    func(c *Config) { c.Deletion.SweepInterval = 500 * time.Millisecond },
			wantField: "deletion.sweep_interval",
		},
		{
			name:      "unknown snapshot backend",
			modify:    func(c *Config) { c.Deletion.Snapshot.Backend = "redis" },
			wantField: "deletion.snapshot.backend",
		},
		{
			name:      "empty snapshot path",
			modify:    func(c *Config) { c.Deletion.Snapshot.Path = "" },
			wantField: "deletion.snapshot.path",
		},
		{
			name:      "s3 without bucket",
			modify:    func(c *Config) { c.Purge.Media.Backend = "s3" },
			wantField: "purge.media.s3.bucket",
		},
		{
			name:      "zero max open conns",
			modify:    func(c *Config) { c.Purge.Database.MaxOpenConns = 0 },
			wantField: "purge.database.max_open_conns",
		},
		{
			name:      "bad listen address",
			modify:    func(c *Config) { c.Server.ListenAddress = "localhost" },
			wantField: "server.listen_address",
		},
		{
			name: "bad listen address ignored when server disabled",
			modify: func(c *Config) {
				c.Server.Enabled = false
				c.Server.ListenAddress = "localhost"
			},
		},
		{
			name:      "invalid log level",
			modify:    func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "metrics path without slash",
			modify:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
		{
			name: "tracing with unknown sampler",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Sampler = "sometimes"
			},
			wantField: "telemetry.tracing.sampler",
		},
		{
			name: "tracing ratio out of range",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Sampler = "ratio"
				c.Telemetry.Tracing.SampleRatio = 2
			},
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name:   "tracing settings ignored when disabled",
			modify: func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for %q, got %v", tt.wantField, verr)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if single.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}}
	if !strings.Contains(multi.Error(), "2 errors") || !strings.Contains(multi.Error(), "  - b: worse") {
		t.Errorf("unexpected message %q", multi.Error())
	}
}
