// Package config provides configuration management for the gallery
// deletion service.
//
// Configuration is read from a YAML file, layered over defaults and
// overridden by environment variables, then validated:
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GALLERY_SECTION_FIELD:
//
//   - GALLERY_DELETION_GRACE_PERIOD overrides deletion.grace_period
//   - GALLERY_PURGE_MEDIA_BACKEND overrides purge.media.backend
//   - GALLERY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// A variable that is set but cannot be parsed fails loading.
//
// # Singleton Pattern
//
//	if err := config.Initialize("gallery.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// # Hot Reload
//
// With watch enabled, Watcher observes the configuration file and the
// caller reloads via ReloadConfig. Only settings that can change safely at
// runtime (grace period, log level) are applied; the rest need a restart.
//
// # Example Configuration
//
//	deletion:
//	  grace_period: 720h
//	  sweep_interval: 12h
//	  snapshot:
//	    backend: file
//	    path: data/pending_deletions.json
//
//	purge:
//	  database:
//	    path: data/gallery.db
//	  media:
//	    backend: local
//	    local_dir: images
//
//	server:
//	  listen_address: 127.0.0.1:8081
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
