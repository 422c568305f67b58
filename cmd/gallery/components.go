package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fdqms/gallery-backend/pkg/cli"
	"github.com/fdqms/gallery-backend/pkg/config"
	"github.com/fdqms/gallery-backend/pkg/deletion/snapshot"
	"github.com/fdqms/gallery-backend/pkg/purge"
	"github.com/fdqms/gallery-backend/pkg/purge/media"
	"github.com/fdqms/gallery-backend/pkg/purge/records"
	"github.com/fdqms/gallery-backend/pkg/telemetry/logging"
)

// loadConfig reads the configuration for commands that do not hot reload.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", "failed to load configuration", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg and installs it as default.
func newLogger(cfg *config.Config, levelOverride string) (*slog.Logger, *slog.LevelVar, error) {
	level := cfg.Telemetry.Logging.Level
	if levelOverride != "" {
		level = levelOverride
	}

	logger, levelVar, err := logging.New(logging.Config{
		Level:  level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return nil, nil, cli.NewConfigError("telemetry.logging", "invalid logging configuration", err)
	}
	slog.SetDefault(logger)
	return logger, levelVar, nil
}

// openSnapshot opens the configured registry snapshot store.
func openSnapshot(cfg *config.Config) (snapshot.Store, error) {
	store, err := snapshot.New(cfg.Deletion.Snapshot.Backend, cfg.Deletion.Snapshot.Path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return store, nil
}

// purgeStack is the purger together with the stores it owns.
type purgeStack struct {
	purger  purge.Purger
	records *records.SQLiteStore
}

func (p *purgeStack) Close() error {
	return p.records.Close()
}

// openPurger connects the account database and media storage.
func openPurger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*purgeStack, error) {
	recordStore, err := records.NewSQLiteStore(records.Config{
		Path:         cfg.Purge.Database.Path,
		MaxOpenConns: cfg.Purge.Database.MaxOpenConns,
		BusyTimeout:  cfg.Purge.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open records store: %w", err)
	}

	mediaStore, err := media.New(ctx, media.Config{
		Backend:  cfg.Purge.Media.Backend,
		LocalDir: cfg.Purge.Media.LocalDir,
		S3: media.S3Config{
			Bucket:         cfg.Purge.Media.S3.Bucket,
			Region:         cfg.Purge.Media.S3.Region,
			Endpoint:       cfg.Purge.Media.S3.Endpoint,
			Prefix:         cfg.Purge.Media.S3.Prefix,
			ForcePathStyle: cfg.Purge.Media.S3.ForcePathStyle,
		},
	})
	if err != nil {
		recordStore.Close()
		return nil, fmt.Errorf("open media store: %w", err)
	}

	return &purgeStack{
		purger:  purge.NewGalleryPurger(recordStore, mediaStore, logger),
		records: recordStore,
	}, nil
}
