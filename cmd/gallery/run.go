package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/fdqms/gallery-backend/pkg/cli"
	"github.com/fdqms/gallery-backend/pkg/config"
	"github.com/fdqms/gallery-backend/pkg/deletion"
	"github.com/fdqms/gallery-backend/pkg/deletion/sweep"
	"github.com/fdqms/gallery-backend/pkg/server"
	"github.com/fdqms/gallery-backend/pkg/telemetry/health"
	"github.com/fdqms/gallery-backend/pkg/telemetry/logging"
	"github.com/fdqms/gallery-backend/pkg/telemetry/metrics"
	"github.com/fdqms/gallery-backend/pkg/telemetry/tracing"
)

// tracerShutdownTimeout bounds the final span flush.
const tracerShutdownTimeout = 5 * time.Second

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the deletion service",
	Long: `Start the deletion service with the specified configuration.

Pending deletions are restored from the snapshot, the sweep scheduler starts
and the internal HTTP API begins accepting requests. On SIGINT or SIGTERM the
server and scheduler stop and the registry is written back to the snapshot.

Examples:
  # Start with default config
  gallery run

  # Start with custom config
  gallery run --config /etc/gallery/gallery.yaml

  # Override listen address
  gallery run --listen 0.0.0.0:8081

  # Log matured deletions without purging them
  gallery run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "log due deletions without purging them")
}

// runOptions carries process-level settings into run.
type runOptions struct {
	ConfigPath string
	DryRun     bool
	Logger     *slog.Logger
	LevelVar   *slog.LevelVar
	Out        io.Writer
}

func runService(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("config", "failed to load configuration", err)
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("flags", "invalid override", err)
	}

	logger, levelVar, err := newLogger(cfg, "")
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context(), logger)
	defer stop()

	err = run(ctx, cfg, runOptions{
		ConfigPath: config.Path(),
		DryRun:     runFlags.dryRun,
		Logger:     logger,
		LevelVar:   levelVar,
		Out:        cmd.OutOrStdout(),
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// run wires the service together and blocks until ctx is cancelled or the
// HTTP server fails. The registry snapshot is saved on every exit path once
// it has been loaded.
func run(ctx context.Context, cfg *config.Config, opts runOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, Version)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var (
		collector        *metrics.Collector
		deletionObserver deletion.Observer
		sweepObserver    sweep.Observer
	)
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics.Namespace)
		deletionObserver = collector.Deletion
		sweepObserver = collector.Deletion
	}
	observeSnapshot := func(operation string, err error) {
		if collector != nil {
			collector.Deletion.ObserveSnapshot(operation, err)
		}
	}

	stack, err := openPurger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	store, err := openSnapshot(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Load(ctx)
	observeSnapshot("load", err)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	registry := deletion.NewRegistryFrom(entries)
	logger.Info("registry restored",
		"pending", registry.Len(),
		"backend", cfg.Deletion.Snapshot.Backend,
		"path", cfg.Deletion.Snapshot.Path,
	)

	service := deletion.NewService(registry, &deletion.ServiceConfig{
		GracePeriod: cfg.Deletion.GracePeriod,
		Observer:    deletionObserver,
		Logger:      logger,
	})
	sweeper := sweep.NewSweeper(registry, stack.purger, &sweep.Config{
		Observer: sweepObserver,
		Logger:   logger,
		Tracer:   tracer.Tracer(),
		DryRun:   opts.DryRun,
	})
	scheduler := sweep.NewScheduler(sweeper, cfg.Deletion.SweepInterval, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := scheduler.Start(runCtx); err != nil {
		return fmt.Errorf("start sweep scheduler: %w", err)
	}
	if opts.DryRun {
		logger.Warn("dry run: matured deletions are logged, not purged")
	}

	serverErr := make(chan error, 1)
	serverDone := make(chan struct{})
	if cfg.Server.Enabled {
		checker := health.New(0)
		checker.RegisterCheck("records", health.PingCheck(stack.records))
		checker.RegisterCheck("scheduler", health.RunningCheck("sweep scheduler", scheduler.IsRunning))

		handler := server.NewHandler(server.Options{
			Service:     service,
			Checker:     checker,
			Version:     health.NewVersionInfo(Version, GitCommit, BuildDate),
			Metrics:     collector,
			MetricsPath: cfg.Telemetry.Metrics.Path,
			Logger:      logger,
		})
		srv := server.NewServer(&cfg.Server, handler, logger)

		go func() {
			defer close(serverDone)
			if err := srv.Start(runCtx); err != nil {
				serverErr <- err
			}
		}()
	} else {
		close(serverDone)
	}

	if cfg.Watch && opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(opts.ConfigPath, config.DefaultDebounceInterval, logger)
		if err != nil {
			logger.Warn("config watching disabled", "error", err)
		} else {
			defer watcher.Stop()
			go func() {
				err := watcher.Watch(runCtx, func() error {
					next, err := config.ReloadConfig()
					if err != nil {
						return err
					}
					applyReload(cfg, next, service, opts.LevelVar, logger)
					return nil
				})
				if err != nil {
					logger.Error("config watcher stopped", "error", err)
				}
			}()
		}
	}

	printBanner(opts.Out, cfg, scheduler)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
		logger.Error("http server failed, shutting down", "error", err)
	}

	cancel()
	<-serverDone
	scheduler.Stop()

	saveErr := store.Save(context.Background(), registry.Snapshot())
	observeSnapshot("save", saveErr)
	if saveErr != nil {
		logger.Error("failed to save snapshot", "path", cfg.Deletion.Snapshot.Path, "error", saveErr)
		return errors.Join(runErr, fmt.Errorf("save snapshot: %w", saveErr))
	}
	logger.Info("snapshot saved", "pending", registry.Len(), "path", cfg.Deletion.Snapshot.Path)

	return runErr
}

// applyReload applies the hot-reloadable subset of next. Other changes take
// effect on restart.
func applyReload(current, next *config.Config, service *deletion.Service, levelVar *slog.LevelVar, logger *slog.Logger) {
	service.SetGracePeriod(next.Deletion.GracePeriod)

	if levelVar != nil {
		if level, err := logging.ParseLevel(next.Telemetry.Logging.Level); err == nil {
			levelVar.Set(level)
		}
	}

	var restart []string
	if next.Deletion.SweepInterval != current.Deletion.SweepInterval {
		restart = append(restart, "deletion.sweep_interval")
	}
	if next.Deletion.Snapshot != current.Deletion.Snapshot {
		restart = append(restart, "deletion.snapshot")
	}
	if next.Purge != current.Purge {
		restart = append(restart, "purge")
	}
	if next.Server != current.Server {
		restart = append(restart, "server")
	}
	if len(restart) > 0 {
		logger.Warn("configuration changes require a restart", "sections", restart)
	}

	logger.Info("configuration reloaded",
		"grace_period", next.Deletion.GracePeriod,
		"log_level", next.Telemetry.Logging.Level,
	)
}

func printBanner(w io.Writer, cfg *config.Config, scheduler *sweep.Scheduler) {
	fmt.Fprintf(w, "Gallery v%s\n", Version)
	fmt.Fprintf(w, "✓ Grace period: %s\n", cfg.Deletion.GracePeriod)
	if next := scheduler.NextRun(); next != nil {
		fmt.Fprintf(w, "✓ Sweep every %s, next at %s\n", scheduler.Interval(), next.Format(time.RFC3339))
	}
	if cfg.Server.Enabled {
		fmt.Fprintf(w, "✓ Server listening on %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(w, "✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
		if cfg.Telemetry.Metrics.Enabled {
			fmt.Fprintf(w, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
		}
	}
}
