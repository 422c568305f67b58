// Package sweep executes matured account deletions.
//
// A Sweeper performs one scan: it asks the registry which deletions are due,
// purges each account in turn and retires the entry only after the purge
// succeeded. The Scheduler runs the Sweeper periodically.
package sweep

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fdqms/gallery-backend/pkg/deletion"
	"github.com/fdqms/gallery-backend/pkg/purge"
	"github.com/fdqms/gallery-backend/pkg/telemetry/logging"
	"github.com/fdqms/gallery-backend/pkg/telemetry/tracing"
)

// Observer receives sweep outcomes, typically for metrics.
type Observer interface {
	// ObserveSweep records a completed scan.
	ObserveSweep(duration time.Duration, purged, failed int)

	// ObservePurge records a single purge ("success" or "failure").
	ObservePurge(result string, duration time.Duration)

	// SetPending records the current number of pending deletions.
	SetPending(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveSweep(time.Duration, int, int) {}
func (nopObserver) ObservePurge(string, time.Duration)   {}
func (nopObserver) SetPending(int)                       {}

// Config contains configuration for a Sweeper.
type Config struct {
	// Clock returns the current time. Default: time.Now
	Clock deletion.Clock

	// Observer receives sweep outcomes. Default: no-op
	Observer Observer

	// Logger is the base logger. Default: slog.Default()
	Logger *slog.Logger

	// Tracer creates sweep and purge spans. Default: the global provider
	Tracer trace.Tracer

	// DryRun logs due users without purging or retiring them.
	DryRun bool
}

// Result summarizes one scan.
type Result struct {
	SweepID   string
	StartedAt time.Time
	Due       []string
	Purged    []string
	Failed    []string
	// Skipped counts due users not attempted: dry run, interrupted scan, or
	// cancelled after the scan began.
	Skipped int
}

// Sweeper purges matured deletions from a registry.
type Sweeper struct {
	registry *deletion.Registry
	purger   purge.Purger
	clock    deletion.Clock
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
	dryRun   bool

	// mu serializes scans; attempts counts consecutive failures per user.
	mu       sync.Mutex
	attempts map[string]int
}

// NewSweeper creates a Sweeper.
func NewSweeper(registry *deletion.Registry, purger purge.Purger, cfg *Config) *Sweeper {
	if cfg == nil {
		cfg = &Config{}
	}

	s := &Sweeper{
		registry: registry,
		purger:   purger,
		clock:    cfg.Clock,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		tracer:   cfg.Tracer,
		dryRun:   cfg.DryRun,
		attempts: make(map[string]int),
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracing.InstrumentationName)
	}
	s.logger = s.logger.With("component", "deletion.sweep")

	return s
}

// Sweep runs one scan at the current time.
func (s *Sweeper) Sweep(ctx context.Context) Result {
	return s.SweepAt(ctx, s.clock())
}

// SweepAt runs one scan treating now as the current time.
//
// Users are purged one after another without holding the registry lock.
// A failed purge leaves the entry in place for the next scan. Cancelling ctx
// stops the scan before the next user.
func (s *Sweeper) SweepAt(ctx context.Context, now time.Time) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := Result{
		SweepID:   uuid.NewString(),
		StartedAt: now,
		Due:       s.registry.Due(now),
	}
	ctx = logging.WithSweepID(ctx, result.SweepID)
	ctx, span := s.tracer.Start(ctx, "deletion.sweep", trace.WithAttributes(
		attribute.String(tracing.AttrSweepID, result.SweepID),
		attribute.Int(tracing.AttrDue, len(result.Due)),
		attribute.Bool(tracing.AttrDryRun, s.dryRun),
	))
	defer span.End()

	logger := s.logger.With("sweep_id", result.SweepID)
	logger.Info("sweep started", "due", len(result.Due), "dry_run", s.dryRun)

	attempts := make(map[string]int, len(s.attempts))
	for i, userID := range result.Due {
		if err := ctx.Err(); err != nil {
			result.Skipped += len(result.Due) - i
			logger.Warn("sweep interrupted", "remaining", len(result.Due)-i, "error", err)
			break
		}

		if s.dryRun {
			result.Skipped++
			logger.Info("dry run: would purge account", "user_id", userID)
			continue
		}

		if _, pending := s.registry.Deadline(userID); !pending {
			result.Skipped++
			logger.Info("deletion cancelled before purge", "user_id", userID)
			continue
		}

		purgeStart := time.Now()
		err := s.purge(ctx, userID)
		elapsed := time.Since(purgeStart)

		if err != nil {
			attempts[userID] = s.attempts[userID] + 1
			result.Failed = append(result.Failed, userID)
			s.observer.ObservePurge("failure", elapsed)
			logger.Error("purge failed, will retry next sweep",
				"user_id", userID,
				"attempt", attempts[userID],
				"error", err,
			)
			continue
		}

		// A cancel that raced the purge already removed the entry.
		s.registry.RemoveIfPresent(userID)
		result.Purged = append(result.Purged, userID)
		s.observer.ObservePurge("success", elapsed)
		logger.Info("account deleted", "user_id", userID, "duration", elapsed)
	}

	// Users interrupted mid-scan keep their failure count.
	for userID, n := range s.attempts {
		if _, ok := attempts[userID]; !ok && !slices.Contains(result.Purged, userID) {
			if _, pending := s.registry.Deadline(userID); pending {
				attempts[userID] = n
			}
		}
	}
	s.attempts = attempts

	span.SetAttributes(
		attribute.Int(tracing.AttrPurged, len(result.Purged)),
		attribute.Int(tracing.AttrFailed, len(result.Failed)),
	)
	s.observer.SetPending(s.registry.Len())
	s.observer.ObserveSweep(time.Since(start), len(result.Purged), len(result.Failed))
	logger.Info("sweep completed",
		"purged", len(result.Purged),
		"failed", len(result.Failed),
		"skipped", result.Skipped,
		"duration", time.Since(start),
	)

	return result
}

func (s *Sweeper) purge(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "deletion.purge", trace.WithAttributes(tracing.UserID(userID)))
	err := s.purger.Purge(ctx, userID)
	tracing.Finish(span, err)
	return err
}

// Attempts returns the number of consecutive failed purges for userID.
func (s *Sweeper) Attempts(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[userID]
}
