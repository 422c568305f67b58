package deletion

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultGracePeriod is the delay between a deletion request and the
// earliest moment the account may be purged.
const DefaultGracePeriod = 30 * 24 * time.Hour

// ServiceConfig contains configuration for the lifecycle Service.
type ServiceConfig struct {
	// GracePeriod is added to the current time to form the deadline.
	// Default: 30 days
	GracePeriod time.Duration

	// Clock returns the current time. Default: time.Now
	Clock Clock

	// Observer receives request and cancel events. Default: no-op
	Observer Observer

	// Logger is the base logger. Default: slog.Default()
	Logger *slog.Logger
}

// Service is the lifecycle API consumed by the HTTP tier.
type Service struct {
	registry    *Registry
	gracePeriod atomic.Int64
	clock       Clock
	observer    Observer
	logger      *slog.Logger
}

// NewService creates a lifecycle Service on top of registry.
func NewService(registry *Registry, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = &ServiceConfig{}
	}

	s := &Service{
		registry: registry,
		clock:    cfg.Clock,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.observer == nil {
		s.observer = NopObserver()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "deletion.service")

	grace := cfg.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	s.gracePeriod.Store(int64(grace))

	s.observer.SetPending(registry.Len())
	return s
}

// RequestDeletion schedules the account for deletion once the grace period
// has elapsed. It fails with ErrAlreadyScheduled if a deletion is pending;
// the existing deadline is left untouched.
func (s *Service) RequestDeletion(ctx context.Context, userID string) (PendingDeletion, error) {
	deadline := s.clock().Add(s.GracePeriod())

	if err := s.registry.Schedule(userID, deadline); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyScheduled):
			s.observer.ObserveRequest("already_scheduled")
			s.logger.InfoContext(ctx, "deletion already scheduled", "user_id", userID)
		case errors.Is(err, ErrInvalidUserID):
			s.observer.ObserveRequest("invalid")
		}
		return PendingDeletion{}, err
	}

	s.observer.ObserveRequest("scheduled")
	s.observer.SetPending(s.registry.Len())
	s.logger.InfoContext(ctx, "deletion scheduled",
		"user_id", userID,
		"deadline", deadline,
	)

	return PendingDeletion{UserID: userID, Deadline: deadline}, nil
}

// CancelDeletion drops the pending deletion for userID, typically because the
// user logged in again. It always succeeds; the result reports whether a
// deletion was actually pending.
func (s *Service) CancelDeletion(ctx context.Context, userID string) bool {
	removed := s.registry.Cancel(userID)
	s.observer.ObserveCancel(removed)

	if removed {
		s.observer.SetPending(s.registry.Len())
		s.logger.InfoContext(ctx, "deletion cancelled", "user_id", userID)
	}
	return removed
}

// Pending returns the pending deletion for userID, if any.
func (s *Service) Pending(userID string) (PendingDeletion, bool) {
	deadline, ok := s.registry.Deadline(userID)
	if !ok {
		return PendingDeletion{}, false
	}
	return PendingDeletion{UserID: userID, Deadline: deadline}, true
}

// GracePeriod returns the grace period applied to new requests.
func (s *Service) GracePeriod() time.Duration {
	return time.Duration(s.gracePeriod.Load())
}

// SetGracePeriod changes the grace period for future requests.
// Deadlines already in the registry are not recomputed.
func (s *Service) SetGracePeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	old := time.Duration(s.gracePeriod.Swap(int64(d)))
	if old != d {
		s.logger.Info("grace period updated", "old", old, "new", d)
	}
}
