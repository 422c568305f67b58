package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultInterval is the delay between two sweeps.
const DefaultInterval = 12 * time.Hour

// State is the scheduler's lifecycle state.
type State int32

const (
	// StateIdle means the scheduler is not running.
	StateIdle State = iota
	// StateSleeping means the scheduler is waiting for the next tick.
	StateSleeping
	// StateScanning means a sweep is in progress.
	StateScanning
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSleeping:
		return "sleeping"
	case StateScanning:
		return "scanning"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Scheduler runs a Sweeper at a fixed interval. At most one sweep runs at
// a time; a tick that fires during a sweep is skipped.
type Scheduler struct {
	sweeper  *Sweeper
	interval time.Duration
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
	state    atomic.Int32
	last     atomic.Pointer[Result]
}

// NewScheduler creates a Scheduler that sweeps every interval.
// Intervals below one second are rounded up by the cron schedule.
func NewScheduler(sweeper *Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With("component", "deletion.scheduler"),
	}
}

// Start begins periodic sweeping. The first sweep happens one interval after
// Start. Cancelling ctx stops the scheduler and interrupts a running sweep
// between users.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	logger := cronLogger{logger: s.logger}
	s.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.run(ctx)
	}))

	s.cron.Start()
	s.running = true
	s.state.Store(int32(StateSleeping))

	s.logger.Info("sweep scheduler started", "interval", s.interval)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// run executes one sweep.
func (s *Scheduler) run(ctx context.Context) {
	s.state.Store(int32(StateScanning))
	defer s.state.CompareAndSwap(int32(StateScanning), int32(StateSleeping))

	result := s.sweeper.Sweep(ctx)
	s.last.Store(&result)
}

// Stop stops the scheduler and waits for a running sweep to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		s.running = false
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running sweep to finish
		s.state.Store(int32(StateIdle))
		s.logger.Info("sweep scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Interval returns the sweep interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// NextRun returns the next scheduled sweep time, or nil if not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil || !s.running {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}

// LastResult returns the result of the most recent sweep.
func (s *Scheduler) LastResult() (Result, bool) {
	r := s.last.Load()
	if r == nil {
		return Result{}, false
	}
	return *r, true
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
