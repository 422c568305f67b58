package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/fdqms/gallery-backend/pkg/deletion"
	"github.com/fdqms/gallery-backend/pkg/purge"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingPurger records purged users and fails the ones listed in failures.
type recordingPurger struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]int
}

func (p *recordingPurger) Purge(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, userID)
	if p.failures[userID] > 0 {
		p.failures[userID]--
		return purge.NewPurgeError(userID, purge.StageDeleteMedia, errors.New("disk unavailable"))
	}
	return nil
}

func (p *recordingPurger) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type recordingObserver struct {
	mu      sync.Mutex
	sweeps  int
	purges  map[string]int
	pending int
}

func (o *recordingObserver) ObserveSweep(d time.Duration, purged, failed int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sweeps++
}

func (o *recordingObserver) ObservePurge(result string, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.purges == nil {
		o.purges = make(map[string]int)
	}
	o.purges[result]++
}

func (o *recordingObserver) SetPending(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = n
}

func TestSweeper_EndToEnd(t *testing.T) {
	now := t0
	clock := func() time.Time { return now }

	registry := deletion.NewRegistry()
	svc := deletion.NewService(registry, &deletion.ServiceConfig{
		GracePeriod: time.Second,
		Clock:       clock,
	})
	purger := &recordingPurger{}
	sweeper := NewSweeper(registry, purger, &Config{Clock: clock})
	ctx := context.Background()

	for _, id := range []string{"u1", "u2"} {
		if _, err := svc.RequestDeletion(ctx, id); err != nil {
			t.Fatalf("RequestDeletion(%q) failed: %v", id, err)
		}
	}

	// u1 logs back in before the deadline.
	now = t0.Add(500 * time.Millisecond)
	if !svc.CancelDeletion(ctx, "u1") {
		t.Fatal("CancelDeletion(u1) = false, want true")
	}

	// Nothing is due yet.
	if result := sweeper.Sweep(ctx); len(result.Purged) != 0 {
		t.Errorf("early sweep purged %v", result.Purged)
	}

	now = t0.Add(2 * time.Second)
	result := sweeper.Sweep(ctx)

	if fmt.Sprint(result.Purged) != "[u2]" {
		t.Errorf("Purged = %v, want [u2]", result.Purged)
	}
	if result.SweepID == "" {
		t.Error("SweepID is empty")
	}
	if calls := purger.Calls(); fmt.Sprint(calls) != "[u2]" {
		t.Errorf("purger calls = %v, want [u2]", calls)
	}
	if due := registry.Due(t0.Add(3 * time.Second)); len(due) != 0 {
		t.Errorf("Due() after purge = %v, want empty", due)
	}

	// A later sweep does not purge u2 again.
	now = t0.Add(time.Hour)
	sweeper.Sweep(ctx)
	if calls := purger.Calls(); len(calls) != 1 {
		t.Errorf("purger called %d times, want 1", len(calls))
	}
}

func TestSweeper_FailureRetainsEntry(t *testing.T) {
	registry := deletion.NewRegistryFrom(map[string]time.Time{
		"u1": t0,
		"u2": t0,
	})
	purger := &recordingPurger{failures: map[string]int{"u1": 2}}
	observer := &recordingObserver{}
	sweeper := NewSweeper(registry, purger, &Config{Observer: observer})
	ctx := context.Background()

	result := sweeper.SweepAt(ctx, t0)
	if fmt.Sprint(result.Failed) != "[u1]" || fmt.Sprint(result.Purged) != "[u2]" {
		t.Fatalf("first sweep: failed=%v purged=%v", result.Failed, result.Purged)
	}
	if _, ok := registry.Deadline("u1"); !ok {
		t.Fatal("failed entry was removed")
	}
	if sweeper.Attempts("u1") != 1 {
		t.Errorf("Attempts(u1) = %d, want 1", sweeper.Attempts("u1"))
	}

	sweeper.SweepAt(ctx, t0.Add(time.Hour))
	if sweeper.Attempts("u1") != 2 {
		t.Errorf("Attempts(u1) = %d, want 2", sweeper.Attempts("u1"))
	}

	result = sweeper.SweepAt(ctx, t0.Add(2*time.Hour))
	if fmt.Sprint(result.Purged) != "[u1]" {
		t.Errorf("third sweep purged %v, want [u1]", result.Purged)
	}
	if sweeper.Attempts("u1") != 0 {
		t.Errorf("Attempts(u1) after success = %d, want 0", sweeper.Attempts("u1"))
	}
	if registry.Len() != 0 {
		t.Errorf("registry Len() = %d, want 0", registry.Len())
	}

	if observer.sweeps != 3 {
		t.Errorf("observed sweeps = %d, want 3", observer.sweeps)
	}
	if observer.purges["failure"] != 2 || observer.purges["success"] != 2 {
		t.Errorf("observed purges = %v", observer.purges)
	}
	if observer.pending != 0 {
		t.Errorf("observed pending = %d, want 0", observer.pending)
	}
}

func TestSweeper_CancelDuringPurge(t *testing.T) {
	registry := deletion.NewRegistryFrom(map[string]time.Time{"u1": t0})

	// The purger mutates the registry, which would deadlock if the sweep
	// held the registry lock across the purge.
	purger := purge.PurgerFunc(func(ctx context.Context, userID string) error {
		if !registry.Cancel(userID) {
			t.Errorf("Cancel(%q) during purge = false", userID)
		}
		return nil
	})
	sweeper := NewSweeper(registry, purger, nil)

	result := sweeper.SweepAt(context.Background(), t0)
	if fmt.Sprint(result.Purged) != "[u1]" {
		t.Errorf("Purged = %v, want [u1]", result.Purged)
	}
	if registry.Len() != 0 {
		t.Errorf("registry Len() = %d, want 0", registry.Len())
	}
}

func TestSweeper_ContextCancelStopsBetweenUsers(t *testing.T) {
	registry := deletion.NewRegistryFrom(map[string]time.Time{
		"a": t0,
		"b": t0,
		"c": t0,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var purged []string
	purger := purge.PurgerFunc(func(ctx context.Context, userID string) error {
		purged = append(purged, userID)
		cancel()
		return nil
	})
	sweeper := NewSweeper(registry, purger, nil)

	result := sweeper.SweepAt(ctx, t0)
	if fmt.Sprint(purged) != "[a]" {
		t.Errorf("purged = %v, want [a]", purged)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if registry.Len() != 2 {
		t.Errorf("registry Len() = %d, want 2", registry.Len())
	}
}

func TestSweeper_CancelledMidScanIsSkipped(t *testing.T) {
	registry := deletion.NewRegistryFrom(map[string]time.Time{
		"a": t0,
		"b": t0,
	})

	var purged []string
	purger := purge.PurgerFunc(func(ctx context.Context, userID string) error {
		purged = append(purged, userID)
		registry.Cancel("b")
		return nil
	})
	sweeper := NewSweeper(registry, purger, nil)

	result := sweeper.SweepAt(context.Background(), t0)
	if fmt.Sprint(purged) != "[a]" {
		t.Errorf("purged = %v, want [a]", purged)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if registry.Len() != 0 {
		t.Errorf("registry Len() = %d, want 0", registry.Len())
	}
}

func TestSweeper_DryRun(t *testing.T) {
	registry := deletion.NewRegistryFrom(map[string]time.Time{"u1": t0})
	purger := &recordingPurger{}
	sweeper := NewSweeper(registry, purger, &Config{DryRun: true})

	result := sweeper.SweepAt(context.Background(), t0)
	if result.Skipped != 1 || len(result.Purged) != 0 {
		t.Errorf("dry run result = %+v", result)
	}
	if len(purger.Calls()) != 0 {
		t.Errorf("purger called in dry run: %v", purger.Calls())
	}
	if registry.Len() != 1 {
		t.Errorf("registry Len() = %d, want 1", registry.Len())
	}
}

func TestSweeper_NothingDue(t *testing.T) {
	registry := deletion.NewRegistryFrom(map[string]time.Time{"u1": t0.Add(time.Hour)})
	purger := &recordingPurger{}
	sweeper := NewSweeper(registry, purger, nil)

	result := sweeper.SweepAt(context.Background(), t0)
	if len(result.Due) != 0 || len(purger.Calls()) != 0 {
		t.Errorf("sweep before deadline: due=%v calls=%v", result.Due, purger.Calls())
	}
}

func TestSweeper_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	registry := deletion.NewRegistryFrom(map[string]time.Time{
		"u1": t0,
		"u2": t0,
	})
	purger := &recordingPurger{failures: map[string]int{"u2": 1}}
	sweeper := NewSweeper(registry, purger, &Config{Tracer: provider.Tracer("test")})

	sweeper.SweepAt(context.Background(), t0)

	spans := recorder.Ended()
	names := make(map[string]int)
	for _, span := range spans {
		names[span.Name()]++
	}
	if names["deletion.sweep"] != 1 {
		t.Errorf("deletion.sweep spans = %d, want 1", names["deletion.sweep"])
	}
	if names["deletion.purge"] != 2 {
		t.Errorf("deletion.purge spans = %d, want 2", names["deletion.purge"])
	}

	var sweepSpan sdktrace.ReadOnlySpan
	for _, span := range spans {
		if span.Name() == "deletion.sweep" {
			sweepSpan = span
		}
	}
	for _, span := range spans {
		if span.Name() == "deletion.purge" && span.Parent().SpanID() != sweepSpan.SpanContext().SpanID() {
			t.Errorf("purge span parent = %s, want sweep span", span.Parent().SpanID())
		}
	}
}
