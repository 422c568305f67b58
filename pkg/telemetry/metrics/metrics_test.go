package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fdqms/gallery-backend/pkg/deletion"
	"github.com/fdqms/gallery-backend/pkg/deletion/sweep"
)

var (
	_ deletion.Observer = (*DeletionMetrics)(nil)
	_ sweep.Observer    = (*DeletionMetrics)(nil)
)

func TestDeletionMetrics_Requests(t *testing.T) {
	m := NewDeletionMetrics("test", prometheus.NewRegistry())

	m.ObserveRequest("scheduled")
	m.ObserveRequest("scheduled")
	m.ObserveRequest("already_scheduled")

	tests := []struct {
		result string
		want   float64
	}{
		{"scheduled", 2},
		{"already_scheduled", 1},
		{"invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(tt.result))
			if got != tt.want {
				t.Errorf("requests_total{result=%q} = %v, want %v", tt.result, got, tt.want)
			}
		})
	}
}

func TestDeletionMetrics_Cancel(t *testing.T) {
	m := NewDeletionMetrics("test", prometheus.NewRegistry())

	m.ObserveCancel(true)
	m.ObserveCancel(false)
	m.ObserveCancel(false)

	if got := testutil.ToFloat64(m.cancellationsTotal.WithLabelValues("removed")); got != 1 {
		t.Errorf("removed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cancellationsTotal.WithLabelValues("noop")); got != 2 {
		t.Errorf("noop = %v, want 2", got)
	}
}

func TestDeletionMetrics_Pending(t *testing.T) {
	m := NewDeletionMetrics("test", prometheus.NewRegistry())

	m.SetPending(5)
	m.SetPending(3)

	if got := testutil.ToFloat64(m.pending); got != 3 {
		t.Errorf("pending = %v, want 3", got)
	}
}

func TestDeletionMetrics_SweepAndPurge(t *testing.T) {
	m := NewDeletionMetrics("test", prometheus.NewRegistry())

	m.ObservePurge("success", 10*time.Millisecond)
	m.ObservePurge("failure", 20*time.Millisecond)
	m.ObserveSweep(50*time.Millisecond, 1, 1)

	if got := testutil.ToFloat64(m.sweepsTotal); got != 1 {
		t.Errorf("sweeps_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.purgesTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("purges_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.purgesTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("purges_total{failure} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.purgeDuration); got != 2 {
		t.Errorf("purge_duration_seconds series = %d, want 2", got)
	}
}

func TestDeletionMetrics_Snapshot(t *testing.T) {
	m := NewDeletionMetrics("test", prometheus.NewRegistry())

	m.ObserveSnapshot("load", nil)
	m.ObserveSnapshot("save", errors.New("disk full"))

	tests := []struct {
		operation, result string
		want              float64
	}{
		{"load", "success", 1},
		{"load", "failure", 0},
		{"save", "failure", 1},
	}

	for _, tt := range tests {
		got := testutil.ToFloat64(m.snapshotOps.WithLabelValues(tt.operation, tt.result))
		if got != tt.want {
			t.Errorf("snapshot_operations_total{%s,%s} = %v, want %v", tt.operation, tt.result, got, tt.want)
		}
	}
}

func TestHTTPMetrics_ObserveRequest(t *testing.T) {
	m := NewHTTPMetrics("test", prometheus.NewRegistry())

	m.ObserveRequest(http.MethodPost, "POST /v1/users/{id}/deletion", http.StatusAccepted, time.Millisecond)
	m.ObserveRequest(http.MethodPost, "POST /v1/users/{id}/deletion", http.StatusConflict, time.Millisecond)

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodPost, "POST /v1/users/{id}/deletion", "202"))
	if got != 1 {
		t.Errorf("requests_total{202} = %v, want 1", got)
	}
}

func TestNewCollector_DefaultNamespace(t *testing.T) {
	c := NewCollector("")
	c.Deletion.SetPending(1)

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "gallery_deletion_pending" {
			found = true
		}
	}
	if !found {
		t.Error("gallery_deletion_pending not registered")
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("gallery")
	c.Deletion.ObserveRequest("scheduled")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `gallery_deletion_requests_total{result="scheduled"} 1`) {
		t.Errorf("metrics body missing requests counter:\n%s", body)
	}
}
