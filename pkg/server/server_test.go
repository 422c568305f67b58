package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdqms/gallery-backend/pkg/config"
	"github.com/fdqms/gallery-backend/pkg/deletion"
	"github.com/fdqms/gallery-backend/pkg/telemetry/health"
	"github.com/fdqms/gallery-backend/pkg/telemetry/metrics"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T) (http.Handler, *deletion.Service, *metrics.Collector) {
	t.Helper()

	svc := deletion.NewService(deletion.NewRegistry(), &deletion.ServiceConfig{
		GracePeriod: 30 * 24 * time.Hour,
		Clock:       func() time.Time { return t0 },
		Logger:      discardLogger(),
	})
	collector := metrics.NewCollector("test")

	handler := NewHandler(Options{
		Service: svc,
		Version: health.NewVersionInfo("1.0.0", "abc123", "2025-03-01"),
		Metrics: collector,
		Logger:  discardLogger(),
	})
	return handler, svc, collector
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestDeletionLifecycle(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/v1/users/u1/deletion")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body)
	}
	var pending deletion.PendingDeletion
	if err := json.NewDecoder(rec.Body).Decode(&pending); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantDeadline := t0.Add(30 * 24 * time.Hour)
	if pending.UserID != "u1" || !pending.Deadline.Equal(wantDeadline) {
		t.Errorf("pending = %+v, want u1 at %v", pending, wantDeadline)
	}

	rec = do(t, h, http.MethodPost, "/v1/users/u1/deletion")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second POST status = %d, want %d", rec.Code, http.StatusConflict)
	}
	var conflict ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&conflict); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if conflict.Deadline == nil || !conflict.Deadline.Equal(wantDeadline) {
		t.Errorf("conflict deadline = %v, want %v", conflict.Deadline, wantDeadline)
	}

	rec = do(t, h, http.MethodGet, "/v1/users/u1/deletion")
	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = do(t, h, http.MethodDelete, "/v1/users/u1/deletion")
	var cancel CancelResponse
	if err := json.NewDecoder(rec.Body).Decode(&cancel); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || !cancel.Cancelled {
		t.Errorf("DELETE = %d %+v, want 200 cancelled", rec.Code, cancel)
	}

	rec = do(t, h, http.MethodDelete, "/v1/users/u1/deletion")
	cancel = CancelResponse{}
	_ = json.NewDecoder(rec.Body).Decode(&cancel)
	if rec.Code != http.StatusOK || cancel.Cancelled {
		t.Errorf("second DELETE = %d %+v, want 200 not cancelled", rec.Code, cancel)
	}

	rec = do(t, h, http.MethodGet, "/v1/users/u1/deletion")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after cancel status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestInvalidUserID(t *testing.T) {
	h, svc, _ := newTestHandler(t)

	tests := []struct {
		name string
		path string
	}{
		{"too long", "/v1/users/" + strings.Repeat("a", 129) + "/deletion"},
		{"non ascii", "/v1/users/%C3%BCser/deletion"},
		{"control character", "/v1/users/u%091/deletion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range []string{http.MethodPost, http.MethodDelete, http.MethodGet} {
				rec := do(t, h, method, tt.path)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("%s status = %d, want %d", method, rec.Code, http.StatusBadRequest)
				}
			}
		})
	}

	if _, ok := svc.Pending(strings.Repeat("a", 129)); ok {
		t.Error("invalid id was scheduled")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPut, "/v1/users/u1/deletion")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	h, _, _ := newTestHandler(t)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/ready", http.StatusOK, `"status":"ready"`},
		{"/version", http.StatusOK, `"version":"1.0.0"`},
		{"/metrics", http.StatusOK, "test_deletion_pending"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q:\n%s", tt.wantBody, rec.Body)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/health")
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestMetricsUseRoutePattern(t *testing.T) {
	h, _, _ := newTestHandler(t)

	do(t, h, http.MethodPost, "/v1/users/u1/deletion")
	do(t, h, http.MethodPost, "/v1/users/u2/deletion")

	rec := do(t, h, http.MethodGet, "/metrics")
	want := `test_http_requests_total{method="POST",route="POST /v1/users/{id}/deletion",status="202"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics missing %q:\n%s", want, rec.Body)
	}
}

type failingService struct{}

func (failingService) RequestDeletion(context.Context, string) (deletion.PendingDeletion, error) {
	return deletion.PendingDeletion{}, errors.New("registry unavailable")
}
func (failingService) CancelDeletion(context.Context, string) bool { return false }
func (failingService) Pending(string) (deletion.PendingDeletion, bool) {
	return deletion.PendingDeletion{}, false
}

func TestRequestDeletion_InternalError(t *testing.T) {
	h := NewHandler(Options{Service: failingService{}, Logger: discardLogger()})

	rec := do(t, h, http.MethodPost, "/v1/users/u1/deletion")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "registry unavailable") {
		t.Error("internal error leaked to client")
	}
}

func TestServer_StartStop(t *testing.T) {
	h, _, _ := newTestHandler(t)
	cfg := &config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}
	srv := NewServer(cfg, h, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Addr() == nil {
		t.Fatal("server did not start")
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/health", srv.Addr()))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after stop")
	}
}
