package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fdqms/gallery-backend/pkg/deletion"
	"github.com/fdqms/gallery-backend/pkg/telemetry/health"
	"github.com/fdqms/gallery-backend/pkg/telemetry/metrics"
)

// DeletionService is the part of deletion.Service exposed over HTTP.
type DeletionService interface {
	RequestDeletion(ctx context.Context, userID string) (deletion.PendingDeletion, error)
	CancelDeletion(ctx context.Context, userID string) bool
	Pending(userID string) (deletion.PendingDeletion, bool)
}

// Options contains the dependencies of the HTTP handler.
type Options struct {
	// Service handles deletion requests. Required.
	Service DeletionService

	// Checker backs /health and /ready. Default: a checker without checks
	Checker *health.Checker

	// Version is served at /version.
	Version health.VersionInfo

	// Metrics exposes the registry at MetricsPath and records HTTP metrics.
	// Nil disables both.
	Metrics *metrics.Collector

	// MetricsPath is the metrics endpoint path. Default: "/metrics"
	MetricsPath string

	// Logger is the base logger. Default: slog.Default()
	Logger *slog.Logger
}

// NewHandler builds the routed handler with its middleware chain.
func NewHandler(opts Options) http.Handler {
	if opts.Checker == nil {
		opts.Checker = health.New(0)
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With("component", "server")

	h := &deletionHandler{
		service:  opts.Service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/users/{id}/deletion", h.request)
	mux.HandleFunc("DELETE /v1/users/{id}/deletion", h.cancel)
	mux.HandleFunc("GET /v1/users/{id}/deletion", h.get)

	mux.HandleFunc("GET /health", opts.Checker.LivenessHandler())
	mux.HandleFunc("GET /ready", opts.Checker.ReadinessHandler())
	mux.HandleFunc("GET /version", health.VersionHandler(opts.Version))

	var handler http.Handler = mux
	if opts.Metrics != nil {
		mux.Handle("GET "+opts.MetricsPath, opts.Metrics.Handler())
		handler = metricsMiddleware(opts.Metrics.HTTP)(handler)
	}

	handler = tracingMiddleware(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(logger)(handler)

	return handler
}
