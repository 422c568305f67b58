// Package telemetry groups the observability packages of the gallery
// backend.
//
// # Components
//
//   - logging: slog construction and request/sweep ids carried in context
//   - metrics: Prometheus metrics on a private registry
//   - tracing: OpenTelemetry spans exported over OTLP
//   - health: liveness and readiness probes
//
// Each component is configured from the telemetry section of the
// configuration file and wired together by the run command.
package telemetry
