// Package tracing provides OpenTelemetry tracing for the gallery backend.
//
// Spans are exported over OTLP/gRPC when telemetry.tracing.enabled is set.
// Otherwise a noop tracer is used and span calls cost next to nothing.
//
// # Spans
//
//   - deletion.sweep: one per sweep, with due/purged/failed counts
//   - deletion.purge: one per user purged, child of the sweep span
//   - HTTP requests to the internal API, continuing any W3C traceparent
//     sent by the caller
//
// # Usage
//
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	sweeper := sweep.NewSweeper(registry, purger, &sweep.Config{
//		Tracer: tracer.Tracer(),
//	})
package tracing
