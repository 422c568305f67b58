// Package metrics provides Prometheus metrics for the gallery backend.
//
// All metrics are registered on a private registry owned by a Collector,
// so tests and embedded uses never collide with the global default
// registry.
//
// # Metric Families
//
//   - Deletion: requests, cancellations, pending count, sweeps, purges and
//     snapshot operations
//   - HTTP: request count and duration for the internal API
//   - Go runtime and process metrics
//
// # Usage
//
//	collector := metrics.NewCollector("gallery")
//
//	service := deletion.NewService(registry, &deletion.ServiceConfig{
//		Observer: collector.Deletion,
//	})
//	sweeper := sweep.NewSweeper(registry, purger, &sweep.Config{
//		Observer: collector.Deletion,
//	})
//
//	mux.Handle("/metrics", collector.Handler())
package metrics
