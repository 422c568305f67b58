package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DefaultNamespace prefixes metric names when none is configured.
const DefaultNamespace = "gallery"

// Collector owns the private Prometheus registry and every metric family
// the service exports.
type Collector struct {
	registry *prometheus.Registry

	// Deletion tracks the deletion lifecycle and sweeps.
	Deletion *DeletionMetrics

	// HTTP tracks the internal API.
	HTTP *HTTPMetrics
}

// NewCollector creates a Collector on a fresh registry. Go runtime and
// process metrics are included.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry: registry,
		Deletion: NewDeletionMetrics(namespace, registry),
		HTTP:     NewHTTPMetrics(namespace, registry),
	}
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
