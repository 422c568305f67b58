package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scrapeTimeout bounds a single collection.
const scrapeTimeout = 10 * time.Second

// Handler returns an HTTP handler exposing the collector's registry in the
// Prometheus exposition format. OpenMetrics is negotiated when the scraper
// asks for it.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			Timeout:           scrapeTimeout,

			// A failing collector must not hide the rest.
			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}

