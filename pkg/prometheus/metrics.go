// Package prometheus builds the go-kit metrics used by service middleware
// and dumps the default registry in the node exporter textfile format.
package prometheus

import (
	"path/filepath"

	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// ServiceTextfile is the file WriteTextfile writes in its directory.
const ServiceTextfile = "fedsim.prom"

// MakeMetrics returns a request counter and a latency summary, both
// labeled by method and registered on the default registry.
func MakeMetrics(namespace, subsystem string) (metrics.Counter, metrics.Histogram) {
	counter := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, []string{"method"})
	latency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_latency_seconds",
		Help:      "Total duration of requests in seconds.",
	}, []string{"method"})

	return counter, latency
}

// WriteTextfile writes everything registered on the default registry to
// ServiceTextfile under dir.
func WriteTextfile(dir string) error {
	return stdprometheus.WriteToTextfile(filepath.Join(dir, ServiceTextfile), stdprometheus.DefaultGatherer)
}
