package middleware

import (
	"context"
	"time"

	"github.com/absmach/fedsim/simulation"
	"github.com/go-kit/kit/metrics"
)

var _ simulation.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     simulation.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc simulation.Service) simulation.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Simulate(ctx context.Context, cfg simulation.Config) (simulation.Report, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "simulate").Add(1)
		mm.latency.With("method", "simulate").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Simulate(ctx, cfg)
}
