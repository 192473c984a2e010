package simulation

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

const promNamespace = "fedsim"

type promRecorder struct {
	path      string
	registry  *prometheus.Registry
	round     prometheus.Gauge
	accuracy  prometheus.Gauge
	testLoss  prometheus.Gauge
	trainLoss prometheus.Gauge
	duration  prometheus.Histogram
}

// NewPromRecorder tracks the latest round in gauges and writes them in the
// node exporter textfile format on Close.
func NewPromRecorder(path, runID string) Recorder {
	labels := prometheus.Labels{"run_id": runID}
	pr := &promRecorder{
		path:     path,
		registry: prometheus.NewRegistry(),
		round: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   promNamespace,
			Name:        "round",
			Help:        "Last completed federated round.",
			ConstLabels: labels,
		}),
		accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   promNamespace,
			Name:        "test_accuracy",
			Help:        "Test accuracy of the global model after the last round.",
			ConstLabels: labels,
		}),
		testLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   promNamespace,
			Name:        "test_loss",
			Help:        "Test cross-entropy of the global model after the last round.",
			ConstLabels: labels,
		}),
		trainLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   promNamespace,
			Name:        "training_loss",
			Help:        "Cross-entropy of local predictions made during the last round.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   promNamespace,
			Name:        "round_duration_seconds",
			Help:        "Wall time spent per round.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	pr.registry.MustRegister(pr.round, pr.accuracy, pr.testLoss, pr.trainLoss, pr.duration)

	return pr
}

func (pr *promRecorder) Record(_ context.Context, m RoundMetrics) error {
	pr.round.Set(float64(m.Round))
	pr.accuracy.Set(m.Accuracy)
	pr.testLoss.Set(m.TestLoss)
	pr.trainLoss.Set(m.TrainingLoss)
	pr.duration.Observe(m.Duration.Seconds())

	return nil
}

func (pr *promRecorder) Close() error {
	return prometheus.WriteToTextfile(pr.path, pr.registry)
}
