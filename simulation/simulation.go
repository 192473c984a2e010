// Package simulation runs Federated Averaging rounds over a population of
// simulated clients and reports per-round metrics to recorders.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/absmach/fedsim/pkg/dataset"
	"github.com/absmach/fedsim/pkg/fl"
	"github.com/absmach/fedsim/pkg/metrics"
)

type Service interface {
	// Simulate runs one complete federated training session and returns its
	// final evaluation.
	Simulate(ctx context.Context, cfg Config) (Report, error)
}

type Config struct {
	RunID           string
	NumClients      int
	ClientFraction  float64
	SamplesPerRound int
	LearningRate    float64
	Rounds          int
	Topology        []int
	Seed            uint64
	MetricsFile     string
	CheckpointDir   string
	ModelExport     string
	// StopCondition ends the run early after the first round for which it
	// returns true.
	StopCondition func(RoundMetrics) bool
}

func (c Config) Validate() error {
	switch {
	case c.NumClients <= 0:
		return fmt.Errorf("%w: clients must be positive, got %d", ErrInvalidConfig, c.NumClients)
	case c.ClientFraction <= 0 || c.ClientFraction > 1:
		return fmt.Errorf("%w: client fraction must be in (0, 1], got %g", ErrInvalidConfig, c.ClientFraction)
	case c.SamplesPerRound <= 0:
		return fmt.Errorf("%w: samples per round must be positive, got %d", ErrInvalidConfig, c.SamplesPerRound)
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrInvalidConfig, c.LearningRate)
	case c.Rounds <= 0:
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrInvalidConfig, c.Rounds)
	case len(c.Topology) < 2:
		return fmt.Errorf("%w: topology needs at least an input and an output layer", ErrInvalidConfig)
	case c.Topology[len(c.Topology)-1] != dataset.NumClasses:
		return fmt.Errorf("%w: output layer must have %d units", ErrInvalidConfig, dataset.NumClasses)
	}
	for _, n := range c.Topology {
		if n <= 0 {
			return fmt.Errorf("%w: layer sizes must be positive, got %v", ErrInvalidConfig, c.Topology)
		}
	}

	return nil
}

// RoundMetrics is what recorders receive after every round. Weights is the
// global model broadcast at the end of the round.
type RoundMetrics struct {
	RunID        string        `json:"run_id"`
	Round        int           `json:"round"`
	Selected     []int         `json:"selected"`
	Accuracy     float64       `json:"accuracy"`
	TestLoss     float64       `json:"test_loss"`
	TrainingLoss float64       `json:"training_loss"`
	StartedAt    time.Time     `json:"-"`
	Duration     time.Duration `json:"-"`
	Weights      []float32     `json:"-"`
}

type Summary struct {
	RunID   string       `json:"run_id"`
	Rounds  int          `json:"rounds"`
	Stopped bool         `json:"stopped_early"`
	Last    RoundMetrics `json:"last"`
}

type Report struct {
	Summary
	Evaluation metrics.Evaluation `json:"evaluation"`
	Model      fl.Model           `json:"-"`
}
