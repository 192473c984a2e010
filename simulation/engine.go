package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/absmach/fedsim/pkg/dataset"
	"github.com/absmach/fedsim/pkg/fl"
	"github.com/absmach/fedsim/pkg/metrics"
)

// Engine drives the round protocol. It is single-threaded: every client
// shares one preprocessor, which owns the per-client samplers.
type Engine struct {
	cfg          Config
	preprocessor *dataset.Preprocessor
	server       *fl.Server
	clients      []*fl.Client
	test         []dataset.TrainingSample
	recorders    []Recorder
	round        int
}

func NewEngine(cfg Config, samples []dataset.MotionSample, extractor dataset.FeatureExtractor, recorders ...Recorder) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	preprocessor := dataset.NewPreprocessor(cfg.Seed, extractor)
	if err := preprocessor.Prepare(samples); err != nil {
		return nil, fmt.Errorf("failed to prepare dataset: %w", err)
	}

	test := preprocessor.TestSet()
	if len(test) == 0 {
		return nil, fmt.Errorf("%w: %d samples loaded", ErrEmptyTestSet, len(samples))
	}
	if dim := len(test[0].Features); dim != cfg.Topology[0] {
		return nil, fmt.Errorf("%w: input layer has %d units, features have %d", ErrInvalidConfig, cfg.Topology[0], dim)
	}

	clients := make([]*fl.Client, cfg.NumClients)
	for i := range clients {
		c, err := fl.NewClient(cfg.Topology, preprocessor, cfg.Seed+uint64(i))
		if err != nil {
			return nil, err
		}
		clients[i] = c
	}

	return &Engine{
		cfg:          cfg,
		preprocessor: preprocessor,
		server:       fl.NewServer(cfg.Seed),
		clients:      clients,
		test:         test,
		recorders:    recorders,
	}, nil
}

// Step runs one round: select, train locally, average, broadcast, evaluate
// and record.
func (e *Engine) Step(ctx context.Context) (RoundMetrics, error) {
	begin := time.Now()
	e.round++

	selected, err := e.server.SelectClients(len(e.clients), e.cfg.ClientFraction)
	if err != nil {
		return RoundMetrics{}, err
	}

	lr := float32(e.cfg.LearningRate)
	preds := make([][]float32, 0, len(selected)*e.cfg.SamplesPerRound)
	targets := make([][]float32, 0, len(selected)*e.cfg.SamplesPerRound)
	for range e.cfg.SamplesPerRound {
		for _, c := range selected {
			sample, err := e.clients[c].Preprocessor().NextTrainingSample(c)
			if err != nil {
				return RoundMetrics{}, err
			}
			pred, err := e.clients[c].Predict(sample.Features)
			if err != nil {
				return RoundMetrics{}, err
			}
			preds = append(preds, pred)
			targets = append(targets, sample.Target)
			if err := e.clients[c].TrainOnSample(sample.Features, sample.Target, lr); err != nil {
				return RoundMetrics{}, err
			}
		}
	}

	weights := make([][]float32, len(selected))
	for i, c := range selected {
		weights[i] = e.clients[c].Weights()
	}
	global, err := e.server.AverageWeights(weights)
	if err != nil {
		return RoundMetrics{}, err
	}
	for _, c := range e.clients {
		if err := c.SetWeights(global); err != nil {
			return RoundMetrics{}, err
		}
	}

	testPreds, testTargets, err := e.predictTest()
	if err != nil {
		return RoundMetrics{}, err
	}

	m := RoundMetrics{
		RunID:        e.cfg.RunID,
		Round:        e.round,
		Selected:     selected,
		Accuracy:     metrics.Accuracy(testPreds, testTargets),
		TestLoss:     metrics.CrossEntropy(testPreds, testTargets),
		TrainingLoss: metrics.CrossEntropy(preds, targets),
		StartedAt:    begin,
		Duration:     time.Since(begin),
		Weights:      global,
	}
	for _, r := range e.recorders {
		if err := r.Record(ctx, m); err != nil {
			return m, fmt.Errorf("failed to record round %d: %w", m.Round, err)
		}
	}

	return m, nil
}

// Run executes rounds until the configured count is reached or the stop
// condition fires. Cancellation is checked between rounds.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: e.cfg.RunID}
	for e.round < e.cfg.Rounds {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		m, err := e.Step(ctx)
		if err != nil {
			return summary, err
		}
		summary.Rounds = m.Round
		summary.Last = m

		if e.cfg.StopCondition != nil && e.cfg.StopCondition(m) {
			summary.Stopped = true

			break
		}
	}

	return summary, nil
}

// Evaluate scores client 0, which holds the global model, on the test set.
func (e *Engine) Evaluate() (metrics.Evaluation, error) {
	preds, targets, err := e.predictTest()
	if err != nil {
		return metrics.Evaluation{}, err
	}

	return metrics.Evaluate(preds, targets), nil
}

// Model returns the current global model.
func (e *Engine) Model() fl.Model {
	return fl.Model{
		Version:  e.round,
		Topology: append([]int(nil), e.cfg.Topology...),
		Weights:  e.clients[0].Weights(),
		Metadata: map[string]any{
			"run_id":        e.cfg.RunID,
			"seed":          e.cfg.Seed,
			"learning_rate": e.cfg.LearningRate,
			"algorithm":     "FedAvg",
		},
	}
}

func (e *Engine) Client(i int) *fl.Client {
	return e.clients[i]
}

func (e *Engine) NumClients() int {
	return len(e.clients)
}

func (e *Engine) predictTest() ([][]float32, [][]float32, error) {
	preds := make([][]float32, len(e.test))
	targets := make([][]float32, len(e.test))
	for i, s := range e.test {
		p, err := e.clients[0].Predict(s.Features)
		if err != nil {
			return nil, nil, err
		}
		preds[i] = p
		targets[i] = s.Target
	}

	return preds, targets, nil
}
