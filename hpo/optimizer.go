package hpo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/absmach/fedsim/pkg/storage"
	"github.com/absmach/fedsim/simulation"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxRounds  = 600
	DefaultNumClients = 100
)

type Config struct {
	RunID      string
	Grid       Grid
	NumClients int
	Seed       uint64
	MaxRounds  int
	// Workers bounds how many configurations are simulated at once. Results
	// do not depend on it.
	Workers int
	// MetricsDir, when set, receives one per-round metrics CSV per
	// configuration.
	MetricsDir string
}

func (c Config) Validate() error {
	switch {
	case c.Grid.Size() == 0:
		return ErrEmptyGrid
	case c.NumClients <= 0:
		return fmt.Errorf("%w: clients must be positive, got %d", ErrInvalidConfig, c.NumClients)
	case c.MaxRounds <= 0:
		return fmt.Errorf("%w: max rounds must be positive, got %d", ErrInvalidConfig, c.MaxRounds)
	}

	return nil
}

// Result is the outcome of one grid configuration.
type Result struct {
	Params
	Index           int     `json:"-"`
	RoundsToSuccess int     `json:"rounds_to_success"`
	FinalAccuracy   float64 `json:"final_accuracy"`
	FinalLoss       float64 `json:"final_loss"`
	Converged       bool    `json:"-"`
}

type Optimizer struct {
	svc    simulation.Service
	repo   storage.HPORepository
	logger *slog.Logger
}

// NewOptimizer runs configurations through svc. repo may be nil.
func NewOptimizer(svc simulation.Service, repo storage.HPORepository, logger *slog.Logger) *Optimizer {
	return &Optimizer{
		svc:    svc,
		repo:   repo,
		logger: logger,
	}
}

// Run evaluates every configuration of the grid and returns the results in
// grid order. The first failing configuration cancels the rest.
func (o *Optimizer) Run(ctx context.Context, cfg Config) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.MetricsDir != "" {
		if err := os.MkdirAll(cfg.MetricsDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}

	params := cfg.Grid.Params()
	results := make([]Result, len(params))
	o.logger.Info("Generated hyperparameter grid",
		slog.String("run_id", cfg.RunID),
		slog.Int("configurations", len(params)),
		slog.Int("workers", max(1, cfg.Workers)),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))
	for i, p := range params {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := o.evaluate(ctx, cfg, i, p)
			if err != nil {
				return fmt.Errorf("configuration %d (%s): %w", i, p, err)
			}
			results[i] = res

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (o *Optimizer) evaluate(ctx context.Context, cfg Config, idx int, p Params) (Result, error) {
	tracker := NewSuccessTracker()
	simCfg := simulation.Config{
		RunID:           fmt.Sprintf("%s-%03d", cfg.RunID, idx),
		NumClients:      cfg.NumClients,
		ClientFraction:  p.ClientFraction,
		SamplesPerRound: p.SamplesPerRound,
		LearningRate:    p.LearningRate,
		Rounds:          cfg.MaxRounds,
		Topology:        p.Topology,
		Seed:            cfg.Seed,
		StopCondition: func(m simulation.RoundMetrics) bool {
			return tracker.Update(m.Round, m.Accuracy, m.TestLoss)
		},
	}
	if cfg.MetricsDir != "" {
		simCfg.MetricsFile = filepath.Join(cfg.MetricsDir, fmt.Sprintf("config_%03d.csv", idx))
	}

	rep, err := o.svc.Simulate(ctx, simCfg)
	if err != nil {
		return Result{}, err
	}

	rounds, converged := tracker.RoundsToSuccess()
	res := Result{
		Params:          p,
		Index:           idx,
		RoundsToSuccess: rounds,
		FinalAccuracy:   rep.Last.Accuracy,
		FinalLoss:       rep.Last.TestLoss,
		Converged:       converged,
	}

	args := []any{
		slog.Int("index", idx),
		slog.String("params", p.String()),
		slog.Int("rounds", rep.Rounds),
	}
	if converged {
		o.logger.Info("Configuration converged", append(args, slog.Int("rounds_to_success", rounds))...)
	} else {
		o.logger.Info("Configuration did not meet success criteria", args...)
	}

	if o.repo != nil {
		if err := o.repo.Create(ctx, toRecord(cfg.RunID, res)); err != nil {
			return Result{}, err
		}
	}

	return res, nil
}

// Rank puts converged results first, ascending by rounds to success, then
// the rest. Ties keep grid order.
func Rank(results []Result) []Result {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b Result) int {
		switch {
		case a.Converged && b.Converged:
			return a.RoundsToSuccess - b.RoundsToSuccess
		case a.Converged:
			return -1
		case b.Converged:
			return 1
		default:
			return a.Index - b.Index
		}
	})

	return ranked
}

// Best returns the converged result with the fewest rounds to success.
func Best(results []Result) (Result, bool) {
	ranked := Rank(results)
	if len(ranked) == 0 || !ranked[0].Converged {
		return Result{}, false
	}

	return ranked[0], true
}

func toRecord(runID string, r Result) storage.HPOResult {
	return storage.HPOResult{
		RunID:           runID,
		Index:           r.Index,
		Topology:        r.Topology,
		LearningRate:    r.LearningRate,
		SamplesPerRound: r.SamplesPerRound,
		ClientFraction:  r.ClientFraction,
		RoundsToSuccess: r.RoundsToSuccess,
		FinalAccuracy:   r.FinalAccuracy,
		FinalLoss:       r.FinalLoss,
		Converged:       r.Converged,
	}
}
