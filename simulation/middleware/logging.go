package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/fedsim/simulation"
)

var _ simulation.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    simulation.Service
}

func Logging(logger *slog.Logger, svc simulation.Service) simulation.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Simulate(ctx context.Context, cfg simulation.Config) (rep simulation.Report, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("simulation",
				slog.String("run_id", rep.RunID),
				slog.Any("topology", cfg.Topology),
				slog.Int("clients", cfg.NumClients),
				slog.Float64("client_fraction", cfg.ClientFraction),
				slog.Int("samples_per_round", cfg.SamplesPerRound),
				slog.Float64("learning_rate", cfg.LearningRate),
				slog.Int("rounds", rep.Rounds),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Simulation failed", args...)

			return
		}
		args = append(args,
			slog.Float64("accuracy", rep.Evaluation.Accuracy),
			slog.Float64("test_loss", rep.Evaluation.Loss),
		)
		lm.logger.Info("Simulation completed successfully", args...)
	}(time.Now())

	return lm.svc.Simulate(ctx, cfg)
}
