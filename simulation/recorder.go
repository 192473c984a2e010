package simulation

import (
	"context"
	"errors"
	"log/slog"
)

// Recorder receives the metrics of every completed round. A recorder error
// aborts the run.
type Recorder interface {
	Record(ctx context.Context, m RoundMetrics) error
	Close() error
}

func closeAll(recorders []Recorder) error {
	var errs []error
	for _, r := range recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type logRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder logs a one-line summary of each round.
func NewLogRecorder(logger *slog.Logger) Recorder {
	return &logRecorder{logger: logger}
}

func (lr *logRecorder) Record(ctx context.Context, m RoundMetrics) error {
	lr.logger.InfoContext(ctx, "Round completed",
		slog.String("run_id", m.RunID),
		slog.Int("round", m.Round),
		slog.Int("selected", len(m.Selected)),
		slog.Float64("training_loss", m.TrainingLoss),
		slog.Float64("test_loss", m.TestLoss),
		slog.Float64("accuracy", m.Accuracy),
		slog.String("duration", m.Duration.String()),
	)

	return nil
}

func (lr *logRecorder) Close() error {
	return nil
}
