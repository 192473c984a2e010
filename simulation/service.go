package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/absmach/fedsim/pkg/dataset"
	"github.com/absmach/fedsim/pkg/fl"
	"github.com/absmach/fedsim/pkg/mqtt"
	"github.com/absmach/fedsim/pkg/storage"
	"github.com/google/uuid"
)

// Sinks are the optional per-round outputs shared by every run of a
// service. Nil or empty members are disabled.
type Sinks struct {
	PubSub    mqtt.PubSub
	Rounds    storage.RoundRepository
	PromDir   string
	LogRounds bool
}

type service struct {
	samples   []dataset.MotionSample
	extractor dataset.FeatureExtractor
	sinks     Sinks
	logger    *slog.Logger
}

func NewService(samples []dataset.MotionSample, extractor dataset.FeatureExtractor, sinks Sinks, logger *slog.Logger) Service {
	return &service{
		samples:   samples,
		extractor: extractor,
		sinks:     sinks,
		logger:    logger,
	}
}

func (svc *service) Simulate(ctx context.Context, cfg Config) (rep Report, err error) {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	recorders, err := svc.recorders(cfg)
	if err != nil {
		return Report{}, errors.Join(err, closeAll(recorders))
	}
	defer func() {
		if cerr := closeAll(recorders); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close recorders: %w", cerr))
		}
	}()

	engine, err := NewEngine(cfg, svc.samples, svc.extractor, recorders...)
	if err != nil {
		return Report{}, err
	}

	summary, err := engine.Run(ctx)
	if err != nil {
		return Report{Summary: summary}, err
	}

	eval, err := engine.Evaluate()
	if err != nil {
		return Report{Summary: summary}, err
	}

	rep = Report{
		Summary:    summary,
		Evaluation: eval,
		Model:      engine.Model(),
	}

	if cfg.ModelExport != "" {
		if err := fl.WriteModelFile(cfg.ModelExport, rep.Model); err != nil {
			return rep, err
		}
		svc.logger.Info("Exported global model",
			slog.String("run_id", cfg.RunID),
			slog.String("path", cfg.ModelExport),
			slog.Int("version", rep.Model.Version),
		)
	}

	return rep, nil
}

func (svc *service) recorders(cfg Config) ([]Recorder, error) {
	var recorders []Recorder
	if cfg.MetricsFile != "" {
		r, err := NewCSVRecorder(cfg.MetricsFile)
		if err != nil {
			return recorders, err
		}
		recorders = append(recorders, r)
	}
	if cfg.CheckpointDir != "" {
		r, err := NewCheckpointRecorder(cfg.CheckpointDir, cfg.Topology)
		if err != nil {
			return recorders, err
		}
		recorders = append(recorders, r)
	}
	if svc.sinks.Rounds != nil {
		recorders = append(recorders, NewStoreRecorder(svc.sinks.Rounds))
	}
	if svc.sinks.PubSub != nil {
		recorders = append(recorders, NewPublishRecorder(svc.sinks.PubSub))
	}
	if svc.sinks.PromDir != "" {
		path := filepath.Join(svc.sinks.PromDir, cfg.RunID+".prom")
		recorders = append(recorders, NewPromRecorder(path, cfg.RunID))
	}
	if svc.sinks.LogRounds {
		recorders = append(recorders, NewLogRecorder(svc.logger))
	}

	return recorders, nil
}
