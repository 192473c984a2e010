package simulation

import (
	"context"

	"github.com/absmach/fedsim/pkg/storage"
)

type storeRecorder struct {
	repo storage.RoundRepository
}

func NewStoreRecorder(repo storage.RoundRepository) Recorder {
	return &storeRecorder{repo: repo}
}

func (sr *storeRecorder) Record(ctx context.Context, m RoundMetrics) error {
	return sr.repo.Create(ctx, storage.RoundRecord{
		RunID:        m.RunID,
		Round:        m.Round,
		Accuracy:     m.Accuracy,
		TestLoss:     m.TestLoss,
		TrainingLoss: m.TrainingLoss,
		CreatedAt:    m.StartedAt.Add(m.Duration).UTC(),
	})
}

func (sr *storeRecorder) Close() error {
	return nil
}
