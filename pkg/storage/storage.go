package storage

import (
	"context"

	"github.com/absmach/fedsim/pkg/storage/record"
)

type (
	RoundRecord = record.Round
	HPOResult   = record.HPOResult
)

// Storage is a generic key-value store used by the in-memory backend.
type Storage interface {
	Create(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) (any, error)
	List(ctx context.Context, prefix string) ([]any, error)
	Delete(ctx context.Context, key string) error
}

type RoundRepository interface {
	Create(ctx context.Context, r RoundRecord) error
	// List returns the rounds of a run ordered by round number.
	List(ctx context.Context, runID string) ([]RoundRecord, error)
}

type HPORepository interface {
	Create(ctx context.Context, r HPOResult) error
	// List returns the results of a search ordered by grid index.
	List(ctx context.Context, runID string) ([]HPOResult, error)
}
