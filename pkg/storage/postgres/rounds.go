package postgres

import (
	"context"
	"fmt"

	"github.com/absmach/fedsim/pkg/storage/record"
)

type roundRepo struct {
	db *Database
}

func NewRoundRepository(db *Database) RoundRepository {
	return &roundRepo{db: db}
}

func (r *roundRepo) Create(ctx context.Context, rd record.Round) error {
	_, err := r.db.NamedExecContext(
		ctx,
		`INSERT INTO rounds (run_id, round, accuracy, test_loss, training_loss, created_at)
		VALUES (:run_id, :round, :accuracy, :test_loss, :training_loss, :created_at)`,
		rd,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	return nil
}

func (r *roundRepo) List(ctx context.Context, runID string) ([]record.Round, error) {
	rounds := []record.Round{}
	if err := r.db.SelectContext(
		ctx,
		&rounds,
		`SELECT run_id, round, accuracy, test_loss, training_loss, created_at FROM rounds WHERE run_id = $1 ORDER BY round`,
		runID,
	); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	return rounds, nil
}
