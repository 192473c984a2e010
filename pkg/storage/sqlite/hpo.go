package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/absmach/fedsim/pkg/storage/record"
)

type hpoRepo struct {
	db *Database
}

func NewHPORepository(db *Database) HPORepository {
	return &hpoRepo{db: db}
}

type dbHPOResult struct {
	RunID           string  `db:"run_id"`
	Index           int     `db:"idx"`
	Topology        []byte  `db:"topology"`
	LearningRate    float64 `db:"learning_rate"`
	SamplesPerRound int     `db:"samples_per_round"`
	ClientFraction  float64 `db:"client_fraction"`
	RoundsToSuccess int     `db:"rounds_to_success"`
	FinalAccuracy   float64 `db:"final_accuracy"`
	FinalLoss       float64 `db:"final_loss"`
	Converged       bool    `db:"converged"`
}

func (r *hpoRepo) Create(ctx context.Context, res record.HPOResult) error {
	topology, err := json.Marshal(res.Topology)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO hpo_results (run_id, idx, topology, learning_rate, samples_per_round, client_fraction, rounds_to_success, final_accuracy, final_loss, converged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID,
		res.Index,
		string(topology),
		res.LearningRate,
		res.SamplesPerRound,
		res.ClientFraction,
		res.RoundsToSuccess,
		res.FinalAccuracy,
		res.FinalLoss,
		res.Converged,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	return nil
}

func (r *hpoRepo) List(ctx context.Context, runID string) ([]record.HPOResult, error) {
	var rows []dbHPOResult
	if err := r.db.SelectContext(
		ctx,
		&rows,
		`SELECT run_id, idx, topology, learning_rate, samples_per_round, client_fraction, rounds_to_success, final_accuracy, final_loss, converged
		FROM hpo_results WHERE run_id = ? ORDER BY idx`,
		runID,
	); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	results := make([]record.HPOResult, len(rows))
	for i, row := range rows {
		var topology []int
		if err := json.Unmarshal(row.Topology, &topology); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMarshal, err)
		}
		results[i] = record.HPOResult{
			RunID:           row.RunID,
			Index:           row.Index,
			Topology:        topology,
			LearningRate:    row.LearningRate,
			SamplesPerRound: row.SamplesPerRound,
			ClientFraction:  row.ClientFraction,
			RoundsToSuccess: row.RoundsToSuccess,
			FinalAccuracy:   row.FinalAccuracy,
			FinalLoss:       row.FinalLoss,
			Converged:       row.Converged,
		}
	}

	return results, nil
}
