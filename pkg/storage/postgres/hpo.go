package postgres

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
		return fmt.Errorf("marshal error: %w", err)
	}

	_, err = r.db.NamedExecContext(
		ctx,
		`INSERT INTO hpo_results (run_id, idx, topology, learning_rate, samples_per_round, client_fraction, rounds_to_success, final_accuracy, final_loss, converged)
		VALUES (:run_id, :idx, :topology, :learning_rate, :samples_per_round, :client_fraction, :rounds_to_success, :final_accuracy, :final_loss, :converged)`,
		dbHPOResult{
			RunID:           res.RunID,
			Index:           res.Index,
			Topology:        topology,
			LearningRate:    res.LearningRate,
			SamplesPerRound: res.SamplesPerRound,
			ClientFraction:  res.ClientFraction,
			RoundsToSuccess: res.RoundsToSuccess,
			FinalAccuracy:   res.FinalAccuracy,
			FinalLoss:       res.FinalLoss,
			Converged:       res.Converged,
		},
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
		FROM hpo_results WHERE run_id = $1 ORDER BY idx`,
		runID,
	); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	results := make([]record.HPOResult, len(rows))
	for i, row := range rows {
		var topology []int
		if err := json.Unmarshal(row.Topology, &topology); err != nil {
			return nil, fmt.Errorf("unmarshal error: %w", err)
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
