package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/absmach/fedsim/pkg/storage/record"
)

type roundRepo struct {
	db *Database
}

func NewRoundRepository(db *Database) RoundRepository {
	return &roundRepo{db: db}
}

func (r *roundRepo) Create(_ context.Context, rd record.Round) error {
	val, err := json.Marshal(rd)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	return r.db.insert(fmt.Appendf(nil, "round:%s:%08d", rd.RunID, rd.Round), val)
}

func (r *roundRepo) List(_ context.Context, runID string) ([]record.Round, error) {
	values, err := r.db.listWithPrefix([]byte("round:" + runID + ":"))
	if err != nil {
		return nil, err
	}

	rounds := make([]record.Round, len(values))
	for i, val := range values {
		if err := json.Unmarshal(val, &rounds[i]); err != nil {
			return nil, fmt.Errorf("unmarshal error: %w", err)
		}
	}

	return rounds, nil
}

type hpoRepo struct {
	db *Database
}

func NewHPORepository(db *Database) HPORepository {
	return &hpoRepo{db: db}
}

func (r *hpoRepo) Create(_ context.Context, res record.HPOResult) error {
	val, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	return r.db.insert(fmt.Appendf(nil, "hpo:%s:%08d", res.RunID, res.Index), val)
}

func (r *hpoRepo) List(_ context.Context, runID string) ([]record.HPOResult, error) {
	values, err := r.db.listWithPrefix([]byte("hpo:" + runID + ":"))
	if err != nil {
		return nil, err
	}

	results := make([]record.HPOResult, len(values))
	for i, val := range values {
		if err := json.Unmarshal(val, &results[i]); err != nil {
			return nil, fmt.Errorf("unmarshal error: %w", err)
		}
	}

	return results, nil
}
