package storage

import (
	"context"
	"fmt"
)

type memoryRoundRepo struct {
	storage Storage
}

func newMemoryRoundRepository(s Storage) RoundRepository {
	return &memoryRoundRepo{storage: s}
}

func (r *memoryRoundRepo) Create(ctx context.Context, rec RoundRecord) error {
	return r.storage.Create(ctx, key(rec.RunID, rec.Round), rec)
}

func (r *memoryRoundRepo) List(ctx context.Context, runID string) ([]RoundRecord, error) {
	data, err := r.storage.List(ctx, runID+"/")
	if err != nil {
		return nil, err
	}

	records := make([]RoundRecord, len(data))
	for i, d := range data {
		rec, ok := d.(RoundRecord)
		if !ok {
			return nil, ErrInvalidData
		}
		records[i] = rec
	}

	return records, nil
}

type memoryHPORepo struct {
	storage Storage
}

func newMemoryHPORepository(s Storage) HPORepository {
	return &memoryHPORepo{storage: s}
}

func (r *memoryHPORepo) Create(ctx context.Context, res HPOResult) error {
	res.Topology = append([]int(nil), res.Topology...)

	return r.storage.Create(ctx, key(res.RunID, res.Index), res)
}

func (r *memoryHPORepo) List(ctx context.Context, runID string) ([]HPOResult, error) {
	data, err := r.storage.List(ctx, runID+"/")
	if err != nil {
		return nil, err
	}

	results := make([]HPOResult, len(data))
	for i, d := range data {
		res, ok := d.(HPOResult)
		if !ok {
			return nil, ErrInvalidData
		}
		results[i] = res
	}

	return results, nil
}

// key zero-pads the sequence number so lexical order matches numeric order.
func key(runID string, seq int) string {
	return fmt.Sprintf("%s/%08d", runID, seq)
}
