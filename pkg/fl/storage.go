package fl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// PersistentStorage checkpoints completed rounds as JSON and global models
// as CBOR, one directory per run.
type PersistentStorage struct {
	baseDir string
	mu      sync.RWMutex
}

func NewPersistentStorage(baseDir string) (*PersistentStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &PersistentStorage{baseDir: baseDir}, nil
}

func (ps *PersistentStorage) SaveRound(state RoundState) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	dir, err := ps.runDir(state.RunID, true)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal round state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, roundFile(state.Round)), data, 0o644); err != nil {
		return fmt.Errorf("failed to write round file: %w", err)
	}

	return nil
}

func (ps *PersistentStorage) LoadRound(runID string, round int) (RoundState, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	dir, err := ps.runDir(runID, false)
	if err != nil {
		return RoundState{}, err
	}

	data, err := os.ReadFile(filepath.Join(dir, roundFile(round)))
	if err != nil {
		return RoundState{}, fmt.Errorf("failed to read round file: %w", err)
	}

	var state RoundState
	if err := json.Unmarshal(data, &state); err != nil {
		return RoundState{}, fmt.Errorf("failed to unmarshal round state: %w", err)
	}

	return state, nil
}

// ListRounds returns the checkpointed round numbers of a run in ascending
// order.
func (ps *PersistentStorage) ListRounds(runID string) ([]int, error) {
	return ps.list(runID, "round_%d.json")
}

func (ps *PersistentStorage) SaveModel(runID string, model Model) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	dir, err := ps.runDir(runID, true)
	if err != nil {
		return err
	}

	return WriteModelFile(filepath.Join(dir, modelFile(model.Version)), model)
}

func (ps *PersistentStorage) LoadModel(runID string, version int) (Model, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	dir, err := ps.runDir(runID, false)
	if err != nil {
		return Model{}, err
	}

	return ReadModelFile(filepath.Join(dir, modelFile(version)))
}

func (ps *PersistentStorage) ListModels(runID string) ([]int, error) {
	return ps.list(runID, "model_v%d.cbor")
}

func (ps *PersistentStorage) list(runID, pattern string) ([]int, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	dir, err := ps.runDir(runID, false)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var ids []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var id int
		if _, err := fmt.Sscanf(entry.Name(), pattern, &id); err == nil {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	return ids, nil
}

func (ps *PersistentStorage) runDir(runID string, create bool) (string, error) {
	sanitized := sanitizeRunID(runID)
	if sanitized == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}

	dir := filepath.Join(ps.baseDir, sanitized)
	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	return dir, nil
}

func roundFile(round int) string {
	return fmt.Sprintf("round_%04d.json", round)
}

func modelFile(version int) string {
	return fmt.Sprintf("model_v%d.cbor", version)
}

// sanitizeRunID keeps only characters that are safe in a single path
// element, so run IDs cannot escape the checkpoint directory.
func sanitizeRunID(runID string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(runID) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
