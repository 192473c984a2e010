// Package record holds the rows persisted by every storage backend.
package record

import "time"

// Round is the persisted summary of one simulation round.
type Round struct {
	RunID        string    `json:"run_id"        db:"run_id"`
	Round        int       `json:"round"         db:"round"`
	Accuracy     float64   `json:"accuracy"      db:"accuracy"`
	TestLoss     float64   `json:"test_loss"     db:"test_loss"`
	TrainingLoss float64   `json:"training_loss" db:"training_loss"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
}

// HPOResult is one evaluated grid configuration. Index is the position of
// the configuration in its grid.
type HPOResult struct {
	RunID           string  `json:"run_id"`
	Index           int     `json:"index"`
	Topology        []int   `json:"topology"`
	LearningRate    float64 `json:"learning_rate"`
	SamplesPerRound int     `json:"samples_per_round"`
	ClientFraction  float64 `json:"client_fraction"`
	RoundsToSuccess int     `json:"rounds_to_success"`
	FinalAccuracy   float64 `json:"final_accuracy"`
	FinalLoss       float64 `json:"final_loss"`
	Converged       bool    `json:"converged"`
}
