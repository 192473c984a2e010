package fl

import "time"

// Update is the payload a client contributes to a round: its flat weight
// vector after local training.
type Update struct {
	ClientID   int       `json:"client_id"   cbor:"1,keyasint"`
	Round      int       `json:"round"       cbor:"2,keyasint"`
	NumSamples int       `json:"num_samples" cbor:"3,keyasint"`
	Weights    []float32 `json:"weights"     cbor:"4,keyasint"`
}

// Model is a global model version as broadcast to every client.
type Model struct {
	Version  int            `json:"version"            cbor:"1,keyasint"`
	Topology []int          `json:"topology"           cbor:"2,keyasint"`
	Weights  []float32      `json:"weights"            cbor:"3,keyasint"`
	Metadata map[string]any `json:"metadata,omitempty" cbor:"4,keyasint,omitempty"`
}

// RoundState captures one completed round for checkpointing.
type RoundState struct {
	RunID        string    `json:"run_id"`
	Round        int       `json:"round"`
	Selected     []int     `json:"selected"`
	Updates      []Update  `json:"updates,omitempty"`
	Accuracy     float64   `json:"accuracy"`
	TestLoss     float64   `json:"test_loss"`
	TrainingLoss float64   `json:"training_loss"`
	StartTime    time.Time `json:"start_time"`
	Completed    bool      `json:"completed"`
}

type Aggregator interface {
	Aggregate(updates []Update) (Model, error)
}
