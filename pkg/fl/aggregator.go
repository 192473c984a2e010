package fl

// FedAvgAggregator averages client weights elementwise. Every client counts
// the same regardless of how many samples it trained on.
type FedAvgAggregator struct{}

func NewFedAvgAggregator() Aggregator {
	return &FedAvgAggregator{}
}

func (f *FedAvgAggregator) Aggregate(updates []Update) (Model, error) {
	if len(updates) == 0 {
		return Model{}, ErrNoUpdates
	}

	size := len(updates[0].Weights)
	totalSamples := 0
	for _, u := range updates {
		if len(u.Weights) != size {
			return Model{}, ErrShapeMismatch
		}
		totalSamples += u.NumSamples
	}

	n := float32(len(updates))
	averaged := make([]float32, size)
	for i := range averaged {
		var sum float32
		for _, u := range updates {
			sum += u.Weights[i]
		}
		averaged[i] = sum / n
	}

	return Model{
		Weights: averaged,
		Metadata: map[string]any{
			"total_samples": totalSamples,
			"num_updates":   len(updates),
			"algorithm":     "FedAvg",
		},
	}, nil
}
