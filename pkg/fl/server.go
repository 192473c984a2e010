package fl

import "github.com/absmach/fedsim/pkg/scheduler"

// Server coordinates rounds: it picks participating clients and averages
// their weights. Its generator is used for client selection only.
type Server struct {
	selector   scheduler.Selector
	aggregator Aggregator
}

func NewServer(seed uint64) *Server {
	return &Server{
		selector:   scheduler.NewUniform(seed),
		aggregator: NewFedAvgAggregator(),
	}
}

func (s *Server) SelectClients(total int, fraction float64) ([]int, error) {
	return s.selector.SelectClients(total, fraction)
}

// AverageWeights returns the elementwise mean of equally sized flat weight
// vectors.
func (s *Server) AverageWeights(vectors [][]float32) ([]float32, error) {
	updates := make([]Update, len(vectors))
	for i, v := range vectors {
		updates[i] = Update{ClientID: i, Weights: v}
	}

	model, err := s.Aggregate(updates)
	if err != nil {
		return nil, err
	}

	return model.Weights, nil
}

func (s *Server) Aggregate(updates []Update) (Model, error) {
	return s.aggregator.Aggregate(updates)
}
