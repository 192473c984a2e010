package fl

import (
	"github.com/absmach/fedsim/pkg/dataset"
	"github.com/absmach/fedsim/pkg/nn"
)

// Client is a simulated federation participant. It owns its local network
// and shares the preprocessor with every other client; the index it is
// sampled under is decided by the caller.
type Client struct {
	network      *nn.Network
	preprocessor *dataset.Preprocessor
}

func NewClient(topology []int, preprocessor *dataset.Preprocessor, seed uint64) (*Client, error) {
	network, err := nn.New(topology, seed)
	if err != nil {
		return nil, err
	}

	return &Client{
		network:      network,
		preprocessor: preprocessor,
	}, nil
}

func (c *Client) TrainOnSample(features, target []float32, lr float32) error {
	return c.network.Train(features, target, lr)
}

func (c *Client) Predict(features []float32) ([]float32, error) {
	return c.network.Forward(features)
}

func (c *Client) Weights() []float32 {
	return c.network.FlatWeights()
}

func (c *Client) SetWeights(weights []float32) error {
	return c.network.SetFlatWeights(weights)
}

func (c *Client) Topology() []int {
	return c.network.Topology()
}

func (c *Client) Preprocessor() *dataset.Preprocessor {
	return c.preprocessor
}
