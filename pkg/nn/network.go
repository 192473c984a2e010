// Package nn implements the dense sigmoid perceptron trained by every
// simulated client. Weights travel between clients and the server as a flat
// float32 vector: per layer, all weights row-major [out][in], then all biases.
package nn

import "fmt"

type Network struct {
	topology []int
	layers   []*layer
}

// New builds a network for the given topology. Layer i is seeded with
// seed+i, so two networks built with the same seed are bit-identical.
func New(topology []int, seed uint64) (*Network, error) {
	if len(topology) < 2 {
		return nil, ErrInvalidTopology
	}
	for _, size := range topology {
		if size <= 0 {
			return nil, ErrInvalidTopology
		}
	}

	n := &Network{
		topology: append([]int(nil), topology...),
		layers:   make([]*layer, 0, len(topology)-1),
	}
	for i := 0; i < len(topology)-1; i++ {
		n.layers = append(n.layers, newLayer(topology[i], topology[i+1], seed+uint64(i)))
	}

	return n, nil
}

func (n *Network) Topology() []int {
	return append([]int(nil), n.topology...)
}

// NumParams is the length of the flat weight vector.
func (n *Network) NumParams() int {
	total := 0
	for _, l := range n.layers {
		total += l.params()
	}

	return total
}

// Forward runs x through every layer and returns a copy of the output
// activations. Each layer keeps its outputs for the next backward pass.
func (n *Network) Forward(x []float32) ([]float32, error) {
	if len(x) != n.topology[0] {
		return nil, fmt.Errorf("%w: input has %d values, network expects %d", ErrShapeMismatch, len(x), n.topology[0])
	}

	current := x
	for _, l := range n.layers {
		current = l.forward(current)
	}

	return append([]float32(nil), current...), nil
}

// Train performs one online SGD step on a single sample. The output gradient
// is o-t scaled by the sigmoid derivative, not the softmax cross-entropy form.
func (n *Network) Train(x, target []float32, lr float32) error {
	if len(target) != n.topology[len(n.topology)-1] {
		return fmt.Errorf("%w: target has %d values, network outputs %d", ErrShapeMismatch, len(target), n.topology[len(n.topology)-1])
	}

	out, err := n.Forward(x)
	if err != nil {
		return err
	}

	grad := make([]float32, len(out))
	for k := range out {
		grad[k] = out[k] - target[k]
	}

	for i := len(n.layers) - 1; i >= 0; i-- {
		in := x
		if i > 0 {
			in = n.layers[i-1].lastOutputs
		}
		grad = n.layers[i].backward(in, grad, lr)
	}

	return nil
}

func (n *Network) FlatWeights() []float32 {
	flat := make([]float32, 0, n.NumParams())
	for _, l := range n.layers {
		for _, row := range l.weights {
			flat = append(flat, row...)
		}
		flat = append(flat, l.biases...)
	}

	return flat
}

func (n *Network) SetFlatWeights(flat []float32) error {
	if want := n.NumParams(); len(flat) != want {
		return fmt.Errorf("%w: got %d weights, network has %d", ErrShapeMismatch, len(flat), want)
	}

	offset := 0
	for _, l := range n.layers {
		for _, row := range l.weights {
			offset += copy(row, flat[offset:offset+len(row)])
		}
		offset += copy(l.biases, flat[offset:offset+len(l.biases)])
	}

	return nil
}
