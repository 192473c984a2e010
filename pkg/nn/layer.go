package nn

import (
	"math"
	"math/rand/v2"
)

const biasRange = 0.1

type layer struct {
	weights     [][]float32 // [out][in]
	biases      []float32
	lastOutputs []float32
}

// newLayer draws Xavier-uniform weights row by row, then uniform biases,
// from a single generator seeded for this layer.
func newLayer(inputs, outputs int, seed uint64) *layer {
	rng := rand.New(rand.NewPCG(seed, 0))
	limit := float32(math.Sqrt(6.0 / float64(inputs+outputs)))

	l := &layer{
		weights:     make([][]float32, outputs),
		biases:      make([]float32, outputs),
		lastOutputs: make([]float32, outputs),
	}
	for k := range l.weights {
		row := make([]float32, inputs)
		for j := range row {
			row[j] = uniform(rng, limit)
		}
		l.weights[k] = row
	}
	for k := range l.biases {
		l.biases[k] = uniform(rng, biasRange)
	}

	return l
}

func uniform(rng *rand.Rand, limit float32) float32 {
	return (2*rng.Float32() - 1) * limit
}

func (l *layer) inputs() int {
	if len(l.weights) == 0 {
		return 0
	}

	return len(l.weights[0])
}

func (l *layer) outputs() int {
	return len(l.weights)
}

func (l *layer) params() int {
	return l.inputs()*l.outputs() + l.outputs()
}

func (l *layer) forward(x []float32) []float32 {
	for k, row := range l.weights {
		sum := l.biases[k]
		for j, w := range row {
			sum += w * x[j]
		}
		l.lastOutputs[k] = sigmoid(sum)
	}

	return l.lastOutputs
}

// backward applies one SGD update to the layer and returns the gradient for
// the previous layer. The propagated gradient uses each weight as read before
// it is updated.
func (l *layer) backward(x, grad []float32, lr float32) []float32 {
	next := make([]float32, len(x))
	for k, row := range l.weights {
		o := l.lastOutputs[k]
		delta := grad[k] * o * (1 - o)
		l.biases[k] -= lr * delta
		for j := range row {
			next[j] += row[j] * delta
			row[j] -= lr * delta * x[j]
		}
	}

	return next
}

func sigmoid(z float32) float32 {
	return 1 / (1 + float32(math.Exp(float64(-z))))
}
