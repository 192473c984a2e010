package simulation_test

import (
	"testing"

	"github.com/absmach/fedsim/pkg/dataset"
	"github.com/absmach/fedsim/simulation"
	"github.com/stretchr/testify/assert"
)

const featureDim = 11

// passthrough uses the first values of the x trace as the feature vector.
type passthrough struct{}

func (passthrough) Extract(accX []float32) []float32 {
	out := make([]float32, featureDim)
	copy(out, accX)

	return out
}

// separable builds n samples cycling through the classes. Each class lights
// up its own block of three features, so classes stay linearly separable
// after scaling.
func separable(n int) []dataset.MotionSample {
	samples := make([]dataset.MotionSample, n)
	for i := range samples {
		label := i % dataset.NumClasses
		acc := make([]float32, featureDim)
		for d := label * 3; d < label*3+3; d++ {
			acc[d] = 10 - 0.5*float32(i/dataset.NumClasses%4)
		}
		samples[i] = dataset.MotionSample{
			SampleID: i,
			Label:    label,
			AccX:     acc,
		}
	}

	return samples
}

func baseConfig() simulation.Config {
	return simulation.Config{
		RunID:           "run-1",
		NumClients:      4,
		ClientFraction:  0.5,
		SamplesPerRound: 2,
		LearningRate:    0.5,
		Rounds:          3,
		Topology:        []int{featureDim, 4, dataset.NumClasses},
		Seed:            42,
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		desc   string
		mutate func(c *simulation.Config)
		err    error
	}{
		{desc: "valid config", mutate: func(*simulation.Config) {}},
		{desc: "full participation", mutate: func(c *simulation.Config) { c.ClientFraction = 1 }},
		{desc: "zero clients", mutate: func(c *simulation.Config) { c.NumClients = 0 }, err: simulation.ErrInvalidConfig},
		{desc: "zero fraction", mutate: func(c *simulation.Config) { c.ClientFraction = 0 }, err: simulation.ErrInvalidConfig},
		{desc: "fraction above one", mutate: func(c *simulation.Config) { c.ClientFraction = 1.5 }, err: simulation.ErrInvalidConfig},
		{desc: "zero samples", mutate: func(c *simulation.Config) { c.SamplesPerRound = 0 }, err: simulation.ErrInvalidConfig},
		{desc: "negative learning rate", mutate: func(c *simulation.Config) { c.LearningRate = -0.1 }, err: simulation.ErrInvalidConfig},
		{desc: "zero rounds", mutate: func(c *simulation.Config) { c.Rounds = 0 }, err: simulation.ErrInvalidConfig},
		{desc: "single layer", mutate: func(c *simulation.Config) { c.Topology = []int{11} }, err: simulation.ErrInvalidConfig},
		{desc: "wrong output layer", mutate: func(c *simulation.Config) { c.Topology = []int{11, 4, 2} }, err: simulation.ErrInvalidConfig},
		{desc: "empty hidden layer", mutate: func(c *simulation.Config) { c.Topology = []int{11, 0, 3} }, err: simulation.ErrInvalidConfig},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			assert.NoError(t, err)
		})
	}
}
