package hpo_test

import (
	"testing"

	"github.com/absmach/fedsim/hpo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridParams(t *testing.T) {
	cases := []struct {
		desc  string
		grid  hpo.Grid
		size  int
		first hpo.Params
		last  hpo.Params
	}{
		{
			desc:  "quick grid",
			grid:  hpo.QuickGrid(),
			size:  24,
			first: hpo.Params{Topology: []int{11, 15, 3}, LearningRate: 0.3, SamplesPerRound: 10, ClientFraction: 0.2},
			last:  hpo.Params{Topology: []int{11, 60, 3}, LearningRate: 0.75, SamplesPerRound: 20, ClientFraction: 0.4},
		},
		{
			desc:  "full grid",
			grid:  hpo.FullGrid(),
			size:  6 * 5 * 5 * 5,
			first: hpo.Params{Topology: []int{11, 10, 3}, LearningRate: 0.1, SamplesPerRound: 5, ClientFraction: 0.1},
			last:  hpo.Params{Topology: []int{11, 40, 20, 3}, LearningRate: 1.0, SamplesPerRound: 25, ClientFraction: 0.5},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			params := tc.grid.Params()
			require.Len(t, params, tc.size)
			assert.Equal(t, tc.size, tc.grid.Size())
			assert.Equal(t, tc.first, params[0])
			assert.Equal(t, tc.last, params[len(params)-1])
		})
	}
}

func TestGridInnermostFraction(t *testing.T) {
	params := hpo.QuickGrid().Params()
	assert.Equal(t, 0.4, params[1].ClientFraction)
	assert.Equal(t, 20, params[2].SamplesPerRound)
	assert.Equal(t, 0.75, params[4].LearningRate)
	assert.Equal(t, []int{11, 30, 3}, params[8].Topology)
}

func TestParamsString(t *testing.T) {
	p := hpo.Params{Topology: []int{11, 40, 20, 3}, LearningRate: 0.75, SamplesPerRound: 20, ClientFraction: 0.3}
	assert.Equal(t, "Topology: [11, 40, 20, 3], LR: 0.75, Samples/Round: 20, Client Fraction: 0.3", p.String())
}
