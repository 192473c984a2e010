// Package hpo searches a hyperparameter grid for the configuration that
// converges in the fewest federated rounds.
package hpo

import (
	"fmt"
	"strconv"
	"strings"
)

type Params struct {
	Topology        []int   `json:"topology"`
	LearningRate    float64 `json:"learning_rate"`
	SamplesPerRound int     `json:"samples_per_round"`
	ClientFraction  float64 `json:"client_fraction"`
}

func (p Params) String() string {
	return fmt.Sprintf("Topology: [%s], LR: %g, Samples/Round: %d, Client Fraction: %g",
		joinInts(p.Topology, ", "), p.LearningRate, p.SamplesPerRound, p.ClientFraction)
}

// Grid is the Cartesian product of its value lists.
type Grid struct {
	Topologies      [][]int
	LearningRates   []float64
	SamplesPerRound []int
	ClientFractions []float64
}

func QuickGrid() Grid {
	return Grid{
		Topologies:      [][]int{{11, 15, 3}, {11, 30, 3}, {11, 60, 3}},
		LearningRates:   []float64{0.3, 0.75},
		SamplesPerRound: []int{10, 20},
		ClientFractions: []float64{0.2, 0.4},
	}
}

func FullGrid() Grid {
	return Grid{
		Topologies: [][]int{
			{11, 10, 3}, {11, 15, 3}, {11, 20, 3},
			{11, 30, 3}, {11, 60, 3}, {11, 40, 20, 3},
		},
		LearningRates:   []float64{0.1, 0.3, 0.5, 0.75, 1.0},
		SamplesPerRound: []int{5, 10, 15, 20, 25},
		ClientFractions: []float64{0.1, 0.2, 0.3, 0.4, 0.5},
	}
}

func (g Grid) Size() int {
	return len(g.Topologies) * len(g.LearningRates) * len(g.SamplesPerRound) * len(g.ClientFractions)
}

// Params enumerates the grid with topology as the outermost and client
// fraction as the innermost dimension.
func (g Grid) Params() []Params {
	out := make([]Params, 0, g.Size())
	for _, topology := range g.Topologies {
		for _, lr := range g.LearningRates {
			for _, samples := range g.SamplesPerRound {
				for _, fraction := range g.ClientFractions {
					out = append(out, Params{
						Topology:        append([]int(nil), topology...),
						LearningRate:    lr,
						SamplesPerRound: samples,
						ClientFraction:  fraction,
					})
				}
			}
		}
	}

	return out
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, sep)
}
