package fl_test

import (
	"testing"

	"github.com/absmach/fedsim/pkg/fl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerSelectClients(t *testing.T) {
	a := fl.NewServer(42)
	b := fl.NewServer(42)

	for range 5 {
		selA, err := a.SelectClients(10, 0.3)
		require.NoError(t, err)
		selB, err := b.SelectClients(10, 0.3)
		require.NoError(t, err)

		assert.Equal(t, selA, selB)
		assert.Len(t, selA, 3)
		seen := make(map[int]bool)
		for _, c := range selA {
			assert.GreaterOrEqual(t, c, 0)
			assert.Less(t, c, 10)
			assert.False(t, seen[c], "client %d selected twice", c)
			seen[c] = true
		}
	}
}

func TestServerAverageWeights(t *testing.T) {
	s := fl.NewServer(1)

	vectors := make([][]float32, 7)
	for i := range vectors {
		vectors[i] = make([]float32, 50)
		for j := range vectors[i] {
			vectors[i][j] = float32(i*j)*0.01 - 0.2
		}
	}

	got, err := s.AverageWeights(vectors)
	require.NoError(t, err)
	require.Len(t, got, 50)
	for j := range got {
		var sum float32
		for i := range vectors {
			sum += vectors[i][j]
		}
		assert.InDelta(t, sum/float32(len(vectors)), got[j], 1e-6*float64(len(vectors)))
	}

	_, err = s.AverageWeights(nil)
	assert.ErrorIs(t, err, fl.ErrNoUpdates)

	_, err = s.AverageWeights([][]float32{{1, 2}, {1}})
	assert.ErrorIs(t, err, fl.ErrShapeMismatch)
}
