package dataset_test

import (
	"testing"

	"github.com/absmach/fedsim/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthrough uses the first values of the trace as features.
type passthrough struct {
	dim int
}

func (p passthrough) Extract(accX []float32) []float32 {
	out := make([]float32, p.dim)
	copy(out, accX)

	return out
}

func syntheticSamples(n int) []dataset.MotionSample {
	samples := make([]dataset.MotionSample, n)
	for i := range samples {
		label := i % dataset.NumClasses
		acc := make([]float32, 4)
		for j := range acc {
			acc[j] = float32(label*10 + i + j)
		}
		samples[i] = dataset.MotionSample{
			SampleID: i,
			Label:    label,
			AccX:     acc,
		}
	}

	return samples
}

func prepared(t *testing.T, seed uint64, n int) *dataset.Preprocessor {
	t.Helper()
	p := dataset.NewPreprocessor(seed, passthrough{dim: 4})
	require.NoError(t, p.Prepare(syntheticSamples(n)))

	return p
}

func TestPrepareSplit(t *testing.T) {
	cases := []struct {
		desc     string
		samples  int
		test     int
		training int
	}{
		{desc: "hundred samples", samples: 100, test: 20, training: 80},
		{desc: "six samples", samples: 6, test: 1, training: 5},
		{desc: "four samples", samples: 4, test: 0, training: 4},
		{desc: "no samples", samples: 0, test: 0, training: 0},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			p := prepared(t, 42, tc.samples)
			assert.Len(t, p.TestSet(), tc.test)
			assert.Len(t, p.TrainingSet(), tc.training)
		})
	}
}

func TestPrepareOneHotAndNormalization(t *testing.T) {
	p := prepared(t, 42, 60)

	lo, hi := float32(1), float32(0)
	for _, s := range append(p.TrainingSet(), p.TestSet()...) {
		var sum float32
		ones := 0
		for _, v := range s.Target {
			sum += v
			if v == 1 {
				ones++
			}
		}
		assert.Equal(t, float32(1), sum)
		assert.Equal(t, 1, ones)

		for _, f := range s.Features {
			lo = min(lo, f)
			hi = max(hi, f)
		}
	}
	assert.Equal(t, float32(0), lo)
	assert.Equal(t, float32(1), hi)

	fmin, fmax := p.ScaleParams()
	assert.Equal(t, float32(0), fmin)
	assert.Equal(t, float32(20+59+3), fmax)
}

func TestPrepareConstantFeatures(t *testing.T) {
	samples := syntheticSamples(10)
	for i := range samples {
		samples[i].AccX = []float32{3, 3, 3, 3}
	}

	p := dataset.NewPreprocessor(42, passthrough{dim: 4})
	require.NoError(t, p.Prepare(samples))
	for _, s := range p.TrainingSet() {
		assert.Equal(t, []float32{3, 3, 3, 3}, s.Features)
	}
}

func TestPrepareInvalidLabel(t *testing.T) {
	samples := syntheticSamples(5)
	samples[2].Label = 3

	p := dataset.NewPreprocessor(42, passthrough{dim: 4})
	assert.ErrorIs(t, p.Prepare(samples), dataset.ErrInvalidLabel)
}

func TestPrepareDeterministic(t *testing.T) {
	a := prepared(t, 42, 50)
	b := prepared(t, 42, 50)
	c := prepared(t, 7, 50)

	assert.Equal(t, a.TestSet(), b.TestSet())
	assert.Equal(t, a.TrainingSet(), b.TrainingSet())
	assert.NotEqual(t, a.TrainingSet(), c.TrainingSet())
}

func TestNextTrainingSampleErrors(t *testing.T) {
	p := dataset.NewPreprocessor(42, passthrough{dim: 4})
	_, err := p.NextTrainingSample(0)
	assert.ErrorIs(t, err, dataset.ErrNotPrepared)

	require.NoError(t, p.Prepare(nil))
	_, err = p.NextTrainingSample(0)
	assert.ErrorIs(t, err, dataset.ErrEmptyTrainingSet)
}

func TestSamplerDeterminism(t *testing.T) {
	p := prepared(t, 42, 40)
	first := draw(t, p, 3, 70)

	p.ResetSampling()
	assert.Equal(t, first, draw(t, p, 3, 70))

	other := prepared(t, 42, 40)
	assert.Equal(t, first, draw(t, other, 3, 70))
}

func TestSamplerIndependentOfInterleaving(t *testing.T) {
	alone := prepared(t, 42, 40)
	want := draw(t, alone, 5, 50)

	mixed := prepared(t, 42, 40)
	var got []dataset.TrainingSample
	for range 50 {
		_, err := mixed.NextTrainingSample(1)
		require.NoError(t, err)
		s, err := mixed.NextTrainingSample(5)
		require.NoError(t, err)
		got = append(got, s)
		_, err = mixed.NextTrainingSample(9)
		require.NoError(t, err)
	}
	assert.Equal(t, want, got)
}

func TestSamplerDistinctClients(t *testing.T) {
	p := prepared(t, 42, 40)
	assert.NotEqual(t, draw(t, p, 0, 20), draw(t, p, 1, 20))
}

func TestSamplerCoverage(t *testing.T) {
	p := prepared(t, 42, 40)
	n := len(p.TrainingSet())

	// Three full passes, each starting at a wrap boundary.
	for pass := range 3 {
		seen := make(map[float32]int)
		for _, s := range draw(t, p, 2, n) {
			seen[s.Features[0]+s.Features[1]*1e3]++
		}
		assert.Len(t, seen, n, "pass %d", pass)
		for key, count := range seen {
			assert.Equal(t, 1, count, "pass %d sample %v", pass, key)
		}
	}
}

func draw(t *testing.T, p *dataset.Preprocessor, client, k int) []dataset.TrainingSample {
	t.Helper()
	out := make([]dataset.TrainingSample, 0, k)
	for range k {
		s, err := p.NextTrainingSample(client)
		require.NoError(t, err)
		out = append(out, s)
	}

	return out
}
