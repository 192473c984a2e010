package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// TestFraction is the share of prepared samples held out for evaluation.
const TestFraction = 0.2

// FeatureExtractor maps the x-axis acceleration trace of a sample to its
// feature vector. Services share one extractor across concurrent runs, so
// implementations must be safe for concurrent use.
type FeatureExtractor interface {
	Extract(accX []float32) []float32
}

// Preprocessor owns the prepared train/test split and the per-client
// samplers. It is shared by all simulated clients and must only be used
// from one goroutine.
type Preprocessor struct {
	seed      uint64
	extractor FeatureExtractor

	prepared   bool
	training   []TrainingSample
	test       []TrainingSample
	featureMin float32
	featureMax float32

	samplers map[int]*sampler
}

func NewPreprocessor(seed uint64, extractor FeatureExtractor) *Preprocessor {
	return &Preprocessor{
		seed:       seed,
		extractor:  extractor,
		featureMin: 0,
		featureMax: 1,
		samplers:   make(map[int]*sampler),
	}
}

// Prepare extracts features, scales every value with one global min/max
// pair, builds one-hot targets and splits the shuffled result 20/80 into
// test and training sets.
func (p *Preprocessor) Prepare(samples []MotionSample) error {
	all := make([]TrainingSample, 0, len(samples))
	for _, s := range samples {
		target, err := oneHot(s.Label)
		if err != nil {
			return fmt.Errorf("sample %d: %w", s.SampleID, err)
		}
		all = append(all, TrainingSample{
			Features: p.extractor.Extract(s.AccX),
			Target:   target,
		})
	}

	p.featureMin, p.featureMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	for _, s := range all {
		for _, f := range s.Features {
			p.featureMin = min(p.featureMin, f)
			p.featureMax = max(p.featureMax, f)
		}
	}
	if span := p.featureMax - p.featureMin; span > 0 {
		for _, s := range all {
			for i, f := range s.Features {
				s.Features[i] = (f - p.featureMin) / span
			}
		}
	}

	rng := rand.New(rand.NewPCG(p.seed, 0))
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	testSize := int(float64(len(all)) * TestFraction)
	p.test = all[:testSize:testSize]
	p.training = all[testSize:]
	p.prepared = true
	p.ResetSampling()

	return nil
}

// NextTrainingSample returns the next sample of the client's private
// permutation of the training set. The stream never ends: after a full
// pass the permutation is reshuffled with the client's own generator.
func (p *Preprocessor) NextTrainingSample(clientID int) (TrainingSample, error) {
	if !p.prepared {
		return TrainingSample{}, ErrNotPrepared
	}
	if len(p.training) == 0 {
		return TrainingSample{}, ErrEmptyTrainingSet
	}

	s, ok := p.samplers[clientID]
	if !ok {
		s = newSampler(p.seed+uint64(clientID), len(p.training))
		p.samplers[clientID] = s
	}

	return p.training[s.next()], nil
}

// ResetSampling drops every client sampler; the next request re-creates
// it from its seed.
func (p *Preprocessor) ResetSampling() {
	clear(p.samplers)
}

func (p *Preprocessor) TestSet() []TrainingSample {
	return append([]TrainingSample(nil), p.test...)
}

func (p *Preprocessor) TrainingSet() []TrainingSample {
	return append([]TrainingSample(nil), p.training...)
}

// ScaleParams returns the global feature minimum and maximum used for
// normalization.
func (p *Preprocessor) ScaleParams() (float32, float32) {
	return p.featureMin, p.featureMax
}

type sampler struct {
	rng    *rand.Rand
	perm   []int
	cursor int
}

func newSampler(seed uint64, n int) *sampler {
	s := &sampler{
		rng:  rand.New(rand.NewPCG(seed, 0)),
		perm: make([]int, n),
	}
	for i := range s.perm {
		s.perm[i] = i
	}
	s.shuffle()

	return s
}

func (s *sampler) next() int {
	idx := s.perm[s.cursor]
	s.cursor = (s.cursor + 1) % len(s.perm)
	if s.cursor == 0 {
		s.shuffle()
	}

	return idx
}

func (s *sampler) shuffle() {
	s.rng.Shuffle(len(s.perm), func(i, j int) {
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
	})
}
