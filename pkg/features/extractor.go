// Package features turns raw accelerometer traces into the 11-value vectors
// the classifier consumes: eight FFT band energies of the x axis followed by
// its mean, maximum and standard deviation.
package features

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	WindowSize   = 256
	SamplingFreq = 100
	NumBands     = 8
	NumStats     = 3
	Dimension    = NumBands + NumStats
)

// BandEdges are the frequency band boundaries in Hz.
var BandEdges = [NumBands + 1]int{0, 5, 10, 15, 20, 25, 30, 40, 50}

// Extractor is safe for concurrent use. FFT plans keep scratch space, so
// each call borrows its own from a pool.
type Extractor struct {
	ffts   sync.Pool
	window []float64
}

func NewExtractor() *Extractor {
	window := make([]float64, WindowSize)
	for i := range window {
		window[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(WindowSize-1))
	}

	return &Extractor{
		ffts: sync.Pool{
			New: func() any { return fourier.NewFFT(WindowSize) },
		},
		window: window,
	}
}

func (e *Extractor) Dimension() int {
	return Dimension
}

// Extract computes the feature vector for a single trace. Traces shorter
// than the window are zero padded.
func (e *Extractor) Extract(accX []float32) []float32 {
	signal := make([]float64, WindowSize)
	for i := 0; i < WindowSize && i < len(accX); i++ {
		signal[i] = float64(accX[i])
	}

	out := make([]float32, 0, Dimension)
	for _, energy := range e.bandEnergies(e.magnitudes(signal)) {
		out = append(out, float32(energy))
	}

	return append(out,
		float32(stat.Mean(signal, nil)),
		float32(floats.Max(signal)),
		float32(stat.PopStdDev(signal, nil)),
	)
}

func (e *Extractor) magnitudes(signal []float64) []float64 {
	windowed := make([]float64, WindowSize)
	floats.MulTo(windowed, signal, e.window)

	fft := e.ffts.Get().(*fourier.FFT)
	coeffs := fft.Coefficients(nil, windowed)
	e.ffts.Put(fft)

	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}

	return mags
}

// bandEnergies averages magnitudes per band. Bin boundaries are
// edge*len(mags)/fs with integer division.
func (e *Extractor) bandEnergies(mags []float64) []float64 {
	energies := make([]float64, NumBands)
	for band := range energies {
		start := BandEdges[band] * len(mags) / SamplingFreq
		end := BandEdges[band+1] * len(mags) / SamplingFreq
		sum := 0.0
		for i := start; i < end && i < len(mags); i++ {
			sum += mags[i]
		}
		if end > start {
			energies[band] = sum / float64(end-start)
		}
	}

	return energies
}
