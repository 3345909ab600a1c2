// Package dsp provides the low-level signal analysis primitives used by the
// sentence segmentation pipeline: Hamming-windowed magnitude spectra and
// time-domain features (RMS, zero-crossing rate, energy).
//
// All functions are pure: they never retain references to their inputs and
// return freshly allocated output. The only cached state is the per-size
// Hamming coefficient table inside an Analyzer, which is read-only once
// computed and safe for concurrent use.
package dsp

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Analyzer computes magnitude spectra of sample windows. It caches Hamming
// window coefficients keyed by FFT size so repeated analysis of same-sized
// windows does not recompute them. Safe for concurrent use.
type Analyzer struct {
	mu     sync.RWMutex
	coeffs map[int][]float64
}

// NewAnalyzer returns an Analyzer with an empty coefficient cache.
func NewAnalyzer() *Analyzer {
	return &Analyzer{coeffs: make(map[int][]float64)}
}

// Spectrum returns the magnitude spectrum of samples: the first size/2 bins of
// a Hamming-windowed FFT of length size. size must be a power of two and at
// least len(samples); shorter inputs are zero-padded. No normalization by size
// is applied; consumers compare magnitudes relatively, never absolutely.
func (a *Analyzer) Spectrum(samples []float32, size int) []float64 {
	buf := make([]float64, size)
	coeffs := a.hamming(size)
	for i, s := range samples {
		buf[i] = float64(s) * coeffs[i]
	}

	out := fft.FFTReal(buf)

	// Upper half is the mirror image of the lower (Nyquist symmetry).
	mags := make([]float64, size/2)
	for i := range mags {
		mags[i] = cmplx.Abs(out[i])
	}
	return mags
}

// hamming returns the cached Hamming coefficients for the given size,
// computing and caching them on first use.
func (a *Analyzer) hamming(size int) []float64 {
	a.mu.RLock()
	coeffs, ok := a.coeffs[size]
	a.mu.RUnlock()
	if ok {
		return coeffs
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if coeffs, ok = a.coeffs[size]; ok {
		return coeffs
	}
	coeffs = window.Hamming(size)
	a.coeffs[size] = coeffs
	return coeffs
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n. Returns 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// RMS returns the root-mean-square amplitude of samples, 0 for an empty slice.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Energy returns the sum of squared sample amplitudes.
func Energy(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return sum
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs whose signs
// differ. Samples equal to zero count as positive. Returns 0 for fewer than
// two samples.
func ZeroCrossingRate(samples []float32) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	prevNeg := samples[0] < 0
	for _, s := range samples[1:] {
		neg := s < 0
		if neg != prevNeg {
			crossings++
		}
		prevNeg = neg
	}
	return float64(crossings) / float64(len(samples)-1)
}
