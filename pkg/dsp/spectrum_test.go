package dsp

import (
	"math"
	"testing"
)

// sine returns n samples of a sine completing cycles full periods over n.
func sine(n, cycles int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * float64(cycles) * float64(i) / float64(n)))
	}
	return out
}

func TestSpectrum_PeakBin(t *testing.T) {
	const size = 1024
	a := NewAnalyzer()

	// 32 full cycles over 1024 samples put all energy in bin 32; the Hamming
	// window spreads it into neighbours but the peak must stay put.
	mags := a.Spectrum(sine(size, 32), size)
	if len(mags) != size/2 {
		t.Fatalf("spectrum length = %d, want %d", len(mags), size/2)
	}

	peak := 0
	for i, m := range mags {
		if m > mags[peak] {
			peak = i
		}
	}
	if peak != 32 {
		t.Errorf("peak at bin %d, want 32", peak)
	}
}

func TestSpectrum_ZeroInput(t *testing.T) {
	a := NewAnalyzer()
	for _, m := range a.Spectrum(make([]float32, 256), 256) {
		if m != 0 {
			t.Fatalf("nonzero magnitude %f for silent input", m)
		}
	}
}

func TestSpectrum_ZeroPadding(t *testing.T) {
	a := NewAnalyzer()

	// 600 samples analysed at FFT size 1024: the tail is zero-padded.
	mags := a.Spectrum(sine(600, 10), 1024)
	if len(mags) != 512 {
		t.Fatalf("spectrum length = %d, want 512", len(mags))
	}
	var total float64
	for _, m := range mags {
		total += m
	}
	if total == 0 {
		t.Error("zero-padded spectrum carries no energy")
	}
}

func TestSpectrum_Deterministic(t *testing.T) {
	a := NewAnalyzer()
	in := sine(512, 7)

	first := a.Spectrum(in, 512)
	second := a.Spectrum(in, 512) // second call hits the coefficient cache
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("bin %d differs between calls: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestRMS(t *testing.T) {
	cases := []struct {
		name string
		in   []float32
		want float64
	}{
		{"empty", nil, 0},
		{"constant", []float32{0.5, 0.5, 0.5, 0.5}, 0.5},
		{"alternating", []float32{1, -1, 1, -1}, 1},
	}
	for _, c := range cases {
		if got := RMS(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("RMS(%s) = %f, want %f", c.name, got, c.want)
		}
	}
}

func TestEnergy(t *testing.T) {
	if got := Energy([]float32{1, 2, 3}); got != 14 {
		t.Errorf("Energy = %f, want 14", got)
	}
	if got := Energy(nil); got != 0 {
		t.Errorf("Energy of empty = %f, want 0", got)
	}
}

func TestZeroCrossingRate(t *testing.T) {
	cases := []struct {
		name string
		in   []float32
		want float64
	}{
		{"too short", []float32{1}, 0},
		{"no crossings", []float32{1, 2, 3, 4}, 0},
		{"every pair crosses", []float32{1, -1, 1, -1}, 1},
		{"zero counts positive", []float32{1, 0, -1}, 0.5},
	}
	for _, c := range cases {
		if got := ZeroCrossingRate(c.in); got != c.want {
			t.Errorf("ZeroCrossingRate(%s) = %f, want %f", c.name, got, c.want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	cases := map[int]bool{
		-4: false, 0: false, 1: true, 2: true, 3: false, 1024: true, 1000: false,
	}
	for n, want := range cases {
		if got := IsPowerOfTwo(n); got != want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{
		0: 1, 1: 1, 2: 2, 3: 4, 1000: 1024, 1024: 1024,
	}
	for n, want := range cases {
		if got := NextPowerOfTwo(n); got != want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", n, got, want)
		}
	}
}
