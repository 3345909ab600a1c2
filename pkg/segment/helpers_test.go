package segment

import (
	"math"
	"testing"
)

// sineWave generates dur seconds of a sine at freq Hz with the given amplitude.
func sineWave(freq float64, amp float32, sampleRate int, dur float64) []float32 {
	n := int(dur * float64(sampleRate))
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

// voicedSignal generates dur seconds of a speech-like test tone: equal parts
// 500, 1500 and 2500 Hz, one component inside each default formant band, so
// the voice activity classifier reliably fires on it.
func voicedSignal(sampleRate int, dur float64) []float32 {
	n := int(dur * float64(sampleRate))
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		s := math.Sin(2*math.Pi*500*t) + math.Sin(2*math.Pi*1500*t) + math.Sin(2*math.Pi*2500*t)
		out[i] = 0.3 * float32(s)
	}
	return out
}

// silence generates dur seconds of digital silence.
func silence(sampleRate int, dur float64) []float32 {
	return make([]float32, int(dur*float64(sampleRate)))
}

func concat(parts ...[]float32) []float32 {
	var out []float32
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// newDetector fails the test when opts do not validate.
func newDetector(t *testing.T, opts Options) *Detector {
	t.Helper()
	d, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}
