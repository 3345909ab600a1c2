package decode

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV encodes interleaved 16-bit PCM into a temp WAV file and returns its
// path.
func writeWAV(t *testing.T, sampleRate, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return path
}

func TestWAV_StereoRoundTrip(t *testing.T) {
	// Two stereo frames with exact power-of-two amplitudes.
	path := writeWAV(t, 8000, 2, []int{16384, -16384, 8192, 0})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	a, err := WAV(f)
	if err != nil {
		t.Fatalf("WAV: %v", err)
	}
	if a.SampleRate != 8000 {
		t.Errorf("sample rate = %d, want 8000", a.SampleRate)
	}
	if len(a.ChannelData) != 2 {
		t.Fatalf("channels = %d, want 2", len(a.ChannelData))
	}

	want := [][]float32{
		{0.5, 0.25},
		{-0.5, 0},
	}
	for ch := range want {
		if len(a.ChannelData[ch]) != 2 {
			t.Fatalf("channel %d has %d frames, want 2", ch, len(a.ChannelData[ch]))
		}
		for i, w := range want[ch] {
			if got := a.ChannelData[ch][i]; got != w {
				t.Errorf("channel %d frame %d = %f, want %f", ch, i, got, w)
			}
		}
	}
}

func TestWAV_Duration(t *testing.T) {
	data := make([]int, 4000) // 0.5s of mono at 8 kHz
	path := writeWAV(t, 8000, 1, data)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	a, err := WAV(f)
	if err != nil {
		t.Fatalf("WAV: %v", err)
	}
	if got := a.Duration(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("duration = %f, want 0.5", got)
	}
}

func TestWAV_InvalidPayload(t *testing.T) {
	if _, err := WAV(bytes.NewReader([]byte("definitely not a wav file"))); err == nil {
		t.Fatal("garbage input decoded without error")
	}
}

func TestAudio_DurationDegenerate(t *testing.T) {
	if got := (&Audio{}).Duration(); got != 0 {
		t.Errorf("zero-value duration = %f, want 0", got)
	}
}
