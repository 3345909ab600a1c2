// Package decode adapts encoded audio payloads into the normalized sample
// representation the detector consumes: a sample rate plus per-channel float
// sequences of equal length in [-1, 1].
//
// Only WAV is handled here. Arbitrary container/codec input is the job of an
// external transcoder feeding WAV (or raw PCM) into this adapter.
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// Audio is a decoded payload: one float sequence per channel, all of equal
// length, amplitudes normalized to [-1, 1].
type Audio struct {
	SampleRate  int
	ChannelData [][]float32
}

// Duration returns the payload duration in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate == 0 || len(a.ChannelData) == 0 {
		return 0
	}
	return float64(len(a.ChannelData[0])) / float64(a.SampleRate)
}

// WAV decodes a complete WAV payload from r. Integer PCM at 8, 16, 24 and
// 32 bits per sample is supported; 8-bit input is treated as unsigned per the
// WAV convention. A decode failure wraps the upstream error; no partially
// decoded audio is ever returned.
func WAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("decode: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode: read wav payload: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate < 1 {
		return nil, errors.New("decode: wav payload has no usable format")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels

	out := &Audio{
		SampleRate:  buf.Format.SampleRate,
		ChannelData: make([][]float32, channels),
	}
	for ch := range out.ChannelData {
		out.ChannelData[ch] = make([]float32, frames)
	}

	scale := float32(int64(1) << (bitDepth - 1))
	for i := range frames {
		for ch := 0; ch < channels; ch++ {
			v := buf.Data[i*channels+ch]
			if bitDepth == 8 {
				// 8-bit WAV is unsigned.
				v -= 128
			}
			out.ChannelData[ch][i] = float32(v) / scale
		}
	}
	return out, nil
}
