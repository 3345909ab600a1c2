// Package audio provides small PCM utilities shared by the segmentation
// pipeline: downmixing multichannel data to the mono stream the detector
// consumes.
package audio

import "encoding/binary"

// Downmix reduces channel-major float data to mono by averaging all channels
// per frame. Channels of unequal length are truncated to the shortest. A
// single channel is copied, never aliased.
func Downmix(channels [][]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < frames {
			frames = len(ch)
		}
	}

	mono := make([]float32, frames)
	if len(channels) == 1 {
		copy(mono, channels[0][:frames])
		return mono
	}

	for i := range frames {
		var sum float32
		for _, ch := range channels {
			sum += ch[i]
		}
		mono[i] = sum / float32(len(channels))
	}
	return mono
}

// DownmixPCM16 converts interleaved 16-bit signed little-endian PCM to mono
// float32 samples normalized to [-1, 1], averaging all channels per frame.
// Any trailing partial frame is ignored.
func DownmixPCM16(pcm []byte, channels int) []float32 {
	if channels < 1 {
		return nil
	}
	frames := len(pcm) / (2 * channels)
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			idx := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			sum += float32(sample) / 32768.0
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
