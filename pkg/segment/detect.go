// Package segment splits a decoded mono audio buffer into probable spoken
// sentences. It combines energy-based silence detection with a spectral voice
// activity classifier, builds sentence boundaries from the silent regions, and
// scores each sentence with a confidence value.
//
// The pipeline is a pure, deterministic batch computation over a complete
// sample buffer: identical inputs and options always produce bit-identical
// output. It performs no I/O; decoding containers into PCM is the caller's
// concern (see the decode package).
package segment

import (
	"fmt"
	"log/slog"

	"github.com/phonetica/cadence/pkg/dsp"
)

// Detector runs the detection pipeline with a fixed, validated configuration.
// A Detector is safe for concurrent use: each Detect call owns all of its
// intermediate state.
type Detector struct {
	opts       Options
	logger     *slog.Logger
	classifier *voiceClassifier
}

// New validates opts once and returns a ready Detector. Invalid combinations
// (window size not a power of two, min sentence length above max, ...) are
// rejected here, never deep inside the algorithm.
func New(opts Options) (*Detector, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("segment: invalid options: %w", err)
	}
	d := &Detector{
		opts:   opts,
		logger: opts.logger(),
	}
	d.classifier = &voiceClassifier{
		opts:     &d.opts,
		analyzer: dsp.NewAnalyzer(),
	}
	return d, nil
}

// Detect segments samples (normalized mono floats in [-1, 1]) into ordered
// sentences. An empty buffer yields an empty result, not an error. The
// returned sentences carry contiguous indices from 0 and never overlap.
func (d *Detector) Detect(samples []float32, sampleRate int) ([]Sentence, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("segment: sample rate must be positive, got %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	regions := d.detectSilentRegions(samples, sampleRate)
	if d.opts.Debug {
		d.logger.Debug("silent regions detected", "count", len(regions))
	}

	sentences := d.findSentenceBoundaries(regions, samples, sampleRate)

	if d.opts.MinSegmentLength > 0 {
		sentences = mergeShortSegments(sentences, d.opts.MinSegmentLength)
	}

	for i := range sentences {
		sentences[i].Index = i
	}

	if d.opts.Debug {
		for _, s := range sentences {
			d.logger.Debug("sentence",
				"index", s.Index,
				"start", s.Start,
				"end", s.End,
				"duration", s.Duration,
				"probability", s.Probability,
			)
		}
	}

	return sentences, nil
}

// SilentRegions exposes the silence detection stage on its own: the ordered,
// merged silent regions of the buffer. Useful for diagnostics and tooling that
// only needs the silence map.
func (d *Detector) SilentRegions(samples []float32, sampleRate int) ([]SilentRegion, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("segment: sample rate must be positive, got %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, nil
	}
	return d.detectSilentRegions(samples, sampleRate), nil
}

// Detect is a convenience wrapper constructing a one-shot Detector.
func Detect(samples []float32, sampleRate int, opts Options) ([]Sentence, error) {
	d, err := New(opts)
	if err != nil {
		return nil, err
	}
	return d.Detect(samples, sampleRate)
}
