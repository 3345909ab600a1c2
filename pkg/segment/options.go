package segment

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/phonetica/cadence/pkg/dsp"
)

// Options holds every tunable parameter of the detection pipeline. Every field
// is always present with an explicit default: variant behaviours (AllowGaps,
// AlignToAudioBoundaries, MinSegmentLength) are enabled/disabled states of the
// same pipeline, not separate code paths.
//
// Construct via DefaultOptions and override what you need; New validates the
// result once and rejects invalid combinations before any audio is touched.
type Options struct {
	// MinSilenceDuration is the minimum duration in seconds a silent run must
	// span to count as a sentence-bounding silent region.
	MinSilenceDuration float64

	// SilenceThreshold is the RMS amplitude below which a window is silent
	// regardless of its spectral content.
	SilenceThreshold float64

	// MinSentenceLength is the minimum sentence duration in seconds. Shorter
	// candidate spans are absorbed into the following candidate.
	MinSentenceLength float64

	// MaxSentenceLength is the maximum sentence duration in seconds. Longer
	// spans are split into equal parts.
	MaxSentenceLength float64

	// WindowSize is the analysis window length in samples. Must be a positive
	// power of two (required by the FFT).
	WindowSize int

	// IdealSentenceLength in seconds centres the length sub-score.
	IdealSentenceLength float64

	// IdealSilenceDuration in seconds centres the silence-duration sub-score.
	IdealSilenceDuration float64

	// AllowGaps leaves the silent gaps between sentences uncovered. When
	// false, sentence boundaries are pushed into the silence so that sentences
	// tile the buffer without gaps.
	AllowGaps bool

	// MinSegmentLength in seconds enables the short-segment merge pass when
	// positive: consecutive sentences are greedily grouped until each group
	// meets this length. Zero disables the pass.
	MinSegmentLength float64

	// AlignToAudioBoundaries forces the first sentence to start at 0 and the
	// last to end at the buffer's end.
	AlignToAudioBoundaries bool

	// FundamentalFreqMin and FundamentalFreqMax bound the pitch range in Hz
	// used by the voice-band energy feature.
	FundamentalFreqMin float64
	FundamentalFreqMax float64

	// FormantFreqRanges lists the [low, high] Hz bounds of the formant bands
	// checked by the voice activity detector.
	FormantFreqRanges [][2]float64

	// VoiceActivityThreshold is the minimum voice-band energy ratio for the
	// voice-band feature to fire.
	VoiceActivityThreshold float64

	// ZeroCrossingRateThreshold is the upper ZCR bound for the ZCR feature.
	ZeroCrossingRateThreshold float64

	// Debug enables structured trace emission of per-window and per-sentence
	// intermediate values through Logger. Diagnostic only; it does not change
	// the result.
	Debug bool

	// Logger receives debug traces. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the documented default configuration.
func DefaultOptions() Options {
	return Options{
		MinSilenceDuration:   0.5,
		SilenceThreshold:     0.01,
		MinSentenceLength:    1,
		MaxSentenceLength:    15,
		WindowSize:           2048,
		IdealSentenceLength:  5,
		IdealSilenceDuration: 0.8,
		AllowGaps:            true,
		MinSegmentLength:     0,
		FundamentalFreqMin:   85,
		FundamentalFreqMax:   255,
		FormantFreqRanges: [][2]float64{
			{270, 730},
			{840, 2290},
			{1690, 3010},
		},
		VoiceActivityThreshold:    0.4,
		ZeroCrossingRateThreshold: 0.3,
	}
}

// Validate checks that o contains a coherent set of values. It returns a
// joined error listing all validation failures found, or nil.
func (o Options) Validate() error {
	var errs []error

	if !dsp.IsPowerOfTwo(o.WindowSize) {
		errs = append(errs, fmt.Errorf("window size %d must be a positive power of two", o.WindowSize))
	}
	if o.MinSentenceLength <= 0 {
		errs = append(errs, fmt.Errorf("min sentence length %.3fs must be positive", o.MinSentenceLength))
	}
	if o.MaxSentenceLength <= 0 {
		errs = append(errs, fmt.Errorf("max sentence length %.3fs must be positive", o.MaxSentenceLength))
	}
	if o.MinSentenceLength > o.MaxSentenceLength {
		errs = append(errs, fmt.Errorf("min sentence length %.3fs exceeds max sentence length %.3fs", o.MinSentenceLength, o.MaxSentenceLength))
	}
	if o.MinSilenceDuration <= 0 {
		errs = append(errs, fmt.Errorf("min silence duration %.3fs must be positive", o.MinSilenceDuration))
	}
	if o.SilenceThreshold <= 0 {
		errs = append(errs, fmt.Errorf("silence threshold %.4f must be positive", o.SilenceThreshold))
	}
	if o.IdealSentenceLength <= 0 {
		errs = append(errs, fmt.Errorf("ideal sentence length %.3fs must be positive", o.IdealSentenceLength))
	}
	if o.IdealSilenceDuration <= 0 {
		errs = append(errs, fmt.Errorf("ideal silence duration %.3fs must be positive", o.IdealSilenceDuration))
	}
	if o.MinSegmentLength < 0 {
		errs = append(errs, fmt.Errorf("min segment length %.3fs must not be negative", o.MinSegmentLength))
	}
	if o.FundamentalFreqMin <= 0 || o.FundamentalFreqMax <= o.FundamentalFreqMin {
		errs = append(errs, fmt.Errorf("fundamental frequency range [%.0f, %.0f] Hz is invalid", o.FundamentalFreqMin, o.FundamentalFreqMax))
	}
	if len(o.FormantFreqRanges) == 0 {
		errs = append(errs, errors.New("at least one formant frequency range is required"))
	}
	for i, r := range o.FormantFreqRanges {
		if r[0] <= 0 || r[1] <= r[0] {
			errs = append(errs, fmt.Errorf("formant range %d [%.0f, %.0f] Hz is invalid", i, r[0], r[1]))
		}
	}
	if o.VoiceActivityThreshold <= 0 {
		errs = append(errs, fmt.Errorf("voice activity threshold %.3f must be positive", o.VoiceActivityThreshold))
	}
	if o.ZeroCrossingRateThreshold <= 0 {
		errs = append(errs, fmt.Errorf("zero crossing rate threshold %.3f must be positive", o.ZeroCrossingRateThreshold))
	}

	return errors.Join(errs...)
}

// logger returns the configured debug logger, falling back to slog.Default().
func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
