package segment

import (
	"github.com/phonetica/cadence/pkg/dsp"
)

// Feature weights of the voice activity classifier. They sum to 1; the
// decision threshold sits above a simple majority on purpose: precision over
// recall for voice presence.
const (
	vadWeightZCR       = 0.3
	vadWeightCentroid  = 0.3
	vadWeightFormant   = 0.2
	vadWeightVoiceBand = 0.2

	vadDecisionThreshold = 0.6

	// Voiced speech has bounded, non-zero ZCR; silence and pure noise violate
	// the bounds.
	zcrFloor = 0.1

	// Spectral centroid range of speech, in Hz.
	centroidMin = 100
	centroidMax = 3000

	// A formant band fires when it carries more than this fraction of the
	// total spectral energy.
	formantBandEnergyMin = 0.1

	// Bin weights of the voice-band energy feature.
	pitchBandWeight   = 2.0
	formantBandWeight = 1.5
	voiceBandWeight   = 1.0
)

// voiceClassifier decides per window whether speech-like spectral structure is
// present. It is stateless apart from the analyzer's coefficient cache, so a
// single classifier may be shared across goroutines.
type voiceClassifier struct {
	opts     *Options
	analyzer *dsp.Analyzer
}

// isVoice classifies one window of samples. The window may have any length;
// spectral features are computed on a zero-padded power-of-two FFT while the
// time-domain ZCR uses the real samples only.
func (c *voiceClassifier) isVoice(window []float32, sampleRate int) bool {
	if len(window) < 2 {
		return false
	}

	fftSize := dsp.NextPowerOfTwo(len(window))
	mags := c.analyzer.Spectrum(window, fftSize)
	binWidth := float64(sampleRate) / float64(fftSize)

	var total float64
	for _, m := range mags {
		total += m
	}

	var score float64

	zcr := dsp.ZeroCrossingRate(window)
	if zcr > zcrFloor && zcr < c.opts.ZeroCrossingRateThreshold {
		score += vadWeightZCR
	}

	centroid := spectralCentroid(mags, binWidth, total)
	if centroid > centroidMin && centroid < centroidMax {
		score += vadWeightCentroid
	}

	score += vadWeightFormant * c.formantScore(mags, binWidth, total)

	if c.voiceBandRatio(mags, binWidth, total) > c.opts.VoiceActivityThreshold {
		score += vadWeightVoiceBand
	}

	return score >= vadDecisionThreshold
}

// spectralCentroid is the energy-weighted mean frequency of the spectrum, or 0
// when the spectrum carries no energy.
func spectralCentroid(mags []float64, binWidth, total float64) float64 {
	if total == 0 {
		return 0
	}
	var weighted float64
	for i, m := range mags {
		weighted += float64(i) * binWidth * m
	}
	return weighted / total
}

// formantScore is the fraction of formant bands whose share of the total
// spectral energy exceeds formantBandEnergyMin.
func (c *voiceClassifier) formantScore(mags []float64, binWidth, total float64) float64 {
	if total == 0 {
		return 0
	}
	hot := 0
	for _, band := range c.opts.FormantFreqRanges {
		if bandEnergy(mags, binWidth, band[0], band[1])/total > formantBandEnergyMin {
			hot++
		}
	}
	return float64(hot) / float64(len(c.opts.FormantFreqRanges))
}

// voiceBandRatio is the weighted energy in the voice band (fundamental minimum
// up to the top formant bound) relative to the total energy. Bins in the pitch
// range weigh double, bins in a formant band weigh 1.5.
func (c *voiceClassifier) voiceBandRatio(mags []float64, binWidth, total float64) float64 {
	if total == 0 {
		return 0
	}

	top := c.opts.FormantFreqRanges[0][1]
	for _, band := range c.opts.FormantFreqRanges[1:] {
		if band[1] > top {
			top = band[1]
		}
	}

	var weighted float64
	for i, m := range mags {
		f := float64(i) * binWidth
		if f < c.opts.FundamentalFreqMin || f > top {
			continue
		}
		w := voiceBandWeight
		if f >= c.opts.FundamentalFreqMin && f <= c.opts.FundamentalFreqMax {
			w = pitchBandWeight
		} else if c.inFormantBand(f) {
			w = formantBandWeight
		}
		weighted += w * m
	}
	return weighted / total
}

func (c *voiceClassifier) inFormantBand(f float64) bool {
	for _, band := range c.opts.FormantFreqRanges {
		if f >= band[0] && f <= band[1] {
			return true
		}
	}
	return false
}

// bandEnergy sums the magnitudes of all bins whose centre frequency falls in
// [lo, hi]. Bands beyond Nyquist contribute nothing.
func bandEnergy(mags []float64, binWidth, lo, hi float64) float64 {
	var sum float64
	for i, m := range mags {
		f := float64(i) * binWidth
		if f < lo {
			continue
		}
		if f > hi {
			break
		}
		sum += m
	}
	return sum
}
