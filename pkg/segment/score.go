package segment

import (
	"math"

	"github.com/phonetica/cadence/pkg/dsp"
)

// Sub-score weights of the probability scorer. They sum to 1.
const (
	scoreWeightLength      = 0.30
	scoreWeightStrength    = 0.20
	scoreWeightSilenceDur  = 0.15
	scoreWeightTransition  = 0.20
	scoreWeightEnergyShape = 0.15

	// Neutral sub-score when no bounding silent region exists: no evidence
	// either way.
	neutralSilenceScore = 0.3

	// Probe window length and energy-contour window length, in seconds.
	transitionProbeDur = 0.1
	contourWindowDur   = 0.05

	// Energy-contour rise/fall hysteresis factors.
	contourRiseFactor = 1.1
	contourFallFactor = 0.9
)

// score combines five clamped sub-scores into the sentence confidence.
// region is the silent region bounding the sentence's end, or nil when none
// exists (interior split parts, trailing remainder).
func (d *Detector) score(start, end float64, region *SilentRegion, samples []float32, sampleRate int) float64 {
	dur := end - start

	length := lengthScore(dur, d.opts.IdealSentenceLength)

	strength := neutralSilenceScore
	silenceDur := neutralSilenceScore
	if region != nil {
		strength = clamp01(1 - region.AvgRMS/d.opts.SilenceThreshold)
		silenceDur = silenceDurationScore(region.Duration, d.opts.IdealSilenceDuration)
	}

	transition := d.transitionScore(start, end, samples, sampleRate)
	contour := d.energyContourScore(start, end, samples, sampleRate)

	prob := clamp01(scoreWeightLength*clamp01(length) +
		scoreWeightStrength*strength +
		scoreWeightSilenceDur*clamp01(silenceDur) +
		scoreWeightTransition*clamp01(transition) +
		scoreWeightEnergyShape*clamp01(contour))

	if d.opts.Debug {
		d.logger.Debug("sentence score",
			"start", start,
			"end", end,
			"length_score", length,
			"silence_strength", strength,
			"silence_duration", silenceDur,
			"voice_transition", transition,
			"energy_contour", contour,
			"probability", prob,
		)
	}
	return prob
}

// lengthScore is a Gaussian centred at the ideal sentence length with a
// standard deviation of half the ideal.
func lengthScore(dur, ideal float64) float64 {
	sigma := ideal / 2
	diff := dur - ideal
	return math.Exp(-(diff * diff) / (2 * sigma * sigma))
}

// silenceDurationScore is a sigmoid rewarding bounding silences near (or
// beyond) the ideal silence duration.
func silenceDurationScore(dur, ideal float64) float64 {
	return 1 / (1 + math.Exp(-5*(dur/ideal-0.5)))
}

// transitionScore samples three overlapping ~100ms probe windows at the
// sentence start and three at its end, stepping by half a probe each time.
// Sentences should start voiced and end non-voiced.
func (d *Detector) transitionScore(start, end float64, samples []float32, sampleRate int) float64 {
	probe := int(transitionProbeDur * float64(sampleRate))
	if probe < 2 {
		return 0
	}
	half := probe / 2
	startSample := int(start * float64(sampleRate))
	endSample := int(end * float64(sampleRate))

	const probes = 3
	startVoiced, endVoiced := 0, 0
	for k := 0; k < probes; k++ {
		if win := probeWindow(samples, startSample+k*half, probe); len(win) >= 2 && d.classifier.isVoice(win, sampleRate) {
			startVoiced++
		}
		if win := probeWindow(samples, endSample-probe-k*half, probe); len(win) >= 2 && d.classifier.isVoice(win, sampleRate) {
			endVoiced++
		}
	}

	startFrac := float64(startVoiced) / probes
	endFrac := float64(endVoiced) / probes
	return 0.7*startFrac + 0.3*(1-endFrac)
}

// probeWindow returns the sample slice [at, at+length) clamped to the buffer.
func probeWindow(samples []float32, at, length int) []float32 {
	if at < 0 {
		at = 0
	}
	if at >= len(samples) {
		return nil
	}
	end := min(at+length, len(samples))
	return samples[at:end]
}

// energyContourScore splits the sentence into 50ms windows and compares the
// count of energy rises against falls: dynamic, speech-like energy variation
// scores high, flat or monotonic energy scores low. Fewer than two windows is
// treated as neutral.
func (d *Detector) energyContourScore(start, end float64, samples []float32, sampleRate int) float64 {
	win := int(contourWindowDur * float64(sampleRate))
	if win < 1 {
		return 0.5
	}
	startSample := int(start * float64(sampleRate))
	endSample := min(int(end*float64(sampleRate)), len(samples))

	var energies []float64
	for at := startSample; at+win <= endSample; at += win {
		energies = append(energies, dsp.Energy(samples[at:at+win]))
	}
	if len(energies) < 2 {
		return 0.5
	}

	rises, falls := 0, 0
	for i := 1; i < len(energies); i++ {
		prev := energies[i-1]
		switch {
		case energies[i] > prev*contourRiseFactor:
			rises++
		case energies[i] < prev*contourFallFactor:
			falls++
		}
	}

	lo, hi := rises, falls
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi == 0 {
		return 0
	}
	return float64(lo) / float64(hi)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
