package segment

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phonetica/cadence/pkg/dsp"
)

const (
	// A window counts as silent when at most this fraction of the recent VAD
	// decisions were voiced. Absence of voiced spectral structure is silence
	// even at non-trivial RMS (e.g. sustained noise).
	smoothedVoiceRatioMax = 0.6

	// Adjacent silent regions closer than this gap in seconds are merged.
	regionMergeGap = 0.3

	// The VAD smoothing buffer spans roughly this many seconds of windows.
	activitySpan = 0.1
)

// windowFeature holds the per-window measurements folded into the silence
// scan. Feature extraction is independent per window; only the fold is
// sequential.
type windowFeature struct {
	rms   float64
	voice bool
}

// activityWindow is a bounded ring of recent VAD decisions. It is a plain
// value owned by one detection pass; no state survives across calls.
type activityWindow struct {
	decisions []bool
	next      int
	filled    int
	voiced    int
}

func newActivityWindow(capacity int) activityWindow {
	if capacity < 1 {
		capacity = 1
	}
	return activityWindow{decisions: make([]bool, capacity)}
}

// push records one decision, evicting the oldest when the ring is full.
func (a *activityWindow) push(voice bool) {
	if a.filled == len(a.decisions) {
		if a.decisions[a.next] {
			a.voiced--
		}
	} else {
		a.filled++
	}
	a.decisions[a.next] = voice
	if voice {
		a.voiced++
	}
	a.next = (a.next + 1) % len(a.decisions)
}

// ratio returns the fraction of voiced decisions currently held.
func (a *activityWindow) ratio() float64 {
	if a.filled == 0 {
		return 0
	}
	return float64(a.voiced) / float64(a.filled)
}

// detectSilentRegions scans the buffer in non-overlapping windows and returns
// the ordered, merged silent regions. The per-window features are computed
// concurrently; the run accumulation below consumes them strictly in window
// order, which is load-bearing for correct region boundaries.
func (d *Detector) detectSilentRegions(samples []float32, sampleRate int) []SilentRegion {
	windowSize := d.opts.WindowSize
	numWindows := (len(samples) + windowSize - 1) / windowSize
	if numWindows == 0 {
		return nil
	}

	features := make([]windowFeature, numWindows)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range features {
		g.Go(func() error {
			start := i * windowSize
			end := min(start+windowSize, len(samples))
			win := samples[start:end]
			features[i] = windowFeature{
				rms:   dsp.RMS(win),
				voice: d.classifier.isVoice(win, sampleRate),
			}
			return nil
		})
	}
	// Feature extraction is infallible; the group only bounds parallelism.
	_ = g.Wait()

	windowDur := float64(windowSize) / float64(sampleRate)
	activity := newActivityWindow(int(activitySpan / windowDur))

	var regions []SilentRegion
	inSilence := false
	var runStart int
	var runMaxRMS float64

	flush := func(endSample int) {
		start := float64(runStart) / float64(sampleRate)
		end := float64(endSample) / float64(sampleRate)
		if end-start >= d.opts.MinSilenceDuration {
			regions = append(regions, SilentRegion{
				Start:    start,
				End:      end,
				Duration: end - start,
				AvgRMS:   runMaxRMS,
			})
		}
	}

	for i, f := range features {
		activity.push(f.voice)
		ratio := activity.ratio()
		silent := ratio <= smoothedVoiceRatioMax || f.rms < d.opts.SilenceThreshold

		if d.opts.Debug {
			d.logger.Debug("silence scan window",
				"window", i,
				"rms", f.rms,
				"voice", f.voice,
				"voice_ratio", ratio,
				"silent", silent,
			)
		}

		switch {
		case silent && !inSilence:
			inSilence = true
			runStart = i * windowSize
			runMaxRMS = f.rms
		case silent:
			if f.rms > runMaxRMS {
				runMaxRMS = f.rms
			}
		case inSilence:
			flush(i * windowSize)
			inSilence = false
		}
	}
	if inSilence {
		flush(len(samples))
	}

	return mergeRegions(regions)
}

// mergeRegions joins adjacent regions separated by less than regionMergeGap.
// The pass is single left-to-right sweep and deliberately not transitive: a
// freshly merged region is never re-checked against the region after it, so a
// chain of sub-gap regions may stay under-merged. Regression-pinned behaviour;
// do not "fix" without a product decision.
func mergeRegions(regions []SilentRegion) []SilentRegion {
	if len(regions) < 2 {
		return regions
	}

	out := make([]SilentRegion, 0, len(regions))
	for i := 0; i < len(regions); {
		cur := regions[i]
		if i+1 < len(regions) && regions[i+1].Start-cur.End < regionMergeGap {
			next := regions[i+1]
			cur = SilentRegion{
				Start:    cur.Start,
				End:      next.End,
				Duration: next.End - cur.Start,
				// Mean of the two, unlike the max statistic inside a run:
				// confidence weakens with how often the merged span returned
				// to near-threshold energy.
				AvgRMS: (cur.AvgRMS + next.AvgRMS) / 2,
			}
			i += 2
		} else {
			i++
		}
		out = append(out, cur)
	}
	return out
}
