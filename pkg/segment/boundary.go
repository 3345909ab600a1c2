package segment

import "math"

// findSentenceBoundaries converts the ordered silent regions into scored
// sentence candidates. Each candidate spans from the previous region's end to
// the current region's start; overlong spans are split, undersized spans are
// silently absorbed into the next candidate.
func (d *Detector) findSentenceBoundaries(regions []SilentRegion, samples []float32, sampleRate int) []Sentence {
	total := float64(len(samples)) / float64(sampleRate)

	var sentences []Sentence
	lastEnd := 0.0

	for i := range regions {
		region := &regions[i]

		// Boundary placement: the region's start. When gaps must not be
		// covered and another region follows, the midpoint between this
		// region's end and the next region's start instead.
		boundary := region.Start
		advance := region.End
		if !d.opts.AllowGaps && i+1 < len(regions) {
			mid := (region.End + regions[i+1].Start) / 2
			boundary = mid
			advance = mid
		}

		dur := region.Start - lastEnd
		if dur >= d.opts.MinSentenceLength {
			sentences = d.emitSpan(sentences, lastEnd, dur, boundary, region, samples, sampleRate)
		}
		// Undersized spans fall through: lastEnd still advances past the
		// region, so the span is absorbed into the next candidate.
		lastEnd = advance
	}

	if remainder := total - lastEnd; remainder >= d.opts.MinSentenceLength {
		sentences = d.emitSpan(sentences, lastEnd, remainder, total, nil, samples, sampleRate)
	}

	if d.opts.AlignToAudioBoundaries {
		sentences = d.alignToBuffer(sentences, total, samples, sampleRate)
	}

	return sentences
}

// emitSpan appends the candidate [start, start+dur) as one sentence, or as
// ceil(dur/max) equal parts when it exceeds the maximum sentence length.
// Interior parts are uniform-length cuts with no acoustic justification, a
// hard length-ceiling policy. Only the final part ends at the adjusted
// boundary and carries the bounding region into scoring.
func (d *Detector) emitSpan(sentences []Sentence, start, dur, finalEnd float64, region *SilentRegion, samples []float32, sampleRate int) []Sentence {
	parts := 1
	if dur > d.opts.MaxSentenceLength {
		parts = int(math.Ceil(dur / d.opts.MaxSentenceLength))
	}
	partLen := dur / float64(parts)

	for p := 0; p < parts; p++ {
		s := start + float64(p)*partLen
		e := s + partLen
		var reg *SilentRegion
		if p == parts-1 {
			e = finalEnd
			reg = region
		}
		sentences = append(sentences, Sentence{
			Start:       s,
			End:         e,
			Duration:    e - s,
			Probability: d.score(s, e, reg, samples, sampleRate),
		})
	}
	return sentences
}

// alignToBuffer stretches the output to cover [0, total]: the first sentence
// starts at 0, the last ends at total. When nothing was produced, one sentence
// spanning the whole buffer is emitted.
func (d *Detector) alignToBuffer(sentences []Sentence, total float64, samples []float32, sampleRate int) []Sentence {
	if len(sentences) == 0 {
		return []Sentence{{
			Start:       0,
			End:         total,
			Duration:    total,
			Probability: d.score(0, total, nil, samples, sampleRate),
		}}
	}

	first := &sentences[0]
	first.Start = 0
	first.Duration = first.End - first.Start

	last := &sentences[len(sentences)-1]
	last.End = total
	last.Duration = last.End - last.Start

	return sentences
}

// mergeShortSegments greedily groups consecutive sentences until each group
// meets minSegment seconds. When adding the next sentence would push a group
// past the target: a group already at the target is flushed and the sentence
// starts a new group; a group still short of it force-absorbs the sentence and
// flushes immediately, even though the result may overshoot the target by an
// arbitrary amount. That overshoot is accepted behaviour, not a bug.
//
// A merged sentence's probability is the arithmetic mean of its members:
// merging dilutes confidence toward the group average rather than re-scoring
// from raw audio.
func mergeShortSegments(sentences []Sentence, minSegment float64) []Sentence {
	if len(sentences) == 0 {
		return sentences
	}

	var out []Sentence
	var group []Sentence
	groupDur := 0.0

	flush := func() {
		if len(group) == 0 {
			return
		}
		merged := group[0]
		if len(group) > 1 {
			var probSum float64
			for _, s := range group {
				probSum += s.Probability
			}
			merged = Sentence{
				Start:       group[0].Start,
				End:         group[len(group)-1].End,
				Probability: probSum / float64(len(group)),
			}
			merged.Duration = merged.End - merged.Start
		}
		out = append(out, merged)
		group = group[:0]
		groupDur = 0
	}

	for _, s := range sentences {
		switch {
		case len(group) == 0 || groupDur+s.Duration <= minSegment:
			group = append(group, s)
			groupDur += s.Duration
		case groupDur >= minSegment:
			flush()
			group = append(group, s)
			groupDur = s.Duration
		default:
			// Force-absorb and flush: the group cannot reach the target
			// without this sentence, overshoot or not.
			group = append(group, s)
			flush()
		}
	}
	flush()

	return out
}
