package segment

// SilentRegion is a maximal run of analysis windows classified as silent or
// non-voiced, after merging of near-adjacent runs. Regions bound the sentence
// candidates and feed the probability scorer; they are not mutated once the
// detection pass has merged them.
type SilentRegion struct {
	// Start and End are in seconds from the beginning of the buffer.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Duration is End - Start.
	Duration float64 `json:"duration"`

	// AvgRMS is the maximum per-window RMS observed inside the run, a worst
	// case statistic, so a loud transient inside a nominally silent run still
	// lowers downstream confidence. When two regions are merged it becomes the
	// mean of the two, reflecting how often the merged span returned to
	// near-threshold energy.
	AvgRMS float64 `json:"avgRMS"`
}

// Sentence is one probable spoken sentence. Sentences are immutable once
// returned by Detect.
type Sentence struct {
	// Index is the position in the final output, contiguous from 0. It is
	// reassigned after the short-segment merge pass.
	Index int `json:"index"`

	// Start and End are in seconds from the beginning of the buffer.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Duration is End - Start.
	Duration float64 `json:"duration"`

	// Probability is the detection confidence in [0, 1].
	Probability float64 `json:"probability"`
}
