package segment

import (
	"math"
	"testing"
)

func TestDetectSilentRegions_GapBetweenVoice(t *testing.T) {
	const sampleRate = 16000
	buf := concat(
		voicedSignal(sampleRate, 2),
		silence(sampleRate, 1),
		voicedSignal(sampleRate, 2),
	)
	d := newDetector(t, DefaultOptions())

	regions := d.detectSilentRegions(buf, sampleRate)
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1: %+v", len(regions), regions)
	}
	r := regions[0]

	// Region bounds snap to window edges (2048/16000 = 0.128s).
	if r.Start < 1.9 || r.Start > 2.2 {
		t.Errorf("region starts at %.3fs, want near 2.0s", r.Start)
	}
	if r.End < 2.8 || r.End > 3.1 {
		t.Errorf("region ends at %.3fs, want near 3.0s", r.End)
	}
	if math.Abs(r.Duration-(r.End-r.Start)) > 1e-9 {
		t.Errorf("duration %f != end-start %f", r.Duration, r.End-r.Start)
	}
	if r.AvgRMS != 0 {
		t.Errorf("AvgRMS = %f for digital silence, want 0", r.AvgRMS)
	}
}

func TestDetectSilentRegions_SubThresholdGapDiscarded(t *testing.T) {
	const sampleRate = 16000
	buf := concat(
		voicedSignal(sampleRate, 2),
		silence(sampleRate, 0.3), // below the 0.5s minimum
		voicedSignal(sampleRate, 2),
	)
	d := newDetector(t, DefaultOptions())

	regions := d.detectSilentRegions(buf, sampleRate)
	if len(regions) != 0 {
		t.Fatalf("got %d regions from a sub-threshold gap, want 0: %+v", len(regions), regions)
	}
}

func TestDetectSilentRegions_TrailingRunFlushed(t *testing.T) {
	const sampleRate = 16000
	buf := concat(
		voicedSignal(sampleRate, 2),
		silence(sampleRate, 1),
	)
	d := newDetector(t, DefaultOptions())

	regions := d.detectSilentRegions(buf, sampleRate)
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1: %+v", len(regions), regions)
	}
	if got, want := regions[0].End, 3.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("trailing region ends at %.6fs, want exactly %.1fs (end of buffer)", got, want)
	}
}

func TestMergeRegions_JoinsSubGapNeighbours(t *testing.T) {
	regions := []SilentRegion{
		{Start: 0, End: 1, Duration: 1, AvgRMS: 0.02},
		{Start: 1.2, End: 2, Duration: 0.8, AvgRMS: 0.04},
	}

	merged := mergeRegions(regions)
	if len(merged) != 1 {
		t.Fatalf("got %d regions, want 1 merged: %+v", len(merged), merged)
	}
	r := merged[0]
	if r.Start != 0 || r.End != 2 || r.Duration != 2 {
		t.Errorf("merged region = %+v, want [0, 2]", r)
	}
	// Merging averages the two statistics instead of taking the max.
	if math.Abs(r.AvgRMS-0.03) > 1e-12 {
		t.Errorf("merged AvgRMS = %f, want mean 0.03", r.AvgRMS)
	}
}

// A freshly merged region is never re-checked against the region after it,
// even when the remaining gap is below the merge threshold. Pinned behaviour.
func TestMergeRegions_NotTransitive(t *testing.T) {
	regions := []SilentRegion{
		{Start: 0, End: 1, Duration: 1, AvgRMS: 0.01},
		{Start: 1.2, End: 2, Duration: 0.8, AvgRMS: 0.02},
		{Start: 2.2, End: 3, Duration: 0.8, AvgRMS: 0.03},
	}

	merged := mergeRegions(regions)
	if len(merged) != 2 {
		t.Fatalf("got %d regions, want 2 (no transitive merge): %+v", len(merged), merged)
	}
	if merged[0].End != 2 {
		t.Errorf("first merged region ends at %f, want 2", merged[0].End)
	}
	if merged[1].Start != 2.2 {
		t.Errorf("second region starts at %f, want 2.2 (left unmerged)", merged[1].Start)
	}
}

func TestMergeRegions_KeepsDistantRegions(t *testing.T) {
	regions := []SilentRegion{
		{Start: 0, End: 1, Duration: 1},
		{Start: 1.5, End: 2.5, Duration: 1},
	}

	merged := mergeRegions(regions)
	if len(merged) != 2 {
		t.Fatalf("got %d regions, want 2 untouched: %+v", len(merged), merged)
	}
}

func TestActivityWindow_RatioAndEviction(t *testing.T) {
	a := newActivityWindow(3)

	if got := a.ratio(); got != 0 {
		t.Fatalf("empty ratio = %f, want 0", got)
	}

	a.push(true)
	a.push(false)
	if got := a.ratio(); got != 0.5 {
		t.Errorf("ratio after true,false = %f, want 0.5", got)
	}

	a.push(true)
	if got := a.ratio(); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("ratio at capacity = %f, want 2/3", got)
	}

	// Fourth push evicts the oldest (true): buffer now false,true,true.
	a.push(true)
	if got := a.ratio(); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("ratio after eviction = %f, want 2/3", got)
	}

	a.push(false)
	a.push(false)
	if got := a.ratio(); math.Abs(got-1.0/3.0) > 1e-12 {
		t.Errorf("ratio = %f, want 1/3", got)
	}
}

func TestNewActivityWindow_MinimumCapacity(t *testing.T) {
	a := newActivityWindow(0)
	a.push(true)
	if got := a.ratio(); got != 1 {
		t.Errorf("ratio = %f, want 1 (capacity clamped to 1)", got)
	}
	a.push(false)
	if got := a.ratio(); got != 0 {
		t.Errorf("ratio = %f, want 0 after replacement", got)
	}
}
