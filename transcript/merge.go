package transcript

import "unicode/utf8"

// Merge folds adjacent segments that share a speaker and sit within
// maxGapMS of each other into single segments. The scan is a greedy,
// single, left-to-right pass: segment i+1 is absorbed into the running
// segment iff both carry the same speaker attribution (two unattributed
// segments qualify) and next.StartMS - running.EndMS <= maxGapMS.
//
// Absorbing a segment joins the texts with Separator, extends EndMS,
// appends the word timestamps in order, and recomputes Confidence as the
// text-length-weighted average over constituents that carry one.
// Empty-text constituents, the degraded form of a failed span, contribute
// neither text nor a separator, so the joined text never carries doubled
// separators. The input slice is not modified. An empty input yields an
// empty output.
func Merge(segments []Segment, maxGapMS int64) []Segment {
	if len(segments) == 0 {
		return []Segment{}
	}

	merged := make([]Segment, 0, len(segments))
	run := newRunning(segments[0])

	for _, next := range segments[1:] {
		if SameSpeaker(run.seg.Speaker, next.Speaker) && next.StartMS-run.seg.EndMS <= maxGapMS {
			run.absorb(next)
			continue
		}
		merged = append(merged, run.finish())
		run = newRunning(next)
	}

	return append(merged, run.finish())
}

// running accumulates one in-progress merged segment together with the
// confidence weights of its constituents.
type running struct {
	seg       Segment
	parts     int
	weightSum float64
	confSum   float64
}

func newRunning(s Segment) running {
	r := running{seg: cloneSegment(s), parts: 1}
	r.addConfidence(s)
	return r
}

func (r *running) absorb(next Segment) {
	if next.Text != "" {
		if r.seg.Text == "" {
			r.seg.Text = next.Text
		} else {
			r.seg.Text += Separator + next.Text
		}
	}
	r.seg.EndMS = next.EndMS
	r.seg.WordTimestamps = append(r.seg.WordTimestamps, next.WordTimestamps...)
	r.addConfidence(next)
	r.parts++
}

func (r *running) addConfidence(s Segment) {
	if s.Confidence == nil {
		return
	}
	w := float64(utf8.RuneCountInString(s.Text))
	r.weightSum += w
	r.confSum += *s.Confidence * w
}

func (r *running) finish() Segment {
	// A segment that absorbed nothing keeps its original confidence.
	if r.parts == 1 {
		return r.seg
	}
	if r.weightSum > 0 {
		c := r.confSum / r.weightSum
		r.seg.Confidence = &c
	} else {
		r.seg.Confidence = nil
	}
	return r.seg
}

func cloneSegment(s Segment) Segment {
	out := s
	if s.WordTimestamps != nil {
		out.WordTimestamps = append([][2]int64(nil), s.WordTimestamps...)
	}
	return out
}
