package transcript

import "strings"

// Assemble builds the canonical Result from merged segments. It is a pure
// function: the same inputs always produce the same Result.
//
// RawText is the ordered join of segment texts with Separator, which makes
// the raw-text invariant hold by construction. When segments is empty the
// result degenerates to a single implicit plain-text segment: RawText
// carries fallbackText verbatim and Segments is empty (not nil, so the
// field serializes as []).
//
// processed may be nil (post-processing disabled or degraded). When it is
// non-nil and segments exist, the processed text is re-allocated onto the
// segment boundaries via Allocate.
func Assemble(segments []Segment, fallbackText string, processed *string, model, device string) *Result {
	res := &Result{
		Segments: segments,
		Meta: Meta{
			TimeUnit: "ms",
			Model:    model,
			Device:   device,
		},
	}
	if res.Segments == nil {
		res.Segments = []Segment{}
	}

	if len(segments) == 0 {
		res.RawText = fallbackText
	} else {
		texts := make([]string, len(segments))
		for i, s := range segments {
			texts[i] = s.Text
		}
		res.RawText = strings.Join(texts, Separator)
	}

	if processed != nil {
		p := *processed
		res.ProcessedText = &p
		if len(segments) > 0 {
			res.ProcessedSegments = Allocate(p, segments)
		}
	}

	return res
}
