package transcript

import "unicode/utf8"

// Allocate splits processed text back onto the boundaries of the original
// segments using proportional character-offset mapping: each segment
// receives a slice of the processed text proportional to its share of the
// original raw text, measured in runes.
//
// Post-processing (punctuation insertion, inverse text normalization) runs
// over the whole text to preserve cross-segment context, so the processed
// output has no intrinsic segment boundaries. This mapping is a heuristic:
// when processing changes text length materially the cut points drift from
// the true sentence edges, but the concatenation of the returned slices is
// always exactly the processed text. Cut points never split a UTF-8 rune.
//
// The returned slice has the same length as segments. Segments whose raw
// text is empty receive an empty allocation.
func Allocate(processed string, segments []Segment) []string {
	out := make([]string, len(segments))
	if len(segments) == 0 {
		return out
	}

	var totalWeight int
	weights := make([]int, len(segments))
	for i, s := range segments {
		weights[i] = utf8.RuneCountInString(s.Text)
		totalWeight += weights[i]
	}

	runes := []rune(processed)
	if totalWeight == 0 {
		// No raw text to apportion by; everything lands on the first segment.
		out[0] = processed
		return out
	}

	offset := 0
	consumed := 0
	for i := range segments {
		consumed += weights[i]
		end := len(runes) * consumed / totalWeight
		if i == len(segments)-1 {
			end = len(runes) // remainder always goes to the last segment
		}
		if end < offset {
			end = offset
		}
		out[i] = string(runes[offset:end])
		offset = end
	}
	return out
}
