package transcript

// Separator joins segment texts when building the full raw text. Merged
// segments are concatenated with the same separator so that
// Result.RawText == join(segment texts, Separator) always holds.
const Separator = " "

// Segment is one contiguous, time-bounded unit of recognized speech.
type Segment struct {
	// StartMS is the segment start time in milliseconds (>= 0).
	StartMS int64 `json:"start"`
	// EndMS is the segment end time in milliseconds (>= StartMS).
	EndMS int64 `json:"end"`
	// Text is the recognized text for this segment.
	Text string `json:"text"`
	// Speaker is the zero-based speaker id, nil when unattributed.
	Speaker *int `json:"spk,omitempty"`
	// WordTimestamps holds token-level [start, end] pairs in milliseconds,
	// each contained within [StartMS, EndMS] and non-decreasing.
	WordTimestamps [][2]int64 `json:"timestamp,omitempty"`
	// Confidence is the recognition confidence in [0, 1], nil when the
	// backend did not report one.
	Confidence *float64 `json:"confidence,omitempty"`
}

// Duration returns the segment length in milliseconds.
func (s Segment) Duration() int64 { return s.EndMS - s.StartMS }

// SameSpeaker reports whether two segments carry the same speaker
// attribution. Two unattributed segments count as the same speaker.
func SameSpeaker(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Meta describes how a result was produced. Consumers must tolerate
// additional fields appearing here in future versions.
type Meta struct {
	// TimeUnit is always "ms" for this result version.
	TimeUnit string `json:"time_unit"`
	// Model is the identifier of the recognition model.
	Model string `json:"model"`
	// Device is the inference device ("cpu", "cuda", ...).
	Device string `json:"device"`
}

// Result is the canonical transcription result. It is produced exactly once
// per request by Assemble and is immutable once returned.
type Result struct {
	// RawText is the ordered join of unprocessed segment texts. When
	// Segments is empty it carries the plain recognized text verbatim.
	RawText string `json:"raw_text"`
	// ProcessedText is the normalized full text, present only when
	// post-processing ran and succeeded.
	ProcessedText *string `json:"processed_text,omitempty"`
	// ProcessedSegments aligns ProcessedText back onto segment boundaries
	// (see Allocate). Same length as Segments, present iff ProcessedText is.
	ProcessedSegments []string `json:"processed_segments,omitempty"`
	// Segments is ordered by StartMS, non-overlapping after merging.
	Segments []Segment `json:"segments"`
	// Meta describes the producing model and device.
	Meta Meta `json:"meta"`
}

// Text returns the preferred display text: processed when present, raw
// otherwise.
func (r *Result) Text() string {
	if r.ProcessedText != nil {
		return *r.ProcessedText
	}
	return r.RawText
}
