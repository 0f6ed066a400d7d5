package transcript

import (
	"fmt"
	"strings"
)

// speakerPalette is the fixed ordered display palette. A segment with
// speaker id k renders with speakerPalette[k mod len(speakerPalette)].
// Colors are a presentation hint only and never part of the data model.
var speakerPalette = []string{
	"#4F8EF7", // blue
	"#F7744F", // orange
	"#3DBE7B", // green
	"#B05CE3", // purple
	"#E3B23C", // gold
	"#45C8D1", // teal
}

// RenderedItem is one visual transcript row derived from a Segment. Items
// are recomputed wholesale from a Result on every render; they are never
// patched incrementally.
type RenderedItem struct {
	// TimeRange is "m:ss - m:ss" with seconds zero-padded and minutes
	// unbounded (no hour rollover).
	TimeRange string `json:"time_range"`
	// Speaker is the user-facing 1-based label ("Speaker 1"), empty when
	// the segment carries no speaker attribution.
	Speaker string `json:"speaker,omitempty"`
	// Color is the palette color for the speaker, empty when unattributed.
	Color string `json:"color,omitempty"`
	// Text is the segment text.
	Text string `json:"text"`
}

// FormatTimestamp formats a millisecond offset as "m:ss".
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d", ms/60000, ms%60000/1000)
}

// Render derives one RenderedItem per segment of res, in segment order.
func Render(res *Result) []RenderedItem {
	items := make([]RenderedItem, 0, len(res.Segments))
	for _, s := range res.Segments {
		item := RenderedItem{
			TimeRange: fmt.Sprintf("%s - %s", FormatTimestamp(s.StartMS), FormatTimestamp(s.EndMS)),
			Text:      s.Text,
		}
		if s.Speaker != nil {
			item.Speaker = fmt.Sprintf("Speaker %d", *s.Speaker+1)
			item.Color = speakerPalette[*s.Speaker%len(speakerPalette)]
		}
		items = append(items, item)
	}
	return items
}

// ToPlainText serializes rendered items into the audit export format:
//
//	[0:00 - 0:30] Speaker 1: Hello
//
//	[0:30 - 1:05] Speaker 2: World
//
// Lines without a speaker omit the label ("[start - end] text"). Blocks are
// joined by one blank line. The function is pure and idempotent: identical
// input yields byte-identical output.
func ToPlainText(items []RenderedItem) string {
	blocks := make([]string, len(items))
	for i, it := range items {
		if it.Speaker != "" {
			blocks[i] = fmt.Sprintf("[%s] %s: %s", it.TimeRange, it.Speaker, it.Text)
		} else {
			blocks[i] = fmt.Sprintf("[%s] %s", it.TimeRange, it.Text)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// Export renders res and serializes it to plain text in one step. A result
// with zero structured segments falls back to its plain text verbatim.
func Export(res *Result) string {
	if len(res.Segments) == 0 {
		return res.Text()
	}
	return ToPlainText(Render(res))
}
