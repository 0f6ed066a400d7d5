package transcript

import (
	"strings"
	"testing"
)

func TestAllocate_ConcatenationIsLossless(t *testing.T) {
	tests := []struct {
		name      string
		processed string
		texts     []string
	}{
		{"even split", "AABB", []string{"aa", "bb"}},
		{"longer processed", "Hello, world. Goodbye.", []string{"hello world", "goodbye"}},
		{"shorter processed", "Hi.", []string{"well hello there", "hi"}},
		{"cjk", "你好，世界。再见。", []string{"你好世界", "再见"}},
		{"single segment", "everything here", []string{"everything here"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			segs := make([]Segment, len(tc.texts))
			for i, txt := range tc.texts {
				segs[i] = Segment{Text: txt}
			}
			parts := Allocate(tc.processed, segs)
			if len(parts) != len(segs) {
				t.Fatalf("expected %d parts, got %d", len(segs), len(parts))
			}
			if got := strings.Join(parts, ""); got != tc.processed {
				t.Errorf("concatenation %q != processed %q", got, tc.processed)
			}
		})
	}
}

func TestAllocate_ProportionalSplit(t *testing.T) {
	// Raw weights 2:6 over 8 processed runes -> cut after 2.
	segs := []Segment{{Text: "ab"}, {Text: "cdefgh"}}
	parts := Allocate("12345678", segs)
	if parts[0] != "12" || parts[1] != "345678" {
		t.Errorf("expected [12 345678], got %v", parts)
	}
}

func TestAllocate_EmptyRawTextFallsToFirst(t *testing.T) {
	segs := []Segment{{Text: ""}, {Text: ""}}
	parts := Allocate("all of it", segs)
	if parts[0] != "all of it" || parts[1] != "" {
		t.Errorf("expected everything on the first segment, got %v", parts)
	}
}

func TestAllocate_NoSegments(t *testing.T) {
	if parts := Allocate("text", nil); len(parts) != 0 {
		t.Errorf("expected no parts, got %v", parts)
	}
}

func TestAllocate_NeverSplitsRunes(t *testing.T) {
	segs := []Segment{{Text: "一二三"}, {Text: "四五"}}
	parts := Allocate("壹貳參肆伍", segs)
	for i, p := range parts {
		if !utf8Valid(p) {
			t.Errorf("part %d is not valid UTF-8: %q", i, p)
		}
	}
	if got := strings.Join(parts, ""); got != "壹貳參肆伍" {
		t.Errorf("lossless concatenation violated: %q", got)
	}
}

func utf8Valid(s string) bool {
	for _, r := range s {
		if r == '�' {
			return false
		}
	}
	return true
}
