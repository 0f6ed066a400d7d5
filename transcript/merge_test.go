package transcript

import (
	"testing"

	"github.com/skillsenselab/asrd/util"
)

func TestMerge_SameSpeakerWithinGap(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 500, Text: "A", Speaker: util.Ptr(0)},
		{StartMS: 600, EndMS: 1000, Text: "B", Speaker: util.Ptr(0)},
	}
	out := Merge(in, 200)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged segment, got %d", len(out))
	}
	if out[0].StartMS != 0 || out[0].EndMS != 1000 {
		t.Errorf("expected span [0, 1000], got [%d, %d]", out[0].StartMS, out[0].EndMS)
	}
	if out[0].Text != "A B" {
		t.Errorf("expected text %q, got %q", "A B", out[0].Text)
	}
	if out[0].Speaker == nil || *out[0].Speaker != 0 {
		t.Errorf("expected speaker 0, got %v", out[0].Speaker)
	}
}

func TestMerge_GapExceedsThreshold(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 500, Text: "A", Speaker: util.Ptr(0)},
		{StartMS: 600, EndMS: 1000, Text: "B", Speaker: util.Ptr(0)},
	}
	out := Merge(in, 50)
	if len(out) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(out))
	}
	if out[0].Text != "A" || out[1].Text != "B" {
		t.Errorf("segments changed: %q, %q", out[0].Text, out[1].Text)
	}
}

func TestMerge_DifferentSpeakersNeverMerge(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 500, Text: "A", Speaker: util.Ptr(0)},
		{StartMS: 500, EndMS: 900, Text: "B", Speaker: util.Ptr(1)},
	}
	out := Merge(in, 1000)
	if len(out) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(out))
	}
}

func TestMerge_BothUnattributedCountAsSame(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 500, Text: "A"},
		{StartMS: 600, EndMS: 1000, Text: "B"},
	}
	out := Merge(in, 200)
	if len(out) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(out))
	}
	if out[0].Speaker != nil {
		t.Errorf("expected speaker to stay unset, got %v", *out[0].Speaker)
	}
}

func TestMerge_UnattributedVsAttributed(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 500, Text: "A"},
		{StartMS: 500, EndMS: 900, Text: "B", Speaker: util.Ptr(0)},
	}
	if out := Merge(in, 1000); len(out) != 2 {
		t.Fatalf("expected no merge across nil/0 speakers, got %d segments", len(out))
	}
}

func TestMerge_Empty(t *testing.T) {
	out := Merge(nil, 200)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", out)
	}
}

func TestMerge_SingleSegmentUnchanged(t *testing.T) {
	in := []Segment{{StartMS: 10, EndMS: 20, Text: "x", Confidence: util.Ptr(0.5)}}
	out := Merge(in, 0)
	if len(out) != 1 || out[0].Text != "x" || out[0].StartMS != 10 || out[0].EndMS != 20 {
		t.Fatalf("unexpected output: %v", out)
	}
	if out[0].Confidence == nil || *out[0].Confidence != 0.5 {
		t.Errorf("singleton confidence must be preserved")
	}
}

func TestMerge_ChainOfThree(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 100, Text: "a", Speaker: util.Ptr(2)},
		{StartMS: 150, EndMS: 250, Text: "b", Speaker: util.Ptr(2)},
		{StartMS: 300, EndMS: 400, Text: "c", Speaker: util.Ptr(2)},
	}
	out := Merge(in, 100)
	if len(out) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(out))
	}
	if out[0].Text != "a b c" {
		t.Errorf("expected %q, got %q", "a b c", out[0].Text)
	}
	if out[0].StartMS != 0 || out[0].EndMS != 400 {
		t.Errorf("expected span [0, 400], got [%d, %d]", out[0].StartMS, out[0].EndMS)
	}
}

func TestMerge_EmptyTextAddsNoSeparator(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 500, Text: "hello"},
		{StartMS: 600, EndMS: 1000, Text: ""},
		{StartMS: 1100, EndMS: 1500, Text: "world"},
	}
	out := Merge(in, 200)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged segment, got %d", len(out))
	}
	if out[0].Text != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", out[0].Text)
	}
}

func TestMerge_WordTimestampsConcatenated(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 500, Text: "A", WordTimestamps: [][2]int64{{0, 200}, {200, 500}}},
		{StartMS: 600, EndMS: 1000, Text: "B", WordTimestamps: [][2]int64{{600, 1000}}},
	}
	out := Merge(in, 200)
	if len(out) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(out))
	}
	want := [][2]int64{{0, 200}, {200, 500}, {600, 1000}}
	if len(out[0].WordTimestamps) != len(want) {
		t.Fatalf("expected %d timestamps, got %d", len(want), len(out[0].WordTimestamps))
	}
	for i, ts := range want {
		if out[0].WordTimestamps[i] != ts {
			t.Errorf("timestamp %d: expected %v, got %v", i, ts, out[0].WordTimestamps[i])
		}
	}
}

func TestMerge_ConfidenceWeightedAverage(t *testing.T) {
	// "ab" (len 2, conf 0.9) + "abcdef" (len 6, conf 0.5)
	// -> (0.9*2 + 0.5*6) / 8 = 0.6
	in := []Segment{
		{StartMS: 0, EndMS: 100, Text: "ab", Confidence: util.Ptr(0.9)},
		{StartMS: 100, EndMS: 200, Text: "abcdef", Confidence: util.Ptr(0.5)},
	}
	out := Merge(in, 0)
	if len(out) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(out))
	}
	if out[0].Confidence == nil {
		t.Fatal("expected merged confidence to be set")
	}
	if got := *out[0].Confidence; got < 0.599 || got > 0.601 {
		t.Errorf("expected weighted average 0.6, got %f", got)
	}
}

func TestMerge_ConfidenceSkipsUnset(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 100, Text: "aa", Confidence: util.Ptr(0.8)},
		{StartMS: 100, EndMS: 200, Text: "bb"},
	}
	out := Merge(in, 0)
	if out[0].Confidence == nil || *out[0].Confidence != 0.8 {
		t.Errorf("expected 0.8 from the only scored constituent, got %v", out[0].Confidence)
	}
}

func TestMerge_ConfidenceAllUnset(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 100, Text: "aa"},
		{StartMS: 100, EndMS: 200, Text: "bb"},
	}
	out := Merge(in, 0)
	if out[0].Confidence != nil {
		t.Errorf("expected unset confidence, got %v", *out[0].Confidence)
	}
}

func TestMerge_OrderingInvariant(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 400, Text: "a", Speaker: util.Ptr(0)},
		{StartMS: 450, EndMS: 900, Text: "b", Speaker: util.Ptr(1)},
		{StartMS: 950, EndMS: 1200, Text: "c", Speaker: util.Ptr(1)},
		{StartMS: 2000, EndMS: 2500, Text: "d", Speaker: util.Ptr(1)},
		{StartMS: 2600, EndMS: 3000, Text: "e", Speaker: util.Ptr(0)},
	}
	out := Merge(in, 100)
	for i := 0; i+1 < len(out); i++ {
		if out[i].EndMS > out[i+1].StartMS {
			t.Errorf("segments %d and %d overlap: end=%d start=%d",
				i, i+1, out[i].EndMS, out[i+1].StartMS)
		}
	}
}

func TestMerge_InputNotMutated(t *testing.T) {
	in := []Segment{
		{StartMS: 0, EndMS: 500, Text: "A", Speaker: util.Ptr(0)},
		{StartMS: 600, EndMS: 1000, Text: "B", Speaker: util.Ptr(0)},
	}
	_ = Merge(in, 200)
	if in[0].Text != "A" || in[0].EndMS != 500 {
		t.Errorf("input slice was mutated: %+v", in[0])
	}
}
