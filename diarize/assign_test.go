package diarize

import "testing"

func TestAssignSpeaker_PicksLargestOverlap(t *testing.T) {
	turns := []Turn{
		{Speaker: 0, StartMS: 0, EndMS: 600},
		{Speaker: 1, StartMS: 600, EndMS: 2000},
	}

	spk := AssignSpeaker(turns, 400, 1000)
	if spk == nil || *spk != 1 {
		t.Errorf("expected speaker 1, got %v", spk)
	}

	spk = AssignSpeaker(turns, 0, 500)
	if spk == nil || *spk != 0 {
		t.Errorf("expected speaker 0, got %v", spk)
	}
}

func TestAssignSpeaker_NoOverlap(t *testing.T) {
	turns := []Turn{{Speaker: 0, StartMS: 0, EndMS: 100}}
	if spk := AssignSpeaker(turns, 200, 300); spk != nil {
		t.Errorf("expected nil for no overlap, got %d", *spk)
	}
}

func TestAssignSpeaker_NoTurns(t *testing.T) {
	if spk := AssignSpeaker(nil, 0, 100); spk != nil {
		t.Errorf("expected nil for empty turns, got %d", *spk)
	}
}

func TestAssignSpeaker_TieBreaksLowestIndex(t *testing.T) {
	turns := []Turn{
		{Speaker: 2, StartMS: 0, EndMS: 50},
		{Speaker: 1, StartMS: 50, EndMS: 100},
	}
	spk := AssignSpeaker(turns, 0, 100)
	if spk == nil || *spk != 1 {
		t.Errorf("expected speaker 1 on tie, got %v", spk)
	}
}

func TestAssignSpeaker_SumsSplitTurns(t *testing.T) {
	turns := []Turn{
		{Speaker: 0, StartMS: 0, EndMS: 30},
		{Speaker: 0, StartMS: 60, EndMS: 100},
		{Speaker: 1, StartMS: 30, EndMS: 90},
	}
	// Speaker 0 covers 30+40=70ms, speaker 1 covers 60ms.
	spk := AssignSpeaker(turns, 0, 100)
	if spk == nil || *spk != 0 {
		t.Errorf("expected speaker 0, got %v", spk)
	}
}
