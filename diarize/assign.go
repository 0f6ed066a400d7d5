package diarize

// AssignSpeaker picks the speaker whose turns overlap [startMS, endMS)
// the most. Returns nil when no turn overlaps the range at all.
func AssignSpeaker(turns []Turn, startMS, endMS int64) *int {
	overlapBySpeaker := map[int]int64{}
	for _, t := range turns {
		o := overlap(t.StartMS, t.EndMS, startMS, endMS)
		if o > 0 {
			overlapBySpeaker[t.Speaker] += o
		}
	}
	if len(overlapBySpeaker) == 0 {
		return nil
	}

	best := -1
	var bestOverlap int64 = -1
	for spk, o := range overlapBySpeaker {
		// Lower index wins ties so attribution is deterministic.
		if o > bestOverlap || (o == bestOverlap && spk < best) {
			best = spk
			bestOverlap = o
		}
	}
	return &best
}

func overlap(aStart, aEnd, bStart, bEnd int64) int64 {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}
