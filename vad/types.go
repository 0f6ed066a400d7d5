package vad

import (
	"context"

	"github.com/skillsenselab/asrd/provider"
)

// Span is a detected speech region in milliseconds from the start of the
// audio.
type Span struct {
	StartMS int64 `json:"start"`
	EndMS   int64 `json:"end"`
}

// Request asks a detector for the speech spans of a normalized WAV file.
type Request struct {
	// AudioPath is the mono 16 kHz WAV to analyze.
	AudioPath string
	// MaxSpanMS caps the length of a single span. Detectors split longer
	// speech regions at this boundary. Zero means no cap.
	MaxSpanMS int64
}

// Provider detects speech spans in audio.
type Provider interface {
	provider.Provider
	// DetectSpans returns speech spans ordered by start time. An empty
	// slice means the audio contains no detectable speech.
	DetectSpans(ctx context.Context, req Request) ([]Span, error)
}

// Registry holds the registered detector factories.
var Registry = provider.NewRegistry[Provider]()
