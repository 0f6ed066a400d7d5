package diarize

import (
	"context"

	"github.com/skillsenselab/asrd/provider"
)

// Request holds parameters for a diarization call.
type Request struct {
	// AudioPath is the mono 16 kHz WAV to diarize.
	AudioPath string `json:"audio_path"`
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int `json:"num_speakers,omitempty"`
}

// Turn is a speaker-attributed time range in milliseconds.
type Turn struct {
	// Speaker is the zero-based speaker index.
	Speaker int `json:"spk"`
	// StartMS and EndMS bound the turn.
	StartMS int64 `json:"start"`
	EndMS   int64 `json:"end"`
}

// Response holds the result of a diarization call.
type Response struct {
	// Turns are speaker turns ordered by start time.
	Turns []Turn `json:"turns"`
	// NumSpeakers is the number of distinct speakers detected.
	NumSpeakers int `json:"num_speakers"`
}

// Provider is the interface diarization backends must implement.
type Provider interface {
	provider.Provider

	// Diarize attributes speaker turns to the audio.
	Diarize(ctx context.Context, req Request) (*Response, error)
}

// Registry holds the registered diarizer factories.
var Registry = provider.NewRegistry[Provider]()
