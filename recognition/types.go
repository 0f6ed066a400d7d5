package recognition

import (
	"context"

	"github.com/skillsenselab/asrd/provider"
)

// Hotword biases recognition toward a phrase. Weight follows the
// "word:5" form parameter convention; zero means backend default.
type Hotword struct {
	Word   string
	Weight int
}

// Request asks a recognizer to transcribe one span of a normalized WAV.
type Request struct {
	// AudioPath is the mono 16 kHz WAV holding the full audio.
	AudioPath string
	// StartMS and EndMS bound the span to recognize. EndMS zero with
	// StartMS zero means the whole file.
	StartMS int64
	EndMS   int64
	// Language hints the decoder ("auto", "zh", "en").
	Language string
	// Hotwords bias decoding. Dropped on retry so a bad list cannot
	// poison the second attempt.
	Hotwords []Hotword
	// UseITN asks the backend for inverse text normalization.
	UseITN bool
}

// Word is a recognized token with its time range in milliseconds.
type Word struct {
	StartMS int64
	EndMS   int64
}

// Response is the recognizer output for one span. Times are relative to
// the start of the whole audio, not the span.
type Response struct {
	Text       string
	Words      []Word
	Confidence *float64
}

// Provider transcribes audio spans.
type Provider interface {
	provider.Provider
	// Recognize transcribes the span in req. An empty Text with nil
	// error is a valid result for unintelligible audio.
	Recognize(ctx context.Context, req Request) (*Response, error)
}

// Registry holds the registered recognizer factories.
var Registry = provider.NewRegistry[Provider]()
