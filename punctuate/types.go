package punctuate

import (
	"context"

	"github.com/skillsenselab/asrd/provider"
)

// Request asks a post-processor to clean a whole transcript.
type Request struct {
	// Text is the raw transcript to process.
	Text string
	// UseITN enables inverse text normalization (spoken numbers to
	// written forms).
	UseITN bool
}

// Provider cleans transcript text.
type Provider interface {
	provider.Provider
	// Process returns the cleaned text. It must be deterministic for
	// identical input.
	Process(ctx context.Context, req Request) (string, error)
}

// Registry holds the registered post-processor factories.
var Registry = provider.NewRegistry[Provider]()
