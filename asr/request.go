package asr

import (
	"strconv"
	"strings"

	"github.com/skillsenselab/asrd/media"
	"github.com/skillsenselab/asrd/recognition"
	"github.com/skillsenselab/asrd/validation"
)

// Languages accepted by the pipeline.
var Languages = []string{"auto", "zh", "en"}

// Request describes one transcription job.
type Request struct {
	// Upload is the staged upload, or nil when AudioURL is set. Exactly
	// one of the two must be present.
	Upload   *media.Upload
	AudioURL string

	// Language hints the decoder. Defaults to "auto".
	Language string
	// Device overrides the configured compute device in result metadata.
	Device string
	// Hotwords bias recognition. Dropped on the per-span retry.
	Hotwords []recognition.Hotword
	// UseITN enables inverse text normalization in post-processing and
	// recognition.
	UseITN bool
	// EnablePostprocess runs the whole-text cleanup stage.
	EnablePostprocess bool
	// MergeVAD pre-merges detected speech spans before recognition.
	MergeVAD bool
	// BatchSizeS caps a single recognized span, in seconds.
	BatchSizeS int
	// NumSpeakers fixes the diarizer speaker count (0 = auto).
	NumSpeakers int
}

// Validate checks the request before any model is invoked.
func (r *Request) Validate() error {
	v := validation.New().
		Custom((r.Upload != nil) != (r.AudioURL != ""), "file", "provide exactly one of file or audio_url").
		OneOf("language", r.Language, Languages).
		Min("batch_size_s", r.BatchSizeS, 0).
		Min("num_speakers", r.NumSpeakers, 0)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ApplyDefaults fills unset request fields.
func (r *Request) ApplyDefaults() {
	if r.Language == "" {
		r.Language = "auto"
	}
	if r.BatchSizeS == 0 {
		r.BatchSizeS = 300
	}
}

// ParseHotwords parses the form encoding of hotwords: comma- or
// space-separated words, each with an optional ":weight" suffix.
func ParseHotwords(raw string) []recognition.Hotword {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil
	}

	out := make([]recognition.Hotword, 0, len(fields))
	for _, f := range fields {
		word, weightStr, hasWeight := strings.Cut(f, ":")
		if word == "" {
			continue
		}
		hw := recognition.Hotword{Word: word}
		if hasWeight {
			if w, err := strconv.Atoi(weightStr); err == nil && w > 0 {
				hw.Weight = w
			}
		}
		out = append(out, hw)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
