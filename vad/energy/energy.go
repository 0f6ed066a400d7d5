// Package energy implements a local, dependency-free voice activity
// detector for mono 16-bit PCM WAV. It thresholds short-window RMS energy
// and merges adjacent active windows, a coarse stand-in used when no
// model sidecar is available.
package energy

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/skillsenselab/asrd/provider"
	"github.com/skillsenselab/asrd/vad"
)

const (
	// ProviderName is the registered name for the energy detector.
	ProviderName = "energy"

	windowMS = 30
	// hangoverMS keeps a span open across short pauses so words are not
	// clipped mid-breath.
	hangoverMS = 300
)

// Config holds configuration for the energy detector.
type Config struct {
	// Threshold is the RMS amplitude (0..1) above which a window counts
	// as speech. Defaults to 0.01.
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Provider implements vad.Provider with a local energy scan.
type Provider struct {
	cfg Config
}

// NewProvider creates a new energy detector.
func NewProvider(cfg Config) *Provider {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.01
	}
	return &Provider{cfg: cfg}
}

// Factory returns a provider.Factory creating energy detectors from a
// generic config map.
func Factory() provider.Factory[vad.Provider] {
	return func(cfg map[string]any) (vad.Provider, error) {
		ec := Config{}
		if v, ok := cfg["threshold"].(float64); ok {
			ec.Threshold = v
		}
		return NewProvider(ec), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable always reports true; the detector has no external state.
func (p *Provider) IsAvailable(_ context.Context) bool { return true }

// DetectSpans scans the WAV for windows above the energy threshold.
func (p *Provider) DetectSpans(ctx context.Context, req vad.Request) ([]vad.Span, error) {
	samples, sampleRate, err := readWAV(req.AudioPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	windowSize := sampleRate * windowMS / 1000
	if windowSize == 0 {
		return nil, fmt.Errorf("energy: sample rate %d too low", sampleRate)
	}

	spans := make([]vad.Span, 0)
	var open bool
	var start, lastActive int64

	for off := 0; off+windowSize <= len(samples); off += windowSize {
		t := int64(off) * 1000 / int64(sampleRate)
		if rms(samples[off:off+windowSize]) >= p.cfg.Threshold {
			if !open {
				open = true
				start = t
			}
			lastActive = t + windowMS
			continue
		}
		if open && t-lastActive >= hangoverMS {
			spans = appendSpan(spans, start, lastActive, req.MaxSpanMS)
			open = false
		}
	}
	if open {
		spans = appendSpan(spans, start, lastActive, req.MaxSpanMS)
	}
	return spans, nil
}

// appendSpan adds [start, end), splitting at the span length cap.
func appendSpan(spans []vad.Span, start, end, maxMS int64) []vad.Span {
	if end <= start {
		return spans
	}
	if maxMS <= 0 {
		return append(spans, vad.Span{StartMS: start, EndMS: end})
	}
	for start < end {
		chunkEnd := start + maxMS
		if chunkEnd > end {
			chunkEnd = end
		}
		spans = append(spans, vad.Span{StartMS: start, EndMS: chunkEnd})
		start = chunkEnd
	}
	return spans
}

func rms(samples []int16) float64 {
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// readWAV parses a mono 16-bit PCM WAV file.
func readWAV(path string) ([]int16, int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is workspace-internal
	if err != nil {
		return nil, 0, fmt.Errorf("energy: read wav: %w", err)
	}
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("energy: not a WAV file")
	}

	// Walk chunks to find fmt and data; headers written by ffmpeg may
	// carry extra chunks (LIST, fact) before data.
	var sampleRate int
	var channels, bits int
	var pcm []byte
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("energy: short fmt chunk")
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if sampleRate == 0 || pcm == nil {
		return nil, 0, fmt.Errorf("energy: missing fmt or data chunk")
	}
	if channels != 1 || bits != 16 {
		return nil, 0, fmt.Errorf("energy: expected mono 16-bit PCM, got %d channels %d bits", channels, bits)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}
	return samples, sampleRate, nil
}
