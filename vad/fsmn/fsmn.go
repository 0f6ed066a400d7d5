// Package fsmn implements voice activity detection against an FSMN-VAD
// HTTP sidecar.
package fsmn

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/skillsenselab/asrd/httpclient"
	"github.com/skillsenselab/asrd/provider"
	"github.com/skillsenselab/asrd/vad"
)

const (
	// ProviderName is the registered name for the FSMN detector.
	ProviderName = "fsmn"

	defaultURL     = "http://localhost:8388"
	defaultTimeout = 60 * time.Second
)

// Config holds configuration for the FSMN sidecar.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements vad.Provider using the FSMN sidecar.
type Provider struct {
	client *httpclient.Client
}

// NewProvider creates a new FSMN detector.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{client: httpclient.New(cfg.URL, cfg.Timeout)}
}

// Factory returns a provider.Factory creating FSMN detectors from a
// generic config map.
func Factory() provider.Factory[vad.Provider] {
	return func(cfg map[string]any) (vad.Provider, error) {
		fc := Config{}
		if v, ok := cfg["url"].(string); ok {
			fc.URL = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			fc.Timeout = v
		}
		return NewProvider(fc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Healthy(ctx)
}

// DetectSpans sends the audio to the sidecar and returns the speech spans.
func (p *Provider) DetectSpans(ctx context.Context, req vad.Request) ([]vad.Span, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	body := httpclient.MultipartBody{
		Fields: map[string]string{},
		Files:  []httpclient.FileField{{FieldName: "file", FileName: "audio.wav", Data: audioData}},
	}
	if req.MaxSpanMS > 0 {
		body.Fields["max_single_segment_time"] = strconv.FormatInt(req.MaxSpanMS, 10)
	}

	var result fsmnResponse
	if err := p.client.PostMultipart(ctx, "/vad/detect", body, &result); err != nil {
		return nil, err
	}

	spans := make([]vad.Span, 0, len(result.Spans))
	for _, s := range result.Spans {
		if len(s) != 2 {
			continue
		}
		spans = append(spans, vad.Span{StartMS: s[0], EndMS: s[1]})
	}
	return spans, nil
}

// fsmnResponse mirrors the sidecar payload: spans as [start_ms, end_ms]
// pairs, the FunASR VAD output shape.
type fsmnResponse struct {
	Spans [][]int64 `json:"spans"`
}
