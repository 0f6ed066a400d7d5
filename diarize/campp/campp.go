// Package campp implements speaker diarization against a CAM++ HTTP
// sidecar.
package campp

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/skillsenselab/asrd/diarize"
	"github.com/skillsenselab/asrd/httpclient"
	"github.com/skillsenselab/asrd/provider"
)

const (
	// ProviderName is the registered name for the CAM++ diarizer.
	ProviderName = "campp"

	defaultURL     = "http://localhost:8390"
	defaultTimeout = 300 * time.Second
)

// Config holds configuration for the CAM++ sidecar.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements diarize.Provider using the CAM++ sidecar.
type Provider struct {
	client *httpclient.Client
}

// NewProvider creates a new CAM++ diarizer.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{client: httpclient.New(cfg.URL, cfg.Timeout)}
}

// Factory returns a provider.Factory creating CAM++ diarizers from a
// generic config map.
func Factory() provider.Factory[diarize.Provider] {
	return func(cfg map[string]any) (diarize.Provider, error) {
		cc := Config{}
		if v, ok := cfg["url"].(string); ok {
			cc.URL = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			cc.Timeout = v
		}
		return NewProvider(cc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Healthy(ctx)
}

// Diarize sends the audio to the sidecar and returns speaker turns.
func (p *Provider) Diarize(ctx context.Context, req diarize.Request) (*diarize.Response, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	body := httpclient.MultipartBody{
		Fields: map[string]string{},
		Files:  []httpclient.FileField{{FieldName: "file", FileName: "audio.wav", Data: audioData}},
	}
	if req.NumSpeakers > 0 {
		body.Fields["num_speakers"] = strconv.Itoa(req.NumSpeakers)
	}

	var result camppResponse
	if err := p.client.PostMultipart(ctx, "/diarize", body, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("diarization error: %s", result.Error)
	}

	return toResponse(&result), nil
}

// --- internal sidecar response types ---

type camppResponse struct {
	Turns       []camppTurn `json:"turns"`
	NumSpeakers int         `json:"num_speakers"`
	Error       string      `json:"error,omitempty"`
}

type camppTurn struct {
	Speaker int   `json:"spk"`
	StartMS int64 `json:"start"`
	EndMS   int64 `json:"end"`
}

func toResponse(resp *camppResponse) *diarize.Response {
	turns := make([]diarize.Turn, len(resp.Turns))
	for i, t := range resp.Turns {
		turns[i] = diarize.Turn{Speaker: t.Speaker, StartMS: t.StartMS, EndMS: t.EndMS}
	}
	numSpeakers := resp.NumSpeakers
	if numSpeakers == 0 {
		seen := map[int]bool{}
		for _, t := range turns {
			seen[t.Speaker] = true
		}
		numSpeakers = len(seen)
	}
	return &diarize.Response{Turns: turns, NumSpeakers: numSpeakers}
}
