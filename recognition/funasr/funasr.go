// Package funasr implements speech recognition against a Paraformer HTTP
// sidecar.
package funasr

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skillsenselab/asrd/httpclient"
	"github.com/skillsenselab/asrd/provider"
	"github.com/skillsenselab/asrd/recognition"
	"github.com/skillsenselab/asrd/util"
)

const (
	// ProviderName is the registered name for the Paraformer recognizer.
	ProviderName = "funasr"

	defaultURL     = "http://localhost:8389"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the Paraformer sidecar.
type Config struct {
	URL      string        `json:"url" yaml:"url"`
	Model    string        `json:"model" yaml:"model"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
	Language string        `json:"language,omitempty" yaml:"language"`
}

// Provider implements recognition.Provider using the Paraformer sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Paraformer recognizer.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg:    cfg,
		client: httpclient.New(cfg.URL, cfg.Timeout),
	}
}

// Factory returns a provider.Factory creating Paraformer recognizers from
// a generic config map.
func Factory() provider.Factory[recognition.Provider] {
	return func(cfg map[string]any) (recognition.Provider, error) {
		fc := Config{}
		if v, ok := cfg["url"].(string); ok {
			fc.URL = v
		}
		if v, ok := cfg["model"].(string); ok {
			fc.Model = v
		}
		if v, ok := cfg["language"].(string); ok {
			fc.Language = v
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

// Recognize sends one span to the sidecar and returns the transcription.
func (p *Provider) Recognize(ctx context.Context, req recognition.Request) (*recognition.Response, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	fields := map[string]string{
		"use_itn": strconv.FormatBool(req.UseITN),
	}
	if req.EndMS > req.StartMS {
		fields["start_ms"] = strconv.FormatInt(req.StartMS, 10)
		fields["end_ms"] = strconv.FormatInt(req.EndMS, 10)
	}
	if lang := util.Coalesce(req.Language, p.cfg.Language); lang != "" && lang != "auto" {
		fields["language"] = lang
	}
	if len(req.Hotwords) > 0 {
		fields["hotword"] = encodeHotwords(req.Hotwords)
	}

	var result funasrResponse
	err = p.client.PostMultipart(ctx, "/asr/recognize", httpclient.MultipartBody{
		Fields: fields,
		Files:  []httpclient.FileField{{FieldName: "file", FileName: "audio.wav", Data: audioData}},
	}, &result)
	if err != nil {
		return nil, err
	}

	return toResponse(&result), nil
}

// encodeHotwords renders the space-separated "word" or "word:weight" form.
func encodeHotwords(hws []recognition.Hotword) string {
	parts := make([]string, len(hws))
	for i, hw := range hws {
		if hw.Weight > 0 {
			parts[i] = fmt.Sprintf("%s:%d", hw.Word, hw.Weight)
		} else {
			parts[i] = hw.Word
		}
	}
	return strings.Join(parts, " ")
}

// --- internal sidecar response types ---

type funasrResponse struct {
	Text       string    `json:"text"`
	Timestamp  [][]int64 `json:"timestamp"`
	Confidence *float64  `json:"confidence"`
}

func toResponse(resp *funasrResponse) *recognition.Response {
	words := make([]recognition.Word, 0, len(resp.Timestamp))
	for _, ts := range resp.Timestamp {
		if len(ts) != 2 {
			continue
		}
		words = append(words, recognition.Word{StartMS: ts[0], EndMS: ts[1]})
	}
	return &recognition.Response{
		Text:       resp.Text,
		Words:      words,
		Confidence: resp.Confidence,
	}
}
