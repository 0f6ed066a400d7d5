package config

import (
	"fmt"

	"github.com/skillsenselab/asrd/asr"
	"github.com/skillsenselab/asrd/logger"
	"github.com/skillsenselab/asrd/media"
	"github.com/skillsenselab/asrd/server"
	"github.com/skillsenselab/asrd/validation"
)

// ProviderConfig selects one backend implementation by name and carries
// its free-form settings (base URL, model path, thresholds).
type ProviderConfig struct {
	Name     string         `yaml:"name" mapstructure:"name" validate:"required"`
	Settings map[string]any `yaml:"settings" mapstructure:"settings"`
}

// ProvidersConfig names the backend for each pipeline stage. Postprocess
// and Diarizer may be left empty; their stages are then disabled.
type ProvidersConfig struct {
	VAD         ProviderConfig `yaml:"vad" mapstructure:"vad"`
	Recognizer  ProviderConfig `yaml:"recognizer" mapstructure:"recognizer"`
	Postprocess ProviderConfig `yaml:"postprocess" mapstructure:"postprocess" validate:"-"`
	Diarizer    ProviderConfig `yaml:"diarizer" mapstructure:"diarizer" validate:"-"`
}

// ModelsConfig is the model inventory reported by the /models endpoint.
type ModelsConfig struct {
	ASRModel  string `yaml:"asr_model" mapstructure:"asr_model"`
	VADModel  string `yaml:"vad_model" mapstructure:"vad_model"`
	PuncModel string `yaml:"punc_model" mapstructure:"punc_model"`
	SpkModel  string `yaml:"spk_model" mapstructure:"spk_model"`
}

// ObservabilityConfig controls OTLP trace and metric export.
type ObservabilityConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// Config is the full service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"required,oneof=development staging production"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Media         media.Config        `yaml:"media" mapstructure:"media"`
	Pipeline      asr.Config          `yaml:"pipeline" mapstructure:"pipeline"`
	Providers     ProvidersConfig     `yaml:"providers" mapstructure:"providers"`
	Models        ModelsConfig        `yaml:"models" mapstructure:"models"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "asrd"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Media.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	if c.Providers.VAD.Name == "" {
		c.Providers.VAD.Name = "fsmn"
	}
	if c.Providers.Recognizer.Name == "" {
		c.Providers.Recognizer.Name = "funasr"
	}
	if c.Providers.Postprocess.Name == "" {
		c.Providers.Postprocess.Name = "rules"
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
}

// Validate validates the whole configuration. Structure is checked with
// struct tags; sections with richer rules validate themselves.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}
