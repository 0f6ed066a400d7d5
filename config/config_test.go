package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("empty config gets full defaults", func(t *testing.T) {
		cfg := Config{}
		cfg.ApplyDefaults()
		if cfg.Name != "asrd" {
			t.Errorf("expected name 'asrd', got %q", cfg.Name)
		}
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Server.Port != 8300 {
			t.Errorf("expected port 8300, got %d", cfg.Server.Port)
		}
		if cfg.Pipeline.Concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", cfg.Pipeline.Concurrency)
		}
		if cfg.Providers.VAD.Name != "fsmn" || cfg.Providers.Recognizer.Name != "funasr" {
			t.Errorf("unexpected default providers: %+v", cfg.Providers)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := Config{Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"invalid environment", func(c *Config) { c.Environment = "qa" }, "environment: must be one of"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "config.logging"},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "config.server"},
		{"missing vad provider", func(c *Config) { c.Providers.VAD.Name = "" }, "providers.vad.name"},
		{"missing recognizer provider", func(c *Config) { c.Providers.Recognizer.Name = "" }, "providers.recognizer.name"},
		{"sample rate above one", func(c *Config) { c.Observability.SampleRate = 1.5 }, "observability.sample_rate: must be at most 1"},
		{"optional stages may stay unset", func(c *Config) {
			c.Providers.Postprocess.Name = ""
			c.Providers.Diarizer.Name = ""
		}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: asrd
environment: staging
server:
  port: 9000
pipeline:
  concurrency: 2
  non_reentrant: true
  model: paraformer-zh
  device: cuda
providers:
  vad:
    name: energy
    settings:
      threshold: 0.02
  recognizer:
    name: funasr
    settings:
      base_url: http://localhost:8389
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(WithConfigFile(configPath))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if !cfg.Pipeline.NonReentrant {
		t.Error("expected non_reentrant=true")
	}
	if cfg.Pipeline.Device != "cuda" {
		t.Errorf("expected device 'cuda', got %q", cfg.Pipeline.Device)
	}
	if cfg.Providers.VAD.Name != "energy" {
		t.Errorf("expected vad provider 'energy', got %q", cfg.Providers.VAD.Name)
	}
	if got, ok := cfg.Providers.Recognizer.Settings["base_url"]; !ok || got != "http://localhost:8389" {
		t.Errorf("recognizer settings not loaded: %+v", cfg.Providers.Recognizer.Settings)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 9000\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load(WithConfigFile(configPath))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected env override port 9100, got %d", cfg.Server.Port)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("PIPELINE_MERGE_GAP_MS")
	want := map[string]bool{
		"pipeline.merge.gap.ms": true,
		"pipeline.merge_gap_ms": true,
	}
	for _, v := range variants {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants %v in %v", want, variants)
	}
}
