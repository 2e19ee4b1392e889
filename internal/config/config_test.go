package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "PORT", "ALLOWED_ORIGINS", "VALIDATION_MODE", "TEXT_PROVIDER",
		"IMAGE_PROVIDER", "TEXT_TIMEOUT", "IMAGE_TIMEOUT", "KAFKA_BROKERS", "S3_BUCKET",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q, want :3000", cfg.HTTPAddr)
	}
	if cfg.ValidationMode != ModeLenient {
		t.Errorf("ValidationMode = %q", cfg.ValidationMode)
	}
	if cfg.TextProvider != ProviderOpenAI || cfg.ImageProvider != ProviderOpenAI {
		t.Errorf("providers = %q/%q", cfg.TextProvider, cfg.ImageProvider)
	}
	if cfg.TextTimeout != 30*time.Second || cfg.ImageTimeout != 60*time.Second {
		t.Errorf("timeouts = %s/%s", cfg.TextTimeout, cfg.ImageTimeout)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want empty", cfg.AllowedOrigins)
	}
	if cfg.EventsEnabled() || cfg.StorageEnabled() {
		t.Error("events and storage should be disabled by default")
	}
}

func TestLoad_PortAndOrigins(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", " https://www.krestly.com, ,https://krestly.com ")
	t.Setenv("VALIDATION_MODE", "STRICT")
	t.Setenv("TEXT_TIMEOUT", "15s")

	cfg := Load()
	if cfg.HTTPAddr != ":8081" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	want := []string{"https://www.krestly.com", "https://krestly.com"}
	if strings.Join(cfg.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.ValidationMode != ModeStrict {
		t.Errorf("ValidationMode = %q", cfg.ValidationMode)
	}
	if cfg.TextTimeout != 15*time.Second {
		t.Errorf("TextTimeout = %s", cfg.TextTimeout)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ValidationMode: ModeLenient,
			MaxFieldLength: 300,
			TextTimeout:    time.Second,
			ImageTimeout:   time.Second,
			TextProvider:   ProviderOpenAI,
			ImageProvider:  ProviderOpenAI,
			OpenAIAPIKey:   "sk-test",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad mode", mutate: func(c *Config) { c.ValidationMode = "loose" }, want: "VALIDATION_MODE"},
		{name: "zero timeout", mutate: func(c *Config) { c.ImageTimeout = 0 }, want: "IMAGE_TIMEOUT"},
		{name: "missing openai key", mutate: func(c *Config) { c.OpenAIAPIKey = "" }, want: "OPENAI_API_KEY"},
		{name: "unknown provider", mutate: func(c *Config) { c.TextProvider = "local" }, want: "TEXT_PROVIDER"},
		{
			name: "gemini text without key",
			mutate: func(c *Config) {
				c.TextProvider = ProviderGemini
			},
			want: "GEMINI_API_KEY",
		},
		{
			name: "gemini image without bucket",
			mutate: func(c *Config) {
				c.ImageProvider = ProviderGemini
				c.GeminiAPIKey = "g-test"
			},
			want: "S3_BUCKET",
		},
		{
			name: "gemini image with bucket",
			mutate: func(c *Config) {
				c.ImageProvider = ProviderGemini
				c.GeminiAPIKey = "g-test"
				c.S3Bucket = "crests"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}
