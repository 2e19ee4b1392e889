package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Validation modes
const (
	ModeLenient = "lenient"
	ModeStrict  = "strict"
)

// Providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr       string
	LogLevel       string
	AllowedOrigins []string // "*" allows any origin

	// Request handling
	ValidationMode string // lenient or strict
	MaxFieldLength int    // max runes per design field
	TextTimeout    time.Duration
	ImageTimeout   time.Duration

	// Providers
	TextProvider  string
	ImageProvider string

	// OpenAI API
	OpenAIAPIKey     string
	OpenAIBaseURL    string // optional OpenAI-compatible base URL, e.g. https://gateway.example.com/v1
	OpenAITextModel  string
	OpenAIImageModel string

	// Gemini API
	GeminiAPIKey      string
	GeminiAPIEndpoint string // if set, overrides default Gemini API base URL
	GeminiTextModel   string
	GeminiImageModel  string

	// S3/Storage, hosts inline image bytes (Gemini Imagen)
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	// Kafka, generation events are disabled when no brokers are set
	KafkaBrokers     []string
	KafkaTopicEvents string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":"+getEnv("PORT", "3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", nil),

		ValidationMode: strings.ToLower(getEnv("VALIDATION_MODE", ModeLenient)),
		MaxFieldLength: getEnvInt("MAX_FIELD_LENGTH", 300),
		TextTimeout:    getEnvDuration("TEXT_TIMEOUT", 30*time.Second),
		ImageTimeout:   getEnvDuration("IMAGE_TIMEOUT", 60*time.Second),

		TextProvider:  strings.ToLower(getEnv("TEXT_PROVIDER", ProviderOpenAI)),
		ImageProvider: strings.ToLower(getEnv("IMAGE_PROVIDER", ProviderOpenAI)),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAITextModel:  getEnv("OPENAI_TEXT_MODEL", "gpt-4"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiAPIEndpoint: getEnv("GEMINI_API_ENDPOINT", ""),
		GeminiTextModel:   getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:  getEnv("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		KafkaBrokers:     getEnvList("KAFKA_BROKERS", nil),
		KafkaTopicEvents: getEnv("KAFKA_TOPIC_EVENTS", "crests.generations.v1"),
	}
}

// Validate reports the first configuration problem that would make the server unusable.
func (c *Config) Validate() error {
	switch c.ValidationMode {
	case ModeLenient, ModeStrict:
	default:
		return fmt.Errorf("invalid VALIDATION_MODE %q (want %s or %s)", c.ValidationMode, ModeLenient, ModeStrict)
	}
	if c.MaxFieldLength < 1 {
		return fmt.Errorf("MAX_FIELD_LENGTH must be positive")
	}
	if c.TextTimeout <= 0 || c.ImageTimeout <= 0 {
		return fmt.Errorf("TEXT_TIMEOUT and IMAGE_TIMEOUT must be positive")
	}

	for name, provider := range map[string]string{"TEXT_PROVIDER": c.TextProvider, "IMAGE_PROVIDER": c.ImageProvider} {
		switch provider {
		case ProviderOpenAI:
			if c.OpenAIAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required when %s=%s", name, provider)
			}
		case ProviderGemini:
			if c.GeminiAPIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY is required when %s=%s", name, provider)
			}
		default:
			return fmt.Errorf("invalid %s %q", name, provider)
		}
	}

	// Imagen returns bytes, not a hosted URL
	if c.ImageProvider == ProviderGemini && c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when IMAGE_PROVIDER=%s", ProviderGemini)
	}
	return nil
}

// StorageEnabled reports whether S3 settings are present.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// EventsEnabled reports whether generation events should be published.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// TextModel returns the model name of the selected text provider.
func (c *Config) TextModel() string {
	if c.TextProvider == ProviderGemini {
		return c.GeminiTextModel
	}
	return c.OpenAITextModel
}

// ImageModel returns the model name of the selected image provider.
func (c *Config) ImageModel() string {
	if c.ImageProvider == ProviderGemini {
		return c.GeminiImageModel
	}
	return c.OpenAIImageModel
}
