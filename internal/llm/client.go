package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/krestly/crest-server/internal/config"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/genai"
)

// maxResponseLogBytes is the max length of a model response to log in full.
const maxResponseLogBytes = 4096

var (
	// ErrEmptyPrompt is returned when the text model produced no usable text.
	ErrEmptyPrompt = errors.New("text model returned an empty prompt")
	// ErrNoImage is returned when the image model produced no image.
	ErrNoImage = errors.New("image model returned no image")
)

// httpClientForEndpoint returns an http.Client that rewrites request URLs to the given base endpoint (e.g. http://host.docker.internal:31300/gemini).
func httpClientForEndpoint(baseEndpoint string) *http.Client {
	base, err := url.Parse(baseEndpoint)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", baseEndpoint).Msg("Invalid GEMINI_API_ENDPOINT, using default")
		return nil
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return &http.Client{
		Transport: &endpointRoundTripper{base: base, next: http.DefaultTransport},
	}
}

// endpointRoundTripper rewrites request URLs to a custom base (scheme, host, path prefix).
type endpointRoundTripper struct {
	base *url.URL
	next http.RoundTripper
}

func (e *endpointRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.URL.Scheme = e.base.Scheme
	req2.URL.Host = e.base.Host
	req2.URL.Path = path.Join(e.base.Path, strings.TrimPrefix(req.URL.Path, "/"))
	if req.URL.RawQuery != "" {
		req2.URL.RawQuery = req.URL.RawQuery
	}
	return e.next.RoundTrip(req2)
}

// logModelResponse logs model response text, truncating if over maxResponseLogBytes.
func logModelResponse(caller, model, raw string) {
	if len(raw) <= maxResponseLogBytes {
		log.Debug().Str("caller", caller).Str("model", model).Str("model_response", raw).Msg("Model response")
		return
	}
	log.Debug().
		Str("caller", caller).
		Str("model", model).
		Str("model_response", raw[:maxResponseLogBytes]+"... [truncated]").
		Int("model_response_len", len(raw)).
		Msg("Model response")
}

// Image is a generated image. Either URL is set (hosted by the provider) or
// Data holds the encoded image bytes.
type Image struct {
	URL           string
	Data          []byte
	MimeType      string
	Resolution    string
	Model         string
	RevisedPrompt string
}

// Client talks to the text-completion and image-generation providers.
// It is safe for concurrent use and holds no per-request state.
type Client struct {
	textProvider  string
	imageProvider string
	modelText     string
	modelImage    string

	llmText      llms.Model     // langchaingo model (OpenAI chat or Gemini)
	openaiClient *openai.Client // OpenAI images API
	genaiClient  *genai.Client  // Gemini Imagen
}

// NewClient creates the provider clients selected by cfg. cfg must have passed Validate.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	c := &Client{
		textProvider:  cfg.TextProvider,
		imageProvider: cfg.ImageProvider,
	}

	var geminiHTTPClient *http.Client
	if cfg.GeminiAPIEndpoint != "" {
		geminiHTTPClient = httpClientForEndpoint(cfg.GeminiAPIEndpoint)
	}

	switch cfg.TextProvider {
	case config.ProviderOpenAI:
		opts := []lcopenai.Option{lcopenai.WithToken(cfg.OpenAIAPIKey), lcopenai.WithModel(cfg.OpenAITextModel)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, lcopenai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		model, err := lcopenai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI text model: %w", err)
		}
		c.llmText = model
		c.modelText = cfg.OpenAITextModel
	case config.ProviderGemini:
		opts := []googleai.Option{googleai.WithAPIKey(cfg.GeminiAPIKey), googleai.WithDefaultModel(cfg.GeminiTextModel)}
		if geminiHTTPClient != nil {
			opts = append(opts, googleai.WithHTTPClient(geminiHTTPClient))
		}
		model, err := googleai.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini text model: %w", err)
		}
		c.llmText = model
		c.modelText = cfg.GeminiTextModel
	default:
		return nil, fmt.Errorf("unknown text provider %q", cfg.TextProvider)
	}

	switch cfg.ImageProvider {
	case config.ProviderOpenAI:
		oaCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			oaCfg.BaseURL = strings.TrimSuffix(cfg.OpenAIBaseURL, "/")
		}
		c.openaiClient = openai.NewClientWithConfig(oaCfg)
		c.modelImage = cfg.OpenAIImageModel
	case config.ProviderGemini:
		genaiCfg := &genai.ClientConfig{APIKey: cfg.GeminiAPIKey, Backend: genai.BackendGeminiAPI}
		if cfg.GeminiAPIEndpoint != "" {
			genaiCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiAPIEndpoint}
		}
		client, err := genai.NewClient(ctx, genaiCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize genai client for image generation: %w", err)
		}
		c.genaiClient = client
		c.modelImage = cfg.GeminiImageModel
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.ImageProvider)
	}

	log.Info().
		Str("text_provider", c.textProvider).
		Str("model_text", c.modelText).
		Str("image_provider", c.imageProvider).
		Str("model_image", c.modelImage).
		Str("openai_base_url", cfg.OpenAIBaseURL).
		Str("gemini_endpoint", cfg.GeminiAPIEndpoint).
		Msg("LLM client initialized")

	return c, nil
}

// TextModel returns the configured text model name.
func (c *Client) TextModel() string { return c.modelText }

// ImageModel returns the configured image model name.
func (c *Client) ImageModel() string { return c.modelImage }
