package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel is a minimal llms.Model recording the messages it receives.
type fakeModel struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	calls    int
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func choices(texts ...string) *llms.ContentResponse {
	resp := &llms.ContentResponse{}
	for _, t := range texts {
		resp.Choices = append(resp.Choices, &llms.ContentChoice{Content: t})
	}
	return resp
}

func TestGenerateImagePrompt_SystemAndUserMessages(t *testing.T) {
	model := &fakeModel{resp: choices("  A navy and gold lion crest  ", "ignored second choice")}
	c := &Client{llmText: model, modelText: "gpt-4"}

	got, err := c.GenerateImagePrompt(context.Background(), "system framing", "Name: Windsor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A navy and gold lion crest" {
		t.Errorf("prompt = %q", got)
	}
	if len(model.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(model.messages))
	}
	if model.messages[0].Role != llms.ChatMessageTypeSystem || model.messages[1].Role != llms.ChatMessageTypeHuman {
		t.Errorf("roles = %s, %s", model.messages[0].Role, model.messages[1].Role)
	}
	if text, ok := model.messages[1].Parts[0].(llms.TextContent); !ok || text.Text != "Name: Windsor" {
		t.Errorf("user part = %#v", model.messages[1].Parts[0])
	}
}

func TestGenerateImagePrompt_Empty(t *testing.T) {
	tests := []struct {
		name string
		resp *llms.ContentResponse
	}{
		{name: "no choices", resp: &llms.ContentResponse{}},
		{name: "whitespace", resp: choices(" \n\t ")},
		{name: "nil response", resp: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{llmText: &fakeModel{resp: tt.resp}}
			_, err := c.GenerateImagePrompt(context.Background(), "s", "u")
			if !errors.Is(err, ErrEmptyPrompt) {
				t.Errorf("expected ErrEmptyPrompt, got %v", err)
			}
		})
	}
}

func TestGenerateImagePrompt_ProviderError(t *testing.T) {
	upstream := errors.New("rate limited")
	c := &Client{llmText: &fakeModel{err: upstream}}
	_, err := c.GenerateImagePrompt(context.Background(), "s", "u")
	if !errors.Is(err, upstream) {
		t.Errorf("expected wrapped upstream error, got %v", err)
	}
}

// newImagesServer serves POST /v1/images/generations with body and records the request.
func newImagesServer(t *testing.T, status int, body string, got *openai.ImageRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openaiClientFor(srv *httptest.Server) *openai.Client {
	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestGenerateImage_OpenAI(t *testing.T) {
	var req openai.ImageRequest
	srv := newImagesServer(t, http.StatusOK,
		`{"created":1,"data":[{"url":"https://images.example.com/crest.png","revised_prompt":"a crest"}]}`, &req)

	c := &Client{openaiClient: openaiClientFor(srv), modelImage: "dall-e-3", imageProvider: "openai"}
	img, err := c.GenerateImage(context.Background(), "A regal lion crest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.URL != "https://images.example.com/crest.png" {
		t.Errorf("URL = %q", img.URL)
	}
	if req.N != 1 || req.Size != openai.CreateImageSize1024x1024 || req.ResponseFormat != openai.CreateImageResponseFormatURL {
		t.Errorf("request n=%d size=%s format=%s", req.N, req.Size, req.ResponseFormat)
	}
	if req.Model != "dall-e-3" || req.Prompt != "A regal lion crest" {
		t.Errorf("request model=%s prompt=%s", req.Model, req.Prompt)
	}
}

func TestGenerateImage_OpenAINoURL(t *testing.T) {
	for name, body := range map[string]string{
		"no data":   `{"created":1,"data":[]}`,
		"empty url": `{"created":1,"data":[{"url":""}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newImagesServer(t, http.StatusOK, body, nil)
			c := &Client{openaiClient: openaiClientFor(srv), modelImage: "dall-e-3"}
			_, err := c.GenerateImage(context.Background(), "prompt")
			if !errors.Is(err, ErrNoImage) {
				t.Errorf("expected ErrNoImage, got %v", err)
			}
		})
	}
}

func TestGenerateImage_OpenAIError(t *testing.T) {
	srv := newImagesServer(t, http.StatusBadRequest,
		`{"error":{"message":"content policy violation","type":"invalid_request_error"}}`, nil)
	c := &Client{openaiClient: openaiClientFor(srv), modelImage: "dall-e-3"}
	_, err := c.GenerateImage(context.Background(), "prompt")
	if err == nil || errors.Is(err, ErrNoImage) {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestGenerateImage_NotConfigured(t *testing.T) {
	c := &Client{}
	if _, err := c.GenerateImage(context.Background(), "prompt"); err == nil {
		t.Error("expected error without an image client")
	}
}

func TestEndpointRoundTripper(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
	}))
	defer srv.Close()

	client := httpClientForEndpoint(srv.URL + "/gemini/")
	resp, err := client.Get("https://generativelanguage.googleapis.com/v1beta/models?key=abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if gotPath != "/gemini/v1beta/models" || gotQuery != "key=abc" {
		t.Errorf("rewritten to %s?%s", gotPath, gotQuery)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "short", n: 50, want: "short"},
		{in: "lion crest", n: 4, want: "lion..."},
		{in: "ééééé", n: 3, want: "ééé..."},
		{in: "日本の家紋", n: 2, want: "日本..."},
	}
	for _, tt := range tests {
		got := truncateRunes(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncateRunes(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}
