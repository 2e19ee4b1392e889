package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// imageResolution is the only size requested: one square image.
const imageResolution = "1024x1024"

const promptLogRunes = 50

// truncateRunes shortens s to at most n runes, marking the cut with "...".
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// GenerateImage generates exactly one square image for prompt with the configured provider.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	log.Debug().
		Str("provider", c.imageProvider).
		Str("prompt", truncateRunes(prompt, promptLogRunes)).
		Msg("Generating image")

	switch {
	case c.openaiClient != nil:
		return c.generateImageOpenAI(ctx, prompt)
	case c.genaiClient != nil:
		return c.generateImageGenai(ctx, prompt)
	default:
		return nil, fmt.Errorf("image model not configured")
	}
}

// generateImageOpenAI calls the images endpoint asking for a hosted URL.
func (c *Client) generateImageOpenAI(ctx context.Context, prompt string) (*Image, error) {
	resp, err := c.openaiClient.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.modelImage,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].URL) == "" {
		log.Warn().
			Str("model", c.modelImage).
			Int("results", len(resp.Data)).
			Msg("No image URL in OpenAI response")
		return nil, ErrNoImage
	}

	first := resp.Data[0]
	log.Info().
		Str("caller", "GenerateImage").
		Str("model", c.modelImage).
		Int("results", len(resp.Data)).
		Msg("Image generation complete (OpenAI)")

	return &Image{
		URL:           strings.TrimSpace(first.URL),
		Resolution:    imageResolution,
		Model:         c.modelImage,
		RevisedPrompt: first.RevisedPrompt,
	}, nil
}

// generateImageGenai calls Imagen and returns the first image's bytes.
func (c *Client) generateImageGenai(ctx context.Context, prompt string) (*Image, error) {
	resp, err := c.genaiClient.Models.GenerateImages(ctx, c.modelImage, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, ErrNoImage
	}

	first := resp.GeneratedImages[0]
	if first == nil || first.Image == nil || len(first.Image.ImageBytes) == 0 {
		reason := ""
		if first != nil {
			reason = first.RAIFilteredReason
		}
		log.Warn().
			Str("model", c.modelImage).
			Str("filtered_reason", reason).
			Msg("No image bytes in Imagen response")
		return nil, ErrNoImage
	}

	mimeType := first.Image.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	log.Info().
		Str("caller", "GenerateImage").
		Str("model", c.modelImage).
		Int("image_size_bytes", len(first.Image.ImageBytes)).
		Str("mime_type", mimeType).
		Msg("Image generation complete (Imagen)")

	return &Image{
		Data:          first.Image.ImageBytes,
		MimeType:      mimeType,
		Resolution:    imageResolution,
		Model:         c.modelImage,
		RevisedPrompt: first.EnhancedPrompt,
	}, nil
}
