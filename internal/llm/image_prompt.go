package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

// GenerateImagePrompt asks the text model to write an image prompt. systemText
// frames the task and userText carries the design fields. Only the first
// choice is used; an empty answer is ErrEmptyPrompt.
func (c *Client) GenerateImagePrompt(ctx context.Context, systemText, userText string) (string, error) {
	if c.llmText == nil {
		return "", fmt.Errorf("text model not configured")
	}

	log.Debug().
		Str("model", c.modelText).
		Int("user_len", len(userText)).
		Msg("Generating image prompt")

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: systemText}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: userText}}},
	}

	resp, err := c.llmText.GenerateContent(ctx, messages,
		llms.WithTemperature(0.8),
		llms.WithMaxTokens(400),
	)
	if err != nil {
		return "", fmt.Errorf("text completion failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrEmptyPrompt
	}

	raw := resp.Choices[0].Content
	logModelResponse("GenerateImagePrompt", c.modelText, raw)

	imagePrompt := strings.TrimSpace(raw)
	if imagePrompt == "" {
		return "", ErrEmptyPrompt
	}

	log.Info().
		Str("model", c.modelText).
		Int("prompt_length", len(imagePrompt)).
		Msg("Image prompt generation complete")

	return imagePrompt, nil
}
