package agents

import (
	"context"
)

// PromptAgent writes an image prompt from a system framing and the design fields.
type PromptAgent interface {
	GenerateImagePrompt(ctx context.Context, systemText, userText string) (string, error)
}

// ImageAgent turns an image prompt into the URL of exactly one generated image.
type ImageAgent interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
