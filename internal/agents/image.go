package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/krestly/crest-server/internal/llm"
	"github.com/rs/zerolog/log"
)

// ErrNoHosting is returned when the provider returned inline bytes but no object store is configured.
var ErrNoHosting = errors.New("image returned inline but no storage is configured")

// imageGenerator is the subset of llm.Client used by the image agent.
type imageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*llm.Image, error)
}

// objectStore is the subset of storage.Client used to host inline images.
type objectStore interface {
	PutImage(ctx context.Context, key string, data []byte, contentType string) error
	ObjectURL(ctx context.Context, key string) (string, error)
}

// ImageAgentImpl wraps llm.Client for image generation. Providers that return
// bytes instead of a URL get their image uploaded to Storage.
type ImageAgentImpl struct {
	Client  imageGenerator
	Storage objectStore // may be nil when the provider always returns URLs
}

// NewImageAgent returns an ImageAgent that delegates to the LLM client. store may be nil.
func NewImageAgent(client imageGenerator, store objectStore) *ImageAgentImpl {
	return &ImageAgentImpl{Client: client, Storage: store}
}

// GenerateImage returns the URL of the generated image, uploading inline bytes when needed.
func (a *ImageAgentImpl) GenerateImage(ctx context.Context, prompt string) (string, error) {
	img, err := a.Client.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	if img == nil {
		return "", llm.ErrNoImage
	}
	if img.URL != "" {
		return img.URL, nil
	}
	if len(img.Data) == 0 {
		return "", llm.ErrNoImage
	}
	if a.Storage == nil {
		return "", ErrNoHosting
	}

	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	key := objectKey(time.Now().UTC(), uuid.New(), mimeType)
	if err := a.Storage.PutImage(ctx, key, img.Data, mimeType); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	url, err := a.Storage.ObjectURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("image URL: %w", err)
	}

	log.Debug().Str("key", key).Str("model", img.Model).Msg("Inline image hosted")
	return url, nil
}

// objectKey lays images out by day so buckets can expire them with a lifecycle rule.
func objectKey(now time.Time, id uuid.UUID, mimeType string) string {
	return "crests/" + now.Format("2006/01/02") + "/" + id.String() + imageExtensionForMime(mimeType)
}

func imageExtensionForMime(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
