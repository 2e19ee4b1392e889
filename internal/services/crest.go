package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/krestly/crest-server/internal/agents"
	"github.com/krestly/crest-server/internal/config"
	"github.com/krestly/crest-server/internal/llm"
	"github.com/krestly/crest-server/internal/middleware"
	"github.com/krestly/crest-server/internal/models"
	"github.com/krestly/crest-server/internal/prompt"
	"github.com/rs/zerolog/log"
)

// publishTimeout bounds event publishing after the outcome is known.
const publishTimeout = 3 * time.Second

// CrestService turns a DesignRequest into one generated image URL.
// It holds no per-request state and is shared by all requests.
type CrestService struct {
	prompts agents.PromptAgent
	images  agents.ImageAgent
	events  EventPublisher

	mode           prompt.Mode
	maxFieldLength int
	textTimeout    time.Duration
	imageTimeout   time.Duration
	textModel      string
	imageModel     string
}

// NewCrestService creates a new crest service. events may be nil.
func NewCrestService(prompts agents.PromptAgent, images agents.ImageAgent, events EventPublisher, cfg *config.Config) *CrestService {
	return &CrestService{
		prompts:        prompts,
		images:         images,
		events:         events,
		mode:           prompt.Mode(cfg.ValidationMode),
		maxFieldLength: cfg.MaxFieldLength,
		textTimeout:    cfg.TextTimeout,
		imageTimeout:   cfg.ImageTimeout,
		textModel:      cfg.TextModel(),
		imageModel:     cfg.ImageModel(),
	}
}

// Generate validates req, asks the text service for an image prompt, then asks
// the image service for one image. The two calls are sequential; a failure in
// either ends the request with an *Error and nothing is retried.
func (s *CrestService) Generate(ctx context.Context, req models.DesignRequest) (*models.GenerateResponse, error) {
	req = req.Normalize()
	event := &models.GenerationEvent{
		ID:            uuid.New(),
		RequestID:     middleware.GetRequestID(ctx),
		FieldsPresent: prompt.Presence(req),
		TextModel:     s.textModel,
		ImageModel:    s.imageModel,
		CreatedAt:     time.Now().UTC(),
	}

	resp, err := s.generate(ctx, req, event)
	if err != nil {
		event.Outcome = string(KindOf(err))
		s.logFailure(ctx, err)
	} else {
		event.Outcome = "succeeded"
	}
	s.publish(ctx, event)
	return resp, err
}

func (s *CrestService) generate(ctx context.Context, req models.DesignRequest, event *models.GenerationEvent) (*models.GenerateResponse, error) {
	if err := prompt.Validate(req, s.mode, s.maxFieldLength); err != nil {
		event.Stage = StageValidate
		// FieldError text names only our own field keys
		return nil, &Error{Kind: KindValidation, Stage: StageValidate, Detail: err.Error(), Err: err}
	}

	systemText, userText := prompt.Compose(req, s.mode)

	event.Stage = StageText
	start := time.Now()
	textCtx, cancel := context.WithTimeout(ctx, s.textTimeout)
	imagePrompt, err := s.prompts.GenerateImagePrompt(textCtx, systemText, userText)
	cancel()
	event.TextMillis = time.Since(start).Milliseconds()
	imagePrompt = strings.TrimSpace(imagePrompt)
	if err == nil && imagePrompt == "" {
		err = llm.ErrEmptyPrompt
	}
	if err != nil {
		return nil, &Error{
			Kind:   KindUpstreamText,
			Stage:  StageText,
			Detail: upstreamDetail(err, "text completion service timed out", "text completion service did not return a usable prompt"),
			Err:    err,
		}
	}

	event.Stage = StageImage
	start = time.Now()
	imageCtx, cancel := context.WithTimeout(ctx, s.imageTimeout)
	imageURL, err := s.images.GenerateImage(imageCtx, imagePrompt)
	cancel()
	event.ImageMillis = time.Since(start).Milliseconds()
	imageURL = strings.TrimSpace(imageURL)
	if err == nil && imageURL == "" {
		err = llm.ErrNoImage
	}
	if err != nil {
		return nil, &Error{
			Kind:   KindUpstreamImage,
			Stage:  StageImage,
			Detail: upstreamDetail(err, "image generation service timed out", "image generation service did not return an image"),
			Err:    err,
		}
	}

	event.Stage = ""
	log.Info().
		Str("request_id", event.RequestID).
		Int64("text_ms", event.TextMillis).
		Int64("image_ms", event.ImageMillis).
		Msg("Crest generated")

	return &models.GenerateResponse{ImageURL: imageURL}, nil
}

// upstreamDetail picks a caller-safe detail; provider messages are never passed through.
func upstreamDetail(err error, timedOut, failed string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return timedOut
	}
	return failed
}

func (s *CrestService) logFailure(ctx context.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		log.Error().Err(err).Str("request_id", middleware.GetRequestID(ctx)).Msg("Crest generation failed")
		return
	}
	ev := log.Error()
	if e.Kind == KindValidation {
		ev = log.Info()
	}
	ev.Err(e.Err).
		Str("request_id", middleware.GetRequestID(ctx)).
		Str("stage", e.Stage).
		Str("kind", string(e.Kind)).
		Msg("Crest generation failed")
}

func (s *CrestService) publish(ctx context.Context, event *models.GenerationEvent) {
	if s.events == nil {
		return
	}
	// Detached from the request so a disconnected caller still gets recorded
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.PublishGeneration(pubCtx, event); err != nil {
		log.Warn().Err(err).Str("request_id", event.RequestID).Msg("Failed to publish generation event")
	}
}
