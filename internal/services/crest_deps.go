package services

import (
	"context"

	"github.com/krestly/crest-server/internal/models"
)

// EventPublisher publishes generation events (e.g. to Kafka). May be nil to skip publishing.
type EventPublisher interface {
	PublishGeneration(ctx context.Context, event *models.GenerationEvent) error
}
