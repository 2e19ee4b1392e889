package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/krestly/crest-server/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes generation events to one topic.
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer creates a synchronous producer for topic. Each event is written
// on its own, so the batch timeout is kept short.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
	}

	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Generation event producer initialized")

	return &Producer{writer: writer, topic: topic}
}

// PublishGeneration writes event as JSON. Events of one request share a key.
func (p *Producer) PublishGeneration(ctx context.Context, event *models.GenerationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	key := event.RequestID
	if key == "" {
		key = event.ID.String()
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("crest.generation")},
			{Key: "outcome", Value: []byte(event.Outcome)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write generation event to %s: %w", p.topic, err)
	}

	log.Debug().
		Str("event_id", event.ID.String()).
		Str("outcome", event.Outcome).
		Str("topic", p.topic).
		Msg("Generation event published")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	log.Info().Msg("Closing generation event producer")
	return p.writer.Close()
}
