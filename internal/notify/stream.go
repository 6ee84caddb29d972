package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	rstream "github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ashureev/biaslens/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultStreamTopic is the stream analyses are published to.
const DefaultStreamTopic = "job_analyses"

// StreamPublisher publishes analyses as Watermill messages.
type StreamPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewStreamPublisher wraps an existing Watermill publisher.
func NewStreamPublisher(publisher message.Publisher, topic string) *StreamPublisher {
	if topic == "" {
		topic = DefaultStreamTopic
	}
	return &StreamPublisher{publisher: publisher, topic: topic}
}

// NewRedisStreamPublisher publishes to a Redis stream through watermill-redisstream.
func NewRedisStreamPublisher(client redis.UniversalClient, topic string, logger *slog.Logger) (*StreamPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pub, err := rstream.NewPublisher(rstream.PublisherConfig{
		Client:     client,
		Marshaller: rstream.DefaultMarshallerUnmarshaller{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create redis stream publisher: %w", err)
	}
	return NewStreamPublisher(pub, topic), nil
}

// Notify publishes the record payload as one message.
func (p *StreamPublisher) Notify(ctx context.Context, record domain.AnalysisRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(NewPayload(record))
	if err != nil {
		return fmt.Errorf("marshal stream payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("bias_type", string(record.BiasType))
	if record.ConversationID != "" {
		msg.Metadata.Set("conversation_id", record.ConversationID)
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close closes the underlying publisher.
func (p *StreamPublisher) Close() error {
	return p.publisher.Close()
}
