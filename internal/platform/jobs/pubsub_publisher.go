package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/sash-studio/api/internal/services"
)

// PubSubEventPublisher publishes domain events to a single Pub/Sub topic. The event type
// travels as a message attribute so subscribers can filter without decoding.
type PubSubEventPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubEventPublisher binds a publisher to topic.
func NewPubSubEventPublisher(topic *pubsub.Topic) (*PubSubEventPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub event publisher: topic is required")
	}
	return &PubSubEventPublisher{topic: topic, marshal: json.Marshal}, nil
}

type envelope struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// Publish sends event and waits for the server acknowledgement.
func (p *PubSubEventPublisher) Publish(ctx context.Context, event services.Event) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub event publisher: not initialised")
	}

	data, err := p.marshal(envelope{
		Type:       event.Type,
		ID:         event.ID,
		OccurredAt: event.OccurredAt.UTC(),
		Payload:    event.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"eventType": event.Type,
			"entityId":  event.ID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}
