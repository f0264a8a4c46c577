package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/sash-studio/api/internal/services"
)

func TestPubSubEventPublisherPublishesEnvelope(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() { _ = client.Close() }()

	topic, err := client.CreateTopic(ctx, "quote-events")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	defer topic.Stop()

	publisher, err := NewPubSubEventPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubEventPublisher: %v", err)
	}

	occurred := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	err = publisher.Publish(ctx, services.Event{
		Type:       services.EventQuoteRequestSubmitted,
		ID:         "qr_01",
		OccurredAt: occurred,
		Payload:    map[string]any{"email": "buyer@example.co.uk", "totalWithVat": 1108.08},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	msg := messages[0]
	if msg.Attributes["eventType"] != "quote_request.submitted" || msg.Attributes["entityId"] != "qr_01" {
		t.Fatalf("unexpected attributes %v", msg.Attributes)
	}

	var body struct {
		Type       string         `json:"type"`
		OccurredAt time.Time      `json:"occurredAt"`
		Payload    map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(msg.Data, &body); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if body.Type != "quote_request.submitted" || !body.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected envelope %+v", body)
	}
	if body.Payload["totalWithVat"] != 1108.08 {
		t.Fatalf("unexpected payload %v", body.Payload)
	}
}

func TestNewPubSubEventPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubEventPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}
