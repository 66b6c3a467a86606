package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFromSync(mockProducer, nil)

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicShopEvents {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "order:42" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Key) != HeaderEventType {
			return errors.New("expected event type header")
		}
		return nil
	})

	err := producer.PublishEvent(context.Background(), TopicShopEvents, "order:42",
		map[string]any{"order_id": 42}, map[string]string{HeaderEventType: domain.EventOrderCreated})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFromSync(mockProducer, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.PublishEvent(context.Background(), TopicShopEvents, "k", map[string]any{}, nil)
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFromSync(mockProducer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := producer.PublishEvent(ctx, TopicShopEvents, "k", map[string]any{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_UnmarshalableEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFromSync(mockProducer, nil)

	if err := producer.PublishEvent(context.Background(), TopicShopEvents, "k", make(chan int), nil); err == nil {
		t.Fatal("expected marshal error")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	env := NewEnvelope(domain.OutboxMessage{ID: "m1", AggregateType: "order", AggregateID: "7", EventType: domain.EventOrderDeleted}, at)

	if string(env.Payload) != "{}" {
		t.Fatalf("empty payload must become {}, got %s", env.Payload)
	}
	if env.PublishedAt.Location() != time.UTC {
		t.Fatalf("published_at must be UTC, got %v", env.PublishedAt.Location())
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if decoded["event_type"] != domain.EventOrderDeleted || decoded["aggregate_id"] != "7" {
		t.Fatalf("unexpected envelope json: %s", data)
	}
}

func TestMessageKey(t *testing.T) {
	if got := MessageKey(domain.OutboxMessage{ID: "m1", AggregateType: "review", AggregateID: "3"}); got != "review:3" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := MessageKey(domain.OutboxMessage{ID: "m1"}); got != "m1" {
		t.Fatalf("expected fallback to message id, got %q", got)
	}
}
