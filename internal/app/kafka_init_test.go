package app

import (
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/service/outbox"
)

func TestSplitBrokers(t *testing.T) {
	got := splitBrokers(" broker1:9092, ,broker2:9092,")
	if len(got) != 2 || got[0] != "broker1:9092" || got[1] != "broker2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
	if got := splitBrokers("  "); len(got) != 0 {
		t.Fatalf("expected no brokers, got %v", got)
	}
}

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer(" , ", log.WithField("test", "kafka"))
	if err != nil {
		t.Errorf("expected no error for empty brokers, got %v", err)
	}
	if producer != nil {
		t.Error("expected nil producer for empty brokers")
	}
}

func TestInitKafkaProducer_InvalidBrokers(t *testing.T) {
	producer, err := initKafkaProducer("127.0.0.1:1", log.WithField("test", "kafka"))
	if err == nil {
		t.Error("expected error for unreachable broker")
	}
	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestOutboxPublishers_FallBackToLog(t *testing.T) {
	logger := log.WithField("test", "kafka")

	for _, brokers := range []string{"", "127.0.0.1:1"} {
		cfg := DefaultConfig()
		cfg.KafkaBrokers = brokers

		primary, dlq, producer := outboxPublishers(cfg, logger)
		if _, ok := primary.(*outbox.LogPublisher); !ok {
			t.Fatalf("brokers=%q: expected log publisher, got %T", brokers, primary)
		}
		if dlq != nil || producer != nil {
			t.Fatalf("brokers=%q: expected no dlq and no producer", brokers)
		}
	}
}

func TestCloseKafka_NilProducer(t *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka"))
}
