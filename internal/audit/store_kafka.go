package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"autoquote/internal/platform/kafka/producer"
)

// RecordProducer is the subset of the Kafka producer the audit sink needs.
type RecordProducer interface {
	ProduceAsync(msg *producer.Message) error
}

// KafkaStore publishes audit events to a Kafka topic. Reads are not supported;
// downstream consumers own the materialized history.
type KafkaStore struct {
	producer RecordProducer
	topic    string
}

func NewKafkaStore(p RecordProducer, topic string) *KafkaStore {
	if topic == "" {
		topic = "autoquote.audit"
	}
	return &KafkaStore{producer: p, topic: topic}
}

type wireEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
}

func (s *KafkaStore) Append(_ context.Context, event Event) error {
	payload, err := json.Marshal(wireEvent{
		Timestamp: event.Timestamp,
		UserID:    event.UserID,
		Subject:   event.Subject,
		Action:    event.Action,
		Reason:    event.Reason,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.ProduceAsync(&producer.Message{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: payload,
	})
}

// ListByUser is not supported by the Kafka sink.
func (s *KafkaStore) ListByUser(_ context.Context, _ string) ([]Event, error) {
	return nil, fmt.Errorf("kafka audit sink is write-only: %w", ErrNotFound)
}
