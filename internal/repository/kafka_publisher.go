package repository

import (
	"context"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	pkgkafka "BizPulse/pkg/kafka"
)

// BatchWriter is the subset of pkg/kafka.Producer the publisher needs.
type BatchWriter interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaRiskPublisher publishes risk events keyed by risk type, so events of one type stay ordered.
type KafkaRiskPublisher struct {
	producer BatchWriter
	topic    string
}

var _ domrepo.RiskPublisher = (*KafkaRiskPublisher)(nil)

func NewKafkaRiskPublisher(producer BatchWriter, topic string) *KafkaRiskPublisher {
	return &KafkaRiskPublisher{producer: producer, topic: topic}
}

func (p *KafkaRiskPublisher) PublishRiskEvents(ctx context.Context, events []models.RiskEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(events))
	for i, ev := range events {
		msgs[i] = pkgkafka.Message{
			Key:     []byte(ev.Risk.RiskType),
			Value:   ev,
			Headers: map[string]string{"event_type": string(ev.EventType), pkgkafka.TraceHeader: ev.EventID},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaRiskPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRiskEvents(context.Context, []models.RiskEvent) error { return nil }
func (NoopPublisher) Close() error { return nil }
