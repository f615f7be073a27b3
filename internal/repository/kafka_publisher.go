package repository

import (
	"context"

	"YiJinJing/internal/domain/models"
	"YiJinJing/internal/domain/repository"
	pkgkafka "YiJinJing/pkg/kafka"
)

// Producer is the part of pkg/kafka.Producer the publishers use.
type Producer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaEventPublisher writes dashboard events to the events topic keyed by session,
// so one session's events stay ordered on one partition.
type KafkaEventPublisher struct {
	producer Producer
	topic    string
}

// NewKafkaEventPublisher creates an event publisher.
func NewKafkaEventPublisher(producer Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

var _ repository.EventPublisher = (*KafkaEventPublisher)(nil)

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, e *models.Event) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
		Key:     []byte(e.Session),
		Value:   e,
		Headers: map[string]string{"type": string(e.Type)},
	}})
}

// KafkaPublisher sends arbitrary payloads, e.g. aggregated logs, to a topic.
type KafkaPublisher struct {
	producer Producer
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer Producer) repository.Publisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.PublishBatch(ctx, topic, []pkgkafka.Message{{Value: payload}})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
