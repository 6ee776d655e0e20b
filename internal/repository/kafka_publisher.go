package repository

import (
	"context"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/domain/repository"
	pkgkafka "SignalDesk/pkg/kafka"
)

// KafkaPublisher emits signal events to a Kafka topic, keyed by asset so one
// instrument's events stay ordered within a partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev models.SignalEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Asset), ev)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
