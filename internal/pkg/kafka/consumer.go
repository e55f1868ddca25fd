package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig describes a consumer group subscription.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewConsumer initializes a Kafka reader that joins cfg.GroupID.
// Offsets are committed explicitly by the caller after a message is processed.
func NewConsumer(cfg ConsumerConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID, // Consumers in the same group share the load.
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        time.Second,
		CommitInterval: 0, // synchronous commits
		StartOffset:    kafka.FirstOffset,
	})
}
