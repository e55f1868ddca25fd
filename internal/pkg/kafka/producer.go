package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerConfig describes the topic a writer publishes to.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// NewProducer initializes a synchronous Kafka writer.
// Messages with the same key land on the same partition, so per-match ordering holds.
func NewProducer(cfg ProducerConfig) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	if cfg.WriteTimeout > 0 {
		w.WriteTimeout = cfg.WriteTimeout
	}
	return w
}
