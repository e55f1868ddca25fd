package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/cheildo/courtside/internal/session"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher hands finished matches to the results service over Kafka.
// It satisfies session.ResultSink.
type Publisher struct {
	writer messageWriter
}

var _ session.ResultSink = (*Publisher)(nil)

func NewPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Submit publishes a match_completed event keyed by match ID.
func (p *Publisher) Submit(ctx context.Context, outcome session.Outcome) error {
	event := NewMatchCompletedEvent(outcome)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal match_completed event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.MatchID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish match_completed event: %w", err)
	}

	slog.Info("Published match_completed event", "matchID", event.MatchID, "eventID", event.EventID)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
