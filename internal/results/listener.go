package results

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Listener consumes match_completed events and records them.
type Listener struct {
	reader   messageReader
	svc      Service
	recorded atomic.Int64

	retryMin time.Duration
	retryMax time.Duration
}

const (
	defaultRetryMin = 500 * time.Millisecond
	defaultRetryMax = 30 * time.Second
)

func NewListener(reader messageReader, svc Service) *Listener {
	return &Listener{
		reader:   reader,
		svc:      svc,
		retryMin: defaultRetryMin,
		retryMax: defaultRetryMax,
	}
}

// Run starts the consumer loop. It should be run in a goroutine and returns when ctx is cancelled.
//
// A message is committed only after it was recorded or found to be unusable,
// so a crash between the two replays the event; recording is idempotent on event ID.
// A message that fails to record is retried until it succeeds; the next
// message is not fetched before then, because committing a later offset
// would also commit the failed one.
func (l *Listener) Run(ctx context.Context) {
	slog.Info("Results listener started")
	defer l.reader.Close()

	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break // Context cancelled, graceful shutdown.
			}
			slog.Error("Error reading from Kafka", "error", err)
			continue
		}

		if !l.handleWithRetry(ctx, msg) {
			break
		}

		if err := l.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			slog.Error("Failed to commit offset", "offset", msg.Offset, "error", err)
		}
	}
	slog.Info("Results listener stopped.")
}

// handleWithRetry calls handle until it succeeds, backing off exponentially
// between attempts. It reports false if ctx ended first.
func (l *Listener) handleWithRetry(ctx context.Context, msg kafka.Message) bool {
	delay := l.retryMin
	for attempt := 1; ; attempt++ {
		err := l.handle(ctx, msg)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		slog.Error("Failed to record match result, retrying",
			"key", string(msg.Key), "offset", msg.Offset, "attempt", attempt, "retryIn", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		delay = min(delay*2, l.retryMax)
	}
}

func (l *Listener) handle(ctx context.Context, msg kafka.Message) error {
	var event MatchCompletedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		slog.Error("Dropping malformed match_completed event", "key", string(msg.Key), "error", err)
		return nil
	}

	err := l.svc.Record(ctx, event)
	switch {
	case err == nil:
		l.recorded.Add(1)
		return nil
	case errors.Is(err, ErrDuplicateEvent):
		slog.Info("Skipping already recorded event", "eventID", event.EventID, "matchID", event.MatchID)
		return nil
	case errors.Is(err, ErrInvalidEvent):
		slog.Error("Dropping invalid match_completed event", "matchID", event.MatchID, "error", err)
		return nil
	default:
		return err
	}
}

// Recorded returns how many events this listener has stored.
func (l *Listener) Recorded() int64 {
	return l.recorded.Load()
}
