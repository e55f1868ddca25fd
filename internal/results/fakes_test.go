package results

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
)

type fakeRepo struct {
	mu      sync.Mutex
	saved   map[string]MatchCompletedEvent
	saveErr error
	// failNext makes that many SaveMatch calls fail with errDatabaseDown.
	failNext int
	order    []string
	records  []MatchRecord
	stats    map[string]*PlayerStats
	limit    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		saved: make(map[string]MatchCompletedEvent),
		stats: make(map[string]*PlayerStats),
	}
}

func (r *fakeRepo) SaveMatch(_ context.Context, e MatchCompletedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.failNext > 0 {
		r.failNext--
		return errDatabaseDown
	}
	if _, ok := r.saved[e.EventID]; ok {
		return ErrDuplicateEvent
	}
	r.saved[e.EventID] = e
	r.order = append(r.order, e.MatchID)
	return nil
}

func (r *fakeRepo) RecentMatches(_ context.Context, limit int) ([]MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = limit
	return r.records, nil
}

func (r *fakeRepo) savedOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *fakeRepo) lastLimit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

func (r *fakeRepo) GetPlayerStats(_ context.Context, id string) (*PlayerStats, error) {
	if ps, ok := r.stats[id]; ok {
		return ps, nil
	}
	return nil, ErrPlayerNotFound
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader replays a fixed list of messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	offsets := make([]int64, len(r.committed))
	for i, m := range r.committed {
		offsets[i] = m.Offset
	}
	return offsets
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

var errDatabaseDown = errors.New("database down")
