package results

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Submit(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w)

	require.NoError(t, p.Submit(context.Background(), sampleOutcome()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "match-42", string(msg.Key))

	var e MatchCompletedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &e))
	assert.Equal(t, "match-42", e.MatchID)
	assert.Equal(t, 1800, e.DurationSeconds)
	assert.Len(t, e.Games, 3)
}

func TestPublisher_SubmitError(t *testing.T) {
	p := NewPublisher(&fakeWriter{err: errDatabaseDown})
	err := p.Submit(context.Background(), sampleOutcome())
	assert.ErrorIs(t, err, errDatabaseDown)
}
