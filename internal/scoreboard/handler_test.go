package scoreboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheildo/courtside/internal/session"
)

type fakeBoard struct {
	views     map[string]session.View
	live      []session.View
	err       error
	lastLimit int64
}

func (f *fakeBoard) Publish(_ context.Context, v session.View) (bool, error) {
	f.views[v.MatchID] = v
	return true, nil
}

func (f *fakeBoard) Remove(context.Context, string) error { return nil }

func (f *fakeBoard) Get(_ context.Context, matchID string) (session.View, error) {
	if f.err != nil {
		return session.View{}, f.err
	}
	v, ok := f.views[matchID]
	if !ok {
		return session.View{}, ErrNotFound
	}
	return v, nil
}

func (f *fakeBoard) LiveMatches(_ context.Context, limit int64) ([]session.View, error) {
	f.lastLimit = limit
	return f.live, f.err
}

func (f *fakeBoard) SessionUpdated(ctx context.Context, v session.View) { f.Publish(ctx, v) }
func (f *fakeBoard) SessionClosed(context.Context, string)              {}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHTTPHandler_Live(t *testing.T) {
	board := &fakeBoard{live: []session.View{{MatchID: "m1", Phase: session.PhaseLive}}}
	routes := NewHTTPHandler(board).Routes()

	rec := serve(routes, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(defaultLiveLimit), board.lastLimit)

	var body struct {
		Matches []session.View `json:"matches"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Matches, 1)
	assert.Equal(t, "m1", body.Matches[0].MatchID)

	serve(routes, "/?limit=1000")
	assert.Equal(t, int64(maxLiveLimit), board.lastLimit)

	assert.Equal(t, http.StatusBadRequest, serve(routes, "/?limit=zero").Code)

	board.err = errors.New("redis down")
	assert.Equal(t, http.StatusInternalServerError, serve(routes, "/").Code)
}

func TestHTTPHandler_Get(t *testing.T) {
	board := &fakeBoard{views: map[string]session.View{}}
	board.SessionUpdated(context.Background(), session.View{MatchID: "m1", Version: 7})
	routes := NewHTTPHandler(board).Routes()

	rec := serve(routes, "/m1")
	require.Equal(t, http.StatusOK, rec.Code)
	var v session.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Equal(t, uint64(7), v.Version)

	assert.Equal(t, http.StatusNotFound, serve(routes, "/nope").Code)
}
