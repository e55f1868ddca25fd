package results

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheildo/courtside/internal/scoring"
)

func TestHTTPHandler_RecentMatches(t *testing.T) {
	repo := newFakeRepo()
	repo.records = []MatchRecord{{
		MatchID:     "m1",
		Winner:      scoring.SideB,
		Games:       []scoring.GameScore{{A: 3, B: 15}, {A: 12, B: 15}},
		TeamA:       []string{"p1", "p2"},
		TeamB:       []string{"p3", "p4"},
		CompletedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}}
	srv := httptest.NewServer(NewHTTPHandler(NewService(repo, scoring.DefaultRules())).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/matches?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []MatchRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].MatchID)
	assert.Equal(t, 5, repo.lastLimit())

	bad, err := http.Get(srv.URL + "/matches?limit=abc")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestHTTPHandler_PlayerStats(t *testing.T) {
	repo := newFakeRepo()
	repo.stats["p1"] = &PlayerStats{PlayerID: "p1", Name: "Ana", PlayCount: 7, Wins: 4}
	srv := httptest.NewServer(NewHTTPHandler(NewService(repo, scoring.DefaultRules())).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/players/p1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ps PlayerStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ps))
	assert.Equal(t, 7, ps.PlayCount)

	missing, err := http.Get(srv.URL + "/players/nobody")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
