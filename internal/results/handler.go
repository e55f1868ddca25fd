package results

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// HTTPHandler serves read-only result queries.
type HTTPHandler struct {
	svc Service
}

func NewHTTPHandler(svc Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Routes returns the result endpoints ready to be mounted.
func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/matches", h.HandleRecentMatches)
	r.Get("/players/{playerID}", h.HandlePlayerStats)
	return r
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, code int, message string) {
	h.writeJSON(w, code, map[string]string{"error": message})
}

// HandleRecentMatches is the HTTP handler for GET /matches?limit=N.
func (h *HTTPHandler) HandleRecentMatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.svc.RecentMatches(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list recent matches", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to retrieve results")
		return
	}
	if records == nil {
		records = []MatchRecord{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

// HandlePlayerStats is the HTTP handler for GET /players/{playerID}.
func (h *HTTPHandler) HandlePlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	stats, err := h.svc.PlayerStats(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to retrieve player stats")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}
