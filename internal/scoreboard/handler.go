package scoreboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	defaultLiveLimit = 50
	maxLiveLimit     = 200
)

// HTTPHandler serves the public read-only scoreboard.
type HTTPHandler struct {
	board Board
}

func NewHTTPHandler(board Board) *HTTPHandler {
	return &HTTPHandler{board: board}
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

func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleLive)
	r.Get("/{matchID}", h.HandleGet)
	return r
}

// HandleLive is the HTTP handler for GET /scoreboard.
func (h *HTTPHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultLiveLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLiveLimit)
	}

	views, err := h.board.LiveMatches(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list live matches", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load scoreboard")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"matches": views})
}

// HandleGet is the HTTP handler for GET /scoreboard/{matchID}.
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.board.Get(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("Failed to load scoreboard entry", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load scoreboard")
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}
