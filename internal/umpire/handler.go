package umpire

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cheildo/courtside/internal/auth"
	"github.com/cheildo/courtside/internal/scoring"
	"github.com/cheildo/courtside/internal/session"
)

// HTTPHandler exposes the umpire's court controls over the session registry.
type HTTPHandler struct {
	registry *session.Registry
}

func NewHTTPHandler(registry *session.Registry) *HTTPHandler {
	return &HTTPHandler{registry: registry}
}

type teamsRequest struct {
	TeamA []scoring.Player `json:"teamA"`
	TeamB []scoring.Player `json:"teamB"`
}

type tossRequest struct {
	FirstServer string `json:"firstServer"`
}

type pointRequest struct {
	Side string `json:"side"`
}

type undoResponse struct {
	Undone  bool         `json:"undone"`
	Session session.View `json:"session"`
}

// Routes returns the match endpoints. Authentication is applied by the caller.
func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Route("/{matchID}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Delete("/", h.HandleExit)
		r.Put("/teams", h.HandleSetTeams)
		r.Post("/toss", h.HandleToss)
		r.Post("/points", h.HandleAddPoint)
		r.Post("/undo", h.HandleUndo)
		r.Post("/pause", h.HandlePause)
		r.Post("/resume", h.HandleResume)
	})
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

// writeSessionError maps session and scoring errors onto HTTP statuses.
func (h *HTTPHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrWrongPhase), errors.Is(err, scoring.ErrMatchComplete):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrIncompleteTeams),
		errors.Is(err, session.ErrDuplicatePlayer),
		errors.Is(err, scoring.ErrInvalidSide):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Unexpected session error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *HTTPHandler) controller(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	c, err := h.registry.Get(chi.URLParam(r, "matchID"))
	if err != nil {
		h.writeSessionError(w, err)
		return nil, false
	}
	return c, true
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// HandleList is the HTTP handler for GET /matches.
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": h.registry.List()})
}

// HandleCreate is the HTTP handler for POST /matches.
func (h *HTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Create()
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		slog.Info("Umpire opened match", "matchID", c.ID(), "umpireID", claims.UmpireID)
	}
	h.writeJSON(w, http.StatusCreated, c.View())
}

// HandleGet is the HTTP handler for GET /matches/{matchID}.
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, c.View())
}

// HandleSetTeams is the HTTP handler for PUT /matches/{matchID}/teams.
// Players are listed in their starting court order, right court first.
func (h *HTTPHandler) HandleSetTeams(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req teamsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.TeamA) != 2 || len(req.TeamB) != 2 {
		h.writeSessionError(w, session.ErrIncompleteTeams)
		return
	}

	v, err := c.SetTeams(
		scoring.Team{req.TeamA[0], req.TeamA[1]},
		scoring.Team{req.TeamB[0], req.TeamB[1]},
	)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// HandleToss is the HTTP handler for POST /matches/{matchID}/toss.
func (h *HTTPHandler) HandleToss(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req tossRequest
	if !h.decode(w, r, &req) {
		return
	}
	side, err := scoring.ParseSide(req.FirstServer)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	v, err := c.Toss(side)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// HandleAddPoint is the HTTP handler for POST /matches/{matchID}/points.
func (h *HTTPHandler) HandleAddPoint(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req pointRequest
	if !h.decode(w, r, &req) {
		return
	}
	side, err := scoring.ParseSide(req.Side)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	v, err := c.AddPoint(side)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// HandleUndo is the HTTP handler for POST /matches/{matchID}/undo.
func (h *HTTPHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	v, undone, err := c.Undo()
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, undoResponse{Undone: undone, Session: v})
}

// HandlePause is the HTTP handler for POST /matches/{matchID}/pause.
func (h *HTTPHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	v, err := c.Pause()
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// HandleResume is the HTTP handler for POST /matches/{matchID}/resume.
func (h *HTTPHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	v, err := c.Resume()
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// HandleExit is the HTTP handler for DELETE /matches/{matchID}.
// An unfinished match is discarded without being recorded.
func (h *HTTPHandler) HandleExit(w http.ResponseWriter, r *http.Request) {
	v, err := h.registry.Close(chi.URLParam(r, "matchID"))
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}
