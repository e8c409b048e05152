package api

import (
	"log/slog"
	"net/http"

	"github.com/guiacidadao/guia/internal/session"
)

// sessionHandler handles session endpoints.
type sessionHandler struct {
	sessions *session.Store
	logger   *slog.Logger
}

// createResponse is the payload for POST /api/v1/sessions.
type createResponse struct {
	SessionID string `json:"sessionId"`
}

// create allocates a fresh conversation session.
func (h *sessionHandler) create(w http.ResponseWriter, _ *http.Request) {
	id := h.sessions.Create()
	h.logger.Debug("session created", "sessionId", id)
	writeJSON(w, http.StatusCreated, createResponse{SessionID: id})
}

// profile returns the accumulated profile for a session. Unknown or expired
// sessions are a 404; the profile itself may be empty for a fresh session.
func (h *sessionHandler) profile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_session_id", "session id is required")
		return
	}

	p, ok := h.sessions.Snapshot(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}

	writeJSON(w, http.StatusOK, p)
}
