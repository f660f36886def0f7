package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/questline-rpg/engine/internal/dispatch"
	"github.com/questline-rpg/engine/internal/store"
)

// SessionHandler exposes stored sessions for inspection and restart.
type SessionHandler struct {
	store      store.Store
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

func NewSessionHandler(st store.Store, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:      st,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ServeHTTP handles session operations
// Routes:
// GET /v1/session/{user_id}    - Read a stored session
// DELETE /v1/session/{user_id} - Delete a session (restart the game)
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/session"), "/")
	if userID == "" {
		h.logger.Warn("Session request without user id", "method", r.Method)
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, h.logger, ErrorResponse{Error: "User ID is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		sess, err := h.store.Load(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				writeJSON(w, h.logger, ErrorResponse{Error: "Session not found"})
				return
			}
			h.logger.Error("Failed to load session", "user_id", userID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, h.logger, ErrorResponse{Error: "Failed to load session"})
			return
		}
		writeJSON(w, h.logger, sess)

	case http.MethodDelete:
		if err := h.dispatcher.Reset(r.Context(), userID); err != nil {
			h.logger.Error("Failed to delete session", "user_id", userID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, h.logger, ErrorResponse{Error: "Failed to delete session"})
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		h.logger.Warn("Method not allowed for session endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		writeJSON(w, h.logger, ErrorResponse{Error: "Method not allowed. Supported methods: GET, DELETE"})
	}
}
