package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/questline-rpg/engine/internal/dispatch"
	"github.com/questline-rpg/engine/pkg/narration"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// EventRequest is one inbound player action.
type EventRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

// EventResponse carries the narrations produced by one action.
type EventResponse struct {
	Narrations []narration.Narration `json:"narrations"`
}

// EventHandler feeds player actions into the dispatcher.
type EventHandler struct {
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

func NewEventHandler(dispatcher *dispatch.Dispatcher, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ServeHTTP handles POST /v1/event
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for event endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		writeJSON(w, h.logger, ErrorResponse{Error: "Method not allowed. Supported methods: POST"})
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid event request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, h.logger, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.UserID == "" {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, h.logger, ErrorResponse{Error: "user_id is required"})
		return
	}

	out, err := h.dispatcher.Dispatch(r.Context(), req.UserID, req.Action)
	if err != nil {
		h.logger.Error("Failed to handle event", "user_id", req.UserID, "action", req.Action, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, h.logger, ErrorResponse{Error: "Failed to handle event"})
		return
	}

	writeJSON(w, h.logger, EventResponse{Narrations: out})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
