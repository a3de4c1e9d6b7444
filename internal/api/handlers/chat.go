// HTTP handlers for the guideline chat.
// POST /api/v1/chat runs one RAG turn; GET /api/v1/chat/{session_id}/history
// and DELETE /api/v1/chat/{session_id} manage session state.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/martinserrat/triagent/internal/domain/chat"
	"github.com/martinserrat/triagent/internal/domain/guideline"
)

// ChatHandler handles chat HTTP requests.
type ChatHandler struct {
	service *chat.Service
}

// NewChatHandler creates a ChatHandler backed by the given service.
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{service: svc}
}

// chatRequest is the JSON request body for POST /api/v1/chat.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	TopK      int    `json:"top_k,omitempty"`
}

// Chat handles POST /api/v1/chat.
//
// Response codes:
//   - 200 OK: grounded answer with citations
//   - 400 Bad Request: invalid JSON or missing fields
//   - 503 Service Unavailable: retrieval or model provider unreachable
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.service.Chat(r.Context(), req.SessionID, req.Message, req.TopK)
	if err != nil {
		if errors.Is(err, guideline.ErrSearchUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "guideline retrieval is temporarily unavailable")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "chat is temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// historyResponse is the JSON response body for GET /api/v1/chat/{session_id}/history.
type historyResponse struct {
	SessionID string      `json:"session_id"`
	Turns     []chat.Turn `json:"turns"`
}

// History handles GET /api/v1/chat/{session_id}/history.
// An unknown session returns an empty turn list, not 404 — history of a
// session that never spoke is the empty history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	writeJSON(w, http.StatusOK, historyResponse{
		SessionID: sessionID,
		Turns:     h.service.History(sessionID),
	})
}

// clearResponse is the JSON response body for DELETE /api/v1/chat/{session_id}.
type clearResponse struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

// Clear handles DELETE /api/v1/chat/{session_id}.
//
// Response codes:
//   - 200 OK: session existed and was cleared
//   - 404 Not Found: no such session
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	if !h.service.Clear(sessionID) {
		writeError(w, http.StatusNotFound, "session not found: "+sessionID)
		return
	}

	writeJSON(w, http.StatusOK, clearResponse{SessionID: sessionID, Cleared: true})
}
