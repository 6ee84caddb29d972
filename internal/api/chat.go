package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/ashureev/biaslens/internal/store"
	"github.com/go-chi/chi/v5"
)

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req agent.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.chat.Chat(agent.WithChannel(r.Context(), "chat_http"), req)
	if err != nil {
		slog.Error("Chat turn failed", "conversation_id", req.ConversationID, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, resp)
}

// GetConversation handles GET /api/conversations/{id}.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, err := h.chat.Conversation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		Error(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		slog.Error("Failed to load conversation", "conversation_id", id, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, state)
}

// ListAnalyses handles GET /api/analyses?limit=N.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 500)
	}

	records, err := h.analyses.ListAnalyses(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list analyses", "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"analyses": records})
}
