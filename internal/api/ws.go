package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/coder/websocket"
)

const wsWriteTimeout = 10 * time.Second

// ChatSocket handles GET /ws/chat. Each text frame carries a ChatRequest and
// is answered with one ChatResponse frame. A frame without conversation_id
// continues the socket's current conversation.
func (h *Handler) ChatSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originHosts(h.allowedOrigins),
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()
	ws.SetReadLimit(h.maxBodySize)

	ctx := agent.WithChannel(r.Context(), "chat_ws")
	var conversationID string

	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				return
			}
			slog.Debug("WebSocket read error", "error", err)
			return
		}
		if typ != websocket.MessageText {
			if err := h.writeJSON(ctx, ws, map[string]string{"error": "expected text frame"}); err != nil {
				return
			}
			continue
		}

		var req agent.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := h.writeJSON(ctx, ws, map[string]string{"error": "invalid message"}); err != nil {
				return
			}
			continue
		}
		if req.ConversationID == "" {
			req.ConversationID = conversationID
		}

		resp, err := h.chat.Chat(ctx, req)
		if err != nil {
			slog.Error("Chat turn failed", "conversation_id", req.ConversationID, "error", err)
			if err := h.writeJSON(ctx, ws, map[string]string{"error": err.Error()}); err != nil {
				return
			}
			continue
		}
		conversationID = resp.ConversationID

		if err := h.writeJSON(ctx, ws, resp); err != nil {
			slog.Debug("WebSocket write error", "error", err)
			return
		}
	}
}

func (h *Handler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
