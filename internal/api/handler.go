// Package api provides HTTP handlers for the bias analyzer API.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/ashureev/biaslens/internal/store"
	"github.com/go-chi/chi/v5"
)

// defaultMaxRequestBodySize is the maximum accepted request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20

// Handler serves the chat and analysis endpoints.
type Handler struct {
	chat           agent.Processor
	analyses       store.AnalysisRepository
	allowedOrigins []string
	maxBodySize    int64
}

// NewHandler creates a new Handler. allowedOrigins limits WebSocket upgrades
// and may contain "*".
func NewHandler(chat agent.Processor, analyses store.AnalysisRepository, allowedOrigins []string) *Handler {
	if analyses == nil {
		analyses = store.NopRepository{}
	}
	return &Handler{
		chat:           chat,
		analyses:       analyses,
		allowedOrigins: allowedOrigins,
		maxBodySize:    defaultMaxRequestBodySize,
	}
}

// RegisterRoutes mounts the handler's routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
	r.Get("/ws/chat", h.ChatSocket)
	r.Route("/api", func(r chi.Router) {
		r.Get("/conversations/{id}", h.GetConversation)
		r.Get("/analyses", h.ListAnalyses)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// originHosts converts configured origins into websocket origin patterns,
// which match on host only.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		hosts = append(hosts, strings.TrimSuffix(o, "/"))
	}
	return hosts
}
