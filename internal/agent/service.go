package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashureev/biaslens/internal/domain"
	"github.com/ashureev/biaslens/internal/store"
	"github.com/google/uuid"
)

// Service runs chat turns against stored conversations.
type Service struct {
	graph         *Graph
	conversations store.ConversationStore
	log           ConversationLogger
	logger        *slog.Logger
}

// NewService creates a chat service. A nil store uses process memory and a
// nil transcript logger drops events.
func NewService(graph *Graph, conversations store.ConversationStore, transcript ConversationLogger, logger *slog.Logger) *Service {
	if conversations == nil {
		conversations = store.NewMemoryConversationStore()
	}
	if transcript == nil {
		transcript = noopConversationLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		graph:         graph,
		conversations: conversations,
		log:           transcript,
		logger:        logger,
	}
}

// Chat runs one turn. The whole turn happens inside one store update, so
// turns for the same conversation never interleave. Empty text is a normal
// turn and is answered with the clarification prompt.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	s.log.Log(ConversationLogEvent{
		ConversationID: conversationID,
		Channel:        channelFromContext(ctx),
		Direction:      "inbound",
		EventType:      "chat_user_message",
		ContentRaw:     req.Message,
	})

	state, err := s.conversations.Update(ctx, conversationID, func(st *domain.ConversationState) error {
		st.AppendMessage(domain.RoleUser, req.Message)
		return s.graph.Run(ctx, st)
	})
	if err != nil {
		return nil, fmt.Errorf("run conversation %s: %w", conversationID, err)
	}

	response := FallbackResponse
	if msg, ok := state.LastMessage(domain.RoleAssistant); ok {
		response = msg.Content
	}

	s.log.Log(ConversationLogEvent{
		ConversationID: conversationID,
		Channel:        channelFromContext(ctx),
		Direction:      "outbound",
		EventType:      "chat_assistant_message",
		ContentRaw:     response,
		Meta: map[string]any{
			"bias_type":              string(state.BiasCategory),
			"requires_clarification": state.RequiresClarification,
			"analysis_complete":      state.AnalysisComplete,
		},
	})

	s.logger.Info("chat turn complete",
		"conversation_id", conversationID,
		"bias_type", state.BiasCategory,
		"requires_clarification", state.RequiresClarification,
		"messages", len(state.Messages))

	return &ChatResponse{
		Response:              response,
		ConversationID:        conversationID,
		RequiresClarification: state.RequiresClarification,
	}, nil
}

// Conversation returns a snapshot of a stored conversation.
func (s *Service) Conversation(ctx context.Context, conversationID string) (*domain.ConversationState, error) {
	return s.conversations.Get(ctx, conversationID)
}

type channelKey struct{}

// WithChannel tags ctx with the transport a turn arrived on, for transcripts.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, channelKey{}, channel)
}

func channelFromContext(ctx context.Context) string {
	if ch, ok := ctx.Value(channelKey{}).(string); ok {
		return ch
	}
	return "chat"
}
