package agent

import (
	"context"

	"github.com/ashureev/biaslens/internal/domain"
)

// Processor handles chat turns. It is implemented by Service and consumed by
// the HTTP and WebSocket transports.
type Processor interface {
	// Chat runs one turn of a conversation.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Conversation returns a snapshot of a stored conversation.
	Conversation(ctx context.Context, conversationID string) (*domain.ConversationState, error)
}

// Ensure Service implements Processor.
var _ Processor = (*Service)(nil)
