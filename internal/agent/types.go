// Package agent implements the conversational bias analyzer.
package agent

// ChatRequest is one incoming user turn.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the assistant reply to one turn.
type ChatResponse struct {
	Response              string `json:"response"`
	ConversationID        string `json:"conversation_id"`
	RequiresClarification bool   `json:"requires_clarification"`
}

// FallbackResponse is returned when a turn produced no assistant message.
const FallbackResponse = "Analysis complete."
