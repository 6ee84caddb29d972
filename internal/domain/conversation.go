// Package domain contains core domain types for the bias analyzer.
package domain

import (
	"time"
)

// Role tags the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationState holds everything known about one conversation.
// Messages is append-only; AnalysisComplete flips to true at most once.
type ConversationState struct {
	ConversationID        string       `json:"conversation_id"`
	Messages              []Message    `json:"messages"`
	JobDescription        string       `json:"job_description"`
	BiasedTerms           []string     `json:"biased_terms"`
	BiasCategory          BiasCategory `json:"bias_type,omitempty"`
	BiasExplanation       string       `json:"bias_explanation"`
	InclusiveAlternative  string       `json:"inclusive_alternative"`
	RequiresClarification bool         `json:"requires_clarification"`
	AnalysisComplete      bool         `json:"analysis_complete"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// NewConversationState returns an empty state for the given conversation ID.
func NewConversationState(conversationID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		ConversationID: conversationID,
		Messages:       []Message{},
		BiasedTerms:    []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AppendMessage adds a message to the end of the conversation.
func (s *ConversationState) AppendMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// LastMessage returns the most recent message with the given role.
// The boolean is false when no such message exists.
func (s *ConversationState) LastMessage(role Role) (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == role {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	c.BiasedTerms = append([]string(nil), s.BiasedTerms...)
	return &c
}
