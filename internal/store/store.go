// Package store provides persistence for analyses and conversation state.
package store

import (
	"context"
	"errors"

	"github.com/ashureev/biaslens/internal/domain"
)

var (
	// ErrNotFound is returned when a conversation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when concurrent access prevented an operation.
	ErrConflict = errors.New("concurrent modification")
)

// AnalysisRepository persists finalized analysis records.
type AnalysisRepository interface {
	// SaveAnalysis stores a record and fills in its ID when the backend assigns one.
	SaveAnalysis(ctx context.Context, record *domain.AnalysisRecord) error

	// ListAnalyses returns up to limit records, newest first.
	ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// UpdateFunc mutates a conversation in place. Returning an error discards the mutation.
type UpdateFunc func(state *domain.ConversationState) error

// ConversationStore holds per-conversation state.
type ConversationStore interface {
	// Get returns a snapshot of the conversation, or ErrNotFound.
	Get(ctx context.Context, conversationID string) (*domain.ConversationState, error)

	// Update runs fn against the conversation, creating it when missing, and
	// stores the result. Updates to the same conversation never interleave.
	Update(ctx context.Context, conversationID string, fn UpdateFunc) (*domain.ConversationState, error)

	// Close releases backend resources.
	Close() error
}
