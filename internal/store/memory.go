package store

import (
	"context"
	"sync"
	"time"

	"github.com/ashureev/biaslens/internal/domain"
)

// MemoryConversationStore keeps conversations in process memory.
// State is lost when the process exits.
type MemoryConversationStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	mu    sync.Mutex // held for the whole read-modify-write of one conversation
	state *domain.ConversationState
}

// NewMemoryConversationStore creates an empty in-memory store.
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryConversationStore) entry(conversationID string, create bool) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[conversationID]
	if !ok && create {
		e = &memoryEntry{}
		s.entries[conversationID] = e
	}
	return e
}

// Get returns a snapshot of the conversation.
func (s *MemoryConversationStore) Get(_ context.Context, conversationID string) (*domain.ConversationState, error) {
	e := s.entry(conversationID, false)
	if e == nil {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, ErrNotFound
	}
	return e.state.Clone(), nil
}

// Update applies fn to a working copy and keeps it only when fn succeeds.
func (s *MemoryConversationStore) Update(ctx context.Context, conversationID string, fn UpdateFunc) (*domain.ConversationState, error) {
	e := s.entry(conversationID, true)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	working := e.state.Clone()
	if working == nil {
		working = domain.NewConversationState(conversationID)
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	e.state = working
	return working.Clone(), nil
}

// Close does nothing.
func (s *MemoryConversationStore) Close() error { return nil }
