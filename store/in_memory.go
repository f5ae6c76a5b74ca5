package store

import (
	"context"
	"sync"

	"github.com/hupe1980/salesmesh/core"
)

// InMemoryStore is a process-local ConversationStore.
//
// Concurrency: protected by RWMutex. Load and Save exchange deep copies so
// callers can mutate their conversation freely without racing the stored
// snapshot. Suitable for tests and single-process deployments; swap for the
// Redis store when conversations must survive a restart.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
}

// NewInMemoryStore creates a new in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*core.Conversation)}
}

// Load returns a deep copy of the stored conversation or *core.NotFoundError.
func (s *InMemoryStore) Load(_ context.Context, id string) (*core.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, exists := s.conversations[id]
	if !exists {
		return nil, &core.NotFoundError{Kind: "conversation", ID: id}
	}
	return conv.Clone(), nil
}

// Save stores a deep copy of the conversation, replacing any prior snapshot.
func (s *InMemoryStore) Save(_ context.Context, conv *core.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conv.ID] = conv.Clone()
	return nil
}

// AppendTurn records a turn on the stored snapshot without a full Save.
func (s *InMemoryStore) AppendTurn(_ context.Context, id string, turn core.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, exists := s.conversations[id]
	if !exists {
		return &core.NotFoundError{Kind: "conversation", ID: id}
	}
	conv.AppendTurn(turn)
	return nil
}
