package typing

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the Redis-free registry used by tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]Entry // conversationID -> userID -> entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string]Entry)}
}

func (s *MemoryStore) Set(_ context.Context, conversationID, userID, userName string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.entries[conversationID]
	if !ok {
		conv = make(map[string]Entry)
		s.entries[conversationID] = conv
	}
	conv[userID] = Entry{UserName: userName, UpdatedAt: at.UnixMilli()}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, conversationID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[conversationID], userID)
	return nil
}

func (s *MemoryStore) Entries(_ context.Context, conversationID string) (map[string]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.entries[conversationID]))
	for userID, e := range s.entries[conversationID] {
		out[userID] = e
	}
	return out, nil
}
