package memory

import (
	"context"
	"sync"

	"github.com/aretw0/shopbot/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[int64]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[int64]string),
	}
}

// Set records the user's state tag.
func (s *Store) Set(ctx context.Context, userID int64, state domain.State) error {
	if _, err := domain.ParseState(string(state)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = string(state)
	return nil
}

// Get returns the user's state or domain.ErrUnknownUser.
func (s *Store) Get(ctx context.Context, userID int64) (domain.State, error) {
	s.mu.RLock()
	raw, ok := s.data[userID]
	s.mu.RUnlock()

	if !ok {
		return "", domain.ErrUnknownUser
	}
	return domain.ParseState(raw)
}

// Len returns the number of known users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
