package statestore

import (
	"context"
	"sync"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps states in memory for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]transfer.TransferState
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string]transfer.TransferState{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (transfer.TransferState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[key]

	return state, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, state transfer.TransferState) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[key] = state

	return nil
}

func (s *MemoryStore) List(context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.states))
	for key, state := range s.states {
		entries = append(entries, Entry{Key: key, State: state})
	}
	sortEntries(entries)

	return entries, nil
}
