package store

import (
	"context"
	"errors"
	"sync"

	"github.com/peterkuimelis/duelcore/internal/game"
)

// ErrNotFound is returned by Load for an unknown match ID.
var ErrNotFound = errors.New("match not found")

// Store persists match states between actions.
type Store interface {
	Load(ctx context.Context, id string) (*game.MatchState, error)
	Save(ctx context.Context, id string, ms *game.MatchState) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// MemoryStore keeps states in a map. Saved states are cloned so callers
// cannot mutate what the store holds.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*game.MatchState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*game.MatchState)}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*game.MatchState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms, ok := s.states[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ms.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, ms *game.MatchState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = ms.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
	return nil
}

// List returns the IDs of matches still in progress, in no particular order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.states))
	for id, ms := range s.states {
		if !ms.Over {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
