// Package match hosts matches for remote players: it serializes actions per
// match, persists every accepted state and fans events out to spectators.
package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/log"
	"github.com/peterkuimelis/duelcore/internal/store"
)

var (
	ErrUnknownPlayer = errors.New("player is not seated in this match")
	ErrMatchNotFound = store.ErrNotFound
)

const (
	// backlog kept per match for late spectators
	eventBacklog = 256
	// feeds of finished matches kept before the oldest is dropped
	keepFinishedFeeds = 64
)

// CreateRequest describes a new match. Decks list card IDs top-first.
type CreateRequest struct {
	Players [2]string   `json:"players"`
	Decks   [2][]string `json:"decks"`
	Seed    uint64      `json:"seed,omitempty"` // 0 picks a random seed
}

// Service runs matches on top of an engine and a store.
type Service struct {
	eng    *game.Engine
	store  store.Store
	logger *zap.Logger

	mu           sync.Mutex
	locks        map[string]*sync.Mutex
	feeds        map[string]*log.Broadcaster
	finished     []string // oldest first
	isFinished   map[string]bool
	keepFinished int
}

func NewService(eng *game.Engine, st store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		eng:          eng,
		store:        st,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
		feeds:        make(map[string]*log.Broadcaster),
		isFinished:   make(map[string]bool),
		keepFinished: keepFinishedFeeds,
	}
}

// Engine returns the engine the service plays with.
func (s *Service) Engine() *game.Engine {
	return s.eng
}

// lock returns the match's mutex, locked.
func (s *Service) lock(id string) *sync.Mutex {
	s.mu.Lock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m
}

// dropLock forgets the mutex of a match no action can change any more.
// Callers still waiting on it load a finished match and are rejected.
func (s *Service) dropLock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}

// retire releases a finished match's lock and queues its feed for removal
// once keepFinished newer matches have finished.
func (s *Service) retire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	if s.isFinished[id] {
		return
	}
	s.isFinished[id] = true
	s.finished = append(s.finished, id)
	for len(s.finished) > s.keepFinished {
		old := s.finished[0]
		s.finished = s.finished[1:]
		delete(s.isFinished, old)
		delete(s.feeds, old)
	}
}

// Feed returns the event broadcaster of a match, creating it on first use.
func (s *Service) Feed(id string) *log.Broadcaster {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.feeds[id]
	if !ok {
		b = log.NewBroadcaster(eventBacklog)
		s.feeds[id] = b
	}
	return b
}

func (s *Service) publish(id string, events []log.GameEvent) {
	feed := s.Feed(id)
	for _, e := range events {
		feed.Log(e)
	}
}

// CreateMatch starts and persists a new match.
func (s *Service) CreateMatch(ctx context.Context, req CreateRequest) (*game.MatchState, error) {
	if req.Players[0] == "" || req.Players[1] == "" || req.Players[0] == req.Players[1] {
		return nil, fmt.Errorf("a match needs two distinct player IDs")
	}
	seed := req.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	id := uuid.NewString()
	ms, events, err := s.eng.NewMatch(game.MatchConfig{
		ID:      id,
		Players: req.Players,
		Decks:   req.Decks,
		Seed:    seed,
	})
	if err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}
	if err := s.store.Save(ctx, id, ms); err != nil {
		return nil, fmt.Errorf("persist match: %w", err)
	}
	s.publish(id, events)
	s.logger.Info("match created", zap.String("match", id), zap.Strings("players", req.Players[:]))
	return ms, nil
}

// State loads the current state of a match.
func (s *Service) State(ctx context.Context, matchID string) (*game.MatchState, error) {
	return s.store.Load(ctx, matchID)
}

// Watch loads a match together with its event feed. Use it instead of Feed
// for matches that may already be over.
func (s *Service) Watch(ctx context.Context, matchID string) (*game.MatchState, *log.Broadcaster, error) {
	ms, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	feed := s.Feed(matchID)
	if ms.Over {
		s.retire(matchID)
	}
	return ms, feed, nil
}

// View loads a match as seen by playerID.
func (s *Service) View(ctx context.Context, matchID, playerID string) (*StateView, error) {
	ms, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat := ms.Seat(playerID)
	if seat < 0 {
		return nil, ErrUnknownPlayer
	}
	return BuildStateView(ms, s.eng.Catalog(), seat), nil
}

// SubmitAction applies an action on behalf of playerID. The seat is taken
// from the player ID, never from the action. Rejections are returned as
// *game.ActionError and leave the stored state unchanged.
func (s *Service) SubmitAction(ctx context.Context, matchID, playerID string, a game.Action) (*game.MatchState, error) {
	m := s.lock(matchID)
	defer m.Unlock()

	ms, err := s.store.Load(ctx, matchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.dropLock(matchID)
		}
		return nil, err
	}
	if ms.Over {
		s.dropLock(matchID)
	}
	seat := ms.Seat(playerID)
	if seat < 0 {
		return nil, ErrUnknownPlayer
	}
	a.Player = seat

	next, events, err := s.eng.Submit(ms, a)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, matchID, next); err != nil {
		return nil, fmt.Errorf("persist match: %w", err)
	}
	s.publish(matchID, events)
	if next.Over {
		s.retire(matchID)
		s.logger.Info("match over",
			zap.String("match", matchID),
			zap.Int("winner", next.Winner),
			zap.String("result", next.Result))
	}
	return next, nil
}

// AvailableActions lists what playerID may submit now.
func (s *Service) AvailableActions(ctx context.Context, matchID, playerID string) ([]game.Action, error) {
	ms, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat := ms.Seat(playerID)
	if seat < 0 {
		return nil, ErrUnknownPlayer
	}
	return s.eng.AvailableActions(ms, seat), nil
}

// ListMatches returns the IDs of matches in progress.
func (s *Service) ListMatches(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}
