package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/log"
	"github.com/peterkuimelis/duelcore/internal/match"
)

// ToolResponse is the JSON envelope returned by the match tools.
type ToolResponse struct {
	MatchID  string            `json:"match_id"`
	Events   []match.EventView `json:"events"`
	State    *match.StateView  `json:"state,omitempty"`
	Actions  []ActionView      `json:"actions,omitempty"`
	GameOver bool              `json:"game_over"`
	Winner   string            `json:"winner,omitempty"`
	Result   string            `json:"result,omitempty"`
}

// Session exposes a match service to one MCP client. It remembers how far
// each player has read a match's event feed so every response carries only
// the events since that player's previous call.
type Session struct {
	svc   *match.Service
	decks []game.Deck

	mu      sync.Mutex
	cursors map[string]int // match/player → last event seq seen
}

func NewSession(svc *match.Service, decks []game.Deck) *Session {
	return &Session{svc: svc, decks: decks, cursors: make(map[string]int)}
}

// drainEvents returns the match events playerID has not seen yet.
func (s *Session) drainEvents(feed *log.Broadcaster, matchID, playerID string) []match.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := matchID + "/" + playerID
	events := []match.EventView{}
	last := s.cursors[key]
	for _, e := range feed.Events() {
		if e.Seq > last {
			events = append(events, match.NewEventView(e))
			last = e.Seq
		}
	}
	s.cursors[key] = last
	return events
}

// respond builds the ToolResponse for playerID after a call.
func (s *Session) respond(ctx context.Context, matchID, playerID string) (*ToolResponse, error) {
	ms, feed, err := s.svc.Watch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat := ms.Seat(playerID)
	if seat < 0 {
		return nil, match.ErrUnknownPlayer
	}
	cat := s.svc.Engine().Catalog()
	resp := &ToolResponse{
		MatchID:  matchID,
		Events:   s.drainEvents(feed, matchID, playerID),
		State:    match.BuildStateView(ms, cat, seat),
		GameOver: ms.Over,
		Result:   ms.Result,
	}
	if ms.Over {
		if ms.Winner >= 0 {
			resp.Winner = ms.PlayerIDs[ms.Winner]
		}
		return resp, nil
	}
	resp.Actions = buildActionViews(ms, cat, s.svc.Engine().AvailableActions(ms, seat))
	return resp, nil
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
