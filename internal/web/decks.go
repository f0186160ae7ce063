package web

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/match"
)

// CreateMatchRequest picks each player's deck by name from the server's deck
// file, or by number (1-indexed) when the name is empty.
type CreateMatchRequest struct {
	Players     [2]string `json:"players"`
	Decks       [2]string `json:"decks,omitempty"`
	DeckNumbers [2]int    `json:"deck_numbers,omitempty"`
	Seed        uint64    `json:"seed,omitempty"`
}

func (s *Server) resolveDecks(req CreateMatchRequest) (match.CreateRequest, error) {
	cr := match.CreateRequest{Players: req.Players, Seed: req.Seed}
	for p := range 2 {
		var d game.Deck
		var err error
		switch {
		case req.Decks[p] != "":
			d, err = game.DeckByName(s.decks, req.Decks[p])
		case req.DeckNumbers[p] >= 1 && req.DeckNumbers[p] <= len(s.decks):
			d = s.decks[req.DeckNumbers[p]-1]
		default:
			err = fmt.Errorf("player %d: no deck chosen", p+1)
		}
		if err != nil {
			return match.CreateRequest{}, err
		}
		cr.Decks[p] = d.Cards
	}
	return cr, nil
}
