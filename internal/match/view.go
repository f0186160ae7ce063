package match

import (
	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/log"
)

// StateView is the match from one player's perspective: the opponent's hand
// and face-down cards are hidden.
type StateView struct {
	MatchID    string      `json:"match_id"`
	You        PlayerView  `json:"you"`
	Opponent   PlayerView  `json:"opponent"`
	Turn       int         `json:"turn"`
	Phase      string      `json:"phase"`
	IsYourTurn bool        `json:"is_your_turn"`
	Chain      []LinkView  `json:"chain,omitempty"`
	Offers     []OfferView `json:"offers,omitempty"`
	Over       bool        `json:"over,omitempty"`
	Winner     int         `json:"winner"`
	Result     string      `json:"result,omitempty"`
}

// PlayerView shows one side of the board.
type PlayerView struct {
	ID             string                        `json:"id"`
	LP             int                           `json:"lp"`
	HandCount      int                           `json:"hand_count"`
	Hand           []CardView                    `json:"hand,omitempty"` // only for "you"
	Board          [game.BoardSlots]ZoneView     `json:"board"`
	SpellTrap      [game.SpellTrapSlots]ZoneView `json:"spell_trap"`
	Field          *ZoneView                     `json:"field,omitempty"`
	Graveyard      []CardView                    `json:"graveyard,omitempty"`
	DeckCount      int                           `json:"deck_count"`
	BanishedCount  int                           `json:"banished_count"`
	NormalSummoned bool                          `json:"normal_summoned,omitempty"`
}

// ZoneView describes a single zone on the field.
type ZoneView struct {
	Empty    bool   `json:"empty,omitempty"`
	ID       int    `json:"id,omitempty"`
	FaceDown bool   `json:"face_down,omitempty"`
	Name     string `json:"name,omitempty"`
	ATK      int    `json:"atk,omitempty"`
	DEF      int    `json:"def,omitempty"`
	Position string `json:"position,omitempty"` // "ATK" or "DEF"
	Token    bool   `json:"token,omitempty"`
}

// CardView names a card instance.
type CardView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// LinkView is one chain link, bottom first.
type LinkView struct {
	Index      int    `json:"index"`
	Controller int    `json:"controller"`
	Card       string `json:"card"`
	Speed      int    `json:"speed"`
}

// OfferView is an optional trigger waiting on its controller.
type OfferView struct {
	Card       CardView `json:"card"`
	Controller int      `json:"controller"`
}

// EventView is a simplified game event for clients.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// NewEventView converts a logged event.
func NewEventView(e log.GameEvent) EventView {
	return EventView{
		Seq:     e.Seq,
		Turn:    e.Turn,
		Phase:   e.Phase,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Details: e.Details,
	}
}

// BuildStateView creates a StateView from the perspective of seat.
func BuildStateView(ms *game.MatchState, cat *game.Catalog, seat int) *StateView {
	me := seat
	opp := ms.Opponent(me)

	sv := &StateView{
		MatchID:    ms.ID,
		Turn:       ms.Turn,
		Phase:      ms.Phase.String(),
		IsYourTurn: ms.TurnPlayer == me,
		Over:       ms.Over,
		Winner:     ms.Winner,
		Result:     ms.Result,
		You:        buildPlayerView(ms, cat, me, true),
		Opponent:   buildPlayerView(ms, cat, opp, false),
	}
	for _, l := range ms.Chain.Links {
		sv.Chain = append(sv.Chain, LinkView{
			Index:      l.Index,
			Controller: l.Controller,
			Card:       cat.InstanceName(ms, l.Card),
			Speed:      int(l.Speed),
		})
	}
	for _, o := range ms.Offers {
		// a face-down trap offered to the opponent stays hidden
		if o.Controller != me && o.FromSet {
			continue
		}
		sv.Offers = append(sv.Offers, OfferView{
			Card:       CardView{ID: o.Card, Name: cat.InstanceName(ms, o.Card)},
			Controller: o.Controller,
		})
	}
	return sv
}

func buildPlayerView(ms *game.MatchState, cat *game.Catalog, seat int, isOwner bool) PlayerView {
	side := ms.Sides[seat]
	pv := PlayerView{
		ID:             ms.PlayerIDs[seat],
		LP:             side.LP,
		HandCount:      len(side.Hand),
		DeckCount:      len(side.Deck),
		BanishedCount:  len(side.Banished),
		NormalSummoned: side.NormalSummonUsed,
	}
	if isOwner {
		for _, id := range side.Hand {
			pv.Hand = append(pv.Hand, CardView{ID: id, Name: cat.InstanceName(ms, id)})
		}
	}
	for _, id := range side.Graveyard {
		pv.Graveyard = append(pv.Graveyard, CardView{ID: id, Name: cat.InstanceName(ms, id)})
	}
	for i := range game.BoardSlots {
		pv.Board[i] = BoardZoneView(ms, cat, side.Board[i], isOwner)
	}
	for i := range game.SpellTrapSlots {
		pv.SpellTrap[i] = SpellTrapZoneView(ms, cat, side.SpellTrap[i], isOwner)
	}
	if side.Field != nil {
		fv := SpellTrapZoneView(ms, cat, side.Field, isOwner)
		pv.Field = &fv
	}
	return pv
}

// BoardZoneView creates a ZoneView for a creature zone.
func BoardZoneView(ms *game.MatchState, cat *game.Catalog, b *game.BoardCard, isOwner bool) ZoneView {
	if b == nil {
		return ZoneView{Empty: true}
	}
	if b.Face == game.FaceDown && !isOwner {
		return ZoneView{ID: b.Card, FaceDown: true, Position: b.Position.String()}
	}
	return ZoneView{
		ID:       b.Card,
		FaceDown: b.Face == game.FaceDown,
		Name:     cat.InstanceName(ms, b.Card),
		ATK:      b.ATK,
		DEF:      b.DEF,
		Position: b.Position.String(),
		Token:    b.Token,
	}
}

// SpellTrapZoneView creates a ZoneView for a spell/trap or field zone.
func SpellTrapZoneView(ms *game.MatchState, cat *game.Catalog, s *game.SetCard, isOwner bool) ZoneView {
	if s == nil {
		return ZoneView{Empty: true}
	}
	if s.Face == game.FaceDown {
		if isOwner {
			return ZoneView{ID: s.Card, FaceDown: true, Name: cat.InstanceName(ms, s.Card)}
		}
		return ZoneView{ID: s.Card, FaceDown: true}
	}
	return ZoneView{ID: s.Card, Name: cat.InstanceName(ms, s.Card)}
}
