package game

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/log"
)

const (
	DefaultStartingLP = 8000
	DefaultHandSize   = 5
	MaxHandSize       = 6
	BoardSlots        = 5
	SpellTrapSlots    = 5
)

// CardInstance is one physical card (or token) in a match. Instance IDs are
// stable for the whole match; 0 is never assigned.
type CardInstance struct {
	ID    int         `json:"id"`
	DefID string      `json:"def,omitempty"`
	Owner int         `json:"owner"`
	Token *TokenStats `json:"token,omitempty"`
}

// IsToken reports whether the instance is a token.
func (c *CardInstance) IsToken() bool {
	return c.Token != nil
}

// BoardCard is a creature occupying a board slot. ATK, DEF and the
// protection flags are derived and rebuilt by Recompute.
type BoardCard struct {
	Card            int        `json:"card"`
	Position        Position   `json:"position"`
	Face            FaceStatus `json:"face"`
	TurnPlaced      int        `json:"turn_placed"`
	HasAttacked     bool       `json:"has_attacked,omitempty"`
	PositionChanged bool       `json:"position_changed,omitempty"`
	Token           bool       `json:"token,omitempty"`

	ATK             int  `json:"atk"`
	DEF             int  `json:"def"`
	NoBattleDestroy bool `json:"no_battle_destroy,omitempty"`
	NoEffectDestroy bool `json:"no_effect_destroy,omitempty"`
	Untargetable    bool `json:"untargetable,omitempty"`
}

// SetCard is a spell or trap occupying a spell/trap slot or the field slot.
type SetCard struct {
	Card    int        `json:"card"`
	Face    FaceStatus `json:"face"`
	TurnSet int        `json:"turn_set"`
}

// Side holds one player's zones and per-turn flags.
type Side struct {
	LP        int                      `json:"lp"`
	Deck      []int                    `json:"deck"` // top of deck is the last element
	Hand      []int                    `json:"hand"`
	Graveyard []int                    `json:"graveyard"`
	Banished  []int                    `json:"banished"`
	Board     [BoardSlots]*BoardCard   `json:"board"`
	SpellTrap [SpellTrapSlots]*SetCard `json:"spell_trap"`
	Field     *SetCard                 `json:"field,omitempty"`

	NormalSummonUsed bool `json:"normal_summon_used,omitempty"`
}

// FreeBoardSlot returns the first empty board slot, or -1.
func (s *Side) FreeBoardSlot() int {
	for i, b := range s.Board {
		if b == nil {
			return i
		}
	}
	return -1
}

// FreeSpellTrapSlot returns the first empty spell/trap slot, or -1.
func (s *Side) FreeSpellTrapSlot() int {
	for i, c := range s.SpellTrap {
		if c == nil {
			return i
		}
	}
	return -1
}

// CreatureCount returns the number of occupied board slots.
func (s *Side) CreatureCount() int {
	n := 0
	for _, b := range s.Board {
		if b != nil {
			n++
		}
	}
	return n
}

// BoardIndex returns the slot holding the given instance, or -1.
func (s *Side) BoardIndex(id int) int {
	for i, b := range s.Board {
		if b != nil && b.Card == id {
			return i
		}
	}
	return -1
}

// SpellTrapIndex returns the slot holding the given instance, or -1.
func (s *Side) SpellTrapIndex(id int) int {
	for i, c := range s.SpellTrap {
		if c != nil && c.Card == id {
			return i
		}
	}
	return -1
}

// DrawCard moves the top card of the deck to the hand. Returns 0 when the deck is empty.
func (s *Side) DrawCard() int {
	if len(s.Deck) == 0 {
		return 0
	}
	id := s.Deck[len(s.Deck)-1]
	s.Deck = s.Deck[:len(s.Deck)-1]
	s.Hand = append(s.Hand, id)
	return id
}

func removeID(ids []int, id int) ([]int, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Location identifies where a card instance currently is.
type Location struct {
	Player int
	Zone   ZoneType
	Index  int // slot index for board and spell/trap zones, list index otherwise
}

// Found reports whether the location refers to a real zone.
func (l Location) Found() bool {
	return l.Zone != ZoneNone
}

// ChainState tracks the resolution protocol.
type ChainState int

const (
	ChainIdle ChainState = iota
	ChainOpen
	ChainResolving
)

func (c ChainState) String() string {
	switch c {
	case ChainOpen:
		return "open"
	case ChainResolving:
		return "resolving"
	default:
		return "idle"
	}
}

// Window is an open priority window. Both players passing in succession closes it.
type Window struct {
	Open   bool `json:"open"`
	Holder int  `json:"holder"`
	Passes int  `json:"passes"`
}

// PendingKind distinguishes declared actions awaiting a response window.
type PendingKind int

const (
	PendingAttack PendingKind = iota
	PendingSummon
)

// PendingAction is an attack or summon declared but not yet carried out.
type PendingAction struct {
	Kind    PendingKind   `json:"kind"`
	Player  int           `json:"player"`
	Card    int           `json:"card"`
	Target  int           `json:"target,omitempty"` // attack target; 0 = direct attack
	Summon  log.EventType `json:"summon,omitempty"` // summon event kind
	Negated bool          `json:"negated,omitempty"`
}

// MatchState is the complete, serializable state of one match.
type MatchState struct {
	ID        string                `json:"id"`
	PlayerIDs [2]string             `json:"players"`
	Sides     [2]*Side              `json:"sides"`
	Cards     map[int]*CardInstance `json:"cards"`

	Turn       int   `json:"turn"`
	TurnPlayer int   `json:"turn_player"`
	Phase      Phase `json:"phase"`
	Advancing  bool  `json:"advancing,omitempty"` // walking phases towards the next Main Phase 1

	Chain     Chain                `json:"chain"`
	Window    Window               `json:"window"`
	Pending   *PendingAction       `json:"pending,omitempty"`
	Offers    []EligibleActivation `json:"offers,omitempty"`
	Deferred  []EligibleActivation `json:"deferred,omitempty"`
	Modifiers []TemporaryModifier  `json:"modifiers,omitempty"`
	OPT       OPTTracker           `json:"opt"`

	Over   bool   `json:"over,omitempty"`
	Winner int    `json:"winner"` // -1 while running or on a draw
	Result string `json:"result,omitempty"`

	RNG    []byte `json:"rng"`
	NextID int    `json:"next_id"`
	ModSeq int    `json:"mod_seq"`
}

// NewMatchState returns an empty state with both sides at the given LP.
func NewMatchState(id string, startingLP int) *MatchState {
	return &MatchState{
		ID:     id,
		Sides:  [2]*Side{{LP: startingLP}, {LP: startingLP}},
		Cards:  make(map[int]*CardInstance),
		Winner: -1,
		OPT:    NewOPTTracker(),
	}
}

// Opponent returns the index of the other player.
func (ms *MatchState) Opponent(player int) int {
	return 1 - player
}

// Seat maps a player ID to a seat index, or -1.
func (ms *MatchState) Seat(playerID string) int {
	for i, id := range ms.PlayerIDs {
		if id == playerID {
			return i
		}
	}
	return -1
}

// newInstance registers a card instance and returns its ID.
func (ms *MatchState) newInstance(defID string, owner int, token *TokenStats) int {
	ms.NextID++
	ms.Cards[ms.NextID] = &CardInstance{ID: ms.NextID, DefID: defID, Owner: owner, Token: token}
	return ms.NextID
}

// Locate finds the zone currently holding the instance.
func (ms *MatchState) Locate(id int) Location {
	for p, s := range ms.Sides {
		if i := s.BoardIndex(id); i >= 0 {
			return Location{Player: p, Zone: ZoneBoard, Index: i}
		}
		if i := s.SpellTrapIndex(id); i >= 0 {
			return Location{Player: p, Zone: ZoneSpellTrap, Index: i}
		}
		if s.Field != nil && s.Field.Card == id {
			return Location{Player: p, Zone: ZoneField}
		}
		lists := []struct {
			zone ZoneType
			ids  []int
		}{
			{ZoneHand, s.Hand},
			{ZoneGraveyard, s.Graveyard},
			{ZoneDeck, s.Deck},
			{ZoneBanished, s.Banished},
		}
		for _, l := range lists {
			for i, v := range l.ids {
				if v == id {
					return Location{Player: p, Zone: l.zone, Index: i}
				}
			}
		}
	}
	return Location{Zone: ZoneNone, Index: -1}
}

// BoardCard returns the board entry for an instance, or nil.
func (ms *MatchState) BoardCard(id int) *BoardCard {
	for _, s := range ms.Sides {
		if i := s.BoardIndex(id); i >= 0 {
			return s.Board[i]
		}
	}
	return nil
}

// detach removes an instance from whichever zone holds it and reports where it was.
func (ms *MatchState) detach(id int) Location {
	loc := ms.Locate(id)
	if !loc.Found() {
		return loc
	}
	s := ms.Sides[loc.Player]
	switch loc.Zone {
	case ZoneBoard:
		s.Board[loc.Index] = nil
	case ZoneSpellTrap:
		s.SpellTrap[loc.Index] = nil
	case ZoneField:
		s.Field = nil
	case ZoneHand:
		s.Hand, _ = removeID(s.Hand, id)
	case ZoneGraveyard:
		s.Graveyard, _ = removeID(s.Graveyard, id)
	case ZoneDeck:
		s.Deck, _ = removeID(s.Deck, id)
	case ZoneBanished:
		s.Banished, _ = removeID(s.Banished, id)
	}
	return loc
}

// checkWinCondition ends the match when a player's LP reached 0.
// Returns true if the match is over.
func (ms *MatchState) checkWinCondition() bool {
	if ms.Over {
		return true
	}
	dead0 := ms.Sides[0].LP <= 0
	dead1 := ms.Sides[1].LP <= 0
	switch {
	case dead0 && dead1:
		ms.end(-1, "both players' LP reached 0")
	case dead0:
		ms.end(1, "P1's LP reached 0")
	case dead1:
		ms.end(0, "P2's LP reached 0")
	default:
		return false
	}
	return true
}

func (ms *MatchState) end(winner int, reason string) {
	ms.Over = true
	ms.Winner = winner
	ms.Result = reason
	ms.Window = Window{}
	ms.Offers = nil
	ms.Deferred = nil
	ms.Pending = nil
	ms.Advancing = false
}

// Clone returns a deep copy of the state.
func (ms *MatchState) Clone() *MatchState {
	c := *ms
	for p, s := range ms.Sides {
		c.Sides[p] = s.clone()
	}
	c.Cards = make(map[int]*CardInstance, len(ms.Cards))
	for id, ci := range ms.Cards {
		cp := *ci
		if ci.Token != nil {
			tok := *ci.Token
			cp.Token = &tok
		}
		c.Cards[id] = &cp
	}
	c.Chain = ms.Chain.clone()
	if ms.Pending != nil {
		p := *ms.Pending
		c.Pending = &p
	}
	c.Offers = append([]EligibleActivation(nil), ms.Offers...)
	c.Deferred = append([]EligibleActivation(nil), ms.Deferred...)
	c.Modifiers = append([]TemporaryModifier(nil), ms.Modifiers...)
	c.OPT = ms.OPT.clone()
	c.RNG = append([]byte(nil), ms.RNG...)
	return &c
}

func (s *Side) clone() *Side {
	c := *s
	c.Deck = append([]int(nil), s.Deck...)
	c.Hand = append([]int(nil), s.Hand...)
	c.Graveyard = append([]int(nil), s.Graveyard...)
	c.Banished = append([]int(nil), s.Banished...)
	for i, b := range s.Board {
		if b != nil {
			bc := *b
			c.Board[i] = &bc
		}
	}
	for i, st := range s.SpellTrap {
		if st != nil {
			sc := *st
			c.SpellTrap[i] = &sc
		}
	}
	if s.Field != nil {
		f := *s.Field
		c.Field = &f
	}
	return &c
}

// String summarizes the state for debugging.
func (ms *MatchState) String() string {
	return fmt.Sprintf("match %s turn %d P%d %s LP %d/%d chain %s(%d)",
		ms.ID, ms.Turn, ms.TurnPlayer+1, ms.Phase, ms.Sides[0].LP, ms.Sides[1].LP,
		ms.Chain.State, len(ms.Chain.Links))
}
