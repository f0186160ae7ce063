package game

import (
	"errors"
	"testing"

	"github.com/peterkuimelis/duelcore/internal/log"
)

// testCatalogYAML is a small card pool covering every operation category.
const testCatalogYAML = `
cards:
  - {id: filler, name: Filler, kind: creature, level: 1, attack: 100, defense: 100}
  - {id: warrior, name: Iron Warrior, kind: creature, level: 4, attack: 1800, defense: 1000}
  - {id: knight, name: Shield Knight, kind: creature, level: 4, attack: 1200, defense: 2000}
  - {id: lancer, name: Lance Rider, kind: creature, level: 4, attack: 1600, defense: 1200, piercing: true}
  - {id: golem, name: Stone Golem, kind: creature, level: 4, attack: 1000, defense: 2000, no_battle_destroy: true}
  - {id: ogre, name: Hill Ogre, kind: creature, level: 5, attack: 2300, defense: 1500}
  - {id: dragon, name: Great Dragon, kind: creature, level: 7, attack: 2800, defense: 2400}
  - id: fox
    name: Spirit Fox
    kind: creature
    level: 3
    attack: 1000
    defense: 800
    effects:
      - {trigger: on_destroy, type: draw, params: {amount: 1}}
  - id: mage
    name: Quick Mage
    kind: creature
    level: 4
    attack: 1500
    defense: 1200
    effects:
      - {trigger: manual, type: damage, limit: once_per_turn, params: {amount: 300, player: opponent}}
  - id: seer
    name: Ancient Seer
    kind: creature
    level: 3
    attack: 900
    defense: 900
    effects:
      - {trigger: manual, type: heal, limit: once_per_duel, params: {amount: 500}}
  - id: bug
    name: Pit Bug
    kind: creature
    level: 2
    attack: 500
    defense: 600
    effects:
      - {trigger: on_flip, type: destroy, params: {target: opponent_creature}}
  - id: pot
    name: Pot of Plenty
    kind: spell
    effects:
      - {trigger: manual, type: draw, params: {amount: 2}}
  - id: bolt
    name: Bolt
    kind: spell
    effects:
      - {trigger: manual, type: damage, params: {amount: 500, player: opponent}}
  - id: smash
    name: Smash
    kind: spell
    effects:
      - {trigger: manual, type: destroy, params: {target: opponent_creature}}
  - id: rally
    name: Rally
    kind: spell
    effects:
      - {trigger: manual, type: modify_stats, params: {target: own_creature, attack: 500, duration: end_of_turn}}
  - id: sheep
    name: Sheep Pen
    kind: spell
    subtype: quick_play
    effects:
      - {trigger: manual, type: create_token, params: {count: 3, position: defense, token: {name: Sheep, attack: 0, defense: 0}}}
  - id: wind
    name: Mystic Wind
    kind: spell
    subtype: quick_play
    effects:
      - {trigger: manual, type: destroy, params: {target: any_spell_trap}}
  - id: arena
    name: Sword Arena
    kind: spell
    subtype: field
    effects:
      - {trigger: continuous, type: stat_aura, params: {target: own_creature, attack: 300, defense: 300}}
  - id: greed
    name: Reckless Greed
    kind: trap
    effects:
      - {trigger: manual, type: draw, params: {amount: 1}}
  - id: halt
    name: Halt the Charge
    kind: trap
    effects:
      - {trigger: on_attack_declared, type: negate, params: {target: pending_action}}
  - id: counter
    name: Hard Denial
    kind: trap
    subtype: counter
    effects:
      - {trigger: manual, type: negate, params: {target: chain_link}}
  - id: revive
    name: Second Wind
    kind: spell
    effects:
      - {trigger: manual, type: special_summon, params: {from: graveyard}}
  - id: watcher
    name: Watchtower Owl
    kind: creature
    level: 3
    attack: 800
    defense: 800
    effects:
      - {trigger: on_opponent_summon, type: damage, optional: true, limit: once_per_turn, params: {amount: 100, player: opponent}}
  - id: sentry
    name: Tower Sentry
    kind: creature
    level: 4
    attack: 1600
    defense: 1400
    effects:
      - {trigger: on_opponent_summon, type: damage, params: {amount: 100, player: opponent}}
  - id: keeper
    name: Grave Keeper
    kind: creature
    level: 4
    attack: 1300
    defense: 1300
    effects:
      - {trigger: on_battle_destroy, type: heal, params: {amount: 100}}
  - id: herald
    name: Herald of Dawn
    kind: creature
    level: 4
    attack: 1400
    defense: 1000
    effects:
      - {trigger: on_summon, type: heal, params: {amount: 100}}
  - id: snare
    name: Snare Pit
    kind: trap
    effects:
      - {trigger: on_opponent_summon, type: destroy, params: {target: event_card}}
  - id: banner
    name: Summoning Banner
    kind: spell
    subtype: field
    effects:
      - {trigger: on_opponent_summon, type: heal, params: {amount: 100}}
  - id: quake
    name: Quake Field
    kind: spell
    subtype: field
    effects:
      - {trigger: continuous, type: stat_aura, params: {target: opponent_creature, defense: -2500}}
`

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := ParseCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("test catalog: %v", err)
	}
	return cat
}

// padDeck puts topCards on top (index 0 drawn first) and fills up to size with fillers.
func padDeck(topCards []string, size int) []string {
	deck := append([]string(nil), topCards...)
	for len(deck) < size {
		deck = append(deck, "filler")
	}
	return deck
}

// harness drives a match through the engine the way a hosting layer would.
type harness struct {
	t      *testing.T
	eng    *Engine
	st     *MatchState
	logger *log.MemoryLogger
}

func newHarness(t *testing.T, deck0, deck1 []string, opts ...Option) *harness {
	t.Helper()
	eng := NewEngine(testCatalog(t), opts...)
	st, events, err := eng.NewMatch(MatchConfig{
		ID:        "test",
		Players:   [2]string{"alice", "bob"},
		Decks:     [2][]string{deck0, deck1},
		Seed:      7,
		NoShuffle: true,
	})
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	h := &harness{t: t, eng: eng, st: st, logger: log.NewMemoryLogger()}
	h.record(events)
	return h
}

func (h *harness) record(events []log.GameEvent) {
	for _, e := range events {
		h.logger.Log(e)
	}
}

// try submits an action and keeps the new state on success.
func (h *harness) try(a Action) error {
	h.t.Helper()
	next, events, err := h.eng.Submit(h.st, a)
	if err != nil {
		return err
	}
	if err := checkZones(next); err != nil {
		h.t.Fatalf("after %s: %v", a, err)
	}
	h.st = next
	h.record(events)
	return nil
}

func (h *harness) submit(a Action) {
	h.t.Helper()
	if err := h.try(a); err != nil {
		h.t.Logf("Event log:\n%s", log.FormatAll(h.logger.Events()))
		h.t.Fatalf("submit %s: %v", a, err)
	}
}

// expectReject submits an action that must fail with the given reason.
func (h *harness) expectReject(a Action, reason Reason) {
	h.t.Helper()
	before := h.st
	err := h.try(a)
	var ae *ActionError
	if !errors.As(err, &ae) {
		h.t.Fatalf("submit %s: expected rejection %s, got %v", a, reason, err)
	}
	if ae.Reason != reason {
		h.t.Errorf("submit %s: expected reason %s, got %s (%s)", a, reason, ae.Reason, ae.Message)
	}
	if h.st != before {
		h.t.Errorf("submit %s: rejected action replaced the state", a)
	}
}

// id returns the first instance of the named card in a player's zone.
func (h *harness) id(player int, zone ZoneType, name string) int {
	h.t.Helper()
	for _, id := range h.ids(player, zone) {
		if cardName(h.st, h.eng.Catalog(), id) == name {
			return id
		}
	}
	h.t.Fatalf("P%d has no %s in %s", player+1, name, zone)
	return 0
}

// has reports whether the named card is in the player's zone.
func (h *harness) has(player int, zone ZoneType, name string) bool {
	for _, id := range h.ids(player, zone) {
		if cardName(h.st, h.eng.Catalog(), id) == name {
			return true
		}
	}
	return false
}

func (h *harness) ids(player int, zone ZoneType) []int {
	s := h.st.Sides[player]
	switch zone {
	case ZoneHand:
		return s.Hand
	case ZoneDeck:
		return s.Deck
	case ZoneGraveyard:
		return s.Graveyard
	case ZoneBanished:
		return s.Banished
	case ZoneBoard:
		var out []int
		for _, b := range s.Board {
			if b != nil {
				out = append(out, b.Card)
			}
		}
		return out
	case ZoneSpellTrap:
		var out []int
		for _, c := range s.SpellTrap {
			if c != nil {
				out = append(out, c.Card)
			}
		}
		return out
	case ZoneField:
		if s.Field != nil {
			return []int{s.Field.Card}
		}
	}
	return nil
}

// find returns the available action of the given type for the named card.
func (h *harness) find(player int, typ ActionType, name string) Action {
	h.t.Helper()
	for _, a := range h.eng.AvailableActions(h.st, player) {
		if a.Type != typ {
			continue
		}
		if name == "" || cardName(h.st, h.eng.Catalog(), a.Card) == name {
			return a
		}
	}
	h.t.Fatalf("P%d has no %s action for %q", player+1, typ, name)
	return Action{}
}

// decider returns the seat that must act next.
func (h *harness) decider() int {
	switch {
	case len(h.st.Offers) > 0:
		return h.st.Offers[0].Controller
	case h.st.Window.Open:
		return h.st.Window.Holder
	}
	return h.st.TurnPlayer
}

// passAll declines every offer and passes every window until the turn player is free to act.
func (h *harness) passAll() {
	h.t.Helper()
	for i := 0; i < 50 && !h.st.Over && (len(h.st.Offers) > 0 || h.st.Window.Open); i++ {
		h.submit(Action{Type: ActionPass, Player: h.decider()})
	}
}

// endTurn ends the current turn and passes through to the next player's Main Phase 1.
func (h *harness) endTurn() {
	h.t.Helper()
	h.passAll()
	h.submit(Action{Type: ActionEndTurn, Player: h.st.TurnPlayer})
	h.passAll()
}

func (h *harness) lp(player int) int {
	return h.st.Sides[player].LP
}

func (h *harness) events(t log.EventType) []log.GameEvent {
	return h.logger.EventsOfType(t)
}
