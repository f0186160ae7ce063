package game

import (
	"testing"

	"github.com/peterkuimelis/duelcore/internal/log"
)

// place puts a face-up creature in a board slot and returns its instance.
func place(ms *MatchState, defID string, player, slot int) int {
	id := ms.newInstance(defID, player, nil)
	ms.Sides[player].Board[slot] = &BoardCard{Card: id, Face: FaceUp}
	return id
}

func TestOnEventOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ms *MatchState) (TriggerEvent, []int)
	}{
		{"turn player's side first, board then spell/trap then field", func(ms *MatchState) (TriggerEvent, []int) {
			herald := place(ms, "herald", 1, 2)
			late := place(ms, "sentry", 0, 3)
			early := place(ms, "sentry", 0, 1)
			snare := ms.newInstance("snare", 0, nil)
			ms.Sides[0].SpellTrap[0] = &SetCard{Card: snare, Face: FaceDown, TurnSet: 1}
			banner := ms.newInstance("banner", 0, nil)
			ms.Sides[0].Field = &SetCard{Card: banner, Face: FaceUp}
			ev := TriggerEvent{Kind: log.EventSpecialSummon, Player: 1, Card: herald, FaceUp: true}
			return ev, []int{early, late, snare, banner, herald}
		}},
		{"subject that left the field comes first", func(ms *MatchState) (TriggerEvent, []int) {
			keeper := place(ms, "keeper", 0, 0)
			fox := ms.newInstance("fox", 1, nil)
			ms.Sides[1].Graveyard = append(ms.Sides[1].Graveyard, fox)
			ev := TriggerEvent{Kind: log.EventBattleDestroy, Player: 1, Card: fox, Other: keeper, FaceUp: true}
			return ev, []int{fox, keeper}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := testCatalog(t)
			ms := NewMatchState("unit", DefaultStartingLP)
			ms.Turn, ms.TurnPlayer, ms.Phase = 3, 0, PhaseMain1
			ev, want := tt.setup(ms)

			got := OnEvent(ev, ms, cat)
			if len(got) != len(want) {
				t.Fatalf("expected %d eligible effects, got %d: %+v", len(want), len(got), got)
			}
			for i, c := range got {
				if c.Card != want[i] {
					t.Errorf("position %d: expected %s, got %s", i, cardName(ms, cat, want[i]), cardName(ms, cat, c.Card))
				}
			}
		})
	}
}

func TestSetTrapTriggersAreOffered(t *testing.T) {
	cat := testCatalog(t)
	ms := NewMatchState("unit", DefaultStartingLP)
	ms.Turn, ms.TurnPlayer = 3, 1
	snare := ms.newInstance("snare", 0, nil)
	ms.Sides[0].SpellTrap[2] = &SetCard{Card: snare, Face: FaceDown, TurnSet: 3}
	ev := TriggerEvent{Kind: log.EventNormalSummon, Player: 1}

	if got := OnEvent(ev, ms, cat); len(got) != 0 {
		t.Fatalf("a trap set this turn cannot activate, got %+v", got)
	}
	ms.Sides[0].SpellTrap[2].TurnSet = 2
	got := OnEvent(ev, ms, cat)
	if len(got) != 1 || !got[0].FromSet || !got[0].Optional {
		t.Errorf("expected one optional offer from the set trap, got %+v", got)
	}
}

func TestSlowerTriggerWaitsForEmptyChain(t *testing.T) {
	cat := testCatalog(t)
	ms := NewMatchState("unit", DefaultStartingLP)
	ms.Turn, ms.TurnPlayer, ms.Phase = 3, 0, PhaseMain1
	sentry := place(ms, "sentry", 0, 0)
	wind := ms.newInstance("wind", 1, nil)
	if _, err := ms.Chain.Push(ChainLink{Card: wind, Controller: 1, Speed: Speed2}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	d := &duel{e: NewEngine(cat), st: ms, cat: cat}

	eligible := OnEvent(TriggerEvent{Kind: log.EventSpecialSummon, Player: 1}, ms, cat)
	if len(eligible) != 1 || eligible[0].Card != sentry {
		t.Fatalf("expected the sentry eligible, got %+v", eligible)
	}
	if err := d.dispatchTrigger(eligible[0]); err != nil {
		t.Fatalf("dispatchTrigger: %v", err)
	}
	if len(ms.Deferred) != 1 || len(ms.Chain.Links) != 1 {
		t.Fatalf("a speed 1 trigger cannot go on a speed 2 link: deferred %d, links %d", len(ms.Deferred), len(ms.Chain.Links))
	}

	ms.Chain.pop()
	if err := d.flushDeferred(); err != nil {
		t.Fatalf("flushDeferred: %v", err)
	}
	if len(ms.Deferred) != 0 {
		t.Errorf("expected the deferred trigger consumed, %d left", len(ms.Deferred))
	}
	if len(ms.Chain.Links) != 1 || ms.Chain.Links[0].Card != sentry || !ms.Chain.Links[0].FromTrigger {
		t.Errorf("expected the sentry's trigger to start a new chain, got %+v", ms.Chain.Links)
	}
}

// owlFacesSheep summons Watchtower Owl for P1, then P2 activates Sheep Pen on
// turn 2: three tokens, three offers of the once-per-turn trigger.
func owlFacesSheep(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, padDeck([]string{"watcher"}, 20), padDeck([]string{"sheep"}, 20))
	h.submit(h.find(0, ActionNormalSummon, "Watchtower Owl"))
	h.endTurn()
	h.submit(h.find(1, ActionActivate, "Sheep Pen"))
	if got := len(h.st.Offers); got != 3 {
		t.Fatalf("expected 3 offers, one per token, got %d", got)
	}
	return h
}

func TestOncePerTurnTriggerResolvesOnce(t *testing.T) {
	h := owlFacesSheep(t)

	h.submit(h.find(0, ActionRespond, "Watchtower Owl"))
	if got := len(h.st.Offers); got != 0 {
		t.Errorf("the remaining offers are spent once the owl activates, %d left", got)
	}
	for _, a := range h.eng.AvailableActions(h.st, 0) {
		if a.Type == ActionRespond {
			t.Errorf("unexpected offer after the limit was used: %s", a)
		}
	}
	h.passAll()
	if h.lp(1) != 7900 {
		t.Errorf("expected one 100 damage trigger, P2 at %d", h.lp(1))
	}
}

func TestAcceptingAnExhaustedOfferIsRejected(t *testing.T) {
	h := owlFacesSheep(t)
	owl := h.id(0, ZoneBoard, "Watchtower Owl")
	h.st.OPT.Record(owl, 0, LimitPerTurn)

	h.expectReject(Action{Type: ActionRespond, Player: 0, Card: owl, Effect: 0}, ReasonLimitReached)
}
