package game

import "testing"

func TestOPTTracker(t *testing.T) {
	opt := NewOPTTracker()
	opt.Record(5, 0, LimitPerTurn)
	opt.Record(6, 0, LimitPerDuel)
	opt.Record(7, 0, LimitNone)

	if opt.CanActivate(5, 0, LimitPerTurn) {
		t.Error("per-turn effect used this turn")
	}
	if !opt.CanActivate(5, 1, LimitPerTurn) {
		t.Error("limits are tracked per effect index")
	}
	if !opt.CanActivate(7, 0, LimitNone) {
		t.Error("unlimited effects are always available")
	}

	opt.TurnChanged(0) // same owner: no reset
	if opt.CanActivate(5, 0, LimitPerTurn) {
		t.Error("per-turn counts reset without a turn change")
	}
	opt.TurnChanged(1)
	if !opt.CanActivate(5, 0, LimitPerTurn) {
		t.Error("per-turn counts should reset when the turn passes")
	}
	if opt.CanActivate(6, 0, LimitPerDuel) {
		t.Error("per-duel counts never reset")
	}
}

func TestOncePerTurnResetsNextTurn(t *testing.T) {
	h := newHarness(t, padDeck([]string{"mage"}, 20), padDeck(nil, 20))

	h.submit(h.find(0, ActionNormalSummon, "Quick Mage"))
	mage := h.id(0, ZoneBoard, "Quick Mage")
	h.submit(Action{Type: ActionActivate, Player: 0, Card: mage})
	h.passAll()
	if h.lp(1) != 7700 {
		t.Fatalf("expected P2 at 7700, got %d", h.lp(1))
	}
	h.expectReject(Action{Type: ActionActivate, Player: 0, Card: mage}, ReasonLimitReached)

	h.endTurn()
	h.endTurn()

	h.submit(Action{Type: ActionActivate, Player: 0, Card: mage})
	h.passAll()
	if h.lp(1) != 7400 {
		t.Errorf("expected the effect available again on turn 3, P2 at %d", h.lp(1))
	}
}

func TestOncePerDuelNeverResets(t *testing.T) {
	h := newHarness(t, padDeck([]string{"seer"}, 20), padDeck(nil, 20))

	h.submit(h.find(0, ActionNormalSummon, "Ancient Seer"))
	seer := h.id(0, ZoneBoard, "Ancient Seer")
	h.submit(Action{Type: ActionActivate, Player: 0, Card: seer})
	h.passAll()
	if h.lp(0) != 8500 {
		t.Fatalf("expected P1 at 8500, got %d", h.lp(0))
	}

	h.endTurn()
	h.endTurn()

	h.expectReject(Action{Type: ActionActivate, Player: 0, Card: seer}, ReasonLimitReached)
	for _, a := range h.eng.AvailableActions(h.st, 0) {
		if a.Card == seer && a.Type == ActionActivate {
			t.Error("the once-per-duel effect should not be offered again")
		}
	}
}
