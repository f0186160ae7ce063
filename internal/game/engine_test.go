package game

import (
	"reflect"
	"testing"

	"github.com/peterkuimelis/duelcore/internal/log"
)

// TestNewMatchOpeningHands: 5 cards each, the first player draws on turn 1
// and the match waits in Main Phase 1.
func TestNewMatchOpeningHands(t *testing.T) {
	h := newHarness(t, padDeck(nil, 20), padDeck(nil, 20))

	if got := len(h.st.Sides[0].Hand); got != 6 {
		t.Errorf("P1 hand: expected 6 cards, got %d", got)
	}
	if got := len(h.st.Sides[1].Hand); got != 5 {
		t.Errorf("P2 hand: expected 5 cards, got %d", got)
	}
	if got := len(h.st.Sides[0].Deck); got != 14 {
		t.Errorf("P1 deck: expected 14 cards, got %d", got)
	}
	if h.st.Turn != 1 || h.st.TurnPlayer != 0 || h.st.Phase != PhaseMain1 {
		t.Errorf("expected turn 1, P1, Main Phase 1; got %s", h.st)
	}
	if h.lp(0) != DefaultStartingLP || h.lp(1) != DefaultStartingLP {
		t.Errorf("expected %d LP each, got %d/%d", DefaultStartingLP, h.lp(0), h.lp(1))
	}
	if got := len(h.events(log.EventDraw)); got != 1 {
		t.Errorf("expected 1 Draw event, got %d", got)
	}
	if err := checkZones(h.st); err != nil {
		t.Errorf("opening state: %v", err)
	}
}

// TestNewMatchSeededShuffle: the same seed yields the same deal.
func TestNewMatchSeededShuffle(t *testing.T) {
	eng := NewEngine(testCatalog(t))
	deck := []string{"warrior", "knight", "lancer", "golem", "ogre", "dragon", "fox", "mage", "seer", "bug", "pot", "bolt"}
	cfg := MatchConfig{ID: "seeded", Decks: [2][]string{deck, deck}, Seed: 42}

	a, _, err := eng.NewMatch(cfg)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	b, _, err := eng.NewMatch(cfg)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if !reflect.DeepEqual(a.Sides[0].Hand, b.Sides[0].Hand) || !reflect.DeepEqual(a.Sides[1].Deck, b.Sides[1].Deck) {
		t.Error("expected identical deals for identical seeds")
	}
	if !reflect.DeepEqual(a.RNG, b.RNG) {
		t.Error("expected identical RNG state for identical seeds")
	}
}

func TestNewMatchRejectsShortDeck(t *testing.T) {
	eng := NewEngine(testCatalog(t))
	_, _, err := eng.NewMatch(MatchConfig{Decks: [2][]string{{"filler"}, padDeck(nil, 10)}})
	if err == nil {
		t.Fatal("expected an error for a 1-card deck")
	}
	_, _, err = eng.NewMatch(MatchConfig{Decks: [2][]string{padDeck([]string{"nope"}, 10), padDeck(nil, 10)}})
	if err == nil {
		t.Fatal("expected an error for an unknown card")
	}
}

// TestDirectAttackDealsBattleDamage: an 1800 ATK direct attack leaves 6200/8000.
func TestDirectAttackDealsBattleDamage(t *testing.T) {
	h := newHarness(t, padDeck([]string{"warrior"}, 20), padDeck(nil, 20))

	// Turn 1 (P1): summon, can't attack turn 1
	h.submit(h.find(0, ActionNormalSummon, "Iron Warrior"))
	h.endTurn()
	// Turn 2 (P2): nothing
	h.endTurn()

	// Turn 3 (P1): attack directly
	h.submit(Action{Type: ActionEnterBattlePhase, Player: 0})
	attack := h.find(0, ActionAttack, "Iron Warrior")
	if attack.Target != 0 {
		t.Fatalf("expected a direct attack, got target #%d", attack.Target)
	}
	h.submit(attack)
	h.passAll()

	if h.lp(0) != 8000 || h.lp(1) != 6200 {
		t.Errorf("expected LP 8000/6200, got %d/%d", h.lp(0), h.lp(1))
	}
	dmg := h.events(log.EventBattleDamage)
	if len(dmg) != 1 {
		t.Fatalf("expected 1 BattleDamage event, got %d", len(dmg))
	}
	if dmg[0].Player != 1 || dmg[0].Card != "Iron Warrior" {
		t.Errorf("expected P2 damaged by Iron Warrior, got P%d by %q", dmg[0].Player+1, dmg[0].Card)
	}
	if h.st.Over {
		t.Error("match should still be running")
	}
}

// TestDeckOutOnDraw: drawing 2 from an empty deck loses the match.
func TestDeckOutOnDraw(t *testing.T) {
	// 5-card hand plus the turn 1 draw empties P1's deck
	h := newHarness(t, padDeck([]string{"pot"}, 6), padDeck(nil, 20))
	if n := len(h.st.Sides[0].Deck); n != 0 {
		t.Fatalf("expected an empty deck, got %d cards", n)
	}

	h.submit(h.find(0, ActionActivate, "Pot of Plenty"))

	if !h.st.Over {
		t.Fatal("expected the match to be over")
	}
	if h.st.Winner != 1 {
		t.Errorf("expected P2 to win, got winner %d", h.st.Winner)
	}
	if got := len(h.events(log.EventDeckOut)); got != 1 {
		t.Errorf("expected 1 DeckOut event, got %d", got)
	}
	if got := len(h.events(log.EventWin)); got != 1 {
		t.Errorf("expected 1 Win event, got %d", got)
	}
}

func TestFirstPlayerCannotAttackOnTurnOne(t *testing.T) {
	h := newHarness(t, padDeck(nil, 20), padDeck(nil, 20))
	h.expectReject(Action{Type: ActionEnterBattlePhase, Player: 0}, ReasonCannotAttack)
	for _, a := range h.eng.AvailableActions(h.st, 0) {
		if a.Type == ActionEnterBattlePhase {
			t.Error("Battle Phase should not be offered on turn 1")
		}
	}
}

func TestRejectedActions(t *testing.T) {
	h := newHarness(t, padDeck([]string{"warrior", "knight", "dragon"}, 20), padDeck(nil, 20))

	h.expectReject(Action{Type: ActionNormalSummon, Player: 1, Card: h.id(1, ZoneHand, "Filler")}, ReasonNotYourTurn)
	h.expectReject(Action{Type: ActionNormalSummon, Player: 0, Card: h.id(0, ZoneHand, "Great Dragon")}, ReasonTributeRequired)
	h.expectReject(Action{Type: ActionNormalSummon, Player: 0, Card: 9999}, ReasonCardNotFound)
	h.expectReject(Action{Type: ActionPass, Player: 0}, ReasonNoPriority)
	h.expectReject(Action{Type: ActionType(99), Player: 0}, ReasonUnknownAction)

	h.submit(h.find(0, ActionNormalSummon, "Iron Warrior"))
	warrior := h.id(0, ZoneBoard, "Iron Warrior")

	h.expectReject(Action{Type: ActionNormalSummon, Player: 0, Card: h.id(0, ZoneHand, "Shield Knight")}, ReasonSummonUsed)
	h.expectReject(Action{Type: ActionAttack, Player: 0, Card: warrior}, ReasonWrongPhase)
	h.expectReject(Action{Type: ActionChangePosition, Player: 0, Card: warrior}, ReasonPositionLocked)
	h.expectReject(Action{Type: ActionEnterMainPhase2, Player: 0}, ReasonWrongPhase)

	h.submit(Action{Type: ActionSurrender, Player: 0})
	h.expectReject(Action{Type: ActionEndTurn, Player: 1}, ReasonMatchOver)
}

func TestTributeSummon(t *testing.T) {
	h := newHarness(t, padDeck([]string{"warrior", "ogre"}, 20), padDeck(nil, 20))

	h.submit(h.find(0, ActionNormalSummon, "Iron Warrior"))
	h.endTurn()
	h.endTurn()

	offer := h.find(0, ActionNormalSummon, "Hill Ogre")
	if offer.TargetCount != 1 || len(offer.Candidates) != 1 {
		t.Fatalf("expected 1 tribute from 1 candidate, got %d from %v", offer.TargetCount, offer.Candidates)
	}
	offer.Tributes = offer.Candidates
	h.submit(offer)

	if !h.has(0, ZoneGraveyard, "Iron Warrior") {
		t.Error("expected Iron Warrior in the graveyard")
	}
	if !h.has(0, ZoneBoard, "Hill Ogre") {
		t.Error("expected Hill Ogre on the board")
	}
	if got := len(h.events(log.EventTributeSummon)); got != 1 {
		t.Errorf("expected 1 TributeSummon event, got %d", got)
	}
}

func TestSetAndFlipSummon(t *testing.T) {
	h := newHarness(t, padDeck([]string{"knight"}, 20), padDeck(nil, 20))

	h.submit(h.find(0, ActionSet, "Shield Knight"))
	knight := h.id(0, ZoneBoard, "Shield Knight")
	b := h.st.BoardCard(knight)
	if b.Face != FaceDown || b.Position != PositionDEF {
		t.Fatalf("expected face-down DEF, got %s %s", b.Face, b.Position)
	}
	h.expectReject(Action{Type: ActionFlipSummon, Player: 0, Card: knight}, ReasonPositionLocked)
	h.endTurn()
	h.endTurn()

	h.submit(h.find(0, ActionFlipSummon, "Shield Knight"))
	h.passAll()
	b = h.st.BoardCard(knight)
	if b.Face != FaceUp || b.Position != PositionATK {
		t.Errorf("expected face-up ATK, got %s %s", b.Face, b.Position)
	}
	if got := len(h.events(log.EventFlipSummon)); got != 1 {
		t.Errorf("expected 1 FlipSummon event, got %d", got)
	}
}

func TestSurrender(t *testing.T) {
	h := newHarness(t, padDeck(nil, 20), padDeck(nil, 20))
	h.submit(Action{Type: ActionSurrender, Player: 1})
	if !h.st.Over || h.st.Winner != 0 {
		t.Errorf("expected P1 to win by surrender, got over=%v winner=%d", h.st.Over, h.st.Winner)
	}
	if got := len(h.events(log.EventSurrender)); got != 1 {
		t.Errorf("expected 1 Surrender event, got %d", got)
	}
	if actions := h.eng.AvailableActions(h.st, 0); len(actions) != 0 {
		t.Errorf("expected no actions after the match ended, got %v", actions)
	}
}

func TestHandLimitAtEndPhase(t *testing.T) {
	h := newHarness(t, padDeck([]string{"pot"}, 20), padDeck(nil, 20))

	h.submit(h.find(0, ActionActivate, "Pot of Plenty"))
	if got := len(h.st.Sides[0].Hand); got != 7 {
		t.Fatalf("expected 7 cards after drawing 2, got %d", got)
	}
	h.endTurn()

	if got := len(h.st.Sides[0].Hand); got != MaxHandSize {
		t.Errorf("expected hand of %d after the End Phase, got %d", MaxHandSize, got)
	}
	if got := len(h.events(log.EventDiscard)); got != 1 {
		t.Errorf("expected 1 Discard event, got %d", got)
	}
}

func TestTurnLimitEndsInDraw(t *testing.T) {
	h := newHarness(t, padDeck(nil, 20), padDeck(nil, 20), WithRules(Rules{MaxTurns: 2}))
	h.endTurn()
	h.endTurn()
	if !h.st.Over || h.st.Winner != -1 {
		t.Errorf("expected a drawn match, got over=%v winner=%d", h.st.Over, h.st.Winner)
	}
}

func TestAvailableActionsOnlyForDecider(t *testing.T) {
	h := newHarness(t, padDeck([]string{"warrior"}, 20), padDeck(nil, 20))

	p2 := h.eng.AvailableActions(h.st, 1)
	if len(p2) != 1 || p2[0].Type != ActionSurrender {
		t.Errorf("expected only surrender for the waiting player, got %v", p2)
	}
	var summon, end bool
	for _, a := range h.eng.AvailableActions(h.st, 0) {
		summon = summon || a.Type == ActionNormalSummon
		end = end || a.Type == ActionEndTurn
	}
	if !summon || !end {
		t.Errorf("expected summon and end turn for P1, got summon=%v end=%v", summon, end)
	}
}
