package game

import (
	"testing"

	"github.com/peterkuimelis/duelcore/internal/log"
)

func TestDestroyTriggerDrawsFromGraveyard(t *testing.T) {
	h := newHarness(t, padDeck([]string{"fox"}, 20), padDeck([]string{"smash"}, 20))

	h.submit(h.find(0, ActionNormalSummon, "Spirit Fox"))
	h.endTurn()

	hand := len(h.st.Sides[0].Hand)
	smash := h.find(1, ActionActivate, "Smash")
	if smash.TargetCount != 1 || len(smash.Candidates) != 1 {
		t.Fatalf("expected Smash to offer the fox, got %d of %v", smash.TargetCount, smash.Candidates)
	}
	smash.Targets = smash.Candidates
	h.submit(smash)
	h.passAll()

	if !h.has(0, ZoneGraveyard, "Spirit Fox") {
		t.Fatal("expected Spirit Fox destroyed")
	}
	if got := len(h.st.Sides[0].Hand); got != hand+1 {
		t.Errorf("expected the fox's trigger to draw P1 a card: hand %d, want %d", got, hand+1)
	}
}

func TestFlipTriggerAfterBattle(t *testing.T) {
	h := newHarness(t, padDeck([]string{"bug"}, 20), padDeck([]string{"warrior"}, 20))

	h.submit(h.find(0, ActionSet, "Pit Bug"))
	h.endTurn()

	h.submit(h.find(1, ActionNormalSummon, "Iron Warrior"))
	h.submit(Action{Type: ActionEnterBattlePhase, Player: 1})
	h.submit(Action{Type: ActionAttack, Player: 1, Card: h.id(1, ZoneBoard, "Iron Warrior"), Target: h.id(0, ZoneBoard, "Pit Bug")})
	h.passAll()

	if !h.has(0, ZoneGraveyard, "Pit Bug") {
		t.Error("expected Pit Bug destroyed by battle")
	}
	if !h.has(1, ZoneGraveyard, "Iron Warrior") {
		t.Error("expected the flip effect to destroy Iron Warrior")
	}
	if h.lp(0) != 8000 {
		t.Errorf("no piercing, P1 should take no damage, got %d", h.lp(0))
	}
}

func TestCreateTokensAndDestroyOne(t *testing.T) {
	h := newHarness(t, padDeck([]string{"sheep"}, 20), padDeck([]string{"smash"}, 20))

	h.submit(h.find(0, ActionActivate, "Sheep Pen"))
	if got := h.st.Sides[0].CreatureCount(); got != 3 {
		t.Fatalf("expected 3 tokens on the board, got %d", got)
	}
	if got := len(h.events(log.EventTokenCreated)); got != 3 {
		t.Errorf("expected 3 TokenCreated events, got %d", got)
	}
	for _, id := range h.ids(0, ZoneBoard) {
		b := h.st.BoardCard(id)
		if !b.Token || b.Position != PositionDEF {
			t.Errorf("expected a DEF token, got %+v", b)
		}
	}
	h.endTurn()

	cards := len(h.st.Cards)
	smash := h.find(1, ActionActivate, "Smash")
	smash.Targets = smash.Candidates[:1]
	h.submit(smash)
	h.passAll()

	if got := h.st.Sides[0].CreatureCount(); got != 2 {
		t.Errorf("expected 2 tokens left, got %d", got)
	}
	if h.has(0, ZoneGraveyard, "Sheep") {
		t.Error("tokens never reach the graveyard")
	}
	if got := len(h.st.Cards); got != cards-1 {
		t.Errorf("expected the token unregistered: %d cards, want %d", got, cards-1)
	}
	if got := len(h.events(log.EventTokenRemoved)); got != 1 {
		t.Errorf("expected 1 TokenRemoved event, got %d", got)
	}
}

func TestSpecialSummonFromGraveyard(t *testing.T) {
	h := newHarness(t, padDeck([]string{"revive", "warrior"}, 20), padDeck(nil, 20))

	// put the warrior in the graveyard directly
	side := h.st.Sides[0]
	warrior := h.id(0, ZoneHand, "Iron Warrior")
	side.Hand, _ = removeID(side.Hand, warrior)
	side.Graveyard = append(side.Graveyard, warrior)

	revive := h.find(0, ActionActivate, "Second Wind")
	if len(revive.Candidates) != 1 || revive.Candidates[0] != warrior {
		t.Fatalf("expected the warrior as the only candidate, got %v", revive.Candidates)
	}
	revive.Targets = revive.Candidates
	h.submit(revive)
	h.passAll()

	b := h.st.BoardCard(warrior)
	if b == nil || b.Face != FaceUp || b.Position != PositionATK {
		t.Fatalf("expected Iron Warrior face-up ATK on the board, got %+v", b)
	}
	if got := len(h.events(log.EventSpecialSummon)); got != 1 {
		t.Errorf("expected 1 SpecialSummon event, got %d", got)
	}
	if h.st.Sides[0].NormalSummonUsed {
		t.Error("a special summon does not use the normal summon")
	}
}

func TestTemporaryModifierExpiresAtEndOfTurn(t *testing.T) {
	h := newHarness(t, padDeck([]string{"warrior", "rally"}, 20), padDeck(nil, 20))

	h.submit(h.find(0, ActionNormalSummon, "Iron Warrior"))
	warrior := h.id(0, ZoneBoard, "Iron Warrior")
	rally := h.find(0, ActionActivate, "Rally")
	rally.Targets = []int{warrior}
	h.submit(rally)
	h.passAll()

	if got := h.st.BoardCard(warrior).ATK; got != 2300 {
		t.Fatalf("expected ATK 2300 after Rally, got %d", got)
	}
	h.endTurn()
	if got := h.st.BoardCard(warrior).ATK; got != 1800 {
		t.Errorf("expected ATK back to 1800 next turn, got %d", got)
	}
	if len(h.st.Modifiers) != 0 {
		t.Errorf("expected no modifiers left, got %d", len(h.st.Modifiers))
	}
	if got := len(h.events(log.EventModifierExpired)); got != 1 {
		t.Errorf("expected 1 ModifierExpired event, got %d", got)
	}
}

// TestFieldSpellAuraFollowsItsSource: removing the field spell removes its
// bonus at once.
func TestFieldSpellAuraFollowsItsSource(t *testing.T) {
	h := newHarness(t, padDeck([]string{"warrior", "arena"}, 20), padDeck([]string{"wind", "knight"}, 20))

	h.submit(h.find(0, ActionNormalSummon, "Iron Warrior"))
	warrior := h.id(0, ZoneBoard, "Iron Warrior")
	place := h.find(0, ActionActivate, "Sword Arena")
	if place.Effect != PlacementEffect {
		t.Fatalf("expected the field spell to be placed, got effect %d", place.Effect)
	}
	h.submit(place)

	if len(h.st.Chain.Links) != 0 {
		t.Error("placing a field spell starts no chain")
	}
	b := h.st.BoardCard(warrior)
	if b.ATK != 2100 || b.DEF != 1300 {
		t.Fatalf("expected 2100/1300 with Sword Arena, got %d/%d", b.ATK, b.DEF)
	}
	h.endTurn()

	// the opponent's creatures are not boosted
	h.submit(h.find(1, ActionNormalSummon, "Shield Knight"))
	if got := h.st.BoardCard(h.id(1, ZoneBoard, "Shield Knight")).ATK; got != 1200 {
		t.Errorf("Sword Arena boosts only its controller's creatures, knight ATK %d", got)
	}

	wind := h.find(1, ActionActivate, "Mystic Wind")
	wind.Targets = []int{h.id(0, ZoneField, "Sword Arena")}
	h.submit(wind)
	h.passAll()

	if h.st.Sides[0].Field != nil {
		t.Fatal("expected Sword Arena destroyed")
	}
	b = h.st.BoardCard(warrior)
	if b.ATK != 1800 || b.DEF != 1000 {
		t.Errorf("expected base 1800/1000 after the field spell left, got %d/%d", b.ATK, b.DEF)
	}
}

func TestRecomputeIgnoresStaleDerivedStats(t *testing.T) {
	cat := testCatalog(t)
	ms := NewMatchState("unit", DefaultStartingLP)
	w := ms.newInstance("warrior", 0, nil)
	ms.Sides[0].Board[0] = &BoardCard{Card: w, Face: FaceUp, ATK: 9999, DEF: -5}
	f := ms.newInstance("arena", 0, nil)
	ms.Sides[0].Field = &SetCard{Card: f, Face: FaceUp}

	Recompute(ms, cat)
	if b := ms.Sides[0].Board[0]; b.ATK != 2100 || b.DEF != 1300 {
		t.Fatalf("expected 2100/1300, got %d/%d", b.ATK, b.DEF)
	}
	Recompute(ms, cat)
	if b := ms.Sides[0].Board[0]; b.ATK != 2100 {
		t.Errorf("recomputing twice must not stack the aura, got ATK %d", b.ATK)
	}

	ms.Sides[0].Field = nil
	ms.Sides[0].Graveyard = append(ms.Sides[0].Graveyard, f)
	Recompute(ms, cat)
	if b := ms.Sides[0].Board[0]; b.ATK != 1800 || b.DEF != 1000 {
		t.Errorf("expected 1800/1000 after removing the aura, got %d/%d", b.ATK, b.DEF)
	}
}

func TestModifierOverrideThenAdd(t *testing.T) {
	cat := testCatalog(t)
	ms := NewMatchState("unit", DefaultStartingLP)
	w := ms.newInstance("warrior", 0, nil)
	ms.Sides[0].Board[0] = &BoardCard{Card: w, Face: FaceUp}

	addModifier(ms, TemporaryModifier{Target: w, Kind: ModAdd, ATK: 300})
	addModifier(ms, TemporaryModifier{Target: w, Kind: ModSet, ATK: 0, HasATK: true})
	Recompute(ms, cat)
	if got := ms.Sides[0].Board[0].ATK; got != 300 {
		t.Errorf("expected override to 0 then +300, got %d", got)
	}

	// a modifier on a creature that left the board is dropped
	ms.Sides[0].Board[0] = nil
	ms.Sides[0].Graveyard = append(ms.Sides[0].Graveyard, w)
	Recompute(ms, cat)
	if len(ms.Modifiers) != 0 {
		t.Errorf("expected modifiers pruned, got %d", len(ms.Modifiers))
	}
}

func TestDestroyReportsWhereCardsWent(t *testing.T) {
	cat := testCatalog(t)
	smashDef, _ := cat.Card("smash")
	tests := []struct {
		name  string
		token bool
		want  ZoneType
	}{
		{"card goes to the graveyard", false, ZoneGraveyard},
		{"token leaves play", true, ZoneNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := NewMatchState("unit", DefaultStartingLP)
			ms.Turn, ms.TurnPlayer, ms.Phase = 2, 1, PhaseMain1
			var target int
			if tt.token {
				target = ms.newInstance("", 0, &TokenStats{Name: "Sheep"})
				ms.Sides[0].Board[0] = &BoardCard{Card: target, Face: FaceUp, Position: PositionDEF, Token: true}
			} else {
				target = place(ms, "warrior", 0, 0)
			}
			smash := ms.newInstance("smash", 1, nil)
			d := &duel{e: NewEngine(cat), st: ms, cat: cat}

			res, err := d.execute(&ChainLink{Index: 1, Card: smash, Controller: 1, DefID: "smash", Effect: smashDef.Effects[0], Targets: []int{target}})
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if len(res.Moved) != 1 {
				t.Fatalf("expected one move, got %+v", res.Moved)
			}
			if m := res.Moved[0]; m.Card != target || m.From != ZoneBoard || m.To != tt.want {
				t.Errorf("expected %d from %s to %s, got %+v", target, ZoneBoard, tt.want, m)
			}
		})
	}
}
