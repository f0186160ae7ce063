package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCatalog(t *testing.T) {
	cat := testCatalog(t)
	if cat.Len() != 29 {
		t.Errorf("expected 29 cards, got %d", cat.Len())
	}

	sheep, ok := cat.Card("sheep")
	if !ok {
		t.Fatal("sheep not found")
	}
	eff := sheep.Effects[0]
	if eff.Op != OpCreateToken || eff.Speed != Speed2 || eff.Params.Count != 3 || eff.Params.Position != PositionDEF {
		t.Errorf("unexpected Sheep Pen effect: %+v", eff)
	}
	if eff.Params.Token.Name != "Sheep" {
		t.Errorf("expected Sheep tokens, got %q", eff.Params.Token.Name)
	}

	counter, _ := cat.Card("counter")
	if counter.TrapSub != TrapCounter || counter.Effects[0].Speed != Speed3 {
		t.Errorf("counter traps are speed 3, got %+v", counter.Effects[0])
	}
	mage, _ := cat.Card("mage")
	if mage.Effects[0].Limit != LimitPerTurn || mage.Effects[0].Params.Player != PlayerOpponent {
		t.Errorf("unexpected Quick Mage effect: %+v", mage.Effects[0])
	}
	dragon, _ := cat.Card("dragon")
	if dragon.TributesRequired() != 2 {
		t.Errorf("level 7 needs 2 tributes, got %d", dragon.TributesRequired())
	}
}

func TestParseCatalogRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		card  string
		field string
	}{
		{"unknown trigger", `{id: x, name: X, kind: spell, effects: [{trigger: on_sneeze, type: draw, params: {amount: 1}}]}`, "effects[0].trigger"},
		{"unknown operation", `{id: x, name: X, kind: spell, effects: [{trigger: manual, type: teleport}]}`, "effects[0].type"},
		{"missing param", `{id: x, name: X, kind: spell, effects: [{trigger: manual, type: damage}]}`, "effects[0].params.amount"},
		{"extra param", `{id: x, name: X, kind: spell, effects: [{trigger: manual, type: draw, params: {amount: 1, target: own_creature}}]}`, "effects[0].params.target"},
		{"draw out of range", `{id: x, name: X, kind: spell, effects: [{trigger: manual, type: draw, params: {amount: 11}}]}`, "effects[0].params.amount"},
		{"count out of range", `{id: x, name: X, kind: spell, effects: [{trigger: manual, type: destroy, params: {target: any_creature, count: 6}}]}`, "effects[0].params.count"},
		{"aura not continuous", `{id: x, name: X, kind: spell, subtype: field, effects: [{trigger: manual, type: stat_aura, params: {target: own_creature, attack: 100}}]}`, "effects[0].trigger"},
		{"continuous on a normal spell", `{id: x, name: X, kind: spell, effects: [{trigger: continuous, type: stat_aura, params: {target: own_creature, attack: 100}}]}`, "effects[0].trigger"},
		{"fixed spell speed", `{id: x, name: X, kind: trap, effects: [{trigger: manual, type: draw, speed: 1, params: {amount: 1}}]}`, "effects[0].speed"},
		{"unsupported filter", `{id: x, name: X, kind: spell, effects: [{trigger: manual, type: destroy, params: {target: any_creature, filter: {level: 4}}}]}`, "effects[0].params.filter.level"},
		{"negate the wrong thing", `{id: x, name: X, kind: trap, effects: [{trigger: manual, type: negate, params: {target: own_creature}}]}`, "effects[0].params.target"},
		{"event card on manual", `{id: x, name: X, kind: spell, effects: [{trigger: manual, type: destroy, params: {target: event_card}}]}`, "effects[0].params.target"},
		{"optional manual", `{id: x, name: X, kind: spell, effects: [{trigger: manual, optional: true, type: draw, params: {amount: 1}}]}`, "effects[0].optional"},
		{"creature without level", `{id: x, name: X, kind: creature, attack: 100, defense: 100}`, "level"},
		{"spell with stats", `{id: x, name: X, kind: spell, attack: 100, effects: [{trigger: manual, type: draw, params: {amount: 1}}]}`, "level"},
		{"empty normal spell", `{id: x, name: X, kind: spell}`, "effects"},
		{"unknown kind", `{id: x, name: X, kind: ritual}`, "kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte("cards:\n  - " + tt.card + "\n"))
			if err == nil {
				t.Fatal("expected a definition error")
			}
			var de *DefinitionError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DefinitionError, got %T: %v", err, err)
			}
			if de.Card != "x" || de.Field != tt.field {
				t.Errorf("expected card x field %s, got card %s field %s (%v)", tt.field, de.Card, de.Field, err)
			}
		})
	}
}

func TestParseCatalogKeepsValidCards(t *testing.T) {
	data := `
cards:
  - {id: good, name: Good, kind: creature, level: 4, attack: 1000, defense: 1000}
  - {id: bad, name: Bad, kind: creature, level: 13, attack: 1000, defense: 1000}
  - {id: good, name: Again, kind: creature, level: 4, attack: 1000, defense: 1000}
`
	cat, err := ParseCatalog([]byte(data))
	if err == nil {
		t.Fatal("expected errors for the bad level and the duplicate id")
	}
	if cat.Len() != 1 {
		t.Errorf("expected the one valid card kept, got %d", cat.Len())
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected a duplicate id error, got %v", err)
	}
}

func TestNewCatalogChecksTypedDefinitions(t *testing.T) {
	good := &CardDef{ID: "burn", Name: "Burn", Kind: KindSpell, Effects: []Effect{
		{Trigger: TriggerManual, Op: OpDamage, Speed: Speed1, Params: Params{Amount: 800, Player: PlayerOpponent}},
	}}
	bad := &CardDef{ID: "broken", Name: "Broken", Kind: KindSpell, Effects: []Effect{
		{Trigger: TriggerManual, Op: OpDamage, Speed: Speed1, Params: Params{Amount: 0}},
	}}
	cat, err := NewCatalog(good, bad)
	var de *DefinitionError
	if !errors.As(err, &de) || de.Card != "broken" {
		t.Fatalf("expected a definition error for broken, got %v", err)
	}
	if _, ok := cat.Card("burn"); !ok {
		t.Error("expected the valid card registered")
	}
}

func TestParseDecks(t *testing.T) {
	cat := testCatalog(t)
	data := `
decks:
  - name: beatdown
    cards:
      - {id: warrior, count: 3}
      - {id: pot, count: 1}
`
	decks, err := ParseDecks([]byte(data), cat)
	if err != nil {
		t.Fatalf("ParseDecks: %v", err)
	}
	d, err := DeckByName(decks, "beatdown")
	if err != nil {
		t.Fatalf("DeckByName: %v", err)
	}
	if len(d.Cards) != 4 {
		t.Errorf("expected 4 cards, got %d", len(d.Cards))
	}
	if _, err := DeckByName(decks, "control"); err == nil {
		t.Error("expected an error for a missing deck")
	}

	for _, bad := range []string{
		"decks:\n  - {name: x, cards: [{id: nope, count: 1}]}\n",
		"decks:\n  - {name: x, cards: [{id: warrior, count: 4}]}\n",
		"decks: [",
	} {
		if _, err := ParseDecks([]byte(bad), cat); err == nil {
			t.Errorf("expected an error for %q", bad)
		}
	}
}

func TestLoadCatalogAndDecksFromFiles(t *testing.T) {
	dir := t.TempDir()
	cards := filepath.Join(dir, "cards.yaml")
	decks := filepath.Join(dir, "decks.yaml")
	if err := os.WriteFile(cards, []byte(testCatalogYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(decks, []byte("decks:\n  - {name: d, cards: [{id: fox, count: 2}]}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(cards)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	list, err := LoadDecks(decks, cat)
	if err != nil {
		t.Fatalf("LoadDecks: %v", err)
	}
	if len(list) != 1 || len(list[0].Cards) != 2 {
		t.Errorf("unexpected decks: %+v", list)
	}
	if _, err := LoadCatalog(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestBundledCatalogAndDecks(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join("..", "..", "data", "cards.yaml"))
	if err != nil {
		t.Fatalf("bundled catalog: %v", err)
	}
	decks, err := LoadDecks(filepath.Join("..", "..", "data", "decks.yaml"), cat)
	if err != nil {
		t.Fatalf("bundled decks: %v", err)
	}
	if len(decks) < 2 {
		t.Fatalf("expected at least 2 decks, got %d", len(decks))
	}
	for _, d := range decks {
		if len(d.Cards) < DefaultHandSize {
			t.Errorf("deck %s has only %d cards", d.Name, len(d.Cards))
		}
	}
}
