package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/match"
	"github.com/peterkuimelis/duelcore/internal/store"
)

const testCards = `
cards:
  - {id: warrior, name: Iron Warrior, kind: creature, level: 4, attack: 1800, defense: 1000}
`

func newTestMatch(t *testing.T) (*match.Service, string) {
	t.Helper()
	cat, err := game.ParseCatalog([]byte(testCards))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	svc := match.NewService(game.NewEngine(cat), store.NewMemoryStore(), nil)
	deck := make([]string, 20)
	for i := range deck {
		deck[i] = "warrior"
	}
	ms, err := svc.CreateMatch(context.Background(), match.CreateRequest{
		Players: [2]string{"alice", "bob"},
		Decks:   [2][]string{deck, deck},
		Seed:    1,
	})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	return svc, ms.ID
}

// choiceOf returns the 1-based menu number of the first action of type typ.
func choiceOf(t *testing.T, svc *match.Service, id, player string, typ game.ActionType) int {
	t.Helper()
	actions, err := svc.AvailableActions(context.Background(), id, player)
	if err != nil {
		t.Fatalf("AvailableActions: %v", err)
	}
	for i, a := range actions {
		if a.Type == typ {
			return i + 1
		}
	}
	t.Fatalf("no %s for %s", typ, player)
	return 0
}

func TestPlayUntilSurrender(t *testing.T) {
	svc, id := newTestMatch(t)
	surrender := choiceOf(t, svc, id, "alice", game.ActionSurrender)

	in := strings.NewReader(fmt.Sprintf("nope\n99\n%d\n", surrender))
	var out bytes.Buffer
	if err := New(svc, in, &out).Play(context.Background(), id); err != nil {
		t.Fatalf("Play: %v", err)
	}

	text := out.String()
	for _, want := range []string{"alice, choose an action:", "Enter a number between 1 and", "GAME OVER", "Iron Warrior"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in the output", want)
		}
	}
	ms, _ := svc.State(context.Background(), id)
	if !ms.Over || ms.Winner != 1 {
		t.Errorf("expected bob to win by surrender, got over=%v winner=%d", ms.Over, ms.Winner)
	}
}

func TestPlaySwitchesSeats(t *testing.T) {
	svc, id := newTestMatch(t)
	end := choiceOf(t, svc, id, "alice", game.ActionEndTurn)

	// alice ends her turn, then input runs out on bob's turn
	in := strings.NewReader(fmt.Sprintf("%d\n", end))
	var out bytes.Buffer
	err := New(svc, in, &out).Play(context.Background(), id)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF once input runs out, got %v", err)
	}
	if !strings.Contains(out.String(), "bob, choose an action:") {
		t.Error("expected bob to be prompted on turn 2")
	}
	if !strings.Contains(out.String(), "=== Turn 2 (P2) ===") {
		t.Error("expected the turn 2 event printed")
	}
}
