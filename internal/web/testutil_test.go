package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/match"
	"github.com/peterkuimelis/duelcore/internal/store"
)

const testCards = `
cards:
  - {id: warrior, name: Iron Warrior, kind: creature, level: 4, attack: 1800, defense: 1000}
  - {id: knight, name: Shield Knight, kind: creature, level: 4, attack: 1200, defense: 2000}
  - {id: filler, name: Filler, kind: creature, level: 1, attack: 100, defense: 100}
  - id: halt
    name: Halt the Charge
    kind: trap
    effects:
      - {trigger: on_attack_declared, type: negate, params: {target: pending_action}}
`

const testDecks = `
decks:
  - name: beatdown
    cards:
      - {id: warrior, count: 3}
      - {id: knight, count: 3}
      - {id: filler, count: 3}
  - name: control
    cards:
      - {id: knight, count: 3}
      - {id: filler, count: 3}
      - {id: halt, count: 3}
`

// --- Test environment ---

type testEnv struct {
	ts  *httptest.Server
	svc *match.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := game.ParseCatalog([]byte(testCards))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	decks, err := game.ParseDecks([]byte(testDecks), cat)
	if err != nil {
		t.Fatalf("ParseDecks: %v", err)
	}
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := match.NewService(game.NewEngine(cat), st, nil)
	ts := httptest.NewServer(NewServer(svc, decks, nil))
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, svc: svc}
}

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// --- REST API helpers ---

func (env *testEnv) do(t *testing.T, method, path, player string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, env.ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if player != "" {
		req.Header.Set(playerHeader, player)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (env *testEnv) createMatch(t *testing.T) string {
	t.Helper()
	resp := env.do(t, "POST", "/api/matches", "", CreateMatchRequest{
		Players: [2]string{"alice", "bob"},
		Decks:   [2]string{"beatdown", "control"},
		Seed:    5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create match: status %d", resp.StatusCode)
	}
	return decode[CreateMatchResponse](t, resp).MatchID
}
