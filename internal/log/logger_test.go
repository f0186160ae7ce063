package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryLoggerNumbersEvents(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewTurnEvent(1, 0))
	l.Log(NewDrawEvent(1, "Draw Phase", 0, "Iron Warrior"))
	l.Log(NewDrawEvent(1, "Draw Phase", 0, "Bolt"))

	events := l.Events()
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("event %d: expected seq %d, got %d", i, i+1, e.Seq)
		}
	}
	if got := len(l.EventsOfType(EventDraw)); got != 2 {
		t.Errorf("expected 2 draw events, got %d", got)
	}
}

func TestTextLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewTurnEvent(2, 1))
	l.Log(NewSurrenderEvent(2, "Main Phase 1", 1))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "=== Turn 2 (P2) ===") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "T2  Main Phase 1") || !strings.HasSuffix(lines[1], "P2 surrenders") {
		t.Errorf("unexpected second line %q", lines[1])
	}
	if len(l.Events()) != 2 {
		t.Error("TextLogger should also keep the events")
	}
}

func TestWinEventHandlesDraws(t *testing.T) {
	if d := NewWinEvent(30, "End Phase", -1, "turn limit").Details; d != "Match drawn (turn limit)" {
		t.Errorf("unexpected draw details %q", d)
	}
	if d := NewWinEvent(3, "Battle Phase", 0, "LP reached 0").Details; d != "P1 wins! (LP reached 0)" {
		t.Errorf("unexpected win details %q", d)
	}
}

func TestBroadcasterTrimsBacklog(t *testing.T) {
	b := NewBroadcaster(3)
	for i := 0; i < 5; i++ {
		b.Log(NewTurnEvent(i+1, i%2))
	}
	events := b.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events kept, got %d", len(events))
	}
	if events[0].Seq != 3 || events[2].Seq != 5 {
		t.Errorf("expected seqs 3..5, got %d..%d", events[0].Seq, events[2].Seq)
	}

	events[0].Details = "changed"
	if b.Events()[0].Details == "changed" {
		t.Error("Events must return a copy")
	}
}

func TestBroadcasterFansOut(t *testing.T) {
	b := NewBroadcaster(0)
	a, cancelA := b.Subscribe(4)
	c, cancelC := b.Subscribe(4)
	defer cancelC()

	b.Log(NewTurnEvent(1, 0))
	if e := <-a; e.Seq != 1 || e.Type != EventNewTurn {
		t.Errorf("subscriber a got %+v", e)
	}
	if e := <-c; e.Seq != 1 {
		t.Errorf("subscriber c got %+v", e)
	}

	cancelA()
	cancelA() // second cancel is a no-op
	if _, ok := <-a; ok {
		t.Error("expected a closed channel after cancel")
	}
	b.Log(NewTurnEvent(2, 1))
	if e := <-c; e.Seq != 2 {
		t.Errorf("remaining subscriber got %+v", e)
	}
}

func TestBroadcasterDropsForSlowSubscribers(t *testing.T) {
	b := NewBroadcaster(0)
	ch, cancel := b.Subscribe(1)
	defer cancel()

	b.Log(NewTurnEvent(1, 0))
	b.Log(NewTurnEvent(2, 1)) // buffer full: dropped for this subscriber

	if e := <-ch; e.Seq != 1 {
		t.Errorf("expected the first event, got seq %d", e.Seq)
	}
	select {
	case e := <-ch:
		t.Errorf("expected the second event dropped, got seq %d", e.Seq)
	default:
	}
	if len(b.Events()) != 2 {
		t.Error("the backlog keeps events a subscriber missed")
	}
}

func TestBroadcasterReplayHasNoGapOrOverlap(t *testing.T) {
	b := NewBroadcaster(0)
	b.Log(NewTurnEvent(1, 0))
	b.Log(NewTurnEvent(2, 1))

	backlog, ch, cancel := b.Replay(4)
	defer cancel()
	b.Log(NewTurnEvent(3, 0))

	if len(backlog) != 2 || backlog[0].Seq != 1 || backlog[1].Seq != 2 {
		t.Fatalf("expected the backlog to hold seqs 1 and 2, got %+v", backlog)
	}
	if e := <-ch; e.Seq != 3 {
		t.Errorf("expected only later events on the channel, got seq %d", e.Seq)
	}
	select {
	case e := <-ch:
		t.Errorf("unexpected extra event seq %d", e.Seq)
	default:
	}
}
