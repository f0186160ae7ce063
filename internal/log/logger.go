package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Broadcaster: fans events out to spectators ---

// Broadcaster is a goroutine-safe sink that keeps a bounded backlog and
// forwards every event to its subscribers. Slow subscribers drop events
// rather than block the match that emitted them.
type Broadcaster struct {
	mu      sync.Mutex
	backlog []GameEvent
	limit   int
	seq     int
	subs    map[int]chan GameEvent
	nextSub int
}

func NewBroadcaster(limit int) *Broadcaster {
	if limit <= 0 {
		limit = 512
	}
	return &Broadcaster{limit: limit, subs: make(map[int]chan GameEvent)}
}

func (b *Broadcaster) Log(event GameEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	event.Seq = b.seq
	b.backlog = append(b.backlog, event)
	if len(b.backlog) > b.limit {
		b.backlog = b.backlog[len(b.backlog)-b.limit:]
	}
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (b *Broadcaster) Events() []GameEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]GameEvent, len(b.backlog))
	copy(out, b.backlog)
	return out
}

// Subscribe registers a listener. The returned cancel func must be called to
// release the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan GameEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked(buffer)
}

// Replay is Subscribe plus a copy of the backlog taken under the same lock:
// every event is either in the backlog or on the channel, never both.
func (b *Broadcaster) Replay(buffer int) ([]GameEvent, <-chan GameEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	backlog := make([]GameEvent, len(b.backlog))
	copy(backlog, b.backlog)
	ch, cancel := b.subscribeLocked(buffer)
	return backlog, ch, cancel
}

func (b *Broadcaster) subscribeLocked(buffer int) (<-chan GameEvent, func()) {
	id := b.nextSub
	b.nextSub++
	ch := make(chan GameEvent, buffer)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// --- Formatting ---

// playerName returns "P1" or "P2" for display.
func playerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	for len(phase) < 16 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewMatchStartEvent(startingLP int) GameEvent {
	return GameEvent{
		Type:    EventMatchStart,
		Details: fmt.Sprintf("Match start (LP %d / %d)", startingLP, startingLP),
	}
}

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewTurnEvent(turn int, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Draw Phase",
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, playerName(player)),
	}
}

func NewDrawEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("%s draws %s", playerName(player), cardName),
	}
}

func NewNormalSummonEvent(turn int, phase string, player int, cardName string, atk int, zone int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventNormalSummon,
		Card:    cardName,
		Details: fmt.Sprintf("%s normal summons %s (ATK %d) to Board Zone %d", playerName(player), cardName, atk, zone+1),
	}
}

func NewTributeSummonEvent(turn int, phase string, player int, cardName string, atk int, zone int, tributes []string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventTributeSummon,
		Card:    cardName,
		Details: fmt.Sprintf("%s tribute summons %s (ATK %d) to Board Zone %d (tributed: %s)", playerName(player), cardName, atk, zone+1, strings.Join(tributes, ", ")),
	}
}

func NewFlipSummonEvent(turn int, phase string, player int, cardName string, atk int, zone int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventFlipSummon,
		Card:    cardName,
		Details: fmt.Sprintf("%s flip summons %s (ATK %d) in Board Zone %d", playerName(player), cardName, atk, zone+1),
	}
}

func NewSpecialSummonEvent(turn int, phase string, player int, cardName string, atk int, zone int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSpecialSummon,
		Card:    cardName,
		Details: fmt.Sprintf("%s special summons %s (ATK %d) to Board Zone %d", playerName(player), cardName, atk, zone+1),
	}
}

func NewSetCreatureEvent(turn int, phase string, player int, zone int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSetCreature,
		Details: fmt.Sprintf("%s sets a creature in Board Zone %d", playerName(player), zone+1),
	}
}

func NewSetSpellTrapEvent(turn int, phase string, player int, zone int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSetSpellTrap,
		Details: fmt.Sprintf("%s sets a card in Spell/Trap Zone %d", playerName(player), zone+1),
	}
}

func NewChangePositionEvent(turn int, phase string, player int, cardName string, newPos string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventChangePosition,
		Card:    cardName,
		Details: fmt.Sprintf("%s changes %s to %s position", playerName(player), cardName, newPos),
	}
}

func NewTokenCreatedEvent(turn int, phase string, player int, tokenName string, zone int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventTokenCreated,
		Card:    tokenName,
		Details: fmt.Sprintf("%s creates %s in Board Zone %d", playerName(player), tokenName, zone+1),
	}
}

func NewTokenRemovedEvent(turn int, phase string, player int, tokenName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventTokenRemoved,
		Card:    tokenName,
		Details: fmt.Sprintf("%s is removed from play (%s)", tokenName, reason),
	}
}

func NewActivateEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventActivate,
		Card:    cardName,
		Details: fmt.Sprintf("%s activates %s", playerName(player), cardName),
	}
}

func NewChainLinkEvent(turn int, phase string, player int, cardName string, chainIndex int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventChainLink,
		Card:    cardName,
		Details: fmt.Sprintf("Chain Link %d: %s activates %s", chainIndex, playerName(player), cardName),
	}
}

func NewChainResolveEvent(turn int, phase string, player int, cardName string, chainIndex int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventChainResolve,
		Card:    cardName,
		Details: fmt.Sprintf("Chain Link %d resolves: %s", chainIndex, cardName),
	}
}

func NewChainNegatedEvent(turn int, phase string, player int, cardName string, chainIndex int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventChainNegated,
		Card:    cardName,
		Details: fmt.Sprintf("Chain Link %d (%s) is negated", chainIndex, cardName),
	}
}

func NewPriorityPassEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPriorityPass,
		Details: fmt.Sprintf("%s passes priority", playerName(player)),
	}
}

func NewTriggerOfferedEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventTriggerOffered,
		Card:    cardName,
		Details: fmt.Sprintf("%s may activate %s", playerName(player), cardName),
	}
}

func NewAttackDeclareEvent(turn int, player int, attacker string, defender string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Battle Phase",
		Player:  player,
		Type:    EventAttackDeclare,
		Card:    attacker,
		Details: fmt.Sprintf("%s declares attack: %s → %s", playerName(player), attacker, defender),
	}
}

func NewDirectAttackDeclareEvent(turn int, player int, attacker string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Battle Phase",
		Player:  player,
		Type:    EventDirectAttackDeclare,
		Card:    attacker,
		Details: fmt.Sprintf("%s declares direct attack with %s", playerName(player), attacker),
	}
}

func NewAttackStoppedEvent(turn int, player int, attackerName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Battle Phase",
		Player:  player,
		Type:    EventAttackStopped,
		Card:    attackerName,
		Details: fmt.Sprintf("%s cannot continue attack (%s)", attackerName, reason),
	}
}

func NewDamageCalcEvent(turn int, player int, details string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Battle Phase",
		Player:  player,
		Type:    EventDamageCalc,
		Details: details,
	}
}

func NewBattleDamageEvent(turn int, player int, amount int, attacker string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Battle Phase",
		Player:  player,
		Type:    EventBattleDamage,
		Card:    attacker,
		Details: fmt.Sprintf("%s takes %d battle damage (%s)", playerName(player), amount, attacker),
	}
}

func NewBattleDestroyEvent(turn int, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Battle Phase",
		Player:  player,
		Type:    EventBattleDestroy,
		Card:    cardName,
		Details: fmt.Sprintf("%s is destroyed by battle", cardName),
	}
}

func NewDestroyEvent(turn int, phase string, player int, cardName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDestroy,
		Card:    cardName,
		Details: fmt.Sprintf("%s is destroyed (%s)", cardName, reason),
	}
}

func NewSendToGraveyardEvent(turn int, phase string, player int, cardName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSendToGraveyard,
		Card:    cardName,
		Details: fmt.Sprintf("%s is sent to %s's Graveyard (%s)", cardName, playerName(player), reason),
	}
}

func NewBanishEvent(turn int, phase string, player int, cardName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventBanish,
		Card:    cardName,
		Details: fmt.Sprintf("%s is banished (%s)", cardName, reason),
	}
}

func NewAddToHandEvent(turn int, phase string, player int, cardName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAddToHand,
		Card:    cardName,
		Details: fmt.Sprintf("%s is added to %s's hand (%s)", cardName, playerName(player), reason),
	}
}

func NewReturnToHandEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventReturnToHand,
		Card:    cardName,
		Details: fmt.Sprintf("%s is returned to %s's hand", cardName, playerName(player)),
	}
}

func NewDiscardEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDiscard,
		Card:    cardName,
		Details: fmt.Sprintf("%s discards %s", playerName(player), cardName),
	}
}

func NewLPChangeEvent(turn int, phase string, player int, oldLP, newLP int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventLPChange,
		Details: fmt.Sprintf("%s LP: %d → %d (%s)", playerName(player), oldLP, newLP, reason),
	}
}

func NewModifierAddedEvent(turn int, phase string, player int, cardName string, atk, def int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventModifierAdded,
		Card:    cardName,
		Details: fmt.Sprintf("%s gains ATK %+d / DEF %+d", cardName, atk, def),
	}
}

func NewModifierExpiredEvent(turn int, phase string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventModifierExpired,
		Details: fmt.Sprintf("%d temporary modifier(s) expired", count),
	}
}

func NewFlipEvent(turn int, phase string, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventFlip,
		Card:    cardName,
		Details: fmt.Sprintf("%s is flipped face-up", cardName),
	}
}

func NewShuffleEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventShuffle,
		Details: fmt.Sprintf("%s shuffled their deck", playerName(player)),
	}
}

func NewDeckOutEvent(turn int, phase string, player int, wanted, drawn int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDeckOut,
		Details: fmt.Sprintf("%s cannot draw (wanted %d, drew %d)", playerName(player), wanted, drawn),
	}
}

func NewSurrenderEvent(turn int, phase string, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSurrender,
		Details: fmt.Sprintf("%s surrenders", playerName(player)),
	}
}

func NewWinEvent(turn int, phase string, winner int, reason string) GameEvent {
	if winner < 0 {
		return GameEvent{
			Turn:    turn,
			Phase:   phase,
			Player:  winner,
			Type:    EventWin,
			Details: fmt.Sprintf("Match drawn (%s)", reason),
		}
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", playerName(winner), reason),
	}
}
