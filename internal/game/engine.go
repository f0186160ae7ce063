package game

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/peterkuimelis/duelcore/internal/log"
)

const maxSettleSteps = 10000

// Rules holds the tunable match rules.
type Rules struct {
	StartingLP int
	HandSize   int
	MaxTurns   int // 0 = no limit; reaching it ends the match in a draw
}

// DefaultRules returns the standard rules: 8000 LP, 5-card opening hands.
func DefaultRules() Rules {
	return Rules{StartingLP: DefaultStartingLP, HandSize: DefaultHandSize}
}

// Engine applies actions to match states. It holds no per-match state and
// is safe for concurrent use on different matches.
type Engine struct {
	catalog *Catalog
	rules   Rules
	logger  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules overrides the default rules. Zero fields keep their defaults.
func WithRules(r Rules) Option {
	return func(e *Engine) {
		if r.StartingLP > 0 {
			e.rules.StartingLP = r.StartingLP
		}
		if r.HandSize > 0 {
			e.rules.HandSize = r.HandSize
		}
		e.rules.MaxTurns = r.MaxTurns
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over a validated catalog.
func NewEngine(cat *Catalog, opts ...Option) *Engine {
	e := &Engine{catalog: cat, rules: DefaultRules(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's card catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Rules returns the rules in effect.
func (e *Engine) Rules() Rules {
	return e.rules
}

// MatchConfig describes a new match. Decks list card IDs top-first.
type MatchConfig struct {
	ID        string
	Players   [2]string
	Decks     [2][]string
	Seed      uint64
	NoShuffle bool // keep deck order (for deterministic tests)
}

// duel is the working context of one Submit call.
type duel struct {
	e      *Engine
	st     *MatchState
	cat    *Catalog
	rng    *pcgSource
	events []log.GameEvent
	queue  []TriggerEvent
}

func (d *duel) log(event log.GameEvent) {
	event.MatchID = d.st.ID
	d.events = append(d.events, event)
}

func (d *duel) phase() string {
	return d.st.Phase.String()
}

func (d *duel) name(id int) string {
	return cardName(d.st, d.cat, id)
}

// NewMatch shuffles both decks, deals opening hands and plays the first
// player's Draw and Standby phases. The returned state waits in Main Phase 1
// unless a trigger needs a decision first.
func (e *Engine) NewMatch(cfg MatchConfig) (*MatchState, []log.GameEvent, error) {
	st := NewMatchState(cfg.ID, e.rules.StartingLP)
	st.PlayerIDs = cfg.Players
	d := &duel{e: e, st: st, cat: e.catalog, rng: newPCGSource(cfg.Seed)}

	for p, deck := range cfg.Decks {
		if len(deck) < e.rules.HandSize {
			return nil, nil, fmt.Errorf("player %d deck has %d cards, need at least %d", p+1, len(deck), e.rules.HandSize)
		}
		side := st.Sides[p]
		// top-first input; the top of a deck is its last element
		for i := len(deck) - 1; i >= 0; i-- {
			if _, ok := e.catalog.Card(deck[i]); !ok {
				return nil, nil, fmt.Errorf("player %d deck: unknown card %q", p+1, deck[i])
			}
			side.Deck = append(side.Deck, st.newInstance(deck[i], p, nil))
		}
		if !cfg.NoShuffle {
			shuffleIDs(d.rng, side.Deck)
		}
	}

	for range e.rules.HandSize {
		for p := range st.Sides {
			st.Sides[p].DrawCard()
		}
	}

	st.Turn = 1
	st.TurnPlayer = 0
	st.OPT.TurnOwner = 0
	d.log(log.NewMatchStartEvent(e.rules.StartingLP))
	d.log(log.NewTurnEvent(st.Turn, st.TurnPlayer))
	d.setPhase(PhaseDraw)
	d.drawCards(st.TurnPlayer, 1)
	st.Advancing = true

	if err := d.settle(); err != nil {
		e.logFailure(st, err)
		return nil, nil, err
	}
	st.RNG = d.rng.marshal()
	e.logger.Info("match started",
		zap.String("match", st.ID),
		zap.String("p1", st.PlayerIDs[0]),
		zap.String("p2", st.PlayerIDs[1]),
		zap.Uint64("seed", cfg.Seed))
	return st, d.events, nil
}

// Submit applies one action to a copy of ms and runs the match forward until
// a player has to decide again. On error ms is untouched and the returned
// error is an *ActionError for rejected actions.
func (e *Engine) Submit(ms *MatchState, a Action) (*MatchState, []log.GameEvent, error) {
	if ms.Over {
		return nil, nil, reject(ReasonMatchOver, "the match is over: %s", ms.Result)
	}
	st := ms.Clone()
	rng, err := restorePCGSource(st.RNG)
	if err != nil {
		return nil, nil, err
	}
	d := &duel{e: e, st: st, cat: e.catalog, rng: rng}

	if err := d.apply(a); err != nil {
		var ae *ActionError
		if errors.As(err, &ae) {
			e.logger.Debug("action rejected",
				zap.String("match", ms.ID),
				zap.Stringer("action", a.Type),
				zap.Int("player", a.Player),
				zap.String("reason", string(ae.Reason)))
		} else {
			e.logFailure(st, err)
		}
		return nil, nil, err
	}
	if err := d.settle(); err != nil {
		e.logFailure(st, err)
		return nil, nil, err
	}
	st.RNG = d.rng.marshal()
	return st, d.events, nil
}

// AvailableActions lists the actions seat may submit now. It does not modify ms.
func (e *Engine) AvailableActions(ms *MatchState, seat int) []Action {
	if ms.Over || seat < 0 || seat > 1 {
		return nil
	}
	d := &duel{e: e, st: ms, cat: e.catalog}
	return d.availableActions(seat)
}

func (e *Engine) logFailure(st *MatchState, err error) {
	var ie *InvariantError
	if errors.As(err, &ie) {
		e.logger.Error("board invariant violated",
			zap.String("match", st.ID),
			zap.String("check", ie.Check),
			zap.String("detail", ie.Detail),
			zap.Int("turn", st.Turn))
		return
	}
	e.logger.Error("match step failed", zap.String("match", st.ID), zap.Error(err))
}

// refresh recomputes derived stats and applies state-based actions.
func (d *duel) refresh() error {
	st := d.st
	wasOver := st.Over
	Recompute(st, d.cat)
	rep, err := Sweep(st)
	for _, t := range rep.TokensRemoved {
		d.log(log.NewTokenRemovedEvent(st.Turn, d.phase(), t.Player, t.Name, fmt.Sprintf("left the board for the %s", t.Zone)))
	}
	if err != nil {
		return err
	}
	if rep.Ended && !wasOver {
		d.log(log.NewWinEvent(st.Turn, d.phase(), st.Winner, st.Result))
	}
	return nil
}

// settle runs everything that needs no player decision: state-based actions,
// trigger collection, auto-passes, chain resolution, pending attacks and
// summons, and phase advancement.
func (d *duel) settle() error {
	st := d.st
	for step := 0; step < maxSettleSteps; step++ {
		if err := d.refresh(); err != nil {
			return err
		}
		if st.Over {
			d.queue = nil
			return nil
		}
		if err := d.collectTriggers(); err != nil {
			return err
		}
		if len(st.Offers) > 0 {
			return nil
		}

		if st.Window.Open {
			if d.hasResponse(st.Window.Holder) {
				return nil
			}
			d.pass(st.Window.Holder, false)
			continue
		}

		if len(st.Chain.Links) > 0 {
			if err := d.resolveTop(); err != nil {
				return err
			}
			if len(st.Chain.Links) > 0 {
				st.Window = Window{Open: true, Holder: st.TurnPlayer}
			}
			continue
		}
		st.Chain.State = ChainIdle

		if len(st.Deferred) > 0 {
			if err := d.flushDeferred(); err != nil {
				return err
			}
			continue
		}
		if st.Pending != nil {
			if err := d.resolvePending(); err != nil {
				return err
			}
			continue
		}
		if st.Advancing {
			d.advance()
			continue
		}
		return nil
	}
	return &InvariantError{Check: "settle_converges", Detail: fmt.Sprintf("no decision point after %d steps", maxSettleSteps)}
}

// apply validates and performs one player action.
func (d *duel) apply(a Action) error {
	st := d.st
	if a.Player < 0 || a.Player > 1 {
		return reject(ReasonUnknownAction, "player %d is not seated", a.Player)
	}
	if a.Type == ActionSurrender {
		d.surrender(a.Player)
		return nil
	}

	if len(st.Offers) > 0 {
		if a.Player != st.Offers[0].Controller {
			return reject(ReasonNoPriority, "P%d is deciding on %s", st.Offers[0].Controller+1, d.name(st.Offers[0].Card))
		}
		switch a.Type {
		case ActionRespond, ActionActivate:
			return d.acceptOffer(a)
		case ActionPass:
			d.declineOffer()
			return nil
		}
		return reject(ReasonPendingDecision, "activate or decline %s first", d.name(st.Offers[0].Card))
	}

	if st.Window.Open {
		if a.Player != st.Window.Holder {
			return reject(ReasonNoPriority, "P%d holds priority", st.Window.Holder+1)
		}
		switch a.Type {
		case ActionRespond, ActionActivate:
			return d.activate(a, true)
		case ActionPass:
			d.pass(a.Player, true)
			return nil
		}
		return reject(ReasonNoPriority, "only responses are allowed while priority is open")
	}

	if a.Player != st.TurnPlayer {
		return reject(ReasonNotYourTurn, "it is P%d's turn", st.TurnPlayer+1)
	}
	switch a.Type {
	case ActionNormalSummon:
		return d.normalSummon(a)
	case ActionSet:
		return d.setCard(a)
	case ActionFlipSummon:
		return d.flipSummon(a)
	case ActionChangePosition:
		return d.changePosition(a)
	case ActionActivate:
		return d.activate(a, false)
	case ActionAttack:
		return d.declareAttack(a)
	case ActionRespond, ActionPass:
		return reject(ReasonNoPriority, "nothing to respond to")
	case ActionEnterBattlePhase:
		if st.Phase != PhaseMain1 {
			return reject(ReasonWrongPhase, "the Battle Phase follows Main Phase 1, not %s", st.Phase)
		}
		if st.Turn == 1 {
			return reject(ReasonCannotAttack, "the first player cannot attack on turn 1")
		}
		d.setPhase(PhaseBattle)
		return nil
	case ActionEnterMainPhase2:
		if st.Phase != PhaseBattle {
			return reject(ReasonWrongPhase, "Main Phase 2 follows the Battle Phase, not %s", st.Phase)
		}
		d.setPhase(PhaseMain2)
		return nil
	case ActionEndTurn:
		if !st.Phase.IsMain() && st.Phase != PhaseBattle {
			return reject(ReasonWrongPhase, "cannot end the turn during the %s", st.Phase)
		}
		st.Advancing = true
		return nil
	}
	return reject(ReasonUnknownAction, "unknown action type %d", a.Type)
}

// advance moves to the next phase. Advancing stops when Main Phase 1 is reached.
func (d *duel) advance() {
	st := d.st
	switch st.Phase {
	case PhaseDraw:
		d.setPhase(PhaseStandby)
		d.raise(TriggerEvent{Kind: log.EventPhaseChange, Player: st.TurnPlayer, Phase: PhaseStandby})
	case PhaseStandby:
		d.setPhase(PhaseMain1)
		st.Advancing = false
	case PhaseMain1, PhaseBattle, PhaseMain2:
		d.setPhase(PhaseEnd)
		d.raise(TriggerEvent{Kind: log.EventPhaseChange, Player: st.TurnPlayer, Phase: PhaseEnd})
	case PhaseEnd:
		d.enforceHandLimit()
		d.startTurn()
	default:
		st.Advancing = false
	}
}

// enforceHandLimit discards random cards until the turn player holds MaxHandSize.
func (d *duel) enforceHandLimit() {
	st := d.st
	side := st.Sides[st.TurnPlayer]
	for len(side.Hand) > MaxHandSize {
		id := side.Hand[d.rng.IntN(len(side.Hand))]
		side.Hand, _ = removeID(side.Hand, id)
		side.Graveyard = append(side.Graveyard, id)
		d.log(log.NewDiscardEvent(st.Turn, d.phase(), st.TurnPlayer, d.name(id)))
	}
}

// startTurn passes the turn to the opponent and performs the Draw Phase draw.
func (d *duel) startTurn() {
	st := d.st
	if n := expireModifiers(st, UntilEndOfTurn, st.Phase); n > 0 {
		d.log(log.NewModifierExpiredEvent(st.Turn, d.phase(), n))
	}
	for _, s := range st.Sides {
		s.NormalSummonUsed = false
		for _, b := range s.Board {
			if b != nil {
				b.HasAttacked = false
				b.PositionChanged = false
			}
		}
	}
	if limit := d.e.rules.MaxTurns; limit > 0 && st.Turn >= limit {
		st.end(-1, fmt.Sprintf("turn limit reached (%d turns)", limit))
		d.log(log.NewWinEvent(st.Turn, d.phase(), -1, st.Result))
		return
	}

	st.TurnPlayer = st.Opponent(st.TurnPlayer)
	st.Turn++
	st.OPT.TurnChanged(st.TurnPlayer)
	d.log(log.NewTurnEvent(st.Turn, st.TurnPlayer))
	d.setPhase(PhaseDraw)
	d.drawCards(st.TurnPlayer, 1)
}

// setPhase changes phase, expiring modifiers that last until the end of the old one.
func (d *duel) setPhase(p Phase) {
	st := d.st
	if st.Phase != PhaseNone {
		if n := expireModifiers(st, UntilEndOfPhase, st.Phase); n > 0 {
			d.log(log.NewModifierExpiredEvent(st.Turn, d.phase(), n))
		}
	}
	st.Phase = p
	d.log(log.NewPhaseChangeEvent(st.Turn, p.String()))
}

// resolvePending carries out the declared attack or summon once its window closed.
func (d *duel) resolvePending() error {
	p := *d.st.Pending
	d.st.Pending = nil
	switch p.Kind {
	case PendingAttack:
		d.resolveAttack(p)
	case PendingSummon:
		d.resolveSummon(p)
	default:
		return fmt.Errorf("unknown pending action kind %d", p.Kind)
	}
	return nil
}

// --- zone helpers ---

// placeCreature puts a detached card into the first free board slot of player.
func (d *duel) placeCreature(player, id int, pos Position, face FaceStatus) int {
	side := d.st.Sides[player]
	slot := side.FreeBoardSlot()
	side.Board[slot] = &BoardCard{
		Card:       id,
		Position:   pos,
		Face:       face,
		TurnPlaced: d.st.Turn,
		Token:      d.st.Cards[id].IsToken(),
	}
	return slot
}

// sendToGraveyard moves a card to its owner's graveyard. Tokens are removed
// from play instead.
func (d *duel) sendToGraveyard(id int, reason string) {
	st := d.st
	name := d.name(id)
	loc := st.detach(id)
	if !loc.Found() {
		return
	}
	ci := st.Cards[id]
	if ci.IsToken() {
		delete(st.Cards, id)
		d.log(log.NewTokenRemovedEvent(st.Turn, d.phase(), loc.Player, name, reason))
		return
	}
	st.Sides[ci.Owner].Graveyard = append(st.Sides[ci.Owner].Graveyard, id)
	d.log(log.NewSendToGraveyardEvent(st.Turn, d.phase(), ci.Owner, name, reason))
}

// destroy destroys a field card by a card effect. Creatures protected from
// effect destruction stay. Returns whether the card was destroyed.
func (d *duel) destroy(id int, reason string) bool {
	st := d.st
	loc := st.Locate(id)
	if !loc.Zone.OnField() {
		return false
	}
	faceUp := true
	if loc.Zone == ZoneBoard {
		b := st.Sides[loc.Player].Board[loc.Index]
		if b.NoEffectDestroy {
			return false
		}
		faceUp = b.Face == FaceUp
	} else if loc.Zone == ZoneSpellTrap {
		faceUp = st.Sides[loc.Player].SpellTrap[loc.Index].Face == FaceUp
	}
	d.log(log.NewDestroyEvent(st.Turn, d.phase(), loc.Player, d.name(id), reason))
	d.sendToGraveyard(id, reason)
	d.raise(TriggerEvent{Kind: log.EventDestroy, Player: loc.Player, Card: id, FaceUp: faceUp})
	return true
}

// changeLP adjusts a player's LP, flooring at 0.
func (d *duel) changeLP(player, delta int, reason string) {
	st := d.st
	side := st.Sides[player]
	old := side.LP
	side.LP = max(side.LP+delta, 0)
	d.log(log.NewLPChangeEvent(st.Turn, d.phase(), player, old, side.LP, reason))
}

// damage reduces LP and raises the damage-taken trigger.
func (d *duel) damage(player, amount int, reason string) {
	if amount <= 0 {
		return
	}
	d.changeLP(player, -amount, reason)
	d.raise(TriggerEvent{Kind: log.EventLPChange, Player: player})
}

func (d *duel) heal(player, amount int, reason string) {
	d.changeLP(player, amount, reason)
}

// drawCards draws n cards. A player who cannot draw them all loses.
func (d *duel) drawCards(player, n int) []int {
	st := d.st
	side := st.Sides[player]
	var drawn []int
	for range n {
		id := side.DrawCard()
		if id == 0 {
			d.log(log.NewDeckOutEvent(st.Turn, d.phase(), player, n, len(drawn)))
			st.end(st.Opponent(player), fmt.Sprintf("P%d could not draw", player+1))
			d.log(log.NewWinEvent(st.Turn, d.phase(), st.Winner, st.Result))
			return drawn
		}
		drawn = append(drawn, id)
		d.log(log.NewDrawEvent(st.Turn, d.phase(), player, d.name(id)))
	}
	if len(drawn) > 0 {
		d.raise(TriggerEvent{Kind: log.EventDraw, Player: player, Card: drawn[len(drawn)-1]})
	}
	return drawn
}

func (d *duel) surrender(player int) {
	st := d.st
	d.log(log.NewSurrenderEvent(st.Turn, d.phase(), player))
	st.end(st.Opponent(player), fmt.Sprintf("P%d surrendered", player+1))
	d.log(log.NewWinEvent(st.Turn, d.phase(), st.Winner, st.Result))
}
