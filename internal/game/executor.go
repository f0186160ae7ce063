package game

import "fmt"

// Category groups operations by the executor that carries them out.
type Category int

const (
	CategoryInvalid Category = iota
	CategoryMovement
	CategoryCombat
	CategorySummoning
	CategoryUtility
)

// Category returns the executor category of an operation.
func (o OpKind) Category() Category {
	switch o {
	case OpDestroy, OpBanish, OpReturnToHand, OpSearch, OpDiscard, OpMill:
		return CategoryMovement
	case OpDamage, OpHeal, OpModifyStats, OpChangePosition:
		return CategoryCombat
	case OpSpecialSummon, OpCreateToken:
		return CategorySummoning
	case OpDraw, OpNegate, OpStatAura, OpProtect:
		return CategoryUtility
	}
	return CategoryInvalid
}

// Move records one card changing zones during an effect.
type Move struct {
	Card   int      `json:"card"`
	Player int      `json:"player"`
	From   ZoneType `json:"from"`
	To     ZoneType `json:"to"`
}

// ExecutionResult summarizes what a resolved effect did.
type ExecutionResult struct {
	Op            OpKind
	Moved         []Move
	LPChanges     [2]int
	Drawn         []int
	TokensCreated []int
	Negated       []int // chain link indices
	AttackNegated bool
	NoOp          bool
}

// execution is the context of one resolving link.
type execution struct {
	link *ChainLink
	eff  *Effect
	res  *ExecutionResult
}

func (x *execution) controller() int { return x.link.Controller }

func (x *execution) source() int { return x.link.Card }

// execute runs the operation of a chain link through its category executor.
func (d *duel) execute(link *ChainLink) (*ExecutionResult, error) {
	x := &execution{link: link, eff: &link.Effect, res: &ExecutionResult{Op: link.Effect.Op}}
	var err error
	switch link.Effect.Op.Category() {
	case CategoryMovement:
		err = d.execMovement(x)
	case CategoryCombat:
		err = d.execCombat(x)
	case CategorySummoning:
		err = d.execSummoning(x)
	case CategoryUtility:
		err = d.execUtility(x)
	default:
		err = fmt.Errorf("operation %d has no executor", link.Effect.Op)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve chain link %d (%s): %w", link.Index, d.name(link.Card), err)
	}
	return x.res, nil
}

// resolveCards returns the field cards an effect acts on at resolution:
// captured targets that are still valid, or everything a non-targeting selector covers.
func (d *duel) resolveCards(x *execution) []int {
	st := d.st
	p := &x.eff.Params
	switch {
	case p.Target == TargetThisCard:
		if st.Locate(x.source()).Zone.OnField() {
			return []int{x.source()}
		}
		return nil
	case p.Target == TargetEventCard:
		if x.link.EventCard != 0 && st.Locate(x.link.EventCard).Zone.OnField() {
			return []int{x.link.EventCard}
		}
		return nil
	case x.eff.needsTargets():
		var out []int
		for _, id := range x.link.Targets {
			if stillValidTarget(st, x.eff, id) {
				out = append(out, id)
			}
		}
		return out
	case p.All && p.Target.creatures():
		return scopeCreatures(st, d.cat, p.Target, p.Filter, x.controller(), x.source())
	case p.All && p.Target.spellTraps():
		return scopeSpellTraps(st, d.cat, p.Target, p.Filter, x.controller(), x.source())
	}
	return nil
}

// resolveCreatures is resolveCards restricted to board creatures.
func (d *duel) resolveCreatures(x *execution) []int {
	var out []int
	for _, id := range d.resolveCards(x) {
		if d.st.BoardCard(id) != nil {
			out = append(out, id)
		}
	}
	return out
}

func (x *execution) count() int {
	if x.eff.Params.Count > 0 {
		return x.eff.Params.Count
	}
	return 1
}

// leaveField is where a card leaving the field ends up. Tokens are removed
// from play instead (ZoneNone).
func leaveField(ms *MatchState, id int, to ZoneType) ZoneType {
	if ci := ms.Cards[id]; ci != nil && ci.Token != nil {
		return ZoneNone
	}
	return to
}

func (x *execution) moved(card, player int, from, to ZoneType) {
	x.res.Moved = append(x.res.Moved, Move{Card: card, Player: player, From: from, To: to})
}
