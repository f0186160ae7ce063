package game

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/log"
)

func (d *duel) execCombat(x *execution) error {
	switch x.eff.Op {
	case OpDamage:
		p := x.eff.Params.Player.resolve(x.controller())
		d.damage(p, x.eff.Params.Amount, fmt.Sprintf("effect of %s", d.name(x.source())))
		x.res.LPChanges[p] -= x.eff.Params.Amount
		return nil
	case OpHeal:
		p := x.eff.Params.Player.resolve(x.controller())
		d.heal(p, x.eff.Params.Amount, fmt.Sprintf("effect of %s", d.name(x.source())))
		x.res.LPChanges[p] += x.eff.Params.Amount
		return nil
	case OpModifyStats:
		return d.execModifyStats(x)
	case OpChangePosition:
		return d.execChangePosition(x)
	}
	return fmt.Errorf("%s is not a combat operation", x.eff.Op)
}

// execModifyStats attaches temporary modifiers to the resolved creatures.
// Overrides and deltas on the same effect become two modifiers, override first.
func (d *duel) execModifyStats(x *execution) error {
	targets := d.resolveCreatures(x)
	if len(targets) == 0 {
		x.res.NoOp = true
		return nil
	}
	st := d.st
	p := &x.eff.Params
	for _, id := range targets {
		if p.HasSetATK || p.HasSetDEF {
			addModifier(st, TemporaryModifier{
				Target: id, Source: x.source(), Kind: ModSet,
				ATK: p.SetATK, DEF: p.SetDEF, HasATK: p.HasSetATK, HasDEF: p.HasSetDEF,
				Expiry: p.Duration,
			})
		}
		if p.ATK != 0 || p.DEF != 0 {
			addModifier(st, TemporaryModifier{
				Target: id, Source: x.source(), Kind: ModAdd,
				ATK: p.ATK, DEF: p.DEF,
				Expiry: p.Duration,
			})
		}
		d.log(log.NewModifierAddedEvent(st.Turn, d.phase(), st.Locate(id).Player, d.name(id), p.ATK, p.DEF))
	}
	Recompute(st, d.cat)
	return nil
}

// execChangePosition switches ATK and DEF. A face-down creature is flipped
// face-up in attack position.
func (d *duel) execChangePosition(x *execution) error {
	targets := d.resolveCreatures(x)
	if len(targets) == 0 {
		x.res.NoOp = true
		return nil
	}
	st := d.st
	for _, id := range targets {
		loc := st.Locate(id)
		b := st.Sides[loc.Player].Board[loc.Index]
		if b.Face == FaceDown {
			b.Face = FaceUp
			b.Position = PositionATK
			d.log(log.NewFlipEvent(st.Turn, d.phase(), loc.Player, d.name(id)))
			d.raise(TriggerEvent{Kind: log.EventFlip, Player: loc.Player, Card: id, FaceUp: true})
		} else if b.Position == PositionATK {
			b.Position = PositionDEF
		} else {
			b.Position = PositionATK
		}
		d.log(log.NewChangePositionEvent(st.Turn, d.phase(), loc.Player, d.name(id), b.Position.String()))
	}
	Recompute(st, d.cat)
	return nil
}
