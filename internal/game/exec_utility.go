package game

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/log"
)

func (d *duel) execUtility(x *execution) error {
	switch x.eff.Op {
	case OpDraw:
		p := x.eff.Params.Player.resolve(x.controller())
		x.res.Drawn = d.drawCards(p, x.eff.Params.Amount)
		return nil
	case OpNegate:
		return d.execNegate(x)
	case OpStatAura, OpProtect:
		return fmt.Errorf("%s is continuous and cannot resolve on the chain", x.eff.Op)
	}
	return fmt.Errorf("%s is not a utility operation", x.eff.Op)
}

// execNegate marks the answered chain link negated, or cancels the pending
// attack or summon. A link that already resolved or was negated is a no-op.
func (d *duel) execNegate(x *execution) error {
	st := d.st
	switch x.eff.Params.Target {
	case TargetChainLink:
		for i := range st.Chain.Links {
			l := &st.Chain.Links[i]
			if l.Index != x.link.TargetLink {
				continue
			}
			if l.Negated {
				break
			}
			l.Negated = true
			d.log(log.NewChainNegatedEvent(st.Turn, d.phase(), x.controller(), d.name(l.Card), l.Index))
			x.res.Negated = append(x.res.Negated, l.Index)
			return nil
		}
	case TargetPendingAction:
		if st.Pending != nil && !st.Pending.Negated {
			st.Pending.Negated = true
			x.res.AttackNegated = st.Pending.Kind == PendingAttack
			return nil
		}
	}
	x.res.NoOp = true
	return nil
}
