package game

import "fmt"

// availableActions derives the legal actions for seat from the current
// decision point: an offered trigger, an open priority window, or the turn
// player's open game state. Surrender is always available.
func (d *duel) availableActions(seat int) []Action {
	st := d.st
	var actions []Action

	switch {
	case len(st.Offers) > 0:
		c := st.Offers[0]
		if c.Controller == seat {
			a := Action{
				Type:   ActionRespond,
				Player: seat,
				Card:   c.Card,
				Effect: c.EffectIndex,
				Desc:   fmt.Sprintf("Activate %s (%s)", d.name(c.Card), c.Trigger),
			}
			if eff := d.triggerEffect(c); eff != nil && eff.needsTargets() {
				a.Candidates = targetCandidates(st, d.cat, eff, c.Controller, c.Card)
				a.TargetCount = min(eff.targetCount(), len(a.Candidates))
			}
			actions = append(actions, a, Action{Type: ActionPass, Player: seat, Desc: "Decline"})
		}

	case st.Window.Open:
		if st.Window.Holder == seat {
			actions = append(actions, d.activationChoices(seat, true)...)
			actions = append(actions, Action{Type: ActionPass, Player: seat, Desc: "Pass"})
		}

	case seat == st.TurnPlayer:
		switch st.Phase {
		case PhaseMain1, PhaseMain2:
			actions = append(actions, d.computeMainPhaseActions(seat)...)
		case PhaseBattle:
			actions = append(actions, d.computeBattlePhaseActions(seat)...)
		}
		actions = append(actions, d.activationChoices(seat, false)...)
		if st.Phase == PhaseMain1 && st.Turn > 1 {
			actions = append(actions, Action{Type: ActionEnterBattlePhase, Player: seat, Desc: "Enter Battle Phase"})
		}
		if st.Phase == PhaseBattle {
			actions = append(actions, Action{Type: ActionEnterMainPhase2, Player: seat, Desc: "Enter Main Phase 2"})
		}
		if st.Phase.IsMain() || st.Phase == PhaseBattle {
			actions = append(actions, Action{Type: ActionEndTurn, Player: seat, Desc: "End turn"})
		}
	}

	return append(actions, Action{Type: ActionSurrender, Player: seat, Desc: "Surrender"})
}
