package game

import "github.com/peterkuimelis/duelcore/internal/log"

// PlacementEffect is the effect index used to place a continuous or field
// card that has no manual effect of its own.
const PlacementEffect = -1

// activation is a checked request to activate an effect.
type activation struct {
	card   int
	def    *CardDef
	effIdx int
	eff    *Effect // nil for a placement
	loc    Location
	// flips or plays the spell/trap card itself, as opposed to using an
	// effect of a card already face-up
	cardActivation bool
}

// checkActivation decides whether player may activate effIdx of card now.
// window is true when answering a chain or a declared attack or summon.
func (d *duel) checkActivation(player, card, effIdx int, window bool) (*activation, *ActionError) {
	st := d.st
	ci := st.Cards[card]
	if ci == nil {
		return nil, reject(ReasonCardNotFound, "no card #%d", card)
	}
	loc := st.Locate(card)
	if !loc.Found() || loc.Player != player {
		return nil, reject(ReasonCardNotFound, "card #%d is not yours to activate", card)
	}
	def := defOf(st, d.cat, card)
	if def == nil {
		return nil, reject(ReasonCannotActivate, "%s has no effects", d.name(card))
	}
	act := &activation{card: card, def: def, effIdx: effIdx, loc: loc}
	ownTurn := st.TurnPlayer == player

	switch loc.Zone {
	case ZoneHand:
		if def.Kind != KindSpell {
			return nil, reject(ReasonCannotActivate, "only spells can be activated from the hand")
		}
		if !ownTurn {
			return nil, reject(ReasonNotYourTurn, "spells are activated from the hand on your own turn")
		}
		if def.SpellSub != SpellField && st.Sides[player].FreeSpellTrapSlot() < 0 {
			return nil, reject(ReasonZoneFull, "no free spell/trap zone")
		}
		act.cardActivation = true
	case ZoneSpellTrap:
		set := st.Sides[player].SpellTrap[loc.Index]
		if set.Face == FaceDown {
			switch {
			case def.Kind == KindTrap, def.SpellSub == SpellQuickPlay:
				if set.TurnSet >= st.Turn {
					return nil, reject(ReasonCannotActivate, "%s was set this turn", d.name(card))
				}
			case !ownTurn:
				return nil, reject(ReasonNotYourTurn, "set spells are activated on your own turn")
			}
			act.cardActivation = true
		} else if !def.persistent() {
			return nil, reject(ReasonCannotActivate, "%s is already resolving", d.name(card))
		}
	case ZoneField:
		if st.Sides[player].Field.Face != FaceUp {
			return nil, reject(ReasonCannotActivate, "%s is face-down", d.name(card))
		}
	case ZoneBoard:
		if st.Sides[player].Board[loc.Index].Face != FaceUp {
			return nil, reject(ReasonCannotActivate, "face-down creatures cannot activate effects")
		}
	default:
		return nil, reject(ReasonCannotActivate, "%s cannot be activated from the %s", d.name(card), loc.Zone)
	}

	if effIdx == PlacementEffect {
		if !act.cardActivation || !def.persistent() || def.manualEffect() {
			return nil, reject(ReasonCannotActivate, "%s has an effect to activate", d.name(card))
		}
		if window || !ownTurn || !st.Phase.IsMain() {
			return nil, reject(ReasonWrongPhase, "continuous cards are placed during your Main Phase")
		}
		return act, nil
	}

	if effIdx < 0 || effIdx >= len(def.Effects) {
		return nil, reject(ReasonCannotActivate, "%s has no effect %d", d.name(card), effIdx)
	}
	eff := &def.Effects[effIdx]
	if eff.Trigger != TriggerManual {
		return nil, reject(ReasonCannotActivate, "effect %d of %s is %s, not manual", effIdx, d.name(card), eff.Trigger)
	}
	act.eff = eff
	if !st.OPT.CanActivate(card, effIdx, eff.Limit) {
		return nil, reject(ReasonLimitReached, "%s can only be used %s", d.name(card), eff.Limit)
	}

	if window {
		if eff.Speed < Speed2 {
			return nil, reject(ReasonSpellSpeedTooLow, "speed 1 effects cannot be used as responses")
		}
		if top := st.Chain.TopSpeed(); eff.Speed < top {
			return nil, reject(ReasonSpellSpeedTooLow, "speed %d cannot respond to speed %d", eff.Speed, top)
		}
	} else if eff.Speed == Speed1 && !st.Phase.IsMain() {
		return nil, reject(ReasonWrongPhase, "speed 1 effects are used in a Main Phase")
	}

	switch eff.Params.Target {
	case TargetChainLink:
		if len(st.Chain.Links) == 0 {
			return nil, reject(ReasonCannotActivate, "there is no chain link to negate")
		}
	case TargetPendingAction:
		if st.Pending == nil || st.Pending.Negated {
			return nil, reject(ReasonCannotActivate, "there is no declared attack or summon to negate")
		}
	}
	if eff.needsTargets() && len(targetCandidates(st, d.cat, eff, player, card)) == 0 {
		return nil, reject(ReasonCannotActivate, "no legal targets")
	}
	return act, nil
}

// activate plays or uses a card effect and puts it on the chain.
func (d *duel) activate(a Action, window bool) error {
	st := d.st
	act, aerr := d.checkActivation(a.Player, a.Card, a.Effect, window)
	if aerr != nil {
		return aerr
	}
	var targets []int
	if act.eff != nil && act.eff.needsTargets() {
		if err := checkTargets(st, d.cat, act.eff, a.Player, a.Card, a.Targets); err != nil {
			return err
		}
		targets = append([]int(nil), a.Targets...)
	}

	if act.cardActivation {
		d.playSpellTrap(act)
	}
	d.log(log.NewActivateEvent(st.Turn, d.phase(), a.Player, d.name(a.Card)))
	if act.eff == nil {
		return nil
	}

	link := ChainLink{
		Card:        a.Card,
		Controller:  a.Player,
		Speed:       act.eff.Speed,
		DefID:       act.def.ID,
		EffectIndex: a.Effect,
		Effect:      *act.eff,
		Targets:     targets,
		Activation:  act.cardActivation,
	}
	if act.eff.Params.Target == TargetChainLink {
		link.TargetLink = st.Chain.Links[len(st.Chain.Links)-1].Index
	}
	return d.pushLink(link)
}

// playSpellTrap moves an activated spell/trap face-up into its zone. A new
// field spell replaces the old one, which goes to the graveyard.
func (d *duel) playSpellTrap(act *activation) {
	st := d.st
	side := st.Sides[act.loc.Player]
	switch act.loc.Zone {
	case ZoneHand:
		side.Hand, _ = removeID(side.Hand, act.card)
		placed := &SetCard{Card: act.card, Face: FaceUp, TurnSet: st.Turn}
		if act.def.SpellSub == SpellField {
			if side.Field != nil {
				d.sendToGraveyard(side.Field.Card, "replaced by a new field spell")
			}
			side.Field = placed
			return
		}
		side.SpellTrap[side.FreeSpellTrapSlot()] = placed
	case ZoneSpellTrap:
		side.SpellTrap[act.loc.Index].Face = FaceUp
	}
}

// activationChoices lists every effect player could activate now, with target candidates.
func (d *duel) activationChoices(player int, window bool) []Action {
	st := d.st
	side := st.Sides[player]
	var ids []int
	ids = append(ids, side.Hand...)
	for _, b := range side.Board {
		if b != nil {
			ids = append(ids, b.Card)
		}
	}
	for _, s := range side.SpellTrap {
		if s != nil {
			ids = append(ids, s.Card)
		}
	}
	if side.Field != nil {
		ids = append(ids, side.Field.Card)
	}

	typ := ActionActivate
	if window {
		typ = ActionRespond
	}
	var out []Action
	for _, id := range ids {
		def := defOf(st, d.cat, id)
		if def == nil {
			continue
		}
		for i := PlacementEffect; i < len(def.Effects); i++ {
			act, err := d.checkActivation(player, id, i, window)
			if err != nil {
				continue
			}
			a := Action{Type: typ, Player: player, Card: id, Effect: i}
			if act.eff != nil {
				a.Desc = "Activate " + d.name(id) + " (" + act.eff.Op.String() + ")"
				if act.eff.needsTargets() {
					a.Candidates = targetCandidates(st, d.cat, act.eff, player, id)
					a.TargetCount = min(act.eff.targetCount(), len(a.Candidates))
				}
			} else {
				a.Desc = "Activate " + d.name(id)
			}
			out = append(out, a)
		}
	}
	return out
}

// hasResponse reports whether player could answer the open window.
func (d *duel) hasResponse(player int) bool {
	return len(d.activationChoices(player, true)) > 0
}
