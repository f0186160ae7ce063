package game

import (
	"slices"

	"github.com/peterkuimelis/duelcore/internal/log"
)

// TriggerEvent is a state change triggered effects can react to.
type TriggerEvent struct {
	Kind   log.EventType
	Player int // the player the event happened to or was performed by
	Card   int // subject card
	Other  int // destroyer for battle destruction, source of battle damage
	FaceUp bool
	Phase  Phase
}

// EligibleActivation is a triggered effect waiting to be put on the chain.
type EligibleActivation struct {
	Card        int        `json:"card"`
	Controller  int        `json:"controller"`
	EffectIndex int        `json:"effect"`
	Trigger     Trigger    `json:"trigger"`
	Optional    bool       `json:"optional,omitempty"`
	Speed       SpellSpeed `json:"speed"`
	EventCard   int        `json:"event_card,omitempty"`
	FromSet     bool       `json:"from_set,omitempty"` // a set trap that would be flipped to activate
}

func isSummonEvent(k log.EventType) bool {
	switch k {
	case log.EventNormalSummon, log.EventTributeSummon, log.EventFlipSummon, log.EventSpecialSummon:
		return true
	}
	return false
}

// triggerMatches reports whether a trigger on src (controlled by controller) fires for ev.
func triggerMatches(t Trigger, ev TriggerEvent, src, controller int) bool {
	switch t {
	case TriggerOnSummon:
		return isSummonEvent(ev.Kind) && src == ev.Card
	case TriggerOnFlip:
		return (ev.Kind == log.EventFlipSummon || ev.Kind == log.EventFlip) && src == ev.Card
	case TriggerOnDestroy:
		return (ev.Kind == log.EventDestroy || ev.Kind == log.EventBattleDestroy) && src == ev.Card && ev.FaceUp
	case TriggerOnBattleDestroy:
		return ev.Kind == log.EventBattleDestroy && src == ev.Other
	case TriggerOnBattleDamage:
		return ev.Kind == log.EventBattleDamage && src == ev.Other
	case TriggerOnOpponentSummon:
		return isSummonEvent(ev.Kind) && controller != ev.Player
	case TriggerOnAttackDeclared:
		return (ev.Kind == log.EventAttackDeclare || ev.Kind == log.EventDirectAttackDeclare) && controller != ev.Player
	case TriggerOnDamageTaken:
		return ev.Kind == log.EventLPChange && controller == ev.Player
	case TriggerOnDraw:
		return ev.Kind == log.EventDraw && controller == ev.Player
	case TriggerOnStandby:
		return ev.Kind == log.EventPhaseChange && ev.Phase == PhaseStandby && controller == ev.Player
	case TriggerOnEndPhase:
		return ev.Kind == log.EventPhaseChange && ev.Phase == PhaseEnd && controller == ev.Player
	}
	return false
}

// OnEvent returns the effects made eligible by ev, in activation order:
// subject cards that left the field first, then the turn player's side and
// then the opponent's; within a side board slots ascending, spell/trap slots
// ascending, then the field slot. Effects over their activation limit are skipped.
func OnEvent(ev TriggerEvent, ms *MatchState, cat *Catalog) []EligibleActivation {
	var out []EligibleActivation

	collect := func(src, controller int, selfOnly, fromSet bool) {
		def := defOf(ms, cat, src)
		if def == nil {
			return
		}
		for i := range def.Effects {
			eff := &def.Effects[i]
			if eff.Trigger == TriggerManual || eff.Trigger == TriggerContinuous {
				continue
			}
			if selfOnly && !eff.Trigger.selfReferential() {
				continue
			}
			if fromSet && eff.Trigger.selfReferential() {
				continue
			}
			if !triggerMatches(eff.Trigger, ev, src, controller) {
				continue
			}
			if !ms.OPT.CanActivate(src, i, eff.Limit) {
				continue
			}
			out = append(out, EligibleActivation{
				Card:        src,
				Controller:  controller,
				EffectIndex: i,
				Trigger:     eff.Trigger,
				Optional:    eff.Optional || fromSet,
				Speed:       eff.Speed,
				EventCard:   ev.Card,
				FromSet:     fromSet,
			})
		}
	}

	for _, subject := range []int{ev.Card, ev.Other} {
		if subject == 0 {
			continue
		}
		loc := ms.Locate(subject)
		switch loc.Zone {
		case ZoneGraveyard, ZoneBanished, ZoneHand:
			collect(subject, loc.Player, true, false)
		}
	}

	for _, p := range [2]int{ms.TurnPlayer, 1 - ms.TurnPlayer} {
		s := ms.Sides[p]
		for _, b := range s.Board {
			if b != nil && b.Face == FaceUp {
				collect(b.Card, p, false, false)
			}
		}
		for _, st := range s.SpellTrap {
			if st == nil {
				continue
			}
			switch {
			case st.Face == FaceUp:
				collect(st.Card, p, false, false)
			case st.TurnSet < ms.Turn && isTrap(ms, cat, st.Card):
				collect(st.Card, p, false, true)
			}
		}
		if s.Field != nil && s.Field.Face == FaceUp {
			collect(s.Field.Card, p, false, false)
		}
	}
	return out
}

func isTrap(ms *MatchState, cat *Catalog, id int) bool {
	def := defOf(ms, cat, id)
	return def != nil && def.Kind == KindTrap
}

// raise queues a trigger event for the next collection pass.
func (d *duel) raise(ev TriggerEvent) {
	if ev.Phase == PhaseNone {
		ev.Phase = d.st.Phase
	}
	d.queue = append(d.queue, ev)
}

// collectTriggers turns queued events into chain links, offers and deferrals.
func (d *duel) collectTriggers() error {
	for len(d.queue) > 0 {
		ev := d.queue[0]
		d.queue = d.queue[1:]
		for _, c := range OnEvent(ev, d.st, d.cat) {
			if err := d.dispatchTrigger(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// dispatchTrigger pushes a mandatory trigger, offers an optional one, or
// defers it until the chain is empty when it is slower than the top link.
func (d *duel) dispatchTrigger(c EligibleActivation) error {
	st := d.st
	if len(st.Chain.Links) > 0 && c.Speed < st.Chain.TopSpeed() {
		st.Deferred = append(st.Deferred, c)
		return nil
	}
	eff := d.triggerEffect(c)
	if eff == nil || !st.OPT.CanActivate(c.Card, c.EffectIndex, eff.Limit) {
		return nil
	}
	if eff.needsTargets() && len(targetCandidates(st, d.cat, eff, c.Controller, c.Card)) == 0 {
		return nil
	}
	if c.Optional {
		st.Offers = append(st.Offers, c)
		d.log(log.NewTriggerOfferedEvent(st.Turn, d.phase(), c.Controller, d.name(c.Card)))
		return nil
	}
	targets := d.autoTargets(eff, c)
	return d.pushTrigger(c, eff, targets)
}

func (d *duel) triggerEffect(c EligibleActivation) *Effect {
	def := defOf(d.st, d.cat, c.Card)
	if def == nil || c.EffectIndex < 0 || c.EffectIndex >= len(def.Effects) {
		return nil
	}
	return &def.Effects[c.EffectIndex]
}

// autoTargets picks targets for a mandatory trigger at random.
func (d *duel) autoTargets(eff *Effect, c EligibleActivation) []int {
	if eff.Params.Target == TargetEventCard {
		return []int{c.EventCard}
	}
	if !eff.needsTargets() {
		return nil
	}
	cands := append([]int(nil), targetCandidates(d.st, d.cat, eff, c.Controller, c.Card)...)
	shuffleIDs(d.rng, cands)
	return cands[:min(eff.targetCount(), len(cands))]
}

// pushTrigger puts a triggered effect on the chain, flipping a set trap face-up first.
func (d *duel) pushTrigger(c EligibleActivation, eff *Effect, targets []int) error {
	st := d.st
	if c.FromSet {
		loc := st.Locate(c.Card)
		if loc.Zone != ZoneSpellTrap {
			return nil
		}
		st.Sides[loc.Player].SpellTrap[loc.Index].Face = FaceUp
		d.log(log.NewActivateEvent(st.Turn, d.phase(), c.Controller, d.name(c.Card)))
	}
	if eff.Params.Target == TargetEventCard && c.EventCard != 0 {
		targets = []int{c.EventCard}
	}
	link := ChainLink{
		Card:        c.Card,
		Controller:  c.Controller,
		Speed:       eff.Speed,
		DefID:       st.Cards[c.Card].DefID,
		EffectIndex: c.EffectIndex,
		Effect:      *eff,
		Targets:     targets,
		EventCard:   c.EventCard,
		Activation:  c.FromSet,
		FromTrigger: true,
	}
	if eff.Op == OpNegate && eff.Params.Target == TargetChainLink {
		link.TargetLink = len(st.Chain.Links)
	}
	return d.pushLink(link)
}

// flushDeferred re-dispatches deferred triggers once the chain is empty.
func (d *duel) flushDeferred() error {
	pending := d.st.Deferred
	d.st.Deferred = nil
	for _, c := range pending {
		if _, ok := d.st.Cards[c.Card]; !ok {
			continue
		}
		if err := d.dispatchTrigger(c); err != nil {
			return err
		}
	}
	return nil
}

// acceptOffer activates the first offered trigger.
func (d *duel) acceptOffer(a Action) error {
	st := d.st
	c := st.Offers[0]
	if a.Card != 0 && (a.Card != c.Card || a.Effect != c.EffectIndex) {
		return reject(ReasonPendingDecision, "decide on %s first", d.name(c.Card))
	}
	eff := d.triggerEffect(c)
	if eff == nil {
		return reject(ReasonCannotActivate, "effect no longer available")
	}
	if !st.OPT.CanActivate(c.Card, c.EffectIndex, eff.Limit) {
		return reject(ReasonLimitReached, "%s was already used", d.name(c.Card))
	}
	var targets []int
	if eff.needsTargets() {
		if err := checkTargets(st, d.cat, eff, c.Controller, c.Card, a.Targets); err != nil {
			return err
		}
		targets = a.Targets
	}
	if len(st.Chain.Links) > 0 && c.Speed < st.Chain.TopSpeed() {
		return reject(ReasonSpellSpeedTooLow, "speed %d cannot respond to speed %d", c.Speed, st.Chain.TopSpeed())
	}
	st.Offers = st.Offers[1:]
	return d.pushTrigger(c, eff, targets)
}

// dropExhaustedOffers removes offers whose activation limit was used up by a
// link pushed after they were made.
func (d *duel) dropExhaustedOffers() {
	st := d.st
	st.Offers = slices.DeleteFunc(st.Offers, func(c EligibleActivation) bool {
		eff := d.triggerEffect(c)
		return eff == nil || !st.OPT.CanActivate(c.Card, c.EffectIndex, eff.Limit)
	})
}

// declineOffer drops the first offered trigger.
func (d *duel) declineOffer() {
	st := d.st
	d.log(log.NewPriorityPassEvent(st.Turn, d.phase(), st.Offers[0].Controller))
	st.Offers = st.Offers[1:]
}
