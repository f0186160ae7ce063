package game

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/log"
)

// computeBattlePhaseActions lists the attacks available to the turn player.
func (d *duel) computeBattlePhaseActions(player int) []Action {
	st := d.st
	opp := st.Opponent(player)
	var actions []Action
	for _, b := range st.Sides[player].Board {
		if b == nil || b.Face != FaceUp || b.Position != PositionATK || b.HasAttacked {
			continue
		}
		name := d.name(b.Card)
		if st.Sides[opp].CreatureCount() == 0 {
			actions = append(actions, Action{
				Type:   ActionAttack,
				Player: player,
				Card:   b.Card,
				Desc:   fmt.Sprintf("Direct attack with %s (ATK %d)", name, b.ATK),
			})
			continue
		}
		for _, target := range st.Sides[opp].Board {
			if target == nil {
				continue
			}
			actions = append(actions, Action{
				Type:   ActionAttack,
				Player: player,
				Card:   b.Card,
				Target: target.Card,
				Desc:   fmt.Sprintf("Attack %s with %s (ATK %d)", d.defenderName(target), name, b.ATK),
			})
		}
	}
	return actions
}

// defenderName hides the identity of face-down creatures.
func (d *duel) defenderName(b *BoardCard) string {
	if b.Face == FaceDown {
		loc := d.st.Locate(b.Card)
		return fmt.Sprintf("face-down creature (Zone %d)", loc.Index+1)
	}
	return d.name(b.Card)
}

// declareAttack declares an attack. Target 0 attacks directly, which is only
// allowed while the opponent controls no creatures.
func (d *duel) declareAttack(a Action) error {
	st := d.st
	if st.Phase != PhaseBattle {
		return reject(ReasonWrongPhase, "attacks are declared in the Battle Phase")
	}
	b, err := d.ownBoardCard(a.Player, a.Card)
	if err != nil {
		return err
	}
	if b.Face != FaceUp || b.Position != PositionATK {
		return reject(ReasonCannotAttack, "%s is not in face-up attack position", d.name(a.Card))
	}
	if b.HasAttacked {
		return reject(ReasonAlreadyAttacked, "%s already attacked this turn", d.name(a.Card))
	}
	opp := st.Opponent(a.Player)
	name := d.name(a.Card)

	if a.Target == 0 {
		if st.Sides[opp].CreatureCount() > 0 {
			return reject(ReasonCannotAttack, "cannot attack directly while P%d controls creatures", opp+1)
		}
		b.HasAttacked = true
		d.log(log.NewDirectAttackDeclareEvent(st.Turn, a.Player, name))
		d.declare(PendingAction{Kind: PendingAttack, Player: a.Player, Card: a.Card})
		d.raise(TriggerEvent{Kind: log.EventDirectAttackDeclare, Player: a.Player, Card: a.Card, FaceUp: true})
		return nil
	}

	i := st.Sides[opp].BoardIndex(a.Target)
	if i < 0 {
		return reject(ReasonIllegalTarget, "card #%d is not an opponent's creature", a.Target)
	}
	b.HasAttacked = true
	d.log(log.NewAttackDeclareEvent(st.Turn, a.Player, name, d.defenderName(st.Sides[opp].Board[i])))
	d.declare(PendingAction{Kind: PendingAttack, Player: a.Player, Card: a.Card, Target: a.Target})
	d.raise(TriggerEvent{Kind: log.EventAttackDeclare, Player: a.Player, Card: a.Card, FaceUp: true})
	return nil
}

// resolveAttack performs damage calculation once the attack's window closed.
func (d *duel) resolveAttack(p PendingAction) {
	st := d.st
	tp := p.Player
	opp := st.Opponent(tp)
	name := d.name(p.Card)

	ai := st.Sides[tp].BoardIndex(p.Card)
	if ai < 0 {
		d.log(log.NewAttackStoppedEvent(st.Turn, tp, name, "attacker left the field"))
		return
	}
	attacker := st.Sides[tp].Board[ai]
	switch {
	case p.Negated:
		d.log(log.NewAttackStoppedEvent(st.Turn, tp, name, "attack negated"))
		return
	case attacker.Face != FaceUp || attacker.Position != PositionATK:
		d.log(log.NewAttackStoppedEvent(st.Turn, tp, name, "attacker is no longer in attack position"))
		return
	}

	if p.Target == 0 {
		d.log(log.NewDamageCalcEvent(st.Turn, tp,
			fmt.Sprintf("Direct attack: %s (ATK %d) → P%d", name, attacker.ATK, opp+1)))
		d.battleDamage(opp, attacker.ATK, p.Card)
		return
	}

	di := st.Sides[opp].BoardIndex(p.Target)
	if di < 0 {
		d.log(log.NewAttackStoppedEvent(st.Turn, tp, name, "attack target left the field"))
		return
	}
	defender := st.Sides[opp].Board[di]

	// a face-down defender is revealed, not flip summoned
	if defender.Face == FaceDown {
		defender.Face = FaceUp
		d.log(log.NewFlipEvent(st.Turn, d.phase(), opp, d.name(p.Target)))
		d.raise(TriggerEvent{Kind: log.EventFlip, Player: opp, Card: p.Target, FaceUp: true})
		Recompute(st, d.cat)
	}

	// derived stats are clamped by the next sweep; the flip above ran none
	atk := max(attacker.ATK, 0)
	defName := d.name(p.Target)
	if defender.Position == PositionATK {
		defATK := max(defender.ATK, 0)
		d.log(log.NewDamageCalcEvent(st.Turn, tp,
			fmt.Sprintf("Damage calc: %s (ATK %d) vs %s (ATK %d)", name, atk, defName, defATK)))
		switch {
		case atk > defATK:
			d.destroyByBattle(p.Target, p.Card)
			d.battleDamage(opp, atk-defATK, p.Card)
		case defATK > atk:
			d.destroyByBattle(p.Card, p.Target)
			d.battleDamage(tp, defATK-atk, p.Target)
		case atk > 0:
			d.destroyByBattle(p.Card, p.Target)
			d.destroyByBattle(p.Target, p.Card)
		}
		return
	}

	defDEF := max(defender.DEF, 0)
	d.log(log.NewDamageCalcEvent(st.Turn, tp,
		fmt.Sprintf("Damage calc: %s (ATK %d) vs %s (DEF %d)", name, atk, defName, defDEF)))
	switch {
	case atk > defDEF:
		d.destroyByBattle(p.Target, p.Card)
		if d.hasPiercing(p.Card) {
			d.battleDamage(opp, atk-defDEF, p.Card)
		}
	case defDEF > atk:
		d.battleDamage(tp, defDEF-atk, p.Target)
	}
}

func (d *duel) hasPiercing(id int) bool {
	def := defOf(d.st, d.cat, id)
	return def != nil && def.Piercing
}

// destroyByBattle sends a creature destroyed in battle to the graveyard
// unless it is protected from battle destruction.
func (d *duel) destroyByBattle(victim, destroyer int) {
	st := d.st
	loc := st.Locate(victim)
	if loc.Zone != ZoneBoard {
		return
	}
	b := st.Sides[loc.Player].Board[loc.Index]
	if b.NoBattleDestroy {
		return
	}
	d.log(log.NewBattleDestroyEvent(st.Turn, loc.Player, d.name(victim)))
	d.sendToGraveyard(victim, "destroyed by battle")
	d.raise(TriggerEvent{Kind: log.EventBattleDestroy, Player: loc.Player, Card: victim, Other: destroyer, FaceUp: b.Face == FaceUp})
}

// battleDamage inflicts battle damage to player from source.
func (d *duel) battleDamage(player, amount, source int) {
	if amount <= 0 {
		return
	}
	st := d.st
	name := d.name(source)
	d.log(log.NewBattleDamageEvent(st.Turn, player, amount, name))
	d.damage(player, amount, fmt.Sprintf("battle damage from %s", name))
	d.raise(TriggerEvent{Kind: log.EventBattleDamage, Player: player, Other: source})
}
