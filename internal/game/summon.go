package game

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/log"
)

// computeMainPhaseActions lists summons, sets and position changes for the turn player.
func (d *duel) computeMainPhaseActions(player int) []Action {
	st := d.st
	side := st.Sides[player]
	var actions []Action

	var own []int
	for _, b := range side.Board {
		if b != nil {
			own = append(own, b.Card)
		}
	}
	hasFreeZone := side.FreeBoardSlot() >= 0

	// Normal Summon / Set (once per turn)
	if !side.NormalSummonUsed {
		for _, id := range side.Hand {
			def := defOf(st, d.cat, id)
			if def == nil || def.Kind != KindCreature {
				continue
			}
			tributes := def.TributesRequired()
			if tributes == 0 && !hasFreeZone || tributes > len(own) {
				continue
			}
			summon := Action{
				Type:   ActionNormalSummon,
				Player: player,
				Card:   id,
				Desc:   fmt.Sprintf("Normal Summon %s (ATK %d)", def.Name, def.ATK),
			}
			set := Action{
				Type:   ActionSet,
				Player: player,
				Card:   id,
				Desc:   fmt.Sprintf("Set %s", def.Name),
			}
			if tributes > 0 {
				summon.Desc = fmt.Sprintf("Tribute Summon %s (requires %d tribute(s))", def.Name, tributes)
				set.Desc = fmt.Sprintf("Tribute Set %s (requires %d tribute(s))", def.Name, tributes)
				for _, a := range []*Action{&summon, &set} {
					a.TargetCount = tributes
					a.Candidates = own
				}
			}
			actions = append(actions, summon, set)
		}
	}

	// Flip Summon: face-down creatures that weren't set this turn
	for _, b := range side.Board {
		if b != nil && b.Face == FaceDown && b.TurnPlaced < st.Turn && !b.PositionChanged {
			actions = append(actions, Action{
				Type:   ActionFlipSummon,
				Player: player,
				Card:   b.Card,
				Desc:   fmt.Sprintf("Flip Summon %s", d.name(b.Card)),
			})
		}
	}

	// Change position: face-up, not placed this turn, not changed or attacked yet
	for _, b := range side.Board {
		if b == nil || b.Face == FaceDown || b.TurnPlaced >= st.Turn || b.PositionChanged || b.HasAttacked {
			continue
		}
		newPos := PositionDEF
		if b.Position == PositionDEF {
			newPos = PositionATK
		}
		actions = append(actions, Action{
			Type:   ActionChangePosition,
			Player: player,
			Card:   b.Card,
			Desc:   fmt.Sprintf("Change %s to %s position", d.name(b.Card), newPos),
		})
	}

	// Set spells and traps
	if side.FreeSpellTrapSlot() >= 0 {
		for _, id := range side.Hand {
			def := defOf(st, d.cat, id)
			if def == nil || def.Kind == KindCreature || def.Kind == KindSpell && def.SpellSub == SpellField {
				continue
			}
			actions = append(actions, Action{
				Type:   ActionSet,
				Player: player,
				Card:   id,
				Desc:   fmt.Sprintf("Set %s", def.Name),
			})
		}
	}
	return actions
}

// handCreature checks that card is a creature in player's hand.
func (d *duel) handCreature(player, card int) (*CardDef, error) {
	st := d.st
	if !containsID(st.Sides[player].Hand, card) {
		return nil, reject(ReasonCardNotFound, "card #%d is not in your hand", card)
	}
	def := defOf(st, d.cat, card)
	if def == nil || def.Kind != KindCreature {
		return nil, reject(ReasonCannotActivate, "%s is not a creature", d.name(card))
	}
	return def, nil
}

// checkTributes validates the tributes offered for a creature of def's level.
func (d *duel) checkTributes(player int, def *CardDef, tributes []int) error {
	side := d.st.Sides[player]
	need := def.TributesRequired()
	if len(tributes) != need {
		return reject(ReasonTributeRequired, "%s needs %d tribute(s), got %d", def.Name, need, len(tributes))
	}
	seen := make(map[int]bool, need)
	for _, id := range tributes {
		if seen[id] || side.BoardIndex(id) < 0 {
			return reject(ReasonTributeRequired, "card #%d cannot be tributed", id)
		}
		seen[id] = true
	}
	if need == 0 && side.FreeBoardSlot() < 0 {
		return reject(ReasonZoneFull, "no free board zone")
	}
	return nil
}

func (d *duel) tribute(player int, tributes []int) []string {
	names := make([]string, 0, len(tributes))
	for _, id := range tributes {
		names = append(names, d.name(id))
		d.sendToGraveyard(id, "tributed")
	}
	return names
}

// normalSummon summons a creature face-up in attack position, tributing if
// its level requires. The opponent may respond before the summon succeeds.
func (d *duel) normalSummon(a Action) error {
	st := d.st
	if !st.Phase.IsMain() {
		return reject(ReasonWrongPhase, "cannot summon during the %s", st.Phase)
	}
	def, err := d.handCreature(a.Player, a.Card)
	if err != nil {
		return err
	}
	side := st.Sides[a.Player]
	if side.NormalSummonUsed {
		return reject(ReasonSummonUsed, "already normal summoned or set this turn")
	}
	if err := d.checkTributes(a.Player, def, a.Tributes); err != nil {
		return err
	}

	tributes := d.tribute(a.Player, a.Tributes)
	side.Hand, _ = removeID(side.Hand, a.Card)
	slot := d.placeCreature(a.Player, a.Card, PositionATK, FaceUp)
	side.NormalSummonUsed = true

	kind := log.EventNormalSummon
	if len(tributes) > 0 {
		kind = log.EventTributeSummon
		d.log(log.NewTributeSummonEvent(st.Turn, d.phase(), a.Player, def.Name, def.ATK, slot, tributes))
	} else {
		d.log(log.NewNormalSummonEvent(st.Turn, d.phase(), a.Player, def.Name, def.ATK, slot))
	}
	d.declare(PendingAction{Kind: PendingSummon, Player: a.Player, Card: a.Card, Summon: kind})
	return nil
}

// setCard sets a creature face-down in defense position (using the normal
// summon) or a spell/trap face-down in a spell/trap zone.
func (d *duel) setCard(a Action) error {
	st := d.st
	if !st.Phase.IsMain() {
		return reject(ReasonWrongPhase, "cannot set cards during the %s", st.Phase)
	}
	side := st.Sides[a.Player]
	if !containsID(side.Hand, a.Card) {
		return reject(ReasonCardNotFound, "card #%d is not in your hand", a.Card)
	}
	def := defOf(st, d.cat, a.Card)
	if def == nil {
		return reject(ReasonCardNotFound, "card #%d has no definition", a.Card)
	}

	if def.Kind == KindCreature {
		if side.NormalSummonUsed {
			return reject(ReasonSummonUsed, "already normal summoned or set this turn")
		}
		if err := d.checkTributes(a.Player, def, a.Tributes); err != nil {
			return err
		}
		d.tribute(a.Player, a.Tributes)
		side.Hand, _ = removeID(side.Hand, a.Card)
		slot := d.placeCreature(a.Player, a.Card, PositionDEF, FaceDown)
		side.NormalSummonUsed = true
		d.log(log.NewSetCreatureEvent(st.Turn, d.phase(), a.Player, slot))
		return nil
	}

	if def.Kind == KindSpell && def.SpellSub == SpellField {
		return reject(ReasonCannotActivate, "field spells are activated, not set")
	}
	slot := side.FreeSpellTrapSlot()
	if slot < 0 {
		return reject(ReasonZoneFull, "no free spell/trap zone")
	}
	side.Hand, _ = removeID(side.Hand, a.Card)
	side.SpellTrap[slot] = &SetCard{Card: a.Card, Face: FaceDown, TurnSet: st.Turn}
	d.log(log.NewSetSpellTrapEvent(st.Turn, d.phase(), a.Player, slot))
	return nil
}

// ownBoardCard returns player's board entry for card.
func (d *duel) ownBoardCard(player, card int) (*BoardCard, error) {
	side := d.st.Sides[player]
	i := side.BoardIndex(card)
	if i < 0 {
		return nil, reject(ReasonCardNotFound, "card #%d is not on your board", card)
	}
	return side.Board[i], nil
}

// flipSummon turns a set creature face-up in attack position.
func (d *duel) flipSummon(a Action) error {
	st := d.st
	if !st.Phase.IsMain() {
		return reject(ReasonWrongPhase, "cannot flip summon during the %s", st.Phase)
	}
	b, err := d.ownBoardCard(a.Player, a.Card)
	if err != nil {
		return err
	}
	if b.Face != FaceDown {
		return reject(ReasonPositionLocked, "%s is already face-up", d.name(a.Card))
	}
	if b.TurnPlaced >= st.Turn || b.PositionChanged {
		return reject(ReasonPositionLocked, "%s was set this turn", d.name(a.Card))
	}
	b.Face = FaceUp
	b.Position = PositionATK
	b.PositionChanged = true
	Recompute(st, d.cat)
	d.log(log.NewFlipSummonEvent(st.Turn, d.phase(), a.Player, d.name(a.Card), b.ATK, st.Sides[a.Player].BoardIndex(a.Card)))
	d.declare(PendingAction{Kind: PendingSummon, Player: a.Player, Card: a.Card, Summon: log.EventFlipSummon})
	return nil
}

// changePosition switches a face-up creature between attack and defense.
func (d *duel) changePosition(a Action) error {
	st := d.st
	if !st.Phase.IsMain() {
		return reject(ReasonWrongPhase, "cannot change positions during the %s", st.Phase)
	}
	b, err := d.ownBoardCard(a.Player, a.Card)
	if err != nil {
		return err
	}
	switch {
	case b.Face == FaceDown:
		return reject(ReasonPositionLocked, "set creatures are flip summoned instead")
	case b.TurnPlaced >= st.Turn:
		return reject(ReasonPositionLocked, "%s was placed this turn", d.name(a.Card))
	case b.PositionChanged:
		return reject(ReasonPositionLocked, "%s already changed position this turn", d.name(a.Card))
	case b.HasAttacked:
		return reject(ReasonPositionLocked, "%s attacked this turn", d.name(a.Card))
	}
	if b.Position == PositionATK {
		b.Position = PositionDEF
	} else {
		b.Position = PositionATK
	}
	b.PositionChanged = true
	d.log(log.NewChangePositionEvent(st.Turn, d.phase(), a.Player, d.name(a.Card), b.Position.String()))
	return nil
}

// declare records an attack or summon and gives the opponent the first chance to respond.
func (d *duel) declare(p PendingAction) {
	st := d.st
	st.Pending = &p
	st.Window = Window{Open: true, Holder: st.Opponent(p.Player)}
}

// resolveSummon completes a summon once nobody responds further. A negated
// summon destroys the creature without raising summon triggers.
func (d *duel) resolveSummon(p PendingAction) {
	st := d.st
	if st.Sides[p.Player].BoardIndex(p.Card) < 0 {
		return
	}
	if p.Negated {
		d.log(log.NewDestroyEvent(st.Turn, d.phase(), p.Player, d.name(p.Card), "summon negated"))
		d.sendToGraveyard(p.Card, "summon negated")
		return
	}
	d.raise(TriggerEvent{Kind: p.Summon, Player: p.Player, Card: p.Card, FaceUp: true})
}
