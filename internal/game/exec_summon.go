package game

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/log"
)

func (d *duel) execSummoning(x *execution) error {
	switch x.eff.Op {
	case OpSpecialSummon:
		return d.execSpecialSummon(x)
	case OpCreateToken:
		return d.execCreateToken(x)
	}
	return fmt.Errorf("%s is not a summoning operation", x.eff.Op)
}

// summonSources picks the cards a special summon brings out: captured
// graveyard targets, or the first matching cards in hand or deck (deck from the top).
func (d *duel) summonSources(x *execution) []int {
	st := d.st
	p := &x.eff.Params
	if p.From == ZoneGraveyard {
		return d.resolveCards(x)
	}
	f := p.Filter
	f.Kind = FilterCreature
	side := st.Sides[x.controller()]
	want := x.count()
	var out []int
	switch p.From {
	case ZoneHand:
		for _, id := range side.Hand {
			if len(out) < want && matchesFilter(st, d.cat, id, f) {
				out = append(out, id)
			}
		}
	case ZoneDeck:
		for i := len(side.Deck) - 1; i >= 0 && len(out) < want; i-- {
			if matchesFilter(st, d.cat, side.Deck[i], f) {
				out = append(out, side.Deck[i])
			}
		}
	}
	return out
}

func (d *duel) execSpecialSummon(x *execution) error {
	st := d.st
	p := x.controller()
	side := st.Sides[p]
	summoned := 0
	for _, id := range d.summonSources(x) {
		if side.FreeBoardSlot() < 0 {
			break
		}
		from := st.Locate(id).Zone
		st.detach(id)
		slot := d.placeCreature(p, id, x.eff.Params.Position, FaceUp)
		b := side.Board[slot]
		Recompute(st, d.cat)
		d.log(log.NewSpecialSummonEvent(st.Turn, d.phase(), p, d.name(id), b.ATK, slot))
		d.raise(TriggerEvent{Kind: log.EventSpecialSummon, Player: p, Card: id, FaceUp: true})
		x.moved(id, p, from, ZoneBoard)
		summoned++
	}
	if summoned == 0 {
		x.res.NoOp = true
		return nil
	}
	if x.eff.Params.From == ZoneDeck {
		shuffleIDs(d.rng, side.Deck)
		d.log(log.NewShuffleEvent(st.Turn, d.phase(), p))
	}
	return nil
}

// execCreateToken fills free board slots with tokens; extra tokens are not created.
func (d *duel) execCreateToken(x *execution) error {
	st := d.st
	p := x.eff.Params.Player.resolve(x.controller())
	side := st.Sides[p]
	for range x.count() {
		if side.FreeBoardSlot() < 0 {
			break
		}
		tok := x.eff.Params.Token
		id := st.newInstance("", p, &tok)
		slot := d.placeCreature(p, id, x.eff.Params.Position, FaceUp)
		d.log(log.NewTokenCreatedEvent(st.Turn, d.phase(), p, tok.Name, slot))
		d.raise(TriggerEvent{Kind: log.EventSpecialSummon, Player: p, Card: id, FaceUp: true})
		x.res.TokensCreated = append(x.res.TokensCreated, id)
	}
	if len(x.res.TokensCreated) == 0 {
		x.res.NoOp = true
	}
	Recompute(st, d.cat)
	return nil
}
