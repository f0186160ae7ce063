package game

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/log"
)

func (d *duel) execMovement(x *execution) error {
	switch x.eff.Op {
	case OpDestroy:
		return d.execDestroy(x)
	case OpBanish:
		return d.execBanish(x)
	case OpReturnToHand:
		return d.execReturnToHand(x)
	case OpSearch:
		return d.execSearch(x)
	case OpDiscard:
		return d.execDiscard(x)
	case OpMill:
		return d.execMill(x)
	}
	return fmt.Errorf("%s is not a movement operation", x.eff.Op)
}

func (d *duel) execDestroy(x *execution) error {
	cards := d.resolveCards(x)
	if len(cards) == 0 {
		x.res.NoOp = true
		return nil
	}
	for _, id := range cards {
		loc := d.st.Locate(id)
		to := leaveField(d.st, id, ZoneGraveyard)
		if d.destroy(id, fmt.Sprintf("destroyed by %s", d.name(x.source()))) {
			x.moved(id, loc.Player, loc.Zone, to)
		}
	}
	return nil
}

func (d *duel) execBanish(x *execution) error {
	cards := d.resolveCards(x)
	if len(cards) == 0 {
		x.res.NoOp = true
		return nil
	}
	st := d.st
	for _, id := range cards {
		name := d.name(id)
		loc := st.detach(id)
		ci := st.Cards[id]
		d.log(log.NewBanishEvent(st.Turn, d.phase(), loc.Player, name, fmt.Sprintf("banished by %s", d.name(x.source()))))
		st.Sides[ci.Owner].Banished = append(st.Sides[ci.Owner].Banished, id)
		x.moved(id, loc.Player, loc.Zone, leaveField(st, id, ZoneBanished))
	}
	return nil
}

func (d *duel) execReturnToHand(x *execution) error {
	cards := d.resolveCards(x)
	if len(cards) == 0 {
		x.res.NoOp = true
		return nil
	}
	st := d.st
	for _, id := range cards {
		name := d.name(id)
		loc := st.detach(id)
		ci := st.Cards[id]
		owner := ci.Owner
		st.Sides[owner].Hand = append(st.Sides[owner].Hand, id)
		d.log(log.NewReturnToHandEvent(st.Turn, d.phase(), owner, name))
		x.moved(id, loc.Player, loc.Zone, leaveField(st, id, ZoneHand))
	}
	return nil
}

// execSearch adds matching cards from the controller's deck to the hand,
// scanning from the top, then shuffles the deck.
func (d *duel) execSearch(x *execution) error {
	st := d.st
	p := x.controller()
	side := st.Sides[p]
	want := x.count()
	var found []int
	for i := len(side.Deck) - 1; i >= 0 && len(found) < want; i-- {
		if matchesFilter(st, d.cat, side.Deck[i], x.eff.Params.Filter) {
			found = append(found, side.Deck[i])
		}
	}
	if len(found) == 0 {
		x.res.NoOp = true
		return nil
	}
	for _, id := range found {
		side.Deck, _ = removeID(side.Deck, id)
		side.Hand = append(side.Hand, id)
		d.log(log.NewAddToHandEvent(st.Turn, d.phase(), p, d.name(id), "searched from deck"))
		x.moved(id, p, ZoneDeck, ZoneHand)
	}
	shuffleIDs(d.rng, side.Deck)
	d.log(log.NewShuffleEvent(st.Turn, d.phase(), p))
	return nil
}

// execDiscard sends random cards from a hand to the graveyard.
func (d *duel) execDiscard(x *execution) error {
	st := d.st
	p := x.eff.Params.Player.resolve(x.controller())
	side := st.Sides[p]
	n := min(x.count(), len(side.Hand))
	if n == 0 {
		x.res.NoOp = true
		return nil
	}
	for range n {
		id := side.Hand[d.rng.IntN(len(side.Hand))]
		side.Hand, _ = removeID(side.Hand, id)
		side.Graveyard = append(side.Graveyard, id)
		d.log(log.NewDiscardEvent(st.Turn, d.phase(), p, d.name(id)))
		x.moved(id, p, ZoneHand, ZoneGraveyard)
	}
	return nil
}

// execMill sends cards from the top of a deck to the graveyard.
func (d *duel) execMill(x *execution) error {
	st := d.st
	p := x.eff.Params.Player.resolve(x.controller())
	side := st.Sides[p]
	n := min(x.count(), len(side.Deck))
	if n == 0 {
		x.res.NoOp = true
		return nil
	}
	for range n {
		id := side.Deck[len(side.Deck)-1]
		side.Deck = side.Deck[:len(side.Deck)-1]
		side.Graveyard = append(side.Graveyard, id)
		d.log(log.NewSendToGraveyardEvent(st.Turn, d.phase(), p, d.name(id), "milled"))
		x.moved(id, p, ZoneDeck, ZoneGraveyard)
	}
	return nil
}
