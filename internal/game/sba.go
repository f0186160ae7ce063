package game

import "fmt"

const maxSweepPasses = 8

// TokenRemoval records a token swept from play.
type TokenRemoval struct {
	ID     int
	Name   string
	Player int
	Zone   ZoneType
}

// SweepReport describes what a state-based action sweep changed.
type SweepReport struct {
	TokensRemoved []TokenRemoval
	Clamped       int
	Ended         bool
	Passes        int
}

// Sweep applies state-based actions until a pass changes nothing:
//  1. tokens outside a board slot are removed from play
//  2. negative derived ATK/DEF is clamped to 0
//  3. a player at 0 LP loses (both at 0 is a draw)
//  4. zone capacity and exclusivity are checked; a violation is an *InvariantError
func Sweep(ms *MatchState) (SweepReport, error) {
	var rep SweepReport
	for pass := 0; pass < maxSweepPasses; pass++ {
		rep.Passes++
		changed := false

		for p, s := range ms.Sides {
			for _, zone := range []struct {
				typ ZoneType
				ids *[]int
			}{
				{ZoneHand, &s.Hand},
				{ZoneDeck, &s.Deck},
				{ZoneGraveyard, &s.Graveyard},
				{ZoneBanished, &s.Banished},
			} {
				kept := (*zone.ids)[:0:0]
				for _, id := range *zone.ids {
					ci := ms.Cards[id]
					if ci == nil || ci.Token == nil {
						kept = append(kept, id)
						continue
					}
					rep.TokensRemoved = append(rep.TokensRemoved, TokenRemoval{ID: id, Name: ci.Token.Name, Player: p, Zone: zone.typ})
					delete(ms.Cards, id)
					changed = true
				}
				*zone.ids = kept
			}
		}

		for _, s := range ms.Sides {
			for _, b := range s.Board {
				if b == nil {
					continue
				}
				if b.ATK < 0 {
					b.ATK = 0
					rep.Clamped++
					changed = true
				}
				if b.DEF < 0 {
					b.DEF = 0
					rep.Clamped++
					changed = true
				}
			}
		}

		if !ms.Over && ms.checkWinCondition() {
			rep.Ended = true
			changed = true
		}

		if err := checkZones(ms); err != nil {
			return rep, err
		}
		if !changed {
			return rep, nil
		}
	}
	return rep, &InvariantError{Check: "sweep_converges", Detail: fmt.Sprintf("still changing after %d passes", maxSweepPasses)}
}

// checkZones verifies that every instance is in exactly one zone of its
// owner's side and that board slots agree with the instance registry.
func checkZones(ms *MatchState) error {
	seen := make(map[int]ZoneType, len(ms.Cards))
	place := func(p int, zone ZoneType, id int) error {
		ci := ms.Cards[id]
		if ci == nil {
			return &InvariantError{Check: "registry", Detail: fmt.Sprintf("card #%d in P%d %s is not registered", id, p+1, zone)}
		}
		if prev, dup := seen[id]; dup {
			return &InvariantError{Check: "zone_exclusivity", Detail: fmt.Sprintf("card #%d is in both %s and %s", id, prev, zone)}
		}
		if ci.Owner != p {
			return &InvariantError{Check: "ownership", Detail: fmt.Sprintf("card #%d owned by P%d sits on P%d's side", id, ci.Owner+1, p+1)}
		}
		seen[id] = zone
		return nil
	}
	for p, s := range ms.Sides {
		lists := []struct {
			zone ZoneType
			ids  []int
		}{
			{ZoneDeck, s.Deck}, {ZoneHand, s.Hand}, {ZoneGraveyard, s.Graveyard}, {ZoneBanished, s.Banished},
		}
		for _, l := range lists {
			for _, id := range l.ids {
				if err := place(p, l.zone, id); err != nil {
					return err
				}
			}
		}
		for _, b := range s.Board {
			if b == nil {
				continue
			}
			if err := place(p, ZoneBoard, b.Card); err != nil {
				return err
			}
			if b.Token != ms.Cards[b.Card].IsToken() {
				return &InvariantError{Check: "token_marker", Detail: fmt.Sprintf("card #%d token marker disagrees with registry", b.Card)}
			}
		}
		for _, st := range s.SpellTrap {
			if st == nil {
				continue
			}
			if err := place(p, ZoneSpellTrap, st.Card); err != nil {
				return err
			}
		}
		if s.Field != nil {
			if err := place(p, ZoneField, s.Field.Card); err != nil {
				return err
			}
		}
	}
	if len(seen) != len(ms.Cards) {
		return &InvariantError{Check: "card_count", Detail: fmt.Sprintf("%d cards placed, %d registered", len(seen), len(ms.Cards))}
	}
	return nil
}
