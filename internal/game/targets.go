package game

// defOf returns the definition of an instance, or nil for tokens and unknown IDs.
func defOf(ms *MatchState, cat *Catalog, id int) *CardDef {
	ci := ms.Cards[id]
	if ci == nil || ci.Token != nil {
		return nil
	}
	def, _ := cat.Card(ci.DefID)
	return def
}

// cardName returns the display name of an instance.
func cardName(ms *MatchState, cat *Catalog, id int) string {
	ci := ms.Cards[id]
	if ci == nil {
		return "?"
	}
	if ci.Token != nil {
		return ci.Token.Name
	}
	if def, ok := cat.Card(ci.DefID); ok {
		return def.Name
	}
	return ci.DefID
}

// matchesFilter checks an instance against a card filter using base values.
func matchesFilter(ms *MatchState, cat *Catalog, id int, f CardFilter) bool {
	ci := ms.Cards[id]
	if ci == nil {
		return false
	}
	var (
		kind CardKind
		name string
		race string
		atk  int
	)
	if ci.Token != nil {
		kind, name, race, atk = KindCreature, ci.Token.Name, ci.Token.Race, ci.Token.ATK
	} else {
		def, ok := cat.Card(ci.DefID)
		if !ok {
			return false
		}
		kind, name, race, atk = def.Kind, def.Name, def.Race, def.ATK
	}
	switch f.Kind {
	case FilterCreature:
		if kind != KindCreature {
			return false
		}
	case FilterSpell:
		if kind != KindSpell {
			return false
		}
	case FilterTrap:
		if kind != KindTrap {
			return false
		}
	}
	if f.Name != "" && f.Name != name {
		return false
	}
	if f.Race != "" && f.Race != race {
		return false
	}
	if f.MaxATK > 0 && (kind != KindCreature || atk > f.MaxATK) {
		return false
	}
	return true
}

// selectorSides returns the seats a selector reaches, controller's side first.
func selectorSides(sel TargetSelector, controller int) []int {
	switch sel {
	case TargetOwnCreature, TargetOwnSpellTrap:
		return []int{controller}
	case TargetOpponentCreature, TargetOpponentSpellTrap:
		return []int{1 - controller}
	case TargetAnyCreature, TargetAnySpellTrap:
		return []int{controller, 1 - controller}
	}
	return nil
}

// scopeCreatures lists the board creatures a non-targeting selector covers.
func scopeCreatures(ms *MatchState, cat *Catalog, sel TargetSelector, f CardFilter, controller, src int) []int {
	if sel == TargetThisCard {
		if ms.BoardCard(src) != nil {
			return []int{src}
		}
		return nil
	}
	var out []int
	for _, p := range selectorSides(sel, controller) {
		for _, b := range ms.Sides[p].Board {
			if b != nil && matchesFilter(ms, cat, b.Card, f) {
				out = append(out, b.Card)
			}
		}
	}
	return out
}

// scopeSpellTraps lists the spell/trap and field cards a selector covers, excluding src.
func scopeSpellTraps(ms *MatchState, cat *Catalog, sel TargetSelector, f CardFilter, controller, src int) []int {
	var out []int
	for _, p := range selectorSides(sel, controller) {
		s := ms.Sides[p]
		for _, st := range s.SpellTrap {
			if st != nil && st.Card != src && matchesFilter(ms, cat, st.Card, f) {
				out = append(out, st.Card)
			}
		}
		if s.Field != nil && s.Field.Card != src && matchesFilter(ms, cat, s.Field.Card, f) {
			out = append(out, s.Field.Card)
		}
	}
	return out
}

// targetCandidates lists the cards an activation may choose as targets.
func targetCandidates(ms *MatchState, cat *Catalog, eff *Effect, controller, src int) []int {
	p := &eff.Params
	if eff.Op == OpSpecialSummon {
		if p.From != ZoneGraveyard {
			return nil
		}
		f := p.Filter
		f.Kind = FilterCreature
		var out []int
		for _, id := range ms.Sides[controller].Graveyard {
			if matchesFilter(ms, cat, id, f) {
				out = append(out, id)
			}
		}
		return out
	}
	switch {
	case p.Target.creatures():
		var out []int
		for _, id := range scopeCreatures(ms, cat, p.Target, p.Filter, controller, src) {
			if !ms.BoardCard(id).Untargetable {
				out = append(out, id)
			}
		}
		return out
	case p.Target.spellTraps():
		return scopeSpellTraps(ms, cat, p.Target, p.Filter, controller, src)
	}
	return nil
}

// checkTargets validates chosen targets against the current candidates.
func checkTargets(ms *MatchState, cat *Catalog, eff *Effect, controller, src int, chosen []int) *ActionError {
	cands := targetCandidates(ms, cat, eff, controller, src)
	if len(cands) == 0 {
		return reject(ReasonCannotActivate, "no legal targets")
	}
	want := eff.targetCount()
	if len(cands) < want {
		want = len(cands)
	}
	if len(chosen) != want {
		return reject(ReasonIllegalTarget, "choose exactly %d target(s), got %d", want, len(chosen))
	}
	seen := make(map[int]bool, len(chosen))
	for _, id := range chosen {
		if seen[id] {
			return reject(ReasonIllegalTarget, "card #%d chosen twice", id)
		}
		seen[id] = true
		if containsID(cands, id) {
			continue
		}
		if b := ms.BoardCard(id); b != nil && b.Untargetable {
			return reject(ReasonTargetProtected, "%s cannot be targeted", cardName(ms, cat, id))
		}
		return reject(ReasonIllegalTarget, "card #%d is not a legal target", id)
	}
	return nil
}

// stillValidTarget reports whether a captured target can still be affected at resolution.
func stillValidTarget(ms *MatchState, eff *Effect, id int) bool {
	loc := ms.Locate(id)
	switch {
	case eff.Op == OpSpecialSummon:
		return loc.Zone == ZoneGraveyard
	case eff.Params.Target.spellTraps():
		return loc.Zone == ZoneSpellTrap || loc.Zone == ZoneField
	default:
		return loc.Zone == ZoneBoard
	}
}
