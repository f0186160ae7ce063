package game

// ModKind distinguishes additive modifiers from overrides.
type ModKind int

const (
	ModAdd ModKind = iota
	ModSet
)

// TemporaryModifier is a stat change created by a resolved effect. It lasts
// until its expiry boundary or until its target leaves the board.
type TemporaryModifier struct {
	Seq    int      `json:"seq"`
	Target int      `json:"target"`
	Source int      `json:"source"`
	Kind   ModKind  `json:"kind"`
	ATK    int      `json:"atk"`
	DEF    int      `json:"def"`
	HasATK bool     `json:"has_atk,omitempty"` // ModSet only
	HasDEF bool     `json:"has_def,omitempty"` // ModSet only
	Expiry Duration `json:"expiry"`
	Turn   int      `json:"turn"`
	Phase  Phase    `json:"phase"`
}

type derivedStats struct {
	addATK, addDEF int
	setATK, setDEF int
	hasSetATK      bool
	hasSetDEF      bool
}

// Recompute rebuilds every board creature's derived stats and flags from
// base values, continuous effects and temporary modifiers. It never reads the
// previously derived values, so removing a source is reflected immediately.
//
// Sources are folded with the turn player's side first; within a side the
// field slot, then board slots ascending, then spell/trap slots ascending.
// Temporary modifiers follow in creation order. Overrides apply before
// additive deltas and the last override wins.
func Recompute(ms *MatchState, cat *Catalog) {
	pruneModifiers(ms)

	acc := make(map[int]*derivedStats)
	for _, s := range ms.Sides {
		for _, b := range s.Board {
			if b == nil {
				continue
			}
			acc[b.Card] = &derivedStats{}
			resetBoardCard(ms, cat, b)
		}
	}

	for _, p := range [2]int{ms.TurnPlayer, 1 - ms.TurnPlayer} {
		s := ms.Sides[p]
		if s.Field != nil && s.Field.Face == FaceUp {
			applyContinuous(ms, cat, acc, s.Field.Card, p)
		}
		for _, b := range s.Board {
			if b != nil && b.Face == FaceUp {
				applyContinuous(ms, cat, acc, b.Card, p)
			}
		}
		for _, st := range s.SpellTrap {
			if st != nil && st.Face == FaceUp {
				applyContinuous(ms, cat, acc, st.Card, p)
			}
		}
	}

	for _, m := range ms.Modifiers {
		d := acc[m.Target]
		if d == nil {
			continue
		}
		switch m.Kind {
		case ModSet:
			if m.HasATK {
				d.setATK, d.hasSetATK = m.ATK, true
			}
			if m.HasDEF {
				d.setDEF, d.hasSetDEF = m.DEF, true
			}
		default:
			d.addATK += m.ATK
			d.addDEF += m.DEF
		}
	}

	for _, s := range ms.Sides {
		for _, b := range s.Board {
			if b == nil {
				continue
			}
			d := acc[b.Card]
			if d.hasSetATK {
				b.ATK = d.setATK
			}
			if d.hasSetDEF {
				b.DEF = d.setDEF
			}
			b.ATK += d.addATK
			b.DEF += d.addDEF
		}
	}
}

// resetBoardCard restores base stats and flags.
func resetBoardCard(ms *MatchState, cat *Catalog, b *BoardCard) {
	b.NoBattleDestroy, b.NoEffectDestroy, b.Untargetable = false, false, false
	ci := ms.Cards[b.Card]
	if ci == nil {
		b.ATK, b.DEF = 0, 0
		return
	}
	if ci.Token != nil {
		b.ATK, b.DEF = ci.Token.ATK, ci.Token.DEF
		return
	}
	def, ok := cat.Card(ci.DefID)
	if !ok {
		b.ATK, b.DEF = 0, 0
		return
	}
	b.ATK, b.DEF = def.ATK, def.DEF
	if b.Face == FaceUp {
		b.NoBattleDestroy = def.NoBattleDestroy
		b.NoEffectDestroy = def.NoEffectDestroy
		b.Untargetable = def.Untargetable
	}
}

// applyContinuous folds the continuous effects of one face-up source.
func applyContinuous(ms *MatchState, cat *Catalog, acc map[int]*derivedStats, src, controller int) {
	def := defOf(ms, cat, src)
	if def == nil {
		return
	}
	for i := range def.Effects {
		eff := &def.Effects[i]
		if eff.Trigger != TriggerContinuous {
			continue
		}
		for _, id := range scopeCreatures(ms, cat, eff.Params.Target, eff.Params.Filter, controller, src) {
			b := ms.BoardCard(id)
			if b == nil || b.Face != FaceUp {
				continue
			}
			switch eff.Op {
			case OpStatAura:
				acc[id].addATK += eff.Params.ATK
				acc[id].addDEF += eff.Params.DEF
			case OpProtect:
				switch eff.Params.Flag {
				case ProtectBattle:
					b.NoBattleDestroy = true
				case ProtectEffect:
					b.NoEffectDestroy = true
				case ProtectTarget:
					b.Untargetable = true
				}
			}
		}
	}
}

// pruneModifiers drops temporary modifiers whose target is no longer on a board.
func pruneModifiers(ms *MatchState) {
	if len(ms.Modifiers) == 0 {
		return
	}
	kept := make([]TemporaryModifier, 0, len(ms.Modifiers))
	for _, m := range ms.Modifiers {
		if ms.BoardCard(m.Target) != nil {
			kept = append(kept, m)
		}
	}
	ms.Modifiers = kept
}

// expireModifiers removes modifiers that end at the given boundary and returns how many.
func expireModifiers(ms *MatchState, boundary Duration, phase Phase) int {
	kept := ms.Modifiers[:0:0]
	n := 0
	for _, m := range ms.Modifiers {
		expired := m.Expiry == UntilEndOfTurn && boundary == UntilEndOfTurn ||
			m.Expiry == UntilEndOfPhase && (boundary == UntilEndOfTurn || m.Phase == phase)
		if expired {
			n++
			continue
		}
		kept = append(kept, m)
	}
	ms.Modifiers = kept
	return n
}

// addModifier appends a temporary modifier with the next sequence number.
func addModifier(ms *MatchState, m TemporaryModifier) {
	ms.ModSeq++
	m.Seq = ms.ModSeq
	m.Turn = ms.Turn
	m.Phase = ms.Phase
	ms.Modifiers = append(ms.Modifiers, m)
}
