package game

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// RawEffect is an ability as written in a card file, before validation.
type RawEffect struct {
	Trigger  string         `yaml:"trigger" json:"trigger"`
	Type     string         `yaml:"type" json:"type"`
	Speed    int            `yaml:"speed,omitempty" json:"speed,omitempty"`
	Limit    string         `yaml:"limit,omitempty" json:"limit,omitempty"`
	Optional bool           `yaml:"optional,omitempty" json:"optional,omitempty"`
	Params   map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// paramSpec lists the params an operation accepts; required ones are marked.
type paramSpec map[string]bool

var opParams = map[OpKind]paramSpec{
	OpDraw:           {"amount": true, "player": false},
	OpDamage:         {"amount": true, "player": false},
	OpHeal:           {"amount": true, "player": false},
	OpDestroy:        {"target": true, "count": false, "all": false, "filter": false},
	OpBanish:         {"target": true, "count": false, "all": false, "filter": false},
	OpReturnToHand:   {"target": true, "count": false, "all": false, "filter": false},
	OpSearch:         {"count": false, "filter": false},
	OpDiscard:        {"count": false, "player": false},
	OpMill:           {"count": false, "player": false},
	OpSpecialSummon:  {"from": true, "filter": false, "position": false},
	OpCreateToken:    {"token": true, "count": false, "position": false, "player": false},
	OpModifyStats:    {"target": true, "count": false, "all": false, "attack": false, "defense": false, "set_attack": false, "set_defense": false, "duration": false, "filter": false},
	OpChangePosition: {"target": true, "count": false, "all": false},
	OpNegate:         {"target": true},
	OpStatAura:       {"target": true, "attack": false, "defense": false, "filter": false},
	OpProtect:        {"target": true, "flag": true, "filter": false},
}

// ValidateEffects converts the raw abilities of a card into typed effects.
// Every problem found is reported as a *DefinitionError; they are joined.
func ValidateEffects(def *CardDef, raw []RawEffect) ([]Effect, error) {
	var (
		effects []Effect
		errs    []error
	)
	for i, re := range raw {
		eff, err := parseEffect(def, i, re)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := checkEffect(def, i, &eff); err != nil {
			errs = append(errs, err)
			continue
		}
		effects = append(effects, eff)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return effects, nil
}

// effectReader accumulates conversion errors for one raw effect.
type effectReader struct {
	card   string
	prefix string
	errs   []error
}

func (r *effectReader) fail(field, format string, args ...any) {
	path := r.prefix
	if field != "" {
		path += "." + field
	}
	r.errs = append(r.errs, &DefinitionError{Card: r.card, Field: path, Msg: fmt.Sprintf(format, args...)})
}

func (r *effectReader) err() error {
	return errors.Join(r.errs...)
}

func parseEffect(def *CardDef, i int, re RawEffect) (Effect, error) {
	r := &effectReader{card: def.ID, prefix: fmt.Sprintf("effects[%d]", i)}
	var eff Effect

	trig, ok := lookupName(triggerNames[:], re.Trigger)
	if !ok {
		r.fail("trigger", "unknown trigger %q", re.Trigger)
	}
	eff.Trigger = Trigger(trig)

	op, ok := lookupName(opNames[:], re.Type)
	if !ok {
		r.fail("type", "unknown operation %q", re.Type)
		return eff, r.err()
	}
	eff.Op = OpKind(op)

	switch re.Limit {
	case "", "none":
		eff.Limit = LimitNone
	case "once_per_turn":
		eff.Limit = LimitPerTurn
	case "once_per_duel":
		eff.Limit = LimitPerDuel
	default:
		r.fail("limit", "unknown limit %q", re.Limit)
	}

	eff.Optional = re.Optional
	eff.Speed = defaultSpeed(def)
	if re.Speed != 0 {
		eff.Speed = SpellSpeed(re.Speed)
	}

	spec := opParams[eff.Op]
	keys := make([]string, 0, len(re.Params))
	for k := range re.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := spec[k]; !ok {
			r.fail("params."+k, "not allowed for %s", eff.Op)
		}
	}
	for k, required := range spec {
		if _, ok := re.Params[k]; required && !ok {
			r.fail("params."+k, "required for %s", eff.Op)
		}
	}
	if len(r.errs) > 0 {
		return eff, r.err()
	}

	p := &eff.Params
	pr := &paramReader{effectReader: r, params: re.Params}
	p.Amount = pr.integer("amount")
	p.Count = pr.integer("count")
	p.All = pr.boolean("all")
	p.ATK = pr.integer("attack")
	p.DEF = pr.integer("defense")
	if _, ok := re.Params["set_attack"]; ok {
		p.SetATK, p.HasSetATK = pr.integer("set_attack"), true
	}
	if _, ok := re.Params["set_defense"]; ok {
		p.SetDEF, p.HasSetDEF = pr.integer("set_defense"), true
	}
	if s, ok := pr.str("player"); ok {
		switch s {
		case "self":
			p.Player = PlayerSelf
		case "opponent":
			p.Player = PlayerOpponent
		default:
			r.fail("params.player", "must be self or opponent, got %q", s)
		}
	}
	if s, ok := pr.str("target"); ok {
		t, found := lookupName(targetNames[1:], s)
		if !found {
			r.fail("params.target", "unknown target %q", s)
		}
		p.Target = TargetSelector(t + 1)
	}
	if s, ok := pr.str("from"); ok {
		switch s {
		case "graveyard":
			p.From = ZoneGraveyard
		case "hand":
			p.From = ZoneHand
		case "deck":
			p.From = ZoneDeck
		default:
			r.fail("params.from", "must be graveyard, hand or deck, got %q", s)
		}
	}
	if s, ok := pr.str("position"); ok {
		switch s {
		case "attack":
			p.Position = PositionATK
		case "defense":
			p.Position = PositionDEF
		default:
			r.fail("params.position", "must be attack or defense, got %q", s)
		}
	}
	if s, ok := pr.str("duration"); ok {
		switch s {
		case "end_of_turn":
			p.Duration = UntilEndOfTurn
		case "end_of_phase":
			p.Duration = UntilEndOfPhase
		default:
			r.fail("params.duration", "must be end_of_turn or end_of_phase, got %q", s)
		}
	}
	if s, ok := pr.str("flag"); ok {
		switch s {
		case "battle":
			p.Flag = ProtectBattle
		case "effect":
			p.Flag = ProtectEffect
		case "target":
			p.Flag = ProtectTarget
		default:
			r.fail("params.flag", "must be battle, effect or target, got %q", s)
		}
	}
	if m, ok := pr.object("filter"); ok {
		p.Filter = pr.filter(m)
	}
	if m, ok := pr.object("token"); ok {
		p.Token = pr.token(m)
	}
	return eff, r.err()
}

// paramReader converts loosely typed YAML/JSON values.
type paramReader struct {
	*effectReader
	params map[string]any
}

func (pr *paramReader) integer(key string) int {
	v, ok := pr.params[key]
	if !ok {
		return 0
	}
	n, ok := toInt(v)
	if !ok {
		pr.fail("params."+key, "must be an integer, got %v", v)
	}
	return n
}

func (pr *paramReader) boolean(key string) bool {
	v, ok := pr.params[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		pr.fail("params."+key, "must be a boolean, got %v", v)
	}
	return b
}

func (pr *paramReader) str(key string) (string, bool) {
	v, ok := pr.params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		pr.fail("params."+key, "must be a string, got %v", v)
		return "", false
	}
	return s, true
}

func (pr *paramReader) object(key string) (map[string]any, bool) {
	v, ok := pr.params[key]
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	pr.fail("params."+key, "must be a mapping, got %v", v)
	return nil, false
}

func (pr *paramReader) filter(m map[string]any) CardFilter {
	var f CardFilter
	for k, v := range m {
		field := "params.filter." + k
		switch k {
		case "kind":
			switch v {
			case "creature":
				f.Kind = FilterCreature
			case "spell":
				f.Kind = FilterSpell
			case "trap":
				f.Kind = FilterTrap
			default:
				pr.fail(field, "must be creature, spell or trap, got %v", v)
			}
		case "name":
			s, ok := v.(string)
			if !ok || s == "" {
				pr.fail(field, "must be a non-empty string")
			}
			f.Name = s
		case "race":
			s, ok := v.(string)
			if !ok || s == "" {
				pr.fail(field, "must be a non-empty string")
			}
			f.Race = s
		case "max_attack":
			n, ok := toInt(v)
			if !ok || n < 0 || n > 10000 {
				pr.fail(field, "must be an integer between 0 and 10000")
			}
			f.MaxATK = n
		default:
			pr.fail(field, "unsupported filter condition")
		}
	}
	return f
}

func (pr *paramReader) token(m map[string]any) TokenStats {
	var t TokenStats
	for k, v := range m {
		field := "params.token." + k
		switch k {
		case "name":
			s, _ := v.(string)
			t.Name = s
		case "race":
			s, _ := v.(string)
			t.Race = s
		case "attack":
			n, ok := toInt(v)
			if !ok {
				pr.fail(field, "must be an integer, got %v", v)
			}
			t.ATK = n
		case "defense":
			n, ok := toInt(v)
			if !ok {
				pr.fail(field, "must be an integer, got %v", v)
			}
			t.DEF = n
		default:
			pr.fail(field, "not allowed in a token definition")
		}
	}
	return t
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func lookupName(names []string, s string) (int, bool) {
	for i, n := range names {
		if n == s && n != "" {
			return i, true
		}
	}
	return 0, false
}

// defaultSpeed returns the spell speed a card's effects get when none is given.
func defaultSpeed(def *CardDef) SpellSpeed {
	switch def.Kind {
	case KindSpell:
		if def.SpellSub == SpellQuickPlay {
			return Speed2
		}
		return Speed1
	case KindTrap:
		if def.TrapSub == TrapCounter {
			return Speed3
		}
		return Speed2
	}
	return Speed1
}

// checkEffect enforces ranges and trigger/operation compatibility on a typed effect.
func checkEffect(def *CardDef, i int, eff *Effect) error {
	r := &effectReader{card: def.ID, prefix: fmt.Sprintf("effects[%d]", i)}
	p := &eff.Params

	if eff.Trigger < TriggerManual || eff.Trigger > TriggerOnEndPhase {
		r.fail("trigger", "unknown trigger %d", eff.Trigger)
	}
	if eff.Op < 0 || eff.Op >= opCount {
		r.fail("type", "unknown operation %d", eff.Op)
		return r.err()
	}

	continuousOp := eff.Op == OpStatAura || eff.Op == OpProtect
	if continuousOp && eff.Trigger != TriggerContinuous {
		r.fail("trigger", "%s requires the continuous trigger", eff.Op)
	}
	if !continuousOp && eff.Trigger == TriggerContinuous {
		r.fail("trigger", "continuous effects must be stat_aura or protect, got %s", eff.Op)
	}
	if eff.Optional && (eff.Trigger == TriggerManual || eff.Trigger == TriggerContinuous) {
		r.fail("optional", "only triggered effects can be optional")
	}

	switch def.Kind {
	case KindCreature:
		if eff.Speed != Speed1 && eff.Speed != Speed2 {
			r.fail("speed", "creature effects must be speed 1 or 2")
		}
	default:
		if eff.Speed != defaultSpeed(def) {
			r.fail("speed", "%s speed is fixed at %d", def.subtypeName(), defaultSpeed(def))
		}
	}
	if def.Kind == KindSpell && (def.SpellSub == SpellNormal || def.SpellSub == SpellQuickPlay) && eff.Trigger != TriggerManual {
		r.fail("trigger", "%s spells only have manual effects", def.subtypeName())
	}
	if eff.Trigger == TriggerContinuous && !def.persistent() {
		r.fail("trigger", "a %s card cannot carry continuous effects", def.subtypeName())
	}

	t := p.Target
	if t == TargetEventCard && (eff.Trigger == TriggerManual || eff.Trigger == TriggerContinuous) {
		r.fail("params.target", "event_card needs a triggering event")
	}
	if p.All && p.Count != 0 {
		r.fail("params.all", "cannot be combined with count")
	}
	if p.Count != 0 && (p.Count < 1 || p.Count > 5) {
		r.fail("params.count", "must be between 1 and 5")
	}

	switch eff.Op {
	case OpDraw:
		checkRange(r, "params.amount", p.Amount, 1, 10)
	case OpDamage, OpHeal:
		checkRange(r, "params.amount", p.Amount, 1, 100000)
	case OpDestroy, OpBanish, OpReturnToHand:
		if !t.creatures() && !t.spellTraps() && t != TargetThisCard && t != TargetEventCard {
			r.fail("params.target", "%s cannot target %s", eff.Op, t)
		}
	case OpChangePosition:
		if !t.creatures() && t != TargetThisCard && t != TargetEventCard {
			r.fail("params.target", "%s needs a creature target, got %s", eff.Op, t)
		}
	case OpModifyStats:
		if !t.creatures() && t != TargetThisCard && t != TargetEventCard {
			r.fail("params.target", "%s needs a creature target, got %s", eff.Op, t)
		}
		checkDelta(r, "params.attack", p.ATK)
		checkDelta(r, "params.defense", p.DEF)
		if p.HasSetATK {
			checkRange(r, "params.set_attack", p.SetATK, 0, 10000)
		}
		if p.HasSetDEF {
			checkRange(r, "params.set_defense", p.SetDEF, 0, 10000)
		}
		if p.ATK == 0 && p.DEF == 0 && !p.HasSetATK && !p.HasSetDEF {
			r.fail("params", "modify_stats changes nothing")
		}
	case OpSearch, OpDiscard, OpMill:
	case OpSpecialSummon:
		if p.From != ZoneGraveyard && p.From != ZoneHand && p.From != ZoneDeck {
			r.fail("params.from", "must be graveyard, hand or deck")
		}
		if p.Filter.Kind != FilterAnyKind && p.Filter.Kind != FilterCreature {
			r.fail("params.filter.kind", "only creatures can be special summoned")
		}
	case OpCreateToken:
		if strings.TrimSpace(p.Token.Name) == "" {
			r.fail("params.token.name", "required")
		}
		checkRange(r, "params.token.attack", p.Token.ATK, 0, 10000)
		checkRange(r, "params.token.defense", p.Token.DEF, 0, 10000)
	case OpNegate:
		switch t {
		case TargetChainLink:
			if eff.Trigger != TriggerManual {
				r.fail("trigger", "negating a chain link requires the manual trigger")
			}
		case TargetPendingAction:
			if eff.Trigger != TriggerManual && eff.Trigger != TriggerOnAttackDeclared {
				r.fail("trigger", "negate must be manual or on_attack_declared")
			}
		default:
			r.fail("params.target", "negate targets chain_link or pending_action, got %s", t)
		}
	case OpStatAura:
		if !t.creatures() && t != TargetThisCard {
			r.fail("params.target", "stat_aura needs a creature scope, got %s", t)
		}
		checkDelta(r, "params.attack", p.ATK)
		checkDelta(r, "params.defense", p.DEF)
		if p.ATK == 0 && p.DEF == 0 {
			r.fail("params", "stat_aura changes nothing")
		}
	case OpProtect:
		if !t.creatures() && t != TargetThisCard {
			r.fail("params.target", "protect needs a creature scope, got %s", t)
		}
	}

	if eff.Op != OpNegate && (t == TargetChainLink || t == TargetPendingAction) {
		r.fail("params.target", "%s only applies to negate", t)
	}
	return r.err()
}

func checkRange(r *effectReader, field string, v, lo, hi int) {
	if v < lo || v > hi {
		r.fail(field, "must be between %d and %d, got %d", lo, hi, v)
	}
}

func checkDelta(r *effectReader, field string, v int) {
	if v < -10000 || v > 10000 {
		r.fail(field, "must be between -10000 and 10000, got %d", v)
	}
}
