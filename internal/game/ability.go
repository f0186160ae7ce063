package game

// Trigger is the condition under which an effect becomes eligible.
type Trigger int

const (
	TriggerManual     Trigger = iota // activated by its controller
	TriggerContinuous                // passive while face-up on the field
	TriggerOnSummon                  // this card is summoned
	TriggerOnFlip                    // this card is flipped face-up
	TriggerOnDestroy                 // this card is destroyed (resolves from the graveyard)
	TriggerOnBattleDestroy           // this card destroys a creature by battle
	TriggerOnBattleDamage            // this card inflicts battle damage
	TriggerOnOpponentSummon          // the opponent summons a creature
	TriggerOnAttackDeclared          // the opponent declares an attack
	TriggerOnDamageTaken             // this card's controller takes damage
	TriggerOnDraw                    // this card's controller draws
	TriggerOnStandby                 // controller's Standby Phase
	TriggerOnEndPhase                // controller's End Phase
)

var triggerNames = [...]string{
	TriggerManual:           "manual",
	TriggerContinuous:       "continuous",
	TriggerOnSummon:         "on_summon",
	TriggerOnFlip:           "on_flip",
	TriggerOnDestroy:        "on_destroy",
	TriggerOnBattleDestroy:  "on_battle_destroy",
	TriggerOnBattleDamage:   "on_battle_damage",
	TriggerOnOpponentSummon: "on_opponent_summon",
	TriggerOnAttackDeclared: "on_attack_declared",
	TriggerOnDamageTaken:    "on_damage_taken",
	TriggerOnDraw:           "on_draw",
	TriggerOnStandby:        "on_standby",
	TriggerOnEndPhase:       "on_end_phase",
}

func (t Trigger) String() string {
	if t < 0 || int(t) >= len(triggerNames) {
		return "unknown"
	}
	return triggerNames[t]
}

// selfReferential triggers fire for the event's own subject card, wherever
// that card is now.
func (t Trigger) selfReferential() bool {
	switch t {
	case TriggerOnSummon, TriggerOnFlip, TriggerOnDestroy, TriggerOnBattleDestroy, TriggerOnBattleDamage:
		return true
	}
	return false
}

// OpKind is the closed set of operations an effect can perform.
type OpKind int

const (
	OpDraw OpKind = iota
	OpDamage
	OpHeal
	OpDestroy
	OpBanish
	OpReturnToHand
	OpSearch
	OpDiscard
	OpMill
	OpSpecialSummon
	OpCreateToken
	OpModifyStats
	OpChangePosition
	OpNegate
	OpStatAura
	OpProtect
	opCount
)

var opNames = [...]string{
	OpDraw:           "draw",
	OpDamage:         "damage",
	OpHeal:           "heal",
	OpDestroy:        "destroy",
	OpBanish:         "banish",
	OpReturnToHand:   "return_to_hand",
	OpSearch:         "search",
	OpDiscard:        "discard",
	OpMill:           "mill",
	OpSpecialSummon:  "special_summon",
	OpCreateToken:    "create_token",
	OpModifyStats:    "modify_stats",
	OpChangePosition: "change_position",
	OpNegate:         "negate",
	OpStatAura:       "stat_aura",
	OpProtect:        "protect",
}

func (o OpKind) String() string {
	if o < 0 || o >= opCount {
		return "unknown"
	}
	return opNames[o]
}

// Limit restricts how often an effect may be activated.
type Limit int

const (
	LimitNone Limit = iota
	LimitPerTurn
	LimitPerDuel
)

func (l Limit) String() string {
	switch l {
	case LimitPerTurn:
		return "once_per_turn"
	case LimitPerDuel:
		return "once_per_duel"
	default:
		return "none"
	}
}

// TargetSelector names which cards (or chain objects) an effect acts on.
type TargetSelector int

const (
	TargetNone TargetSelector = iota
	TargetThisCard
	TargetEventCard // the subject of the triggering event
	TargetOwnCreature
	TargetOpponentCreature
	TargetAnyCreature
	TargetOwnSpellTrap
	TargetOpponentSpellTrap
	TargetAnySpellTrap
	TargetChainLink     // the link being responded to
	TargetPendingAction // the attack or summon awaiting a response
)

var targetNames = [...]string{
	TargetNone:              "",
	TargetThisCard:          "this_card",
	TargetEventCard:         "event_card",
	TargetOwnCreature:       "own_creature",
	TargetOpponentCreature:  "opponent_creature",
	TargetAnyCreature:       "any_creature",
	TargetOwnSpellTrap:      "own_spell_trap",
	TargetOpponentSpellTrap: "opponent_spell_trap",
	TargetAnySpellTrap:      "any_spell_trap",
	TargetChainLink:         "chain_link",
	TargetPendingAction:     "pending_action",
}

func (t TargetSelector) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return "unknown"
	}
	return targetNames[t]
}

func (t TargetSelector) creatures() bool {
	switch t {
	case TargetOwnCreature, TargetOpponentCreature, TargetAnyCreature:
		return true
	}
	return false
}

func (t TargetSelector) spellTraps() bool {
	switch t {
	case TargetOwnSpellTrap, TargetOpponentSpellTrap, TargetAnySpellTrap:
		return true
	}
	return false
}

// cardSelector reports whether the selector picks cards on the field.
func (t TargetSelector) cardSelector() bool {
	return t.creatures() || t.spellTraps() || t == TargetThisCard || t == TargetEventCard
}

// PlayerRef is relative to the effect's controller.
type PlayerRef int

const (
	PlayerSelf PlayerRef = iota
	PlayerOpponent
)

func (p PlayerRef) String() string {
	if p == PlayerOpponent {
		return "opponent"
	}
	return "self"
}

// resolve maps the reference to a seat given the effect's controller.
func (p PlayerRef) resolve(controller int) int {
	if p == PlayerOpponent {
		return 1 - controller
	}
	return controller
}

// Duration is the boundary at which a temporary modifier expires.
type Duration int

const (
	UntilEndOfTurn Duration = iota
	UntilEndOfPhase
)

// ProtectFlag is a rule-level protection granted by a continuous effect.
type ProtectFlag int

const (
	ProtectBattle ProtectFlag = iota // cannot be destroyed by battle
	ProtectEffect                    // cannot be destroyed by card effects
	ProtectTarget                    // cannot be targeted by card effects
)

// KindFilter restricts a card filter to one card kind.
type KindFilter int

const (
	FilterAnyKind KindFilter = iota
	FilterCreature
	FilterSpell
	FilterTrap
)

// CardFilter narrows the cards an effect may pick. Zero value matches anything.
type CardFilter struct {
	Kind   KindFilter `json:"kind,omitempty"`
	Name   string     `json:"name,omitempty"`
	Race   string     `json:"race,omitempty"`
	MaxATK int        `json:"max_atk,omitempty"` // 0 = no limit
}

// TokenStats is the inline stat block of a token creature.
type TokenStats struct {
	Name string `json:"name"`
	ATK  int    `json:"atk"`
	DEF  int    `json:"def"`
	Race string `json:"race,omitempty"`
}

// Params holds operation-specific parameters. Which fields are meaningful is
// fixed per OpKind and enforced by the validator.
type Params struct {
	Amount    int            `json:"amount,omitempty"`
	Count     int            `json:"count,omitempty"`
	All       bool           `json:"all,omitempty"`
	Player    PlayerRef      `json:"player,omitempty"`
	Target    TargetSelector `json:"target,omitempty"`
	From      ZoneType       `json:"from,omitempty"`
	Filter    CardFilter     `json:"filter,omitempty"`
	ATK       int            `json:"atk,omitempty"`
	DEF       int            `json:"def,omitempty"`
	SetATK    int            `json:"set_atk,omitempty"`
	SetDEF    int            `json:"set_def,omitempty"`
	HasSetATK bool           `json:"has_set_atk,omitempty"`
	HasSetDEF bool           `json:"has_set_def,omitempty"`
	Duration  Duration       `json:"duration,omitempty"`
	Position  Position       `json:"position,omitempty"`
	Token     TokenStats     `json:"token,omitempty"`
	Flag      ProtectFlag    `json:"flag,omitempty"`
}

// Effect is one validated ability: exactly one trigger and one operation.
type Effect struct {
	Trigger  Trigger    `json:"trigger"`
	Op       OpKind     `json:"op"`
	Speed    SpellSpeed `json:"speed"`
	Limit    Limit      `json:"limit,omitempty"`
	Optional bool       `json:"optional,omitempty"`
	Params   Params     `json:"params"`
}

// needsTargets reports whether activation must capture chosen targets.
func (e *Effect) needsTargets() bool {
	switch e.Op {
	case OpStatAura, OpProtect:
		return false
	case OpSpecialSummon:
		return e.Params.From == ZoneGraveyard
	}
	t := e.Params.Target
	return (t.creatures() || t.spellTraps()) && !e.Params.All
}

// targetCount is the number of targets a targeting effect captures.
func (e *Effect) targetCount() int {
	if e.Params.Count > 0 {
		return e.Params.Count
	}
	return 1
}
