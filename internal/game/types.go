package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseDraw
	PhaseStandby
	PhaseMain1
	PhaseBattle
	PhaseMain2
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseDraw:
		return "Draw Phase"
	case PhaseStandby:
		return "Standby Phase"
	case PhaseMain1:
		return "Main Phase 1"
	case PhaseBattle:
		return "Battle Phase"
	case PhaseMain2:
		return "Main Phase 2"
	case PhaseEnd:
		return "End Phase"
	default:
		return "None"
	}
}

// IsMain reports whether the phase is one of the two main phases.
func (p Phase) IsMain() bool {
	return p == PhaseMain1 || p == PhaseMain2
}

type Position int

const (
	PositionATK Position = iota
	PositionDEF
)

func (p Position) String() string {
	if p == PositionATK {
		return "ATK"
	}
	return "DEF"
}

type FaceStatus int

const (
	FaceUp FaceStatus = iota
	FaceDown
)

func (f FaceStatus) String() string {
	if f == FaceUp {
		return "face-up"
	}
	return "face-down"
}

type CardKind int

const (
	KindCreature CardKind = iota
	KindSpell
	KindTrap
)

func (k CardKind) String() string {
	switch k {
	case KindCreature:
		return "Creature"
	case KindSpell:
		return "Spell"
	case KindTrap:
		return "Trap"
	default:
		return "Unknown"
	}
}

type SpellSubtype int

const (
	SpellNormal SpellSubtype = iota
	SpellQuickPlay
	SpellContinuous
	SpellField
)

type TrapSubtype int

const (
	TrapNormal TrapSubtype = iota
	TrapContinuous
	TrapCounter
)

// SpellSpeed orders which effects may respond to which.
type SpellSpeed int

const (
	Speed1 SpellSpeed = 1
	Speed2 SpellSpeed = 2
	Speed3 SpellSpeed = 3
)

// --- Zone types ---

type ZoneType int

const (
	ZoneNone ZoneType = iota
	ZoneDeck
	ZoneHand
	ZoneBoard
	ZoneSpellTrap
	ZoneField
	ZoneGraveyard
	ZoneBanished
)

func (z ZoneType) String() string {
	switch z {
	case ZoneDeck:
		return "Deck"
	case ZoneHand:
		return "Hand"
	case ZoneBoard:
		return "Board"
	case ZoneSpellTrap:
		return "Spell/Trap Zone"
	case ZoneField:
		return "Field Zone"
	case ZoneGraveyard:
		return "Graveyard"
	case ZoneBanished:
		return "Banished"
	default:
		return "None"
	}
}

// OnField reports whether the zone is part of the field (board, spell/trap or field slot).
func (z ZoneType) OnField() bool {
	return z == ZoneBoard || z == ZoneSpellTrap || z == ZoneField
}

// --- Action types ---

type ActionType int

const (
	ActionNormalSummon ActionType = iota // includes tribute summons
	ActionSet                            // creature face-down DEF, or spell/trap face-down
	ActionFlipSummon
	ActionChangePosition
	ActionActivate
	ActionAttack
	ActionRespond // add a link to an open chain, or accept an offered trigger
	ActionPass    // pass priority, or decline an offered trigger
	ActionEnterBattlePhase
	ActionEnterMainPhase2
	ActionEndTurn
	ActionSurrender
)

var actionTypeNames = [...]string{
	ActionNormalSummon:     "normal_summon",
	ActionSet:              "set",
	ActionFlipSummon:       "flip_summon",
	ActionChangePosition:   "change_position",
	ActionActivate:         "activate",
	ActionAttack:           "attack",
	ActionRespond:          "respond",
	ActionPass:             "pass",
	ActionEnterBattlePhase: "enter_battle_phase",
	ActionEnterMainPhase2:  "enter_main_phase_2",
	ActionEndTurn:          "end_turn",
	ActionSurrender:        "surrender",
}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionTypeNames) {
		return "unknown"
	}
	return actionTypeNames[a]
}

// ParseActionType maps a wire name to an ActionType.
func ParseActionType(s string) (ActionType, bool) {
	for i, name := range actionTypeNames {
		if name == s {
			return ActionType(i), true
		}
	}
	return 0, false
}

func (a ActionType) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(actionTypeNames) {
		return nil, fmt.Errorf("unknown action type %d", int(a))
	}
	return []byte(actionTypeNames[a]), nil
}

func (a *ActionType) UnmarshalText(b []byte) error {
	t, ok := ParseActionType(string(b))
	if !ok {
		return fmt.Errorf("unknown action type %q", b)
	}
	*a = t
	return nil
}

// Action represents a player action with all necessary details. Card and
// target references are card instance IDs; 0 means "none".
type Action struct {
	Type     ActionType `json:"type"`
	Player   int        `json:"player"`
	Card     int        `json:"card,omitempty"`
	Effect   int        `json:"effect,omitempty"`   // effect index on the card definition
	Target   int        `json:"target,omitempty"`   // attack target; 0 = direct attack
	Targets  []int      `json:"targets,omitempty"`  // effect targets, captured at activation
	Tributes []int      `json:"tributes,omitempty"` // creatures tributed for a normal summon

	// Populated by AvailableActions so callers can present choices.
	TargetCount int    `json:"target_count,omitempty"`
	Candidates  []int  `json:"candidates,omitempty"`
	Desc        string `json:"desc,omitempty"`
}

func (a Action) String() string {
	if a.Desc != "" {
		return a.Desc
	}
	if a.Card != 0 {
		return fmt.Sprintf("%s #%d", a.Type, a.Card)
	}
	return a.Type.String()
}
