package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventMatchStart EventType = iota
	EventNewTurn
	EventPhaseChange
	EventDraw
	EventNormalSummon
	EventTributeSummon
	EventFlipSummon
	EventSpecialSummon
	EventSetCreature
	EventSetSpellTrap
	EventChangePosition
	EventTokenCreated
	EventTokenRemoved
	EventActivate
	EventChainLink
	EventChainResolve
	EventChainNegated
	EventPriorityPass
	EventTriggerOffered
	EventAttackDeclare
	EventDirectAttackDeclare
	EventAttackStopped
	EventDamageCalc
	EventBattleDamage
	EventBattleDestroy
	EventDestroy
	EventSendToGraveyard
	EventBanish
	EventAddToHand
	EventReturnToHand
	EventDiscard
	EventLPChange
	EventModifierAdded
	EventModifierExpired
	EventFlip // flipped face-up by an attack or effect, not a flip summon
	EventShuffle
	EventDeckOut
	EventSurrender
	EventWin
)

var eventTypeNames = [...]string{
	EventMatchStart:          "MatchStart",
	EventNewTurn:             "NewTurn",
	EventPhaseChange:         "PhaseChange",
	EventDraw:                "Draw",
	EventNormalSummon:        "NormalSummon",
	EventTributeSummon:       "TributeSummon",
	EventFlipSummon:          "FlipSummon",
	EventSpecialSummon:       "SpecialSummon",
	EventSetCreature:         "SetCreature",
	EventSetSpellTrap:        "SetSpellTrap",
	EventChangePosition:      "ChangePosition",
	EventTokenCreated:        "TokenCreated",
	EventTokenRemoved:        "TokenRemoved",
	EventActivate:            "Activate",
	EventChainLink:           "ChainLink",
	EventChainResolve:        "ChainResolve",
	EventChainNegated:        "ChainNegated",
	EventPriorityPass:        "PriorityPass",
	EventTriggerOffered:      "TriggerOffered",
	EventAttackDeclare:       "AttackDeclare",
	EventDirectAttackDeclare: "DirectAttackDeclare",
	EventAttackStopped:       "AttackStopped",
	EventDamageCalc:          "DamageCalc",
	EventBattleDamage:        "BattleDamage",
	EventBattleDestroy:       "BattleDestroy",
	EventDestroy:             "Destroy",
	EventSendToGraveyard:     "SendToGraveyard",
	EventBanish:              "Banish",
	EventAddToHand:           "AddToHand",
	EventReturnToHand:        "ReturnToHand",
	EventDiscard:             "Discard",
	EventLPChange:            "LPChange",
	EventModifierAdded:       "ModifierAdded",
	EventModifierExpired:     "ModifierExpired",
	EventFlip:                "Flip",
	EventShuffle:             "Shuffle",
	EventDeckOut:             "DeckOut",
	EventSurrender:           "Surrender",
	EventWin:                 "Win",
}

func (e EventType) String() string {
	if e < 0 || int(e) >= len(eventTypeNames) {
		return "Unknown"
	}
	return eventTypeNames[e]
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       `json:"seq"`            // monotonic sequence number
	MatchID string    `json:"match,omitempty"` // set by the hosting layer
	Turn    int       `json:"turn"`
	Phase   string    `json:"phase"`
	Player  int       `json:"player"`
	Type    EventType `json:"type"`
	Card    string    `json:"card,omitempty"`
	Details string    `json:"details"`
}
