package game

import "fmt"

// Reason is a machine-readable code for a rejected action.
type Reason string

const (
	ReasonNotYourTurn      Reason = "not_your_turn"
	ReasonWrongPhase       Reason = "wrong_phase"
	ReasonNoPriority       Reason = "no_priority"
	ReasonCardNotFound     Reason = "card_not_found"
	ReasonZoneFull         Reason = "zone_full"
	ReasonIllegalTarget    Reason = "illegal_target"
	ReasonTargetProtected  Reason = "target_protected"
	ReasonSpellSpeedTooLow Reason = "spell_speed_too_low"
	ReasonLimitReached     Reason = "limit_reached"
	ReasonCannotActivate   Reason = "cannot_activate"
	ReasonMatchOver        Reason = "match_over"
	ReasonSummonUsed       Reason = "summon_used"
	ReasonAlreadyAttacked  Reason = "already_attacked"
	ReasonCannotAttack     Reason = "cannot_attack"
	ReasonTributeRequired  Reason = "tribute_required"
	ReasonUnknownAction    Reason = "unknown_action"
	ReasonPendingDecision  Reason = "pending_decision"
	ReasonPositionLocked   Reason = "position_locked"
)

// ActionError rejects a submitted action. The match state is left unchanged.
type ActionError struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func reject(reason Reason, format string, args ...any) *ActionError {
	return &ActionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// DefinitionError reports a malformed card definition at catalog load.
type DefinitionError struct {
	Card  string
	Field string
	Msg   string
}

func (e *DefinitionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("card %q: %s", e.Card, e.Msg)
	}
	return fmt.Sprintf("card %q: %s: %s", e.Card, e.Field, e.Msg)
}

// InvariantError is a broken board invariant. It indicates an engine bug and
// is never the result of a bad action.
type InvariantError struct {
	Check  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Check, e.Detail)
}
