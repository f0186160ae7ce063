package game

import "strconv"

// OPTTracker counts limited activations. Per-turn counts reset whenever the
// turn owner changes; per-duel counts only reset with a new match.
type OPTTracker struct {
	TurnOwner int            `json:"turn_owner"`
	PerTurn   map[string]int `json:"per_turn,omitempty"`
	PerDuel   map[string]int `json:"per_duel,omitempty"`
}

func NewOPTTracker() OPTTracker {
	return OPTTracker{
		PerTurn: make(map[string]int),
		PerDuel: make(map[string]int),
	}
}

func optKey(instanceID, effectIndex int) string {
	return strconv.Itoa(instanceID) + ":" + strconv.Itoa(effectIndex)
}

// CanActivate reports whether the effect has activations left under its limit.
func (t *OPTTracker) CanActivate(instanceID, effectIndex int, limit Limit) bool {
	key := optKey(instanceID, effectIndex)
	switch limit {
	case LimitPerTurn:
		return t.PerTurn[key] == 0
	case LimitPerDuel:
		return t.PerDuel[key] == 0
	}
	return true
}

// Record counts one activation.
func (t *OPTTracker) Record(instanceID, effectIndex int, limit Limit) {
	key := optKey(instanceID, effectIndex)
	switch limit {
	case LimitPerTurn:
		if t.PerTurn == nil {
			t.PerTurn = make(map[string]int)
		}
		t.PerTurn[key]++
	case LimitPerDuel:
		if t.PerDuel == nil {
			t.PerDuel = make(map[string]int)
		}
		t.PerDuel[key]++
	}
}

// TurnChanged resets per-turn counts if the turn passed to a different player.
func (t *OPTTracker) TurnChanged(owner int) {
	if owner == t.TurnOwner {
		return
	}
	t.TurnOwner = owner
	t.PerTurn = make(map[string]int)
}

func (t OPTTracker) clone() OPTTracker {
	c := OPTTracker{TurnOwner: t.TurnOwner, PerTurn: make(map[string]int, len(t.PerTurn)), PerDuel: make(map[string]int, len(t.PerDuel))}
	for k, v := range t.PerTurn {
		c.PerTurn[k] = v
	}
	for k, v := range t.PerDuel {
		c.PerDuel[k] = v
	}
	return c
}
