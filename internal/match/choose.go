package match

import (
	"fmt"

	"github.com/peterkuimelis/duelcore/internal/game"
)

// ChooseAction turns an action index plus candidate indices into the action
// to submit. Candidates of a summon are tributes; for anything else they are
// effect targets.
func ChooseAction(actions []game.Action, index int, picks []int) (game.Action, error) {
	if index < 0 || index >= len(actions) {
		return game.Action{}, fmt.Errorf("invalid index %d, must be 0-%d", index, len(actions)-1)
	}
	a := actions[index]
	if len(picks) != a.TargetCount {
		return game.Action{}, fmt.Errorf("must select exactly %d card(s), got %d", a.TargetCount, len(picks))
	}
	seen := make(map[int]bool)
	var chosen []int
	for _, p := range picks {
		if p < 0 || p >= len(a.Candidates) {
			return game.Action{}, fmt.Errorf("candidate %d out of range, must be 0-%d", p, len(a.Candidates)-1)
		}
		if seen[p] {
			return game.Action{}, fmt.Errorf("candidate %d selected twice", p)
		}
		seen[p] = true
		chosen = append(chosen, a.Candidates[p])
	}
	switch a.Type {
	case game.ActionNormalSummon, game.ActionSet:
		a.Tributes = chosen
	default:
		a.Targets = chosen
	}
	a.Candidates, a.TargetCount, a.Desc = nil, 0, ""
	return a, nil
}
