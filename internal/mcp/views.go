package mcp

import (
	"github.com/peterkuimelis/duelcore/internal/game"
)

// ActionView is a numbered action choice.
type ActionView struct {
	Index      int        `json:"index"`
	Desc       string     `json:"desc"`
	Type       string     `json:"type"`
	Choose     int        `json:"choose,omitempty"` // how many candidates to select
	Candidates []CardView `json:"candidates,omitempty"`
}

// CardView describes a card candidate for selection.
type CardView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	ATK   int    `json:"atk,omitempty"`
	DEF   int    `json:"def,omitempty"`
}

// buildActionViews numbers the legal actions so an agent can answer with
// indices instead of instance IDs.
func buildActionViews(ms *game.MatchState, cat *game.Catalog, actions []game.Action) []ActionView {
	views := make([]ActionView, 0, len(actions))
	for i, a := range actions {
		av := ActionView{Index: i, Desc: a.String(), Type: a.Type.String(), Choose: a.TargetCount}
		for j, id := range a.Candidates {
			cv := CardView{Index: j, Name: cat.InstanceName(ms, id)}
			if b := ms.BoardCard(id); b != nil {
				cv.ATK = b.ATK
				cv.DEF = b.DEF
			}
			av.Candidates = append(av.Candidates, cv)
		}
		views = append(views, av)
	}
	return views
}
