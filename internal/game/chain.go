package game

import (
	"go.uber.org/zap"

	"github.com/peterkuimelis/duelcore/internal/log"
)

// ChainLink represents a single link in a chain. Targets are captured when
// the link is created; negation marks a link but never removes it.
type ChainLink struct {
	Index       int        `json:"index"`
	Card        int        `json:"card"`
	Controller  int        `json:"controller"`
	Speed       SpellSpeed `json:"speed"`
	DefID       string     `json:"def"`
	EffectIndex int        `json:"effect"`
	Effect      Effect     `json:"effect_def"`
	Targets     []int      `json:"targets,omitempty"`
	TargetLink  int        `json:"target_link,omitempty"` // link a chain_link negate answers
	EventCard   int        `json:"event_card,omitempty"`
	Activation  bool       `json:"activation,omitempty"` // the link activated a spell/trap card itself
	FromTrigger bool       `json:"from_trigger,omitempty"`
	Negated     bool       `json:"negated,omitempty"`
}

// Chain is the stack of links waiting to resolve, last link on top.
type Chain struct {
	State ChainState  `json:"state"`
	Links []ChainLink `json:"links,omitempty"`
}

// TopSpeed returns the spell speed of the top link, or 0 for an empty chain.
func (c *Chain) TopSpeed() SpellSpeed {
	if len(c.Links) == 0 {
		return 0
	}
	return c.Links[len(c.Links)-1].Speed
}

// Push adds a link on top of the chain. A link slower than the current top
// is rejected and the chain is left as it was.
func (c *Chain) Push(link ChainLink) (int, error) {
	if top := c.TopSpeed(); link.Speed < top {
		return 0, reject(ReasonSpellSpeedTooLow, "speed %d cannot respond to speed %d", link.Speed, top)
	}
	link.Index = len(c.Links) + 1
	c.Links = append(c.Links, link)
	c.State = ChainOpen
	return link.Index, nil
}

// pop removes and returns the top link.
func (c *Chain) pop() ChainLink {
	link := c.Links[len(c.Links)-1]
	c.Links = c.Links[:len(c.Links)-1]
	return link
}

func (c Chain) clone() Chain {
	out := Chain{State: c.State}
	if len(c.Links) > 0 {
		out.Links = make([]ChainLink, len(c.Links))
		for i, l := range c.Links {
			l.Targets = append([]int(nil), l.Targets...)
			out.Links[i] = l
		}
	}
	return out
}

// pushLink adds a link, records its activation limit and hands priority to
// the controller's opponent.
func (d *duel) pushLink(link ChainLink) error {
	st := d.st
	idx, err := st.Chain.Push(link)
	if err != nil {
		return err
	}
	st.OPT.Record(link.Card, link.EffectIndex, link.Effect.Limit)
	d.dropExhaustedOffers()
	name := d.name(link.Card)
	d.log(log.NewChainLinkEvent(st.Turn, d.phase(), link.Controller, name, idx))
	d.e.logger.Debug("chain link added",
		zap.String("match", st.ID),
		zap.Int("link", idx),
		zap.String("card", name),
		zap.Stringer("op", link.Effect.Op),
		zap.Int("speed", int(link.Speed)))
	st.Window = Window{Open: true, Holder: st.Opponent(link.Controller)}
	return nil
}

// pass gives up priority. Two passes in a row close the window.
func (d *duel) pass(player int, explicit bool) {
	st := d.st
	if explicit {
		d.log(log.NewPriorityPassEvent(st.Turn, d.phase(), player))
	}
	st.Window.Passes++
	if st.Window.Passes >= 2 {
		st.Window = Window{}
		return
	}
	st.Window.Holder = st.Opponent(player)
}

// resolveTop resolves the top link of the chain.
func (d *duel) resolveTop() error {
	st := d.st
	st.Chain.State = ChainResolving
	link := st.Chain.pop()
	name := d.name(link.Card)

	if link.Negated {
		d.e.logger.Debug("negated link skipped", zap.String("match", st.ID), zap.Int("link", link.Index), zap.String("card", name))
	} else {
		d.log(log.NewChainResolveEvent(st.Turn, d.phase(), link.Controller, name, link.Index))
		res, err := d.execute(&link)
		if err != nil {
			return err
		}
		d.e.logger.Debug("chain link resolved",
			zap.String("match", st.ID),
			zap.Int("link", link.Index),
			zap.String("card", name),
			zap.Stringer("op", res.Op),
			zap.Bool("noop", res.NoOp))
	}

	d.handlePostResolution(link)
	if len(st.Chain.Links) == 0 {
		st.Chain.State = ChainIdle
	}
	return nil
}

// handlePostResolution sends one-shot spells and traps to the graveyard.
// A negated card activation is sent there whatever its subtype.
func (d *duel) handlePostResolution(link ChainLink) {
	if !link.Activation {
		return
	}
	loc := d.st.Locate(link.Card)
	if loc.Zone != ZoneSpellTrap && loc.Zone != ZoneField {
		return // already moved (destroyed, etc.)
	}
	def := defOf(d.st, d.cat, link.Card)
	if def != nil && def.persistent() && !link.Negated {
		return // stays on field
	}
	reason := "resolved"
	if link.Negated {
		reason = "negated"
	}
	d.sendToGraveyard(link.Card, reason)
}
