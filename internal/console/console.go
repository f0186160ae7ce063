// Package console plays a match in a terminal: both seats share one
// keyboard (hot seat).
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/log"
	"github.com/peterkuimelis/duelcore/internal/match"
)

// Console renders match views and reads choices.
type Console struct {
	svc    *match.Service
	reader *bufio.Reader
	out    io.Writer
}

func New(svc *match.Service, in io.Reader, out io.Writer) *Console {
	return &Console{svc: svc, reader: bufio.NewReader(in), out: out}
}

// Play runs the match until it ends or input runs out. Events are printed as
// they happen.
func (c *Console) Play(ctx context.Context, matchID string) error {
	backlog, events, cancel := c.svc.Feed(matchID).Replay(1024)
	defer cancel()
	for _, e := range backlog {
		fmt.Fprintln(c.out, log.FormatEvent(e))
	}

	for {
		ms, err := c.svc.State(ctx, matchID)
		if err != nil {
			return err
		}
		if ms.Over {
			c.renderGameOver(ms)
			return nil
		}

		player, actions, err := c.decider(ctx, ms)
		if err != nil {
			return err
		}
		sv, err := c.svc.View(ctx, matchID, player)
		if err != nil {
			return err
		}
		c.renderState(sv)
		c.renderActions(player, actions)

		idx, err := c.readChoice(len(actions))
		if err != nil {
			return err
		}
		var picks []int
		if n := actions[idx].TargetCount; n > 0 {
			c.renderCandidates(ms, actions[idx])
			if picks, err = c.readCardIndices(len(actions[idx].Candidates), n); err != nil {
				return err
			}
		}
		a, err := match.ChooseAction(actions, idx, picks)
		if err != nil {
			fmt.Fprintln(c.out, err)
			continue
		}
		if _, err := c.svc.SubmitAction(ctx, matchID, player, a); err != nil {
			fmt.Fprintf(c.out, "Rejected: %v\n", err)
		}
		drain(events, c.out)
	}
}

// decider finds the player who has more to do than surrender.
func (c *Console) decider(ctx context.Context, ms *game.MatchState) (string, []game.Action, error) {
	for _, p := range ms.PlayerIDs {
		actions, err := c.svc.AvailableActions(ctx, ms.ID, p)
		if err != nil {
			return "", nil, err
		}
		if len(actions) > 1 {
			return p, actions, nil
		}
	}
	return "", nil, fmt.Errorf("match %s: nobody can act", ms.ID)
}

func drain(events <-chan log.GameEvent, out io.Writer) {
	for {
		select {
		case e := <-events:
			fmt.Fprintln(out, log.FormatEvent(e))
		default:
			return
		}
	}
}

func (c *Console) renderGameOver(ms *game.MatchState) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "═══════════════════════════════════")
	fmt.Fprintln(c.out, "          GAME OVER")
	fmt.Fprintln(c.out, "═══════════════════════════════════")
	fmt.Fprintln(c.out, ms.Result)
	fmt.Fprintln(c.out, "═══════════════════════════════════")
}

func (c *Console) renderState(sv *match.StateView) {
	w := c.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")

	opp := sv.Opponent
	fmt.Fprintf(w, "║  %s (LP: %d)  Hand: %d  Deck: %d  Graveyard: %d\n",
		opp.ID, opp.LP, opp.HandCount, opp.DeckCount, len(opp.Graveyard))
	if opp.Field != nil {
		fmt.Fprintf(w, "║  Field:     %s\n", formatSpellTrapZone(*opp.Field))
	}
	fmt.Fprintf(w, "║  Spell/Trap: ")
	for _, z := range opp.SpellTrap {
		fmt.Fprintf(w, "%s ", formatSpellTrapZone(z))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "║  Creatures:  ")
	for _, z := range opp.Board {
		fmt.Fprintf(w, "%s ", formatBoardZone(z))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")

	you := sv.You
	fmt.Fprintf(w, "║  Creatures:  ")
	for _, z := range you.Board {
		fmt.Fprintf(w, "%s ", formatBoardZone(z))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "║  Spell/Trap: ")
	for _, z := range you.SpellTrap {
		fmt.Fprintf(w, "%s ", formatSpellTrapZone(z))
	}
	fmt.Fprintln(w)
	if you.Field != nil {
		fmt.Fprintf(w, "║  Field:     %s\n", formatSpellTrapZone(*you.Field))
	}
	fmt.Fprintf(w, "║  %s (LP: %d)  Hand: %d  Deck: %d  Graveyard: %d\n",
		you.ID, you.LP, you.HandCount, you.DeckCount, len(you.Graveyard))
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(w, turnInfo)
	for _, l := range sv.Chain {
		fmt.Fprintf(w, "Chain Link %d: %s (P%d)\n", l.Index, l.Card, l.Controller+1)
	}

	if len(you.Hand) > 0 {
		fmt.Fprintf(w, "\nHand: ")
		for i, cv := range you.Hand {
			fmt.Fprintf(w, "[%d] %s  ", i+1, cv.Name)
		}
		fmt.Fprintln(w)
	}
}

func formatBoardZone(zv match.ZoneView) string {
	if zv.Empty {
		return "[ ]"
	}
	if zv.FaceDown {
		if zv.Name != "" {
			return fmt.Sprintf("[SET:%s]", zv.Name)
		}
		return "[SET]"
	}
	if zv.Position == "ATK" {
		return fmt.Sprintf("[%s ATK/%d]", zv.Name, zv.ATK)
	}
	return fmt.Sprintf("[%s DEF/%d]", zv.Name, zv.DEF)
}

func formatSpellTrapZone(zv match.ZoneView) string {
	if zv.Empty {
		return "[ ]"
	}
	if zv.FaceDown {
		return "[SET]"
	}
	return fmt.Sprintf("[%s]", zv.Name)
}

func (c *Console) renderActions(player string, actions []game.Action) {
	fmt.Fprintf(c.out, "\n%s, choose an action:\n", player)
	for i, a := range actions {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, a)
	}
}

func (c *Console) renderCandidates(ms *game.MatchState, a game.Action) {
	cat := c.svc.Engine().Catalog()
	fmt.Fprintf(c.out, "\nSelect %d:\n", a.TargetCount)
	for i, id := range a.Candidates {
		if b := ms.BoardCard(id); b != nil {
			fmt.Fprintf(c.out, "  %d) %s (ATK %d / DEF %d)\n", i+1, cat.InstanceName(ms, id), b.ATK, b.DEF)
		} else {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, cat.InstanceName(ms, id))
		}
	}
}

func (c *Console) readLine() (string, error) {
	fmt.Fprint(c.out, "> ")
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) readChoice(count int) (int, error) {
	for {
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > count {
			fmt.Fprintf(c.out, "Enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1, nil // convert to 0-indexed
	}
}

func (c *Console) readCardIndices(count, want int) ([]int, error) {
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		parts := strings.Fields(line)
		if len(parts) != want {
			fmt.Fprintf(c.out, "Enter %d number(s) separated by spaces\n", want)
			continue
		}

		var indices []int
		valid := true
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 || n > count {
				fmt.Fprintf(c.out, "Each number must be between 1 and %d\n", count)
				valid = false
				break
			}
			indices = append(indices, n-1) // convert to 0-indexed
		}
		if valid {
			return indices, nil
		}
	}
}
