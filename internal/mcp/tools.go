// Package mcp exposes matches as Model Context Protocol tools so an AI agent
// can play a seat.
package mcp

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/match"
)

// RegisterTools adds all match tools to the MCP server.
func RegisterTools(s *server.MCPServer, sess *Session) {
	s.AddTool(listDecksTool(), sess.handleListDecks)
	s.AddTool(createMatchTool(), sess.handleCreateMatch)
	s.AddTool(getMatchStateTool(), sess.handleGetMatchState)
	s.AddTool(getAvailableActionsTool(), sess.handleGetAvailableActions)
	s.AddTool(submitActionTool(), sess.handleSubmitAction)
}

// --- Tool definitions ---

func listDecksTool() mcp.Tool {
	return mcp.NewTool("list_decks",
		mcp.WithDescription("List the deck names a match can be created with."),
	)
}

func createMatchTool() mcp.Tool {
	return mcp.NewTool("create_match",
		mcp.WithDescription("Start a new duel. The first player goes first. Returns the match ID, the state as the first player sees it and their legal actions."),
		mcp.WithString("player", mcp.Required(), mcp.Description("Player ID of the first player (usually you)")),
		mcp.WithString("opponent", mcp.Required(), mcp.Description("Player ID of the second player")),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Deck name for the first player (see list_decks)")),
		mcp.WithString("opponent_deck", mcp.Required(), mcp.Description("Deck name for the second player")),
		mcp.WithNumber("seed", mcp.Description("Optional shuffle seed for a reproducible match")),
	)
}

func getMatchStateTool() mcp.Tool {
	return mcp.NewTool("get_match_state",
		mcp.WithDescription("Get the match as the given player sees it, the events since that player's last call and their legal actions. Read-only."),
		mcp.WithString("match_id", mcp.Required(), mcp.Description("Match ID from create_match")),
		mcp.WithString("player", mcp.Required(), mcp.Description("Your player ID")),
	)
}

func getAvailableActionsTool() mcp.Tool {
	return mcp.NewTool("get_available_actions",
		mcp.WithDescription("List the actions the given player may take now, numbered for submit_action. "+
			"An empty list apart from surrender means the opponent must decide first."),
		mcp.WithString("match_id", mcp.Required(), mcp.Description("Match ID from create_match")),
		mcp.WithString("player", mcp.Required(), mcp.Description("Your player ID")),
	)
}

func submitActionTool() mcp.Tool {
	return mcp.NewTool("submit_action",
		mcp.WithDescription("Take an action from the actions list. Actions with a 'choose' count need that many candidates selected."),
		mcp.WithString("match_id", mcp.Required(), mcp.Description("Match ID from create_match")),
		mcp.WithString("player", mcp.Required(), mcp.Description("Your player ID")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the action to take from the actions list")),
		mcp.WithString("candidates", mcp.Description("Space-separated 0-based candidate indices (e.g. '0 2'), or empty for no selection")),
	)
}

// --- Tool handlers ---

func (s *Session) handleListDecks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := make([]string, 0, len(s.decks))
	for _, d := range s.decks {
		names = append(names, d.Name)
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Session) handleCreateMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player := request.GetString("player", "")
	opponent := request.GetString("opponent", "")
	req := match.CreateRequest{
		Players: [2]string{player, opponent},
		Seed:    uint64(request.GetInt("seed", 0)),
	}
	for i, arg := range []string{"deck", "opponent_deck"} {
		d, err := game.DeckByName(s.decks, request.GetString(arg, ""))
		if err != nil {
			return mcp.NewToolResultErrorf("%s: %v", arg, err), nil
		}
		req.Decks[i] = d.Cards
	}

	ms, err := s.svc.CreateMatch(ctx, req)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start match: %v", err), nil
	}
	resp, err := s.respond(ctx, ms.ID, player)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read match: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Session) handleGetMatchState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matchID := request.GetString("match_id", "")
	player := request.GetString("player", "")
	resp, err := s.respond(ctx, matchID, player)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Session) handleGetAvailableActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matchID := request.GetString("match_id", "")
	player := request.GetString("player", "")
	ms, err := s.svc.State(ctx, matchID)
	if err != nil {
		return toolError(err), nil
	}
	actions, err := s.svc.AvailableActions(ctx, matchID, player)
	if err != nil {
		return toolError(err), nil
	}
	resp := &ToolResponse{
		MatchID:  matchID,
		Events:   []match.EventView{},
		Actions:  buildActionViews(ms, s.svc.Engine().Catalog(), actions),
		GameOver: ms.Over,
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Session) handleSubmitAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matchID := request.GetString("match_id", "")
	player := request.GetString("player", "")

	var picks []int
	for _, p := range strings.Fields(request.GetString("candidates", "")) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid index '%s': must be an integer.", p), nil
		}
		picks = append(picks, idx)
	}

	actions, err := s.svc.AvailableActions(ctx, matchID, player)
	if err != nil {
		return toolError(err), nil
	}
	a, err := match.ChooseAction(actions, request.GetInt("index", -1), picks)
	if err != nil {
		return mcp.NewToolResultErrorf("%v. Call get_available_actions for the current list.", err), nil
	}
	if _, err := s.svc.SubmitAction(ctx, matchID, player, a); err != nil {
		return toolError(err), nil
	}

	resp, err := s.respond(ctx, matchID, player)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// toolError reports service errors as tool errors the agent can act on.
func toolError(err error) *mcp.CallToolResult {
	var ae *game.ActionError
	switch {
	case errors.As(err, &ae):
		return mcp.NewToolResultErrorf("Action rejected (%s): %s", ae.Reason, ae.Message)
	case errors.Is(err, match.ErrMatchNotFound):
		return mcp.NewToolResultError("No such match. Use create_match first.")
	case errors.Is(err, match.ErrUnknownPlayer):
		return mcp.NewToolResultError("That player is not seated in this match.")
	}
	return mcp.NewToolResultErrorf("Error: %v", err)
}
