// Package web serves matches over HTTP and a live websocket feed.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/match"
)

// playerHeader identifies the caller. The query parameter "player" is
// accepted as a fallback for browsers opening a websocket.
const playerHeader = "X-Player-ID"

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"`
	Subtype     string `json:"subtype,omitempty"`
	Level       int    `json:"level,omitempty"`
	Race        string `json:"race,omitempty"`
	ATK         int    `json:"atk,omitempty"`
	DEF         int    `json:"def,omitempty"`
	Effects     int    `json:"effects,omitempty"`
}

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Size   int      `json:"size"`
	Cards  []string `json:"cards"`
}

// CreateMatchResponse names the new match. Each player fetches their own view.
type CreateMatchResponse struct {
	MatchID string    `json:"match_id"`
	Players [2]string `json:"players"`
}

// ActionRequest is the body of a submitted action.
type ActionRequest struct {
	Action game.Action `json:"action"`
}

// ActionsResponse lists the caller's legal actions.
type ActionsResponse struct {
	Actions []game.Action `json:"actions"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error  string      `json:"error"`
	Reason game.Reason `json:"reason,omitempty"`
}

// Server is the duel HTTP server.
type Server struct {
	svc    *match.Service
	decks  []game.Deck
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewServer creates a new web server over a match service. decks are the
// named decks a match may be created from.
func NewServer(svc *match.Service, decks []game.Deck, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:    svc,
		decks:  decks,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)

	s.mux.HandleFunc("GET /api/matches", s.handleListMatches)
	s.mux.HandleFunc("POST /api/matches", s.handleCreateMatch)
	s.mux.HandleFunc("GET /api/matches/{id}", s.handleMatchState)
	s.mux.HandleFunc("GET /api/matches/{id}/actions", s.handleAvailableActions)
	s.mux.HandleFunc("POST /api/matches/{id}/actions", s.handleSubmitAction)
	s.mux.HandleFunc("GET /api/matches/{id}/events", s.handleEvents)

	s.mux.HandleFunc("GET /ws/matches/{id}", s.handleWebSocket)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server and stops it when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	s.logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ae *game.ActionError
	switch {
	case errors.As(err, &ae):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: ae.Message, Reason: ae.Reason})
	case errors.Is(err, match.ErrMatchNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, match.ErrUnknownPlayer):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func playerID(r *http.Request) string {
	if id := r.Header.Get(playerHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("player")
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := []CardInfo{}
	for _, c := range s.svc.Engine().Catalog().Cards() {
		ci := CardInfo{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Kind:        c.Kind.String(),
			Level:       c.Level,
			Race:        c.Race,
			ATK:         c.ATK,
			DEF:         c.DEF,
			Effects:     len(c.Effects),
		}
		switch c.Kind {
		case game.KindSpell:
			ci.Subtype = spellSubtypeString(c.SpellSub)
		case game.KindTrap:
			ci.Subtype = trapSubtypeString(c.TrapSub)
		}
		cards = append(cards, ci)
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	cat := s.svc.Engine().Catalog()
	decks := []DeckInfo{}
	for i, d := range s.decks {
		di := DeckInfo{
			Number: i + 1,
			Name:   d.Name,
			Size:   len(d.Cards),
		}
		// Unique card names for display
		seen := make(map[string]bool)
		for _, id := range d.Cards {
			if seen[id] {
				continue
			}
			seen[id] = true
			if def, ok := cat.Card(id); ok {
				di.Cards = append(di.Cards, def.Name)
			}
		}
		decks = append(decks, di)
	}
	writeJSON(w, http.StatusOK, decks)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.ListMatches(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"matches": ids})
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	cr, err := s.resolveDecks(req)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	ms, err := s.svc.CreateMatch(r.Context(), cr)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, CreateMatchResponse{MatchID: ms.ID, Players: ms.PlayerIDs})
}

func (s *Server) handleMatchState(w http.ResponseWriter, r *http.Request) {
	sv, err := s.svc.View(r.Context(), r.PathValue("id"), playerID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

func (s *Server) handleAvailableActions(w http.ResponseWriter, r *http.Request) {
	actions, err := s.svc.AvailableActions(r.Context(), r.PathValue("id"), playerID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if actions == nil {
		actions = []game.Action{}
	}
	writeJSON(w, http.StatusOK, ActionsResponse{Actions: actions})
}

func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid action: "+err.Error())
		return
	}
	id, player := r.PathValue("id"), playerID(r)
	if _, err := s.svc.SubmitAction(r.Context(), id, player, req.Action); err != nil {
		s.writeError(w, err)
		return
	}
	sv, err := s.svc.View(r.Context(), id, player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	_, feed, err := s.svc.Watch(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	events := []match.EventView{}
	for _, e := range feed.Events() {
		events = append(events, match.NewEventView(e))
	}
	writeJSON(w, http.StatusOK, events)
}

// socketMessage is the envelope for all websocket traffic. Clients send
// "action"; the server sends "event", "state" and "error".
type socketMessage struct {
	Type   string           `json:"type"`
	Action *game.Action     `json:"action,omitempty"`
	Event  *match.EventView `json:"event,omitempty"`
	State  *match.StateView `json:"state,omitempty"`
	Error  *ErrorResponse   `json:"error,omitempty"`
}

// handleWebSocket streams a match's events and accepts actions from its
// players. Spectators (no player ID) only receive events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, player := r.PathValue("id"), playerID(r)
	_, feed, err := s.svc.Watch(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	backlog, events, unsubscribe := feed.Replay(64)
	defer unsubscribe()

	var writeMu sync.Mutex
	send := func(msg socketMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return wsjson.Write(ctx, wsConn, msg)
	}

	for _, e := range backlog {
		ev := match.NewEventView(e)
		if err := send(socketMessage{Type: "event", Event: &ev}); err != nil {
			return
		}
	}

	done := make(chan struct{})

	// feed → websocket
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				ev := match.NewEventView(e)
				if err := send(socketMessage{Type: "event", Event: &ev}); err != nil {
					return
				}
			}
		}
	}()

	// websocket → service
	for {
		var msg socketMessage
		if err := wsjson.Read(ctx, wsConn, &msg); err != nil {
			break
		}
		if msg.Type != "action" || msg.Action == nil || player == "" {
			send(socketMessage{Type: "error", Error: &ErrorResponse{Error: "expected an action from a seated player"}})
			continue
		}
		if _, err := s.svc.SubmitAction(ctx, id, player, *msg.Action); err != nil {
			send(socketMessage{Type: "error", Error: socketError(err)})
			continue
		}
		if sv, err := s.svc.View(ctx, id, player); err == nil {
			send(socketMessage{Type: "state", State: sv})
		}
	}
	cancel()
	<-done
	wsConn.Close(websocket.StatusNormalClosure, "")
}

func socketError(err error) *ErrorResponse {
	var ae *game.ActionError
	if errors.As(err, &ae) {
		return &ErrorResponse{Error: ae.Message, Reason: ae.Reason}
	}
	return &ErrorResponse{Error: err.Error()}
}

func spellSubtypeString(sub game.SpellSubtype) string {
	switch sub {
	case game.SpellNormal:
		return "Normal"
	case game.SpellQuickPlay:
		return "Quick-Play"
	case game.SpellContinuous:
		return "Continuous"
	case game.SpellField:
		return "Field"
	default:
		return ""
	}
}

func trapSubtypeString(sub game.TrapSubtype) string {
	switch sub {
	case game.TrapNormal:
		return "Normal"
	case game.TrapContinuous:
		return "Continuous"
	case game.TrapCounter:
		return "Counter"
	default:
		return ""
	}
}
