package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/catalog"
	"github.com/holotable/holotable-server-go/internal/config"
	"github.com/holotable/holotable-server-go/internal/game"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

var errNotInGame = errors.New("not in a game")

// Server exposes games over websockets: clients create or join games, get
// every view of their game pushed, and answer decisions.
type Server struct {
	cfg      config.WebSocketConfig
	manager  *game.Manager
	catalog  *catalog.Catalog
	logger   *zap.Logger
	upgrader websocket.Upgrader
	hub      *Hub
}

// NewServer creates a websocket server for the manager's games. Decks are
// looked up by name in the catalog.
func NewServer(cfg config.WebSocketConfig, manager *game.Manager, cat *catalog.Catalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		manager: manager,
		catalog: cat,
		logger:  logger,
		hub:     newHub(logger),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *Server) pongWait() time.Duration {
	return s.cfg.PingInterval * 2
}

// Handler returns the HTTP handler serving the websocket endpoint and a
// health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down within shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	go s.hub.run(ctx)

	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting WebSocket server",
			zap.String("address", s.cfg.Address),
			zap.String("path", s.cfg.Path),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := newClient(s.hub, conn, s.logger)
	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}
	go client.writePump(s.cfg.WriteTimeout, s.cfg.PingInterval)
	go client.readPump(s)
}

func decodeData(msg WSMessage, v any) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("%s: missing data", msg.Type)
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%s: invalid data: %w", msg.Type, err)
	}
	return nil
}

func (s *Server) handleMessage(c *Client, msg WSMessage) error {
	switch msg.Type {
	case MsgCreateGame:
		return s.createGame(c, msg)
	case MsgJoinGame:
		return s.joinGame(c, msg)
	case MsgListDecks:
		frame, err := encode(MsgDecks, "", "", s.catalog.DeckNames())
		if err != nil {
			return err
		}
		c.enqueue(frame)
		return nil
	}

	g, playerID := c.current()
	if g == nil {
		return errNotInGame
	}
	if playerID == "" {
		return fmt.Errorf("%s: spectators cannot act", msg.Type)
	}

	switch msg.Type {
	case MsgDecision:
		var req DecisionRequest
		if err := decodeData(msg, &req); err != nil {
			return err
		}
		return g.SubmitDecision(playerID, req.DecisionID, req.Answer)
	case MsgRevert:
		return g.RequestRevert(playerID)
	case MsgConcede:
		return g.Concede(playerID)
	case MsgCancel:
		return g.RequestCancel(playerID)
	case MsgAutoPass:
		var req AutoPassRequest
		if err := decodeData(msg, &req); err != nil {
			return err
		}
		phase, err := state.ParsePhase(req.Phase)
		if err != nil {
			return err
		}
		return g.SetAutoPass(playerID, phase, req.Enabled)
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

func (s *Server) createGame(c *Client, msg WSMessage) error {
	var req CreateGameRequest
	if err := decodeData(msg, &req); err != nil {
		return err
	}
	darkDeck, err := s.catalog.Deck(req.DarkDeck)
	if err != nil {
		return err
	}
	lightDeck, err := s.catalog.Deck(req.LightDeck)
	if err != nil {
		return err
	}
	g, err := s.manager.Create(
		game.Seat{PlayerID: req.DarkPlayer, Deck: darkDeck},
		game.Seat{PlayerID: req.LightPlayer, Deck: lightDeck},
	)
	if err != nil {
		return err
	}
	if msg.PlayerID != "" && msg.PlayerID != req.DarkPlayer && msg.PlayerID != req.LightPlayer {
		s.manager.Remove(g.ID())
		return fmt.Errorf("%w: %s", game.ErrUnknownPlayer, msg.PlayerID)
	}

	frame, err := encode(MsgGameCreated, g.ID(), msg.PlayerID, nil)
	if err != nil {
		return err
	}
	c.enqueue(frame)
	c.join(g, msg.PlayerID)
	if err := g.Start(); err != nil {
		return err
	}
	s.logger.Info("game started over websocket",
		zap.String("game_id", g.ID()),
		zap.String("dark_player", req.DarkPlayer),
		zap.String("light_player", req.LightPlayer),
	)
	return nil
}

func (s *Server) joinGame(c *Client, msg WSMessage) error {
	g, err := s.manager.Get(msg.GameID)
	if err != nil {
		return err
	}
	if msg.PlayerID != "" {
		r := g.Replay()
		if msg.PlayerID != r.Dark.PlayerID && msg.PlayerID != r.Light.PlayerID {
			return fmt.Errorf("%w: %s", game.ErrUnknownPlayer, msg.PlayerID)
		}
	}
	c.join(g, msg.PlayerID)
	return nil
}
