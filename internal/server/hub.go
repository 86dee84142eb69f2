package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game"
)

const (
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// Hub tracks connected clients.
type Hub struct {
	logger     *zap.Logger
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]bool
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("remote_addr", client.remoteAddr()))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			delete(h.clients, client)
			h.mu.Unlock()
			if ok {
				client.leave()
				client.close()
				h.logger.Debug("client unregistered",
					zap.String("player_id", client.PlayerID()),
					zap.String("game_id", client.GameID()),
				)
			}

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.leave()
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one websocket connection. It receives the views of the game it
// joined as a game.StateListener.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	mu       sync.Mutex
	closed   bool
	playerID string
	gameID   string
	game     *game.Game
}

func newClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

func (c *Client) remoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// PlayerID returns the player the client plays as, empty for spectators.
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

// GameID returns the joined game's id.
func (c *Client) GameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

func (c *Client) current() (*game.Game, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game, c.playerID
}

// enqueue queues a frame without blocking. Frames for a slow client are
// dropped.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn("dropping frame for slow client",
			zap.String("player_id", c.playerID),
			zap.String("game_id", c.gameID),
		)
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// join attaches the client to a game, leaving any previous one.
func (c *Client) join(g *game.Game, playerID string) {
	c.leave()
	c.mu.Lock()
	c.game = g
	c.gameID = g.ID()
	c.playerID = playerID
	c.mu.Unlock()
	g.AddStateListener(playerID, c)
}

func (c *Client) leave() {
	c.mu.Lock()
	g := c.game
	c.game = nil
	c.gameID = ""
	c.mu.Unlock()
	if g != nil {
		g.RemoveStateListener(c)
	}
}

// SendState implements game.StateListener.
func (c *Client) SendState(view game.GameView, reverted bool) {
	frame, err := encode(MsgGameState, view.GameID, view.Viewer, StatePayload{View: view, Reverted: reverted})
	if err != nil {
		c.logger.Error("failed to encode game state", zap.Error(err))
		return
	}
	c.enqueue(frame)
}

// SendWarning implements game.StateListener.
func (c *Client) SendWarning(playerID, text string) {
	frame, err := encode(MsgWarning, c.GameID(), playerID, WarningPayload{Text: text})
	if err != nil {
		c.logger.Error("failed to encode warning", zap.Error(err))
		return
	}
	c.enqueue(frame)
}

func (c *Client) readPump(s *Server) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	pongWait := s.pongWait()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		if err := s.handleMessage(c, msg); err != nil {
			s.logger.Debug("request rejected",
				zap.String("type", msg.Type),
				zap.String("player_id", c.PlayerID()),
				zap.Error(err),
			)
			if frame, encErr := encode(MsgError, msg.GameID, msg.PlayerID, ErrorPayload{Error: err.Error()}); encErr == nil {
				c.enqueue(frame)
			}
		}
	}
}

func (c *Client) writePump(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
