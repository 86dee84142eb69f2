package game

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/rules"
)

// Manager keeps the running games of a server. Games share nothing; the
// manager only guards its index.
type Manager struct {
	logger  *zap.Logger
	cfg     Config
	library rules.Library

	mu        sync.RWMutex
	games     map[string]*Game
	observers []func(g *Game)
}

// NewManager creates a manager that builds games with the given settings
// and card library.
func NewManager(cfg Config, lib rules.Library, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:  logger,
		cfg:     cfg,
		library: lib,
		games:   make(map[string]*Game),
	}
}

// Observe registers a function called with every game the manager creates,
// before the game starts. Listeners attached there see the whole game.
func (m *Manager) Observe(f func(g *Game)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, f)
}

// Create builds a game and registers it. The game is not started.
func (m *Manager) Create(dark, light Seat) (*Game, error) {
	g, err := NewGame(m.cfg, m.library, dark, light, m.logger)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	m.mu.Lock()
	m.games[g.ID()] = g
	observers := append([]func(*Game){}, m.observers...)
	m.mu.Unlock()
	for _, f := range observers {
		f(g)
	}

	m.logger.Info("game created",
		zap.String("game_id", g.ID()),
		zap.String("dark_player", dark.PlayerID),
		zap.String("light_player", light.PlayerID),
	)
	return g, nil
}

// Get returns a game by id.
func (m *Manager) Get(gameID string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// Remove forgets a game.
func (m *Manager) Remove(gameID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return false
	}
	delete(m.games, gameID)
	m.logger.Info("game removed", zap.String("game_id", gameID))
	return true
}

// List returns the ids of all games, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
