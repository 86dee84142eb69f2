package game

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// pendingDecision is an open question for one player. Answers either go to
// the memory of the asking action or to a handler.
type pendingDecision struct {
	decision *decisions.Decision
	actionID string
	key      string
	handler  func(values []string) error
}

// Game runs one two-player game. Every public method takes the game's lock
// and runs the resolution cycle synchronously, so a game never resolves
// two things at once.
type Game struct {
	mu sync.Mutex

	id      string
	cfg     Config
	seed    uint64
	seats   [2]Seat
	logger  *zap.Logger
	library rules.Library
	env     rules.Env

	state     *state.GameState
	modifiers *modifiers.Registry
	stack     *rules.ActionStack
	procedure *Procedure

	pendingResults []rules.EffectResult
	decisions      map[string][]*pendingDecision

	snapshots      []*Snapshot
	nextSnapshotID int
	pendingRestore *Snapshot

	stateListeners      []stateListenerEntry
	resultListeners     []ResultListener
	statisticsListeners []StatisticsListener

	started        bool
	finished       bool
	cancelled      bool
	winner         string
	reason         string
	losers         map[string]string
	cancelRequests map[string]bool
	extendRequests map[string]int
	disableTimer   map[string]bool
	autoPass       map[string]map[state.Phase]bool
	warnings       map[string][]string

	replay *Replay
}

// NewGame seats the dark and light players and builds their reserve decks in
// deck order. The game does nothing until Start is called.
func NewGame(cfg Config, lib rules.Library, dark, light Seat, logger *zap.Logger) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dark.PlayerID == "" || light.PlayerID == "" || dark.PlayerID == light.PlayerID {
		return nil, fmt.Errorf("two distinct players required, got %q and %q", dark.PlayerID, light.PlayerID)
	}
	if dark.Deck.Side != state.SideDark || light.Deck.Side != state.SideLight {
		return nil, fmt.Errorf("expected a dark side and a light side deck, got %s and %s", dark.Deck.Side, light.Deck.Side)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	g := &Game{
		id:             uuid.NewString(),
		cfg:            cfg,
		seed:           seed,
		seats:          [2]Seat{dark, light},
		logger:         logger,
		library:        lib,
		state:          state.NewGameState(dark.PlayerID, light.PlayerID, seed),
		modifiers:      modifiers.NewRegistry(),
		stack:          rules.NewActionStack(),
		procedure:      NewProcedure(),
		decisions:      make(map[string][]*pendingDecision),
		losers:         make(map[string]string),
		cancelRequests: make(map[string]bool),
		extendRequests: make(map[string]int),
		disableTimer:   make(map[string]bool),
		autoPass:       make(map[string]map[state.Phase]bool),
		warnings:       make(map[string][]string),
	}
	g.env = &engineEnv{g: g}
	g.logger = logger.With(zap.String("game_id", g.id))
	g.modifiers.SetLogger(g.logger)

	for _, seat := range g.seats {
		for _, blueprintID := range seat.Deck.Cards {
			def, ok := lib.Definition(blueprintID)
			if !ok {
				return nil, fmt.Errorf("%w: %s in %s's deck", ErrUnknownBlueprint, blueprintID, seat.PlayerID)
			}
			if _, err := g.state.AddCard(def.NewCard(seat.PlayerID), state.ZoneReserveDeck); err != nil {
				return nil, fmt.Errorf("add %s to %s's deck: %w", blueprintID, seat.PlayerID, err)
			}
		}
	}
	g.replay = NewReplay(g.id, seed, cfg, dark, light)
	return g, nil
}

// ID returns the game id.
func (g *Game) ID() string {
	return g.id
}

// Seed returns the seed the game was created with.
func (g *Game) Seed() uint64 {
	return g.seed
}

// Start runs the game until the first decision.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return ErrAlreadyStarted
	}
	g.started = true
	g.logger.Info("game started",
		zap.String("dark_player", g.seats[0].PlayerID),
		zap.String("light_player", g.seats[1].PlayerID),
		zap.Uint64("seed", g.seed),
	)
	g.run()
	return nil
}

// IsFinished reports whether the game is over.
func (g *Game) IsFinished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished
}

// Winner returns the winner and the reason the game ended.
func (g *Game) Winner() (string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner, g.reason
}

// Losers returns each losing player with the reason they lost.
func (g *Game) Losers() map[string]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]string, len(g.losers))
	for p, r := range g.losers {
		out[p] = r
	}
	return out
}

// Replay returns the decision log of the game so far.
func (g *Game) Replay() *Replay {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.replay
}

// PendingDecision returns the decision the player must answer, if any.
func (g *Game) PendingDecision(playerID string) (*decisions.Decision, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pd := g.topDecision(playerID)
	if pd == nil {
		return nil, false
	}
	return pd.decision, true
}

// SubmitDecision answers the player's open decision and resumes the game.
// An answer that does not match the open decision is rejected with an error
// wrapping decisions.ErrInvalidDecision and the decision stays open.
func (g *Game) SubmitDecision(playerID, decisionID, answer string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	pd := g.topDecision(playerID)
	if pd == nil || pd.decision.ID != decisionID {
		g.logger.Warn("rejected decision",
			zap.String("player_id", playerID),
			zap.String("decision_id", decisionID),
		)
		return fmt.Errorf("%w: decision %s is not open for %s", decisions.ErrInvalidDecision, decisionID, playerID)
	}
	values, err := pd.decision.Validate(answer)
	if err != nil {
		g.logger.Warn("rejected decision",
			zap.String("player_id", playerID),
			zap.String("decision_id", decisionID),
			zap.Error(err),
		)
		return fmt.Errorf("decision %s: %w", decisionID, err)
	}
	g.popDecision(playerID)
	g.replay.record(ReplayEntry{Kind: EntryAnswer, PlayerID: playerID, Answer: answer})
	g.logger.Debug("decision answered",
		zap.String("player_id", playerID),
		zap.String("decision_id", decisionID),
		zap.Strings("values", values),
	)

	if pd.handler != nil {
		if err := pd.handler(values); err != nil {
			g.run()
			return err
		}
	} else if a, ok := g.stack.Find(pd.actionID); ok {
		a.Remember(pd.key, values...)
	} else {
		g.abort(fmt.Errorf("decision %s answered for action %s that is no longer on the stack", decisionID, pd.actionID))
	}
	g.run()
	return nil
}

func (g *Game) checkPlayer(playerID string) error {
	if g.finished {
		return ErrGameFinished
	}
	if _, ok := g.state.Players[playerID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	return nil
}

func (g *Game) ask(pd *pendingDecision) {
	player := pd.decision.PlayerID
	g.decisions[player] = append(g.decisions[player], pd)
	g.logger.Debug("decision opened",
		zap.String("player_id", player),
		zap.String("decision_id", pd.decision.ID),
		zap.String("kind", string(pd.decision.Kind)),
		zap.String("text", pd.decision.Text),
	)
}

func (g *Game) topDecision(playerID string) *pendingDecision {
	stack := g.decisions[playerID]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

func (g *Game) popDecision(playerID string) {
	stack := g.decisions[playerID]
	if len(stack) == 0 {
		return
	}
	stack[len(stack)-1] = nil
	g.decisions[playerID] = stack[:len(stack)-1]
}

func (g *Game) hasOpenDecision() bool {
	for _, stack := range g.decisions {
		if len(stack) > 0 {
			return true
		}
	}
	return false
}

func (g *Game) priorityOrder() []string {
	current := g.state.CurrentPlayer
	opponent := g.state.Opponent(current)
	if g.cfg.PriorityOrder == PriorityOpponentFirst {
		return []string{opponent, current}
	}
	return []string{current, opponent}
}

// engineEnv is the rules.Env view of a game handed to effects and hooks.
type engineEnv struct {
	g *Game
}

func (e *engineEnv) State() *state.GameState        { return e.g.state }
func (e *engineEnv) Modifiers() *modifiers.Registry { return e.g.modifiers }
func (e *engineEnv) Library() rules.Library         { return e.g.library }
func (e *engineEnv) Logger() *zap.Logger            { return e.g.logger }

func (e *engineEnv) Emit(results ...rules.EffectResult) {
	e.g.pendingResults = append(e.g.pendingResults, results...)
}

func (e *engineEnv) Ask(a *rules.Action, key string, d *decisions.Decision) {
	e.g.ask(&pendingDecision{decision: d, actionID: a.ID, key: key})
}

func (e *engineEnv) Push(a *rules.Action) {
	a.RecordUsage(e.g.state)
	e.g.stack.Push(a)
	e.g.logger.Debug("action pushed",
		zap.String("action", a.Text),
		zap.String("kind", string(a.Kind)),
		zap.Int("depth", e.g.stack.Depth()),
	)
}

func (e *engineEnv) FindAction(id string) (*rules.Action, bool) {
	return e.g.stack.Find(id)
}

func (e *engineEnv) PriorityOrder() []string {
	return e.g.priorityOrder()
}

func (e *engineEnv) AutoPass(playerID string) bool {
	return e.g.autoPass[playerID][e.g.state.CurrentPhase]
}

func (e *engineEnv) PlayerLost(playerID, reason string) {
	e.g.playerLost(playerID, reason)
}
