package game

import (
	"fmt"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Priority orders for response windows.
const (
	PriorityCurrentFirst  = "current_first"
	PriorityOpponentFirst = "opponent_first"
)

// Config holds the per-game engine settings.
type Config struct {
	// SnapshotTurnsToKeep is how many of each player's latest turns keep
	// their snapshots.
	SnapshotTurnsToKeep int
	RollbackAllowed     bool
	PriorityOrder       string
	StartingHandSize    int
	// Seed drives shuffling. Zero picks a random seed, which is recorded
	// for replays.
	Seed uint64
	// MaxStepsPerRun bounds one resolution cycle. A game that does not
	// settle within it is aborted.
	MaxStepsPerRun int
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		SnapshotTurnsToKeep: 1,
		RollbackAllowed:     true,
		PriorityOrder:       PriorityCurrentFirst,
		StartingHandSize:    8,
		MaxStepsPerRun:      10000,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.SnapshotTurnsToKeep < 1 {
		return fmt.Errorf("snapshot turns to keep must be at least 1, got %d", c.SnapshotTurnsToKeep)
	}
	switch c.PriorityOrder {
	case PriorityCurrentFirst, PriorityOpponentFirst:
	default:
		return fmt.Errorf("unknown priority order %q", c.PriorityOrder)
	}
	if c.StartingHandSize < 0 {
		return fmt.Errorf("starting hand size must not be negative, got %d", c.StartingHandSize)
	}
	if c.MaxStepsPerRun < 1 {
		return fmt.Errorf("max steps per run must be positive, got %d", c.MaxStepsPerRun)
	}
	return nil
}

// Deck is an ordered list of blueprint ids for one side of the Force. The
// engine preserves order and does not check legality.
type Deck struct {
	Side  state.Side
	Cards []string
}

// Seat pairs a player with their deck.
type Seat struct {
	PlayerID string
	Deck     Deck
}
