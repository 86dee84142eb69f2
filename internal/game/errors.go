package game

import "errors"

var (
	// ErrGameFinished is returned by entry points once the game is over.
	ErrGameFinished = errors.New("game finished")
	// ErrNoSnapshots is returned when a revert is requested with nothing to
	// revert to.
	ErrNoSnapshots = errors.New("no snapshots available")
	// ErrRevertDisabled is returned when rollback is turned off.
	ErrRevertDisabled = errors.New("rollback disabled")
	// ErrSnapshotNotFound is returned for an unknown snapshot id.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrUnknownPlayer is returned for a player id not seated in the game.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrGameNotFound is returned by the manager for an unknown game id.
	ErrGameNotFound = errors.New("game not found")
	// ErrUnknownBlueprint is returned when a deck names a card the library
	// does not know.
	ErrUnknownBlueprint = errors.New("unknown blueprint")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("game already started")
)
