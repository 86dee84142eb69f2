package rules

import (
	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Outcome reports how far an effect got when played.
type Outcome int

const (
	// OutcomeDone means the effect completed.
	OutcomeDone Outcome = iota
	// OutcomeFailed means the effect could not be carried out.
	OutcomeFailed
	// OutcomeWaiting means the effect asked a decision and must be replayed
	// once it is answered.
	OutcomeWaiting
	// OutcomeAgain means the effect pushed another action and must be
	// replayed after that action resolves.
	OutcomeAgain
)

var outcomeNames = map[Outcome]string{
	OutcomeDone:    "DONE",
	OutcomeFailed:  "FAILED",
	OutcomeWaiting: "WAITING",
	OutcomeAgain:   "AGAIN",
}

func (o Outcome) String() string {
	return outcomeNames[o]
}

// Effect is one step of an action. Effects are immutable values; all
// progress lives in the action's memory so an effect can be replayed after
// a decision is answered.
type Effect interface {
	Text() string
	Play(env Env, a *Action) (Outcome, error)
}

// Payable is implemented by cost effects that can check affordability
// before the action is offered or paid.
type Payable interface {
	CanPay(env Env, a *Action) bool
}

// Env is the view of a running game available to effects and card hooks.
type Env interface {
	State() *state.GameState
	Modifiers() *modifiers.Registry
	Library() Library
	Logger() *zap.Logger

	// Emit queues results for trigger dispatch.
	Emit(results ...EffectResult)
	// Ask opens a decision whose answer is stored in the action's memory
	// under key.
	Ask(a *Action, key string, d *decisions.Decision)
	// Push places an action on top of the stack.
	Push(a *Action)
	// FindAction looks up an action on the stack.
	FindAction(id string) (*Action, bool)
	// PriorityOrder is the order players are asked in response windows.
	PriorityOrder() []string
	// AutoPass reports whether the player passes phase actions automatically.
	AutoPass(playerID string) bool
	// PlayerLost marks a player as having lost the game.
	PlayerLost(playerID, reason string)
}
