package modifiers

import (
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Filter selects the cards a modifier affects.
type Filter func(st *state.GameState, reg *Registry, card *state.PhysicalCard) bool

// Condition gates a modifier on the current game state.
type Condition func(st *state.GameState, reg *Registry) bool

// Evaluator computes a modifier value for an affected card. The card is nil
// for player level modifiers.
type Evaluator func(st *state.GameState, reg *Registry, card *state.PhysicalCard) float64

// Modifier is a continuous rule-layer contribution. Its value is recomputed
// on every query.
type Modifier struct {
	ID       string
	SourceID int
	Kind     Kind
	Text     string

	// Affects selects the affected cards. Nil means the modifier applies at
	// player level (see PlayerID).
	Affects Filter
	// ToLocation narrows deploy cost modifiers to destinations.
	ToLocation Filter
	Condition  Condition
	Value      Evaluator

	Duration    Duration
	PlayerID    string
	Phase       state.Phase
	OwnerAction string

	seq int
}

func (m *Modifier) matches(st *state.GameState, reg *Registry, card *state.PhysicalCard) (ok bool) {
	if m.Affects == nil || card == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			reg.warnPanic(m, "filter", r)
			ok = false
		}
	}()
	return m.Affects(st, reg, card)
}

func (m *Modifier) inLocation(st *state.GameState, reg *Registry, location *state.PhysicalCard) (ok bool) {
	if m.ToLocation == nil {
		return true
	}
	if location == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			reg.warnPanic(m, "location filter", r)
			ok = false
		}
	}()
	return m.ToLocation(st, reg, location)
}

func (m *Modifier) active(st *state.GameState, reg *Registry) (ok bool) {
	if m.Condition == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			reg.warnPanic(m, "condition", r)
			ok = false
		}
	}()
	return m.Condition(st, reg)
}

func (m *Modifier) value(st *state.GameState, reg *Registry, card *state.PhysicalCard) (v float64) {
	if m.Value == nil {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			reg.warnPanic(m, "evaluator", r)
			v = 0
		}
	}()
	return m.Value(st, reg, card)
}
