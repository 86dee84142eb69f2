package modifiers

import "github.com/holotable/holotable-server-go/internal/game/state"

// Constant evaluates to a fixed value.
func Constant(v float64) Evaluator {
	return func(*state.GameState, *Registry, *state.PhysicalCard) float64 { return v }
}

// PerCard evaluates to each times the number of cards in play matching f.
func PerCard(f Filter, each float64) Evaluator {
	return func(st *state.GameState, reg *Registry, _ *state.PhysicalCard) float64 {
		count := 0
		for _, c := range st.CardsInPlay() {
			if f(st, reg, c) {
				count++
			}
		}
		return float64(count) * each
	}
}

// InPhase is true during the given phase.
func InPhase(phase state.Phase) Condition {
	return func(st *state.GameState, _ *Registry) bool {
		return st.CurrentPhase == phase
	}
}

// DuringTurnOf is true during the player's turn.
func DuringTurnOf(playerID string) Condition {
	return func(st *state.GameState, _ *Registry) bool {
		return st.CurrentPlayer == playerID
	}
}

// DuringBattleAt is true while a battle is in progress at the location.
func DuringBattleAt(locationID int) Condition {
	return func(st *state.GameState, _ *Registry) bool {
		return st.Battle != nil && st.Battle.LocationID == locationID
	}
}

// CardOnTable is true while the card is in play.
func CardOnTable(cardID int) Condition {
	return func(st *state.GameState, _ *Registry) bool {
		c, ok := st.Cards[cardID]
		return ok && c.Zone.InPlay()
	}
}

// AllOf is true when every condition holds.
func AllOf(conditions ...Condition) Condition {
	return func(st *state.GameState, reg *Registry) bool {
		for _, c := range conditions {
			if !c(st, reg) {
				return false
			}
		}
		return true
	}
}
