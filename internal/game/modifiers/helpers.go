package modifiers

import (
	"fmt"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// AddsPowerToPilotedBySelf adds power to anything the source card pilots.
func AddsPowerToPilotedBySelf(source *state.PhysicalCard, amount float64) Modifier {
	return Modifier{
		SourceID: source.ID,
		Kind:     KindPower,
		Text:     fmt.Sprintf("Adds %g to power of anything %s pilots", amount, source.Title),
		Affects:  PilotedBy(source.ID),
		Value:    Constant(amount),
		Duration: DurationWhileInPlay,
	}
}

// PowerModifier changes the power of matching cards while the source is in play.
func PowerModifier(source *state.PhysicalCard, affects Filter, amount float64) Modifier {
	return Modifier{
		SourceID: source.ID,
		Kind:     KindPower,
		Text:     fmt.Sprintf("Power %+g", amount),
		Affects:  affects,
		Value:    Constant(amount),
		Duration: DurationWhileInPlay,
	}
}

// TotalPowerHere changes the player's total power at the source's location.
func TotalPowerHere(source *state.PhysicalCard, playerID string, amount float64) Modifier {
	sourceID := source.ID
	return Modifier{
		SourceID: sourceID,
		Kind:     KindTotalPower,
		Text:     fmt.Sprintf("Total power %+g here", amount),
		Affects: func(st *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
			return c.IsLocation() && st.LocationOf(sourceID) == c.ID
		},
		Value:    Constant(amount),
		Duration: DurationWhileInPlay,
		PlayerID: playerID,
	}
}

// DeployCostToLocation changes the deploy cost of matching cards deploying to
// matching locations.
func DeployCostToLocation(source *state.PhysicalCard, affects, toLocation Filter, amount float64) Modifier {
	return Modifier{
		SourceID:   source.ID,
		Kind:       KindDeployCost,
		Text:       fmt.Sprintf("Deploy cost %+g", amount),
		Affects:    affects,
		ToLocation: toLocation,
		Value:      Constant(amount),
		Duration:   DurationWhileInPlay,
	}
}

// DeployCostForAction is a one-shot deploy cost change removed when the
// owning action completes.
func DeployCostForAction(source *state.PhysicalCard, cardID, locationID int, amount float64, actionID string) Modifier {
	return Modifier{
		SourceID:    source.ID,
		Kind:        KindDeployCost,
		Text:        fmt.Sprintf("Deploy cost %+g", amount),
		Affects:     Card(cardID),
		ToLocation:  Card(locationID),
		Value:       Constant(amount),
		Duration:    DurationUntilEndOfAction,
		OwnerAction: actionID,
	}
}

// LandspeedUntilEndOfTurn changes a card's landspeed until end of turn.
func LandspeedUntilEndOfTurn(source *state.PhysicalCard, cardID int, amount float64) Modifier {
	return Modifier{
		SourceID: source.ID,
		Kind:     KindLandspeed,
		Text:     fmt.Sprintf("Landspeed %+g until end of turn", amount),
		Affects:  And(Card(cardID), InPlay),
		Value:    Constant(amount),
		Duration: DurationUntilEndOfTurn,
	}
}

// ImmuneToAttritionLessThan makes matching cards immune to attrition below
// the threshold.
func ImmuneToAttritionLessThan(source *state.PhysicalCard, affects Filter, threshold float64) Modifier {
	return Modifier{
		SourceID: source.ID,
		Kind:     KindImmuneToAttrition,
		Text:     fmt.Sprintf("Immune to attrition < %g", threshold),
		Affects:  affects,
		Value:    Constant(threshold),
		Duration: DurationWhileInPlay,
	}
}

// DestinyUntilEndOfBattle changes the destiny of matching cards for the
// remainder of the battle.
func DestinyUntilEndOfBattle(source *state.PhysicalCard, affects Filter, amount float64) Modifier {
	return Modifier{
		SourceID: source.ID,
		Kind:     KindDestiny,
		Text:     fmt.Sprintf("Destiny %+g", amount),
		Affects:  affects,
		Value:    Constant(amount),
		Duration: DurationUntilEndOfBattle,
	}
}

// SkipPhase skips a player's phase until end of turn.
func SkipPhase(source *state.PhysicalCard, playerID string, phase state.Phase) Modifier {
	return Modifier{
		SourceID: source.ID,
		Kind:     KindSkipPhase,
		Text:     fmt.Sprintf("Skip %s phase", phase.HumanReadable()),
		PlayerID: playerID,
		Phase:    phase,
		Duration: DurationUntilEndOfTurn,
	}
}

// ForceGeneration changes a player's Force generation while the source is in play.
func ForceGeneration(source *state.PhysicalCard, playerID string, amount float64) Modifier {
	return Modifier{
		SourceID: source.ID,
		Kind:     KindForceGeneration,
		Text:     fmt.Sprintf("Force generation %+g", amount),
		PlayerID: playerID,
		Value:    Constant(amount),
		Duration: DurationWhileInPlay,
	}
}
