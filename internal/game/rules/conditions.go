package rules

import (
	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

func matchCard(ctx TriggerContext, f modifiers.Filter, cardID int) (ok bool) {
	if f == nil {
		return true
	}
	card, found := ctx.State().Cards[cardID]
	if !found {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			if logger := ctx.Env.Logger(); logger != nil {
				logger.Warn("card filter panicked",
					zap.Int("card_id", card.ID),
					zap.String("title", card.Title),
					zap.Any("panic", r),
				)
			}
			ok = false
		}
	}()
	return f(ctx.State(), ctx.Env.Modifiers(), card)
}

func justHappened(ctx TriggerContext, resultType ResultType, f modifiers.Filter) []EffectResult {
	var out []EffectResult
	for _, r := range ResultsOfType(ctx.Results, resultType) {
		if matchCard(ctx, f, r.CardID) {
			out = append(out, r)
		}
	}
	return out
}

// JustDeployed returns the deploy results whose card matches f.
func JustDeployed(ctx TriggerContext, f modifiers.Filter) []EffectResult {
	return justHappened(ctx, ResultCardDeployed, f)
}

// JustDeployedTo returns deploy results of cards matching f at locations
// matching location.
func JustDeployedTo(ctx TriggerContext, f, location modifiers.Filter) []EffectResult {
	var out []EffectResult
	for _, r := range JustDeployed(ctx, f) {
		if matchCard(ctx, location, r.LocationID) {
			out = append(out, r)
		}
	}
	return out
}

// JustMoved returns the move results whose card matches f.
func JustMoved(ctx TriggerContext, f modifiers.Filter) []EffectResult {
	return justHappened(ctx, ResultCardMoved, f)
}

// JustLost returns the results of matching cards being lost.
func JustLost(ctx TriggerContext, f modifiers.Filter) []EffectResult {
	return justHappened(ctx, ResultCardLost, f)
}

// DestinyJustDrawnBy returns the last destiny drawn by the player among the
// results.
func DestinyJustDrawnBy(ctx TriggerContext, playerID string) (EffectResult, bool) {
	drawn := ResultsOfType(ctx.Results, ResultDestinyDrawn)
	for i := len(drawn) - 1; i >= 0; i-- {
		if drawn[i].PlayerID == playerID {
			return drawn[i], true
		}
	}
	return EffectResult{}, false
}

// BattleJustInitiatedAt reports whether a battle was initiated at a
// location matching f.
func BattleJustInitiatedAt(ctx TriggerContext, f modifiers.Filter) (EffectResult, bool) {
	for _, r := range ResultsOfType(ctx.Results, ResultBattleInitiated) {
		if matchCard(ctx, f, r.LocationID) {
			return r, true
		}
	}
	return EffectResult{}, false
}

// ForceJustDrainedBy reports whether the player just Force drained.
func ForceJustDrainedBy(ctx TriggerContext, playerID string) (EffectResult, bool) {
	for _, r := range ResultsOfType(ctx.Results, ResultForceDrained) {
		if r.PlayerID == playerID {
			return r, true
		}
	}
	return EffectResult{}, false
}

// PhaseJustStarted reports whether the phase just started.
func PhaseJustStarted(ctx TriggerContext, phase state.Phase) bool {
	for _, r := range ResultsOfType(ctx.Results, ResultPhaseStarted) {
		if state.Phase(r.Amount) == phase {
			return true
		}
	}
	return false
}

// IsPlayingCard reports whether the effect about to play announces a card
// matching f being deployed to a location matching location. It returns the
// card and destination location ids.
func IsPlayingCard(ctx TriggerContext, f, location modifiers.Filter) (cardID, locationID int, ok bool) {
	playing, isPlaying := ctx.Effect.(PlayingCard)
	if !isPlaying || ctx.Action == nil {
		return 0, 0, false
	}
	dest, hasDest := DestinationOf(ctx.Action, playing.DestinationSlot)
	if !hasDest {
		return 0, 0, false
	}
	locationID = ctx.State().LocationOf(dest.CardID)
	if !matchCard(ctx, f, playing.CardID) || !matchCard(ctx, location, locationID) {
		return 0, 0, false
	}
	return playing.CardID, locationID, true
}

// IsAboutToLoseForce reports whether the effect about to play makes the
// player lose Force.
func IsAboutToLoseForce(ctx TriggerContext, playerID string) bool {
	lose, ok := ctx.Effect.(LoseForce)
	return ok && lose.Player == playerID
}

// IsDuringYourPhase reports whether it is the card owner's turn and phase.
func IsDuringYourPhase(ctx TriggerContext, phase state.Phase) bool {
	st := ctx.State()
	return st.CurrentPlayer == ctx.Self.Owner && st.CurrentPhase == phase
}

// IsInBattleAt reports whether a battle is in progress at the card's location.
func IsInBattleAt(ctx TriggerContext, cardID int) bool {
	st := ctx.State()
	return st.Battle != nil && st.Battle.LocationID == st.LocationOf(cardID)
}

// CanUseForce reports whether the player has enough Force in their Force pile.
func CanUseForce(env Env, playerID string, amount int) bool {
	p, err := env.State().Player(playerID)
	return err == nil && len(p.ForcePile) >= amount
}

// OpponentOf returns the opponent of the card's owner.
func OpponentOf(ctx TriggerContext) string {
	return ctx.State().Opponent(ctx.Self.Owner)
}
