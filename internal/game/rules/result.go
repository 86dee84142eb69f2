package rules

// ResultType indicates what just happened.
type ResultType string

const (
	ResultTurnStarted      ResultType = "TURN_STARTED"
	ResultTurnEnded        ResultType = "TURN_ENDED"
	ResultPhaseStarted     ResultType = "PHASE_STARTED"
	ResultPhaseEnded       ResultType = "PHASE_ENDED"
	ResultCardDeployed     ResultType = "CARD_DEPLOYED"
	ResultCardMoved        ResultType = "CARD_MOVED"
	ResultCardLost         ResultType = "CARD_LOST"
	ResultCardLeftPlay     ResultType = "CARD_LEFT_PLAY"
	ResultCardDrawn        ResultType = "CARD_DRAWN"
	ResultInterruptPlayed  ResultType = "INTERRUPT_PLAYED"
	ResultForceActivated   ResultType = "FORCE_ACTIVATED"
	ResultForceUsed        ResultType = "FORCE_USED"
	ResultForceLost        ResultType = "FORCE_LOST"
	ResultForceDrained     ResultType = "FORCE_DRAINED"
	ResultDestinyDrawn     ResultType = "DESTINY_DRAWN"
	ResultDestinyModified  ResultType = "DESTINY_MODIFIED"
	ResultBattleInitiated  ResultType = "BATTLE_INITIATED"
	ResultBattleResolved   ResultType = "BATTLE_RESOLVED"
	ResultBattleEnded      ResultType = "BATTLE_ENDED"
	ResultStartingLocation ResultType = "STARTING_LOCATION"
)

// EffectResult is an immutable record of something that just happened. It
// is consumed by trigger dispatch in the same pass that produced it.
type EffectResult struct {
	Type       ResultType
	PlayerID   string
	CardID     int
	LocationID int
	Amount     float64
	BattleID   int
	SourceID   int
}

// NewResult creates a result for a player.
func NewResult(resultType ResultType, playerID string) EffectResult {
	return EffectResult{Type: resultType, PlayerID: playerID}
}

// NewCardResult creates a result concerning a card at a location.
func NewCardResult(resultType ResultType, playerID string, cardID, locationID int) EffectResult {
	return EffectResult{
		Type:       resultType,
		PlayerID:   playerID,
		CardID:     cardID,
		LocationID: locationID,
	}
}

// NewAmountResult creates a result carrying a numeric amount.
func NewAmountResult(resultType ResultType, playerID string, amount float64) EffectResult {
	return EffectResult{Type: resultType, PlayerID: playerID, Amount: amount}
}

// ResultsOfType filters results by type, preserving order.
func ResultsOfType(results []EffectResult, resultType ResultType) []EffectResult {
	var out []EffectResult
	for _, r := range results {
		if r.Type == resultType {
			out = append(out, r)
		}
	}
	return out
}
