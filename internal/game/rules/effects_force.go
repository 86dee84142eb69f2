package rules

import (
	"fmt"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// UseForce moves Force from the top of the Force pile to the used pile.
type UseForce struct {
	Player string
	Amount int
}

func (e UseForce) Text() string { return fmt.Sprintf("Use %d Force", e.Amount) }

// CanPay reports whether the player's Force pile covers the amount.
func (e UseForce) CanPay(env Env, a *Action) bool {
	return CanUseForce(env, e.Player, e.Amount)
}

func (e UseForce) Play(env Env, a *Action) (Outcome, error) {
	if e.Amount <= 0 {
		return OutcomeDone, nil
	}
	if !e.CanPay(env, a) {
		return OutcomeFailed, nil
	}
	st := env.State()
	if _, err := moveTop(st, e.Player, state.ZoneForcePile, state.ZoneUsedPile, e.Amount); err != nil {
		return OutcomeFailed, err
	}
	env.Emit(NewAmountResult(ResultForceUsed, e.Player, float64(e.Amount)))
	return OutcomeDone, nil
}

// ActivateForce moves cards from the reserve deck to the Force pile. The
// amount is fixed or read from AmountSlot.
type ActivateForce struct {
	Player     string
	Amount     int
	AmountSlot string
}

func (e ActivateForce) Text() string { return "Activate Force" }

func (e ActivateForce) Play(env Env, a *Action) (Outcome, error) {
	amount := e.Amount
	if e.AmountSlot != "" {
		amount = a.Int(e.AmountSlot)
	}
	st := env.State()
	moved, err := moveTop(st, e.Player, state.ZoneReserveDeck, state.ZoneForcePile, amount)
	if err != nil {
		return OutcomeFailed, err
	}
	st.ForceActivated += moved
	st.SendMessage(fmt.Sprintf("%s activates %d Force", e.Player, moved))
	env.Emit(NewAmountResult(ResultForceActivated, e.Player, float64(moved)))
	return OutcomeDone, nil
}

// LoseForce makes a player lose Force, taken from the Force pile, then the
// used pile, then the reserve deck.
type LoseForce struct {
	Player string
	Amount int
	Reason string
}

func (e LoseForce) Text() string { return fmt.Sprintf("Lose %d Force", e.Amount) }

func (e LoseForce) Play(env Env, a *Action) (Outcome, error) {
	if _, err := loseForce(env, e.Player, e.Amount, e.Reason); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeDone, nil
}

func loseForce(env Env, playerID string, amount int, reason string) (int, error) {
	st := env.State()
	lost := 0
	for _, zone := range []state.Zone{state.ZoneForcePile, state.ZoneUsedPile, state.ZoneReserveDeck} {
		n, err := moveTop(st, playerID, zone, state.ZoneLostPile, amount-lost)
		lost += n
		if err != nil {
			return lost, err
		}
	}
	if lost == 0 {
		return 0, nil
	}
	msg := fmt.Sprintf("%s loses %d Force", playerID, lost)
	if reason != "" {
		msg += " (" + reason + ")"
	}
	st.SendMessage(msg)
	env.Emit(NewAmountResult(ResultForceLost, playerID, float64(lost)))
	return lost, nil
}

// DrawCard draws the top card of the Force pile into hand.
type DrawCard struct {
	Player string
}

func (e DrawCard) Text() string { return "Draw card" }

func (e DrawCard) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	id, ok := st.TopOf(e.Player, state.ZoneForcePile)
	if !ok {
		return OutcomeFailed, nil
	}
	if err := st.MoveToPile(id, state.ZoneHand, false); err != nil {
		return OutcomeFailed, err
	}
	st.SendMessage(fmt.Sprintf("%s draws a card from Force pile", e.Player))
	env.Emit(NewCardResult(ResultCardDrawn, e.Player, id, 0))
	return OutcomeDone, nil
}

// ForceDrain makes the opponent lose Force equal to their icons at the
// location plus drain modifiers.
type ForceDrain struct {
	Player     string
	LocationID int
}

func (e ForceDrain) Text() string { return "Force drain" }

func (e ForceDrain) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	opponent := st.Opponent(e.Player)
	amount := DrainAmount(env, e.Player, e.LocationID)
	if amount <= 0 {
		return OutcomeFailed, nil
	}
	st.SendMessage(fmt.Sprintf("%s Force drains at %s for %d", e.Player, cardTitle(st, e.LocationID), amount))
	result := NewAmountResult(ResultForceDrained, e.Player, float64(amount))
	result.LocationID = e.LocationID
	env.Emit(result)
	if _, err := loseForce(env, opponent, amount, "Force drain"); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeDone, nil
}

// DrainAmount is the Force drain value for the player at a location.
func DrainAmount(env Env, playerID string, locationID int) int {
	st := env.State()
	loc, ok := st.Cards[locationID]
	if !ok {
		return 0
	}
	opponentSide := st.SideOf(st.Opponent(playerID))
	amount := float64(loc.IconsFor(opponentSide)) + env.Modifiers().ForceDrainModifier(st, locationID, playerID)
	if amount < 0 {
		return 0
	}
	return int(amount)
}
