package rules

import (
	"fmt"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// PlaceStartingLocation deploys the location chosen into Slot.
type PlaceStartingLocation struct {
	Player string
	Slot   string
}

func (e PlaceStartingLocation) Text() string { return "Deploy starting location" }

func (e PlaceStartingLocation) Play(env Env, a *Action) (Outcome, error) {
	id, ok := a.CardID(e.Slot)
	if !ok {
		return OutcomeDone, nil
	}
	st := env.State()
	card, err := st.Card(id)
	if err != nil {
		return OutcomeFailed, err
	}
	if err := st.PlaceLocation(id); err != nil {
		return OutcomeFailed, err
	}
	EnterPlay(env, card)
	st.SendMessage(fmt.Sprintf("%s deploys %s as starting location", e.Player, card.Title))
	env.Emit(NewCardResult(ResultStartingLocation, e.Player, id, id))
	return OutcomeDone, nil
}

// ShuffleReserveDeck shuffles a player's reserve deck.
type ShuffleReserveDeck struct {
	Player string
}

func (e ShuffleReserveDeck) Text() string { return "Shuffle reserve deck" }

func (e ShuffleReserveDeck) Play(env Env, a *Action) (Outcome, error) {
	if err := env.State().Shuffle(e.Player); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeDone, nil
}

// DrawStartingHand draws cards from the top of the reserve deck into hand.
type DrawStartingHand struct {
	Player string
	Count  int
}

func (e DrawStartingHand) Text() string { return "Draw starting hand" }

func (e DrawStartingHand) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	drawn, err := moveTop(st, e.Player, state.ZoneReserveDeck, state.ZoneHand, e.Count)
	if err != nil {
		return OutcomeFailed, err
	}
	st.SendMessage(fmt.Sprintf("%s draws %d cards", e.Player, drawn))
	return OutcomeDone, nil
}

// StartingLocationAction lets a player deploy a starting location from their
// reserve deck, then shuffles the deck and draws a starting hand.
func StartingLocationAction(playerID string, handSize int) *Action {
	a := NewAction(ActionKindSystem, playerID, "Play starting cards")
	a.AddTargeting(ChooseCards{
		Player:   playerID,
		Slot:     "starting_location",
		Prompt:   "Choose starting location",
		Min:      1,
		Max:      1,
		Optional: true,
		Candidates: func(env Env, _ *Action) []int {
			var ids []int
			for _, c := range env.State().PileCards(playerID, state.ZoneReserveDeck) {
				if c.IsLocation() {
					ids = append(ids, c.ID)
				}
			}
			return ids
		},
	})
	a.AddResult(
		PlaceStartingLocation{Player: playerID, Slot: "starting_location"},
		ShuffleReserveDeck{Player: playerID},
		DrawStartingHand{Player: playerID, Count: handSize},
	)
	return a
}
