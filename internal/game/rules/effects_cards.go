package rules

import (
	"fmt"
	"math"
	"strconv"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// ChooseCards asks a player to select cards and stores the ids in Slot.
type ChooseCards struct {
	Player     string
	Slot       string
	Prompt     string
	Candidates func(env Env, a *Action) []int
	Min        int
	Max        int
	// Optional lets the effect succeed with nothing chosen when too few
	// candidates exist.
	Optional bool
}

func (e ChooseCards) Text() string { return e.Prompt }

func (e ChooseCards) Play(env Env, a *Action) (Outcome, error) {
	if _, ok := a.Answer(e.Slot); ok {
		return OutcomeDone, nil
	}
	candidates := e.Candidates(env, a)
	if len(candidates) < e.Min {
		if e.Optional {
			return OutcomeDone, nil
		}
		return OutcomeFailed, nil
	}
	if len(candidates) == e.Min && e.Min == e.Max {
		values := make([]string, len(candidates))
		for i, id := range candidates {
			values[i] = strconv.Itoa(id)
		}
		a.Remember(e.Slot, values...)
		return OutcomeDone, nil
	}
	options := make([]decisions.Option, len(candidates))
	for i, id := range candidates {
		options[i] = decisions.Option{Value: strconv.Itoa(id), Label: cardTitle(env.State(), id)}
	}
	max := e.Max
	if max > len(candidates) {
		max = len(candidates)
	}
	env.Ask(a, e.Slot, decisions.CardSelection(e.Player, e.Prompt, options, e.Min, max))
	return OutcomeWaiting, nil
}

// ChooseDestination asks a player where a card goes and stores the
// destination in Slot.
type ChooseDestination struct {
	Player  string
	CardID  int
	Slot    string
	Options func(env Env, a *Action) []Destination
}

func (e ChooseDestination) Text() string { return "Choose destination" }

func (e ChooseDestination) Play(env Env, a *Action) (Outcome, error) {
	if _, ok := a.Answer(e.Slot); ok {
		return OutcomeDone, nil
	}
	dests := e.Options(env, a)
	switch len(dests) {
	case 0:
		return OutcomeFailed, nil
	case 1:
		a.Remember(e.Slot, dests[0].String())
		return OutcomeDone, nil
	}
	st := env.State()
	options := make([]decisions.Option, len(dests))
	for i, d := range dests {
		label := cardTitle(st, d.CardID)
		if d.Capacity != state.CapacityNone {
			label = fmt.Sprintf("Aboard %s as %s", label, d.Capacity)
		}
		options[i] = decisions.Option{Value: d.String(), Label: label}
	}
	prompt := fmt.Sprintf("Choose where %s goes", cardTitle(st, e.CardID))
	env.Ask(a, e.Slot, decisions.MultipleChoice(e.Player, prompt, options))
	return OutcomeWaiting, nil
}

// ChooseAmount asks a player for a number and stores it in Slot.
type ChooseAmount struct {
	Player string
	Slot   string
	Prompt string
	Min    int
	Max    func(env Env, a *Action) int
}

func (e ChooseAmount) Text() string { return e.Prompt }

func (e ChooseAmount) Play(env Env, a *Action) (Outcome, error) {
	if _, ok := a.Answer(e.Slot); ok {
		return OutcomeDone, nil
	}
	max := e.Max(env, a)
	if max < e.Min {
		return OutcomeFailed, nil
	}
	if max == e.Min {
		a.SetInt(e.Slot, max)
		return OutcomeDone, nil
	}
	env.Ask(a, e.Slot, decisions.Integer(e.Player, e.Prompt, e.Min, max))
	return OutcomeWaiting, nil
}

// PlayingCard announces a card about to be deployed. Before hooks key on it
// to modify the deployment.
type PlayingCard struct {
	CardID          int
	DestinationSlot string
}

func (e PlayingCard) Text() string { return "Playing card" }

func (e PlayingCard) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	dest, ok := DestinationOf(a, e.DestinationSlot)
	if !ok {
		st.SendMessage(fmt.Sprintf("%s plays %s", a.Performer, cardTitle(st, e.CardID)))
		return OutcomeDone, nil
	}
	st.SendMessage(fmt.Sprintf("%s deploys %s to %s", a.Performer, cardTitle(st, e.CardID), cardTitle(st, dest.CardID)))
	return OutcomeDone, nil
}

// PayDeployCost uses Force equal to the card's deploy cost to its
// destination, evaluated when paid.
type PayDeployCost struct {
	CardID          int
	DestinationSlot string
}

func (e PayDeployCost) Text() string { return "Pay deploy cost" }

func (e PayDeployCost) cost(env Env, a *Action) (int, bool) {
	st := env.State()
	card, ok := st.Cards[e.CardID]
	if !ok {
		return 0, false
	}
	locationID := 0
	if dest, ok := DestinationOf(a, e.DestinationSlot); ok {
		locationID = st.LocationOf(dest.CardID)
	}
	return int(math.Ceil(env.Modifiers().DeployCost(st, card, locationID))), true
}

// CanPay reports whether the Force pile covers the cost. Before a
// destination is chosen the offer was already filtered by cost.
func (e PayDeployCost) CanPay(env Env, a *Action) bool {
	if _, chosen := DestinationOf(a, e.DestinationSlot); !chosen {
		return true
	}
	cost, ok := e.cost(env, a)
	return ok && CanUseForce(env, a.Performer, cost)
}

func (e PayDeployCost) Play(env Env, a *Action) (Outcome, error) {
	cost, ok := e.cost(env, a)
	if !ok || !CanUseForce(env, a.Performer, cost) {
		return OutcomeFailed, nil
	}
	return UseForce{Player: a.Performer, Amount: cost}.Play(env, a)
}

// DeployCard puts a card from hand into play at its destination.
type DeployCard struct {
	CardID          int
	DestinationSlot string
}

func (e DeployCard) Text() string { return "Deploy card" }

func (e DeployCard) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	card, err := st.Card(e.CardID)
	if err != nil {
		return OutcomeFailed, err
	}
	if card.IsLocation() {
		if err := st.PlaceLocation(card.ID); err != nil {
			return OutcomeFailed, err
		}
		EnterPlay(env, card)
		env.Emit(NewCardResult(ResultCardDeployed, card.Owner, card.ID, card.ID))
		return OutcomeDone, nil
	}
	dest, ok := DestinationOf(a, e.DestinationSlot)
	if !ok {
		return OutcomeFailed, fmt.Errorf("deploy %d: no destination chosen", e.CardID)
	}
	if dest.Capacity == state.CapacityNone {
		err = st.PutAtLocation(card.ID, dest.CardID)
	} else {
		err = st.PutAboard(card.ID, dest.CardID, dest.Capacity)
	}
	if err != nil {
		return OutcomeFailed, err
	}
	EnterPlay(env, card)
	env.Emit(NewCardResult(ResultCardDeployed, card.Owner, card.ID, st.LocationOf(card.ID)))
	return OutcomeDone, nil
}

// MoveCard moves a card in play to another location.
type MoveCard struct {
	CardID          int
	DestinationSlot string
}

func (e MoveCard) Text() string { return "Move card" }

func (e MoveCard) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	dest, ok := DestinationOf(a, e.DestinationSlot)
	if !ok {
		return OutcomeFailed, nil
	}
	card, err := st.Card(e.CardID)
	if err != nil || card.Zone != state.ZoneTable {
		return OutcomeFailed, nil
	}
	from := st.LocationOf(card.ID)
	if err := st.PutAtLocation(card.ID, dest.CardID); err != nil {
		return OutcomeFailed, err
	}
	st.SendMessage(fmt.Sprintf("%s moves %s from %s to %s", a.Performer, card.Title, cardTitle(st, from), cardTitle(st, dest.CardID)))
	result := NewCardResult(ResultCardMoved, card.Owner, card.ID, dest.CardID)
	result.SourceID = from
	env.Emit(result)
	return OutcomeDone, nil
}

// LoseCard makes a card in play lost.
type LoseCard struct {
	CardID int
}

func (e LoseCard) Text() string { return "Lose card" }

func (e LoseCard) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	card, err := st.Card(e.CardID)
	if err != nil || card.Zone != state.ZoneTable {
		return OutcomeFailed, nil
	}
	location := st.LocationOf(card.ID)
	if err := LeavePlay(env, card.ID, state.ZoneLostPile); err != nil {
		return OutcomeFailed, err
	}
	st.SendMessage(fmt.Sprintf("%s is lost", card.Title))
	env.Emit(NewCardResult(ResultCardLost, card.Owner, card.ID, location))
	return OutcomeDone, nil
}

// PlayInterrupt moves an interrupt from hand to the used pile, or the lost
// pile for lost interrupts.
type PlayInterrupt struct {
	CardID int
	Lost   bool
}

func (e PlayInterrupt) Text() string { return "Play interrupt" }

// CanPay reports whether the interrupt is still in hand.
func (e PlayInterrupt) CanPay(env Env, a *Action) bool {
	card, ok := env.State().Cards[e.CardID]
	return ok && card.Zone == state.ZoneHand
}

func (e PlayInterrupt) Play(env Env, a *Action) (Outcome, error) {
	if !e.CanPay(env, a) {
		return OutcomeFailed, nil
	}
	st := env.State()
	zone := state.ZoneUsedPile
	if e.Lost {
		zone = state.ZoneLostPile
	}
	if err := st.MoveToPile(e.CardID, zone, true); err != nil {
		return OutcomeFailed, err
	}
	st.SendMessage(fmt.Sprintf("%s plays %s", a.Performer, cardTitle(st, e.CardID)))
	env.Emit(NewCardResult(ResultInterruptPlayed, a.Performer, e.CardID, 0))
	return OutcomeDone, nil
}

// AddModifier registers a modifier.
type AddModifier struct {
	Modifier modifiers.Modifier
}

func (e AddModifier) Text() string { return e.Modifier.Text }

func (e AddModifier) Play(env Env, a *Action) (Outcome, error) {
	env.Modifiers().Add(e.Modifier)
	if e.Modifier.Text != "" {
		env.State().SendMessage(fmt.Sprintf("%s: %s", cardTitle(env.State(), e.Modifier.SourceID), e.Modifier.Text))
	}
	return OutcomeDone, nil
}
