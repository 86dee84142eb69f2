package rules

import (
	"fmt"
	"strconv"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
)

// Timing tells a response window which hooks it offers.
type Timing string

const (
	TimingBefore Timing = "BEFORE"
	TimingAfter  Timing = "AFTER"
)

// responseWindow asks players in priority order to take an optional
// response or pass. It closes once every player has passed in a row.
// Offers are recomputed each time a player is asked so exhausted usage
// limits are never offered.
type responseWindow struct {
	Timing Timing
}

func (w responseWindow) Text() string { return "Respond" }

func (w responseWindow) offers(env Env, a *Action, playerID string) []*Action {
	if w.Timing == TimingAfter {
		return OptionalAfterTriggers(env, playerID, a.Provoking)
	}
	performing, ok := env.FindAction(a.ProvokingAction)
	if !ok {
		return nil
	}
	return OptionalBeforeTriggers(env, playerID, performing, a.ProvokingEffect)
}

func (w responseWindow) Play(env Env, a *Action) (Outcome, error) {
	order := env.PriorityOrder()
	for {
		passes := a.Int("passes")
		if passes >= len(order) {
			return OutcomeDone, nil
		}
		turn := a.Int("turn")
		player := order[turn%len(order)]
		offers := w.offers(env, a, player)

		if values, ok := a.Answer("choice"); ok {
			a.Forget("choice")
			a.SetInt("turn", turn+1)
			if values[0] == decisions.Pass {
				a.SetInt("passes", passes+1)
				continue
			}
			chosen, err := pick(offers, values[0])
			if err != nil {
				return OutcomeFailed, err
			}
			a.SetInt("passes", 0)
			env.Push(chosen)
			return OutcomeAgain, nil
		}

		if len(offers) == 0 {
			a.SetInt("turn", turn+1)
			a.SetInt("passes", passes+1)
			continue
		}
		prompt := "Choose a response or Pass"
		if w.Timing == TimingBefore {
			prompt = "Choose an action to play before the effect or Pass"
		}
		env.Ask(a, "choice", decisions.ActionChoice(player, prompt, labels(offers)))
		return OutcomeWaiting, nil
	}
}

// NewAfterWindow creates a window offering optional responses to results.
func NewAfterWindow(results []EffectResult) *Action {
	a := NewAction(ActionKindWindow, "", "Optional responses")
	a.Provoking = append([]EffectResult(nil), results...)
	a.AddResult(responseWindow{Timing: TimingAfter})
	return a
}

// NewBeforeWindow creates a window offering optional actions before an
// effect of the performing action plays.
func NewBeforeWindow(performing *Action, effect Effect) *Action {
	a := NewAction(ActionKindWindow, "", "Optional responses")
	a.ProvokingAction = performing.ID
	a.ProvokingEffect = effect
	a.AddResult(responseWindow{Timing: TimingBefore})
	return a
}

// phaseActions lets one player take top level actions until they pass.
type phaseActions struct {
	Player string
}

func (w phaseActions) Text() string { return "Phase actions" }

func (w phaseActions) Play(env Env, a *Action) (Outcome, error) {
	offers := PhaseActions(env, w.Player)
	if values, ok := a.Answer("choice"); ok {
		a.Forget("choice")
		if values[0] == decisions.Pass {
			return OutcomeDone, nil
		}
		chosen, err := pick(offers, values[0])
		if err != nil {
			return OutcomeFailed, err
		}
		env.Push(chosen)
		return OutcomeAgain, nil
	}
	if len(offers) == 0 || env.AutoPass(w.Player) {
		return OutcomeDone, nil
	}
	st := env.State()
	prompt := fmt.Sprintf("Choose %s action or Pass", st.CurrentPhase.HumanReadable())
	env.Ask(a, "choice", decisions.ActionChoice(w.Player, prompt, labels(offers)))
	return OutcomeWaiting, nil
}

// NewPhaseActionsWindow creates the window in which a player takes phase
// actions.
func NewPhaseActionsWindow(playerID string) *Action {
	a := NewAction(ActionKindWindow, playerID, "Phase actions")
	a.AddResult(phaseActions{Player: playerID})
	return a
}

func labels(actions []*Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Text
	}
	return out
}

func pick(offers []*Action, value string) (*Action, error) {
	idx, err := strconv.Atoi(value)
	if err != nil || idx < 0 || idx >= len(offers) {
		return nil, fmt.Errorf("action choice %q no longer available", value)
	}
	return offers[idx], nil
}
