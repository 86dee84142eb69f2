package rules

import (
	"testing"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// oncePerPhaseResponse lets its owner respond to a drawn card once per phase.
func oncePerPhaseResponse() *CardDefinition {
	return &CardDefinition{
		BlueprintID: "test-response",
		Title:       "Comlink",
		Category:    state.CategoryEffect,
		OptionalAfterTriggers: func(ctx TriggerContext) []*Action {
			if len(ResultsOfType(ctx.Results, ResultCardDrawn)) == 0 {
				return nil
			}
			a := NewCardAction(ActionKindOptionalTrigger, ctx.Self, "respond", "Draw another card")
			a.Limit(state.UsagePerPhase, 1)
			a.AddResult(DrawCard{Player: ctx.Self.Owner})
			return []*Action{a}
		},
	}
}

func TestAfterWindowClosesWhenEveryonePasses(t *testing.T) {
	env := newTestEnv(t)
	window := NewAfterWindow([]EffectResult{NewResult(ResultTurnStarted, dark)})
	if outcome := env.resolve(t, window); outcome != OutcomeDone {
		t.Fatalf("expected window with no offers to close, got %s", outcome)
	}
	if len(env.asked) != 0 {
		t.Fatalf("expected nobody to be asked")
	}
}

func TestAfterWindowStopsOfferingExhaustedTriggers(t *testing.T) {
	env := newTestEnv(t, oncePerPhaseResponse())
	site := env.location(t, light, "Hoth: Echo Base", state.LocationSite, 0, 2)
	comlink := env.add(t, light, state.PhysicalCard{BlueprintID: "test-response", Title: "Comlink"}, state.ZoneHand)
	if err := env.st.PutAtLocation(comlink.ID, site.ID); err != nil {
		t.Fatal(err)
	}
	env.fillPile(t, light, state.ZoneForcePile, 2, 1)

	window := NewAfterWindow([]EffectResult{NewCardResult(ResultCardDrawn, light, 0, 0)})
	window.Stage = StageResults
	if outcome := env.resolve(t, window); outcome != OutcomeWaiting {
		t.Fatalf("expected light to be offered the response, got %s", outcome)
	}
	asked := env.lastAsked(t)
	if asked.decision.PlayerID != light || asked.decision.Kind != decisions.KindActionChoice {
		t.Fatalf("unexpected decision %+v", asked.decision)
	}
	if labels := asked.decision.Labels(); len(labels) != 2 || labels[0] != "Draw another card" {
		t.Fatalf("unexpected labels %v", labels)
	}
	env.answer(t, "0")

	if outcome := env.resolve(t, window); outcome != OutcomeAgain {
		t.Fatalf("expected the chosen response to be pushed, got %s", outcome)
	}
	pushed, ok := env.stack.Peek()
	if !ok || pushed.SourceID != comlink.ID || !pushed.Recorded {
		t.Fatalf("expected the recorded response on the stack")
	}

	if outcome := env.resolve(t, window); outcome != OutcomeDone {
		t.Fatalf("expected the window to close once the response is exhausted, got %s", outcome)
	}
	if len(env.asked) != 0 {
		t.Fatalf("expected no further offers, got %d", len(env.asked))
	}

	env.st.PhaseInstance++
	if got := OptionalAfterTriggers(env, light, window.Provoking); len(got) != 1 {
		t.Fatalf("expected the response to be available in the next phase, got %v", labelsOf(got))
	}
}

func TestPhaseActionsWindow(t *testing.T) {
	env := newTestEnv(t)
	env.st.CurrentPhase = state.PhaseDraw
	env.fillPile(t, dark, state.ZoneForcePile, 2, 1)

	window := NewPhaseActionsWindow(dark)
	if outcome := env.resolve(t, window); outcome != OutcomeWaiting {
		t.Fatalf("expected dark to be asked, got %s", outcome)
	}
	env.answer(t, "0")
	if outcome := env.resolve(t, window); outcome != OutcomeAgain {
		t.Fatalf("expected the draw action to be pushed, got %s", outcome)
	}
	if env.stack.Depth() != 1 {
		t.Fatalf("expected one pushed action, got %d", env.stack.Depth())
	}

	if outcome := env.resolve(t, window); outcome != OutcomeWaiting {
		t.Fatalf("expected dark to be asked again, got %s", outcome)
	}
	env.answer(t, decisions.Pass)
	if outcome := env.resolve(t, window); outcome != OutcomeDone {
		t.Fatalf("expected pass to close the window, got %s", outcome)
	}

	auto := NewPhaseActionsWindow(dark)
	env.autoPass[dark] = true
	if outcome := env.resolve(t, auto); outcome != OutcomeDone {
		t.Fatalf("expected auto pass to close the window, got %s", outcome)
	}
	if len(env.asked) != 0 {
		t.Fatalf("expected no decision with auto pass")
	}
}

func TestPhaseActionsRejectsStaleChoice(t *testing.T) {
	env := newTestEnv(t)
	env.st.CurrentPhase = state.PhaseDraw
	env.fillPile(t, dark, state.ZoneForcePile, 1, 1)

	window := NewPhaseActionsWindow(dark)
	if outcome := env.resolve(t, window); outcome != OutcomeWaiting {
		t.Fatalf("expected dark to be asked, got %s", outcome)
	}
	env.answer(t, "0")
	env.st.Players[dark].ForcePile = nil
	effect, _ := window.CurrentEffect()
	if _, err := effect.Play(env, window); err == nil {
		t.Fatalf("expected a choice that is no longer offered to fail")
	}
}
