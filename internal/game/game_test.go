package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

func TestNewGameValidatesSeats(t *testing.T) {
	lib := testLibrary()
	dark, light := testSeats(2, 2)

	_, err := NewGame(testConfig(), lib, light, dark, nil)
	assert.Error(t, err)

	same := light
	same.PlayerID = darkPlayer
	_, err = NewGame(testConfig(), lib, dark, same, nil)
	assert.Error(t, err)

	bad := dark
	bad.Deck.Cards = append([]string{"no-such-card"}, bad.Deck.Cards...)
	_, err = NewGame(testConfig(), lib, bad, light, nil)
	assert.ErrorIs(t, err, ErrUnknownBlueprint)

	cfg := testConfig()
	cfg.PriorityOrder = "random"
	_, err = NewGame(cfg, lib, dark, light, nil)
	assert.Error(t, err)
}

func TestStartPlaysStartingCardsAndAsksForActivation(t *testing.T) {
	h := startedHarness(t)

	turn, current := h.turn()
	assert.Equal(t, 1, turn)
	assert.Equal(t, darkPlayer, current)
	assert.Equal(t, state.PhaseActivate, h.phase())

	d := h.pending(darkPlayer)
	assert.Equal(t, decisions.KindActionChoice, d.Kind)
	assert.Equal(t, []string{"Activate Force", "Pass"}, d.Labels())
	_, lightAsked := h.g.PendingDecision(lightPlayer)
	assert.False(t, lightAsked)

	for _, id := range []string{darkPlayer, lightPlayer} {
		p := h.player(id)
		assert.Len(t, p.Hand, 4, id)
		assert.Len(t, p.ReserveDeck, 6, id)
	}
	view := h.g.View(darkPlayer)
	require.Len(t, view.Locations, 2)
	assert.Equal(t, darkBayTitle, view.Locations[0].Location.Title)
	assert.Equal(t, lightSiteTitle, view.Locations[1].Location.Title)

	assert.ErrorIs(t, h.g.Start(), ErrAlreadyStarted)
}

func TestActivateForceAsksForAmount(t *testing.T) {
	h := startedHarness(t)

	h.choose(darkPlayer, "Activate Force")
	d := h.pending(darkPlayer)
	require.Equal(t, decisions.KindInteger, d.Kind)
	assert.Equal(t, 1, d.Min)
	assert.Equal(t, 3, d.Max)

	h.answer(darkPlayer, "3")
	p := h.player(darkPlayer)
	assert.Len(t, p.ForcePile, 3)
	assert.Len(t, p.ReserveDeck, 3)

	// Activation is exhausted, so the game moves on to the deploy phase.
	assert.Equal(t, state.PhaseDeploy, h.phase())
	d = h.pending(darkPlayer)
	assert.Contains(t, d.Labels(), "Deploy Stormtrooper")
}

func TestSubmitDecisionRejectsInvalidAnswers(t *testing.T) {
	h := startedHarness(t)
	d := h.pending(darkPlayer)

	err := h.g.SubmitDecision(darkPlayer, "not-a-decision", "0")
	assert.True(t, errors.Is(err, decisions.ErrInvalidDecision))

	err = h.g.SubmitDecision(darkPlayer, d.ID, "7")
	assert.ErrorIs(t, err, decisions.ErrInvalidDecision)

	err = h.g.SubmitDecision(lightPlayer, d.ID, "0")
	assert.ErrorIs(t, err, decisions.ErrInvalidDecision)

	err = h.g.SubmitDecision("yoda", d.ID, "0")
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	still := h.pending(darkPlayer)
	assert.Equal(t, d.ID, still.ID)
}

func TestRequiredTriggerMakesOpponentLoseOneForce(t *testing.T) {
	h := startedHarness(t)
	h.activateAll(darkPlayer)

	h.choose(darkPlayer, "Deploy Stormtrooper")
	h.choose(darkPlayer, darkBayTitle)

	luke := h.player(lightPlayer)
	assert.Len(t, luke.LostPile, 1)
	assert.Len(t, luke.ReserveDeck, 5)

	vader := h.player(darkPlayer)
	assert.Len(t, vader.ForcePile, 2)
	assert.Len(t, vader.UsedPile, 1)
	assert.Len(t, vader.Hand, 3)

	view := h.g.View(darkPlayer)
	require.Len(t, view.Locations[0].Cards, 1)
	assert.Equal(t, "Stormtrooper", view.Locations[0].Cards[0].Title)
	assert.Equal(t, 2.0, view.Locations[0].Cards[0].Power)

	// The phase actions window asks again once the deployment resolved.
	d := h.pending(darkPlayer)
	assert.Equal(t, decisions.KindActionChoice, d.Kind)
	assert.Len(t, h.g.View(darkPlayer).Stack, 1)
}

// probeProcess checks the resolution cycle is idle when it runs and adds a
// modifier per duration.
type probeProcess struct {
	ran   *int
	idle  *bool
	added []modifiers.Duration
}

func (p probeProcess) Name() string { return "probe" }

func (p probeProcess) Process(g *Game) error {
	*p.ran++
	*p.idle = g.stack.IsEmpty() && len(g.pendingResults) == 0
	for _, d := range p.added {
		g.modifiers.Add(modifiers.Modifier{
			Kind:     modifiers.KindPower,
			Text:     string(d),
			Affects:  modifiers.Any,
			Value:    modifiers.Constant(1),
			Duration: d,
		})
	}
	return nil
}

func (p probeProcess) Next(*Game) Process { return nil }

func TestInsertedProcessRunsOnceWithEmptyStack(t *testing.T) {
	h := startedHarness(t)
	ran, idle := 0, false
	h.g.InsertProcess(probeProcess{ran: &ran, idle: &idle})
	assert.Equal(t, 0, ran)

	h.pass(darkPlayer)
	h.passUntil(func() bool {
		turn, _ := h.turn()
		return turn == 2
	})
	assert.Equal(t, 1, ran)
	assert.True(t, idle)
}

func TestModifiersExpireAtEndOfPhaseAndTurn(t *testing.T) {
	h := startedHarness(t)
	ran, idle := 0, false
	h.g.InsertProcess(probeProcess{
		ran:   &ran,
		idle:  &idle,
		added: []modifiers.Duration{modifiers.DurationUntilEndOfPhase, modifiers.DurationUntilEndOfTurn},
	})

	h.activateAll(darkPlayer)
	require.Equal(t, 1, ran)
	require.Equal(t, state.PhaseDeploy, h.phase())
	h.inspect(func(g *Game) {
		require.Equal(t, 1, g.modifiers.Len())
		assert.Equal(t, modifiers.DurationUntilEndOfTurn, g.modifiers.List()[0].Duration)
	})

	h.passUntil(func() bool {
		_, current := h.turn()
		return current == lightPlayer
	})
	h.inspect(func(g *Game) {
		assert.Equal(t, 0, g.modifiers.Len())
	})
}

const (
	signalText  = "Signal the fleet"
	shieldsText = "Raise shields"
)

// responseLibrary extends the test library with a light outpost whose
// once per phase response answers any Force loss by making the opponent
// lose 1 Force, and an interrupt played from hand in response to any Force
// loss.
func responseLibrary(t *testing.T) *rules.MapLibrary {
	t.Helper()
	forceLost := func(ctx rules.TriggerContext) bool {
		return len(rules.ResultsOfType(ctx.Results, rules.ResultForceLost)) > 0
	}
	lib := testLibrary()
	require.NoError(t, lib.Register(&rules.CardDefinition{
		BlueprintID:  "t-light-outpost",
		Title:        "Echo Base Outpost",
		Side:         state.SideLight,
		Category:     state.CategoryLocation,
		LocationKind: state.LocationSite,
		DarkIcons:    1,
		LightIcons:   2,
		OptionalAfterTriggers: func(ctx rules.TriggerContext) []*rules.Action {
			if !forceLost(ctx) {
				return nil
			}
			self := ctx.Self
			a := rules.NewCardAction(rules.ActionKindOptionalTrigger, self, "signal", signalText).
				Limit(state.UsagePerPhase, 1)
			a.AddResult(rules.LoseForce{Player: rules.OpponentOf(ctx), Amount: 1, Reason: self.Title})
			return []*rules.Action{a}
		},
	}))
	require.NoError(t, lib.Register(&rules.CardDefinition{
		BlueprintID: "t-raise-shields",
		Title:       shieldsText,
		Side:        state.SideLight,
		Category:    state.CategoryInterrupt,
		Destiny:     3,
		InHandOptionalAfterTriggers: func(ctx rules.TriggerContext) []*rules.Action {
			if !forceLost(ctx) {
				return nil
			}
			self := ctx.Self
			a := rules.NewCardAction(rules.ActionKindOptionalTrigger, self, "shields", shieldsText)
			a.AddCost(rules.PlayInterrupt{CardID: self.ID})
			a.AddResult(rules.AddModifier{Modifier: modifiers.Modifier{
				SourceID: self.ID,
				Kind:     modifiers.KindPower,
				Text:     "Shields up",
				Affects:  modifiers.OwnedBy(self.Owner),
				Value:    modifiers.Constant(1),
				Duration: modifiers.DurationUntilEndOfTurn,
			}})
			return []*rules.Action{a}
		},
	}))
	return lib
}

func TestNestedResponsesRespectUsageAndDrainStack(t *testing.T) {
	dark, _ := testSeats(10, 0)
	light := Seat{PlayerID: lightPlayer, Deck: deckOf(state.SideLight, "t-light-outpost", "t-raise-shields", 10)}
	g, err := NewGame(testConfig(), responseLibrary(t), dark, light, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, g.Start())
	h := &gameHarness{t: t, g: g}

	h.activateAll(darkPlayer)
	h.choose(darkPlayer, "Deploy Stormtrooper")
	h.choose(darkPlayer, darkBayTitle)

	// The bay made light lose 1 Force: the outer window offers both responses.
	outer := h.pending(lightPlayer)
	assert.Contains(t, outer.Labels(), signalText)
	assert.Contains(t, outer.Labels(), shieldsText)
	h.choose(lightPlayer, signalText)

	// Dark losing Force opens a window inside the outer one. The outpost
	// response is used up for the phase.
	inner := h.pending(lightPlayer)
	assert.NotEqual(t, outer.ID, inner.ID)
	assert.NotContains(t, inner.Labels(), signalText)
	assert.Contains(t, inner.Labels(), shieldsText)
	h.inspect(func(g *Game) {
		assert.GreaterOrEqual(t, g.stack.Depth(), 3)
	})
	assert.Len(t, h.player(darkPlayer).LostPile, 1)
	h.choose(lightPlayer, shieldsText)

	// Back in the inner window, then the outer one: never the outpost again.
	for i := 0; i < 2; i++ {
		d := h.pending(lightPlayer)
		assert.NotContains(t, d.Labels(), signalText)
		h.pass(lightPlayer)
	}
	_, lightAsked := h.g.PendingDecision(lightPlayer)
	assert.False(t, lightAsked)
	assert.Len(t, h.player(lightPlayer).UsedPile, 1)
	assert.Len(t, h.player(lightPlayer).Hand, 3)

	// Only dark's phase actions window is left; once it closes the stack
	// is empty when the chain moves on.
	h.inspect(func(g *Game) {
		require.Equal(t, 1, g.stack.Depth())
		assert.Equal(t, "Phase actions", g.stack.List()[0].Text)
	})
	ran, idle := 0, false
	h.g.InsertProcess(probeProcess{ran: &ran, idle: &idle})
	h.pass(darkPlayer)
	assert.Equal(t, 1, ran)
	assert.True(t, idle)
}

type skipDeployProcess struct{}

func (skipDeployProcess) Name() string { return "skip deploy" }

func (skipDeployProcess) Process(g *Game) error {
	source := g.state.Cards[g.state.Locations[0]]
	g.modifiers.Add(modifiers.SkipPhase(source, darkPlayer, state.PhaseDeploy))
	return nil
}

func (skipDeployProcess) Next(*Game) Process { return nil }

func TestSkippedPhaseIsNotEntered(t *testing.T) {
	h := startedHarness(t)
	h.g.InsertProcess(skipDeployProcess{})
	listener := &recordingListener{}
	h.g.AddStateListener(darkPlayer, listener)

	h.activateAll(darkPlayer)
	h.passUntil(func() bool {
		_, current := h.turn()
		return current == lightPlayer
	})
	for _, v := range listener.views {
		if v.CurrentPlayer == darkPlayer {
			assert.NotEqual(t, state.PhaseDeploy.HumanReadable(), v.Phase)
		}
	}

	// The modifier lasted until end of turn only.
	h.inspect(func(g *Game) {
		assert.False(t, g.modifiers.SkipsPhase(g.state, darkPlayer, state.PhaseDeploy))
	})
}

func TestEndOfTurnRecirculatesUsedPile(t *testing.T) {
	h := startedHarness(t)
	h.activateAll(darkPlayer)
	h.choose(darkPlayer, "Deploy Stormtrooper")
	h.choose(darkPlayer, darkBayTitle)
	require.Len(t, h.player(darkPlayer).UsedPile, 1)

	h.passUntil(func() bool {
		turn, _ := h.turn()
		return turn == 2
	})
	vader := h.player(darkPlayer)
	assert.Empty(t, vader.UsedPile)
	assert.Len(t, vader.ReserveDeck, 4)

	d := h.pending(lightPlayer)
	assert.Equal(t, []string{"Activate Force", "Pass"}, d.Labels())
}

func TestAutoPassSkipsPhaseActions(t *testing.T) {
	h := newGameHarness(t, testConfig(), 10, 10)
	require.NoError(t, h.g.SetAutoPass(darkPlayer, state.PhaseActivate, true))
	require.NoError(t, h.g.Start())

	_, darkAsked := h.g.PendingDecision(darkPlayer)
	assert.False(t, darkAsked)
	turn, current := h.turn()
	assert.Equal(t, 2, turn)
	assert.Equal(t, lightPlayer, current)
	h.pending(lightPlayer)
}

func TestLifeForceDepletedEndsGame(t *testing.T) {
	h := newGameHarness(t, testConfig(), 4, 10)
	results := &recordingResults{}
	stats := &recordingStatistics{}
	h.g.AddResultListener(results)
	h.g.AddStatisticsListener(stats)
	require.NoError(t, h.g.Start())

	assert.True(t, h.g.IsFinished())
	winner, reason := h.g.Winner()
	assert.Equal(t, lightPlayer, winner)
	assert.Equal(t, "vader lost: Life Force depleted", reason)
	assert.Equal(t, map[string]string{darkPlayer: "Life Force depleted"}, h.g.Losers())

	assert.Equal(t, 1, results.finished)
	assert.Equal(t, lightPlayer, results.winner)
	require.NotNil(t, stats.counts)
	assert.Equal(t, 4, stats.counts[darkPlayer].Hand)
	assert.Equal(t, 0, stats.counts[darkPlayer].ReserveDeck)

	_, asked := h.g.PendingDecision(lightPlayer)
	assert.False(t, asked)
}

func TestConcede(t *testing.T) {
	h := startedHarness(t)
	results := &recordingResults{}
	h.g.AddResultListener(results)

	require.NoError(t, h.g.Concede(lightPlayer))
	winner, reason := h.g.Winner()
	assert.Equal(t, darkPlayer, winner)
	assert.Equal(t, "luke lost: Conceded", reason)
	assert.Equal(t, 1, results.finished)

	d := &decisions.Decision{ID: "x"}
	assert.ErrorIs(t, h.g.SubmitDecision(darkPlayer, d.ID, "0"), ErrGameFinished)
	assert.ErrorIs(t, h.g.Concede(darkPlayer), ErrGameFinished)
	assert.Equal(t, 1, results.finished)
}

func TestPlayerTimedOut(t *testing.T) {
	h := startedHarness(t)
	require.NoError(t, h.g.PlayerTimedOut(darkPlayer))
	winner, reason := h.g.Winner()
	assert.Equal(t, lightPlayer, winner)
	assert.Equal(t, "vader lost: Timed out", reason)
}

func TestCancelNeedsEveryPlayer(t *testing.T) {
	h := startedHarness(t)
	results := &recordingResults{}
	h.g.AddResultListener(results)

	require.NoError(t, h.g.RequestCancel(darkPlayer))
	assert.False(t, h.g.IsFinished())
	require.NoError(t, h.g.RequestCancel(lightPlayer))
	assert.True(t, h.g.IsFinished())
	assert.Equal(t, 1, results.cancelled)
	assert.Equal(t, 0, results.finished)
	assert.True(t, h.g.View("").Cancelled)
}

func TestTimerRequests(t *testing.T) {
	h := startedHarness(t)

	require.NoError(t, h.g.RequestExtendGameTimer(darkPlayer, 10))
	assert.Equal(t, 0, h.g.GameTimerExtendedInMinutes())
	require.NoError(t, h.g.RequestExtendGameTimer(lightPlayer, 5))
	assert.Equal(t, 5, h.g.GameTimerExtendedInMinutes())
	assert.Equal(t, 0, h.g.GameTimerExtendedInMinutes())
	assert.Error(t, h.g.RequestExtendGameTimer(darkPlayer, 0))

	assert.False(t, h.g.IsActionTimerDisabled())
	require.NoError(t, h.g.RequestDisableActionTimer(darkPlayer))
	assert.False(t, h.g.IsActionTimerDisabled())
	require.NoError(t, h.g.RequestDisableActionTimer(lightPlayer))
	assert.True(t, h.g.IsActionTimerDisabled())
}

func TestStateListenersSeeOwnHandOnly(t *testing.T) {
	h := newGameHarness(t, testConfig(), 10, 10)
	vader := &recordingListener{}
	spectator := &recordingListener{}
	h.g.AddStateListener(darkPlayer, vader)
	h.g.AddStateListener("", spectator)
	assert.Empty(t, vader.views)

	require.NoError(t, h.g.Start())
	require.NotEmpty(t, vader.views)
	view := vader.last()
	require.Len(t, view.Players, 2)
	assert.Len(t, view.Players[0].Hand, 4)
	assert.Empty(t, view.Players[1].Hand)
	assert.Equal(t, 4, view.Players[1].Piles.Hand)
	require.NotNil(t, view.Decision)
	assert.Equal(t, darkPlayer, view.Decision.PlayerID)
	assert.NotEmpty(t, view.Snapshots)

	other := spectator.last()
	assert.Empty(t, other.Players[0].Hand)
	assert.Nil(t, other.Decision)

	h.g.RemoveStateListener(spectator)
	seen := len(spectator.views)
	h.pass(darkPlayer)
	assert.Len(t, spectator.views, seen)
	assert.Greater(t, len(vader.views), 1)
}

func TestLateStateListenerGetsCurrentView(t *testing.T) {
	h := startedHarness(t)
	l := &recordingListener{}
	h.g.AddStateListener(lightPlayer, l)
	require.Len(t, l.views, 1)
	assert.Equal(t, lightPlayer, l.views[0].Viewer)
	assert.Equal(t, 1, l.views[0].Turn)
}
