package modifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

type board struct {
	st     *state.GameState
	system int
	site   int
	xwing  int
	keir   int
	luke   int
}

func newBoard(t *testing.T) board {
	t.Helper()
	st := state.NewGameState("vader", "luke", 1)
	add := func(c state.PhysicalCard, zone state.Zone) int {
		c.Owner = "luke"
		id, err := st.AddCard(&c, zone)
		require.NoError(t, err)
		return id
	}
	b := board{st: st}
	b.system = add(state.PhysicalCard{Title: "Yavin 4", Category: state.CategoryLocation, LocationKind: state.LocationSystem}, state.ZoneReserveDeck)
	b.site = add(state.PhysicalCard{Title: "Yavin 4: Docking Bay", Category: state.CategoryLocation, LocationKind: state.LocationDockingBay}, state.ZoneReserveDeck)
	b.xwing = add(state.PhysicalCard{Title: "Red 5", Category: state.CategoryStarship, Power: 3, DeployCost: 3, Types: []string{"X-wing"}, Unique: true}, state.ZoneHand)
	b.keir = add(state.PhysicalCard{Title: "Keir Santage", Category: state.CategoryCharacter, Power: 2, Forfeit: 4}, state.ZoneHand)
	b.luke = add(state.PhysicalCard{Title: "Luke Skywalker", Category: state.CategoryCharacter, Power: 3, Landspeed: 1}, state.ZoneHand)
	require.NoError(t, st.PlaceLocation(b.system))
	require.NoError(t, st.PlaceLocation(b.site))
	require.NoError(t, st.PutAtLocation(b.xwing, b.system))
	return b
}

func TestPilotedPowerFollowsSource(t *testing.T) {
	b := newBoard(t)
	reg := NewRegistry()
	xwing := b.st.Cards[b.xwing]
	keir := b.st.Cards[b.keir]

	require.NoError(t, b.st.PutAboard(b.keir, b.xwing, state.CapacityPilot))
	reg.Add(AddsPowerToPilotedBySelf(keir, 2))

	assert.Equal(t, 5.0, reg.Power(b.st, xwing))

	require.NoError(t, b.st.MoveToPile(b.keir, state.ZoneLostPile, true))
	assert.Equal(t, 3.0, reg.Power(b.st, xwing), "filter must be evaluated fresh")

	assert.Equal(t, 1, reg.RemoveBySource(b.keir))
	assert.Equal(t, 3.0, reg.Power(b.st, xwing))
	assert.Zero(t, reg.Len())
}

func TestCombinationRules(t *testing.T) {
	b := newBoard(t)
	reg := NewRegistry()
	xwing := b.st.Cards[b.xwing]
	src := b.st.Cards[b.system]

	reg.Add(PowerModifier(src, Card(b.xwing), 2))
	reg.Add(PowerModifier(src, Card(b.xwing), -1))
	assert.Equal(t, 4.0, reg.Power(b.st, xwing))

	reg.Add(Modifier{SourceID: src.ID, Kind: KindPowerCap, Affects: Card(b.xwing), Value: Constant(3.5)})
	reg.Add(Modifier{SourceID: src.ID, Kind: KindPowerCap, Affects: Card(b.xwing), Value: Constant(5)})
	assert.Equal(t, 3.5, reg.Power(b.st, xwing))

	reg.Add(ImmuneToAttritionLessThan(src, Card(b.xwing), 3))
	reg.Add(ImmuneToAttritionLessThan(src, Card(b.xwing), 5))
	immune, ok := reg.ImmuneToAttrition(b.st, xwing)
	assert.True(t, ok)
	assert.Equal(t, 5.0, immune)

	assert.False(t, reg.Flag(b.st, KindMayNotMove, xwing))
	reg.Add(Modifier{SourceID: src.ID, Kind: KindMayNotMove, Affects: Card(b.xwing)})
	assert.True(t, reg.Flag(b.st, KindMayNotMove, xwing))
}

func TestDeployCostOverrideThenSum(t *testing.T) {
	b := newBoard(t)
	reg := NewRegistry()
	xwing := b.st.Cards[b.xwing]
	src := b.st.Cards[b.site]

	assert.Equal(t, 3.0, reg.DeployCost(b.st, xwing, b.system))

	reg.Add(Modifier{SourceID: src.ID, Kind: KindDeployCostSet, Affects: Card(b.xwing), Value: Constant(6)})
	reg.Add(Modifier{SourceID: src.ID, Kind: KindDeployCostSet, Affects: Card(b.xwing), Value: Constant(4)})
	assert.Equal(t, 4.0, reg.DeployCost(b.st, xwing, b.system), "last writer wins")

	reg.Add(DeployCostToLocation(src, HasType("X-wing"), Card(b.system), -2))
	assert.Equal(t, 2.0, reg.DeployCost(b.st, xwing, b.system))
	assert.Equal(t, 4.0, reg.DeployCost(b.st, xwing, b.site))

	reg.Add(DeployCostForAction(src, b.xwing, b.system, -5, "action-1"))
	assert.Equal(t, 0.0, reg.DeployCost(b.st, xwing, b.system), "deploy cost floors at zero")
	assert.Equal(t, 1, reg.RemoveOwnedBy("action-1"))
	assert.Equal(t, 2.0, reg.DeployCost(b.st, xwing, b.system))
}

func TestDurationsRemovedPhysically(t *testing.T) {
	b := newBoard(t)
	reg := NewRegistry()
	src := b.st.Cards[b.site]
	luke := b.st.Cards[b.luke]
	require.NoError(t, b.st.PutAtLocation(b.luke, b.site))

	reg.Add(LandspeedUntilEndOfTurn(src, b.luke, 2))
	reg.Add(DestinyUntilEndOfBattle(src, Card(b.luke), 1))
	assert.Equal(t, 3.0, reg.Landspeed(b.st, luke))
	assert.Equal(t, 1.0, reg.Destiny(b.st, luke))

	assert.Equal(t, 1, reg.RemoveDuration(DurationUntilEndOfTurn))
	assert.Equal(t, 1.0, reg.Landspeed(b.st, luke))
	assert.Equal(t, 1, reg.Len())

	reg.RemoveDuration(DurationUntilEndOfBattle)
	assert.Equal(t, 0.0, reg.Destiny(b.st, luke))
}

func TestConditionAndPanicsTreatedAsFalse(t *testing.T) {
	b := newBoard(t)
	reg := NewRegistry()
	xwing := b.st.Cards[b.xwing]
	src := b.st.Cards[b.site]

	reg.Add(Modifier{SourceID: src.ID, Kind: KindPower, Affects: Card(b.xwing), Value: Constant(1), Condition: InPhase(state.PhaseBattle)})
	reg.Add(Modifier{SourceID: src.ID, Kind: KindPower, Affects: func(*state.GameState, *Registry, *state.PhysicalCard) bool {
		panic("broken filter")
	}, Value: Constant(10)})
	reg.Add(Modifier{SourceID: src.ID, Kind: KindPower, Affects: Card(b.xwing), Value: func(*state.GameState, *Registry, *state.PhysicalCard) float64 {
		panic("broken evaluator")
	}})

	assert.Equal(t, 3.0, reg.Power(b.st, xwing))
	b.st.CurrentPhase = state.PhaseBattle
	assert.Equal(t, 4.0, reg.Power(b.st, xwing))
}

func TestPanickingModifiersAreLogged(t *testing.T) {
	b := newBoard(t)
	core, logs := observer.New(zapcore.WarnLevel)
	reg := NewRegistry()
	reg.SetLogger(zap.New(core))
	xwing := b.st.Cards[b.xwing]

	filterID := reg.Add(Modifier{SourceID: b.site, Kind: KindPower, Text: "broken filter", Affects: func(*state.GameState, *Registry, *state.PhysicalCard) bool {
		panic("broken filter")
	}, Value: Constant(10)})
	reg.Add(Modifier{SourceID: b.site, Kind: KindPower, Affects: Card(b.xwing), Condition: func(*state.GameState, *Registry) bool {
		panic("broken condition")
	}, Value: Constant(10)})
	reg.Add(Modifier{SourceID: b.site, Kind: KindPower, Affects: Card(b.xwing), Value: func(*state.GameState, *Registry, *state.PhysicalCard) float64 {
		panic("broken evaluator")
	}})

	assert.Equal(t, 3.0, reg.Power(b.st, xwing))

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("modifier filter panicked").Len())
	assert.Equal(t, 1, logs.FilterMessage("modifier condition panicked").Len())
	assert.Equal(t, 1, logs.FilterMessage("modifier evaluator panicked").Len())

	entry := logs.FilterMessage("modifier filter panicked").All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, filterID, fields["modifier_id"])
	assert.Equal(t, int64(b.site), fields["source_id"])
	assert.Equal(t, "broken filter", fields["panic"])

	// Copies report through the same logger.
	reg.Copy().Power(b.st, xwing)
	assert.Equal(t, 6, logs.Len())
}

func TestPlayerLevelModifiers(t *testing.T) {
	b := newBoard(t)
	reg := NewRegistry()
	src := b.st.Cards[b.site]

	reg.Add(ForceGeneration(src, "luke", 2))
	reg.Add(SkipPhase(src, "vader", state.PhaseMove))

	assert.Equal(t, 2.0, reg.PlayerValue(b.st, KindForceGeneration, "luke"))
	assert.Zero(t, reg.PlayerValue(b.st, KindForceGeneration, "vader"))
	assert.True(t, reg.SkipsPhase(b.st, "vader", state.PhaseMove))
	assert.False(t, reg.SkipsPhase(b.st, "vader", state.PhaseDeploy))
	assert.False(t, reg.SkipsPhase(b.st, "luke", state.PhaseMove))
}

func TestTotalPowerHere(t *testing.T) {
	b := newBoard(t)
	reg := NewRegistry()
	require.NoError(t, b.st.PutAtLocation(b.luke, b.site))
	require.NoError(t, b.st.PutAtLocation(b.keir, b.site))
	keir := b.st.Cards[b.keir]

	assert.Equal(t, 5.0, reg.TotalPower(b.st, b.site, "luke"))
	reg.Add(TotalPowerHere(keir, "luke", 2))
	reg.Add(TotalPowerHere(keir, "vader", -1))
	assert.Equal(t, 7.0, reg.TotalPower(b.st, b.site, "luke"))
	assert.Zero(t, reg.TotalPower(b.st, b.site, "vader"))
}

func TestCopyIsIndependent(t *testing.T) {
	b := newBoard(t)
	reg := NewRegistry()
	src := b.st.Cards[b.site]
	reg.Add(LandspeedUntilEndOfTurn(src, b.luke, 1))

	cp := reg.Copy()
	cp.RemoveDuration(DurationUntilEndOfTurn)
	cp.Add(PowerModifier(src, Any, 1))

	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, DurationUntilEndOfTurn, reg.List()[0].Duration)
	assert.Equal(t, 1, cp.Len())
}
