package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *GameState {
	t.Helper()
	return NewGameState("vader", "luke", 42)
}

func addCard(t *testing.T, s *GameState, owner string, card PhysicalCard, zone Zone) int {
	t.Helper()
	card.Owner = owner
	id, err := s.AddCard(&card, zone)
	require.NoError(t, err)
	return id
}

func TestNewGameStateDarkSideFirst(t *testing.T) {
	s := newTestState(t)

	assert.Equal(t, []string{"vader", "luke"}, s.PlayerOrder)
	assert.Equal(t, "vader", s.CurrentPlayer)
	assert.Equal(t, "luke", s.Opponent("vader"))
	assert.Equal(t, "vader", s.Opponent("luke"))
	assert.Equal(t, SideLight, s.SideOf("luke"))
	assert.Equal(t, "vader", s.PlayerForSide(SideDark))
}

func TestAddCardAssignsPermanentIDs(t *testing.T) {
	s := newTestState(t)

	first := addCard(t, s, "luke", PhysicalCard{Title: "Luke"}, ZoneReserveDeck)
	second := addCard(t, s, "luke", PhysicalCard{Title: "Leia"}, ZoneReserveDeck)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.Equal(t, []int{first, second}, s.Players["luke"].ReserveDeck)

	_, err := s.AddCard(&PhysicalCard{Owner: "nobody"}, ZoneHand)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestMoveToPileKeepsIdentity(t *testing.T) {
	s := newTestState(t)
	id := addCard(t, s, "luke", PhysicalCard{Title: "Luke"}, ZoneReserveDeck)

	require.NoError(t, s.MoveToPile(id, ZoneHand, true))
	card, err := s.Card(id)
	require.NoError(t, err)
	assert.Equal(t, ZoneHand, card.Zone)
	assert.Empty(t, s.Players["luke"].ReserveDeck)
	assert.Equal(t, []int{id}, s.Players["luke"].Hand)

	require.NoError(t, s.MoveToPile(id, ZoneUsedPile, false))
	assert.Empty(t, s.Players["luke"].Hand)
	assert.Equal(t, []int{id}, s.Players["luke"].UsedPile)
}

func TestTableRelations(t *testing.T) {
	s := newTestState(t)
	system := addCard(t, s, "luke", PhysicalCard{Title: "Yavin 4", Category: CategoryLocation, LocationKind: LocationSystem}, ZoneReserveDeck)
	xwing := addCard(t, s, "luke", PhysicalCard{Title: "Red 5", Category: CategoryStarship}, ZoneHand)
	pilot := addCard(t, s, "luke", PhysicalCard{Title: "Keir Santage", Category: CategoryCharacter}, ZoneHand)

	require.NoError(t, s.PlaceLocation(system))
	require.NoError(t, s.PutAtLocation(xwing, system))
	require.NoError(t, s.PutAboard(pilot, xwing, CapacityPilot))

	assert.Equal(t, system, s.LocationOf(pilot))
	assert.Len(t, s.CardsAtLocation(system), 2)
	require.Len(t, s.PilotsOf(xwing), 1)
	assert.Equal(t, pilot, s.PilotsOf(xwing)[0].ID)
	assert.Len(t, s.CardsInPlay(), 3)

	require.NoError(t, s.MoveToPile(xwing, ZoneLostPile, true))
	assert.Equal(t, ZoneLostPile, s.Cards[pilot].Zone)
	assert.Equal(t, 0, s.LocationOf(pilot))
}

func TestPutAtLocationRequiresLocationOnTable(t *testing.T) {
	s := newTestState(t)
	site := addCard(t, s, "luke", PhysicalCard{Category: CategoryLocation}, ZoneReserveDeck)
	luke := addCard(t, s, "luke", PhysicalCard{Category: CategoryCharacter}, ZoneHand)

	assert.Error(t, s.PutAtLocation(luke, site))
	assert.Error(t, s.PlaceLocation(luke))
}

func TestLifeForce(t *testing.T) {
	s := newTestState(t)
	for i := 0; i < 3; i++ {
		addCard(t, s, "vader", PhysicalCard{}, ZoneReserveDeck)
	}
	addCard(t, s, "vader", PhysicalCard{}, ZoneForcePile)
	addCard(t, s, "vader", PhysicalCard{}, ZoneUsedPile)
	addCard(t, s, "vader", PhysicalCard{}, ZoneHand)
	addCard(t, s, "vader", PhysicalCard{}, ZoneLostPile)

	assert.Equal(t, 5, s.LifeForce("vader"))
	assert.Equal(t, 0, s.LifeForce("luke"))
}

func TestUsageLimitsResetWithWindow(t *testing.T) {
	s := newTestState(t)
	key := UsageKey{SourceID: 7, TextID: "keir-deploy", Scope: UsagePerPhase, PlayerID: "luke"}

	s.PhaseInstance = 3
	assert.True(t, s.CanUse(key, 1))
	s.RecordUsage(key)
	assert.False(t, s.CanUse(key, 1))
	assert.Equal(t, 1, s.UsageCount(key))

	s.PhaseInstance = 4
	assert.True(t, s.CanUse(key, 1))

	battleKey := UsageKey{SourceID: 7, TextID: "boshek", Scope: UsagePerBattle, PlayerID: "luke"}
	s.StartBattle(10, "luke")
	s.RecordUsage(battleKey)
	assert.False(t, s.CanUse(battleKey, 1))
	s.StartBattle(10, "luke")
	assert.True(t, s.CanUse(battleKey, 1))
}

func TestCopyIsDeep(t *testing.T) {
	s := newTestState(t)
	id := addCard(t, s, "luke", PhysicalCard{Title: "Luke", Types: []string{"Rebel"}}, ZoneHand)
	s.StartBattle(1, "luke")
	s.Battle.Destinies["luke"] = []float64{3}
	s.RecordUsage(UsageKey{SourceID: id, TextID: "x", Scope: UsagePerGame})

	cp := s.Copy()
	require.NoError(t, cp.MoveToPile(id, ZoneLostPile, true))
	cp.Cards[id].Types[0] = "Imperial"
	cp.Battle.Destinies["luke"][0] = 5
	cp.SendMessage("changed")

	assert.Equal(t, ZoneHand, s.Cards[id].Zone)
	assert.Equal(t, []int{id}, s.Players["luke"].Hand)
	assert.True(t, s.Cards[id].HasType("rebel"))
	assert.Equal(t, 3.0, s.Battle.Destinies["luke"][0])
	assert.Empty(t, s.Messages)
}

func TestShuffleIsDeterministicAcrossCopies(t *testing.T) {
	s := newTestState(t)
	for i := 0; i < 20; i++ {
		addCard(t, s, "vader", PhysicalCard{}, ZoneReserveDeck)
	}
	cp := s.Copy()

	require.NoError(t, s.Shuffle("vader"))
	require.NoError(t, cp.Shuffle("vader"))

	assert.Equal(t, s.Players["vader"].ReserveDeck, cp.Players["vader"].ReserveDeck)
	assert.Equal(t, s.RandomState(), cp.RandomState())
}

func TestNextPhase(t *testing.T) {
	next, ok := NextPhase(PhaseActivate)
	assert.True(t, ok)
	assert.Equal(t, PhaseControl, next)

	_, ok = NextPhase(PhaseDraw)
	assert.False(t, ok)

	assert.Equal(t, "DEPLOY", PhaseDeploy.String())
	assert.Equal(t, "Deploy", PhaseDeploy.HumanReadable())
	assert.Equal(t, PhaseActivate, FirstPhase())
	assert.Len(t, TurnSequence(), 6)
}

func TestParsePhase(t *testing.T) {
	for _, name := range []string{"DEPLOY", "deploy", "Deploy"} {
		p, err := ParsePhase(name)
		require.NoError(t, err)
		assert.Equal(t, PhaseDeploy, p)
	}
	p, err := ParsePhase("between turns")
	require.NoError(t, err)
	assert.Equal(t, PhaseBetweenTurns, p)

	for _, name := range []string{"", "none", "upkeep"} {
		_, err := ParsePhase(name)
		assert.Error(t, err, name)
	}
}
