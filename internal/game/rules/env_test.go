package rules

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

const (
	dark  = "vader"
	light = "luke"
)

type askedDecision struct {
	action   *Action
	key      string
	decision *decisions.Decision
}

// testEnv is a minimal Env that records what effects ask for instead of
// running a resolution cycle.
type testEnv struct {
	st       *state.GameState
	reg      *modifiers.Registry
	lib      *MapLibrary
	logger   *zap.Logger
	stack    *ActionStack
	results  []EffectResult
	asked    []askedDecision
	autoPass map[string]bool
	lost     map[string]string
}

func newTestEnv(t *testing.T, defs ...*CardDefinition) *testEnv {
	t.Helper()
	return &testEnv{
		st:       state.NewGameState(dark, light, 7),
		reg:      modifiers.NewRegistry(),
		lib:      NewMapLibrary(defs...),
		logger:   zaptest.NewLogger(t),
		stack:    NewActionStack(),
		autoPass: make(map[string]bool),
		lost:     make(map[string]string),
	}
}

func (e *testEnv) State() *state.GameState        { return e.st }
func (e *testEnv) Modifiers() *modifiers.Registry { return e.reg }
func (e *testEnv) Library() Library               { return e.lib }
func (e *testEnv) Logger() *zap.Logger            { return e.logger }

func (e *testEnv) Emit(results ...EffectResult) {
	e.results = append(e.results, results...)
}

func (e *testEnv) Ask(a *Action, key string, d *decisions.Decision) {
	e.asked = append(e.asked, askedDecision{action: a, key: key, decision: d})
}

func (e *testEnv) Push(a *Action) {
	a.RecordUsage(e.st)
	e.stack.Push(a)
}

func (e *testEnv) FindAction(id string) (*Action, bool) { return e.stack.Find(id) }

func (e *testEnv) PriorityOrder() []string {
	return []string{e.st.CurrentPlayer, e.st.Opponent(e.st.CurrentPlayer)}
}

func (e *testEnv) AutoPass(playerID string) bool { return e.autoPass[playerID] }

func (e *testEnv) PlayerLost(playerID, reason string) { e.lost[playerID] = reason }

func (e *testEnv) lastAsked(t *testing.T) askedDecision {
	t.Helper()
	if len(e.asked) == 0 {
		t.Fatalf("expected a decision to be asked")
	}
	return e.asked[len(e.asked)-1]
}

// answer stores the answer the way the game does and clears the record.
func (e *testEnv) answer(t *testing.T, value string) {
	t.Helper()
	asked := e.lastAsked(t)
	values, err := asked.decision.Validate(value)
	if err != nil {
		t.Fatalf("answer %q rejected: %v", value, err)
	}
	asked.action.Remember(asked.key, values...)
	e.asked = e.asked[:len(e.asked)-1]
}

// add creates a card for the owner in the zone and returns it.
func (e *testEnv) add(t *testing.T, owner string, card state.PhysicalCard, zone state.Zone) *state.PhysicalCard {
	t.Helper()
	c := card
	c.Owner = owner
	if _, err := e.st.AddCard(&c, zone); err != nil {
		t.Fatalf("add card: %v", err)
	}
	return &c
}

func (e *testEnv) location(t *testing.T, owner, title, kind string, darkIcons, lightIcons int) *state.PhysicalCard {
	t.Helper()
	loc := e.add(t, owner, state.PhysicalCard{
		Title:        title,
		Category:     state.CategoryLocation,
		LocationKind: kind,
		DarkIcons:    darkIcons,
		LightIcons:   lightIcons,
	}, state.ZoneReserveDeck)
	if err := e.st.PlaceLocation(loc.ID); err != nil {
		t.Fatalf("place location: %v", err)
	}
	return loc
}

func (e *testEnv) character(t *testing.T, owner, title string, power float64, at int) *state.PhysicalCard {
	t.Helper()
	c := e.add(t, owner, state.PhysicalCard{
		Title:      title,
		Category:   state.CategoryCharacter,
		Power:      power,
		Forfeit:    2,
		DeployCost: 2,
		Landspeed:  1,
	}, state.ZoneHand)
	if at != 0 {
		if err := e.st.PutAtLocation(c.ID, at); err != nil {
			t.Fatalf("put at location: %v", err)
		}
	}
	return c
}

func (e *testEnv) fillPile(t *testing.T, owner string, zone state.Zone, n int, destiny float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		e.add(t, owner, state.PhysicalCard{Title: "Filler", Category: state.CategoryEffect, Destiny: destiny}, zone)
	}
}

// resolve plays every effect of an action in order, stopping at the first
// effect that does not complete.
func (e *testEnv) resolve(t *testing.T, a *Action) Outcome {
	t.Helper()
	for _, stage := range []Stage{StageTargeting, StageCosts, StageResults} {
		if a.Stage > stage {
			continue
		}
		if a.Stage < stage {
			a.Stage, a.Cursor = stage, 0
		}
		for {
			effect, ok := a.CurrentEffect()
			if !ok {
				break
			}
			outcome, err := effect.Play(e, a)
			if err != nil {
				t.Fatalf("%s: %v", effect.Text(), err)
			}
			if outcome == OutcomeFailed && stage == StageResults {
				a.Cursor++
				continue
			}
			if outcome != OutcomeDone {
				return outcome
			}
			a.Cursor++
		}
	}
	a.Stage = StageDone
	return OutcomeDone
}

func labelsOf(actions []*Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Text
	}
	return out
}
