package game

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

const (
	darkPlayer  = "vader"
	lightPlayer = "luke"

	darkBayTitle   = "Death Star: Docking Bay 327"
	lightSiteTitle = "Yavin 4: Massassi Throne Room"
)

// testLibrary holds a dark docking bay whose game text makes the opponent
// lose 1 Force whenever its owner deploys a character, a light site and one
// basic character per side.
func testLibrary() *rules.MapLibrary {
	return rules.NewMapLibrary(
		&rules.CardDefinition{
			BlueprintID:  "t-dark-bay",
			Title:        darkBayTitle,
			Side:         state.SideDark,
			Category:     state.CategoryLocation,
			LocationKind: state.LocationDockingBay,
			DarkIcons:    2,
			LightIcons:   1,
			RequiredAfterTriggers: func(ctx rules.TriggerContext) []*rules.Action {
				self := ctx.Self
				deployed := rules.JustDeployed(ctx, modifiers.And(
					modifiers.OwnedBy(self.Owner),
					modifiers.OfCategory(state.CategoryCharacter),
				))
				if len(deployed) == 0 {
					return nil
				}
				a := rules.NewCardAction(rules.ActionKindRequiredTrigger, self, "bay-drain", "Make opponent lose 1 Force")
				a.AddResult(rules.LoseForce{Player: rules.OpponentOf(ctx), Amount: 1, Reason: self.Title})
				return []*rules.Action{a}
			},
		},
		&rules.CardDefinition{
			BlueprintID:  "t-light-site",
			Title:        lightSiteTitle,
			Side:         state.SideLight,
			Category:     state.CategoryLocation,
			LocationKind: state.LocationSite,
			DarkIcons:    1,
			LightIcons:   2,
		},
		&rules.CardDefinition{
			BlueprintID: "t-stormtrooper",
			Title:       "Stormtrooper",
			Side:        state.SideDark,
			Category:    state.CategoryCharacter,
			Destiny:     2,
			DeployCost:  1,
			Power:       2,
			Ability:     0,
			Forfeit:     1,
			Landspeed:   1,
		},
		&rules.CardDefinition{
			BlueprintID: "t-rebel-trooper",
			Title:       "Rebel Trooper",
			Side:        state.SideLight,
			Category:    state.CategoryCharacter,
			Destiny:     2,
			DeployCost:  1,
			Power:       2,
			Forfeit:     1,
			Landspeed:   1,
		},
	)
}

func deckOf(side state.Side, location, character string, characters int) Deck {
	cards := []string{location}
	for i := 0; i < characters; i++ {
		cards = append(cards, character)
	}
	return Deck{Side: side, Cards: cards}
}

func testSeats(darkCharacters, lightCharacters int) (Seat, Seat) {
	return Seat{PlayerID: darkPlayer, Deck: deckOf(state.SideDark, "t-dark-bay", "t-stormtrooper", darkCharacters)},
		Seat{PlayerID: lightPlayer, Deck: deckOf(state.SideLight, "t-light-site", "t-rebel-trooper", lightCharacters)}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.StartingHandSize = 4
	cfg.Seed = 42
	return cfg
}

// gameHarness drives a game through its decisions.
type gameHarness struct {
	t *testing.T
	g *Game
}

func newGameHarness(t *testing.T, cfg Config, darkCharacters, lightCharacters int) *gameHarness {
	t.Helper()
	dark, light := testSeats(darkCharacters, lightCharacters)
	g, err := NewGame(cfg, testLibrary(), dark, light, zaptest.NewLogger(t))
	require.NoError(t, err)
	return &gameHarness{t: t, g: g}
}

// startedHarness returns a started game with ten characters per deck.
func startedHarness(t *testing.T) *gameHarness {
	t.Helper()
	h := newGameHarness(t, testConfig(), 10, 10)
	require.NoError(t, h.g.Start())
	return h
}

func (h *gameHarness) pending(playerID string) *decisions.Decision {
	h.t.Helper()
	d, ok := h.g.PendingDecision(playerID)
	require.True(h.t, ok, "expected %s to have a decision", playerID)
	return d
}

// decider returns the player with an open decision.
func (h *gameHarness) decider() string {
	h.t.Helper()
	for _, p := range []string{darkPlayer, lightPlayer} {
		if _, ok := h.g.PendingDecision(p); ok {
			return p
		}
	}
	h.t.Fatalf("no player has a decision")
	return ""
}

func (h *gameHarness) answer(playerID, value string) {
	h.t.Helper()
	d := h.pending(playerID)
	require.NoError(h.t, h.g.SubmitDecision(playerID, d.ID, value))
}

// choose answers with the first option carrying the label.
func (h *gameHarness) choose(playerID, label string) {
	h.t.Helper()
	d := h.pending(playerID)
	for _, o := range d.Options {
		if o.Label == label {
			require.NoError(h.t, h.g.SubmitDecision(playerID, d.ID, o.Value))
			return
		}
	}
	h.t.Fatalf("%s has no option %q in %v", playerID, label, d.Labels())
}

func (h *gameHarness) pass(playerID string) {
	h.t.Helper()
	d := h.pending(playerID)
	require.Equal(h.t, decisions.KindActionChoice, d.Kind, "expected an action choice, got %q", d.Text)
	require.NoError(h.t, h.g.SubmitDecision(playerID, d.ID, decisions.Pass))
}

// passUntil passes every action choice until done reports true.
func (h *gameHarness) passUntil(done func() bool) {
	h.t.Helper()
	for i := 0; i < 100; i++ {
		if done() {
			return
		}
		h.pass(h.decider())
	}
	h.t.Fatalf("condition not reached after 100 passes")
}

// inspect runs f with the game locked.
func (h *gameHarness) inspect(f func(g *Game)) {
	h.g.mu.Lock()
	defer h.g.mu.Unlock()
	f(h.g)
}

func (h *gameHarness) turn() (int, string) {
	var turn int
	var player string
	h.inspect(func(g *Game) {
		turn, player = g.state.TurnNumber, g.state.CurrentPlayer
	})
	return turn, player
}

func (h *gameHarness) phase() state.Phase {
	var phase state.Phase
	h.inspect(func(g *Game) { phase = g.state.CurrentPhase })
	return phase
}

func (h *gameHarness) player(id string) state.Player {
	var p state.Player
	h.inspect(func(g *Game) { p = *g.state.Players[id].Copy() })
	return p
}

// activateAll activates as much Force as the current player may.
func (h *gameHarness) activateAll(playerID string) {
	h.t.Helper()
	h.choose(playerID, "Activate Force")
	d, ok := h.g.PendingDecision(playerID)
	if ok && d.Kind == decisions.KindInteger {
		h.answer(playerID, strconv.Itoa(d.Max))
	}
}

type recordingListener struct {
	views    []GameView
	reverted []bool
	warnings []string
}

func (l *recordingListener) SendState(view GameView, reverted bool) {
	l.views = append(l.views, view)
	l.reverted = append(l.reverted, reverted)
}

func (l *recordingListener) SendWarning(_, text string) {
	l.warnings = append(l.warnings, text)
}

func (l *recordingListener) last() GameView {
	return l.views[len(l.views)-1]
}

type recordingResults struct {
	finished  int
	cancelled int
	winner    string
	reason    string
	losers    map[string]string
}

func (r *recordingResults) GameFinished(_, winner, reason string, losers map[string]string) {
	r.finished++
	r.winner, r.reason, r.losers = winner, reason, losers
}

func (r *recordingResults) GameCancelled(string) {
	r.cancelled++
}

type recordingStatistics struct {
	counts map[string]PileCounts
}

func (s *recordingStatistics) WritePileCounts(_ string, counts map[string]PileCounts) {
	s.counts = counts
}
