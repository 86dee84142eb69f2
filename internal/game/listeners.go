package game

import (
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// StateListener receives game views. It is called synchronously while the
// game is locked and must not call back into the game.
type StateListener interface {
	SendState(view GameView, reverted bool)
	SendWarning(playerID, text string)
}

// ResultListener is told exactly once how the game ended.
type ResultListener interface {
	GameFinished(gameID, winner, reason string, losers map[string]string)
	GameCancelled(gameID string)
}

// PileCounts is the number of cards in each of a player's piles.
type PileCounts struct {
	ReserveDeck int `json:"reserve_deck"`
	ForcePile   int `json:"force_pile"`
	UsedPile    int `json:"used_pile"`
	LostPile    int `json:"lost_pile"`
	Hand        int `json:"hand"`
	OutOfPlay   int `json:"out_of_play"`
}

// StatisticsListener receives each player's pile counts when the game ends.
type StatisticsListener interface {
	WritePileCounts(gameID string, counts map[string]PileCounts)
}

type stateListenerEntry struct {
	playerID string
	listener StateListener
}

// AddStateListener registers a listener that sees the game as the player
// does. An empty player id gets a spectator view.
func (g *Game) AddStateListener(playerID string, l StateListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stateListeners = append(g.stateListeners, stateListenerEntry{playerID: playerID, listener: l})
	if g.started {
		l.SendState(g.view(playerID), false)
	}
}

// RemoveStateListener unregisters a state listener.
func (g *Game) RemoveStateListener(l StateListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.stateListeners[:0]
	for _, e := range g.stateListeners {
		if e.listener != l {
			kept = append(kept, e)
		}
	}
	g.stateListeners = kept
}

// AddResultListener registers a result listener.
func (g *Game) AddResultListener(l ResultListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resultListeners = append(g.resultListeners, l)
}

// RemoveResultListener unregisters a result listener.
func (g *Game) RemoveResultListener(l ResultListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.resultListeners[:0]
	for _, r := range g.resultListeners {
		if r != l {
			kept = append(kept, r)
		}
	}
	g.resultListeners = kept
}

// AddStatisticsListener registers a statistics listener.
func (g *Game) AddStatisticsListener(l StatisticsListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statisticsListeners = append(g.statisticsListeners, l)
}

// RemoveStatisticsListener unregisters a statistics listener.
func (g *Game) RemoveStatisticsListener(l StatisticsListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.statisticsListeners[:0]
	for _, s := range g.statisticsListeners {
		if s != l {
			kept = append(kept, s)
		}
	}
	g.statisticsListeners = kept
}

func (g *Game) broadcast(reverted bool) {
	for _, e := range g.stateListeners {
		e.listener.SendState(g.view(e.playerID), reverted)
	}
}

func (g *Game) pileCounts() map[string]PileCounts {
	counts := make(map[string]PileCounts, len(g.state.Players))
	for id, p := range g.state.Players {
		counts[id] = PileCounts{
			ReserveDeck: len(p.ReserveDeck),
			ForcePile:   len(p.ForcePile),
			UsedPile:    len(p.UsedPile),
			LostPile:    len(p.LostPile),
			Hand:        len(p.Hand),
			OutOfPlay:   len(p.OutOfPlay),
		}
	}
	return counts
}

func (g *Game) writePileCounts() {
	if len(g.statisticsListeners) == 0 {
		return
	}
	counts := g.pileCounts()
	for _, l := range g.statisticsListeners {
		l.WritePileCounts(g.id, counts)
	}
}

// hiddenFrom reports whether a card's face is hidden from the viewer.
func hiddenFrom(card *state.PhysicalCard, viewer string) bool {
	return card.Zone == state.ZoneHand && card.Owner != viewer
}
