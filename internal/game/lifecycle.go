package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

func (g *Game) playerLost(playerID, reason string) {
	if g.finished {
		return
	}
	g.losers[playerID] = reason
	g.state.SendMessage(fmt.Sprintf("%s lost: %s", playerID, reason))
	g.finish(g.state.Opponent(playerID), fmt.Sprintf("%s lost: %s", playerID, reason))
}

func (g *Game) finish(winner, reason string) {
	if g.finished {
		return
	}
	g.finished = true
	g.winner = winner
	g.reason = reason
	g.decisions = make(map[string][]*pendingDecision)
	g.state.SendMessage(fmt.Sprintf("%s wins the game", winner))
	g.logger.Info("game finished",
		zap.String("winner", winner),
		zap.String("reason", reason),
		zap.Int("turn", g.state.TurnNumber),
	)
	losers := make(map[string]string, len(g.losers))
	for p, r := range g.losers {
		losers[p] = r
	}
	for _, l := range g.resultListeners {
		l.GameFinished(g.id, winner, reason, losers)
	}
	g.writePileCounts()
}

// abort ends the game after an internal fault. In-flight side effects are
// not rolled back.
func (g *Game) abort(err error) {
	if g.finished {
		return
	}
	g.logger.Error("game aborted",
		zap.Error(err),
		zap.String("phase", g.state.CurrentPhase.String()),
		zap.Int("turn", g.state.TurnNumber),
	)
	g.state.SendMessage("Game aborted due to an internal error")
	g.cancel()
}

func (g *Game) cancel() {
	g.finished = true
	g.cancelled = true
	g.decisions = make(map[string][]*pendingDecision)
	for _, l := range g.resultListeners {
		l.GameCancelled(g.id)
	}
	g.writePileCounts()
}

// Concede makes the player lose.
func (g *Game) Concede(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	g.replay.record(ReplayEntry{Kind: EntryConcede, PlayerID: playerID})
	g.playerLost(playerID, "Conceded")
	g.run()
	return nil
}

// PlayerTimedOut makes the player lose for running out of time.
func (g *Game) PlayerTimedOut(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	g.replay.record(ReplayEntry{Kind: EntryTimeout, PlayerID: playerID})
	g.playerLost(playerID, "Timed out")
	g.run()
	return nil
}

// RequestCancel records the player's wish to cancel. The game is cancelled
// once every player has asked.
func (g *Game) RequestCancel(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	g.cancelRequests[playerID] = true
	g.replay.record(ReplayEntry{Kind: EntryCancel, PlayerID: playerID})
	for _, p := range g.state.PlayerOrder {
		if !g.cancelRequests[p] {
			return nil
		}
	}
	g.state.SendMessage("Game cancelled by agreement of all players")
	g.logger.Info("game cancelled by players")
	g.cancel()
	g.run()
	return nil
}

// RequestExtendGameTimer records a request to extend the game timer.
func (g *Game) RequestExtendGameTimer(playerID string, minutes int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	if minutes <= 0 {
		return fmt.Errorf("extension must be positive, got %d minutes", minutes)
	}
	g.extendRequests[playerID] = minutes
	return nil
}

// GameTimerExtendedInMinutes returns the extension every player agreed to,
// which is the smallest requested, and clears the requests. It returns 0
// until all players have asked.
func (g *Game) GameTimerExtendedInMinutes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	agreed := 0
	for _, p := range g.state.PlayerOrder {
		minutes, ok := g.extendRequests[p]
		if !ok {
			return 0
		}
		if agreed == 0 || minutes < agreed {
			agreed = minutes
		}
	}
	g.extendRequests = make(map[string]int)
	g.state.SendMessage(fmt.Sprintf("Game timer extended by %d minutes", agreed))
	return agreed
}

// RequestDisableActionTimer records a request to turn off the action timer.
func (g *Game) RequestDisableActionTimer(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	g.disableTimer[playerID] = true
	return nil
}

// IsActionTimerDisabled reports whether every player asked to disable the
// action timer.
func (g *Game) IsActionTimerDisabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.state.PlayerOrder {
		if !g.disableTimer[p] {
			return false
		}
	}
	return true
}

// SetAutoPass makes the player pass phase actions automatically in a phase.
func (g *Game) SetAutoPass(playerID string, phase state.Phase, enabled bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	if g.autoPass[playerID] == nil {
		g.autoPass[playerID] = make(map[state.Phase]bool)
	}
	g.autoPass[playerID][phase] = enabled
	g.replay.record(ReplayEntry{
		Kind:        EntryAutoPass,
		PlayerID:    playerID,
		Phase:       phase,
		Enabled:     enabled,
		BeforeStart: !g.started,
	})
	return nil
}
