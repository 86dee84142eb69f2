package game

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/decisions"
)

const noRevert = "none"

// RequestRevert asks the player which snapshot to revert to. The opponent
// must then approve the chosen snapshot before it is restored; a rejection
// only sends the requester a warning.
func (g *Game) RequestRevert(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	if !g.cfg.RollbackAllowed {
		return ErrRevertDisabled
	}
	if len(g.snapshots) == 0 {
		return ErrNoSnapshots
	}
	g.replay.record(ReplayEntry{Kind: EntryRevert, PlayerID: playerID})

	infos := g.snapshotInfos()
	options := make([]decisions.Option, 0, len(infos)+1)
	for _, s := range infos {
		options = append(options, decisions.Option{Value: strconv.Itoa(s.ID), Label: s.Description})
	}
	options = append(options, decisions.Option{Value: noRevert, Label: "Do not revert"})

	d := decisions.MultipleChoice(playerID, "Choose game state to revert prior to", options)
	g.ask(&pendingDecision{
		decision: d,
		handler: func(values []string) error {
			return g.revertChosen(playerID, values[0])
		},
	})
	g.logger.Info("revert requested", zap.String("player_id", playerID))
	g.run()
	return nil
}

func (g *Game) revertChosen(playerID, value string) error {
	if value == noRevert {
		return nil
	}
	snapshotID, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: snapshot %q", decisions.ErrInvalidDecision, value)
	}
	summary, ok := g.revertSummary(snapshotID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrSnapshotNotFound, snapshotID)
	}
	opponent := g.state.Opponent(playerID)
	d := decisions.YesNo(opponent, fmt.Sprintf("Do you want to allow %s to revert the game to the following game state?\n%s", playerID, summary))
	g.ask(&pendingDecision{
		decision: d,
		handler: func(values []string) error {
			if values[0] != decisions.Yes {
				g.warn(playerID, fmt.Sprintf("%s denied the attempt to revert the game", opponent))
				g.logger.Info("revert rejected",
					zap.String("player_id", playerID),
					zap.Int("snapshot_id", snapshotID),
				)
				return nil
			}
			g.logger.Info("revert approved",
				zap.String("player_id", playerID),
				zap.Int("snapshot_id", snapshotID),
			)
			return g.requestRestore(snapshotID)
		},
	})
	return nil
}

// revertSummary lists the target snapshot with up to two snapshots before it
// and the current life force of each player.
func (g *Game) revertSummary(snapshotID int) (string, bool) {
	target := -1
	for i, s := range g.snapshots {
		if s.ID == snapshotID {
			target = i
		}
	}
	if target < 0 {
		return "", false
	}
	var b strings.Builder
	for i := max(0, target-2); i < len(g.snapshots) && i <= target+2; i++ {
		if i == target {
			b.WriteString(">>> Revert to here <<<\n")
		}
		b.WriteString(g.snapshots[i].Description)
		b.WriteString("\n")
	}
	for _, p := range g.state.PlayerOrder {
		fmt.Fprintf(&b, "%s life force now: %d\n", p, g.state.LifeForce(p))
	}
	return strings.TrimSuffix(b.String(), "\n"), true
}

func (g *Game) warn(playerID, text string) {
	g.warnings[playerID] = append(g.warnings[playerID], text)
	for _, e := range g.stateListeners {
		if e.playerID == playerID {
			e.listener.SendWarning(playerID, text)
		}
	}
}
