package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Snapshot is a restorable copy of a game at a checkpoint. The state,
// registry, stack and procedure are captured together and only ever
// restored together.
type Snapshot struct {
	ID          int
	Description string
	PlayerID    string
	TurnNumber  int
	Phase       state.Phase
	Checksum    string

	state     *state.GameState
	modifiers *modifiers.Registry
	stack     *rules.ActionStack
	procedure *Procedure
}

// SnapshotInfo describes a snapshot to players.
type SnapshotInfo struct {
	ID          int         `json:"id"`
	Description string      `json:"description"`
	PlayerID    string      `json:"player_id"`
	TurnNumber  int         `json:"turn_number"`
	Phase       state.Phase `json:"phase"`
}

func (s *Snapshot) info() SnapshotInfo {
	return SnapshotInfo{
		ID:          s.ID,
		Description: s.Description,
		PlayerID:    s.PlayerID,
		TurnNumber:  s.TurnNumber,
		Phase:       s.Phase,
	}
}

// takeSnapshot captures the game unless rollback is off or resolution is in
// the middle of something.
func (g *Game) takeSnapshot(description string) {
	if !g.cfg.RollbackAllowed {
		return
	}
	g.pruneSnapshots()
	if !g.stack.IsEmpty() || len(g.pendingResults) > 0 {
		g.logger.Debug("snapshot skipped during resolution",
			zap.String("description", description),
			zap.Int("depth", g.stack.Depth()),
		)
		return
	}
	g.nextSnapshotID++
	s := &Snapshot{
		ID:          g.nextSnapshotID,
		Description: description,
		PlayerID:    g.state.CurrentPlayer,
		TurnNumber:  g.state.TurnNumber,
		Phase:       g.state.CurrentPhase,
		Checksum:    g.checksum(),
		state:       g.state.Copy(),
		modifiers:   g.modifiers.Copy(),
		stack:       g.stack.Copy(),
		procedure:   g.procedure.Copy(),
	}
	g.snapshots = append(g.snapshots, s)
	g.logger.Debug("snapshot taken",
		zap.Int("snapshot_id", s.ID),
		zap.String("description", description),
		zap.String("checksum", s.Checksum),
	)
}

// pruneSnapshots drops the oldest snapshots until the first one that falls
// within its player's latest kept turns.
func (g *Game) pruneSnapshots() {
	span := 2 * (g.cfg.SnapshotTurnsToKeep - 1)
	drop := 0
	for _, s := range g.snapshots {
		latest := g.state.PlayersLatestTurnNumber(s.PlayerID)
		if s.TurnNumber <= 1 && latest <= 1 {
			break
		}
		if s.TurnNumber >= latest-span {
			break
		}
		drop++
	}
	if drop > 0 {
		g.snapshots = append([]*Snapshot(nil), g.snapshots[drop:]...)
	}
}

// Snapshots lists the available snapshots, newest first.
func (g *Game) Snapshots() []SnapshotInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotInfos()
}

func (g *Game) snapshotInfos() []SnapshotInfo {
	out := make([]SnapshotInfo, 0, len(g.snapshots))
	for i := len(g.snapshots) - 1; i >= 0; i-- {
		out = append(out, g.snapshots[i].info())
	}
	return out
}

// RestoreSnapshot restores a snapshot without asking the opponent. It is
// meant for automated recovery.
func (g *Game) RestoreSnapshot(snapshotID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finished {
		return ErrGameFinished
	}
	if err := g.requestRestore(snapshotID); err != nil {
		return err
	}
	g.replay.record(ReplayEntry{Kind: EntryRestore, SnapshotID: snapshotID})
	g.run()
	return nil
}

// requestRestore marks a snapshot to be restored at the next boundary of the
// resolution cycle. The snapshot and every newer one leave the list.
func (g *Game) requestRestore(snapshotID int) error {
	if !g.cfg.RollbackAllowed {
		return ErrRevertDisabled
	}
	if g.pendingRestore != nil {
		return nil
	}
	for i, s := range g.snapshots {
		if s.ID == snapshotID {
			g.pendingRestore = s
			g.snapshots = g.snapshots[:i]
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrSnapshotNotFound, snapshotID)
}

// applyRestore swaps in the pending snapshot. The snapshot keeps its own
// copies so it could be restored again.
func (g *Game) applyRestore() {
	s := g.pendingRestore
	g.pendingRestore = nil
	g.state = s.state.Copy()
	g.modifiers = s.modifiers.Copy()
	g.stack = s.stack.Copy()
	g.procedure = s.procedure.Copy()
	g.pendingResults = nil
	g.decisions = make(map[string][]*pendingDecision)
	g.state.SendMessage("Reverted to previous game state")
	g.logger.Info("snapshot restored",
		zap.Int("snapshot_id", s.ID),
		zap.String("description", s.Description),
		zap.String("checksum", s.Checksum),
	)
}
