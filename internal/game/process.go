package game

import (
	"fmt"

	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// InsertProcess queues a one-shot process to run before the turn procedure
// continues.
func (g *Game) InsertProcess(p Process) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.procedure.Insert(p)
}

// setupProcess lets one player, in play order, play their starting cards.
type setupProcess struct {
	Index int
}

func (p setupProcess) Name() string { return fmt.Sprintf("setup #%d", p.Index) }

func (p setupProcess) Process(g *Game) error {
	st := g.state
	st.CurrentPhase = state.PhasePlayStartingCards
	player := st.PlayerOrder[p.Index]
	g.env.Push(rules.StartingLocationAction(player, g.cfg.StartingHandSize))
	return nil
}

func (p setupProcess) Next(g *Game) Process {
	if p.Index+1 < len(g.state.PlayerOrder) {
		return setupProcess{Index: p.Index + 1}
	}
	return startOfTurnProcess{}
}

type startOfTurnProcess struct{}

func (startOfTurnProcess) Name() string { return "start of turn" }

func (startOfTurnProcess) Process(g *Game) error {
	st := g.state
	st.TurnNumber++
	st.LatestTurn[st.CurrentPlayer] = st.TurnNumber
	st.ForceActivated = 0
	st.SendMessage(fmt.Sprintf("Turn #%d: %s's turn", st.TurnNumber, st.CurrentPlayer))
	g.env.Emit(rules.NewResult(rules.ResultTurnStarted, st.CurrentPlayer))
	return nil
}

func (startOfTurnProcess) Next(g *Game) Process {
	if phase, ok := g.firstPhaseFrom(state.FirstPhase()); ok {
		return phaseProcess{Phase: phase}
	}
	return endOfTurnProcess{}
}

// phaseProcess begins a phase and snapshots the game at its start.
type phaseProcess struct {
	Phase state.Phase
}

func (p phaseProcess) Name() string { return "phase " + p.Phase.String() }

func (p phaseProcess) Process(g *Game) error {
	st := g.state
	st.CurrentPhase = p.Phase
	st.PhaseInstance++
	st.SendMessage(fmt.Sprintf("%s's %s phase", st.CurrentPlayer, p.Phase.HumanReadable()))
	g.takeSnapshot(fmt.Sprintf("Start of %s's %s phase #%d", st.CurrentPlayer, p.Phase.HumanReadable(), st.TurnNumber))
	return nil
}

func (p phaseProcess) Next(*Game) Process {
	return startOfPhaseProcess{Phase: p.Phase}
}

type startOfPhaseProcess struct {
	Phase state.Phase
}

func (p startOfPhaseProcess) Name() string { return "start of " + p.Phase.String() }

func (p startOfPhaseProcess) Process(g *Game) error {
	result := rules.NewAmountResult(rules.ResultPhaseStarted, g.state.CurrentPlayer, float64(p.Phase))
	g.env.Emit(result)
	return nil
}

func (p startOfPhaseProcess) Next(*Game) Process {
	return playersInOrderProcess{Phase: p.Phase}
}

// playersInOrderProcess opens a phase actions window for each player in
// turn, current player first.
type playersInOrderProcess struct {
	Phase state.Phase
	Index int
}

func (p playersInOrderProcess) Name() string {
	return fmt.Sprintf("%s actions #%d", p.Phase, p.Index)
}

func (p playersInOrderProcess) order(g *Game) []string {
	current := g.state.CurrentPlayer
	return []string{current, g.state.Opponent(current)}
}

func (p playersInOrderProcess) Process(g *Game) error {
	g.env.Push(rules.NewPhaseActionsWindow(p.order(g)[p.Index]))
	return nil
}

func (p playersInOrderProcess) Next(g *Game) Process {
	if p.Index+1 < len(p.order(g)) {
		return playersInOrderProcess{Phase: p.Phase, Index: p.Index + 1}
	}
	return endOfPhaseProcess{Phase: p.Phase}
}

type endOfPhaseProcess struct {
	Phase state.Phase
}

func (p endOfPhaseProcess) Name() string { return "end of " + p.Phase.String() }

func (p endOfPhaseProcess) Process(g *Game) error {
	g.modifiers.RemoveDuration(modifiers.DurationUntilEndOfPhase)
	g.env.Emit(rules.NewAmountResult(rules.ResultPhaseEnded, g.state.CurrentPlayer, float64(p.Phase)))
	return nil
}

func (p endOfPhaseProcess) Next(g *Game) Process {
	if next, ok := state.NextPhase(p.Phase); ok {
		if phase, ok := g.firstPhaseFrom(next); ok {
			return phaseProcess{Phase: phase}
		}
	}
	return endOfTurnProcess{}
}

// endOfTurnProcess expires turn scoped modifiers and recirculates the used
// pile under the reserve deck.
type endOfTurnProcess struct{}

func (endOfTurnProcess) Name() string { return "end of turn" }

func (endOfTurnProcess) Process(g *Game) error {
	st := g.state
	g.modifiers.RemoveDuration(modifiers.DurationUntilEndOfTurn)
	for _, p := range st.PlayerOrder {
		for _, id := range append([]int(nil), st.Players[p].UsedPile...) {
			if err := st.MoveToPile(id, state.ZoneReserveDeck, false); err != nil {
				return fmt.Errorf("recirculate used pile: %w", err)
			}
		}
	}
	st.ForceActivated = 0
	g.env.Emit(rules.NewResult(rules.ResultTurnEnded, st.CurrentPlayer))
	return nil
}

func (endOfTurnProcess) Next(*Game) Process {
	return betweenTurnsProcess{}
}

type betweenTurnsProcess struct{}

func (betweenTurnsProcess) Name() string { return "between turns" }

func (betweenTurnsProcess) Process(g *Game) error {
	st := g.state
	st.CurrentPhase = state.PhaseBetweenTurns
	st.CurrentPlayer = st.Opponent(st.CurrentPlayer)
	return nil
}

func (betweenTurnsProcess) Next(*Game) Process {
	return startOfTurnProcess{}
}

// firstPhaseFrom returns the first phase at or after from that the current
// player does not skip.
func (g *Game) firstPhaseFrom(from state.Phase) (state.Phase, bool) {
	phase := from
	for {
		if !g.modifiers.SkipsPhase(g.state, g.state.CurrentPlayer, phase) {
			return phase, true
		}
		next, ok := state.NextPhase(phase)
		if !ok {
			return state.PhaseNone, false
		}
		phase = next
	}
}
