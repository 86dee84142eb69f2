package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// run is the resolution cycle. It dispatches queued results, steps the top
// action and advances the process chain until a decision is needed or the
// game ends, then sends the state to listeners.
func (g *Game) run() {
	reverted := false
	defer func() {
		if r := recover(); r != nil {
			g.abort(fmt.Errorf("panic during resolution: %v", r))
		}
		g.broadcast(reverted)
	}()

	for steps := 0; ; steps++ {
		if g.finished {
			return
		}
		if g.pendingRestore != nil {
			g.applyRestore()
			reverted = true
			continue
		}
		if g.hasOpenDecision() {
			return
		}
		if steps >= g.cfg.MaxStepsPerRun {
			g.abort(fmt.Errorf("resolution did not settle after %d steps", steps))
			return
		}
		if err := g.step(); err != nil {
			g.abort(err)
			return
		}
		g.checkLifeForceDepleted()
	}
}

func (g *Game) step() error {
	if len(g.pendingResults) > 0 {
		results := g.pendingResults
		g.pendingResults = nil
		g.dispatchAfter(results)
		return nil
	}
	if top, ok := g.stack.Peek(); ok {
		return g.stepAction(top)
	}
	return g.procedure.advance(g)
}

// dispatchAfter pushes the required triggers answering the results so the
// first one found resolves first, with a response window beneath them when
// any player could respond.
func (g *Game) dispatchAfter(results []rules.EffectResult) {
	required := rules.RequiredAfterTriggers(g.env, results)
	if rules.HasOptionalAfterTriggers(g.env, results) {
		g.env.Push(rules.NewAfterWindow(results))
	}
	for i := len(required) - 1; i >= 0; i-- {
		g.env.Push(required[i])
	}
}

// dispatchBefore runs the before hooks for an effect about to play. It
// reports whether anything was pushed above the performing action.
func (g *Game) dispatchBefore(performing *rules.Action, effect rules.Effect) bool {
	required := rules.RequiredBeforeTriggers(g.env, performing, effect)
	optional := rules.HasOptionalBeforeTriggers(g.env, performing, effect)
	if optional {
		g.env.Push(rules.NewBeforeWindow(performing, effect))
	}
	for i := len(required) - 1; i >= 0; i-- {
		g.env.Push(required[i])
	}
	return optional || len(required) > 0
}

func (g *Game) stepAction(a *rules.Action) error {
	switch a.Stage {
	case rules.StageInit:
		a.Stage, a.Cursor = rules.StageTargeting, 0
		g.logger.Debug("resolving action",
			zap.String("action", a.Text),
			zap.String("player_id", a.Performer),
		)
		return nil
	case rules.StageDone:
		g.removeAction(a)
		return nil
	}

	effect, ok := a.CurrentEffect()
	if !ok {
		a.Stage++
		a.Cursor = 0
		a.BeforeDone = false
		return nil
	}

	paying := a.Stage == rules.StageCosts
	if a.Kind != rules.ActionKindWindow && (paying || a.Stage == rules.StageResults) && !a.BeforeDone {
		a.BeforeDone = true
		if g.dispatchBefore(a, effect) {
			return nil
		}
	}
	if paying {
		if p, ok := effect.(rules.Payable); ok && !p.CanPay(g.env, a) {
			g.abandon(a, effect)
			return nil
		}
	}

	outcome, err := effect.Play(g.env, a)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.Text, effect.Text(), err)
	}
	switch outcome {
	case rules.OutcomeDone:
		a.Cursor++
		a.BeforeDone = false
	case rules.OutcomeFailed:
		if a.Stage == rules.StageResults {
			a.Cursor++
			a.BeforeDone = false
			return nil
		}
		g.abandon(a, effect)
	}
	return nil
}

// removeAction takes a finished action off the stack along with the one-shot
// modifiers it owns.
func (g *Game) removeAction(a *rules.Action) {
	g.stack.Remove(a.ID)
	g.modifiers.RemoveOwnedBy(a.ID)
	g.logger.Debug("action resolved",
		zap.String("action", a.Text),
		zap.Int("depth", g.stack.Depth()),
	)
}

// abandon withdraws an action whose targeting or cost failed. No result
// effect of it has played.
func (g *Game) abandon(a *rules.Action, effect rules.Effect) {
	g.stack.Remove(a.ID)
	g.modifiers.RemoveOwnedBy(a.ID)
	g.logger.Debug("action abandoned",
		zap.String("action", a.Text),
		zap.String("stage", a.Stage.String()),
		zap.String("effect", effect.Text()),
	)
}

// checkLifeForceDepleted ends the game when a player has no life force left,
// checking the current player first.
func (g *Game) checkLifeForceDepleted() {
	if g.finished {
		return
	}
	switch g.state.CurrentPhase {
	case state.PhaseNone, state.PhasePlayStartingCards, state.PhaseBetweenTurns:
		return
	}
	for _, p := range []string{g.state.CurrentPlayer, g.state.Opponent(g.state.CurrentPlayer)} {
		if g.state.LifeForce(p) == 0 {
			g.playerLost(p, "Life Force depleted")
			return
		}
	}
}
