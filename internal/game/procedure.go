package game

import (
	"go.uber.org/zap"
)

// Process is one step of the turn procedure. Process does the step's work;
// Next is asked only once everything the step started has resolved, so the
// chain follows the state as it is then.
type Process interface {
	Name() string
	Process(g *Game) error
	Next(g *Game) Process
}

// Procedure walks the process chain. Inserted processes run once, before
// the next process of the chain.
type Procedure struct {
	current  Process
	inserted []Process
}

// NewProcedure creates a procedure that starts with game setup.
func NewProcedure() *Procedure {
	return &Procedure{}
}

// Insert queues a one-shot process to run before the chain continues.
func (p *Procedure) Insert(proc Process) {
	p.inserted = append(p.inserted, proc)
}

// Current returns the process that ran last, or nil before the game started.
func (p *Procedure) Current() Process {
	return p.current
}

// Copy returns an independent procedure. Processes are values and shared.
func (p *Procedure) Copy() *Procedure {
	return &Procedure{
		current:  p.current,
		inserted: append([]Process(nil), p.inserted...),
	}
}

func (p *Procedure) advance(g *Game) error {
	if len(p.inserted) > 0 {
		proc := p.inserted[0]
		p.inserted = p.inserted[1:]
		g.logger.Debug("running inserted process", zap.String("process", proc.Name()))
		return proc.Process(g)
	}
	var next Process = setupProcess{}
	if p.current != nil {
		next = p.current.Next(g)
	}
	p.current = next
	g.logger.Debug("running process",
		zap.String("process", next.Name()),
		zap.Int("turn", g.state.TurnNumber),
	)
	return next.Process(g)
}
