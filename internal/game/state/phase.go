package state

import (
	"fmt"
	"strings"
)

// Phase represents the phases of a Star Wars CCG turn.
type Phase int

const (
	PhaseNone Phase = iota
	PhasePlayStartingCards
	PhaseActivate
	PhaseControl
	PhaseDeploy
	PhaseBattle
	PhaseMove
	PhaseDraw
	PhaseBetweenTurns
)

var phaseNames = map[Phase]string{
	PhaseNone:              "NONE",
	PhasePlayStartingCards: "PLAY_STARTING_CARDS",
	PhaseActivate:          "ACTIVATE",
	PhaseControl:           "CONTROL",
	PhaseDeploy:            "DEPLOY",
	PhaseBattle:            "BATTLE",
	PhaseMove:              "MOVE",
	PhaseDraw:              "DRAW",
	PhaseBetweenTurns:      "BETWEEN_TURNS",
}

var phaseHumanNames = map[Phase]string{
	PhasePlayStartingCards: "Play starting cards",
	PhaseActivate:          "Activate",
	PhaseControl:           "Control",
	PhaseDeploy:            "Deploy",
	PhaseBattle:            "Battle",
	PhaseMove:              "Move",
	PhaseDraw:              "Draw",
	PhaseBetweenTurns:      "Between turns",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// HumanReadable returns the phase name as shown to players.
func (p Phase) HumanReadable() string {
	if name, ok := phaseHumanNames[p]; ok {
		return name
	}
	return p.String()
}

// ParsePhase accepts a phase by its name or human readable name, ignoring
// case.
func ParsePhase(name string) (Phase, error) {
	for p, n := range phaseNames {
		if p == PhaseNone {
			continue
		}
		if strings.EqualFold(n, name) || strings.EqualFold(phaseHumanNames[p], name) {
			return p, nil
		}
	}
	return PhaseNone, fmt.Errorf("unknown phase %q", name)
}

// turnSequence is the canonical order of phases within a player's turn.
var turnSequence = []Phase{
	PhaseActivate,
	PhaseControl,
	PhaseDeploy,
	PhaseBattle,
	PhaseMove,
	PhaseDraw,
}

// TurnSequence returns a copy of the canonical phase order.
func TurnSequence() []Phase {
	seq := make([]Phase, len(turnSequence))
	copy(seq, turnSequence)
	return seq
}

// FirstPhase is the first phase of every turn.
func FirstPhase() Phase {
	return turnSequence[0]
}

// NextPhase returns the phase following p within a turn. The boolean is false
// when p is the last phase of the turn (or not part of the turn sequence).
func NextPhase(p Phase) (Phase, bool) {
	for i, phase := range turnSequence {
		if phase == p {
			if i+1 < len(turnSequence) {
				return turnSequence[i+1], true
			}
			return PhaseNone, false
		}
	}
	return PhaseNone, false
}
