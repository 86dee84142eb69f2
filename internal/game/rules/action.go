package rules

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// ActionKind describes where an action came from.
type ActionKind string

const (
	// ActionKindRule is an action offered by the game rules.
	ActionKindRule ActionKind = "RULE"
	// ActionKindTopLevel is a card action taken during a phase.
	ActionKindTopLevel ActionKind = "TOP_LEVEL"
	// ActionKindRequiredTrigger is a trigger that must resolve.
	ActionKindRequiredTrigger ActionKind = "REQUIRED_TRIGGER"
	// ActionKindOptionalTrigger is a trigger a player chose to take.
	ActionKindOptionalTrigger ActionKind = "OPTIONAL_TRIGGER"
	// ActionKindWindow asks players to act or pass.
	ActionKindWindow ActionKind = "WINDOW"
	// ActionKindSystem is game setup and bookkeeping.
	ActionKindSystem ActionKind = "SYSTEM"
)

// Stage is the part of an action currently resolving.
type Stage int

const (
	StageInit Stage = iota
	StageTargeting
	StageCosts
	StageResults
	StageDone
)

var stageNames = map[Stage]string{
	StageInit:      "init",
	StageTargeting: "targeting",
	StageCosts:     "costs",
	StageResults:   "results",
	StageDone:      "done",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage_%d", int(s))
}

// UsageGuard limits how often an action's game text may be used.
type UsageGuard struct {
	Scope state.UsageScope
	Limit int
}

// Action is an ordered bundle of targeting, cost and result effects plus the
// continuation record that lets it resume after a decision.
type Action struct {
	ID        string
	Kind      ActionKind
	SourceID  int
	TextID    string
	Performer string
	Text      string
	Usage     []UsageGuard
	Targeting []Effect
	Costs     []Effect
	Results   []Effect

	Stage      Stage
	Cursor     int
	BeforeDone bool
	Recorded   bool
	Memory     map[string][]string

	Provoking       []EffectResult
	ProvokingEffect Effect
	ProvokingAction string
}

// NewAction creates an action performed by a player.
func NewAction(kind ActionKind, performer, text string) *Action {
	return &Action{
		ID:        uuid.NewString(),
		Kind:      kind,
		Performer: performer,
		Text:      text,
		Memory:    make(map[string][]string),
	}
}

// NewCardAction creates an action from a card's game text. The text id keys
// usage limits together with the source card.
func NewCardAction(kind ActionKind, source *state.PhysicalCard, textID, text string) *Action {
	a := NewAction(kind, source.Owner, text)
	a.SourceID = source.ID
	a.TextID = textID
	return a
}

// Limit adds a usage guard.
func (a *Action) Limit(scope state.UsageScope, limit int) *Action {
	a.Usage = append(a.Usage, UsageGuard{Scope: scope, Limit: limit})
	return a
}

// AddTargeting appends targeting effects.
func (a *Action) AddTargeting(effects ...Effect) *Action {
	a.Targeting = append(a.Targeting, effects...)
	return a
}

// AddCost appends cost effects.
func (a *Action) AddCost(effects ...Effect) *Action {
	a.Costs = append(a.Costs, effects...)
	return a
}

// AddResult appends result effects.
func (a *Action) AddResult(effects ...Effect) *Action {
	a.Results = append(a.Results, effects...)
	return a
}

// UsageKeys returns the ledger keys of the action's usage guards.
func (a *Action) UsageKeys() []state.UsageKey {
	keys := make([]state.UsageKey, len(a.Usage))
	for i, guard := range a.Usage {
		keys[i] = state.UsageKey{
			SourceID: a.SourceID,
			TextID:   a.TextID,
			Scope:    guard.Scope,
			PlayerID: a.Performer,
		}
	}
	return keys
}

// WithinLimits reports whether every usage guard still allows the action.
func (a *Action) WithinLimits(st *state.GameState) bool {
	for i, key := range a.UsageKeys() {
		if !st.CanUse(key, a.Usage[i].Limit) {
			return false
		}
	}
	return true
}

// RecordUsage charges the action's usage guards once.
func (a *Action) RecordUsage(st *state.GameState) {
	if a.Recorded {
		return
	}
	for _, key := range a.UsageKeys() {
		st.RecordUsage(key)
	}
	a.Recorded = true
}

// CurrentEffect returns the effect at the cursor of the current stage.
func (a *Action) CurrentEffect() (Effect, bool) {
	var effects []Effect
	switch a.Stage {
	case StageTargeting:
		effects = a.Targeting
	case StageCosts:
		effects = a.Costs
	case StageResults:
		effects = a.Results
	default:
		return nil, false
	}
	if a.Cursor >= len(effects) {
		return nil, false
	}
	return effects[a.Cursor], true
}

// Slot scopes a memory key to the effect at the cursor.
func (a *Action) Slot(name string) string {
	return fmt.Sprintf("%s/%d/%s", a.Stage, a.Cursor, name)
}

// Answer returns the values stored under key.
func (a *Action) Answer(key string) ([]string, bool) {
	v, ok := a.Memory[key]
	return v, ok
}

// Remember stores values under key.
func (a *Action) Remember(key string, values ...string) {
	if a.Memory == nil {
		a.Memory = make(map[string][]string)
	}
	a.Memory[key] = append([]string(nil), values...)
}

// Forget deletes key.
func (a *Action) Forget(key string) {
	delete(a.Memory, key)
}

// Int returns the integer stored under key, or 0.
func (a *Action) Int(key string) int {
	v, ok := a.Memory[key]
	if !ok || len(v) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(v[0])
	return n
}

// SetInt stores an integer under key.
func (a *Action) SetInt(key string, n int) {
	a.Remember(key, strconv.Itoa(n))
}

// CardIDs returns the card ids stored under a slot.
func (a *Action) CardIDs(slot string) []int {
	var ids []int
	for _, v := range a.Memory[slot] {
		if id, err := strconv.Atoi(v); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// CardID returns the first card id stored under a slot.
func (a *Action) CardID(slot string) (int, bool) {
	ids := a.CardIDs(slot)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// Copy returns a deep copy of the action. Effects are immutable and shared.
func (a *Action) Copy() *Action {
	cp := *a
	cp.Usage = append([]UsageGuard(nil), a.Usage...)
	cp.Targeting = append([]Effect(nil), a.Targeting...)
	cp.Costs = append([]Effect(nil), a.Costs...)
	cp.Results = append([]Effect(nil), a.Results...)
	cp.Provoking = append([]EffectResult(nil), a.Provoking...)
	cp.Memory = make(map[string][]string, len(a.Memory))
	for k, v := range a.Memory {
		cp.Memory[k] = append([]string(nil), v...)
	}
	return &cp
}
