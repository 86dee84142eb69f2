package rules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// TriggerContext is passed to card hooks.
type TriggerContext struct {
	Env  Env
	Self *state.PhysicalCard
	// Player is the player being offered optional actions.
	Player string
	// Results holds the results that just happened (after hooks).
	Results []EffectResult
	// Effect is the effect about to play (before hooks), performed by Action.
	Effect Effect
	Action *Action
}

// State is a shortcut for the context's game state.
func (ctx TriggerContext) State() *state.GameState {
	return ctx.Env.State()
}

// ActionHook produces actions for a card.
type ActionHook func(ctx TriggerContext) []*Action

// ModifierHook produces the modifiers a card contributes while in play.
type ModifierHook func(self *state.PhysicalCard) []modifiers.Modifier

// CardDefinition is a card blueprint: printed data plus behavior hooks. Any
// hook may be nil.
type CardDefinition struct {
	BlueprintID  string
	Title        string
	Side         state.Side
	Category     state.Category
	Types        []string
	Icons        []string
	Keywords     []string
	Unique       bool
	Destiny      float64
	DeployCost   float64
	Power        float64
	Ability      float64
	Forfeit      float64
	Landspeed    float64
	DarkIcons    int
	LightIcons   int
	LocationKind string

	Modifiers                   ModifierHook
	RequiredBeforeTriggers      ActionHook
	OptionalBeforeTriggers      ActionHook
	RequiredAfterTriggers       ActionHook
	OptionalAfterTriggers       ActionHook
	InHandOptionalAfterTriggers ActionHook
	TopLevelActions             ActionHook
}

// NewCard creates a physical card for the blueprint.
func (d *CardDefinition) NewCard(owner string) *state.PhysicalCard {
	return &state.PhysicalCard{
		BlueprintID:  d.BlueprintID,
		Title:        d.Title,
		Owner:        owner,
		Side:         d.Side,
		Category:     d.Category,
		Types:        append([]string(nil), d.Types...),
		Icons:        append([]string(nil), d.Icons...),
		Keywords:     append([]string(nil), d.Keywords...),
		Unique:       d.Unique,
		Destiny:      d.Destiny,
		DeployCost:   d.DeployCost,
		Power:        d.Power,
		Ability:      d.Ability,
		Forfeit:      d.Forfeit,
		Landspeed:    d.Landspeed,
		DarkIcons:    d.DarkIcons,
		LightIcons:   d.LightIcons,
		LocationKind: d.LocationKind,
	}
}

// Library resolves blueprint ids to card definitions.
type Library interface {
	Definition(blueprintID string) (*CardDefinition, bool)
}

// MapLibrary is an in-memory Library.
type MapLibrary struct {
	mu   sync.RWMutex
	defs map[string]*CardDefinition
}

// NewMapLibrary creates a library holding the given definitions.
func NewMapLibrary(defs ...*CardDefinition) *MapLibrary {
	lib := &MapLibrary{defs: make(map[string]*CardDefinition, len(defs))}
	for _, d := range defs {
		lib.defs[d.BlueprintID] = d
	}
	return lib
}

// Register adds a definition. Registering a blueprint twice is an error.
func (l *MapLibrary) Register(def *CardDefinition) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if def.BlueprintID == "" {
		return fmt.Errorf("card definition %q has no blueprint id", def.Title)
	}
	if _, exists := l.defs[def.BlueprintID]; exists {
		return fmt.Errorf("blueprint %s already registered", def.BlueprintID)
	}
	l.defs[def.BlueprintID] = def
	return nil
}

// Definition implements Library.
func (l *MapLibrary) Definition(blueprintID string) (*CardDefinition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.defs[blueprintID]
	return d, ok
}

// BlueprintIDs returns every registered blueprint id, sorted.
func (l *MapLibrary) BlueprintIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.defs))
	for id := range l.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func definitionOf(env Env, card *state.PhysicalCard) *CardDefinition {
	if env.Library() == nil {
		return nil
	}
	def, ok := env.Library().Definition(card.BlueprintID)
	if !ok {
		return nil
	}
	return def
}
