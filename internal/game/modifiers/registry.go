package modifiers

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Registry holds the live modifiers of one game and answers effective-value
// queries. Nothing is cached: every query re-runs filters, conditions and
// evaluators against the state it is given.
type Registry struct {
	mu        sync.RWMutex
	modifiers []*Modifier
	seq       int
	logger    *zap.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modifiers: make([]*Modifier, 0, 16),
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger that reports modifiers whose filter, condition or
// evaluator panicked. Copies inherit it.
func (r *Registry) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// warnPanic reports a recovered panic; the modifier then counts as not
// applying.
func (r *Registry) warnPanic(m *Modifier, stage string, p any) {
	if r == nil {
		return
	}
	r.mu.RLock()
	logger := r.logger
	r.mu.RUnlock()
	if logger == nil {
		return
	}
	logger.Warn("modifier "+stage+" panicked",
		zap.String("modifier_id", m.ID),
		zap.Int("source_id", m.SourceID),
		zap.Stringer("kind", m.Kind),
		zap.String("text", m.Text),
		zap.Any("panic", p),
	)
}

// Add registers a modifier and returns its identifier.
func (r *Registry) Add(m Modifier) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Duration == "" {
		m.Duration = DurationWhileInPlay
	}
	r.seq++
	m.seq = r.seq
	r.modifiers = append(r.modifiers, &m)
	return m.ID
}

// Remove deletes a modifier by ID.
func (r *Registry) Remove(id string) bool {
	return r.removeWhere(func(m *Modifier) bool { return m.ID == id }) > 0
}

// RemoveBySource removes the while-in-play modifiers of a card that left play.
func (r *Registry) RemoveBySource(sourceID int) int {
	return r.removeWhere(func(m *Modifier) bool {
		return m.SourceID == sourceID && m.Duration == DurationWhileInPlay
	})
}

// RemoveDuration removes every modifier with the given duration.
func (r *Registry) RemoveDuration(d Duration) int {
	return r.removeWhere(func(m *Modifier) bool { return m.Duration == d })
}

// RemoveOwnedBy removes the one-shot modifiers owned by an action.
func (r *Registry) RemoveOwnedBy(actionID string) int {
	if actionID == "" {
		return 0
	}
	return r.removeWhere(func(m *Modifier) bool { return m.OwnerAction == actionID })
}

func (r *Registry) removeWhere(pred func(*Modifier) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.modifiers[:0]
	removed := 0
	for _, m := range r.modifiers {
		if pred(m) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(r.modifiers); i++ {
		r.modifiers[i] = nil
	}
	r.modifiers = kept
	return removed
}

// Len returns the number of live modifiers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modifiers)
}

// List returns copies of the live modifiers in registration order.
func (r *Registry) List() []Modifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Modifier, len(r.modifiers))
	for i, m := range r.modifiers {
		out[i] = *m
	}
	return out
}

// Copy returns an independent registry with the same modifiers. Modifiers
// are immutable once registered, so they are shared.
func (r *Registry) Copy() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{
		modifiers: append(make([]*Modifier, 0, len(r.modifiers)), r.modifiers...),
		seq:       r.seq,
		logger:    r.logger,
	}
}

// candidates snapshots the modifiers of a kind so filters and evaluators run
// without holding the lock; they may query the registry themselves.
func (r *Registry) candidates(kind Kind) []*Modifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Modifier
	for _, m := range r.modifiers {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// query describes one effective-value lookup.
type query struct {
	kind     Kind
	card     *state.PhysicalCard
	playerID string
	location *state.PhysicalCard
}

func (r *Registry) applicable(st *state.GameState, q query) []*Modifier {
	var out []*Modifier
	for _, m := range r.candidates(q.kind) {
		if q.card != nil {
			if !m.matches(st, r, q.card) {
				continue
			}
			if q.playerID != "" && m.PlayerID != "" && m.PlayerID != q.playerID {
				continue
			}
		} else if m.Affects != nil || m.PlayerID != q.playerID {
			continue
		}
		if !m.inLocation(st, r, q.location) {
			continue
		}
		if !m.active(st, r) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *Registry) fold(st *state.GameState, q query) (float64, bool) {
	mods := r.applicable(st, q)
	if len(mods) == 0 {
		return 0, false
	}
	switch q.kind.Combine() {
	case CombineOr:
		return 1, true
	case CombineMax:
		best := math.Inf(-1)
		for _, m := range mods {
			best = math.Max(best, m.value(st, r, q.card))
		}
		return best, true
	case CombineMin:
		best := math.Inf(1)
		for _, m := range mods {
			best = math.Min(best, m.value(st, r, q.card))
		}
		return best, true
	case CombineOverride:
		return mods[len(mods)-1].value(st, r, q.card), true
	default:
		total := 0.0
		for _, m := range mods {
			total += m.value(st, r, q.card)
		}
		return total, true
	}
}

// Value folds the modifiers of a kind that affect the card. It returns 0
// when none apply.
func (r *Registry) Value(st *state.GameState, kind Kind, card *state.PhysicalCard) float64 {
	v, _ := r.fold(st, query{kind: kind, card: card})
	return v
}

// Flag reports whether any active modifier of the kind affects the card.
func (r *Registry) Flag(st *state.GameState, kind Kind, card *state.PhysicalCard) bool {
	_, ok := r.fold(st, query{kind: kind, card: card})
	return ok
}

// PlayerValue folds player level modifiers of a kind.
func (r *Registry) PlayerValue(st *state.GameState, kind Kind, playerID string) float64 {
	v, _ := r.fold(st, query{kind: kind, playerID: playerID})
	return v
}

// SkipsPhase reports whether the player's phase is skipped.
func (r *Registry) SkipsPhase(st *state.GameState, playerID string, phase state.Phase) bool {
	for _, m := range r.applicable(st, query{kind: KindSkipPhase, playerID: playerID}) {
		if m.Phase == phase {
			return true
		}
	}
	return false
}

// Power returns a card's effective power.
func (r *Registry) Power(st *state.GameState, card *state.PhysicalCard) float64 {
	power := card.Power + r.Value(st, KindPower, card)
	if limit, ok := r.fold(st, query{kind: KindPowerCap, card: card}); ok && power > limit {
		power = limit
	}
	return math.Max(power, 0)
}

// DeployCost returns the cost to deploy a card to a location. Cost-setting
// modifiers replace the printed cost before additive modifiers apply.
func (r *Registry) DeployCost(st *state.GameState, card *state.PhysicalCard, locationID int) float64 {
	loc := st.Cards[locationID]
	cost := card.DeployCost
	if set, ok := r.fold(st, query{kind: KindDeployCostSet, card: card, location: loc}); ok {
		cost = set
	}
	delta, _ := r.fold(st, query{kind: KindDeployCost, card: card, location: loc})
	return math.Max(cost+delta, 0)
}

// Destiny returns a card's effective destiny number.
func (r *Registry) Destiny(st *state.GameState, card *state.PhysicalCard) float64 {
	return card.Destiny + r.Value(st, KindDestiny, card)
}

// Forfeit returns a card's effective forfeit value.
func (r *Registry) Forfeit(st *state.GameState, card *state.PhysicalCard) float64 {
	return math.Max(card.Forfeit+r.Value(st, KindForfeit, card), 0)
}

// Landspeed returns a card's effective landspeed.
func (r *Registry) Landspeed(st *state.GameState, card *state.PhysicalCard) float64 {
	return math.Max(card.Landspeed+r.Value(st, KindLandspeed, card), 0)
}

// ImmuneToAttrition returns the attrition threshold a card is immune below.
func (r *Registry) ImmuneToAttrition(st *state.GameState, card *state.PhysicalCard) (float64, bool) {
	return r.fold(st, query{kind: KindImmuneToAttrition, card: card})
}

// TotalPower returns the player's total power at a location: the power of
// each of their cards there plus total power modifiers on the location.
func (r *Registry) TotalPower(st *state.GameState, locationID int, playerID string) float64 {
	total := 0.0
	for _, c := range st.CardsAtLocation(locationID) {
		if c.Owner != playerID || c.Aboard != 0 {
			continue
		}
		total += r.Power(st, c)
	}
	if loc, ok := st.Cards[locationID]; ok {
		v, _ := r.fold(st, query{kind: KindTotalPower, card: loc, playerID: playerID})
		total += v
	}
	return math.Max(total, 0)
}

// ForceDrainModifier returns the drain bonus for the player at a location.
func (r *Registry) ForceDrainModifier(st *state.GameState, locationID int, playerID string) float64 {
	loc, ok := st.Cards[locationID]
	if !ok {
		return 0
	}
	v, _ := r.fold(st, query{kind: KindForceDrain, card: loc, playerID: playerID})
	return v
}
