package state

// UsageScope is the window in which a usage limit applies.
type UsageScope string

const (
	UsagePerTurn   UsageScope = "TURN"
	UsagePerPhase  UsageScope = "PHASE"
	UsagePerBattle UsageScope = "BATTLE"
	UsagePerGame   UsageScope = "GAME"
)

// UsageKey identifies one usage-limited game text.
type UsageKey struct {
	SourceID int
	TextID   string
	Scope    UsageScope
	PlayerID string
}

// UsageMark records how often a game text was used within the window
// identified by Stamp.
type UsageMark struct {
	Stamp int
	Count int
}

func (s *GameState) usageStamp(scope UsageScope) int {
	switch scope {
	case UsagePerTurn:
		return s.TurnNumber
	case UsagePerPhase:
		return s.PhaseInstance
	case UsagePerBattle:
		if s.Battle != nil {
			return s.Battle.ID
		}
		return 0
	}
	return 0
}

// UsageCount returns how often the game text was used in its current window.
func (s *GameState) UsageCount(key UsageKey) int {
	mark, ok := s.Usage[key]
	if !ok || mark.Stamp != s.usageStamp(key.Scope) {
		return 0
	}
	return mark.Count
}

// CanUse reports whether the game text is below its limit.
func (s *GameState) CanUse(key UsageKey, limit int) bool {
	return s.UsageCount(key) < limit
}

// RecordUsage increments the usage count for the current window.
func (s *GameState) RecordUsage(key UsageKey) {
	stamp := s.usageStamp(key.Scope)
	mark := s.Usage[key]
	if mark.Stamp != stamp {
		mark = UsageMark{Stamp: stamp}
	}
	mark.Count++
	s.Usage[key] = mark
}
