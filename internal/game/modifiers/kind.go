package modifiers

import "fmt"

// Kind is the attribute a modifier affects.
type Kind int

const (
	KindPower Kind = 1 + iota
	KindDeployCost
	KindDeployCostSet
	KindForfeit
	KindDestiny
	KindLandspeed
	KindForceGeneration
	KindTotalPower
	KindForceDrain
	KindImmuneToAttrition
	KindPowerCap
	KindMayNotMove
	KindMayNotBattle
	KindSkipPhase
)

// Combine is the rule used to fold several modifiers of one kind.
type Combine int

const (
	CombineSum Combine = iota
	CombineOr
	CombineMax
	CombineMin
	CombineOverride
)

var kindNames = map[Kind]string{
	KindPower:             "POWER",
	KindDeployCost:        "DEPLOY_COST",
	KindDeployCostSet:     "DEPLOY_COST_SET",
	KindForfeit:           "FORFEIT",
	KindDestiny:           "DESTINY",
	KindLandspeed:         "LANDSPEED",
	KindForceGeneration:   "FORCE_GENERATION",
	KindTotalPower:        "TOTAL_POWER",
	KindForceDrain:        "FORCE_DRAIN",
	KindImmuneToAttrition: "IMMUNE_TO_ATTRITION",
	KindPowerCap:          "POWER_CAP",
	KindMayNotMove:        "MAY_NOT_MOVE",
	KindMayNotBattle:      "MAY_NOT_BATTLE",
	KindSkipPhase:         "SKIP_PHASE",
}

var kindCombine = map[Kind]Combine{
	KindMayNotMove:        CombineOr,
	KindMayNotBattle:      CombineOr,
	KindSkipPhase:         CombineOr,
	KindImmuneToAttrition: CombineMax,
	KindPowerCap:          CombineMin,
	KindDeployCostSet:     CombineOverride,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// Combine returns the folding rule for the kind. Kinds default to sum.
func (k Kind) Combine() Combine {
	if c, ok := kindCombine[k]; ok {
		return c
	}
	return CombineSum
}

// Duration is how long a modifier stays registered.
type Duration string

const (
	// DurationWhileInPlay lasts until the source card leaves play.
	DurationWhileInPlay Duration = "WhileInPlay"
	// DurationUntilEndOfTurn is removed during end of turn processing.
	DurationUntilEndOfTurn Duration = "UntilEndOfTurn"
	// DurationUntilEndOfPhase is removed at the end of the current phase.
	DurationUntilEndOfPhase Duration = "UntilEndOfPhase"
	// DurationUntilEndOfBattle is removed when the current battle ends.
	DurationUntilEndOfBattle Duration = "UntilEndOfBattle"
	// DurationUntilEndOfAction is removed when its owning action completes.
	DurationUntilEndOfAction Duration = "UntilEndOfAction"
)
