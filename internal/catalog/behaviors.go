package catalog

import (
	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Blueprint ids of cards with scripted game text.
const (
	KeirSantage        = "9_19"
	BoShek             = "210_6"
	TheGrandInquisitor = "210_46"
	SteadyHand         = "hx_1"
)

// behaviors attaches game text to card definitions by blueprint id.
var behaviors = map[string]func(def *rules.CardDefinition){
	KeirSantage:        keirSantage,
	BoShek:             boShek,
	TheGrandInquisitor: grandInquisitor,
	SteadyHand:         steadyHand,
}

// keirSantage: Adds 2 to power of anything he pilots. Once during your
// deploy phase, if at a system, sector or docking bay, may subtract 2 from
// the deploy cost of your unique X-wing deploying here.
func keirSantage(def *rules.CardDefinition) {
	def.Modifiers = func(self *state.PhysicalCard) []modifiers.Modifier {
		return []modifiers.Modifier{modifiers.AddsPowerToPilotedBySelf(self, 2)}
	}
	def.OptionalBeforeTriggers = func(ctx rules.TriggerContext) []*rules.Action {
		self := ctx.Self
		if !rules.IsDuringYourPhase(ctx, state.PhaseDeploy) {
			return nil
		}
		st := ctx.State()
		here, ok := st.Cards[st.LocationOf(self.ID)]
		if !ok {
			return nil
		}
		switch here.LocationKind {
		case state.LocationSystem, state.LocationSector, state.LocationDockingBay:
		default:
			return nil
		}
		xwing := modifiers.And(
			modifiers.OwnedBy(self.Owner),
			modifiers.OfCategory(state.CategoryStarship),
			modifiers.HasType("X-wing"),
			modifiers.Unique,
		)
		cardID, locationID, ok := rules.IsPlayingCard(ctx, xwing, modifiers.Card(here.ID))
		if !ok {
			return nil
		}
		a := rules.NewCardAction(rules.ActionKindOptionalTrigger, self, "xwing-discount",
			"Subtract 2 from deploy cost of X-wing").Limit(state.UsagePerPhase, 1)
		a.AddResult(rules.AddModifier{
			Modifier: modifiers.DeployCostForAction(self, cardID, locationID, -2, ctx.Action.ID),
		})
		return []*rules.Action{a}
	}
}

// boShek: Adds 3 to power of anything he pilots and is immune to attrition
// < 3. While piloting, your total power here is +2. Once per battle, may use
// 1 Force to subtract 1 from opponent's just drawn battle destiny.
func boShek(def *rules.CardDefinition) {
	def.Modifiers = func(self *state.PhysicalCard) []modifiers.Modifier {
		selfID := self.ID
		total := modifiers.TotalPowerHere(self, self.Owner, 2)
		total.Condition = func(st *state.GameState, _ *modifiers.Registry) bool {
			c, ok := st.Cards[selfID]
			return ok && c.Zone == state.ZoneTable && c.Capacity == state.CapacityPilot
		}
		return []modifiers.Modifier{
			modifiers.AddsPowerToPilotedBySelf(self, 3),
			modifiers.ImmuneToAttritionLessThan(self, modifiers.Card(self.ID), 3),
			total,
		}
	}
	def.OptionalAfterTriggers = func(ctx rules.TriggerContext) []*rules.Action {
		self := ctx.Self
		opponent := rules.OpponentOf(ctx)
		if _, ok := rules.DestinyJustDrawnBy(ctx, opponent); !ok {
			return nil
		}
		if !rules.IsInBattleAt(ctx, self.ID) || !rules.CanUseForce(ctx.Env, self.Owner, 1) {
			return nil
		}
		a := rules.NewCardAction(rules.ActionKindOptionalTrigger, self, "destiny-minus",
			"Subtract 1 from opponent's destiny").Limit(state.UsagePerBattle, 1)
		a.AddCost(rules.UseForce{Player: self.Owner, Amount: 1})
		a.AddResult(rules.ModifyDestiny{Player: opponent, Amount: -1})
		return []*rules.Action{a}
	}
}

// grandInquisitor: Adds 2 to power of anything he pilots and is immune to
// attrition < 4. Whenever a Jedi or Padawan is lost from a site where you
// have an Inquisitor, opponent loses 1 Force.
func grandInquisitor(def *rules.CardDefinition) {
	def.Modifiers = func(self *state.PhysicalCard) []modifiers.Modifier {
		return []modifiers.Modifier{
			modifiers.AddsPowerToPilotedBySelf(self, 2),
			modifiers.ImmuneToAttritionLessThan(self, modifiers.Card(self.ID), 4),
		}
	}
	def.RequiredAfterTriggers = func(ctx rules.TriggerContext) []*rules.Action {
		self := ctx.Self
		st := ctx.State()
		lost := rules.JustLost(ctx, modifiers.And(
			modifiers.Not(modifiers.OwnedBy(self.Owner)),
			modifiers.Or(modifiers.HasKeyword("Jedi"), modifiers.HasKeyword("Padawan")),
		))
		var actions []*rules.Action
		for _, r := range lost {
			site, ok := st.Cards[r.LocationID]
			if !ok || site.LocationKind != state.LocationSite || !hasInquisitorAt(st, self.Owner, site.ID) {
				continue
			}
			a := rules.NewCardAction(rules.ActionKindRequiredTrigger, self, "jedi-lost",
				"Make opponent lose 1 Force")
			a.AddResult(rules.LoseForce{Player: rules.OpponentOf(ctx), Amount: 1, Reason: self.Title})
			actions = append(actions, a)
		}
		return actions
	}
}

func hasInquisitorAt(st *state.GameState, owner string, locationID int) bool {
	for _, c := range st.CardsAtLocation(locationID) {
		if c.Owner == owner && c.HasKeyword("Inquisitor") {
			return true
		}
	}
	return false
}

// steadyHand: Lost interrupt. If you just drew a battle destiny, add 2 to it.
func steadyHand(def *rules.CardDefinition) {
	def.InHandOptionalAfterTriggers = func(ctx rules.TriggerContext) []*rules.Action {
		self := ctx.Self
		if _, ok := rules.DestinyJustDrawnBy(ctx, self.Owner); !ok {
			return nil
		}
		a := rules.NewCardAction(rules.ActionKindOptionalTrigger, self, "destiny-plus",
			"Add 2 to your destiny")
		a.AddCost(rules.PlayInterrupt{CardID: self.ID, Lost: true})
		a.AddResult(rules.ModifyDestiny{Player: self.Owner, Amount: 2})
		return []*rules.Action{a}
	}
}
