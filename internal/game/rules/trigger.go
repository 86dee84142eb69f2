package rules

import (
	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Playable reports whether an action may be offered: its usage guards allow
// it and every payable cost can be paid.
func Playable(env Env, a *Action) bool {
	if !a.WithinLimits(env.State()) {
		return false
	}
	for _, cost := range a.Costs {
		if p, ok := cost.(Payable); ok && !p.CanPay(env, a) {
			return false
		}
	}
	return true
}

// callHook runs a card hook. A panicking hook produces no actions.
func callHook(env Env, hook ActionHook, ctx TriggerContext) (actions []*Action) {
	if hook == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			if logger := env.Logger(); logger != nil {
				logger.Warn("card hook panicked",
					zap.Int("card_id", ctx.Self.ID),
					zap.String("title", ctx.Self.Title),
					zap.Any("panic", r),
				)
			}
			actions = nil
		}
	}()
	return hook(ctx)
}

type hookSelector func(def *CardDefinition) ActionHook

func collect(env Env, cards []*state.PhysicalCard, selector hookSelector, ctx TriggerContext, kind ActionKind) []*Action {
	var out []*Action
	for _, card := range cards {
		def := definitionOf(env, card)
		if def == nil {
			continue
		}
		ctx.Self = card
		for _, a := range callHook(env, selector(def), ctx) {
			if a == nil {
				continue
			}
			a.Kind = kind
			a.Provoking = ctx.Results
			a.ProvokingEffect = ctx.Effect
			if ctx.Action != nil {
				a.ProvokingAction = ctx.Action.ID
			}
			out = append(out, a)
		}
	}
	return out
}

func ownedBy(cards []*state.PhysicalCard, playerID string) []*state.PhysicalCard {
	var out []*state.PhysicalCard
	for _, c := range cards {
		if c.Owner == playerID {
			out = append(out, c)
		}
	}
	return out
}

func filterPlayable(env Env, actions []*Action, requirePayable bool) []*Action {
	var out []*Action
	for _, a := range actions {
		if requirePayable && !Playable(env, a) {
			continue
		}
		if !requirePayable && !a.WithinLimits(env.State()) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// RequiredAfterTriggers collects the required triggers of every card in play
// responding to the results, in card id order.
func RequiredAfterTriggers(env Env, results []EffectResult) []*Action {
	ctx := TriggerContext{Env: env, Results: results}
	actions := collect(env, env.State().CardsInPlay(), func(d *CardDefinition) ActionHook {
		return d.RequiredAfterTriggers
	}, ctx, ActionKindRequiredTrigger)
	return filterPlayable(env, actions, false)
}

// OptionalAfterTriggers collects the optional triggers a player may take in
// response to the results, from cards in play and interrupts in hand.
func OptionalAfterTriggers(env Env, playerID string, results []EffectResult) []*Action {
	st := env.State()
	ctx := TriggerContext{Env: env, Player: playerID, Results: results}
	actions := collect(env, ownedBy(st.CardsInPlay(), playerID), func(d *CardDefinition) ActionHook {
		return d.OptionalAfterTriggers
	}, ctx, ActionKindOptionalTrigger)
	actions = append(actions, collect(env, st.HandCards(playerID), func(d *CardDefinition) ActionHook {
		return d.InHandOptionalAfterTriggers
	}, ctx, ActionKindOptionalTrigger)...)
	return filterPlayable(env, actions, true)
}

// RequiredBeforeTriggers collects the required triggers responding to an
// effect about to play.
func RequiredBeforeTriggers(env Env, performing *Action, effect Effect) []*Action {
	ctx := TriggerContext{Env: env, Effect: effect, Action: performing}
	actions := collect(env, env.State().CardsInPlay(), func(d *CardDefinition) ActionHook {
		return d.RequiredBeforeTriggers
	}, ctx, ActionKindRequiredTrigger)
	return filterPlayable(env, actions, false)
}

// OptionalBeforeTriggers collects the optional triggers a player may take
// before an effect plays.
func OptionalBeforeTriggers(env Env, playerID string, performing *Action, effect Effect) []*Action {
	ctx := TriggerContext{Env: env, Player: playerID, Effect: effect, Action: performing}
	actions := collect(env, ownedBy(env.State().CardsInPlay(), playerID), func(d *CardDefinition) ActionHook {
		return d.OptionalBeforeTriggers
	}, ctx, ActionKindOptionalTrigger)
	return filterPlayable(env, actions, true)
}

// PhaseActions collects the top level actions a player may take now: rule
// actions for the phase and card actions from play and hand.
func PhaseActions(env Env, playerID string) []*Action {
	st := env.State()
	ctx := TriggerContext{Env: env, Player: playerID}
	actions := RuleActions(env, playerID)
	actions = append(actions, collect(env, ownedBy(st.CardsInPlay(), playerID), func(d *CardDefinition) ActionHook {
		return d.TopLevelActions
	}, ctx, ActionKindTopLevel)...)
	actions = append(actions, collect(env, st.HandCards(playerID), func(d *CardDefinition) ActionHook {
		return d.TopLevelActions
	}, ctx, ActionKindTopLevel)...)
	return filterPlayable(env, actions, true)
}

// HasOptionalAfterTriggers reports whether any player could respond.
func HasOptionalAfterTriggers(env Env, results []EffectResult) bool {
	for _, p := range env.PriorityOrder() {
		if len(OptionalAfterTriggers(env, p, results)) > 0 {
			return true
		}
	}
	return false
}

// HasOptionalBeforeTriggers reports whether any player could respond.
func HasOptionalBeforeTriggers(env Env, performing *Action, effect Effect) bool {
	for _, p := range env.PriorityOrder() {
		if len(OptionalBeforeTriggers(env, p, performing, effect)) > 0 {
			return true
		}
	}
	return false
}
