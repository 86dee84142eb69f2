package rules

import (
	"fmt"

	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Game text ids of rule actions, used for usage limits.
const (
	TextForceDrain = "rule:force-drain"
	TextBattle     = "rule:battle"
	TextMove       = "rule:move"
)

// Pilot is the icon that lets a character deploy aboard as a pilot.
const Pilot = "Pilot"

// RuleActions returns the actions the rules offer the player in the current
// phase. Only the current player has rule actions.
func RuleActions(env Env, playerID string) []*Action {
	st := env.State()
	if st.CurrentPlayer != playerID {
		return nil
	}
	switch st.CurrentPhase {
	case state.PhaseActivate:
		return activateActions(env, playerID)
	case state.PhaseControl:
		return forceDrainActions(env, playerID)
	case state.PhaseDeploy:
		return deployActions(env, playerID)
	case state.PhaseBattle:
		return battleActions(env, playerID)
	case state.PhaseMove:
		return moveActions(env, playerID)
	case state.PhaseDraw:
		return drawActions(env, playerID)
	}
	return nil
}

// ForceGeneration is the player's Force icons on the table plus generation
// modifiers.
func ForceGeneration(env Env, playerID string) int {
	st := env.State()
	side := st.SideOf(playerID)
	total := 0.0
	for _, id := range st.Locations {
		total += float64(st.Cards[id].IconsFor(side))
	}
	total += env.Modifiers().PlayerValue(st, modifiers.KindForceGeneration, playerID)
	if total < 0 {
		return 0
	}
	return int(total)
}

func activationLimit(env Env, playerID string) int {
	st := env.State()
	p, err := st.Player(playerID)
	if err != nil {
		return 0
	}
	return min(ForceGeneration(env, playerID)-st.ForceActivated, len(p.ReserveDeck))
}

func activateActions(env Env, playerID string) []*Action {
	if activationLimit(env, playerID) <= 0 {
		return nil
	}
	a := NewAction(ActionKindRule, playerID, "Activate Force")
	a.AddTargeting(ChooseAmount{
		Player: playerID,
		Slot:   "amount",
		Prompt: "Choose amount of Force to activate",
		Min:    1,
		Max: func(env Env, _ *Action) int {
			return activationLimit(env, playerID)
		},
	})
	a.AddResult(ActivateForce{Player: playerID, AmountSlot: "amount"})
	return []*Action{a}
}

func controls(st *state.GameState, playerID string, locationID int) bool {
	return hasPresence(st, playerID, locationID) && !hasPresence(st, st.Opponent(playerID), locationID)
}

func forceDrainActions(env Env, playerID string) []*Action {
	st := env.State()
	var actions []*Action
	for _, loc := range st.Locations {
		if !controls(st, playerID, loc) || DrainAmount(env, playerID, loc) <= 0 {
			continue
		}
		a := NewAction(ActionKindRule, playerID, fmt.Sprintf("Force drain at %s", cardTitle(st, loc)))
		a.SourceID = loc
		a.TextID = TextForceDrain
		a.Limit(state.UsagePerTurn, 1)
		a.AddResult(ForceDrain{Player: playerID, LocationID: loc})
		actions = append(actions, a)
	}
	return actions
}

func uniqueInPlay(st *state.GameState, card *state.PhysicalCard) bool {
	if !card.Unique && !card.IsLocation() {
		return false
	}
	for _, c := range st.CardsInPlay() {
		if c.Title == card.Title && (card.IsLocation() || c.Owner == card.Owner) {
			return true
		}
	}
	return false
}

func canDeployAt(card, loc *state.PhysicalCard) bool {
	switch card.Category {
	case state.CategoryCharacter, state.CategoryVehicle:
		return loc.LocationKind == state.LocationSite || loc.LocationKind == state.LocationDockingBay
	case state.CategoryStarship:
		return loc.LocationKind == state.LocationSystem || loc.LocationKind == state.LocationSector
	}
	return false
}

// DeployDestinations lists where the player can afford to deploy a card.
func DeployDestinations(env Env, playerID string, card *state.PhysicalCard) []Destination {
	st := env.State()
	reg := env.Modifiers()
	p, err := st.Player(playerID)
	if err != nil {
		return nil
	}
	force := float64(len(p.ForcePile))
	side := st.SideOf(playerID)
	var dests []Destination
	for _, id := range st.Locations {
		loc := st.Cards[id]
		if !canDeployAt(card, loc) {
			continue
		}
		if loc.IconsFor(side) == 0 && !hasPresence(st, playerID, id) {
			continue
		}
		if reg.DeployCost(st, card, id) <= force {
			dests = append(dests, Destination{CardID: id})
		}
	}
	if card.Category == state.CategoryCharacter && card.HasIcon(Pilot) {
		for _, carrier := range st.CardsInPlay() {
			if carrier.Owner != playerID || (carrier.Category != state.CategoryStarship && carrier.Category != state.CategoryVehicle) {
				continue
			}
			if reg.DeployCost(st, card, st.LocationOf(carrier.ID)) <= force {
				dests = append(dests, Destination{CardID: carrier.ID, Capacity: state.CapacityPilot})
			}
		}
	}
	return dests
}

func deployActions(env Env, playerID string) []*Action {
	st := env.State()
	var actions []*Action
	for _, card := range st.HandCards(playerID) {
		if uniqueInPlay(st, card) {
			continue
		}
		cardID := card.ID
		text := fmt.Sprintf("Deploy %s", card.Title)
		switch card.Category {
		case state.CategoryLocation:
			if env.Modifiers().DeployCost(st, card, 0) > float64(len(st.Players[playerID].ForcePile)) {
				continue
			}
			a := NewAction(ActionKindRule, playerID, text)
			a.SourceID = cardID
			a.AddCost(PlayingCard{CardID: cardID}, PayDeployCost{CardID: cardID})
			a.AddResult(DeployCard{CardID: cardID})
			actions = append(actions, a)
		case state.CategoryCharacter, state.CategoryStarship, state.CategoryVehicle:
			if len(DeployDestinations(env, playerID, card)) == 0 {
				continue
			}
			a := NewAction(ActionKindRule, playerID, text)
			a.SourceID = cardID
			a.AddTargeting(ChooseDestination{
				Player: playerID,
				CardID: cardID,
				Slot:   "destination",
				Options: func(env Env, _ *Action) []Destination {
					c, ok := env.State().Cards[cardID]
					if !ok || c.Zone != state.ZoneHand {
						return nil
					}
					return DeployDestinations(env, playerID, c)
				},
			})
			a.AddCost(
				PlayingCard{CardID: cardID, DestinationSlot: "destination"},
				PayDeployCost{CardID: cardID, DestinationSlot: "destination"},
			)
			a.AddResult(DeployCard{CardID: cardID, DestinationSlot: "destination"})
			actions = append(actions, a)
		}
	}
	return actions
}

func battleActions(env Env, playerID string) []*Action {
	st := env.State()
	if st.Battle != nil || !CanUseForce(env, playerID, 1) {
		return nil
	}
	opponent := st.Opponent(playerID)
	var actions []*Action
	for _, loc := range st.Locations {
		if !hasPresence(st, playerID, loc) || !hasPresence(st, opponent, loc) {
			continue
		}
		if env.Modifiers().Flag(st, modifiers.KindMayNotBattle, st.Cards[loc]) {
			continue
		}
		a := NewAction(ActionKindRule, playerID, fmt.Sprintf("Initiate battle at %s", cardTitle(st, loc)))
		a.SourceID = loc
		a.TextID = TextBattle
		a.Limit(state.UsagePerTurn, 1)
		a.AddCost(UseForce{Player: playerID, Amount: 1})
		a.AddResult(
			InitiateBattle{Player: playerID, LocationID: loc},
			DrawBattleDestiny{Player: playerID},
			DrawBattleDestiny{Player: opponent},
			ResolveBattle{},
			EndBattle{},
		)
		actions = append(actions, a)
	}
	return actions
}

func isSite(loc *state.PhysicalCard) bool {
	return loc.LocationKind == state.LocationSite || loc.LocationKind == state.LocationDockingBay
}

// MoveDestinations lists where a card in play may move: other sites within
// landspeed for characters and vehicles, other systems for starships.
func MoveDestinations(env Env, card *state.PhysicalCard) []Destination {
	st := env.State()
	if card.Zone != state.ZoneTable || card.AtLocation == 0 {
		return nil
	}
	if env.Modifiers().Flag(st, modifiers.KindMayNotMove, card) {
		return nil
	}
	from := st.Cards[card.AtLocation]
	var dests []Destination
	switch card.Category {
	case state.CategoryCharacter, state.CategoryVehicle:
		speed := int(env.Modifiers().Landspeed(st, card))
		if speed <= 0 || !isSite(from) {
			return nil
		}
		var sites []int
		fromIdx := -1
		for _, id := range st.Locations {
			if isSite(st.Cards[id]) {
				if id == from.ID {
					fromIdx = len(sites)
				}
				sites = append(sites, id)
			}
		}
		for i, id := range sites {
			distance := i - fromIdx
			if distance < 0 {
				distance = -distance
			}
			if distance > 0 && distance <= speed {
				dests = append(dests, Destination{CardID: id})
			}
		}
	case state.CategoryStarship:
		for _, id := range st.Locations {
			loc := st.Cards[id]
			if id != from.ID && canDeployAt(card, loc) {
				dests = append(dests, Destination{CardID: id})
			}
		}
	}
	return dests
}

func moveActions(env Env, playerID string) []*Action {
	st := env.State()
	if !CanUseForce(env, playerID, 1) {
		return nil
	}
	var actions []*Action
	for _, card := range st.CardsInPlay() {
		if card.Owner != playerID || card.IsLocation() || len(MoveDestinations(env, card)) == 0 {
			continue
		}
		cardID := card.ID
		a := NewAction(ActionKindRule, playerID, fmt.Sprintf("Move %s", card.Title))
		a.SourceID = cardID
		a.TextID = TextMove
		a.Limit(state.UsagePerTurn, 1)
		a.AddTargeting(ChooseDestination{
			Player: playerID,
			CardID: cardID,
			Slot:   "destination",
			Options: func(env Env, _ *Action) []Destination {
				c, ok := env.State().Cards[cardID]
				if !ok {
					return nil
				}
				return MoveDestinations(env, c)
			},
		})
		a.AddCost(UseForce{Player: playerID, Amount: 1})
		a.AddResult(MoveCard{CardID: cardID, DestinationSlot: "destination"})
		actions = append(actions, a)
	}
	return actions
}

func drawActions(env Env, playerID string) []*Action {
	if !CanUseForce(env, playerID, 1) {
		return nil
	}
	a := NewAction(ActionKindRule, playerID, "Draw card into hand from Force pile")
	a.AddResult(DrawCard{Player: playerID})
	return []*Action{a}
}
