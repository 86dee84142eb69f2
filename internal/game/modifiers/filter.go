package modifiers

import (
	"strings"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Any matches every card.
func Any(*state.GameState, *Registry, *state.PhysicalCard) bool { return true }

// Card matches exactly the card with the given id.
func Card(id int) Filter {
	return func(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		return c.ID == id
	}
}

// And matches cards accepted by every filter.
func And(filters ...Filter) Filter {
	return func(st *state.GameState, reg *Registry, c *state.PhysicalCard) bool {
		for _, f := range filters {
			if !f(st, reg, c) {
				return false
			}
		}
		return true
	}
}

// Or matches cards accepted by at least one filter.
func Or(filters ...Filter) Filter {
	return func(st *state.GameState, reg *Registry, c *state.PhysicalCard) bool {
		for _, f := range filters {
			if f(st, reg, c) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(f Filter) Filter {
	return func(st *state.GameState, reg *Registry, c *state.PhysicalCard) bool {
		return !f(st, reg, c)
	}
}

// OwnedBy matches cards owned by the player.
func OwnedBy(playerID string) Filter {
	return func(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		return c.Owner == playerID
	}
}

// OfCategory matches cards of any of the given categories.
func OfCategory(categories ...state.Category) Filter {
	return func(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		for _, cat := range categories {
			if c.Category == cat {
				return true
			}
		}
		return false
	}
}

// HasType matches cards carrying the type, e.g. "X-wing".
func HasType(typeName string) Filter {
	return func(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		return c.HasType(typeName)
	}
}

// HasIcon matches cards carrying the icon.
func HasIcon(icon string) Filter {
	return func(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		return c.HasIcon(icon)
	}
}

// HasKeyword matches cards carrying the keyword, e.g. "Jedi".
func HasKeyword(keyword string) Filter {
	return func(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		return c.HasKeyword(keyword)
	}
}

// Unique matches unique cards.
func Unique(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
	return c.Unique
}

// Title matches cards by title, ignoring case.
func Title(title string) Filter {
	return func(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		return strings.EqualFold(c.Title, title)
	}
}

// InPlay matches cards on the table.
func InPlay(_ *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
	return c.Zone.InPlay()
}

// AtLocation matches cards at the location, or the location itself.
func AtLocation(locationID int) Filter {
	return func(st *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		return locationID != 0 && st.LocationOf(c.ID) == locationID
	}
}

// AtSameLocationAs matches cards at the same location as the given card.
// The location resolves fresh on every query.
func AtSameLocationAs(cardID int) Filter {
	return func(st *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		loc := st.LocationOf(cardID)
		return loc != 0 && st.LocationOf(c.ID) == loc
	}
}

// PilotedBy matches starships and vehicles the given card is piloting.
func PilotedBy(pilotID int) Filter {
	return func(st *state.GameState, _ *Registry, c *state.PhysicalCard) bool {
		pilot, ok := st.Cards[pilotID]
		if !ok || pilot.Zone != state.ZoneTable {
			return false
		}
		return pilot.Capacity == state.CapacityPilot && pilot.Aboard == c.ID
	}
}
