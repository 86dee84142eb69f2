package state

import (
	"fmt"
	"strings"
)

// Side is the side of the Force a player or card belongs to.
type Side string

const (
	SideDark  Side = "DARK"
	SideLight Side = "LIGHT"
)

// Opposite returns the other side of the Force.
func (s Side) Opposite() Side {
	if s == SideDark {
		return SideLight
	}
	return SideDark
}

// Category is the card category printed on a card.
type Category string

const (
	CategoryCharacter Category = "CHARACTER"
	CategoryStarship  Category = "STARSHIP"
	CategoryVehicle   Category = "VEHICLE"
	CategoryLocation  Category = "LOCATION"
	CategoryInterrupt Category = "INTERRUPT"
	CategoryEffect    Category = "EFFECT"
	CategoryWeapon    Category = "WEAPON"
)

// Zone identifies where a card currently is.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneReserveDeck
	ZoneForcePile
	ZoneUsedPile
	ZoneLostPile
	ZoneHand
	ZoneOutOfPlay
	ZoneTable
)

var zoneNames = map[Zone]string{
	ZoneNone:        "NONE",
	ZoneReserveDeck: "RESERVE_DECK",
	ZoneForcePile:   "FORCE_PILE",
	ZoneUsedPile:    "USED_PILE",
	ZoneLostPile:    "LOST_PILE",
	ZoneHand:        "HAND",
	ZoneOutOfPlay:   "OUT_OF_PLAY",
	ZoneTable:       "TABLE",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// InPlay reports whether cards in the zone are in play.
func (z Zone) InPlay() bool {
	return z == ZoneTable
}

// IsPile reports whether the zone is one of a player's ordered piles.
func (z Zone) IsPile() bool {
	switch z {
	case ZoneReserveDeck, ZoneForcePile, ZoneUsedPile, ZoneLostPile, ZoneHand, ZoneOutOfPlay:
		return true
	}
	return false
}

// Capacity describes how a card is aboard another card.
type Capacity string

const (
	CapacityNone      Capacity = ""
	CapacityPilot     Capacity = "PILOT"
	CapacityPassenger Capacity = "PASSENGER"
)

// Location kinds.
const (
	LocationSystem     = "system"
	LocationSector     = "sector"
	LocationSite       = "site"
	LocationDockingBay = "docking bay"
)

// PhysicalCard is an instance of a card in a game. The printed attributes are
// base values; effective values are always computed through the modifier
// registry and never written back here.
type PhysicalCard struct {
	ID           int
	BlueprintID  string
	Title        string
	Owner        string
	Side         Side
	Category     Category
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

	Zone       Zone
	AtLocation int
	Aboard     int
	Capacity   Capacity
}

// HasType returns true if the card carries the provided type (case-insensitive).
func (c *PhysicalCard) HasType(typeName string) bool {
	return containsFold(c.Types, typeName)
}

// HasIcon returns true if the card carries the provided icon.
func (c *PhysicalCard) HasIcon(icon string) bool {
	return containsFold(c.Icons, icon)
}

// HasKeyword returns true if the card carries the provided keyword.
func (c *PhysicalCard) HasKeyword(keyword string) bool {
	return containsFold(c.Keywords, keyword)
}

// IsLocation reports whether the card is a location.
func (c *PhysicalCard) IsLocation() bool {
	return c.Category == CategoryLocation
}

// IconsFor returns the Force icons printed on a location for the given side.
func (c *PhysicalCard) IconsFor(side Side) int {
	if side == SideDark {
		return c.DarkIcons
	}
	return c.LightIcons
}

// Copy creates a deep copy of the card.
func (c *PhysicalCard) Copy() *PhysicalCard {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Types = append([]string(nil), c.Types...)
	cp.Icons = append([]string(nil), c.Icons...)
	cp.Keywords = append([]string(nil), c.Keywords...)
	return &cp
}

func containsFold(values []string, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	for _, v := range values {
		if strings.ToLower(strings.TrimSpace(v)) == want {
			return true
		}
	}
	return false
}
