package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/holotable/holotable-server-go/internal/game"
	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

//go:embed cards.yaml
var defaultCards []byte

// CardRecord is the printed data of one card blueprint.
type CardRecord struct {
	BlueprintID  string   `yaml:"blueprint_id"`
	Title        string   `yaml:"title"`
	Side         string   `yaml:"side"`
	Category     string   `yaml:"category"`
	Types        []string `yaml:"types,omitempty"`
	Icons        []string `yaml:"icons,omitempty"`
	Keywords     []string `yaml:"keywords,omitempty"`
	Unique       bool     `yaml:"unique,omitempty"`
	Destiny      float64  `yaml:"destiny,omitempty"`
	DeployCost   float64  `yaml:"deploy_cost,omitempty"`
	Power        float64  `yaml:"power,omitempty"`
	Ability      float64  `yaml:"ability,omitempty"`
	Forfeit      float64  `yaml:"forfeit,omitempty"`
	Landspeed    float64  `yaml:"landspeed,omitempty"`
	DarkIcons    int      `yaml:"dark_icons,omitempty"`
	LightIcons   int      `yaml:"light_icons,omitempty"`
	LocationKind string   `yaml:"location_kind,omitempty"`
	Lore         string   `yaml:"lore,omitempty"`
	GameText     string   `yaml:"game_text,omitempty"`
}

// DeckEntry is a blueprint and how many copies a deck holds.
type DeckEntry struct {
	BlueprintID string `yaml:"blueprint_id"`
	Count       int    `yaml:"count"`
}

// DeckRecord is a named deck list.
type DeckRecord struct {
	Side  string      `yaml:"side"`
	Cards []DeckEntry `yaml:"cards"`
}

// Catalog is a parsed card file.
type Catalog struct {
	Cards []CardRecord          `yaml:"cards"`
	Decks map[string]DeckRecord `yaml:"decks"`
}

// Parse reads a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in card set.
func Default() (*Catalog, error) {
	return Parse(defaultCards)
}

// Load reads the catalog at path, or the built-in set when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func parseSide(s string) (state.Side, error) {
	switch side := state.Side(strings.ToUpper(strings.TrimSpace(s))); side {
	case state.SideDark, state.SideLight:
		return side, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

func parseCategory(s string) (state.Category, error) {
	switch c := state.Category(strings.ToUpper(strings.TrimSpace(s))); c {
	case state.CategoryCharacter, state.CategoryStarship, state.CategoryVehicle,
		state.CategoryLocation, state.CategoryInterrupt, state.CategoryEffect,
		state.CategoryWeapon:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Definition converts the record into a card definition without behavior.
func (r CardRecord) Definition() (*rules.CardDefinition, error) {
	if r.BlueprintID == "" {
		return nil, fmt.Errorf("card %q has no blueprint id", r.Title)
	}
	side, err := parseSide(r.Side)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", r.BlueprintID, err)
	}
	category, err := parseCategory(r.Category)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", r.BlueprintID, err)
	}
	if category == state.CategoryLocation {
		switch r.LocationKind {
		case state.LocationSystem, state.LocationSector, state.LocationSite, state.LocationDockingBay:
		default:
			return nil, fmt.Errorf("card %s: unknown location kind %q", r.BlueprintID, r.LocationKind)
		}
	}
	return &rules.CardDefinition{
		BlueprintID:  r.BlueprintID,
		Title:        r.Title,
		Side:         side,
		Category:     category,
		Types:        r.Types,
		Icons:        r.Icons,
		Keywords:     r.Keywords,
		Unique:       r.Unique,
		Destiny:      r.Destiny,
		DeployCost:   r.DeployCost,
		Power:        r.Power,
		Ability:      r.Ability,
		Forfeit:      r.Forfeit,
		Landspeed:    r.Landspeed,
		DarkIcons:    r.DarkIcons,
		LightIcons:   r.LightIcons,
		LocationKind: r.LocationKind,
	}, nil
}

// Library builds the card library, attaching the game text of every card
// with scripted behavior.
func (c *Catalog) Library() (*rules.MapLibrary, error) {
	lib := rules.NewMapLibrary()
	for _, r := range c.Cards {
		def, err := r.Definition()
		if err != nil {
			return nil, err
		}
		if attach, ok := behaviors[def.BlueprintID]; ok {
			attach(def)
		}
		if err := lib.Register(def); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// DeckNames returns the names of the catalog's decks, sorted.
func (c *Catalog) DeckNames() []string {
	names := make([]string, 0, len(c.Decks))
	for name := range c.Decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deck expands a named deck list into the ordered deck the engine plays.
func (c *Catalog) Deck(name string) (game.Deck, error) {
	record, ok := c.Decks[name]
	if !ok {
		return game.Deck{}, fmt.Errorf("unknown deck %q", name)
	}
	side, err := parseSide(record.Side)
	if err != nil {
		return game.Deck{}, fmt.Errorf("deck %s: %w", name, err)
	}
	known := make(map[string]state.Side, len(c.Cards))
	for _, r := range c.Cards {
		known[r.BlueprintID], _ = parseSide(r.Side)
	}
	deck := game.Deck{Side: side}
	for _, entry := range record.Cards {
		cardSide, ok := known[entry.BlueprintID]
		if !ok {
			return game.Deck{}, fmt.Errorf("deck %s: unknown card %q", name, entry.BlueprintID)
		}
		if cardSide != side {
			return game.Deck{}, fmt.Errorf("deck %s: card %s is not %s", name, entry.BlueprintID, side)
		}
		if entry.Count < 1 {
			return game.Deck{}, fmt.Errorf("deck %s: card %s has count %d", name, entry.BlueprintID, entry.Count)
		}
		for i := 0; i < entry.Count; i++ {
			deck.Cards = append(deck.Cards, entry.BlueprintID)
		}
	}
	return deck, nil
}
