package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Destination is where a card is deployed or moved to: a location, or a
// starship or vehicle when Capacity is set.
type Destination struct {
	CardID   int
	Capacity state.Capacity
}

func (d Destination) String() string {
	if d.Capacity == state.CapacityNone {
		return strconv.Itoa(d.CardID)
	}
	return fmt.Sprintf("%d/%s", d.CardID, d.Capacity)
}

// ParseDestination parses the output of Destination.String.
func ParseDestination(s string) (Destination, error) {
	idPart, capacity, _ := strings.Cut(s, "/")
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return Destination{}, fmt.Errorf("invalid destination %q: %w", s, err)
	}
	return Destination{CardID: id, Capacity: state.Capacity(capacity)}, nil
}

// DestinationOf returns the destination stored in an action slot.
func DestinationOf(a *Action, slot string) (Destination, bool) {
	values, ok := a.Answer(slot)
	if !ok || len(values) == 0 {
		return Destination{}, false
	}
	d, err := ParseDestination(values[0])
	if err != nil {
		return Destination{}, false
	}
	return d, true
}

// EnterPlay registers the modifiers a card contributes while in play.
func EnterPlay(env Env, card *state.PhysicalCard) {
	def := definitionOf(env, card)
	if def == nil || def.Modifiers == nil {
		return
	}
	for _, m := range def.Modifiers(card) {
		m.SourceID = card.ID
		if m.Duration == "" {
			m.Duration = modifiers.DurationWhileInPlay
		}
		env.Modifiers().Add(m)
	}
}

// LeavePlay moves a card on the table, and everything aboard it, to a pile
// and removes their while-in-play modifiers.
func LeavePlay(env Env, cardID int, zone state.Zone) error {
	st := env.State()
	card, err := st.Card(cardID)
	if err != nil {
		return err
	}
	if card.Zone != state.ZoneTable {
		return fmt.Errorf("card %d is not in play", cardID)
	}
	leaving := append([]*state.PhysicalCard{card}, st.CardsAboard(cardID)...)
	locations := make(map[int]int, len(leaving))
	for _, c := range leaving {
		locations[c.ID] = st.LocationOf(c.ID)
	}
	if err := st.MoveToPile(cardID, zone, true); err != nil {
		return err
	}
	for _, c := range leaving {
		env.Modifiers().RemoveBySource(c.ID)
		env.Emit(NewCardResult(ResultCardLeftPlay, c.Owner, c.ID, locations[c.ID]))
	}
	return nil
}

func cardTitle(st *state.GameState, id int) string {
	if c, ok := st.Cards[id]; ok {
		return c.Title
	}
	return fmt.Sprintf("card %d", id)
}

func moveTop(st *state.GameState, playerID string, from, to state.Zone, n int) (int, error) {
	moved := 0
	for moved < n {
		id, ok := st.TopOf(playerID, from)
		if !ok {
			break
		}
		if err := st.MoveToPile(id, to, true); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
