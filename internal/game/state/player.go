package state

// Player holds a player's side and ordered piles. The top of every pile is
// index 0.
type Player struct {
	ID          string
	Side        Side
	ReserveDeck []int
	ForcePile   []int
	UsedPile    []int
	LostPile    []int
	Hand        []int
	OutOfPlay   []int
}

// Pile returns a pointer to the slice backing the given zone, or nil when
// the zone is not a player pile.
func (p *Player) Pile(zone Zone) *[]int {
	switch zone {
	case ZoneReserveDeck:
		return &p.ReserveDeck
	case ZoneForcePile:
		return &p.ForcePile
	case ZoneUsedPile:
		return &p.UsedPile
	case ZoneLostPile:
		return &p.LostPile
	case ZoneHand:
		return &p.Hand
	case ZoneOutOfPlay:
		return &p.OutOfPlay
	}
	return nil
}

// LifeForce is the number of cards in reserve deck, force pile and used pile.
func (p *Player) LifeForce() int {
	return len(p.ReserveDeck) + len(p.ForcePile) + len(p.UsedPile)
}

// Copy returns a deep copy of the player.
func (p *Player) Copy() *Player {
	return &Player{
		ID:          p.ID,
		Side:        p.Side,
		ReserveDeck: append([]int(nil), p.ReserveDeck...),
		ForcePile:   append([]int(nil), p.ForcePile...),
		UsedPile:    append([]int(nil), p.UsedPile...),
		LostPile:    append([]int(nil), p.LostPile...),
		Hand:        append([]int(nil), p.Hand...),
		OutOfPlay:   append([]int(nil), p.OutOfPlay...),
	}
}

func removeID(ids []int, id int) ([]int, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}
