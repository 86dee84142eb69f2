package state

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

var (
	// ErrCardNotFound is returned when a card id is unknown.
	ErrCardNotFound = errors.New("card not found")
	// ErrPlayerNotFound is returned when a player id is unknown.
	ErrPlayerNotFound = errors.New("player not found")
)

// Battle records the battle currently being resolved.
type Battle struct {
	ID         int
	LocationID int
	Initiator  string
	Destinies  map[string][]float64
}

// Copy returns a deep copy of the battle.
func (b *Battle) Copy() *Battle {
	if b == nil {
		return nil
	}
	cp := &Battle{
		ID:         b.ID,
		LocationID: b.LocationID,
		Initiator:  b.Initiator,
		Destinies:  make(map[string][]float64, len(b.Destinies)),
	}
	for player, values := range b.Destinies {
		cp.Destinies[player] = append([]float64(nil), values...)
	}
	return cp
}

// GameState is the authoritative record of one game. It is owned by a
// single game and is replaced wholesale when a snapshot is restored.
type GameState struct {
	Players        map[string]*Player
	PlayerOrder    []string
	Cards          map[int]*PhysicalCard
	Locations      []int
	CurrentPhase   Phase
	CurrentPlayer  string
	TurnNumber     int
	LatestTurn     map[string]int
	PhaseInstance  int
	Battle         *Battle
	BattleCount    int
	Usage          map[UsageKey]UsageMark
	ForceActivated int
	Messages       []string
	NextCardID     int

	rng *rand.PCG
}

// NewGameState creates an empty game for a dark side and a light side
// player. The dark side player comes first in play order.
func NewGameState(darkPlayer, lightPlayer string, seed uint64) *GameState {
	return &GameState{
		Players: map[string]*Player{
			darkPlayer:  {ID: darkPlayer, Side: SideDark},
			lightPlayer: {ID: lightPlayer, Side: SideLight},
		},
		PlayerOrder:   []string{darkPlayer, lightPlayer},
		Cards:         make(map[int]*PhysicalCard),
		CurrentPhase:  PhaseNone,
		CurrentPlayer: darkPlayer,
		LatestTurn:    make(map[string]int),
		Usage:         make(map[UsageKey]UsageMark),
		NextCardID:    1,
		rng:           rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

// Player returns the player with the given id.
func (s *GameState) Player(id string) (*Player, error) {
	p, ok := s.Players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return p, nil
}

// Opponent returns the other player's id.
func (s *GameState) Opponent(id string) string {
	for _, p := range s.PlayerOrder {
		if p != id {
			return p
		}
	}
	return ""
}

// PlayerForSide returns the id of the player on the given side.
func (s *GameState) PlayerForSide(side Side) string {
	for _, id := range s.PlayerOrder {
		if s.Players[id].Side == side {
			return id
		}
	}
	return ""
}

// SideOf returns the side of the given player.
func (s *GameState) SideOf(id string) Side {
	if p, ok := s.Players[id]; ok {
		return p.Side
	}
	return ""
}

// PlayersLatestTurnNumber returns the turn number of the player's most
// recent turn, or 0 when they have not had a turn yet.
func (s *GameState) PlayersLatestTurnNumber(id string) int {
	return s.LatestTurn[id]
}

// Card returns the card with the given permanent id.
func (s *GameState) Card(id int) (*PhysicalCard, error) {
	c, ok := s.Cards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCardNotFound, id)
	}
	return c, nil
}

// AddCard assigns a permanent id to the card and places it at the bottom of
// the owner's pile for the given zone.
func (s *GameState) AddCard(card *PhysicalCard, zone Zone) (int, error) {
	owner, err := s.Player(card.Owner)
	if err != nil {
		return 0, err
	}
	pile := owner.Pile(zone)
	if pile == nil {
		return 0, fmt.Errorf("cannot add card to zone %s", zone)
	}
	card.ID = s.NextCardID
	s.NextCardID++
	card.Zone = zone
	card.Side = owner.Side
	s.Cards[card.ID] = card
	*pile = append(*pile, card.ID)
	return card.ID, nil
}

// detach removes a card from wherever it currently is.
func (s *GameState) detach(card *PhysicalCard) {
	switch {
	case card.Zone.IsPile():
		if owner, ok := s.Players[card.Owner]; ok {
			pile := owner.Pile(card.Zone)
			*pile, _ = removeID(*pile, card.ID)
		}
	case card.Zone == ZoneTable && card.IsLocation():
		s.Locations, _ = removeID(s.Locations, card.ID)
	}
	card.AtLocation = 0
	card.Aboard = 0
	card.Capacity = CapacityNone
	card.Zone = ZoneNone
}

// MoveToPile moves a card to the top (or bottom) of its owner's pile.
// Cards aboard the card are moved to the owner's lost pile along with it
// when it leaves the table.
func (s *GameState) MoveToPile(id int, zone Zone, top bool) error {
	card, err := s.Card(id)
	if err != nil {
		return err
	}
	owner, err := s.Player(card.Owner)
	if err != nil {
		return err
	}
	pile := owner.Pile(zone)
	if pile == nil {
		return fmt.Errorf("zone %s is not a pile", zone)
	}
	leavingTable := card.Zone == ZoneTable
	s.detach(card)
	card.Zone = zone
	if top {
		*pile = append([]int{id}, *pile...)
	} else {
		*pile = append(*pile, id)
	}
	if leavingTable {
		for _, aboard := range s.CardsAboard(id) {
			if err := s.MoveToPile(aboard.ID, ZoneLostPile, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// PlaceLocation puts a location card on the table.
func (s *GameState) PlaceLocation(id int) error {
	card, err := s.Card(id)
	if err != nil {
		return err
	}
	if !card.IsLocation() {
		return fmt.Errorf("card %d is not a location", id)
	}
	s.detach(card)
	card.Zone = ZoneTable
	s.Locations = append(s.Locations, id)
	return nil
}

// PutAtLocation places a card directly at a location on the table.
func (s *GameState) PutAtLocation(id, locationID int) error {
	card, err := s.Card(id)
	if err != nil {
		return err
	}
	if !s.IsLocationOnTable(locationID) {
		return fmt.Errorf("location %d is not on the table", locationID)
	}
	s.detach(card)
	card.Zone = ZoneTable
	card.AtLocation = locationID
	return nil
}

// PutAboard places a card aboard a starship or vehicle on the table.
func (s *GameState) PutAboard(id, carrierID int, capacity Capacity) error {
	card, err := s.Card(id)
	if err != nil {
		return err
	}
	carrier, err := s.Card(carrierID)
	if err != nil {
		return err
	}
	if carrier.Zone != ZoneTable {
		return fmt.Errorf("card %d is not on the table", carrierID)
	}
	s.detach(card)
	card.Zone = ZoneTable
	card.Aboard = carrierID
	card.Capacity = capacity
	return nil
}

// IsLocationOnTable reports whether the id is a location on the table.
func (s *GameState) IsLocationOnTable(id int) bool {
	for _, loc := range s.Locations {
		if loc == id {
			return true
		}
	}
	return false
}

// LocationOf returns the location a card on the table is at, following
// the aboard relation. It returns 0 when the card is not at a location.
func (s *GameState) LocationOf(id int) int {
	card, ok := s.Cards[id]
	for depth := 0; ok && depth < 8; depth++ {
		if card.Zone != ZoneTable {
			return 0
		}
		if card.IsLocation() {
			return card.ID
		}
		if card.AtLocation != 0 {
			return card.AtLocation
		}
		card, ok = s.Cards[card.Aboard]
	}
	return 0
}

// CardsInPlay returns every card on the table ordered by id.
func (s *GameState) CardsInPlay() []*PhysicalCard {
	cards := make([]*PhysicalCard, 0, len(s.Cards))
	for _, c := range s.Cards {
		if c.Zone == ZoneTable {
			cards = append(cards, c)
		}
	}
	sortByID(cards)
	return cards
}

// CardsAtLocation returns the non-location cards at a location, including
// cards aboard starships and vehicles there, ordered by id.
func (s *GameState) CardsAtLocation(locationID int) []*PhysicalCard {
	var cards []*PhysicalCard
	for _, c := range s.Cards {
		if c.Zone != ZoneTable || c.IsLocation() {
			continue
		}
		if s.LocationOf(c.ID) == locationID {
			cards = append(cards, c)
		}
	}
	sortByID(cards)
	return cards
}

// CardsAboard returns the cards aboard the given carrier ordered by id.
func (s *GameState) CardsAboard(carrierID int) []*PhysicalCard {
	var cards []*PhysicalCard
	for _, c := range s.Cards {
		if c.Zone == ZoneTable && c.Aboard == carrierID {
			cards = append(cards, c)
		}
	}
	sortByID(cards)
	return cards
}

// PilotsOf returns the cards piloting the given carrier.
func (s *GameState) PilotsOf(carrierID int) []*PhysicalCard {
	var pilots []*PhysicalCard
	for _, c := range s.CardsAboard(carrierID) {
		if c.Capacity == CapacityPilot {
			pilots = append(pilots, c)
		}
	}
	return pilots
}

// HandCards returns the cards in a player's hand in pile order.
func (s *GameState) HandCards(playerID string) []*PhysicalCard {
	return s.PileCards(playerID, ZoneHand)
}

// PileCards returns the cards in the given pile, top first.
func (s *GameState) PileCards(playerID string, zone Zone) []*PhysicalCard {
	p, ok := s.Players[playerID]
	if !ok {
		return nil
	}
	pile := p.Pile(zone)
	if pile == nil {
		return nil
	}
	cards := make([]*PhysicalCard, 0, len(*pile))
	for _, id := range *pile {
		if c, ok := s.Cards[id]; ok {
			cards = append(cards, c)
		}
	}
	return cards
}

// TopOf returns the id of the top card of a pile.
func (s *GameState) TopOf(playerID string, zone Zone) (int, bool) {
	p, ok := s.Players[playerID]
	if !ok {
		return 0, false
	}
	pile := p.Pile(zone)
	if pile == nil || len(*pile) == 0 {
		return 0, false
	}
	return (*pile)[0], true
}

// LifeForce returns the player's remaining life force.
func (s *GameState) LifeForce(playerID string) int {
	p, ok := s.Players[playerID]
	if !ok {
		return 0
	}
	return p.LifeForce()
}

// Shuffle randomizes the order of a player's reserve deck.
func (s *GameState) Shuffle(playerID string) error {
	p, err := s.Player(playerID)
	if err != nil {
		return err
	}
	r := rand.New(s.rng)
	r.Shuffle(len(p.ReserveDeck), func(i, j int) {
		p.ReserveDeck[i], p.ReserveDeck[j] = p.ReserveDeck[j], p.ReserveDeck[i]
	})
	return nil
}

// RandomState returns the serialized state of the game's random source.
func (s *GameState) RandomState() []byte {
	data, _ := s.rng.MarshalBinary()
	return data
}

// SendMessage appends a message to the game log.
func (s *GameState) SendMessage(msg string) {
	s.Messages = append(s.Messages, msg)
}

// StartBattle opens a new battle record at a location.
func (s *GameState) StartBattle(locationID int, initiator string) *Battle {
	s.BattleCount++
	s.Battle = &Battle{
		ID:         s.BattleCount,
		LocationID: locationID,
		Initiator:  initiator,
		Destinies:  make(map[string][]float64),
	}
	return s.Battle
}

// Copy returns a deep copy of the game state, including its random source.
func (s *GameState) Copy() *GameState {
	cp := &GameState{
		Players:        make(map[string]*Player, len(s.Players)),
		PlayerOrder:    append([]string(nil), s.PlayerOrder...),
		Cards:          make(map[int]*PhysicalCard, len(s.Cards)),
		Locations:      append([]int(nil), s.Locations...),
		CurrentPhase:   s.CurrentPhase,
		CurrentPlayer:  s.CurrentPlayer,
		TurnNumber:     s.TurnNumber,
		LatestTurn:     make(map[string]int, len(s.LatestTurn)),
		PhaseInstance:  s.PhaseInstance,
		Battle:         s.Battle.Copy(),
		BattleCount:    s.BattleCount,
		Usage:          make(map[UsageKey]UsageMark, len(s.Usage)),
		ForceActivated: s.ForceActivated,
		Messages:       append([]string(nil), s.Messages...),
		NextCardID:     s.NextCardID,
	}
	for id, p := range s.Players {
		cp.Players[id] = p.Copy()
	}
	for id, c := range s.Cards {
		cp.Cards[id] = c.Copy()
	}
	for id, turn := range s.LatestTurn {
		cp.LatestTurn[id] = turn
	}
	for key, mark := range s.Usage {
		cp.Usage[key] = mark
	}
	rng := *s.rng
	cp.rng = &rng
	return cp
}

func sortByID(cards []*PhysicalCard) {
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
}
