package game

import (
	"github.com/holotable/holotable-server-go/internal/game/decisions"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// GameView is the state of a game as one player may see it.
type GameView struct {
	GameID        string              `json:"game_id"`
	Viewer        string              `json:"viewer,omitempty"`
	Phase         string              `json:"phase"`
	CurrentPlayer string              `json:"current_player"`
	Turn          int                 `json:"turn"`
	Players       []PlayerView        `json:"players"`
	Locations     []LocationView      `json:"locations"`
	Stack         []string            `json:"stack"`
	Messages      []string            `json:"messages"`
	Decision      *decisions.Decision `json:"decision,omitempty"`
	Snapshots     []SnapshotInfo      `json:"snapshots,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
	Finished      bool                `json:"finished"`
	Cancelled     bool                `json:"cancelled,omitempty"`
	Winner        string              `json:"winner,omitempty"`
	Reason        string              `json:"reason,omitempty"`
}

// PlayerView shows a player's piles. Hand contents are only filled in for
// the viewer's own hand.
type PlayerView struct {
	PlayerID  string     `json:"player_id"`
	Side      state.Side `json:"side"`
	LifeForce int        `json:"life_force"`
	Piles     PileCounts `json:"piles"`
	Hand      []CardView `json:"hand,omitempty"`
	LostPile  []CardView `json:"lost_pile,omitempty"`
}

// LocationView is a location on the table and the cards at it.
type LocationView struct {
	Location CardView   `json:"location"`
	Cards    []CardView `json:"cards"`
}

// CardView is a card with its effective attributes.
type CardView struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	Owner    string         `json:"owner"`
	Category state.Category `json:"category"`
	Power    float64        `json:"power,omitempty"`
	Aboard   int            `json:"aboard,omitempty"`
	Capacity state.Capacity `json:"capacity,omitempty"`
}

// View returns the game as the player sees it. An empty player id gives a
// spectator view.
func (g *Game) View(playerID string) GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view(playerID)
}

func (g *Game) view(viewer string) GameView {
	st := g.state
	v := GameView{
		GameID:        g.id,
		Viewer:        viewer,
		Phase:         st.CurrentPhase.HumanReadable(),
		CurrentPlayer: st.CurrentPlayer,
		Turn:          st.TurnNumber,
		Messages:      append([]string(nil), st.Messages...),
		Finished:      g.finished,
		Cancelled:     g.cancelled,
		Winner:        g.winner,
		Reason:        g.reason,
	}
	counts := g.pileCounts()
	for _, id := range st.PlayerOrder {
		pv := PlayerView{
			PlayerID:  id,
			Side:      st.SideOf(id),
			LifeForce: st.LifeForce(id),
			Piles:     counts[id],
		}
		for _, c := range st.HandCards(id) {
			if !hiddenFrom(c, viewer) {
				pv.Hand = append(pv.Hand, g.cardView(c))
			}
		}
		for _, c := range st.PileCards(id, state.ZoneLostPile) {
			pv.LostPile = append(pv.LostPile, g.cardView(c))
		}
		v.Players = append(v.Players, pv)
	}
	for _, locID := range st.Locations {
		lv := LocationView{Location: g.cardView(st.Cards[locID])}
		for _, c := range st.CardsAtLocation(locID) {
			lv.Cards = append(lv.Cards, g.cardView(c))
		}
		v.Locations = append(v.Locations, lv)
	}
	for _, a := range g.stack.List() {
		v.Stack = append(v.Stack, a.Text)
	}
	if viewer != "" {
		if pd := g.topDecision(viewer); pd != nil {
			v.Decision = pd.decision
		}
		v.Warnings = append([]string(nil), g.warnings[viewer]...)
		if g.cfg.RollbackAllowed {
			v.Snapshots = g.snapshotInfos()
		}
	}
	return v
}

func (g *Game) cardView(c *state.PhysicalCard) CardView {
	cv := CardView{
		ID:       c.ID,
		Title:    c.Title,
		Owner:    c.Owner,
		Category: c.Category,
		Aboard:   c.Aboard,
		Capacity: c.Capacity,
	}
	if c.Zone == state.ZoneTable && !c.IsLocation() {
		cv.Power = g.modifiers.Power(g.state, c)
	}
	return cv
}
