package rules

import (
	"fmt"
	"math"

	"github.com/holotable/holotable-server-go/internal/game/modifiers"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// InitiateBattle opens a battle at a location.
type InitiateBattle struct {
	Player     string
	LocationID int
}

func (e InitiateBattle) Text() string { return "Initiate battle" }

func (e InitiateBattle) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	if st.Battle != nil {
		return OutcomeFailed, nil
	}
	battle := st.StartBattle(e.LocationID, e.Player)
	st.SendMessage(fmt.Sprintf("%s initiates battle at %s", e.Player, cardTitle(st, e.LocationID)))
	result := NewCardResult(ResultBattleInitiated, e.Player, 0, e.LocationID)
	result.BattleID = battle.ID
	env.Emit(result)
	return OutcomeDone, nil
}

// DrawBattleDestiny draws one battle destiny for a player with cards
// present at the battle location.
type DrawBattleDestiny struct {
	Player string
}

func (e DrawBattleDestiny) Text() string { return "Draw battle destiny" }

func (e DrawBattleDestiny) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	battle := st.Battle
	if battle == nil || !hasPresence(st, e.Player, battle.LocationID) {
		return OutcomeDone, nil
	}
	id, ok := st.TopOf(e.Player, state.ZoneReserveDeck)
	if !ok {
		st.SendMessage(fmt.Sprintf("%s has no cards left to draw destiny", e.Player))
		return OutcomeDone, nil
	}
	card := st.Cards[id]
	value := env.Modifiers().Destiny(st, card)
	if err := st.MoveToPile(id, state.ZoneUsedPile, true); err != nil {
		return OutcomeFailed, err
	}
	battle.Destinies[e.Player] = append(battle.Destinies[e.Player], value)
	st.SendMessage(fmt.Sprintf("%s draws %s for battle destiny: %g", e.Player, card.Title, value))
	result := NewCardResult(ResultDestinyDrawn, e.Player, id, battle.LocationID)
	result.Amount = value
	result.BattleID = battle.ID
	env.Emit(result)
	return OutcomeDone, nil
}

// ModifyDestiny changes the player's most recently drawn battle destiny.
type ModifyDestiny struct {
	Player string
	Amount float64
}

func (e ModifyDestiny) Text() string { return fmt.Sprintf("Destiny %+g", e.Amount) }

func (e ModifyDestiny) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	if st.Battle == nil || len(st.Battle.Destinies[e.Player]) == 0 {
		return OutcomeFailed, nil
	}
	values := st.Battle.Destinies[e.Player]
	values[len(values)-1] += e.Amount
	st.SendMessage(fmt.Sprintf("%s's destiny is modified by %+g to %g", e.Player, e.Amount, values[len(values)-1]))
	result := NewAmountResult(ResultDestinyModified, e.Player, e.Amount)
	result.BattleID = st.Battle.ID
	env.Emit(result)
	return OutcomeDone, nil
}

// ResolveBattle compares total power plus battle destiny. The loser forfeits
// cards up to the winner's destiny total as attrition and loses Force equal
// to the difference.
type ResolveBattle struct{}

func (ResolveBattle) Text() string { return "Resolve battle" }

func (ResolveBattle) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	battle := st.Battle
	if battle == nil {
		return OutcomeFailed, nil
	}
	totals := make(map[string]float64, len(st.PlayerOrder))
	for _, p := range st.PlayerOrder {
		totals[p] = BattleTotal(env, p)
	}
	first, second := st.PlayerOrder[0], st.PlayerOrder[1]
	if totals[first] == totals[second] {
		st.SendMessage(fmt.Sprintf("Battle at %s is a tie at %g", cardTitle(st, battle.LocationID), totals[first]))
		return OutcomeDone, nil
	}
	winner, loser := first, second
	if totals[second] > totals[first] {
		winner, loser = second, first
	}
	difference := int(math.Ceil(totals[winner] - totals[loser]))
	st.SendMessage(fmt.Sprintf("%s wins battle at %s by %d", winner, cardTitle(st, battle.LocationID), difference))
	result := NewAmountResult(ResultBattleResolved, winner, float64(difference))
	result.LocationID = battle.LocationID
	result.BattleID = battle.ID
	env.Emit(result)

	if err := applyAttrition(env, loser, sum(battle.Destinies[winner])); err != nil {
		return OutcomeFailed, err
	}
	if _, err := loseForce(env, loser, difference, "battle damage"); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeDone, nil
}

func applyAttrition(env Env, loser string, attrition float64) error {
	st := env.State()
	reg := env.Modifiers()
	for _, card := range st.CardsAtLocation(st.Battle.LocationID) {
		if attrition <= 0 {
			return nil
		}
		if card.Owner != loser || card.Aboard != 0 || card.Zone != state.ZoneTable {
			continue
		}
		if threshold, immune := reg.ImmuneToAttrition(st, card); immune && attrition < threshold {
			continue
		}
		forfeit := reg.Forfeit(st, card)
		location := st.LocationOf(card.ID)
		if err := LeavePlay(env, card.ID, state.ZoneLostPile); err != nil {
			return err
		}
		st.SendMessage(fmt.Sprintf("%s is forfeited to attrition", card.Title))
		env.Emit(NewCardResult(ResultCardLost, card.Owner, card.ID, location))
		attrition -= math.Max(forfeit, 1)
	}
	return nil
}

// EndBattle closes the battle and removes battle scoped modifiers.
type EndBattle struct{}

func (EndBattle) Text() string { return "End battle" }

func (EndBattle) Play(env Env, a *Action) (Outcome, error) {
	st := env.State()
	if st.Battle == nil {
		return OutcomeDone, nil
	}
	battle := st.Battle
	env.Modifiers().RemoveDuration(modifiers.DurationUntilEndOfBattle)
	st.Battle = nil
	result := NewCardResult(ResultBattleEnded, battle.Initiator, 0, battle.LocationID)
	result.BattleID = battle.ID
	env.Emit(result)
	return OutcomeDone, nil
}

// BattleTotal is the player's total power plus battle destiny in the
// current battle.
func BattleTotal(env Env, playerID string) float64 {
	st := env.State()
	if st.Battle == nil {
		return 0
	}
	return env.Modifiers().TotalPower(st, st.Battle.LocationID, playerID) + sum(st.Battle.Destinies[playerID])
}

func hasPresence(st *state.GameState, playerID string, locationID int) bool {
	for _, c := range st.CardsAtLocation(locationID) {
		if c.Owner == playerID {
			return true
		}
	}
	return false
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
