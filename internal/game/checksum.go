package game

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/holotable/holotable-server-go/internal/game/state"
)

// Checksum returns a digest of everything that decides how the game goes
// on: piles, cards, table, turn position, usage, random source, modifiers
// and the stack. The message log is left out.
func (g *Game) Checksum() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checksum()
}

func (g *Game) checksum() string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	writeState(h, g.state)

	mods := g.modifiers.List()
	lines := make([]string, len(mods))
	for i, m := range mods {
		lines[i] = fmt.Sprintf("%d|%s|%s|%s|%s|%d|%s", m.SourceID, m.Kind, m.Text, m.Duration, m.PlayerID, m.Phase, ownerIndex(g, m.OwnerAction))
	}
	sort.Strings(lines)
	fmt.Fprintf(h, "modifiers:%s\n", strings.Join(lines, ";"))

	for _, a := range g.stack.List() {
		keys := make([]string, 0, len(a.Memory))
		for k := range a.Memory {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(h, "action:%s|%d|%s|%s|%s|%d|%t", a.Kind, a.SourceID, a.TextID, a.Text, a.Stage, a.Cursor, a.BeforeDone)
		for _, k := range keys {
			fmt.Fprintf(h, "|%s=%s", k, strings.Join(a.Memory[k], ","))
		}
		fmt.Fprintln(h)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ownerIndex names an owning action by its stack position, since action
// ids are random.
func ownerIndex(g *Game, actionID string) string {
	if actionID == "" {
		return ""
	}
	for i, a := range g.stack.List() {
		if a.ID == actionID {
			return fmt.Sprintf("stack[%d]", i)
		}
	}
	return "gone"
}

func writeState(h hash.Hash, st *state.GameState) {
	for _, id := range st.PlayerOrder {
		p := st.Players[id]
		fmt.Fprintf(h, "player:%s|%s|%v|%v|%v|%v|%v|%v|%d\n", p.ID, p.Side,
			p.ReserveDeck, p.ForcePile, p.UsedPile, p.LostPile, p.Hand, p.OutOfPlay, st.LatestTurn[id])
	}
	ids := make([]int, 0, len(st.Cards))
	for id := range st.Cards {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c := st.Cards[id]
		fmt.Fprintf(h, "card:%d|%s|%s|%s|%d|%d|%s\n", c.ID, c.BlueprintID, c.Owner, c.Zone, c.AtLocation, c.Aboard, c.Capacity)
	}
	fmt.Fprintf(h, "table:%v|%s|%s|%d|%d|%d|%d|%d\n", st.Locations, st.CurrentPhase, st.CurrentPlayer,
		st.TurnNumber, st.PhaseInstance, st.ForceActivated, st.BattleCount, st.NextCardID)
	if b := st.Battle; b != nil {
		fmt.Fprintf(h, "battle:%d|%d|%s", b.ID, b.LocationID, b.Initiator)
		for _, p := range st.PlayerOrder {
			fmt.Fprintf(h, "|%s=%v", p, b.Destinies[p])
		}
		fmt.Fprintln(h)
	}

	usage := make([]string, 0, len(st.Usage))
	for k, m := range st.Usage {
		usage = append(usage, fmt.Sprintf("%d/%s/%s/%s=%d@%d", k.SourceID, k.TextID, k.Scope, k.PlayerID, m.Count, m.Stamp))
	}
	sort.Strings(usage)
	fmt.Fprintf(h, "usage:%s\n", strings.Join(usage, ";"))
	_, _ = io.WriteString(h, "rng:"+hex.EncodeToString(st.RandomState())+"\n")
}
