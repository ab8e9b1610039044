package world

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// stateDigest folds the simulation's observable state into a hex digest.
// Two runs from the same seed and inputs must agree digest-for-digest;
// replay verification and the determinism tests lean on this.
func (w *World) stateDigest(tick uint64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick=%d sector=%s credits=%.3f\n", tick, w.sectorID, w.credits)
	for _, s := range w.shipsSorted() {
		fmt.Fprintf(&b, "ship %s %s %s st=%s pos=%.3f,%.3f hd=%.4f spd=%.3f sh=%.3f ar=%.3f hu=%.3f cap=%.3f tgt=%s dead=%t\n",
			s.ID, s.Class, s.Role, s.AI.State,
			s.Pos.X, s.Pos.Y, s.Heading, s.Speed,
			s.Shield.Cur, s.Armor.Cur, s.Hull.Cur, s.Capacitor.Cur,
			s.TargetID, s.Destroyed)
	}
	for _, id := range sortedAsteroidIDs(w.asteroids) {
		a := w.asteroids[id]
		fmt.Fprintf(&b, "ast %s %.3f\n", a.ID, a.Remaining)
	}
	for _, id := range w.bounty.sortedIDs() {
		e := w.bounty.entries[id]
		fmt.Fprintf(&b, "bounty %s %s %s paid=%t\n", id, e.Status, e.Sector, e.Paid)
	}
	for _, sector := range w.war.sectors {
		for _, c := range sortedCoalitions(w.war.points[sector]) {
			fmt.Fprintf(&b, "war %s %s %.3f\n", sector, c, w.war.points[sector][c])
		}
	}
	for _, m := range w.missionsSorted() {
		fmt.Fprintf(&b, "mission %s %s %d\n", m.ID, m.TemplateID, m.Progress)
	}
	for _, j := range w.jobsSorted() {
		fmt.Fprintf(&b, "job %s %s %d\n", j.ID, j.BlueprintID, j.DoneTick)
	}
	for _, id := range w.ownedBlueprints() {
		fmt.Fprintf(&b, "bp %s\n", id)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func sortedAsteroidIDs(m map[string]*Asteroid) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
