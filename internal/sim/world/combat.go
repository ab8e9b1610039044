package world

import (
	"sort"

	"voidrift.gg/internal/protocol"
)

// applyDamage routes damage through the target's layer model, emits the
// per-layer damage events and handles the destruction edge exactly once.
func (w *World) applyDamage(t *Ship, amount float64, sourceID string) {
	rep := t.absorbDamage(amount)
	now := w.tick.Load()
	for _, l := range []struct {
		name string
		amt  float64
	}{
		{"SHIELD", rep.Shield},
		{"ARMOR", rep.Armor},
		{"HULL", rep.Hull},
	} {
		if l.amt > 0 {
			w.emit(protocol.DamageEvent{Tick: now, Target: t.ID, Source: sourceID, Amount: l.amt, Layer: l.name})
		}
	}
	if rep.Destroyed {
		w.onDestroyed(t, sourceID)
		return
	}
	w.onAggressed(t, sourceID)
}

// onAggressed is the retaliation hook: an idle combat NPC taking fire
// turns on its attacker, a miner taking fire calls for help.
func (w *World) onAggressed(t *Ship, sourceID string) {
	src := w.liveShip(sourceID)
	if src == nil {
		return
	}
	switch t.Role {
	case RoleSecurity, RolePirate, RoleBounty, RoleFlagship:
		if t.AI.State == StatePatrol {
			w.startEngagement(t, src)
		}
	case RoleMiner:
		w.alertSecurity(t.Pos)
	case RoleFleet:
		if t.TargetID == "" {
			t.TargetID = src.ID
		}
	}
}

// onDestroyed runs once per ship, at the moment Destroyed flips. The hull
// stays in the table as a tombstone until the end-of-tick sweep; every
// lookup already treats it as gone.
func (w *World) onDestroyed(t *Ship, killerID string) {
	now := w.tick.Load()

	var bountyReward float64
	if t.BountyID != "" {
		bountyReward = w.bounty.onTargetKilled(t.BountyID, now)
		if bountyReward > 0 && w.isPlayerOrFleet(killerID) {
			w.credits += bountyReward
			w.emit(protocol.BountyCompletedEvent{Tick: now, TargetID: t.BountyID, Reward: bountyReward})
		}
	}

	w.emit(protocol.DestroyedEvent{Tick: now, ShipID: t.ID, Class: t.Class, Faction: t.Faction, Killer: killerID, Bounty: t.BountyID})

	// Cargo spills into a lootable wreck.
	if len(t.Cargo) > 0 {
		wr := &Wreck{
			ID:          w.nextWreckID(),
			Pos:         t.Pos,
			Loot:        map[string]float64{},
			ExpiresTick: now + w.secondsToTicks(300),
		}
		for item, amt := range t.Cargo {
			wr.Loot[item] = amt
		}
		w.wrecks[wr.ID] = wr
	}

	if killer := w.liveShip(killerID); killer != nil {
		def := w.cats.Sectors.ByID[w.sectorID]
		if def.Contested {
			w.war.addKill(w.sectorID, w.coalitionOf(killer.Faction))
		}
		if w.isPlayerOrFleet(killerID) {
			w.progressKillMissions(t)
			w.standing[t.Faction] -= 1
		}
	}

	if t.ID == w.playerID {
		w.respawnPlayer(t)
	}
}

// isPlayerOrFleet reports whether the kill credits the pilot: their own
// hull, their escorts, or their drones all count.
func (w *World) isPlayerOrFleet(id string) bool {
	if id == w.playerID {
		return true
	}
	s, ok := w.ships[id]
	return ok && (s.Role == RoleFleet || s.Role == RoleFlagship) && s.AI.LeaderID == w.playerID
}

// respawnPlayer reships the pilot at the station in the same class. The
// old hull's cargo is already in its wreck.
func (w *World) respawnPlayer(old *Ship) {
	def, ok := w.cats.Ships.ByID[old.Class]
	if !ok {
		return
	}
	s := NewShip(w.nextShipID(), def, old.Faction, old.Hostility, RolePlayer, w.stationPos())
	s.Name = old.Name
	w.ships[s.ID] = s
	w.playerID = s.ID
	if w.client != nil {
		w.client.shipID = s.ID
	}
	// Escorts re-home on the new hull.
	for _, e := range w.shipsSorted() {
		if e.Role == RoleFleet && e.AI.LeaderID == old.ID {
			e.AI.LeaderID = s.ID
		}
	}
}

// LootWreck transfers everything the hold can take; a partial pick-up
// leaves the rest in the wreck.
func (w *World) LootWreck(s *Ship, wreckID string) error {
	wr, ok := w.wrecks[wreckID]
	if !ok {
		return ErrNoTarget
	}
	if Dist(s.Pos, wr.Pos) > w.tune.Pursuit.TackleRange {
		return ErrOutOfRange
	}
	space := s.CargoCapacity - s.CargoUsed()
	if space <= 0 {
		return ErrCapacityExceeded
	}
	now := w.tick.Load()
	for _, item := range sortedKeys(wr.Loot) {
		if space <= 0 {
			break
		}
		amt := wr.Loot[item]
		if amt > space {
			amt = space
		}
		s.Cargo[item] += amt
		space -= amt
		wr.Loot[item] -= amt
		if wr.Loot[item] <= 0 {
			delete(wr.Loot, item)
		}
		w.emit(protocol.LootEvent{Tick: now, ShipID: s.ID, Wreck: wr.ID, Item: item, Amount: amt})
	}
	if len(wr.Loot) == 0 {
		delete(w.wrecks, wr.ID)
	}
	return nil
}

// sweepDestroyed removes tombstoned hulls and stale wrecks. This is the
// only place ships leave the table, and it runs after every system of the
// tick has finished iterating.
func (w *World) sweepDestroyed() {
	for id, s := range w.ships {
		if s.Destroyed {
			delete(w.ships, id)
		}
	}
	now := w.tick.Load()
	for id, wr := range w.wrecks {
		if now >= wr.ExpiresTick {
			delete(w.wrecks, id)
		}
	}
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
