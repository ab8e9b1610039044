package world

import (
	"fmt"

	"voidrift.gg/internal/protocol"
)

// enterSector despawns the local population and builds the new sector's:
// asteroid belt, miners, security patrols. The pilot's hull and escorts
// are the only ships that survive the transition; a bounty hull that
// despawns this way releases its ledger pin instead of dying.
func (w *World) enterSector(sectorID string) {
	def, ok := w.cats.Sectors.ByID[sectorID]
	if !ok {
		return
	}
	for id, s := range w.ships {
		if id == w.playerID {
			continue
		}
		if s.Role == RoleFleet && s.AI.LeaderID == w.playerID {
			continue
		}
		w.releaseBountyShip(s)
		delete(w.ships, id)
	}
	w.asteroids = map[string]*Asteroid{}
	w.wrecks = map[string]*Wreck{}
	w.sectorID = sectorID

	st := w.stationPos()
	for i := 0; i < def.Asteroids; i++ {
		r := 200 + w.rng.Float64()*400
		pos := offsetRing(st, r, w.rng.Intn(360), 360)
		a := &Asteroid{
			ID:        fmt.Sprintf("A%06d", i+1),
			Pos:       pos,
			Item:      def.OreItem,
			Remaining: def.OreAmount,
		}
		w.asteroids[a.ID] = a
	}

	if mdef, ok := w.cats.Ships.ByID[def.MinerClass]; ok {
		for i := 0; i < def.Miners; i++ {
			s := NewShip(w.nextShipID(), mdef, def.Faction, Neutral, RoleMiner, offsetRing(st, 120, i, def.Miners))
			s.AI.State = StateMining
			s.AI.Home = st
			w.ships[s.ID] = s
		}
	}
	if pdef, ok := w.cats.Ships.ByID[def.PatrolClass]; ok {
		for i := 0; i < def.Patrols; i++ {
			anchor := offsetRing(st, w.tune.Behavior.PatrolRadius, i, maxInt(def.Patrols, 1))
			s := NewShip(w.nextShipID(), pdef, def.Faction, Friendly, RoleSecurity, anchor)
			s.AI.State = StatePatrol
			s.AI.Home = anchor
			s.AI.PatrolAnchor = anchor
			w.ships[s.ID] = s
		}
	}
}

// Warp moves the pilot through a sector link. The local population does
// not travel; the destination is populated fresh.
func (w *World) Warp(s *Ship, destID string) error {
	if s.ID != w.playerID {
		return ErrNoTarget
	}
	cur := w.cats.Sectors.ByID[w.sectorID]
	linked := false
	for _, l := range cur.Links {
		if l == destID {
			linked = true
			break
		}
	}
	if !linked {
		return ErrOutOfRange
	}
	from := w.sectorID
	w.emit(protocol.WarpEvent{Tick: w.tick.Load(), ShipID: s.ID, From: from, To: destID})
	w.enterSector(destID)
	entry := offsetRing(w.stationPos(), 500, 0, 1)
	s.Pos = entry
	s.Speed = 0
	s.ClearDestination()
	s.TargetID = ""
	i := 0
	for _, e := range w.shipsSorted() {
		if e.Role == RoleFleet && e.AI.LeaderID == s.ID {
			e.Pos = offsetRing(entry, w.tune.Behavior.FleetOffset, i, 4)
			e.Speed = 0
			e.ClearDestination()
			i++
		}
	}
	return nil
}

// stepRaids rolls the periodic pirate incursion: a flagship anchor and up
// to MaxShips-1 escorts warping in on a ring around a working miner, every
// hull pre-locked on it. Raid pressure scales with sector difficulty; a
// sector with no miners left has nothing worth hitting.
func (w *World) stepRaids() {
	now := w.tick.Load()
	if w.tune.Raid.IntervalTicks <= 0 || now == 0 || now%uint64(w.tune.Raid.IntervalTicks) != 0 {
		return
	}
	def := w.cats.Sectors.ByID[w.sectorID]
	rdef, ok := w.cats.Ships.ByID[def.RaiderClass]
	if !ok {
		return
	}
	var miners []*Ship
	for _, s := range w.shipsSorted() {
		if s.Role == RoleMiner && !s.Destroyed {
			miners = append(miners, s)
		}
	}
	if len(miners) == 0 {
		return
	}
	chance := w.tune.Raid.BaseChance + w.tune.Raid.ChancePerDiff*float64(def.Difficulty-1)
	if w.rng.Float64() > chance {
		return
	}
	prey := miners[w.rng.Intn(len(miners))]
	count := 1 + w.rng.Intn(w.tune.Raid.MaxShips)
	faction := def.RaidFaction

	flag := NewShip(w.nextShipID(), rdef, faction, Hostile, RoleFlagship, offsetRing(prey.Pos, w.tune.Raid.RingRadius, 0, count))
	flag.AI.State = StateEngaging
	flag.AI.Home = flag.Pos
	flag.AI.PatrolAnchor = flag.Pos
	flag.AI.TargetID = prey.ID
	flag.TargetID = prey.ID
	flag.AI.ChaseStartTick = now
	w.ships[flag.ID] = flag

	for i := 1; i < count; i++ {
		e := NewShip(w.nextShipID(), rdef, faction, Hostile, RoleFleet, offsetRing(prey.Pos, w.tune.Raid.RingRadius, i, count))
		e.AI.State = StateDefending
		e.AI.Order = OrderDefend
		e.AI.LeaderID = flag.ID
		e.AI.Home = e.Pos
		e.AI.TargetID = prey.ID
		e.TargetID = prey.ID
		w.ships[e.ID] = e
	}
	w.emit(protocol.RaidEvent{Tick: now, SectorID: w.sectorID, Count: count, AnchorID: flag.ID})
	w.emit(protocol.AlertEvent{Tick: now, Level: "DANGER", Text: fmt.Sprintf("raid inbound: %d hostiles", count)})
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
