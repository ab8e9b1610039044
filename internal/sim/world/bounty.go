package world

import (
	"math/rand"
	"sort"

	"voidrift.gg/internal/protocol"
	"voidrift.gg/internal/sim/catalogs"
	"voidrift.gg/internal/sim/tuning"
)

// Bounty lifecycle. Every target in the catalog is always in exactly one
// of three states: listed on the board, accepted and at large, or dead and
// cooling down toward a relisting.
const (
	BountyBoard    = "BOARD"
	BountyActive   = "ACTIVE"
	BountyCooldown = "COOLDOWN"
)

type bountyEntry struct {
	Def           catalogs.BountyTargetDef
	Status        string
	Sector        string // where the target currently lurks
	SpawnedShipID string
	Paid          bool
	CooldownUntil uint64
	NextWalkTick  uint64
}

type bountyLedger struct {
	tune    tuning.Bounty
	entries map[string]*bountyEntry
}

func newBountyLedger(cats *catalogs.Catalogs, tune tuning.Bounty) *bountyLedger {
	l := &bountyLedger{tune: tune, entries: map[string]*bountyEntry{}}
	for id, def := range cats.Bounties.ByID {
		e := &bountyEntry{Def: def, Status: BountyBoard}
		if len(def.PatrolSectors) > 0 {
			e.Sector = def.PatrolSectors[0]
		}
		l.entries[id] = e
	}
	return l
}

func (l *bountyLedger) sortedIDs() []string {
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// board lists up to boardSize targets currently available to accept.
func (l *bountyLedger) board() []*bountyEntry {
	var out []*bountyEntry
	for _, id := range l.sortedIDs() {
		if e := l.entries[id]; e.Status == BountyBoard {
			out = append(out, e)
			if len(out) >= l.tune.BoardSize {
				break
			}
		}
	}
	return out
}

// accept moves a listed bounty to active. Accepting anything not on the
// board is a transition error; accepting an already-active one is how a
// double accept surfaces.
func (l *bountyLedger) accept(id string) error {
	e, ok := l.entries[id]
	if !ok {
		return ErrNoTarget
	}
	if e.Status != BountyBoard {
		return ErrInvalidTransition
	}
	e.Status = BountyActive
	e.Paid = false
	return nil
}

// onTargetKilled pays out exactly once and starts the cooldown. A second
// call for the same activation returns zero.
func (l *bountyLedger) onTargetKilled(id string, now uint64) float64 {
	e, ok := l.entries[id]
	if !ok || e.Status != BountyActive || e.Paid {
		return 0
	}
	e.Paid = true
	e.Status = BountyCooldown
	e.SpawnedShipID = ""
	e.CooldownUntil = now + uint64(l.tune.RespawnTicks)
	return e.Def.Reward
}

// step walks active targets between their patrol sectors and relists
// cooled-down ones.
func (l *bountyLedger) step(now uint64, rng *rand.Rand) {
	for _, id := range l.sortedIDs() {
		e := l.entries[id]
		switch e.Status {
		case BountyCooldown:
			if now >= e.CooldownUntil {
				e.Status = BountyBoard
				e.Paid = false
				if len(e.Def.PatrolSectors) > 0 {
					e.Sector = e.Def.PatrolSectors[0]
				}
			}
		case BountyActive:
			if e.SpawnedShipID != "" {
				continue // pinned while its hull is live somewhere
			}
			if now >= e.NextWalkTick && len(e.Def.PatrolSectors) > 1 {
				e.Sector = e.Def.PatrolSectors[rng.Intn(len(e.Def.PatrolSectors))]
				e.NextWalkTick = now + uint64(l.tune.WalkIntervalTicks)
			}
		}
	}
}

// stepBounty advances the ledger and rolls spawns for active targets
// lurking in the sector the pilot is in.
func (w *World) stepBounty() {
	now := w.tick.Load()
	w.bounty.step(now, w.rng)
	for _, id := range w.bounty.sortedIDs() {
		e := w.bounty.entries[id]
		if e.Status != BountyActive || e.SpawnedShipID != "" || e.Sector != w.sectorID {
			continue
		}
		chance := w.tune.Bounty.SpawnBaseChance
		for t := 1; t < e.Def.Tier; t++ {
			chance *= 1 - w.tune.Bounty.SpawnTierFalloff
		}
		if w.rng.Float64() > chance {
			continue
		}
		def, ok := w.cats.Ships.ByID[e.Def.ShipClass]
		if !ok {
			continue
		}
		pos := offsetRing(w.stationPos(), w.tune.Raid.RingRadius*2, w.rng.Intn(12), 12)
		s := NewShip(w.nextShipID(), def, e.Def.Faction, Hostile, RoleBounty, pos)
		s.BountyID = id
		s.AI.Home = pos
		s.AI.PatrolAnchor = pos
		s.AI.State = StatePatrol
		boost := e.Def.StatBoost
		if boost <= 0 {
			boost = w.tune.Bounty.DefaultStatBoost
		}
		s.Boost(boost)
		w.ships[s.ID] = s
		e.SpawnedShipID = s.ID
		w.emit(protocol.BountySpawnedEvent{Tick: now, TargetID: id, ShipID: s.ID, SectorID: w.sectorID})
	}
}

// AcceptBounty is the pilot-facing accept.
func (w *World) AcceptBounty(bountyID string) error {
	if err := w.bounty.accept(bountyID); err != nil {
		return err
	}
	w.emit(protocol.BountyAcceptedEvent{Tick: w.tick.Load(), TargetID: bountyID})
	return nil
}

// releaseBountyShip unpins an active target whose hull despawned without
// dying (sector change, leash). The bounty stays active and keeps walking.
func (w *World) releaseBountyShip(s *Ship) {
	if s.BountyID == "" {
		return
	}
	if e, ok := w.bounty.entries[s.BountyID]; ok && e.SpawnedShipID == s.ID {
		e.SpawnedShipID = ""
		e.NextWalkTick = w.tick.Load() + uint64(w.tune.Bounty.WalkIntervalTicks)
	}
}
