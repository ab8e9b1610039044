package world

import (
	"fmt"

	"voidrift.gg/internal/persistence/snapshot"
	"voidrift.gg/internal/sim/catalogs"
	"voidrift.gg/internal/sim/tuning"
)

// NewWorldFromSnapshot rebuilds a world from a snapshot plus the current
// catalogs and tuning. Catalog digests must match: resuming against a
// different content drop would silently shift every stat. Past those
// gates, malformed records degrade: a hull with an unknown class is
// dropped and a bad slot key is skipped, never the whole load.
func NewWorldFromSnapshot(snap snapshot.SnapshotV1, cats *catalogs.Catalogs, tune tuning.Tuning) (*World, error) {
	if snap.Header.Version != 1 {
		return nil, fmt.Errorf("snapshot: unsupported version %d", snap.Header.Version)
	}
	if d := snap.CatalogDigests["ships"]; d != "" && d != cats.Ships.Digest {
		return nil, fmt.Errorf("snapshot: ships catalog digest mismatch")
	}
	if d := snap.CatalogDigests["modules"]; d != "" && d != cats.Modules.Digest {
		return nil, fmt.Errorf("snapshot: modules catalog digest mismatch")
	}

	w, err := NewWorld(WorldConfig{
		GalaxyID:    snap.Header.GalaxyID,
		StartSector: snap.SectorID,
		Seed:        snap.Seed,
	}, cats, tune)
	if err != nil {
		return nil, err
	}
	w.tick.Store(snap.Header.Tick)
	if snap.RngState != 0 {
		w.rngSrc.state = snap.RngState
	}

	// Replace the fresh population with the recorded one.
	w.ships = map[string]*Ship{}
	w.asteroids = map[string]*Asteroid{}
	w.wrecks = map[string]*Wreck{}

	for _, v := range snap.Ships {
		s, ok := importShip(v, cats)
		if !ok {
			continue
		}
		w.ships[s.ID] = s
	}
	for _, v := range snap.Asteroids {
		w.asteroids[v.ID] = &Asteroid{
			ID:        v.ID,
			Pos:       Vec2{X: v.Pos[0], Y: v.Pos[1]},
			Item:      v.Item,
			Remaining: v.Remaining,
		}
	}
	for _, v := range snap.Wrecks {
		w.wrecks[v.ID] = &Wreck{
			ID:          v.ID,
			Pos:         Vec2{X: v.Pos[0], Y: v.Pos[1]},
			Loot:        copyFloatMap(v.Loot),
			ExpiresTick: v.ExpiresTick,
		}
	}

	w.playerID = snap.PlayerID
	w.credits = snap.Credits
	w.standing = map[string]float64{}
	for k, v := range snap.Standing {
		w.standing[k] = v
	}
	// An empty list keeps the starter set; an unknown id is dropped.
	if len(snap.Blueprints) > 0 {
		w.blueprints = map[string]bool{}
		for _, id := range snap.Blueprints {
			if _, ok := cats.Blueprints.ByID[id]; ok {
				w.blueprints[id] = true
			}
		}
	}

	for _, b := range snap.Bounties {
		e, ok := w.bounty.entries[b.TargetID]
		if !ok {
			continue
		}
		e.Status = b.Status
		e.Sector = b.Sector
		e.SpawnedShipID = b.SpawnedShipID
		e.Paid = b.Paid
		e.CooldownUntil = b.CooldownUntil
		e.NextWalkTick = b.NextWalkTick
	}
	for _, row := range snap.War {
		w.war.addPoints(row.SectorID, row.Coalition, row.Points)
	}
	for _, m := range snap.Missions {
		w.missions[m.ID] = &MissionState{
			ID:          m.ID,
			TemplateID:  m.TemplateID,
			Progress:    m.Progress,
			ExpiresTick: m.ExpiresTick,
		}
	}
	for _, j := range snap.Jobs {
		w.jobs[j.ID] = &Job{
			ID:          j.ID,
			BlueprintID: j.BlueprintID,
			StartTick:   j.StartTick,
			DoneTick:    j.DoneTick,
		}
	}

	w.nextShipNum.Store(snap.Counters.NextShip)
	w.nextWreckNum.Store(snap.Counters.NextWreck)
	w.nextMissionNum.Store(snap.Counters.NextMission)
	w.nextJobNum.Store(snap.Counters.NextJob)
	return w, nil
}

// importShip rebuilds one hull. An unknown class drops the record; slot
// maps fall back to the class default fit when every key is malformed.
func importShip(v snapshot.ShipV1, cats *catalogs.Catalogs) (*Ship, bool) {
	def, ok := cats.Ships.ByID[v.Class]
	if !ok {
		return nil, false
	}
	s := NewShip(v.ID, def, v.Faction, Hostility(v.Hostility), Role(v.Role), Vec2{X: v.Pos[0], Y: v.Pos[1]})
	s.Name = v.Name
	s.BountyID = v.BountyID

	s.Shield = Pool{Cur: v.Shield[0], Max: v.Shield[1]}
	s.Armor = Pool{Cur: v.Armor[0], Max: v.Armor[1]}
	s.Hull = Pool{Cur: v.Hull[0], Max: v.Hull[1]}
	s.Capacitor = Pool{Cur: v.Capacitor[0], Max: v.Capacitor[1]}

	s.Heading = v.Heading
	s.DesiredHeading = v.DesiredHeading
	s.Speed = v.Speed
	s.DesiredSpeed = v.DesiredSpeed
	if v.Dest != nil {
		s.Dest = &Vec2{X: v.Dest[0], Y: v.Dest[1]}
	}

	if len(v.Fittings) > 0 {
		fits := map[SlotRef]string{}
		for key, mod := range v.Fittings {
			ref, err := ParseSlotRef(key)
			if err != nil {
				continue
			}
			fits[ref] = mod
		}
		if len(fits) > 0 {
			s.Fittings = fits
		}
	}
	for key, on := range v.Active {
		ref, err := ParseSlotRef(key)
		if err != nil {
			continue
		}
		s.Active[ref] = on
	}
	for key, cd := range v.Cooldowns {
		ref, err := ParseSlotRef(key)
		if err != nil {
			continue
		}
		s.Cooldowns[ref] = cd
	}

	if v.WebFactor > 0 {
		s.WebFactor = v.WebFactor
	}
	s.WebUntilTick = v.WebUntilTick
	if v.Power != "" {
		s.Power = PowerRouting(v.Power)
	}
	if v.StatBoost > 0 {
		s.StatBoost = v.StatBoost
	}
	s.TargetID = v.TargetID

	s.Cargo = map[string]float64{}
	for k, amt := range v.Cargo {
		s.Cargo[k] = amt
	}
	if len(v.Drones) > 0 {
		s.Drones = nil
		for _, d := range v.Drones {
			s.Drones = append(s.Drones, DroneRecord{Type: d.Type, HP: d.HP, Deployed: d.Deployed})
		}
	}
	s.Hangar = append([]string(nil), v.Hangar...)

	s.AI = AIState{
		State:            State(v.AI.State),
		TargetID:         v.AI.TargetID,
		PatrolAnchor:     Vec2{X: v.AI.PatrolAnchor[0], Y: v.AI.PatrolAnchor[1]},
		Home:             Vec2{X: v.AI.Home[0], Y: v.AI.Home[1]},
		ChaseStartTick:   v.AI.ChaseStartTick,
		InterceptReadyAt: v.AI.InterceptReadyAt,
		DockedUntilTick:  v.AI.DockedUntilTick,
		LeaderID:         v.AI.LeaderID,
		HoldPos:          Vec2{X: v.AI.HoldPos[0], Y: v.AI.HoldPos[1]},
		Order:            FleetOrder(v.AI.Order),
	}
	return s, true
}
