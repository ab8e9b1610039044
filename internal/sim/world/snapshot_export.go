package world

import (
	"sort"

	"voidrift.gg/internal/persistence/snapshot"
)

// ExportSnapshot captures the full resumable state at a tick boundary.
// It runs on the loop goroutine; the returned value shares nothing with
// the live world, so the writer goroutine can take its time.
func (w *World) ExportSnapshot(tick uint64) snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{Version: 1, GalaxyID: w.cfg.GalaxyID, Tick: tick},

		Seed:               w.cfg.Seed,
		RngState:           w.rngSrc.state,
		TickRate:           w.tune.TickRateHz,
		DecisionEveryTicks: w.tune.DecisionEveryTicks,
		SectorID:           w.sectorID,

		CatalogDigests: map[string]string{
			"ships":      w.cats.Ships.Digest,
			"modules":    w.cats.Modules.Digest,
			"factions":   w.cats.Factions.Digest,
			"sectors":    w.cats.Sectors.Digest,
			"bounties":   w.cats.Bounties.Digest,
			"missions":   w.cats.Missions.Digest,
			"blueprints": w.cats.Blueprints.Digest,
		},

		PlayerID:   w.playerID,
		Credits:    w.credits,
		Standing:   copyFloatMap(w.standing),
		Blueprints: w.ownedBlueprints(),

		Counters: snapshot.CountersV1{
			NextShip:    w.nextShipNum.Load(),
			NextWreck:   w.nextWreckNum.Load(),
			NextMission: w.nextMissionNum.Load(),
			NextJob:     w.nextJobNum.Load(),
		},
	}

	for _, s := range w.shipsSorted() {
		if s.Destroyed {
			continue
		}
		snap.Ships = append(snap.Ships, exportShip(s))
	}
	for _, id := range sortedAsteroidIDs(w.asteroids) {
		a := w.asteroids[id]
		snap.Asteroids = append(snap.Asteroids, snapshot.AsteroidV1{
			ID:        a.ID,
			Pos:       [2]float64{a.Pos.X, a.Pos.Y},
			Item:      a.Item,
			Remaining: a.Remaining,
		})
	}
	for _, id := range sortedWreckIDs(w.wrecks) {
		wr := w.wrecks[id]
		snap.Wrecks = append(snap.Wrecks, snapshot.WreckV1{
			ID:          wr.ID,
			Pos:         [2]float64{wr.Pos.X, wr.Pos.Y},
			Loot:        copyFloatMap(wr.Loot),
			ExpiresTick: wr.ExpiresTick,
		})
	}
	for _, id := range w.bounty.sortedIDs() {
		e := w.bounty.entries[id]
		snap.Bounties = append(snap.Bounties, snapshot.BountyV1{
			TargetID:      id,
			Status:        e.Status,
			Sector:        e.Sector,
			SpawnedShipID: e.SpawnedShipID,
			Paid:          e.Paid,
			CooldownUntil: e.CooldownUntil,
			NextWalkTick:  e.NextWalkTick,
		})
	}
	for _, sector := range w.war.sectors {
		for _, c := range sortedCoalitions(w.war.points[sector]) {
			snap.War = append(snap.War, snapshot.WarRowV1{
				SectorID:  sector,
				Coalition: c,
				Points:    w.war.points[sector][c],
			})
		}
	}
	for _, m := range w.missionsSorted() {
		snap.Missions = append(snap.Missions, snapshot.MissionV1{
			ID:          m.ID,
			TemplateID:  m.TemplateID,
			Progress:    m.Progress,
			ExpiresTick: m.ExpiresTick,
		})
	}
	for _, j := range w.jobsSorted() {
		snap.Jobs = append(snap.Jobs, snapshot.JobV1{
			ID:          j.ID,
			BlueprintID: j.BlueprintID,
			StartTick:   j.StartTick,
			DoneTick:    j.DoneTick,
		})
	}
	return snap
}

func exportShip(s *Ship) snapshot.ShipV1 {
	v := snapshot.ShipV1{
		ID:        s.ID,
		Name:      s.Name,
		Class:     s.Class,
		Faction:   s.Faction,
		Hostility: string(s.Hostility),
		Role:      string(s.Role),
		BountyID:  s.BountyID,

		Shield:    [2]float64{s.Shield.Cur, s.Shield.Max},
		Armor:     [2]float64{s.Armor.Cur, s.Armor.Max},
		Hull:      [2]float64{s.Hull.Cur, s.Hull.Max},
		Capacitor: [2]float64{s.Capacitor.Cur, s.Capacitor.Max},

		Pos:            [2]float64{s.Pos.X, s.Pos.Y},
		Heading:        s.Heading,
		DesiredHeading: s.DesiredHeading,
		Speed:          s.Speed,
		DesiredSpeed:   s.DesiredSpeed,

		WebFactor:    s.WebFactor,
		WebUntilTick: s.WebUntilTick,
		Power:        string(s.Power),
		StatBoost:    s.StatBoost,
		TargetID:     s.TargetID,

		Cargo:  copyFloatMap(s.Cargo),
		Hangar: append([]string(nil), s.Hangar...),

		AI: snapshot.AIStateV1{
			State:            string(s.AI.State),
			TargetID:         s.AI.TargetID,
			PatrolAnchor:     [2]float64{s.AI.PatrolAnchor.X, s.AI.PatrolAnchor.Y},
			Home:             [2]float64{s.AI.Home.X, s.AI.Home.Y},
			ChaseStartTick:   s.AI.ChaseStartTick,
			InterceptReadyAt: s.AI.InterceptReadyAt,
			DockedUntilTick:  s.AI.DockedUntilTick,
			LeaderID:         s.AI.LeaderID,
			HoldPos:          [2]float64{s.AI.HoldPos.X, s.AI.HoldPos.Y},
			Order:            string(s.AI.Order),
		},
	}
	if s.Dest != nil {
		v.Dest = &[2]float64{s.Dest.X, s.Dest.Y}
	}
	if len(s.Fittings) > 0 {
		v.Fittings = map[string]string{}
		for ref, mod := range s.Fittings {
			v.Fittings[ref.String()] = mod
		}
	}
	if len(s.Active) > 0 {
		v.Active = map[string]bool{}
		for ref, on := range s.Active {
			v.Active[ref.String()] = on
		}
	}
	if len(s.Cooldowns) > 0 {
		v.Cooldowns = map[string]float64{}
		for ref, cd := range s.Cooldowns {
			v.Cooldowns[ref.String()] = cd
		}
	}
	for _, d := range s.Drones {
		v.Drones = append(v.Drones, snapshot.DroneV1{Type: d.Type, HP: d.HP, Deployed: d.Deployed})
	}
	return v
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedWreckIDs(m map[string]*Wreck) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
