package world

import (
	"encoding/json"
	"sort"

	"voidrift.gg/internal/protocol"
)

func (w *World) sendObs(nowTick uint64) {
	if w.client == nil {
		return
	}
	s := w.ships[w.client.shipID]
	if s == nil {
		return
	}
	obs := w.buildObs(s, nowTick)
	b, err := json.Marshal(obs)
	if err != nil {
		return
	}
	sendLatest(w.client.out, b)
}

// buildObs assembles the pilot's full frame: sector, self, every visible
// entity, the tick's events and the galaxy ledgers.
func (w *World) buildObs(s *Ship, nowTick uint64) protocol.ObsMsg {
	def := w.cats.Sectors.ByID[w.sectorID]
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		ShipID:          s.ID,
		Sector: protocol.SectorObs{
			ID:         def.ID,
			Name:       def.Name,
			Difficulty: def.Difficulty,
			Faction:    def.Faction,
			Security:   def.Security,
		},
		Self:    w.buildSelfObs(s, nowTick),
		Events:  protocol.EncodeEvents(w.events),
		Credits: w.credits,
	}

	for _, o := range w.shipsSorted() {
		if o.ID == s.ID || o.Destroyed {
			continue
		}
		hullFrac := 0.0
		if o.Hull.Max > 0 {
			hullFrac = o.Hull.Cur / o.Hull.Max
		}
		obs.Entities = append(obs.Entities, protocol.EntityObs{
			ID:        o.ID,
			Type:      "SHIP",
			Pos:       [2]float64{o.Pos.X, o.Pos.Y},
			Faction:   o.Faction,
			Hostility: string(o.Hostility),
			Class:     o.Class,
			HullFrac:  hullFrac,
			BountyID:  o.BountyID,
		})
	}
	ids := make([]string, 0, len(w.asteroids))
	for id := range w.asteroids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := w.asteroids[id]
		obs.Entities = append(obs.Entities, protocol.EntityObs{
			ID:   a.ID,
			Type: "ASTEROID",
			Pos:  [2]float64{a.Pos.X, a.Pos.Y},
			Ore:  a.Remaining,
		})
	}
	if def.StationPos != nil {
		st := w.stationPos()
		obs.Entities = append(obs.Entities, protocol.EntityObs{
			ID:      "station:" + def.ID,
			Type:    "STATION",
			Pos:     [2]float64{st.X, st.Y},
			Faction: def.Faction,
		})
	}
	wids := make([]string, 0, len(w.wrecks))
	for id := range w.wrecks {
		wids = append(wids, id)
	}
	sort.Strings(wids)
	for _, id := range wids {
		wr := w.wrecks[id]
		obs.Entities = append(obs.Entities, protocol.EntityObs{
			ID:   wr.ID,
			Type: "WRECK",
			Pos:  [2]float64{wr.Pos.X, wr.Pos.Y},
		})
	}

	for _, e := range w.bounty.board() {
		obs.BountyBoard = append(obs.BountyBoard, bountyObs(e))
	}
	for _, id := range w.bounty.sortedIDs() {
		e := w.bounty.entries[id]
		if e.Status != BountyBoard {
			obs.Bounties = append(obs.Bounties, bountyObs(e))
		}
	}
	for _, m := range w.missionsSorted() {
		tpl, ok := w.missionTemplate(m)
		if !ok {
			continue
		}
		obs.Missions = append(obs.Missions, protocol.MissionObs{
			MissionID: m.ID,
			Template:  m.TemplateID,
			Kind:      tpl.Kind,
			Progress:  m.Progress,
			Required:  tpl.Required,
			Deadline:  m.ExpiresTick,
			Status:    "ACCEPTED",
		})
	}
	for _, j := range w.jobsSorted() {
		progress := 1.0
		if j.DoneTick > j.StartTick {
			progress = float64(nowTick-j.StartTick) / float64(j.DoneTick-j.StartTick)
			if progress > 1 {
				progress = 1
			}
		}
		obs.Jobs = append(obs.Jobs, protocol.JobObs{
			JobID:       j.ID,
			BlueprintID: j.BlueprintID,
			Progress:    progress,
		})
	}
	for _, sector := range w.war.sectors {
		pts := map[string]float64{}
		for c, p := range w.war.points[sector] {
			pts[c] = p
		}
		obs.War = append(obs.War, protocol.WarFrontObs{
			SectorID: sector,
			Points:   pts,
			Leader:   w.war.control(sector),
		})
	}
	return obs
}

func (w *World) buildSelfObs(s *Ship, nowTick uint64) protocol.SelfObs {
	self := protocol.SelfObs{
		Pos:        [2]float64{s.Pos.X, s.Pos.Y},
		Heading:    s.Heading,
		Speed:      s.Speed,
		MaxSpeed:   s.effectiveMaxSpeed(w.propulsionFactor(s), nowTick),
		Shield:     [2]float64{s.Shield.Cur, s.Shield.Max},
		Armor:      [2]float64{s.Armor.Cur, s.Armor.Max},
		Hull:       [2]float64{s.Hull.Cur, s.Hull.Max},
		Capacitor:  [2]float64{s.Capacitor.Cur, s.Capacitor.Max},
		TargetID:   s.TargetID,
		Power:      string(s.Power),
		CargoUsed:  s.CargoUsed(),
		CargoMax:   s.CargoCapacity,
		DronesBay:  len(s.Drones),
		DronesOut:  s.DronesDeployed(),
		FleetOrder: string(s.AI.Order),
	}
	for _, item := range sortedKeys(s.Cargo) {
		self.Cargo = append(self.Cargo, protocol.CargoObs{Item: item, Amount: s.Cargo[item]})
	}
	for _, g := range []SlotGroup{SlotHigh, SlotMid, SlotLow} {
		for i := 0; i < s.slotCount[g]; i++ {
			ref := SlotRef{g, i}
			self.Slots = append(self.Slots, protocol.SlotObs{
				Slot:     ref.String(),
				Module:   s.Fittings[ref],
				Active:   s.Active[ref],
				Cooldown: s.Cooldowns[ref],
			})
		}
	}
	return self
}

func bountyObs(e *bountyEntry) protocol.BountyObs {
	o := protocol.BountyObs{
		TargetID: e.Def.ID,
		Name:     e.Def.Name,
		Tier:     e.Def.Tier,
		Reward:   e.Def.Reward,
		Status:   e.Status,
	}
	if e.Status == BountyActive {
		o.LastSeen = e.Sector
	}
	if e.Status == BountyCooldown {
		o.CooldownAt = e.CooldownUntil
	}
	return o
}
