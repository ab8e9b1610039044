package world

import (
	"fmt"
	"sort"

	"voidrift.gg/internal/protocol"
	"voidrift.gg/internal/sim/catalogs"
)

// MissionState is one accepted mission instance. Templates live in the
// catalog; instances track progress and the deadline.
type MissionState struct {
	ID          string `json:"id"`
	TemplateID  string `json:"template_id"`
	Progress    int    `json:"progress"`
	ExpiresTick uint64 `json:"expires_tick,omitempty"` // 0 = no limit
}

func (w *World) missionTemplate(m *MissionState) (catalogs.MissionTemplate, bool) {
	t, ok := w.cats.Missions.ByID[m.TemplateID]
	return t, ok
}

// AcceptMission instantiates a template for the pilot. One live instance
// per template; re-accepting an already running one is a conflict the
// command layer reports as such.
func (w *World) AcceptMission(templateID string) error {
	tpl, ok := w.cats.Missions.ByID[templateID]
	if !ok {
		return ErrNoTarget
	}
	for _, m := range w.missions {
		if m.TemplateID == templateID {
			return ErrInvalidTransition
		}
	}
	now := w.tick.Load()
	m := &MissionState{
		ID:         fmt.Sprintf("M%06d", w.nextMissionNum.Add(1)),
		TemplateID: templateID,
	}
	if tpl.Ticks > 0 {
		m.ExpiresTick = now + uint64(tpl.Ticks)
	}
	w.missions[m.ID] = m
	w.emit(protocol.MissionAcceptedEvent{Tick: now, MissionID: m.ID, Template: templateID})
	return nil
}

func (w *World) missionsSorted() []*MissionState {
	ids := make([]string, 0, len(w.missions))
	for id := range w.missions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*MissionState, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.missions[id])
	}
	return out
}

// progressKillMissions credits a pilot kill against every running KILL
// mission whose faction filter matches the victim.
func (w *World) progressKillMissions(victim *Ship) {
	for _, m := range w.missionsSorted() {
		tpl, ok := w.missionTemplate(m)
		if !ok || tpl.Kind != catalogs.MissionKill {
			continue
		}
		if tpl.Target != "" && tpl.Target != victim.Faction {
			continue
		}
		m.Progress++
		w.maybeCompleteMission(m, tpl)
	}
}

// progressMineMissions credits pilot mining yield, in whole volume units.
func (w *World) progressMineMissions(item string, amount float64) {
	for _, m := range w.missionsSorted() {
		tpl, ok := w.missionTemplate(m)
		if !ok || tpl.Kind != catalogs.MissionMine {
			continue
		}
		if tpl.Item != "" && tpl.Item != item {
			continue
		}
		m.Progress += int(amount)
		w.maybeCompleteMission(m, tpl)
	}
}

// DeliverCargo hands mission cargo over at the station.
func (w *World) DeliverCargo(s *Ship, item string, amount float64) error {
	if Dist(s.Pos, w.stationPos()) > arriveTolerance*4 {
		return ErrOutOfRange
	}
	if !s.RemoveCargo(item, amount) {
		return ErrCapacityExceeded
	}
	w.emit(protocol.CargoUpdatedEvent{Tick: w.tick.Load(), ShipID: s.ID, Item: item, Delta: -amount, Used: s.CargoUsed()})
	for _, m := range w.missionsSorted() {
		tpl, ok := w.missionTemplate(m)
		if !ok || tpl.Kind != catalogs.MissionDeliver {
			continue
		}
		if tpl.Item != "" && tpl.Item != item {
			continue
		}
		m.Progress += int(amount)
		w.maybeCompleteMission(m, tpl)
	}
	return nil
}

// stepMissions expires overdue instances and accrues the passive kinds:
// VISIT completes on presence, ESCORT accrues a tick per tick spent in the
// target sector.
func (w *World) stepMissions() {
	now := w.tick.Load()
	for _, m := range w.missionsSorted() {
		tpl, ok := w.missionTemplate(m)
		if !ok {
			delete(w.missions, m.ID)
			continue
		}
		if m.ExpiresTick > 0 && now >= m.ExpiresTick {
			delete(w.missions, m.ID)
			w.emit(protocol.MissionExpiredEvent{Tick: now, MissionID: m.ID})
			continue
		}
		switch tpl.Kind {
		case catalogs.MissionVisit:
			if tpl.Target == w.sectorID {
				m.Progress = tpl.Required
				w.maybeCompleteMission(m, tpl)
			}
		case catalogs.MissionEscort:
			if tpl.Target == w.sectorID {
				m.Progress++
				w.maybeCompleteMission(m, tpl)
			}
		}
	}
}

func (w *World) maybeCompleteMission(m *MissionState, tpl catalogs.MissionTemplate) {
	if m.Progress < tpl.Required {
		return
	}
	if _, live := w.missions[m.ID]; !live {
		return
	}
	delete(w.missions, m.ID)
	w.credits += tpl.Credits
	if tpl.Faction != "" {
		w.standing[tpl.Faction] += tpl.Standing
	}
	w.emit(protocol.MissionCompletedEvent{
		Tick:      w.tick.Load(),
		MissionID: m.ID,
		Credits:   tpl.Credits,
		Faction:   tpl.Faction,
		Standing:  tpl.Standing,
	})
}
