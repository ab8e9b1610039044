package world

import (
	"encoding/json"
	"hash/fnv"
	"time"

	"voidrift.gg/internal/protocol"
)

// stepInternal is the whole tick. System order is fixed: sessions and
// commands first, then AI decisions over the previous tick's state, then
// module cycles, movement, the destruction sweep, the spawners and the
// galaxy ledgers, and finally observation, logging and metrics.
func (w *World) stepInternal(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	w.events = w.events[:0]

	for _, id := range leaves {
		w.handleLeave(id)
	}
	for _, req := range joins {
		resp := w.joinPilot(req.Name, req.ShipClass, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
	}

	// Commands apply in server receive order.
	for _, env := range actions {
		s := w.liveShip(env.ShipID)
		if s == nil || s.ID != w.playerID {
			continue
		}
		w.applyAct(s, env.Act, nowTick)
	}

	w.systemDecisions(nowTick)
	w.applyAuras()

	dt := 1.0 / float64(w.tune.TickRateHz)
	for _, s := range w.shipsSorted() {
		if s.Destroyed {
			continue
		}
		w.tickModules(s, dt)
	}
	w.systemDrones(dt)
	for _, s := range w.shipsSorted() {
		s.updateMovement(dt, nowTick, w.propulsionFactor(s))
	}

	w.sweepDestroyed()

	w.stepRaids()
	w.stepBounty()
	w.stepWar()
	w.stepMissions()
	w.stepJobs()

	w.sendObs(nowTick)

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:   nowTick,
			Sector: w.sectorID,
			Acts:   actions,
			Events: encodeEventsForLog(w.events),
			Digest: digest,
		})
	}

	if w.snapshotSink != nil && nowTick != 0 && w.tune.SnapshotEveryTicks > 0 {
		if nowTick%uint64(w.tune.SnapshotEveryTicks) == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop the snapshot if the sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.lastMetrics.Store(Metrics{
		Tick:      nextTick,
		Sector:    w.sectorID,
		Ships:     len(w.ships),
		Asteroids: len(w.asteroids),
		Wrecks:    len(w.wrecks),
		Missions:  len(w.missions),
		Jobs:      len(w.jobs),
		Credits:   w.credits,
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS: stepMS,
	})
}

// systemDecisions runs the NPC controllers. Decisions are staggered: each
// ship thinks once every DecisionEveryTicks, on a phase derived from its
// id, and observes the state the previous systems left behind.
func (w *World) systemDecisions(nowTick uint64) {
	every := uint64(w.tune.DecisionEveryTicks)
	if every == 0 {
		every = 1
	}
	for _, s := range w.shipsSorted() {
		if s.Destroyed || s.Role == RolePlayer {
			continue
		}
		if (nowTick+decisionPhase(s.ID))%every != 0 {
			continue
		}
		switch s.Role {
		case RoleMiner:
			w.decideMiner(s)
		case RoleSecurity, RolePirate, RoleBounty, RoleFlagship:
			w.decideCombat(s)
		case RoleFleet:
			w.decideFleet(s)
		}
	}
}

func decisionPhase(id string) uint64 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return uint64(h.Sum32())
}

const droneDPS = 2.5

// systemDrones applies the passive damage of deployed drone flights to
// their carrier's locked target.
func (w *World) systemDrones(dt float64) {
	for _, s := range w.shipsSorted() {
		if s.Destroyed {
			continue
		}
		n := s.DronesDeployed()
		if n == 0 {
			continue
		}
		t := w.liveShip(s.TargetID)
		if t == nil || (!w.hostileTo(s, t) && !w.hostileTo(t, s)) {
			continue
		}
		if Dist(s.Pos, t.Pos) > 400 {
			continue
		}
		w.applyDamage(t, droneDPS*float64(n)*s.AuraDamage*dt, s.ID)
	}
}

func encodeEventsForLog(evs []protocol.Event) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(evs))
	for _, e := range evs {
		b, err := json.Marshal(e)
		if err != nil {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal(b, &m); err != nil {
			continue
		}
		m["type"] = e.EventKind()
		out = append(out, m)
	}
	return out
}
