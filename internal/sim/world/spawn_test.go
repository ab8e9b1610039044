package world

import "testing"

// raidTuned makes the next interval tick raid with certainty.
func raidTuned(w *World) {
	w.tune.Raid.IntervalTicks = 10
	w.tune.Raid.BaseChance = 1
	w.tune.Raid.ChancePerDiff = 0
	w.tune.Raid.MaxShips = 3
}

func TestStepRaids_RingsALiveMinerAndPreTargets(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	raidTuned(w)

	before := map[string]bool{}
	for id := range w.ships {
		before[id] = true
	}

	w.tick.Store(10)
	w.stepRaids()

	var raiders []*Ship
	for _, s := range w.shipsSorted() {
		if !before[s.ID] {
			raiders = append(raiders, s)
		}
	}
	if len(raiders) == 0 || len(raiders) > w.tune.Raid.MaxShips {
		t.Fatalf("raiders = %d", len(raiders))
	}

	prey := w.liveShip(raiders[0].AI.TargetID)
	if prey == nil || prey.Role != RoleMiner {
		t.Fatalf("raid anchor is not a live miner: %v", prey)
	}
	var flag *Ship
	for _, r := range raiders {
		if r.Hostility != Hostile {
			t.Fatalf("%s spawned %s", r.ID, r.Hostility)
		}
		if r.AI.TargetID != prey.ID || r.TargetID != prey.ID {
			t.Fatalf("%s not pre-locked on %s: %s / %s", r.ID, prey.ID, r.AI.TargetID, r.TargetID)
		}
		if d := Dist(r.Pos, prey.Pos); !almostEq(d, w.tune.Raid.RingRadius) {
			t.Fatalf("%s at ring distance %.3f, want %.3f", r.ID, d, w.tune.Raid.RingRadius)
		}
		if r.Role == RoleFlagship {
			flag = r
		}
	}
	if flag == nil {
		t.Fatalf("raid spawned no flagship")
	}
	for _, r := range raiders {
		if r.ID != flag.ID && r.AI.LeaderID != flag.ID {
			t.Fatalf("escort %s follows %q, want %s", r.ID, r.AI.LeaderID, flag.ID)
		}
	}
}

func TestStepRaids_SkipsWhenNoMinersLeft(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	raidTuned(w)

	for _, s := range w.shipsSorted() {
		if s.Role == RoleMiner {
			s.Destroyed = true
		}
	}
	w.sweepDestroyed()
	count := len(w.ships)

	w.tick.Store(10)
	w.stepRaids()
	if len(w.ships) != count {
		t.Fatalf("raid spawned with no miners: %d -> %d ships", count, len(w.ships))
	}
}
