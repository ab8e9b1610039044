package world

import "testing"

func TestWarLedger_PointsAreBounded(t *testing.T) {
	w := newTestWorld(t, "sec_frontier", 1)
	l := w.war

	l.addPoints("sec_frontier", "FEDERATION", 1e6)
	if got := l.points["sec_frontier"]["FEDERATION"]; got != l.tune.MaxPoints {
		t.Fatalf("points = %v, want clamp at %v", got, l.tune.MaxPoints)
	}
	// Unknown sectors are ignored, not created.
	l.addPoints("sec_haven", "FEDERATION", 10)
	if _, ok := l.points["sec_haven"]; ok {
		t.Fatalf("uncontested sector entered the ledger")
	}
}

func TestWarLedger_ControlAndTies(t *testing.T) {
	w := newTestWorld(t, "sec_frontier", 1)
	l := w.war

	if got := l.control("sec_frontier"); got != "" {
		t.Fatalf("empty sector controlled by %q", got)
	}
	l.addPoints("sec_frontier", "FEDERATION", 10)
	if got := l.control("sec_frontier"); got != "FEDERATION" {
		t.Fatalf("control = %q", got)
	}
	l.addPoints("sec_frontier", "DOMINION", 10)
	if got := l.control("sec_frontier"); got != "" {
		t.Fatalf("tie controlled by %q", got)
	}
	l.addPoints("sec_frontier", "DOMINION", 5)
	if got := l.control("sec_frontier"); got != "DOMINION" {
		t.Fatalf("control = %q", got)
	}
}

func TestWarLedger_VictoryLatches(t *testing.T) {
	w := newTestWorld(t, "sec_frontier", 1)
	l := w.war

	if _, ok := l.checkVictory(); ok {
		t.Fatalf("victory with no points")
	}
	for _, sector := range l.sectors {
		l.addPoints(sector, "DOMINION", 50)
	}
	victor, ok := l.checkVictory()
	if !ok || victor != "DOMINION" {
		t.Fatalf("victor = %q ok = %v", victor, ok)
	}
	// Latched: the announcement never repeats.
	if _, ok := l.checkVictory(); ok {
		t.Fatalf("victory fired twice")
	}
}

func TestWarKillAndDelivery_FeedContestedFront(t *testing.T) {
	w := newTestWorld(t, "sec_frontier", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	pirate := spawnTestShip(w, "ship_talon", "fac_scourge", Hostile, RolePirate, p.Pos.Add(Vec2{X: 30}))

	w.applyDamage(pirate, 1e6, p.ID)
	// The pilot flies for the sector faction's coalition.
	if got := w.war.points["sec_frontier"]["DOMINION"]; got != w.tune.War.KillWeight {
		t.Fatalf("kill points = %v, want %v", got, w.tune.War.KillWeight)
	}

	miner := spawnTestShip(w, "ship_hauler", "fac_kessari", Neutral, RoleMiner, w.stationPos())
	miner.Cargo["ore_cryllium"] = 200
	w.creditOreDelivery(miner)
	want := w.tune.War.KillWeight + 200*0.01
	if got := w.war.points["sec_frontier"]["DOMINION"]; !almostEq(got, want) {
		t.Fatalf("delivery points = %v, want %v", got, want)
	}
	if miner.CargoUsed() != 0 {
		t.Fatalf("delivery left cargo aboard")
	}
}
