package world

import "testing"

func TestBountyLedger_AcceptOnlyFromBoard(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	l := w.bounty

	if err := l.accept("no_such_target"); err != ErrNoTarget {
		t.Fatalf("missing target err = %v", err)
	}
	if err := l.accept("bty_redmaw"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// Double accept is a transition conflict, not a no-op.
	if err := l.accept("bty_redmaw"); err != ErrInvalidTransition {
		t.Fatalf("double accept err = %v", err)
	}
}

func TestBountyLedger_ExactlyOneState(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	l := w.bounty

	check := func(stage string) {
		t.Helper()
		for _, id := range l.sortedIDs() {
			switch l.entries[id].Status {
			case BountyBoard, BountyActive, BountyCooldown:
			default:
				t.Fatalf("%s: %s in state %q", stage, id, l.entries[id].Status)
			}
		}
	}

	check("initial")
	l.accept("bty_hexis")
	check("accepted")
	l.onTargetKilled("bty_hexis", 100)
	check("killed")
	l.step(100+uint64(l.tune.RespawnTicks), w.rng)
	check("relisted")
	if l.entries["bty_hexis"].Status != BountyBoard {
		t.Fatalf("cooldown did not relist: %s", l.entries["bty_hexis"].Status)
	}
}

func TestBountyLedger_PaysExactlyOnce(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	l := w.bounty

	// Kills on the board or in cooldown pay nothing.
	if got := l.onTargetKilled("bty_redmaw", 10); got != 0 {
		t.Fatalf("board kill paid %v", got)
	}
	l.accept("bty_redmaw")
	if got := l.onTargetKilled("bty_redmaw", 10); got != 2500 {
		t.Fatalf("first kill paid %v, want 2500", got)
	}
	if got := l.onTargetKilled("bty_redmaw", 11); got != 0 {
		t.Fatalf("second kill paid %v", got)
	}
	if e := l.entries["bty_redmaw"]; e.Status != BountyCooldown || !e.Paid {
		t.Fatalf("entry = %+v", e)
	}
}

func TestStepBounty_SpawnsActiveTargetInSector(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	joinTestPilot(t, w, "ship_wasp")
	w.tune.Bounty.SpawnBaseChance = 2 // force the roll
	w.tune.Bounty.SpawnTierFalloff = 0

	if err := w.AcceptBounty("bty_redmaw"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	w.stepBounty()

	e := w.bounty.entries["bty_redmaw"]
	if e.SpawnedShipID == "" {
		t.Fatalf("no hull spawned for active bounty lurking here")
	}
	s := w.ships[e.SpawnedShipID]
	if s == nil || s.BountyID != "bty_redmaw" || s.Hostility != Hostile || s.Role != RoleBounty {
		t.Fatalf("spawned hull = %+v", s)
	}
	// Redmaw boosts 1.3 on a talon hull.
	if s.Shield.Max != 150*1.3 {
		t.Fatalf("boosted shield max = %v", s.Shield.Max)
	}

	// Pinned targets do not double-spawn.
	w.stepBounty()
	n := 0
	for _, o := range w.ships {
		if o.BountyID == "bty_redmaw" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("%d hulls for one bounty", n)
	}
}

func TestBountyKill_CreditsPilotOnce(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	w.tune.Bounty.SpawnBaseChance = 2
	w.tune.Bounty.SpawnTierFalloff = 0

	if err := w.AcceptBounty("bty_redmaw"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	w.stepBounty()
	target := w.ships[w.bounty.entries["bty_redmaw"].SpawnedShipID]

	credits0 := w.credits
	w.applyDamage(target, 1e6, p.ID)
	if !target.Destroyed {
		t.Fatalf("target survived")
	}
	if w.credits != credits0+2500 {
		t.Fatalf("credits = %v, want +2500", w.credits)
	}
	// The destruction path cannot pay twice.
	w.onDestroyed(target, p.ID)
	if w.credits != credits0+2500 {
		t.Fatalf("double payout: credits = %v", w.credits)
	}
}

func TestReleaseBountyShip_UnpinsWithoutPaying(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	joinTestPilot(t, w, "ship_wasp")
	w.tune.Bounty.SpawnBaseChance = 2
	w.tune.Bounty.SpawnTierFalloff = 0

	w.AcceptBounty("bty_redmaw")
	w.stepBounty()
	e := w.bounty.entries["bty_redmaw"]
	s := w.ships[e.SpawnedShipID]

	w.releaseBountyShip(s)
	if e.SpawnedShipID != "" {
		t.Fatalf("still pinned")
	}
	if e.Status != BountyActive || e.Paid {
		t.Fatalf("despawn changed the ledger: %+v", e)
	}
}
