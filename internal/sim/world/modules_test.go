package world

import (
	"testing"
)

func TestActivateModule_ValidationOrder(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	weapon := SlotRef{SlotHigh, 0}

	// Unfitted slot.
	if err := w.ActivateModule(p, SlotRef{SlotHigh, 1}); err != ErrEmptySlot {
		t.Fatalf("empty slot err = %v", err)
	}
	// Out-of-bounds index.
	if err := w.ActivateModule(p, SlotRef{SlotLow, 5}); err != ErrEmptySlot {
		t.Fatalf("bad index err = %v", err)
	}
	// Cooldown outranks capacitor and target checks.
	p.Cooldowns[weapon] = 2
	p.Capacitor.Cur = 0
	if err := w.ActivateModule(p, weapon); err != ErrOnCooldown {
		t.Fatalf("cooldown err = %v", err)
	}
	// Capacitor outranks target.
	p.Cooldowns[weapon] = 0
	if err := w.ActivateModule(p, weapon); err != ErrInsufficientCapacitor {
		t.Fatalf("capacitor err = %v", err)
	}
	// Target is the last gate.
	p.Capacitor.Cur = p.Capacitor.Max
	p.TargetID = ""
	if err := w.ActivateModule(p, weapon); err != ErrNoTarget {
		t.Fatalf("target err = %v", err)
	}
}

func TestActivateModule_WeaponFiresAndCycles(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	enemy := spawnTestShip(w, "ship_talon", "fac_scourge", Hostile, RolePirate, p.Pos.Add(Vec2{X: 50}))
	p.TargetID = enemy.ID
	weapon := SlotRef{SlotHigh, 0}

	shield0 := enemy.Shield.Cur
	if err := w.ActivateModule(p, weapon); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !p.Active[weapon] {
		t.Fatalf("slot not active after activation")
	}
	if p.Cooldowns[weapon] != 3 {
		t.Fatalf("cooldown = %v, want cycle time", p.Cooldowns[weapon])
	}
	afterFirst := enemy.Shield.Cur
	if afterFirst >= shield0 {
		t.Fatalf("first cycle did no damage")
	}

	// A cooldown crossing zero on an active slot fires the next cycle
	// without a new activation.
	w.tickModules(p, 3.0)
	if enemy.Shield.Cur >= afterFirst {
		t.Fatalf("second cycle did no damage")
	}
	if p.Cooldowns[weapon] != 3 {
		t.Fatalf("cooldown not rearmed: %v", p.Cooldowns[weapon])
	}
}

func TestActivateModule_WeaponOutOfRange(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	enemy := spawnTestShip(w, "ship_talon", "fac_scourge", Hostile, RolePirate, p.Pos.Add(Vec2{X: 5000}))
	p.TargetID = enemy.ID

	cap0 := p.Capacitor.Cur
	if err := w.ActivateModule(p, SlotRef{SlotHigh, 0}); err != ErrOutOfRange {
		t.Fatalf("err = %v", err)
	}
	if p.Active[SlotRef{SlotHigh, 0}] {
		t.Fatalf("failed activation left the slot active")
	}
	if p.Capacitor.Cur != cap0 {
		t.Fatalf("failed activation burned capacitor")
	}
}

func TestTickModules_DeactivatesWhenCycleCannotPay(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	enemy := spawnTestShip(w, "ship_talon", "fac_scourge", Hostile, RolePirate, p.Pos.Add(Vec2{X: 50}))
	p.TargetID = enemy.ID
	weapon := SlotRef{SlotHigh, 0}

	if err := w.ActivateModule(p, weapon); err != nil {
		t.Fatalf("activate: %v", err)
	}
	// Drain the capacitor so the re-fire cannot pay; regen is suppressed.
	p.Capacitor.Cur = 0
	p.CapRegen = 0
	w.tickModules(p, 3.0)
	if p.Active[weapon] {
		t.Fatalf("starved slot stayed active")
	}
}

func TestTickModules_DeactivatesWhenTargetGone(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	enemy := spawnTestShip(w, "ship_talon", "fac_scourge", Hostile, RolePirate, p.Pos.Add(Vec2{X: 50}))
	p.TargetID = enemy.ID
	weapon := SlotRef{SlotHigh, 0}

	if err := w.ActivateModule(p, weapon); err != nil {
		t.Fatalf("activate: %v", err)
	}
	enemy.Destroyed = true
	p.CapRegen = 0
	cap0 := p.Capacitor.Cur
	w.tickModules(p, 3.0)
	if p.Active[weapon] {
		t.Fatalf("slot stayed active with a dead target")
	}
	// The failed re-fire hands its reserved cost back.
	if p.Capacitor.Cur != cap0 {
		t.Fatalf("failed re-fire kept the reservation: %v -> %v", cap0, p.Capacitor.Cur)
	}
}

func TestPropulsionFactor_OnlyActiveSlotsCount(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")
	ab := SlotRef{SlotMid, 1} // afterburner in the default fit

	if f := w.propulsionFactor(p); f != 1 {
		t.Fatalf("idle factor = %v", f)
	}
	if err := w.ActivateModule(p, ab); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if f := w.propulsionFactor(p); f != 1.5 {
		t.Fatalf("active factor = %v", f)
	}
}

func TestPowerRouting_Factors(t *testing.T) {
	s := NewShip("S1", testShipDef(), "fac", Neutral, RolePlayer, Vec2{})
	cases := []struct {
		power  PowerRouting
		speed  float64
		damage float64
	}{
		{PowerBalanced, 1, 1},
		{PowerEngines, 1.15, 0.9},
		{PowerWeapons, 0.9, 1.15},
	}
	for _, c := range cases {
		s.Power = c.power
		if got := s.powerSpeedFactor(); got != c.speed {
			t.Errorf("%s speed = %v, want %v", c.power, got, c.speed)
		}
		if got := s.powerDamageFactor(); got != c.damage {
			t.Errorf("%s damage = %v, want %v", c.power, got, c.damage)
		}
	}
}

func TestFittedSlot_FindsByEffect(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	p := joinTestPilot(t, w, "ship_wasp")

	ref, ok := w.fittedSlot(p, "WEAPON")
	if !ok || ref != (SlotRef{SlotHigh, 0}) {
		t.Fatalf("weapon slot = %v ok = %v", ref, ok)
	}
	if _, ok := w.fittedSlot(p, "MICRO_WARP"); ok {
		t.Fatalf("found a micro-warp the wasp does not fit")
	}
}
