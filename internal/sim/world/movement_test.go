package world

import (
	"math"
	"testing"
)

func TestEffectiveMaxSpeed_ModifiersCompose(t *testing.T) {
	s := NewShip("S1", testShipDef(), "fac", Neutral, RolePlayer, Vec2{})
	s.WebFactor = 0.4
	s.WebUntilTick = 100
	s.AuraSpeed = 1.1
	s.Power = PowerEngines

	want := 200 * 1.5 * 0.4 * 1.1 * 1.15
	if got := s.effectiveMaxSpeed(1.5, 50); !almostEq(got, want) {
		t.Fatalf("eff = %v, want %v", got, want)
	}
	// Web expired: the factor drops out, the rest stay.
	want = 200 * 1.5 * 1.1 * 1.15
	if got := s.effectiveMaxSpeed(1.5, 100); !almostEq(got, want) {
		t.Fatalf("eff after web = %v, want %v", got, want)
	}
}

func TestUpdateMovement_AcceleratesTowardDesired(t *testing.T) {
	s := NewShip("S1", testShipDef(), "fac", Neutral, RolePlayer, Vec2{})
	s.SetDestination(Vec2{X: 10000})

	if s.DesiredSpeed != s.BaseMaxSpeed {
		t.Fatalf("desired = %v", s.DesiredSpeed)
	}
	s.updateMovement(1, 0, 1)
	if !almostEq(s.Speed, 50) { // one second of accel
		t.Fatalf("speed = %v", s.Speed)
	}
	for i := 0; i < 10; i++ {
		s.updateMovement(1, 0, 1)
	}
	if s.Speed != 200 {
		t.Fatalf("cruise speed = %v", s.Speed)
	}
	if s.Pos.X <= 0 {
		t.Fatalf("no forward motion: %v", s.Pos)
	}
}

func TestUpdateMovement_ArrivalStops(t *testing.T) {
	s := NewShip("S1", testShipDef(), "fac", Neutral, RolePlayer, Vec2{})
	s.SetDestination(Vec2{X: 3})

	s.updateMovement(0.1, 0, 1)
	if s.Dest != nil {
		t.Fatalf("destination survived arrival")
	}
	if s.DesiredSpeed != 0 {
		t.Fatalf("desired speed = %v", s.DesiredSpeed)
	}
}

func TestUpdateMovement_BrakesOnApproachWithoutLosingThrottle(t *testing.T) {
	s := NewShip("S1", testShipDef(), "fac", Neutral, RolePlayer, Vec2{})
	s.Speed = 200
	s.DesiredSpeed = 200
	s.Heading = 0
	s.DesiredHeading = 0
	s.SetDestination(Vec2{X: 40})

	s.updateMovement(0.1, 0, 1)
	// Approach braking sheds speed at double the acceleration rate...
	if !almostEq(s.Speed, 190) {
		t.Fatalf("no braking: speed = %v", s.Speed)
	}
	// ...but the throttle setting itself is untouched, so a new far
	// destination resumes at full speed.
	if s.DesiredSpeed != 200 {
		t.Fatalf("braking clobbered desired speed: %v", s.DesiredSpeed)
	}
}

func TestUpdateMovement_DestroyedShipsHold(t *testing.T) {
	s := NewShip("S1", testShipDef(), "fac", Neutral, RolePlayer, Vec2{})
	s.Speed = 100
	s.Destroyed = true
	pos := s.Pos
	s.updateMovement(1, 0, 1)
	if s.Pos != pos {
		t.Fatalf("tombstone moved")
	}
}

func TestTurnToward_ShortWayAround(t *testing.T) {
	// From just below +pi to just above -pi is a short hop across the seam.
	got := turnToward(math.Pi-0.1, -math.Pi+0.1, 0.5)
	if math.Abs(normalizeAngle(got-(-math.Pi+0.1))) > 1e-9 {
		t.Fatalf("turn = %v", got)
	}
	// Rate-limited turns move by at most maxDelta.
	got = turnToward(0, math.Pi/2, 0.3)
	if !almostEq(got, 0.3) {
		t.Fatalf("limited turn = %v", got)
	}
}
