package world

import (
	"testing"

	"voidrift.gg/internal/sim/catalogs"
	"voidrift.gg/internal/sim/tuning"
)

// newTestWorld builds a world on the repo's real content drop so tests
// exercise the same catalogs the server runs.
func newTestWorld(t *testing.T, sector string, seed int64) *World {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	w, err := NewWorld(WorldConfig{
		GalaxyID:    "test",
		StartSector: sector,
		Seed:        seed,
	}, cats, tuning.Defaults())
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

// joinTestPilot attaches a pilot session directly, bypassing the loop.
func joinTestPilot(t *testing.T, w *World, class string) *Ship {
	t.Helper()
	out := make(chan []byte, 8)
	resp := w.joinPilot("test-pilot", class, out)
	if resp.Err != nil {
		t.Fatalf("join: %v", resp.Err)
	}
	s := w.ships[resp.Welcome.ShipID]
	if s == nil {
		t.Fatalf("player ship missing after join")
	}
	return s
}

// spawnTestShip drops a bare hull into the world for combat scenarios.
func spawnTestShip(w *World, class, faction string, hostility Hostility, role Role, pos Vec2) *Ship {
	def := w.cats.Ships.ByID[class]
	s := NewShip(w.nextShipID(), def, faction, hostility, role, pos)
	s.AI.Home = pos
	s.AI.PatrolAnchor = pos
	w.ships[s.ID] = s
	return s
}

func testShipDef() catalogs.ShipClassDef {
	return catalogs.ShipClassDef{
		ID:             "test_hull",
		Name:           "Test Hull",
		ShieldMax:      50,
		ArmorMax:       30,
		HullMax:        20,
		CapacitorMax:   100,
		CapacitorRegen: 5,
		MaxSpeed:       200,
		Accel:          50,
		TurnRate:       2,
		CargoCapacity:  100,
		HighSlots:      2,
		MidSlots:       2,
		LowSlots:       1,
	}
}
