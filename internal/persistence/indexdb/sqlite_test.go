package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"voidrift.gg/internal/persistence/snapshot"
	"voidrift.gg/internal/sim/world"
)

func openTestIndex(t *testing.T) (*SQLiteIndex, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return idx, path
}

func countRows(t *testing.T, path, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestWriteTick_CloseFlushesTheQueue(t *testing.T) {
	idx, path := openTestIndex(t)

	for tick := uint64(0); tick < 10; tick++ {
		err := idx.WriteTick(world.TickLogEntry{
			Tick:   tick,
			Sector: "sec_haven",
			Digest: "d",
			Events: []map[string]any{
				{"type": "DAMAGE", "t": tick},
				{"type": "ALERT", "t": tick},
			},
		})
		if err != nil {
			t.Fatalf("write tick %d: %v", tick, err)
		}
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if n := countRows(t, path, "ticks"); n != 10 {
		t.Fatalf("ticks = %d", n)
	}
	if n := countRows(t, path, "events"); n != 20 {
		t.Fatalf("events = %d", n)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM events WHERE type = 'DAMAGE'").Scan(&n); err != nil {
		t.Fatalf("typed query: %v", err)
	}
	if n != 10 {
		t.Fatalf("DAMAGE events = %d", n)
	}
}

func TestWriteTick_AfterCloseFails(t *testing.T) {
	idx, _ := openTestIndex(t)
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := idx.WriteTick(world.TickLogEntry{Tick: 1}); err == nil {
		t.Fatalf("write accepted after close")
	}
}

func TestRecordSnapshot_RowMatchesSummary(t *testing.T) {
	idx, path := openTestIndex(t)
	idx.RecordSnapshot("/data/snap-000003000.bin.zst", snapshot.SnapshotV1{
		Header:   snapshot.Header{Version: 1, GalaxyID: "g1", Tick: 3000},
		Seed:     42,
		SectorID: "sec_drift",
		Ships:    []snapshot.ShipV1{{ID: "S1"}, {ID: "S2"}},
		Asteroids: []snapshot.AsteroidV1{
			{ID: "A1"}, {ID: "A2"}, {ID: "A3"},
		},
		Missions: []snapshot.MissionV1{{ID: "M1"}},
	})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var (
		sector                     string
		seed                       int64
		ships, asteroids, missions int
	)
	err = db.QueryRow("SELECT sector, seed, ships, asteroids, missions FROM snapshots WHERE tick = 3000").
		Scan(&sector, &seed, &ships, &asteroids, &missions)
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if sector != "sec_drift" || seed != 42 || ships != 2 || asteroids != 3 || missions != 1 {
		t.Fatalf("row = %s %d %d %d %d", sector, seed, ships, asteroids, missions)
	}
}
