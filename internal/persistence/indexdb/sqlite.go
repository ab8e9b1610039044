package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voidrift.gg/internal/persistence/snapshot"
	"voidrift.gg/internal/sim/catalogs"
	"voidrift.gg/internal/sim/tuning"
	"voidrift.gg/internal/sim/world"
)

// SQLiteIndex is a secondary, queryable index over the append-only tick
// log and the snapshot directory. Writes go through a buffered channel and
// a single writer goroutine so the sim loop never blocks on the database.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick      uint64
	Path      string
	Seed      int64
	SectorID  string
	Ships     int
	Asteroids int
	Wrecks    int
	Missions  int
	Jobs      int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// High buffer: combat ticks emit bursts of events without
		// stalling the sim.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			sector TEXT NOT NULL,
			digest TEXT NOT NULL,
			acts INTEGER NOT NULL,
			events INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(type, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			sector TEXT NOT NULL,
			ships INTEGER NOT NULL,
			asteroids INTEGER NOT NULL,
			wrecks INTEGER NOT NULL,
			missions INTEGER NOT NULL,
			jobs INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
	})
	s.wg.Wait()
	return s.db.Close()
}

// WriteTick enqueues a tick entry; a full queue drops the entry rather
// than stalling the caller.
func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s.closed.Load() {
		return fmt.Errorf("indexdb closed")
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s.closed.Load() {
		return
	}
	row := snapshotRow{
		Tick:      snap.Header.Tick,
		Path:      path,
		Seed:      snap.Seed,
		SectorID:  snap.SectorID,
		Ships:     len(snap.Ships),
		Asteroids: len(snap.Asteroids),
		Wrecks:    len(snap.Wrecks),
		Missions:  len(snap.Missions),
		Jobs:      len(snap.Jobs),
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: row}:
	default:
	}
}

// UpsertCatalogs records the content drop the galaxy is running so a
// snapshot row can always be matched back to its catalogs.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	now := time.Now().UTC().Format(time.RFC3339)
	rows := []struct {
		name   string
		digest string
		file   string
	}{
		{"ships", cats.Ships.Digest, "ships.json"},
		{"modules", cats.Modules.Digest, "modules.json"},
		{"factions", cats.Factions.Digest, "factions.json"},
		{"sectors", cats.Sectors.Digest, "sectors.json"},
		{"bounties", cats.Bounties.Digest, "bounties.json"},
		{"missions", cats.Missions.Digest, "missions.json"},
		{"blueprints", cats.Blueprints.Digest, "blueprints.json"},
	}
	for _, r := range rows {
		raw, err := os.ReadFile(filepath.Join(configDir, r.file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(
			`INSERT INTO catalogs (name, digest, json, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET digest=excluded.digest, json=excluded.json, updated_at=excluded.updated_at;`,
			r.name, r.digest, string(raw), now,
		); err != nil {
			return err
		}
	}
	tb, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO meta (key, value) VALUES ('tuning', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
		string(tb),
	)
	return err
}

// QueueDepth is exported for the metrics endpoint.
func (s *SQLiteIndex) QueueDepth() int { return len(s.ch) }

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqTick:
			s.insertTick(r.tick)
		case reqSnapshot:
			s.insertSnapshot(r.snapshot)
		}
	}
}

func (s *SQLiteIndex) insertTick(entry world.TickLogEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = s.db.Exec(
		`INSERT OR REPLACE INTO ticks (tick, sector, digest, acts, events, raw_json) VALUES (?, ?, ?, ?, ?, ?);`,
		entry.Tick, entry.Sector, entry.Digest, len(entry.Acts), len(entry.Events), string(raw),
	)
	for i, ev := range entry.Events {
		evRaw, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		typ, _ := ev["type"].(string)
		_, _ = s.db.Exec(
			`INSERT OR REPLACE INTO events (tick, seq, type, raw_json) VALUES (?, ?, ?, ?);`,
			entry.Tick, i, typ, string(evRaw),
		)
	}
}

func (s *SQLiteIndex) insertSnapshot(row snapshotRow) {
	_, _ = s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (tick, path, seed, sector, ships, asteroids, wrecks, missions, jobs, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		row.Tick, row.Path, row.Seed, row.SectorID,
		row.Ships, row.Asteroids, row.Wrecks, row.Missions, row.Jobs,
		time.Now().UTC().Format(time.RFC3339),
	)
}
