package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version  int    `json:"version"`
	GalaxyID string `json:"galaxy_id"`
	Tick     uint64 `json:"tick"`
}

// SnapshotV1 is the complete resumable state of one galaxy: the live
// sector's entities plus the galaxy ledgers. Catalogs and tuning are not
// embedded; their digests pin the content drop a snapshot belongs to.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed               int64  `json:"seed"`
	RngState           uint64 `json:"rng_state,omitempty"`
	TickRate           int    `json:"tick_rate_hz"`
	DecisionEveryTicks int    `json:"decision_every_ticks"`
	SectorID           string `json:"sector_id"`

	CatalogDigests map[string]string `json:"catalog_digests,omitempty"`

	PlayerID   string             `json:"player_id,omitempty"`
	Credits    float64            `json:"credits"`
	Standing   map[string]float64 `json:"standing,omitempty"`
	Blueprints []string           `json:"blueprints,omitempty"`

	Ships     []ShipV1     `json:"ships"`
	Asteroids []AsteroidV1 `json:"asteroids"`
	Wrecks    []WreckV1    `json:"wrecks,omitempty"`

	Bounties []BountyV1  `json:"bounties"`
	War      []WarRowV1  `json:"war,omitempty"`
	Missions []MissionV1 `json:"missions,omitempty"`
	Jobs     []JobV1     `json:"jobs,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type CountersV1 struct {
	NextShip    uint64 `json:"next_ship"`
	NextWreck   uint64 `json:"next_wreck"`
	NextMission uint64 `json:"next_mission"`
	NextJob     uint64 `json:"next_job"`
}

type ShipV1 struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Class     string `json:"class"`
	Faction   string `json:"faction,omitempty"`
	Hostility string `json:"hostility"`
	Role      string `json:"role"`
	BountyID  string `json:"bounty_id,omitempty"`

	Shield    [2]float64 `json:"shield"`
	Armor     [2]float64 `json:"armor"`
	Hull      [2]float64 `json:"hull"`
	Capacitor [2]float64 `json:"capacitor"`

	Pos            [2]float64  `json:"pos"`
	Heading        float64     `json:"heading"`
	DesiredHeading float64     `json:"desired_heading"`
	Speed          float64     `json:"speed"`
	DesiredSpeed   float64     `json:"desired_speed"`
	Dest           *[2]float64 `json:"dest,omitempty"`

	Fittings  map[string]string  `json:"fittings,omitempty"`
	Active    map[string]bool    `json:"active,omitempty"`
	Cooldowns map[string]float64 `json:"cooldowns,omitempty"`

	WebFactor    float64 `json:"web_factor,omitempty"`
	WebUntilTick uint64  `json:"web_until_tick,omitempty"`
	Power        string  `json:"power"`
	StatBoost    float64 `json:"stat_boost,omitempty"`
	TargetID     string  `json:"target_id,omitempty"`

	Cargo  map[string]float64 `json:"cargo,omitempty"`
	Drones []DroneV1          `json:"drones,omitempty"`
	Hangar []string           `json:"hangar,omitempty"`

	AI AIStateV1 `json:"ai"`
}

type DroneV1 struct {
	Type     string  `json:"type"`
	HP       float64 `json:"hp"`
	Deployed bool    `json:"deployed,omitempty"`
}

type AIStateV1 struct {
	State            string     `json:"state,omitempty"`
	TargetID         string     `json:"target_id,omitempty"`
	PatrolAnchor     [2]float64 `json:"patrol_anchor"`
	Home             [2]float64 `json:"home"`
	ChaseStartTick   uint64     `json:"chase_start_tick,omitempty"`
	InterceptReadyAt uint64     `json:"intercept_ready_at,omitempty"`
	DockedUntilTick  uint64     `json:"docked_until_tick,omitempty"`
	LeaderID         string     `json:"leader_id,omitempty"`
	HoldPos          [2]float64 `json:"hold_pos"`
	Order            string     `json:"order,omitempty"`
}

type AsteroidV1 struct {
	ID        string     `json:"id"`
	Pos       [2]float64 `json:"pos"`
	Item      string     `json:"item"`
	Remaining float64    `json:"remaining"`
}

type WreckV1 struct {
	ID          string             `json:"id"`
	Pos         [2]float64         `json:"pos"`
	Loot        map[string]float64 `json:"loot,omitempty"`
	ExpiresTick uint64             `json:"expires_tick"`
}

type BountyV1 struct {
	TargetID      string `json:"target_id"`
	Status        string `json:"status"`
	Sector        string `json:"sector,omitempty"`
	SpawnedShipID string `json:"spawned_ship_id,omitempty"`
	Paid          bool   `json:"paid,omitempty"`
	CooldownUntil uint64 `json:"cooldown_until,omitempty"`
	NextWalkTick  uint64 `json:"next_walk_tick,omitempty"`
}

type WarRowV1 struct {
	SectorID  string  `json:"sector_id"`
	Coalition string  `json:"coalition"`
	Points    float64 `json:"points"`
}

type MissionV1 struct {
	ID          string `json:"id"`
	TemplateID  string `json:"template_id"`
	Progress    int    `json:"progress"`
	ExpiresTick uint64 `json:"expires_tick,omitempty"`
}

type JobV1 struct {
	ID          string `json:"id"`
	BlueprintID string `json:"blueprint_id"`
	StartTick   uint64 `json:"start_tick"`
	DoneTick    uint64 `json:"done_tick"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	// A plain-JSON header line first so tooling can identify a snapshot
	// without a gob decoder.
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Skip the header line; gob carries the header too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
