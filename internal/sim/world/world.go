package world

import (
	"fmt"
	"math/rand"
	"sort"
	"sync/atomic"

	"voidrift.gg/internal/persistence/snapshot"
	"voidrift.gg/internal/protocol"
	"voidrift.gg/internal/sim/catalogs"
	"voidrift.gg/internal/sim/tuning"
)

type WorldConfig struct {
	GalaxyID    string
	StartSector string
	Seed        int64
}

type JoinRequest struct {
	Name      string
	ShipClass string
	Out       chan []byte
	Resp      chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Err     error
}

type ActionEnvelope struct {
	ShipID string
	Act    protocol.ActMsg
}

// World is a single-threaded authoritative simulation of one sector plus
// the galaxy-level ledgers (bounty board, war fronts, missions, jobs).
// All state must be accessed only from the world loop goroutine; the
// channels are the only way in.
type World struct {
	cfg  WorldConfig
	cats *catalogs.Catalogs
	tune tuning.Tuning

	tick   atomic.Uint64
	rng    *rand.Rand
	rngSrc *rngSource

	sectorID  string
	ships     map[string]*Ship
	asteroids map[string]*Asteroid
	wrecks    map[string]*Wreck

	// The single pilot session.
	playerID string
	credits  float64
	standing map[string]float64
	client   *clientState

	bounty     *bountyLedger
	war        *warLedger
	missions   map[string]*MissionState
	jobs       map[string]*Job
	blueprints map[string]bool // blueprint ids the pilot may run

	// Per-tick event buffer, drained into the OBS frame and the tick log.
	events []protocol.Event

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	nextShipNum    atomic.Uint64
	nextWreckNum   atomic.Uint64
	nextMissionNum atomic.Uint64
	nextJobNum     atomic.Uint64

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger TickLogger

	// Optional snapshot sink (may be nil). Snapshot writing is off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	lastMetrics atomic.Value // Metrics
}

type clientState struct {
	shipID string
	out    chan []byte
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// TickLogEntry is one line of the append-only tick log.
type TickLogEntry struct {
	Tick   uint64                   `json:"tick"`
	Sector string                   `json:"sector"`
	Acts   []ActionEnvelope         `json:"acts,omitempty"`
	Events []map[string]interface{} `json:"events,omitempty"`
	Digest string                   `json:"digest,omitempty"`
}

type Asteroid struct {
	ID        string  `json:"id"`
	Pos       Vec2    `json:"pos"`
	Item      string  `json:"item"`
	Remaining float64 `json:"remaining"`
}

type Wreck struct {
	ID          string             `json:"id"`
	Pos         Vec2               `json:"pos"`
	Loot        map[string]float64 `json:"loot"`
	ExpiresTick uint64             `json:"expires_tick"`
}

func NewWorld(cfg WorldConfig, cats *catalogs.Catalogs, tune tuning.Tuning) (*World, error) {
	if cfg.StartSector == "" {
		return nil, fmt.Errorf("world: start sector required")
	}
	if _, ok := cats.Sectors.ByID[cfg.StartSector]; !ok {
		return nil, fmt.Errorf("world: unknown start sector %q", cfg.StartSector)
	}
	w := &World{
		cfg:  cfg,
		cats: cats,
		tune: tune,

		ships:     map[string]*Ship{},
		asteroids: map[string]*Asteroid{},
		wrecks:    map[string]*Wreck{},

		standing:   map[string]float64{},
		missions:   map[string]*MissionState{},
		jobs:       map[string]*Job{},
		blueprints: map[string]bool{},

		inbox: make(chan ActionEnvelope, 256),
		join:  make(chan JoinRequest, 4),
		leave: make(chan string, 4),
		stop:  make(chan struct{}),
	}
	w.rng, w.rngSrc = newRng(cfg.Seed)
	for id, bp := range cats.Blueprints.ByID {
		if bp.Starter {
			w.blueprints[id] = true
		}
	}
	w.bounty = newBountyLedger(cats, tune.Bounty)
	w.war = newWarLedger(cats, tune.War)
	w.enterSector(cfg.StartSector)
	return w, nil
}

func (w *World) Tick() uint64 { return w.tick.Load() }

func (w *World) SectorID() string { return w.sectorID }

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }

func (w *World) Join() chan<- JoinRequest { return w.join }

func (w *World) Leave() chan<- string { return w.leave }

func (w *World) secondsToTicks(sec float64) uint64 {
	if sec <= 0 {
		return 0
	}
	t := uint64(sec * float64(w.tune.TickRateHz))
	if t == 0 {
		t = 1
	}
	return t
}

func (w *World) nextShipID() string {
	return fmt.Sprintf("S%06d", w.nextShipNum.Add(1))
}

func (w *World) nextWreckID() string {
	return fmt.Sprintf("W%06d", w.nextWreckNum.Add(1))
}

// emit appends a typed event to the current tick's buffer.
func (w *World) emit(ev protocol.Event) {
	w.events = append(w.events, ev)
}

// liveShip resolves an id-based weak reference. Destroyed-but-unswept
// ships read as gone so controllers never shoot tombstones.
func (w *World) liveShip(id string) *Ship {
	s, ok := w.ships[id]
	if !ok || s.Destroyed {
		return nil
	}
	return s
}

// shipsSorted returns the live table in id order; every full iteration in
// the step goes through here so the tick stays deterministic for a seed.
func (w *World) shipsSorted() []*Ship {
	ids := make([]string, 0, len(w.ships))
	for id := range w.ships {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Ship, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.ships[id])
	}
	return out
}

// aggroRange is the detection radius for s, scaled by its faction's
// aggression rating. 0.5 is the neutral midpoint; timid factions watch a
// tighter bubble and feral ones a wider one.
func (w *World) aggroRange(s *Ship) float64 {
	r := w.tune.Behavior.SecurityAggroRange
	if f, ok := w.cats.Factions.ByID[s.Faction]; ok && f.Aggression > 0 {
		r *= 0.5 + f.Aggression
	}
	return r
}

// nearestHostile finds the closest live ship within r that s would shoot.
func (w *World) nearestHostile(s *Ship, r float64) *Ship {
	var best *Ship
	bestD := r
	for _, o := range w.shipsSorted() {
		if o.ID == s.ID || o.Destroyed {
			continue
		}
		if !w.hostileTo(s, o) {
			continue
		}
		d := Dist(s.Pos, o.Pos)
		if d <= bestD {
			best, bestD = o, d
		}
	}
	return best
}

// hostileTo is the one-directional threat relation: does a consider b a
// valid target.
func (w *World) hostileTo(a, b *Ship) bool {
	if a.Faction == b.Faction {
		return false
	}
	// Outlaw hulls (pirates, raiders, bounty targets) prey on anyone who
	// is not an outlaw themselves.
	if a.Hostility == Hostile {
		return b.Hostility != Hostile
	}
	switch a.Role {
	case RoleSecurity:
		return b.Hostility == Hostile
	case RoleMiner:
		return false
	}
	// Player-aligned hulls treat flagged-hostile factions and anything
	// already marked hostile as targets.
	if f, ok := w.cats.Factions.ByID[b.Faction]; ok && f.Hostile {
		return true
	}
	return b.Hostility == Hostile
}

func (w *World) nearestAsteroid(pos Vec2, r float64) *Asteroid {
	ids := make([]string, 0, len(w.asteroids))
	for id := range w.asteroids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var best *Asteroid
	bestD := r
	for _, id := range ids {
		a := w.asteroids[id]
		if a.Remaining <= 0 {
			continue
		}
		d := Dist(pos, a.Pos)
		if d <= bestD {
			best, bestD = a, d
		}
	}
	return best
}

func (w *World) stationPos() Vec2 {
	def := w.cats.Sectors.ByID[w.sectorID]
	if def.StationPos == nil {
		return Vec2{}
	}
	return Vec2{X: def.StationPos[0], Y: def.StationPos[1]}
}

// creditOreDelivery empties a docked miner's hold into the sector economy.
// Deliveries feed the faction's war effort in contested space.
func (w *World) creditOreDelivery(s *Ship) {
	total := s.CargoUsed()
	if total <= 0 {
		return
	}
	s.Cargo = map[string]float64{}
	def := w.cats.Sectors.ByID[w.sectorID]
	if def.Contested {
		w.war.addPoints(w.sectorID, w.coalitionOf(s.Faction), total*0.01)
	}
}

func (w *World) coalitionOf(faction string) string {
	if f, ok := w.cats.Factions.ByID[faction]; ok && f.Coalition != "" {
		return f.Coalition
	}
	return faction
}
