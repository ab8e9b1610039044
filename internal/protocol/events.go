package protocol

import "encoding/json"

// Event is the closed set of simulation event variants. Every consumer
// switches on the concrete type; nothing in the core depends on whether a
// listener is attached. The wire form is the struct's fields plus an
// injected "type" discriminator.
type Event interface {
	EventKind() string
}

// Event kinds.
const (
	KindCmdResult         = "CMD_RESULT"
	KindDamage            = "DAMAGE"
	KindDestroyed         = "DESTROYED"
	KindModuleActivated   = "MODULE_ACTIVATED"
	KindModuleDeactivated = "MODULE_DEACTIVATED"
	KindCargoUpdated      = "CARGO_UPDATED"
	KindMiningCycle       = "MINING_CYCLE"
	KindWarp              = "WARP"
	KindAlert             = "ALERT"
	KindRaid              = "RAID"
	KindBountyAccepted    = "BOUNTY_ACCEPTED"
	KindBountySpawned     = "BOUNTY_SPAWNED"
	KindBountyCompleted   = "BOUNTY_COMPLETED"
	KindMissionAccepted   = "MISSION_ACCEPTED"
	KindMissionCompleted  = "MISSION_COMPLETED"
	KindMissionExpired    = "MISSION_EXPIRED"
	KindWarShift          = "WAR_SHIFT"
	KindWarVictory        = "WAR_VICTORY"
	KindJobStarted        = "JOB_STARTED"
	KindJobCompleted      = "JOB_COMPLETED"
	KindJobCanceled       = "JOB_CANCELED"
	KindLoot              = "LOOT"
)

// CmdResultEvent acknowledges one command from an ACT message.
type CmdResultEvent struct {
	Tick    uint64 `json:"t"`
	Ref     string `json:"ref"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (CmdResultEvent) EventKind() string { return KindCmdResult }

type DamageEvent struct {
	Tick   uint64  `json:"t"`
	Target string  `json:"target"`
	Source string  `json:"source,omitempty"`
	Amount float64 `json:"amount"`
	Layer  string  `json:"layer"` // "SHIELD","ARMOR","HULL"
}

func (DamageEvent) EventKind() string { return KindDamage }

type DestroyedEvent struct {
	Tick    uint64 `json:"t"`
	ShipID  string `json:"ship_id"`
	Class   string `json:"class,omitempty"`
	Faction string `json:"faction,omitempty"`
	Killer  string `json:"killer,omitempty"`
	Bounty  string `json:"bounty_id,omitempty"`
}

func (DestroyedEvent) EventKind() string { return KindDestroyed }

type ModuleActivatedEvent struct {
	Tick   uint64 `json:"t"`
	ShipID string `json:"ship_id"`
	Slot   string `json:"slot"`
	Module string `json:"module"`
}

func (ModuleActivatedEvent) EventKind() string { return KindModuleActivated }

type ModuleDeactivatedEvent struct {
	Tick   uint64 `json:"t"`
	ShipID string `json:"ship_id"`
	Slot   string `json:"slot"`
	Module string `json:"module"`
	Reason string `json:"reason,omitempty"`
}

func (ModuleDeactivatedEvent) EventKind() string { return KindModuleDeactivated }

type CargoUpdatedEvent struct {
	Tick   uint64  `json:"t"`
	ShipID string  `json:"ship_id"`
	Item   string  `json:"item"`
	Delta  float64 `json:"delta"`
	Used   float64 `json:"used"`
}

func (CargoUpdatedEvent) EventKind() string { return KindCargoUpdated }

type MiningCycleEvent struct {
	Tick       uint64  `json:"t"`
	ShipID     string  `json:"ship_id"`
	AsteroidID string  `json:"asteroid_id"`
	Item       string  `json:"item"`
	Amount     float64 `json:"amount"`
	Depleted   bool    `json:"depleted,omitempty"`
}

func (MiningCycleEvent) EventKind() string { return KindMiningCycle }

type WarpEvent struct {
	Tick   uint64 `json:"t"`
	ShipID string `json:"ship_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (WarpEvent) EventKind() string { return KindWarp }

// AlertEvent carries sector-level broadcast text for the UI/log layer.
type AlertEvent struct {
	Tick  uint64 `json:"t"`
	Level string `json:"level"` // "INFO","WARNING","DANGER"
	Text  string `json:"text"`
}

func (AlertEvent) EventKind() string { return KindAlert }

type RaidEvent struct {
	Tick     uint64 `json:"t"`
	SectorID string `json:"sector_id"`
	Count    int    `json:"count"`
	AnchorID string `json:"anchor_id,omitempty"`
}

func (RaidEvent) EventKind() string { return KindRaid }

type BountyAcceptedEvent struct {
	Tick     uint64 `json:"t"`
	TargetID string `json:"target_id"`
}

func (BountyAcceptedEvent) EventKind() string { return KindBountyAccepted }

type BountySpawnedEvent struct {
	Tick     uint64 `json:"t"`
	TargetID string `json:"target_id"`
	ShipID   string `json:"ship_id"`
	SectorID string `json:"sector_id"`
}

func (BountySpawnedEvent) EventKind() string { return KindBountySpawned }

type BountyCompletedEvent struct {
	Tick     uint64  `json:"t"`
	TargetID string  `json:"target_id"`
	Reward   float64 `json:"reward"`
}

func (BountyCompletedEvent) EventKind() string { return KindBountyCompleted }

type MissionAcceptedEvent struct {
	Tick      uint64 `json:"t"`
	MissionID string `json:"mission_id"`
	Template  string `json:"template"`
}

func (MissionAcceptedEvent) EventKind() string { return KindMissionAccepted }

type MissionCompletedEvent struct {
	Tick      uint64  `json:"t"`
	MissionID string  `json:"mission_id"`
	Credits   float64 `json:"credits"`
	Faction   string  `json:"faction,omitempty"`
	Standing  float64 `json:"standing,omitempty"`
}

func (MissionCompletedEvent) EventKind() string { return KindMissionCompleted }

type MissionExpiredEvent struct {
	Tick      uint64 `json:"t"`
	MissionID string `json:"mission_id"`
}

func (MissionExpiredEvent) EventKind() string { return KindMissionExpired }

type WarShiftEvent struct {
	Tick     uint64  `json:"t"`
	SectorID string  `json:"sector_id"`
	Faction  string  `json:"faction"`
	Points   float64 `json:"points"`
}

func (WarShiftEvent) EventKind() string { return KindWarShift }

type WarVictoryEvent struct {
	Tick      uint64 `json:"t"`
	Coalition string `json:"coalition"`
}

func (WarVictoryEvent) EventKind() string { return KindWarVictory }

type JobStartedEvent struct {
	Tick        uint64 `json:"t"`
	JobID       string `json:"job_id"`
	BlueprintID string `json:"blueprint_id"`
}

func (JobStartedEvent) EventKind() string { return KindJobStarted }

type JobCompletedEvent struct {
	Tick   uint64 `json:"t"`
	JobID  string `json:"job_id"`
	Output string `json:"output"`
	Count  int    `json:"count"`
}

func (JobCompletedEvent) EventKind() string { return KindJobCompleted }

type JobCanceledEvent struct {
	Tick  uint64 `json:"t"`
	JobID string `json:"job_id"`
}

func (JobCanceledEvent) EventKind() string { return KindJobCanceled }

type LootEvent struct {
	Tick   uint64  `json:"t"`
	ShipID string  `json:"ship_id"`
	Wreck  string  `json:"wreck_id"`
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

func (LootEvent) EventKind() string { return KindLoot }

// EncodeEvent renders the wire form: the event's own fields plus "type".
func EncodeEvent(e Event) (json.RawMessage, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	m["type"] = e.EventKind()
	return json.Marshal(m)
}

// EncodeEvents drops events that fail to encode rather than failing the batch.
func EncodeEvents(evs []Event) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(evs))
	for _, e := range evs {
		b, err := EncodeEvent(e)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}
