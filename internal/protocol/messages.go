package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PilotName       string `json:"pilot_name"`
	ShipClass       string `json:"ship_class,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ShipID          string         `json:"ship_id"`
	SectorID        string         `json:"sector_id"`
	Params          SimParams      `json:"params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type SimParams struct {
	TickRateHz        int    `json:"tick_rate_hz"`
	DecisionEveryTick int    `json:"decision_every_ticks"`
	Seed              int64  `json:"seed"`
	GalaxyID          string `json:"galaxy_id"`
}

type CatalogDigests struct {
	ShipsDigest      string `json:"ships_digest"`
	ModulesDigest    string `json:"modules_digest"`
	FactionsDigest   string `json:"factions_digest"`
	SectorsDigest    string `json:"sectors_digest"`
	BountiesDigest   string `json:"bounties_digest"`
	MissionsDigest   string `json:"missions_digest"`
	BlueprintsDigest string `json:"blueprints_digest"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Tick            uint64   `json:"tick"`
	ShipID          string   `json:"ship_id"`
	Cmds            []CmdReq `json:"cmds,omitempty"`
}

// Command types.
const (
	CmdSetDestination = "SET_DESTINATION"
	CmdSetSpeed       = "SET_SPEED"
	CmdLockTarget     = "LOCK_TARGET"
	CmdUnlockTarget   = "UNLOCK_TARGET"
	CmdActivate       = "ACTIVATE"
	CmdDeactivate     = "DEACTIVATE"
	CmdRoutePower     = "ROUTE_POWER"
	CmdWarp           = "WARP"
	CmdLaunchDrones   = "LAUNCH_DRONES"
	CmdRecallDrones   = "RECALL_DRONES"
	CmdLootWreck      = "LOOT_WRECK"
	CmdFleetOrder     = "FLEET_ORDER"
	CmdAcceptBounty   = "ACCEPT_BOUNTY"
	CmdAcceptMission  = "ACCEPT_MISSION"
	CmdStartJob       = "START_JOB"
	CmdCancelJob      = "CANCEL_JOB"
	CmdDeliverCargo   = "DELIVER_CARGO"
	CmdLaunchFleet    = "LAUNCH_FLEET"
	CmdDockFleet      = "DOCK_FLEET"
)

type CmdReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Dest  *[2]float64 `json:"dest,omitempty"`
	Speed float64     `json:"speed,omitempty"`

	Slot string `json:"slot,omitempty"` // e.g. "HIGH:0"

	TargetID string `json:"target_id,omitempty"`
	SectorID string `json:"sector_id,omitempty"`

	Power string `json:"power,omitempty"` // "BALANCED","ENGINES","WEAPONS"
	Order string `json:"order,omitempty"` // "FOLLOW","HOLD","DEFEND"
	Count int    `json:"count,omitempty"`

	Item   string  `json:"item,omitempty"`
	Amount float64 `json:"amount,omitempty"`

	BountyID    string `json:"bounty_id,omitempty"`
	MissionID   string `json:"mission_id,omitempty"`
	BlueprintID string `json:"blueprint_id,omitempty"`
	JobID       string `json:"job_id,omitempty"`
	WreckID     string `json:"wreck_id,omitempty"`
}

// OBS (server -> client)
type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	ShipID          string `json:"ship_id"`

	Sector   SectorObs         `json:"sector"`
	Self     SelfObs           `json:"self"`
	Entities []EntityObs       `json:"entities"`
	Events   []json.RawMessage `json:"events"`

	Credits     float64       `json:"credits"`
	BountyBoard []BountyObs   `json:"bounty_board,omitempty"`
	Bounties    []BountyObs   `json:"bounties,omitempty"`
	Missions    []MissionObs  `json:"missions,omitempty"`
	Jobs        []JobObs      `json:"jobs,omitempty"`
	War         []WarFrontObs `json:"war,omitempty"`
}

type SectorObs struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Difficulty int     `json:"difficulty"`
	Faction    string  `json:"faction,omitempty"`
	Security   float64 `json:"security"`
}

type SelfObs struct {
	Pos        [2]float64 `json:"pos"`
	Heading    float64    `json:"heading"`
	Speed      float64    `json:"speed"`
	MaxSpeed   float64    `json:"max_speed"`
	Shield     [2]float64 `json:"shield"` // current, max
	Armor      [2]float64 `json:"armor"`
	Hull       [2]float64 `json:"hull"`
	Capacitor  [2]float64 `json:"capacitor"`
	TargetID   string     `json:"target_id,omitempty"`
	Power      string     `json:"power"`
	CargoUsed  float64    `json:"cargo_used"`
	CargoMax   float64    `json:"cargo_max"`
	Cargo      []CargoObs `json:"cargo,omitempty"`
	Slots      []SlotObs  `json:"slots"`
	DronesBay  int        `json:"drones_bay"`
	DronesOut  int        `json:"drones_out"`
	FleetOrder string     `json:"fleet_order,omitempty"`
}

type CargoObs struct {
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

type SlotObs struct {
	Slot     string  `json:"slot"`
	Module   string  `json:"module,omitempty"`
	Active   bool    `json:"active,omitempty"`
	Cooldown float64 `json:"cooldown,omitempty"`
}

type EntityObs struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"` // "SHIP","ASTEROID","STATION","WRECK"
	Pos       [2]float64 `json:"pos"`
	Faction   string     `json:"faction,omitempty"`
	Hostility string     `json:"hostility,omitempty"` // "FRIENDLY","NEUTRAL","HOSTILE"
	Class     string     `json:"class,omitempty"`
	HullFrac  float64    `json:"hull_frac,omitempty"`
	Ore       float64    `json:"ore,omitempty"`
	BountyID  string     `json:"bounty_id,omitempty"`
}

type BountyObs struct {
	TargetID   string  `json:"target_id"`
	Name       string  `json:"name"`
	Tier       int     `json:"tier"`
	Reward     float64 `json:"reward"`
	LastSeen   string  `json:"last_seen,omitempty"`
	Status     string  `json:"status"` // "BOARD","ACTIVE","COOLDOWN"
	CooldownAt uint64  `json:"cooldown_until_tick,omitempty"`
}

type MissionObs struct {
	MissionID string `json:"mission_id"`
	Template  string `json:"template"`
	Kind      string `json:"kind"`
	Progress  int    `json:"progress"`
	Required  int    `json:"required"`
	Deadline  uint64 `json:"deadline_tick,omitempty"`
	Status    string `json:"status"` // "ACCEPTED","COMPLETED","EXPIRED"
}

type JobObs struct {
	JobID       string  `json:"job_id"`
	BlueprintID string  `json:"blueprint_id"`
	Progress    float64 `json:"progress"` // 0..1
}

type WarFrontObs struct {
	SectorID string             `json:"sector_id"`
	Points   map[string]float64 `json:"points"`
	Leader   string             `json:"leader,omitempty"`
}
