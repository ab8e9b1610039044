package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Catalogs is the immutable content layer the simulation reads by id.
// It is loaded once at startup and injected; the core never mutates it.
type Catalogs struct {
	Ships      ShipCatalog
	Modules    ModuleCatalog
	Factions   FactionCatalog
	Sectors    SectorCatalog
	Bounties   BountyCatalog
	Missions   MissionCatalog
	Blueprints BlueprintCatalog
}

type ShipCatalog struct {
	ByID   map[string]ShipClassDef
	Digest string
}

// ShipClassDef is the static stat block for one hull. Enemy, fleet and
// flagship variants are all plain ShipClassDefs; what differs is the
// controller driving them, not the fields.
type ShipClassDef struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	ShieldMax   float64 `json:"shield_max"`
	ArmorMax    float64 `json:"armor_max"`
	HullMax     float64 `json:"hull_max"`
	ShieldRes   float64 `json:"shield_res,omitempty"` // 0..1
	ArmorRes    float64 `json:"armor_res,omitempty"`
	HullRes     float64 `json:"hull_res,omitempty"`
	ShieldRegen float64 `json:"shield_regen,omitempty"` // per second

	CapacitorMax   float64 `json:"capacitor_max"`
	CapacitorRegen float64 `json:"capacitor_regen"` // per second

	MaxSpeed float64 `json:"max_speed"`
	Accel    float64 `json:"accel"`
	TurnRate float64 `json:"turn_rate"` // rad per second

	CargoCapacity float64 `json:"cargo_capacity"`
	DroneBay      int     `json:"drone_bay,omitempty"`
	DroneDeploy   int     `json:"drone_deploy,omitempty"`
	HangarSize    int     `json:"hangar_size,omitempty"` // flagships only

	HighSlots int `json:"high_slots"`
	MidSlots  int `json:"mid_slots"`
	LowSlots  int `json:"low_slots"`

	DefaultHigh []string `json:"default_high,omitempty"`
	DefaultMid  []string `json:"default_mid,omitempty"`
	DefaultLow  []string `json:"default_low,omitempty"`
}

type ModuleCatalog struct {
	ByID   map[string]ModuleDef
	Digest string
}

// Module effect kinds.
const (
	EffectWeapon       = "WEAPON"
	EffectMining       = "MINING"
	EffectShieldBoost  = "SHIELD_BOOST"
	EffectArmorRepair  = "ARMOR_REPAIR"
	EffectRemoteShield = "REMOTE_SHIELD"
	EffectTackle       = "TACKLE"
	EffectPropulsion   = "PROPULSION"
	EffectMicroWarp    = "MICRO_WARP"
)

type ModuleDef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Group  string `json:"group"`  // "HIGH","MID","LOW"
	Effect string `json:"effect"` // one of the Effect* kinds

	ActivationCost float64 `json:"activation_cost"`
	CycleTime      float64 `json:"cycle_time"` // seconds
	Range          float64 `json:"range,omitempty"`
	Amount         float64 `json:"amount,omitempty"` // damage / repair / ore per cycle
	Factor         float64 `json:"factor,omitempty"` // speed multiplier (propulsion/tackle)
	RequiresTarget bool    `json:"requires_target,omitempty"`
}

type FactionCatalog struct {
	ByID   map[string]FactionDef
	Digest string
}

type FactionDef struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Aggression float64 `json:"aggression"` // 0..1
	Tier       int     `json:"tier"`
	Coalition  string  `json:"coalition,omitempty"`
	Hostile    bool    `json:"hostile,omitempty"`
}

type SectorCatalog struct {
	ByID   map[string]SectorDef
	Digest string
}

type SectorDef struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Difficulty int     `json:"difficulty"` // 1..5
	Faction    string  `json:"faction,omitempty"`
	Security   float64 `json:"security"` // 0..1
	Contested  bool    `json:"contested,omitempty"`

	Asteroids int     `json:"asteroids"`
	OreItem   string  `json:"ore_item,omitempty"`
	OreAmount float64 `json:"ore_amount,omitempty"`

	Miners  int `json:"miners"`
	Patrols int `json:"security_patrols"`

	// Hull classes the sector populates with.
	MinerClass  string `json:"miner_class,omitempty"`
	PatrolClass string `json:"patrol_class,omitempty"`
	RaiderClass string `json:"raider_class,omitempty"`
	RaidFaction string `json:"raid_faction,omitempty"`

	StationPos *[2]float64 `json:"station_pos,omitempty"`
	Links      []string    `json:"links,omitempty"`
}

type BountyCatalog struct {
	ByID   map[string]BountyTargetDef
	Digest string
}

type BountyTargetDef struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Tier          int      `json:"tier"` // 1..5, higher is rarer
	Faction       string   `json:"faction"`
	ShipClass     string   `json:"ship_class"`
	StatBoost     float64  `json:"stat_boost,omitempty"` // multiplier on health pools and damage
	PatrolSectors []string `json:"patrol_sectors"`
	Reward        float64  `json:"reward"`
}

type MissionCatalog struct {
	ByID   map[string]MissionTemplate
	Digest string
}

// Mission objective kinds.
const (
	MissionKill    = "KILL"
	MissionMine    = "MINE"
	MissionDeliver = "DELIVER"
	MissionVisit   = "VISIT"
	MissionEscort  = "ESCORT"
)

type MissionTemplate struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Faction  string  `json:"faction,omitempty"`
	Item     string  `json:"item,omitempty"`   // MINE/DELIVER
	Target   string  `json:"target,omitempty"` // KILL faction filter or VISIT sector
	Required int     `json:"required"`
	Credits  float64 `json:"credits"`
	Standing float64 `json:"standing,omitempty"`
	Ticks    int     `json:"time_limit_ticks,omitempty"` // 0 = no limit
}

type BlueprintCatalog struct {
	ByID   map[string]BlueprintDef
	Digest string
}

type BlueprintDef struct {
	ID        string      `json:"id"`
	Output    string      `json:"output"`
	Count     int         `json:"count"`
	Materials []ItemCount `json:"materials"`
	TimeTicks int         `json:"time_ticks"`
	Starter   bool        `json:"starter,omitempty"` // in the pilot's set from the first login
}

// ItemCount quantities are in cargo volume units; a ship's cargo capacity
// bounds the sum of everything it carries.
type ItemCount struct {
	Item  string  `json:"item"`
	Count float64 `json:"count"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadTable(filepath.Join(configDir, "ships.json"), &c.Ships.Digest, func(defs []ShipClassDef) error {
		c.Ships.ByID = map[string]ShipClassDef{}
		for _, d := range defs {
			if d.ID == "" {
				return fmt.Errorf("ships.json: empty id")
			}
			c.Ships.ByID[d.ID] = d
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(configDir, "modules.json"), &c.Modules.Digest, func(defs []ModuleDef) error {
		c.Modules.ByID = map[string]ModuleDef{}
		for _, d := range defs {
			if d.ID == "" {
				return fmt.Errorf("modules.json: empty id")
			}
			c.Modules.ByID[d.ID] = d
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(configDir, "factions.json"), &c.Factions.Digest, func(defs []FactionDef) error {
		c.Factions.ByID = map[string]FactionDef{}
		for _, d := range defs {
			if d.ID == "" {
				return fmt.Errorf("factions.json: empty id")
			}
			c.Factions.ByID[d.ID] = d
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(configDir, "sectors.json"), &c.Sectors.Digest, func(defs []SectorDef) error {
		c.Sectors.ByID = map[string]SectorDef{}
		for _, d := range defs {
			if d.ID == "" {
				return fmt.Errorf("sectors.json: empty id")
			}
			c.Sectors.ByID[d.ID] = d
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(configDir, "bounties.json"), &c.Bounties.Digest, func(defs []BountyTargetDef) error {
		c.Bounties.ByID = map[string]BountyTargetDef{}
		for _, d := range defs {
			if d.ID == "" {
				return fmt.Errorf("bounties.json: empty id")
			}
			c.Bounties.ByID[d.ID] = d
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(configDir, "missions.json"), &c.Missions.Digest, func(defs []MissionTemplate) error {
		c.Missions.ByID = map[string]MissionTemplate{}
		for _, d := range defs {
			if d.ID == "" {
				return fmt.Errorf("missions.json: empty id")
			}
			c.Missions.ByID[d.ID] = d
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadTable(filepath.Join(configDir, "blueprints.json"), &c.Blueprints.Digest, func(defs []BlueprintDef) error {
		c.Blueprints.ByID = map[string]BlueprintDef{}
		for _, d := range defs {
			if d.ID == "" {
				return fmt.Errorf("blueprints.json: empty id")
			}
			c.Blueprints.ByID[d.ID] = d
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadTable[T any](path string, digest *string, apply func([]T) error) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	*digest = sha256Hex(raw)
	var defs []T
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return apply(defs)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// validate rejects dangling cross-references so a broken content drop fails
// at startup instead of mid-simulation.
func (c *Catalogs) validate() error {
	for id, s := range c.Ships.ByID {
		for _, group := range [][]string{s.DefaultHigh, s.DefaultMid, s.DefaultLow} {
			for _, m := range group {
				if _, ok := c.Modules.ByID[m]; !ok {
					return fmt.Errorf("ships.json: %s references unknown module %s", id, m)
				}
			}
		}
		if len(s.DefaultHigh) > s.HighSlots || len(s.DefaultMid) > s.MidSlots || len(s.DefaultLow) > s.LowSlots {
			return fmt.Errorf("ships.json: %s default fit exceeds slot counts", id)
		}
	}
	for id, sec := range c.Sectors.ByID {
		if sec.Faction != "" {
			if _, ok := c.Factions.ByID[sec.Faction]; !ok {
				return fmt.Errorf("sectors.json: %s references unknown faction %s", id, sec.Faction)
			}
		}
		for _, l := range sec.Links {
			if _, ok := c.Sectors.ByID[l]; !ok {
				return fmt.Errorf("sectors.json: %s links to unknown sector %s", id, l)
			}
		}
		for _, cl := range []string{sec.MinerClass, sec.PatrolClass, sec.RaiderClass} {
			if cl != "" {
				if _, ok := c.Ships.ByID[cl]; !ok {
					return fmt.Errorf("sectors.json: %s references unknown ship class %s", id, cl)
				}
			}
		}
	}
	for id, b := range c.Bounties.ByID {
		if _, ok := c.Ships.ByID[b.ShipClass]; !ok {
			return fmt.Errorf("bounties.json: %s references unknown ship class %s", id, b.ShipClass)
		}
		if b.Faction != "" {
			if _, ok := c.Factions.ByID[b.Faction]; !ok {
				return fmt.Errorf("bounties.json: %s references unknown faction %s", id, b.Faction)
			}
		}
		if len(b.PatrolSectors) == 0 {
			return fmt.Errorf("bounties.json: %s has no patrol sectors", id)
		}
		for _, s := range b.PatrolSectors {
			if _, ok := c.Sectors.ByID[s]; !ok {
				return fmt.Errorf("bounties.json: %s patrols unknown sector %s", id, s)
			}
		}
	}
	for id, m := range c.Missions.ByID {
		if m.Kind == MissionVisit && m.Target != "" {
			if _, ok := c.Sectors.ByID[m.Target]; !ok {
				return fmt.Errorf("missions.json: %s visits unknown sector %s", id, m.Target)
			}
		}
	}
	return nil
}
