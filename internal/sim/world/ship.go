package world

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"voidrift.gg/internal/sim/catalogs"
)

// Error taxonomy of the ship/controller layer. Every one of these is
// locally recoverable: the failed action is dropped and the caller retries
// next tick or falls back to a default state.
var (
	ErrEmptySlot             = errors.New("empty slot")
	ErrOnCooldown            = errors.New("module on cooldown")
	ErrInsufficientCapacitor = errors.New("insufficient capacitor")
	ErrNoTarget              = errors.New("no locked target")
	ErrOutOfRange            = errors.New("out of range")
	ErrInvalidTransition     = errors.New("invalid state transition")
	ErrCapacityExceeded      = errors.New("capacity exceeded")
)

type Hostility string

const (
	Friendly Hostility = "FRIENDLY"
	Neutral  Hostility = "NEUTRAL"
	Hostile  Hostility = "HOSTILE"
)

// Role selects the controller that drives a ship. Ships never subclass:
// a pirate and a flagship share every field and differ only in Role,
// loadout and faction.
type Role string

const (
	RolePlayer   Role = "PLAYER"
	RoleMiner    Role = "MINER"
	RoleSecurity Role = "SECURITY"
	RolePirate   Role = "PIRATE"
	RoleFleet    Role = "FLEET"
	RoleFlagship Role = "FLAGSHIP"
	RoleBounty   Role = "BOUNTY"
)

type Pool struct {
	Cur float64 `json:"cur"`
	Max float64 `json:"max"`
}

type SlotGroup string

const (
	SlotHigh SlotGroup = "HIGH"
	SlotMid  SlotGroup = "MID"
	SlotLow  SlotGroup = "LOW"
)

type SlotRef struct {
	Group SlotGroup
	Index int
}

func (r SlotRef) String() string { return fmt.Sprintf("%s:%d", r.Group, r.Index) }

func ParseSlotRef(s string) (SlotRef, error) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return SlotRef{}, fmt.Errorf("bad slot ref %q", s)
	}
	g := SlotGroup(s[:i])
	switch g {
	case SlotHigh, SlotMid, SlotLow:
	default:
		return SlotRef{}, fmt.Errorf("bad slot group %q", s[:i])
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 {
		return SlotRef{}, fmt.Errorf("bad slot index %q", s)
	}
	return SlotRef{Group: g, Index: n}, nil
}

type PowerRouting string

const (
	PowerBalanced PowerRouting = "BALANCED"
	PowerEngines  PowerRouting = "ENGINES"
	PowerWeapons  PowerRouting = "WEAPONS"
)

type DroneRecord struct {
	Type     string  `json:"type"`
	HP       float64 `json:"hp"`
	Deployed bool    `json:"deployed"`
}

// AIState is the per-ship behavioral record used by the NPC and fleet
// controllers. Target references are ids resolved against the live table
// each decision; a stale id simply fails the lookup.
type AIState struct {
	State            State
	TargetID         string
	PatrolAnchor     Vec2
	Home             Vec2
	ChaseStartTick   uint64
	InterceptReadyAt uint64 // tick the micro-warp charge is available again
	DockedUntilTick  uint64
	LeaderID         string
	HoldPos          Vec2
	Order            FleetOrder
}

type FleetOrder string

const (
	OrderFollow FleetOrder = "FOLLOW"
	OrderHold   FleetOrder = "HOLD"
	OrderDefend FleetOrder = "DEFEND"
)

// Ship is the single mutable per-unit state for every combat-capable
// entity: player, miners, security, pirates, fleet ships, flagships and
// bounty targets.
type Ship struct {
	ID        string
	Name      string
	Class     string
	Faction   string
	Hostility Hostility
	Role      Role
	BountyID  string // non-empty only on bounty-target instances

	Shield Pool
	Armor  Pool
	Hull   Pool

	shieldRes   float64
	armorRes    float64
	hullRes     float64
	ShieldRegen float64

	Capacitor Pool
	CapRegen  float64

	// Fitting state. Cooldowns count down in seconds; a cooldown hitting
	// zero while its slot is active re-fires the module's effect.
	Fittings  map[SlotRef]string
	Active    map[SlotRef]bool
	Cooldowns map[SlotRef]float64
	slotCount map[SlotGroup]int

	// Movement.
	Pos            Vec2
	Heading        float64
	DesiredHeading float64
	Speed          float64
	DesiredSpeed   float64
	Dest           *Vec2
	Accel          float64
	TurnRate       float64
	BaseMaxSpeed   float64

	// Multiplicative speed/damage modifiers, recomputed or expired per tick.
	WebFactor    float64
	WebUntilTick uint64
	AuraSpeed    float64
	AuraDamage   float64
	AuraRegen    float64
	Power        PowerRouting

	StatBoost float64 // bounty targets get > 1

	TargetID string

	CargoCapacity float64
	Cargo         map[string]float64

	DroneBay    int
	DroneDeploy int
	Drones      []DroneRecord

	HangarSize int
	Hangar     []string // docked fleet ship ids

	AI AIState

	Destroyed bool
}

// NewShip builds a live ship from its class def with the default fit.
func NewShip(id string, def catalogs.ShipClassDef, faction string, hostility Hostility, role Role, pos Vec2) *Ship {
	s := &Ship{
		ID:        id,
		Name:      def.Name,
		Class:     def.ID,
		Faction:   faction,
		Hostility: hostility,
		Role:      role,

		Shield: Pool{Cur: def.ShieldMax, Max: def.ShieldMax},
		Armor:  Pool{Cur: def.ArmorMax, Max: def.ArmorMax},
		Hull:   Pool{Cur: def.HullMax, Max: def.HullMax},

		shieldRes:   def.ShieldRes,
		armorRes:    def.ArmorRes,
		hullRes:     def.HullRes,
		ShieldRegen: def.ShieldRegen,

		Capacitor: Pool{Cur: def.CapacitorMax, Max: def.CapacitorMax},
		CapRegen:  def.CapacitorRegen,

		Fittings:  map[SlotRef]string{},
		Active:    map[SlotRef]bool{},
		Cooldowns: map[SlotRef]float64{},
		slotCount: map[SlotGroup]int{
			SlotHigh: def.HighSlots,
			SlotMid:  def.MidSlots,
			SlotLow:  def.LowSlots,
		},

		Pos:          pos,
		Accel:        def.Accel,
		TurnRate:     def.TurnRate,
		BaseMaxSpeed: def.MaxSpeed,

		WebFactor:  1,
		AuraSpeed:  1,
		AuraDamage: 1,
		AuraRegen:  1,
		Power:      PowerBalanced,
		StatBoost:  1,

		CargoCapacity: def.CargoCapacity,
		Cargo:         map[string]float64{},

		DroneBay:    def.DroneBay,
		DroneDeploy: def.DroneDeploy,

		HangarSize: def.HangarSize,
	}
	for i, m := range def.DefaultHigh {
		s.Fittings[SlotRef{SlotHigh, i}] = m
	}
	for i, m := range def.DefaultMid {
		s.Fittings[SlotRef{SlotMid, i}] = m
	}
	for i, m := range def.DefaultLow {
		s.Fittings[SlotRef{SlotLow, i}] = m
	}
	for i := 0; i < def.DroneBay; i++ {
		s.Drones = append(s.Drones, DroneRecord{Type: "light", HP: 20})
	}
	return s
}

// Boost scales the health pools for boosted bounty-target instances.
func (s *Ship) Boost(f float64) {
	if f <= 0 {
		return
	}
	s.StatBoost = f
	for _, p := range []*Pool{&s.Shield, &s.Armor, &s.Hull} {
		p.Max *= f
		p.Cur = p.Max
	}
}

type damageReport struct {
	Shield    float64
	Armor     float64
	Hull      float64
	Destroyed bool
}

// absorbDamage drains shield, then armor, then hull, applying the layer's
// resistance before subtracting. The unabsorbed post-resist remainder is
// converted back to raw damage before spilling into the next layer. A
// destroyed ship ignores further damage.
func (s *Ship) absorbDamage(amount float64) damageReport {
	var rep damageReport
	if s.Destroyed || amount <= 0 {
		return rep
	}
	layers := []struct {
		pool *Pool
		res  float64
		out  *float64
	}{
		{&s.Shield, s.shieldRes, &rep.Shield},
		{&s.Armor, s.armorRes, &rep.Armor},
		{&s.Hull, s.hullRes, &rep.Hull},
	}
	remaining := amount
	for _, l := range layers {
		if remaining <= 0 {
			break
		}
		if l.pool.Cur <= 0 {
			continue
		}
		eff := remaining * (1 - l.res)
		if eff <= l.pool.Cur {
			l.pool.Cur -= eff
			*l.out = eff
			remaining = 0
			break
		}
		*l.out = l.pool.Cur
		// Raw damage that survived this layer.
		absorbedRaw := l.pool.Cur
		if l.res < 1 {
			absorbedRaw = l.pool.Cur / (1 - l.res)
		}
		l.pool.Cur = 0
		remaining -= absorbedRaw
	}
	if s.Hull.Cur <= 0 {
		s.Hull.Cur = 0
		s.Destroyed = true
		rep.Destroyed = true
	}
	return rep
}

func (s *Ship) regen(dt float64) {
	if s.Destroyed {
		return
	}
	if s.Capacitor.Cur < s.Capacitor.Max {
		s.Capacitor.Cur += s.CapRegen * dt
		if s.Capacitor.Cur > s.Capacitor.Max {
			s.Capacitor.Cur = s.Capacitor.Max
		}
	}
	if s.Shield.Cur < s.Shield.Max && s.ShieldRegen > 0 {
		s.Shield.Cur += s.ShieldRegen * s.AuraRegen * dt
		if s.Shield.Cur > s.Shield.Max {
			s.Shield.Cur = s.Shield.Max
		}
	}
}

func (s *Ship) CargoUsed() float64 {
	var used float64
	for _, v := range s.Cargo {
		used += v
	}
	return used
}

// AddCargo fails with ErrCapacityExceeded when the hold cannot take the
// full amount; partial loads are the caller's business (mining clamps,
// looting refuses).
func (s *Ship) AddCargo(item string, amount float64) error {
	if amount <= 0 {
		return nil
	}
	if s.CargoUsed()+amount > s.CargoCapacity {
		return ErrCapacityExceeded
	}
	s.Cargo[item] += amount
	return nil
}

func (s *Ship) RemoveCargo(item string, amount float64) bool {
	if s.Cargo[item] < amount {
		return false
	}
	s.Cargo[item] -= amount
	if s.Cargo[item] <= 0 {
		delete(s.Cargo, item)
	}
	return true
}

func (s *Ship) DronesDeployed() int {
	n := 0
	for _, d := range s.Drones {
		if d.Deployed {
			n++
		}
	}
	return n
}

// LaunchDrones deploys up to count stored drones, bounded by the deploy
// limit. Launching with nothing available is a capacity error.
func (s *Ship) LaunchDrones(count int) error {
	if count <= 0 {
		count = s.DroneDeploy
	}
	launched := 0
	for i := range s.Drones {
		if launched >= count {
			break
		}
		if s.Drones[i].Deployed || s.Drones[i].HP <= 0 {
			continue
		}
		if s.DronesDeployed() >= s.DroneDeploy {
			break
		}
		s.Drones[i].Deployed = true
		launched++
	}
	if launched == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

func (s *Ship) RecallDrones() {
	for i := range s.Drones {
		s.Drones[i].Deployed = false
	}
}

// webbed reports the active speed debuff factor, expiring by tick.
func (s *Ship) webbed(tick uint64) float64 {
	if tick < s.WebUntilTick {
		return s.WebFactor
	}
	return 1
}
