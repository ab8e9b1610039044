package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz         int `yaml:"tick_rate_hz"`
	DecisionEveryTicks int `yaml:"decision_every_ticks"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	Pursuit       Pursuit       `yaml:"pursuit"`
	Behavior      Behavior      `yaml:"behavior"`
	Aura          Aura          `yaml:"aura"`
	Raid          Raid          `yaml:"raid"`
	Bounty        Bounty        `yaml:"bounty"`
	War           War           `yaml:"war"`
	Manufacturing Manufacturing `yaml:"manufacturing"`
}

type Pursuit struct {
	MaxChaseSeconds   float64 `yaml:"max_chase_seconds"`
	MaxHomeDistance   float64 `yaml:"max_home_distance"`
	TackleRange       float64 `yaml:"tackle_range"`
	InterceptMinDist  float64 `yaml:"intercept_min_distance"`
	InterceptCooldown float64 `yaml:"intercept_cooldown_seconds"`
}

type Behavior struct {
	SecurityAggroRange float64 `yaml:"security_aggro_range"`
	MinerFleeRange     float64 `yaml:"miner_flee_range"`
	MinerFullFrac      float64 `yaml:"miner_full_frac"`
	DockPauseSeconds   float64 `yaml:"dock_pause_seconds"`
	EngageRange        float64 `yaml:"engage_range"`
	PatrolRadius       float64 `yaml:"patrol_radius"`
	FleetOffset        float64 `yaml:"fleet_offset"`
}

type Aura struct {
	Radius      float64 `yaml:"radius"`
	DamageBonus float64 `yaml:"damage_bonus"` // at distance 0, e.g. 0.25 = +25%
	RegenBonus  float64 `yaml:"regen_bonus"`
	SpeedBonus  float64 `yaml:"speed_bonus"`
	Floor       float64 `yaml:"floor"` // fraction of the full bonus kept at aura edge
}

type Raid struct {
	IntervalTicks int     `yaml:"interval_ticks"`
	BaseChance    float64 `yaml:"base_chance"`
	ChancePerDiff float64 `yaml:"chance_per_difficulty"`
	MaxShips      int     `yaml:"max_ships"`
	RingRadius    float64 `yaml:"ring_radius"`
}

type Bounty struct {
	BoardSize         int     `yaml:"board_size"`
	WalkIntervalTicks int     `yaml:"walk_interval_ticks"`
	RespawnTicks      int     `yaml:"respawn_ticks"`
	SpawnBaseChance   float64 `yaml:"spawn_base_chance"`
	SpawnTierFalloff  float64 `yaml:"spawn_tier_falloff"` // chance multiplier per tier above 1
	DefaultStatBoost  float64 `yaml:"default_stat_boost"`
}

type War struct {
	ShiftIntervalTicks int     `yaml:"shift_interval_ticks"`
	TierWeight         float64 `yaml:"tier_weight"`
	KillWeight         float64 `yaml:"kill_weight"`
	MaxPoints          float64 `yaml:"max_points"`
}

type Manufacturing struct {
	MaxJobs          int     `yaml:"max_jobs"`
	CancelRefundFrac float64 `yaml:"cancel_refund_frac"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Defaults returns a playable baseline so the server can run without a
// tuning file (e.g. when resuming from a snapshot on a fresh checkout).
func Defaults() Tuning {
	return Tuning{
		TickRateHz:         10,
		DecisionEveryTicks: 5,
		SnapshotEveryTicks: 3000,
		Pursuit: Pursuit{
			MaxChaseSeconds:   45,
			MaxHomeDistance:   900,
			TackleRange:       60,
			InterceptMinDist:  250,
			InterceptCooldown: 30,
		},
		Behavior: Behavior{
			SecurityAggroRange: 400,
			MinerFleeRange:     300,
			MinerFullFrac:      0.95,
			DockPauseSeconds:   8,
			EngageRange:        150,
			PatrolRadius:       350,
			FleetOffset:        40,
		},
		Aura: Aura{
			Radius:      300,
			DamageBonus: 0.20,
			RegenBonus:  0.25,
			SpeedBonus:  0.10,
			Floor:       0.25,
		},
		Raid: Raid{
			IntervalTicks: 600,
			BaseChance:    0.15,
			ChancePerDiff: 0.08,
			MaxShips:      3,
			RingRadius:    220,
		},
		Bounty: Bounty{
			BoardSize:         4,
			WalkIntervalTicks: 900,
			RespawnTicks:      6000,
			SpawnBaseChance:   0.9,
			SpawnTierFalloff:  0.15,
			DefaultStatBoost:  1.5,
		},
		War: War{
			ShiftIntervalTicks: 300,
			TierWeight:         1.0,
			KillWeight:         2.0,
			MaxPoints:          100,
		},
		Manufacturing: Manufacturing{
			MaxJobs:          5,
			CancelRefundFrac: 0.5,
		},
	}
}
