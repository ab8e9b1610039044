package world

import (
	"math"

	"voidrift.gg/internal/protocol"
	"voidrift.gg/internal/sim/catalogs"
)

// ActivateModule validates in order: fitted, off cooldown, capacitor,
// target. On success it reserves the activation cost, fires one effect
// cycle, resets the slot cooldown to the module's cycle time and marks the
// slot active so TickModules keeps cycling it. A failed fire refunds the
// reservation.
func (w *World) ActivateModule(s *Ship, ref SlotRef) error {
	if ref.Index >= s.slotCount[ref.Group] {
		return ErrEmptySlot
	}
	modID, ok := s.Fittings[ref]
	if !ok {
		return ErrEmptySlot
	}
	if s.Cooldowns[ref] > 0 {
		return ErrOnCooldown
	}
	def, ok := w.cats.Modules.ByID[modID]
	if !ok {
		return ErrEmptySlot
	}
	if s.Capacitor.Cur < def.ActivationCost {
		return ErrInsufficientCapacitor
	}
	if def.RequiresTarget && s.TargetID == "" {
		return ErrNoTarget
	}
	s.Capacitor.Cur -= def.ActivationCost
	if err := w.fireModule(s, ref, def); err != nil {
		s.Capacitor.Cur += def.ActivationCost
		return err
	}
	s.Cooldowns[ref] = def.CycleTime
	s.Active[ref] = true
	w.emit(protocol.ModuleActivatedEvent{Tick: w.tick.Load(), ShipID: s.ID, Slot: ref.String(), Module: modID})
	return nil
}

func (w *World) DeactivateModule(s *Ship, ref SlotRef, reason string) {
	if !s.Active[ref] {
		return
	}
	delete(s.Active, ref)
	w.emit(protocol.ModuleDeactivatedEvent{Tick: w.tick.Load(), ShipID: s.ID, Slot: ref.String(), Module: s.Fittings[ref], Reason: reason})
}

// tickModules regenerates capacitor/shield and advances every cooldown.
// A cooldown reaching zero on an active slot re-fires the module's effect
// and resets the cooldown; this is what produces continuous weapon, mining
// and repair cycling without re-issuing the activation. A re-fire that can
// no longer pay its cost or find its target deactivates the slot instead of
// erroring.
func (w *World) tickModules(s *Ship, dt float64) {
	s.regen(dt)
	for ref, cd := range s.Cooldowns {
		if cd <= 0 {
			continue
		}
		cd -= dt
		if cd > 0 {
			s.Cooldowns[ref] = cd
			continue
		}
		s.Cooldowns[ref] = 0
		if !s.Active[ref] {
			continue
		}
		modID := s.Fittings[ref]
		def, ok := w.cats.Modules.ByID[modID]
		if !ok {
			w.DeactivateModule(s, ref, "unfitted")
			continue
		}
		if s.Capacitor.Cur < def.ActivationCost {
			w.DeactivateModule(s, ref, "capacitor")
			continue
		}
		s.Capacitor.Cur -= def.ActivationCost
		if err := w.fireModule(s, ref, def); err != nil {
			s.Capacitor.Cur += def.ActivationCost
			w.DeactivateModule(s, ref, errCode(err))
			continue
		}
		s.Cooldowns[ref] = def.CycleTime
	}
}

func (w *World) fireModule(s *Ship, ref SlotRef, def catalogs.ModuleDef) error {
	nowTick := w.tick.Load()
	switch def.Effect {
	case catalogs.EffectWeapon:
		t := w.liveShip(s.TargetID)
		if t == nil {
			return ErrNoTarget
		}
		if Dist(s.Pos, t.Pos) > def.Range {
			return ErrOutOfRange
		}
		dmg := def.Amount * s.AuraDamage * s.powerDamageFactor() * s.StatBoost
		w.applyDamage(t, dmg, s.ID)
		return nil

	case catalogs.EffectMining:
		a := w.asteroids[s.TargetID]
		if a == nil {
			a = w.nearestAsteroid(s.Pos, def.Range)
		}
		if a == nil {
			return ErrNoTarget
		}
		if Dist(s.Pos, a.Pos) > def.Range {
			return ErrOutOfRange
		}
		space := s.CargoCapacity - s.CargoUsed()
		if space <= 0 {
			return ErrCapacityExceeded
		}
		amount := def.Amount
		if amount > a.Remaining {
			amount = a.Remaining
		}
		if amount > space {
			amount = space
		}
		a.Remaining -= amount
		s.Cargo[a.Item] += amount
		depleted := a.Remaining <= 0
		if depleted {
			delete(w.asteroids, a.ID)
		}
		w.emit(protocol.MiningCycleEvent{Tick: nowTick, ShipID: s.ID, AsteroidID: a.ID, Item: a.Item, Amount: amount, Depleted: depleted})
		w.emit(protocol.CargoUpdatedEvent{Tick: nowTick, ShipID: s.ID, Item: a.Item, Delta: amount, Used: s.CargoUsed()})
		if s.ID == w.playerID {
			w.progressMineMissions(a.Item, amount)
		}
		return nil

	case catalogs.EffectShieldBoost:
		s.Shield.Cur += def.Amount
		if s.Shield.Cur > s.Shield.Max {
			s.Shield.Cur = s.Shield.Max
		}
		return nil

	case catalogs.EffectArmorRepair:
		s.Armor.Cur += def.Amount
		if s.Armor.Cur > s.Armor.Max {
			s.Armor.Cur = s.Armor.Max
		}
		return nil

	case catalogs.EffectRemoteShield:
		t := w.liveShip(s.TargetID)
		if t == nil {
			return ErrNoTarget
		}
		if Dist(s.Pos, t.Pos) > def.Range {
			return ErrOutOfRange
		}
		t.Shield.Cur += def.Amount
		if t.Shield.Cur > t.Shield.Max {
			t.Shield.Cur = t.Shield.Max
		}
		return nil

	case catalogs.EffectTackle:
		t := w.liveShip(s.TargetID)
		if t == nil {
			return ErrNoTarget
		}
		if Dist(s.Pos, t.Pos) > def.Range {
			return ErrOutOfRange
		}
		t.WebFactor = def.Factor
		t.WebUntilTick = nowTick + w.secondsToTicks(def.CycleTime) + 1
		return nil

	case catalogs.EffectPropulsion:
		// The speed factor applies while the slot is active; the cycle
		// itself only burns capacitor.
		return nil

	case catalogs.EffectMicroWarp:
		t := w.liveShip(s.TargetID)
		if t == nil {
			return ErrNoTarget
		}
		if nowTick < s.AI.InterceptReadyAt {
			return ErrOnCooldown
		}
		// Drop out of warp just outside tackle range, ahead of the target.
		lead := t.Pos.Add(Vec2{X: t.Speed * 0.5 * math.Cos(t.Heading), Y: t.Speed * 0.5 * math.Sin(t.Heading)})
		s.Pos = lead
		s.Speed = 0
		s.AI.InterceptReadyAt = nowTick + w.secondsToTicks(w.tune.Pursuit.InterceptCooldown)
		return nil
	}
	return ErrEmptySlot
}

// propulsionFactor is the product of the speed factors of all active
// propulsion modules.
func (w *World) propulsionFactor(s *Ship) float64 {
	f := 1.0
	for ref, on := range s.Active {
		if !on {
			continue
		}
		def, ok := w.cats.Modules.ByID[s.Fittings[ref]]
		if !ok || def.Effect != catalogs.EffectPropulsion {
			continue
		}
		if def.Factor > 0 {
			f *= def.Factor
		}
	}
	return f
}

// fittedSlot returns the first fitted slot whose module has the given
// effect, and whether one exists. Controllers use this instead of
// hard-coding slot layouts.
func (w *World) fittedSlot(s *Ship, effect string) (SlotRef, bool) {
	for _, g := range []SlotGroup{SlotHigh, SlotMid, SlotLow} {
		for i := 0; i < s.slotCount[g]; i++ {
			ref := SlotRef{g, i}
			def, ok := w.cats.Modules.ByID[s.Fittings[ref]]
			if ok && def.Effect == effect {
				return ref, true
			}
		}
	}
	return SlotRef{}, false
}

func (s *Ship) powerSpeedFactor() float64 {
	switch s.Power {
	case PowerEngines:
		return 1.15
	case PowerWeapons:
		return 0.9
	}
	return 1
}

func (s *Ship) powerDamageFactor() float64 {
	switch s.Power {
	case PowerWeapons:
		return 1.15
	case PowerEngines:
		return 0.9
	}
	return 1
}

func errCode(err error) string {
	switch err {
	case ErrEmptySlot:
		return protocol.ErrEmptySlot
	case ErrOnCooldown:
		return protocol.ErrOnCooldown
	case ErrInsufficientCapacitor:
		return protocol.ErrInsufficientCapacitor
	case ErrNoTarget:
		return protocol.ErrNoTarget
	case ErrOutOfRange:
		return protocol.ErrOutOfRange
	case ErrInvalidTransition:
		return protocol.ErrInvalidTransition
	case ErrCapacityExceeded:
		return protocol.ErrCapacityExceeded
	case nil:
		return ""
	}
	return protocol.ErrBadRequest
}
