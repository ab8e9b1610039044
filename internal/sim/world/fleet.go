package world

import "voidrift.gg/internal/sim/catalogs"

// decideFleet drives an escort ship. The three orders map onto the three
// fleet states; the owner changes orders through FleetOrderAll and the
// ship translates them into transitions at its next decision.
func (w *World) decideFleet(s *Ship) {
	leader := w.liveShip(s.AI.LeaderID)
	if leader == nil {
		// Orphaned escorts hold where they are.
		s.AI.Order = OrderHold
		s.AI.HoldPos = s.Pos
	}

	want := StateFollowing
	switch s.AI.Order {
	case OrderHold:
		want = StateHolding
	case OrderDefend:
		want = StateDefending
	}
	if s.AI.State != want {
		if w.transitionTo(s, want) != nil {
			s.AI.State = StateFollowing
		}
		if want == StateHolding {
			s.AI.HoldPos = s.Pos
		}
	}

	switch s.AI.State {
	case StateFollowing:
		if leader == nil {
			return
		}
		slot := w.fleetSlotIndex(leader, s.ID)
		s.SetDestination(offsetRing(leader.Pos, w.tune.Behavior.FleetOffset, slot.i, slot.n))
	case StateHolding:
		if Dist(s.Pos, s.AI.HoldPos) > arriveTolerance*2 {
			s.SetDestination(s.AI.HoldPos)
		}
	case StateDefending:
		w.fleetDefend(s, leader)
	}
}

type fleetSlot struct{ i, n int }

// fleetSlotIndex gives each escort a stable position on the leader's
// formation ring, ordered by ship id.
func (w *World) fleetSlotIndex(leader *Ship, shipID string) fleetSlot {
	i, n := 0, 0
	for _, e := range w.shipsSorted() {
		if e.Role != RoleFleet || e.AI.LeaderID != leader.ID || e.Destroyed {
			continue
		}
		if e.ID == shipID {
			i = n
		}
		n++
	}
	return fleetSlot{i, n}
}

// fleetDefend attacks the leader's locked target, or whoever is shooting
// at the leader, falling back to formation flying when nothing threatens.
func (w *World) fleetDefend(s *Ship, leader *Ship) {
	var t *Ship
	if leader != nil {
		t = w.liveShip(leader.TargetID)
		if t == nil {
			t = w.nearestHostile(leader, w.aggroRange(leader))
		}
	}
	if t == nil {
		t = w.nearestHostile(s, w.aggroRange(s))
	}
	if t == nil {
		s.TargetID = ""
		if leader != nil {
			slot := w.fleetSlotIndex(leader, s.ID)
			s.SetDestination(offsetRing(leader.Pos, w.tune.Behavior.FleetOffset, slot.i, slot.n))
		}
		return
	}
	s.TargetID = t.ID
	s.SetDestination(t.Pos)
	if ref, ok := w.fittedSlot(s, catalogs.EffectWeapon); ok && !s.Active[ref] {
		w.ActivateModule(s, ref)
	}
}

// FleetOrderAll sets the standing order of every escort led by owner.
func (w *World) FleetOrderAll(ownerID string, order FleetOrder) int {
	n := 0
	for _, s := range w.shipsSorted() {
		if s.Role != RoleFleet || s.AI.LeaderID != ownerID || s.Destroyed {
			continue
		}
		s.AI.Order = order
		n++
	}
	return n
}

// applyAuras recomputes the command-aura multipliers on every ship. A
// flagship boosts its own fleet inside the aura radius; the bonus decays
// linearly with distance down to a floor fraction at the edge. Under
// overlapping auras a ship keeps the strongest attenuation; ships under
// no aura carry neutral multipliers.
func (w *World) applyAuras() {
	ships := w.shipsSorted()
	for _, s := range ships {
		s.AuraSpeed, s.AuraDamage, s.AuraRegen = 1, 1, 1
	}
	a := w.tune.Aura
	best := map[string]float64{}
	for _, flag := range ships {
		if flag.Role != RoleFlagship || flag.Destroyed {
			continue
		}
		for _, s := range ships {
			if s.Destroyed || s.ID == flag.ID {
				continue
			}
			if s.AI.LeaderID != flag.ID && s.Faction != flag.Faction {
				continue
			}
			d := Dist(s.Pos, flag.Pos)
			if d > a.Radius {
				continue
			}
			atten := a.Floor + (1-a.Floor)*(1-d/a.Radius)
			if atten > best[s.ID] {
				best[s.ID] = atten
			}
		}
	}
	for _, s := range ships {
		atten, ok := best[s.ID]
		if !ok {
			continue
		}
		s.AuraSpeed = 1 + a.SpeedBonus*atten
		s.AuraDamage = 1 + a.DamageBonus*atten
		s.AuraRegen = 1 + a.RegenBonus*atten
	}
}

// DockFleetShip stows a live escort in the owner's hangar.
func (w *World) DockFleetShip(owner *Ship, shipID string) error {
	s := w.liveShip(shipID)
	if s == nil || s.Role != RoleFleet || s.AI.LeaderID != owner.ID {
		return ErrNoTarget
	}
	if len(owner.Hangar) >= owner.HangarSize {
		return ErrCapacityExceeded
	}
	owner.Hangar = append(owner.Hangar, s.Class)
	s.Destroyed = true // swept at end of tick; the hangar record survives
	return nil
}

// LaunchFleetShip spawns an escort from the owner's hangar next to it.
func (w *World) LaunchFleetShip(owner *Ship) error {
	if len(owner.Hangar) == 0 {
		return ErrCapacityExceeded
	}
	class := owner.Hangar[len(owner.Hangar)-1]
	def, ok := w.cats.Ships.ByID[class]
	if !ok {
		return ErrNoTarget
	}
	owner.Hangar = owner.Hangar[:len(owner.Hangar)-1]
	s := NewShip(w.nextShipID(), def, owner.Faction, owner.Hostility, RoleFleet, offsetRing(owner.Pos, w.tune.Behavior.FleetOffset, 0, 1))
	s.AI.LeaderID = owner.ID
	s.AI.State = StateFollowing
	s.AI.Order = OrderFollow
	s.AI.Home = owner.Pos
	w.ships[s.ID] = s
	return nil
}
