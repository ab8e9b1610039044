package world

import "voidrift.gg/internal/sim/catalogs"

// decideMiner drives the industrial FSM: mine until the hold passes the
// full threshold, haul to the station, pause docked, head back out. Any
// hostile inside flee range interrupts everything.
func (w *World) decideMiner(s *Ship) {
	if s.AI.State != StateFleeing && s.AI.State != StateDocked {
		if h := w.nearestHostile(s, w.tune.Behavior.MinerFleeRange); h != nil {
			if w.transitionTo(s, StateFleeing) == nil {
				w.minerFlee(s, h)
				w.alertSecurity(s.Pos)
				return
			}
		}
	}

	switch s.AI.State {
	case StateMining:
		w.minerMine(s)
	case StateReturning:
		w.minerReturn(s)
	case StateDocked:
		if w.tick.Load() >= s.AI.DockedUntilTick {
			w.transitionTo(s, StateMining)
		}
	case StateFleeing:
		h := w.nearestHostile(s, w.tune.Behavior.MinerFleeRange*1.5)
		if h == nil {
			// Clear: resume with whatever the hold dictates.
			if s.CargoUsed() >= s.CargoCapacity*w.tune.Behavior.MinerFullFrac {
				w.transitionTo(s, StateReturning)
				s.SetDestination(w.stationPos())
			} else {
				w.transitionTo(s, StateMining)
			}
			return
		}
		w.minerFlee(s, h)
	default:
		s.AI.State = StateMining
	}
}

func (w *World) minerMine(s *Ship) {
	if s.CargoUsed() >= s.CargoCapacity*w.tune.Behavior.MinerFullFrac {
		if w.transitionTo(s, StateReturning) == nil {
			if ref, ok := w.fittedSlot(s, catalogs.EffectMining); ok {
				w.DeactivateModule(s, ref, "hold full")
			}
			s.SetDestination(w.stationPos())
		}
		return
	}
	ref, ok := w.fittedSlot(s, catalogs.EffectMining)
	if !ok {
		return
	}
	def := w.cats.Modules.ByID[s.Fittings[ref]]
	a := w.nearestAsteroid(s.Pos, 1e9)
	if a == nil {
		// Belt stripped bare; wait at the station.
		if w.transitionTo(s, StateReturning) == nil {
			s.SetDestination(w.stationPos())
		}
		return
	}
	if Dist(s.Pos, a.Pos) > def.Range {
		s.SetDestination(a.Pos)
		return
	}
	s.ClearDestination()
	s.TargetID = a.ID
	if !s.Active[ref] {
		w.ActivateModule(s, ref)
	}
}

func (w *World) minerReturn(s *Ship) {
	st := w.stationPos()
	if Dist(s.Pos, st) > arriveTolerance*2 {
		s.SetDestination(st)
		return
	}
	if w.transitionTo(s, StateDocked) == nil {
		s.ClearDestination()
		s.AI.DockedUntilTick = w.tick.Load() + w.secondsToTicks(w.tune.Behavior.DockPauseSeconds)
		w.creditOreDelivery(s)
	}
}

// minerFlee runs directly away from the threat, overshooting so the
// heading stays stable between decisions.
func (w *World) minerFlee(s *Ship, threat *Ship) {
	if ref, ok := w.fittedSlot(s, catalogs.EffectMining); ok {
		w.DeactivateModule(s, ref, "fleeing")
	}
	away := s.Pos.Sub(threat.Pos)
	if away.Len() < 1 {
		away = Vec2{X: 1}
	}
	away = away.Scale(w.tune.Behavior.MinerFleeRange * 2 / away.Len())
	s.SetDestination(s.Pos.Add(away))
	if ref, ok := w.fittedSlot(s, catalogs.EffectPropulsion); ok && !s.Active[ref] {
		w.ActivateModule(s, ref)
	}
}
