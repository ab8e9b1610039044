package world

import (
	"voidrift.gg/internal/protocol"

	"voidrift.gg/internal/sim/catalogs"
)

// decideCombat drives the security / pirate / bounty-target FSM for one
// decision. It reads the world as of the previous tick and issues at most
// one transition plus the movement and module actions of the resulting
// state.
func (w *World) decideCombat(s *Ship) {
	switch s.AI.State {
	case StatePatrol:
		w.combatPatrol(s)
	case StateResponding:
		w.combatRespond(s)
	case StateEngaging:
		w.combatEngage(s)
	case StatePursuing:
		w.combatPursue(s)
	case StateIntercepting:
		w.combatIntercept(s)
	case StateTackling:
		w.combatTackle(s)
	case StateDisengaging:
		w.transitionTo(s, StateReturning)
		s.SetDestination(s.AI.Home)
	case StateReturning:
		if Dist(s.Pos, s.AI.Home) <= arriveTolerance*2 {
			w.transitionTo(s, StatePatrol)
			s.AI.PatrolAnchor = s.AI.Home
			return
		}
		s.SetDestination(s.AI.Home)
	default:
		// A combat ship spawned without a state starts on patrol.
		s.AI.State = StatePatrol
	}
}

func (w *World) combatPatrol(s *Ship) {
	if t := w.nearestHostile(s, w.aggroRange(s)); t != nil {
		w.startEngagement(s, t)
		return
	}
	// Wander the patrol ring; pick a fresh waypoint whenever the last one
	// was reached.
	if s.Dest == nil {
		i := w.rng.Intn(8)
		s.SetDestination(offsetRing(s.AI.PatrolAnchor, w.tune.Behavior.PatrolRadius, i, 8))
	}
}

func (w *World) combatRespond(s *Ship) {
	if t := w.nearestHostile(s, w.aggroRange(s)); t != nil {
		w.startEngagement(s, t)
		return
	}
	if s.Dest == nil {
		// Arrived at the alert position and found nothing.
		w.transitionTo(s, StateReturning)
		s.SetDestination(s.AI.Home)
	}
}

// startEngagement is the shared patrol/responding -> engaging edge.
func (w *World) startEngagement(s *Ship, t *Ship) {
	if err := w.transitionTo(s, StateEngaging); err != nil {
		return
	}
	s.AI.TargetID = t.ID
	s.TargetID = t.ID
	s.AI.ChaseStartTick = w.tick.Load()
	w.emit(protocol.AlertEvent{Tick: w.tick.Load(), Level: "WARNING", Text: s.ID + " engaging " + t.ID})
}

func (w *World) combatEngage(s *Ship) {
	t := w.liveShip(s.AI.TargetID)
	if t == nil {
		w.dropTarget(s, "target lost")
		w.transitionTo(s, StateReturning)
		s.SetDestination(s.AI.Home)
		return
	}
	d := Dist(s.Pos, t.Pos)
	if d > w.tune.Behavior.EngageRange {
		w.transitionTo(s, StatePursuing)
		s.SetDestination(t.Pos)
		return
	}
	s.SetDestination(t.Pos)
	if ref, ok := w.fittedSlot(s, catalogs.EffectWeapon); ok && !s.Active[ref] {
		w.ActivateModule(s, ref)
	}
	if s.Shield.Cur < s.Shield.Max*0.5 {
		if ref, ok := w.fittedSlot(s, catalogs.EffectShieldBoost); ok && !s.Active[ref] {
			w.ActivateModule(s, ref)
		}
	}
}

func (w *World) combatPursue(s *Ship) {
	dec, reason := EvaluatePursuit(w.pursuitContext(s))
	switch dec {
	case DecideDisengage:
		w.dropTarget(s, reason)
		w.transitionTo(s, StateDisengaging)
		w.emit(protocol.AlertEvent{Tick: w.tick.Load(), Level: "INFO", Text: s.ID + " breaking off: " + reason})
		s.SetDestination(s.AI.Home)
	case DecideTackle:
		w.transitionTo(s, StateTackling)
	case DecideIntercept:
		w.transitionTo(s, StateIntercepting)
	default:
		t := w.liveShip(s.AI.TargetID)
		if Dist(s.Pos, t.Pos) <= w.tune.Behavior.EngageRange {
			w.transitionTo(s, StateEngaging)
			return
		}
		s.SetDestination(t.Pos)
	}
}

func (w *World) combatIntercept(s *Ship) {
	t := w.liveShip(s.AI.TargetID)
	if t == nil {
		w.dropTarget(s, "target lost")
		w.transitionTo(s, StateDisengaging)
		s.SetDestination(s.AI.Home)
		return
	}
	ref, ok := w.fittedSlot(s, catalogs.EffectMicroWarp)
	if !ok {
		// No intercept fit; fall back to a plain chase.
		w.transitionTo(s, StatePursuing)
		return
	}
	if err := w.ActivateModule(s, ref); err != nil {
		w.transitionTo(s, StatePursuing)
		s.SetDestination(t.Pos)
		return
	}
	// The warp dropped us next to the target.
	w.transitionTo(s, StateTackling)
}

func (w *World) combatTackle(s *Ship) {
	t := w.liveShip(s.AI.TargetID)
	if t == nil {
		w.dropTarget(s, "target lost")
		w.transitionTo(s, StateDisengaging)
		s.SetDestination(s.AI.Home)
		return
	}
	d := Dist(s.Pos, t.Pos)
	if d > w.tune.Pursuit.TackleRange {
		w.transitionTo(s, StatePursuing)
		s.SetDestination(t.Pos)
		return
	}
	if ref, ok := w.fittedSlot(s, catalogs.EffectTackle); ok {
		w.ActivateModule(s, ref)
	}
	// Webbed or not, close in and open fire.
	w.transitionTo(s, StateEngaging)
	s.SetDestination(t.Pos)
}

func (w *World) dropTarget(s *Ship, reason string) {
	s.AI.TargetID = ""
	s.TargetID = ""
	s.AI.ChaseStartTick = 0
	if ref, ok := w.fittedSlot(s, catalogs.EffectWeapon); ok {
		w.DeactivateModule(s, ref, reason)
	}
}

// alertSecurity sends every patrolling security ship of the sector toward
// pos. Ships already fighting keep their fight.
func (w *World) alertSecurity(pos Vec2) {
	for _, s := range w.shipsSorted() {
		if s.Role != RoleSecurity || s.Destroyed {
			continue
		}
		if s.AI.State != StatePatrol {
			continue
		}
		if err := w.transitionTo(s, StateResponding); err != nil {
			continue
		}
		s.SetDestination(pos)
	}
}
