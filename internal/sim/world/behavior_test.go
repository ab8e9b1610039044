package world

import "testing"

func TestCanTransition_EdgeSet(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StatePatrol, StateResponding},
		{StatePatrol, StateEngaging},
		{StateResponding, StateEngaging},
		{StateEngaging, StatePursuing},
		{StatePursuing, StateTackling},
		{StatePursuing, StateIntercepting},
		{StateIntercepting, StateTackling},
		{StateTackling, StateEngaging},
		{StateDisengaging, StateReturning},
		{StateReturning, StatePatrol},
		{StateMining, StateFleeing},
		{StateFleeing, StateDocked},
		{StateDocked, StateMining},
		{StateFollowing, StateDefending},
		{StateHolding, StateFollowing},
	}
	for _, e := range allowed {
		if !canTransition(e.from, e.to) {
			t.Errorf("%s -> %s should be allowed", e.from, e.to)
		}
	}

	denied := []struct{ from, to State }{
		{StatePatrol, StateTackling},
		{StatePatrol, StateDisengaging},
		{StateDocked, StateReturning},
		{StateDocked, StateFleeing},
		{StateMining, StatePatrol},
		{StateDisengaging, StateEngaging},
		{StateFollowing, StatePatrol},
		{StateEngaging, StateIntercepting},
	}
	for _, e := range denied {
		if canTransition(e.from, e.to) {
			t.Errorf("%s -> %s should be rejected", e.from, e.to)
		}
	}

	// Self-loops are always fine.
	if !canTransition(StatePatrol, StatePatrol) {
		t.Errorf("self transition rejected")
	}
}

func TestTransitionTo_BadEdgeKeepsState(t *testing.T) {
	w := newTestWorld(t, "sec_haven", 1)
	s := spawnTestShip(w, "ship_wasp", "fac_concord", Friendly, RoleSecurity, Vec2{})
	s.AI.State = StatePatrol

	if err := w.transitionTo(s, StateTackling); err != ErrInvalidTransition {
		t.Fatalf("err = %v", err)
	}
	if s.AI.State != StatePatrol {
		t.Fatalf("state changed on rejected edge: %s", s.AI.State)
	}
	if err := w.transitionTo(s, StateEngaging); err != nil {
		t.Fatalf("valid edge rejected: %v", err)
	}
	if s.AI.State != StateEngaging {
		t.Fatalf("state = %s", s.AI.State)
	}
}
