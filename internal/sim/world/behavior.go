package world

// State is an NPC controller state. The controllers are flat state
// machines: each decision reads the previous tick's world, picks at most
// one transition and issues movement/module actions for the current state.
type State string

const (
	// Security / bounty / pirate combat states.
	StatePatrol       State = "PATROL"
	StateResponding   State = "RESPONDING"
	StateEngaging     State = "ENGAGING"
	StatePursuing     State = "PURSUING"
	StateIntercepting State = "INTERCEPTING"
	StateTackling     State = "TACKLING"
	StateDisengaging  State = "DISENGAGING"
	StateReturning    State = "RETURNING"

	// Miner states. StateReturning is shared.
	StateMining  State = "MINING"
	StateDocked  State = "DOCKED"
	StateFleeing State = "FLEEING"

	// Fleet states.
	StateFollowing State = "FOLLOWING"
	StateHolding   State = "HOLDING"
	StateDefending State = "DEFENDING"
)

// allowedTransitions is the closed edge set of every controller FSM. An
// edge missing here is a bug in the controller, not a tunable; transitionTo
// rejects it with ErrInvalidTransition so the ship falls back to its
// current state instead of corrupting the machine.
var allowedTransitions = map[State][]State{
	StatePatrol:       {StateResponding, StateEngaging},
	StateResponding:   {StateEngaging, StateReturning},
	StateEngaging:     {StatePursuing, StateDisengaging, StateReturning},
	StatePursuing:     {StateEngaging, StateIntercepting, StateTackling, StateDisengaging},
	StateIntercepting: {StateEngaging, StatePursuing, StateTackling, StateDisengaging},
	StateTackling:     {StateEngaging, StatePursuing, StateDisengaging},
	StateDisengaging:  {StateReturning},
	StateReturning:    {StatePatrol, StateMining, StateDocked},

	StateMining:  {StateReturning, StateFleeing},
	StateDocked:  {StateMining},
	StateFleeing: {StateMining, StateReturning, StateDocked},

	StateFollowing: {StateHolding, StateDefending},
	StateHolding:   {StateFollowing, StateDefending},
	StateDefending: {StateFollowing, StateHolding},
}

func canTransition(from, to State) bool {
	if from == to {
		return true
	}
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// transitionTo moves the ship's controller to the given state, validating
// the edge against the FSM table.
func (w *World) transitionTo(s *Ship, to State) error {
	if !canTransition(s.AI.State, to) {
		return ErrInvalidTransition
	}
	s.AI.State = to
	return nil
}
