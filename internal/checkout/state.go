package checkout

import "fmt"

// State is the phase a checkout session is in. Transitions are guarded so a
// submission can never start while another is in flight.
type State string

const (
	StateEditing    State = "editing"
	StateLocating   State = "locating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateEditing:    {StateLocating, StateSubmitting},
	StateLocating:   {StateEditing, StateSubmitting},
	StateSubmitting: {StateSucceeded, StateFailed},
	StateFailed:     {StateEditing, StateLocating, StateSubmitting},
	StateSucceeded:  {},
}

// Machine tracks the session state. Zero value starts in StateEditing.
type Machine struct {
	current State
}

// NewMachine returns a machine in StateEditing.
func NewMachine() *Machine {
	return &Machine{current: StateEditing}
}

// Current returns the current state.
func (m *Machine) Current() State {
	if m.current == "" {
		return StateEditing
	}
	return m.current
}

// Transition moves to the target state or returns an error when the move is
// not allowed from the current state.
func (m *Machine) Transition(to State) error {
	from := m.Current()
	for _, allowed := range transitions[from] {
		if allowed == to {
			m.current = to
			return nil
		}
	}
	return fmt.Errorf("checkout: illegal transition %s -> %s", from, to)
}

// InFlight reports whether a submission is currently running.
func (m *Machine) InFlight() bool {
	return m.Current() == StateSubmitting
}
