package orchestrator

// State is the lifecycle state of one run.
type State string

const (
	// StateRunning - participants are being invoked in order.
	StateRunning State = "RUNNING"
	// StateSucceeded - an approved artifact was extracted and persisted.
	StateSucceeded State = "SUCCEEDED"
	// StateExhausted - every round finished without an approved artifact.
	StateExhausted State = "EXHAUSTED"
	// StateFailed - a fatal error aborted the run.
	StateFailed State = "FAILED"
)

// validTransitions defines the run state machine.
//
//nolint:gochecknoglobals // Intentional package-level constant for state machine definition
var validTransitions = map[State][]State{
	StateRunning: {
		StateRunning, // next participant or next round
		StateSucceeded,
		StateExhausted,
		StateFailed,
	},
	StateSucceeded: {},
	StateExhausted: {},
	StateFailed:    {},
}

// IsValidTransition checks if a run may move from one state to another.
func IsValidTransition(from, to State) bool {
	allowed, exists := validTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidNextStates returns the states reachable from the given state.
func ValidNextStates(from State) []State {
	return validTransitions[from]
}

// IsTerminalState reports whether no further transitions are possible.
func IsTerminalState(state State) bool {
	switch state {
	case StateSucceeded, StateExhausted, StateFailed:
		return true
	case StateRunning:
		return false
	default:
		return false
	}
}

// ExitCode maps a terminal state to the process exit status.
func (s State) ExitCode() int {
	switch s {
	case StateSucceeded:
		return 0
	case StateExhausted:
		return 2
	case StateRunning, StateFailed:
		return 1
	default:
		return 1
	}
}
