package bridge

import (
	"sync"

	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// State is the lifecycle state of a bridge.
type State int

const (
	StateStopped State = iota
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// validTransitions encodes the bridge state machine. A crashed bridge can
// be started again; everything else follows the start/stop cycle.
var validTransitions = map[State][]State{
	StateStopped:  {StateRunning},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateRunning},
}

// lifecycle guards the bridge state with a single lock.
type lifecycle struct {
	mu    sync.RWMutex
	state State
}

func (l *lifecycle) current() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// transition moves to the target state, failing with ErrAlreadyRunning or
// ErrNotRunning when the move is not allowed from the current state.
func (l *lifecycle) transition(to State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, allowed := range validTransitions[l.state] {
		if allowed == to {
			l.state = to
			return nil
		}
	}
	if to == StateRunning {
		return telemetry.ErrAlreadyRunning
	}
	return telemetry.ErrNotRunning
}
