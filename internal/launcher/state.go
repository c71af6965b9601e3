package launcher

// State is a step of the launch sequence. Steps only move forward; a
// fatal error leaves the launcher at the last state it reached.
type State int

const (
	Idle State = iota
	EnvironmentReady
	CommandComposed
	GroupConfigured
	ChildRunning
	ChildExited
	Cleaned
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case EnvironmentReady:
		return "environment_ready"
	case CommandComposed:
		return "command_composed"
	case GroupConfigured:
		return "group_configured"
	case ChildRunning:
		return "child_running"
	case ChildExited:
		return "child_exited"
	case Cleaned:
		return "cleaned"
	default:
		return "unknown"
	}
}
