package reasoning

// State is the phase the engine is in while processing a task
type State int32

const (
	StateIdle State = iota
	StateMatching
	StateSynthesizing
	StateExplaining
	StateRecorded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMatching:
		return "matching"
	case StateSynthesizing:
		return "synthesizing"
	case StateExplaining:
		return "explaining"
	case StateRecorded:
		return "recorded"
	default:
		return "unknown"
	}
}
