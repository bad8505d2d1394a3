package pipeline

// State is a step of the per-job state machine.
type State int

const (
	StateStart State = iota
	StateResolving
	StateExtracting
	StateCorrecting
	StateSynthesizing
	StateAssembling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateResolving:
		return "RESOLVING"
	case StateExtracting:
		return "EXTRACTING"
	case StateCorrecting:
		return "CORRECTING"
	case StateSynthesizing:
		return "SYNTHESIZING"
	case StateAssembling:
		return "ASSEMBLING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Observer is notified of every state transition of a job.
type Observer func(jobID string, from, to State)
