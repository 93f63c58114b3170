package runner

// State is a step of the run lifecycle:
//
//	Idle -> Requesting -> Streaming -> CompletedSuccess | CompletedFailure
//	                  \-> Failed    \-> Failed
type State int

const (
	Idle State = iota
	Requesting
	Streaming
	CompletedSuccess
	CompletedFailure
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Streaming:
		return "streaming"
	case CompletedSuccess:
		return "completed_success"
	case CompletedFailure:
		return "completed_failure"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == CompletedSuccess || s == CompletedFailure || s == Failed
}
