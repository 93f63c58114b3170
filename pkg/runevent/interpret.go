package runevent

// Result is the outcome of interpreting one candidate payload.
type Result struct {
	// Status is the running final status after this payload.
	Status string

	// Changed is true when the payload carried a status.
	Changed bool

	// Event is the decoded payload, nil when decoding failed.
	Event *Event

	// Err is the decode error, if any. A decode error never changes Status.
	Err error
}

// Interpret decodes candidate and folds the status it reports into current.
// It never fails: a malformed payload leaves current unchanged and is
// reported through Result.Err for the caller to log.
func Interpret(candidate, current string) Result {
	ev, err := Decode(candidate)
	if err != nil {
		return Result{Status: current, Err: err}
	}

	res := Result{Status: current, Event: ev}
	if status, ok := ev.Status(); ok {
		res.Status = status
		res.Changed = true
	}

	return res
}
