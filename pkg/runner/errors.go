package runner

import "errors"

var (
	// ErrConfig is returned when the run request is rejected before any
	// network call.
	ErrConfig = errors.New("invalid configuration")

	// ErrStream is returned when the event stream breaks after the server
	// accepted the run.
	ErrStream = errors.New("stream error")

	// ErrTestFailed matches every *TestFailedError.
	ErrTestFailed = errors.New("test failed")
)

// TestFailedError is returned when the stream ends with a status other than
// a success token, including when no status was ever reported.
type TestFailedError struct {
	Status string
}

func (e *TestFailedError) Error() string {
	return "Test finished with status: " + e.Status
}

func (e *TestFailedError) Is(target error) bool {
	return target == ErrTestFailed
}
