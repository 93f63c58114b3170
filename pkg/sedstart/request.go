package sedstart

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidRequest wraps every RunRequest validation failure.
var ErrInvalidRequest = errors.New("invalid run request")

// RunRequest is the body of a runCI call. Exactly one of TestID and SuiteID
// is set.
type RunRequest struct {
	ProjectID int64
	ProfileID int64
	TestID    int64
	SuiteID   int64
	Browser   string
	Headless  bool
}

// Validate checks the request before any network call is made.
func (r *RunRequest) Validate() error {
	switch {
	case r.ProjectID <= 0:
		return fmt.Errorf("%w: project_id must be a positive integer", ErrInvalidRequest)
	case r.ProfileID <= 0:
		return fmt.Errorf("%w: profile_id must be a positive integer", ErrInvalidRequest)
	case r.Browser == "":
		return fmt.Errorf("%w: browser is required", ErrInvalidRequest)
	case r.TestID < 0 || r.SuiteID < 0:
		return fmt.Errorf("%w: test_id and suite_id must be positive integers", ErrInvalidRequest)
	case r.TestID == 0 && r.SuiteID == 0:
		return fmt.Errorf("%w: one of test_id or suite_id is required", ErrInvalidRequest)
	case r.TestID != 0 && r.SuiteID != 0:
		return fmt.Errorf("%w: test_id and suite_id are mutually exclusive", ErrInvalidRequest)
	}
	return nil
}

// Target describes what the request runs, e.g. "test 12" or "suite 4".
func (r *RunRequest) Target() string {
	if r.SuiteID != 0 {
		return fmt.Sprintf("suite %d", r.SuiteID)
	}
	return fmt.Sprintf("test %d", r.TestID)
}

// runRequestBody is the wire form. Its fields mirror RunRequest so the two
// convert directly; the unused id is omitted entirely.
type runRequestBody struct {
	ProjectID int64  `json:"project_id"`
	ProfileID int64  `json:"profile_id"`
	TestID    int64  `json:"test_id,omitempty"`
	SuiteID   int64  `json:"suite_id,omitempty"`
	Browser   string `json:"browser"`
	Headless  bool   `json:"headless"`
}

// MarshalJSON implements json.Marshaler.
func (r RunRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(runRequestBody(r))
}
