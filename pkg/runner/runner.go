// Package runner drives one CI run: it sends the run request, consumes the
// event stream and maps the last reported status onto a pass or fail outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/papercomputeco/sedstart-action/pkg/logger"
	"github.com/papercomputeco/sedstart-action/pkg/runevent"
	"github.com/papercomputeco/sedstart-action/pkg/sedstart"
	"github.com/papercomputeco/sedstart-action/pkg/sse"
	"github.com/papercomputeco/sedstart-action/pkg/utils"
)

// maxRawLogLen caps how much of a malformed payload is logged.
const maxRawLogLen = 512

// Trigger starts a run and returns its event stream.
// *sedstart.Client implements it.
type Trigger interface {
	TriggerRun(ctx context.Context, req *sedstart.RunRequest) (*sedstart.Stream, error)
}

// Outcome summarises a run that reached the event stream.
type Outcome struct {
	Target      string
	RequestID   string
	FinalStatus string
	Success     bool

	// Events counts decoded event payloads, Malformed those that failed to
	// decode, PlainLines the non-data lines shown as-is.
	Events     int
	Malformed  int
	PlainLines int

	Duration time.Duration

	// Repository is filled in by callers that know where the run came from.
	Repository string
}

// Runner executes a single run. It is not safe for concurrent use and is
// meant to be used once.
type Runner struct {
	trigger    Trigger
	logger     *slog.Logger
	out        io.Writer
	transcript io.Writer
	now        func() time.Time
	state      State
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOutput sets where rendered events and plain lines are printed.
// Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithTranscript copies the raw event stream to w.
func WithTranscript(w io.Writer) Option {
	return func(r *Runner) {
		r.transcript = w
	}
}

// WithClock overrides time.Now for durations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

func New(trigger Trigger, opts ...Option) *Runner {
	r := &Runner{
		trigger: trigger,
		logger:  logger.Nop(),
		out:     io.Discard,
		now:     time.Now,
		state:   Idle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// Run triggers req and consumes its stream to the end.
//
// The returned Outcome is non-nil once the server accepted the run, also
// when the stream breaks or the test fails. The error is nil only for a
// success status and otherwise matches ErrConfig, ErrStream, ErrTestFailed
// or is a transport error such as *sedstart.HTTPError.
func (r *Runner) Run(ctx context.Context, req *sedstart.RunRequest) (*Outcome, error) {
	if r.state != Idle {
		return nil, fmt.Errorf("runner already used: state %s", r.state)
	}

	if err := req.Validate(); err != nil {
		r.transition(Failed)
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	start := r.now()
	r.transition(Requesting)

	stream, err := r.trigger.TriggerRun(ctx, req)
	if err != nil {
		r.transition(Failed)
		if errors.Is(err, sedstart.ErrInvalidRequest) {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return nil, err
	}
	defer stream.Body.Close()

	r.transition(Streaming)

	outcome := &Outcome{
		Target:      req.Target(),
		RequestID:   stream.RequestID,
		FinalStatus: runevent.StatusUnknown,
	}

	streamErr := r.consume(stream.Body, outcome)
	outcome.Duration = r.now().Sub(start)

	if streamErr != nil {
		r.transition(Failed)
		return outcome, fmt.Errorf("%w: %w", ErrStream, streamErr)
	}

	if runevent.IsSuccess(outcome.FinalStatus) {
		outcome.Success = true
		r.transition(CompletedSuccess)
		return outcome, nil
	}

	r.transition(CompletedFailure)
	return outcome, &TestFailedError{Status: outcome.FinalStatus}
}

func (r *Runner) consume(body io.Reader, outcome *Outcome) error {
	var opts []sse.Option
	if r.transcript != nil {
		opts = append(opts, sse.WithTee(r.transcript))
	}
	reader := sse.NewReader(body, opts...)

	for {
		line, err := reader.Next()
		if err != nil {
			return err
		}
		if line == nil {
			return nil
		}

		switch line.Kind {
		case sse.PlainText:
			outcome.PlainLines++
			fmt.Fprintln(r.out, line.Text)

		case sse.Candidate:
			r.handleCandidate(line.Text, outcome)
		}
	}
}

func (r *Runner) handleCandidate(text string, outcome *Outcome) {
	res := runevent.Interpret(text, outcome.FinalStatus)
	if res.Err != nil {
		outcome.Malformed++
		r.logger.Warn("skipping malformed event", "raw", utils.Truncate(text, maxRawLogLen), "error", res.Err)
		return
	}

	outcome.Events++

	reported := ""
	if res.Changed {
		reported = res.Status
		if res.Status != outcome.FinalStatus {
			r.logger.Debug("status changed", "from", outcome.FinalStatus, "to", res.Status)
		}
	}
	outcome.FinalStatus = res.Status

	fmt.Fprintln(r.out, runevent.Render(res.Event, reported))
}

func (r *Runner) transition(next State) {
	r.logger.Debug("run state", "from", r.state.String(), "to", next.String())
	r.state = next
}
