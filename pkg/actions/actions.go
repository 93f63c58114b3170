// Package actions publishes run results to the GitHub Actions runner: the
// result output, the job summary, secret masks and error annotations.
// Outside of Actions every call is a no-op.
package actions

import (
	"io"
	"os"
	"strings"

	"github.com/sethvargo/go-githubactions"
)

// ResultOutput is the name of the step output carrying the final status.
const ResultOutput = "result"

// Runner wraps the workflow command toolkit.
type Runner struct {
	action *githubactions.Action
	getenv func(string) string
}

// Option configures a Runner.
type Option func(*options)

type options struct {
	getenv func(string) string
	writer io.Writer
}

// WithGetenv sets the environment lookup. Defaults to os.Getenv.
func WithGetenv(getenv func(string) string) Option {
	return func(o *options) {
		if getenv != nil {
			o.getenv = getenv
		}
	}
}

// WithWriter sets where workflow commands are written. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

func New(opts ...Option) *Runner {
	o := &options{
		getenv: os.Getenv,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Runner{
		action: githubactions.New(
			githubactions.WithGetenv(o.getenv),
			githubactions.WithWriter(o.writer),
		),
		getenv: o.getenv,
	}
}

// InActions reports whether the process runs as a GitHub Actions step.
func (r *Runner) InActions() bool {
	return strings.EqualFold(r.getenv("GITHUB_ACTIONS"), "true")
}

// Mask hides value in every later log line.
func (r *Runner) Mask(value string) {
	if !r.InActions() || strings.TrimSpace(value) == "" {
		return
	}
	r.action.AddMask(value)
}

// SetResult publishes the final status as the result output.
func (r *Runner) SetResult(status string) {
	if !r.InActions() {
		return
	}
	r.action.SetOutput(ResultOutput, status)
}

// AddSummary appends markdown to the job summary. It returns false when no
// summary file is available, so the caller can render it elsewhere.
func (r *Runner) AddSummary(markdown string) bool {
	if !r.InActions() || r.getenv("GITHUB_STEP_SUMMARY") == "" {
		return false
	}
	r.action.AddStepSummary(markdown)
	return true
}

// Error emits an error annotation with the given title.
func (r *Runner) Error(title, msg string) {
	if !r.InActions() {
		return
	}
	a := r.action
	if title != "" {
		a = a.WithFieldsMap(map[string]string{"title": title})
	}
	a.Errorf("%s", msg)
}

// Group opens a collapsible log group and returns the func closing it.
func (r *Runner) Group(title string) func() {
	if !r.InActions() {
		return func() {}
	}
	r.action.Group(title)
	return r.action.EndGroup
}
