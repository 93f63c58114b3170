package runner_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing/iotest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sedstart-action/pkg/logger"
	"github.com/papercomputeco/sedstart-action/pkg/runner"
	"github.com/papercomputeco/sedstart-action/pkg/sedstart"
)

// fakeTrigger serves a fixed body without any HTTP.
type fakeTrigger struct {
	body  io.Reader
	err   error
	calls int
}

func (f *fakeTrigger) TriggerRun(_ context.Context, _ *sedstart.RunRequest) (*sedstart.Stream, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &sedstart.Stream{
		Body:       io.NopCloser(f.body),
		StatusCode: http.StatusOK,
		RequestID:  "req-1",
	}, nil
}

func validRequest() *sedstart.RunRequest {
	return &sedstart.RunRequest{
		ProjectID: 1,
		ProfileID: 2,
		TestID:    3,
		Browser:   "chrome",
	}
}

var _ = Describe("Runner", func() {
	var (
		out    *bytes.Buffer
		logBuf *bytes.Buffer
		log    = func() string { return logBuf.String() }
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		logBuf = &bytes.Buffer{}
	})

	newRunner := func(t runner.Trigger, opts ...runner.Option) *runner.Runner {
		base := []runner.Option{
			runner.WithOutput(out),
			runner.WithLogger(logger.New(logger.WithWriter(logBuf), logger.WithDebug(true))),
		}
		return runner.New(t, append(base, opts...)...)
	}

	Describe("against a SedStart server", func() {
		var (
			server  *httptest.Server
			calls   atomic.Int32
			handler http.HandlerFunc
			client  *sedstart.Client
		)

		BeforeEach(func() {
			calls.Store(0)
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				handler(w, r)
			}))
			DeferCleanup(server.Close)

			var err error
			client, err = sedstart.NewClient(&sedstart.Config{
				BaseURL: server.URL,
				APIKey:  "k",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("succeeds when the last status is PASS", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				fmt.Fprint(w, "Starting run\n")
				fmt.Fprint(w, "data: {\"run\":{\"status\":\"RUNNING\"},\"message\":\"started\"}\n\n")
				w.(http.Flusher).Flush()
				fmt.Fprint(w, "data: not json\n\n")
				fmt.Fprint(w, "data: {\"result\":{\"status\":\"PASS\",\"message\":\"all good\"}}\n\n")
			}

			r := newRunner(client)
			outcome, err := r.Run(context.Background(), validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(r.State()).To(Equal(runner.CompletedSuccess))

			Expect(outcome.Success).To(BeTrue())
			Expect(outcome.FinalStatus).To(Equal("PASS"))
			Expect(outcome.Events).To(Equal(2))
			Expect(outcome.Malformed).To(Equal(1))
			Expect(outcome.PlainLines).To(Equal(1))
			Expect(outcome.RequestID).NotTo(BeEmpty())
			Expect(outcome.Target).To(Equal("test 3"))

			Expect(out.String()).To(ContainSubstring("Starting run"))
			Expect(out.String()).To(ContainSubstring("all good"))
			Expect(log()).To(ContainSubstring("skipping malformed event"))
			Expect(log()).To(ContainSubstring("not json"))
		})

		It("accepts SUCCESS as a success token", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "data: {\"data\":{\"status\":\"SUCCESS\"}}\n")
			}

			outcome, err := newRunner(client).Run(context.Background(), validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.FinalStatus).To(Equal("SUCCESS"))
		})

		It("fails with the final status otherwise", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "data: {\"result\":{\"status\":\"PASS\"}}\n")
				fmt.Fprint(w, "data: {\"result\":{\"status\":\"FAIL\"}}\n")
			}

			r := newRunner(client)
			outcome, err := r.Run(context.Background(), validRequest())
			Expect(err).To(MatchError(runner.ErrTestFailed))
			Expect(err).To(MatchError("Test finished with status: FAIL"))
			Expect(outcome.Success).To(BeFalse())
			Expect(r.State()).To(Equal(runner.CompletedFailure))
		})

		It("treats lowercase pass as a failure", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "data: {\"result\":{\"status\":\"pass\"}}\n")
			}

			_, err := newRunner(client).Run(context.Background(), validRequest())
			Expect(err).To(MatchError("Test finished with status: pass"))
		})

		It("fails with UNKNOWN when no status is reported", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "hello\n")
				fmt.Fprint(w, "data: {\"message\":\"no status here\"}\n")
			}

			outcome, err := newRunner(client).Run(context.Background(), validRequest())
			Expect(err).To(MatchError("Test finished with status: UNKNOWN"))
			Expect(outcome.FinalStatus).To(Equal("UNKNOWN"))
		})

		It("fails with UNKNOWN on an empty stream", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}

			outcome, err := newRunner(client).Run(context.Background(), validRequest())
			Expect(err).To(MatchError(runner.ErrTestFailed))
			Expect(outcome.Events).To(BeZero())
		})

		It("reads a trailing event without a newline", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "data: {\"result\":{\"status\":\"PASS\"}}")
			}

			outcome, err := newRunner(client).Run(context.Background(), validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.FinalStatus).To(Equal("PASS"))
		})

		It("reports HTTP errors with the body", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, "forbidden")
			}

			r := newRunner(client)
			outcome, err := r.Run(context.Background(), validRequest())
			Expect(outcome).To(BeNil())
			Expect(err).To(MatchError("HTTP 403: forbidden"))

			var httpErr *sedstart.HTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(http.StatusForbidden))
			Expect(r.State()).To(Equal(runner.Failed))
		})

		It("makes no call for an invalid request", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {}

			req := validRequest()
			req.TestID = 0

			r := newRunner(client)
			_, err := r.Run(context.Background(), req)
			Expect(err).To(MatchError(runner.ErrConfig))
			Expect(err.Error()).To(ContainSubstring("one of test_id or suite_id is required"))
			Expect(calls.Load()).To(BeZero())
			Expect(r.State()).To(Equal(runner.Failed))
		})

		It("makes no call when both test and suite are set", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {}

			req := validRequest()
			req.SuiteID = 9

			_, err := newRunner(client).Run(context.Background(), req)
			Expect(err).To(MatchError(runner.ErrConfig))
			Expect(calls.Load()).To(BeZero())
		})

		It("copies the raw stream to the transcript", func() {
			raw := "data: {\"result\":{\"status\":\"PASS\"}}\r\n\r\n"
			handler = func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, raw)
			}

			var transcript bytes.Buffer
			_, err := newRunner(client, runner.WithTranscript(&transcript)).Run(context.Background(), validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(transcript.String()).To(Equal(raw))
		})
	})

	Describe("with a broken stream", func() {
		It("reports ErrStream distinct from a test failure", func() {
			trigger := &fakeTrigger{body: io.MultiReader(
				strings.NewReader("data: {\"result\":{\"status\":\"PASS\"}}\n"),
				iotest.ErrReader(errors.New("connection reset")),
			)}

			r := newRunner(trigger)
			outcome, err := r.Run(context.Background(), validRequest())
			Expect(err).To(MatchError(runner.ErrStream))
			Expect(err).NotTo(MatchError(runner.ErrTestFailed))
			Expect(err.Error()).To(Equal("stream error: connection reset"))
			Expect(outcome.FinalStatus).To(Equal("PASS"))
			Expect(outcome.Success).To(BeFalse())
			Expect(r.State()).To(Equal(runner.Failed))
		})
	})

	Describe("with a failing trigger", func() {
		It("passes transport errors through", func() {
			trigger := &fakeTrigger{err: errors.New("sending run request: dial tcp: refused")}

			r := newRunner(trigger)
			_, err := r.Run(context.Background(), validRequest())
			Expect(err).To(MatchError(ContainSubstring("refused")))
			Expect(err).NotTo(MatchError(runner.ErrConfig))
			Expect(r.State()).To(Equal(runner.Failed))
		})
	})

	It("refuses to run twice", func() {
		trigger := &fakeTrigger{body: strings.NewReader("data: {\"result\":{\"status\":\"PASS\"}}\n")}

		r := newRunner(trigger)
		_, err := r.Run(context.Background(), validRequest())
		Expect(err).NotTo(HaveOccurred())

		_, err = r.Run(context.Background(), validRequest())
		Expect(err).To(MatchError(ContainSubstring("already used")))
		Expect(trigger.calls).To(Equal(1))
	})

	It("measures the run with the clock", func() {
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		ticks := 0
		clock := func() time.Time {
			ticks++
			return base.Add(time.Duration(ticks) * 2 * time.Second)
		}

		trigger := &fakeTrigger{body: strings.NewReader("data: {\"result\":{\"status\":\"PASS\"}}\n")}
		outcome, err := newRunner(trigger, runner.WithClock(clock)).Run(context.Background(), validRequest())
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Duration).To(Equal(2 * time.Second))
	})
})

var _ = Describe("Outcome", func() {
	It("renders a markdown summary", func() {
		o := &runner.Outcome{
			Target:      "suite 4",
			RequestID:   "abc",
			FinalStatus: "PASS",
			Success:     true,
			Events:      3,
			Malformed:   1,
			Duration:    1500 * time.Millisecond,
		}

		md := o.Markdown()
		Expect(md).To(ContainSubstring("Passed"))
		Expect(md).To(ContainSubstring("| Target | suite 4 |"))
		Expect(md).To(ContainSubstring("`PASS`"))
		Expect(md).To(ContainSubstring("| Malformed events | 1 |"))
		Expect(md).To(ContainSubstring("| Duration | 1.5s |"))
		Expect(md).To(ContainSubstring("`abc`"))
	})

	It("marks failures", func() {
		o := &runner.Outcome{FinalStatus: "UNKNOWN"}
		Expect(o.Markdown()).To(ContainSubstring("Failed"))
		Expect(o.Markdown()).NotTo(ContainSubstring("Request ID"))
		Expect(o.Markdown()).NotTo(ContainSubstring("Repository"))
	})

	It("leads with the repository when known", func() {
		o := &runner.Outcome{Target: "test 9", Repository: "acme/storefront"}
		Expect(o.Markdown()).To(ContainSubstring("| Repository | acme/storefront |\n| Target | test 9 |"))
	})
})

var _ = Describe("State", func() {
	DescribeTable("names",
		func(s runner.State, name string, terminal bool) {
			Expect(s.String()).To(Equal(name))
			Expect(s.Terminal()).To(Equal(terminal))
		},
		Entry("Idle", runner.Idle, "idle", false),
		Entry("Requesting", runner.Requesting, "requesting", false),
		Entry("Streaming", runner.Streaming, "streaming", false),
		Entry("CompletedSuccess", runner.CompletedSuccess, "completed_success", true),
		Entry("CompletedFailure", runner.CompletedFailure, "completed_failure", true),
		Entry("Failed", runner.Failed, "failed", true),
	)
})
