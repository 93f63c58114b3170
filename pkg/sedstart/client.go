// Package sedstart is a small client for the SedStart CI API. It triggers a
// test or suite run and hands back the server-sent-event stream that reports
// its progress.
package sedstart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/sedstart-action/pkg/logger"
)

const (
	ProdBaseURL = "https://app.sedstart.com"
	QABaseURL   = "https://sedstart.sedinqa.com"

	// RequestIDHeader correlates a run with server side logs.
	RequestIDHeader = "X-Request-ID"
)

// BaseURLFor maps an environment name to its API host. "qa" in any case
// selects the QA host; anything else, including an empty name, selects
// production.
func BaseURLFor(environment string) string {
	if strings.EqualFold(strings.TrimSpace(environment), "qa") {
		return QABaseURL
	}
	return ProdBaseURL
}

// AuthScheme selects how the API key is presented.
type AuthScheme string

const (
	// AuthXAPIKey sends "X-API-Key: <key>".
	AuthXAPIKey AuthScheme = "x-api-key"

	// AuthAPIKey sends "Authorization: APIKey <key>".
	AuthAPIKey AuthScheme = "apikey"
)

// ParseAuthScheme parses a scheme name. Empty selects AuthXAPIKey.
func ParseAuthScheme(s string) (AuthScheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(AuthXAPIKey):
		return AuthXAPIKey, nil
	case string(AuthAPIKey), "authorization":
		return AuthAPIKey, nil
	default:
		return "", fmt.Errorf("unknown auth scheme: %q (available: %s, %s)", s, AuthXAPIKey, AuthAPIKey)
	}
}

// apply sets the auth header for the scheme on h.
func (s AuthScheme) apply(h http.Header, apiKey string) {
	switch s {
	case AuthAPIKey:
		h.Set("Authorization", "APIKey "+apiKey)
	default:
		h.Set("X-API-Key", apiKey)
	}
}

// HTTPError is returned when the API answers the trigger with a non-2xx
// status. Body holds the response body verbatim.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API host, e.g. ProdBaseURL.
	BaseURL string

	// APIKey is the project API key.
	APIKey string

	// AuthScheme defaults to AuthXAPIKey.
	AuthScheme AuthScheme

	// UserAgent is sent with every request when set.
	UserAgent string

	// HTTPClient defaults to a client without a timeout: a run stream stays
	// open for as long as the run takes.
	HTTPClient *http.Client

	// Logger defaults to logger.Nop().
	Logger *slog.Logger
}

// Client calls the SedStart CI API.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	scheme     AuthScheme
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("nil client config")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https: %q", cfg.BaseURL)
	}

	c := &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		scheme:     cfg.AuthScheme,
		userAgent:  cfg.UserAgent,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}

	if c.scheme == "" {
		c.scheme = AuthXAPIKey
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}

	return c, nil
}

// RunURL returns the runCI endpoint for a project.
func (c *Client) RunURL(projectID int64) string {
	return c.baseURL.JoinPath("api", "project", fmt.Sprint(projectID), "runCI").String()
}

// Stream is an open run event stream. The caller must close Body.
type Stream struct {
	Body       io.ReadCloser
	StatusCode int
	RequestID  string
}

// TriggerRun starts a run and returns its event stream once the server
// accepts it. A non-2xx answer is returned as *HTTPError after reading the
// whole response body.
func (c *Client) TriggerRun(ctx context.Context, req *RunRequest) (*Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling run request: %w", err)
	}

	runURL := c.RunURL(req.ProjectID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, runURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	c.scheme.apply(httpReq.Header, c.apiKey)

	c.logger.Debug("sending run request",
		"url", runURL,
		"target", req.Target(),
		"browser", req.Browser,
		"headless", req.Headless,
		"request_id", requestID,
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending run request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.logger.Debug("failed to read error body", "error", readErr)
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	c.logger.Debug("run accepted",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"request_id", requestID,
	)

	return &Stream{
		Body:       resp.Body,
		StatusCode: resp.StatusCode,
		RequestID:  requestID,
	}, nil
}
