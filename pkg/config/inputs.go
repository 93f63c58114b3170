package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Action input names. The runner exposes each declared input as the
// environment variable INPUT_<NAME>.
const (
	InputAPIKey      = "api_key"
	InputProjectID   = "project_id"
	InputProfileID   = "profile_id"
	InputTestID      = "test_id"
	InputSuiteID     = "suite_id"
	InputBrowser     = "browser"
	InputHeadless    = "headless"
	InputEnvironment = "environment"
	InputBaseURL     = "base_url"
	InputAuthScheme  = "auth_scheme"
	InputTranscript  = "transcript"
	InputLogFile     = "log_file"
)

// apiKeyViperKey is the viper key of the API key. It has no config.toml
// entry.
const apiKeyViperKey = "api_key"

// ErrInvalidInput wraps every input validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Inputs are the resolved settings for one run.
type Inputs struct {
	APIKey      string
	ProjectID   int64
	ProfileID   int64
	TestID      int64
	SuiteID     int64
	Browser     string
	Headless    bool
	Environment string
	BaseURL     string
	AuthScheme  string
	Transcript  string
	LogFile     string
}

// LoadInputs reads every input from v, which must come from InitViper.
// Numeric ids must parse as integers; an empty id is zero. Checks that need
// several inputs together, such as test_id versus suite_id, are left to the
// run request.
func LoadInputs(v *viper.Viper) (*Inputs, error) {
	in := &Inputs{
		APIKey:      strings.TrimSpace(v.GetString(apiKeyViperKey)),
		Browser:     strings.TrimSpace(v.GetString("run.browser")),
		Headless:    ParseHeadless(v.GetString("run.headless")),
		Environment: strings.TrimSpace(v.GetString("api.environment")),
		BaseURL:     strings.TrimSpace(v.GetString("api.base_url")),
		AuthScheme:  strings.TrimSpace(v.GetString("api.auth_scheme")),
		Transcript:  strings.TrimSpace(v.GetString("output.transcript")),
		LogFile:     strings.TrimSpace(v.GetString("output.log_file")),
	}

	ids := []struct {
		key    string
		target *int64
	}{
		{"run.project_id", &in.ProjectID},
		{"run.profile_id", &in.ProfileID},
		{"run.test_id", &in.TestID},
		{"run.suite_id", &in.SuiteID},
	}

	for _, id := range ids {
		n, err := parseID(v.GetString(id.key))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, InputFor(id.key), err)
		}
		*id.target = n
	}

	return in, nil
}

// EffectiveConfig folds v, as returned by InitViper, back into a Config so
// values resolved through the precedence chain print like file values.
func EffectiveConfig(v *viper.Viper) (*Config, error) {
	in, err := LoadInputs(v)
	if err != nil {
		return nil, err
	}

	cfg := NewDefaultConfig()
	cfg.API = APIConfig{
		Environment: in.Environment,
		BaseURL:     in.BaseURL,
		AuthScheme:  in.AuthScheme,
	}
	cfg.Run = RunConfig{
		ProjectID: in.ProjectID,
		ProfileID: in.ProfileID,
		TestID:    in.TestID,
		SuiteID:   in.SuiteID,
		Browser:   in.Browser,
		Headless:  in.Headless,
	}
	cfg.Output = OutputConfig{
		Transcript: in.Transcript,
		LogFile:    in.LogFile,
	}

	return cfg, nil
}

// ParseHeadless reports whether a headless input enables headless mode.
// Only "true", in any case, does.
func ParseHeadless(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}
