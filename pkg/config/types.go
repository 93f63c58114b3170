package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent sedstart configuration stored as
// config.toml in the .sedstart/ directory. The TOML layout uses sections for
// logical grouping. The API key is never stored here; see pkg/credentials.
type Config struct {
	Version int          `toml:"version"`
	API     APIConfig    `toml:"api"`
	Run     RunConfig    `toml:"run"`
	Output  OutputConfig `toml:"output"`
}

// APIConfig selects and authenticates against the SedStart host.
type APIConfig struct {
	Environment string `toml:"environment,omitempty"`
	BaseURL     string `toml:"base_url,omitempty"`
	AuthScheme  string `toml:"auth_scheme,omitempty"`
}

// RunConfig holds defaults for the run request.
type RunConfig struct {
	ProjectID int64  `toml:"project_id,omitempty,omitzero"`
	ProfileID int64  `toml:"profile_id,omitempty,omitzero"`
	TestID    int64  `toml:"test_id,omitempty,omitzero"`
	SuiteID   int64  `toml:"suite_id,omitempty,omitzero"`
	Browser   string `toml:"browser,omitempty"`
	Headless  bool   `toml:"headless,omitempty,omitzero"`
}

// OutputConfig holds settings for run artifacts written locally.
type OutputConfig struct {
	Transcript string `toml:"transcript,omitempty"`
	LogFile    string `toml:"log_file,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to its action input name
// and a getter and setter on *Config.
type configKeyInfo struct {
	input string
	get   func(c *Config) string
	set   func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.environment": {
		input: InputEnvironment,
		get:   func(c *Config) string { return c.API.Environment },
		set:   func(c *Config, v string) error { c.API.Environment = v; return nil },
	},
	"api.base_url": {
		input: InputBaseURL,
		get:   func(c *Config) string { return c.API.BaseURL },
		set:   func(c *Config, v string) error { c.API.BaseURL = v; return nil },
	},
	"api.auth_scheme": {
		input: InputAuthScheme,
		get:   func(c *Config) string { return c.API.AuthScheme },
		set:   func(c *Config, v string) error { c.API.AuthScheme = v; return nil },
	},
	"run.project_id": {
		input: InputProjectID,
		get:   func(c *Config) string { return formatID(c.Run.ProjectID) },
		set:   func(c *Config, v string) error { return setID(&c.Run.ProjectID, "run.project_id", v) },
	},
	"run.profile_id": {
		input: InputProfileID,
		get:   func(c *Config) string { return formatID(c.Run.ProfileID) },
		set:   func(c *Config, v string) error { return setID(&c.Run.ProfileID, "run.profile_id", v) },
	},
	"run.test_id": {
		input: InputTestID,
		get:   func(c *Config) string { return formatID(c.Run.TestID) },
		set:   func(c *Config, v string) error { return setID(&c.Run.TestID, "run.test_id", v) },
	},
	"run.suite_id": {
		input: InputSuiteID,
		get:   func(c *Config) string { return formatID(c.Run.SuiteID) },
		set:   func(c *Config, v string) error { return setID(&c.Run.SuiteID, "run.suite_id", v) },
	},
	"run.browser": {
		input: InputBrowser,
		get:   func(c *Config) string { return c.Run.Browser },
		set:   func(c *Config, v string) error { c.Run.Browser = v; return nil },
	},
	"run.headless": {
		input: InputHeadless,
		get:   func(c *Config) string { return strconv.FormatBool(c.Run.Headless) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for run.headless: %w", err)
			}
			c.Run.Headless = b
			return nil
		},
	},
	"output.transcript": {
		input: InputTranscript,
		get:   func(c *Config) string { return c.Output.Transcript },
		set:   func(c *Config, v string) error { c.Output.Transcript = v; return nil },
	},
	"output.log_file": {
		input: InputLogFile,
		get:   func(c *Config) string { return c.Output.LogFile },
		set:   func(c *Config, v string) error { c.Output.LogFile = v; return nil },
	},
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func setID(target *int64, key, v string) error {
	if v == "" {
		*target = 0
		return nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if n < 0 {
		return fmt.Errorf("invalid value for %s: must not be negative", key)
	}

	*target = n
	return nil
}
