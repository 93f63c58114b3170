package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/sedstart-action/pkg/dotdir"
)

// EnvPrefix prefixes the environment variables read outside of an action,
// e.g. SEDSTART_PROJECT_ID.
const EnvPrefix = "SEDSTART"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds every key to its action input
// and SEDSTART_ environment variable.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Action inputs (INPUT_PROJECT_ID, ...), then SEDSTART_PROJECT_ID, ...
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
//
// Empty environment variables count as unset: the runner exports an empty
// INPUT_ variable for every optional input the workflow leaves out.
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution. Nothing is created.
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Find(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.SetConfigFile(filepath.Join(target, configFile))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	// 3. Environment variables.
	for key, info := range configKeys {
		if err := v.BindEnv(append([]string{key}, envNames(info.input)...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	if err := v.BindEnv(append([]string{apiKeyViperKey}, envNames(InputAPIKey)...)...); err != nil {
		return nil, fmt.Errorf("binding %s: %w", apiKeyViperKey, err)
	}

	return v, nil
}

// envNames returns the environment variables backing an input, in the order
// viper should consult them.
func envNames(input string) []string {
	name := strings.ToUpper(strings.ReplaceAll(input, " ", "_"))
	return []string{"INPUT_" + name, EnvPrefix + "_" + name}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// API
	v.SetDefault("api.environment", d.API.Environment)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.auth_scheme", d.API.AuthScheme)

	// Run
	v.SetDefault("run.project_id", d.Run.ProjectID)
	v.SetDefault("run.profile_id", d.Run.ProfileID)
	v.SetDefault("run.test_id", d.Run.TestID)
	v.SetDefault("run.suite_id", d.Run.SuiteID)
	v.SetDefault("run.browser", d.Run.Browser)
	v.SetDefault("run.headless", d.Run.Headless)

	// Output
	v.SetDefault("output.transcript", d.Output.Transcript)
	v.SetDefault("output.log_file", d.Output.LogFile)
}
