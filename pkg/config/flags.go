package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline.
type Flag struct {
	// Name is the long flag name (e.g. "project-id").
	Name string

	// Shorthand is the one-letter short flag (e.g. "p"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "run.project_id").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPIKey      = "api-key"
	FlagProjectID   = "project-id"
	FlagProfileID   = "profile-id"
	FlagTestID      = "test-id"
	FlagSuiteID     = "suite-id"
	FlagBrowser     = "browser"
	FlagHeadless    = "headless"
	FlagEnvironment = "environment"
	FlagBaseURL     = "base-url"
	FlagAuthScheme  = "auth-scheme"
	FlagTranscript  = "transcript"
	FlagLogFile     = "log-file"
)

// RunFlags is the registry of flags accepted by "sedstart run". Ids are
// string flags so that the same parsing applies to flags, inputs and the
// config file.
var RunFlags = FlagSet{
	FlagAPIKey: {
		Name:        "api-key",
		ViperKey:    apiKeyViperKey,
		Description: "SedStart API key (prefer INPUT_API_KEY or SEDSTART_API_KEY)",
	},
	FlagProjectID: {
		Name:        "project-id",
		Shorthand:   "p",
		ViperKey:    "run.project_id",
		Description: "Project id",
	},
	FlagProfileID: {
		Name:        "profile-id",
		ViperKey:    "run.profile_id",
		Description: "Profile id",
	},
	FlagTestID: {
		Name:        "test-id",
		Shorthand:   "t",
		ViperKey:    "run.test_id",
		Description: "Test id to run (exclusive with --suite-id)",
	},
	FlagSuiteID: {
		Name:        "suite-id",
		Shorthand:   "s",
		ViperKey:    "run.suite_id",
		Description: "Suite id to run (exclusive with --test-id)",
	},
	FlagBrowser: {
		Name:        "browser",
		Shorthand:   "b",
		ViperKey:    "run.browser",
		Description: "Browser name (e.g. chrome, firefox, edge)",
	},
	FlagHeadless: {
		Name:        "headless",
		ViperKey:    "run.headless",
		Description: "Run the browser headless",
	},
	FlagEnvironment: {
		Name:        "environment",
		Shorthand:   "e",
		ViperKey:    "api.environment",
		Description: "SedStart environment (prod, qa)",
	},
	FlagBaseURL: {
		Name:        "base-url",
		ViperKey:    "api.base_url",
		Description: "SedStart API base URL, overrides --environment",
	},
	FlagAuthScheme: {
		Name:        "auth-scheme",
		ViperKey:    "api.auth_scheme",
		Description: "How the API key is sent (x-api-key, apikey)",
	},
	FlagTranscript: {
		Name:        "transcript",
		ViperKey:    "output.transcript",
		Description: "Write the raw event stream to this file",
	},
	FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "output.log_file",
		Description: "Also write debug-level JSON log records to this file",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
