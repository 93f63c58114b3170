package config

const (
	defaultEnvironment = "prod"
	defaultAuthScheme  = "x-api-key"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Environment: defaultEnvironment,
			AuthScheme:  defaultAuthScheme,
		},
	}
}
