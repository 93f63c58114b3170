package credentials

// Credentials represents the stored API keys in credentials.toml, one per
// SedStart environment.
type Credentials struct {
	Version      int                              `toml:"version"`
	Environments map[string]EnvironmentCredential `toml:"environments"`
}

// EnvironmentCredential holds the API key for a single environment.
type EnvironmentCredential struct {
	APIKey string `toml:"api_key"`
}
