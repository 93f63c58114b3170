// Package credentials stores SedStart API keys for local runs outside of
// GitHub Actions, where the key arrives as a secret input instead.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/sedstart-action/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	EnvironmentProd = "prod"
	EnvironmentQA   = "qa"
)

// Manager manages reading and writing credentials.toml in the .sedstart/ directory.
type Manager struct {
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .sedstart/ directory; otherwise the standard dotdir resolution
// applies. The directory is created when missing.
func NewManager(override string) (*Manager, error) {
	target, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}

	return &Manager{targetPath: filepath.Join(target, credentialsFile)}, nil
}

// FindKey looks up the stored key for environment without creating any
// directory. It returns an empty string when nothing is stored.
func FindKey(override, environment string) (string, error) {
	target, err := dotdir.NewManager().Find(override)
	if err != nil {
		return "", err
	}
	if target == "" {
		return "", nil
	}

	mgr := &Manager{targetPath: filepath.Join(target, credentialsFile)}
	return mgr.GetKey(environment)
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:      currentVersion,
				Environments: make(map[string]EnvironmentCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Environments == nil {
		creds.Environments = make(map[string]EnvironmentCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetKey stores an API key for the given environment.
func (m *Manager) SetKey(environment, key string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Environments[NormalizeEnvironment(environment)] = EnvironmentCredential{APIKey: key}

	return m.Save(creds)
}

// GetKey returns the stored API key for the given environment.
// Returns an empty string if no key is stored.
func (m *Manager) GetKey(environment string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	ec, ok := creds.Environments[NormalizeEnvironment(environment)]
	if !ok {
		return "", nil
	}

	return ec.APIKey, nil
}

// RemoveKey deletes the stored credential for an environment.
func (m *Manager) RemoveKey(environment string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Environments, NormalizeEnvironment(environment))

	return m.Save(creds)
}

// ListEnvironments returns the names of environments that have stored credentials.
func (m *Manager) ListEnvironments() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	envs := make([]string, 0, len(creds.Environments))
	for name := range creds.Environments {
		envs = append(envs, name)
	}

	sort.Strings(envs)

	return envs, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// NormalizeEnvironment maps an environment input onto the key it is stored
// under. Anything other than qa targets production.
func NormalizeEnvironment(environment string) string {
	if strings.EqualFold(strings.TrimSpace(environment), EnvironmentQA) {
		return EnvironmentQA
	}
	return EnvironmentProd
}

// SupportedEnvironments returns the environments a key can be stored for.
func SupportedEnvironments() []string {
	return []string{EnvironmentProd, EnvironmentQA}
}

// IsSupportedEnvironment returns true if the given environment is supported.
func IsSupportedEnvironment(environment string) bool {
	return slices.Contains(SupportedEnvironments(), strings.ToLower(strings.TrimSpace(environment)))
}
