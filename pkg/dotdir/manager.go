// Package dotdir manages the .sedstart/ and ~/.sedstart directories that hold
// config.toml and credentials.toml for local runs.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the sedstart directory.
	dirName = ".sedstart"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .sedstart/ directory,
// creating it when missing.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.sedstart/ dir
//  3. Home ~/.sedstart/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating sedstart directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Find resolves the same directory as Target without creating anything.
// It returns an empty string when no override is given and neither the local
// nor the home directory exists. A run inside an action never touches the
// runner's filesystem this way.
func (m *Manager) Find(overrideDir string) (string, error) {
	if overrideDir != "" {
		return filepath.Abs(overrideDir)
	}

	if m.localDirExists() {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory means no ~/.sedstart either.
		return "", nil
	}

	dir := filepath.Join(home, dirName)
	if isDir(dir) {
		return dir, nil
	}

	return "", nil
}

// localDirExists checks whether a .sedstart/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	return isDir(filepath.Join(cwd, dirName))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
