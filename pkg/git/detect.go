// Package git detects which repository a run was started from.
package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Repository returns the "owner/name" of the repository the run belongs to.
// GITHUB_REPOSITORY wins when set, otherwise the top level of the enclosing
// git checkout is used, and finally the base name of the working directory.
func Repository(getenv func(string) string) string {
	if getenv != nil {
		if repo := strings.TrimSpace(getenv("GITHUB_REPOSITORY")); repo != "" {
			return repo
		}
	}
	return RepoName()
}

// RepoName returns the name of the current git repository.
// It runs "git rev-parse --show-toplevel" and returns the base directory name.
// If not inside a git repo, it falls back to the base name of the working directory.
func RepoName() string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel").Output()
	if err == nil {
		top := strings.TrimSpace(string(out))
		if top != "" {
			return filepath.Base(top)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Base(wd)
}
