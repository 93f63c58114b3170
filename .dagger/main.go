// sedstart-action CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/sedstart/internal/dagger"
)

// Sedstart is the main module for the sedstart-action CI/CD pipeline
type Sedstart struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Sedstart CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", ".sedstart"]
	source *dagger.Directory,
) *Sedstart {
	return &Sedstart{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with the project
// source mounted. The module is pure Go, so CGO stays disabled.
//
// It is the shared foundation for tests, builds, and linting.
func (s *Sedstart) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", s.Source)
}

// Test runs the sedstart unit tests via "go test"
//
// +check
func (s *Sedstart) Test(ctx context.Context) (string, error) {
	return s.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
