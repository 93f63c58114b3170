package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/sedstart/internal/dagger"
)

const modulePath = "github.com/papercomputeco/sedstart-action"

// Build and return directory of go binaries
func (s *Sedstart) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	// define build matrix
	gooses := []string{"linux", "darwin"}
	goarches := []string{"amd64", "arm64"}

	// create empty directory to put build artifacts
	outputs := dag.Directory()

	for _, goos := range gooses {
		for _, goarch := range goarches {
			// create directory for each OS and architecture
			path := fmt.Sprintf("%s/%s/", goos, goarch)

			build := s.binary(goos, goarch, ldflags)

			// add build to outputs
			outputs = outputs.WithFile(path+"sedstart", build)
		}
	}

	// return build directory
	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (s *Sedstart) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	return s.Build(ctx, releaseLdflags(version, commit))
}

// binary cross-compiles ./cli/sedstart for one platform.
func (s *Sedstart) binary(goos, goarch, ldflags string) *dagger.File {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("GOOS", goos).
		WithEnvVariable("GOARCH", goarch).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithDirectory("/src", s.Source).
		WithWorkdir("/src").
		WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", "/out/sedstart", "./cli/sedstart"}).
		File("/out/sedstart")
}

func releaseLdflags(version, commit string) string {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X '%s/pkg/utils.Version=%s'", modulePath, version),
		fmt.Sprintf("-X '%s/pkg/utils.Sha=%s'", modulePath, commit),
		fmt.Sprintf("-X '%s/pkg/utils.Buildtime=%s'", modulePath, buildtime),
	}

	return strings.Join(ldflags, " ")
}
