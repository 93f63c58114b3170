package main

import (
	"context"
	"fmt"

	"dagger/sedstart/internal/dagger"
)

// Image returns the action container: a static sedstart binary on alpine
// with "sedstart run" as its entrypoint, as action.yml expects.
func (s *Sedstart) Image(
	// Version string of build
	// +optional
	// +default="dev"
	version string,

	// Git commit SHA of build
	// +optional
	// +default="HEAD"
	commit string,
) *dagger.Container {
	return dag.Container().
		From("alpine:3.22").
		WithExec([]string{"apk", "add", "--no-cache", "ca-certificates"}).
		WithFile("/usr/local/bin/sedstart", s.binary("linux", "amd64", releaseLdflags(version, commit))).
		WithEntrypoint([]string{"/usr/local/bin/sedstart", "run"})
}

// Release builds the action image and publishes it under the version tag
// and "latest"
func (s *Sedstart) Release(
	ctx context.Context,

	// Version string (e.g., "v1.0.0")
	version string,

	// Git commit SHA
	commit string,

	// Image repository (e.g., "ghcr.io/papercomputeco/sedstart-action")
	repository string,

	// Registry username
	username string,

	// Registry password or token
	password *dagger.Secret,
) ([]string, error) {
	image := s.Image(version, commit).
		WithRegistryAuth(repository, username, password)

	var refs []string
	for _, tag := range []string{version, "latest"} {
		ref, err := image.Publish(ctx, fmt.Sprintf("%s:%s", repository, tag))
		if err != nil {
			return refs, fmt.Errorf("could not publish %s image: %w", tag, err)
		}
		refs = append(refs, ref)
	}

	return refs, nil
}
