// Package version holds build identification, overridden at link time via
// -ldflags "-X github.com/radarlab/radarview/internal/version.Version=...".
package version

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info returns a one-line human-readable build description.
func Info() string {
	return fmt.Sprintf("radarview %s (%s, built %s)", Version, GitSHA, BuildTime)
}
