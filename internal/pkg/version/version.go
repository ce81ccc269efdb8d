// Package version carries the build information stamped in at link time,
// e.g. -ldflags "-X .../internal/pkg/version.BuildCommit=abc123".
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version of the build.
	Version = "0.1.0"

	// Prerelease marks development builds, e.g. "dev" or "beta1".
	Prerelease = "dev"

	BuildTime   = "unknown"
	BuildCommit = "unknown"
)

func init() {
	if BuildCommit != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			BuildCommit = s.Value
		case "vcs.time":
			BuildTime = s.Value
		}
	}
}

// Get returns the full version string.
func Get() string {
	if Prerelease == "" {
		return Version
	}
	return fmt.Sprintf("%s-%s", Version, Prerelease)
}
