// Package build holds version information set via ldflags:
//
//	go build -ldflags "-X github.com/ariel-frischer/relnotes/internal/build.Version=v1.0.0"
//
// It has no dependencies on other internal packages.
package build

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}
