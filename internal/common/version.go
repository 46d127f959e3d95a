package common

import "fmt"

// Version variables injected at build time via ldflags
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// SchemaVersion identifies the layout of cached market snapshots. Bump it
// when the snapshot shape changes so stale caches are purged on startup.
const SchemaVersion = "1"

// GetFullVersion returns a formatted version string with all build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}
