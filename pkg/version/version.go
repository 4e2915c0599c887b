// Package version carries build metadata stamped in via -ldflags.
package version

import "fmt"

var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the Git commit the binary was built from.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the full human-readable version line.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
