// Package version holds the build-time version variables for the cloudmap
// binary. Local builds report "dev"; release builds set the variables with
// -ldflags "-X github.com/cloudmap/cloudmap/internal/version.Version=...".
package version

import "fmt"

// Set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the text printed by cloudmap version.
func Info() string {
	return fmt.Sprintf("cloudmap version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
