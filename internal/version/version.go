// Package version exposes build metadata for the binary.
package version

import "fmt"

// Version is the application version, overridable at build time via -ldflags.
var Version = "dev"

// BuildTime records when the binary was built, set via -ldflags.
var BuildTime = "unknown"

// String returns the formatted version line.
func String() string {
	return fmt.Sprintf("triagent version %s (built %s)", Version, BuildTime)
}
