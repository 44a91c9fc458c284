// Package build provides build information injected at release time
// through -ldflags.
package build

var (
	// Version is the partstream release version.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = ""

	// Date is the build timestamp.
	Date = ""
)
