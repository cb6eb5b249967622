// Package buildinfo carries version metadata stamped at build time via
// ldflags and surfaced by the root command's --version flag.
package buildinfo

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
