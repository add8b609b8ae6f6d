// Package buildinfo exposes version metadata stamped in at build time.
package buildinfo

// Populated via -ldflags at release build time.
var (
	Version = "dev"
	Commit  = "none"
)
