// Package version holds build version information.
package version

// Version is the wikigen release version, overridden at build time
// with -ldflags "-X github.com/usesalt/wikigen/pkg/version.Version=...".
var Version = "dev"
