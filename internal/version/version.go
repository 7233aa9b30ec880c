// Package version exposes the build version string.
package version

// Version is set at build time via -ldflags "-X voxsmith/internal/version.Version=...".
var Version = "0.4.0"
