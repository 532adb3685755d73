// Package version holds the build version, overridden at release time via
// -ldflags "-X github.com/agentdeck/agentdeck/internal/version.Version=...".
package version

var Version = "0.1.0-dev"
