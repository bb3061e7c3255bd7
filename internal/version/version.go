// Package version exposes build metadata for the CLI.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set via ldflags at build time; Version falls back to "dev" and the commit
// hash to whatever the Go build info carries.
var (
	Version    = "dev"
	CommitHash = ""
	BuildTime  = ""
)

// GetInfo returns the version, with the short commit hash when known.
func GetInfo() string {
	if CommitHash == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					CommitHash = setting.Value
				case "vcs.time":
					BuildTime = setting.Value
				}
			}
		}
	}

	out := Version
	if CommitHash != "" {
		short := CommitHash
		if len(short) > 7 {
			short = short[:7]
		}
		out += fmt.Sprintf(" (%s)", short)
	}
	return out
}
