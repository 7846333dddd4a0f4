// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.kitcon.sh/pkg/buildinfo.Var=value" to "go build".
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version identifies the version of kitcon. On development commits, it
// identifies the next release.
const Version = "v0.4.0"

// VersionSuffix is appended to Version to build the full version string.
var VersionSuffix = "-dev.unknown"

// Reproducible identifies whether the build is reproducible.
var Reproducible = "false"

// FullVersion returns Version with VersionSuffix appended.
func FullVersion() string { return Version + VersionSuffix }

// Revision returns the VCS revision recorded by the Go toolchain, or
// FullVersion if there is none.
func Revision() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return FullVersion()
}

// Lines returns a human-readable description of the build.
func Lines() []string {
	return []string{
		fmt.Sprintf("Version: %s", FullVersion()),
		fmt.Sprintf("Revision: %s", Revision()),
		fmt.Sprintf("Go version: %s", runtime.Version()),
		fmt.Sprintf("Reproducible build: %s", Reproducible),
	}
}
