// Package misc holds build time information about the program.
//
// Values are set with ldflags:
//
//	go build -ldflags "-X legacss/misc.version=1.2.0 -X legacss/misc.gitHash=$(git rev-parse --short HEAD)"
package misc

import (
	"runtime/debug"
)

const appName = "legacss"

var (
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name used for logger names and temporary files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns commit program was built from, "unknown" when neither
// ldflags nor embedded build information carry it.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
}
