// Package misc keeps build time information about the program.
package misc

import (
	"runtime/debug"
)

const appName = "famchron"

// Set by linker flags at build time.
var (
	version = "dev"
	gitHash = ""
)

// GetAppName returns application name used for logs, temporary files and reports.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns commit hash program was built from. When not set by the
// linker it falls back to VCS information embedded by the go tool.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
