package version

import (
	"runtime/debug"
	"sync"
)

// Version is the current semantic version of rht.
const Version = "0.1.0"

// Set during build time with -ldflags "-X ...version.GitCommit=...".
var (
	BuildDate = "development"
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information
func FullInfo() string {
	return "rht " + Version + " (commit: " + Commit() + ", built: " + BuildDate + ")"
}

var (
	commit     string
	commitOnce sync.Once
)

// Commit returns GitCommit, falling back to the VCS revision recorded in the
// binary's build info.
func Commit() string {
	commitOnce.Do(func() {
		commit = GitCommit
		if commit != "unknown" {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			}
		}
	})
	return commit
}
