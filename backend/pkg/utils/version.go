package utils

import (
	"fmt"
	"runtime/debug"
	"strconv"
)

// Version is set at build time with -ldflags "-X joint-diagnostics/backend/pkg/utils.Version=1.2.3".
//
//nolint:gochecknoglobals // Set by the linker
var Version = "0.0.0-dev"

// GetVersionShort returns "v<version> (<commit>)".
func GetVersionShort() string {
	commit, _, modified := getVCSInfo()
	if modified == "true" {
		commit += "-dirty"
	}

	return fmt.Sprintf("v%s (%s)", Version, commit)
}

// GetBuildInfo returns version and VCS details for the health endpoint.
func GetBuildInfo() map[string]string {
	commit, buildTime, modified := getVCSInfo()

	info := map[string]string{
		"version":      Version,
		"commit":       commit,
		"build_time":   buildTime,
		"vcs_modified": modified,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info["go_version"] = bi.GoVersion
	}

	return info
}

func getVCSInfo() (commit, buildTime, modified string) {
	commit, buildTime, modified = "unknown", "unknown", "false"

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, buildTime, modified
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
			if len(commit) > 7 {
				commit = commit[:7]
			}
		case "vcs.time":
			buildTime = s.Value
		case "vcs.modified":
			if b, err := strconv.ParseBool(s.Value); err == nil {
				modified = strconv.FormatBool(b)
			}
		}
	}

	return commit, buildTime, modified
}
