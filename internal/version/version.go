// Package version identifies the vncview build.
//
// The version shows up in three places: 'vncview version', the viewer
// header, and the User-Agent of every WebSocket upgrade so that websockify
// logs on the server side show which viewer connected. Release builds stamp
// it with ldflags:
//
//	go build -ldflags="-X github.com/muurk/vncview/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/vncview/internal/version.Commit=abc123"
//
// Other builds derive a dev version from the VCS stamp Go embeds in the
// binary.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	// Version is the release version, or dev-<date> for untagged builds
	Version = ""
	// Commit is the short revision, suffixed -dirty for modified trees
	Commit = ""
)

const shortCommitLen = 7

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			fromBuildSettings(info.Settings)
		}
	}

	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildSettings fills whatever ldflags left empty from the vcs.* settings
func fromBuildSettings(settings []debug.BuildSetting) {
	vcs := make(map[string]string, len(settings))
	for _, s := range settings {
		vcs[s.Key] = s.Value
	}

	if rev := vcs["vcs.revision"]; Commit == "" && rev != "" {
		if len(rev) > shortCommitLen {
			rev = rev[:shortCommitLen]
		}
		if vcs["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		Commit = rev
	}

	// Build info carries no tags, so untagged builds are named by commit date
	if Version == "" {
		if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			Version = "dev-" + t.Format("20060102")
		}
	}
}

// Full returns the version with its commit, as printed by 'vncview version'
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent identifies the viewer in WebSocket upgrade requests
func UserAgent() string {
	return "vncview/" + Version
}
