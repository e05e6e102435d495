package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Full returns the complete version line shown by `cram version`.
func Full() string {
	return fmt.Sprintf("%s (%s) %s", Version, Commit, Date)
}

func Short() string {
	return Version
}

// init backfills version info from the module build metadata so that
// plain `go install` builds still report something useful. Explicit
// ldflags values always win.
func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	backfill(info)
}

func backfill(info *debug.BuildInfo) {
	if info == nil {
		return
	}

	// Untagged builds report "(devel)" as the module version; keep the
	// "dev" default in that case.
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" && s.Value != "" {
				rev := s.Value
				if len(rev) > 7 {
					rev = rev[:7]
				}
				Commit = rev
			}
		case "vcs.time":
			if Date == "unknown" && s.Value != "" {
				Date = s.Value
			}
		}
	}
}
