// Package buildinfo reports which prereqtree build is running.
//
// Release builds stamp the variables through ldflags:
//
//	-X github.com/matzehuels/prereqtree/pkg/buildinfo.Version=v1.0.0
//	-X github.com/matzehuels/prereqtree/pkg/buildinfo.Commit=$(git rev-parse HEAD)
//	-X github.com/matzehuels/prereqtree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)
//
// Binaries built with `go install` carry no ldflags; for those the module
// version and VCS stamp embedded by the toolchain fill in at start-up.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		fill(info)
	}
}

// fill copies module and VCS metadata into the unstamped variables.
func fill(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none":
			Commit = s.Value
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
}

// UserAgent identifies outgoing payload fetches, e.g. "prereqtree/v1.2.3".
func UserAgent() string {
	return "prereqtree/" + Version
}

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
