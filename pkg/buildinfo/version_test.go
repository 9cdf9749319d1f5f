package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestFill(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	t.Run("unstamped", func(t *testing.T) {
		stamp(t, "dev", "none", "unknown")
		fill(info)
		if Version != "v0.4.1" || Commit != "abc123" || Date != "2026-01-02T03:04:05Z" {
			t.Errorf("got %s %s %s", Version, Commit, Date)
		}
	})

	t.Run("ldflags win", func(t *testing.T) {
		stamp(t, "v1.0.0", "deadbeef", "2026-10-01")
		fill(info)
		if Version != "v1.0.0" || Commit != "deadbeef" || Date != "2026-10-01" {
			t.Errorf("stamped values overwritten: %s %s %s", Version, Commit, Date)
		}
	})

	t.Run("devel build", func(t *testing.T) {
		stamp(t, "dev", "none", "unknown")
		fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
		if Version != "dev" {
			t.Errorf("Version = %q, want dev", Version)
		}
	})
}

func TestUserAgentAndTemplate(t *testing.T) {
	stamp(t, "v1.2.3", "abc", "today")
	if got := UserAgent(); got != "prereqtree/v1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} v1.2.3 (commit abc") {
		t.Errorf("Template() = %q", got)
	}
}
