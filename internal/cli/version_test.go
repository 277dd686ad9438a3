package cli

import (
	"runtime/debug"
	"testing"

	"github.com/packtrace/packtrace/internal/buildinfo"
)

func TestCurrentVersionInfo(t *testing.T) {
	prev := readBuildInfo
	t.Cleanup(func() { readBuildInfo = prev })

	tests := []struct {
		name       string
		info       *debug.BuildInfo
		ok         bool
		ldVersion  string
		wantVer    string
		wantCommit string
		wantDirty  bool
	}{
		{
			name:    "no build info",
			ok:      false,
			wantVer: "devel",
		},
		{
			name:      "ldflags fallback",
			ok:        false,
			ldVersion: "v0.9.0",
			wantVer:   "v0.9.0",
		},
		{
			name: "module version and vcs",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: "github.com/packtrace/packtrace", Version: "v1.2.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			ok:         true,
			wantVer:    "v1.2.0",
			wantCommit: "abc123",
			wantDirty:  true,
		},
		{
			name:    "devel module",
			info:    &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			ok:      true,
			wantVer: "devel",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readBuildInfo = func() (*debug.BuildInfo, bool) { return tt.info, tt.ok }
			prevVersion := buildinfo.Version
			buildinfo.Version = tt.ldVersion
			t.Cleanup(func() { buildinfo.Version = prevVersion })

			got := currentVersionInfo()
			if got.Version != tt.wantVer {
				t.Errorf("version = %q, want %q", got.Version, tt.wantVer)
			}
			if got.Commit != tt.wantCommit {
				t.Errorf("commit = %q, want %q", got.Commit, tt.wantCommit)
			}
			if got.Modified != tt.wantDirty {
				t.Errorf("modified = %v, want %v", got.Modified, tt.wantDirty)
			}
			if got.ModulePath != defaultModulePath {
				t.Errorf("module path = %q", got.ModulePath)
			}
		})
	}
}
