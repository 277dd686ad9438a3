// Package buildinfo holds release metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/packtrace/packtrace/internal/buildinfo.Version=v1.2.0"
//
// Local builds leave them empty and fall back to the module build info.
package buildinfo

var (
	Version = ""
	Commit  = ""
	Date    = ""
)
