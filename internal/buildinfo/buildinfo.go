// Package buildinfo reports what the running binary was built from.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const devVersion = "dev"

var readBuildInfo = debug.ReadBuildInfo

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return devVersion
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return devVersion
	}
	return version
}

func setting(key string) string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Revision returns the short VCS revision, with a "-dirty" suffix for
// builds from a modified worktree.
func Revision() string {
	rev := setting("vcs.revision")
	if rev == "" {
		return ""
	}
	rev = rev[:min(len(rev), 12)]
	if setting("vcs.modified") == "true" {
		rev += "-dirty"
	}
	return rev
}

// VersionWithTags returns the version plus the revision and build tags
// when they are known, e.g. "dev (a1b2c3d4e5f6, tags: nocgo)".
func VersionWithTags() string {
	var extra []string
	if rev := Revision(); rev != "" {
		extra = append(extra, rev)
	}
	if tags := setting("-tags"); tags != "" {
		extra = append(extra, "tags: "+tags)
	}
	if len(extra) == 0 {
		return Version()
	}
	return fmt.Sprintf("%s (%s)", Version(), strings.Join(extra, ", "))
}
