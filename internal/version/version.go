// Package version provides version information for the metro CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Module paths whose versions are reported by `metro version`.
const (
	EsbuildModule = "github.com/evanw/esbuild"
	CUEModule     = "cuelang.org/go"
)

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// EsbuildVersion is the esbuild module linked into the binary.
	EsbuildVersion string `json:"esbuildVersion"`

	// CUEVersion is the CUE SDK used for config validation.
	CUEVersion string `json:"cueVersion"`
}

// Get returns the current version information.
func Get() Info {
	info := Info{
		Version:        Version,
		GitCommit:      GitCommit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		EsbuildVersion: "unknown",
		CUEVersion:     "unknown",
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		deps := DependencyVersions(bi)
		if v, ok := deps[EsbuildModule]; ok {
			info.EsbuildVersion = v
		}
		if v, ok := deps[CUEModule]; ok {
			info.CUEVersion = v
		}
	}
	return info
}

// DependencyVersions maps module path to the version linked into bi,
// following replace directives.
func DependencyVersions(bi *debug.BuildInfo) map[string]string {
	out := make(map[string]string, len(bi.Deps))
	for _, dep := range bi.Deps {
		if dep.Replace != nil {
			out[dep.Path] = dep.Replace.Version
			continue
		}
		out[dep.Path] = dep.Version
	}
	return out
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("metro:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s\n\nLinked:\n  esbuild: %s\n  CUE:     %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.EsbuildVersion, i.CUEVersion)
}
