package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	require.NotEmpty(t, info.GoVersion, "GoVersion should be populated")
	require.NotEmpty(t, info.EsbuildVersion)
	require.NotEmpty(t, info.CUEVersion)
	assert.Equal(t, Version, info.Version)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:        "v1.0.0",
		GitCommit:      "abc123",
		BuildDate:      "2026-01-29",
		GoVersion:      "go1.25",
		EsbuildVersion: "v0.25.0",
		CUEVersion:     "v0.15.4",
	}

	str := info.String()

	assert.Contains(t, str, "v1.0.0")
	assert.Contains(t, str, "abc123")
	assert.Contains(t, str, "2026-01-29")
	assert.Contains(t, str, "go1.25")
	assert.Contains(t, str, "esbuild: v0.25.0")
	assert.Contains(t, str, "CUE:     v0.15.4")
}

func TestDependencyVersions(t *testing.T) {
	bi := &debug.BuildInfo{Deps: []*debug.Module{
		{Path: EsbuildModule, Version: "v0.25.0"},
		{Path: CUEModule, Version: "v0.15.4", Replace: &debug.Module{Path: "../cue", Version: "v0.15.5-local"}},
	}}

	assert.Equal(t, map[string]string{
		EsbuildModule: "v0.25.0",
		CUEModule:     "v0.15.5-local",
	}, DependencyVersions(bi))
}
