package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/config"
	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/export"
	"github.com/expo/metro-core/internal/pipeline"
	"github.com/expo/metro-core/internal/symbolicate"
	"github.com/expo/metro-core/internal/testutil"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.ConfigEnv, "")
	t.Setenv(config.ProjectRootEnv, "")
	t.Setenv(symbolicate.OriginEnv, "")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--timestamps=false"))
	err := root.Execute()
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *cmdtypes.ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	return exitErr.Code
}

func TestRootCmdSubcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"transform", "classify", "build", "export", "symbolicate", "config", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "project-root", "verbose", "timestamps"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCmdJSON(t *testing.T) {
	out, err := execute(t, "", "version", "-o", "json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "esbuildVersion")
}

func TestClassifyCmd(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")

	out, err := execute(t, "", "classify", "--project-root", dir, "-o", "json",
		"App.tsx",
		"node_modules/react-native/index.js",
		"node_modules/expo-camera/index.js",
		"node_modules/my-lib/index.js",
		"node_modules/lodash/map.js",
	)
	require.NoError(t, err)

	var reports []struct {
		Path string `json:"path"`
		Rule string `json:"rule"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	rules := make([]string, 0, len(reports))
	for _, r := range reports {
		rules = append(rules, r.Rule)
	}
	assert.Equal(t, []string{"app", "reactNativeModule", "expoModule", "app", "passthroughModule"}, rules)
}

func TestClassifyCmdTable(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")

	out, err := execute(t, "", "classify", "--project-root", dir, "node_modules/lodash/map.js")
	require.NoError(t, err)
	assert.Contains(t, out, "RULE")
	assert.Contains(t, out, "passthroughModule")
	assert.Contains(t, out, "lodash")
}

func TestTransformCmd(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")

	out, err := execute(t, "", "transform", "--project-root", dir, "src/math.ts")
	require.NoError(t, err)
	assert.Contains(t, out, "exports.add = add")
	assert.NotContains(t, out, ": number")
}

func TestTransformCmdJSON(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")

	out, err := execute(t, "", "transform", "--project-root", dir, "-o", "json", "App.tsx", "node_modules/lodash/map.js")
	require.NoError(t, err)

	var reports []struct {
		Path         string   `json:"path"`
		Rule         string   `json:"rule"`
		IsESModule   bool     `json:"isESModule"`
		Dependencies []string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)

	assert.Equal(t, "App.tsx", reports[0].Path)
	assert.Equal(t, "app", reports[0].Rule)
	assert.True(t, reports[0].IsESModule)
	assert.Contains(t, reports[0].Dependencies, "react-native")
	assert.Contains(t, reports[0].Dependencies, "./src/math")

	assert.Equal(t, "passthroughModule", reports[1].Rule)
	assert.False(t, reports[1].IsESModule)
}

func TestTransformCmdFailure(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")
	testutil.WriteFile(t, dir, "src/broken.js", "const = ;\n")

	_, err := execute(t, "", "transform", "--project-root", dir, "src/broken.js", "src/math.ts")
	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitTransformError, exitCode(t, err))
	assert.ErrorIs(t, err, oerrors.ErrTransform)

	var detail *oerrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "src/broken.js", detail.Location)
	var fe *pipeline.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "src/broken.js", fe.Path)
}

func TestBuildCmd(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")

	_, err := execute(t, "", "build", "--project-root", dir, "--out-dir", "out")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "out", "App.tsx.js"))
	assert.FileExists(t, filepath.Join(dir, "out", "src", "math.ts.js"))
	assert.FileExists(t, filepath.Join(dir, "out", "build", "ios.js"))
	assert.NoFileExists(t, filepath.Join(dir, "out", "node_modules", "lodash", "map.js"))
}

func TestBuildCmdDryRun(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")

	_, err := execute(t, "", "build", "--project-root", dir, "--dry-run", "--include-deps")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dir, ".metro"))
}

func TestExportMetadataCmd(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")

	out, err := execute(t, "", "export", "metadata", "--project-root", dir, filepath.Join(dir, "bundles.yaml"))
	require.NoError(t, err)

	var meta export.Metadata
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Equal(t, "metro", meta.Bundler)
	ios := meta.FileMetadata["ios"]
	assert.Equal(t, "bundles/"+export.BundleFileName("ios", "console.log('ios bundle');\n"), ios.Bundle)
	assert.Equal(t, []export.AssetMetadata{{Path: "assets/5f1c0e0d", Ext: "png"}}, ios.Assets)
}

func TestExportWriteAndDiff(t *testing.T) {
	dir := testutil.CopyFixture(t, "app")
	descriptor := filepath.Join(dir, "bundles.yaml")

	_, err := execute(t, "", "export", "write", "--project-root", dir, "--out-dir", "v1", descriptor)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "v1", export.MetadataFile))
	assert.FileExists(t, filepath.Join(dir, "v1", "assets", "5f1c0e0d"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "ios.js"), []byte("console.log('v2');\n"), 0o644))
	_, err = execute(t, "", "export", "write", "--project-root", dir, "--out-dir", "v2", descriptor)
	require.NoError(t, err)

	out, err := execute(t, "", "export", "diff", filepath.Join(dir, "v1"), filepath.Join(dir, "v1", export.MetadataFile))
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = execute(t, "", "export", "diff", "--exit-code", filepath.Join(dir, "v1"), filepath.Join(dir, "v2"))
	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitGeneralError, exitCode(t, err))
	assert.Contains(t, out, export.BundleFileName("ios", "console.log('ios bundle');\n"))
	assert.Contains(t, out, export.BundleFileName("ios", "console.log('v2');\n"))
}

func TestExportDiffMissing(t *testing.T) {
	_, err := execute(t, "", "export", "diff", filepath.Join(t.TempDir(), "a"), filepath.Join(t.TempDir(), "b"))
	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitNotFound, exitCode(t, err))
}

func TestSymbolicateCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/symbolicate", r.URL.Path)
		_, _ = w.Write([]byte(`{"stack": [
			{"file": "/p/src/App.js", "lineNumber": 10, "column": 4, "methodName": "render"},
			{"file": "/p/node_modules/react/index.js", "lineNumber": 1, "column": 0, "methodName": "commit", "collapse": true}
		]}`))
	}))
	t.Cleanup(srv.Close)

	stack := "Error: boom\n    at render (http://localhost:8081/index.bundle?platform=ios:120:15)\n"

	out, err := execute(t, stack, "symbolicate", "--project-root", "/p", "--origin", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "render")
	assert.Contains(t, out, "src/App.js:10:5")
	assert.Contains(t, out, "node_modules/react/index.js:1:1")

	out, err = execute(t, `[{"file": "a.js", "lineNumber": 1}]`, "symbolicate", "--origin", srv.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"methodName": "render"`)
}

func TestSymbolicateCmdDevServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	stack := "    at f (/p/a.js:3:2)\n"

	_, err := execute(t, stack, "symbolicate", "--origin", srv.URL)
	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitConnectivityError, exitCode(t, err))

	out, err := execute(t, stack, "symbolicate", "--project-root", "/p", "--origin", srv.URL, "--raw-on-error")
	require.NoError(t, err)
	assert.Contains(t, out, "a.js:3:2")
}

func TestConfigInitAndVet(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "config", "init", "--project-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, config.FileName))
	assert.FileExists(t, filepath.Join(dir, config.FileName))

	_, err = execute(t, "", "config", "init", "--project-root", dir)
	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitGeneralError, exitCode(t, err))

	out, err = execute(t, "", "config", "vet", "--project-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Config file is valid")

	testutil.WriteFile(t, dir, config.FileName, "transform:\n  platform: windows\n")
	_, err = execute(t, "", "config", "vet", "--project-root", dir)
	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitValidationError, exitCode(t, err))
}

func TestConfigVetMissingFile(t *testing.T) {
	_, err := execute(t, "", "config", "vet", "--project-root", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitNotFound, exitCode(t, err))
}
