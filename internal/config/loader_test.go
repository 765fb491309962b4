package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, FileName)

		content := `
projectRoot: /work/app
nodeModulesPaths: [node_modules, vendor]
transpileModules: [my-lib, "@acme/ui"]
concurrency: 4
transform:
  dev: true
  platform: ios
  importDefault: _interopDefault
devServer:
  origin: http://10.0.0.2:8081
export:
  store: s3
  s3:
    bucket: builds
    prefix: nightly
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "/work/app", cfg.ProjectRoot)
		assert.Equal(t, []string{"node_modules", "vendor"}, cfg.NodeModulesPaths)
		assert.Equal(t, []string{"my-lib", "@acme/ui"}, cfg.TranspileModules)
		assert.Equal(t, 4, cfg.Concurrency)
		assert.True(t, cfg.Transform.Dev)
		assert.Equal(t, "ios", cfg.Transform.Platform)
		assert.Equal(t, "_interopDefault", cfg.Transform.ImportDefault)
		assert.Equal(t, "http://10.0.0.2:8081", cfg.DevServer.Origin)
		assert.Equal(t, "s3", cfg.Export.Store)
		assert.Equal(t, "builds", cfg.Export.S3.Bucket)
		assert.Equal(t, "nightly", cfg.Export.S3.Prefix)
	})

	t.Run("returns defaults for missing file", func(t *testing.T) {
		cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))

		require.NoError(t, err)
		assert.Empty(t, cfg.ProjectRoot)
		assert.Equal(t, []string{"node_modules"}, cfg.NodeModulesPaths)
		assert.Equal(t, "fs", cfg.Export.Store)
		assert.Nil(t, cfg.Log.Timestamps)
	})

	t.Run("env vars override file values", func(t *testing.T) {
		t.Setenv("METRO_TRANSFORM_PLATFORM", "android")
		t.Setenv("METRO_EXPORT_S3_SECRETKEY", "s3cr3t")
		t.Setenv("METRO_LOG_TIMESTAMPS", "false")

		configFile := filepath.Join(t.TempDir(), FileName)
		require.NoError(t, os.WriteFile(configFile, []byte("transform:\n  platform: ios\n"), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "android", cfg.Transform.Platform)
		assert.Equal(t, "s3cr3t", cfg.Export.S3.SecretKey)
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), FileName)
		require.NoError(t, os.WriteFile(configFile, []byte("transform: [\n"), 0o644))

		_, err := NewLoader().Load(configFile)
		assert.Error(t, err)
	})
}

func TestLoadWithDefaults(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(configFile, []byte("cacheSize: 0\nexport:\n  outDir: \"\"\n"), 0o644))

	cfg, err := NewLoader().LoadWithDefaults(configFile)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.CacheSize)
	assert.Equal(t, "dist", cfg.Export.OutDir)
}

func TestLoadDotEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env.local"), []byte("METRO_TEST_A=local\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("METRO_TEST_A=base\nMETRO_TEST_B=base\nMETRO_TEST_C=base\n"), 0o644))

	t.Setenv("METRO_TEST_A", "")
	t.Setenv("METRO_TEST_B", "")
	t.Setenv("METRO_TEST_C", "preset")
	require.NoError(t, os.Unsetenv("METRO_TEST_A"))
	require.NoError(t, os.Unsetenv("METRO_TEST_B"))

	loaded, err := LoadDotEnv(root)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	assert.Equal(t, "local", os.Getenv("METRO_TEST_A"))
	assert.Equal(t, "base", os.Getenv("METRO_TEST_B"))
	assert.Equal(t, "preset", os.Getenv("METRO_TEST_C"))
}

func TestLoadDotEnvMissingFiles(t *testing.T) {
	loaded, err := LoadDotEnv(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestConfigFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	exists, err := ConfigFileExists(filepath.Join(tmpDir, FileName))
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), nil, 0o644))
	exists, err = ConfigFileExists(filepath.Join(tmpDir, FileName))
	require.NoError(t, err)
	assert.True(t, exists)
}
