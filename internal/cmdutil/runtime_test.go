package cmdutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/config"
	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/export"
	"github.com/expo/metro-core/internal/loader"
	"github.com/expo/metro-core/internal/symbolicate"
)

func TestNewTransformerUsesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TranspileModules = []string{"my-lib"}
	g := &cmdtypes.GlobalConfig{Config: cfg, ProjectRoot: "/p"}

	tr, err := NewTransformer(g)
	require.NoError(t, err)
	assert.Equal(t, loader.App, tr.Classify("node_modules/my-lib/index.js").Rule)
	assert.Equal(t, loader.App, tr.Classify("/p/src/App.js").Rule)
}

func TestNewPipelineWithoutConfig(t *testing.T) {
	p, err := NewPipeline(nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewSymbolicatorOrigin(t *testing.T) {
	t.Setenv(symbolicate.OriginEnv, "")
	cfg := config.DefaultConfig()
	cfg.DevServer.Origin = "http://cfg:8081"
	g := &cmdtypes.GlobalConfig{Config: cfg}

	s, err := NewSymbolicator(g, "")
	require.NoError(t, err)
	assert.Equal(t, "http://cfg:8081", s.Origin())

	s, err = NewSymbolicator(g, "http://flag:8081")
	require.NoError(t, err)
	assert.Equal(t, "http://flag:8081", s.Origin())
}

func TestNewSymbolicatorBadTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DevServer.Timeout = "soon"

	_, err := NewSymbolicator(&cmdtypes.GlobalConfig{Config: cfg}, "")
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

func TestNewArtifactStore(t *testing.T) {
	root := t.TempDir()
	g := &cmdtypes.GlobalConfig{Config: config.DefaultConfig(), ProjectRoot: root}

	t.Run("fs default resolves against project root", func(t *testing.T) {
		store, err := NewArtifactStore(g, "", "")
		require.NoError(t, err)
		fs, ok := store.(*export.FSStore)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(root, "dist"), fs.Root)

		require.NoError(t, store.Put(context.Background(), "a.txt", []byte("x")))
		assert.FileExists(t, filepath.Join(root, "dist", "a.txt"))
	})

	t.Run("s3 requires endpoint", func(t *testing.T) {
		_, err := NewArtifactStore(g, "s3", "")
		assert.ErrorIs(t, err, oerrors.ErrValidation)
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := NewArtifactStore(g, "gcs", "")
		assert.ErrorIs(t, err, oerrors.ErrValidation)
	})
}
