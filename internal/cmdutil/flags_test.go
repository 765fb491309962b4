package cmdutil

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expo/metro-core/internal/config"
	"github.com/expo/metro-core/internal/loader"
)

func TestTransformFlagsAddTo(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var f TransformFlags
	f.AddTo(cmd)

	for _, name := range []string{"dev", "platform", "source-maps", "import-default", "import-all", "resolve"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestTransformFlagsOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Transform = config.TransformConfig{Dev: true, Platform: "ios", ImportAll: "_all"}

	t.Run("config when flags unset", func(t *testing.T) {
		cmd := &cobra.Command{Use: "test"}
		var f TransformFlags
		f.AddTo(cmd)
		require.NoError(t, cmd.ParseFlags(nil))

		assert.Equal(t, loader.Options{Dev: true, Platform: "ios", ImportAll: "_all"}, f.Options(cfg))
	})

	t.Run("explicit flags win", func(t *testing.T) {
		cmd := &cobra.Command{Use: "test"}
		var f TransformFlags
		f.AddTo(cmd)
		require.NoError(t, cmd.ParseFlags([]string{"--dev=false", "-p", "android", "--resolve"}))

		assert.Equal(t, loader.Options{Platform: "android", ImportAll: "_all", Resolve: true}, f.Options(cfg))
	})

	t.Run("nil config", func(t *testing.T) {
		var f TransformFlags
		assert.Equal(t, loader.Options{}, f.Options(nil))
	})
}
