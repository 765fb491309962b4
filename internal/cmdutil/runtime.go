package cmdutil

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/config"
	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/export"
	"github.com/expo/metro-core/internal/pipeline"
	"github.com/expo/metro-core/internal/symbolicate"
	"github.com/expo/metro-core/internal/transformer"
)

// settings returns the loaded config, or defaults when none was loaded.
func settings(g *cmdtypes.GlobalConfig) *config.Config {
	if g == nil || g.Config == nil {
		return config.DefaultConfig()
	}
	return g.Config
}

// NewTransformer builds the exotic transformer for the project.
func NewTransformer(g *cmdtypes.GlobalConfig) (*transformer.Transformer, error) {
	cfg := settings(g)
	var root string
	if g != nil {
		root = g.ProjectRoot
	}
	return transformer.CreateExoticTransformer(transformer.Config{
		NodeModulesPaths: cfg.NodeModulesPaths,
		TranspileModules: cfg.TranspileModules,
		ProjectRoot:      root,
	})
}

// NewPipeline builds a batch pipeline over a new transformer.
func NewPipeline(g *cmdtypes.GlobalConfig) (*pipeline.Pipeline, error) {
	t, err := NewTransformer(g)
	if err != nil {
		return nil, err
	}
	cfg := settings(g)
	return pipeline.New(t, cfg.NodeModulesPaths, cfg.CacheSize)
}

// NewSymbolicator builds a dev server client. originFlag wins over
// EXPO_DEV_SERVER_ORIGIN, which wins over devServer.origin.
func NewSymbolicator(g *cmdtypes.GlobalConfig, originFlag string) (*symbolicate.Symbolicator, error) {
	cfg := settings(g)

	origin := config.ResolveDevServerOrigin(originFlag, cfg.DevServer.Origin)
	config.LogResolvedValues(origin)

	client := &http.Client{}
	if cfg.DevServer.Timeout != "" {
		timeout, err := time.ParseDuration(cfg.DevServer.Timeout)
		if err != nil {
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("invalid dev server timeout %q", cfg.DevServer.Timeout),
				"", "devServer.timeout", "use a Go duration such as 30s")
		}
		client.Timeout = timeout
	}
	return symbolicate.New(symbolicate.Options{Origin: origin.Value, Client: client})
}

// NewArtifactStore returns the export store named by storeFlag, falling
// back to export.store. outDir is used by the fs store and resolved
// against the project root.
func NewArtifactStore(g *cmdtypes.GlobalConfig, storeFlag, outDir string) (export.ArtifactStore, error) {
	cfg := settings(g)
	kind := storeFlag
	if kind == "" {
		kind = cfg.Export.Store
	}

	switch kind {
	case "", "fs":
		if outDir == "" {
			outDir = cfg.Export.OutDir
		}
		if !filepath.IsAbs(outDir) && g != nil && g.ProjectRoot != "" {
			outDir = filepath.Join(g.ProjectRoot, outDir)
		}
		return export.NewFSStore(outDir), nil
	case "s3":
		s3 := cfg.Export.S3
		return export.NewS3Store(export.S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			Prefix:    s3.Prefix,
			UseSSL:    s3.UseSSL,
		})
	default:
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("unknown artifact store %q", kind), "", "export.store", "valid stores: fs, s3")
	}
}
