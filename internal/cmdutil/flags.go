// Package cmdutil provides shared command utilities for metro subcommands.
// It centralizes flag groups, construction of the transform runtime from
// configuration and output helpers.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/config"
	"github.com/expo/metro-core/internal/loader"
)

// TransformFlags holds flags common to commands that run loaders
// (transform, build).
type TransformFlags struct {
	Dev           bool
	Platform      string
	SourceMaps    bool
	ImportDefault string
	ImportAll     string
	Resolve       bool

	cmd *cobra.Command
}

// AddTo registers the transform flags on the given cobra command.
func (f *TransformFlags) AddTo(cmd *cobra.Command) {
	f.cmd = cmd
	cmd.Flags().BoolVar(&f.Dev, "dev", false,
		"Apply development transforms (default: from config)")
	cmd.Flags().StringVarP(&f.Platform, "platform", "p", "",
		"Target platform: ios, android, web (default: from config)")
	cmd.Flags().BoolVar(&f.SourceMaps, "source-maps", false,
		"Emit source maps where the interop stage allows")
	cmd.Flags().StringVar(&f.ImportDefault, "import-default", "",
		"Name of the default-import interop helper")
	cmd.Flags().StringVar(&f.ImportAll, "import-all", "",
		"Name of the namespace-import interop helper")
	cmd.Flags().BoolVar(&f.Resolve, "resolve", false,
		"Wrap module specifiers in require.resolve")
}

// Options merges the flags over the transform section of cfg. A flag wins
// only when it was set on the command line.
func (f *TransformFlags) Options(cfg *config.Config) loader.Options {
	var opts loader.Options
	if cfg != nil {
		t := cfg.Transform
		opts = loader.Options{
			Dev:           t.Dev,
			Platform:      t.Platform,
			SourceMaps:    t.SourceMaps,
			ImportDefault: t.ImportDefault,
			ImportAll:     t.ImportAll,
			Resolve:       t.Resolve,
		}
	}
	if f.changed("dev") {
		opts.Dev = f.Dev
	}
	if f.changed("platform") {
		opts.Platform = f.Platform
	}
	if f.changed("source-maps") {
		opts.SourceMaps = f.SourceMaps
	}
	if f.changed("import-default") {
		opts.ImportDefault = f.ImportDefault
	}
	if f.changed("import-all") {
		opts.ImportAll = f.ImportAll
	}
	if f.changed("resolve") {
		opts.Resolve = f.Resolve
	}
	return opts
}

func (f *TransformFlags) changed(name string) bool {
	return f.cmd != nil && f.cmd.Flags().Changed(name)
}

// OutputFlags holds the --output format flag.
type OutputFlags struct {
	Format string
}

// AddTo registers the output flag with the given default.
func (f *OutputFlags) AddTo(cmd *cobra.Command, def string) {
	cmd.Flags().StringVarP(&f.Format, "output", "o", def,
		"Output format: text, json, yaml")
}
