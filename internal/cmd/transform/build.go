package transform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/cmdutil"
	"github.com/expo/metro-core/internal/output"
	"github.com/expo/metro-core/internal/pipeline"
)

// DefaultBuildDir is where `metro build` writes when --out-dir is not set.
const DefaultBuildDir = ".metro/build"

// NewBuildCmd creates the build command.
func NewBuildCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		tf          cmdutil.TransformFlags
		outDirFlag  string
		includeDeps bool
		dryRun      bool
		concurrency int
	)

	c := &cobra.Command{
		Use:   "build",
		Short: "Transform every source file in the project",
		Long: `Discover and transform every source file below the project root.

Dependency folders are skipped unless --include-deps is set. Output mirrors
the source tree below --out-dir, with a .map next to each file when source
maps are kept. Files that fail are reported and the command exits with
code 7 after the rest have been written.

Examples:
  metro build
  metro build --platform ios --out-dir build/ios --verbose
  metro build --include-deps --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			outDir := outDirFlag
			if dryRun {
				outDir = ""
			} else if outDir == "" {
				outDir = DefaultBuildDir
			}
			if outDir != "" && !filepath.IsAbs(outDir) {
				outDir = filepath.Join(g.ProjectRoot, outDir)
			}
			return runBuild(c.Context(), g, &tf, outDir, includeDeps, concurrency)
		},
	}

	tf.AddTo(c)
	c.Flags().StringVar(&outDirFlag, "out-dir", "", "Output directory (default: "+DefaultBuildDir+")")
	c.Flags().BoolVar(&includeDeps, "include-deps", false, "Also transform files inside dependency folders")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Transform without writing output")
	c.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Parallel transforms (default: from config, then GOMAXPROCS)")
	return c
}

func runBuild(ctx context.Context, g *cmdtypes.GlobalConfig, tf *cmdutil.TransformFlags, outDir string, includeDeps bool, concurrency int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := cmdutil.NewPipeline(g)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	if concurrency == 0 && g.Config != nil {
		concurrency = g.Config.Concurrency
	}

	var result *pipeline.Result
	err = output.RunWithSpinner(ctx, func() error {
		var runErr error
		result, runErr = p.Run(ctx, pipeline.Options{
			Root:                g.ProjectRoot,
			Concurrency:         concurrency,
			OutDir:              outDir,
			IncludeDependencies: includeDeps,
			Transform:           tf.Options(g.Config),
		})
		return runErr
	}, output.WithTitle("Transforming "+g.ProjectRoot))
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	cmdutil.PrintFileResults(result, g.Verbose)
	if outDir != "" {
		output.Info(output.FormatCheckmark(fmt.Sprintf("wrote %d file(s) to %s", len(result.Files), outDir)))
	}
	return failOnErrors(result)
}
