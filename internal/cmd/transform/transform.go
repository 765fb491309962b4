// Package transform provides the transform, classify and build commands.
package transform

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/cmdutil"
	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/loader"
	"github.com/expo/metro-core/internal/output"
	"github.com/expo/metro-core/internal/pipeline"
)

// fileReport is the json/yaml shape of one transformed file.
type fileReport struct {
	Path         string      `json:"path"`
	Rule         loader.Name `json:"rule"`
	IsESModule   bool        `json:"isESModule"`
	Dependencies []string    `json:"dependencies"`
	Code         string      `json:"code"`
	Map          string      `json:"map,omitempty"`
	OutPath      string      `json:"outPath,omitempty"`
}

// NewTransformCmd creates the transform command.
func NewTransformCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		tf          cmdutil.TransformFlags
		of          cmdutil.OutputFlags
		outDirFlag  string
		concurrency int
	)

	c := &cobra.Command{
		Use:   "transform <file>...",
		Short: "Transform source files through their loader rule",
		Long: `Transform one or more source files the way the bundler would.

Each file is classified into a loader rule (app, reactNativeModule,
expoModule, untranspiledModule or passthroughModule) and transformed by that
rule's loader. Paths are relative to the project root.

Examples:
  # Print the transformed code of one file
  metro transform App.tsx

  # Transform for android in dev mode and write to ./out
  metro transform src/*.ts --platform android --dev --out-dir out

  # Inspect rule, dependencies and code as JSON
  metro transform node_modules/expo-camera/index.js -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runTransform(c.Context(), c.OutOrStdout(), g, args, &tf, of.Format, outDirFlag, concurrency)
		},
	}

	tf.AddTo(c)
	of.AddTo(c, "text")
	c.Flags().StringVar(&outDirFlag, "out-dir", "", "Write transformed files here instead of stdout")
	c.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Parallel transforms (default: from config, then GOMAXPROCS)")
	return c
}

func runTransform(ctx context.Context, w io.Writer, g *cmdtypes.GlobalConfig, files []string, tf *cmdutil.TransformFlags, format, outDir string, concurrency int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	p, err := cmdutil.NewPipeline(g)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	if concurrency == 0 && g.Config != nil {
		concurrency = g.Config.Concurrency
	}

	result, err := p.Run(ctx, pipeline.Options{
		Root:        g.ProjectRoot,
		Files:       files,
		Concurrency: concurrency,
		OutDir:      outDir,
		Transform:   tf.Options(g.Config),
	})
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	if err := writeResults(w, f, result, outDir != ""); err != nil {
		return err
	}
	return failOnErrors(result)
}

func writeResults(w io.Writer, f output.Format, result *pipeline.Result, written bool) error {
	if f != output.FormatText {
		reports := make([]fileReport, 0, len(result.Files))
		for _, fr := range result.Files {
			reports = append(reports, fileReport{
				Path:         fr.Path,
				Rule:         fr.Rule,
				IsESModule:   fr.Result.IsESModule,
				Dependencies: orEmpty(fr.Result.Dependencies),
				Code:         fr.Result.Code,
				Map:          string(fr.Result.Map),
				OutPath:      fr.OutPath,
			})
		}
		return output.Encode(w, f, reports)
	}

	for _, fr := range result.Files {
		if written {
			output.FileLogger(fr.Path).Info(output.FormatCheckmark("wrote "+fr.OutPath), "rule", fr.Rule)
			continue
		}
		if len(result.Files) > 1 {
			fmt.Fprintf(w, "// %s (%s)\n", fr.Path, fr.Rule)
		}
		fmt.Fprint(w, fr.Result.Code)
	}
	return nil
}

// failOnErrors prints per-file failures and turns them into a transform
// exit code.
func failOnErrors(result *pipeline.Result) error {
	if !result.HasErrors() {
		return nil
	}
	cmdutil.PrintFileErrors(result.Errors)
	var first string
	var fe *pipeline.FileError
	if errors.As(result.Errors[0], &fe) {
		first = fe.Path
	}
	return &cmdtypes.ExitError{
		Code: cmdtypes.ExitTransformError,
		Err: oerrors.NewTransformError(fmt.Sprintf("%d file(s) failed to transform", len(result.Errors)),
			first, "run with --verbose for per-file details", errors.Join(result.Errors...)),
		Printed: true,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
