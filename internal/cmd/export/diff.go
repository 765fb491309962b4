package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/export"
	"github.com/expo/metro-core/internal/output"
)

// NewExportDiffCmd creates the export diff command.
func NewExportDiffCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		colorFlag  bool
		exitOnDiff bool
	)

	c := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Compare the metadata of two exports",
		Long: `Compare two exports' metadata.json and report what changed.

Each argument is either an export directory or a metadata.json file.

Examples:
  metro export diff dist-old dist
  metro export diff old/metadata.json dist/metadata.json --exit-code`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			useColor := output.IsTTY()
			if c.Flags().Changed("color") {
				useColor = colorFlag
			}
			return runDiff(c.Context(), c.OutOrStdout(), args[0], args[1], useColor, exitOnDiff)
		},
	}

	c.Flags().BoolVar(&colorFlag, "color", false, "Colorize the report (default: when stdout is a terminal)")
	c.Flags().BoolVar(&exitOnDiff, "exit-code", false, "Exit with code 1 when the exports differ")
	return c
}

func runDiff(ctx context.Context, w io.Writer, fromPath, toPath string, useColor, exitOnDiff bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	from, err := loadMetadata(ctx, fromPath)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	to, err := loadMetadata(ctx, toPath)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	report, err := export.DiffMetadata(from, to, useColor)
	if err != nil {
		return fmt.Errorf("comparing metadata: %w", err)
	}
	if report == "" {
		output.Info("exports are identical")
		return nil
	}
	fmt.Fprint(w, report)
	if exitOnDiff {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("exports differ"), Printed: true}
	}
	return nil
}

// loadMetadata reads metadata.json from an export directory or a file.
func loadMetadata(ctx context.Context, path string) (*export.Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError("export not found", path, "")
		}
		return nil, err
	}
	if info.IsDir() {
		meta, err := export.ReadMetadata(ctx, export.NewFSStore(path))
		if err != nil {
			return nil, fmt.Errorf("reading export %s: %w", path, err)
		}
		return meta, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta export.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, oerrors.NewValidationError("invalid metadata file: "+err.Error(), path, "", "")
	}
	return &meta, nil
}
