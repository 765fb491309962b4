package export

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/cmdutil"
	"github.com/expo/metro-core/internal/export"
	"github.com/expo/metro-core/internal/output"
)

// NewExportWriteCmd creates the export write command.
func NewExportWriteCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		outDirFlag  string
		storeFlag   string
		sourceMaps  bool
		concurrency int
	)

	c := &cobra.Command{
		Use:   "write <descriptor>",
		Short: "Write bundles, assets and metadata.json to an artifact store",
		Long: `Write a complete export for a bundle descriptor.

Bundles are written to bundles/<platform>-<md5>.js, assets to
assets/<hash> (once per hash) and the metadata to metadata.json. The fs
store writes below --out-dir; the s3 store writes to export.s3 in
metro.yaml, with credentials from METRO_EXPORT_S3_ACCESSKEY and
METRO_EXPORT_S3_SECRETKEY.

Examples:
  metro export write bundles.yaml
  metro export write bundles.yaml --out-dir dist --source-maps
  metro export write bundles.yaml --store s3`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runWrite(c.Context(), g, args[0], storeFlag, outDirFlag, sourceMaps, concurrency)
		},
	}

	c.Flags().StringVar(&outDirFlag, "out-dir", "", "Export directory for the fs store (default: from config)")
	c.Flags().StringVar(&storeFlag, "store", "", "Artifact store: fs, s3 (default: from config)")
	c.Flags().BoolVar(&sourceMaps, "source-maps", false, "Write each bundle's source map next to it")
	c.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Parallel asset writes")
	return c
}

func runWrite(ctx context.Context, g *cmdtypes.GlobalConfig, descriptorPath, storeFlag, outDir string, sourceMaps bool, concurrency int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := export.LoadDescriptor(descriptorPath)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	in, err := d.WriteInput(sourceMaps)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	store, err := cmdutil.NewArtifactStore(g, storeFlag, outDir)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	w := &export.Writer{Store: store, Concurrency: concurrency}
	var meta *export.Metadata
	err = output.RunWithSpinner(ctx, func() error {
		var writeErr error
		meta, writeErr = w.Write(ctx, in)
		return writeErr
	}, output.WithTitle("Writing export"))
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	for _, platform := range meta.Platforms() {
		pm := meta.FileMetadata[platform]
		output.Info(output.FormatCheckmark(platform), "bundle", pm.Bundle, "assets", len(pm.Assets))
	}
	if fs, ok := store.(*export.FSStore); ok {
		output.Info(output.FormatCheckmark(fmt.Sprintf("export written to %s", fs.Root)))
	}
	return nil
}
