package export

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/cmdutil"
	"github.com/expo/metro-core/internal/export"
	"github.com/expo/metro-core/internal/output"
)

// NewExportMetadataCmd creates the export metadata command.
func NewExportMetadataCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	var of cmdutil.OutputFlags

	c := &cobra.Command{
		Use:   "metadata <descriptor>",
		Short: "Print metadata.json for a bundle descriptor",
		Long: `Build the export metadata for a bundle descriptor without writing anything.

Platforms appear in sorted order. Asset hashes listed under embeddedHashes
are left out, since those assets ship inside the native binary.

Examples:
  metro export metadata bundles.yaml
  metro export metadata bundles.yaml -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runMetadata(c.OutOrStdout(), args[0], of.Format)
		},
	}

	of.AddTo(c, "json")
	return c
}

func runMetadata(w io.Writer, descriptorPath, format string) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	if f == output.FormatText {
		f = output.FormatJSON
	}

	d, err := export.LoadDescriptor(descriptorPath)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	in, err := d.MetadataInput()
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	return output.Encode(w, f, export.CreateMetadataJSON(in))
}
