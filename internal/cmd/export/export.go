// Package export provides the export command group.
package export

import (
	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
)

// NewExportCmd creates the export command group.
func NewExportCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "export",
		Short: "Export bundles and their metadata",
		Long: `Work with exported bundles.

An export is metadata.json plus the bundles/ and assets/ directories, laid
out the way the update service expects. Bundles are described by a YAML or
JSON descriptor naming each platform's code, source map and assets.`,
	}

	c.AddCommand(NewExportMetadataCmd(g))
	c.AddCommand(NewExportWriteCmd(g))
	c.AddCommand(NewExportDiffCmd(g))

	return c
}
