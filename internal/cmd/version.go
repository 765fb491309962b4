package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/output"
	"github.com/expo/metro-core/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "version",
		Short: "Show CLI version information",
		Long: `Display version information for the metro CLI.

Shows the CLI version, build information and the esbuild and CUE versions
linked into the binary.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			info := version.Get()
			if f == output.FormatText {
				fmt.Fprintln(c.OutOrStdout(), info.String())
				return nil
			}
			return output.Encode(c.OutOrStdout(), f, info)
		},
	}

	c.Flags().StringVarP(&format, "output", "o", "text", "Output format: text, json, yaml")
	return c
}
