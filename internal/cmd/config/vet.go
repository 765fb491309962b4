package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/cmdutil"
	"github.com/expo/metro-core/internal/config"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate metro.yaml",
		Long: `Validate metro.yaml against the configuration schema.

Unknown keys, unknown platforms, malformed package names, origins and
durations are reported one per line.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVet(c, g)
		},
	}
}

func runVet(c *cobra.Command, g *cmdtypes.GlobalConfig) error {
	path, err := config.ExpandPath(g.ConfigPath)
	if err != nil {
		return fmt.Errorf("expanding config path: %w", err)
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fmt.Errorf("creating validator: %w", err)
	}

	if err := validator.ValidateFile(path); err != nil {
		var validationErrs config.ValidationErrors
		if errors.As(err, &validationErrs) {
			cmdutil.PrintValidationErrors(path, err)
			return &cmdtypes.ExitError{Code: cmdtypes.ExitValidationError, Err: err, Printed: true}
		}
		return cmdtypes.ExitErrorFor(err)
	}

	fmt.Fprintf(c.OutOrStdout(), "Config file is valid: %s\n", path)
	return nil
}
