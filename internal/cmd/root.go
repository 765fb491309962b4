// Package cmd provides CLI command implementations.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cmdconfig "github.com/expo/metro-core/internal/cmd/config"
	cmdexport "github.com/expo/metro-core/internal/cmd/export"
	cmdsymbolicate "github.com/expo/metro-core/internal/cmd/symbolicate"
	cmdtransform "github.com/expo/metro-core/internal/cmd/transform"
	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/config"
	"github.com/expo/metro-core/internal/output"
	"github.com/expo/metro-core/internal/version"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	config      string
	projectRoot string
	verbose     bool
	timestamps  bool
}

// NewRootCmd creates the root command for the metro CLI.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	g := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "metro",
		Short: "Metro transform core",
		Long: `metro drives the Expo Metro transform core outside the bundler.

It classifies source files into loader rules, runs the per-file transforms,
writes export metadata for built bundles and symbolicates stack traces
against a running dev server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return initializeGlobals(c, &flags, g)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Path to config file (env: METRO_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flags.projectRoot, "project-root", "", "Project root (env: METRO_PROJECT_ROOT, default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&flags.timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(cmdtransform.NewTransformCmd(g))
	rootCmd.AddCommand(cmdtransform.NewClassifyCmd(g))
	rootCmd.AddCommand(cmdtransform.NewBuildCmd(g))
	rootCmd.AddCommand(cmdexport.NewExportCmd(g))
	rootCmd.AddCommand(cmdsymbolicate.NewSymbolicateCmd(g))
	rootCmd.AddCommand(cmdconfig.NewConfigCmd(g))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals loads .env files and configuration, then sets up logging.
//
// The project root is resolved twice: once without the config file to find
// metro.yaml and the .env files, and again once the file may have set
// projectRoot.
func initializeGlobals(c *cobra.Command, flags *rootFlags, g *cmdtypes.GlobalConfig) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// Step 1: provisional root, .env files, config path
	root := config.ResolveProjectRoot(flags.projectRoot, "", cwd)
	dotenv, err := config.LoadDotEnv(root.Value)
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: err}
	}
	configPath, configSource := config.ResolveConfigPath(flags.config, root.Value)

	// Step 2: config file + METRO_* env
	cfg, err := config.NewLoader().LoadWithDefaults(configPath)
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitValidationError, Err: err}
	}

	// Step 3: final root; a relative projectRoot is relative to the config file
	configRoot := cfg.ProjectRoot
	if configRoot != "" && !filepath.IsAbs(configRoot) {
		configRoot = filepath.Join(filepath.Dir(configPath), configRoot)
	}
	root = config.ResolveProjectRoot(flags.projectRoot, configRoot, cwd)
	rootAbs, err := filepath.Abs(root.Value)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	g.Config = cfg
	g.ConfigPath = configPath
	g.ProjectRoot = rootAbs
	g.Verbose = flags.verbose

	// Resolve timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: flags.verbose}
	if c.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(flags.timestamps)
	} else if cfg.Log.Timestamps != nil {
		logCfg.Timestamps = cfg.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	info := version.Get()
	output.Debug("metro started", "version", info.Version, "esbuild", info.EsbuildVersion)
	config.LogResolvedValues(root, config.ResolvedValue{Key: "config", Value: configPath, Source: configSource})
	for _, f := range dotenv {
		output.Debug("loaded env file", "path", f)
	}
	return nil
}
