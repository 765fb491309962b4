package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable prefix for metro configuration.
const envPrefix = "METRO"

// DotEnvFiles are loaded from the project root, in order, by LoadDotEnv.
var DotEnvFiles = []string{".env.local", ".env"}

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default or a binding so AutomaticEnv sees it on Unmarshal.
	d := DefaultConfig()
	v.SetDefault("projectRoot", "")
	v.SetDefault("nodeModulesPaths", d.NodeModulesPaths)
	v.SetDefault("transpileModules", d.TranspileModules)
	v.SetDefault("concurrency", 0)
	v.SetDefault("cacheSize", d.CacheSize)
	v.SetDefault("transform.dev", false)
	v.SetDefault("transform.platform", "")
	v.SetDefault("transform.sourceMaps", false)
	v.SetDefault("transform.importDefault", "")
	v.SetDefault("transform.importAll", "")
	v.SetDefault("transform.resolve", false)
	v.SetDefault("devServer.origin", "")
	v.SetDefault("devServer.timeout", d.DevServer.Timeout)
	v.SetDefault("export.outDir", d.Export.OutDir)
	v.SetDefault("export.store", d.Export.Store)
	v.SetDefault("export.s3.endpoint", "")
	v.SetDefault("export.s3.region", "")
	v.SetDefault("export.s3.bucket", "")
	v.SetDefault("export.s3.prefix", "")
	v.SetDefault("export.s3.useSSL", d.Export.S3.UseSSL)
	v.SetDefault("export.s3.accessKey", "")
	v.SetDefault("export.s3.secretKey", "")
	_ = v.BindEnv("log.timestamps")

	return &Loader{v: v}
}

// Load loads configuration from the given file path. A missing file is not
// an error: defaults and environment variables still apply. Environment
// variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		expandedPath, err := ExpandPath(configFile)
		if err != nil {
			return nil, fmt.Errorf("expanding config path: %w", err)
		}

		l.v.SetConfigFile(expandedPath)
		l.v.SetConfigType("yaml")
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}
	return cfg.WithDefaults(), nil
}

// LoadDotEnv loads DotEnvFiles from projectRoot into the process
// environment. Variables already set are left alone, and missing files are
// skipped. It returns the files that were loaded.
func LoadDotEnv(projectRoot string) ([]string, error) {
	var loaded []string
	for _, name := range DotEnvFiles {
		path := filepath.Join(projectRoot, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("checking %s: %w", name, err)
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", name, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(expandedPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
