package config

import (
	"os"
	"strings"

	"github.com/expo/metro-core/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// DevServerOriginEnv overrides the dev server origin.
const DevServerOriginEnv = "EXPO_DEV_SERVER_ORIGIN"

// ResolvedValue is a configuration value with its source and the
// lower-precedence values it shadowed.
type ResolvedValue struct {
	Key      string
	Value    string
	Source   ConfigSource
	Shadowed map[ConfigSource]string
}

// ResolveOptions are the candidate values for one key.
type ResolveOptions struct {
	Key         string
	FlagValue   string
	EnvVar      string
	ConfigValue string
	Default     string
}

// Resolve picks the value for one key using precedence:
// (1) flag, (2) environment, (3) config file, (4) default.
// Empty candidates are treated as unset.
func Resolve(opts ResolveOptions) ResolvedValue {
	result := ResolvedValue{Key: opts.Key, Shadowed: make(map[ConfigSource]string)}

	var envValue string
	if opts.EnvVar != "" {
		envValue = strings.TrimSpace(os.Getenv(opts.EnvVar))
	}

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, opts.FlagValue},
		{SourceEnv, envValue},
		{SourceConfig, opts.ConfigValue},
		{SourceDefault, opts.Default},
	}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value, result.Source = c.value, c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}
	return result
}

// ResolveProjectRoot resolves the project root from --project-root,
// METRO_PROJECT_ROOT, the config file and finally cwd.
func ResolveProjectRoot(flagValue, configValue, cwd string) ResolvedValue {
	return Resolve(ResolveOptions{
		Key:         "projectRoot",
		FlagValue:   flagValue,
		EnvVar:      ProjectRootEnv,
		ConfigValue: configValue,
		Default:     cwd,
	})
}

// ResolveDevServerOrigin resolves the dev server origin from --origin,
// EXPO_DEV_SERVER_ORIGIN, the config file and the local default.
func ResolveDevServerOrigin(flagValue, configValue string) ResolvedValue {
	return Resolve(ResolveOptions{
		Key:         "devServer.origin",
		FlagValue:   flagValue,
		EnvVar:      DevServerOriginEnv,
		ConfigValue: configValue,
		Default:     DefaultConfig().DevServer.Origin,
	})
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values ...ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
