package config

import (
	"os"
	"path/filepath"
)

const (
	// FileName is the config file looked up in the project root.
	FileName = "metro.yaml"
	// ConfigEnv overrides the config file path.
	ConfigEnv = "METRO_CONFIG"
	// ProjectRootEnv overrides the project root.
	ProjectRootEnv = "METRO_PROJECT_ROOT"
)

// ResolveConfigPath returns the config file path and where it came from:
// the --config flag, then METRO_CONFIG, then metro.yaml in projectRoot.
func ResolveConfigPath(flagValue, projectRoot string) (string, ConfigSource) {
	if flagValue != "" {
		return flagValue, SourceFlag
	}
	if envPath := os.Getenv(ConfigEnv); envPath != "" {
		return envPath, SourceEnv
	}
	return filepath.Join(projectRoot, FileName), SourceDefault
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// ~username is not supported
	return path, nil
}
