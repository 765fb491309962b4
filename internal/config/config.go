// Package config provides configuration loading and management.
//
// Configuration comes from metro.yaml in the project root, METRO_* environment
// variables and command-line flags, with flags taking precedence over the
// environment and the environment over the file. The file is validated
// against an embedded CUE schema.
package config

// TransformConfig holds per-file transform settings.
type TransformConfig struct {
	// Dev selects development transforms.
	// Env: METRO_TRANSFORM_DEV
	Dev bool `json:"dev" yaml:"dev"`

	// Platform is the bundle target, e.g. "ios".
	// Env: METRO_TRANSFORM_PLATFORM
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`

	// SourceMaps requests source maps from the syntax stage.
	SourceMaps bool `json:"sourceMaps" yaml:"sourceMaps"`

	// ImportDefault and ImportAll name the interop helpers.
	ImportDefault string `json:"importDefault,omitempty" yaml:"importDefault,omitempty"`
	ImportAll     string `json:"importAll,omitempty" yaml:"importAll,omitempty"`

	// Resolve wraps module specifiers in require.resolve.
	Resolve bool `json:"resolve" yaml:"resolve"`
}

// DevServerConfig locates the running dev server.
type DevServerConfig struct {
	// Origin is the dev server base URL.
	// Env: EXPO_DEV_SERVER_ORIGIN (takes precedence)
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`

	// Timeout bounds each symbolication request, as a Go duration.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// S3Config locates an S3-compatible bucket for exports.
type S3Config struct {
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	UseSSL   bool   `json:"useSSL" yaml:"useSSL"`

	// Credentials are read from the environment only.
	// Env: METRO_EXPORT_S3_ACCESSKEY, METRO_EXPORT_S3_SECRETKEY
	AccessKey string `json:"-" yaml:"-"`
	SecretKey string `json:"-" yaml:"-"`
}

// ExportConfig configures `metro export write`.
type ExportConfig struct {
	// OutDir is the local export directory.
	OutDir string `json:"outDir,omitempty" yaml:"outDir,omitempty"`

	// Store is "fs" (default) or "s3".
	Store string `json:"store,omitempty" yaml:"store,omitempty"`

	S3 S3Config `json:"s3" yaml:"s3"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// Config is the contents of metro.yaml.
type Config struct {
	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `json:"projectRoot,omitempty" yaml:"projectRoot,omitempty"`

	// NodeModulesPaths are the dependency folder names.
	NodeModulesPaths []string `json:"nodeModulesPaths,omitempty" yaml:"nodeModulesPaths,omitempty"`

	// TranspileModules are dependency packages transformed as app code.
	TranspileModules []string `json:"transpileModules,omitempty" yaml:"transpileModules,omitempty"`

	// Concurrency bounds parallel transforms. Zero uses GOMAXPROCS.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// CacheSize bounds the transform result cache.
	CacheSize int `json:"cacheSize,omitempty" yaml:"cacheSize,omitempty"`

	Transform TransformConfig `json:"transform" yaml:"transform"`
	DevServer DevServerConfig `json:"devServer" yaml:"devServer"`
	Export    ExportConfig    `json:"export" yaml:"export"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `metro config init` to generate the initial file.
func DefaultConfig() *Config {
	return &Config{
		NodeModulesPaths: []string{"node_modules"},
		TranspileModules: []string{},
		CacheSize:        4096,
		DevServer: DevServerConfig{
			Origin:  "http://localhost:8081",
			Timeout: "30s",
		},
		Export: ExportConfig{
			OutDir: "dist",
			Store:  "fs",
			S3:     S3Config{UseSSL: true},
		},
	}
}

// WithDefaults fills unset fields from DefaultConfig.
func (c *Config) WithDefaults() *Config {
	d := DefaultConfig()
	out := *c
	if len(out.NodeModulesPaths) == 0 {
		out.NodeModulesPaths = d.NodeModulesPaths
	}
	if out.CacheSize == 0 {
		out.CacheSize = d.CacheSize
	}
	if out.DevServer.Timeout == "" {
		out.DevServer.Timeout = d.DevServer.Timeout
	}
	if out.Export.OutDir == "" {
		out.Export.OutDir = d.Export.OutDir
	}
	if out.Export.Store == "" {
		out.Export.Store = d.Export.Store
	}
	return &out
}
