package loader

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// syntaxStage lowers JSX and TypeScript with esbuild while keeping ES module
// syntax intact for the interop stage.
type syntaxStage struct {
	// typescript enables the TS/TSX loaders for .ts, .tsx, .mts and .cts files.
	typescript bool
	// jsxInJS parses .js files as JSX.
	jsxInJS bool
	// target is the output language level.
	target api.Target
	// defines replaces __DEV__ and process.env.NODE_ENV.
	defines bool
}

func (s syntaxStage) loaderFor(filename string) api.Loader {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		if s.typescript {
			return api.LoaderTS
		}
	case ".tsx":
		if s.typescript {
			return api.LoaderTSX
		}
		return api.LoaderJSX
	case ".jsx":
		return api.LoaderJSX
	case ".json":
		return api.LoaderJSON
	}
	if s.jsxInJS {
		return api.LoaderJSX
	}
	return api.LoaderJS
}

func (s syntaxStage) run(in Input, rule Name) (code string, sourceMap []byte, err error) {
	opts := api.TransformOptions{
		Loader:          s.loaderFor(in.Filename),
		Sourcefile:      in.Filename,
		Target:          s.target,
		JSX:             api.JSXAutomatic,
		JSXImportSource: "react",
		JSXDev:          in.Options.Dev,
		LogLevel:        api.LogLevelSilent,
	}
	if in.Options.SourceMaps {
		opts.Sourcemap = api.SourceMapExternal
	}
	if s.defines {
		env := `"production"`
		if in.Options.Dev {
			env = `"development"`
		}
		opts.Define = map[string]string{
			"__DEV__":              boolString(in.Options.Dev),
			"process.env.NODE_ENV": env,
		}
	}

	result := api.Transform(in.Source, opts)
	if len(result.Errors) > 0 {
		return "", nil, esbuildError(in.Filename, rule, result.Errors[0])
	}
	return string(result.Code), result.Map, nil
}

func esbuildError(filename string, rule Name, msg api.Message) *TransformError {
	te := &TransformError{Filename: filename, Rule: rule, Cause: errors.New(msg.Text)}
	if msg.Location != nil {
		te.Line = msg.Location.Line
		te.Column = msg.Location.Column
	}
	return te
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
