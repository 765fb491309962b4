// Package loader provides the named transform loaders applied to source files.
//
// A loader is a fixed composition of stages suited to one category of code.
// The syntax stage lowers JSX and TypeScript with esbuild; the interop stage
// rewrites ES module syntax into the runtime's CommonJS form. Every loader
// tags its result with its own name so callers can tell which rule produced
// a module without re-running classification.
package loader

import (
	"context"
	"fmt"

	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/plugin/importexport"
)

// Name identifies a loader.
type Name string

// Loader names, one per code category.
const (
	App                Name = "app"
	ReactNativeModule  Name = "reactNativeModule"
	ExpoModule         Name = "expoModule"
	UntranspiledModule Name = "untranspiledModule"
	PassthroughModule  Name = "passthroughModule"
)

func (n Name) String() string { return string(n) }

// Options are per-transform settings shared by every loader.
type Options struct {
	// Dev selects development JSX and defines __DEV__ as true.
	Dev bool
	// Platform is the bundle target, e.g. "ios", "android" or "web".
	Platform string
	// SourceMaps requests an external source map from the syntax stage.
	SourceMaps bool
	// ImportDefault and ImportAll name the interop helpers.
	ImportDefault string
	ImportAll     string
	// Resolve wraps module specifiers in require.resolve.
	Resolve bool
}

func (o Options) interop() importexport.Options {
	opts := importexport.DefaultOptions()
	if o.ImportDefault != "" {
		opts.ImportDefault = o.ImportDefault
	}
	if o.ImportAll != "" {
		opts.ImportAll = o.ImportAll
	}
	opts.Resolve = o.Resolve
	return opts
}

// Input is a single file to transform.
type Input struct {
	Filename string
	Source   string
	Options  Options
}

// Result is a transformed module.
type Result struct {
	Code string
	// Map is the source map of Code, when one could be kept.
	Map []byte
	// RuleName is the name of the loader that produced the result.
	RuleName Name
	// IsESModule reports whether the source exported anything.
	IsESModule bool
	// Dependencies are the module specifiers the transformed code loads.
	Dependencies []string
}

// Loader transforms a file.
type Loader interface {
	Name() Name
	Transform(ctx context.Context, in Input) (*Result, error)
}

// TransformError is a failure transforming one file.
type TransformError struct {
	Filename string
	Rule     Name
	Cause    error
	// Line is 1-based and Column 0-based; both are zero when unknown.
	Line   int
	Column int
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Location(), e.Rule, e.Cause)
}

// Unwrap exposes both the cause and ErrTransform to errors.Is.
func (e *TransformError) Unwrap() []error {
	return []error{e.Cause, oerrors.ErrTransform}
}

// Location renders the file position, omitting unknown parts.
func (e *TransformError) Location() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d", e.Filename, e.Line, e.Column)
	}
	return e.Filename
}
