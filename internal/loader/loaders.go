package loader

import (
	"context"
	"errors"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/expo/metro-core/internal/jsast"
	"github.com/expo/metro-core/internal/plugin/importexport"
)

// interopMode controls when the import/export rewrite runs.
type interopMode int

const (
	interopAlways interopMode = iota
	// interopWhenModule leaves files without module syntax untouched.
	interopWhenModule
)

// stagedLoader runs an optional syntax stage followed by the interop stage.
type stagedLoader struct {
	name    Name
	syntax  *syntaxStage
	interop interopMode
}

func (l *stagedLoader) Name() Name { return l.name }

func (l *stagedLoader) Transform(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	code, sourceMap := in.Source, []byte(nil)
	if l.syntax != nil {
		var err error
		if code, sourceMap, err = l.syntax.run(in, l.name); err != nil {
			return nil, err
		}
	}

	prog, err := jsast.Parse(code)
	if err != nil {
		return nil, l.wrap(in.Filename, err)
	}

	res := &Result{Code: code, Map: sourceMap, RuleName: l.name}
	if l.interop == interopAlways || jsast.HasModuleSyntax(prog) {
		out, err := importexport.Transform(prog, in.Options.interop())
		if err != nil {
			return nil, l.wrap(in.Filename, err)
		}
		res.Code = jsast.Generate(out.Program)
		res.IsESModule = out.IsESModule
		if len(res.Map) > 0 {
			if res.Map, err = composeSourceMap(res.Map, code, res.Code); err != nil {
				return nil, l.wrap(in.Filename, err)
			}
		}
	}

	opts := in.Options.interop()
	deps, err := jsast.Dependencies(res.Code, opts.ImportDefault, opts.ImportAll)
	if err != nil {
		return nil, l.wrap(in.Filename, err)
	}
	res.Dependencies = deps
	return res, nil
}

func (l *stagedLoader) wrap(filename string, err error) error {
	te := &TransformError{Filename: filename, Rule: l.name, Cause: err}
	var se *jsast.SyntaxError
	if errors.As(err, &se) {
		te.Line, te.Column = se.Line, se.Column
	}
	return te
}

// NewApp returns the loader for project source and opted-in packages: full
// JSX and TypeScript lowering, build-time defines and interop.
func NewApp() Loader {
	return &stagedLoader{
		name:   App,
		syntax: &syntaxStage{typescript: true, jsxInJS: true, target: api.ES2019, defines: true},
	}
}

// NewReactNativeModule returns the loader for the framework's own package,
// which ships partially transpiled source: JSX only, newer syntax kept.
func NewReactNativeModule() Loader {
	return &stagedLoader{
		name:   ReactNativeModule,
		syntax: &syntaxStage{jsxInJS: true, target: api.ESNext, defines: true},
	}
}

// NewExpoModule returns the loader for first-party SDK packages distributed
// as TypeScript or modern JavaScript.
func NewExpoModule() Loader {
	return &stagedLoader{
		name:   ExpoModule,
		syntax: &syntaxStage{typescript: true, jsxInJS: true, target: api.ES2019, defines: true},
	}
}

// NewUntranspiledModule returns the loader for community packages that ship
// untranspiled source and need the same pipeline as app code.
func NewUntranspiledModule() Loader {
	return &stagedLoader{
		name:   UntranspiledModule,
		syntax: &syntaxStage{typescript: true, jsxInJS: true, target: api.ES2019, defines: true},
	}
}

// NewPassthroughModule returns the catch-all loader. Prebuilt dependencies
// are returned unchanged unless they still use module syntax.
func NewPassthroughModule() Loader {
	return &stagedLoader{name: PassthroughModule, interop: interopWhenModule}
}
