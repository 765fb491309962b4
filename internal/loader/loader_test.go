package loader

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/expo/metro-core/internal/errors"
)

func transform(t *testing.T, l Loader, filename, src string, opts Options) *Result {
	t.Helper()
	res, err := l.Transform(context.Background(), Input{Filename: filename, Source: src, Options: opts})
	require.NoError(t, err)
	return res
}

func TestLoadersTagResultWithName(t *testing.T) {
	for _, l := range []Loader{NewApp(), NewReactNativeModule(), NewExpoModule(), NewUntranspiledModule(), NewPassthroughModule()} {
		t.Run(l.Name().String(), func(t *testing.T) {
			res := transform(t, l, "/p/index.js", "export const a = 1;\n", Options{})
			assert.Equal(t, l.Name(), res.RuleName)
			assert.True(t, res.IsESModule)
			assert.Contains(t, res.Code, "exports.a = a;")
			assert.NotContains(t, res.Code, "export const")
		})
	}
}

func TestAppLowersJSXAndTypeScript(t *testing.T) {
	src := "import {View} from 'react-native';\n" +
		"type Props = {title: string};\n" +
		"export default function App(props: Props) {\n  return <View />;\n}\n"

	res := transform(t, NewApp(), "/p/App.tsx", src, Options{})
	assert.NotContains(t, res.Code, "<View")
	assert.NotContains(t, res.Code, "Props =")
	assert.NotContains(t, res.Code, "import ")
	assert.Contains(t, res.Code, "exports.default = App;")
	assert.Contains(t, res.Dependencies, "react-native")
	assert.Contains(t, res.Dependencies, "react/jsx-runtime")
}

func TestAppDefines(t *testing.T) {
	src := "if (__DEV__) { log(process.env.NODE_ENV); }\n"

	dev := transform(t, NewApp(), "/p/a.js", src, Options{Dev: true})
	assert.NotContains(t, dev.Code, "__DEV__")
	assert.Contains(t, dev.Code, `"development"`)

	prod := transform(t, NewApp(), "/p/a.js", src, Options{})
	assert.NotContains(t, prod.Code, "__DEV__")
	assert.NotContains(t, prod.Code, "development")
	assert.False(t, prod.IsESModule)
}

func TestPassthroughLeavesScriptsUntouched(t *testing.T) {
	src := "'use strict';\nvar a = require('a');\nmodule.exports = a;\n"

	res := transform(t, NewPassthroughModule(), "/p/node_modules/lib/index.js", src, Options{SourceMaps: true})
	assert.Equal(t, src, res.Code)
	assert.False(t, res.IsESModule)
	assert.Nil(t, res.Map)
	assert.Equal(t, []string{"a"}, res.Dependencies)
}

func TestPassthroughRewritesModuleSyntax(t *testing.T) {
	res := transform(t, NewPassthroughModule(), "/p/node_modules/lib/index.js", "import a from 'a';\na();\n", Options{})
	assert.Equal(t, "var a = _$$_IMPORT_DEFAULT('a');\na();\n", res.Code)
	assert.False(t, res.IsESModule)
	assert.Equal(t, []string{"a"}, res.Dependencies)
}

func TestCustomInteropHelpers(t *testing.T) {
	opts := Options{ImportDefault: "_interopDefault", ImportAll: "_interopAll"}
	res := transform(t, NewPassthroughModule(), "/p/x.js", "import a from 'a';\nimport * as b from 'b';\n", opts)
	assert.Contains(t, res.Code, "var a = _interopDefault('a');")
	assert.Contains(t, res.Code, "var b = _interopAll('b');")
	assert.Equal(t, []string{"a", "b"}, res.Dependencies)
}

func TestSourceMapFollowsInterop(t *testing.T) {
	src := "export const el = <div />;\nconst x = 1;\n"
	res := transform(t, NewApp(), "/p/b.jsx", src, Options{SourceMaps: true})
	require.NotEmpty(t, res.Map)

	var sm sourceMap
	require.NoError(t, json.Unmarshal(res.Map, &sm))
	assert.Equal(t, 3, sm.Version)
	lines, err := decodeMappings(sm.Mappings)
	require.NoError(t, err)

	code := strings.Split(res.Code, "\n")
	idx := slices.Index(code, "const x = 1;")
	require.Positive(t, idx)
	require.Greater(t, len(lines), idx)
	require.NotEmpty(t, lines[idx])
	assert.Equal(t, 1, lines[idx][0].srcLine)
	assert.Equal(t, 0, lines[idx][0].genCol)

	// the generated marker has no source
	assert.Empty(t, lines[0])
}

func TestSourceMapWithoutModuleSyntax(t *testing.T) {
	res := transform(t, NewApp(), "/p/a.jsx", "const el = 1;\n", Options{SourceMaps: true})
	assert.NotEmpty(t, res.Map)

	res = transform(t, NewApp(), "/p/a.jsx", "const el = 1;\n", Options{})
	assert.Empty(t, res.Map)
}

func TestAlignLines(t *testing.T) {
	in := "import a from 'a';\nexport function f() {\n  return a;\n}\n}\n"
	out := "var a = _$$_IMPORT_DEFAULT('a');\nfunction f() {\n  return a;\n}\nexports.f = f;\n"

	assert.Equal(t, []lineRef{
		{line: -1},
		{line: 1, delta: len("export ")},
		{line: 2},
		{line: 3},
		{line: -1},
		{line: -1},
	}, alignLines(in, out))
}

func TestMappingsRoundTrip(t *testing.T) {
	const mappings = "AAAA,SAAS,CAAC;;AACA,IAAIA;AACN"
	lines, err := decodeMappings(mappings)
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, 9, lines[0][1].genCol)
	assert.Equal(t, 4, lines[2][1].genCol)
	assert.Equal(t, 5, lines[2][1].fields)
	assert.Equal(t, mappings, encodeMappings(lines))

	_, err = decodeMappings("A!")
	assert.Error(t, err)
}

func TestAppRegexpAfterStatementHead(t *testing.T) {
	res := transform(t, NewApp(), "/p/a.js", "if (ok) /[{]/.test(s);\nexport const a = 1;\n", Options{})
	assert.True(t, res.IsESModule)
	assert.NotContains(t, res.Code, "export const")
	assert.Contains(t, res.Code, "exports.a = a;")
}

func TestSyntaxErrorCarriesLocation(t *testing.T) {
	_, err := NewApp().Transform(context.Background(), Input{Filename: "/p/bad.js", Source: "const a = 1;\nconst = ;\n"})
	require.Error(t, err)

	var te *TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "/p/bad.js", te.Filename)
	assert.Equal(t, App, te.Rule)
	assert.Equal(t, 2, te.Line)
	assert.True(t, errors.Is(err, oerrors.ErrTransform))
	assert.Contains(t, err.Error(), "/p/bad.js:2:")
}

func TestPassthroughSyntaxError(t *testing.T) {
	_, err := NewPassthroughModule().Transform(context.Background(), Input{Filename: "/p/x.js", Source: "ok();\nimport {a from 'b';\n"})
	require.Error(t, err)

	var te *TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, PassthroughModule, te.Rule)
	assert.Equal(t, 2, te.Line)
}

func TestTransformCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewApp().Transform(ctx, Input{Filename: "/p/a.js", Source: "a();"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransformErrorLocation(t *testing.T) {
	assert.Equal(t, "/p/a.js", (&TransformError{Filename: "/p/a.js"}).Location())
	assert.Equal(t, "/p/a.js:3:0", (&TransformError{Filename: "/p/a.js", Line: 3}).Location())
}

func TestRegistryBuildsLazilyOnce(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("custom", func() Loader {
		calls++
		return NewPassthroughModule()
	})
	assert.Equal(t, 0, calls)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Get("custom")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)

	a, _ := r.Get(App)
	b, _ := r.Get(App)
	assert.Same(t, a, b)
}

func TestRegistryUnknown(t *testing.T) {
	_, err := NewRegistry().Get("nope")
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}

func TestRegistryNames(t *testing.T) {
	assert.Equal(t, []Name{App, ExpoModule, PassthroughModule, ReactNativeModule, UntranspiledModule}, Default().Names())
}
