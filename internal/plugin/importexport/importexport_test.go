package importexport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expo/metro-core/internal/jsast"
)

func TestTransformFixtures(t *testing.T) {
	dirs, err := os.ReadDir("testdata")
	require.NoError(t, err)

	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		t.Run(dir.Name(), func(t *testing.T) {
			input, err := os.ReadFile(filepath.Join("testdata", dir.Name(), "input.js"))
			require.NoError(t, err)
			output, err := os.ReadFile(filepath.Join("testdata", dir.Name(), "output.js"))
			require.NoError(t, err)

			prog, err := jsast.Parse(string(input))
			require.NoError(t, err)
			res, err := Transform(prog, DefaultOptions())
			require.NoError(t, err)

			want, err := jsast.Parse(string(output))
			require.NoError(t, err)
			assert.Equal(t, jsast.Generate(want), jsast.Generate(res.Program))
		})
	}
}

func TestTransformIsESModule(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"imports only", "import a from 'a';\na();", false},
		{"plain script", "console.log(1);", false},
		{"named export", "export const a = 1;", true},
		{"default export", "export default 1;", true},
		{"export all", "export * from 'a';", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, isESModule, err := TransformSource(tt.src, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, isESModule)
		})
	}
}

func TestTransformMarkerComesFirst(t *testing.T) {
	code, _, err := TransformSource("import a from 'a';\nexport {a};", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t,
		"Object.defineProperty(exports, \"__esModule\", {value: true});\n"+
			"var a = _$$_IMPORT_DEFAULT('a');\n"+
			"exports.a = a;\n",
		code)
}

func TestTransformResolve(t *testing.T) {
	opts := DefaultOptions()
	opts.Resolve = true

	code, _, err := TransformSource("import a from 'm';\nimport 'side';", opts)
	require.NoError(t, err)
	assert.Equal(t,
		"var a = _$$_IMPORT_DEFAULT(require.resolve('m'));\n"+
			"require(require.resolve('side'));\n",
		code)
}

func TestTransformCustomHelpers(t *testing.T) {
	code, _, err := TransformSource("import a, * as b from 'm';", Options{ImportDefault: "_interopDefault", ImportAll: "_interopAll"})
	require.NoError(t, err)
	assert.Equal(t, "var a = _interopDefault('m');\nvar b = _interopAll('m');\n", code)
}

func TestTransformStringNames(t *testing.T) {
	for _, src := range []string{
		`export {"a-b" as c};`,
		`const a = 1; export {a as "b-c"};`,
		`export {"x" as y} from 'm';`,
	} {
		_, _, err := TransformSource(src, DefaultOptions())
		assert.ErrorIs(t, err, ErrStringNames, src)
	}
}

func TestTransformStringImportName(t *testing.T) {
	code, _, err := TransformSource(`import {"a-b" as c} from 'm';`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "var c = require('m')[\"a-b\"];\n", code)
}

func TestTransformLiveBindings(t *testing.T) {
	opts := DefaultOptions()
	opts.LiveBindings = true

	src := "import {a} from './m';\n" +
		"export {a};\n" +
		"export {b as c, d as default} from './n';\n" +
		"export * from './o';\n"
	code, isESModule, err := TransformSource(src, opts)
	require.NoError(t, err)
	assert.True(t, isESModule)
	assert.Equal(t, "Object.defineProperty(exports, \"__esModule\", {value: true});\n"+
		"var _m = require('./m'), a = _m.a;\n"+
		"var _n = require('./n');\n"+
		"var _n2 = require('./n');\n"+
		"Object.defineProperty(exports, \"default\", {\n"+
		"  enumerable: true,\n"+
		"  get: function () {\n"+
		"    return _n2.d;\n"+
		"  }\n"+
		"});\n"+
		"var _o = require(\"./o\");\n"+
		"Object.keys(_o).forEach(function (_key) {\n"+
		"  if (_key === \"default\" || _key === \"__esModule\") return;\n"+
		"  if (_key in exports && exports[_key] === _o[_key]) return;\n"+
		"  Object.defineProperty(exports, _key, {\n"+
		"    enumerable: true,\n"+
		"    get: function () {\n"+
		"      return _o[_key];\n"+
		"    }\n"+
		"  });\n"+
		"});\n"+
		"Object.defineProperty(exports, \"a\", {\n"+
		"  enumerable: true,\n"+
		"  get: function () {\n"+
		"    return _m.a;\n"+
		"  }\n"+
		"});\n"+
		"Object.defineProperty(exports, \"c\", {\n"+
		"  enumerable: true,\n"+
		"  get: function () {\n"+
		"    return _n.b;\n"+
		"  }\n"+
		"});\n",
		code)
}

func TestTransformLiveBindingsKeepLocalExports(t *testing.T) {
	opts := DefaultOptions()
	opts.LiveBindings = true

	code, _, err := TransformSource("export let count = 0;\nexport default count;", opts)
	require.NoError(t, err)
	assert.Contains(t, code, "exports.count = count;")
	assert.Contains(t, code, "exports.default = _default;")
	assert.NotContains(t, code, "get: function")
}

func TestTransformRenamesFactoryArguments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"exported exports",
			"export const exports = 1;\n",
			"Object.defineProperty(exports, \"__esModule\", {value: true});\n" +
				"const _exports = 1;\n" +
				"exports.exports = _exports;\n",
		},
		{
			"imported require",
			"import require from 'r';\nrequire.resolve('x');\n",
			"var _require = _$$_IMPORT_DEFAULT('r');\n" +
				"_require.resolve('x');\n",
		},
		{
			"global function",
			"function global() {}\nexport default global;\n",
			"Object.defineProperty(exports, \"__esModule\", {value: true});\n" +
				"function _global() {}\n" +
				"var _default = _global;\n" +
				"exports.default = _default;\n",
		},
		{
			"free names untouched",
			"module.exports = exports;\n",
			"module.exports = exports;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, err := TransformSource(tt.src, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestTransformRegexpAfterStatementHead(t *testing.T) {
	code, isESModule, err := TransformSource("if (ok) /[{]/.test(s);\nexport const a = 1;\n", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, isESModule)
	assert.NotContains(t, code, "export ")
	assert.Contains(t, code, "exports.a = a;")
}

func TestTransformDoesNotShareNodes(t *testing.T) {
	src := "import a, {b, c} from './m';\n" +
		"export * from './m';\n" +
		"export {b as d, default} from './m';\n" +
		"export default a;\n"

	prog, err := jsast.Parse(src)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Resolve = true
	res, err := Transform(prog, opts)
	require.NoError(t, err)

	seen := map[jsast.Node]bool{}
	jsast.Walk(res.Program, func(n jsast.Node) bool {
		assert.False(t, seen[n], "node %s appears twice", n.Type())
		seen[n] = true
		return true
	})
}

func TestTransformDeterministic(t *testing.T) {
	src := "import {a, b} from 'x';\nexport * from 'y';\nexport * from 'y';\nexport default a + b;\n"

	first, _, err := TransformSource(src, DefaultOptions())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, _, err := TransformSource(src, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, first, "var _y = require(\"y\");")
	assert.Contains(t, first, "var _y2 = require(\"y\");")
	assert.Contains(t, first, "for (var _key2 in _y2)")
}

func TestTransformAnonymousDefaultClass(t *testing.T) {
	code, _, err := TransformSource("export default class extends Base {}", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t,
		"Object.defineProperty(exports, \"__esModule\", {value: true});\n"+
			"class _default extends Base {}\n"+
			"exports.default = _default;\n",
		code)
}

func TestUIDScope(t *testing.T) {
	u := newUIDScope(map[string]bool{"_m": true})
	assert.Equal(t, "_m2", u.generate("m"))
	assert.Equal(t, "_m3", u.generate("_m"))
	assert.Equal(t, "_default", u.generate("default"))
	assert.Equal(t, "_fooBar", u.generateBasedOnString("./foo-bar"))
	assert.Equal(t, "_foo_bar", u.generate(sanitizeFileName("./foo-bar")))
	assert.Equal(t, "_key", u.generate("key1"))
}

func TestToIdentifier(t *testing.T) {
	assert.Equal(t, "fooBar", toIdentifier("./foo-bar"))
	assert.Equal(t, "reactNative", toIdentifier("react-native"))
	assert.Equal(t, "_default", toIdentifier("default"))
	assert.Equal(t, "_", toIdentifier(""))
	assert.Equal(t, "expoCamera", toIdentifier("@expo/camera"))
}
