package jsast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"default and named imports", "import a, {b as c, d} from \"m\";\nconst x = 1;\nexport default x;\n"},
		{"side effect import", "import 'polyfill';\n"},
		{"namespace import", "import * as ns from \"m\";\n"},
		{"destructuring export", "export const {a, b: [c, ...d]} = obj, e = 2;\n"},
		{"function export", "export function foo(a) { return a; }\n"},
		{"async generator export", "export async function* gen() { yield 1; }\n"},
		{"anonymous default class", "export default class extends Base {}\n"},
		{"re-exports", "export * from \"a\";\nexport * as ns from 'b';\nexport {x as default, y} from \"c\";\n"},
		{"local specifiers", "export {a, b as c};\n"},
		{"import attributes", "import data from \"./data.json\" with {type: \"json\"};\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.src, Generate(prog))
		})
	}
}

func TestParseStructure(t *testing.T) {
	prog, err := Parse("import a, {b as c} from \"m\";\nconst x = 1;\nexport default x;\n")
	require.NoError(t, err)
	require.Len(t, prog.Body, 3)

	imp, ok := prog.Body[0].(*ImportDeclaration)
	require.True(t, ok)
	assert.Equal(t, "m", imp.Source.Value)
	require.Len(t, imp.Specifiers, 2)
	assert.Equal(t, "a", imp.Specifiers[0].(*ImportDefaultSpecifier).Local.Name)
	named := imp.Specifiers[1].(*ImportSpecifier)
	assert.Equal(t, "b", ExportName(named.Imported))
	assert.Equal(t, "c", named.Local.Name)

	assert.Equal(t, &Verbatim{Text: "const x = 1;"}, prog.Body[1])

	def, ok := prog.Body[2].(*ExportDefaultDeclaration)
	require.True(t, ok)
	assert.Equal(t, &RawExpression{Text: "x"}, def.Declaration)
}

func TestParseKeepsNonDeclarationsVerbatim(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"dynamic import", "const m = import(\"x\");"},
		{"import meta", "console.log(import.meta.url);"},
		{"member named import", "foo.import(1);"},
		{"type-only import", "import type {A} from \"a\";"},
		{"type export", "export type A = {a: string};"},
		{"nested in block", "if (x) { y(); }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(tt.src)
			require.NoError(t, err)
			require.Len(t, prog.Body, 1)
			assert.Equal(t, &Verbatim{Text: tt.src}, prog.Body[0])
		})
	}
}

func TestParseImportTypeAsDefaultBinding(t *testing.T) {
	prog, err := Parse("import type from \"x\";")
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	imp := prog.Body[0].(*ImportDeclaration)
	assert.Equal(t, "type", imp.Specifiers[0].(*ImportDefaultSpecifier).Local.Name)
}

func TestParseAutomaticSemicolon(t *testing.T) {
	prog, err := Parse("export default foo\nbar()\n")
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)
	assert.Equal(t, &RawExpression{Text: "foo"}, prog.Body[0].(*ExportDefaultDeclaration).Declaration)
	assert.Equal(t, &Verbatim{Text: "bar()"}, prog.Body[1])
}

func TestParseContinuedExpression(t *testing.T) {
	prog, err := Parse("export const a = b\n  .c(1)\n  .d;\n")
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	decl := prog.Body[0].(*ExportNamedDeclaration).Declaration.(*VariableDeclaration)
	assert.Equal(t, "b\n  .c(1)\n  .d", decl.Declarations[0].Init.(*RawExpression).Text)
}

func TestParseRegexpInVerbatim(t *testing.T) {
	src := "const re = /import {a} from 'b'/;\nexport const x = 1;"
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)
	assert.Equal(t, &Verbatim{Text: "const re = /import {a} from 'b'/;"}, prog.Body[0])
}

func TestParseRegexpAfterStatementHead(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"if head", "if (ok) /[{]/.test(s);"},
		{"while head", "while (i--) /[(]/.exec(s);"},
		{"after block", "function f() {}\n/[{]/.test(s);"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(tt.src + "\nexport const a = 1;")
			require.NoError(t, err)
			require.Len(t, prog.Body, 2)
			assert.Equal(t, &Verbatim{Text: tt.src}, prog.Body[0])
			assert.IsType(t, &ExportNamedDeclaration{}, prog.Body[1])
		})
	}
}

func TestParseDivisionAfterParens(t *testing.T) {
	prog, err := Parse("const r = (a + b) / 2 / c;\nexport {r};")
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)
	assert.IsType(t, &ExportNamedDeclaration{}, prog.Body[1])
}

func TestParseUnbalancedBrackets(t *testing.T) {
	for _, src := range []string{
		"function f() {\nexport const a = 1;",
		"const a = 1; }\nexport {a};",
	} {
		_, err := Parse(src)
		var se *SyntaxError
		require.ErrorAs(t, err, &se, src)
	}
}

func TestParseBindingNames(t *testing.T) {
	prog, err := Parse("export const {a, b: {c}, d = 1, ...e} = obj, [f, , g = 2, ...h] = arr;")
	require.NoError(t, err)
	decl := prog.Body[0].(*ExportNamedDeclaration).Declaration.(*VariableDeclaration)
	require.Len(t, decl.Declarations, 2)
	assert.Equal(t, []string{"a", "c", "d", "e"}, decl.Declarations[0].ID.(*Pattern).Names)
	assert.Equal(t, []string{"f", "g", "h"}, decl.Declarations[1].ID.(*Pattern).Names)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("const a = 1;\nimport {a from \"m\";")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
	assert.Contains(t, err.Error(), "syntax error at 2:")
}

func TestGenerateBuiltNodes(t *testing.T) {
	prog := &Program{Body: []Statement{
		Var("_m", Call(NewIdentifier("require"), NewStringLiteral("m"))),
		&ForInStatement{
			Left:  &VariableDeclaration{Kind: "var", Declarations: []*VariableDeclarator{{ID: NewIdentifier("_key")}}},
			Right: NewIdentifier("_m"),
			Body: &BlockStatement{Body: []Statement{
				ExprStmt(&AssignmentExpression{
					Operator: "=",
					Left:     &MemberExpression{Object: NewIdentifier("exports"), Property: NewIdentifier("_key"), Computed: true},
					Right:    &MemberExpression{Object: NewIdentifier("_m"), Property: NewIdentifier("_key"), Computed: true},
				}),
			}},
		},
		ExprStmt(Call(Member(NewIdentifier("Object"), "defineProperty"),
			NewIdentifier("exports"),
			NewStringLiteral("__esModule"),
			&ObjectExpression{Properties: []*ObjectProperty{{Key: NewIdentifier("value"), Value: &BooleanLiteral{Value: true}}}},
		)),
	}}

	want := "var _m = require(\"m\");\n" +
		"for (var _key in _m) {\n  exports[_key] = _m[_key];\n}\n" +
		"Object.defineProperty(exports, \"__esModule\", {value: true});\n"
	assert.Equal(t, want, Generate(prog))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\nd"`, Quote("a\"b\\c\nd"))
	assert.Equal(t, `"\x01"`, Quote("\x01"))
	assert.Equal(t, `"héllo"`, Quote("héllo"))
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "abc", unquote(`"abc"`))
	assert.Equal(t, "a'b", unquote(`'a\'b'`))
	assert.Equal(t, "Aé\U0001F600", unquote(`"\x41é\u{1F600}"`))
}

func TestWalkVisitsEveryNodeOnce(t *testing.T) {
	prog, err := Parse("import a, {b} from \"m\";\nexport {a, b as c};\nexport const d = 1;")
	require.NoError(t, err)

	seen := map[Node]bool{}
	Walk(prog, func(n Node) bool {
		assert.False(t, seen[n], "node %s visited twice", n.Type())
		seen[n] = true
		return true
	})
	assert.NotEmpty(t, seen)
}

func TestWalkSkipsChildren(t *testing.T) {
	prog, err := Parse("import a from \"m\";")
	require.NoError(t, err)

	var types []string
	Walk(prog, func(n Node) bool {
		types = append(types, n.Type())
		_, isImport := n.(*ImportDeclaration)
		return !isImport
	})
	assert.Equal(t, []string{"Program", "ImportDeclaration"}, types)
}

func TestCloneNodeIsDeep(t *testing.T) {
	prog, err := Parse("import a, {b as c} from \"m\";\nexport {a};")
	require.NoError(t, err)

	clone := CloneNode(prog).(*Program)
	assert.Equal(t, Generate(prog), Generate(clone))

	clone.Body[0].(*ImportDeclaration).Source.Value = "changed"
	clone.Body[0].(*ImportDeclaration).Source.Raw = ""
	assert.Equal(t, "m", prog.Body[0].(*ImportDeclaration).Source.Value)

	original := map[Node]bool{}
	Walk(prog, func(n Node) bool { original[n] = true; return true })
	Walk(clone, func(n Node) bool {
		assert.False(t, original[n], "clone shares %s", n.Type())
		return true
	})
}

func TestIdentifiers(t *testing.T) {
	prog, err := Parse("import a from \"m\";\nfunction _m() { return helper; }\nexport const {x} = y;")
	require.NoError(t, err)

	names := Identifiers(prog)
	for _, want := range []string{"a", "_m", "helper", "x", "y"} {
		assert.True(t, names[want], want)
	}
}

func TestHasModuleSyntax(t *testing.T) {
	withImport, err := Parse("import a from 'a';")
	require.NoError(t, err)
	assert.True(t, HasModuleSyntax(withImport))

	script, err := Parse("const a = require('a');\nimport('b');")
	require.NoError(t, err)
	assert.False(t, HasModuleSyntax(script))
}

func TestDependencies(t *testing.T) {
	src := "var a = _$$_IMPORT_DEFAULT('./a');\n" +
		"var b = require(\"b\").b;\n" +
		"require(require.resolve('c'));\n" +
		"import('./lazy');\n" +
		"foo.require('not-a-dep');\n" +
		"require(dynamicName);\n" +
		"require('b');\n"

	deps, err := Dependencies(src, "_$$_IMPORT_DEFAULT", "_$$_IMPORT_ALL")
	require.NoError(t, err)
	assert.Equal(t, []string{"./a", "b", "c", "./lazy"}, deps)
}

func TestTopLevelBindings(t *testing.T) {
	prog, err := Parse("import a, {b as c} from 'm';\n" +
		"var d = 1, e = f(1, 2);\n" +
		"function g(h) { var i; }\n" +
		"class K {}\n" +
		"if (x) { let j = 1; }\n" +
		"export const {l} = obj;\n" +
		"export default function m() {}\n")
	require.NoError(t, err)

	got := TopLevelBindings(prog)
	for _, want := range []string{"a", "c", "d", "e", "g", "K", "l", "m"} {
		assert.True(t, got[want], want)
	}
	for _, notWant := range []string{"b", "f", "h", "i", "j", "x", "obj"} {
		assert.False(t, got[notWant], notWant)
	}
}

func TestRenameBinding(t *testing.T) {
	src := "import exports from 'x';\n" +
		"const o = {exports, exports: 1, get exports() { return exports; }};\n" +
		"const {exports: e} = o;\n" +
		"a.exports(exports?.b, `${exports}`, 'exports');\n" +
		"export {exports as out};\n" +
		"export {exports} from 'y';\n"
	prog, err := Parse(src)
	require.NoError(t, err)
	require.NoError(t, RenameBinding(prog, "exports", "_exports"))

	assert.Equal(t, "import _exports from 'x';\n"+
		"const o = {exports: _exports, exports: 1, get exports() { return _exports; }};\n"+
		"const {exports: e} = o;\n"+
		"a.exports(_exports?.b, `${_exports}`, 'exports');\n"+
		"export {_exports as out};\n"+
		"export {exports} from 'y';\n",
		Generate(prog))
}
