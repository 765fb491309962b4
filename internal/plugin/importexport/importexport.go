// Package importexport rewrites ES module syntax into the CommonJS-style
// form the bundler runtime executes.
//
// Imports are hoisted to the top of the module in source order. Exports are
// collected while walking the program and emitted at the end: default
// exports first, then `export *` re-exports, then named exports. A module
// that exports anything is flagged with an `__esModule` marker as its first
// statement.
//
// Module-scope bindings named after the factory arguments (module, global,
// exports, require) are renamed first so they cannot shadow them.
package importexport

import (
	"errors"
	"fmt"

	"github.com/expo/metro-core/internal/jsast"
)

const (
	// DefaultImportDefault is the runtime helper used for default imports.
	DefaultImportDefault = "_$$_IMPORT_DEFAULT"
	// DefaultImportAll is the runtime helper used for namespace imports.
	DefaultImportAll = "_$$_IMPORT_ALL"
)

// ErrStringNames is returned for `export {"a b" as c}` style names.
var ErrStringNames = errors.New("module string names are not supported")

// factoryArguments are the names the module factory receives.
var factoryArguments = []string{"module", "global", "exports", "require"}

// Options configures the rewrite.
type Options struct {
	// ImportDefault names the helper wrapping default imports.
	ImportDefault string
	// ImportAll names the helper wrapping namespace imports.
	ImportAll string
	// Resolve wraps every module specifier in require.resolve(...).
	Resolve bool
	// LiveBindings exports re-exported bindings through getters, so they
	// follow later changes in the source module. `export *` copies keys
	// through getters as well.
	LiveBindings bool
}

// DefaultOptions returns options with the standard runtime helper names.
func DefaultOptions() Options {
	return Options{ImportDefault: DefaultImportDefault, ImportAll: DefaultImportAll}
}

// Result is the rewritten program.
type Result struct {
	Program *jsast.Program
	// IsESModule reports whether the module exported anything.
	IsESModule bool
}

// Transform rewrites prog. It takes ownership of prog: declarations are
// moved into the result rather than copied.
func Transform(prog *jsast.Program, opts Options) (*Result, error) {
	if opts.ImportDefault == "" {
		opts.ImportDefault = DefaultImportDefault
	}
	if opts.ImportAll == "" {
		opts.ImportAll = DefaultImportAll
	}

	r := &rewriter{
		opts:     opts,
		uids:     newUIDScope(jsast.Identifiers(prog)),
		renamed:  map[string]string{},
		imported: map[string]importedBinding{},
	}
	bound := jsast.TopLevelBindings(prog)
	for _, name := range factoryArguments {
		if !bound[name] {
			continue
		}
		to := r.uids.generate(name)
		if err := jsast.RenameBinding(prog, name, to); err != nil {
			return nil, fmt.Errorf("renaming %s: %w", name, err)
		}
		r.renamed[to] = name
	}

	for _, stmt := range prog.Body {
		var err error
		switch s := stmt.(type) {
		case *jsast.ImportDeclaration:
			err = r.importDeclaration(s)
		case *jsast.ExportNamedDeclaration:
			err = r.exportNamedDeclaration(s)
		case *jsast.ExportDefaultDeclaration:
			err = r.exportDefaultDeclaration(s)
		case *jsast.ExportAllDeclaration:
			r.exportAll = append(r.exportAll, s.Source.Value)
		default:
			r.body = append(r.body, stmt)
		}
		if err != nil {
			return nil, err
		}
	}
	return r.finish(), nil
}

// TransformSource parses src, rewrites it and prints the result.
func TransformSource(src string, opts Options) (code string, isESModule bool, err error) {
	prog, err := jsast.Parse(src)
	if err != nil {
		return "", false, err
	}
	res, err := Transform(prog, opts)
	if err != nil {
		return "", false, err
	}
	return jsast.Generate(res.Program), res.IsESModule, nil
}

// namedExport exports local as remote. With a namespace, the export is a
// getter reading namespace.local.
type namedExport struct {
	local     string
	remote    string
	namespace string
}

// importedBinding records where a named import came from.
type importedBinding struct {
	namespace string
	imported  string
}

type rewriter struct {
	opts Options
	uids *uidScope

	// renamed maps new names of renamed bindings to their source names.
	renamed  map[string]string
	imported map[string]importedBinding

	imports []jsast.Statement
	body    []jsast.Statement

	exportDefault []namedExport
	exportAll     []string
	exportNamed   []namedExport
}

// exportedName is the name a declaration is exported under.
func (r *rewriter) exportedName(local string) string {
	if name, ok := r.renamed[local]; ok {
		return name
	}
	return local
}

func (r *rewriter) importDeclaration(d *jsast.ImportDeclaration) error {
	if len(d.Specifiers) == 0 {
		r.imports = append(r.imports, jsast.ExprStmt(r.require(d.Source)))
		return nil
	}

	var (
		shared     *jsast.VariableDeclaration
		sharedName string
	)
	if n := countNamed(d.Specifiers); n > 1 || (n == 1 && r.opts.LiveBindings) {
		sharedName = r.uids.generateBasedOnString(d.Source.Value)
		shared = jsast.Var(sharedName, r.require(d.Source))
		r.imports = append(r.imports, shared)
	}

	for _, spec := range d.Specifiers {
		switch s := spec.(type) {
		case *jsast.ImportNamespaceSpecifier:
			r.imports = append(r.imports, jsast.Var(s.Local.Name, r.helper(r.opts.ImportAll, d.Source)))

		case *jsast.ImportDefaultSpecifier:
			r.imports = append(r.imports, jsast.Var(s.Local.Name, r.helper(r.opts.ImportDefault, d.Source)))

		case *jsast.ImportSpecifier:
			// every named specifier reserves a module-local name, used or not,
			// so later temp numbering does not depend on how imports were grouped
			r.uids.generate(sanitizeFileName(d.Source.Value))

			switch {
			case isDefault(s.Imported):
				r.imports = append(r.imports, jsast.Var(s.Local.Name, r.helper(r.opts.ImportDefault, d.Source)))
			case shared != nil:
				if id, ok := s.Imported.(*jsast.Identifier); ok {
					r.imported[s.Local.Name] = importedBinding{namespace: sharedName, imported: id.Name}
				}
				shared.Declarations = append(shared.Declarations, &jsast.VariableDeclarator{
					ID:   jsast.NewIdentifier(s.Local.Name),
					Init: member(jsast.NewIdentifier(sharedName), s.Imported),
				})
			default:
				r.imports = append(r.imports, jsast.Var(s.Local.Name, member(r.require(d.Source), s.Imported)))
			}

		default:
			return fmt.Errorf("unknown import specifier %s", spec.Type())
		}
	}
	return nil
}

// countNamed counts named specifiers that do not import the default export.
func countNamed(specs []jsast.Node) int {
	n := 0
	for _, spec := range specs {
		if s, ok := spec.(*jsast.ImportSpecifier); ok && !isDefault(s.Imported) {
			n++
		}
	}
	return n
}

func (r *rewriter) exportNamedDeclaration(d *jsast.ExportNamedDeclaration) error {
	if d.Declaration != nil {
		switch decl := d.Declaration.(type) {
		case *jsast.VariableDeclaration:
			for _, v := range decl.Declarations {
				for _, name := range boundNames(v.ID) {
					r.exportNamed = append(r.exportNamed, namedExport{local: name, remote: r.exportedName(name)})
				}
			}
		case *jsast.FunctionDeclaration:
			if decl.ID == nil {
				decl.ID = jsast.NewIdentifier(r.uids.generate(""))
			}
			r.exportNamed = append(r.exportNamed, namedExport{local: decl.ID.Name, remote: r.exportedName(decl.ID.Name)})
		case *jsast.ClassDeclaration:
			if decl.ID == nil {
				decl.ID = jsast.NewIdentifier(r.uids.generate(""))
			}
			r.exportNamed = append(r.exportNamed, namedExport{local: decl.ID.Name, remote: r.exportedName(decl.ID.Name)})
		default:
			return fmt.Errorf("unsupported exported declaration %s", decl.Type())
		}
		r.body = append(r.body, d.Declaration)
	}

	for _, spec := range d.Specifiers {
		var (
			local, remote jsast.Node
			namespace     bool
		)
		switch s := spec.(type) {
		case *jsast.ExportSpecifier:
			local, remote = s.Local, s.Exported
		case *jsast.ExportNamespaceSpecifier:
			local, remote, namespace = s.Exported, s.Exported, true
		default:
			return fmt.Errorf("unknown export specifier %s", spec.Type())
		}
		if isString(local) || isString(remote) {
			return ErrStringNames
		}
		localName, remoteName := jsast.ExportName(local), jsast.ExportName(remote)

		if d.Source == nil {
			e := namedExport{local: localName, remote: remoteName}
			if b, ok := r.imported[localName]; ok && r.opts.LiveBindings {
				e.local, e.namespace = b.imported, b.namespace
			}
			if remoteName == "default" {
				r.exportDefault = append(r.exportDefault, e)
			} else {
				r.exportNamed = append(r.exportNamed, e)
			}
			continue
		}

		var temp string
		if r.opts.LiveBindings {
			temp = r.uids.generate(sanitizeFileName(d.Source.Value))
		} else {
			temp = r.uids.generate(localName)
		}
		switch {
		case localName == "default":
			r.body = append(r.body, jsast.Var(temp, r.helper(r.opts.ImportDefault, d.Source)))
			r.exportNamed = append(r.exportNamed, namedExport{local: temp, remote: remoteName})
		case remoteName == "default" && r.opts.LiveBindings:
			r.body = append(r.body, jsast.Var(temp, r.require(d.Source)))
			r.exportDefault = append(r.exportDefault, namedExport{local: localName, remote: "default", namespace: temp})
		case remoteName == "default":
			r.body = append(r.body, jsast.Var(temp, member(r.require(d.Source), local)))
			r.exportDefault = append(r.exportDefault, namedExport{local: temp, remote: "default"})
		case namespace:
			r.body = append(r.body, jsast.Var(temp, r.helper(r.opts.ImportAll, d.Source)))
			r.exportNamed = append(r.exportNamed, namedExport{local: temp, remote: remoteName})
		case r.opts.LiveBindings:
			r.body = append(r.body, jsast.Var(temp, r.require(d.Source)))
			r.exportNamed = append(r.exportNamed, namedExport{local: localName, remote: remoteName, namespace: temp})
		default:
			r.body = append(r.body, jsast.Var(temp, member(r.require(d.Source), local)))
			r.exportNamed = append(r.exportNamed, namedExport{local: temp, remote: remoteName})
		}
	}
	return nil
}

func (r *rewriter) exportDefaultDeclaration(d *jsast.ExportDefaultDeclaration) error {
	switch decl := d.Declaration.(type) {
	case *jsast.FunctionDeclaration:
		if decl.ID == nil {
			decl.ID = jsast.NewIdentifier(r.uids.generate("default"))
		}
		r.body = append(r.body, decl)
		r.exportDefault = append(r.exportDefault, namedExport{local: decl.ID.Name, remote: "default"})
	case *jsast.ClassDeclaration:
		if decl.ID == nil {
			decl.ID = jsast.NewIdentifier(r.uids.generate("default"))
		}
		r.body = append(r.body, decl)
		r.exportDefault = append(r.exportDefault, namedExport{local: decl.ID.Name, remote: "default"})
	case jsast.Expression:
		name := r.uids.generate("default")
		r.body = append(r.body, jsast.Var(name, decl))
		r.exportDefault = append(r.exportDefault, namedExport{local: name, remote: "default"})
	default:
		return fmt.Errorf("unsupported default export %s", d.Declaration.Type())
	}
	return nil
}

func (r *rewriter) finish() *Result {
	exported := len(r.exportDefault) > 0 || len(r.exportAll) > 0 || len(r.exportNamed) > 0

	out := &jsast.Program{}
	if exported {
		out.Body = append(out.Body, esModuleMarker())
	}
	out.Body = append(out.Body, r.imports...)
	out.Body = append(out.Body, r.body...)

	for _, e := range r.exportDefault {
		out.Body = append(out.Body, e.statement())
	}
	for _, file := range r.exportAll {
		required := r.uids.generate(file)
		key := r.uids.generate("key")
		out.Body = append(out.Body, jsast.Var(required, r.require(jsast.NewStringLiteral(file))))
		if r.opts.LiveBindings {
			out.Body = append(out.Body, liveExportAll(required, key))
			continue
		}
		out.Body = append(out.Body,
			&jsast.ForInStatement{
				Left: &jsast.VariableDeclaration{
					Kind:         "var",
					Declarations: []*jsast.VariableDeclarator{{ID: jsast.NewIdentifier(key)}},
				},
				Right: jsast.NewIdentifier(required),
				Body: &jsast.BlockStatement{Body: []jsast.Statement{
					jsast.ExprStmt(&jsast.AssignmentExpression{
						Operator: "=",
						Left:     computed(jsast.NewIdentifier("exports"), key),
						Right:    computed(jsast.NewIdentifier(required), key),
					}),
				}},
			},
		)
	}
	for _, e := range r.exportNamed {
		out.Body = append(out.Body, e.statement())
	}

	return &Result{Program: out, IsESModule: exported}
}

// source returns a fresh copy of the module specifier, resolved if requested.
func (r *rewriter) source(src *jsast.StringLiteral) jsast.Expression {
	s := jsast.CloneString(src)
	if r.opts.Resolve {
		return jsast.Call(jsast.Member(jsast.NewIdentifier("require"), "resolve"), s)
	}
	return s
}

func (r *rewriter) require(src *jsast.StringLiteral) *jsast.CallExpression {
	return jsast.Call(jsast.NewIdentifier("require"), r.source(src))
}

func (r *rewriter) helper(name string, src *jsast.StringLiteral) *jsast.CallExpression {
	return jsast.Call(jsast.NewIdentifier(name), r.source(src))
}

func esModuleMarker() jsast.Statement {
	return jsast.ExprStmt(jsast.Call(
		jsast.Member(jsast.NewIdentifier("Object"), "defineProperty"),
		jsast.NewIdentifier("exports"),
		jsast.NewStringLiteral("__esModule"),
		&jsast.ObjectExpression{Properties: []*jsast.ObjectProperty{
			{Key: jsast.NewIdentifier("value"), Value: &jsast.BooleanLiteral{Value: true}},
		}},
	))
}

func (e namedExport) statement() jsast.Statement {
	if e.namespace != "" {
		return liveExport(e.remote, e.namespace, e.local)
	}
	return exportAssign(e.remote, e.local)
}

func exportAssign(remote, local string) jsast.Statement {
	return jsast.ExprStmt(&jsast.AssignmentExpression{
		Operator: "=",
		Left:     jsast.Member(jsast.NewIdentifier("exports"), remote),
		Right:    jsast.NewIdentifier(local),
	})
}

// member builds object.name, or object["name"] for string names.
func member(object jsast.Expression, name jsast.Node) *jsast.MemberExpression {
	if s, ok := name.(*jsast.StringLiteral); ok {
		return &jsast.MemberExpression{Object: object, Property: jsast.CloneString(s), Computed: true}
	}
	return jsast.Member(object, jsast.ExportName(name))
}

func computed(object jsast.Expression, key string) *jsast.MemberExpression {
	return &jsast.MemberExpression{Object: object, Property: jsast.NewIdentifier(key), Computed: true}
}

func isDefault(n jsast.Node) bool {
	id, ok := n.(*jsast.Identifier)
	return ok && id.Name == "default"
}

func isString(n jsast.Node) bool {
	_, ok := n.(*jsast.StringLiteral)
	return ok
}

func boundNames(id jsast.Node) []string {
	switch id := id.(type) {
	case *jsast.Identifier:
		return []string{id.Name}
	case *jsast.Pattern:
		return id.Names
	}
	return nil
}
