package jsast

import (
	"strconv"
	"strings"
)

// Generate prints a program as source. Each top-level statement is
// terminated by a newline; verbatim runs are printed unchanged.
func Generate(p *Program) string {
	var g generator
	for _, s := range p.Body {
		g.statement(s, "")
		g.WriteByte('\n')
	}
	return g.String()
}

type generator struct {
	strings.Builder
}

func (g *generator) statement(s Statement, indent string) {
	g.WriteString(indent)
	switch s := s.(type) {
	case *Verbatim:
		g.WriteString(s.Text)

	case *ImportDeclaration:
		g.WriteString("import ")
		if len(s.Specifiers) > 0 {
			g.importSpecifiers(s.Specifiers)
			g.WriteString(" from ")
		}
		g.stringLiteral(s.Source)
		if s.Attributes != "" {
			g.WriteString(" " + s.Attributes)
		}
		g.WriteByte(';')

	case *ExportNamedDeclaration:
		g.WriteString("export ")
		if s.Declaration != nil {
			g.statement(s.Declaration, "")
			return
		}
		if len(s.Specifiers) == 1 {
			if ns, ok := s.Specifiers[0].(*ExportNamespaceSpecifier); ok {
				g.WriteString("* as ")
				g.node(ns.Exported)
				g.WriteString(" from ")
				g.stringLiteral(s.Source)
				g.WriteByte(';')
				return
			}
		}
		g.WriteByte('{')
		for i, spec := range s.Specifiers {
			if i > 0 {
				g.WriteString(", ")
			}
			g.node(spec)
		}
		g.WriteByte('}')
		if s.Source != nil {
			g.WriteString(" from ")
			g.stringLiteral(s.Source)
		}
		g.WriteByte(';')

	case *ExportDefaultDeclaration:
		g.WriteString("export default ")
		switch d := s.Declaration.(type) {
		case Statement:
			g.statement(d, "")
		case Expression:
			g.expression(d)
			g.WriteByte(';')
		}

	case *ExportAllDeclaration:
		g.WriteString("export * from ")
		g.stringLiteral(s.Source)
		g.WriteByte(';')

	case *VariableDeclaration:
		g.variableDeclaration(s)
		g.WriteByte(';')

	case *FunctionDeclaration:
		g.WriteString(s.Keyword)
		if s.ID != nil {
			g.WriteString(" " + s.ID.Name)
		} else {
			g.WriteByte(' ')
		}
		g.WriteString(s.Rest)

	case *ClassDeclaration:
		g.WriteString("class ")
		if s.ID != nil {
			g.WriteString(s.ID.Name + " ")
		}
		g.WriteString(s.Rest)

	case *ExpressionStatement:
		g.expression(s.Expression)
		g.WriteByte(';')

	case *ForInStatement:
		g.WriteString("for (")
		g.variableDeclaration(s.Left)
		g.WriteString(" in ")
		g.expression(s.Right)
		g.WriteString(") ")
		g.block(s.Body, indent)

	case *BlockStatement:
		g.block(s, indent)
	}
}

func (g *generator) block(b *BlockStatement, indent string) {
	if b == nil || len(b.Body) == 0 {
		g.WriteString("{}")
		return
	}
	g.WriteString("{\n")
	for _, s := range b.Body {
		g.statement(s, indent+"  ")
		g.WriteByte('\n')
	}
	g.WriteString(indent + "}")
}

func (g *generator) importSpecifiers(specs []Node) {
	var named []*ImportSpecifier
	first := true
	sep := func() {
		if !first {
			g.WriteString(", ")
		}
		first = false
	}
	for _, spec := range specs {
		switch s := spec.(type) {
		case *ImportDefaultSpecifier:
			sep()
			g.WriteString(s.Local.Name)
		case *ImportNamespaceSpecifier:
			sep()
			g.WriteString("* as " + s.Local.Name)
		case *ImportSpecifier:
			named = append(named, s)
		}
	}
	if len(named) == 0 {
		return
	}
	sep()
	g.WriteByte('{')
	for i, s := range named {
		if i > 0 {
			g.WriteString(", ")
		}
		g.node(s)
	}
	g.WriteByte('}')
}

func (g *generator) variableDeclaration(v *VariableDeclaration) {
	g.WriteString(v.Kind + " ")
	for i, d := range v.Declarations {
		if i > 0 {
			g.WriteString(", ")
		}
		g.node(d.ID)
		if d.Init != nil {
			g.WriteString(" = ")
			g.expression(d.Init)
		}
	}
}

func (g *generator) node(n Node) {
	switch n := n.(type) {
	case Expression:
		g.expression(n)
	case *Pattern:
		g.WriteString(n.Text)
	case *ImportSpecifier:
		g.node(n.Imported)
		if id, ok := n.Imported.(*Identifier); !ok || id.Name != n.Local.Name {
			g.WriteString(" as " + n.Local.Name)
		}
	case *ExportSpecifier:
		g.node(n.Local)
		if ExportName(n.Local) != ExportName(n.Exported) {
			g.WriteString(" as ")
			g.node(n.Exported)
		}
	case *ExportNamespaceSpecifier:
		g.WriteString("* as ")
		g.node(n.Exported)
	case *ImportDefaultSpecifier:
		g.WriteString(n.Local.Name)
	case *ImportNamespaceSpecifier:
		g.WriteString("* as " + n.Local.Name)
	case *VariableDeclarator:
		g.node(n.ID)
		if n.Init != nil {
			g.WriteString(" = ")
			g.expression(n.Init)
		}
	case *ObjectProperty:
		g.expression(n.Key)
		g.WriteString(": ")
		g.expression(n.Value)
	}
}

func (g *generator) expression(e Expression) {
	switch e := e.(type) {
	case *Identifier:
		g.WriteString(e.Name)
	case *StringLiteral:
		g.stringLiteral(e)
	case *BooleanLiteral:
		g.WriteString(strconv.FormatBool(e.Value))
	case *CallExpression:
		g.expression(e.Callee)
		g.WriteByte('(')
		for i, arg := range e.Arguments {
			if i > 0 {
				g.WriteString(", ")
			}
			g.expression(arg)
		}
		g.WriteByte(')')
	case *MemberExpression:
		g.expression(e.Object)
		if e.Computed {
			g.WriteByte('[')
			g.expression(e.Property)
			g.WriteByte(']')
		} else {
			g.WriteByte('.')
			g.expression(e.Property)
		}
	case *AssignmentExpression:
		g.expression(e.Left)
		g.WriteString(" " + e.Operator + " ")
		g.expression(e.Right)
	case *ObjectExpression:
		if len(e.Properties) == 0 {
			g.WriteString("{}")
			return
		}
		g.WriteByte('{')
		for i, p := range e.Properties {
			if i > 0 {
				g.WriteString(", ")
			}
			g.node(p)
		}
		g.WriteByte('}')
	case *RawExpression:
		g.WriteString(e.Text)
	}
}

func (g *generator) stringLiteral(s *StringLiteral) {
	if s == nil {
		g.WriteString(`""`)
		return
	}
	if s.Raw != "" {
		g.WriteString(s.Raw)
		return
	}
	g.WriteString(Quote(s.Value))
}

// Quote returns value as a double-quoted JavaScript string literal.
func Quote(value string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				b.WriteString(`\x`)
				b.WriteString(strconv.FormatInt(int64(r)>>4, 16))
				b.WriteString(strconv.FormatInt(int64(r)&0xf, 16))
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ExportName is the exported or imported name carried by an *Identifier or
// *StringLiteral.
func ExportName(n Node) string {
	switch n := n.(type) {
	case *Identifier:
		return n.Name
	case *StringLiteral:
		return n.Value
	}
	return ""
}

