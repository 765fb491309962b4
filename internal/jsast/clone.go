package jsast

// CloneNode returns a deep copy of n. Rewrites that place one logical node
// in several positions clone it so no pointer is shared.
func CloneNode(n Node) Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *Program:
		return &Program{Body: cloneStatements(n.Body)}
	case *Verbatim:
		c := *n
		return &c
	case *ImportDeclaration:
		return &ImportDeclaration{Specifiers: cloneNodes(n.Specifiers), Source: CloneString(n.Source), Attributes: n.Attributes}
	case *ImportDefaultSpecifier:
		return &ImportDefaultSpecifier{Local: CloneIdent(n.Local)}
	case *ImportNamespaceSpecifier:
		return &ImportNamespaceSpecifier{Local: CloneIdent(n.Local)}
	case *ImportSpecifier:
		return &ImportSpecifier{Imported: CloneNode(n.Imported), Local: CloneIdent(n.Local)}
	case *ExportNamedDeclaration:
		c := &ExportNamedDeclaration{Specifiers: cloneNodes(n.Specifiers), Source: CloneString(n.Source)}
		if n.Declaration != nil {
			c.Declaration = CloneNode(n.Declaration).(Statement)
		}
		return c
	case *ExportSpecifier:
		return &ExportSpecifier{Local: CloneNode(n.Local), Exported: CloneNode(n.Exported)}
	case *ExportNamespaceSpecifier:
		return &ExportNamespaceSpecifier{Exported: CloneNode(n.Exported)}
	case *ExportDefaultDeclaration:
		return &ExportDefaultDeclaration{Declaration: CloneNode(n.Declaration)}
	case *ExportAllDeclaration:
		return &ExportAllDeclaration{Source: CloneString(n.Source)}
	case *VariableDeclaration:
		return cloneVar(n)
	case *VariableDeclarator:
		return cloneDeclarator(n)
	case *Pattern:
		return &Pattern{Text: n.Text, Names: append([]string(nil), n.Names...)}
	case *FunctionDeclaration:
		return &FunctionDeclaration{Keyword: n.Keyword, ID: CloneIdent(n.ID), Rest: n.Rest}
	case *ClassDeclaration:
		return &ClassDeclaration{ID: CloneIdent(n.ID), Rest: n.Rest}
	case *ExpressionStatement:
		return &ExpressionStatement{Expression: CloneExpr(n.Expression)}
	case *ForInStatement:
		c := &ForInStatement{Right: CloneExpr(n.Right)}
		if n.Left != nil {
			c.Left = cloneVar(n.Left)
		}
		if n.Body != nil {
			c.Body = &BlockStatement{Body: cloneStatements(n.Body.Body)}
		}
		return c
	case *BlockStatement:
		return &BlockStatement{Body: cloneStatements(n.Body)}
	case *Identifier:
		return CloneIdent(n)
	case *StringLiteral:
		return CloneString(n)
	case *BooleanLiteral:
		c := *n
		return &c
	case *CallExpression:
		c := &CallExpression{Callee: CloneExpr(n.Callee)}
		for _, a := range n.Arguments {
			c.Arguments = append(c.Arguments, CloneExpr(a))
		}
		return c
	case *MemberExpression:
		return &MemberExpression{Object: CloneExpr(n.Object), Property: CloneExpr(n.Property), Computed: n.Computed}
	case *AssignmentExpression:
		return &AssignmentExpression{Operator: n.Operator, Left: CloneExpr(n.Left), Right: CloneExpr(n.Right)}
	case *ObjectExpression:
		c := &ObjectExpression{}
		for _, p := range n.Properties {
			c.Properties = append(c.Properties, &ObjectProperty{Key: CloneExpr(p.Key), Value: CloneExpr(p.Value)})
		}
		return c
	case *ObjectProperty:
		return &ObjectProperty{Key: CloneExpr(n.Key), Value: CloneExpr(n.Value)}
	case *RawExpression:
		c := *n
		return &c
	}
	return n
}

// CloneExpr is CloneNode for expressions.
func CloneExpr(e Expression) Expression {
	if e == nil {
		return nil
	}
	return CloneNode(e).(Expression)
}

// CloneIdent copies an identifier; nil stays nil.
func CloneIdent(id *Identifier) *Identifier {
	if id == nil {
		return nil
	}
	return &Identifier{Name: id.Name}
}

// CloneString copies a string literal; nil stays nil.
func CloneString(s *StringLiteral) *StringLiteral {
	if s == nil {
		return nil
	}
	return &StringLiteral{Value: s.Value, Raw: s.Raw}
}

func cloneVar(v *VariableDeclaration) *VariableDeclaration {
	c := &VariableDeclaration{Kind: v.Kind}
	for _, d := range v.Declarations {
		c.Declarations = append(c.Declarations, cloneDeclarator(d))
	}
	return c
}

func cloneDeclarator(d *VariableDeclarator) *VariableDeclarator {
	return &VariableDeclarator{ID: CloneNode(d.ID), Init: CloneExpr(d.Init)}
}

func cloneStatements(in []Statement) []Statement {
	out := make([]Statement, 0, len(in))
	for _, s := range in {
		out = append(out, CloneNode(s).(Statement))
	}
	return out
}

func cloneNodes(in []Node) []Node {
	if in == nil {
		return nil
	}
	out := make([]Node, 0, len(in))
	for _, n := range in {
		out = append(out, CloneNode(n))
	}
	return out
}
