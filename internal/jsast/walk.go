package jsast

// Walk traverses n in depth-first pre-order, calling fn for every node.
// Children are skipped when fn returns false. Nil children are not visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Program:
		for _, s := range n.Body {
			Walk(s, fn)
		}
	case *ImportDeclaration:
		for _, s := range n.Specifiers {
			Walk(s, fn)
		}
		if n.Source != nil {
			Walk(n.Source, fn)
		}
	case *ImportDefaultSpecifier:
		walkIdent(n.Local, fn)
	case *ImportNamespaceSpecifier:
		walkIdent(n.Local, fn)
	case *ImportSpecifier:
		Walk(n.Imported, fn)
		walkIdent(n.Local, fn)
	case *ExportNamedDeclaration:
		if n.Declaration != nil {
			Walk(n.Declaration, fn)
		}
		for _, s := range n.Specifiers {
			Walk(s, fn)
		}
		if n.Source != nil {
			Walk(n.Source, fn)
		}
	case *ExportSpecifier:
		Walk(n.Local, fn)
		Walk(n.Exported, fn)
	case *ExportNamespaceSpecifier:
		Walk(n.Exported, fn)
	case *ExportDefaultDeclaration:
		Walk(n.Declaration, fn)
	case *ExportAllDeclaration:
		if n.Source != nil {
			Walk(n.Source, fn)
		}
	case *VariableDeclaration:
		for _, d := range n.Declarations {
			if d != nil {
				Walk(d, fn)
			}
		}
	case *VariableDeclarator:
		Walk(n.ID, fn)
		if n.Init != nil {
			Walk(n.Init, fn)
		}
	case *FunctionDeclaration:
		walkIdent(n.ID, fn)
	case *ClassDeclaration:
		walkIdent(n.ID, fn)
	case *ExpressionStatement:
		Walk(n.Expression, fn)
	case *ForInStatement:
		if n.Left != nil {
			Walk(n.Left, fn)
		}
		Walk(n.Right, fn)
		if n.Body != nil {
			Walk(n.Body, fn)
		}
	case *BlockStatement:
		for _, s := range n.Body {
			Walk(s, fn)
		}
	case *CallExpression:
		Walk(n.Callee, fn)
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *MemberExpression:
		Walk(n.Object, fn)
		Walk(n.Property, fn)
	case *AssignmentExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *ObjectExpression:
		for _, p := range n.Properties {
			if p != nil {
				Walk(p, fn)
			}
		}
	case *ObjectProperty:
		Walk(n.Key, fn)
		Walk(n.Value, fn)
	}
}

func walkIdent(id *Identifier, fn func(Node) bool) {
	if id != nil {
		Walk(id, fn)
	}
}

// Identifiers returns every name that appears in the program: identifier
// nodes, pattern bindings, and words inside verbatim and raw source text.
// Callers use it to pick temporary names that cannot collide.
func Identifiers(p *Program) map[string]bool {
	names := map[string]bool{}
	addWords := func(src string) {
		toks, err := tokenize(src)
		if err != nil {
			return
		}
		for _, t := range toks {
			if t.kind == tokWord {
				names[t.text] = true
			}
		}
	}
	Walk(p, func(n Node) bool {
		switch n := n.(type) {
		case *Identifier:
			names[n.Name] = true
		case *Pattern:
			for _, name := range n.Names {
				names[name] = true
			}
		case *Verbatim:
			addWords(n.Text)
		case *RawExpression:
			addWords(n.Text)
		case *FunctionDeclaration:
			addWords(n.Rest)
		case *ClassDeclaration:
			addWords(n.Rest)
		}
		return true
	})
	return names
}
