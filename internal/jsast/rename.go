package jsast

import "strings"

// declarationKeywords introduce bindings in the scope they appear in.
var declarationKeywords = map[string]bool{"var": true, "let": true, "const": true}

// TopLevelBindings returns the names bound at module scope: import locals,
// exported declarations, and declarations at the top level of verbatim runs.
func TopLevelBindings(p *Program) map[string]bool {
	names := map[string]bool{}
	for _, stmt := range p.Body {
		switch s := stmt.(type) {
		case *ImportDeclaration:
			for _, spec := range s.Specifiers {
				switch spec := spec.(type) {
				case *ImportDefaultSpecifier:
					names[spec.Local.Name] = true
				case *ImportNamespaceSpecifier:
					names[spec.Local.Name] = true
				case *ImportSpecifier:
					names[spec.Local.Name] = true
				}
			}
		case *ExportNamedDeclaration:
			declarationNames(s.Declaration, names)
		case *ExportDefaultDeclaration:
			if d, ok := s.Declaration.(Statement); ok {
				declarationNames(d, names)
			}
		case *Verbatim:
			verbatimBindings(s.Text, names)
		}
	}
	return names
}

func declarationNames(d Statement, names map[string]bool) {
	switch d := d.(type) {
	case *VariableDeclaration:
		for _, v := range d.Declarations {
			switch id := v.ID.(type) {
			case *Identifier:
				names[id.Name] = true
			case *Pattern:
				for _, n := range id.Names {
					names[n] = true
				}
			}
		}
	case *FunctionDeclaration:
		if d.ID != nil {
			names[d.ID.Name] = true
		}
	case *ClassDeclaration:
		if d.ID != nil {
			names[d.ID.Name] = true
		}
	}
}

// verbatimBindings collects simple declarations outside any bracket.
// Destructuring declarations in verbatim runs are not inspected.
func verbatimBindings(src string, names map[string]bool) {
	toks, err := tokenize(src)
	if err != nil {
		return
	}
	depth := 0
	for i, t := range toks {
		switch {
		case isOpener(t):
			depth++
			continue
		case isCloser(t):
			depth--
			continue
		}
		if depth != 0 || t.kind != tokWord || (i > 0 && (toks[i-1].is(".") || toks[i-1].is("?."))) {
			continue
		}
		switch {
		case declarationKeywords[t.text]:
			declaratorNames(toks[i+1:], names)
		case t.text == "function" || t.text == "class":
			j := i + 1
			if j < len(toks) && toks[j].is("*") {
				j++
			}
			if j < len(toks) && toks[j].kind == tokWord {
				names[toks[j].text] = true
			}
		}
	}
}

// declaratorNames reads `a = 1, b, c = f(x)` up to the end of the declaration.
func declaratorNames(toks []token, names map[string]bool) {
	depth := 0
	expectName := true
	for i, t := range toks {
		if depth == 0 {
			if t.is(";") {
				return
			}
			if i > 0 && t.newline && !t.is(",") && !toks[i-1].is(",") && !toks[i-1].is("=") && endsExpression(toks[i-1]) {
				return
			}
			if expectName {
				if t.kind != tokWord {
					return
				}
				names[t.text] = true
				expectName = false
				continue
			}
			if t.is(",") {
				expectName = true
				continue
			}
		}
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

// RenameBinding renames the identifier from to to throughout p: binding
// nodes, and references inside verbatim and raw source text. Property
// names, object keys and exported names are left unchanged. Shorthand
// properties keep their key: `{from}` becomes `{from: to}`.
func RenameBinding(p *Program, from, to string) error {
	var err error
	text := func(s *string, wrap bool) {
		if err != nil {
			return
		}
		var out string
		out, err = renameText(*s, from, to, wrap)
		if err == nil {
			*s = out
		}
	}
	ident := func(id *Identifier) {
		if id != nil && id.Name == from {
			id.Name = to
		}
	}

	Walk(p, func(n Node) bool {
		switch n := n.(type) {
		case *Verbatim:
			text(&n.Text, false)
		case *RawExpression:
			text(&n.Text, true)
		case *Pattern:
			text(&n.Text, true)
			for i, name := range n.Names {
				if name == from {
					n.Names[i] = to
				}
			}
		case *FunctionDeclaration:
			ident(n.ID)
			text(&n.Rest, false)
			return false
		case *ClassDeclaration:
			ident(n.ID)
			text(&n.Rest, false)
			return false
		case *ImportDefaultSpecifier:
			ident(n.Local)
		case *ImportNamespaceSpecifier:
			ident(n.Local)
		case *ImportSpecifier:
			ident(n.Local)
			return false
		case *ExportNamedDeclaration:
			// specifiers of a re-export name bindings of the other module
			return n.Source == nil
		case *ExportSpecifier:
			if id, ok := n.Local.(*Identifier); ok {
				ident(id)
			}
			return false
		case *VariableDeclarator:
			if id, ok := n.ID.(*Identifier); ok {
				ident(id)
			}
		}
		return true
	})
	return err
}

// propertyPrefixes are words that may precede a method name in an object
// literal or class body.
var propertyPrefixes = map[string]bool{"get": true, "set": true, "async": true, "static": true}

// renameText rewrites references to from in src. Expressions and patterns
// are wrapped in parentheses while lexing so a leading brace reads as an
// object literal.
func renameText(src, from, to string, wrap bool) (string, error) {
	lexed := src
	shift := 0
	if wrap {
		lexed, shift = "("+src+")", 1
	}
	toks, err := tokenize(lexed)
	if err != nil {
		return "", err
	}

	var (
		b     strings.Builder
		last  int
		stack []token
	)
	for i, t := range toks {
		switch {
		case isOpener(t):
			stack = append(stack, t)
		case isCloser(t):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
		if t.kind != tokWord || t.text != from {
			continue
		}

		var prev, next token
		if i > 0 {
			prev = toks[i-1]
		}
		if i+1 < len(toks) {
			next = toks[i+1]
		}
		if prev.is(".") || prev.is("?.") || prev.is("#") {
			continue
		}

		inObject := len(stack) > 0 && stack[len(stack)-1].is("{") && !stack[len(stack)-1].block
		keyPosition := prev.is("{") || prev.is(",")
		replacement := to
		switch {
		case inObject && keyPosition && next.is(":"):
			continue
		case inObject && (keyPosition || prev.is("*") || (prev.kind == tokWord && propertyPrefixes[prev.text])) && next.is("("):
			continue
		case inObject && keyPosition && (next.is(",") || next.is("}") || next.is("=")):
			// shorthand property, or a pattern default
			replacement = from + ": " + to
		}

		start, end := t.start-shift, t.end-shift
		b.WriteString(src[last:start])
		b.WriteString(replacement)
		last = end
	}
	b.WriteString(src[last:])
	return b.String(), nil
}
