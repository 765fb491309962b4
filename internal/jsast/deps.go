package jsast

// HasModuleSyntax reports whether the program contains import or export
// declarations.
func HasModuleSyntax(p *Program) bool {
	for _, s := range p.Body {
		switch s.(type) {
		case *ImportDeclaration, *ExportNamedDeclaration, *ExportDefaultDeclaration, *ExportAllDeclaration:
			return true
		}
	}
	return false
}

// Dependencies lists the module specifiers loaded by src through
// `require("x")`, `require.resolve("x")`, `import("x")` or any of the extra
// callee names (the interop helpers). Only literal string arguments count.
// Specifiers are returned once each, in order of first appearance.
func Dependencies(src string, callees ...string) ([]string, error) {
	toks, err := tokenize(src)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Line, se.Column = position(src, se.Offset)
		}
		return nil, err
	}

	names := map[string]bool{"require": true, "import": true}
	for _, c := range callees {
		names[c] = true
	}

	var (
		deps []string
		seen = map[string]bool{}
	)
	at := func(i int) token {
		if i >= 0 && i < len(toks) {
			return toks[i]
		}
		return token{kind: tokEOF}
	}
	for i, t := range toks {
		if t.kind != tokWord {
			continue
		}
		prev := at(i - 1)
		afterDot := prev.is(".") || prev.is("?.")
		isCallee := names[t.text] && !afterDot
		if t.text == "resolve" && afterDot && at(i-2).word("require") {
			isCallee = true
		}
		if !isCallee || !at(i+1).is("(") || at(i+2).kind != tokString || !at(i+3).is(")") {
			continue
		}
		if spec := unquote(at(i + 2).text); !seen[spec] {
			seen[spec] = true
			deps = append(deps, spec)
		}
	}
	return deps, nil
}
