package jsast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const tokEOF tokenKind = -1

// Parse parses module source into a Program. Import and export
// declarations at the top level become structured nodes; all other source is
// kept as Verbatim runs between them.
func Parse(src string) (*Program, error) {
	toks, err := tokenize(src)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Line, se.Column = position(src, se.Offset)
		}
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	return p.parseProgram()
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) cur() token { return p.peek(0) }

func (p *parser) peek(n int) token {
	if i := p.pos + n; i >= 0 && i < len(p.toks) {
		return p.toks[i]
	}
	return token{kind: tokEOF, start: len(p.src), end: len(p.src)}
}

func (p *parser) eof() bool { return p.pos >= len(p.toks) }

// lastEnd is the end offset of the most recently consumed token.
func (p *parser) lastEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].end
}

func (p *parser) errorf(t token, format string, args ...any) error {
	line, col := position(p.src, t.start)
	return &SyntaxError{Offset: t.start, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{}
	chunkStart := 0
	depth := 0

	for !p.eof() {
		t := p.cur()
		if depth == 0 && (t.word("import") || t.word("export")) && !p.afterDot() {
			start := t.start
			stmt, err := p.parseModuleItem()
			if err != nil {
				return nil, err
			}
			if stmt != nil {
				appendVerbatim(prog, p.src[chunkStart:start])
				prog.Body = append(prog.Body, stmt)
				chunkStart = p.lastEnd()
				continue
			}
		}
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			if depth--; depth < 0 {
				return nil, p.errorf(t, "unexpected %q", t.text)
			}
		}
		p.pos++
	}
	if depth != 0 {
		return nil, p.errorf(p.cur(), "unbalanced brackets at end of module")
	}
	appendVerbatim(prog, p.src[chunkStart:])
	return prog, nil
}

func appendVerbatim(prog *Program, text string) {
	if text = strings.TrimSpace(text); text != "" {
		prog.Body = append(prog.Body, &Verbatim{Text: text})
	}
}

func (p *parser) afterDot() bool {
	prev := p.peek(-1)
	return prev.is(".") || prev.is("?.")
}

// parseModuleItem parses an import or export declaration at p.pos. It
// returns a nil statement, leaving p.pos untouched, for constructs that only
// look like one (dynamic import, import.meta, type-only declarations).
func (p *parser) parseModuleItem() (Statement, error) {
	save := p.pos
	var (
		stmt Statement
		err  error
	)
	if p.cur().word("import") {
		stmt, err = p.parseImport()
	} else {
		stmt, err = p.parseExport()
	}
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		p.pos = save
	}
	return stmt, nil
}

func (p *parser) parseImport() (Statement, error) {
	p.pos++ // import
	next := p.cur()
	if next.is("(") || next.is(".") || next.kind == tokEOF {
		return nil, nil
	}
	if (next.word("type") || next.word("typeof")) && !isFromClause(p.peek(1), p.peek(2)) && !p.peek(1).is(",") {
		return nil, nil
	}

	decl := &ImportDeclaration{}
	if next.kind == tokString {
		decl.Source = p.stringLiteral()
		return p.finishImport(decl)
	}

	if next.kind == tokWord {
		decl.Specifiers = append(decl.Specifiers, &ImportDefaultSpecifier{Local: NewIdentifier(next.text)})
		p.pos++
		if !p.cur().is(",") {
			return p.expectFrom(decl)
		}
		p.pos++
	}

	switch t := p.cur(); {
	case t.is("*"):
		p.pos++
		if !p.cur().word("as") {
			return nil, p.errorf(p.cur(), "expected \"as\" after \"*\" in import")
		}
		p.pos++
		local := p.cur()
		if local.kind != tokWord {
			return nil, p.errorf(local, "expected namespace name")
		}
		p.pos++
		decl.Specifiers = append(decl.Specifiers, &ImportNamespaceSpecifier{Local: NewIdentifier(local.text)})
	case t.is("{"):
		specs, err := p.importSpecifiers()
		if err != nil {
			return nil, err
		}
		decl.Specifiers = append(decl.Specifiers, specs...)
	default:
		return nil, p.errorf(t, "unexpected %q in import declaration", t.text)
	}
	return p.expectFrom(decl)
}

func isFromClause(a, b token) bool {
	return a.word("from") && b.kind == tokString
}

func (p *parser) importSpecifiers() ([]Node, error) {
	p.pos++ // {
	var specs []Node
	for !p.cur().is("}") {
		if p.eof() {
			return nil, p.errorf(p.cur(), "unterminated import specifier list")
		}
		if p.cur().word("type") && p.peek(1).kind == tokWord && !p.peek(1).word("as") {
			// inline type-only specifier
			p.pos += 2
			if p.cur().word("as") {
				p.pos += 2
			}
		} else {
			imported, err := p.moduleExportName()
			if err != nil {
				return nil, err
			}
			var local *Identifier
			if p.cur().word("as") {
				p.pos++
				t := p.cur()
				if t.kind != tokWord {
					return nil, p.errorf(t, "expected local name after \"as\"")
				}
				local = NewIdentifier(t.text)
				p.pos++
			} else {
				id, ok := imported.(*Identifier)
				if !ok {
					return nil, p.errorf(p.cur(), "string import names require an \"as\" clause")
				}
				local = NewIdentifier(id.Name)
			}
			specs = append(specs, &ImportSpecifier{Imported: imported, Local: local})
		}
		if p.cur().is(",") {
			p.pos++
		} else if !p.cur().is("}") {
			return nil, p.errorf(p.cur(), "expected \",\" or \"}\" in import specifiers")
		}
	}
	p.pos++ // }
	return specs, nil
}

func (p *parser) expectFrom(decl *ImportDeclaration) (Statement, error) {
	if !p.cur().word("from") {
		return nil, p.errorf(p.cur(), "expected \"from\" in import declaration")
	}
	p.pos++
	if p.cur().kind != tokString {
		return nil, p.errorf(p.cur(), "expected module specifier string")
	}
	decl.Source = p.stringLiteral()
	return p.finishImport(decl)
}

func (p *parser) finishImport(decl *ImportDeclaration) (Statement, error) {
	attrs, err := p.attributes()
	if err != nil {
		return nil, err
	}
	decl.Attributes = attrs
	p.semicolon()
	return decl, nil
}

// attributes consumes an optional `with {...}` or `assert {...}` clause.
func (p *parser) attributes() (string, error) {
	t := p.cur()
	if (t.word("with") || t.word("assert")) && p.peek(1).is("{") && !t.newline {
		start := t.start
		p.pos++
		if err := p.skipGroup(); err != nil {
			return "", err
		}
		return p.src[start:p.lastEnd()], nil
	}
	return "", nil
}

func (p *parser) semicolon() {
	if p.cur().is(";") {
		p.pos++
	}
}

func (p *parser) parseExport() (Statement, error) {
	p.pos++ // export
	t := p.cur()

	switch {
	case t.is("*"):
		p.pos++
		if p.cur().word("as") {
			p.pos++
			exported, err := p.moduleExportName()
			if err != nil {
				return nil, err
			}
			src, err := p.fromSource()
			if err != nil {
				return nil, err
			}
			p.semicolon()
			return &ExportNamedDeclaration{
				Specifiers: []Node{&ExportNamespaceSpecifier{Exported: exported}},
				Source:     src,
			}, nil
		}
		src, err := p.fromSource()
		if err != nil {
			return nil, err
		}
		p.semicolon()
		return &ExportAllDeclaration{Source: src}, nil

	case t.is("{"):
		specs, err := p.exportSpecifiers()
		if err != nil {
			return nil, err
		}
		decl := &ExportNamedDeclaration{Specifiers: specs}
		if p.cur().word("from") {
			if decl.Source, err = p.fromSource(); err != nil {
				return nil, err
			}
		}
		p.semicolon()
		return decl, nil

	case t.word("default"):
		p.pos++
		return p.parseExportDefault()

	case t.word("var"), t.word("let"), t.word("const"):
		decl, err := p.variableDeclaration()
		if err != nil {
			return nil, err
		}
		return &ExportNamedDeclaration{Declaration: decl}, nil

	case t.word("function"), t.word("async") && p.peek(1).word("function"):
		fn, err := p.functionDeclaration(true)
		if err != nil {
			return nil, err
		}
		return &ExportNamedDeclaration{Declaration: fn}, nil

	case t.word("class"):
		cls, err := p.classDeclaration(true)
		if err != nil {
			return nil, err
		}
		return &ExportNamedDeclaration{Declaration: cls}, nil

	case t.word("type"), t.word("interface"), t.word("declare"), t.word("enum"),
		t.word("abstract"), t.word("namespace"), t.word("module"), t.word("import"),
		t.word("as"), t.is("="), t.word("opaque"):
		// type-level syntax is left for the syntax stage
		return nil, nil
	}
	return nil, p.errorf(t, "unexpected %q after export", t.text)
}

func (p *parser) parseExportDefault() (Statement, error) {
	t := p.cur()
	switch {
	case t.word("function"), t.word("async") && p.peek(1).word("function") && !p.peek(1).newline:
		fn, err := p.functionDeclaration(false)
		if err != nil {
			return nil, err
		}
		return &ExportDefaultDeclaration{Declaration: fn}, nil
	case t.word("class"):
		cls, err := p.classDeclaration(false)
		if err != nil {
			return nil, err
		}
		return &ExportDefaultDeclaration{Declaration: cls}, nil
	case t.kind == tokEOF:
		return nil, p.errorf(t, "expected expression after export default")
	}
	start, end := p.scanExpression(false)
	p.semicolon()
	return &ExportDefaultDeclaration{Declaration: &RawExpression{Text: p.src[start:end]}}, nil
}

func (p *parser) exportSpecifiers() ([]Node, error) {
	p.pos++ // {
	var specs []Node
	for !p.cur().is("}") {
		if p.eof() {
			return nil, p.errorf(p.cur(), "unterminated export specifier list")
		}
		if p.cur().word("type") && p.peek(1).kind == tokWord && !p.peek(1).word("as") {
			p.pos += 2
			if p.cur().word("as") {
				p.pos += 2
			}
		} else {
			local, err := p.moduleExportName()
			if err != nil {
				return nil, err
			}
			exported := cloneName(local)
			if p.cur().word("as") {
				p.pos++
				if exported, err = p.moduleExportName(); err != nil {
					return nil, err
				}
			}
			specs = append(specs, &ExportSpecifier{Local: local, Exported: exported})
		}
		if p.cur().is(",") {
			p.pos++
		} else if !p.cur().is("}") {
			return nil, p.errorf(p.cur(), "expected \",\" or \"}\" in export specifiers")
		}
	}
	p.pos++ // }
	return specs, nil
}

func cloneName(n Node) Node {
	switch n := n.(type) {
	case *Identifier:
		return NewIdentifier(n.Name)
	case *StringLiteral:
		return &StringLiteral{Value: n.Value, Raw: n.Raw}
	}
	return nil
}

func (p *parser) fromSource() (*StringLiteral, error) {
	if !p.cur().word("from") {
		return nil, p.errorf(p.cur(), "expected \"from\"")
	}
	p.pos++
	if p.cur().kind != tokString {
		return nil, p.errorf(p.cur(), "expected module specifier string")
	}
	src := p.stringLiteral()
	if _, err := p.attributes(); err != nil {
		return nil, err
	}
	return src, nil
}

func (p *parser) moduleExportName() (Node, error) {
	t := p.cur()
	switch t.kind {
	case tokWord:
		p.pos++
		return NewIdentifier(t.text), nil
	case tokString:
		return p.stringLiteral(), nil
	}
	return nil, p.errorf(t, "expected name, got %q", t.text)
}

func (p *parser) stringLiteral() *StringLiteral {
	t := p.cur()
	p.pos++
	return &StringLiteral{Value: unquote(t.text), Raw: t.text}
}

func (p *parser) variableDeclaration() (*VariableDeclaration, error) {
	decl := &VariableDeclaration{Kind: p.cur().text}
	p.pos++
	for {
		t := p.cur()
		d := &VariableDeclarator{}
		switch {
		case t.kind == tokWord:
			d.ID = NewIdentifier(t.text)
			p.pos++
		case t.is("{"), t.is("["):
			names, err := p.bindingNames()
			if err != nil {
				return nil, err
			}
			d.ID = &Pattern{Text: p.src[t.start:p.lastEnd()], Names: names}
		default:
			return nil, p.errorf(t, "expected binding in %s declaration", decl.Kind)
		}
		if p.cur().is("=") {
			p.pos++
			if p.eof() {
				return nil, p.errorf(p.cur(), "expected initializer")
			}
			start, end := p.scanExpression(true)
			d.Init = &RawExpression{Text: p.src[start:end]}
		}
		decl.Declarations = append(decl.Declarations, d)
		if !p.cur().is(",") {
			break
		}
		p.pos++
	}
	p.semicolon()
	return decl, nil
}

// bindingNames consumes a binding target and returns the names it binds.
func (p *parser) bindingNames() ([]string, error) {
	t := p.cur()
	switch {
	case t.kind == tokWord:
		p.pos++
		return []string{t.text}, nil
	case t.is("{"):
		return p.objectPatternNames()
	case t.is("["):
		return p.arrayPatternNames()
	}
	return nil, p.errorf(t, "unexpected %q in binding pattern", t.text)
}

func (p *parser) objectPatternNames() ([]string, error) {
	p.pos++ // {
	var names []string
	for !p.cur().is("}") {
		if p.eof() {
			return nil, p.errorf(p.cur(), "unterminated object pattern")
		}
		if p.cur().is("...") {
			p.pos++
			rest, err := p.bindingNames()
			if err != nil {
				return nil, err
			}
			names = append(names, rest...)
		} else {
			key := p.cur()
			computed := key.is("[")
			if computed {
				if err := p.skipGroup(); err != nil {
					return nil, err
				}
			} else {
				p.pos++
			}
			switch {
			case p.cur().is(":"):
				p.pos++
				inner, err := p.bindingNames()
				if err != nil {
					return nil, err
				}
				names = append(names, inner...)
			case !computed && key.kind == tokWord:
				names = append(names, key.text)
			default:
				return nil, p.errorf(key, "invalid object pattern property")
			}
			if p.cur().is("=") {
				p.pos++
				if err := p.skipDefault(); err != nil {
					return nil, err
				}
			}
		}
		if p.cur().is(",") {
			p.pos++
		}
	}
	p.pos++ // }
	return names, nil
}

func (p *parser) arrayPatternNames() ([]string, error) {
	p.pos++ // [
	var names []string
	for !p.cur().is("]") {
		if p.eof() {
			return nil, p.errorf(p.cur(), "unterminated array pattern")
		}
		if p.cur().is(",") {
			p.pos++
			continue
		}
		if p.cur().is("...") {
			p.pos++
		}
		inner, err := p.bindingNames()
		if err != nil {
			return nil, err
		}
		names = append(names, inner...)
		if p.cur().is("=") {
			p.pos++
			if err := p.skipDefault(); err != nil {
				return nil, err
			}
		}
		if p.cur().is(",") {
			p.pos++
		}
	}
	p.pos++ // ]
	return names, nil
}

// skipDefault consumes a default value inside a pattern, stopping before the
// next "," or the enclosing closer.
func (p *parser) skipDefault() error {
	for !p.eof() {
		t := p.cur()
		if t.is(",") || isCloser(t) {
			return nil
		}
		if isOpener(t) {
			if err := p.skipGroup(); err != nil {
				return err
			}
			continue
		}
		p.pos++
	}
	return p.errorf(p.cur(), "unexpected end of input in pattern default")
}

func (p *parser) functionDeclaration(requireName bool) (*FunctionDeclaration, error) {
	fn := &FunctionDeclaration{Keyword: "function"}
	if p.cur().word("async") {
		fn.Keyword = "async function"
		p.pos++
	}
	p.pos++ // function
	if p.cur().is("*") {
		fn.Keyword += "*"
		p.pos++
	}
	if t := p.cur(); t.kind == tokWord {
		fn.ID = NewIdentifier(t.text)
		p.pos++
	} else if requireName {
		return nil, p.errorf(t, "function declaration requires a name")
	}

	restStart := p.cur().start
	if err := p.skipUntil("("); err != nil {
		return nil, err
	}
	if err := p.skipGroup(); err != nil {
		return nil, err
	}
	if err := p.skipUntil("{"); err != nil {
		return nil, err
	}
	if err := p.skipGroup(); err != nil {
		return nil, err
	}
	fn.Rest = p.src[restStart:p.lastEnd()]
	return fn, nil
}

func (p *parser) classDeclaration(requireName bool) (*ClassDeclaration, error) {
	p.pos++ // class
	cls := &ClassDeclaration{}
	if t := p.cur(); t.kind == tokWord && !t.word("extends") && !t.word("implements") {
		cls.ID = NewIdentifier(t.text)
		p.pos++
	} else if requireName {
		return nil, p.errorf(t, "class declaration requires a name")
	}

	restStart := p.cur().start
	if err := p.skipUntil("{"); err != nil {
		return nil, err
	}
	if err := p.skipGroup(); err != nil {
		return nil, err
	}
	cls.Rest = p.src[restStart:p.lastEnd()]
	return cls, nil
}

// skipUntil advances to the next top-level occurrence of punct, skipping
// balanced groups on the way.
func (p *parser) skipUntil(punct string) error {
	for !p.eof() {
		t := p.cur()
		if t.is(punct) {
			return nil
		}
		if isOpener(t) {
			if err := p.skipGroup(); err != nil {
				return err
			}
			continue
		}
		p.pos++
	}
	return p.errorf(p.cur(), "expected %q", punct)
}

// skipGroup consumes a balanced bracket group starting at p.pos.
func (p *parser) skipGroup() error {
	open := p.cur()
	depth := 0
	for !p.eof() {
		t := p.cur()
		p.pos++
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return p.errorf(open, "unbalanced %q", open.text)
}

// scanExpression consumes an expression and returns its source range. It
// stops before a top-level ";" (or "," when stopAtComma is set) and applies
// automatic semicolon insertion at line breaks.
func (p *parser) scanExpression(stopAtComma bool) (start, end int) {
	first := p.pos
	depth := 0
	for !p.eof() {
		t := p.cur()
		if depth == 0 && p.pos > first {
			if t.is(";") || (stopAtComma && t.is(",")) {
				break
			}
			if t.newline && endsExpression(p.peek(-1)) && !continuesExpression(t) {
				break
			}
		}
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			if depth == 0 {
				return p.toks[first].start, p.lastEnd()
			}
			depth--
		}
		p.pos++
	}
	if p.pos == first {
		return p.cur().start, p.cur().start
	}
	return p.toks[first].start, p.lastEnd()
}

func isOpener(t token) bool {
	return t.kind == tokPunct && (t.text == "(" || t.text == "[" || t.text == "{")
}

func isCloser(t token) bool {
	return t.kind == tokPunct && (t.text == ")" || t.text == "]" || t.text == "}")
}

func endsExpression(t token) bool {
	switch t.kind {
	case tokWord:
		return !regexpAfterWord[t.text]
	case tokNumber, tokString, tokRegExp:
		return true
	case tokTemplate:
		return !strings.HasSuffix(t.text, "${")
	case tokPunct:
		switch t.text {
		case ")", "]", "}", "++", "--":
			return true
		}
	}
	return false
}

var continuationPunct = map[string]bool{
	".": true, "?.": true, ",": true, "?": true, ":": true, "=": true, "=>": true,
	"==": true, "===": true, "!=": true, "!==": true,
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"&&": true, "||": true, "??": true, "&": true, "|": true, "^": true,
	"<": true, ">": true, "<=": true, ">=": true, "<<": true, ">>": true, ">>>": true,
	"(": true, "[": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "**=": true,
	"&&=": true, "||=": true, "??=": true, "&=": true, "|=": true, "^=": true,
	"<<=": true, ">>=": true, ">>>=": true,
}

func continuesExpression(t token) bool {
	switch t.kind {
	case tokPunct:
		return continuationPunct[t.text]
	case tokWord:
		return t.text == "in" || t.text == "instanceof"
	case tokTemplate:
		return strings.HasPrefix(t.text, "`")
	}
	return false
}

// unquote decodes a JavaScript string literal including its quotes.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case 'x':
			if i+2 < len(body) {
				if v, err := strconv.ParseUint(body[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(v))
					i += 2
					continue
				}
			}
			b.WriteByte(e)
		case 'u':
			hex := ""
			switch {
			case i+1 < len(body) && body[i+1] == '{':
				if j := strings.IndexByte(body[i:], '}'); j > 0 {
					hex = body[i+2 : i+j]
					i += j
				}
			case i+4 < len(body):
				hex = body[i+1 : i+5]
				i += 4
			}
			if v, err := strconv.ParseUint(hex, 16, 32); err == nil && utf8.ValidRune(rune(v)) {
				b.WriteRune(rune(v))
			}
		default:
			b.WriteByte(e)
		}
	}
	return b.String()
}
