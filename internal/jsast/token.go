package jsast

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokNumber
	tokPunct
	tokTemplate
	tokRegExp
)

// token is a significant lexeme with its byte range in the source.
type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
	// newline reports a line terminator between the previous token and this one.
	newline bool
	// slashStartsRegexp is set on ")" and "}" when a following slash begins
	// a regular expression: the ")" closing an if/for/while/with head, or
	// the "}" closing a block.
	slashStartsRegexp bool
	// block is set on "{" when it opens a block rather than an object literal.
	block bool
}

func (t token) is(text string) bool {
	return t.kind == tokPunct && t.text == text
}

func (t token) word(text string) bool {
	return t.kind == tokWord && t.text == text
}

// keywords after which a slash starts a regular expression literal.
var regexpAfterWord = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// keywords whose parenthesized head is followed by a statement.
var statementHeads = map[string]bool{"if": true, "for": true, "while": true, "with": true}

// tokenize lexes src into significant tokens, dropping whitespace and
// comments while recording line breaks.
func tokenize(src string) ([]token, error) {
	l := js.NewLexer(parse.NewInputString(src))

	var (
		toks    []token
		offset  int
		newline bool
		// true entries mark statement heads and blocks
		parens []bool
		braces []bool
	)
	for {
		tt, data := l.Next()
		if tt == js.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, &SyntaxError{Offset: offset, Message: err.Error()}
			}
			break
		}

		text := string(data)
		if (tt == js.DivToken || tt == js.DivEqToken) && regexpAllowed(toks) {
			rt, rdata := l.RegExp()
			if rt == js.ErrorToken {
				return nil, &SyntaxError{Offset: offset, Message: "unterminated regular expression"}
			}
			re := string(rdata)
			if !strings.HasPrefix(re, "/") {
				re = text + re
			}
			tt, text = js.RegExpToken, re
		}

		start := offset
		offset += len(text)

		switch tt {
		case js.WhitespaceToken:
			continue
		case js.LineTerminatorToken, js.CommentLineTerminatorToken:
			newline = true
			continue
		case js.CommentToken:
			if strings.ContainsAny(text, "\n\r\u2028\u2029") {
				newline = true
			}
			continue
		}

		tok := token{
			kind:    classify(tt, text),
			text:    text,
			start:   start,
			end:     offset,
			newline: newline,
		}
		if tok.kind == tokPunct {
			switch text {
			case "(":
				parens = append(parens, len(toks) > 0 && toks[len(toks)-1].kind == tokWord && statementHeads[toks[len(toks)-1].text])
			case ")":
				if n := len(parens); n > 0 {
					tok.slashStartsRegexp = parens[n-1]
					parens = parens[:n-1]
				}
			case "{":
				tok.block = opensBlock(toks)
				braces = append(braces, tok.block)
			case "}":
				if n := len(braces); n > 0 {
					tok.slashStartsRegexp = braces[n-1]
					braces = braces[:n-1]
				}
			}
		}
		toks = append(toks, tok)
		newline = false
	}
	return toks, nil
}

func classify(tt js.TokenType, text string) tokenKind {
	switch tt {
	case js.StringToken:
		return tokString
	case js.RegExpToken:
		return tokRegExp
	case js.TemplateToken, js.TemplateStartToken, js.TemplateMiddleToken, js.TemplateEndToken:
		return tokTemplate
	}
	c := text[0]
	switch {
	case c >= '0' && c <= '9':
		return tokNumber
	case c == '.' && len(text) > 1 && text[1] >= '0' && text[1] <= '9':
		return tokNumber
	case isIdentStart(c):
		return tokWord
	default:
		return tokPunct
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c == '#' || c == '\\' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func regexpAllowed(toks []token) bool {
	if len(toks) == 0 {
		return true
	}
	prev := toks[len(toks)-1]
	switch prev.kind {
	case tokNumber, tokString, tokRegExp:
		return false
	case tokTemplate:
		return strings.HasSuffix(prev.text, "${")
	case tokWord:
		return regexpAfterWord[prev.text]
	default:
		switch prev.text {
		case ")", "}":
			return prev.slashStartsRegexp
		case "]", "++", "--":
			return false
		}
		return true
	}
}

// opensBlock guesses whether a "{" following toks starts a block rather
// than an object literal.
func opensBlock(toks []token) bool {
	if len(toks) == 0 {
		return true
	}
	prev := toks[len(toks)-1]
	switch prev.kind {
	case tokPunct:
		switch prev.text {
		case ";", "{", "}", ")", "=>":
			return true
		}
		return false
	case tokWord:
		switch prev.text {
		case "else", "do":
			return true
		case "var", "let", "const":
			return false
		}
		return !regexpAfterWord[prev.text]
	default:
		return false
	}
}

// SyntaxError reports source the parser cannot handle.
type SyntaxError struct {
	Offset  int
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return "syntax error at " + strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Column) + ": " + e.Message
	}
	return "syntax error: " + e.Message
}

// position converts a byte offset into a 1-based line and 0-based column.
func position(src string, offset int) (line, column int) {
	if offset > len(src) {
		offset = len(src)
	}
	line = 1 + strings.Count(src[:offset], "\n")
	column = offset - (strings.LastIndex(src[:offset], "\n") + 1)
	return line, column
}
