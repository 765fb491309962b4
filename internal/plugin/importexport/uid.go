package importexport

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// uidScope hands out temporary names of the form _name, _name2, _name3
// that collide with nothing already present in the module.
type uidScope struct {
	taken map[string]bool
}

func newUIDScope(taken map[string]bool) *uidScope {
	if taken == nil {
		taken = map[string]bool{}
	}
	return &uidScope{taken: taken}
}

var trailingDigits = regexp.MustCompile(`\d+$`)

func (u *uidScope) generate(name string) string {
	name = strings.TrimLeft(toIdentifier(name), "_")
	name = trailingDigits.ReplaceAllString(name, "")
	for i := 1; ; i++ {
		id := "_" + name
		if i > 1 {
			id += strconv.Itoa(i)
		}
		if !u.taken[id] {
			u.taken[id] = true
			return id
		}
	}
}

// generateBasedOnString derives a name from a string literal's value.
func (u *uidScope) generateBasedOnString(value string) string {
	id := strings.TrimPrefix(value, "_")
	if id == "" {
		id = "ref"
	}
	if runes := []rune(id); len(runes) > 20 {
		id = string(runes[:20])
	}
	return u.generate(id)
}

// sanitizeFileName replaces everything but ASCII letters and digits with "_".
func sanitizeFileName(file string) string {
	return nonAlnum.ReplaceAllString(file, "_")
}

var (
	nonAlnum         = regexp.MustCompile(`[^a-zA-Z0-9]`)
	leadingDashDigit = regexp.MustCompile(`^[-0-9]+`)
	dashRun          = regexp.MustCompile(`[-\s]+(.)?`)
)

// toIdentifier turns arbitrary text into a camel-cased identifier.
func toIdentifier(input string) string {
	var b strings.Builder
	for _, r := range input {
		if isIdentChar(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	name := leadingDashDigit.ReplaceAllString(b.String(), "")
	name = dashRun.ReplaceAllStringFunc(name, func(m string) string {
		rest := strings.TrimLeftFunc(m, func(r rune) bool { return r == '-' || unicode.IsSpace(r) })
		return strings.ToUpper(rest)
	})
	if !isValidIdentifier(name) {
		name = "_" + name
	}
	return name
}

func isIdentChar(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isValidIdentifier(name string) bool {
	if name == "" || reservedWords[name] {
		return false
	}
	for i, r := range name {
		if !isIdentChar(r) || (i == 0 && unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "continue": true, "debugger": true,
	"default": true, "do": true, "else": true, "finally": true, "for": true,
	"function": true, "if": true, "return": true, "switch": true, "throw": true,
	"try": true, "var": true, "const": true, "while": true, "with": true,
	"new": true, "this": true, "super": true, "class": true, "extends": true,
	"export": true, "import": true, "null": true, "true": true, "false": true,
	"in": true, "instanceof": true, "typeof": true, "void": true, "delete": true,
	"implements": true, "interface": true, "let": true, "package": true,
	"private": true, "protected": true, "public": true, "static": true,
	"yield": true, "await": true, "enum": true,
}
