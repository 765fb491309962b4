// Package matcher builds path-classification predicates used to route source
// files to transform rules.
//
// Every matcher is a pure function of the path string it is given. Matchers
// are built once per configuration and shared by all transform workers.
package matcher

import (
	"regexp"
	"strings"
)

// PathMatcher is a predicate over a normalized file path.
type PathMatcher interface {
	// Test reports whether the path matches.
	Test(path string) bool

	// String describes the matcher for verbose output and debugging.
	String() string
}

// RegexpMatcher matches paths against a compiled regular expression.
type RegexpMatcher struct {
	re *regexp.Regexp
}

// MustRegexp compiles pattern into a RegexpMatcher and panics if it is
// invalid. Only use it with patterns built from escaped, trusted fragments.
func MustRegexp(pattern string) *RegexpMatcher {
	return &RegexpMatcher{re: regexp.MustCompile(pattern)}
}

// Test implements PathMatcher.
func (m *RegexpMatcher) Test(path string) bool {
	return m.re.MatchString(NormalizePath(path))
}

// String returns the underlying pattern.
func (m *RegexpMatcher) String() string {
	return m.re.String()
}

// Regexp exposes the compiled expression.
func (m *RegexpMatcher) Regexp() *regexp.Regexp {
	return m.re
}

// Func adapts a plain function into a PathMatcher.
type Func struct {
	Name string
	Fn   func(path string) bool
}

// Test implements PathMatcher.
func (f Func) Test(path string) bool {
	return f.Fn(NormalizePath(path))
}

func (f Func) String() string {
	if f.Name == "" {
		return "func"
	}
	return f.Name
}

type constMatcher bool

func (c constMatcher) Test(string) bool { return bool(c) }

func (c constMatcher) String() string {
	if c {
		return "always"
	}
	return "never"
}

// Always returns a matcher that accepts every path.
func Always() PathMatcher { return constMatcher(true) }

// Never returns a matcher that rejects every path.
func Never() PathMatcher { return constMatcher(false) }

type andMatcher []PathMatcher

func (a andMatcher) Test(path string) bool {
	for _, m := range a {
		if !m.Test(path) {
			return false
		}
	}
	return true
}

func (a andMatcher) String() string { return join("and", a) }

type orMatcher []PathMatcher

func (o orMatcher) Test(path string) bool {
	for _, m := range o {
		if m.Test(path) {
			return true
		}
	}
	return false
}

func (o orMatcher) String() string { return join("or", o) }

type notMatcher struct{ inner PathMatcher }

func (n notMatcher) Test(path string) bool { return !n.inner.Test(path) }

func (n notMatcher) String() string { return "not(" + n.inner.String() + ")" }

// And matches when every matcher matches. An empty And matches everything.
func And(matchers ...PathMatcher) PathMatcher { return andMatcher(matchers) }

// Or matches when any matcher matches. An empty Or matches nothing.
func Or(matchers ...PathMatcher) PathMatcher { return orMatcher(matchers) }

// Not inverts a matcher.
func Not(m PathMatcher) PathMatcher { return notMatcher{inner: m} }

func join(op string, matchers []PathMatcher) string {
	parts := make([]string, len(matchers))
	for i, m := range matchers {
		parts[i] = m.String()
	}
	return op + "(" + strings.Join(parts, ", ") + ")"
}

// NormalizePath converts Windows separators to forward slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
