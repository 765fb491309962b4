package symbolicate

import (
	"path/filepath"
	"strconv"
	"strings"
)

// FormatProjectFilePath renders file relative to projectRoot with forward
// slashes and without a bundler query string. An empty file renders as
// "<unknown>".
func FormatProjectFilePath(projectRoot, file string) string {
	if file == "" {
		return "<unknown>"
	}
	if file == "<anonymous>" {
		return file
	}

	file = strings.ReplaceAll(file, `\`, "/")
	if i := strings.IndexByte(file, '?'); i >= 0 {
		file = file[:i]
	}
	root := strings.TrimSuffix(strings.ReplaceAll(projectRoot, `\`, "/"), "/")
	if root == "" || strings.Contains(file, "://") {
		return file
	}
	rel, err := filepath.Rel(filepath.FromSlash(root), filepath.FromSlash(file))
	if err != nil {
		return file
	}
	return filepath.ToSlash(rel)
}

// GetStackFormattedLocation renders path[:line[:column]] with a 1-based
// column. Unknown parts are left out so the result never ends in a colon.
func GetStackFormattedLocation(projectRoot string, frame StackFrame) string {
	loc := FormatProjectFilePath(projectRoot, frame.File)
	if frame.LineNumber == nil {
		return loc
	}
	loc += ":" + strconv.Itoa(*frame.LineNumber)
	if frame.Column != nil && *frame.Column >= 0 {
		loc += ":" + strconv.Itoa(*frame.Column+1)
	}
	return loc
}
