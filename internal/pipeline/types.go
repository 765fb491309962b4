package pipeline

import (
	"github.com/expo/metro-core/internal/loader"
)

// SourceExtensions are the file extensions discovered under Options.Root.
var SourceExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// Options configures a batch run.
type Options struct {
	// Root is the project root. Files are resolved against it and, when
	// Files is empty, discovered below it.
	Root string
	// Files lists the files to transform. Paths may be relative to Root.
	Files []string
	// Concurrency bounds parallel transforms. Zero uses GOMAXPROCS.
	Concurrency int
	// OutDir receives transformed files, mirroring their path below Root.
	// Nothing is written when empty.
	OutDir string
	// IncludeDependencies descends into dependency folders during discovery.
	IncludeDependencies bool
	// Transform holds the per-file loader options.
	Transform loader.Options
}

// Validate checks the options before any work starts.
func (o Options) Validate() error {
	if o.Root == "" && len(o.Files) == 0 {
		return &OptionsError{Field: "root", Message: "a project root or a file list is required"}
	}
	if o.Concurrency < 0 {
		return &OptionsError{Field: "concurrency", Message: "must not be negative"}
	}
	return nil
}

// FileResult is one transformed file.
type FileResult struct {
	// Path is relative to Root when the file is below it.
	Path   string
	Rule   loader.Name
	Result *loader.Result
	// Cached reports that the result came from the transform cache.
	Cached bool
	// OutPath is where the code was written, if anywhere.
	OutPath string
}

// Result is the outcome of a run. Files and Errors are sorted by path.
type Result struct {
	Files  []FileResult
	Errors []error
}

// Counts returns the number of transformed files per rule.
func (r *Result) Counts() map[loader.Name]int {
	counts := make(map[loader.Name]int)
	for _, f := range r.Files {
		counts[f.Rule]++
	}
	return counts
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}
