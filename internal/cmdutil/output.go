package cmdutil

import (
	"errors"
	"fmt"
	"sort"

	"github.com/expo/metro-core/internal/config"
	"github.com/expo/metro-core/internal/loader"
	"github.com/expo/metro-core/internal/output"
	"github.com/expo/metro-core/internal/pipeline"
	"github.com/expo/metro-core/pkg/weights"
)

// PrintValidationErrors prints config validation failures one field per
// line. Other errors fall back to the key-value log format.
func PrintValidationErrors(path string, err error) {
	var errs config.ValidationErrors
	if !errors.As(err, &errs) {
		output.Error("config validation failed", "file", path, "error", err)
		return
	}
	output.Error("config validation failed", "file", path)
	for _, e := range errs {
		output.Details("  " + e.Error())
	}
}

// PrintFileErrors prints per-file pipeline failures with the failing rule
// and source location when known.
func PrintFileErrors(errs []error) {
	for _, err := range errs {
		var fe *pipeline.FileError
		if !errors.As(err, &fe) {
			output.Error(err.Error())
			continue
		}
		fileLog := output.FileLogger(fe.Path)
		var te *loader.TransformError
		if errors.As(fe.Err, &te) {
			fileLog.Error("transform failed", "rule", te.Rule, "at", te.Location(), "error", te.Cause)
			continue
		}
		fileLog.Error("transform failed", "error", fe.Err)
	}
}

// PrintFileResults prints one line per transformed file (verbose only) and
// a per-rule summary in rule priority order.
func PrintFileResults(result *pipeline.Result, verbose bool) {
	if verbose {
		for _, f := range result.Files {
			status := output.StatusTransformed
			if f.Cached {
				status = output.StatusCached
			}
			output.Println(output.FormatFileLine(f.Path, string(f.Rule), status))
		}
	}

	counts := result.Counts()
	rules := make([]loader.Name, 0, len(counts))
	for r := range counts {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	weights.Sort(rules, func(r loader.Name) string { return string(r) })

	for _, r := range rules {
		output.Info(fmt.Sprintf("%s %d", output.RuleStyle(string(r)).Render(string(r)), counts[r]))
	}
}
