// Package transformer routes each source file to exactly one loader.
//
// The exotic transformer holds an ordered rule list built from the
// configured dependency folders and opt-in package list. Rules are tested in
// weight order and the first match wins; the passthrough rule matches every
// path so dispatch never fails. Only the selected loader can fail, and its
// error is returned tagged with the file path.
package transformer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/expo/metro-core/internal/loader"
	"github.com/expo/metro-core/internal/matcher"
	"github.com/expo/metro-core/internal/output"
	"github.com/expo/metro-core/pkg/weights"
)

// Rule pairs a path test with the loader that handles matching files.
type Rule struct {
	Name   loader.Name
	Test   matcher.PathMatcher
	Loader loader.Loader
	// Warn logs every file the rule handles.
	Warn bool
}

// Config configures the exotic transformer.
type Config struct {
	// NodeModulesPaths are the dependency folder names or paths. Defaults to
	// node_modules.
	NodeModulesPaths []string
	// TranspileModules are package names that are transformed as app code
	// even though they live in a dependency folder.
	TranspileModules []string
	// ProjectRoot resolves relative file names.
	ProjectRoot string
	// Loaders supplies the loader for each rule. Defaults to loader.Default().
	Loaders *loader.Registry
}

// Props is a single file handed to the transformer.
type Props struct {
	Filename string
	Source   string
	Options  loader.Options
}

// Classification explains which rule handles a file.
type Classification struct {
	Rule loader.Name
	// Package is the innermost package containing the file, empty for app code.
	Package string
	Reason  string
}

// Transformer dispatches files to loaders. It is safe for concurrent use.
type Transformer struct {
	folders          []string
	transpileModules map[string]bool
	projectRoot      string
	rules            []Rule
}

// CreateExoticTransformer builds the ordered rule list for cfg. Loaders are
// resolved from the registry once; construction fails only if the registry
// lacks one of the built-in loader names.
func CreateExoticTransformer(cfg Config) (*Transformer, error) {
	folders := cfg.NodeModulesPaths
	if len(folders) == 0 {
		folders = matcher.DefaultFolders
	}
	registry := cfg.Loaders
	if registry == nil {
		registry = loader.Default()
	}

	t := &Transformer{
		folders:          folders,
		transpileModules: make(map[string]bool, len(cfg.TranspileModules)),
		projectRoot:      cfg.ProjectRoot,
	}
	for _, m := range cfg.TranspileModules {
		t.transpileModules[strings.TrimSpace(m)] = true
	}

	tests := map[loader.Name]matcher.PathMatcher{
		loader.App:                matcher.Func{Name: "app", Fn: t.isApp},
		loader.ReactNativeModule:  matcher.CreateReactNativeMatcher(matcher.WithFolders(folders...)),
		loader.ExpoModule:         matcher.CreateExpoMatcher(matcher.WithFolders(folders...)),
		loader.UntranspiledModule: matcher.CreateKnownCommunityMatcher(matcher.WithFolders(folders...)),
		loader.PassthroughModule:  matcher.Always(),
	}

	for name, test := range tests {
		l, err := registry.Get(name)
		if err != nil {
			return nil, fmt.Errorf("building %s rule: %w", name, err)
		}
		t.rules = append(t.rules, Rule{
			Name:   name,
			Test:   test,
			Loader: l,
			Warn:   name == loader.UntranspiledModule,
		})
	}
	weights.Sort(t.rules, func(r Rule) string { return string(r.Name) })
	return t, nil
}

// Rules returns the rules in dispatch order.
func (t *Transformer) Rules() []Rule {
	return slices.Clone(t.rules)
}

// Classify returns the rule that handles filename without transforming it.
func (t *Transformer) Classify(filename string) Classification {
	_, c := t.match(t.resolve(filename))
	return c
}

// Transform runs the loader selected for props.Filename.
func (t *Transformer) Transform(ctx context.Context, props Props) (*loader.Result, error) {
	path := t.resolve(props.Filename)
	rule, c := t.match(path)

	if rule.Warn {
		output.Debug("transforming dependency source", "file", props.Filename, "rule", rule.Name, "package", c.Package)
	}

	res, err := rule.Loader.Transform(ctx, loader.Input{
		Filename: props.Filename,
		Source:   props.Source,
		Options:  props.Options,
	})
	if err != nil {
		var te *loader.TransformError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, &loader.TransformError{Filename: props.Filename, Rule: rule.Name, Cause: err}
	}
	return res, nil
}

func (t *Transformer) match(path string) (Rule, Classification) {
	pkg, _ := matcher.PackageName(path, t.folders)
	for _, r := range t.rules {
		if r.Test.Test(path) {
			return r, Classification{Rule: r.Name, Package: pkg, Reason: t.reason(r, pkg)}
		}
	}
	// unreachable while the passthrough rule matches everything
	last := t.rules[len(t.rules)-1]
	return last, Classification{Rule: last.Name, Package: pkg, Reason: "no rule matched"}
}

func (t *Transformer) reason(r Rule, pkg string) string {
	switch r.Name {
	case loader.App:
		if pkg != "" {
			return fmt.Sprintf("%s is listed in transpile modules", pkg)
		}
		return "outside dependency folders"
	case loader.PassthroughModule:
		return "prebuilt dependency"
	default:
		return "matched " + r.Test.String()
	}
}

func (t *Transformer) resolve(filename string) string {
	if t.projectRoot != "" && !filepath.IsAbs(filename) {
		filename = filepath.Join(t.projectRoot, filename)
	}
	return matcher.NormalizePath(filename)
}

func (t *Transformer) isApp(path string) bool {
	pkg, inside := matcher.PackageName(path, t.folders)
	return !inside || t.transpileModules[pkg]
}
