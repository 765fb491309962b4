package matcher

import (
	"regexp"
	"strings"
)

// DefaultFolders is the dependency folder list used when none is configured.
var DefaultFolders = []string{"node_modules"}

// knownCommunityModuleIDs are package-name prefixes of community packages
// known to ship untranspiled source.
var knownCommunityModuleIDs = []string{
	"react-native",
	"@react-native",
	"@react-native-community",
	"expo",
	"@expo",
	"@expo-google-fonts",
	"react-navigation",
	"@react-navigation",
	"@unimodules",
	"unimodules",
	"sentry-expo",
	"native-base",
	"@sentry/react-native",
}

// reactNativePackage is the framework's own package name.
const reactNativePackage = "react-native"

// firstPartyPrefixes are the package-name prefixes of first-party SDK packages.
var firstPartyPrefixes = []string{"expo-", "@expo/", "@unimodules/"}

// Option configures module matchers.
type Option func(*options)

type options struct {
	folders   []string
	moduleIDs []string
}

// WithFolders sets the dependency folder names (default "node_modules").
func WithFolders(folders ...string) Option {
	return func(o *options) {
		if len(folders) > 0 {
			o.folders = folders
		}
	}
}

// WithModuleIDs adds package-name prefixes to a matcher's allow-list.
func WithModuleIDs(ids ...string) Option {
	return func(o *options) {
		o.moduleIDs = append(o.moduleIDs, ids...)
	}
}

func resolveOptions(opts []Option) options {
	o := options{folders: DefaultFolders}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CreateModuleMatcher matches paths that contain one of folders followed by a
// package name starting with one of moduleIDs. The folder may appear at any
// depth so nested monorepo installs are covered.
func CreateModuleMatcher(folders, moduleIDs []string) PathMatcher {
	if len(folders) == 0 {
		folders = DefaultFolders
	}
	if len(moduleIDs) == 0 {
		return Never()
	}
	return MustRegexp("(?:^|/)(?:" + alternation(folders) + ")/(?:" + alternation(moduleIDs) + ")")
}

// CreateKnownCommunityMatcher matches packages from the known community
// allow-list, plus any ids added with WithModuleIDs.
func CreateKnownCommunityMatcher(opts ...Option) PathMatcher {
	o := resolveOptions(opts)
	ids := append(o.moduleIDs[:len(o.moduleIDs):len(o.moduleIDs)], knownCommunityModuleIDs...)
	return CreateModuleMatcher(o.folders, ids)
}

// CreateReactNativeMatcher matches files whose innermost package is
// react-native itself. Dependencies nested below react-native do not match.
func CreateReactNativeMatcher(opts ...Option) PathMatcher {
	o := resolveOptions(opts)
	return packageMatcher("react-native package", o.folders, func(pkg string) bool {
		return pkg == reactNativePackage
	})
}

// CreateExpoMatcher matches files whose innermost package is a first-party
// SDK package.
func CreateExpoMatcher(opts ...Option) PathMatcher {
	o := resolveOptions(opts)
	return packageMatcher("first-party package", o.folders, func(pkg string) bool {
		if pkg == "expo" {
			return true
		}
		for _, p := range firstPartyPrefixes {
			if strings.HasPrefix(pkg, p) {
				return true
			}
		}
		return false
	})
}

func packageMatcher(name string, folders []string, pred func(pkg string) bool) PathMatcher {
	return Func{Name: name, Fn: func(path string) bool {
		pkg, ok := PackageName(path, folders)
		return ok && pred(pkg)
	}}
}

// CreateNodeModulesMatcher matches any path inside one of the dependency folders.
func CreateNodeModulesMatcher(opts ...Option) PathMatcher {
	o := resolveOptions(opts)
	return MustRegexp("(?:^|/)(?:" + alternation(o.folders) + ")/")
}

func alternation(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(strings.Trim(NormalizePath(p), "/"))
		if strings.HasSuffix(p, "/") {
			quoted[i] += "/"
		}
	}
	return strings.Join(quoted, "|")
}

// PackageName returns the name of the innermost package containing path,
// located after the last dependency folder segment. Scoped names are returned
// as "@scope/name". ok is false when path is not inside any folder.
func PackageName(path string, folders []string) (name string, ok bool) {
	if len(folders) == 0 {
		folders = DefaultFolders
	}
	p := NormalizePath(path)

	start := -1
	for _, f := range folders {
		f = strings.Trim(NormalizePath(f), "/")
		if f == "" {
			continue
		}
		if strings.HasPrefix(p, f+"/") && start < len(f)+1 {
			start = len(f) + 1
		}
		if idx := strings.LastIndex(p, "/"+f+"/"); idx >= 0 && idx+len(f)+2 > start {
			start = idx + len(f) + 2
		}
	}
	if start < 0 {
		return "", false
	}

	segments := strings.Split(p[start:], "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", false
	}
	if strings.HasPrefix(segments[0], "@") {
		if len(segments) < 2 || segments[1] == "" {
			return "", false
		}
		return segments[0] + "/" + segments[1], true
	}
	return segments[0], true
}
