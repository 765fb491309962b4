// Package pipeline transforms many files at once through the exotic
// transformer.
//
// A run discovers or receives a file list, transforms every file on a
// bounded worker pool and collects per-file failures without stopping.
// Results are cached by content, so unchanged files are not transformed
// again by a later run on the same Pipeline.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/loader"
	"github.com/expo/metro-core/internal/matcher"
	"github.com/expo/metro-core/internal/output"
	"github.com/expo/metro-core/internal/transformer"
)

// DefaultCacheSize bounds the number of cached transform results.
const DefaultCacheSize = 4096

// Pipeline runs batches of transforms. It is safe for concurrent use.
type Pipeline struct {
	transformer *transformer.Transformer
	folders     []string
	cache       *lru.Cache[string, *loader.Result]
}

// New returns a Pipeline dispatching through t. folders are the dependency
// folder names skipped during discovery.
func New(t *transformer.Transformer, folders []string, cacheSize int) (*Pipeline, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *loader.Result](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating transform cache: %w", err)
	}
	if len(folders) == 0 {
		folders = matcher.DefaultFolders
	}
	return &Pipeline{transformer: t, folders: folders, cache: cache}, nil
}

// Run transforms the files selected by opts.
//
// Phase sequence:
//  1. DISCOVER:  explicit Files, or a walk of Root
//  2. TRANSFORM: classify and transform on an errgroup-limited pool
//  3. WRITE:     optional output under OutDir
//
// Invalid options, discovery failures and cancellation return (nil, err).
// Per-file failures land in Result.Errors.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Phase 1: DISCOVER
	files := opts.Files
	if len(files) == 0 {
		var err error
		if files, err = p.discover(opts); err != nil {
			return nil, err
		}
	}
	output.Debug("transforming files", "count", len(files), "root", opts.Root)

	// Phase 2 + 3: TRANSFORM and WRITE
	limit := opts.Concurrency
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var (
		mu     sync.Mutex
		result = &Result{Files: make([]FileResult, 0, len(files)), Errors: make([]error, 0)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr, err := p.runFile(gctx, file, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				result.Errors = append(result.Errors, &FileError{Path: fr.Path, Err: err})
				return nil
			}
			result.Files = append(result.Files, fr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].(*FileError).Path < result.Errors[j].(*FileError).Path
	})
	return result, nil
}

func (p *Pipeline) runFile(ctx context.Context, file string, opts Options) (FileResult, error) {
	abs := file
	if opts.Root != "" && !filepath.IsAbs(abs) {
		abs = filepath.Join(opts.Root, file)
	}
	fr := FileResult{Path: relPath(opts.Root, abs)}

	src, err := os.ReadFile(abs)
	if err != nil {
		return fr, fmt.Errorf("reading source: %w", err)
	}

	fr.Rule = p.transformer.Classify(abs).Rule
	key := cacheKey(abs, src, fr.Rule, opts.Transform)
	if cached, ok := p.cache.Get(key); ok {
		fr.Result, fr.Cached = cached, true
	} else {
		res, err := p.transformer.Transform(ctx, transformer.Props{
			Filename: abs,
			Source:   string(src),
			Options:  opts.Transform,
		})
		if err != nil {
			return fr, err
		}
		p.cache.Add(key, res)
		fr.Result = res
	}

	if opts.OutDir != "" {
		out, err := writeOutput(opts.OutDir, fr.Path, fr.Result)
		if err != nil {
			return fr, err
		}
		fr.OutPath = out
	}
	return fr, nil
}

func (p *Pipeline) discover(opts Options) ([]string, error) {
	skip := map[string]bool{".git": true}
	if !opts.IncludeDependencies {
		for _, f := range p.folders {
			skip[filepath.Base(filepath.FromSlash(f))] = true
		}
	}
	outDir, _ := filepath.Abs(opts.OutDir)

	var files []string
	err := filepath.WalkDir(opts.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != opts.Root && skip[d.Name()] {
				return filepath.SkipDir
			}
			if opts.OutDir != "" {
				if abs, _ := filepath.Abs(path); abs == outDir {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if slices.Contains(SourceExtensions, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering sources in %s: %w", opts.Root, err)
	}
	return files, nil
}

// writeOutput mirrors rel below outDir. Sources that are not already .js keep
// their extension so a.ts and a.js cannot overwrite each other.
func writeOutput(outDir, rel string, res *loader.Result) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("output path for %s escapes %s: %w", rel, outDir, oerrors.ErrValidation)
	}
	if filepath.Ext(local) != ".js" {
		local += ".js"
	}
	out := filepath.Join(outDir, local)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(res.Code), 0o644); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	if len(res.Map) > 0 {
		if err := os.WriteFile(out+".map", res.Map, 0o644); err != nil {
			return "", fmt.Errorf("writing source map: %w", err)
		}
	}
	return out, nil
}

func relPath(root, abs string) string {
	if root == "" {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func cacheKey(path string, src []byte, rule loader.Name, opts loader.Options) string {
	h := sha256.New()
	optsJSON, _ := json.Marshal(opts)
	for _, part := range [][]byte{[]byte(path), src, []byte(rule), optsJSON} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
