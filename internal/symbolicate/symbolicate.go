// Package symbolicate resolves JavaScript stack traces from a running app
// through the dev server's source maps.
//
// A Symbolicator caches results per *Stack. The cache entry is stored before
// the request completes, so every caller asking about the same Stack while
// the request is in flight waits on that one request. A failed request
// leaves no entry behind and the next call retries.
package symbolicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/output"
)

const (
	// OriginEnv overrides the dev server origin.
	OriginEnv = "EXPO_DEV_SERVER_ORIGIN"
	// DefaultOrigin is used when neither an option nor OriginEnv is set.
	DefaultOrigin = "http://localhost:8081"
	// DefaultCacheSize bounds the number of cached stacks.
	DefaultCacheSize = 128
)

// Options configures a Symbolicator.
type Options struct {
	// Origin is the dev server base URL.
	Origin string
	// Client sends requests. Its timeout bounds each request.
	Client *http.Client
	// CacheSize bounds the number of cached stacks.
	CacheSize int
}

type entry struct {
	done   chan struct{}
	result *SymbolicatedStackTrace
	err    error
}

// Symbolicator resolves stacks against a dev server. It is safe for
// concurrent use.
type Symbolicator struct {
	origin string
	client *http.Client

	mu    sync.Mutex
	cache *lru.Cache[*Stack, *entry]
}

// New returns a Symbolicator for opts.
func New(opts Options) (*Symbolicator, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[*Stack, *entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating symbolication cache: %w", err)
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Symbolicator{
		origin: ResolveOrigin(opts.Origin),
		client: client,
		cache:  cache,
	}, nil
}

// ResolveOrigin picks the dev server origin: the explicit value, then
// OriginEnv, then DefaultOrigin.
func ResolveOrigin(explicit string) string {
	for _, o := range []string{explicit, os.Getenv(OriginEnv)} {
		if o = strings.TrimSpace(o); o != "" {
			return strings.TrimSuffix(o, "/")
		}
	}
	return DefaultOrigin
}

// Origin returns the dev server origin in use.
func (s *Symbolicator) Origin() string { return s.origin }

// Symbolicate resolves stack. Concurrent calls with the same *Stack share a
// single request. The request is not cancelled when ctx is; ctx only bounds
// how long this caller waits.
func (s *Symbolicator) Symbolicate(ctx context.Context, stack *Stack) (*SymbolicatedStackTrace, error) {
	s.mu.Lock()
	e, ok := s.cache.Get(stack)
	if !ok {
		e = &entry{done: make(chan struct{})}
		s.cache.Add(stack, e)
		go s.resolve(context.WithoutCancel(ctx), stack, e)
	}
	s.mu.Unlock()

	select {
	case <-e.done:
		return e.result, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Symbolicator) resolve(ctx context.Context, stack *Stack, e *entry) {
	result, err := s.fetch(ctx, stack)
	if err != nil {
		s.mu.Lock()
		if cur, ok := s.cache.Peek(stack); ok && cur == e {
			s.cache.Remove(stack)
		}
		s.mu.Unlock()
	}
	e.result, e.err = result, err
	close(e.done)
}

func (s *Symbolicator) fetch(ctx context.Context, stack *Stack) (*SymbolicatedStackTrace, error) {
	frames := stack.Frames
	if frames == nil {
		frames = []StackFrame{}
	}
	body, err := json.Marshal(map[string]any{"stack": frames})
	if err != nil {
		return nil, fmt.Errorf("encoding stack: %w", err)
	}

	url := s.origin + "/symbolicate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building symbolication request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	output.Debug("symbolicating stack", "url", url, "frames", len(frames))
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, oerrors.NewConnectivityError("symbolication request failed",
			map[string]string{"url": url}, "check that the dev server is running or set "+OriginEnv, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading symbolication response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, oerrors.NewConnectivityError(fmt.Sprintf("dev server responded %s", resp.Status),
			map[string]string{"url": url}, "", nil)
	}
	return Sanitize(raw)
}

// SymbolicateOrRaw returns the symbolicated stack, or the raw frames when
// symbolication fails. The error overlay always has something to show.
func (s *Symbolicator) SymbolicateOrRaw(ctx context.Context, stack *Stack) *SymbolicatedStackTrace {
	result, err := s.Symbolicate(ctx, stack)
	if err != nil {
		output.Warn("symbolication failed, showing raw stack", "err", err)
		return &SymbolicatedStackTrace{Stack: stack.Frames}
	}
	return result
}

// DeleteStack evicts stack from the cache. An in-flight request still
// completes for its waiters, but the next call starts a new request.
func (s *Symbolicator) DeleteStack(stack *Stack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(stack)
}

// Len returns the number of cached stacks.
func (s *Symbolicator) Len() int {
	return s.cache.Len()
}
