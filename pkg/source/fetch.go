package source

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prereqtree/pkg/buildinfo"
	"github.com/matzehuels/prereqtree/pkg/cache"
	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/observability"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second

	// MaxPayloadSize is the largest body accepted from a server.
	MaxPayloadSize = 16 << 20

	cacheKeyType = "payload"
)

// Fetcher downloads payloads over HTTP with caching and retries.
// Fields may be changed after NewFetcher and before the first Fetch.
type Fetcher struct {
	Client  *http.Client
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration
	Logger  *log.Logger
	Headers map[string]string

	// Refresh skips the cache lookup; the fresh body is still stored.
	Refresh bool

	// Attempts and Backoff control retries of transient failures.
	Attempts int
	Backoff  time.Duration
}

// NewFetcher returns a fetcher with default timeout, TTL and retry policy.
// A nil cache disables caching; a nil logger logs nowhere.
func NewFetcher(c cache.Cache, logger *log.Logger) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: DefaultTimeout},
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		TTL:      cache.TTLPayload,
		Logger:   logger,
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// Fetch returns the payload at rawURL, from cache when fresh.
//
// A 404 fails with [errors.ErrCodeNotFound]; network failures and other
// statuses fail with [errors.ErrCodeNetwork]; a body that is not JSON
// fails with [errors.ErrCodeMalformedTree] and is not cached.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	key := f.Keyer.PayloadKey(rawURL)

	if !f.Refresh {
		if data, hit, err := f.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			f.Logger.Debug("payload cache hit", "url", rawURL, "bytes", len(data))
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	var data []byte
	err := cache.Retry(ctx, f.Attempts, f.Backoff, func() error {
		var err error
		data, err = f.get(ctx, rawURL)
		if cache.IsRetryable(err) {
			f.Logger.Warn("payload fetch failed, retrying", "url", rawURL, "error", err)
		}
		return err
	})
	switch {
	case err == nil:
	case stderrors.Is(err, cache.ErrNotFound):
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "fetch %s", rawURL)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", rawURL)
	default:
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", rawURL)
	}

	if !json.Valid(data) {
		return nil, errors.New(errors.ErrCodeMalformedTree, "response from %s is not JSON", rawURL)
	}
	if err := f.Cache.Set(ctx, key, data, f.TTL); err != nil {
		f.Logger.Warn("payload cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	}
	f.Logger.Debug("fetched payload", "url", rawURL, "bytes", len(data))
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range f.Headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPayloadSize+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: read body: %v", cache.ErrNetwork, err))
	}
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", cache.ErrNetwork, MaxPayloadSize)
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}
