package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/prereqtree/pkg/buildinfo"
	"github.com/matzehuels/prereqtree/pkg/cache"
	"github.com/matzehuels/prereqtree/pkg/errors"
)

const payload = `{"name":"CS2040","children":[{"name":"CS1010"}]}`

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	f := NewFetcher(c, nil)
	f.Backoff = time.Millisecond
	return f
}

func TestFetchCachesPayload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if ua := r.Header.Get("User-Agent"); ua != buildinfo.UserAgent() {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	ctx := context.Background()
	for range 2 {
		data, err := f.Fetch(ctx, srv.URL+"/tree/CS2040")
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if string(data) != payload {
			t.Errorf("Fetch() = %s", data)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (second fetch from cache)", hits.Load())
	}

	f.Refresh = true
	if _, err := f.Fetch(ctx, srv.URL+"/tree/CS2040"); err != nil {
		t.Fatalf("Fetch() with refresh error: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("refresh should bypass cache, server hit %d times", hits.Load())
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	data, err := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != payload || hits.Load() != 3 {
		t.Errorf("got %s after %d requests", data, hits.Load())
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.Code
		calls  int32
	}{
		{"not found", http.StatusNotFound, "", errors.ErrCodeNotFound, 1},
		{"client error", http.StatusBadRequest, "", errors.ErrCodeNetwork, 1},
		{"persistent 5xx", http.StatusServiceUnavailable, "", errors.ErrCodeNetwork, 3},
		{"not json", http.StatusOK, "<html>", errors.ErrCodeMalformedTree, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := newTestFetcher(t)
			_, err := f.Fetch(context.Background(), srv.URL)
			if !errors.Is(err, tt.want) {
				t.Errorf("Fetch() error = %v, want %s", err, tt.want)
			}
			if hits.Load() != tt.calls {
				t.Errorf("server hit %d times, want %d", hits.Load(), tt.calls)
			}
			if _, hit, _ := f.Cache.Get(context.Background(), f.Keyer.PayloadKey(srv.URL)); hit {
				t.Error("failed fetch must not be cached")
			}
		})
	}
}

func TestFetchRejectsNonHTTP(t *testing.T) {
	_, err := NewFetcher(nil, nil).Fetch(context.Background(), "ftp://example.edu/tree")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Fetch() error = %v, want INVALID_INPUT", err)
	}
}

func TestReadAndLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, ref := range []string{path, srv.URL} {
		tr, data, err := Load(ctx, nil, ref)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", ref, err)
		}
		if tr.Len() != 2 || tr.Root().Label() != "CS2040" || string(data) != payload {
			t.Errorf("Load(%s) = %d nodes rooted at %s", ref, tr.Len(), tr.Root().Label())
		}
	}

	_, err := Read(ctx, nil, filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Read(missing) error = %v, want NOT_FOUND", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(bad, []byte(`[1,2]`), 0o644)
	if _, _, err := Load(ctx, nil, bad); !errors.Is(err, errors.ErrCodeMalformedTree) {
		t.Errorf("Load(bad) error = %v, want MALFORMED_TREE", err)
	}
}
