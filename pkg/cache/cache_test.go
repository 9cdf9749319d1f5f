package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCacheStoresNothing(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "payload:CS3230", []byte(`{"name":"CS3230"}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "payload:CS3230")
	if err != nil || hit || data != nil {
		t.Errorf("Get after Set = %q, %v, %v; want a plain miss", data, hit, err)
	}
	if err := c.Delete(ctx, "payload:CS3230"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.(Clearer).Clear(ctx); err != nil {
		t.Errorf("Clear: %v", err)
	}
}

func TestHash(t *testing.T) {
	payload := []byte(`{"name":"CS3230","children":[{"name":"CS2040"}]}`)
	if Hash(payload) != Hash(append([]byte(nil), payload...)) {
		t.Error("equal payloads should hash equally")
	}
	if Hash(payload) == Hash([]byte(`{"name":"CS3230"}`)) {
		t.Error("different payloads should hash differently")
	}
	if got := len(Hash(nil)); got != 64 {
		t.Errorf("len(Hash) = %d, want 64 hex chars", got)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// HTTPKey
	httpKey := k.HTTPKey("payload", "https://api.example.edu/tree/CS3230")
	if httpKey != "http:payload:https://api.example.edu/tree/CS3230" {
		t.Errorf("HTTPKey unexpected: %s", httpKey)
	}

	// PayloadKey is hashed and stable
	pk1 := k.PayloadKey("https://api.example.edu/tree/CS3230?full=1")
	pk2 := k.PayloadKey("https://api.example.edu/tree/CS3230?full=1")
	if pk1 != pk2 || !strings.HasPrefix(pk1, "payload:") || strings.Contains(pk1, "?") {
		t.Errorf("PayloadKey unexpected: %s / %s", pk1, pk2)
	}

	// ArtifactKey should include options in hash
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	ak3 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Collapse: []int{3}})
	if ak1 == ak2 || ak1 == ak3 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "v1.0.0:")

	// All keys should be prefixed
	httpKey := scoped.HTTPKey("payload", "CS3230")
	if httpKey != "v1.0.0:http:payload:CS3230" {
		t.Errorf("ScopedKeyer HTTPKey unexpected: %s", httpKey)
	}

	artifactKey := scoped.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(artifactKey, "v1.0.0:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", artifactKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.HTTPKey("test", "key")
	if key != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "tree", []byte(`{"name":"CS3230"}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "tree")
	if err != nil || !hit || string(data) != `{"name":"CS3230"}` {
		t.Fatalf("Get(tree) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "tree"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tree"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "tree"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "stale"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(c.path("stale")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero TTL should never expire")
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("broken")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "broken"); hit || err != nil {
		t.Errorf("corrupt entry = hit %v, err %v; want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), time.Hour)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir should survive Clear: %v", err)
	}
}

func TestFileCacheLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for i := range 3 {
		if err := c.Set(ctx, "artifact:svg", []byte(strings.Repeat("<g/>", i+1)), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	matches, err := filepath.Glob(filepath.Join(c.Dir(), "*", ".entry-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
	if data, _, _ := c.Get(ctx, "artifact:svg"); string(data) != "<g/><g/><g/>" {
		t.Errorf("last write should win, got %q", data)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	err := Retryable(fmt.Errorf("%w: status 503", ErrNetwork))
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("marked error lost its identity: %v", err)
	}
	if err.Error() != "network error: status 503" {
		t.Errorf("message changed: %q", err.Error())
	}
	if !IsRetryable(fmt.Errorf("fetch: %w", err)) {
		t.Error("marker should survive wrapping")
	}
	if IsRetryable(ErrNotFound) {
		t.Error("unmarked error reported retryable")
	}
}

func TestRetry(t *testing.T) {
	errDown := Retryable(ErrNetwork)

	tests := []struct {
		name      string
		attempts  int
		results   []error // returned by successive calls; nil afterwards
		wantCalls int
		wantErr   error
	}{
		{name: "first try", attempts: 3, wantCalls: 1},
		{name: "permanent error", attempts: 3, results: []error{ErrNotFound}, wantCalls: 1, wantErr: ErrNotFound},
		{name: "recovers", attempts: 3, results: []error{errDown}, wantCalls: 2},
		{name: "gives up", attempts: 3, results: []error{errDown, errDown, errDown, errDown}, wantCalls: 3, wantErr: ErrNetwork},
		{name: "zero attempts runs once", attempts: 0, results: []error{errDown}, wantCalls: 1, wantErr: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= len(tt.results) {
					return tt.results[calls-1]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v after %d calls, want context.Canceled after 1", err, calls)
	}
}
