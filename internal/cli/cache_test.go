package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/matzehuels/prereqtree/pkg/cache"
)

func TestNewCacheSelectsBackend(t *testing.T) {
	ctx := context.Background()

	c := newTestCLI(t)
	store, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(cache.NullCache); !ok {
		t.Errorf("--no-cache should give a NullCache, got %T", store)
	}

	dir := t.TempDir()
	c.Config.Cache.Dir = dir
	store, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := store.(*cache.FileCache)
	if !ok || fc.Dir() != dir {
		t.Errorf("configured dir should give a FileCache at %s, got %T", dir, store)
	}

	mr := miniredis.RunT(t)
	c.Config.Cache.Redis = mr.Addr()
	store, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, ok := store.(*cache.RedisCache); !ok {
		t.Errorf("redis address should give a RedisCache, got %T", store)
	}
}

func TestCacheClearCommand(t *testing.T) {
	c := newTestCLI(t)
	ctx := context.Background()

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "payload:abc", []byte("{}"), time.Hour); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	if _, ok, _ := fc.Get(ctx, "payload:abc"); ok {
		t.Error("entry should be gone after cache clear")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache directory should be kept: %v", err)
	}
}

func TestCacheClearRedis(t *testing.T) {
	c := newTestCLI(t)
	mr := miniredis.RunT(t)
	if err := mr.Set(appName+":payload:abc", "{}"); err != nil {
		t.Fatal(err)
	}
	if err := mr.Set("other:key", "keep"); err != nil {
		t.Fatal(err)
	}

	cfg := filepath.Join(t.TempDir(), configFile)
	if err := os.WriteFile(cfg, []byte("[cache]\nredis = \""+mr.Addr()+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfg, "cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	if mr.Exists(appName + ":payload:abc") {
		t.Error("prefixed key should be cleared")
	}
	if !mr.Exists("other:key") {
		t.Error("keys outside the prefix should survive")
	}
}
