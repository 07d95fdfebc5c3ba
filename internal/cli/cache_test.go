package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheClearRemovesEntries(t *testing.T) {
	isolateEnv(t)

	// Seed the cache directory the way the file cache lays it out:
	// two-character subdirectories holding .cbor entries.
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	sub := filepath.Join(dir, "ab")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	entry := filepath.Join(sub, "cdef0123.cbor")
	if err := os.WriteFile(entry, []byte("table"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCommand(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Error("cache clear should remove cached files")
	}
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Error("cache clear should remove empty subdirectories")
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	isolateEnv(t)

	// Clearing a cache that was never created is not an error.
	if err := runCommand(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear on missing dir: %v", err)
	}
}

func TestResolveCacheDirDefault(t *testing.T) {
	isolateEnv(t)

	c := testCLI()
	dir, err := c.resolveCacheDir()
	if err != nil {
		t.Fatalf("resolveCacheDir() error: %v", err)
	}

	want, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != want {
		t.Errorf("resolveCacheDir() = %q, want %q", dir, want)
	}
}

func TestResolveCacheDirFromConfig(t *testing.T) {
	isolateEnv(t)

	cfgDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), appName)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	tables := t.TempDir()
	config := "[cache]\ndir = \"" + tables + "\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	c := testCLI()
	dir, err := c.resolveCacheDir()
	if err != nil {
		t.Fatalf("resolveCacheDir() error: %v", err)
	}
	if dir != tables {
		t.Errorf("resolveCacheDir() = %q, want configured %q", dir, tables)
	}
}
