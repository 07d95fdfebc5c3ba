package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fzabel/revsynth/pkg/cache"
	pkgio "github.com/fzabel/revsynth/pkg/io"
)

// cacheEntries returns the paths of all cache entry files under dir.
func cacheEntries(t *testing.T, dir string) []string {
	t.Helper()
	var entries []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cbor" {
			entries = append(entries, path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return entries
}

func TestPrecomputeWarmsCache(t *testing.T) {
	isolateEnv(t)
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	if err := runCommand(t, "precompute", "-w", "3", "-d", "3"); err != nil {
		t.Fatalf("precompute: %v", err)
	}

	// The entry must be readable through a FileCache over the same directory,
	// under the key the generation pipeline looks up.
	fc, err := cache.NewFileCache(filepath.Join(cacheHome, appName))
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()

	key := cache.NewDefaultKeyer().TableKey(3, 3)
	data, hit, err := fc.Get(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Fatalf("cache miss for %s after precompute", key)
	}

	table, err := pkgio.ReadTable(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode cached table: %v", err)
	}
	if table.Width() != 3 {
		t.Errorf("Width = %d, want 3", table.Width())
	}
	if table.Depth() != 3 {
		t.Errorf("Depth = %d, want 3", table.Depth())
	}
}

func TestPrecomputeSkipsWarmCache(t *testing.T) {
	isolateEnv(t)
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	if err := runCommand(t, "precompute", "-w", "3", "-d", "2"); err != nil {
		t.Fatalf("first precompute: %v", err)
	}

	entries := cacheEntries(t, cacheHome)
	if len(entries) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(entries))
	}
	before, err := os.Stat(entries[0])
	if err != nil {
		t.Fatal(err)
	}

	if err := runCommand(t, "precompute", "-w", "3", "-d", "2"); err != nil {
		t.Fatalf("second precompute: %v", err)
	}
	after, err := os.Stat(entries[0])
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("second run rewrote the cached table instead of skipping")
	}

	if err := runCommand(t, "precompute", "-w", "3", "-d", "2", "--force"); err != nil {
		t.Fatalf("forced precompute: %v", err)
	}
}

func TestPrecomputeExportsTable(t *testing.T) {
	isolateEnv(t)
	out := filepath.Join(t.TempDir(), "table.cbor")

	if err := runCommand(t, "precompute", "-w", "3", "-d", "3", "-o", out); err != nil {
		t.Fatalf("precompute: %v", err)
	}

	table, err := pkgio.ImportTable(out)
	if err != nil {
		t.Fatalf("import table: %v", err)
	}
	if table.Width() != 3 || table.Depth() != 3 {
		t.Errorf("table is width %d depth %d, want 3/3", table.Width(), table.Depth())
	}

	lengths := table.CountByLength()
	if lengths[0] != 1 {
		t.Errorf("length-0 entries = %d, want 1 (the identity)", lengths[0])
	}
	// Width 3 has six gates on distinct lines, each a distinct permutation.
	if lengths[1] != 6 {
		t.Errorf("length-1 entries = %d, want 6", lengths[1])
	}
}

func TestPrecomputeEmptyGateSet(t *testing.T) {
	isolateEnv(t)

	// Two wires cannot host a gate on three distinct lines.
	if err := runCommand(t, "precompute", "-w", "2"); err == nil {
		t.Error("width 2 without --same-line should error")
	}
}
