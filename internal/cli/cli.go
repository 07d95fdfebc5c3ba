// Package cli implements the revsynth command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fzabel/revsynth/pkg/buildinfo"
	"github.com/fzabel/revsynth/pkg/cache"
	"github.com/fzabel/revsynth/pkg/pipeline"
	"github.com/fzabel/revsynth/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "revsynth"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config override; empty selects the default
	// XDG location.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "revsynth",
		Short: "Revsynth synthesizes reversible circuits and non-trivial identities",
		Long: `Revsynth is a toolkit for reversible-circuit synthesis over three-wire
gates with one positive and one negative control. It batch-generates
identity circuits that resist trivial simplification, synthesizes circuits
realizing target permutations, and manages the resulting template store.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/revsynth/config.toml)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.synthCommand())
	root.AddCommand(c.precomputeCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner assembles a pipeline runner from the resolved configuration.
// The template store is only connected when useDB is set; without it,
// generated batches exist solely in the output file.
func (c *CLI) newRunner(ctx context.Context, cfg *Config, useDB, useCache bool) (*pipeline.Runner, error) {
	var st store.Store
	if useDB {
		var err error
		st, err = c.openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	return pipeline.NewRunner(c.newCache(ctx, cfg, useCache), nil, st, c.Logger), nil
}

// newCache selects the byte-cache backend: null when caching is off, Redis
// when an address is configured and reachable, a file cache otherwise.
func (c *CLI) newCache(ctx context.Context, cfg *Config, useCache bool) cache.Cache {
	if !useCache {
		return cache.NewNullCache()
	}
	if addr := cfg.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, addr)
		if err == nil {
			return rc
		}
		c.Logger.Warn("redis cache unreachable, falling back to file cache", "addr", addr, "err", err)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			c.Logger.Warn("cache directory unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/revsynth/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
