package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/fzabel/revsynth/pkg/cache"
	"github.com/fzabel/revsynth/pkg/circuit"
	"github.com/fzabel/revsynth/pkg/identity"
	pkgio "github.com/fzabel/revsynth/pkg/io"
	"github.com/fzabel/revsynth/pkg/observability"
	"github.com/fzabel/revsynth/pkg/store"
	"github.com/fzabel/revsynth/pkg/synth"
)

// Runner encapsulates pipeline execution with caching and persistence.
// Both CLI and API can use this to avoid duplicating the run logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// run results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given collaborators.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// A nil store disables persistence; generated circuits are still returned.
func NewRunner(c cache.Cache, keyer cache.Keyer, s store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  s,
		Logger: logger,
	}
}

// Execute runs the complete table → generate → store pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (_ *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Width:        opts.Width,
		TargetLength: opts.TargetLength,
		JobID:        opts.JobID,
	}
	result.Stats.Requested = opts.Count
	start := time.Now()

	observability.Generator().OnGenerateStart(ctx, opts.Width, opts.Method, opts.Count)
	defer func() {
		observability.Generator().OnGenerateComplete(ctx,
			result.Stats.Generated, result.Stats.Failed, time.Since(start), err)
	}()

	// Stage 1: Table (fast method only)
	var table *synth.Table
	if opts.Method == MethodFast {
		tableStart := time.Now()
		t, hit, err := r.ResolveTableWithCacheInfo(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("table: %w", err)
		}
		table = t
		result.CacheInfo.TableHit = hit
		result.Stats.TableTime = time.Since(tableStart)

		opts.Logger.Info("resolved reachability table",
			"width", opts.Width,
			"depth", table.Depth(),
			"size", table.Size(),
			"cached", hit,
			"duration", result.Stats.TableTime)
	}

	// Stage 2: Generate
	circuits, genErr := r.generate(ctx, opts, table)
	if genErr != nil {
		return nil, fmt.Errorf("generate: %w", genErr)
	}
	result.Circuits = circuits
	result.Stats.Generated = len(circuits)
	result.Stats.Failed = opts.Count - len(circuits)

	opts.Logger.Info("generated circuits",
		"requested", opts.Count,
		"generated", result.Stats.Generated,
		"failed", result.Stats.Failed)

	// Stage 3: Records and persistence
	now := time.Now()
	result.Records = make([]*store.Record, len(circuits))
	for i, c := range circuits {
		result.Records[i] = store.NewRecord(c, opts.JobID, now)
	}

	if r.Store != nil && len(result.Records) > 0 {
		storeStart := time.Now()
		added, duplicates, insErr := r.Store.InsertBatch(ctx, result.Records)
		observability.Store().OnInsertBatch(ctx, added, duplicates, time.Since(storeStart), insErr)
		if insErr != nil {
			return nil, fmt.Errorf("store: %w", insErr)
		}
		result.Stats.Duplicates = duplicates

		opts.Logger.Info("stored templates",
			"added", added,
			"duplicates", duplicates)
	}

	result.Stats.Elapsed = time.Since(start)
	return result, nil
}

// ResolveTableWithCacheInfo returns the reachability table for the run,
// consulting the byte cache when enabled and reporting whether it hit.
// A cached table that fails to decode, or that was stored for a different
// width, is discarded and rebuilt.
func (r *Runner) ResolveTableWithCacheInfo(ctx context.Context, opts Options) (*synth.Table, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	depth := opts.tableDepth()
	key := r.Keyer.TableKey(opts.Width, depth)

	if opts.UseCache {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			t, err := pkgio.ReadTable(bytes.NewReader(data))
			if err == nil && t.Width() == opts.Width && t.Depth() == depth {
				observability.Cache().OnCacheHit(ctx, "table")
				return t, true, nil
			}
			opts.Logger.Warn("discarding unusable cached table", "key", key, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "table")
	}

	set, err := synth.NewGateSet(opts.Width, false)
	if err != nil {
		return nil, false, err
	}

	enumStart := time.Now()
	observability.Search().OnEnumerationStart(ctx, opts.Width, depth)
	t, err := synth.EnumerateAll(set, depth)
	size := 0
	if t != nil {
		size = t.Size()
	}
	observability.Search().OnEnumerationComplete(ctx, opts.Width, depth, size, time.Since(enumStart), err)
	if err != nil {
		return nil, false, err
	}

	if opts.UseCache {
		var buf bytes.Buffer
		if err := pkgio.WriteTable(t, &buf); err == nil {
			if r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLTable) == nil {
				observability.Cache().OnCacheSet(ctx, "table", buf.Len())
			}
		}
	}

	return t, false, nil
}

// ResolveTable is a convenience wrapper that calls ResolveTableWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ResolveTable(ctx context.Context, opts Options) (*synth.Table, error) {
	t, _, err := r.ResolveTableWithCacheInfo(ctx, opts)
	return t, err
}

// generate fans the request out over a worker pool. Each worker owns a
// generator seeded from the run seed plus its index and fills a fixed
// quota; the table, when present, is shared read-only. Workers check the
// context between circuits, never inside a search.
func (r *Runner) generate(ctx context.Context, opts Options, table *synth.Table) ([]*circuit.Circuit, error) {
	workers := opts.Workers
	if workers > opts.Count {
		workers = opts.Count
	}

	quotas := make([]int, workers)
	for i := 0; i < opts.Count; i++ {
		quotas[i%workers]++
	}

	results := make([][]*circuit.Circuit, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(opts.Seed + int64(w)))
			gen, err := identity.NewGenerator(opts.Width, false, rng)
			if err != nil {
				return err
			}
			if table != nil {
				if err := gen.SetTable(table); err != nil {
					return err
				}
			}

			var out []*circuit.Circuit
			for i := 0; i < quotas[w]; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				c, err := generateOne(gen, opts)
				if err != nil {
					return err
				}
				if c == nil {
					continue
				}
				if !identity.Verify(c, opts.Logger) {
					continue
				}
				observability.Generator().OnCircuitGenerated(ctx, opts.Width, c.Len())
				out = append(out, c)
			}
			results[w] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*circuit.Circuit
	for _, part := range results {
		all = append(all, part...)
	}
	return all, nil
}

// generateOne produces a single circuit, or (nil, nil) when the method's
// attempt budget runs out.
func generateOne(gen *identity.Generator, opts Options) (*circuit.Circuit, error) {
	switch opts.Method {
	case MethodFast:
		return gen.GenerateFast(opts.TargetLength, fastMaxAttempts)
	case MethodSynthesis:
		return gen.Generate(identity.GenerateOptions{
			HalfLength:  max(2, opts.TargetLength/2),
			MaxAttempts: synthesisMaxAttempts,
		})
	case MethodInterleaved:
		return gen.GenerateInterleaved(opts.TargetLength, interleavedMaxAttempts)
	case MethodGuaranteed:
		return gen.GenerateGuaranteed(opts.TargetLength), nil
	}
	return nil, fmt.Errorf("unknown method %q", opts.Method)
}

// Close releases resources held by the runner (primarily the cache).
// The store is owned by the caller and stays open.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
