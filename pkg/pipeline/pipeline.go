// Package pipeline provides the batch generation pipeline for revsynth.
//
// This package implements the complete table → generate → store run that
// backs the CLI, the HTTP API, and cluster jobs. Centralizing it keeps
// caching, verification, and deduplication behavior identical across all
// entry points.
//
// # Architecture
//
// A run consists of three stages:
//
//  1. Table: resolve the reachability table (cache lookup or enumeration)
//  2. Generate: produce identity circuits on a pool of workers
//  3. Store: build deduplicated records and insert them
//
// Only the fast method needs a table; the other methods skip stage one.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	opts := pipeline.Options{
//	    Width:  3,
//	    Count:  100,
//	    Method: pipeline.MethodFast,
//	    Seed:   42,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	batch := result.Batch()
//
// # Determinism
//
// Every worker derives its generator from the run seed plus its worker
// index, and results are collected in worker order. Two runs with the
// same options therefore produce identical circuits, regardless of how
// the scheduler interleaves the workers.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/fzabel/revsynth/pkg/circuit"
	pkgio "github.com/fzabel/revsynth/pkg/io"
	"github.com/fzabel/revsynth/pkg/store"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Cluster Jobs
// =============================================================================

const (
	// DefaultCount is the number of circuits a run requests when none is
	// given. Matches the cluster job contract.
	DefaultCount = 100

	// DefaultTargetLength is the default circuit length in gates.
	DefaultTargetLength = 6

	// MinWidth is the smallest register the pipeline accepts.
	MinWidth = 2
)

// Method constants for the generation strategies.
const (
	MethodFast        = "fast"
	MethodSynthesis   = "synthesis"
	MethodInterleaved = "interleaved"
	MethodGuaranteed  = "guaranteed"
)

// DefaultMethod is the strategy used when none is given.
const DefaultMethod = MethodFast

// ValidMethods is the set of supported generation strategies.
var ValidMethods = map[string]bool{
	MethodFast:        true,
	MethodSynthesis:   true,
	MethodInterleaved: true,
	MethodGuaranteed:  true,
}

// Per-circuit attempt budgets. The fast method burns cheap table lookups,
// so it gets a larger budget than the synthesis-backed strategies.
const (
	fastMaxAttempts        = 500
	synthesisMaxAttempts   = 100
	interleavedMaxAttempts = 100
)

// ValidateMethod checks that a generation method is valid.
func ValidateMethod(method string) error {
	if !ValidMethods[method] {
		return fmt.Errorf("invalid method: %q (must be one of: fast, synthesis, interleaved, guaranteed)", method)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a generation run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Width is the register width in wires. Required.
	Width int `json:"width"`

	// Count is the number of circuits to generate.
	Count int `json:"count,omitempty"`

	// TargetLength is the desired circuit length in gates.
	TargetLength int `json:"target_length,omitempty"`

	// Method selects the generation strategy.
	Method string `json:"method,omitempty"`

	// Seed makes the run reproducible. Zero draws a fresh seed.
	Seed int64 `json:"seed,omitempty"`

	// UseCache consults and populates the byte cache for tables.
	UseCache bool `json:"use_cache,omitempty"`

	// JobID tags stored records and batch metadata. Defaults to the
	// scheduler's job id when running on a cluster.
	JobID string `json:"job_id,omitempty"`

	// Workers caps the generation fan-out.
	Workers int `json:"workers,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Width < MinWidth {
		return fmt.Errorf("width must be at least %d, got %d", MinWidth, o.Width)
	}
	if o.Method == "" {
		o.Method = DefaultMethod
	}
	if err := ValidateMethod(o.Method); err != nil {
		return err
	}
	if o.Count <= 0 {
		o.Count = DefaultCount
	}
	if o.TargetLength <= 0 {
		o.TargetLength = DefaultTargetLength
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.JobID == "" {
		o.JobID = defaultJobID()
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// tableDepth returns the enumeration depth the fast method needs for a
// target length: one past the half depth, so the closing half always has
// a witness at least as deep as the opening half.
func (o *Options) tableDepth() int {
	return max(2, o.TargetLength/2) + 1
}

// defaultJobID resolves the job id from the cluster scheduler environment,
// falling back to a fresh UUID for interactive runs.
func defaultJobID() string {
	if id := os.Getenv("PBS_JOBID"); id != "" {
		return id
	}
	if id := os.Getenv("JOB_ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Result contains the outputs of a generation run.
type Result struct {
	// Width and TargetLength echo the validated options.
	Width        int
	TargetLength int

	// JobID is the id the run's records were tagged with.
	JobID string

	// Circuits are the verified identity circuits, in generation order.
	Circuits []*circuit.Circuit

	// Records are the store rows built from the circuits.
	Records []*store.Record

	// Stats contains counts and timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Requested  int
	Generated  int
	Failed     int
	Duplicates int
	TableTime  time.Duration
	Elapsed    time.Duration
}

// CacheInfo tracks cache hits for the run.
type CacheInfo struct {
	TableHit bool // Whether the reachability table came from cache
}

// Batch packages the result as a batch document for JSON output.
func (r *Result) Batch() *pkgio.Batch {
	return &pkgio.Batch{
		Width:        r.Width,
		TargetLength: r.TargetLength,
		Requested:    r.Stats.Requested,
		Generated:    r.Stats.Generated,
		Failed:       r.Stats.Failed,
		Elapsed:      r.Stats.Elapsed,
		JobID:        r.JobID,
		Circuits:     r.Circuits,
	}
}
