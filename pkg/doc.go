// Package pkg provides the core libraries for reversible-circuit synthesis
// and identity generation.
//
// # Overview
//
// Revsynth works with n-wire reversible registers built from a single gate
// primitive: G(target, c1, c2) flips the target wire whenever control1 reads
// 1 or control2 reads 0. On top of that primitive it offers two workflows:
// synthesizing a circuit that realizes a given permutation, and generating
// identity circuits that are hard to recognize as identities. The pkg
// directory is organized into five main areas:
//
//  1. [circuit] - Domain model (gates, circuits, permutations)
//  2. [synth] - Search strategies (exact enumeration, meet-in-the-middle, heuristics)
//  3. [identity] - Identity generation, hardness scoring, verification
//  4. [pipeline] - Orchestration (table → generate → verify → store)
//  5. [store], [cache], [io] - Persistence, caching, and serialization
//
// # Architecture
//
// The typical data flow through a generation run:
//
//	Gate set (width n)
//	         ↓
//	    [synth] package (enumerate reachable permutations)
//	         ↓
//	    [identity] package (compose, shuffle, verify, score)
//	         ↓
//	    [pipeline] package (worker fan-out, caching, persistence)
//	         ↓
//	    JSON batch / MongoDB template store
//
// # Quick Start
//
// Generate a verified non-trivial identity circuit:
//
//	import (
//	    "math/rand"
//	    "github.com/fzabel/revsynth/pkg/identity"
//	)
//
//	// 1. Seeded generator over the standard width-3 gate set
//	rng := rand.New(rand.NewSource(42))
//	gen, _ := identity.NewGenerator(3, false, rng)
//
//	// 2. Random half concatenated with its shuffled inverse
//	c := gen.GenerateGuaranteed(6)
//
//	// 3. Verify and score
//	ok := identity.Verify(c, nil)
//	hardness := identity.Score(c)
//
// Synthesize a circuit for a target permutation:
//
//	target, _ := circuit.NewPermutation(3, []int{1, 0, 3, 2, 4, 5, 7, 6})
//	set, _ := synth.NewGateSet(3, false)
//	c, _ := synth.NewExact(set).BFS(target, 6)
//
// # Main Packages
//
// ## Domain Model
//
// [circuit] - Gates, circuits, and permutations. Gates are immutable
// comparable values; circuits are ordered gate lists with composition,
// inversion, and structural equality; permutations are validated bijections
// over the 2^width register states.
//
// [synth] - Circuit search. Exact breadth-first and bidirectional searches
// guarantee minimal gate counts, [synth.EnumerateAll] materializes the full
// reachability table up to a depth bound, and the transform, output-fixer,
// and genetic strategies trade minimality for speed on wider registers.
//
// [identity] - Non-trivial identity generation. Builds identity circuits
// whose cancellation structure is hidden, rejects the trivially reducible
// ones, scores the rest ([identity.Score]), and re-verifies every candidate
// before it leaves the package ([identity.Verify]).
//
// ## Orchestration
//
// [pipeline] - Complete generation pipeline (table → generate → verify →
// store) used by both the CLI and the HTTP API. Resolves reachability
// tables through the byte cache, fans generation out over seeded workers,
// and persists records to the template store.
//
// ## Infrastructure
//
// [store] - Template persistence behind a single interface, with in-memory
// and MongoDB implementations. Records carry the canonical content hash
// that deduplicates structurally equal circuits across jobs.
//
// [cache] - Byte cache for expensive artifacts, keyed by [cache.Keyer].
// FileCache for the CLI (XDG cache dir), RedisCache for shared deployments,
// NullCache to disable caching. Reachability tables are the main tenant.
//
// [io] - Serialization: JSON for single circuits and batch documents, CBOR
// for reachability tables. Readers rebuild circuits from their gate lists
// and reject records that do not validate.
//
// ## Interfaces
//
// [api] - Read-only HTTP API over the template store (health, template
// listing and lookup, store statistics).
//
// [diagram] - Circuit visualization: compact and box-drawing ASCII, DOT,
// and SVG/PNG via Graphviz.
//
// [errors] - Coded errors shared by the CLI and API, with input validation
// helpers.
//
// [observability] - Pluggable instrumentation hooks for generation, search,
// cache, and store events. The default hooks are no-ops.
//
// [buildinfo] - Build metadata (version, commit, date) injected at link
// time.
//
// # Common Workflows
//
// Run the full pipeline programmatically:
//
//	runner := pipeline.NewRunner(nil, nil, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Width:  3,
//	    Count:  100,
//	    Method: pipeline.MethodFast,
//	    Seed:   42,
//	})
//
// Persist and query templates:
//
//	st, _ := store.NewMongoStore(ctx, uri, "revsynth")
//	added, dups, _ := st.InsertBatch(ctx, result.Records)
//	recs, _ := st.List(ctx, store.Filter{Width: 3, Limit: 20})
//
// Warm the table cache ahead of a cluster run:
//
//	set, _ := synth.NewGateSet(3, false)
//	t, _ := synth.EnumerateAll(set, 4)
//	var buf bytes.Buffer
//	_ = io.WriteTable(t, &buf)
//	_ = byteCache.Set(ctx, keyer.TableKey(3, 4), buf.Bytes(), cache.TTLTable)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/synth/...         # Specific package
//	go test -run Example            # Examples only
//	go test -tags integration ./pkg/...  # Include MongoDB/Redis integration tests
//
// [circuit]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/circuit
// [synth]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/synth
// [identity]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/identity
// [pipeline]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/pipeline
// [store]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/store
// [cache]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/cache
// [io]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/io
// [api]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/api
// [diagram]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/diagram
// [errors]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/errors
// [observability]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/fzabel/revsynth/pkg/buildinfo
package pkg
