// Package identity generates circuits that compute the identity permutation
// yet resist the two cheap simplification rules, adjacent duplicate pairs and
// commuting cancellations. Such circuits pad or obfuscate designs without
// changing their behavior.
package identity

import (
	"math/rand"
	"time"

	"github.com/fzabel/revsynth/pkg/circuit"
	"github.com/fzabel/revsynth/pkg/synth"
)

// Defaults for the generation entry points; zero or negative arguments
// select them.
const (
	DefaultHalfLength       = 3
	DefaultAttempts         = 100
	DefaultMinDissimilarity = 0.3
	DefaultFastLength       = 6
	DefaultFastAttempts     = 500
	DefaultInterleavedGates = 6
	DefaultBestOfN          = 20
	DefaultGuaranteedLength = 4
)

// Generator builds identity circuits from a random first half and a
// synthesized closing half. All variants share one gate set, one random
// source, and the reachability tables cached for the fast path, so a
// Generator is not safe for concurrent use.
type Generator struct {
	width     int
	set       *synth.GateSet
	exact     *synth.Exact
	transform *synth.Transform
	rng       *rand.Rand
	proto     *circuit.Circuit

	// tables caches reachability tables by depth for GenerateFast.
	tables map[int]*synth.Table
}

// NewGenerator prepares a generator for the given register width. A nil rng
// seeds a fresh source from the clock; pass an explicit source for
// reproducible output.
func NewGenerator(width int, allowSameLine bool, rng *rand.Rand) (*Generator, error) {
	set, err := synth.NewGateSet(width, allowSameLine)
	if err != nil {
		return nil, err
	}
	proto, err := circuit.New(width)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		width:     width,
		set:       set,
		exact:     synth.NewExact(set),
		transform: synth.NewTransform(set, rng),
		rng:       rng,
		proto:     proto,
		tables:    make(map[int]*synth.Table),
	}, nil
}

// Width returns the register width the generator works over.
func (g *Generator) Width() int { return g.width }

// SetTable injects a prebuilt reachability table, typically loaded from the
// on-disk cache, so GenerateFast can skip the enumeration.
func (g *Generator) SetTable(t *synth.Table) error {
	if t.Width() != g.width {
		return synth.ErrTableWidth
	}
	g.tables[t.Depth()] = t
	return nil
}

// GenerateOptions tunes [Generator.Generate]. Zero values select the
// defaults.
type GenerateOptions struct {
	// HalfLength is the gate count of the random first half. Default 3.
	HalfLength int
	// MaxAttempts bounds the number of generation rounds. Default 100.
	MaxAttempts int
	// MinDissimilarity is the structural distance required between the
	// closing half and the mirrored first half, in [0, 1]. Default 0.3.
	MinDissimilarity float64
}

func (o *GenerateOptions) setDefaults() {
	if o.HalfLength <= 0 {
		o.HalfLength = DefaultHalfLength
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultAttempts
	}
	if o.MinDissimilarity <= 0 {
		o.MinDissimilarity = DefaultMinDissimilarity
	}
}

// Generate builds a non-trivial identity circuit: a random first half with no
// adjacent duplicates, closed by a synthesized realization of its inverse
// permutation. The closing half comes from the randomized transformation
// search for variety, with exact BFS as the fallback, and is re-verified
// against the inverse rather than trusted. Candidates are rejected when the
// seam would form an adjacent duplicate, when the closing half looks like a
// mirrored undo of the first (structural similarity at or above
// 1 − MinDissimilarity), when the concatenation is not the identity, or when
// a triviality pattern remains. Returns nil when every attempt is rejected.
func (g *Generator) Generate(opts GenerateOptions) (*circuit.Circuit, error) {
	opts.setDefaults()

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		first := g.randomHalf(opts.HalfLength)
		if first == nil {
			continue
		}
		inverse := first.Permutation().Inverse()

		closing, err := g.transform.SynthesizeRandomized(inverse, 3*opts.HalfLength)
		if err != nil {
			return nil, err
		}
		if closing == nil {
			closing, err = g.exact.BFS(inverse, opts.HalfLength+3)
			if err != nil {
				return nil, err
			}
		}
		if closing == nil {
			continue
		}
		if !closing.Permutation().Equal(inverse) {
			continue
		}
		if junctionRepeats(first, closing) {
			continue
		}
		if StructuralSimilarity(closing, first.Inverse()) >= 1-opts.MinDissimilarity {
			continue
		}

		full := first.Concatenate(closing)
		if !full.Permutation().IsIdentity() || IsTrivial(full) {
			continue
		}
		return full, nil
	}
	return nil, nil
}

// GenerateFast trades search for lookup: the closing half comes from a
// reachability table enumerated once per depth and cached on the generator.
// Much faster than Generate for batch work at the cost of less structural
// variety in the closing halves.
func (g *Generator) GenerateFast(targetLength, maxAttempts int) (*circuit.Circuit, error) {
	if targetLength <= 0 {
		targetLength = DefaultFastLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultFastAttempts
	}
	halfDepth := targetLength / 2
	if halfDepth < 2 {
		halfDepth = 2
	}
	table := g.table(halfDepth + 1)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		first := g.randomHalf(halfDepth)
		if first == nil {
			continue
		}
		closing := table.Lookup(first.Permutation().Inverse())
		if closing == nil {
			continue
		}
		if junctionRepeats(first, closing) {
			continue
		}

		full := first.Concatenate(closing)
		if !full.Permutation().IsIdentity() || IsTrivial(full) {
			continue
		}
		return full, nil
	}
	return nil, nil
}

// GenerateInterleaved grows most of the circuit as random non-repeating
// gates while tracking the running permutation, then synthesizes a closing
// sequence for its inverse. The tracked product composes each appended gate
// on the output side, so it always equals the prefix's own permutation.
func (g *Generator) GenerateInterleaved(numGates, maxAttempts int) (*circuit.Circuit, error) {
	if numGates <= 0 {
		numGates = DefaultInterleavedGates
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultAttempts
	}
	build := numGates - 2
	if build < 2 {
		build = 2
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		prefix := g.proto.Clone()
		cur := circuit.IdentityPermutation(g.width)
		last := -1
		for i := 0; i < build; i++ {
			if last >= 0 && g.set.Len() == 1 {
				break
			}
			idx := g.randomGateIndex(last)
			pg := g.set.At(idx)
			prefix.Append(pg.Gate)
			cur = pg.Perm.Compose(cur)
			last = idx
		}
		if prefix.Len() < build {
			continue
		}

		closing, err := g.transform.SynthesizeRandomized(cur.Inverse(), numGates)
		if err != nil {
			return nil, err
		}
		if closing == nil || closing.Len() == 0 {
			continue
		}
		if junctionRepeats(prefix, closing) {
			continue
		}

		full := prefix.Concatenate(closing)
		if !full.Permutation().IsIdentity() || IsTrivial(full) {
			continue
		}
		return full, nil
	}
	return nil, nil
}

// GenerateBestOfN runs Generate n times with a small per-run attempt budget
// and keeps the candidate with the highest hardness score. Returns nil when
// every run comes back empty.
func (g *Generator) GenerateBestOfN(n, halfLength int) (*circuit.Circuit, error) {
	if n <= 0 {
		n = DefaultBestOfN
	}

	var best *circuit.Circuit
	bestScore := -1.0
	for i := 0; i < n; i++ {
		c, err := g.Generate(GenerateOptions{HalfLength: halfLength, MaxAttempts: 10})
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		if s := Score(c); s > bestScore {
			bestScore = s
			best = c
		}
	}
	return best, nil
}

// GenerateGuaranteed always returns an identity circuit: a random first half
// concatenated with its own reversal, shuffled along commuting neighbors to
// obscure the mirror structure. Unlike the other variants the result is not
// filtered for triviality, so it is the fallback tier when the caller needs
// a circuit unconditionally.
func (g *Generator) GenerateGuaranteed(minLength int) *circuit.Circuit {
	if minLength <= 0 {
		minLength = DefaultGuaranteedLength
	}
	halfLen := minLength / 2
	if halfLen < 2 {
		halfLen = 2
	}

	half := g.randomHalf(halfLen)
	if half == nil {
		// A single-gate set cannot avoid the repeat; apply one gate twice.
		c := g.proto.Clone()
		pg := g.set.Random(g.rng)
		c.Append(pg.Gate)
		c.Append(pg.Gate)
		return c
	}
	return half.Concatenate(g.ShuffleCommuting(half.Inverse()))
}

// ShuffleCommuting returns a copy of c with repeated random adjacent swaps
// applied wherever the pair does not conflict. Non-conflicting gates act on
// disjoint lines, so every swap preserves the circuit's permutation.
func (g *Generator) ShuffleCommuting(c *circuit.Circuit) *circuit.Circuit {
	gates := c.Gates()
	for pass := 0; pass < 2*len(gates); pass++ {
		if len(gates) < 2 {
			break
		}
		i := g.rng.Intn(len(gates) - 1)
		if !gates[i].ConflictsWith(gates[i+1]) {
			gates[i], gates[i+1] = gates[i+1], gates[i]
		}
	}

	out := g.proto.Clone()
	for _, gt := range gates {
		out.Append(gt)
	}
	return out
}

// randomHalf builds length random gates with no adjacent duplicates, or nil
// when the gate set has no alternative to repeat.
func (g *Generator) randomHalf(length int) *circuit.Circuit {
	c := g.proto.Clone()
	last := -1
	for i := 0; i < length; i++ {
		if last >= 0 && g.set.Len() == 1 {
			return nil
		}
		idx := g.randomGateIndex(last)
		c.Append(g.set.At(idx).Gate)
		last = idx
	}
	return c
}

// randomGateIndex draws a gate index uniformly, excluding skip when it is a
// valid index.
func (g *Generator) randomGateIndex(skip int) int {
	n := g.set.Len()
	if skip < 0 || n == 1 {
		return g.rng.Intn(n)
	}
	idx := g.rng.Intn(n - 1)
	if idx == skip {
		idx = n - 1
	}
	return idx
}

// table returns the cached reachability table for depth, enumerating it on
// first use.
func (g *Generator) table(depth int) *synth.Table {
	if t, ok := g.tables[depth]; ok {
		return t
	}
	t := g.exact.EnumerateAll(depth)
	g.tables[depth] = t
	return t
}

// junctionRepeats reports whether concatenating a and b would place the same
// gate on both sides of the seam.
func junctionRepeats(a, b *circuit.Circuit) bool {
	return a.Len() > 0 && b.Len() > 0 && a.Gate(a.Len()-1) == b.Gate(0)
}
