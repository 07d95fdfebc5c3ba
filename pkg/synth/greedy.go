package synth

import (
	"math/rand"

	"github.com/fzabel/revsynth/pkg/circuit"
)

// Defaults for the transformation-based searchers.
const (
	DefaultMaxSteps          = 1000
	DefaultRestarts          = 10
	DefaultRestartMaxSteps   = 500
	DefaultMaxStepsPerOutput = 100
)

// A Transform searcher walks from the identity toward the target, greedily
// choosing gates that reduce the number of mismatched states. It scales far
// beyond the exact searchers but offers no minimality guarantee and can fail
// on targets they would solve.
type Transform struct {
	set *GateSet
	rng *rand.Rand
}

// NewTransform returns a transformation-based searcher over set. A nil rng
// is replaced with a time-seeded one; pass an explicit source for
// reproducible runs.
func NewTransform(set *GateSet, rng *rand.Rand) *Transform {
	return &Transform{set: set, rng: newRNG(rng)}
}

// Synthesize greedily walks toward target for at most maxSteps gates and
// returns the circuit only if the walk reached the target exactly, else nil.
// Each step scans the whole alphabet and takes the gate leaving the lowest
// remaining distance, earliest in enumeration order on ties; when no gate
// strictly improves, one uniformly random gate is applied to escape the
// local minimum. maxSteps <= 0 selects [DefaultMaxSteps].
func (t *Transform) Synthesize(target circuit.Permutation, maxSteps int) (*circuit.Circuit, error) {
	if target.Width() != t.set.width {
		return nil, ErrTargetWidth
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	cur := circuit.IdentityPermutation(t.set.width)
	c := t.set.empty()
	if target.IsIdentity() {
		return c, nil
	}

	for step := 0; step < maxSteps; step++ {
		dist := cur.DistanceTo(target)
		if dist == 0 {
			return c, nil
		}

		bestIdx := -1
		bestDist := dist
		var bestPerm circuit.Permutation
		for i := range t.set.prepared {
			next := t.set.prepared[i].Perm.Compose(cur)
			if d := next.DistanceTo(target); d < bestDist {
				bestDist = d
				bestIdx = i
				bestPerm = next
			}
		}

		// The walk composes each gate on the output side, so the gate
		// lands at the end of the circuit.
		if bestIdx < 0 {
			pg := t.set.Random(t.rng)
			cur = pg.Perm.Compose(cur)
			c.Append(pg.Gate)
		} else {
			cur = bestPerm
			c.Append(t.set.prepared[bestIdx].Gate)
		}
	}
	if cur.Equal(target) {
		return c, nil
	}
	return nil, nil
}

// SynthesizeRandomized is the stochastic variant of [Transform.Synthesize]:
// it chooses uniformly among the strongest improving gates and applies a
// uniformly random gate when nothing improves. maxSteps <= 0 selects
// [DefaultRestartMaxSteps].
func (t *Transform) SynthesizeRandomized(target circuit.Permutation, maxSteps int) (*circuit.Circuit, error) {
	if target.Width() != t.set.width {
		return nil, ErrTargetWidth
	}
	if maxSteps <= 0 {
		maxSteps = DefaultRestartMaxSteps
	}
	cur := circuit.IdentityPermutation(t.set.width)
	c := t.set.empty()
	if target.IsIdentity() {
		return c, nil
	}

	type move struct {
		idx  int
		perm circuit.Permutation
		dist int
	}
	for step := 0; step < maxSteps; step++ {
		if cur.Equal(target) {
			return c, nil
		}
		dist := cur.DistanceTo(target)

		var improving []move
		for i := range t.set.prepared {
			next := t.set.prepared[i].Perm.Compose(cur)
			if d := next.DistanceTo(target); d < dist {
				improving = append(improving, move{idx: i, perm: next, dist: d})
			}
		}

		if len(improving) > 0 {
			minDist := improving[0].dist
			for _, mv := range improving[1:] {
				if mv.dist < minDist {
					minDist = mv.dist
				}
			}
			best := improving[:0]
			for _, mv := range improving {
				if mv.dist == minDist {
					best = append(best, mv)
				}
			}
			pick := best[t.rng.Intn(len(best))]
			cur = pick.perm
			c.Append(t.set.prepared[pick.idx].Gate)
		} else {
			pg := t.set.Random(t.rng)
			cur = pg.Perm.Compose(cur)
			c.Append(pg.Gate)
		}
	}
	if cur.Equal(target) {
		return c, nil
	}
	return nil, nil
}

// SynthesizeMultistart runs the randomized searcher restarts times and keeps
// the shortest success, or nil when every restart fails. restarts <= 0
// selects [DefaultRestarts]; maxSteps <= 0 selects [DefaultRestartMaxSteps].
func (t *Transform) SynthesizeMultistart(target circuit.Permutation, restarts, maxSteps int) (*circuit.Circuit, error) {
	if restarts <= 0 {
		restarts = DefaultRestarts
	}
	if maxSteps <= 0 {
		maxSteps = DefaultRestartMaxSteps
	}
	var best *circuit.Circuit
	for i := 0; i < restarts; i++ {
		c, err := t.SynthesizeRandomized(target, maxSteps)
		if err != nil {
			return nil, err
		}
		if c != nil && (best == nil || c.Len() < best.Len()) {
			best = c
		}
	}
	return best, nil
}

// An OutputFixer searches by settling one output state at a time: it walks
// states in ascending order and applies gates that correct the current state
// without disturbing any state already settled. Fully deterministic; it
// gives up as soon as no gate can act without breaking earlier states.
type OutputFixer struct {
	set *GateSet
}

// NewOutputFixer returns an output-fixing searcher over set.
func NewOutputFixer(set *GateSet) *OutputFixer { return &OutputFixer{set: set} }

// Synthesize settles each of the 2^width output states in ascending order,
// spending at most maxStepsPerOutput gates on each. Returns nil when some
// state admits no gate that leaves earlier states intact, or when the budget
// ends before the walk matches the target. maxStepsPerOutput <= 0 selects
// [DefaultMaxStepsPerOutput].
func (f *OutputFixer) Synthesize(target circuit.Permutation, maxStepsPerOutput int) (*circuit.Circuit, error) {
	if target.Width() != f.set.width {
		return nil, ErrTargetWidth
	}
	if maxStepsPerOutput <= 0 {
		maxStepsPerOutput = DefaultMaxStepsPerOutput
	}

	cur := circuit.IdentityPermutation(f.set.width)
	c := f.set.empty()

	for pos := 0; pos < target.Size(); pos++ {
		for steps := 0; cur.Apply(pos) != target.Apply(pos) && steps < maxStepsPerOutput; steps++ {
			bestIdx := -1
			bestScore := -1
			var bestPerm circuit.Permutation

			for i := range f.set.prepared {
				next := f.set.prepared[i].Perm.Compose(cur)

				breaksFixed := false
				for j := 0; j < pos; j++ {
					if next.Apply(j) != target.Apply(j) {
						breaksFixed = true
						break
					}
				}
				if breaksFixed {
					continue
				}

				score := 0
				if next.Apply(pos) == target.Apply(pos) {
					score = 1
				}
				if score > bestScore {
					bestScore = score
					bestIdx = i
					bestPerm = next
				}
			}

			if bestIdx < 0 {
				return nil, nil
			}
			cur = bestPerm
			c.Append(f.set.prepared[bestIdx].Gate)
		}
	}
	if cur.Equal(target) {
		return c, nil
	}
	return nil, nil
}
