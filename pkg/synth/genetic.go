package synth

import (
	"math/rand"
	"sort"

	"github.com/fzabel/revsynth/pkg/circuit"
)

// Fitness shape: a circuit realizing the target scores fitnessSolved minus
// its length, anything else scores negative distance with a small length
// penalty. Accepting at fitnessAccept leaves room for the length discount.
const (
	fitnessSolved = 10000.0
	fitnessAccept = 9000.0
	lengthPenalty = 0.01
)

// GeneticOptions tune the evolutionary searcher. Zero fields take defaults.
type GeneticOptions struct {
	PopulationSize int     // default 100
	Generations    int     // default 500
	InitialLength  int     // default 10; start lengths are 1..2*InitialLength
	MutationRate   float64 // default 0.1
	TournamentSize int     // default 3
}

func (o *GeneticOptions) setDefaults() {
	if o.PopulationSize <= 0 {
		o.PopulationSize = 100
	}
	if o.Generations <= 0 {
		o.Generations = 500
	}
	if o.InitialLength <= 0 {
		o.InitialLength = 10
	}
	if o.MutationRate <= 0 {
		o.MutationRate = 0.1
	}
	if o.TournamentSize <= 0 {
		o.TournamentSize = 3
	}
}

// A Genetic searcher evolves a population of random circuits toward the
// target. It reaches targets outside the exact searchers' depth and tends to
// find short circuits, at the cost of run-to-run variance unless the caller
// fixes the rng seed.
type Genetic struct {
	set  *GateSet
	opts GeneticOptions
	rng  *rand.Rand
}

// NewGenetic returns an evolutionary searcher over set. Zero opts fields
// take defaults; a nil rng is replaced with a time-seeded one.
func NewGenetic(set *GateSet, opts GeneticOptions, rng *rand.Rand) *Genetic {
	opts.setDefaults()
	return &Genetic{set: set, opts: opts, rng: newRNG(rng)}
}

type individual struct {
	circ    *circuit.Circuit
	fitness float64
}

func (g *Genetic) randomCircuit(length int) *circuit.Circuit {
	c := g.set.empty()
	for i := 0; i < length; i++ {
		c.Append(g.set.Random(g.rng).Gate)
	}
	return c
}

func (g *Genetic) fitness(c *circuit.Circuit, target circuit.Permutation) float64 {
	d := c.Permutation().DistanceTo(target)
	if d == 0 {
		return fitnessSolved - float64(c.Len())
	}
	return -float64(d) - lengthPenalty*float64(c.Len())
}

// crossover splices a prefix of p1 onto a suffix of p2 at independent
// uniformly random cut points. An empty parent yields a copy of the other.
func (g *Genetic) crossover(p1, p2 *circuit.Circuit) *circuit.Circuit {
	if p1.Len() == 0 {
		return p2.Clone()
	}
	if p2.Len() == 0 {
		return p1.Clone()
	}
	pt1 := g.rng.Intn(p1.Len() + 1)
	pt2 := g.rng.Intn(p2.Len() + 1)

	child := g.set.empty()
	for i := 0; i < pt1; i++ {
		child.Append(p1.Gate(i))
	}
	for i := pt2; i < p2.Len(); i++ {
		child.Append(p2.Gate(i))
	}
	return child
}

// mutate substitutes gates at the mutation rate, then rolls at most one
// random insertion and one random deletion.
func (g *Genetic) mutate(c *circuit.Circuit) *circuit.Circuit {
	gates := c.Gates()
	rate := g.opts.MutationRate

	for i := range gates {
		if g.rng.Float64() < rate {
			gates[i] = g.set.Random(g.rng).Gate
		}
	}
	if g.rng.Float64() < rate {
		pos := g.rng.Intn(len(gates) + 1)
		gates = append(gates, circuit.Gate{})
		copy(gates[pos+1:], gates[pos:])
		gates[pos] = g.set.Random(g.rng).Gate
	}
	if len(gates) > 1 && g.rng.Float64() < rate {
		pos := g.rng.Intn(len(gates))
		gates = append(gates[:pos], gates[pos+1:]...)
	}

	out := g.set.empty()
	for _, gt := range gates {
		out.Append(gt)
	}
	return out
}

// tournamentSelect samples TournamentSize distinct individuals uniformly and
// returns the fittest, earliest drawn on ties.
func (g *Genetic) tournamentSelect(pop []individual) *circuit.Circuit {
	k := g.opts.TournamentSize
	if k > len(pop) {
		k = len(pop)
	}
	seen := make(map[int]struct{}, k)
	best := -1
	for len(seen) < k {
		i := g.rng.Intn(len(pop))
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		if best < 0 || pop[i].fitness > pop[best].fitness {
			best = i
		}
	}
	return pop[best].circ
}

// Synthesize evolves random circuits toward target and returns the first
// circuit whose permutation matches, or nil when the generation budget ends
// without one. The closing best-of-population candidate is returned only
// after its permutation is checked against target.
func (g *Genetic) Synthesize(target circuit.Permutation) (*circuit.Circuit, error) {
	if target.Width() != g.set.width {
		return nil, ErrTargetWidth
	}
	if target.IsIdentity() {
		return g.set.empty(), nil
	}

	maxStart := g.opts.InitialLength * 2
	pop := make([]individual, 0, g.opts.PopulationSize)
	for i := 0; i < g.opts.PopulationSize; i++ {
		c := g.randomCircuit(1 + g.rng.Intn(maxStart))
		fit := g.fitness(c, target)
		pop = append(pop, individual{circ: c, fitness: fit})
		if fit >= fitnessSolved-float64(maxStart) {
			return c, nil
		}
	}

	byFitness := func(i, j int) bool { return pop[i].fitness > pop[j].fitness }
	for gen := 0; gen < g.opts.Generations; gen++ {
		sort.SliceStable(pop, byFitness)
		if pop[0].fitness >= fitnessAccept {
			return pop[0].circ, nil
		}

		next := make([]individual, 0, g.opts.PopulationSize)
		next = append(next, pop[0]) // elitism
		for len(next) < g.opts.PopulationSize {
			p1 := g.tournamentSelect(pop)
			p2 := g.tournamentSelect(pop)
			child := g.mutate(g.crossover(p1, p2))
			fit := g.fitness(child, target)
			next = append(next, individual{circ: child, fitness: fit})
			if fit >= fitnessAccept {
				return child, nil
			}
		}
		pop = next
	}

	sort.SliceStable(pop, byFitness)
	if best := pop[0]; best.circ.Permutation().Equal(target) {
		return best.circ, nil
	}
	return nil, nil
}
