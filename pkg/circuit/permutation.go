package circuit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/bits-and-blooms/bitset"
)

var (
	// ErrInvalidWidth is returned when a register width is outside [1, MaxWidth].
	ErrInvalidWidth = errors.New("width must be between 1 and 16")

	// ErrMappingLength is returned by [NewPermutation] when the mapping does
	// not have exactly 2^width entries.
	ErrMappingLength = errors.New("mapping length must equal 2^width")

	// ErrNotBijective is returned by [NewPermutation] when the mapping repeats
	// or omits a value, i.e. is not a bijection over the state space.
	ErrNotBijective = errors.New("mapping is not a bijection")
)

// MaxWidth is the largest supported register width. The limit comes from the
// two-byte-per-state key encoding used for table lookups; search at widths
// anywhere near it is far beyond reach anyway.
const MaxWidth = 16

// Permutation is a bijection over the 2^width states of a width-wire
// register. It is an immutable value: every operation returns a new
// Permutation and never aliases the receiver's mapping.
//
// Equality is structural ([Permutation.Equal]); [Permutation.Key] yields a
// deterministic content key suitable for map-based tables.
type Permutation struct {
	width int
	m     []int
}

// NewPermutation builds a permutation from an explicit mapping, where
// mapping[i] = j means input state i maps to output state j. The mapping is
// copied and validated: it must contain every value in [0, 2^width) exactly
// once.
func NewPermutation(width int, mapping []int) (Permutation, error) {
	if width < 1 || width > MaxWidth {
		return Permutation{}, ErrInvalidWidth
	}
	size := 1 << width
	if len(mapping) != size {
		return Permutation{}, fmt.Errorf("%w: got %d, want %d", ErrMappingLength, len(mapping), size)
	}

	seen := bitset.New(uint(size))
	for _, v := range mapping {
		if v < 0 || v >= size {
			return Permutation{}, fmt.Errorf("%w: value %d out of range", ErrNotBijective, v)
		}
		if seen.Test(uint(v)) {
			return Permutation{}, fmt.Errorf("%w: value %d repeats", ErrNotBijective, v)
		}
		seen.Set(uint(v))
	}

	m := make([]int, size)
	copy(m, mapping)
	return Permutation{width: width, m: m}, nil
}

// IdentityPermutation returns the identity over 2^width states.
// It panics if width is invalid; widths reach this package through
// constructors that have already validated them.
func IdentityPermutation(width int) Permutation {
	if width < 1 || width > MaxWidth {
		panic(fmt.Sprintf("circuit: invalid width %d", width))
	}
	size := 1 << width
	m := make([]int, size)
	for i := range m {
		m[i] = i
	}
	return Permutation{width: width, m: m}
}

// RandomPermutation returns a uniformly random permutation drawn from rng.
func RandomPermutation(width int, rng *rand.Rand) Permutation {
	p := IdentityPermutation(width)
	rng.Shuffle(len(p.m), func(i, j int) {
		p.m[i], p.m[j] = p.m[j], p.m[i]
	})
	return p
}

// Width returns the register width in wires.
func (p Permutation) Width() int { return p.width }

// Size returns the number of states, 2^width.
func (p Permutation) Size() int { return len(p.m) }

// Apply maps a single input state to its output state.
func (p Permutation) Apply(x int) int { return p.m[x] }

// Compose returns the composition p∘other, i.e. the permutation that applies
// other first and then p: Compose(p, q)(x) = p(q(x)).
//
// Both permutations must have the same width; composing values of different
// widths is a programmer error and panics.
func (p Permutation) Compose(other Permutation) Permutation {
	if p.width != other.width {
		panic(fmt.Sprintf("circuit: compose width mismatch: %d vs %d", p.width, other.width))
	}
	m := make([]int, len(p.m))
	for i := range m {
		m[i] = p.m[other.m[i]]
	}
	return Permutation{width: p.width, m: m}
}

// Inverse returns the permutation q with q(p(x)) = x for all states x.
func (p Permutation) Inverse() Permutation {
	m := make([]int, len(p.m))
	for i, j := range p.m {
		m[j] = i
	}
	return Permutation{width: p.width, m: m}
}

// IsIdentity reports whether p maps every state to itself.
func (p Permutation) IsIdentity() bool {
	for i, v := range p.m {
		if i != v {
			return false
		}
	}
	return true
}

// DistanceTo counts the states on which p and other disagree. It is the
// Hamming distance between the two mappings viewed as vectors, and the
// progress metric used by the greedy synthesizers.
func (p Permutation) DistanceTo(other Permutation) int {
	if p.width != other.width {
		panic(fmt.Sprintf("circuit: distance width mismatch: %d vs %d", p.width, other.width))
	}
	d := 0
	for i := range p.m {
		if p.m[i] != other.m[i] {
			d++
		}
	}
	return d
}

// HammingWeightSum returns the sum over all states of popcount(x XOR p(x)),
// a rough complexity metric for how many bit flips the permutation performs.
func (p Permutation) HammingWeightSum() int {
	total := 0
	for i, v := range p.m {
		total += bits.OnesCount(uint(i ^ v))
	}
	return total
}

// Cycles returns the cycle decomposition of p, excluding fixed points.
// Each cycle lists its states starting from the smallest unvisited state.
func (p Permutation) Cycles() [][]int {
	size := len(p.m)
	visited := bitset.New(uint(size))
	var cycles [][]int

	for start := 0; start < size; start++ {
		if visited.Test(uint(start)) {
			continue
		}
		var cycle []int
		for cur := start; !visited.Test(uint(cur)); cur = p.m[cur] {
			visited.Set(uint(cur))
			cycle = append(cycle, cur)
		}
		if len(cycle) > 1 {
			cycles = append(cycles, cycle)
		}
	}
	return cycles
}

// CycleStructure returns a histogram mapping cycle length to the number of
// cycles of that length, counting fixed points as length-1 cycles.
func (p Permutation) CycleStructure() map[int]int {
	structure := make(map[int]int)

	fixed := 0
	for i, v := range p.m {
		if i == v {
			fixed++
		}
	}
	if fixed > 0 {
		structure[1] = fixed
	}
	for _, c := range p.Cycles() {
		structure[len(c)]++
	}
	return structure
}

// TruthTable returns the mapping as per-state output bit vectors, least
// significant bit first.
func (p Permutation) TruthTable() [][]int {
	table := make([][]int, len(p.m))
	for i, out := range p.m {
		row := make([]int, p.width)
		for b := 0; b < p.width; b++ {
			row[b] = (out >> b) & 1
		}
		table[i] = row
	}
	return table
}

// FromTruthTable builds a permutation from per-state output bit vectors,
// the inverse of [Permutation.TruthTable].
func FromTruthTable(table [][]int) (Permutation, error) {
	size := len(table)
	if size == 0 || size&(size-1) != 0 {
		return Permutation{}, fmt.Errorf("%w: table size %d is not a power of two", ErrMappingLength, size)
	}
	width := bits.Len(uint(size)) - 1

	mapping := make([]int, size)
	for i, row := range table {
		v := 0
		for b, bit := range row {
			v |= bit << b
		}
		mapping[i] = v
	}
	return NewPermutation(width, mapping)
}

// Mapping returns a copy of the underlying output array.
func (p Permutation) Mapping() []int {
	m := make([]int, len(p.m))
	copy(m, p.m)
	return m
}

// Equal reports structural equality: same width and same mapping.
func (p Permutation) Equal(other Permutation) bool {
	if p.width != other.width {
		return false
	}
	for i := range p.m {
		if p.m[i] != other.m[i] {
			return false
		}
	}
	return true
}

// Key returns a deterministic content key for p, two little-endian bytes per
// state. Keys are equal exactly when the permutations are [Permutation.Equal],
// which makes them usable as map keys in reachability tables.
func (p Permutation) Key() string {
	b := make([]byte, 2*len(p.m))
	for i, v := range p.m {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
	}
	return string(b)
}

func (p Permutation) String() string {
	return fmt.Sprintf("Permutation(%d, %v)", p.width, p.m)
}
