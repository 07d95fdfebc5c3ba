package circuit

import (
	"errors"
	"fmt"
)

var (
	// ErrGateLine is returned by [NewGate] when a target or control index
	// lies outside [0, width).
	ErrGateLine = errors.New("gate line index out of range")

	// ErrIrreversibleGate is returned by [NewGate] when the target
	// coincides with exactly one control. That shape feeds the flipped bit
	// back into its own firing condition and its action is not a bijection.
	ErrIrreversibleGate = errors.New("gate firing condition reads its own target")
)

// Gate is the single reversible primitive of the system: it flips its target
// wire whenever control1 reads 1 or control2 reads 0. The firing condition
// never reads the target wire ([NewGate] rejects the shapes where it would),
// so applying the same gate twice restores the original state: every gate is
// its own inverse, and all circuit-inversion logic relies on this.
//
// Gate is an immutable comparable value and can be used directly as a map
// key. Construct gates with [NewGate] so the line indices are validated.
type Gate struct {
	Target   int
	Control1 int
	Control2 int
	Width    int
}

// NewGate builds a gate acting on a width-wire register. All three line
// indices must lie in [0, width). Lines do not have to be distinct (see
// [AllGates] vs [DistinctGates]), but a target equal to exactly one control
// is rejected with [ErrIrreversibleGate]; a target sharing both controls
// degenerates to a plain NOT and is fine.
func NewGate(target, control1, control2, width int) (Gate, error) {
	if width < 1 || width > MaxWidth {
		return Gate{}, ErrInvalidWidth
	}
	for _, l := range [3]int{target, control1, control2} {
		if l < 0 || l >= width {
			return Gate{}, fmt.Errorf("%w: line %d, width %d", ErrGateLine, l, width)
		}
	}
	if (target == control1) != (target == control2) {
		return Gate{}, fmt.Errorf("%w: target %d, controls %d and %d", ErrIrreversibleGate, target, control1, control2)
	}
	return Gate{Target: target, Control1: control1, Control2: control2, Width: width}, nil
}

// Applies reports whether the gate fires on the given state:
// control1 reads 1 or control2 reads 0.
func (g Gate) Applies(state int) bool {
	return (state>>g.Control1)&1 == 1 || (state>>g.Control2)&1 == 0
}

// Apply returns the state with the target bit flipped when the gate fires,
// and the state unchanged otherwise.
func (g Gate) Apply(state int) int {
	if g.Applies(state) {
		return state ^ (1 << g.Target)
	}
	return state
}

// Permutation materializes the gate's action over all 2^width states.
func (g Gate) Permutation() Permutation {
	size := 1 << g.Width
	m := make([]int, size)
	for i := range m {
		m[i] = g.Apply(i)
	}
	return Permutation{width: g.Width, m: m}
}

// ConflictsWith reports whether the two gates cannot be freely reordered:
// either target coincides with any of the other gate's lines. This is a
// conservative line-overlap test, not an exact commutation check; it may
// flag pairs that do commute under the gate's boolean semantics. Triviality
// detection and hardness scoring are calibrated against exactly this
// approximation, so it must not be replaced with algebraic commutation.
func (g Gate) ConflictsWith(other Gate) bool {
	if g.Target == other.Control1 || g.Target == other.Control2 {
		return true
	}
	if other.Target == g.Control1 || other.Target == g.Control2 {
		return true
	}
	return g.Target == other.Target
}

// SharedLines counts the wires used by both gates, treating each gate's
// lines as a set.
func (g Gate) SharedLines(other Gate) int {
	var mine, theirs uint
	for _, l := range [3]int{g.Target, g.Control1, g.Control2} {
		mine |= 1 << l
	}
	for _, l := range [3]int{other.Target, other.Control1, other.Control2} {
		theirs |= 1 << l
	}
	n := 0
	for b := mine & theirs; b != 0; b &= b - 1 {
		n++
	}
	return n
}

func (g Gate) String() string {
	return fmt.Sprintf("G(t=%d, c1=%d, c2=%d)", g.Target, g.Control1, g.Control2)
}

// AllGates enumerates every valid gate for the given width in deterministic
// order: target, then control1, then control2, each ascending. Same-line
// shapes are included apart from the irreversible ones [NewGate] rejects,
// leaving width^3 - 2*width*(width-1) gates. The enumeration order is
// load-bearing for deterministic tie-breaking in the greedy synthesizers.
func AllGates(width int) []Gate {
	gates := make([]Gate, 0, width*width*width-2*width*(width-1))
	for t := 0; t < width; t++ {
		for c1 := 0; c1 < width; c1++ {
			for c2 := 0; c2 < width; c2++ {
				if (t == c1) != (t == c2) {
					continue
				}
				gates = append(gates, Gate{Target: t, Control1: c1, Control2: c2, Width: width})
			}
		}
	}
	return gates
}

// DistinctGates enumerates the standard gate set: all gates whose target and
// both controls sit on three distinct wires, in the same deterministic order
// as [AllGates]. For width n there are n*(n-1)*(n-2) such gates.
func DistinctGates(width int) []Gate {
	var gates []Gate
	for t := 0; t < width; t++ {
		for c1 := 0; c1 < width; c1++ {
			for c2 := 0; c2 < width; c2++ {
				if t == c1 || t == c2 || c1 == c2 {
					continue
				}
				gates = append(gates, Gate{Target: t, Control1: c1, Control2: c2, Width: width})
			}
		}
	}
	return gates
}
