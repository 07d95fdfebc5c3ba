package circuit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoGates is returned by [FromGates] when the gate list is empty and
	// the register width cannot be inferred.
	ErrNoGates = errors.New("cannot infer width from an empty gate list")

	// ErrMixedWidths is returned by [FromGates] when the gates do not all
	// share one register width.
	ErrMixedWidths = errors.New("gates span different register widths")
)

// Circuit is an ordered sequence of gates acting on a shared register width.
// Gates apply left to right: index 0 transforms the input state first.
//
// Unlike [Permutation] and [Gate], a Circuit is mutable; [Circuit.Append]
// and [Circuit.Prepend] grow it in place. Use [New] or [FromGates] to
// construct one. The zero value is not usable.
type Circuit struct {
	width int
	gates []Gate
}

// New returns an empty circuit over a width-wire register.
func New(width int) (*Circuit, error) {
	if width < 1 || width > MaxWidth {
		return nil, ErrInvalidWidth
	}
	return &Circuit{width: width}, nil
}

// FromGates builds a circuit from a non-empty gate sequence, inferring the
// register width from the gates. The slice is copied.
func FromGates(gates []Gate) (*Circuit, error) {
	if len(gates) == 0 {
		return nil, ErrNoGates
	}
	width := gates[0].Width
	for _, g := range gates[1:] {
		if g.Width != width {
			return nil, fmt.Errorf("%w: %d and %d", ErrMixedWidths, width, g.Width)
		}
	}
	c := &Circuit{width: width, gates: make([]Gate, len(gates))}
	copy(c.gates, gates)
	return c, nil
}

// Width returns the register width shared by all gates.
func (c *Circuit) Width() int { return c.width }

// Len returns the number of gates.
func (c *Circuit) Len() int { return len(c.gates) }

// Gate returns the gate at position i.
func (c *Circuit) Gate(i int) Gate { return c.gates[i] }

// Gates returns a copy of the gate sequence.
func (c *Circuit) Gates() []Gate {
	out := make([]Gate, len(c.gates))
	copy(out, c.gates)
	return out
}

// Append adds a gate to the end of the circuit. The gate must share the
// circuit's width; a mismatch is a programmer error and panics.
func (c *Circuit) Append(g Gate) {
	if g.Width != c.width {
		panic(fmt.Sprintf("circuit: append width mismatch: gate %d, circuit %d", g.Width, c.width))
	}
	c.gates = append(c.gates, g)
}

// Prepend inserts a gate at the front of the circuit. The gate must share
// the circuit's width; a mismatch is a programmer error and panics.
func (c *Circuit) Prepend(g Gate) {
	if g.Width != c.width {
		panic(fmt.Sprintf("circuit: prepend width mismatch: gate %d, circuit %d", g.Width, c.width))
	}
	c.gates = append(c.gates, Gate{})
	copy(c.gates[1:], c.gates)
	c.gates[0] = g
}

// Clone returns an independent copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	gates := make([]Gate, len(c.gates))
	copy(gates, c.gates)
	return &Circuit{width: c.width, gates: gates}
}

// Concatenate returns a new circuit running c first, then other. Both
// circuits must share one width; a mismatch panics.
func (c *Circuit) Concatenate(other *Circuit) *Circuit {
	if other.width != c.width {
		panic(fmt.Sprintf("circuit: concatenate width mismatch: %d vs %d", c.width, other.width))
	}
	gates := make([]Gate, 0, len(c.gates)+len(other.gates))
	gates = append(gates, c.gates...)
	gates = append(gates, other.gates...)
	return &Circuit{width: c.width, gates: gates}
}

// Inverse returns the circuit that undoes c. Every gate is its own inverse,
// so the inverse is simply the gates in reverse order.
func (c *Circuit) Inverse() *Circuit {
	gates := make([]Gate, len(c.gates))
	for i, g := range c.gates {
		gates[len(c.gates)-1-i] = g
	}
	return &Circuit{width: c.width, gates: gates}
}

// Apply runs the state through every gate in order.
func (c *Circuit) Apply(state int) int {
	for _, g := range c.gates {
		state = g.Apply(state)
	}
	return state
}

// Permutation materializes the circuit's combined action over all 2^width
// states. An empty circuit yields the identity.
func (c *Circuit) Permutation() Permutation {
	size := 1 << c.width
	m := make([]int, size)
	for i := range m {
		m[i] = i
	}
	for _, g := range c.gates {
		for i := range m {
			m[i] = g.Apply(m[i])
		}
	}
	return Permutation{width: c.width, m: m}
}

// Depth returns the number of layers when gates on disjoint wires are packed
// into parallel layers greedily: each gate lands one layer below the deepest
// layer already touching any of its three lines.
func (c *Circuit) Depth() int {
	if len(c.gates) == 0 {
		return 0
	}
	levels := make([]int, c.width)
	for _, g := range c.gates {
		level := levels[g.Target]
		if levels[g.Control1] > level {
			level = levels[g.Control1]
		}
		if levels[g.Control2] > level {
			level = levels[g.Control2]
		}
		level++
		levels[g.Target] = level
		levels[g.Control1] = level
		levels[g.Control2] = level
	}
	depth := 0
	for _, l := range levels {
		if l > depth {
			depth = l
		}
	}
	return depth
}

// Equal reports whether both circuits have the same width and the same gate
// sequence.
func (c *Circuit) Equal(other *Circuit) bool {
	if c.width != other.width || len(c.gates) != len(other.gates) {
		return false
	}
	for i, g := range c.gates {
		if g != other.gates[i] {
			return false
		}
	}
	return true
}

// HasAdjacentDuplicate reports whether any gate is immediately followed by
// an identical gate. Such a pair cancels outright.
func (c *Circuit) HasAdjacentDuplicate() bool {
	for i := 0; i+1 < len(c.gates); i++ {
		if c.gates[i] == c.gates[i+1] {
			return true
		}
	}
	return false
}

// CommutingCancellation looks for a pair of identical gates at positions
// i < j-1 where no gate strictly between them conflicts with the pair, so
// the two could be slid together and cancelled. It returns the first such
// pair in scan order, or ok=false when none exists. Directly adjacent
// duplicates are [Circuit.HasAdjacentDuplicate]'s job and are not reported
// here. The underlying conflict test is the conservative
// [Gate.ConflictsWith], so a reported pair really cancels while some
// cancellable pairs may go unreported.
func (c *Circuit) CommutingCancellation() (int, int, bool) {
	for i := 0; i < len(c.gates); i++ {
		for j := i + 2; j < len(c.gates); j++ {
			if c.gates[i] != c.gates[j] {
				continue
			}
			free := true
			for k := i + 1; k < j; k++ {
				if c.gates[i].ConflictsWith(c.gates[k]) {
					free = false
					break
				}
			}
			if free {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (c *Circuit) String() string {
	if len(c.gates) == 0 {
		return fmt.Sprintf("Circuit(width=%d, empty)", c.width)
	}
	parts := make([]string, len(c.gates))
	for i, g := range c.gates {
		parts[i] = g.String()
	}
	return fmt.Sprintf("Circuit(width=%d, %s)", c.width, strings.Join(parts, " "))
}
