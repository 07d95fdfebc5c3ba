package synth

import (
	"errors"
	"math/rand"
	"time"

	"github.com/fzabel/revsynth/pkg/circuit"
)

// Sentinel errors shared by the searchers in this package.
var (
	// ErrTargetWidth reports a target permutation acting on a different
	// number of wires than the gate set it is searched against.
	ErrTargetWidth = errors.New("target width does not match gate set")

	// ErrEmptyGateSet reports a width whose selected gate family has no
	// members. Distinct-line gates need at least three wires.
	ErrEmptyGateSet = errors.New("gate set has no gates for this width")

	// ErrTableWidth reports a reachability table whose width does not match
	// the permutations or gate set it is used with.
	ErrTableWidth = errors.New("table width does not match")
)

// A PreparedGate pairs a gate with its precomputed permutation. Search loops
// compose prepared permutations instead of rebuilding a 2^width table on
// every step.
type PreparedGate struct {
	Gate circuit.Gate
	Perm circuit.Permutation
}

// A GateSet is the move alphabet for one register width: every candidate
// gate, prepared once, in the deterministic enumeration order of
// [circuit.AllGates]. Tie-breaking in the deterministic searchers follows
// this order, so the set is never reordered after construction.
//
// A GateSet is immutable and safe for concurrent use.
type GateSet struct {
	width    int
	prepared []PreparedGate
	proto    *circuit.Circuit
}

// NewGateSet prepares the gate alphabet for width wires. With allowSameLine
// set the full [circuit.AllGates] family is used, NOT-shaped same-line gates
// included; otherwise only gates whose target and controls sit on three
// distinct wires, which leaves no gates at all below three wires.
func NewGateSet(width int, allowSameLine bool) (*GateSet, error) {
	proto, err := circuit.New(width)
	if err != nil {
		return nil, err
	}
	var gates []circuit.Gate
	if allowSameLine {
		gates = circuit.AllGates(width)
	} else {
		gates = circuit.DistinctGates(width)
	}
	if len(gates) == 0 {
		return nil, ErrEmptyGateSet
	}
	prepared := make([]PreparedGate, len(gates))
	for i, g := range gates {
		prepared[i] = PreparedGate{Gate: g, Perm: g.Permutation()}
	}
	return &GateSet{width: width, prepared: prepared, proto: proto}, nil
}

// Width returns the register width the set was built for.
func (s *GateSet) Width() int { return s.width }

// Len returns the number of gates in the set.
func (s *GateSet) Len() int { return len(s.prepared) }

// At returns the i-th prepared gate in enumeration order.
func (s *GateSet) At(i int) PreparedGate { return s.prepared[i] }

// Random returns a uniformly random prepared gate.
func (s *GateSet) Random(rng *rand.Rand) PreparedGate {
	return s.prepared[rng.Intn(len(s.prepared))]
}

// empty returns a fresh zero-gate circuit on the set's width.
func (s *GateSet) empty() *circuit.Circuit { return s.proto.Clone() }

// newRNG returns rng unchanged when non-nil, otherwise a time-seeded source.
// Callers that need reproducible runs pass their own *rand.Rand.
func newRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
