// Package circuit provides the value algebra of reversible computation used
// throughout revsynth: permutations over the 2^n states of an n-wire
// register, the single gate primitive, and ordered gate sequences.
//
// # Overview
//
// Revsynth works with one fixed gate family. A gate names a target wire and
// two control wires and flips the target exactly when control1 reads 1 or
// control2 reads 0. Because a second application undoes the first, every
// gate is an involution, and a circuit is inverted by reversing its gate
// order. All synthesis and identity-generation algorithms reduce to
// composing and comparing the [Permutation] values these gates induce.
//
// # Basic Usage
//
// Construct values with [NewPermutation], [NewGate], [New], or [FromGates];
// invalid widths, line indices, and irreversible gate shapes are rejected at
// construction. Once built, values combine freely:
//
//	g, _ := circuit.NewGate(0, 1, 2, 3)
//	c, _ := circuit.New(3)
//	c.Append(g)
//	p := c.Permutation()        // action over all 8 states
//	p.Compose(p).IsIdentity()   // true: gates are involutions
//
// [AllGates] and [DistinctGates] enumerate the gate set for a width in a
// fixed deterministic order; search code relies on that order for
// reproducible tie-breaking.
//
// # Equality and Keys
//
// [Permutation], [Gate], and [Circuit] compare structurally. Gate is a
// comparable struct and can key maps directly. Permutation offers
// [Permutation.Key], a compact byte-string encoding of its mapping, which
// the search tables in pkg/synth use as their map key.
//
// # Triviality Queries
//
// [Circuit.HasAdjacentDuplicate] and [Circuit.CommutingCancellation] detect
// sequences that collapse under the conservative commutation test
// [Gate.ConflictsWith]. The identity generator in pkg/identity combines
// them to reject circuits that an optimizer would simplify away.
//
// # Concurrency
//
// Permutation and Gate are immutable and safe to share. Circuit is mutable
// and not safe for concurrent use; clone before handing one to another
// goroutine.
package circuit
