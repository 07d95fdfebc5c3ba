package circuit_test

import (
	"fmt"

	"github.com/fzabel/revsynth/pkg/circuit"
)

func ExampleGate_Apply() {
	// Target wire 0, control1 on wire 1, control2 on wire 2.
	g, _ := circuit.NewGate(0, 1, 2, 3)

	// State 000: control2 reads 0, so the gate fires and flips the target.
	fmt.Println(g.Apply(0b000))

	// State 100: control1 reads 0 and control2 reads 1, so nothing happens.
	fmt.Println(g.Apply(0b100))

	// Output:
	// 1
	// 4
}

func ExampleCircuit_Inverse() {
	gates := circuit.DistinctGates(3)
	c, _ := circuit.FromGates([]circuit.Gate{gates[0], gates[3], gates[1]})

	// Gates are involutions, so reversing the order undoes the circuit.
	roundTrip := c.Concatenate(c.Inverse())
	fmt.Println(roundTrip.Permutation().IsIdentity())

	// Output:
	// true
}

func ExamplePermutation_Cycles() {
	p, _ := circuit.NewPermutation(2, []int{1, 0, 3, 2})
	fmt.Println(p.Cycles())

	// Output:
	// [[0 1] [2 3]]
}
