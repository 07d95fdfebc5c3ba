package synth

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/fzabel/revsynth/pkg/circuit"
)

func TestSynthesisProperties(t *testing.T) {
	set := testGateSet(t, 3)
	ex := NewExact(set)

	fromIndices := func(indices []int) *circuit.Circuit {
		c := set.empty()
		for _, i := range indices {
			c.Append(set.At(i).Gate)
		}
		return c
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("single gates synthesize to one gate", prop.ForAll(
		func(i int) bool {
			c, err := ex.BFS(set.At(i).Perm, 2)
			return err == nil && c != nil && c.Len() == 1 && c.Permutation().Equal(set.At(i).Perm)
		},
		gen.IntRange(0, set.Len()-1),
	))

	properties.Property("a circuit against its inverse is the identity", prop.ForAll(
		func(indices []int) bool {
			c := fromIndices(indices)
			return c.Concatenate(c.Inverse()).Permutation().IsIdentity()
		},
		gen.SliceOf(gen.IntRange(0, set.Len()-1)),
	))

	properties.Property("three-gate targets are found within depth three", prop.ForAll(
		func(indices []int) bool {
			target := fromIndices(indices).Permutation()
			got, err := ex.BFS(target, 3)
			return err == nil && got != nil && got.Len() <= 3 && got.Permutation().Equal(target)
		},
		gen.SliceOfN(3, gen.IntRange(0, set.Len()-1)),
	))

	properties.Property("bidirectional joins realize their targets", prop.ForAll(
		func(indices []int) bool {
			target := fromIndices(indices).Permutation()
			got, err := ex.Bidirectional(target, 6)
			return err == nil && got != nil && got.Permutation().Equal(target)
		},
		gen.SliceOfN(3, gen.IntRange(0, set.Len()-1)),
	))

	properties.Property("reachability entries rebuild their permutations", prop.ForAll(
		func(depth int) bool {
			table := ex.EnumerateAll(depth)
			if !table.Contains(circuit.IdentityPermutation(3)) {
				return false
			}
			for _, e := range table.All() {
				if e.Circuit.Len() > depth || !e.Circuit.Permutation().Equal(e.Perm) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 3),
	))

	properties.Property("equal seeds synthesize equal circuits", prop.ForAll(
		func(seed int64, indices []int) bool {
			target := fromIndices(indices).Permutation()
			run := func() *circuit.Circuit {
				tr := NewTransform(set, rand.New(rand.NewSource(seed)))
				c, err := tr.SynthesizeRandomized(target, 40)
				if err != nil {
					return nil
				}
				return c
			}
			first, second := run(), run()
			if first == nil || second == nil {
				return first == second
			}
			return first.Equal(second)
		},
		gen.Int64Range(0, 1<<31),
		gen.SliceOfN(2, gen.IntRange(0, set.Len()-1)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
