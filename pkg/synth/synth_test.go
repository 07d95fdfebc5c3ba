package synth

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/fzabel/revsynth/pkg/circuit"
)

func testGateSet(t *testing.T, width int) *GateSet {
	t.Helper()
	set, err := NewGateSet(width, false)
	if err != nil {
		t.Fatalf("NewGateSet(%d, false): %v", width, err)
	}
	return set
}

func mustGate(t *testing.T, target, control1, control2, width int) circuit.Gate {
	t.Helper()
	g, err := circuit.NewGate(target, control1, control2, width)
	if err != nil {
		t.Fatalf("NewGate(%d, %d, %d, %d): %v", target, control1, control2, width, err)
	}
	return g
}

func mustPerm(t *testing.T, width int, mapping []int) circuit.Permutation {
	t.Helper()
	p, err := circuit.NewPermutation(width, mapping)
	if err != nil {
		t.Fatalf("NewPermutation(%d, %v): %v", width, mapping, err)
	}
	return p
}

// twoGateTarget is the permutation of the two-gate circuit
// [G(0,1,2), G(1,0,2)]. The gates do not commute, so no single gate
// realizes it.
func twoGateTarget(t *testing.T) circuit.Permutation {
	t.Helper()
	c, err := circuit.FromGates([]circuit.Gate{
		mustGate(t, 0, 1, 2, 3),
		mustGate(t, 1, 0, 2, 3),
	})
	if err != nil {
		t.Fatalf("FromGates: %v", err)
	}
	return c.Permutation()
}

// threeCycle rotates the first three states. Any product of two distinct
// gates agrees on at most four states, so it fixes at most four, while this
// permutation fixes five: no circuit of two or fewer gates realizes it.
func threeCycle(t *testing.T) circuit.Permutation {
	t.Helper()
	return mustPerm(t, 3, []int{1, 2, 0, 3, 4, 5, 6, 7})
}

func TestNewGateSet(t *testing.T) {
	tests := []struct {
		name          string
		width         int
		allowSameLine bool
		wantLen       int
		wantErr       error
	}{
		{name: "Width3Distinct", width: 3, wantLen: 6},
		{name: "Width3SameLine", width: 3, allowSameLine: true, wantLen: 15},
		{name: "Width4Distinct", width: 4, wantLen: 24},
		{name: "Width2Distinct", width: 2, wantErr: ErrEmptyGateSet},
		{name: "WidthZero", width: 0, wantErr: circuit.ErrInvalidWidth},
		{name: "WidthTooLarge", width: circuit.MaxWidth + 1, wantErr: circuit.ErrInvalidWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewGateSet(tt.width, tt.allowSameLine)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewGateSet error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGateSet: %v", err)
			}
			if set.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", set.Len(), tt.wantLen)
			}
			if set.Width() != tt.width {
				t.Errorf("Width() = %d, want %d", set.Width(), tt.width)
			}
		})
	}
}

func TestGateSetPreparedPermutations(t *testing.T) {
	set := testGateSet(t, 3)

	if got, want := set.At(0).Gate, mustGate(t, 0, 1, 2, 3); got != want {
		t.Errorf("At(0).Gate = %v, want %v", got, want)
	}
	for i := 0; i < set.Len(); i++ {
		pg := set.At(i)
		if !pg.Perm.Equal(pg.Gate.Permutation()) {
			t.Errorf("prepared permutation for %v does not match the gate", pg.Gate)
		}
	}
}

func TestGateSetRandomDeterministic(t *testing.T) {
	set := testGateSet(t, 3)

	draw := func(seed int64) []circuit.Gate {
		rng := rand.New(rand.NewSource(seed))
		gates := make([]circuit.Gate, 8)
		for i := range gates {
			gates[i] = set.Random(rng).Gate
		}
		return gates
	}

	first, second := draw(99), draw(99)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("draw %d: %v vs %v with the same seed", i, first[i], second[i])
		}
	}
}

func TestWidthMismatchErrors(t *testing.T) {
	set := testGateSet(t, 3)
	wrong := circuit.IdentityPermutation(4)
	rng := rand.New(rand.NewSource(1))

	checks := []struct {
		name string
		run  func() error
	}{
		{"BFS", func() error { _, err := NewExact(set).BFS(wrong, 3); return err }},
		{"Bidirectional", func() error { _, err := NewExact(set).Bidirectional(wrong, 3); return err }},
		{"MeetInTheMiddle", func() error { _, err := NewMeetInTheMiddle(set, 1).Synthesize(wrong); return err }},
		{"Transform", func() error { _, err := NewTransform(set, rng).Synthesize(wrong, 10); return err }},
		{"TransformRandomized", func() error { _, err := NewTransform(set, rng).SynthesizeRandomized(wrong, 10); return err }},
		{"TransformMultistart", func() error { _, err := NewTransform(set, rng).SynthesizeMultistart(wrong, 2, 10); return err }},
		{"OutputFixer", func() error { _, err := NewOutputFixer(set).Synthesize(wrong, 10); return err }},
		{"Genetic", func() error { _, err := NewGenetic(set, GeneticOptions{}, rng).Synthesize(wrong); return err }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if err := c.run(); !errors.Is(err, ErrTargetWidth) {
				t.Errorf("error = %v, want ErrTargetWidth", err)
			}
		})
	}
}
