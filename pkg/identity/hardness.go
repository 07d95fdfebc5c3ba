package identity

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/fzabel/revsynth/pkg/circuit"
)

// IsTrivial reports whether the circuit carries one of the two cheap
// reduction patterns: an adjacent duplicate pair, or two identical gates
// whose separating gates all commute with them.
func IsTrivial(c *circuit.Circuit) bool {
	if c.HasAdjacentDuplicate() {
		return true
	}
	_, _, found := c.CommutingCancellation()
	return found
}

// Score rates how well an identity circuit hides its cancellations; higher
// is harder to simplify. Anything that is not a verified non-trivial
// identity scores 0, so a positive score certifies both properties.
//
// The components: length with diminishing returns, gate diversity, average
// wire overlap between adjacent gates, a penalty when many adjacent pairs
// are freely reorderable, and for four or more gates an asymmetry bonus
// when the second half is not a mirrored undo of the first.
func Score(c *circuit.Circuit) float64 {
	if !c.Permutation().IsIdentity() || IsTrivial(c) {
		return 0
	}
	gates := c.Gates()
	n := len(gates)
	if n == 0 {
		return 0
	}

	score := math.Min(5, float64(n)*0.4)

	unique := make(map[circuit.Gate]struct{}, n)
	for _, g := range gates {
		unique[g] = struct{}{}
	}
	score += float64(len(unique)) / float64(n) * 3

	if n > 1 {
		shared, commuting := 0, 0
		for i := 0; i < n-1; i++ {
			shared += gates[i].SharedLines(gates[i+1])
			if !gates[i].ConflictsWith(gates[i+1]) {
				commuting++
			}
		}
		score += float64(shared) / float64(n-1) * 1.5
		score += (1 - float64(commuting)/float64(n-1)) * 2
	}

	if n >= 4 {
		mid := n / 2
		tail := gates[mid:]
		mirror := make([]circuit.Gate, len(tail))
		for i, g := range tail {
			mirror[len(tail)-1-i] = g
		}
		score += (1 - similarity(gates[:mid], mirror)) * 3
	}

	return score
}

// StructuralSimilarity measures how alike two circuits look, from 0 for
// unrelated to 1 for identical. It mixes a longest-common-subsequence match
// over the gate sequences (0.4), multiset overlap counting repeated gates
// (0.3), and the fraction of the shorter circuit's line tuples occurring
// anywhere in the other (0.3).
func StructuralSimilarity(a, b *circuit.Circuit) float64 {
	return similarity(a.Gates(), b.Gates())
}

func similarity(a, b []circuit.Gate) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return 0.4*sequenceSimilarity(a, b) + 0.3*multisetSimilarity(a, b) + 0.3*patternSimilarity(a, b)
}

// sequenceSimilarity is the longest common subsequence length normalized by
// the longer sequence.
func sequenceSimilarity(a, b []circuit.Gate) float64 {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return float64(prev[len(b)]) / float64(max(len(a), len(b)))
}

// multisetSimilarity is intersection over union of the gate multisets, so
// repeated gates count with multiplicity.
func multisetSimilarity(a, b []circuit.Gate) float64 {
	ca := make(map[circuit.Gate]int, len(a))
	for _, g := range a {
		ca[g]++
	}
	cb := make(map[circuit.Gate]int, len(b))
	for _, g := range b {
		cb[g]++
	}

	inter, union := 0, 0
	for g, na := range ca {
		nb := cb[g]
		inter += min(na, nb)
		union += max(na, nb)
	}
	for g, nb := range cb {
		if _, ok := ca[g]; !ok {
			union += nb
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// patternSimilarity is the fraction of the shorter sequence's
// (target, control1, control2) tuples that occur anywhere in the other.
func patternSimilarity(a, b []circuit.Gate) float64 {
	short, long := a, b
	if len(b) < len(a) {
		short, long = b, a
	}
	seen := make(map[circuit.Gate]struct{}, len(long))
	for _, g := range long {
		seen[g] = struct{}{}
	}
	matches := 0
	for _, g := range short {
		if _, ok := seen[g]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(short))
}

// Verify checks that the circuit realizes the identity, logging the first
// mismatched state mappings when it does not. A nil logger falls back to the
// package default.
func Verify(c *circuit.Circuit, logger *log.Logger) bool {
	if logger == nil {
		logger = log.Default()
	}
	perm := c.Permutation()
	if perm.IsIdentity() {
		return true
	}

	diffs := make([]string, 0, 5)
	for x := 0; x < perm.Size() && len(diffs) < cap(diffs); x++ {
		if y := perm.Apply(x); y != x {
			diffs = append(diffs, fmt.Sprintf("%d->%d", x, y))
		}
	}
	logger.Warn("circuit is not the identity",
		"width", c.Width(), "gates", c.Len(), "mismatches", strings.Join(diffs, " "))
	return false
}
