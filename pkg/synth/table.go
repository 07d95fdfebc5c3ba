package synth

import (
	"sort"

	"github.com/fzabel/revsynth/pkg/circuit"
)

// An Entry pairs a permutation with a circuit realizing it. Reachability
// tables and bidirectional search frontiers both store entries keyed by the
// permutation's content key.
type Entry struct {
	Perm    circuit.Permutation
	Circuit *circuit.Circuit
}

// A Table maps reachable permutations to circuits realizing them, one entry
// per permutation. Enumeration inserts shallow circuits before deep ones and
// the first witness wins, so a table built by [Exact.EnumerateAll] holds a
// minimal-length circuit for every entry.
//
// Tables are not safe for concurrent mutation; once filled they are
// read-only and may be shared.
type Table struct {
	width   int
	depth   int
	entries map[string]Entry
}

// NewTable returns an empty table for the given width. depth records the
// enumeration bound the table is filled to; loaders restoring a serialized
// table pass the stored bound.
func NewTable(width, depth int) (*Table, error) {
	if width < 1 || width > circuit.MaxWidth {
		return nil, circuit.ErrInvalidWidth
	}
	return &Table{width: width, depth: depth, entries: make(map[string]Entry)}, nil
}

// Width returns the register width of the stored permutations.
func (t *Table) Width() int { return t.width }

// Depth returns the enumeration bound the table was filled to.
func (t *Table) Depth() int { return t.depth }

// Size returns the number of stored permutations.
func (t *Table) Size() int { return len(t.entries) }

// Insert records c as the witness for perm unless the permutation is
// already present; the first witness wins.
func (t *Table) Insert(perm circuit.Permutation, c *circuit.Circuit) error {
	if perm.Width() != t.width || c.Width() != t.width {
		return ErrTableWidth
	}
	k := perm.Key()
	if _, ok := t.entries[k]; !ok {
		t.entries[k] = Entry{Perm: perm, Circuit: c}
	}
	return nil
}

// Contains reports whether perm has an entry.
func (t *Table) Contains(perm circuit.Permutation) bool {
	_, ok := t.entries[perm.Key()]
	return ok
}

// Lookup returns a copy of the stored circuit for perm, or nil when the
// permutation is not in the table. The copy is the caller's to modify.
func (t *Table) Lookup(perm circuit.Permutation) *circuit.Circuit {
	e, ok := t.entries[perm.Key()]
	if !ok {
		return nil
	}
	return e.Circuit.Clone()
}

// All returns every entry ordered by circuit length, then permutation key.
// The order is deterministic so serialized tables are reproducible. Entries
// reference the table's own circuits and are read-only.
func (t *Table) All() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Circuit.Len() != out[j].Circuit.Len() {
			return out[i].Circuit.Len() < out[j].Circuit.Len()
		}
		return out[i].Perm.Key() < out[j].Perm.Key()
	})
	return out
}

// CountByLength returns how many stored circuits have each gate count.
func (t *Table) CountByLength() map[int]int {
	counts := make(map[int]int)
	for _, e := range t.entries {
		counts[e.Circuit.Len()]++
	}
	return counts
}
