package synth

import (
	"github.com/fzabel/revsynth/pkg/circuit"
)

// DefaultHalfDepth is the per-side depth of the meet-in-the-middle search
// when the caller passes none. Total covered depth is twice the half depth.
const DefaultHalfDepth = 4

// A MeetInTheMiddle searcher trades memory for depth: it enumerates every
// permutation reachable within halfDepth gates once, then answers each query
// with a backward search of at most halfDepth more gates against that table.
// The table is built lazily on first use and reused across queries, or can
// be injected with [MeetInTheMiddle.SetTable] from a precomputed file.
type MeetInTheMiddle struct {
	set       *GateSet
	halfDepth int
	table     *Table
}

// NewMeetInTheMiddle returns a searcher over set. halfDepth <= 0 selects
// [DefaultHalfDepth].
func NewMeetInTheMiddle(set *GateSet, halfDepth int) *MeetInTheMiddle {
	if halfDepth <= 0 {
		halfDepth = DefaultHalfDepth
	}
	return &MeetInTheMiddle{set: set, halfDepth: halfDepth}
}

// Prepare builds the forward reachability table if it is not built or
// injected yet, and returns it. Synthesize calls it lazily; callers that
// want the construction cost up front invoke it directly.
func (m *MeetInTheMiddle) Prepare() *Table {
	if m.table == nil {
		m.table = NewExact(m.set).EnumerateAll(m.halfDepth)
	}
	return m.table
}

// SetTable injects a precomputed forward table. The backward search bound
// follows the injected table's depth.
func (m *MeetInTheMiddle) SetTable(t *Table) error {
	if t.Width() != m.set.width {
		return ErrTableWidth
	}
	m.table = t
	if d := t.Depth(); d > 0 {
		m.halfDepth = d
	}
	return nil
}

// TableSize reports the number of entries in the forward table, building it
// first if needed.
func (m *MeetInTheMiddle) TableSize() int { return m.Prepare().Size() }

// Synthesize returns a circuit realizing target, or nil when the bounded
// backward search exhausts its frontier without a verified find. Joint
// circuits assembled at a meeting point are accepted only after their
// permutation verifies against target; injected tables are not trusted
// either, so a direct table hit is verified the same way.
func (m *MeetInTheMiddle) Synthesize(target circuit.Permutation) (*circuit.Circuit, error) {
	if target.Width() != m.set.width {
		return nil, ErrTargetWidth
	}
	table := m.Prepare()

	if c := table.Lookup(target); c != nil && c.Permutation().Equal(target) {
		return c, nil
	}

	backward := map[string]*circuit.Circuit{target.Key(): m.set.empty()}
	queue := []circuit.Permutation{target}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curCirc := backward[cur.Key()]
		if curCirc.Len() >= m.halfDepth {
			continue
		}
		for _, pg := range m.set.prepared {
			next := cur.Compose(pg.Perm)
			if e, ok := table.entries[next.Key()]; ok {
				bwd := curCirc.Clone()
				bwd.Prepend(pg.Gate)
				joint := e.Circuit.Concatenate(bwd.Inverse())
				if joint.Permutation().Equal(target) {
					return joint, nil
				}
			}
			k := next.Key()
			if _, ok := backward[k]; !ok {
				nc := curCirc.Clone()
				nc.Prepend(pg.Gate)
				backward[k] = nc
				queue = append(queue, next)
			}
		}
	}
	return nil, nil
}
