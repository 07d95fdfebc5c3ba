package synth

import (
	"github.com/fzabel/revsynth/pkg/circuit"
)

// DefaultMaxDepth bounds the exact searches when the caller passes no
// explicit depth.
const DefaultMaxDepth = 10

// An Exact searcher runs breadth-first strategies over a gate set. BFS
// results are provably minimal in gate count; Bidirectional returns the
// first join of its frontiers that verifies, which is close to minimal but
// carries no guarantee. A nil circuit with a nil error means no circuit was
// found within the depth bound.
type Exact struct {
	set *GateSet
}

// NewExact returns an exact searcher over set.
func NewExact(set *GateSet) *Exact { return &Exact{set: set} }

// BFS returns a shortest circuit realizing target, or nil when no circuit of
// at most maxDepth gates does. maxDepth <= 0 selects [DefaultMaxDepth]. The
// identity target yields an empty circuit.
func (e *Exact) BFS(target circuit.Permutation, maxDepth int) (*circuit.Circuit, error) {
	if target.Width() != e.set.width {
		return nil, ErrTargetWidth
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if target.IsIdentity() {
		return e.set.empty(), nil
	}

	type node struct {
		perm circuit.Permutation
		circ *circuit.Circuit
	}
	identity := circuit.IdentityPermutation(e.set.width)
	visited := map[string]struct{}{identity.Key(): {}}
	queue := []node{{perm: identity, circ: e.set.empty()}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.circ.Len() >= maxDepth {
			continue
		}
		for _, pg := range e.set.prepared {
			next := cur.perm.Compose(pg.Perm)
			if next.Equal(target) {
				// The walk composes each gate on the input side, so the
				// gate lands at the front of the circuit.
				result := cur.circ.Clone()
				result.Prepend(pg.Gate)
				return result, nil
			}
			k := next.Key()
			if _, ok := visited[k]; ok {
				continue
			}
			visited[k] = struct{}{}
			nc := cur.circ.Clone()
			nc.Prepend(pg.Gate)
			queue = append(queue, node{perm: next, circ: nc})
		}
	}
	return nil, nil
}

// Bidirectional searches from the identity and from the target at the same
// time, advancing each frontier by one layer per round. The forward map
// holds circuits realizing their permutation; the backward map holds, for a
// permutation p, a circuit that carries the target to p, so at a meeting
// point the joint circuit is forward joined with the inverse of backward.
//
// A joint circuit is accepted only when its permutation verifies against
// target; a meet that fails verification counts as a miss and the search
// continues. Meets fail whenever the meeting permutation does not commute
// with the target, so coverage beyond one side's own depth is opportunistic.
// Each side still meets the other's starting point directly, which makes
// every target within a single frontier's reach a guaranteed find. Returns
// nil when the frontiers never verifiably meet within maxDepth.
// maxDepth <= 0 selects [DefaultMaxDepth].
func (e *Exact) Bidirectional(target circuit.Permutation, maxDepth int) (*circuit.Circuit, error) {
	if target.Width() != e.set.width {
		return nil, ErrTargetWidth
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if target.IsIdentity() {
		return e.set.empty(), nil
	}

	identity := circuit.IdentityPermutation(e.set.width)
	forward := map[string]Entry{identity.Key(): {Perm: identity, Circuit: e.set.empty()}}
	backward := map[string]Entry{target.Key(): {Perm: target, Circuit: e.set.empty()}}
	forwardQueue := []circuit.Permutation{identity}
	backwardQueue := []circuit.Permutation{target}

	for depth := 0; depth <= maxDepth/2; depth++ {
		var found *circuit.Circuit
		forwardQueue, found = e.expandLayer(target, depth, forward, backward, forwardQueue, true)
		if found != nil {
			return found, nil
		}
		backwardQueue, found = e.expandLayer(target, depth, backward, forward, backwardQueue, false)
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}

// expandLayer advances one frontier of the bidirectional search by a single
// layer. own is the expanding side's map, other the opposing side's. Nodes
// deeper than the current layer are deferred to the returned queue. On a
// verified meet the joint circuit is returned; an unverified meet falls
// through to the normal insert so the search keeps going.
func (e *Exact) expandLayer(target circuit.Permutation, depth int, own, other map[string]Entry, queue []circuit.Permutation, forwardSide bool) ([]circuit.Permutation, *circuit.Circuit) {
	var next []circuit.Permutation
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curEntry := own[cur.Key()]
		if curEntry.Circuit.Len() > depth {
			next = append(next, cur)
			continue
		}
		for _, pg := range e.set.prepared {
			newPerm := cur.Compose(pg.Perm)
			if meet, ok := other[newPerm.Key()]; ok {
				stepped := curEntry.Circuit.Clone()
				stepped.Prepend(pg.Gate)
				var joint *circuit.Circuit
				if forwardSide {
					joint = stepped.Concatenate(meet.Circuit.Inverse())
				} else {
					joint = meet.Circuit.Concatenate(stepped.Inverse())
				}
				if joint.Permutation().Equal(target) {
					return nil, joint
				}
			}
			k := newPerm.Key()
			if _, ok := own[k]; !ok {
				nc := curEntry.Circuit.Clone()
				nc.Prepend(pg.Gate)
				own[k] = Entry{Perm: newPerm, Circuit: nc}
				next = append(next, newPerm)
			}
		}
	}
	return next, nil
}

// EnumerateAll builds the reachability table for set within maxDepth gates.
// Shorthand for NewExact(set).EnumerateAll(maxDepth) for callers that never
// touch the searcher itself.
func EnumerateAll(set *GateSet, maxDepth int) (*Table, error) {
	if set == nil || len(set.prepared) == 0 {
		return nil, ErrEmptyGateSet
	}
	return NewExact(set).EnumerateAll(maxDepth), nil
}

// EnumerateAll breadth-first enumerates every permutation reachable within
// maxDepth gates and returns a table holding one minimal circuit per
// permutation. The identity is always present with an empty circuit.
func (e *Exact) EnumerateAll(maxDepth int) *Table {
	if maxDepth < 0 {
		maxDepth = 0
	}
	t := &Table{width: e.set.width, depth: maxDepth, entries: make(map[string]Entry)}

	identity := circuit.IdentityPermutation(e.set.width)
	t.entries[identity.Key()] = Entry{Perm: identity, Circuit: e.set.empty()}
	queue := []circuit.Permutation{identity}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curCirc := t.entries[cur.Key()].Circuit
		if curCirc.Len() >= maxDepth {
			continue
		}
		for _, pg := range e.set.prepared {
			newPerm := cur.Compose(pg.Perm)
			k := newPerm.Key()
			if _, ok := t.entries[k]; ok {
				continue
			}
			nc := curCirc.Clone()
			nc.Prepend(pg.Gate)
			t.entries[k] = Entry{Perm: newPerm, Circuit: nc}
			queue = append(queue, newPerm)
		}
	}
	return t
}
