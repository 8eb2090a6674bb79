package motion

import (
	"fmt"
	"slices"
)

// StaggerDelay returns the extra start delay of the child at index out of
// count children scheduled by o. With StaggerDirection -1 the last child
// starts first. The result never depends on how far siblings have got.
func StaggerDelay(o Orchestration, index, count int) float64 {
	if count <= 0 {
		return o.DelayChildren
	}
	if o.StaggerDirection == -1 {
		index = count - 1 - index
	}
	return o.DelayChildren + float64(index)*o.StaggerChildren
}

// staggerIndices assigns stagger positions to children. Children with an
// explicit Index are ordered by it; the rest follow in declaration order.
// If two children claim the same index the whole group falls back to
// declaration order and an Inconsistency is returned.
func staggerIndices(children []*Node) (map[*Node]int, *Inconsistency) {
	out := make(map[*Node]int, len(children))
	explicit := false
	claimed := make(map[int]NodeID)
	for _, c := range children {
		if !c.hasIndex {
			continue
		}
		explicit = true
		if prev, dup := claimed[c.index]; dup {
			for i, c := range children {
				out[c] = i
			}
			return out, &Inconsistency{
				Op:     "stagger",
				Node:   c.ID,
				Reason: fmt.Sprintf("index %d already used by %q; using declaration order", c.index, prev),
			}
		}
		claimed[c.index] = c.ID
	}
	if !explicit {
		for i, c := range children {
			out[c] = i
		}
		return out, nil
	}

	// Stable sort keeps declaration order between unindexed children, which
	// go after all indexed ones.
	order := slices.Clone(children)
	slices.SortStableFunc(order, func(a, b *Node) int {
		switch {
		case a.hasIndex && b.hasIndex:
			return a.index - b.index
		case a.hasIndex:
			return -1
		case b.hasIndex:
			return 1
		}
		return 0
	})
	for i, c := range order {
		out[c] = i
	}
	return out, nil
}
