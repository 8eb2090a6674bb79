package motion

// Node is one entry of the animation tree. Nodes are created by Scene.Mount
// and owned by the Scene's arena; hosts address them by NodeID and read them
// through the accessor methods.
type Node struct {
	// Identity
	ID    NodeID
	Scope ScopeID

	// Hierarchy. children is in declaration order, which is also the default
	// stagger order.
	parent   *Node
	children []*Node

	// Declaration
	variants        *VariantTable
	transition      *Transition
	initial         string
	animate         string
	exit            string
	while           [numGestures]string
	initialDisabled bool
	index           int
	hasIndex        bool

	// Runtime state
	lifecycle Lifecycle
	gestures  [numGestures]bool
	values    Values
	baseline  Values
	animators map[Property]*Animator
	// rest holds the target each finished animator was aiming for. A
	// repeating tween can finish away from its target, so the target, not
	// the value, tells whether the property still has to move.
	rest map[Property]float64

	frozen  bool
	popped  bool
	staged  bool
	pending bool
	dirty   bool

	requestedAt float64
	mountedAt   float64
	removedAt   float64

	// signal is set once removal has been requested for this node.
	signal *Signal
	subs   []subscriber
}

type subscriber struct {
	id uint64
	fn func(NodeID, Values)
}

func newNode(req MountRequest) *Node {
	n := &Node{
		ID:              req.ID,
		Scope:           req.Scope,
		variants:        req.Variants,
		initial:         req.Initial,
		animate:         req.Animate,
		exit:            req.Exit,
		initialDisabled: req.InitialDisabled,
		lifecycle:       Mounting,
		values:          make(Values),
		baseline:        make(Values),
		animators:       make(map[Property]*Animator),
		staged:          true,
	}
	if req.Transition != nil {
		tr := req.Transition.normalized()
		n.transition = &tr
	}
	if req.Index != nil {
		n.index, n.hasIndex = *req.Index, true
	}
	for g, name := range req.While {
		if g < numGestures {
			n.while[g] = name
		}
	}
	return n
}

// Lifecycle returns the node's presence state.
func (n *Node) Lifecycle() Lifecycle {
	return n.lifecycle
}

// Parent returns the node's parent, or nil for a top-level node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// Values returns a copy of the node's current values.
func (n *Node) Values() Values {
	return n.values.Clone()
}

// Value returns the current value of p.
func (n *Node) Value(p Property) (float64, bool) {
	v, ok := n.values[p]
	return v, ok
}

// Animating reports whether any animator of the node is still running.
func (n *Node) Animating() bool {
	return len(n.animators) > 0
}

// Frozen reports whether the node stopped animating after a bad variant
// reference.
func (n *Node) Frozen() bool {
	return n.frozen
}

// Popped reports whether the node has been dropped from layout while its
// exit animation runs.
func (n *Node) Popped() bool {
	return n.popped
}

// MountedAt returns the scene time the node started mounting.
func (n *Node) MountedAt() float64 {
	return n.mountedAt
}

// RemovedAt returns the scene time the node was removed, or 0.
func (n *Node) RemovedAt() float64 {
	return n.removedAt
}

// GestureActive reports whether g is active on this node.
func (n *Node) GestureActive(g Gesture) bool {
	return g < numGestures && n.gestures[g]
}

// --- Tree helpers ---

// live reports whether the node has been flushed into the animated tree.
func (n *Node) live() bool {
	return !n.staged && !n.pending && n.lifecycle != Removed
}

// walk calls fn for n and every descendant, parents first.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// ancestors returns n's ancestors, root first.
func (n *Node) ancestors() []*Node {
	var out []*Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// depth returns the number of nodes from n up to its top-level ancestor.
func (n *Node) depth() int {
	d := 0
	for p := n; p != nil; p = p.parent {
		d++
	}
	return d
}

// removeChildByPtr removes child from n.children without clearing
// child.parent. Uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// settle records that the animator for p finished aiming at target.
func (n *Node) settle(p Property, target float64) {
	if n.rest == nil {
		n.rest = make(map[Property]float64)
	}
	n.rest[p] = target
}

// setValue records v for p and marks the node for the next notification
// batch if it changed.
func (n *Node) setValue(p Property, v float64) {
	if old, ok := n.values[p]; ok && old == v {
		return
	}
	n.values[p] = v
	n.dirty = true
}
