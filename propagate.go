package motion

import (
	"fmt"
	"math"
)

// labels is the inherited-state token passed down the tree. Each field is the
// nearest declared label on the path from the top of the tree.
type labels struct {
	initial  string
	animate  string
	exit     string
	gestures [numGestures]string

	initialDisabled bool
}

// effective returns n's labels given the token inherited from its parent.
// A label declared on n wins for n and its descendants only.
func (n *Node) effective(tok labels) labels {
	out := tok
	if n.initial != "" {
		out.initial = n.initial
	}
	if n.animate != "" {
		out.animate = n.animate
	}
	if n.exit != "" {
		out.exit = n.exit
	}
	for g, name := range n.while {
		if name == "" {
			continue
		}
		if n.gestures[g] {
			out.gestures[g] = name
		} else {
			out.gestures[g] = ""
		}
	}
	out.initialDisabled = tok.initialDisabled || n.initialDisabled
	return out
}

// tokenAbove folds the labels of n's ancestors.
func (n *Node) tokenAbove() labels {
	var tok labels
	for _, a := range n.ancestors() {
		tok = a.effective(tok)
	}
	return tok
}

// layerKind says which layer a propagation pass was started for. It picks
// the variant whose orchestration staggers the children.
type layerKind uint8

const (
	layerBase layerKind = iota
	layerGesture
	layerExit
)

type change struct {
	layer   layerKind
	gesture Gesture
}

func (c change) label(l labels) string {
	switch c.layer {
	case layerGesture:
		return l.gestures[c.gesture]
	case layerExit:
		return l.exit
	default:
		return l.animate
	}
}

// inherits reports whether child follows its parent's label for the layer
// that changed.
func (c change) inherits(child *Node) bool {
	switch c.layer {
	case layerGesture:
		return child.while[c.gesture] == ""
	case layerExit:
		return child.exit == ""
	default:
		return child.animate == ""
	}
}

// pass is one top-down propagation.
type pass struct {
	change change
	// fresh holds the nodes being mounted by this pass. Only they are
	// visited; nil means every live node is.
	fresh map[*Node]bool
}

// propagate re-resolves n and its subtree after a label or gesture change.
func (s *Scene) propagate(n *Node, c change) {
	s.resolveNode(n, n.tokenAbove(), &pass{change: c}, 0)
}

func (s *Scene) resolveNode(n *Node, tok labels, p *pass, delay float64) {
	if p.fresh != nil {
		if !p.fresh[n] {
			return
		}
	} else if !n.live() {
		return
	}

	eff := n.effective(tok)
	if p.fresh != nil {
		s.initValues(n, eff)
	}
	if !n.frozen {
		s.applyLayers(n, eff, delay)
	}

	var participants []*Node
	for _, c := range n.children {
		if p.change.inherits(c) && ((p.fresh == nil && c.live()) || p.fresh[c]) {
			participants = append(participants, c)
		}
	}
	orch := n.orchestration(p.change.label(eff))
	idx, inc := staggerIndices(participants)
	if inc != nil {
		s.inconsistent(*inc)
	}
	for _, c := range n.children {
		d := delay
		if i, ok := idx[c]; ok {
			d += StaggerDelay(orch, i, len(participants))
		}
		s.resolveNode(c, eff, p, d)
	}
}

// orchestration returns the child scheduling of the named variant, falling
// back to the node's own transition.
func (n *Node) orchestration(label string) Orchestration {
	if v, ok := n.variants.Lookup(label); ok && v.Transition != nil {
		return v.Transition.Orchestration
	}
	if n.transition != nil {
		return n.transition.Orchestration
	}
	return Orchestration{StaggerDirection: 1}
}

// layers builds n's state layers for the effective labels. Properties seen
// for the first time are added to the baseline.
func (n *Node) layers(eff labels) Layers {
	var l Layers
	if v, ok := n.variants.Lookup(eff.animate); ok {
		l.Base = v.targets()
	}
	for g, name := range eff.gestures {
		if v, ok := n.variants.Lookup(name); ok {
			l.Gestures[g] = v.targets()
		}
	}
	if n.lifecycle == Exiting {
		l.Exiting = true
		if v, ok := n.variants.Lookup(eff.exit); ok {
			l.Exit = v.targets()
		}
	}
	for _, p := range l.properties() {
		if _, ok := n.baseline[p]; ok {
			continue
		}
		if v, ok := n.values[p]; ok {
			n.baseline[p] = v
		} else {
			n.baseline[p] = DefaultValue(p)
		}
	}
	l.Baseline = n.baseline
	return l
}

// initValues sets the values a node starts from when it mounts. Without an
// initial label, or with initial disabled, the node starts at its targets.
func (s *Scene) initValues(n *Node, eff labels) {
	v, ok := n.variants.Lookup(eff.initial)
	if eff.initialDisabled || !ok {
		for p, t := range Resolve(n.layers(eff)) {
			n.setValue(p, t.Value)
		}
	} else {
		for p, t := range v.Targets {
			if !math.IsNaN(t.Value) {
				n.setValue(p, t.Value)
			}
		}
	}
	n.baseline = n.values.Clone()
	n.dirty = true
}

func (s *Scene) applyLayers(n *Node, eff labels, delay float64) {
	l := n.layers(eff)
	targets := Resolve(l)
	for _, p := range sortedKeys(targets) {
		_, exitBound := l.Exit[p]
		s.applyTarget(n, p, targets[p], delay, l.Exiting && exitBound)
	}
}

// applyTarget points the animator for p at t. A running animator is
// retargeted in place; a new one is only created when the value has to move.
func (s *Scene) applyTarget(n *Node, p Property, t Target, delay float64, exitBound bool) {
	trans := s.transitionFor(n, t, p)
	if exitBound && trans.Repeat == RepeatInfinite {
		s.inconsistent(Inconsistency{
			Op:     "exit",
			Node:   n.ID,
			Reason: fmt.Sprintf("exit transition for %s repeats forever; playing it once", p),
		})
		trans.Repeat = 0
	}

	cur, ok := n.values[p]
	if !ok {
		cur = n.baseline[p]
		n.setValue(p, cur)
	}

	if a := n.animators[p]; a != nil {
		if a.Target() == t.Value && a.infinite() == (trans.Repeat == RepeatInfinite) {
			a.exitBound = a.exitBound || exitBound
			return
		}
		a.retarget(t.Value, trans, delay)
		a.exitBound = exitBound
		return
	}
	if r, ok := n.rest[p]; ok {
		if r == t.Value {
			return
		}
		delete(n.rest, p)
	}
	if cur == t.Value {
		return
	}
	a := newAnimator(p, cur, 0, t.Value, trans, delay)
	a.exitBound = exitBound
	s.sched.register(n, a)
}

// transitionFor picks the transition for p: the target's own, then the
// node's, then the scene default.
func (s *Scene) transitionFor(n *Node, t Target, p Property) Transition {
	switch {
	case t.Transition != nil:
		return t.Transition.For(p)
	case n.transition != nil:
		return n.transition.For(p)
	default:
		return s.defaults.For(p)
	}
}
