package motion

import (
	"fmt"
	"slices"
)

// MountRequest declares a node. Empty state names are inherited from the
// nearest ancestor that declares one.
type MountRequest struct {
	ID     NodeID
	Parent NodeID
	// Scope is the presence scope. Empty inherits the parent's scope; a
	// top-level node with no scope joins the root scope.
	Scope ScopeID

	Variants   *VariantTable
	Transition *Transition

	Initial string
	Animate string
	Exit    string
	While   map[Gesture]string

	// Index overrides the node's position in its parent's stagger order.
	Index *int
	// InitialDisabled mounts the node directly at its animate values.
	InitialDisabled bool
}

// scope is a presence scope: a group of nodes that share an orchestration
// mode.
type scope struct {
	opts ScopeOptions
	// pending holds entrants deferred by ModeWait, in request order.
	pending []*Node
}

func (s *Scene) scope(id ScopeID) *scope {
	sc, ok := s.scopes[id]
	if !ok {
		sc = &scope{}
		s.scopes[id] = sc
	}
	return sc
}

// SetOrchestrationMode sets the mode of a presence scope.
func (s *Scene) SetOrchestrationMode(id ScopeID, mode Mode) {
	s.scope(id).opts.Mode = mode
}

// SetScopeOptions replaces every option of a presence scope.
func (s *Scene) SetScopeOptions(id ScopeID, opts ScopeOptions) {
	s.scope(id).opts = opts
}

// ScopeOptions returns the options of a presence scope.
func (s *Scene) ScopeOptions(id ScopeID) ScopeOptions {
	if sc, ok := s.scopes[id]; ok {
		return sc.opts
	}
	return ScopeOptions{}
}

// Mount declares a node. The node starts animating on the next Update, so
// every node mounted before that frame is staggered as one batch.
//
// Configuration errors are returned immediately. When Mount is called while
// the scene is updating (from a subscriber or event sink) the node is queued
// for the next frame and problems with the tree, such as a duplicate ID, are
// reported as inconsistencies instead.
func (s *Scene) Mount(req MountRequest) error {
	if err := s.validateMount(req); err != nil {
		return err
	}
	if s.updating {
		s.queue(hostEvent{kind: hostMount, req: req})
		return nil
	}
	if err := s.checkTree(req); err != nil {
		return err
	}
	s.mount(req)
	return nil
}

// validateMount checks a request without looking at the tree.
func (s *Scene) validateMount(req MountRequest) error {
	const op = "Scene.Mount"
	if req.ID == "" {
		return &ConfigError{Op: op, Field: "id", Err: fmt.Errorf("%w: empty id", ErrUnknownNode)}
	}
	if req.Transition != nil {
		if err := req.Transition.Validate(); err != nil {
			return withContext(err, op, req.ID, "transition")
		}
	}
	check := func(field, name string) error {
		if name != "" && !req.Variants.Has(name) {
			return &ConfigError{Op: op, Node: req.ID, Field: field, Err: fmt.Errorf("%w: %q", ErrUnknownVariant, name)}
		}
		return nil
	}
	if err := check("initial", req.Initial); err != nil {
		return err
	}
	if err := check("animate", req.Animate); err != nil {
		return err
	}
	if err := check("exit", req.Exit); err != nil {
		return err
	}
	for _, g := range sortedKeys(req.While) {
		if g >= numGestures {
			return &ConfigError{Op: op, Node: req.ID, Field: "while", Err: fmt.Errorf("unknown gesture %d", g)}
		}
		if err := check("while."+g.String(), req.While[g]); err != nil {
			return err
		}
	}

	if v, ok := req.Variants.Lookup(req.Exit); ok {
		for _, p := range sortedKeys(v.Targets) {
			t := v.Targets[p]
			tr := v.Transition
			if t.Transition != nil {
				tr = t.Transition
			} else if tr == nil {
				tr = req.Transition
			}
			if tr == nil {
				tr = &s.defaults
			}
			if tr.For(p).Repeat == RepeatInfinite {
				return &ConfigError{Op: op, Node: req.ID, Field: "exit." + p.String(), Err: ErrInfiniteExit}
			}
		}
	}
	return nil
}

// checkTree checks a request against the current tree.
func (s *Scene) checkTree(req MountRequest) error {
	const op = "Scene.Mount"
	if _, ok := s.nodes[req.ID]; ok {
		return &ConfigError{Op: op, Node: req.ID, Field: "id", Err: ErrDuplicateNode}
	}
	if req.Parent == "" {
		return nil
	}
	p, ok := s.nodes[req.Parent]
	if !ok {
		return &ConfigError{Op: op, Node: req.ID, Field: "parent", Err: fmt.Errorf("%w: %q", ErrUnknownNode, req.Parent)}
	}
	if p.lifecycle == Exiting {
		return &ConfigError{Op: op, Node: req.ID, Field: "parent", Err: fmt.Errorf("%w: %q is exiting", ErrUnknownNode, req.Parent)}
	}
	return nil
}

func (s *Scene) mount(req MountRequest) {
	n := newNode(req)
	n.requestedAt = s.sched.now

	if req.Parent != "" {
		p := s.nodes[req.Parent]
		n.parent = p
		p.children = append(p.children, n)
		if n.Scope == "" {
			n.Scope = p.Scope
		}
	} else {
		s.roots = append(s.roots, n)
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n)
	delete(s.graves, n.ID)

	if s.debug {
		s.debugCheckTreeDepth(n)
		if n.parent != nil {
			s.debugCheckChildCount(n.parent)
		}
	}

	switch {
	case n.parent != nil && n.parent.pending:
		s.deferMount(n, s.scope(n.parent.Scope))
	case s.scope(n.Scope).opts.Mode == ModeWait && s.scopeExiting(n.Scope):
		s.deferMount(n, s.scope(n.Scope))
	default:
		s.staged = append(s.staged, n)
	}
}

// deferMount parks n until its scope has no exiting nodes.
func (s *Scene) deferMount(n *Node, sc *scope) {
	n.staged = false
	n.pending = true
	sc.pending = append(sc.pending, n)
	s.logger.Debug("mount deferred", "node", n.ID, "scope", n.Scope)
}

// flushStaged starts every staged node. Nodes whose parent is staged in the
// same batch are started by their parent's pass so they are staggered
// together.
func (s *Scene) flushStaged() {
	if len(s.staged) == 0 {
		return
	}
	batch := s.staged
	s.staged = nil

	fresh := make(map[*Node]bool, len(batch))
	for _, n := range batch {
		if !n.staged || n.lifecycle == Removed {
			continue
		}
		n.staged = false
		n.mountedAt = s.sched.now
		fresh[n] = true
		s.mounting = append(s.mounting, n)
		s.logger.Debug("node mounted", "node", n.ID, "scope", n.Scope, "t", n.mountedAt)
		s.emit(EventMounted, n, "")
	}
	for _, n := range batch {
		if !fresh[n] || (n.parent != nil && fresh[n.parent]) {
			continue
		}
		delay := 0.0
		if s.scope(n.Scope).opts.StaggerOrigin == StaggerFromRequest {
			delay = n.requestedAt - s.sched.now
		}
		s.resolveNode(n, n.tokenAbove(), &pass{fresh: fresh}, delay)
	}
}

// Unmount requests removal of a node. The returned signal fires once the
// node and its subtree have finished their exit animations and have been
// removed from the tree. Repeated requests return the same signal.
func (s *Scene) Unmount(id NodeID) (*Signal, error) {
	n, ok := s.nodes[id]
	if !ok {
		if sig, ok := s.graves[id]; ok {
			s.inconsistent(Inconsistency{Op: "Scene.Unmount", Node: id, Reason: "node already removed"})
			return sig, nil
		}
		return nil, &ConfigError{Op: "Scene.Unmount", Node: id, Err: ErrUnknownNode}
	}
	if n.signal == nil {
		n.signal = newSignal()
	}
	if s.updating {
		s.queue(hostEvent{kind: hostExit, node: n})
		return n.signal, nil
	}
	s.startExit(n)
	return n.signal, nil
}

// RequestExit is Unmount for callers that only need the signal. An unknown
// node is reported as an inconsistency and gets a signal that has already
// fired.
func (s *Scene) RequestExit(id NodeID) *Signal {
	sig, err := s.Unmount(id)
	if err != nil {
		s.inconsistent(Inconsistency{Op: "Scene.RequestExit", Node: id, Reason: err.Error()})
		return firedSignal(s.sched.now)
	}
	return sig
}

func (s *Scene) startExit(n *Node) {
	if n.signal == nil {
		n.signal = newSignal()
	}
	switch {
	case n.lifecycle == Removed:
		return
	case n.staged || n.pending:
		// Never shown; nothing to animate out.
		s.remove(n)
		return
	case n.lifecycle == Exiting:
		// Already leaving with an ancestor; track it so its own subtree can
		// finish first.
		if !slices.Contains(s.exiting, n) {
			s.exiting = append(s.exiting, n)
		}
		return
	}

	var unstarted []*Node
	for _, c := range n.children {
		c.walk(func(m *Node) {
			if m.staged || m.pending {
				unstarted = append(unstarted, m)
			}
		})
	}
	for _, m := range unstarted {
		if m.lifecycle != Removed {
			s.remove(m)
		}
	}

	n.walk(func(m *Node) {
		m.lifecycle = Exiting
	})
	s.exiting = append(s.exiting, n)
	s.logger.Debug("exit started", "node", n.ID, "scope", n.Scope, "t", s.sched.now)
	s.emit(EventExitStarted, n, "")

	sc := s.scope(n.Scope)
	switch sc.opts.Mode {
	case ModePopLayout:
		n.popped = true
		s.emit(EventLayoutPopped, n, "")
	case ModeWait:
		// Entrants staged in the same frame wait for this exit too. Parents
		// precede their children in s.staged, so children of deferred nodes
		// follow them.
		kept := s.staged[:0]
		for _, m := range s.staged {
			ownScope := m.Scope == n.Scope && (m.parent == nil || !m.parent.staged)
			if m.staged && (ownScope || (m.parent != nil && m.parent.pending)) {
				s.deferMount(m, sc)
				continue
			}
			kept = append(kept, m)
		}
		s.staged = kept
	}

	s.propagate(n, change{layer: layerExit})
}

// scopeExiting reports whether any exit in scope id is still running.
func (s *Scene) scopeExiting(id ScopeID) bool {
	for _, n := range s.exiting {
		if n.Scope == id && n.lifecycle == Exiting {
			return true
		}
	}
	return false
}

// blocking reports whether n has an animator that presence must wait for.
// Infinite animators only block when they drive an exit target.
func (n *Node) blocking() bool {
	for _, a := range n.animators {
		if a.exitBound || !a.infinite() {
			return true
		}
	}
	return false
}

func (n *Node) subtreeSettled() bool {
	settled := true
	n.walk(func(m *Node) {
		if settled && !m.frozen && m.blocking() {
			settled = false
		}
	})
	return settled
}

// completePresence advances lifecycles after a tick: finished entrances
// become Active, finished exits are removed and deferred entrants whose
// scope is clear are started.
func (s *Scene) completePresence() {
	mounting := s.mounting[:0]
	for _, n := range s.mounting {
		if n.lifecycle != Mounting {
			continue
		}
		if n.frozen || !n.blocking() {
			n.lifecycle = Active
			s.logger.Debug("node active", "node", n.ID, "t", s.sched.now)
			s.emit(EventActive, n, "")
			continue
		}
		mounting = append(mounting, n)
	}
	clear(s.mounting[len(mounting):])
	s.mounting = mounting

	exiting := s.exiting[:0]
	for _, n := range s.exiting {
		if n.lifecycle == Removed {
			continue
		}
		if n.subtreeSettled() {
			s.remove(n)
			continue
		}
		exiting = append(exiting, n)
	}
	clear(s.exiting[len(exiting):])
	s.exiting = exiting

	for _, id := range sortedKeys(s.scopes) {
		sc := s.scopes[id]
		if len(sc.pending) == 0 {
			continue
		}
		if sc.opts.Mode == ModeWait && s.scopeExiting(id) {
			continue
		}
		for _, n := range sc.pending {
			if !n.pending || n.lifecycle == Removed {
				continue
			}
			n.pending = false
			n.staged = true
			s.staged = append(s.staged, n)
		}
		sc.pending = nil
	}
	s.flushStaged()
}

// remove purges n and its subtree from the tree, firing every removal
// signal in it.
func (s *Scene) remove(n *Node) {
	if n.parent != nil {
		n.parent.removeChildByPtr(n)
	} else if i := slices.Index(s.roots, n); i >= 0 {
		s.roots = slices.Delete(s.roots, i, i+1)
	}

	var removed []*Node
	n.walk(func(m *Node) {
		removed = append(removed, m)
	})
	for _, m := range removed {
		s.sched.unregisterNode(m)
		shown := !m.staged && !m.pending
		m.lifecycle = Removed
		m.staged = false
		m.pending = false
		m.removedAt = s.sched.now
		if s.nodes[m.ID] == m {
			delete(s.nodes, m.ID)
		}
		sig := m.signal
		if sig == nil {
			sig = newSignal()
			m.signal = sig
		}
		s.graves[m.ID] = sig
		s.graveOrder = append(s.graveOrder, grave{id: m.ID, frame: s.sched.frame, sig: sig})
		sig.fire(s.sched.now)
		if shown {
			s.metrics.removed()
		}
		s.logger.Debug("node removed", "node", m.ID, "scope", m.Scope, "t", m.removedAt)
		s.emit(EventRemoved, m, "")
	}
}

// RemovedRetention is the number of frames a removed node's ID is remembered.
// Within that window the ID reports Removed and late requests for it are
// absorbed as inconsistencies; afterwards it is unknown.
const RemovedRetention = 600

// grave records one removal.
type grave struct {
	id    NodeID
	frame uint64
	sig   *Signal
}

// forgetRemoved drops removals older than RemovedRetention frames.
func (s *Scene) forgetRemoved() {
	i := 0
	for ; i < len(s.graveOrder); i++ {
		g := s.graveOrder[i]
		if s.sched.frame-g.frame < RemovedRetention {
			break
		}
		// A reused and removed again ID has a newer record.
		if s.graves[g.id] == g.sig {
			delete(s.graves, g.id)
		}
	}
	if i > 0 {
		s.graveOrder = slices.Delete(s.graveOrder, 0, i)
	}
}
