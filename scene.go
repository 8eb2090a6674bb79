package motion

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/phanxgames/motion/internal/logging"
)

// Scene is the top-level object that owns the node arena, the scheduler and
// the presence scopes. A Scene is not safe for concurrent use; the host drives
// it from one goroutine by calling Update once per frame.
type Scene struct {
	nodes  map[NodeID]*Node
	roots  []*Node
	order  []*Node // every node in mount order, compacted on notify
	graves map[NodeID]*Signal
	// graveOrder lists removals oldest first so graves can be pruned.
	graveOrder []grave

	scopes   map[ScopeID]*scope
	staged   []*Node
	mounting []*Node
	exiting  []*Node

	sched    scheduler
	defaults Transition

	updating    bool
	injectQueue []hostEvent
	subSeq      uint64

	logger  *slog.Logger
	metrics *Metrics
	sink    EventSink
	script  *ScriptRunner
	debug   bool

	// OnFrame, if set, is called at the end of every Update with the frame
	// number and scene time.
	OnFrame func(frame uint64, now float64)
}

// NewScene creates an empty scene using DefaultTransition.
func NewScene() *Scene {
	return &Scene{
		nodes:    make(map[NodeID]*Node),
		graves:   make(map[NodeID]*Signal),
		scopes:   make(map[ScopeID]*scope),
		sched:    newScheduler(),
		defaults: DefaultTransition(),
		logger:   logging.NewNop(),
	}
}

// SetLogger sets the logger. A nil logger discards everything.
func (s *Scene) SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.NewNop()
	}
	s.logger = l
}

// SetMetrics sets the optional Prometheus collectors.
func (s *Scene) SetMetrics(m *Metrics) {
	s.metrics = m
}

// SetEventSink sets the optional lifecycle event sink.
func (s *Scene) SetEventSink(sink EventSink) {
	s.sink = sink
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings and per-frame stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// SetDefaultTransition sets the transition used by targets, variants and
// nodes that declare none.
func (s *Scene) SetDefaultTransition(t Transition) error {
	t = t.normalized()
	if err := t.Validate(); err != nil {
		return withContext(err, "Scene.SetDefaultTransition", "", "")
	}
	s.defaults = t
	return nil
}

// DefaultTransition returns the scene's default transition.
func (s *Scene) DefaultTransition() Transition {
	return s.defaults
}

// Update advances the scene by dt seconds. Within a frame every animator
// ticks before any subscriber is notified, and subscribers are notified once
// per node whose values changed.
func (s *Scene) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	t0 := time.Now()
	var stats debugStats

	if s.script != nil {
		s.script.step(s)
	}

	s.updating = true
	s.processQueued()
	s.flushStaged()

	t1 := time.Now()
	stats.ticked = s.sched.tick(dt)
	stats.tickTime = time.Since(t1)

	t1 = time.Now()
	stats.notified = s.notify()
	stats.notifyTime = time.Since(t1)

	t1 = time.Now()
	s.completePresence()
	s.forgetRemoved()
	stats.presenceTime = time.Since(t1)
	s.updating = false

	if s.metrics != nil || s.debug {
		counts := s.lifecycleCounts()
		s.metrics.observeFrame(time.Since(t0).Seconds(), s.sched.len(), counts)
		stats.animators = s.sched.len()
		stats.nodes = counts
		s.debugLog(stats)
	}
	if s.OnFrame != nil {
		s.OnFrame(s.sched.frame, s.sched.now)
	}
}

// Settle runs frames of dt until the scene is idle or maxFrames have run.
// It returns the number of frames run and whether the scene became idle.
func (s *Scene) Settle(dt float64, maxFrames int) (int, bool) {
	for i := range maxFrames {
		if s.Idle() {
			return i, true
		}
		s.Update(dt)
	}
	return maxFrames, s.Idle()
}

// Idle reports whether nothing is animating, waiting or queued, and any
// attached script has finished.
func (s *Scene) Idle() bool {
	return s.settled() && (s.script == nil || s.script.Done())
}

func (s *Scene) settled() bool {
	if s.sched.len() > 0 || len(s.staged) > 0 || len(s.mounting) > 0 || len(s.injectQueue) > 0 {
		return false
	}
	for _, n := range s.exiting {
		if n.lifecycle != Removed {
			return false
		}
	}
	for _, sc := range s.scopes {
		if len(sc.pending) > 0 {
			return false
		}
	}
	return true
}

// Now returns the scene time in seconds.
func (s *Scene) Now() float64 {
	return s.sched.now
}

// Frame returns the number of completed frames.
func (s *Scene) Frame() uint64 {
	return s.sched.frame
}

// ActiveAnimators returns the number of running animators.
func (s *Scene) ActiveAnimators() int {
	return s.sched.len()
}

// --- Tree queries ---

// Node returns the node with the given ID, or nil.
func (s *Scene) Node(id NodeID) *Node {
	return s.nodes[id]
}

// Children returns the IDs of id's children in declaration order. The empty
// ID lists top-level nodes.
func (s *Scene) Children(id NodeID) []NodeID {
	return s.childIDs(id, false)
}

// LayoutChildren is Children without the nodes that have been popped out of
// layout by a ModePopLayout exit.
func (s *Scene) LayoutChildren(id NodeID) []NodeID {
	return s.childIDs(id, true)
}

func (s *Scene) childIDs(id NodeID, layoutOnly bool) []NodeID {
	list := s.roots
	if id != "" {
		n, ok := s.nodes[id]
		if !ok {
			return nil
		}
		list = n.children
	}
	out := make([]NodeID, 0, len(list))
	for _, c := range list {
		if layoutOnly && c.popped {
			continue
		}
		out = append(out, c.ID)
	}
	return out
}

// Parent returns the parent of id. ok is false for unknown nodes; a
// top-level node returns "", true.
func (s *Scene) Parent(id NodeID) (parent NodeID, ok bool) {
	n, ok := s.nodes[id]
	if !ok {
		return "", false
	}
	if n.parent == nil {
		return "", true
	}
	return n.parent.ID, true
}

// Values returns a copy of id's current values, or nil for unknown nodes.
func (s *Scene) Values(id NodeID) Values {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	return n.values.Clone()
}

// Lifecycle returns the presence state of id. A node that has been removed
// reports Removed until its ID is reused or RemovedRetention frames have
// passed.
func (s *Scene) Lifecycle(id NodeID) (Lifecycle, bool) {
	if n, ok := s.nodes[id]; ok {
		return n.lifecycle, true
	}
	if _, ok := s.graves[id]; ok {
		return Removed, true
	}
	return 0, false
}

// --- Declared state changes ---

// SetAnimate changes the animate label of id. The empty name inherits from
// the parent again. An unknown name is a configuration error: the node
// freezes at its current values and its descendants keep following the last
// good label.
func (s *Scene) SetAnimate(id NodeID, name string) error {
	n, ok := s.nodes[id]
	if !ok {
		if _, removed := s.graves[id]; removed {
			s.inconsistent(Inconsistency{Op: "Scene.SetAnimate", Node: id, Reason: "node already removed"})
			return nil
		}
		return &ConfigError{Op: "Scene.SetAnimate", Node: id, Err: ErrUnknownNode}
	}
	var err error
	if name != "" && !n.variants.Has(name) {
		err = &ConfigError{Op: "Scene.SetAnimate", Node: id, Field: "animate", Err: fmt.Errorf("%w: %q", ErrUnknownVariant, name)}
	}
	if s.updating {
		s.queue(hostEvent{kind: hostAnimate, node: n, name: name})
		return err
	}
	s.setAnimate(n, name)
	return err
}

func (s *Scene) setAnimate(n *Node, name string) {
	if n.lifecycle == Removed {
		s.inconsistent(Inconsistency{Op: "Scene.SetAnimate", Node: n.ID, Reason: "node already removed"})
		return
	}
	if name != "" && !n.variants.Has(name) {
		s.freeze(n, fmt.Sprintf("unknown variant %q", name))
		return
	}
	n.animate = name
	n.frozen = false
	if n.live() {
		s.propagate(n, change{layer: layerBase})
	}
}

// freeze stops n at its current values.
func (s *Scene) freeze(n *Node, reason string) {
	s.sched.unregisterNode(n)
	n.frozen = true
	s.logger.Warn("node frozen", "node", n.ID, "reason", reason)
}

// GestureStart activates gesture g on id. Gestures on exiting nodes are
// ignored.
func (s *Scene) GestureStart(id NodeID, g Gesture) {
	s.gesture(id, g, true)
}

// GestureEnd deactivates gesture g on id. Properties the overlay set return
// to whatever the lower layers specify now.
func (s *Scene) GestureEnd(id NodeID, g Gesture) {
	s.gesture(id, g, false)
}

func (s *Scene) gesture(id NodeID, g Gesture, active bool) {
	op := "Scene.GestureEnd"
	if active {
		op = "Scene.GestureStart"
	}
	n, ok := s.nodes[id]
	if !ok {
		s.inconsistent(Inconsistency{Op: op, Node: id, Reason: "unknown or removed node"})
		return
	}
	if g >= numGestures {
		s.inconsistent(Inconsistency{Op: op, Node: id, Reason: fmt.Sprintf("unknown gesture %d", g)})
		return
	}
	kind := hostGestureEnd
	if active {
		kind = hostGestureStart
	}
	if s.updating {
		s.queue(hostEvent{kind: kind, node: n, gesture: g})
		return
	}
	s.setGesture(n, g, active)
}

func (s *Scene) setGesture(n *Node, g Gesture, active bool) {
	if n.lifecycle == Exiting || n.lifecycle == Removed {
		s.logger.Debug("gesture ignored", "node", n.ID, "gesture", g.String(), "lifecycle", n.lifecycle.String())
		return
	}
	if n.gestures[g] == active {
		return
	}
	n.gestures[g] = active
	if n.live() {
		s.propagate(n, change{layer: layerGesture, gesture: g})
	}
}

// --- Subscriptions ---

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	node *Node
	id   uint64
}

// Remove stops the subscription. It is safe to call more than once.
func (sub Subscription) Remove() {
	if sub.node == nil {
		return
	}
	sub.node.subs = slices.DeleteFunc(sub.node.subs, func(s subscriber) bool {
		return s.id == sub.id
	})
}

// Subscribe registers fn to receive id's values once per frame in which they
// changed. The Values passed to fn are a copy owned by fn. Subscriptions end
// when the node is removed.
func (s *Scene) Subscribe(id NodeID, fn func(NodeID, Values)) Subscription {
	n, ok := s.nodes[id]
	if !ok {
		s.inconsistent(Inconsistency{Op: "Scene.Subscribe", Node: id, Reason: "unknown or removed node"})
		return Subscription{}
	}
	s.subSeq++
	n.subs = append(n.subs, subscriber{id: s.subSeq, fn: fn})
	return Subscription{node: n, id: s.subSeq}
}

// notify delivers one batch: every dirty node in mount order, after all
// animators have ticked. Removed nodes are compacted out of s.order.
func (s *Scene) notify() int {
	count := 0
	live := s.order[:0]
	for _, n := range s.order {
		if n.dirty {
			n.dirty = false
			count++
			for _, sub := range slices.Clone(n.subs) {
				sub.fn(n.ID, n.values.Clone())
			}
		}
		if n.lifecycle != Removed {
			live = append(live, n)
		}
	}
	clear(s.order[len(live):])
	s.order = live
	return count
}

// --- Reporting ---

// inconsistent reports a recoverable runtime problem.
func (s *Scene) inconsistent(i Inconsistency) {
	s.logger.Warn("runtime inconsistency", "op", i.Op, "node", i.Node, "reason", i.Reason)
	s.metrics.inconsistency(i.Op)
	if s.sink != nil {
		s.sink.EmitEvent(LifecycleEvent{
			Type:   EventInconsistency,
			Node:   i.Node,
			Time:   s.sched.now,
			Frame:  s.sched.frame,
			Reason: i.Reason,
		})
	}
}

func (s *Scene) lifecycleCounts() [numLifecycles]int {
	var counts [numLifecycles]int
	for _, n := range s.nodes {
		counts[n.lifecycle]++
	}
	return counts
}
