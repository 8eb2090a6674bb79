package motion

// animKey addresses an animator by the node that owns it and its property.
type animKey struct {
	node NodeID
	prop Property
}

type schedEntry struct {
	key  animKey
	node *Node
	anim *Animator
	dead bool
}

// scheduler is the registry of running animators and the scene clock. It is
// mutated only between ticks.
type scheduler struct {
	now   float64
	frame uint64

	active map[animKey]*schedEntry
	// order keeps registration order so ticks are deterministic. Dead
	// entries are compacted out on the next tick.
	order []*schedEntry
}

func newScheduler() scheduler {
	return scheduler{active: make(map[animKey]*schedEntry)}
}

// register adds or replaces the animator for (n, a.Property).
func (s *scheduler) register(n *Node, a *Animator) {
	key := animKey{n.ID, a.Property}
	n.animators[a.Property] = a
	if e, ok := s.active[key]; ok {
		if e.node == n {
			e.anim = a
			return
		}
		e.dead = true
	}
	e := &schedEntry{key: key, node: n, anim: a}
	s.active[key] = e
	s.order = append(s.order, e)
}

// unregister drops the animator for (n, p), if any.
func (s *scheduler) unregister(n *Node, p Property) {
	key := animKey{n.ID, p}
	if e, ok := s.active[key]; ok && e.node == n {
		e.dead = true
		delete(s.active, key)
	}
	delete(n.animators, p)
}

// unregisterNode drops every animator of n.
func (s *scheduler) unregisterNode(n *Node) {
	for p := range n.animators {
		s.unregister(n, p)
	}
}

// tick advances every registered animator by dt. Values are written to the
// owning nodes; animators that settle are dropped from the registry.
func (s *scheduler) tick(dt float64) (ticked int) {
	live := s.order[:0]
	for _, e := range s.order {
		if e.dead {
			continue
		}
		v := e.anim.Tick(dt)
		ticked++
		e.node.setValue(e.key.prop, v)
		if e.anim.Settled() {
			e.dead = true
			delete(s.active, e.key)
			if e.node.animators[e.key.prop] == e.anim {
				delete(e.node.animators, e.key.prop)
				e.node.settle(e.key.prop, e.anim.Target())
			}
			continue
		}
		live = append(live, e)
	}
	clear(s.order[len(live):])
	s.order = live
	s.frame++
	s.now += dt
	return ticked
}

// len returns the number of running animators.
func (s *scheduler) len() int {
	return len(s.active)
}
