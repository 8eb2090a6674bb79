package motion

type hostEventKind uint8

const (
	hostMount hostEventKind = iota
	hostExit
	hostAnimate
	hostGestureStart
	hostGestureEnd
)

// hostEvent is a host request that arrived while the scene was updating.
// Requests made from subscriber callbacks or event sinks are queued so the
// tree never changes halfway through a frame; the queue is applied at the
// start of the next Update, before staged nodes are flushed.
type hostEvent struct {
	kind    hostEventKind
	node    *Node
	req     MountRequest
	name    string
	gesture Gesture
}

func (s *Scene) queue(e hostEvent) {
	s.injectQueue = append(s.injectQueue, e)
}

// Queued returns the number of host requests waiting for the next frame.
func (s *Scene) Queued() int {
	return len(s.injectQueue)
}

// processQueued applies every queued request in arrival order.
func (s *Scene) processQueued() {
	if len(s.injectQueue) == 0 {
		return
	}
	q := s.injectQueue
	s.injectQueue = nil
	for _, e := range q {
		switch e.kind {
		case hostMount:
			if err := s.checkTree(e.req); err != nil {
				s.inconsistent(Inconsistency{Op: "Scene.Mount", Node: e.req.ID, Reason: err.Error()})
				continue
			}
			s.mount(e.req)
		case hostExit:
			s.startExit(e.node)
		case hostAnimate:
			s.setAnimate(e.node, e.name)
		case hostGestureStart:
			s.setGesture(e.node, e.gesture, true)
		case hostGestureEnd:
			s.setGesture(e.node, e.gesture, false)
		}
	}
}
