package motion

import "fmt"

// EventType identifies a lifecycle event.
type EventType uint8

const (
	EventMounted EventType = iota
	EventActive
	EventExitStarted
	EventLayoutPopped
	EventRemoved
	EventInconsistency
)

func (t EventType) String() string {
	switch t {
	case EventMounted:
		return "mounted"
	case EventActive:
		return "active"
	case EventExitStarted:
		return "exitStarted"
	case EventLayoutPopped:
		return "layoutPopped"
	case EventRemoved:
		return "removed"
	case EventInconsistency:
		return "inconsistency"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// LifecycleEvent reports a presence transition or an absorbed runtime
// inconsistency.
type LifecycleEvent struct {
	Type  EventType
	Node  NodeID
	Scope ScopeID
	Time  float64
	Frame uint64
	// Reason is set for EventInconsistency.
	Reason string
}

// EventSink is the interface for optional integrations that observe
// lifecycle events, such as the ECS bridge in the ecs package.
type EventSink interface {
	EmitEvent(event LifecycleEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(LifecycleEvent)

func (f EventSinkFunc) EmitEvent(e LifecycleEvent) { f(e) }

func (s *Scene) emit(t EventType, n *Node, reason string) {
	if s.sink == nil {
		return
	}
	e := LifecycleEvent{Type: t, Time: s.sched.now, Frame: s.sched.frame, Reason: reason}
	if n != nil {
		e.Node = n.ID
		e.Scope = n.Scope
	}
	s.sink.EmitEvent(e)
}
