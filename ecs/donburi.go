package ecs

import (
	"github.com/phanxgames/motion"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for motion lifecycle events.
// Subscribe to this in your ECS systems to receive mount, exit, and removal
// notifications.
var LifecycleEventType = events.NewEventType[motion.LifecycleEvent]()

// NodeData mirrors the presence state of one motion node.
type NodeData struct {
	ID        motion.NodeID
	Scope     motion.ScopeID
	Lifecycle motion.Lifecycle
	Popped    bool
}

// Node is the component attached to entities created by the bridge.
var Node = donburi.NewComponentType[NodeData]()

// Bridge is a motion.EventSink that republishes lifecycle events into a
// Donburi world and keeps one entity per mounted node.
type Bridge struct {
	world    donburi.World
	entities map[motion.NodeID]donburi.Entity
}

// NewBridge creates a Bridge backed by world. Install it with
// Scene.SetEventSink.
func NewBridge(world donburi.World) *Bridge {
	return &Bridge{world: world, entities: make(map[motion.NodeID]donburi.Entity)}
}

// Entity returns the entity tracking id, if the node is still present.
func (b *Bridge) Entity(id motion.NodeID) (donburi.Entity, bool) {
	e, ok := b.entities[id]
	if !ok || !b.world.Valid(e) {
		return 0, false
	}
	return e, true
}

// Len returns the number of tracked nodes.
func (b *Bridge) Len() int { return len(b.entities) }

// EmitEvent implements motion.EventSink.
func (b *Bridge) EmitEvent(event motion.LifecycleEvent) {
	switch event.Type {
	case motion.EventMounted:
		e := b.world.Create(Node)
		Node.SetValue(b.world.Entry(e), NodeData{
			ID:        event.Node,
			Scope:     event.Scope,
			Lifecycle: motion.Mounting,
		})
		b.entities[event.Node] = e
	case motion.EventActive:
		b.update(event.Node, func(d *NodeData) { d.Lifecycle = motion.Active })
	case motion.EventExitStarted:
		b.update(event.Node, func(d *NodeData) { d.Lifecycle = motion.Exiting })
	case motion.EventLayoutPopped:
		b.update(event.Node, func(d *NodeData) { d.Popped = true })
	case motion.EventRemoved:
		if e, ok := b.Entity(event.Node); ok {
			b.world.Remove(e)
		}
		delete(b.entities, event.Node)
	}
	LifecycleEventType.Publish(b.world, event)
}

func (b *Bridge) update(id motion.NodeID, fn func(*NodeData)) {
	e, ok := b.Entity(id)
	if !ok {
		return
	}
	fn(Node.Get(b.world.Entry(e)))
}
