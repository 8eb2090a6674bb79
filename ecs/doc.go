// Package ecs provides ECS adapters for motion's lifecycle events.
//
// The primary adapter is [NewBridge], which bridges presence events
// (mounted, active, exit started, layout popped, removed) into a [Donburi]
// world. Each mounted node gets an entity carrying a [Node] component that
// follows its lifecycle, and every event is published to
// [LifecycleEventType] for ECS systems to consume.
//
// Usage:
//
//	bridge := ecs.NewBridge(world)
//	scene.SetEventSink(bridge)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
