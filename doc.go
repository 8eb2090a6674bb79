// Package motion is a declarative animation orchestration engine.
//
// Hosts declare nodes with named states (initial, animate, exit and gesture
// overlays) drawn from shared variant tables. The engine resolves those
// states into per-property targets, drives tween and spring animators from a
// single clock, staggers children through the tree and holds removed nodes
// until their exit animations have finished. It computes values and
// readiness signals only; painting them is up to the host.
//
// # Quick start
//
//	items := motion.MustVariantTable("item", map[string]motion.Variant{
//		"hidden":  {Targets: motion.Targets{motion.PropOpacity: {Value: 0}}},
//		"visible": {Targets: motion.Targets{motion.PropOpacity: {Value: 1}}},
//	})
//
//	scene := motion.NewScene()
//	scene.Mount(motion.MountRequest{
//		ID: "card", Variants: items, Initial: "hidden", Animate: "visible",
//	})
//	scene.Subscribe("card", func(id motion.NodeID, v motion.Values) {
//		// paint v[motion.PropOpacity]
//	})
//
//	// once per frame
//	scene.Update(1.0 / 60)
//
// # Frames
//
// [Scene.Update] is the only clock. Within one frame it applies requests
// queued during the previous frame, starts nodes mounted since then, ticks
// every animator, notifies subscribers of the nodes whose values changed and
// finally advances lifecycles. Nodes mounted before the same Update are
// started together, so a parent and its children share one stagger pass.
//
// # Variants and inheritance
//
// A node that leaves a state name empty follows its nearest ancestor that
// declares one. When a parent changes state, every inheriting child moves
// too, delayed by the parent variant's [Orchestration].
//
// # Presence
//
// [Scene.Unmount] moves a node and its subtree to Exiting and returns a
// [Signal] that fires once they have been removed. Presence scopes select how
// entrances and exits are ordered; see [Mode].
//
// Definition files ([LoadDefinitions]) and scripts ([LoadScript]) let the
// same scenes be described in YAML and run headlessly by cmd/motion. The ecs
// subpackage forwards lifecycle events into a [Donburi] world.
//
// [Donburi]: https://github.com/yohamta/donburi
package motion
