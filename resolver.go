package motion

import "math"

// Layers are the state layers that apply to one node, lowest priority first.
type Layers struct {
	// Baseline holds the value a property falls back to when no layer
	// mentions it any more: its value at mount, or its default if it was
	// first targeted later.
	Baseline Values
	// Base is the node's resolved animate variant.
	Base Targets
	// Gestures are the overlays of the active gestures, indexed by Gesture.
	// A nil entry is an inactive gesture.
	Gestures [numGestures]Targets
	// Exiting enables the exit layer and disables every gesture overlay.
	Exiting bool
	// Exit is the resolved exit variant.
	Exit Targets
}

// Resolve merges layers into one target map. Each layer overrides the ones
// below it property by property; a property a layer leaves out, or sets to
// NaN, keeps the value of the layer below. Resolve has no side effects and
// returns equal maps for equal inputs.
func Resolve(l Layers) Targets {
	out := make(Targets, len(l.Baseline)+len(l.Base))
	for p, v := range l.Baseline {
		if !math.IsNaN(v) {
			out[p] = Target{Value: v}
		}
	}
	overlay(out, l.Base)
	if l.Exiting {
		overlay(out, l.Exit)
		return out
	}
	for _, g := range l.Gestures {
		overlay(out, g)
	}
	return out
}

func overlay(dst, src Targets) {
	for p, t := range src {
		if math.IsNaN(t.Value) {
			continue
		}
		dst[p] = t
	}
}

// properties returns every property mentioned by any layer.
func (l Layers) properties() []Property {
	var seen [numProperties]bool
	mark := func(t Targets) {
		for p := range t {
			if p < numProperties {
				seen[p] = true
			}
		}
	}
	for p := range l.Baseline {
		if p < numProperties {
			seen[p] = true
		}
	}
	mark(l.Base)
	for _, g := range l.Gestures {
		mark(g)
	}
	mark(l.Exit)

	var out []Property
	for p, ok := range seen {
		if ok {
			out = append(out, Property(p))
		}
	}
	return out
}
