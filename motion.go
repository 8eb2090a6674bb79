package motion

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// NodeID identifies a node within a Scene. IDs are chosen by the host and must
// be unique among live nodes. An ID may be reused after the node it named has
// been removed; the new node is a distinct instance.
type NodeID string

// ScopeID names a presence scope. Nodes mounted in the same scope share an
// orchestration Mode. The empty ScopeID is the root scope.
type ScopeID string

// Property is one animatable property. The set is closed so that every
// interpolation path is known at compile time.
type Property uint8

const (
	PropX Property = iota
	PropY
	PropZ
	PropScale
	PropScaleX
	PropScaleY
	PropRotate
	PropSkewX
	PropSkewY
	PropOpacity
	PropWidth
	PropHeight
	PropBorderRadius
	PropColorR
	PropColorG
	PropColorB
	PropColorA

	numProperties
)

var propertyNames = [numProperties]string{
	PropX:            "x",
	PropY:            "y",
	PropZ:            "z",
	PropScale:        "scale",
	PropScaleX:       "scaleX",
	PropScaleY:       "scaleY",
	PropRotate:       "rotate",
	PropSkewX:        "skewX",
	PropSkewY:        "skewY",
	PropOpacity:      "opacity",
	PropWidth:        "width",
	PropHeight:       "height",
	PropBorderRadius: "borderRadius",
	PropColorR:       "colorR",
	PropColorG:       "colorG",
	PropColorB:       "colorB",
	PropColorA:       "colorA",
}

// String returns the canonical property name used in definition files.
func (p Property) String() string {
	if p < numProperties {
		return propertyNames[p]
	}
	return fmt.Sprintf("Property(%d)", uint8(p))
}

// MarshalText encodes the property by name, so Values serialize as objects
// keyed by property name.
func (p Property) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParseProperty returns the Property with the given canonical name.
func ParseProperty(name string) (Property, error) {
	for i, n := range propertyNames {
		if n == name {
			return Property(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
}

// DefaultValue is the value a property starts from when it is targeted
// before anything has set it.
func DefaultValue(p Property) float64 {
	switch p {
	case PropOpacity, PropScale, PropScaleX, PropScaleY, PropColorA:
		return 1
	default:
		return 0
	}
}

// Values holds the current value of each animated property of a node.
type Values map[Property]float64

// Clone returns a copy of v. A nil map clones to an empty map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	maps.Copy(out, v)
	return out
}

// Target is the destination of one property, optionally with its own
// transition that takes precedence over the variant's.
type Target struct {
	Value      float64
	Transition *Transition
}

// Targets maps each property to its destination. A property that is absent
// is not overridden by the layer that produced the map.
type Targets map[Property]Target

// Clone returns a shallow copy of t.
func (t Targets) Clone() Targets {
	out := make(Targets, len(t))
	maps.Copy(out, t)
	return out
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// Lifecycle is the presence state of a node. Transitions only move forward:
// Mounting -> Active -> Exiting -> Removed, with Mounting -> Exiting allowed
// for interrupted entrances.
type Lifecycle uint8

const (
	Mounting Lifecycle = iota
	Active
	Exiting
	Removed

	numLifecycles
)

func (l Lifecycle) String() string {
	switch l {
	case Mounting:
		return "mounting"
	case Active:
		return "active"
	case Exiting:
		return "exiting"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("Lifecycle(%d)", uint8(l))
	}
}

func (l Lifecycle) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Gesture is a temporary overlay layer. Constants are ordered by priority:
// when several gestures are active, a later one overrides an earlier one
// property by property.
type Gesture uint8

const (
	GestureInView Gesture = iota
	GestureFocus
	GestureHover
	GestureTap
	GestureDrag

	numGestures
)

var gestureNames = [numGestures]string{
	GestureInView: "inView",
	GestureFocus:  "focus",
	GestureHover:  "hover",
	GestureTap:    "tap",
	GestureDrag:   "drag",
}

func (g Gesture) String() string {
	if g < numGestures {
		return gestureNames[g]
	}
	return fmt.Sprintf("Gesture(%d)", uint8(g))
}

// ParseGesture returns the Gesture with the given name.
func ParseGesture(name string) (Gesture, error) {
	for i, n := range gestureNames {
		if n == name {
			return Gesture(i), nil
		}
	}
	return 0, fmt.Errorf("unknown gesture %q", name)
}

// Mode selects how a presence scope orders exits and entrances.
type Mode uint8

const (
	// ModeParallel starts entering and exiting nodes at the same time.
	ModeParallel Mode = iota
	// ModeWait defers entrances until every exiting node in the scope has
	// been removed.
	ModeWait
	// ModePopLayout drops exiting nodes from layout immediately while their
	// exit animations keep running.
	ModePopLayout
)

func (m Mode) String() string {
	switch m {
	case ModeParallel:
		return "parallel"
	case ModeWait:
		return "wait"
	case ModePopLayout:
		return "popLayout"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode accepts both the short names and the long descriptive names.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "parallel", "sync":
		return ModeParallel, nil
	case "wait", "sequential":
		return ModeWait, nil
	case "popLayout", "reflowOnExit":
		return ModePopLayout, nil
	}
	return 0, fmt.Errorf("unknown orchestration mode %q", name)
}

// StaggerOrigin decides where stagger offsets are measured from for nodes
// whose entrance was deferred by ModeWait.
type StaggerOrigin uint8

const (
	// StaggerFromEntry measures offsets from the moment the deferred node
	// actually mounts.
	StaggerFromEntry StaggerOrigin = iota
	// StaggerFromRequest measures offsets from the mount request; time spent
	// waiting for the predecessor counts against the offsets.
	StaggerFromRequest
)

// ScopeOptions configures a presence scope.
type ScopeOptions struct {
	Mode          Mode
	StaggerOrigin StaggerOrigin
}
