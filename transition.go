package motion

import (
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// TransitionType selects the interpolator that drives a property.
type TransitionType uint8

const (
	TransitionTween TransitionType = iota
	TransitionSpring
)

func (t TransitionType) String() string {
	switch t {
	case TransitionTween:
		return "tween"
	case TransitionSpring:
		return "spring"
	default:
		return fmt.Sprintf("TransitionType(%d)", uint8(t))
	}
}

// RepeatType decides what each repetition of an animation does.
type RepeatType uint8

const (
	// RepeatLoop restarts every iteration from the start value.
	RepeatLoop RepeatType = iota
	// RepeatReverse plays every other iteration backwards in time.
	RepeatReverse
	// RepeatMirror swaps start and end every other iteration and plays the
	// easing forwards.
	RepeatMirror
)

func (r RepeatType) String() string {
	switch r {
	case RepeatLoop:
		return "loop"
	case RepeatReverse:
		return "reverse"
	case RepeatMirror:
		return "mirror"
	default:
		return fmt.Sprintf("RepeatType(%d)", uint8(r))
	}
}

// RepeatInfinite as Transition.Repeat repeats forever.
const RepeatInfinite = -1

// Default configuration values.
const (
	DefaultDuration  = 0.3
	DefaultStiffness = 100.0
	DefaultDamping   = 10.0
	DefaultMass      = 1.0
	DefaultRestDelta = 0.01
	DefaultRestSpeed = 0.05
)

// Orchestration schedules a container's children. It only has an effect on
// the transition of a variant that children inherit.
type Orchestration struct {
	StaggerChildren  float64
	DelayChildren    float64
	StaggerDirection int
}

// Transition describes how a property moves to its target. Tween fields and
// Spring fields are both present; Type picks which set applies.
type Transition struct {
	Type TransitionType

	// Tween
	Duration float64
	Delay    float64
	Ease     Easing

	// Spring
	Stiffness float64
	Damping   float64
	Mass      float64
	RestDelta float64
	RestSpeed float64

	Repeat      int
	RepeatType  RepeatType
	RepeatDelay float64

	Orchestration

	// Properties overrides the transition for individual properties.
	Properties map[Property]Transition
}

// DefaultTransition returns the transition used when nothing else is declared.
func DefaultTransition() Transition {
	return Transition{
		Type:      TransitionTween,
		Duration:  DefaultDuration,
		Ease:      EaseOut,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
		Mass:      DefaultMass,
		RestDelta: DefaultRestDelta,
		RestSpeed: DefaultRestSpeed,
		Orchestration: Orchestration{
			StaggerDirection: 1,
		},
	}
}

// Tween returns a tween transition with the given duration in seconds.
// A nil easing means EaseOut.
func Tween(duration float64, e Easing) Transition {
	t := DefaultTransition()
	t.Duration = duration
	if e != nil {
		t.Ease = e
	}
	return t
}

// Spring returns a spring transition.
func Spring(stiffness, damping, mass float64) Transition {
	t := DefaultTransition()
	t.Type = TransitionSpring
	t.Stiffness = stiffness
	t.Damping = damping
	t.Mass = mass
	return t
}

// For returns the transition that applies to p.
func (t Transition) For(p Property) Transition {
	if o, ok := t.Properties[p]; ok {
		return o
	}
	return t
}

// Infinite reports whether t, or any of its per-property overrides, repeats
// forever.
func (t Transition) Infinite() bool {
	if t.Repeat == RepeatInfinite {
		return true
	}
	for _, o := range t.Properties {
		if o.Infinite() {
			return true
		}
	}
	return false
}

// normalized fills the fields whose zero value is never meaningful.
func (t Transition) normalized() Transition {
	if t.Ease == nil {
		t.Ease = EaseOut
	}
	if t.RestDelta == 0 {
		t.RestDelta = DefaultRestDelta
	}
	if t.RestSpeed == 0 {
		t.RestSpeed = DefaultRestSpeed
	}
	if t.StaggerDirection == 0 {
		t.StaggerDirection = 1
	}
	if len(t.Properties) > 0 {
		props := make(map[Property]Transition, len(t.Properties))
		for p, o := range t.Properties {
			props[p] = o.normalized()
		}
		t.Properties = props
	}
	return t
}

// Validate reports configuration errors. Spring parameters are only checked
// for spring transitions.
func (t Transition) Validate() error {
	t = t.normalized()
	bad := func(field string, err error) error {
		return &ConfigError{Op: "Transition.Validate", Field: field, Err: err}
	}
	nonNegative := func(field string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return bad(field, fmt.Errorf("%w: %s must be a non-negative number, got %g", ErrInvalidTiming, field, v))
		}
		return nil
	}

	switch t.Type {
	case TransitionTween:
		if err := nonNegative("duration", t.Duration); err != nil {
			return err
		}
		if err := ValidateEasing(t.Ease); err != nil {
			return bad("ease", err)
		}
	case TransitionSpring:
		if !positive(t.Stiffness) {
			return bad("stiffness", fmt.Errorf("%w: stiffness must be a finite number > 0, got %g", ErrInvalidSpring, t.Stiffness))
		}
		if math.IsNaN(t.Damping) || math.IsInf(t.Damping, 0) || t.Damping < 0 {
			return bad("damping", fmt.Errorf("%w: damping must be a finite number >= 0, got %g", ErrInvalidSpring, t.Damping))
		}
		if !positive(t.Mass) {
			return bad("mass", fmt.Errorf("%w: mass must be a finite number > 0, got %g", ErrInvalidSpring, t.Mass))
		}
		if !positive(t.RestDelta) || !positive(t.RestSpeed) {
			return bad("restDelta", fmt.Errorf("%w: rest thresholds must be finite and > 0", ErrInvalidSpring))
		}
	default:
		return bad("type", fmt.Errorf("%w: unknown transition type %d", ErrInvalidTiming, t.Type))
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"delay", t.Delay},
		{"repeatDelay", t.RepeatDelay},
		{"staggerChildren", t.StaggerChildren},
		{"delayChildren", t.DelayChildren},
	} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if t.Repeat < RepeatInfinite {
		return bad("repeat", fmt.Errorf("%w: repeat must be >= 0 or infinite, got %d", ErrInvalidTiming, t.Repeat))
	}
	if t.RepeatType > RepeatMirror {
		return bad("repeatType", fmt.Errorf("%w: unknown repeat type %d", ErrInvalidTiming, t.RepeatType))
	}
	if t.StaggerDirection != 1 && t.StaggerDirection != -1 {
		return bad("staggerDirection", fmt.Errorf("%w: staggerDirection must be 1 or -1, got %d", ErrInvalidTiming, t.StaggerDirection))
	}
	for _, p := range sortedKeys(t.Properties) {
		if err := t.Properties[p].Validate(); err != nil {
			return withContext(err, "Transition.Validate", "", p.String())
		}
	}
	return nil
}

// transitionOptions mirrors the loose option bag a definition file or markup
// layer produces. Pointer fields distinguish "unset" from zero.
type transitionOptions struct {
	Type             *string        `mapstructure:"type"`
	Duration         *float64       `mapstructure:"duration"`
	Delay            *float64       `mapstructure:"delay"`
	Ease             any            `mapstructure:"ease"`
	Easing           any            `mapstructure:"easing"`
	Stiffness        *float64       `mapstructure:"stiffness"`
	Damping          *float64       `mapstructure:"damping"`
	Mass             *float64       `mapstructure:"mass"`
	RestDelta        *float64       `mapstructure:"restDelta"`
	RestSpeed        *float64       `mapstructure:"restSpeed"`
	Repeat           any            `mapstructure:"repeat"`
	RepeatType       *string        `mapstructure:"repeatType"`
	RepeatDelay      *float64       `mapstructure:"repeatDelay"`
	StaggerChildren  *float64       `mapstructure:"staggerChildren"`
	DelayChildren    *float64       `mapstructure:"delayChildren"`
	StaggerDirection *int           `mapstructure:"staggerDirection"`
	Rest             map[string]any `mapstructure:",remain"`
}

// ParseTransition decodes an option bag such as
//
//	{"type": "spring", "stiffness": 300, "damping": 20}
//	{"duration": 0.35, "ease": "easeOut", "opacity": {"duration": 0.1}}
//
// into a validated Transition. Unset fields take their defaults. A key that
// names a property holds a per-property override; any other unknown key is a
// configuration error.
func ParseTransition(opts map[string]any) (Transition, error) {
	return parseTransitionOver(DefaultTransition(), opts)
}

func parseTransitionOver(base Transition, opts map[string]any) (Transition, error) {
	t, err := decodeTransition(base, opts)
	if err != nil {
		return Transition{}, err
	}
	t = t.normalized()
	if err := t.Validate(); err != nil {
		return Transition{}, withContext(err, "ParseTransition", "", "")
	}
	return t, nil
}

func decodeTransition(base Transition, opts map[string]any) (Transition, error) {
	fail := func(field string, err error) (Transition, error) {
		return Transition{}, &ConfigError{Op: "ParseTransition", Field: field, Err: err}
	}

	var o transitionOptions
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &o,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fail("", err)
	}
	if err := dec.Decode(opts); err != nil {
		return fail("", err)
	}

	t := base
	t.Properties = nil
	if o.Type != nil {
		switch strings.ToLower(*o.Type) {
		case "tween", "keyframes", "":
			t.Type = TransitionTween
		case "spring":
			t.Type = TransitionSpring
		default:
			return fail("type", fmt.Errorf("%w: unknown transition type %q", ErrInvalidTiming, *o.Type))
		}
	}
	setFloat(&t.Duration, o.Duration)
	setFloat(&t.Delay, o.Delay)
	setFloat(&t.Stiffness, o.Stiffness)
	setFloat(&t.Damping, o.Damping)
	setFloat(&t.Mass, o.Mass)
	setFloat(&t.RestDelta, o.RestDelta)
	setFloat(&t.RestSpeed, o.RestSpeed)
	setFloat(&t.RepeatDelay, o.RepeatDelay)
	setFloat(&t.StaggerChildren, o.StaggerChildren)
	setFloat(&t.DelayChildren, o.DelayChildren)
	if o.StaggerDirection != nil {
		t.StaggerDirection = *o.StaggerDirection
	}

	easeOpt := o.Ease
	if easeOpt == nil {
		easeOpt = o.Easing
	}
	if easeOpt != nil {
		e, err := parseEaseOption(easeOpt)
		if err != nil {
			return Transition{}, withContext(err, "ParseTransition", "", "")
		}
		t.Ease = e
	}

	if o.Repeat != nil {
		n, err := parseRepeat(o.Repeat)
		if err != nil {
			return fail("repeat", err)
		}
		t.Repeat = n
	}
	if o.RepeatType != nil {
		switch *o.RepeatType {
		case "loop":
			t.RepeatType = RepeatLoop
		case "reverse":
			t.RepeatType = RepeatReverse
		case "mirror":
			t.RepeatType = RepeatMirror
		default:
			return fail("repeatType", fmt.Errorf("%w: unknown repeat type %q", ErrInvalidTiming, *o.RepeatType))
		}
	}

	for _, key := range sortedKeys(o.Rest) {
		p, err := ParseProperty(key)
		if err != nil {
			return fail(key, fmt.Errorf("unknown transition option: %w", err))
		}
		sub, ok := o.Rest[key].(map[string]any)
		if !ok {
			return fail(key, fmt.Errorf("%w: per-property transition must be an object, got %T", ErrInvalidTiming, o.Rest[key]))
		}
		inner := t
		inner.Orchestration = Orchestration{StaggerDirection: 1}
		pt, err := decodeTransition(inner, sub)
		if err != nil {
			return Transition{}, withContext(err, "ParseTransition", "", key)
		}
		if t.Properties == nil {
			t.Properties = make(map[Property]Transition)
		}
		t.Properties[p] = pt
	}
	return t, nil
}

// positive reports whether v is a finite number greater than zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func parseEaseOption(v any) (Easing, error) {
	switch e := v.(type) {
	case string:
		return ParseEasing(e)
	case []any:
		if len(e) != 4 {
			return nil, &ConfigError{Op: "ParseTransition", Field: "ease", Err: fmt.Errorf("%w: cubic-bezier needs 4 numbers, got %d", ErrUnknownEasing, len(e))}
		}
		var pts [4]float64
		for i, x := range e {
			f, ok := toFloat(x)
			if !ok {
				return nil, &ConfigError{Op: "ParseTransition", Field: "ease", Err: fmt.Errorf("%w: cubic-bezier point %d is %T", ErrUnknownEasing, i, x)}
			}
			pts[i] = f
		}
		return CubicBezier(pts[0], pts[1], pts[2], pts[3])
	default:
		return nil, &ConfigError{Op: "ParseTransition", Field: "ease", Err: fmt.Errorf("%w: unsupported value %T", ErrUnknownEasing, v)}
	}
}

func parseRepeat(v any) (int, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(s) {
		case "infinite", "infinity", "inf":
			return RepeatInfinite, nil
		}
		return 0, fmt.Errorf("%w: repeat must be a count or \"infinite\", got %q", ErrInvalidTiming, s)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: repeat must be a count or \"infinite\", got %T", ErrInvalidTiming, v)
	}
	if math.IsInf(f, 1) {
		return RepeatInfinite, nil
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: repeat must be a whole number >= 0, got %g", ErrInvalidTiming, f)
	}
	return int(f), nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
