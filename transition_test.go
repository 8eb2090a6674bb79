package motion

import (
	"errors"
	"math"
	"testing"
)

// --- ParseTransition ---

func TestParseTransitionSpring(t *testing.T) {
	tr, err := ParseTransition(map[string]any{"type": "spring", "stiffness": 300, "damping": 20})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Type != TransitionSpring {
		t.Errorf("Type = %v, want spring", tr.Type)
	}
	if tr.Stiffness != 300 || tr.Damping != 20 || tr.Mass != DefaultMass {
		t.Errorf("spring = (%v, %v, %v), want (300, 20, %v)", tr.Stiffness, tr.Damping, tr.Mass, DefaultMass)
	}
}

func TestParseTransitionTween(t *testing.T) {
	tr, err := ParseTransition(map[string]any{"duration": 0.35, "easing": "easeIn", "delay": 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Type != TransitionTween || tr.Duration != 0.35 || tr.Delay != 0.1 {
		t.Errorf("tween = %+v", tr)
	}
	if got := tr.Ease(0.5); math.Abs(got-EaseIn(0.5)) > 1e-12 {
		t.Errorf("Ease(0.5) = %v, want easeIn", got)
	}
}

func TestParseTransitionDefaults(t *testing.T) {
	tr, err := ParseTransition(map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Duration != DefaultDuration || tr.StaggerDirection != 1 || tr.Repeat != 0 {
		t.Errorf("defaults = %+v", tr)
	}
}

func TestParseTransitionCubicBezier(t *testing.T) {
	tr, err := ParseTransition(map[string]any{"ease": []any{0.0, 0.0, 0.58, 1.0}})
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.Ease(0.3); math.Abs(got-EaseOut(0.3)) > 1e-9 {
		t.Errorf("Ease(0.3) = %v, want %v", got, EaseOut(0.3))
	}
}

func TestParseTransitionRepeat(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{"infinite", RepeatInfinite},
		{2, 2},
		{3.0, 3},
		{math.Inf(1), RepeatInfinite},
	}
	for _, tt := range tests {
		tr, err := ParseTransition(map[string]any{"repeat": tt.in, "repeatType": "mirror"})
		if err != nil {
			t.Errorf("repeat %v: %v", tt.in, err)
			continue
		}
		if tr.Repeat != tt.want || tr.RepeatType != RepeatMirror {
			t.Errorf("repeat %v = (%d, %v), want (%d, mirror)", tt.in, tr.Repeat, tr.RepeatType, tt.want)
		}
		if tr.Infinite() != (tt.want == RepeatInfinite) {
			t.Errorf("repeat %v: Infinite() = %v", tt.in, tr.Infinite())
		}
	}
}

func TestParseTransitionPerProperty(t *testing.T) {
	tr, err := ParseTransition(map[string]any{
		"duration":        0.5,
		"staggerChildren": 0.1,
		"opacity":         map[string]any{"duration": 0.1},
		"scale":           map[string]any{"type": "spring", "stiffness": 400},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.For(PropOpacity).Duration; got != 0.1 {
		t.Errorf("opacity duration = %v, want 0.1", got)
	}
	if got := tr.For(PropX).Duration; got != 0.5 {
		t.Errorf("x duration = %v, want 0.5", got)
	}
	sc := tr.For(PropScale)
	if sc.Type != TransitionSpring || sc.Stiffness != 400 || sc.Damping != DefaultDamping {
		t.Errorf("scale = %+v, want spring 400", sc)
	}
	if sc.StaggerChildren != 0 {
		t.Errorf("per-property override inherited staggerChildren %v", sc.StaggerChildren)
	}
}

func TestParseTransitionErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    map[string]any
		want  error
		field string
	}{
		{"zero mass", map[string]any{"type": "spring", "mass": 0}, ErrInvalidSpring, "mass"},
		{"overshooting ease", map[string]any{"ease": "backOut"}, ErrNonMonotonicEasing, "ease"},
		{"unknown ease", map[string]any{"ease": "wobble"}, ErrUnknownEasing, "ease"},
		{"bad bezier", map[string]any{"ease": []any{0.5, -1.0, 0.5, 2.0}}, ErrNonMonotonicEasing, "ease"},
		{"unknown key", map[string]any{"bogus": 1}, ErrUnknownProperty, "bogus"},
		{"unknown type", map[string]any{"type": "physics"}, ErrInvalidTiming, "type"},
		{"repeat type", map[string]any{"repeatType": "pingpong"}, ErrInvalidTiming, "repeatType"},
		{"fractional repeat", map[string]any{"repeat": 1.5}, ErrInvalidTiming, "repeat"},
		{"negative delay", map[string]any{"delay": -0.1}, ErrInvalidTiming, "delay"},
		{"stagger direction", map[string]any{"staggerDirection": 2}, ErrInvalidTiming, "staggerDirection"},
		{"nested", map[string]any{"opacity": map[string]any{"duration": -1}}, ErrInvalidTiming, "opacity.duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTransition(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error %T is not a *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

// --- Validate ---

func TestTransitionValidateNormalizes(t *testing.T) {
	// The zero Transition is a zero-length tween.
	if err := (Transition{}).Validate(); err != nil {
		t.Errorf("zero Transition: %v", err)
	}
}

func TestTransitionInfiniteProperty(t *testing.T) {
	tr := Tween(1, nil)
	loop := Tween(1, nil)
	loop.Repeat = RepeatInfinite
	tr.Properties = map[Property]Transition{PropRotate: loop}
	if !tr.Infinite() {
		t.Error("Infinite() = false with an infinite per-property override")
	}
	if tr.For(PropX).Infinite() {
		t.Error("x inherits the rotate override")
	}
}

func TestTransitionValidateRejectsInfinity(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name  string
		tr    Transition
		field string
	}{
		{"stiffness", Spring(inf, 10, 1), "stiffness"},
		{"damping", Spring(100, inf, 1), "damping"},
		{"mass", Spring(100, 10, inf), "mass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tr.Validate()
			if !errors.Is(err, ErrInvalidSpring) {
				t.Fatalf("error = %v, want %v", err, ErrInvalidSpring)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("error = %v, want field %q", err, tt.field)
			}
		})
	}

	rest := Spring(100, 10, 1)
	rest.RestDelta = inf
	if err := rest.Validate(); !errors.Is(err, ErrInvalidSpring) {
		t.Errorf("infinite restDelta: error = %v, want %v", err, ErrInvalidSpring)
	}
}
