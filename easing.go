package motion

import (
	"fmt"
	"math"

	"github.com/tanema/gween/ease"
)

// Easing maps normalized time in [0, 1] to normalized progress. Every easing
// accepted by the engine maps 0 to 0 and 1 to 1 and never decreases.
type Easing func(t float64) float64

// Linear returns t unchanged.
func Linear(t float64) float64 {
	return t
}

// The web presets, expressed as cubic-bezier curves.
var (
	EaseIn    = cubicBezier(0.42, 0, 1, 1)
	EaseOut   = cubicBezier(0, 0, 0.58, 1)
	EaseInOut = cubicBezier(0.42, 0, 0.58, 1)
)

// easingPresets lists every named easing. The gween families are included
// as-is; the ones that overshoot or bounce are rejected by ValidateEasing when
// they are parsed.
var easingPresets = map[string]Easing{
	"linear":    Linear,
	"easeIn":    EaseIn,
	"easeOut":   EaseOut,
	"easeInOut": EaseInOut,

	"quadIn":     fromTweenFunc(ease.InQuad),
	"quadOut":    fromTweenFunc(ease.OutQuad),
	"quadInOut":  fromTweenFunc(ease.InOutQuad),
	"cubicIn":    fromTweenFunc(ease.InCubic),
	"cubicOut":   fromTweenFunc(ease.OutCubic),
	"cubicInOut": fromTweenFunc(ease.InOutCubic),
	"quartIn":    fromTweenFunc(ease.InQuart),
	"quartOut":   fromTweenFunc(ease.OutQuart),
	"quartInOut": fromTweenFunc(ease.InOutQuart),
	"quintIn":    fromTweenFunc(ease.InQuint),
	"quintOut":   fromTweenFunc(ease.OutQuint),
	"quintInOut": fromTweenFunc(ease.InOutQuint),
	"sineIn":     fromTweenFunc(ease.InSine),
	"sineOut":    fromTweenFunc(ease.OutSine),
	"sineInOut":  fromTweenFunc(ease.InOutSine),
	"expoIn":     fromTweenFunc(ease.InExpo),
	"expoOut":    fromTweenFunc(ease.OutExpo),
	"expoInOut":  fromTweenFunc(ease.InOutExpo),
	"circIn":     fromTweenFunc(ease.InCirc),
	"circOut":    fromTweenFunc(ease.OutCirc),
	"circInOut":  fromTweenFunc(ease.InOutCirc),

	"backIn":     fromTweenFunc(ease.InBack),
	"backOut":    fromTweenFunc(ease.OutBack),
	"elasticIn":  fromTweenFunc(ease.InElastic),
	"elasticOut": fromTweenFunc(ease.OutElastic),
	"bounceIn":   fromTweenFunc(ease.InBounce),
	"bounceOut":  fromTweenFunc(ease.OutBounce),
}

// ParseEasing returns the named preset. Names that exist but describe a
// curve that overshoots are rejected with ErrNonMonotonicEasing.
func ParseEasing(name string) (Easing, error) {
	e, ok := easingPresets[name]
	if !ok {
		return nil, &ConfigError{Op: "ParseEasing", Field: "ease", Err: fmt.Errorf("%w: %q", ErrUnknownEasing, name)}
	}
	if err := ValidateEasing(e); err != nil {
		return nil, &ConfigError{Op: "ParseEasing", Field: "ease", Err: fmt.Errorf("%w: %q", ErrNonMonotonicEasing, name)}
	}
	return e, nil
}

// CubicBezier returns an easing matching CSS cubic-bezier(). The curve runs
// from (0,0) to (1,1); both control points must lie inside the unit square
// so the curve is a monotonic function of time.
func CubicBezier(x1, y1, x2, y2 float64) (Easing, error) {
	for _, v := range [4]float64{x1, y1, x2, y2} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, &ConfigError{
				Op:    "CubicBezier",
				Field: "ease",
				Err:   fmt.Errorf("%w: control points (%g,%g) (%g,%g) leave the unit square", ErrNonMonotonicEasing, x1, y1, x2, y2),
			}
		}
	}
	return cubicBezier(x1, y1, x2, y2), nil
}

// easingSamples is the resolution ValidateEasing checks a curve at.
const easingSamples = 128

// ValidateEasing rejects curves that do not start at 0, end at 1, or that
// decrease anywhere in between.
func ValidateEasing(e Easing) error {
	if e == nil {
		return fmt.Errorf("%w: nil easing", ErrNonMonotonicEasing)
	}
	const endTolerance = 1e-4
	const stepTolerance = 1e-6
	if math.Abs(e(0)) > endTolerance || math.Abs(e(1)-1) > endTolerance {
		return fmt.Errorf("%w: endpoints are (%g, %g)", ErrNonMonotonicEasing, e(0), e(1))
	}
	prev := e(0)
	for i := 1; i <= easingSamples; i++ {
		y := e(float64(i) / easingSamples)
		if math.IsNaN(y) || y < prev-stepTolerance {
			return fmt.Errorf("%w: decreases near t=%.3f", ErrNonMonotonicEasing, float64(i)/easingSamples)
		}
		prev = y
	}
	return nil
}

// tweenFunc adapts e to gween's (t, begin, change, duration) signature.
func (e Easing) tweenFunc() ease.TweenFunc {
	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		return b + c*float32(e(float64(t)/float64(d)))
	}
}

// fromTweenFunc adapts a gween easing to normalized time.
func fromTweenFunc(fn ease.TweenFunc) Easing {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return float64(fn(float32(t), 0, 1, 1))
	}
}

func cubicBezier(x1, y1, x2, y2 float64) Easing {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson converges quickly for most values.
		for range 8 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Bisection when the derivative flattens out.
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 24 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
