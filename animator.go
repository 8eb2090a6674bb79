package motion

import (
	"math"

	"github.com/tanema/gween"
)

// Animator drives one property toward its target. It owns only its own
// progress; it never reads or writes other animators.
//
// An animator is retargeted in place when its destination changes before it
// settles. The current value and velocity become the new start conditions,
// so a retarget never produces a jump.
type Animator struct {
	Property Property

	from     float64
	to       float64
	goal     float64
	value    float64
	velocity float64
	elapsed  float64
	delay    float64
	trans    Transition

	// forward and backward are rebuilt whenever from/to change. backward
	// plays the mirrored iterations of RepeatMirror.
	forward  *gween.Tween
	backward *gween.Tween

	iteration int
	restTicks int
	settled   bool
	// moving is set once the initial delay has elapsed. Later retargets
	// skip the transition's delay.
	moving bool

	// exitBound marks animators started or retargeted for an exit state.
	exitBound bool
}

// NewAnimator validates trans and starts an animator moving p from from to to.
// Invalid spring or timing parameters are rejected here, never at tick time.
func NewAnimator(p Property, from, to float64, trans Transition) (*Animator, error) {
	a := &Animator{Property: p}
	if err := a.Start(from, to, trans); err != nil {
		return nil, err
	}
	return a, nil
}

// newAnimator starts an animator with an already validated transition.
func newAnimator(p Property, from, velocity, to float64, trans Transition, extraDelay float64) *Animator {
	a := &Animator{Property: p, value: from, velocity: velocity}
	a.retarget(to, trans, extraDelay)
	return a
}

// Start resets the animator to move from from to to. Velocity starts at zero.
func (a *Animator) Start(from, to float64, trans Transition) error {
	trans = trans.normalized()
	if err := trans.Validate(); err != nil {
		return withContext(err, "Animator.Start", "", "")
	}
	a.value = from
	a.velocity = 0
	a.moving = false
	a.retarget(to, trans, 0)
	return nil
}

// Retarget changes the destination without discarding progress. Springs keep
// position and velocity; tweens restart their clock from the current value.
// The transition's delay only applies if the animator has not started moving.
func (a *Animator) Retarget(to float64) {
	a.retarget(to, a.trans, 0)
}

func (a *Animator) retarget(to float64, trans Transition, extraDelay float64) {
	a.trans = trans
	a.from = a.value
	a.to = to
	a.goal = to
	a.elapsed = 0
	delay := extraDelay
	if !a.moving {
		delay += trans.Delay
	}
	a.delay = math.Max(0, delay)
	a.iteration = 0
	a.restTicks = 0
	a.settled = false
	a.rebuildTweens()
}

func (a *Animator) rebuildTweens() {
	if a.trans.Type != TransitionTween {
		a.forward, a.backward = nil, nil
		return
	}
	// gween works in float32, so the tweens run over the unit interval and
	// the result is scaled back in float64 to keep large coordinates exact.
	fn := a.trans.Ease.tweenFunc()
	d := float32(a.trans.Duration)
	a.forward = gween.New(0, 1, d, fn)
	a.backward = gween.New(1, 0, d, fn)
}

// Tick advances the animator by dt seconds and returns the new value.
func (a *Animator) Tick(dt float64) float64 {
	if a.settled || dt <= 0 {
		return a.value
	}
	a.elapsed += dt
	t := a.elapsed - a.delay
	if t <= 0 {
		return a.value
	}
	a.moving = true

	prev := a.value
	switch a.trans.Type {
	case TransitionSpring:
		a.tickSpring(math.Min(dt, t))
	default:
		a.tickTween(t)
		if !a.settled {
			a.velocity = (a.value - prev) / math.Min(dt, t)
		}
	}
	return a.value
}

func (a *Animator) tickTween(t float64) {
	d := a.trans.Duration
	if d <= 0 {
		a.finish()
		return
	}
	period := d + a.trans.RepeatDelay
	iter := int(t / period)
	if a.trans.Repeat != RepeatInfinite && iter > a.trans.Repeat {
		a.finish()
		return
	}
	local := t - float64(iter)*period
	if local > d {
		local = d
	}
	if a.trans.Repeat != RepeatInfinite && iter == a.trans.Repeat && local >= d {
		a.finish()
		return
	}
	a.iteration = iter

	var f float32
	switch {
	case iter%2 == 1 && a.trans.RepeatType == RepeatReverse:
		f, _ = a.forward.Set(float32(d - local))
	case iter%2 == 1 && a.trans.RepeatType == RepeatMirror:
		f, _ = a.backward.Set(float32(local))
	default:
		f, _ = a.forward.Set(float32(local))
	}
	a.value = a.from + float64(f)*(a.to-a.from)
}

func (a *Animator) tickSpring(step float64) {
	s := springAdvance(SpringState{Position: a.value, Velocity: a.velocity}, a.to, step,
		a.trans.Stiffness, a.trans.Damping, a.trans.Mass)
	a.value, a.velocity = s.Position, s.Velocity

	if !springAtRest(s, a.to, a.trans.RestDelta, a.trans.RestSpeed) {
		a.restTicks = 0
		return
	}
	// Two consecutive ticks at rest, so a zero crossing mid-oscillation does
	// not stop the spring early.
	a.restTicks++
	if a.restTicks < 2 {
		return
	}
	if a.trans.Repeat != RepeatInfinite && a.iteration >= a.trans.Repeat {
		a.value = a.to
		a.velocity = 0
		a.settled = true
		return
	}

	a.iteration++
	a.restTicks = 0
	a.velocity = 0
	a.elapsed = 0
	a.delay = a.trans.RepeatDelay
	switch a.trans.RepeatType {
	case RepeatLoop:
		a.value = a.from
	default:
		a.value = a.to
		a.from, a.to = a.to, a.from
	}
}

// finish snaps the tween to its final value: the end of the last iteration.
func (a *Animator) finish() {
	a.value = a.to
	if a.trans.RepeatType != RepeatLoop && a.trans.Repeat%2 == 1 {
		a.value = a.from
	}
	a.velocity = 0
	a.settled = true
}

// Settled reports whether the animator has reached its final value.
func (a *Animator) Settled() bool {
	return a.settled
}

// Value returns the most recent value.
func (a *Animator) Value() float64 {
	return a.value
}

// Velocity returns the most recent velocity in units per second.
func (a *Animator) Velocity() float64 {
	return a.velocity
}

// Target returns the target the animator was last started or retargeted
// toward. Repeating springs swap direction internally but keep their target.
func (a *Animator) Target() float64 {
	return a.goal
}

// Elapsed returns the time since the last start or retarget, delay included.
func (a *Animator) Elapsed() float64 {
	return a.elapsed
}

// Transition returns the transition currently driving the animator.
func (a *Animator) Transition() Transition {
	return a.trans
}

// infinite reports whether the animator can never settle on its own.
func (a *Animator) infinite() bool {
	return a.trans.Repeat == RepeatInfinite
}
