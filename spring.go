package motion

import "math"

// SpringState is the position and velocity of a spring-driven value.
type SpringState struct {
	Position float64
	Velocity float64
}

// maxSpringStep bounds a single integration step. Longer frames are split so
// stiff springs stay stable when the host hitches.
const maxSpringStep = 1.0 / 60

// SpringStep advances s toward target by dt seconds using semi-implicit Euler:
// velocity is updated first and the new velocity moves the position.
func SpringStep(s SpringState, target, dt, stiffness, damping, mass float64) SpringState {
	accel := -(stiffness*(s.Position-target) + damping*s.Velocity) / mass
	s.Velocity += accel * dt
	s.Position += s.Velocity * dt
	return s
}

// springAdvance integrates dt in substeps no longer than maxSpringStep.
func springAdvance(s SpringState, target, dt, stiffness, damping, mass float64) SpringState {
	if dt <= 0 {
		return s
	}
	n := int(math.Ceil(dt/maxSpringStep - 1e-9))
	if n < 1 {
		n = 1
	}
	h := dt / float64(n)
	for range n {
		s = SpringStep(s, target, h, stiffness, damping, mass)
	}
	return s
}

// springAtRest reports whether s is close enough to target to stop.
func springAtRest(s SpringState, target, restDelta, restSpeed float64) bool {
	return math.Abs(s.Velocity) < restSpeed && math.Abs(s.Position-target) < restDelta
}

// CriticalDamping returns the damping at which a spring with the given
// stiffness and mass stops oscillating.
func CriticalDamping(stiffness, mass float64) float64 {
	return 2 * math.Sqrt(stiffness*mass)
}

// Overshoot returns how far value has travelled past to on the way from
// from, or 0 if it has not reached to. Callers compare it against their own
// tolerance; a spring with damping at or above CriticalDamping stays within
// floating-point noise of zero.
func Overshoot(from, to, value float64) float64 {
	switch {
	case to > from:
		return math.Max(0, value-to)
	case to < from:
		return math.Max(0, to-value)
	default:
		return math.Abs(value - to)
	}
}
