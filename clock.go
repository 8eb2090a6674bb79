package motion

import "time"

// Clock provides wall time to hosts that pace frames themselves. The scene
// never reads it; Scene.Update is always given an explicit dt.
type Clock interface {
	Now() time.Time
}

// SystemClock uses system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// MaxFrameDelta caps the dt a FrameTimer reports after a stall, so a paused
// process does not skip whole animations in one frame.
const MaxFrameDelta = 0.25

// FrameTimer converts clock readings into per-frame dt values.
type FrameTimer struct {
	clock Clock
	last  time.Time
}

// NewFrameTimer starts a timer on c. A nil clock means SystemClock.
func NewFrameTimer(c Clock) *FrameTimer {
	if c == nil {
		c = SystemClock{}
	}
	return &FrameTimer{clock: c, last: c.Now()}
}

// Next returns the seconds elapsed since the previous call, capped at
// MaxFrameDelta.
func (t *FrameTimer) Next() float64 {
	now := t.clock.Now()
	dt := now.Sub(t.last).Seconds()
	t.last = now
	if dt < 0 {
		return 0
	}
	if dt > MaxFrameDelta {
		return MaxFrameDelta
	}
	return dt
}
