package motion

import "sync"

// Signal is a completion signal that fires exactly once. It is returned by
// Scene.Unmount and Scene.RequestExit and fires when the node has been
// removed. Repeated requests for the same node return the same Signal.
type Signal struct {
	once sync.Once
	done chan struct{}

	mu    sync.Mutex
	at    float64
	fired bool
	fns   []func(at float64)
}

func newSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// firedSignal returns a signal that has already fired at t.
func firedSignal(t float64) *Signal {
	s := newSignal()
	s.fire(t)
	return s
}

// Done returns a channel that is closed when the signal fires. It lets code
// outside the frame loop wait for a removal.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Fired reports whether the signal has fired.
func (s *Signal) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// At returns the scene time at which the signal fired, or 0 if it has not.
func (s *Signal) At() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.at
}

// OnFire registers fn to run when the signal fires. If it already has, fn
// runs immediately.
func (s *Signal) OnFire(fn func(at float64)) {
	s.mu.Lock()
	if s.fired {
		at := s.at
		s.mu.Unlock()
		fn(at)
		return
	}
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
}

// fire marks the signal fired at t. It reports false if it had already
// fired; callbacks run at most once.
func (s *Signal) fire(t float64) bool {
	fired := false
	s.once.Do(func() {
		s.mu.Lock()
		s.fired = true
		s.at = t
		fns := s.fns
		s.fns = nil
		s.mu.Unlock()

		close(s.done)
		for _, fn := range fns {
			fn(t)
		}
		fired = true
	})
	return fired
}
