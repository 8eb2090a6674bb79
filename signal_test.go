package motion

import "testing"

func TestSignalFiresOnce(t *testing.T) {
	s := newSignal()
	calls := 0
	s.OnFire(func(at float64) {
		calls++
		if at != 1.5 {
			t.Errorf("at = %v, want 1.5", at)
		}
	})
	if s.Fired() {
		t.Fatal("new signal already fired")
	}

	if !s.fire(1.5) {
		t.Error("first fire reported false")
	}
	if s.fire(2) {
		t.Error("second fire reported true")
	}
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
	if s.At() != 1.5 {
		t.Errorf("At = %v, want 1.5", s.At())
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done channel not closed")
	}
}

func TestSignalOnFireAfterFire(t *testing.T) {
	s := firedSignal(3)
	var got float64
	s.OnFire(func(at float64) { got = at })
	if got != 3 {
		t.Errorf("late callback got %v, want 3", got)
	}
}
