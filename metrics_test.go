package motion

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordsFrames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	s := NewScene()
	s.SetMetrics(m)
	if err := s.Mount(MountRequest{ID: "n", Variants: fadeTable(), Initial: "hidden", Animate: "visible", Exit: "out"}); err != nil {
		t.Fatal(err)
	}
	step(s, 3)

	if got := testutil.ToFloat64(m.frames); got != 3 {
		t.Errorf("frames = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.activeAnimators); got != 1 {
		t.Errorf("active animators = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.nodes.WithLabelValues("mounting")); got != 1 {
		t.Errorf("mounting nodes = %v, want 1", got)
	}

	s.RequestExit("n")
	if _, idle := s.Settle(frame60, 600); !idle {
		t.Fatal("scene did not settle")
	}
	if got := testutil.ToFloat64(m.removals); got != 1 {
		t.Errorf("removals = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.nodes.WithLabelValues("exiting")); got != 0 {
		t.Errorf("exiting nodes = %v, want 0", got)
	}
	if n := testutil.CollectAndCount(m.frameSeconds); n != 1 {
		t.Errorf("frame histogram series = %d, want 1", n)
	}
}

func TestMetricsInconsistencies(t *testing.T) {
	m, err := NewMetrics(nil)
	if err != nil {
		t.Fatal(err)
	}
	s := NewScene()
	s.SetMetrics(m)
	s.GestureStart("ghost", GestureHover)
	s.GestureStart("ghost", GestureTap)
	s.RequestExit("ghost")

	if got := testutil.ToFloat64(m.inconsistencies.WithLabelValues("Scene.GestureStart")); got != 2 {
		t.Errorf("GestureStart inconsistencies = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.inconsistencies.WithLabelValues("Scene.RequestExit")); got != 1 {
		t.Errorf("RequestExit inconsistencies = %v, want 1", got)
	}
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("second registration succeeded, want error")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.observeFrame(0.001, 1, [numLifecycles]int{})
	m.removed()
	m.inconsistency("op")
}
