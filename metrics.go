package motion

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports scene counters to Prometheus. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	frames          prometheus.Counter
	activeAnimators prometheus.Gauge
	nodes           *prometheus.GaugeVec
	removals        prometheus.Counter
	inconsistencies *prometheus.CounterVec
	frameSeconds    prometheus.Histogram
}

// NewMetrics creates the scene collectors and registers them with reg. A nil
// reg leaves them unregistered, which is useful in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "motion_frames_total",
			Help: "Total number of scene frames.",
		}),
		activeAnimators: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "motion_active_animators",
			Help: "Animators registered with the scheduler after the last frame.",
		}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "motion_nodes",
			Help: "Live nodes by lifecycle state.",
		}, []string{"lifecycle"}),
		removals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "motion_removals_total",
			Help: "Total number of nodes removed after their exit finished.",
		}),
		inconsistencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "motion_inconsistencies_total",
			Help: "Runtime inconsistencies absorbed, by operation.",
		}, []string{"op"}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "motion_frame_seconds",
			Help:    "Wall time spent in Scene.Update.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.frames, m.activeAnimators, m.nodes, m.removals, m.inconsistencies, m.frameSeconds,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observeFrame(seconds float64, animators int, counts [numLifecycles]int) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameSeconds.Observe(seconds)
	m.activeAnimators.Set(float64(animators))
	for l := Lifecycle(0); l < numLifecycles; l++ {
		m.nodes.WithLabelValues(l.String()).Set(float64(counts[l]))
	}
}

func (m *Metrics) removed() {
	if m == nil {
		return
	}
	m.removals.Inc()
}

func (m *Metrics) inconsistency(op string) {
	if m == nil {
		return
	}
	m.inconsistencies.WithLabelValues(op).Inc()
}
