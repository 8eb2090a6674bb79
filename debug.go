package motion

import (
	"time"
)

// debugStats holds per-frame timings and counts.
// Only populated when the scene has metrics or debug mode enabled.
type debugStats struct {
	tickTime     time.Duration
	notifyTime   time.Duration
	presenceTime time.Duration
	ticked       int
	notified     int
	animators    int
	nodes        [numLifecycles]int
}

// debugLog writes frame stats at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	total := stats.tickTime + stats.notifyTime + stats.presenceTime
	s.logger.Debug("frame",
		"frame", s.sched.frame,
		"t", s.sched.now,
		"tick", stats.tickTime,
		"notify", stats.notifyTime,
		"presence", stats.presenceTime,
		"total", total,
	)
	s.logger.Debug("frame counts",
		"ticked", stats.ticked,
		"notified", stats.notified,
		"animators", stats.animators,
		"mounting", stats.nodes[Mounting],
		"active", stats.nodes[Active],
		"exiting", stats.nodes[Exiting],
	)
}

// debugMaxTreeDepth is the depth above which debugCheckTreeDepth warns.
const debugMaxTreeDepth = 32

func (s *Scene) debugCheckTreeDepth(n *Node) {
	if depth := n.depth(); depth > debugMaxTreeDepth {
		s.logger.Warn("tree depth exceeds threshold", "node", n.ID, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugMaxChildCount is the child count above which debugCheckChildCount
// warns. Stagger offsets grow linearly with it.
const debugMaxChildCount = 1000

func (s *Scene) debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		s.logger.Warn("child count exceeds threshold", "node", n.ID, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
