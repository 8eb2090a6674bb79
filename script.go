package motion

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action string `yaml:"action"`
	Label  string `yaml:"label,omitempty"`

	// Node fields (mount, unmount, animate, gestures)
	ID              NodeID            `yaml:"id,omitempty"`
	Parent          NodeID            `yaml:"parent,omitempty"`
	Scope           ScopeID           `yaml:"scope,omitempty"`
	Table           string            `yaml:"table,omitempty"`
	Initial         string            `yaml:"initial,omitempty"`
	Animate         string            `yaml:"animate,omitempty"`
	Exit            string            `yaml:"exit,omitempty"`
	While           map[string]string `yaml:"while,omitempty"`
	Index           *int              `yaml:"index,omitempty"`
	InitialDisabled bool              `yaml:"initialDisabled,omitempty"`
	Transition      map[string]any    `yaml:"transition,omitempty"`

	Variant string `yaml:"variant,omitempty"`
	Gesture string `yaml:"gesture,omitempty"`
	Active  *bool  `yaml:"active,omitempty"`

	// Scope options (mode)
	Mode          string `yaml:"mode,omitempty"`
	StaggerOrigin string `yaml:"staggerOrigin,omitempty"`

	// Waiting (wait)
	Frames  int     `yaml:"frames,omitempty"`
	Seconds float64 `yaml:"seconds,omitempty"`
}

// script is the top-level document.
type script struct {
	Steps []scriptStep `yaml:"steps"`
}

// Snapshot is the state of every node at one point of a script.
type Snapshot struct {
	Label      string               `json:"label,omitempty"`
	Frame      uint64               `json:"frame"`
	Time       float64              `json:"time"`
	Values     map[NodeID]Values    `json:"values"`
	Lifecycles map[NodeID]Lifecycle `json:"lifecycles"`
}

// ScriptRunner drives a scene from a script of host requests, the way a host
// would: mounts, unmounts, label changes and gestures, separated by waits.
// Attach it with Scene.SetScriptRunner; it runs from Scene.Update.
//
// Each frame the runner executes steps until it reaches a wait, so
// consecutive mounts land in the same frame and are staggered together.
type ScriptRunner struct {
	steps []scriptStep
	defs  *Definitions

	cursor     int
	waitFrames int
	waitUntil  float64
	settling   bool
	done       bool
	err        error

	snapshots []Snapshot
}

var scriptActions = []string{
	"mount", "unmount", "animate", "hover", "unhover", "tap", "untap",
	"gesture", "mode", "wait", "settle", "snapshot",
}

// LoadScriptFile reads and parses a script file.
func LoadScriptFile(path string, defs *Definitions) (*ScriptRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return LoadScript(data, defs)
}

// LoadScript parses a YAML or JSON script. Table names used by mount steps
// are resolved against defs.
func LoadScript(data []byte, defs *Definitions) (*ScriptRunner, error) {
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !slices.Contains(scriptActions, st.Action) {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
		switch st.Action {
		case "mount":
			if st.ID == "" {
				return nil, fmt.Errorf("parse script: step %d: mount needs an id", i)
			}
			if st.Table != "" {
				if defs == nil {
					return nil, fmt.Errorf("parse script: step %d: table %q without definitions", i, st.Table)
				}
				if _, ok := defs.Table(st.Table); !ok {
					return nil, fmt.Errorf("parse script: step %d: unknown table %q", i, st.Table)
				}
			}
			for g := range st.While {
				if _, err := ParseGesture(g); err != nil {
					return nil, fmt.Errorf("parse script: step %d: %w", i, err)
				}
			}
		case "mode":
			if _, err := ParseMode(st.Mode); err != nil {
				return nil, fmt.Errorf("parse script: step %d: %w", i, err)
			}
			if _, err := parseStaggerOrigin(st.StaggerOrigin); err != nil {
				return nil, fmt.Errorf("parse script: step %d: %w", i, err)
			}
		case "gesture":
			if _, err := ParseGesture(st.Gesture); err != nil {
				return nil, fmt.Errorf("parse script: step %d: %w", i, err)
			}
		case "wait":
			if st.Frames < 0 || st.Seconds < 0 {
				return nil, fmt.Errorf("parse script: step %d: negative wait", i)
			}
		}
	}
	return &ScriptRunner{steps: sc.Steps, defs: defs}, nil
}

func parseStaggerOrigin(s string) (StaggerOrigin, error) {
	switch s {
	case "", "entry":
		return StaggerFromEntry, nil
	case "request":
		return StaggerFromRequest, nil
	}
	return 0, fmt.Errorf("unknown stagger origin %q", s)
}

// SetScriptRunner attaches a runner to the scene. The runner's step method
// is called at the start of every Update.
func (s *Scene) SetScriptRunner(r *ScriptRunner) {
	s.script = r
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Err returns the error that stopped the script, if any.
func (r *ScriptRunner) Err() error {
	return r.err
}

// Snapshots returns the snapshots taken so far.
func (r *ScriptRunner) Snapshots() []Snapshot {
	return r.snapshots
}

// step advances the runner by one frame. Called from Scene.Update.
func (r *ScriptRunner) step(s *Scene) {
	if r.done {
		return
	}
	if r.waitFrames > 0 {
		r.waitFrames--
		return
	}
	if r.waitUntil > 0 && s.Now() < r.waitUntil-1e-9 {
		return
	}
	r.waitUntil = 0
	if r.settling {
		if !s.settled() {
			return
		}
		r.settling = false
	}

	for r.cursor < len(r.steps) {
		st := r.steps[r.cursor]
		r.cursor++
		if err := r.exec(s, st); err != nil {
			r.err = fmt.Errorf("script step %d (%s): %w", r.cursor-1, st.Action, err)
			r.done = true
			s.logger.Error("script stopped", "error", r.err)
			return
		}
		if st.Action == "wait" || st.Action == "settle" {
			return
		}
	}
	r.done = true
}

func (r *ScriptRunner) exec(s *Scene, st scriptStep) error {
	switch st.Action {
	case "mount":
		req := MountRequest{
			ID:              st.ID,
			Parent:          st.Parent,
			Scope:           st.Scope,
			Initial:         st.Initial,
			Animate:         st.Animate,
			Exit:            st.Exit,
			Index:           st.Index,
			InitialDisabled: st.InitialDisabled,
		}
		if st.Table != "" {
			req.Variants, _ = r.defs.Table(st.Table)
		}
		if len(st.While) > 0 {
			req.While = make(map[Gesture]string, len(st.While))
			for name, v := range st.While {
				g, _ := ParseGesture(name)
				req.While[g] = v
			}
		}
		if st.Transition != nil {
			t, err := ParseTransition(st.Transition)
			if err != nil {
				return err
			}
			req.Transition = &t
		}
		return s.Mount(req)
	case "unmount":
		_, err := s.Unmount(st.ID)
		return err
	case "animate":
		return s.SetAnimate(st.ID, st.Variant)
	case "hover":
		s.GestureStart(st.ID, GestureHover)
	case "unhover":
		s.GestureEnd(st.ID, GestureHover)
	case "tap":
		s.GestureStart(st.ID, GestureTap)
	case "untap":
		s.GestureEnd(st.ID, GestureTap)
	case "gesture":
		g, _ := ParseGesture(st.Gesture)
		if st.Active == nil || *st.Active {
			s.GestureStart(st.ID, g)
		} else {
			s.GestureEnd(st.ID, g)
		}
	case "mode":
		mode, _ := ParseMode(st.Mode)
		origin, _ := parseStaggerOrigin(st.StaggerOrigin)
		s.SetScopeOptions(st.Scope, ScopeOptions{Mode: mode, StaggerOrigin: origin})
	case "wait":
		if st.Frames > 0 {
			// This frame counts as one.
			r.waitFrames = st.Frames - 1
		}
		if st.Seconds > 0 {
			r.waitUntil = s.Now() + st.Seconds
		}
	case "settle":
		r.settling = true
	case "snapshot":
		r.snapshots = append(r.snapshots, s.Snapshot(st.Label))
	}
	return nil
}

// Snapshot captures the values and lifecycle of every node in the tree.
func (s *Scene) Snapshot(label string) Snapshot {
	snap := Snapshot{
		Label:      label,
		Frame:      s.sched.frame,
		Time:       s.sched.now,
		Values:     make(map[NodeID]Values, len(s.nodes)),
		Lifecycles: make(map[NodeID]Lifecycle, len(s.nodes)),
	}
	for id, n := range s.nodes {
		snap.Values[id] = n.values.Clone()
		snap.Lifecycles[id] = n.lifecycle
	}
	return snap
}
