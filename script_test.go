package motion

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const scriptDefinitions = `
variants:
  fade:
    hidden: {opacity: 0}
    visible: {opacity: 1}
    out:
      opacity: 0
      transition: {duration: 0.3, ease: linear}
  hover:
    rest: {x: 0}
    hover: {x: 10}
`

func loadScriptDefs(t *testing.T) *Definitions {
	t.Helper()
	d, err := LoadDefinitions([]byte(scriptDefinitions))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func runScript(t *testing.T, doc string) (*Scene, *ScriptRunner) {
	t.Helper()
	r, err := LoadScript([]byte(doc), loadScriptDefs(t))
	if err != nil {
		t.Fatal(err)
	}
	s := NewScene()
	s.SetScriptRunner(r)
	if _, idle := s.Settle(frame60, 2000); !idle {
		t.Fatalf("script did not finish (done %v, err %v)", r.Done(), r.Err())
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	return s, r
}

func snapshotByLabel(t *testing.T, r *ScriptRunner, label string) Snapshot {
	t.Helper()
	for _, snap := range r.Snapshots() {
		if snap.Label == label {
			return snap
		}
	}
	t.Fatalf("no snapshot %q", label)
	return Snapshot{}
}

func TestScriptWaitMode(t *testing.T) {
	_, r := runScript(t, `
steps:
  - {action: mode, mode: wait}
  - {action: mount, id: a, table: fade, animate: visible, exit: out}
  - {action: wait, frames: 1}
  - {action: unmount, id: a}
  - {action: mount, id: b, table: fade, initial: hidden, animate: visible}
  - {action: snapshot, label: requested}
  - {action: settle}
  - {action: snapshot, label: done}
`)
	req := snapshotByLabel(t, r, "requested")
	if req.Lifecycles["a"] != Exiting {
		t.Errorf("a = %v, want exiting", req.Lifecycles["a"])
	}
	if req.Lifecycles["b"] != Mounting || len(req.Values["b"]) != 0 {
		t.Errorf("b = %v %v, want a mounting node with no values", req.Lifecycles["b"], req.Values["b"])
	}

	done := snapshotByLabel(t, r, "done")
	if _, ok := done.Lifecycles["a"]; ok {
		t.Error("a still present after settle")
	}
	if done.Lifecycles["b"] != Active || done.Values["b"][PropOpacity] != 1 {
		t.Errorf("b = %v %v, want active at opacity 1", done.Lifecycles["b"], done.Values["b"])
	}
	if done.Time < 0.3 {
		t.Errorf("settled at %v, want after the 0.3s exit", done.Time)
	}
}

func TestScriptHover(t *testing.T) {
	_, r := runScript(t, `
steps:
  - action: mount
    id: n
    table: hover
    animate: rest
    while: {hover: hover}
    transition: {duration: 0.2, ease: linear}
  - {action: wait, frames: 1}
  - {action: hover, id: n}
  - {action: wait, seconds: 0.5}
  - {action: snapshot, label: hovered}
  - {action: unhover, id: n}
  - {action: settle}
  - {action: snapshot, label: rest}
`)
	if got := snapshotByLabel(t, r, "hovered").Values["n"][PropX]; got != 10 {
		t.Errorf("hovered x = %v, want 10", got)
	}
	if got := snapshotByLabel(t, r, "rest").Values["n"][PropX]; got != 0 {
		t.Errorf("rest x = %v, want 0", got)
	}
}

func TestScriptWaitFrames(t *testing.T) {
	s, r := runScript(t, `
steps:
  - {action: wait, frames: 5}
  - {action: snapshot, label: after}
`)
	if got := snapshotByLabel(t, r, "after").Frame; got != 5 {
		t.Errorf("snapshot frame = %d, want 5", got)
	}
	if !s.Idle() {
		t.Error("scene not idle")
	}
}

func TestScriptGestureAndAnimate(t *testing.T) {
	_, r := runScript(t, `
steps:
  - {action: mount, id: n, table: fade, initial: hidden, animate: visible}
  - {action: settle}
  - {action: animate, id: n, variant: hidden}
  - {action: gesture, id: n, gesture: focus}
  - {action: gesture, id: n, gesture: focus, active: false}
  - {action: settle}
  - {action: snapshot, label: end}
`)
	if got := snapshotByLabel(t, r, "end").Values["n"][PropOpacity]; math.Abs(got) > 1e-9 {
		t.Errorf("opacity = %v, want 0", got)
	}
}

func TestScriptRuntimeError(t *testing.T) {
	r, err := LoadScript([]byte(`
steps:
  - {action: unmount, id: ghost}
  - {action: wait, frames: 1}
`), nil)
	if err != nil {
		t.Fatal(err)
	}
	s := NewScene()
	s.SetScriptRunner(r)
	s.Update(frame60)
	if !r.Done() {
		t.Error("runner not done after an error")
	}
	if !errors.Is(r.Err(), ErrUnknownNode) {
		t.Errorf("Err = %v, want ErrUnknownNode", r.Err())
	}
	if !strings.Contains(r.Err().Error(), "step 0") {
		t.Errorf("Err = %v, want the step number", r.Err())
	}
}

func TestLoadScriptErrors(t *testing.T) {
	defs := loadScriptDefs(t)
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", `steps: []`, "no steps"},
		{"unknown action", `steps: [{action: jump}]`, "unknown action"},
		{"mount without id", `steps: [{action: mount}]`, "needs an id"},
		{"unknown table", `steps: [{action: mount, id: a, table: nope}]`, "unknown table"},
		{"unknown gesture", `steps: [{action: mount, id: a, while: {wave: x}}]`, "unknown gesture"},
		{"bad mode", `steps: [{action: mode, mode: shuffle}]`, "unknown orchestration mode"},
		{"bad origin", `steps: [{action: mode, mode: wait, staggerOrigin: later}]`, "unknown stagger origin"},
		{"negative wait", `steps: [{action: wait, frames: -1}]`, "negative wait"},
		{"bad yaml", `steps: {`, "parse script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.doc), defs)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}

	if _, err := LoadScript([]byte(`steps: [{action: mount, id: a, table: fade}]`), nil); err == nil {
		t.Error("table reference without definitions accepted")
	}
}
