package hotspot

import (
	"encoding/json"
	"fmt"
)

// scriptAction is one entry of a navigation script. Only the fields its
// Action uses are set.
type scriptAction struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Key    string  `json:"key,omitempty"`
	Frames int     `json:"frames,omitempty"`

	// expect
	Index   *int    `json:"index,omitempty"`
	Level   *int    `json:"level,omitempty"`
	Hotspot *string `json:"hotspot,omitempty"`
}

// TestRunner replays a navigation script one action per frame and checks
// the navigation state at "expect" actions. Attach it with
// Scene.SetTestRunner.
type TestRunner struct {
	steps    []scriptAction
	cursor   int
	hold     int
	settling bool
	done     bool
	failures []error
}

// LoadTestScript parses a JSON script of the form {"steps": [...]}.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var doc struct {
		Steps []scriptAction `json:"steps"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, a := range doc.Steps {
		switch a.Action {
		case "click", "move", "wheel", "wait", "settle", "expect":
		case "key":
			if ParseKey(a.Key) == KeyNone {
				return nil, fmt.Errorf("parse test script: step %d: unknown key %q", i, a.Key)
			}
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, a.Action)
		}
	}
	return &TestRunner{steps: doc.Steps}, nil
}

// Done reports whether the whole script ran.
func (r *TestRunner) Done() bool { return r.done }

// Failures returns the mismatches recorded by expect steps.
func (r *TestRunner) Failures() []error { return r.failures }

// busy reports whether the runner must hold this frame.
func (r *TestRunner) busy(s *Scene) bool {
	switch {
	case len(s.injectQueue) > 0:
		return true
	case r.hold > 0:
		r.hold--
		return true
	case r.settling && s.mapper.Animating():
		return true
	}
	r.settling = false
	return false
}

func (r *TestRunner) step(s *Scene) {
	if r.done || r.busy(s) {
		return
	}
	if r.cursor == len(r.steps) {
		r.done = true
		return
	}
	a := r.steps[r.cursor]
	r.cursor++

	switch a.Action {
	case "click":
		s.InjectClick(a.X, a.Y)
	case "move":
		s.InjectMove(a.X, a.Y)
	case "wheel":
		s.InjectWheel(a.Delta)
	case "key":
		s.InjectKey(ParseKey(a.Key))
	case "wait":
		// The current frame is the first one waited.
		r.hold = max(a.Frames-1, 0)
	case "settle":
		r.settling = true
	case "expect":
		r.check(s, a)
	}

	if r.cursor == len(r.steps) && r.hold == 0 && !r.settling && len(s.injectQueue) == 0 {
		r.done = true
	}
}

// check compares the navigation position with a; step numbers in failures
// are 1-based.
func (r *TestRunner) check(s *Scene, a scriptAction) {
	p := s.Debug().CurrentPosition()
	fail := func(format string, args ...any) {
		r.failures = append(r.failures, fmt.Errorf("step %d: "+format, append([]any{r.cursor}, args...)...))
	}
	if a.Index != nil && p.Index != *a.Index {
		fail("index %d, want %d", p.Index, *a.Index)
	}
	if a.Level != nil && p.Level != *a.Level {
		fail("level %d, want %d", p.Level, *a.Level)
	}
	if a.Hotspot != nil && p.Hotspot != *a.Hotspot {
		fail("hotspot %q, want %q", p.Hotspot, *a.Hotspot)
	}
}
