package corkboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// gestureStep is a single action in a gesture script.
type gestureStep struct {
	Action string   `json:"action"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	FromX  float64  `json:"fromX,omitempty"`
	FromY  float64  `json:"fromY,omitempty"`
	ToX    float64  `json:"toX,omitempty"`
	ToY    float64  `json:"toY,omitempty"`
	Frames int      `json:"frames,omitempty"`
	Mods   []string `json:"mods,omitempty"`
	Dir    string   `json:"dir,omitempty"`
	Title  string   `json:"title,omitempty"`
}

type gestureScript struct {
	Steps []gestureStep `json:"steps"`
}

// GestureScript replays a JSON list of input steps against an Editor, one
// step per Update, waiting for injected events to drain between steps.
//
// Actions: press, move, release, drag, zoom, link, add, wait.
type GestureScript struct {
	steps     []gestureStep
	mods      []KeyModifiers
	cursor    int
	waitCount int
	done      bool
}

// LoadGestureScript parses a gesture script.
func LoadGestureScript(jsonData []byte) (*GestureScript, error) {
	var script gestureScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	mods := make([]KeyModifiers, len(script.Steps))
	for i, st := range script.Steps {
		switch st.Action {
		case "press", "move", "release", "drag", "link", "add", "wait":
		case "zoom":
			if st.Dir != "in" && st.Dir != "out" {
				return nil, fmt.Errorf("parse gesture script: step %d: zoom dir %q", i, st.Dir)
			}
		default:
			return nil, fmt.Errorf("parse gesture script: step %d: unknown action %q", i, st.Action)
		}
		for _, name := range st.Mods {
			m, err := ParseModifier(name)
			if err != nil {
				return nil, fmt.Errorf("parse gesture script: step %d: %w", i, err)
			}
			mods[i] |= m
		}
	}
	return &GestureScript{steps: script.Steps, mods: mods}, nil
}

// SetGestureScript attaches a script. Pass nil to detach.
func (e *Editor) SetGestureScript(s *GestureScript) {
	e.script = s
}

// Done reports whether every step has run and its input was consumed.
func (r *GestureScript) Done() bool {
	return r.done
}

// step advances the script by one frame. Called from Editor.Update.
func (r *GestureScript) step(e *Editor) {
	if r.done {
		return
	}
	if len(e.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	mods := r.mods[r.cursor]
	r.cursor++

	switch st.Action {
	case "press":
		e.InjectPress(st.X, st.Y, mods)
	case "move":
		e.InjectMove(st.X, st.Y)
	case "release":
		e.InjectRelease(st.X, st.Y)
	case "drag":
		e.InjectDrag(Vec2{st.FromX, st.FromY}, Vec2{st.ToX, st.ToY}, st.Frames, mods)
	case "zoom":
		dir := ZoomIn
		if strings.EqualFold(st.Dir, "out") {
			dir = ZoomOut
		}
		e.InjectZoom(st.X, st.Y, dir)
	case "link":
		e.InjectLink(st.X, st.Y)
	case "add":
		c := e.AddCard()
		if st.Title != "" {
			title := st.Title
			e.UpdateCard(c.ID, CardPatch{Title: &title})
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 {
		r.done = true
	}
}
