package corkboard

type syntheticKind uint8

const (
	synthPress syntheticKind = iota
	synthMove
	synthRelease
	synthZoom
	synthLink
)

// syntheticEvent is one injected input event in screen coordinates.
type syntheticEvent struct {
	kind   syntheticKind
	screen Vec2
	mods   KeyModifiers
	dir    ZoomDirection
}

// InjectPress queues a pointer press with the given modifiers held. The event
// is consumed by the next Update.
func (e *Editor) InjectPress(x, y float64, mods KeyModifiers) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthPress, screen: Vec2{x, y}, mods: mods})
}

// InjectMove queues a pointer move.
func (e *Editor) InjectMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthMove, screen: Vec2{x, y}})
}

// InjectRelease queues a pointer release.
func (e *Editor) InjectRelease(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthRelease, screen: Vec2{x, y}})
}

// InjectZoom queues one zoom step around (x, y).
func (e *Editor) InjectZoom(x, y float64, dir ZoomDirection) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthZoom, screen: Vec2{x, y}, dir: dir})
}

// InjectLink queues a link click on whatever card is under (x, y).
func (e *Editor) InjectLink(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{kind: synthLink, screen: Vec2{x, y}})
}

// InjectDrag queues a full drag: press at from, linearly interpolated moves
// over frames-2 intermediate frames, and release at to. Minimum frames is 2.
func (e *Editor) InjectDrag(from, to Vec2, frames int, mods KeyModifiers) {
	if frames < 2 {
		frames = 2
	}
	e.InjectPress(from.X, from.Y, mods)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.InjectMove(from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t)
	}
	e.InjectRelease(to.X, to.Y)
}

// PendingInjections reports how many injected events are still queued.
func (e *Editor) PendingInjections() int { return len(e.injectQueue) }

// processInjectedInput pops and applies one queued event.
func (e *Editor) processInjectedInput() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	switch evt.kind {
	case synthPress:
		e.PointerDown(evt.screen, evt.mods)
	case synthMove:
		e.PointerMove(evt.screen)
	case synthRelease:
		e.PointerUp(evt.screen)
	case synthZoom:
		e.Zoom(evt.screen, evt.dir)
	case synthLink:
		e.LinkAt(evt.screen)
	}
	return true
}
