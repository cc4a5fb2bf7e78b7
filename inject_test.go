package corkboard

import "testing"

func TestInjectPressRelease(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	e.InjectPress(640, 360, ModCtrl)
	e.InjectMove(700, 400)
	e.InjectRelease(700, 400)
	if got := e.PendingInjections(); got != 3 {
		t.Fatalf("expected 3 queued events, got %d", got)
	}

	// Frame 1: press grabs the card.
	e.Update(1.0 / 60)
	if e.PendingInjections() != 2 {
		t.Fatalf("expected 2 remaining events after frame 1, got %d", e.PendingInjections())
	}
	if e.Drag().State() != DragCardMove {
		t.Fatalf("state after press = %v, want card-move", e.Drag().State())
	}

	// Frames 2-3: move and release.
	e.Update(1.0 / 60)
	e.Update(1.0 / 60)
	if e.PendingInjections() != 0 {
		t.Fatalf("queue not drained: %d", e.PendingInjections())
	}
	if e.Drag().State() != DragIdle {
		t.Errorf("state after release = %v, want idle", e.Drag().State())
	}
	if pos, _ := e.CardPosition(1); pos != (Vec2{600, 340}) {
		t.Errorf("card at %v, want (600, 340)", pos)
	}
}

func TestInjectDragFrameCount(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	e.InjectDrag(Vec2{100, 100}, Vec2{200, 100}, 5, ModCtrl)
	if got := e.PendingInjections(); got != 5 {
		t.Fatalf("expected 5 queued events, got %d", got)
	}

	e.InjectDrag(Vec2{100, 100}, Vec2{200, 100}, 0, ModCtrl)
	if got := e.PendingInjections(); got != 7 {
		t.Fatalf("minimum drag is press+release: got %d queued", got)
	}
}

func TestInjectZoomAndLink(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	e.InjectZoom(0, 0, ZoomIn)
	e.InjectLink(640, 360)
	e.InjectLink(5, 5) // empty canvas
	for e.PendingInjections() > 0 {
		e.Update(1.0 / 60)
	}

	if got := e.Board().Viewport().ZoomIndex(); got != 10 {
		t.Errorf("zoom index = %d, want 10", got)
	}
	state, id := e.Board().Relations().Pending()
	if state != PendingOn || id != 1 {
		t.Errorf("pending = %v %d, want card 1 marked", state, id)
	}
}
