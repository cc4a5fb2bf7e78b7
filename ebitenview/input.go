package ebitenview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/corkboard"
)

// inputSource is the slice of Ebitengine's input API the view reads.
type inputSource interface {
	CursorPosition() (int, int)
	Wheel() (float64, float64)
	MousePressed(b ebiten.MouseButton) bool
	MouseJustPressed(b ebiten.MouseButton) bool
	MouseJustReleased(b ebiten.MouseButton) bool
	KeyPressed(k ebiten.Key) bool
	KeyJustPressed(k ebiten.Key) bool
}

type ebitenInput struct{}

func (ebitenInput) CursorPosition() (int, int) { return ebiten.CursorPosition() }
func (ebitenInput) Wheel() (float64, float64)  { return ebiten.Wheel() }

func (ebitenInput) MousePressed(b ebiten.MouseButton) bool {
	return ebiten.IsMouseButtonPressed(b)
}

func (ebitenInput) MouseJustPressed(b ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustPressed(b)
}

func (ebitenInput) MouseJustReleased(b ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustReleased(b)
}

func (ebitenInput) KeyPressed(k ebiten.Key) bool     { return ebiten.IsKeyPressed(k) }
func (ebitenInput) KeyJustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

// readModifiers returns the currently held modifier keys.
func readModifiers(in inputSource) corkboard.KeyModifiers {
	var m corkboard.KeyModifiers
	if in.KeyPressed(ebiten.KeyShift) || in.KeyPressed(ebiten.KeyShiftLeft) || in.KeyPressed(ebiten.KeyShiftRight) {
		m |= corkboard.ModShift
	}
	if in.KeyPressed(ebiten.KeyControl) || in.KeyPressed(ebiten.KeyControlLeft) || in.KeyPressed(ebiten.KeyControlRight) {
		m |= corkboard.ModCtrl
	}
	if in.KeyPressed(ebiten.KeyAlt) || in.KeyPressed(ebiten.KeyAltLeft) || in.KeyPressed(ebiten.KeyAltRight) {
		m |= corkboard.ModAlt
	}
	if in.KeyPressed(ebiten.KeyMeta) || in.KeyPressed(ebiten.KeyMetaLeft) || in.KeyPressed(ebiten.KeyMetaRight) {
		m |= corkboard.ModMeta
	}
	return m
}

// handleInput maps one tick of input onto editor calls.
func (v *View) handleInput() {
	in := v.in
	mods := readModifiers(in)
	if mods != v.mods {
		v.mods = mods
		v.ed.ModifiersChanged(mods)
	}

	x, y := in.CursorPosition()
	cursor := corkboard.Vec2{X: float64(x), Y: float64(y)}
	inside := x >= 0 && y >= 0 && x < v.width && y < v.height
	moved := cursor != v.cursor
	v.cursor, v.inside = cursor, inside
	v.hovered, v.hovering = 0, false
	if inside {
		v.hovered, v.hovering = v.ed.CardAt(cursor)
	}

	if _, dy := in.Wheel(); dy != 0 && inside && mods.Has(v.ed.Drag().Modifier()) {
		dir := corkboard.ZoomIn
		if dy < 0 {
			dir = corkboard.ZoomOut
		}
		v.ed.Zoom(cursor, dir)
	}

	switch {
	case in.MouseJustPressed(ebiten.MouseButtonLeft) && inside:
		v.ed.PointerDown(cursor, mods)
	case in.MouseJustReleased(ebiten.MouseButtonLeft):
		v.ed.PointerUp(cursor)
	case !inside && v.ed.Drag().State() != corkboard.DragIdle:
		v.ed.PointerLeave()
	case moved && in.MousePressed(ebiten.MouseButtonLeft):
		v.ed.PointerMove(cursor)
	}

	if in.MouseJustPressed(ebiten.MouseButtonRight) && inside {
		if res, ok := v.ed.LinkAt(cursor); ok {
			v.setStatus(res.String())
		}
	}

	v.handleKeys(mods)
}

func (v *View) handleKeys(mods corkboard.KeyModifiers) {
	in := v.in
	cmd := mods.Has(corkboard.ModCtrl) || mods.Has(corkboard.ModMeta)

	switch {
	case cmd && in.KeyJustPressed(ebiten.KeyS):
		save := v.ed.Save
		if mods.Has(corkboard.ModShift) {
			save = v.ed.SaveAs
		}
		if err := save(v.saved); err != nil {
			v.failed("save", err)
		}
	case cmd && in.KeyJustPressed(ebiten.KeyO):
		if err := v.ed.Open(v.opened); err != nil {
			v.failed("open", err)
		}
	case cmd && in.KeyJustPressed(ebiten.KeyC):
		v.copyCard()
	case cmd && in.KeyJustPressed(ebiten.KeyV):
		v.paste()
	case cmd && in.KeyJustPressed(ebiten.KeyQ):
		v.quit = true
	case in.KeyJustPressed(ebiten.KeyN):
		v.newCard("")
	case in.KeyJustPressed(ebiten.KeyDelete), in.KeyJustPressed(ebiten.KeyBackspace):
		if v.hovering {
			_ = v.ed.DeleteCard(v.hovered)
		}
	case in.KeyJustPressed(ebiten.KeyEscape):
		v.ed.CancelLink()
	case in.KeyJustPressed(ebiten.KeyF):
		if v.hovering {
			_ = v.ed.FocusCard(v.hovered, focusSeconds)
		}
	case in.KeyJustPressed(ebiten.KeyF3):
		v.showHUD = !v.showHUD
	case in.KeyJustPressed(ebiten.KeyF12):
		v.Screenshot("board")
	}
}

// newCard adds a card centred on the cursor, or in the frame centre when
// the cursor is outside the window.
func (v *View) newCard(body string) (corkboard.Card, bool) {
	var c corkboard.Card
	if v.inside {
		size := v.ed.Board().Cards().Size()
		pos := v.ed.ScreenToContent(v.cursor).Sub(size.Scale(0.5))
		var ok bool
		if c, ok = v.ed.AddCardAt(pos); !ok {
			return c, false
		}
	} else {
		c = v.ed.AddCard()
	}
	if body != "" {
		_, _ = v.ed.UpdateCard(c.ID, corkboard.CardPatch{Body: &body})
	}
	return c, true
}
