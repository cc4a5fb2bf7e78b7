package corkboard

import "go.uber.org/zap"

// DragState is the gesture state of a DragController.
type DragState uint8

const (
	DragIdle     DragState = iota // no gesture
	DragPanning                   // pointer motion pans the viewport
	DragCardMove                  // pointer motion moves one card
)

func (s DragState) String() string {
	switch s {
	case DragPanning:
		return "panning"
	case DragCardMove:
		return "dragging-card"
	default:
		return "idle"
	}
}

// DragTarget is what a DragController drives. Board implements it directly;
// Editor wraps it to emit events and schedule flushes.
type DragTarget interface {
	CardAt(screen Vec2) (CardID, bool)
	CardPosition(id CardID) (Vec2, bool)
	ScreenToContent(screen Vec2) Vec2
	Pan(delta Vec2)
	MoveCard(id CardID, pos Vec2) error
}

// DragController turns pointer and modifier input into pan or card-drag
// gestures. Gestures start only while the designated modifier is held, and a
// press over a card always drags the card rather than panning.
type DragController struct {
	target   DragTarget
	modifier KeyModifiers

	state DragState
	last  Vec2 // last pointer position in screen space
	card  CardID
	grab  Vec2 // pointer minus card origin, content space
}

// NewDragController creates an idle controller. modifier is the key that
// must be held; zero means Ctrl.
func NewDragController(target DragTarget, modifier KeyModifiers) *DragController {
	if modifier == 0 {
		modifier = ModCtrl
	}
	return &DragController{target: target, modifier: modifier}
}

// State returns the current gesture state.
func (d *DragController) State() DragState { return d.state }

// DraggedCard returns the card being dragged, if any.
func (d *DragController) DraggedCard() (CardID, bool) {
	if d.state != DragCardMove {
		return 0, false
	}
	return d.card, true
}

// Modifier returns the designated modifier.
func (d *DragController) Modifier() KeyModifiers { return d.modifier }

// PointerDown starts a gesture when the designated modifier is held.
func (d *DragController) PointerDown(screen Vec2, mods KeyModifiers) DragState {
	if d.state != DragIdle || !screen.IsFinite() || !mods.Has(d.modifier) {
		return d.state
	}
	d.last = screen
	if id, ok := d.target.CardAt(screen); ok {
		origin, _ := d.target.CardPosition(id)
		d.card = id
		d.grab = d.target.ScreenToContent(screen).Sub(origin)
		d.state = DragCardMove
		Logger().Debug("drag card", zap.Int("card", int(id)))
		return d.state
	}
	d.state = DragPanning
	return d.state
}

// PointerMove feeds one motion sample to the active gesture.
func (d *DragController) PointerMove(screen Vec2) {
	if d.state == DragIdle || !screen.IsFinite() {
		return
	}
	switch d.state {
	case DragPanning:
		delta := screen.Sub(d.last)
		d.last = screen
		d.target.Pan(delta)
	case DragCardMove:
		d.last = screen
		pos := d.target.ScreenToContent(screen).Sub(d.grab)
		if err := d.target.MoveCard(d.card, pos); err != nil {
			// The card went away mid-drag.
			d.reset()
		}
	}
}

// PointerUp ends the gesture. The release position is applied first.
func (d *DragController) PointerUp(screen Vec2) {
	d.PointerMove(screen)
	d.reset()
}

// PointerLeave ends the gesture without applying a final sample.
func (d *DragController) PointerLeave() { d.reset() }

// ModifiersChanged ends the gesture once the designated modifier is released.
func (d *DragController) ModifiersChanged(mods KeyModifiers) {
	if !mods.Has(d.modifier) {
		d.reset()
	}
}

// Cancel drops any gesture.
func (d *DragController) Cancel() { d.reset() }

func (d *DragController) reset() {
	d.state = DragIdle
	d.card = 0
	d.grab = Vec2{}
}
