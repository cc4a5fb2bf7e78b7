package corkboard

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// scrollAnim holds active scroll-to tweens for the X and Y translation.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
	target Vec2
}

// Viewport owns the zoom index and pan of a board and converts between
// screen space and content space:
//
//	screen = (content + translation) * zoomFactor
//
// The translation is kept in content units. PanOffset reports the same pan in
// screen pixels, which is what the clamp bounds are expressed in.
type Viewport struct {
	frame     Vec2
	sizeClass SizeClass

	zooms     []float64
	zoomIndex int
	translate Vec2

	// dirty tells the render layer the view changed since the last flush.
	dirty bool

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	matrixDirty   bool

	scrollTween *scrollAnim
}

// NewViewport creates a viewport over a frame of the given size. zooms must be
// ascending; an empty table behaves like a single factor of 1.
func NewViewport(frame Vec2, sizeClass SizeClass, zooms []float64, zoomIndex int) *Viewport {
	if len(zooms) == 0 {
		zooms = []float64{1}
	}
	v := &Viewport{
		frame:       frame,
		sizeClass:   sizeClass,
		zooms:       append([]float64(nil), zooms...),
		dirty:       true,
		matrixDirty: true,
	}
	v.zoomIndex = v.minZoomIndex(zoomIndex)
	v.clamp()
	return v
}

// fits reports whether the frame, seen at zoom z, stays within the content
// bounds.
func (v *Viewport) fits(z float64) bool {
	visible := v.frame.Scale(1 / z)
	content := v.ContentSize()
	return visible.X <= content.X*(1+1e-9) && visible.Y <= content.Y*(1+1e-9)
}

// minZoomIndex clamps i to the table and raises it until the visible area
// fits the content bounds.
func (v *Viewport) minZoomIndex(i int) int {
	i = clampInt(i, 0, len(v.zooms)-1)
	for i < len(v.zooms)-1 && !v.fits(v.zooms[i]) {
		i++
	}
	return i
}

// restore applies a saved zoom index and translation, then reruns the
// zoom-out and clamp rules against the current frame.
func (v *Viewport) restore(index int, t Vec2) {
	v.zoomIndex = v.minZoomIndex(index)
	if !t.IsFinite() {
		t = Vec2{}
	}
	v.translate = t
	v.scrollTween = nil
	v.clamp()
	v.touch()
}

// Frame returns the size of the visible frame in screen pixels.
func (v *Viewport) Frame() Vec2 { return v.frame }

// SizeClass returns the board size class the content bounds derive from.
func (v *Viewport) SizeClass() SizeClass { return v.sizeClass }

// ContentSize returns the maximum content extent, derived from the current
// frame and size class.
func (v *Viewport) ContentSize() Vec2 {
	return v.frame.Scale(v.sizeClass.Multiplier())
}

// ContentBounds returns the content rectangle. Its origin is always (0,0).
func (v *Viewport) ContentBounds() Rect {
	s := v.ContentSize()
	return Rect{Width: s.X, Height: s.Y}
}

// ZoomIndex returns the index into the zoom table.
func (v *Viewport) ZoomIndex() int { return v.zoomIndex }

// ZoomFactor returns the current content-to-screen scale.
func (v *Viewport) ZoomFactor() float64 { return v.zooms[v.zoomIndex] }

// ZoomLevels returns the number of entries in the zoom table.
func (v *Viewport) ZoomLevels() int { return len(v.zooms) }

// Translation returns the content-space pan.
func (v *Viewport) Translation() Vec2 { return v.translate }

// PanOffset returns the pan in screen pixels.
func (v *Viewport) PanOffset() Vec2 { return v.translate.Scale(v.ZoomFactor()) }

// Dirty reports whether the view changed since ClearDirty.
func (v *Viewport) Dirty() bool { return v.dirty }

// ClearDirty is called by the flush once the render layer has caught up.
func (v *Viewport) ClearDirty() { v.dirty = false }

// SetZoomIndex jumps to a zoom table entry and reclamps the pan. The index is
// clamped to the table and to the smallest factor whose visible area fits the
// content. The content point at the frame's top-left stays put.
func (v *Viewport) SetZoomIndex(i int) {
	i = v.minZoomIndex(i)
	if i == v.zoomIndex {
		return
	}
	v.zoomIndex = i
	v.clamp()
	v.touch()
}

// SetTranslation sets the content-space pan and reclamps it. Non-finite
// values are ignored.
func (v *Viewport) SetTranslation(t Vec2) {
	if !t.IsFinite() {
		return
	}
	v.translate = t
	v.clamp()
	v.touch()
}

// Zoom steps the zoom index by one in the given direction, keeping the content
// point under cursor fixed on screen. It reports whether the step was taken.
// Steps past either end of the table are no-ops, and a zoom-out step that
// would make the visible area larger than the content bounds is rejected.
func (v *Viewport) Zoom(cursor Vec2, dir ZoomDirection) bool {
	if !cursor.IsFinite() || dir == 0 {
		return false
	}
	next := v.zoomIndex + int(dir)
	if next < 0 || next >= len(v.zooms) {
		return false
	}
	nz := v.zooms[next]
	if dir < 0 && !v.fits(nz) {
		Logger().Debug("zoom out rejected",
			zap.Float64("zoom", nz),
			zap.Float64("visible_w", v.frame.X/nz),
			zap.Float64("content_w", v.ContentSize().X))
		return false
	}

	anchor := v.ScreenToContent(cursor)
	v.zoomIndex = next
	v.translate = cursor.Scale(1 / nz).Sub(anchor)
	v.scrollTween = nil
	v.clamp()
	v.touch()
	return true
}

// Pan shifts the view by a screen-space pointer delta. The delta is scaled by
// 1/zoomFactor into content units, so content tracks the pointer at the same
// on-screen speed at every zoom level.
func (v *Viewport) Pan(delta Vec2) {
	if !delta.IsFinite() {
		return
	}
	speed := 1 / v.ZoomFactor()
	v.translate = v.translate.Add(delta.Scale(speed))
	v.scrollTween = nil
	v.clamp()
	v.touch()
}

// Resize updates the frame size, rederives the content bounds, and reclamps.
// Non-finite or non-positive sizes are ignored.
func (v *Viewport) Resize(frame Vec2) {
	if !frame.IsFinite() || frame.X <= 0 || frame.Y <= 0 || frame == v.frame {
		return
	}
	v.frame = frame
	v.clamp()
	v.touch()
}

// SetSizeClass changes the content bounds, raises the zoom if the frame no
// longer fits them, and reclamps.
func (v *Viewport) SetSizeClass(s SizeClass) {
	if s == v.sizeClass {
		return
	}
	v.sizeClass = s
	v.zoomIndex = v.minZoomIndex(v.zoomIndex)
	v.scrollTween = nil
	v.clamp()
	v.touch()
}

// ContentToScreen converts a content-space point to screen space.
func (v *Viewport) ContentToScreen(p Vec2) Vec2 {
	v.computeViewMatrix()
	x, y := transformPoint(v.viewMatrix, p.X, p.Y)
	return Vec2{x, y}
}

// ScreenToContent converts a screen-space point to content space.
func (v *Viewport) ScreenToContent(p Vec2) Vec2 {
	v.computeViewMatrix()
	x, y := transformPoint(v.invViewMatrix, p.X, p.Y)
	return Vec2{x, y}
}

// VisibleBounds returns the content-space rectangle currently in the frame.
func (v *Viewport) VisibleBounds() Rect {
	tl := v.ScreenToContent(Vec2{})
	br := v.ScreenToContent(v.frame)
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// FrameCenter returns the content point under the centre of the frame.
func (v *Viewport) FrameCenter() Vec2 {
	return v.ScreenToContent(v.frame.Scale(0.5))
}

// ScrollTo animates the pan so that content point p ends up centred in the
// frame (as far as clamping allows) over duration seconds. A non-positive
// duration jumps immediately.
func (v *Viewport) ScrollTo(p Vec2, duration float32, easeFn ease.TweenFunc) {
	if !p.IsFinite() {
		return
	}
	target := v.clampTranslation(v.frame.Scale(0.5 / v.ZoomFactor()).Sub(p))
	if duration <= 0 {
		v.scrollTween = nil
		v.SetTranslation(target)
		return
	}
	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	v.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(v.translate.X), float32(target.X), duration, easeFn),
		tweenY: gween.New(float32(v.translate.Y), float32(target.Y), duration, easeFn),
		target: target,
	}
}

// Scrolling reports whether a ScrollTo animation is running.
func (v *Viewport) Scrolling() bool { return v.scrollTween != nil }

// Update advances a running scroll animation by dt seconds.
func (v *Viewport) Update(dt float32) {
	s := v.scrollTween
	if s == nil {
		return
	}
	next := v.translate
	if !s.doneX {
		val, done := s.tweenX.Update(dt)
		next.X = float64(val)
		s.doneX = done
	}
	if !s.doneY {
		val, done := s.tweenY.Update(dt)
		next.Y = float64(val)
		s.doneY = done
	}
	if s.doneX && s.doneY {
		// Tweens run in float32; land exactly on the target.
		next = s.target
		v.scrollTween = nil
	}
	v.translate = next
	v.clamp()
	v.touch()
}

func (v *Viewport) touch() {
	v.dirty = true
	v.matrixDirty = true
}

// clamp keeps the translation inside the bounds described by
// clampTranslation. In-range values are left untouched so that a saved
// translation survives a reload bit for bit.
func (v *Viewport) clamp() {
	v.translate = v.clampTranslation(v.translate)
	v.matrixDirty = true
}

// clampTranslation restricts t so that, in screen pixels, the content covers
// the frame on every side whenever it is larger than the frame, and stays
// fully inside the frame when it is smaller.
func (v *Viewport) clampTranslation(t Vec2) Vec2 {
	z := v.ZoomFactor()
	content := v.ContentSize()
	t.X = clampAxis(t.X, z, v.frame.X, content.X)
	t.Y = clampAxis(t.Y, z, v.frame.Y, content.Y)
	return t
}

func clampAxis(t, z, frame, content float64) float64 {
	extent := content * z
	lo, hi := frame-extent, 0.0
	if extent < frame {
		lo, hi = 0, frame-extent
	}
	s := t * z
	if s < lo {
		return lo / z
	}
	if s > hi {
		return hi / z
	}
	return t
}

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Scale(zoom) * Translate(translation)
func (v *Viewport) computeViewMatrix() [6]float64 {
	if !v.matrixDirty {
		return v.viewMatrix
	}
	v.matrixDirty = false
	v.viewMatrix = scaleTranslate(v.ZoomFactor(), v.translate.X, v.translate.Y)
	v.invViewMatrix = invertAffine(v.viewMatrix)
	return v.viewMatrix
}

func clampInt(v, lo, hi int) int {
	return int(math.Max(float64(lo), math.Min(float64(v), float64(hi))))
}
