package ebitenview

import (
	"image"
	"math"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/phanxgames/corkboard"
)

// minTextPx is the smallest font size worth drawing.
const minTextPx = 5

// frame is what Draw paints: a screen-space snapshot taken at the last
// flush.
type frame struct {
	cards    []cardView
	segments []corkboard.Segment
	pending  corkboard.CardID
	zoom     float64
}

type cardView struct {
	card corkboard.Card
	rect corkboard.Rect // screen space
}

// capture runs after each relation endpoint pass.
func (v *View) capture() {
	b := v.ed.Board()
	vp := b.Viewport()
	z := vp.ZoomFactor()
	size := b.Cards().Size().Scale(z)
	visible := corkboard.Rect{Width: vp.Frame().X, Height: vp.Frame().Y}

	cards := b.Cards().Cards()
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Z < cards[j].Z })

	f := frame{
		cards:    v.frame.cards[:0],
		segments: append(v.frame.segments[:0], b.Relations().Endpoints()...),
		zoom:     z,
	}
	for _, c := range cards {
		p := vp.ContentToScreen(c.Pos)
		r := corkboard.Rect{X: p.X, Y: p.Y, Width: size.X, Height: size.Y}
		if !r.Intersects(visible) {
			continue
		}
		f.cards = append(f.cards, cardView{card: c, rect: r})
	}
	if state, id := b.Relations().Pending(); state == corkboard.PendingOn {
		f.pending = id
	}
	v.frame = f
}

// Draw paints the captured frame, the status line and any queued
// screenshots.
func (v *View) Draw(screen *ebiten.Image) {
	screen.Fill(v.opts.Background.NRGBA())

	line := v.opts.LineColor.NRGBA()
	width := float32(clamp(2*v.frame.zoom, 1, 4))
	for _, s := range v.frame.segments {
		vector.StrokeLine(screen,
			float32(s.From.X), float32(s.From.Y), float32(s.To.X), float32(s.To.Y),
			width, line, true)
	}

	for i := range v.frame.cards {
		v.drawCard(screen, &v.frame.cards[i])
	}

	if v.showHUD {
		hud := v.hudText()
		ebitenutil.DebugPrintAt(screen, hud, 4, v.height-16*hudLines(hud)-2)
	}
	v.flushScreenshots(screen)
}

func (v *View) drawCard(screen *ebiten.Image, cv *cardView) {
	r := cv.rect
	x, y, w, h := float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height)
	fill := corkboard.CardColor(cv.card)

	vector.DrawFilledRect(screen, x, y, w, h, fill.NRGBA(), false)
	border := fill.Darken(0.7).NRGBA()
	stroke := float32(1)
	if v.hovering && v.hovered == cv.card.ID {
		stroke = 2
	}
	vector.StrokeRect(screen, x, y, w, h, stroke, border, false)
	if v.frame.pending == cv.card.ID {
		vector.StrokeRect(screen, x-2, y-2, w+4, h+4, 3, v.opts.PendingColor.NRGBA(), false)
	}

	if v.font == nil {
		return
	}
	size := v.opts.FontSize * v.frame.zoom
	if size < minTextPx {
		return
	}
	inset := 8 * v.frame.zoom
	inner := r
	inner.X += inset
	inner.Y += inset
	inner.Width -= 2 * inset
	inner.Height -= 2 * inset
	if inner.Width <= 0 || inner.Height <= 0 {
		return
	}

	clip := screen.SubImage(screenRect(inner)).(*ebiten.Image)
	top := inner.Y
	if t := strings.TrimSpace(cv.card.Title); t != "" {
		face := &text.GoTextFace{Source: v.font, Size: size * 1.15}
		top = v.drawText(clip, face, t, inner.X, top, inner.Width)
		top += 4 * v.frame.zoom
	}
	if b := strings.TrimSpace(cv.card.Body); b != "" {
		face := &text.GoTextFace{Source: v.font, Size: size}
		v.drawText(clip, face, b, inner.X, top, inner.Width)
	}
}

// drawText wraps s to width and draws it from (x, y). It returns the y
// below the last line.
func (v *View) drawText(dst *ebiten.Image, face *text.GoTextFace, s string, x, y, width float64) float64 {
	m := face.Metrics()
	lh := m.HAscent + m.HDescent + m.HLineGap
	lines := wrapText(s, width, func(s string) float64 { return text.Advance(s, face) })

	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.LineSpacing = lh
	op.ColorScale.ScaleWithColor(v.opts.TextColor.NRGBA())
	text.Draw(dst, strings.Join(lines, "\n"), face, op)
	return y + lh*float64(len(lines))
}

// wrapText breaks s into lines no wider than width, splitting at spaces.
// Newlines in s are kept. A word wider than width gets a line of its own.
func wrapText(s string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if next := cur + " " + w; measure(next) <= width {
				cur = next
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		lines = append(lines, cur)
	}
	return lines
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func screenRect(r corkboard.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
}
