// Package export renders a board to a PNG image without a window.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/phanxgames/corkboard"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// ErrNothingToExport is returned for a board without cards.
var ErrNothingToExport = errors.New("export: nothing to export")

// maxSide caps the image size in pixels on either axis.
const maxSide = 8192

// Options controls the rendered image. Zero fields take their
// DefaultOptions value, except Padding where zero means no margin.
type Options struct {
	// Padding is the margin around the cards, in content units.
	Padding float64
	// Scale multiplies content units into pixels.
	Scale float64
	// FontSize is the body text size in points at Scale 1.
	FontSize float64

	Background color.Color
	LineColor  color.Color
	TextColor  color.Color
}

// DefaultOptions returns options for a 1:1 export on a white background.
func DefaultOptions() Options {
	return Options{
		Padding:    40,
		Scale:      1,
		FontSize:   12,
		Background: color.White,
		LineColor:  color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff},
		TextColor:  color.Black,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Padding < 0 || math.IsNaN(o.Padding) {
		o.Padding = d.Padding
	}
	if !(o.Scale > 0) || math.IsInf(o.Scale, 0) {
		o.Scale = d.Scale
	}
	if !(o.FontSize > 0) {
		o.FontSize = d.FontSize
	}
	if o.Background == nil {
		o.Background = d.Background
	}
	if o.LineColor == nil {
		o.LineColor = d.LineColor
	}
	if o.TextColor == nil {
		o.TextColor = d.TextColor
	}
	return o
}

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

func mono() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// Bounds returns the content rectangle covering every card, or false for an
// empty board.
func Bounds(b *corkboard.Board) (corkboard.Rect, bool) {
	cards := b.Cards()
	var out corkboard.Rect
	found := false
	for _, c := range cards.Cards() {
		r, _ := cards.Bounds(c.ID)
		if !found {
			out, found = r, true
			continue
		}
		out = out.Union(r)
	}
	return out, found
}

// Render draws the board. Relation lines go behind the cards, which are
// painted in stacking order with their title and body.
func Render(b *corkboard.Board, opts Options) (image.Image, error) {
	dc, err := render(b, opts.normalized())
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// PNG renders the board and writes it to w as PNG.
func PNG(w io.Writer, b *corkboard.Board, opts Options) error {
	dc, err := render(b, opts.normalized())
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG renders the board into a PNG file at path.
func SavePNG(path string, b *corkboard.Board, opts Options) error {
	dc, err := render(b, opts.normalized())
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	corkboard.Logger().Info("board exported", zap.String("path", path))
	return nil
}

func render(b *corkboard.Board, o Options) (*gg.Context, error) {
	bounds, ok := Bounds(b)
	if !ok {
		return nil, ErrNothingToExport
	}
	bounds.X -= o.Padding
	bounds.Y -= o.Padding
	bounds.Width += 2 * o.Padding
	bounds.Height += 2 * o.Padding

	scale := o.Scale
	if longest := math.Max(bounds.Width, bounds.Height) * scale; longest > maxSide {
		scale *= maxSide / longest
	}
	w := int(math.Ceil(bounds.Width * scale))
	h := int(math.Ceil(bounds.Height * scale))

	ttf, err := mono()
	if err != nil {
		return nil, fmt.Errorf("export: parse font: %w", err)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(o.Background)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-bounds.X, -bounds.Y)

	cards := b.Cards()

	dc.SetColor(o.LineColor)
	dc.SetLineWidth(2)
	for _, rel := range b.Relations().Relations() {
		from, ok1 := cards.Center(rel.A)
		to, ok2 := cards.Center(rel.B)
		if !ok1 || !ok2 {
			continue
		}
		dc.DrawLine(from.X, from.Y, to.X, to.Y)
		dc.Stroke()
	}

	titleFace := truetype.NewFace(ttf, &truetype.Options{Size: o.FontSize + 2, DPI: 72, Hinting: font.HintingFull})
	bodyFace := truetype.NewFace(ttf, &truetype.Options{Size: o.FontSize, DPI: 72, Hinting: font.HintingFull})
	defer titleFace.Close()
	defer bodyFace.Close()

	for _, c := range paintOrder(cards.Cards()) {
		r, _ := cards.Bounds(c.ID)
		drawCard(dc, c, r, o, titleFace, bodyFace)
	}
	return dc, nil
}

// paintOrder sorts cards by Z, lowest first.
func paintOrder(cards []corkboard.Card) []corkboard.Card {
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Z < cards[j].Z })
	return cards
}

func drawCard(dc *gg.Context, c corkboard.Card, r corkboard.Rect, o Options, titleFace, bodyFace font.Face) {
	fill := corkboard.CardColor(c)
	dc.SetColor(fill.NRGBA())
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Fill()

	dc.SetColor(fill.Darken(0.7).NRGBA())
	dc.SetLineWidth(1)
	dc.DrawRectangle(r.X+0.5, r.Y+0.5, r.Width-1, r.Height-1)
	dc.Stroke()

	const inset = 8
	textW := r.Width - 2*inset
	y := r.Y + inset
	dc.SetColor(o.TextColor)
	if title := strings.TrimSpace(c.Title); title != "" {
		dc.SetFontFace(titleFace)
		lines := dc.WordWrap(title, textW)
		y = drawLines(dc, lines, r.X+inset, y, r.Y+r.Height-inset)
		y += 4
	}
	if body := strings.TrimSpace(c.Body); body != "" {
		dc.SetFontFace(bodyFace)
		var lines []string
		for _, para := range strings.Split(body, "\n") {
			lines = append(lines, dc.WordWrap(para, textW)...)
		}
		drawLines(dc, lines, r.X+inset, y, r.Y+r.Height-inset)
	}
}

// drawLines writes lines top-down from y and stops before bottom. It
// returns the y after the last line drawn.
func drawLines(dc *gg.Context, lines []string, x, y, bottom float64) float64 {
	lh := dc.FontHeight() * 1.3
	for _, line := range lines {
		if y+lh > bottom {
			break
		}
		dc.DrawStringAnchored(line, x, y, 0, 1)
		y += lh
	}
	return y
}
