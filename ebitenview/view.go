package ebitenview

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/phanxgames/corkboard"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	focusSeconds  = 0.4 // FocusCard animation length
	statusSeconds = 3.0 // how long a status message stays up
)

// Options configures a View. Zero colours and sizes fall back to
// DefaultOptions.
type Options struct {
	Background   corkboard.Color
	LineColor    corkboard.Color
	PendingColor corkboard.Color
	TextColor    corkboard.Color
	// FontSize is the card body size in pixels at zoom 1.
	FontSize float64

	ShowHUD bool
	ShowFPS bool
	// ScreenshotDir receives F12 screenshots. Empty means the working
	// directory.
	ScreenshotDir string

	// Clipboard defaults to the system clipboard.
	Clipboard Clipboard
	// Logger defaults to corkboard.Logger().
	Logger *zap.Logger
}

// DefaultOptions returns a cork-coloured board with the status line on.
func DefaultOptions() Options {
	return Options{
		Background:    corkboard.Color{R: 0.76, G: 0.6, B: 0.42, A: 1},
		LineColor:     corkboard.Color{R: 0.2, G: 0.2, B: 0.25, A: 1},
		PendingColor:  corkboard.Color{R: 0.9, G: 0.2, B: 0.2, A: 1},
		TextColor:     corkboard.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		FontSize:      14,
		ShowHUD:       true,
		ScreenshotDir: ".",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Background.A == 0 {
		o.Background = d.Background
	}
	if o.LineColor.A == 0 {
		o.LineColor = d.LineColor
	}
	if o.PendingColor.A == 0 {
		o.PendingColor = d.PendingColor
	}
	if o.TextColor.A == 0 {
		o.TextColor = d.TextColor
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = d.ScreenshotDir
	}
	if o.Clipboard == nil {
		o.Clipboard = systemClipboard{}
	}
	if o.Logger == nil {
		o.Logger = corkboard.Logger()
	}
	return o
}

// View is an ebiten.Game driving one editor.
type View struct {
	ed   *corkboard.Editor
	opts Options
	log  *zap.Logger
	in   inputSource

	width, height int

	mods     corkboard.KeyModifiers
	cursor   corkboard.Vec2
	inside   bool
	hovered  corkboard.CardID
	hovering bool

	frame   frame
	flushed corkboard.FlushHandle
	font    *text.GoTextFaceSource

	showHUD    bool
	status     string
	statusLeft float32

	screenshotQueue []string
	quit            bool
}

var _ ebiten.Game = (*View)(nil)

// New creates a view for ed.
func New(ed *corkboard.Editor, opts Options) *View {
	opts = opts.withDefaults()
	v := &View{
		ed:      ed,
		opts:    opts,
		log:     opts.Logger,
		in:      ebitenInput{},
		showHUD: opts.ShowHUD,
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		v.log.Warn("card font unavailable", zap.Error(err))
	} else {
		v.font = src
	}
	v.flushed = ed.Scheduler().OnFlush(v.capture)
	ed.Scheduler().Request()
	return v
}

// Close detaches the view from the editor's flushes.
func (v *View) Close() {
	v.flushed.Remove()
}

// Editor returns the editor the view drives.
func (v *View) Editor() *corkboard.Editor { return v.ed }

// Status returns the message on the status line, if any.
func (v *View) Status() string { return v.status }

// Update handles input and advances the editor one tick.
func (v *View) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	v.handleInput()
	v.ed.Update(dt)
	if v.statusLeft > 0 {
		v.statusLeft -= dt
		if v.statusLeft <= 0 {
			v.status = ""
		}
	}
	if v.quit {
		return ebiten.Termination
	}
	return nil
}

// Layout follows the window size and reports it to the editor.
func (v *View) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != v.width || outsideHeight != v.height {
		v.width, v.height = outsideWidth, outsideHeight
		v.ed.Resize(corkboard.Vec2{X: float64(outsideWidth), Y: float64(outsideHeight)})
	}
	return outsideWidth, outsideHeight
}

func (v *View) setStatus(msg string) {
	v.status = msg
	v.statusLeft = statusSeconds
	v.log.Debug("status", zap.String("msg", msg))
}

func (v *View) failed(op string, err error) {
	if errors.Is(err, corkboard.ErrBusy) {
		v.setStatus("busy")
		return
	}
	v.setStatus(fmt.Sprintf("%s failed: %v", op, err))
}

func (v *View) saved(res corkboard.SaveResult, err error) {
	switch {
	case err != nil:
		v.failed("save", err)
	case res.Canceled:
		v.setStatus("save canceled")
	default:
		v.setStatus("saved " + filepath.Base(res.Path))
	}
}

func (v *View) opened(res corkboard.OpenResult, err error) {
	switch {
	case err != nil:
		v.failed("open", err)
	case res.Canceled:
		v.setStatus("nothing to open")
	default:
		v.setStatus("opened " + filepath.Base(res.Path))
	}
}
