package ebitenview

import "github.com/hajimehoshi/ebiten/v2"

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// Resizable lets the user resize the window; the board follows.
	Resizable bool
}

// Run opens a window and blocks until it closes.
func Run(v *View, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		f := v.ed.Board().Viewport().Frame()
		cfg.Width, cfg.Height = int(f.X), int(f.Y)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	defer v.Close()
	return ebiten.RunGame(v)
}
