package ebitenview

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/phanxgames/corkboard"
	"go.uber.org/zap"
)

// Clipboard reads and writes plain text.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// copyCard puts the hovered card's body on the clipboard, or its title when
// the body is empty.
func (v *View) copyCard() {
	if !v.hovering {
		return
	}
	c, ok := v.ed.Board().Cards().Get(v.hovered)
	if !ok {
		return
	}
	s := c.Body
	if strings.TrimSpace(s) == "" {
		s = c.Title
	}
	if err := v.opts.Clipboard.WriteAll(s); err != nil {
		v.log.Warn("clipboard write failed", zap.Error(err))
		v.setStatus("copy failed")
		return
	}
	v.setStatus("copied")
}

// paste replaces the hovered card's body with the clipboard text, or puts
// it in a new card under the cursor.
func (v *View) paste() {
	s, err := v.opts.Clipboard.ReadAll()
	if err != nil {
		v.log.Warn("clipboard read failed", zap.Error(err))
		v.setStatus("paste failed")
		return
	}
	if s == "" {
		return
	}
	if v.hovering {
		_, _ = v.ed.UpdateCard(v.hovered, corkboard.CardPatch{Body: &s})
		return
	}
	v.newCard(s)
}
