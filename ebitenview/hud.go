package ebitenview

import (
	"fmt"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/corkboard"
)

// hudText is the status line: board title, zoom, counts, pending link and
// the latest status message.
func (v *View) hudText() string {
	b := v.ed.Board()
	vp := b.Viewport()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  zoom %d%%  cards %d  links %d",
		b.Title(), int(math.Round(vp.ZoomFactor()*100)), b.Cards().Len(), b.Relations().Len())
	if state, id := b.Relations().Pending(); state == corkboard.PendingOn {
		fmt.Fprintf(&sb, "  linking #%d", id)
	}
	if v.ed.Busy() {
		sb.WriteString("  working")
	}
	if v.opts.ShowFPS {
		fmt.Fprintf(&sb, "  FPS %.0f TPS %.0f", ebiten.ActualFPS(), ebiten.ActualTPS())
	}
	if v.status != "" {
		sb.WriteString("\n")
		sb.WriteString(v.status)
	}
	return sb.String()
}

func hudLines(s string) int {
	return strings.Count(s, "\n") + 1
}
