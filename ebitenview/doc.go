// Package ebitenview runs a corkboard editor in an Ebitengine window.
//
// A [View] implements [ebiten.Game]. Its Update turns mouse and keyboard
// state into editor calls and advances the editor one tick; its Draw paints
// the frame captured at the editor's last flush. The view owns no board
// state of its own.
//
//	ed := corkboard.NewEditor(cfg, corkboard.Vec2{X: 1280, Y: 720})
//	view := ebitenview.New(ed, ebitenview.DefaultOptions())
//	err := ebitenview.Run(view, ebitenview.RunConfig{Title: "Board", Width: 1280, Height: 720})
//
// # Controls
//
// With the drag modifier (Ctrl by default) held: the wheel zooms around the
// cursor and a left drag moves the card under the pointer, or pans when
// there is none. Right-click marks a card for linking; right-click a second
// card to link them, or the same card again to clear the mark.
//
//	N            new card at the cursor
//	Delete       delete the hovered card
//	F            scroll the hovered card to the centre
//	Escape       clear the pending link
//	Ctrl+S       save (Ctrl+Shift+S: save as)
//	Ctrl+O       open
//	Ctrl+C       copy the hovered card's text
//	Ctrl+V       paste into the hovered card, or into a new card
//	F3           toggle the status line
//	F12          screenshot
//	Ctrl+Q       quit
package ebitenview
