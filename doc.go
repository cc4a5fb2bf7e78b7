// Package corkboard is the headless engine of a card board editor: a zoomable,
// pannable canvas of rectangular cards joined by straight relation lines,
// and the record format that saves and restores it.
//
// Nothing in this package draws or touches the filesystem. Rendering lives in
// [github.com/phanxgames/corkboard/ebitenview] and [github.com/phanxgames/corkboard/export];
// persistence goes through a [StoragePort] such as
// [github.com/phanxgames/corkboard/filestore] and an optional [RecentList]
// such as [github.com/phanxgames/corkboard/recent].
//
// # Coordinates
//
// Cards live in content space. The [Viewport] maps content to screen pixels:
//
//	screen = (content + translation) * zoomFactor
//
// The zoom factor comes from a fixed ascending table (0.1 to 3.0 in steps of
// 0.1 by default); [Viewport.Zoom] moves one entry at a time and keeps the
// content point under the cursor fixed. [Viewport.Pan] takes screen-space
// deltas, so content follows the pointer at every zoom level. The content
// rectangle is the frame size times the board's [SizeClass] multiplier, and
// the pan is clamped so that empty canvas never shows past its edges.
//
// # Editing
//
// An [Editor] owns one [Board] plus the controllers around it. Hosts feed it
// input and call [Editor.Update] once per frame:
//
//	ed := corkboard.NewEditor(cfg, corkboard.Vec2{X: 1280, Y: 720},
//		corkboard.WithStorage(filestore.New(cfg.SaveDirectory)))
//	ed.PointerDown(p, corkboard.ModCtrl) // pan, or drag the card under p
//	ed.PointerMove(q)
//	ed.PointerUp(q)
//	ed.Update(1.0 / 60)
//
// Pointer gestures only start while the drag modifier (Ctrl by default) is
// held. A press over a card drags the card; anywhere else it pans. Relations
// are made with two calls to [Editor.BeginOrCompleteLink]; calling it twice
// on the same card clears the pending mark.
//
// Geometry updates are coalesced: any number of changes within a frame lead
// to one relation endpoint pass during the next Update. Render layers hook
// that pass with [FrameScheduler.OnFlush].
//
// # Persistence
//
// [Serialize] and [Deserialize] convert between a Board and a [Record], and
// [MarshalRecord] / [UnmarshalRecord] handle its JSON form. Decoding checks
// the record against an embedded JSON schema and reports every problem in a
// single [*CorruptRecordError]; a board is never half built. Save and open
// run the storage port on a goroutine and report back through callbacks
// during Update, so input handling never waits on I/O.
//
// # Logging
//
// The package logs through a [go.uber.org/zap] logger that is silent by
// default. Install one with [SetLogger].
package corkboard
