package corkboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// completionBuffer bounds how many storage completions can wait for Update.
const completionBuffer = 16

// Editor owns one Board and every controller around it. All methods must be
// called from a single control thread. Storage port calls run on their own
// goroutines and their completions are applied during Update.
type Editor struct {
	cfg   Config
	board *Board
	drag  *DragController
	sched *FrameScheduler

	port   StoragePort
	recent RecentList
	sink   EventSink
	clock  func() time.Time

	ctx         context.Context
	cancel      context.CancelFunc
	completions chan func()
	inflight    int
	path        string

	injectQueue []syntheticEvent
	script      *GestureScript

	debug bool
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithStorage sets the storage port used by Save, SaveAs and Open.
func WithStorage(port StoragePort) EditorOption {
	return func(e *Editor) { e.port = port }
}

// WithRecentList sets the recent-boards list. Saves are pushed to it and
// OpenRecent reads from it.
func WithRecentList(list RecentList) EditorOption {
	return func(e *Editor) { e.recent = list }
}

// WithEventSink sets the receiver of board events.
func WithEventSink(sink EventSink) EditorOption {
	return func(e *Editor) { e.sink = sink }
}

// WithEditorClock sets the clock used to stamp board modifications.
func WithEditorClock(now func() time.Time) EditorOption {
	return func(e *Editor) {
		if now != nil {
			e.clock = now
		}
	}
}

// WithInitialBoard starts the editor on b instead of a fresh board.
func WithInitialBoard(b *Board) EditorOption {
	return func(e *Editor) { e.board = b }
}

// NewEditor creates an editor on a fresh board for a frame of the given size.
func NewEditor(cfg Config, frame Vec2, opts ...EditorOption) *Editor {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Editor{
		cfg:         cfg,
		clock:       time.Now,
		ctx:         ctx,
		cancel:      cancel,
		completions: make(chan func(), completionBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.board == nil {
		e.board = NewBoard(cfg, frame, WithClock(e.clock))
	} else {
		e.board.now = e.clock
		e.board.Resize(frame)
	}
	e.drag = NewDragController(e, cfg.Modifier())
	e.sched = NewFrameScheduler(func() { e.board.RecomputeEndpoints() })
	e.sched.Request()
	return e
}

// Close cancels outstanding storage requests. Their completions are dropped.
func (e *Editor) Close() {
	e.cancel()
}

// Board returns the current board. It changes when a board is opened.
func (e *Editor) Board() *Board { return e.board }

// Config returns the editor configuration.
func (e *Editor) Config() Config { return e.cfg }

// Scheduler returns the frame scheduler. Render layers register OnFlush
// handlers on it.
func (e *Editor) Scheduler() *FrameScheduler { return e.sched }

// Drag returns the drag controller.
func (e *Editor) Drag() *DragController { return e.drag }

// Path returns the path the board was last saved to or opened from.
func (e *Editor) Path() string { return e.path }

// Busy reports whether a storage request is outstanding.
func (e *Editor) Busy() bool { return e.inflight > 0 }

// SetDebugMode enables per-flush timing logs.
func (e *Editor) SetDebugMode(on bool) {
	e.debug = on
	e.sched.SetDebug(on)
}

// SetEventSink replaces the event sink. Nil disables events.
func (e *Editor) SetEventSink(sink EventSink) { e.sink = sink }

// Update runs one tick: storage completions, scripted and injected input,
// scroll animation, then at most one flush.
func (e *Editor) Update(dt float32) {
	e.drainCompletions()
	if e.script != nil {
		e.script.step(e)
	}
	e.processInjectedInput()

	vp := e.board.Viewport()
	if vp.Scrolling() {
		vp.Update(dt)
		e.sched.Request()
	}
	if e.sched.Flush() {
		vp.ClearDirty()
	}
}

func (e *Editor) drainCompletions() {
	for {
		select {
		case complete := <-e.completions:
			e.inflight--
			complete()
		default:
			return
		}
	}
}

func (e *Editor) emit(ev BoardEvent) {
	if e.sink != nil {
		e.sink.HandleBoardEvent(ev)
	}
}

func (e *Editor) changed() {
	e.sched.Request()
}

// --- Cards ---

// AddCard creates an empty card centred in the frame.
func (e *Editor) AddCard() Card {
	c := e.board.AddCard()
	e.emit(BoardEvent{Type: EventCardAdded, CardID: c.ID, Pos: c.Pos})
	e.changed()
	return c
}

// AddCardAt creates an empty card at a content-space position.
func (e *Editor) AddCardAt(pos Vec2) (Card, bool) {
	c, ok := e.board.AddCardAt(pos)
	if !ok {
		return c, false
	}
	e.emit(BoardEvent{Type: EventCardAdded, CardID: c.ID, Pos: c.Pos})
	e.changed()
	return c, true
}

// UpdateCard changes the title, body or colour of card id.
func (e *Editor) UpdateCard(id CardID, patch CardPatch) (Card, error) {
	c, err := e.board.UpdateCard(id, patch)
	if err != nil {
		return c, err
	}
	e.emit(BoardEvent{Type: EventCardUpdated, CardID: id})
	e.changed()
	return c, nil
}

// MoveCard sets the content-space position of card id.
func (e *Editor) MoveCard(id CardID, pos Vec2) error {
	if err := e.board.MoveCard(id, pos); err != nil {
		return err
	}
	c, _ := e.board.Cards().Get(id)
	e.emit(BoardEvent{Type: EventCardMoved, CardID: id, Pos: c.Pos})
	e.changed()
	return nil
}

// DeleteCard removes card id and its relations.
func (e *Editor) DeleteCard(id CardID) error {
	if dragged, ok := e.drag.DraggedCard(); ok && dragged == id {
		e.drag.Cancel()
	}
	removed, err := e.board.DeleteCard(id)
	if err != nil {
		return err
	}
	for _, r := range removed {
		e.emit(BoardEvent{Type: EventUnlinked, CardID: r.A, OtherID: r.B})
	}
	e.emit(BoardEvent{Type: EventCardDeleted, CardID: id})
	e.changed()
	return nil
}

// BeginOrCompleteLink advances the two-click linking protocol on card id.
func (e *Editor) BeginOrCompleteLink(id CardID) (LinkResult, error) {
	_, pending := e.board.Relations().Pending()
	res, err := e.board.BeginOrCompleteLink(id)
	if err != nil {
		return res, err
	}
	switch res {
	case LinkPending:
		e.emit(BoardEvent{Type: EventLinkPending, CardID: id})
	case LinkCanceled:
		e.emit(BoardEvent{Type: EventLinkCanceled, CardID: id})
	case LinkCreated:
		e.emit(BoardEvent{Type: EventLinked, CardID: pending, OtherID: id})
	}
	e.changed()
	return res, nil
}

// CancelLink clears a pending link mark, if any.
func (e *Editor) CancelLink() {
	state, id := e.board.Relations().Pending()
	if state != PendingOn {
		return
	}
	e.board.Relations().CancelPending()
	e.emit(BoardEvent{Type: EventLinkCanceled, CardID: id})
	e.changed()
}

// LinkAt runs BeginOrCompleteLink on the card under a screen point. It
// reports false when there is no card there.
func (e *Editor) LinkAt(screen Vec2) (LinkResult, bool) {
	id, ok := e.board.CardAt(screen)
	if !ok {
		return 0, false
	}
	res, err := e.BeginOrCompleteLink(id)
	return res, err == nil
}

// SetTitle renames the board.
func (e *Editor) SetTitle(title string) {
	e.board.SetTitle(title)
	e.changed()
}

// --- Viewport ---

// Zoom steps the zoom around a screen-space cursor.
func (e *Editor) Zoom(cursor Vec2, dir ZoomDirection) bool {
	if !e.board.Zoom(cursor, dir) {
		return false
	}
	e.emitViewport()
	e.changed()
	return true
}

// Pan pans by a screen-space delta.
func (e *Editor) Pan(delta Vec2) {
	vp := e.board.Viewport()
	before := vp.Translation()
	e.board.Pan(delta)
	if vp.Translation() != before {
		e.emitViewport()
		e.changed()
	}
}

// Resize adapts to a new frame size.
func (e *Editor) Resize(frame Vec2) {
	vp := e.board.Viewport()
	before := vp.Frame()
	e.board.Resize(frame)
	if vp.Frame() != before {
		e.emitViewport()
		e.changed()
	}
}

// FocusCard scrolls so card id is centred, animated over seconds.
func (e *Editor) FocusCard(id CardID, seconds float32) error {
	center, ok := e.board.Cards().Center(id)
	if !ok {
		return notFound(id)
	}
	e.board.Viewport().ScrollTo(center, seconds, ease.OutQuad)
	e.changed()
	return nil
}

func (e *Editor) emitViewport() {
	e.emit(BoardEvent{Type: EventViewportChanged, Pos: e.board.Viewport().PanOffset()})
}

// --- Pointer input (DragTarget) ---

// CardAt returns the topmost card under a screen point.
func (e *Editor) CardAt(screen Vec2) (CardID, bool) { return e.board.CardAt(screen) }

// CardPosition returns the content-space origin of card id.
func (e *Editor) CardPosition(id CardID) (Vec2, bool) { return e.board.CardPosition(id) }

// ScreenToContent converts through the current viewport.
func (e *Editor) ScreenToContent(screen Vec2) Vec2 { return e.board.ScreenToContent(screen) }

// PointerDown starts a pan or card drag if the drag modifier is held.
func (e *Editor) PointerDown(screen Vec2, mods KeyModifiers) DragState {
	return e.drag.PointerDown(screen, mods)
}

// PointerMove feeds a pointer motion sample.
func (e *Editor) PointerMove(screen Vec2) { e.drag.PointerMove(screen) }

// PointerUp ends the active gesture.
func (e *Editor) PointerUp(screen Vec2) { e.drag.PointerUp(screen) }

// PointerLeave ends the active gesture when the pointer leaves the surface.
func (e *Editor) PointerLeave() { e.drag.PointerLeave() }

// ModifiersChanged reports the currently held modifiers.
func (e *Editor) ModifiersChanged(mods KeyModifiers) { e.drag.ModifiersChanged(mods) }

// --- Storage ---

// runAsync runs op on a goroutine and applies the completion it returns on
// the control thread during a later Update.
func (e *Editor) runAsync(op func(ctx context.Context) func()) {
	e.inflight++
	ctx := e.ctx
	go func() {
		complete := op(ctx)
		select {
		case e.completions <- complete:
		case <-ctx.Done():
		}
	}()
}

// Save writes the board to its current path, or behaves like SaveAs when it
// has none. done runs during a later Update. A failure leaves the board
// untouched.
func (e *Editor) Save(done func(SaveResult, error)) error {
	if e.path == "" {
		return e.SaveAs(done)
	}
	return e.save(e.path, done)
}

// SaveAs asks the storage port for a path, then writes the board there.
func (e *Editor) SaveAs(done func(SaveResult, error)) error {
	return e.save("", done)
}

func (e *Editor) save(path string, done func(SaveResult, error)) error {
	if e.port == nil {
		return fmt.Errorf("save: no storage port: %w", ErrStorage)
	}
	if e.Busy() {
		return ErrBusy
	}
	if done == nil {
		done = func(SaveResult, error) {}
	}
	rec := Serialize(e.board)
	content, err := MarshalRecord(rec)
	if err != nil {
		return err
	}
	port, recent := e.port, e.recent
	suggested := e.board.Title()

	e.runAsync(func(ctx context.Context) func() {
		target := SaveTarget{Path: path}
		if path == "" {
			var err error
			target, err = port.ChooseSavePath(ctx, suggested)
			if err != nil {
				return e.saveFailed(&StorageError{Op: "choose", Err: err}, done)
			}
			if target.Canceled {
				return func() { done(SaveResult{Canceled: true}, nil) }
			}
		}
		if err := port.WriteFile(ctx, target.Path, content); err != nil {
			return e.saveFailed(&StorageError{Op: "write", Path: target.Path, Err: err}, done)
		}
		var pushErr error
		if recent != nil {
			pushErr = recent.Push(ctx, rec)
		}
		return func() {
			if pushErr != nil {
				Logger().Warn("recent list push failed", zap.Error(pushErr))
			}
			e.path = target.Path
			Logger().Info("board saved", zap.String("path", target.Path))
			e.emit(BoardEvent{Type: EventBoardSaved, Path: target.Path})
			done(SaveResult{Path: target.Path}, nil)
		}
	})
	return nil
}

func (e *Editor) saveFailed(err error, done func(SaveResult, error)) func() {
	return func() {
		Logger().Warn("save failed", zap.Error(err))
		done(SaveResult{}, err)
	}
}

// Open asks the storage port for a board and replaces the current one with
// it. A canceled open, a storage failure or a corrupt record leaves the
// current board untouched.
func (e *Editor) Open(done func(OpenResult, error)) error {
	if e.port == nil {
		return fmt.Errorf("open: no storage port: %w", ErrStorage)
	}
	if e.Busy() {
		return ErrBusy
	}
	if done == nil {
		done = func(OpenResult, error) {}
	}
	port := e.port

	e.runAsync(func(ctx context.Context) func() {
		res, err := port.OpenBoard(ctx)
		if err != nil {
			serr := &StorageError{Op: "open", Err: err}
			return func() {
				Logger().Warn("open failed", zap.Error(serr))
				done(OpenResult{}, serr)
			}
		}
		if res.Canceled {
			return func() { done(res, nil) }
		}
		rec, decodeErr := UnmarshalRecord(res.Content)
		return func() {
			if decodeErr == nil {
				decodeErr = e.load(rec, res.Path)
			}
			if decodeErr != nil {
				Logger().Warn("open failed", zap.String("path", res.Path), zap.Error(decodeErr))
			}
			done(res, decodeErr)
		}
	})
	return nil
}

// OpenRecent replaces the current board with the recent-list record at
// index (0 is the most recent).
func (e *Editor) OpenRecent(index int, done func(error)) error {
	if e.recent == nil {
		return fmt.Errorf("open recent %d: no recent list: %w", index, ErrIndexOutOfRange)
	}
	if e.Busy() {
		return ErrBusy
	}
	if done == nil {
		done = func(error) {}
	}
	recent := e.recent

	e.runAsync(func(ctx context.Context) func() {
		rec, err := recent.Record(ctx, index)
		return func() {
			if err != nil {
				if !errors.Is(err, ErrIndexOutOfRange) && !errors.Is(err, ErrCorruptRecord) {
					err = &StorageError{Op: "recent", Err: err}
				}
			} else {
				err = e.load(rec, "")
			}
			if err != nil {
				Logger().Warn("open recent failed", zap.Int("index", index), zap.Error(err))
			}
			done(err)
		}
	})
	return nil
}

// LoadRecord replaces the current board with one rebuilt from rec. It fails
// with ErrBusy while a save or open is in flight.
func (e *Editor) LoadRecord(rec Record) error {
	if e.Busy() {
		return ErrBusy
	}
	return e.load(rec, "")
}

func (e *Editor) load(rec Record, path string) error {
	b, err := Deserialize(rec, e.board.Viewport().Frame(), e.cfg, WithClock(e.clock))
	if err != nil {
		return err
	}
	e.drag.Cancel()
	e.board = b
	e.path = path
	e.emit(BoardEvent{Type: EventBoardLoaded, Path: path})
	e.changed()
	return nil
}
