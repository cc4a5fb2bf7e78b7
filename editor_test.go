package corkboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memPort is an in-memory StoragePort.
type memPort struct {
	mu    sync.Mutex
	files map[string][]byte

	openPath     string
	choosePath   string
	cancelOpen   bool
	cancelChoose bool
	writeErr     error
	openErr      error
	gate         chan struct{} // when set, calls wait for it

	chooseCalls []string
}

func newMemPort() *memPort {
	return &memPort{files: make(map[string][]byte), choosePath: "boards/plan.json"}
}

func (p *memPort) wait(ctx context.Context) error {
	if p.gate == nil {
		return nil
	}
	select {
	case <-p.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *memPort) OpenBoard(ctx context.Context) (OpenResult, error) {
	if err := p.wait(ctx); err != nil {
		return OpenResult{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return OpenResult{}, p.openErr
	}
	if p.cancelOpen {
		return OpenResult{Canceled: true}, nil
	}
	content, ok := p.files[p.openPath]
	if !ok {
		return OpenResult{}, fmt.Errorf("%s: no such file", p.openPath)
	}
	return OpenResult{Path: p.openPath, Content: content}, nil
}

func (p *memPort) ChooseSavePath(ctx context.Context, suggested string) (SaveTarget, error) {
	if err := p.wait(ctx); err != nil {
		return SaveTarget{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chooseCalls = append(p.chooseCalls, suggested)
	if p.cancelChoose {
		return SaveTarget{Canceled: true}, nil
	}
	return SaveTarget{Path: p.choosePath}, nil
}

func (p *memPort) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := p.wait(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	p.files[path] = append([]byte(nil), content...)
	return nil
}

// memRecent is an in-memory RecentList.
type memRecent struct {
	mu        sync.Mutex
	records   []Record
	recordErr error
}

func (r *memRecent) Len(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records), nil
}

func (r *memRecent) Record(_ context.Context, index int) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return Record{}, r.recordErr
	}
	if index < 0 || index >= len(r.records) {
		return Record{}, fmt.Errorf("recent %d: %w", index, ErrIndexOutOfRange)
	}
	return r.records[index], nil
}

func (r *memRecent) Push(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := []Record{rec}
	for _, old := range r.records {
		if old.Data.ID != rec.Data.ID {
			kept = append(kept, old)
		}
	}
	r.records = kept
	return nil
}

type eventLog struct{ events []BoardEvent }

func (l *eventLog) HandleBoardEvent(ev BoardEvent) { l.events = append(l.events, ev) }

func (l *eventLog) types() []BoardEventType {
	out := make([]BoardEventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type
	}
	return out
}

// settle runs Update until no storage request is outstanding.
func settle(t *testing.T, e *Editor) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("storage request never completed")
		}
		time.Sleep(time.Millisecond)
		e.Update(0)
	}
	e.Update(0)
}

func newTestEditor(opts ...EditorOption) *Editor {
	return NewEditor(DefaultConfig(), Vec2{1280, 720}, opts...)
}

func TestEditorSaveAsChoosesPathAndWrites(t *testing.T) {
	port := newMemPort()
	recent := &memRecent{}
	log := &eventLog{}
	e := newTestEditor(WithStorage(port), WithRecentList(recent), WithEventSink(log))
	defer e.Close()
	e.SetTitle("Plan")

	var got SaveResult
	var gotErr error
	require.NoError(t, e.Save(func(r SaveResult, err error) { got, gotErr = r, err }))
	assert.True(t, e.Busy())
	settle(t, e)

	require.NoError(t, gotErr)
	assert.Equal(t, "boards/plan.json", got.Path)
	assert.Equal(t, "boards/plan.json", e.Path())
	assert.Equal(t, []string{"Plan"}, port.chooseCalls)

	rec, err := UnmarshalRecord(port.files["boards/plan.json"])
	require.NoError(t, err)
	assert.Equal(t, Serialize(e.Board()), rec)

	n, _ := recent.Len(context.Background())
	assert.Equal(t, 1, n)
	assert.Contains(t, log.types(), EventBoardSaved)

	// A second Save reuses the path.
	require.NoError(t, e.Save(nil))
	settle(t, e)
	assert.Len(t, port.chooseCalls, 1)
	n, _ = recent.Len(context.Background())
	assert.Equal(t, 1, n, "same board should replace its recent entry")
}

func TestEditorSaveCanceled(t *testing.T) {
	port := newMemPort()
	port.cancelChoose = true
	e := newTestEditor(WithStorage(port))
	defer e.Close()

	var got SaveResult
	require.NoError(t, e.SaveAs(func(r SaveResult, err error) {
		require.NoError(t, err)
		got = r
	}))
	settle(t, e)
	assert.True(t, got.Canceled)
	assert.Empty(t, e.Path())
	assert.Empty(t, port.files)
}

func TestEditorSaveFailureLeavesBoardIntact(t *testing.T) {
	port := newMemPort()
	port.writeErr = errors.New("disk full")
	e := newTestEditor(WithStorage(port))
	defer e.Close()
	before := Serialize(e.Board())
	board := e.Board()

	var gotErr error
	require.NoError(t, e.Save(func(_ SaveResult, err error) { gotErr = err }))
	settle(t, e)

	require.Error(t, gotErr)
	assert.ErrorIs(t, gotErr, ErrStorage)
	var serr *StorageError
	require.ErrorAs(t, gotErr, &serr)
	assert.Equal(t, "write", serr.Op)
	assert.Equal(t, "boards/plan.json", serr.Path)

	assert.Same(t, board, e.Board())
	assert.Equal(t, before, Serialize(e.Board()))
	assert.Empty(t, e.Path())
}

func TestEditorOpenReplacesBoard(t *testing.T) {
	src := newTestEditor()
	src.AddCard()
	src.SetTitle("Source")
	content, err := MarshalRecord(Serialize(src.Board()))
	require.NoError(t, err)

	port := newMemPort()
	port.files["in.json"] = content
	port.openPath = "in.json"
	log := &eventLog{}
	e := newTestEditor(WithStorage(port), WithEventSink(log))
	defer e.Close()

	require.NoError(t, e.Open(func(res OpenResult, err error) {
		require.NoError(t, err)
		assert.Equal(t, "in.json", res.Path)
	}))
	settle(t, e)

	assert.Equal(t, "Source", e.Board().Title())
	assert.Equal(t, 2, e.Board().Cards().Len())
	assert.Equal(t, src.Board().ID(), e.Board().ID())
	assert.Equal(t, "in.json", e.Path())
	assert.Contains(t, log.types(), EventBoardLoaded)
}

func TestEditorOpenFailuresLeaveBoardIntact(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(p *memPort)
		wantErr error
	}{
		{"corrupt record", func(p *memPort) {
			p.files["bad.json"] = []byte(`{"title": "x", "data": {}}`)
			p.openPath = "bad.json"
		}, ErrCorruptRecord},
		{"port failure", func(p *memPort) { p.openErr = errors.New("permission denied") }, ErrStorage},
		{"canceled", func(p *memPort) { p.cancelOpen = true }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := newMemPort()
			tt.setup(port)
			e := newTestEditor(WithStorage(port))
			defer e.Close()
			board := e.Board()
			before := Serialize(board)

			var gotErr error
			require.NoError(t, e.Open(func(_ OpenResult, err error) { gotErr = err }))
			settle(t, e)

			if tt.wantErr == nil {
				assert.NoError(t, gotErr)
			} else {
				assert.ErrorIs(t, gotErr, tt.wantErr)
			}
			assert.Same(t, board, e.Board())
			assert.Equal(t, before, Serialize(e.Board()))
		})
	}
}

func TestEditorBusyRejectsSecondRequest(t *testing.T) {
	port := newMemPort()
	port.gate = make(chan struct{})
	e := newTestEditor(WithStorage(port))
	defer e.Close()

	require.NoError(t, e.Save(nil))
	assert.ErrorIs(t, e.Save(nil), ErrBusy)
	assert.ErrorIs(t, e.Open(nil), ErrBusy)

	// The gesture loop keeps running while the port is blocked.
	e.AddCard()
	e.Update(0)
	assert.Equal(t, 2, e.Board().Cards().Len())

	close(port.gate)
	settle(t, e)
	assert.False(t, e.Busy())
}

func TestEditorLoadRecordWaitsForSave(t *testing.T) {
	port := newMemPort()
	port.gate = make(chan struct{})
	e := newTestEditor(WithStorage(port))
	defer e.Close()
	e.SetTitle("A")

	other := NewBoard(DefaultConfig(), Vec2{1280, 720})
	other.SetTitle("B")
	rec := Serialize(other)

	require.NoError(t, e.SaveAs(nil))
	assert.ErrorIs(t, e.LoadRecord(rec), ErrBusy)
	assert.Equal(t, "A", e.Board().Title())

	close(port.gate)
	settle(t, e)
	assert.Equal(t, "boards/plan.json", e.Path())

	require.NoError(t, e.LoadRecord(rec))
	assert.Equal(t, "B", e.Board().Title())
	assert.Empty(t, e.Path())
}

func TestEditorWithoutStorage(t *testing.T) {
	e := newTestEditor()
	assert.ErrorIs(t, e.Save(nil), ErrStorage)
	assert.ErrorIs(t, e.Open(nil), ErrStorage)
	assert.ErrorIs(t, e.OpenRecent(0, nil), ErrIndexOutOfRange)
}

func TestEditorOpenRecent(t *testing.T) {
	recent := &memRecent{}
	other := NewBoard(DefaultConfig(), Vec2{1280, 720})
	other.SetTitle("Older")
	require.NoError(t, recent.Push(context.Background(), Serialize(other)))

	e := newTestEditor(WithRecentList(recent))
	defer e.Close()

	var gotErr error
	require.NoError(t, e.OpenRecent(3, func(err error) { gotErr = err }))
	settle(t, e)
	assert.ErrorIs(t, gotErr, ErrIndexOutOfRange)

	require.NoError(t, e.OpenRecent(0, func(err error) { gotErr = err }))
	settle(t, e)
	require.NoError(t, gotErr)
	assert.Equal(t, "Older", e.Board().Title())
	assert.Equal(t, other.ID(), e.Board().ID())
}

func TestEditorOpenRecentCorruptRecord(t *testing.T) {
	recent := &memRecent{recordErr: &CorruptRecordError{Err: errors.New("data.cards: expected array")}}
	e := newTestEditor(WithRecentList(recent))
	defer e.Close()
	board := e.Board()

	var gotErr error
	require.NoError(t, e.OpenRecent(0, func(err error) { gotErr = err }))
	settle(t, e)

	assert.ErrorIs(t, gotErr, ErrCorruptRecord)
	assert.NotErrorIs(t, gotErr, ErrStorage)
	var serr *StorageError
	assert.False(t, errors.As(gotErr, &serr))
	assert.Same(t, board, e.Board())
}

func TestEditorEvents(t *testing.T) {
	log := &eventLog{}
	e := newTestEditor(WithEventSink(log))
	c2 := e.AddCard()
	c3 := e.AddCard()
	_, err := e.BeginOrCompleteLink(1)
	require.NoError(t, err)
	_, err = e.BeginOrCompleteLink(c2.ID)
	require.NoError(t, err)
	_, err = e.BeginOrCompleteLink(c2.ID)
	require.NoError(t, err)
	_, err = e.BeginOrCompleteLink(c3.ID)
	require.NoError(t, err)
	require.NoError(t, e.DeleteCard(c2.ID))

	assert.Equal(t, []BoardEventType{
		EventCardAdded, EventCardAdded,
		EventLinkPending, EventLinked,
		EventLinkPending, EventLinked,
		EventUnlinked, EventUnlinked, EventCardDeleted,
	}, log.types())
	assert.Equal(t, CardID(1), log.events[3].CardID)
	assert.Equal(t, c2.ID, log.events[3].OtherID)
	assert.ErrorIs(t, e.DeleteCard(c2.ID), ErrNotFound)
}

func TestEditorCoalescesMotionIntoOneFlush(t *testing.T) {
	e := newTestEditor()
	e.AddCard()
	e.AddCard()
	require.NoError(t, e.Board().Relations().Link(2, 3))
	e.Update(0)
	passes := e.Board().Relations().Passes()

	e.PointerDown(Vec2{10, 10}, ModCtrl)
	for i := 0; i < 25; i++ {
		e.PointerMove(Vec2{10 - float64(i), 10 - float64(i)})
	}
	e.Update(0)
	assert.Equal(t, passes+1, e.Board().Relations().Passes())

	e.Update(0)
	assert.Equal(t, passes+1, e.Board().Relations().Passes(), "idle frame should not recompute")
}

func TestEditorDeleteDraggedCardCancelsDrag(t *testing.T) {
	e := newTestEditor()
	require.Equal(t, DragCardMove, e.PointerDown(Vec2{640, 360}, ModCtrl))
	require.NoError(t, e.DeleteCard(1))
	assert.Equal(t, DragIdle, e.Drag().State())
}

func TestEditorFocusCard(t *testing.T) {
	e := newTestEditor()
	c, ok := e.AddCardAt(Vec2{3000, 2000})
	require.True(t, ok)
	require.NoError(t, e.FocusCard(c.ID, 0.2))
	for i := 0; i < 20; i++ {
		e.Update(1.0 / 60)
	}
	center := e.Board().Viewport().FrameCenter()
	assert.InDelta(t, 3100, center.X, 1e-6)
	assert.InDelta(t, 2060, center.Y, 1e-6)
	assert.ErrorIs(t, e.FocusCard(99, 0.2), ErrNotFound)
}

func TestEditorInjectDrag(t *testing.T) {
	e := newTestEditor()
	before, _ := e.Board().CardPosition(1)
	e.InjectDrag(Vec2{640, 360}, Vec2{740, 410}, 6, ModCtrl)
	for i := 0; i < 6; i++ {
		e.Update(0)
	}
	assert.Equal(t, 0, e.PendingInjections())
	after, _ := e.Board().CardPosition(1)
	assert.InDelta(t, before.X+100, after.X, 1e-9)
	assert.InDelta(t, before.Y+50, after.Y, 1e-9)
	assert.Equal(t, DragIdle, e.Drag().State())
}

func TestEditorCancelLink(t *testing.T) {
	log := &eventLog{}
	e := newTestEditor(WithEventSink(log))
	defer e.Close()

	e.CancelLink()
	assert.Empty(t, log.events, "nothing pending, nothing emitted")

	_, err := e.BeginOrCompleteLink(1)
	require.NoError(t, err)
	e.CancelLink()
	state, _ := e.Board().Relations().Pending()
	assert.Equal(t, NoSelection, state)
	assert.Equal(t, []BoardEventType{EventLinkPending, EventLinkCanceled}, log.types())
}
