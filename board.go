package corkboard

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTitle is the title of a freshly created board.
const DefaultTitle = "Untitled board"

// Board is the aggregate of one canvas: its viewport, cards and relations,
// plus identity and metadata. All mutation goes through its methods or
// through the component methods of Viewport, CardStore and RelationGraph.
type Board struct {
	id       uuid.UUID
	title    string
	modified time.Time

	viewport  *Viewport
	cards     *CardStore
	relations *RelationGraph

	now func() time.Time
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithClock sets the clock used to stamp modifications.
func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// WithBoardID sets the board id instead of generating one.
func WithBoardID(id uuid.UUID) BoardOption {
	return func(b *Board) { b.id = id }
}

// NewBoard creates a board for a frame of the given size with one default
// card centred in the frame.
func NewBoard(cfg Config, frame Vec2, opts ...BoardOption) *Board {
	b := newBoard(cfg, frame, cfg.DefaultSizeClass(), opts...)
	b.AddCard()
	Logger().Info("board created", zap.String("board", b.id.String()))
	return b
}

// newBoard builds an empty board. Load replay starts from here.
func newBoard(cfg Config, frame Vec2, size SizeClass, opts ...BoardOption) *Board {
	if !frame.IsFinite() || frame.X <= 0 || frame.Y <= 0 {
		frame = Vec2{cfg.Frame.Width, cfg.Frame.Height}
	}
	cards := NewCardStore(Vec2{cfg.Card.Width, cfg.Card.Height}, cfg.Card.Color)
	b := &Board{
		id:        uuid.New(),
		title:     DefaultTitle,
		viewport:  NewViewport(frame, size, cfg.ZoomTable(), cfg.DefaultZoomIndex()),
		cards:     cards,
		relations: NewRelationGraph(cards),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.modified = b.stamp()
	return b
}

// ID returns the board's stable identity.
func (b *Board) ID() uuid.UUID { return b.id }

// Title returns the board title.
func (b *Board) Title() string { return b.title }

// SetTitle renames the board.
func (b *Board) SetTitle(title string) {
	b.title = title
	b.touch()
}

// Modified returns when the board last changed, to the second.
func (b *Board) Modified() time.Time { return b.modified }

// SizeClass returns the board size class.
func (b *Board) SizeClass() SizeClass { return b.viewport.SizeClass() }

// SetSizeClass changes the maximum content extent and reclamps the view.
func (b *Board) SetSizeClass(s SizeClass) {
	b.viewport.SetSizeClass(s)
	b.touch()
}

// Viewport returns the board viewport.
func (b *Board) Viewport() *Viewport { return b.viewport }

// Cards returns the card store.
func (b *Board) Cards() *CardStore { return b.cards }

// Relations returns the relation graph.
func (b *Board) Relations() *RelationGraph { return b.relations }

// AddCard creates an empty card centred on the frame centre.
func (b *Board) AddCard() Card {
	size := b.cards.Size()
	pos := b.viewport.FrameCenter().Sub(size.Scale(0.5))
	c := b.cards.Add(pos)
	b.touch()
	return c
}

// AddCardAt creates an empty card with its top-left at pos.
func (b *Board) AddCardAt(pos Vec2) (Card, bool) {
	if !pos.IsFinite() {
		return Card{}, false
	}
	c := b.cards.Add(pos)
	b.touch()
	return c, true
}

// UpdateCard applies patch to card id.
func (b *Board) UpdateCard(id CardID, patch CardPatch) (Card, error) {
	c, err := b.cards.Update(id, patch)
	if err != nil {
		return c, err
	}
	b.touch()
	return c, nil
}

// MoveCard sets the content-space position of card id.
func (b *Board) MoveCard(id CardID, pos Vec2) error {
	if err := b.cards.Move(id, pos); err != nil {
		return err
	}
	b.touch()
	return nil
}

// DeleteCard removes card id and every relation touching it.
func (b *Board) DeleteCard(id CardID) ([]Relation, error) {
	if !b.cards.Has(id) {
		return nil, notFound(id)
	}
	removed := b.relations.UnlinkAllFor(id)
	if err := b.cards.Delete(id); err != nil {
		return removed, err
	}
	b.touch()
	return removed, nil
}

// BeginOrCompleteLink advances the two-click linking protocol.
func (b *Board) BeginOrCompleteLink(id CardID) (LinkResult, error) {
	res, err := b.relations.BeginOrCompleteLink(id)
	if err == nil && res == LinkCreated {
		b.touch()
	}
	return res, err
}

// CardAt returns the topmost card under a screen point.
func (b *Board) CardAt(screen Vec2) (CardID, bool) {
	return b.cards.TopmostAt(b.viewport.ScreenToContent(screen))
}

// CardPosition returns the content-space origin of card id.
func (b *Board) CardPosition(id CardID) (Vec2, bool) {
	c, ok := b.cards.Get(id)
	return c.Pos, ok
}

// ScreenToContent converts a screen point using the board viewport.
func (b *Board) ScreenToContent(screen Vec2) Vec2 {
	return b.viewport.ScreenToContent(screen)
}

// Pan pans the viewport by a screen-space delta.
func (b *Board) Pan(delta Vec2) {
	before := b.viewport.Translation()
	b.viewport.Pan(delta)
	if b.viewport.Translation() != before {
		b.touch()
	}
}

// Zoom steps the zoom around a screen-space cursor.
func (b *Board) Zoom(cursor Vec2, dir ZoomDirection) bool {
	if !b.viewport.Zoom(cursor, dir) {
		return false
	}
	b.touch()
	return true
}

// Resize adapts the viewport to a new frame size. The saved state does not
// include the frame, so this does not count as a modification.
func (b *Board) Resize(frame Vec2) {
	b.viewport.Resize(frame)
}

// RecomputeEndpoints refreshes the rendered relation lines.
func (b *Board) RecomputeEndpoints() {
	b.relations.Recompute(b.viewport)
}

func (b *Board) touch() {
	b.modified = b.stamp()
}

func (b *Board) stamp() time.Time {
	return b.now().UTC().Truncate(time.Second)
}
