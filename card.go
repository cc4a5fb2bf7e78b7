package corkboard

import "fmt"

// CardID identifies a card. IDs are allocated as (highest ever allocated)+1
// and are never reused after deletion.
type CardID int

// Card is a rectangular note on the board. Pos is the top-left corner in
// content space. Z is the creation-order rank; later cards paint on top.
type Card struct {
	ID    CardID
	Pos   Vec2
	Title string
	Body  string
	Color string
	Z     int
}

// CardPatch carries the fields UpdateCard changes. Nil fields are left alone.
type CardPatch struct {
	Title *string
	Body  *string
	Color *string
}

// CardStore owns the live cards of a board in creation order.
type CardStore struct {
	cards []*Card
	byID  map[CardID]*Card

	maxID CardID
	nextZ int

	size  Vec2
	color string
}

// NewCardStore creates an empty store. size is the on-board size of every
// card; color is used for cards created without one.
func NewCardStore(size Vec2, color string) *CardStore {
	if color == "" {
		color = DefaultCardColor
	}
	return &CardStore{
		byID:  make(map[CardID]*Card),
		size:  size,
		color: color,
	}
}

// Add creates an empty card with a fresh id at pos.
func (s *CardStore) Add(pos Vec2) Card {
	s.maxID++
	c := &Card{ID: s.maxID, Pos: pos, Color: s.color, Z: s.nextZ}
	s.nextZ++
	s.insert(c)
	return *c
}

// Restore inserts a card exactly as supplied, keeping its id and position.
// It is used when replaying a saved board. The id must be positive and not
// live; the allocator moves past it so later Add calls never collide.
func (s *CardStore) Restore(initial Card) (Card, error) {
	if initial.ID <= 0 {
		return Card{}, fmt.Errorf("card id %d must be positive", initial.ID)
	}
	if _, ok := s.byID[initial.ID]; ok {
		return Card{}, fmt.Errorf("duplicate card id %d", initial.ID)
	}
	c := initial
	if c.Color == "" {
		c.Color = s.color
	}
	c.Z = s.nextZ
	s.nextZ++
	if c.ID > s.maxID {
		s.maxID = c.ID
	}
	s.insert(&c)
	return c, nil
}

func (s *CardStore) insert(c *Card) {
	s.cards = append(s.cards, c)
	s.byID[c.ID] = c
}

// Update applies patch to card id. It never moves the card. An empty colour
// resets the card to the store default, as load replay does.
func (s *CardStore) Update(id CardID, patch CardPatch) (Card, error) {
	c, ok := s.byID[id]
	if !ok {
		return Card{}, notFound(id)
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Body != nil {
		c.Body = *patch.Body
	}
	if patch.Color != nil {
		c.Color = *patch.Color
		if c.Color == "" {
			c.Color = s.color
		}
	}
	return *c, nil
}

// Move sets the card position. Positions are not clamped to the board.
// Non-finite positions are ignored.
func (s *CardStore) Move(id CardID, pos Vec2) error {
	c, ok := s.byID[id]
	if !ok {
		return notFound(id)
	}
	if pos.IsFinite() {
		c.Pos = pos
	}
	return nil
}

// Delete removes card id. Relations are the caller's concern.
func (s *CardStore) Delete(id CardID) error {
	if _, ok := s.byID[id]; !ok {
		return notFound(id)
	}
	delete(s.byID, id)
	for i, c := range s.cards {
		if c.ID == id {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of card id.
func (s *CardStore) Get(id CardID) (Card, bool) {
	c, ok := s.byID[id]
	if !ok {
		return Card{}, false
	}
	return *c, true
}

// Has reports whether id is live.
func (s *CardStore) Has(id CardID) bool {
	_, ok := s.byID[id]
	return ok
}

// Cards returns copies of every live card in creation order.
func (s *CardStore) Cards() []Card {
	out := make([]Card, len(s.cards))
	for i, c := range s.cards {
		out[i] = *c
	}
	return out
}

// Len returns the number of live cards.
func (s *CardStore) Len() int { return len(s.cards) }

// NextID returns the id the next Add will allocate.
func (s *CardStore) NextID() CardID { return s.maxID + 1 }

// Size returns the card size in content units.
func (s *CardStore) Size() Vec2 { return s.size }

// Bounds returns the content-space rectangle of card id.
func (s *CardStore) Bounds(id CardID) (Rect, bool) {
	c, ok := s.byID[id]
	if !ok {
		return Rect{}, false
	}
	return s.rect(c), true
}

// Center returns the content-space centre of card id.
func (s *CardStore) Center(id CardID) (Vec2, bool) {
	r, ok := s.Bounds(id)
	if !ok {
		return Vec2{}, false
	}
	return r.Center(), true
}

// TopmostAt returns the topmost card containing content point p.
// Cards are tested in reverse creation order, matching paint order.
func (s *CardStore) TopmostAt(p Vec2) (CardID, bool) {
	if !p.IsFinite() {
		return 0, false
	}
	for i := len(s.cards) - 1; i >= 0; i-- {
		if s.rect(s.cards[i]).Contains(p.X, p.Y) {
			return s.cards[i].ID, true
		}
	}
	return 0, false
}

func (s *CardStore) rect(c *Card) Rect {
	return Rect{X: c.Pos.X, Y: c.Pos.Y, Width: s.size.X, Height: s.size.Y}
}
