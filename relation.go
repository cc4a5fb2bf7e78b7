package corkboard

import (
	"fmt"

	"go.uber.org/zap"
)

// Relation is an undirected link between two live cards.
type Relation struct {
	A, B CardID
}

// Touches reports whether id is one of the relation's endpoints.
func (r Relation) Touches(id CardID) bool { return r.A == id || r.B == id }

// Segment is a relation's rendered line in screen space, from the centre of
// card A to the centre of card B.
type Segment struct {
	Relation Relation
	From, To Vec2
}

// LinkState is the two-click linking state machine.
type LinkState uint8

const (
	NoSelection LinkState = iota // no card is waiting for a partner
	PendingOn                    // one card is marked and highlighted
)

// LinkResult reports what a BeginOrCompleteLink call did.
type LinkResult uint8

const (
	LinkPending  LinkResult = iota // first card marked
	LinkCreated                    // relation created, pending mark cleared
	LinkCanceled                   // same card clicked twice, mark cleared
)

func (r LinkResult) String() string {
	switch r {
	case LinkPending:
		return "pending"
	case LinkCreated:
		return "linked"
	case LinkCanceled:
		return "canceled"
	}
	return fmt.Sprintf("LinkResult(%d)", uint8(r))
}

// RelationGraph owns the relations of a board and their rendered endpoints.
// Duplicate relations between the same pair are kept.
type RelationGraph struct {
	cards     *CardStore
	relations []Relation

	state   LinkState
	pending CardID

	segments    []Segment
	recomputing bool
	passes      int
}

// NewRelationGraph creates an empty graph over cards.
func NewRelationGraph(cards *CardStore) *RelationGraph {
	return &RelationGraph{cards: cards}
}

// Pending returns the link state and, when PendingOn, the marked card.
func (g *RelationGraph) Pending() (LinkState, CardID) {
	return g.state, g.pending
}

// BeginOrCompleteLink advances the two-click protocol with card id.
func (g *RelationGraph) BeginOrCompleteLink(id CardID) (LinkResult, error) {
	if !g.cards.Has(id) {
		return 0, notFound(id)
	}
	switch {
	case g.state == NoSelection:
		g.state, g.pending = PendingOn, id
		Logger().Debug("link pending", zap.Int("card", int(id)))
		return LinkPending, nil
	case g.pending == id:
		g.CancelPending()
		return LinkCanceled, nil
	default:
		from := g.pending
		g.CancelPending()
		g.relations = append(g.relations, Relation{A: from, B: id})
		return LinkCreated, nil
	}
}

// CancelPending clears any pending mark.
func (g *RelationGraph) CancelPending() {
	g.state, g.pending = NoSelection, 0
}

// Link creates a relation directly. Both cards must be live and distinct.
func (g *RelationGraph) Link(a, b CardID) error {
	if !g.cards.Has(a) {
		return notFound(a)
	}
	if !g.cards.Has(b) {
		return notFound(b)
	}
	if a == b {
		return fmt.Errorf("card %d cannot link to itself", a)
	}
	g.relations = append(g.relations, Relation{A: a, B: b})
	return nil
}

// UnlinkAllFor removes every relation touching id and returns them. A pending
// mark on id is cleared as well.
func (g *RelationGraph) UnlinkAllFor(id CardID) []Relation {
	if g.state == PendingOn && g.pending == id {
		g.CancelPending()
	}
	var removed []Relation
	kept := g.relations[:0]
	for _, r := range g.relations {
		if r.Touches(id) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	g.relations = kept
	return removed
}

// Relations returns the relations in creation order.
func (g *RelationGraph) Relations() []Relation {
	return append([]Relation(nil), g.relations...)
}

// Len returns the number of relations.
func (g *RelationGraph) Len() int { return len(g.relations) }

// Recompute derives every relation's screen-space endpoints from the current
// card positions and vp. A call made while a pass is already running returns
// immediately.
func (g *RelationGraph) Recompute(vp *Viewport) {
	if g.recomputing {
		return
	}
	g.recomputing = true
	defer func() { g.recomputing = false }()

	g.passes++
	g.segments = g.segments[:0]
	for _, r := range g.relations {
		a, okA := g.cards.Center(r.A)
		b, okB := g.cards.Center(r.B)
		if !okA || !okB {
			continue
		}
		g.segments = append(g.segments, Segment{
			Relation: r,
			From:     vp.ContentToScreen(a),
			To:       vp.ContentToScreen(b),
		})
	}
}

// Endpoints returns the segments computed by the last Recompute.
func (g *RelationGraph) Endpoints() []Segment {
	return append([]Segment(nil), g.segments...)
}

// Passes returns how many recomputation passes have run.
func (g *RelationGraph) Passes() int { return g.passes }
