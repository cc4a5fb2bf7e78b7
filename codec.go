package corkboard

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// DateLayout is the timestamp format of persisted records.
const DateLayout = "2006-01-02 15:04:05"

//go:embed record.schema.json
var recordSchemaJSON string

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("record.schema.json", strings.NewReader(recordSchemaJSON)); err != nil {
			recordSchemaErr = err
			return
		}
		recordSchema, recordSchemaErr = c.Compile("record.schema.json")
	})
	return recordSchema, recordSchemaErr
}

// Record is the portable, persisted form of a Board.
type Record struct {
	Title string     `json:"title"`
	Data  RecordData `json:"data"`
}

// RecordData holds the board state of a Record.
type RecordData struct {
	ID               string           `json:"id,omitempty" validate:"omitempty,uuid"`
	ZoomLevel        float64          `json:"zoomLevel" validate:"gt=0"`
	CurrentZoomIndex int              `json:"currentZoomIndex" validate:"gte=0"`
	Position         RecordPoint      `json:"position"`
	MaxPosition      RecordPoint      `json:"maxPosition"`
	Size             string           `json:"size" validate:"oneof=small medium large very-large"`
	Cards            []RecordCard     `json:"cards" validate:"dive"`
	Relations        []RecordRelation `json:"relations" validate:"dive"`
	Title            string           `json:"title"`
	Date             string           `json:"date" validate:"datetime=2006-01-02 15:04:05"`
}

// RecordPoint is an {x, y} pair.
type RecordPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RecordCard is one saved card.
type RecordCard struct {
	ID      int           `json:"id" validate:"gt=0"`
	Styles  RecordStyles  `json:"styles"`
	Content RecordContent `json:"content"`
}

// RecordStyles holds a card's position and colour.
type RecordStyles struct {
	Top             float64 `json:"top"`
	Left            float64 `json:"left"`
	BackgroundColor string  `json:"background_color"`
}

// RecordContent holds a card's text.
type RecordContent struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// RecordRelation is one saved relation.
type RecordRelation struct {
	Card1ID int `json:"card1_id" validate:"gt=0"`
	Card2ID int `json:"card2_id" validate:"gt=0"`
}

// RecordSummary is the one-line description used by recent-board lists.
type RecordSummary struct {
	Title string
	Cards int
	Date  string
}

func (s RecordSummary) String() string {
	return fmt.Sprintf("%s - %d cards / Updated at: %s", s.Title, s.Cards, s.Date)
}

// Summary describes the record for a recent-boards listing.
func (r Record) Summary() RecordSummary {
	return RecordSummary{Title: r.Title, Cards: len(r.Data.Cards), Date: r.Data.Date}
}

// Validate reports every structural problem of r as one *CorruptRecordError.
func (r Record) Validate() error {
	errs := validateStruct(r)

	seen := make(map[int]int, len(r.Data.Cards))
	for i, c := range r.Data.Cards {
		if j, dup := seen[c.ID]; dup {
			errs = append(errs, fmt.Errorf("data.cards[%d].id: duplicate id %d (also data.cards[%d])", i, c.ID, j))
			continue
		}
		seen[c.ID] = i
		if !isFinite(c.Styles.Left) || !isFinite(c.Styles.Top) {
			errs = append(errs, fmt.Errorf("data.cards[%d].styles: non-finite position", i))
		}
	}
	for i, rel := range r.Data.Relations {
		for _, id := range []int{rel.Card1ID, rel.Card2ID} {
			if _, ok := seen[id]; !ok && id > 0 {
				errs = append(errs, fmt.Errorf("data.relations[%d]: card %d does not exist", i, id))
			}
		}
		if rel.Card1ID == rel.Card2ID {
			errs = append(errs, fmt.Errorf("data.relations[%d]: card %d linked to itself", i, rel.Card1ID))
		}
	}
	p := r.Data.Position
	if !isFinite(p.X) || !isFinite(p.Y) {
		errs = append(errs, errors.New("data.position: non-finite"))
	}
	return corrupt(errs...)
}

// Serialize captures b as a Record. Cards are listed in creation order and
// relations in link order.
func Serialize(b *Board) Record {
	vp := b.Viewport()
	cards := b.Cards().Cards()
	rels := b.Relations().Relations()

	data := RecordData{
		ID:               b.ID().String(),
		ZoomLevel:        vp.ZoomFactor(),
		CurrentZoomIndex: vp.ZoomIndex(),
		Position:         recordPoint(vp.Translation()),
		MaxPosition:      recordPoint(vp.ContentSize()),
		Size:             vp.SizeClass().String(),
		Cards:            make([]RecordCard, 0, len(cards)),
		Relations:        make([]RecordRelation, 0, len(rels)),
		Title:            b.Title(),
		Date:             b.Modified().UTC().Format(DateLayout),
	}
	for _, c := range cards {
		data.Cards = append(data.Cards, RecordCard{
			ID:      int(c.ID),
			Styles:  RecordStyles{Top: c.Pos.Y, Left: c.Pos.X, BackgroundColor: c.Color},
			Content: RecordContent{Title: c.Title, Text: c.Body},
		})
	}
	for _, r := range rels {
		data.Relations = append(data.Relations, RecordRelation{Card1ID: int(r.A), Card2ID: int(r.B)})
	}
	return Record{Title: b.Title(), Data: data}
}

// Deserialize rebuilds a Board from rec for a frame of the given size. The
// size class is taken from the record but content bounds are rederived from
// frame, and the saved zoom and pan go through the usual zoom and clamp rules.
// Cards are replayed in saved order with their ids and positions, then
// relations are relinked. Any problem yields a *CorruptRecordError and no
// board.
func Deserialize(rec Record, frame Vec2, cfg Config, opts ...BoardOption) (*Board, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	size, err := ParseSizeClass(rec.Data.Size)
	if err != nil {
		return nil, corrupt(fmt.Errorf("data.size: %w", err))
	}
	modified, err := time.ParseInLocation(DateLayout, rec.Data.Date, time.UTC)
	if err != nil {
		return nil, corrupt(fmt.Errorf("data.date: %w", err))
	}
	if rec.Data.ID != "" {
		id, err := uuid.Parse(rec.Data.ID)
		if err != nil {
			return nil, corrupt(fmt.Errorf("data.id: %w", err))
		}
		opts = append([]BoardOption{WithBoardID(id)}, opts...)
	}

	b := newBoard(cfg, frame, size, opts...)
	b.title = rec.Title
	if b.title == "" {
		b.title = rec.Data.Title
	}
	b.viewport.restore(savedZoomIndex(b.viewport.zooms, rec.Data), Vec2{rec.Data.Position.X, rec.Data.Position.Y})

	var errs []error
	for i, rc := range rec.Data.Cards {
		_, err := b.cards.Restore(Card{
			ID:    CardID(rc.ID),
			Pos:   Vec2{rc.Styles.Left, rc.Styles.Top},
			Title: rc.Content.Title,
			Body:  rc.Content.Text,
			Color: rc.Styles.BackgroundColor,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("data.cards[%d]: %w", i, err))
		}
	}
	for i, rr := range rec.Data.Relations {
		if err := b.relations.Link(CardID(rr.Card1ID), CardID(rr.Card2ID)); err != nil {
			errs = append(errs, fmt.Errorf("data.relations[%d]: %w", i, err))
		}
	}
	if err := corrupt(errs...); err != nil {
		return nil, err
	}
	b.modified = modified
	b.RecomputeEndpoints()

	Logger().Info("board loaded",
		zap.String("board", b.id.String()),
		zap.Int("cards", b.cards.Len()),
		zap.Int("relations", b.relations.Len()))
	return b, nil
}

// savedZoomIndex picks the table entry for a saved view. The saved index is
// trusted when it names the saved factor; otherwise (a record from another
// zoom table) the nearest factor wins.
func savedZoomIndex(table []float64, d RecordData) int {
	i := d.CurrentZoomIndex
	if i >= 0 && i < len(table) && math.Abs(table[i]-d.ZoomLevel) < 1e-3 {
		return i
	}
	return nearestIndex(table, d.ZoomLevel)
}

// MarshalRecord encodes rec as 2-space indented JSON.
func MarshalRecord(rec Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

// UnmarshalRecord decodes and validates a persisted record. Every problem is
// reported in a single *CorruptRecordError.
func UnmarshalRecord(content []byte) (Record, error) {
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return Record{}, corrupt(fmt.Errorf("invalid JSON: %w", err))
	}
	schema, err := compiledRecordSchema()
	if err != nil {
		return Record{}, fmt.Errorf("record schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Record{}, corrupt(schemaProblems(err)...)
	}

	var rec Record
	if err := json.Unmarshal(content, &rec); err != nil {
		return Record{}, corrupt(err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// schemaProblems flattens a schema validation error into its leaf causes.
func schemaProblems(err error) []error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}
	var out []error
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, fmt.Errorf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}

func recordPoint(v Vec2) RecordPoint { return RecordPoint{X: v.X, Y: v.Y} }
