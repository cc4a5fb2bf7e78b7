package corkboard

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBoardID = uuid.MustParse("6f1c2a4e-8d0b-4c1e-9a52-3e7d9b0f1a22")

// sampleBoard builds a board with three cards, one deleted card, two
// relations (one duplicated) and a panned, zoomed view.
func sampleBoard(t *testing.T) *Board {
	t.Helper()
	clk := newFakeClock()
	b := NewBoard(DefaultConfig(), Vec2{1280, 720}, WithClock(clk.now), WithBoardID(testBoardID))
	b.AddCard()
	b.AddCard()
	b.AddCard()
	_, err := b.DeleteCard(3)
	require.NoError(t, err)

	title, body, color := "Goals", "ship it", "#a0d8ff"
	_, err = b.UpdateCard(1, CardPatch{Title: &title, Body: &body})
	require.NoError(t, err)
	_, err = b.UpdateCard(2, CardPatch{Color: &color})
	require.NoError(t, err)
	require.NoError(t, b.MoveCard(2, Vec2{1234.5, 678.25}))
	require.NoError(t, b.MoveCard(4, Vec2{-50, 4000}))

	require.NoError(t, b.Relations().Link(1, 2))
	require.NoError(t, b.Relations().Link(2, 4))
	require.NoError(t, b.Relations().Link(1, 2))

	b.Zoom(Vec2{300, 200}, ZoomIn)
	b.Zoom(Vec2{300, 200}, ZoomIn)
	b.Pan(Vec2{-333.3, -127.9})
	clk.advance(42)
	b.SetTitle("Sprint board")
	return b
}

func TestCodecRoundTrip(t *testing.T) {
	b := sampleBoard(t)
	rec := Serialize(b)

	b2, err := Deserialize(rec, Vec2{1280, 720}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, rec, Serialize(b2))

	assert.Equal(t, b.ID(), b2.ID())
	assert.Equal(t, withoutZ(b.Cards().Cards()), withoutZ(b2.Cards().Cards()))
	assert.Equal(t, b.Relations().Relations(), b2.Relations().Relations())
	assert.True(t, b.Modified().Equal(b2.Modified()))
}

// withoutZ drops paint ranks, which are rebuilt densely on load.
func withoutZ(cards []Card) []Card {
	for i := range cards {
		cards[i].Z = 0
	}
	return cards
}

func TestCodecRoundTripThroughJSON(t *testing.T) {
	rec := Serialize(sampleBoard(t))
	content, err := MarshalRecord(rec)
	require.NoError(t, err)

	decoded, err := UnmarshalRecord(content)
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)

	b, err := Deserialize(decoded, Vec2{1280, 720}, DefaultConfig())
	require.NoError(t, err)
	again, err := MarshalRecord(Serialize(b))
	require.NoError(t, err)
	assert.Equal(t, string(content), string(again))
}

func TestCodecRoundTripClearedColor(t *testing.T) {
	b := newTestBoard()
	empty := ""
	c, err := b.UpdateCard(1, CardPatch{Color: &empty})
	require.NoError(t, err)
	assert.Equal(t, DefaultCardColor, c.Color)

	rec := Serialize(b)
	b2, err := Deserialize(rec, Vec2{1280, 720}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, rec, Serialize(b2))
}

func TestCodecEmptyBoard(t *testing.T) {
	b := newTestBoard()
	_, err := b.DeleteCard(1)
	require.NoError(t, err)

	rec := Serialize(b)
	assert.NotNil(t, rec.Data.Cards)
	assert.NotNil(t, rec.Data.Relations)

	b2, err := Deserialize(rec, Vec2{1280, 720}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, b2.Cards().Len())
	assert.Equal(t, rec, Serialize(b2))
	// The allocator only knows what was saved.
	assert.Equal(t, CardID(1), b2.Cards().NextID())
}

func TestCodecIDsKeepGrowingAfterLoad(t *testing.T) {
	b, err := Deserialize(Serialize(sampleBoard(t)), Vec2{1280, 720}, DefaultConfig())
	require.NoError(t, err)
	c := b.AddCard()
	assert.Equal(t, CardID(5), c.ID)
}

func TestCodecRecordShape(t *testing.T) {
	rec := Record{
		Title: "Plans",
		Data: RecordData{
			ID:               testBoardID.String(),
			ZoomLevel:        1.2,
			CurrentZoomIndex: 11,
			Position:         RecordPoint{X: -10, Y: -20.5},
			MaxPosition:      RecordPoint{X: 5120, Y: 2880},
			Size:             "medium",
			Cards: []RecordCard{{
				ID:      1,
				Styles:  RecordStyles{Top: 300, Left: 540, BackgroundColor: "#fff8b0"},
				Content: RecordContent{Title: "a", Text: "b"},
			}},
			Relations: []RecordRelation{},
			Title:     "Plans",
			Date:      "2024-05-17 09:30:00",
		},
	}
	content, err := MarshalRecord(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "title": "Plans",
	  "data": {
	    "id": "6f1c2a4e-8d0b-4c1e-9a52-3e7d9b0f1a22",
	    "zoomLevel": 1.2,
	    "currentZoomIndex": 11,
	    "position": {"x": -10, "y": -20.5},
	    "maxPosition": {"x": 5120, "y": 2880},
	    "size": "medium",
	    "cards": [
	      {"id": 1, "styles": {"top": 300, "left": 540, "background_color": "#fff8b0"}, "content": {"title": "a", "text": "b"}}
	    ],
	    "relations": [],
	    "title": "Plans",
	    "date": "2024-05-17 09:30:00"
	  }
	}`, string(content))
	assert.Contains(t, string(content), "\n  \"data\": {")
}

func TestCodecRederivesBoundsForNewFrame(t *testing.T) {
	b := newTestBoard()
	b.Pan(Vec2{-100000, -100000})
	rec := Serialize(b)
	require.Equal(t, RecordPoint{X: -3840, Y: -2160}, rec.Data.Position)

	b2, err := Deserialize(rec, Vec2{640, 360}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Vec2{2560, 1440}, b2.Viewport().ContentSize())
	assert.Equal(t, Vec2{-1920, -1080}, b2.Viewport().Translation())
}

func TestCodecZoomIndexFallback(t *testing.T) {
	rec := Serialize(newTestBoard())
	rec.Data.ZoomLevel = 1.5
	rec.Data.CurrentZoomIndex = 99

	b, err := Deserialize(rec, Vec2{1280, 720}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 14, b.Viewport().ZoomIndex())
	assert.InDelta(t, 1.5, b.Viewport().ZoomFactor(), 1e-9)
}

func TestUnmarshalRecordInvalidJSON(t *testing.T) {
	_, err := UnmarshalRecord([]byte(`{"title": `))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptRecord))
}

func TestUnmarshalRecordMissingFields(t *testing.T) {
	_, err := UnmarshalRecord([]byte(`{"title": "x", "data": {"cards": "nope", "size": "huge"}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptRecord)

	var cre *CorruptRecordError
	require.ErrorAs(t, err, &cre)
	assert.GreaterOrEqual(t, len(cre.Problems()), 2)
}

func TestUnmarshalRecordSemanticProblems(t *testing.T) {
	doc := `{
	  "title": "t",
	  "data": {
	    "zoomLevel": 1, "currentZoomIndex": 9,
	    "position": {"x": 0, "y": 0}, "maxPosition": {"x": 5120, "y": 2880},
	    "size": "medium",
	    "cards": [
	      {"id": 1, "styles": {"top": 0, "left": 0}, "content": {}},
	      {"id": 1, "styles": {"top": 0, "left": 0}, "content": {}},
	      {"id": 2, "styles": {"top": 0, "left": 0}, "content": {}}
	    ],
	    "relations": [{"card1_id": 1, "card2_id": 3}],
	    "title": "t",
	    "date": "2024-05-17 09:30:00"
	  }
	}`
	_, err := UnmarshalRecord([]byte(doc))
	var cre *CorruptRecordError
	require.ErrorAs(t, err, &cre)
	assert.Len(t, cre.Problems(), 2)
	assert.Contains(t, err.Error(), "duplicate id 1")
	assert.Contains(t, err.Error(), "card 3 does not exist")
}

func TestDeserializeRefusesPartialBoard(t *testing.T) {
	rec := Serialize(sampleBoard(t))
	rec.Data.Relations = append(rec.Data.Relations, RecordRelation{Card1ID: 1, Card2ID: 77})
	rec.Data.Date = "2024-13-40 99:00:00"

	b, err := Deserialize(rec, Vec2{1280, 720}, DefaultConfig())
	assert.Nil(t, b)
	var cre *CorruptRecordError
	require.ErrorAs(t, err, &cre)
	assert.Len(t, cre.Problems(), 2)
}

func TestRecordSummary(t *testing.T) {
	rec := Serialize(sampleBoard(t))
	s := rec.Summary()
	assert.Equal(t, "Sprint board", s.Title)
	assert.Equal(t, 3, s.Cards)
	assert.Equal(t, "Sprint board - 3 cards / Updated at: 2024-05-17 09:30:00", s.String())
}
