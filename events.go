package corkboard

import "fmt"

// BoardEventType identifies what changed on a board.
type BoardEventType uint8

const (
	EventCardAdded       BoardEventType = iota // CardID, Pos
	EventCardUpdated                           // CardID
	EventCardMoved                             // CardID, Pos
	EventCardDeleted                           // CardID
	EventLinkPending                           // CardID
	EventLinkCanceled                          // CardID
	EventLinked                                // CardID, OtherID
	EventUnlinked                              // CardID, OtherID
	EventViewportChanged                       // Pos is the pan offset
	EventBoardLoaded                           // Path
	EventBoardSaved                            // Path
)

var boardEventNames = [...]string{
	"card-added", "card-updated", "card-moved", "card-deleted",
	"link-pending", "link-canceled", "linked", "unlinked",
	"viewport-changed", "board-loaded", "board-saved",
}

func (t BoardEventType) String() string {
	if int(t) < len(boardEventNames) {
		return boardEventNames[t]
	}
	return fmt.Sprintf("BoardEventType(%d)", uint8(t))
}

// BoardEvent describes one change. Unused fields are zero.
type BoardEvent struct {
	Type    BoardEventType
	CardID  CardID
	OtherID CardID
	Pos     Vec2
	Path    string
}

// EventSink receives board events on the control thread.
type EventSink interface {
	HandleBoardEvent(BoardEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(BoardEvent)

// HandleBoardEvent calls f(ev).
func (f EventSinkFunc) HandleBoardEvent(ev BoardEvent) { f(ev) }
