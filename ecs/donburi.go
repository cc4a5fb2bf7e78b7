package ecs

import (
	"github.com/phanxgames/corkboard"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// BoardEventType is the Donburi event type for corkboard board events.
var BoardEventType = events.NewEventType[corkboard.BoardEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// queued on BoardEventType and delivered by ProcessEvents.
func NewDonburiSink(world donburi.World) corkboard.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) HandleBoardEvent(ev corkboard.BoardEvent) {
	BoardEventType.Publish(s.world, ev)
}
