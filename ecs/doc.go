// Package ecs bridges corkboard editor events into a [Donburi] world.
//
// [NewDonburiSink] returns a [corkboard.EventSink] that publishes every
// board change as a typed Donburi event. Subscribe to [BoardEventType] in
// your ECS systems to react to cards being added, moved, linked or deleted.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	editor.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
