// Package ecs provides ECS adapters for canopy.
//
// The primary adapter is [NewDonburiSink], which publishes the [canopy.FrameStats]
// of every completed frame into a [Donburi] world as typed events. Subscribe
// to [FrameStatsEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	traverser.SetStatsSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
