package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// FrameStatsEventType is the Donburi event type for per-frame traversal
// statistics.
var FrameStatsEventType = events.NewEventType[canopy.FrameStats]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates a StatsSink backed by a Donburi world. Frame stats
// are published to FrameStatsEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) canopy.StatsSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) PublishFrameStats(stats canopy.FrameStats) {
	FrameStatsEventType.Publish(s.world, stats)
}
