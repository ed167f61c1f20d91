package ecs

import (
	"testing"

	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_PublishFrameStats(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []canopy.FrameStats
	FrameStatsEventType.Subscribe(world, func(w donburi.World, s canopy.FrameStats) {
		received = append(received, s)
	})

	sink.PublishFrameStats(canopy.FrameStats{Frame: 1, Nodes: 3, CacheMisses: 3, NewStates: 2})
	sink.PublishFrameStats(canopy.FrameStats{Frame: 2, Nodes: 3, CacheHits: 3})

	// Events are queued; process them.
	FrameStatsEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Frame != 1 || received[0].NewStates != 2 {
		t.Errorf("event 0: %+v", received[0])
	}
	if received[1].Frame != 2 || received[1].CacheHits != 3 {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiSink_FromTraverser(t *testing.T) {
	world := donburi.NewWorld()

	g := canopy.NewGraph()
	a := g.NewGeomNode("a", canopy.NewQuad(canopy.ColorWhite))
	g.Attach(g.Root(), a, canopy.Translate(1, 0, 0))

	tr := canopy.NewTraverser(g, canopy.DefaultConfig())
	tr.SetStatsSink(NewDonburiSink(world))

	var frames []uint64
	FrameStatsEventType.Subscribe(world, func(w donburi.World, s canopy.FrameStats) {
		frames = append(frames, s.Frame)
	})

	tr.Traverse(g.Root(), canopy.EmptyState(), canopy.EmptyState())
	tr.Traverse(g.Root(), canopy.EmptyState(), canopy.EmptyState())
	events.ProcessAllEvents(world)

	if len(frames) != 2 || frames[0] != 1 || frames[1] != 2 {
		t.Errorf("frames = %v, want [1 2]", frames)
	}
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	FrameStatsEventType.Subscribe(world, func(w donburi.World, s canopy.FrameStats) {
		count1++
	})
	FrameStatsEventType.Subscribe(world, func(w donburi.World, s canopy.FrameStats) {
		count2++
	})

	sink.PublishFrameStats(canopy.FrameStats{Frame: 7})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
