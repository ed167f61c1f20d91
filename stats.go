package canopy

import "time"

// FrameStats summarizes one outer frame.
type FrameStats struct {
	Frame uint64

	// Nodes is the number of nodes classified into a CullState.
	Nodes int
	// CacheHits counts classifications served by a current lookup-tree entry.
	CacheHits int
	// CacheMisses counts classifications that had to resolve a CullState.
	CacheMisses int
	// NewStates counts CullStates created this frame.
	NewStates int
	// EvictedStates counts CullStates released this frame.
	EvictedStates int
	// LiveStates is the number of CullStates alive after cleanup.
	LiveStates int
	// Subtrees is the number of nested lookup scopes alive after cleanup.
	Subtrees int
	// BinsDrawn is the number of toplevel bins that drew.
	BinsDrawn int
	// SynthesizedBins counts bins created for unknown bin names.
	SynthesizedBins int

	TraverseTime time.Duration
	DrawTime     time.Duration
}

// StatsSink receives the statistics of every completed outer frame.
// See the ecs sub-module for a Donburi-backed implementation.
type StatsSink interface {
	PublishFrameStats(stats FrameStats)
}
