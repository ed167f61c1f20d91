package canopy

import (
	"fmt"
	"log/slog"
	"time"
)

// debugStats holds per-frame timing measured when a Traverser is in debug mode.
type debugStats struct {
	traverseTime time.Duration
	drawTime     time.Duration
	cleanTime    time.Duration
}

// debugLog writes timing and cache stats at debug level.
func (t *Traverser) debugLog(ds debugStats) {
	if !t.debug {
		return
	}
	st := t.stats
	Logger().Debug("canopy frame",
		slog.Uint64("frame", st.Frame),
		slog.Duration("traverse", ds.traverseTime),
		slog.Duration("draw", ds.drawTime),
		slog.Duration("clean", ds.cleanTime),
		slog.Int("nodes", st.Nodes),
		slog.Int("hits", st.CacheHits),
		slog.Int("misses", st.CacheMisses),
		slog.Int("new_states", st.NewStates),
		slog.Int("evicted", st.EvictedStates),
		slog.Int("live", st.LiveStates),
		slog.Int("subtrees", st.Subtrees),
	)
}

// debugPanic panics in debug mode and logs a warning otherwise.
func (t *Traverser) debugPanic(msg string, args ...any) {
	if t.debug {
		panic(fmt.Sprintf("canopy: "+msg, args...))
	}
	Logger().Warn(fmt.Sprintf(msg, args...))
}

// debugCheckGraphDepth warns if the deepest path above n exceeds the threshold.
const debugMaxGraphDepth = 64

func debugCheckGraphDepth(n *Node) {
	if d := maxDepth(n, 0); d > debugMaxGraphDepth {
		Logger().Warn("graph depth exceeds threshold",
			slog.String("node", n.Name), slog.Int("depth", d), slog.Int("threshold", debugMaxGraphDepth))
	}
}

func maxDepth(n *Node, d int) int {
	if d > debugMaxGraphDepth {
		return d
	}
	best := d + 1
	for _, a := range n.parents {
		if pd := maxDepth(a.parent, d+1); pd > best {
			best = pd
		}
	}
	return best
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("node child count exceeds threshold",
			slog.String("node", n.Name), slog.Int("children", len(n.children)), slog.Int("threshold", debugMaxChildCount))
	}
}
