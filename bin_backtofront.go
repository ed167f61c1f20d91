package canopy

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// depthEntry is one node placed in a BackToFrontBin.
type depthEntry struct {
	distance float32
	id       StateID
	node     *Node
	direct   bool
}

// BackToFrontBin draws individual nodes ordered by camera-space distance to
// their bounding-volume center, farthest first. Direct nodes without a usable
// volume fall back to the average of their children's bounds; anything else
// sorts at distance 0.
type BackToFrontBin struct {
	binBase
	entries []depthEntry
	sortBuf []depthEntry
	sorted  bool
}

// Len returns the number of nodes classified this frame.
func (b *BackToFrontBin) Len() int { return len(b.entries) }

func (b *BackToFrontBin) clearCurrentStates() {
	clear(b.entries)
	b.entries = b.entries[:0]
	b.sorted = true
}

func (b *BackToFrontBin) recordCurrentState(ctx *binContext, cs *CullState, _ int) {
	m := cs.ApplyTo(ctx.initial).Transform()
	for _, n := range cs.geom.list {
		b.entries = append(b.entries, depthEntry{distance: nodeDistance(ctx, n, m), id: cs.id, node: n})
	}
	for _, n := range cs.direct.list {
		b.entries = append(b.entries, depthEntry{distance: nodeDistance(ctx, n, m), id: cs.id, node: n, direct: true})
	}
	b.sorted = false
	cs.bin = b.id
}

// nodeDistance returns the camera distance of n's approximate center placed
// by m, or 0 when n has no usable bounds.
func nodeDistance(ctx *binContext, n *Node, m mgl32.Mat4) float32 {
	c, ok := approxCenter(n)
	if !ok {
		return 0
	}
	return ctx.distance(mgl32.TransformCoordinate(c, m))
}

// farther reports whether a sorts before or with b: farther entries first.
func farther(a, b depthEntry) bool { return a.distance >= b.distance }

func (b *BackToFrontBin) sort() {
	if b.sorted {
		return
	}
	b.sortBuf = mergeSort(b.entries, b.sortBuf, farther)
	b.sorted = true
}

func (b *BackToFrontBin) draw(ctx *binContext) {
	b.sort()
	for _, e := range b.entries {
		cs := ctx.states.get(e.id)
		if cs == nil {
			continue
		}
		rs := cs.ApplyTo(ctx.initial)
		if e.direct {
			ctx.direct(e.node, rs)
		} else {
			ctx.device.DrawGeometry(e.node, rs)
		}
	}
}

func (b *BackToFrontBin) write(w io.Writer, indent int, _ *binContext) {
	b.header(w, indent)
	b.sort()
	for _, e := range b.entries {
		kind := "geom"
		if e.direct {
			kind = "direct"
		}
		fmt.Fprintf(w, "%s%.3f %s %s state %d\n", indentString(indent+2), e.distance, kind, e.node, e.id)
	}
}
