package canopy

import (
	"fmt"
	"io"
)

// fixedEntry is one classified state in a FixedBin.
type fixedEntry struct {
	id        StateID
	drawOrder int
}

// FixedBin draws its states by ascending draw order. States sharing a draw
// order keep the order they were classified in.
type FixedBin struct {
	binBase
	entries []fixedEntry
	sortBuf []fixedEntry
	sorted  bool
}

// Len returns the number of states classified this frame.
func (b *FixedBin) Len() int { return len(b.entries) }

func (b *FixedBin) clearCurrentStates() {
	b.entries = b.entries[:0]
	b.sorted = true
}

func (b *FixedBin) recordCurrentState(_ *binContext, cs *CullState, drawOrder int) {
	b.entries = append(b.entries, fixedEntry{id: cs.id, drawOrder: drawOrder})
	b.sorted = false
	cs.bin = b.id
}

func fixedLessOrEqual(a, b fixedEntry) bool { return a.drawOrder <= b.drawOrder }

func (b *FixedBin) sort() {
	if b.sorted {
		return
	}
	b.sortBuf = mergeSort(b.entries, b.sortBuf, fixedLessOrEqual)
	b.sorted = true
}

func (b *FixedBin) draw(ctx *binContext) {
	b.sort()
	for _, e := range b.entries {
		if cs := ctx.states.get(e.id); cs != nil {
			ctx.drawState(cs)
		}
	}
}

func (b *FixedBin) write(w io.Writer, indent int, ctx *binContext) {
	b.header(w, indent)
	b.sort()
	for _, e := range b.entries {
		if cs := ctx.states.get(e.id); cs != nil {
			fmt.Fprintf(w, "%sorder %d state %d %s\n", indentString(indent+2), e.drawOrder, e.id, cs.state)
		}
	}
}
