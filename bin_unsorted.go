package canopy

import (
	"fmt"
	"io"
)

// UnsortedBin draws its states in the order they were classified.
type UnsortedBin struct {
	binBase
	states []StateID
}

// Len returns the number of states classified this frame.
func (b *UnsortedBin) Len() int { return len(b.states) }

func (b *UnsortedBin) clearCurrentStates() {
	b.states = b.states[:0]
}

func (b *UnsortedBin) recordCurrentState(_ *binContext, cs *CullState, _ int) {
	b.states = append(b.states, cs.id)
	cs.bin = b.id
}

func (b *UnsortedBin) draw(ctx *binContext) {
	for _, id := range b.states {
		if cs := ctx.states.get(id); cs != nil {
			ctx.drawState(cs)
		}
	}
}

func (b *UnsortedBin) write(w io.Writer, indent int, ctx *binContext) {
	b.header(w, indent)
	for _, id := range b.states {
		if cs := ctx.states.get(id); cs != nil {
			fmt.Fprintf(w, "%sstate %d %s\n", indentString(indent+2), id, cs.state)
		}
	}
}
