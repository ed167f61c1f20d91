package canopy

import (
	"fmt"
	"io"
	"strings"
)

func indentString(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// Write prints a human-readable dump of the traverser's bins, live
// CullStates and lookup scopes. The format is for diagnostics only.
func (t *Traverser) Write(w io.Writer, indent int) {
	pad := indentString(indent)
	fmt.Fprintf(w, "%sTraverser frame %d: %d states, %d bins, %d scopes\n",
		pad, t.frame, t.states.live(), len(t.bins.sorted), 1+t.lookup.countSubtrees())

	ctx := t.context()
	fmt.Fprintf(w, "%sbins:\n", pad)
	for _, b := range t.bins.toplevel() {
		b.write(w, indent+2, ctx)
	}

	fmt.Fprintf(w, "%sstates:\n", pad)
	t.states.each(func(cs *CullState) {
		bin := "-"
		if b := t.bins.get(cs.bin); b != nil {
			bin = b.Name()
		}
		fmt.Fprintf(w, "%sstate %d %s bin=%s refs=%d empty=%d\n",
			indentString(indent+2), cs.id, cs.state, bin, cs.refs, cs.emptyFrames)
		for _, n := range cs.geom.list {
			fmt.Fprintf(w, "%sgeom %s\n", indentString(indent+4), n)
		}
		for _, n := range cs.direct.list {
			fmt.Fprintf(w, "%sdirect %s\n", indentString(indent+4), n)
		}
	})

	fmt.Fprintf(w, "%slookup:\n", pad)
	t.lookup.write(w, indent+2)
}

func (l *StateLookupTree) write(w io.Writer, indent int) {
	pad := indentString(indent)
	if l.entry == nil {
		fmt.Fprintf(w, "%sscope root: %d nodes\n", pad, len(l.nodes))
	} else {
		fmt.Fprintf(w, "%sscope %s depth=%d top=%s verified=%s: %d nodes\n",
			pad, l.entry, l.depth, l.entry.child, l.verified, len(l.nodes))
	}
	for n, m := range l.nodes {
		fmt.Fprintf(w, "%s%s -> state %d idle=%d\n", indentString(indent+2), n, m.id, m.idle)
	}
	for _, sub := range l.subtrees {
		sub.write(w, indent+2)
	}
}
