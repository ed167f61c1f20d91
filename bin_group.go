package canopy

import "io"

// GroupBin routes each state to exactly one child bin chosen by a pure
// function of its render state, and draws its children in registration
// order. It renders nothing itself.
type GroupBin struct {
	binBase
	children []BinID
	selector func(rs RenderState) int
	count    int
}

// newNormalBin builds the normal bin: opaque states go to an unsorted child,
// transparent states to a back-to-front child.
func newNormalBin(reg *binRegistry, base binBase) *GroupBin {
	g := &GroupBin{binBase: base, selector: transparencySelector}
	g.addChild(reg, &UnsortedBin{binBase: binBase{name: base.name + ".opaque", typ: BinUnsorted, sort: base.sort, active: true}})
	g.addChild(reg, &BackToFrontBin{binBase: binBase{name: base.name + ".transparent", typ: BinBackToFront, sort: base.sort, active: true}})
	return g
}

// transparencySelector picks child 1 for transparent states, 0 otherwise.
func transparencySelector(rs RenderState) int {
	if rs.Transparent() {
		return 1
	}
	return 0
}

func (g *GroupBin) addChild(reg *binRegistry, b Bin) {
	id := reg.add(b)
	g.children = append(g.children, id)
}

// Children returns the child bins in registration order.
func (g *GroupBin) Children(t *Traverser) []Bin {
	out := make([]Bin, 0, len(g.children))
	for _, id := range g.children {
		if b := t.bins.get(id); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of entries across all children this frame.
func (g *GroupBin) Len() int {
	return g.count
}

func (g *GroupBin) clearCurrentStates() { g.count = 0 }

func (g *GroupBin) recordCurrentState(ctx *binContext, cs *CullState, drawOrder int) {
	i := g.selector(cs.state)
	if i < 0 || i >= len(g.children) {
		i = 0
	}
	if child := ctx.bins.get(g.children[i]); child != nil {
		child.recordCurrentState(ctx, cs, drawOrder)
		g.count++
	}
}

func (g *GroupBin) draw(ctx *binContext) {
	for _, id := range g.children {
		if child := ctx.bins.get(id); child != nil && child.Active() {
			child.draw(ctx)
		}
	}
}

func (g *GroupBin) write(w io.Writer, indent int, ctx *binContext) {
	g.header(w, indent)
	for _, id := range g.children {
		if child := ctx.bins.get(id); child != nil {
			child.write(w, indent+2, ctx)
		}
	}
}
