package canopy

// Graph owns a set of nodes and arcs and the logical clock that stamps them.
// Every mutation made through the Graph API stamps the touched node or arc,
// which is what lets a Traverser decide whether a cached classification is
// still current.
type Graph struct {
	clock Clock
	root  *Node
	// debug enables the depth and child-count checks in Attach.
	debug bool
}

// NewGraph creates a graph with a pre-created root node.
func NewGraph() *Graph {
	g := &Graph{}
	g.root = g.NewNode("root")
	return g
}

// Root returns the graph's root node.
func (g *Graph) Root() *Node { return g.root }

// Clock returns the graph's logical clock.
func (g *Graph) Clock() *Clock { return &g.clock }

// SetDebugChecks enables warnings for overly deep graphs and nodes with very
// many children on every Attach.
func (g *Graph) SetDebugChecks(enabled bool) { g.debug = enabled }

// Now returns the timestamp of the most recent mutation.
func (g *Graph) Now() Timestamp { return g.clock.Now() }

// NewNode creates a detached group node owned by g.
func (g *Graph) NewNode(name string) *Node {
	return &Node{
		ID:           nextNodeID(),
		Name:         name,
		LastModified: g.clock.Tick(),
		graph:        g,
	}
}

// NewGeomNode creates a detached geometry-bearing node owned by g.
func (g *Graph) NewGeomNode(name string, geom *Geometry) *Node {
	n := g.NewNode(name)
	n.Geom = geom
	return n
}

// Attach connects parent to child with a new arc carrying ts and returns it.
// Attaching a child that already has a parent instances it: the child keeps
// its existing arcs and gains another one.
// Panics if either node is nil, belongs to another graph, or the arc would
// create a cycle.
func (g *Graph) Attach(parent, child *Node, ts ...Transition) *Arc {
	if parent == nil || child == nil {
		panic("canopy: cannot attach nil node")
	}
	if parent.graph != g || child.graph != g {
		panic("canopy: node belongs to a different graph")
	}
	if isAncestor(child, parent) {
		panic("canopy: attaching child would create a cycle")
	}
	now := g.clock.Tick()
	a := &Arc{
		ID:           nextNodeID(),
		parent:       parent,
		child:        child,
		transitions:  append([]Transition(nil), ts...),
		LastModified: now,
	}
	parent.children = append(parent.children, a)
	child.parents = append(child.parents, a)
	// The child's instancing status may have changed.
	child.LastModified = now
	if g.debug {
		debugCheckGraphDepth(child)
		debugCheckChildCount(parent)
	}
	return a
}

// Detach removes the arc from the graph. The child keeps its own subtree.
func (g *Graph) Detach(a *Arc) {
	if a == nil || a.parent == nil {
		return
	}
	now := g.clock.Tick()
	a.parent.children = removeArc(a.parent.children, a)
	a.child.parents = removeArc(a.child.parents, a)
	a.parent.LastModified = now
	a.child.LastModified = now
	a.LastModified = now
	a.parent = nil
}

// SetTransitions replaces the arc's transitions.
func (g *Graph) SetTransitions(a *Arc, ts ...Transition) {
	a.transitions = append(a.transitions[:0], ts...)
	a.LastModified = g.clock.Tick()
}

// AddTransition appends t to the arc's transitions.
func (g *Graph) AddTransition(a *Arc, t Transition) {
	a.transitions = append(a.transitions, t)
	a.LastModified = g.clock.Tick()
}

// Touch stamps n as modified. Call it after changing node fields directly
// (Geom, Hidden, hooks).
func (g *Graph) Touch(n *Node) {
	n.LastModified = g.clock.Tick()
}

// TouchArc stamps a as modified.
func (g *Graph) TouchArc(a *Arc) {
	a.LastModified = g.clock.Tick()
}

// WRT composes the transitions of path[from:to] onto the empty state. It is
// the with-respect-to utility: path is the arc stack of a depth-first walk
// and [from, to) bounds the two graph positions.
func WRT(path []*Arc, from, to int) RenderState {
	var s RenderState
	for i := from; i < to && i < len(path); i++ {
		s = s.ApplyAll(path[i].transitions)
	}
	return s
}

// Visitor receives per-edge callbacks from Walk. ForwardArc returns whether
// to descend into the arc's child; BackwardArc runs after the child's subtree.
type Visitor[L any] interface {
	ForwardArc(a *Arc, level L) (L, bool)
	BackwardArc(a *Arc, level L)
}

// Walk drives a depth-first traversal below root, threading a per-level value
// from each ForwardArc to the arcs below it.
func Walk[L any](root *Node, level L, v Visitor[L]) {
	for _, a := range root.children {
		walkArc(a, level, v)
	}
}

func walkArc[L any](a *Arc, level L, v Visitor[L]) {
	next, descend := v.ForwardArc(a, level)
	if descend {
		for _, c := range a.child.children {
			walkArc(c, next, v)
		}
	}
	v.BackwardArc(a, level)
}
