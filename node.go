package canopy

import "fmt"

// SubRenderFunc is a per-node or per-arc evaluation hook run with the fully
// composed state before the traverser descends. Returning false stops the
// descent: the node is treated as a leaf. Hooks may call Traverser.Traverse
// re-entrantly.
type SubRenderFunc func(ctx *SubRenderContext) bool

// SubRenderContext carries the data handed to a SubRenderFunc.
type SubRenderContext struct {
	Traverser *Traverser
	Node      *Node
	Arc       *Arc
	// State is the net state from the graph root to Node, including Arc.
	State RenderState
}

// --- ID counter ---

// nodeIDCounter is a plain counter; canopy is single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is a scene graph vertex. A node may be reached through several parent
// arcs (instancing), so the graph is a DAG rather than a tree.
//
// A single flat struct is used for every kind of node; a node is
// geometry-bearing iff Geom is non-nil.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Geometry drawn for this node, nil for pure group nodes.
	Geom *Geometry
	// Bounds overrides the geometry-derived bounding volume when non-nil.
	Bounds *BoundingSphere

	// Hidden nodes and their subtrees are skipped by traversal.
	Hidden bool

	// OnPreRender runs every time the traverser visits the node.
	OnPreRender func(n *Node)
	// SubRender, when set, is evaluated before descending below the node.
	SubRender SubRenderFunc

	// LastModified is stamped by the owning Graph on every mutation.
	LastModified Timestamp

	// Metadata
	UserData any

	graph    *Graph
	parents  []*Arc
	children []*Arc
}

// Parents returns the arcs leading into n. The returned slice MUST NOT be
// mutated by the caller.
func (n *Node) Parents() []*Arc { return n.parents }

// Children returns the arcs leading out of n. The returned slice MUST NOT be
// mutated by the caller.
func (n *Node) Children() []*Arc { return n.children }

// NumParents returns the number of parent arcs.
func (n *Node) NumParents() int { return len(n.parents) }

// NumChildren returns the number of child arcs.
func (n *Node) NumChildren() int { return len(n.children) }

// Instanced reports whether n is reachable through more than one arc.
func (n *Node) Instanced() bool { return len(n.parents) > 1 }

// Graph returns the graph n belongs to, or nil.
func (n *Node) Graph() *Graph { return n.graph }

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", n.Name, n.ID)
}

// --- Arc ---

// Arc is a directed edge from a parent node to a child node carrying an
// ordered list of transitions.
type Arc struct {
	ID uint32

	// SubRender, when set, is evaluated before descending through the arc.
	SubRender SubRenderFunc

	// LastModified is stamped by the owning Graph on every mutation.
	LastModified Timestamp

	parent      *Node
	child       *Node
	transitions []Transition
}

// Parent returns the arc's source node.
func (a *Arc) Parent() *Node { return a.parent }

// Child returns the arc's destination node.
func (a *Arc) Child() *Node { return a.child }

// Transitions returns the transitions carried by the arc. The returned slice
// MUST NOT be mutated; use Graph.SetTransitions.
func (a *Arc) Transitions() []Transition { return a.transitions }

// has reports whether the arc carries a transition of kind k.
func (a *Arc) has(k TransitionKind) bool {
	for i := range a.transitions {
		if a.transitions[i].Kind == k {
			return true
		}
	}
	return false
}

// Pruned reports whether traversal must stop at the arc.
func (a *Arc) Pruned() bool { return a.has(TransitionPrune) }

// Decal reports whether the arc carries a decal transition.
func (a *Arc) Decal() bool { return a.has(TransitionDecal) }

// DirectRender reports whether the arc requests direct rendering.
func (a *Arc) DirectRender() bool { return a.has(TransitionDirectRender) }

// SubRenderCount returns the number of sub-render hooks that apply when the
// traverser crosses the arc: the arc's own hook and the child's.
func (a *Arc) SubRenderCount() int {
	n := 0
	if a.SubRender != nil {
		n++
	}
	if a.child != nil && a.child.SubRender != nil {
		n++
	}
	return n
}

func (a *Arc) String() string {
	return fmt.Sprintf("arc#%d(%s->%s)", a.ID, a.parent, a.child)
}

// --- Helpers ---

// isAncestor reports whether candidate is reachable upward from node.
func isAncestor(candidate, node *Node) bool {
	if candidate == node {
		return true
	}
	for _, p := range node.parents {
		if isAncestor(candidate, p.parent) {
			return true
		}
	}
	return false
}

// removeArc removes a from list without retaining a dangling pointer in the
// backing array.
func removeArc(list []*Arc, a *Arc) []*Arc {
	for i, c := range list {
		if c == a {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
