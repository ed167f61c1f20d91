package canopy

// StateLookupTree maps nodes to the CullState they were last classified into,
// within one instancing scope. Each instancing (or sub-render) arc crossed
// below the scope owns one nested child tree.
//
// A node reached through two instancing paths may belong to two different
// CullStates in the same frame; nesting scopes by instancing depth keeps the
// node itself as the cache key.
type StateLookupTree struct {
	nodes    map[*Node]nodeMapping
	subtrees map[*Arc]*StateLookupTree

	// Child scopes only.
	entry    *Arc
	base     RenderState
	verified Timestamp
	depth    int
	// idle counts cleanups since the scope was last entered.
	idle int
}

// nodeMapping is one node's cached association. idle counts cleanups since
// the node was last reached in this scope.
type nodeMapping struct {
	id   StateID
	idle int
}

func newStateLookupTree() *StateLookupTree {
	return &StateLookupTree{
		nodes:    make(map[*Node]nodeMapping),
		subtrees: make(map[*Arc]*StateLookupTree),
	}
}

// Depth returns 0 for the root scope and n for a scope nested n instancing
// arcs deep.
func (t *StateLookupTree) Depth() int { return t.depth }

// Entry returns the instancing arc owning this scope (nil at the root).
func (t *StateLookupTree) Entry() *Arc { return t.entry }

// Base returns the cumulative state from the graph root through the entry arc.
func (t *StateLookupTree) Base() RenderState { return t.base }

// NumNodes returns the number of node mappings held directly by this scope.
func (t *StateLookupTree) NumNodes() int { return len(t.nodes) }

// NumSubtrees returns the number of direct child scopes.
func (t *StateLookupTree) NumSubtrees() int { return len(t.subtrees) }

// Subtree returns the existing child scope for arc, or nil.
func (t *StateLookupTree) Subtree(a *Arc) *StateLookupTree { return t.subtrees[a] }

// FindNode returns the CullState n is cached under when that association is
// still current as of asOf and still represents composed. Any stale mapping
// is evicted.
func (t *StateLookupTree) FindNode(reg *stateRegistry, n *Node, composed RenderState, asOf Timestamp) *CullState {
	m, ok := t.nodes[n]
	if !ok {
		return nil
	}
	cs := reg.get(m.id)
	if cs == nil {
		delete(t.nodes, n)
		return nil
	}
	if !cs.CheckCurrency(n, asOf) || cs.state != composed {
		t.unmap(n, cs)
		return nil
	}
	t.nodes[n] = nodeMapping{id: m.id}
	return cs
}

// RecordNode associates n with cs in this scope and marks it verified.
func (t *StateLookupTree) RecordNode(reg *stateRegistry, n *Node, cs *CullState, now Timestamp) {
	old, ok := t.nodes[n]
	if ok && old.id != cs.id {
		if prev := reg.get(old.id); prev != nil {
			prev.forget(n)
		}
	}
	if !ok || old.id != cs.id {
		cs.refs++
	}
	t.nodes[n] = nodeMapping{id: cs.id}
	cs.MarkVerified(n, now)
}

// unmap drops n's mapping along with its verification stamp in cs.
func (t *StateLookupTree) unmap(n *Node, cs *CullState) {
	delete(t.nodes, n)
	cs.forget(n)
}

// GetSubtree returns the child scope for the instancing arc a, creating it on
// first sight. On later visits a changed base is replaced in place without
// discarding the scope's cached node associations. An arc's child never
// changes, so the arc alone identifies the subtree root.
func (t *StateLookupTree) GetSubtree(a *Arc, base RenderState, now, asOf Timestamp) *StateLookupTree {
	sub, ok := t.subtrees[a]
	if !ok {
		sub = newStateLookupTree()
		sub.entry = a
		sub.base = base
		sub.verified = now
		sub.depth = t.depth + 1
		t.subtrees[a] = sub
		return sub
	}
	sub.idle = 0
	if sub.verified.IsStale() || sub.verified.Less(asOf) || sub.base != base {
		sub.update(base, now)
	}
	return sub
}

// update replaces the stored base state and re-stamps the scope.
func (t *StateLookupTree) update(base RenderState, now Timestamp) {
	t.base = base
	t.verified = now
}

// ComposeTrans returns from placed in the graph root's frame: from itself at
// the root scope, the scope's base composed with from otherwise.
func (t *StateLookupTree) ComposeTrans(from RenderState) RenderState {
	if t.depth == 0 {
		return from
	}
	return t.base.Compose(from)
}

// CleanOutOldNodes drops mappings whose CullState has expired or whose node
// was not reached for more than maxEmptyFrames cleanups, and removes child
// scopes left with nothing in them. Scopes whose entry arc was detached, or
// that were not entered for maxEmptyFrames cleanups, are released whole.
func (t *StateLookupTree) CleanOutOldNodes(reg *stateRegistry, maxEmptyFrames int) {
	for n, m := range t.nodes {
		cs := reg.get(m.id)
		if cs == nil {
			delete(t.nodes, n)
			continue
		}
		m.idle++
		if m.idle > maxEmptyFrames || cs.expired(maxEmptyFrames) {
			t.unmap(n, cs)
			continue
		}
		t.nodes[n] = m
	}
	for a, sub := range t.subtrees {
		sub.idle++
		if a.parent == nil || sub.idle > maxEmptyFrames {
			sub.release(reg)
			delete(t.subtrees, a)
			continue
		}
		sub.CleanOutOldNodes(reg, maxEmptyFrames)
		if sub.IsEmpty() {
			delete(t.subtrees, a)
		}
	}
}

// IsEmpty reports whether the scope holds no mappings and no child scopes.
func (t *StateLookupTree) IsEmpty() bool {
	return len(t.nodes) == 0 && len(t.subtrees) == 0
}

// release drops every mapping in the scope and its descendants.
func (t *StateLookupTree) release(reg *stateRegistry) {
	for n, m := range t.nodes {
		if cs := reg.get(m.id); cs != nil {
			cs.forget(n)
		}
		delete(t.nodes, n)
	}
	for a, sub := range t.subtrees {
		sub.release(reg)
		delete(t.subtrees, a)
	}
}

// countSubtrees returns the number of scopes below t.
func (t *StateLookupTree) countSubtrees() int {
	n := len(t.subtrees)
	for _, sub := range t.subtrees {
		n += sub.countSubtrees()
	}
	return n
}
