package canopy

// cullLevel is the per-level value threaded through the walk.
type cullLevel struct {
	// lookup is the instancing scope nodes at this level are cached in.
	lookup *StateLookupTree
	// scopeDepth is the path index where lookup's scope begins.
	scopeDepth int
	// asOf is the newest modification stamp on the path so far. Cached
	// associations older than it are stale.
	asOf Timestamp
}

// cullVisitor classifies the nodes reached by one Traverse call.
type cullVisitor struct {
	t        *Traverser
	netTrans RenderState
	path     []*Arc
}

// traverse classifies root itself, then walks everything below it.
func (v *cullVisitor) traverse(root *Node, netTrans RenderState) {
	t := v.t
	v.netTrans = netTrans
	if root.Hidden {
		return
	}
	lv := cullLevel{lookup: t.lookup, asOf: MaxTimestamp(t.asOf, root.LastModified)}
	if root.OnPreRender != nil {
		root.OnPreRender(root)
	}
	if root.SubRender != nil && !t.cfg.DisableSubRender {
		if t.cfg.HideSubRender {
			return
		}
		ctx := &SubRenderContext{Traverser: t, Node: root, State: netTrans}
		if !root.SubRender(ctx) {
			if root.Geom != nil {
				v.addGeomNode(lv, root, netTrans)
			}
			return
		}
	}
	if root.Geom != nil {
		v.addGeomNode(lv, root, netTrans)
	}
	Walk(root, lv, v)
}

// local returns the state accumulated from the start of lv's scope to the
// end of the current path. At the root scope it includes netTrans.
func (v *cullVisitor) local(lv cullLevel) RenderState {
	s := WRT(v.path, lv.scopeDepth, len(v.path))
	if lv.lookup.Depth() == 0 {
		return v.netTrans.Compose(s)
	}
	return s
}

// ForwardArc decides how the arc's child is classified and whether the walk
// continues below it.
func (v *cullVisitor) ForwardArc(a *Arc, lv cullLevel) (cullLevel, bool) {
	t := v.t
	cfg := &t.cfg
	v.path = append(v.path, a)
	n := a.child

	if a.Pruned() || n.Hidden {
		return lv, false
	}
	lv.asOf = MaxTimestamp(lv.asOf, MaxTimestamp(a.LastModified, n.LastModified))

	if n.OnPreRender != nil {
		n.OnPreRender(n)
	}

	instanced := n.NumParents() > 1
	geom := n.Geom != nil
	subCount := 0
	if !cfg.DisableSubRender {
		subCount = a.SubRenderCount()
	}
	direct := a.DirectRender() || (cfg.DecalsAsDirect && a.Decal())
	if direct {
		if cfg.HideDirectRender {
			return lv, false
		}
		if cfg.DisableDirectRender {
			direct = false
		}
	}
	if subCount > 0 && cfg.HideSubRender {
		return lv, false
	}

	local := v.local(lv)

	if subCount > 0 && !t.runSubRender(a, lv.lookup.ComposeTrans(local)) {
		if geom {
			v.addGeomNode(lv, n, local)
		}
		return lv, false
	}

	if direct {
		v.addDirectNode(lv, n, local)
		return lv, false
	}

	if instanced || subCount > 0 {
		base := lv.lookup.ComposeTrans(local)
		sub := lv.lookup.GetSubtree(a, base, t.now, lv.asOf)
		next := cullLevel{lookup: sub, scopeDepth: len(v.path), asOf: lv.asOf}
		if geom {
			// The scope's base already carries the local state.
			v.addGeomNode(next, n, EmptyState())
		}
		return next, true
	}

	if geom {
		v.addGeomNode(lv, n, local)
	}
	return lv, true
}

// BackwardArc pops the arc pushed by ForwardArc.
func (v *cullVisitor) BackwardArc(_ *Arc, _ cullLevel) {
	v.path[len(v.path)-1] = nil
	v.path = v.path[:len(v.path)-1]
}

// addGeomNode records n as geometry in the CullState for local placed in
// lv's scope.
func (v *cullVisitor) addGeomNode(lv cullLevel, n *Node, local RenderState) {
	if v.resolve(lv, n, local).RecordGeom(n) {
		v.t.stats.Nodes++
	}
}

// addDirectNode records n as a direct-render root in the CullState for local
// placed in lv's scope.
func (v *cullVisitor) addDirectNode(lv cullLevel, n *Node, local RenderState) {
	if v.resolve(lv, n, local).RecordDirect(n) {
		v.t.stats.Nodes++
	}
}

// resolve returns the CullState n belongs to, reusing the scope's cached
// association when it is still current.
func (v *cullVisitor) resolve(lv cullLevel, n *Node, local RenderState) *CullState {
	t := v.t
	composed := lv.lookup.ComposeTrans(local)
	cs := lv.lookup.FindNode(&t.states, n, composed, lv.asOf)
	if cs != nil {
		t.stats.CacheHits++
	} else {
		t.stats.CacheMisses++
		cs, _ = t.states.findOrCreate(composed)
		lv.lookup.RecordNode(&t.states, n, cs, t.now)
	}
	if cs.IsEmpty() {
		t.touched = append(t.touched, cs.id)
	}
	return cs
}

// runSubRender evaluates the arc's hook, then the child's. Either returning
// false stops the descent.
func (t *Traverser) runSubRender(a *Arc, rs RenderState) bool {
	ctx := &SubRenderContext{Traverser: t, Node: a.child, Arc: a, State: rs}
	if a.SubRender != nil && !a.SubRender(ctx) {
		return false
	}
	if c := a.child; c.SubRender != nil && !c.SubRender(ctx) {
		return false
	}
	return true
}
