package canopy

// StateID is a handle to a CullState in a Traverser's state registry.
type StateID int32

// BinID is a handle to a Bin in a Traverser's bin registry.
type BinID int32

const noBin BinID = -1

// nodeSet is an insertion-ordered set of nodes.
type nodeSet struct {
	list []*Node
	seen map[*Node]struct{}
}

// add reports whether n was newly inserted.
func (s *nodeSet) add(n *Node) bool {
	if s.seen == nil {
		s.seen = make(map[*Node]struct{})
	}
	if _, ok := s.seen[n]; ok {
		return false
	}
	s.seen[n] = struct{}{}
	s.list = append(s.list, n)
	return true
}

func (s *nodeSet) clear() {
	clear(s.seen)
	clear(s.list)
	s.list = s.list[:0]
}

func (s *nodeSet) contains(n *Node) bool {
	_, ok := s.seen[n]
	return ok
}

// CullState caches, for one unique combined render state, the nodes currently
// visible under it and a per-node verification timestamp.
type CullState struct {
	id    StateID
	state RenderState

	verified map[*Node]Timestamp
	geom     nodeSet
	direct   nodeSet

	emptyFrames int
	bin         BinID
	// refs counts the lookup-tree mappings pointing at this state.
	refs int
}

func newCullState(id StateID, rs RenderState) *CullState {
	return &CullState{
		id:       id,
		state:    rs,
		verified: make(map[*Node]Timestamp),
		bin:      noBin,
	}
}

// ID returns the state's registry handle.
func (cs *CullState) ID() StateID { return cs.id }

// State returns the render state this CullState represents.
func (cs *CullState) State() RenderState { return cs.state }

// RecordGeom adds n to this frame's geometry nodes and reports whether it was
// not already there. A node reached along two paths that compose to the same
// state is recorded, and drawn, once.
func (cs *CullState) RecordGeom(n *Node) bool { return cs.geom.add(n) }

// RecordDirect adds n to this frame's direct-render nodes and reports whether
// it was not already there.
func (cs *CullState) RecordDirect(n *Node) bool { return cs.direct.add(n) }

// ClearCurrent empties both per-frame node sets.
func (cs *CullState) ClearCurrent() {
	cs.geom.clear()
	cs.direct.clear()
}

// CheckCurrency reports whether n's verification stamp is current as of
// asOf. A stale entry is removed immediately.
func (cs *CullState) CheckCurrency(n *Node, asOf Timestamp) bool {
	v, ok := cs.verified[n]
	if !ok {
		return false
	}
	if v.IsStale() || v.Less(asOf) {
		delete(cs.verified, n)
		return false
	}
	return true
}

// MarkVerified records that n's association with this state is current as of now.
func (cs *CullState) MarkVerified(n *Node, now Timestamp) {
	cs.verified[n] = now
}

// forget drops one lookup mapping of n and its verification stamp.
func (cs *CullState) forget(n *Node) {
	delete(cs.verified, n)
	cs.refs--
}

// ApplyTo composes the cached state onto initial for drawing.
func (cs *CullState) ApplyTo(initial RenderState) RenderState {
	return initial.Compose(cs.state)
}

// IsEmpty reports whether no node was recorded this frame.
func (cs *CullState) IsEmpty() bool {
	return len(cs.geom.list) == 0 && len(cs.direct.list) == 0
}

// GeomNodes returns this frame's geometry nodes in encounter order.
// The returned slice MUST NOT be mutated.
func (cs *CullState) GeomNodes() []*Node { return cs.geom.list }

// DirectNodes returns this frame's direct-render nodes in encounter order.
// The returned slice MUST NOT be mutated.
func (cs *CullState) DirectNodes() []*Node { return cs.direct.list }

// HasGeom reports whether n was recorded as geometry this frame.
func (cs *CullState) HasGeom(n *Node) bool { return cs.geom.contains(n) }

// HasDirect reports whether n was recorded as a direct node this frame.
func (cs *CullState) HasDirect(n *Node) bool { return cs.direct.contains(n) }

// EmptyFrames returns the number of consecutive outer frames the state has
// had no recorded nodes.
func (cs *CullState) EmptyFrames() int { return cs.emptyFrames }

// HasBin reports whether the state is currently held by a bin.
func (cs *CullState) HasBin() bool { return cs.bin != noBin }

// expired reports whether the state can be dropped by its owners.
func (cs *CullState) expired(maxEmptyFrames int) bool {
	return cs.IsEmpty() && cs.bin == noBin && cs.emptyFrames >= maxEmptyFrames
}

// stateRegistry is the arena owning every live CullState of one Traverser.
type stateRegistry struct {
	states  []*CullState // indexed by StateID; nil marks a free slot
	free    []StateID
	byState map[RenderState]StateID

	created int
	evicted int
}

func newStateRegistry() stateRegistry {
	return stateRegistry{byState: make(map[RenderState]StateID)}
}

// get returns the state for id, or nil if the slot is free.
func (r *stateRegistry) get(id StateID) *CullState {
	if id < 0 || int(id) >= len(r.states) {
		return nil
	}
	return r.states[id]
}

// findOrCreate returns the CullState for rs, creating it on first sight.
func (r *stateRegistry) findOrCreate(rs RenderState) (*CullState, bool) {
	if id, ok := r.byState[rs]; ok {
		return r.states[id], false
	}
	var id StateID
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		id = StateID(len(r.states))
		r.states = append(r.states, nil)
	}
	cs := newCullState(id, rs)
	r.states[id] = cs
	r.byState[rs] = id
	r.created++
	return cs, true
}

// remove frees the slot held by cs.
func (r *stateRegistry) remove(cs *CullState) {
	if r.get(cs.id) != cs {
		return
	}
	delete(r.byState, cs.state)
	r.states[cs.id] = nil
	r.free = append(r.free, cs.id)
	r.evicted++
}

// each calls fn for every live state in ascending handle order.
func (r *stateRegistry) each(fn func(cs *CullState)) {
	for _, cs := range r.states {
		if cs != nil {
			fn(cs)
		}
	}
}

// live returns the number of live states.
func (r *stateRegistry) live() int {
	return len(r.states) - len(r.free)
}
