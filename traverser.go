package canopy

import (
	"log/slog"
	"time"
)

// phase tracks where an outer frame is in the classify-then-draw protocol.
type phase uint8

const (
	phaseIdle phase = iota
	phaseEntered
	phaseTraversing
	phaseDrawing
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseEntered:
		return "entered"
	case phaseTraversing:
		return "traversing"
	case phaseDrawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// Traverser walks a scene graph once per frame, groups visible geometry by
// render state into cached CullStates, and dispatches the states to bins for
// drawing.
//
// A Traverser is not safe for concurrent use. The only supported re-entrancy
// is a sub-render hook calling Traverse during classification.
type Traverser struct {
	graph  *Graph
	cfg    Config
	device Device
	camera *Camera

	states stateRegistry
	lookup *StateLookupTree
	bins   binRegistry

	nested    int
	phase     phase
	asOf      Timestamp
	now       Timestamp
	initial   RenderState
	forceOnce bool
	frame     uint64

	// touched lists the states that received their first node this frame,
	// in encounter order.
	touched []StateID

	stats      FrameStats
	sink       StatsSink
	debug      bool
	debugTimes debugStats
}

// NewTraverser creates a traverser for g and attaches the bins named in
// cfg.Bins. Malformed directives are logged and skipped.
func NewTraverser(g *Graph, cfg Config) *Traverser {
	t := &Traverser{
		graph:  g,
		cfg:    cfg,
		states: newStateRegistry(),
		lookup: newStateLookupTree(),
		bins:   newBinRegistry(),
	}
	specs, err := ParseBinSpecs(cfg.Bins)
	logSkippedSpecs(err)
	for _, s := range specs {
		t.AttachBin(s.Name, s.Sort, s.Type)
	}
	if cfg.Debug {
		t.SetDebugMode(true)
	}
	return t
}

// Graph returns the graph the traverser reads timestamps from.
func (t *Traverser) Graph() *Graph { return t.graph }

// Config returns the traverser's configuration.
func (t *Traverser) Config() Config { return t.cfg }

// SetDevice sets the device used at draw time. A nil device classifies but
// skips drawing.
func (t *Traverser) SetDevice(d Device) { t.device = d }

// Device returns the current device, or nil.
func (t *Traverser) Device() Device { return t.device }

// SetCamera sets the camera used for back-to-front distances.
func (t *Traverser) SetCamera(c *Camera) { t.camera = c }

// Camera returns the current camera, or nil.
func (t *Traverser) Camera() *Camera { return t.camera }

// SetStatsSink sets a sink that receives FrameStats after every outer frame.
func (t *Traverser) SetStatsSink(s StatsSink) { t.sink = s }

// SetDebugMode enables invariant panics, per-frame debug logging and the
// traversed graph's Attach checks.
func (t *Traverser) SetDebugMode(enabled bool) {
	t.debug = enabled
	t.graph.SetDebugChecks(enabled)
}

// ForceFullRecompute makes the next outer frame treat every cached
// association as stale.
func (t *Traverser) ForceFullRecompute() { t.forceOnce = true }

// Frame returns the number of outer frames started so far.
func (t *Traverser) Frame() uint64 { return t.frame }

// Stats returns the statistics of the most recent outer frame.
func (t *Traverser) Stats() FrameStats { return t.stats }

// Lookup returns the root StateLookupTree.
func (t *Traverser) Lookup() *StateLookupTree { return t.lookup }

// Traversing reports whether a Traverse call is in progress.
func (t *Traverser) Traversing() bool { return t.nested > 0 }

// CullStates returns the live CullStates in handle order.
func (t *Traverser) CullStates() []*CullState {
	out := make([]*CullState, 0, t.states.live())
	t.states.each(func(cs *CullState) { out = append(out, cs) })
	return out
}

// FindCullState returns the live CullState representing rs, or nil.
func (t *Traverser) FindCullState(rs RenderState) *CullState {
	if id, ok := t.states.byState[rs]; ok {
		return t.states.get(id)
	}
	return nil
}

// Traverse classifies the graph below root and, for the outermost call,
// draws the result. initial is the state every drawn state is composed onto;
// netTrans is the accumulated state from the graph root down to root.
//
// Calls made from a sub-render hook while classifying are nested: they only
// classify, and the per-frame setup and draw run once for the outer call.
func (t *Traverser) Traverse(root *Node, initial, netTrans RenderState) {
	if root == nil {
		return
	}
	if t.phase == phaseDrawing {
		t.debugPanic("Traverse called while drawing")
		return
	}
	outer := t.nested == 0
	t.nested++
	defer func() {
		t.nested--
		if t.nested == 0 {
			t.phase = phaseIdle
		}
	}()

	var start time.Time
	if outer {
		start = time.Now()
		t.beginFrame(initial)
	}

	t.phase = phaseTraversing
	v := &cullVisitor{t: t}
	v.traverse(root, netTrans)

	if !outer {
		return
	}
	t.stats.TraverseTime = time.Since(start)
	t.debugTimes.traverseTime = t.stats.TraverseTime

	t.phase = phaseDrawing
	drawStart := time.Now()
	t.draw()
	t.stats.DrawTime = time.Since(drawStart)
	t.debugTimes.drawTime = t.stats.DrawTime

	cleanStart := time.Now()
	t.cleanOutOldStates()
	t.debugTimes.cleanTime = time.Since(cleanStart)

	t.finishFrame()
}

// beginFrame runs the once-per-outer-frame setup.
func (t *Traverser) beginFrame(initial RenderState) {
	t.phase = phaseEntered
	t.frame++
	t.asOf = AlwaysValid
	if t.cfg.ForceFullRecompute || t.forceOnce {
		t.asOf = AlwaysStale
		t.forceOnce = false
	}
	t.now = t.graph.Now()
	t.initial = initial
	t.touched = t.touched[:0]

	t.stats = FrameStats{Frame: t.frame}
	t.stats.NewStates = -t.states.created
	t.stats.EvictedStates = -t.states.evicted

	t.states.each(func(cs *CullState) { cs.ClearCurrent() })
	for _, b := range t.bins.bins {
		if b != nil {
			b.clearCurrentStates()
		}
	}
}

// context builds the bin context for this frame.
func (t *Traverser) context() *binContext {
	return &binContext{
		states:  &t.states,
		bins:    &t.bins,
		device:  t.device,
		camera:  t.camera,
		initial: t.initial,
		direct:  t.renderDirect,
	}
}

// draw distributes every non-empty CullState to its bin, then draws the
// active toplevel bins in sort order.
func (t *Traverser) draw() {
	ctx := t.context()
	for _, id := range t.touched {
		cs := t.states.get(id)
		if cs == nil || cs.IsEmpty() {
			continue
		}
		name, order, ok := cs.state.Bin()
		if !ok {
			name, order = t.cfg.defaultBin(), 0
		}
		t.resolveBin(name).recordCurrentState(ctx, cs, order)
	}

	if t.device == nil {
		if t.debug {
			panic("canopy: no graphics device at draw time")
		}
		return
	}
	t.device.BeginFrame()
	for _, b := range t.bins.toplevel() {
		if !b.Active() {
			continue
		}
		b.draw(ctx)
		t.stats.BinsDrawn++
	}
	t.device.EndFrame()
}

// resolveBin returns the toplevel bin called name, synthesizing one of the
// default type when none is attached.
func (t *Traverser) resolveBin(name string) Bin {
	if id, ok := t.bins.names[name]; ok {
		return t.bins.get(id)
	}
	sort := 0
	if def := t.GetBin(t.cfg.defaultBin()); def != nil {
		sort = def.Sort()
	}
	Logger().Warn("state references unknown bin; creating one",
		slog.String("bin", name), slog.Int("sort", sort), slog.String("type", BinNormal.String()))
	t.stats.SynthesizedBins++
	b := t.AttachBin(name, sort, BinNormal)
	for _, id := range t.binFamily(b) {
		t.bins.get(id).clearCurrentStates()
	}
	return b
}

// binFamily returns b's handle and, for groups, its children's handles.
func (t *Traverser) binFamily(b Bin) []BinID {
	ids := []BinID{b.base().id}
	if g, ok := b.(*GroupBin); ok {
		ids = append(ids, g.children...)
	}
	return ids
}

// cleanOutOldStates ages the CullStates and releases the expired ones.
func (t *Traverser) cleanOutOldStates() {
	maxEmpty := t.cfg.maxEmptyFrames()
	t.states.each(func(cs *CullState) {
		if cs.IsEmpty() {
			cs.emptyFrames++
			cs.bin = noBin
		} else {
			cs.emptyFrames = 0
		}
	})
	t.lookup.CleanOutOldNodes(&t.states, maxEmpty)

	var dead []*CullState
	t.states.each(func(cs *CullState) {
		if cs.refs <= 0 && cs.expired(maxEmpty) {
			dead = append(dead, cs)
		}
	})
	for _, cs := range dead {
		t.states.remove(cs)
	}
}

// finishFrame fills in the end-of-frame statistics and publishes them.
func (t *Traverser) finishFrame() {
	t.stats.NewStates += t.states.created
	t.stats.EvictedStates += t.states.evicted
	t.stats.LiveStates = t.states.live()
	t.stats.Subtrees = t.lookup.countSubtrees()
	t.debugLog(t.debugTimes)
	if t.sink != nil {
		t.sink.PublishFrameStats(t.stats)
	}
}

// --- Bin configuration ---

// AttachBin creates a toplevel bin and returns it. A bin already attached
// under name is detached first.
func (t *Traverser) AttachBin(name string, sort int, typ BinType) Bin {
	b := newBin(&t.bins, name, sort, typ)
	t.bins.attach(b, t.binDetached)
	return b
}

// AttachBinSpec attaches the bin described by s.
func (t *Traverser) AttachBinSpec(s BinSpec) Bin {
	return t.AttachBin(s.Name, s.Sort, s.Type)
}

// HasBin reports whether a toplevel bin called name is attached.
func (t *Traverser) HasBin(name string) bool {
	_, ok := t.bins.names[name]
	return ok
}

// GetBin returns the toplevel bin called name, or nil.
func (t *Traverser) GetBin(name string) Bin {
	id, ok := t.bins.names[name]
	if !ok {
		return nil
	}
	return t.bins.get(id)
}

// DetachBin removes the toplevel bin called name. It reports whether a bin
// was removed.
func (t *Traverser) DetachBin(name string) bool {
	id, ok := t.bins.names[name]
	if !ok {
		return false
	}
	t.bins.detach(id, t.binDetached)
	return true
}

// ClearBins detaches every bin.
func (t *Traverser) ClearBins() {
	if t.phase == phaseDrawing {
		t.debugPanic("ClearBins called while drawing")
		return
	}
	for _, id := range append([]BinID(nil), t.bins.sorted...) {
		t.bins.detach(id, t.binDetached)
	}
}

// Bins returns the toplevel bins in draw order.
func (t *Traverser) Bins() []Bin {
	return t.bins.toplevel()
}

// Children returns the child bins of a group bin in registration order, or
// nil for other bin kinds.
func (t *Traverser) Children(b Bin) []Bin {
	g, ok := b.(*GroupBin)
	if !ok {
		return nil
	}
	return g.Children(t)
}

// binDetached drops CullState references to a freed bin handle.
func (t *Traverser) binDetached(id BinID) {
	t.states.each(func(cs *CullState) {
		if cs.bin == id {
			cs.bin = noBin
		}
	})
}
