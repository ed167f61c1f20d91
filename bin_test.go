package canopy

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binHarness wires bins to registries and a recording device without a
// traverser.
type binHarness struct {
	states stateRegistry
	bins   binRegistry
	dev    *RecordingDevice
	ctx    *binContext
}

func newBinHarness() *binHarness {
	h := &binHarness{
		states: newStateRegistry(),
		bins:   newBinRegistry(),
		dev:    &RecordingDevice{},
	}
	h.ctx = &binContext{
		states:  &h.states,
		bins:    &h.bins,
		device:  h.dev,
		initial: EmptyState(),
	}
	h.ctx.direct = func(n *Node, rs RenderState) { h.dev.DrawGeometry(n, rs) }
	return h
}

func (h *binHarness) attach(name string, sort int, typ BinType) Bin {
	b := newBin(&h.bins, name, sort, typ)
	h.bins.attach(b, func(BinID) {})
	return b
}

// record creates a state from ts holding one geometry node called name and
// hands it to b.
func (h *binHarness) record(b Bin, name string, drawOrder int, ts ...Transition) *CullState {
	cs, _ := h.states.findOrCreate(StateOf(ts...))
	cs.RecordGeom(&Node{Name: name, Geom: NewQuad(ColorWhite)})
	b.recordCurrentState(h.ctx, cs, drawOrder)
	return cs
}

func (h *binHarness) draw(b Bin) []string {
	h.dev.BeginFrame()
	b.draw(h.ctx)
	h.dev.EndFrame()
	return h.dev.Names()
}

func TestUnsortedBinEncounterOrder(t *testing.T) {
	h := newBinHarness()
	b := h.attach("u", 0, BinUnsorted)
	for i, name := range []string{"c", "a", "b"} {
		h.record(b, name, 0, Translate(float32(i), 0, 0))
	}
	assert.Equal(t, 3, b.Len())
	if diff := cmp.Diff([]string{"c", "a", "b"}, h.draw(b)); diff != "" {
		t.Errorf("draw order (-want +got):\n%s", diff)
	}
}

func TestFixedBinDrawOrder(t *testing.T) {
	h := newBinHarness()
	b := h.attach("fixed", 0, BinFixed)
	for _, order := range []int{3, 1, 2} {
		h.record(b, fmt.Sprint(order), order, BinTransition("fixed", order))
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, h.draw(b)); diff != "" {
		t.Errorf("draw order (-want +got):\n%s", diff)
	}
}

func TestFixedBinStableTies(t *testing.T) {
	h := newBinHarness()
	b := h.attach("fixed", 0, BinFixed)
	h.record(b, "a", 2, Translate(1, 0, 0))
	h.record(b, "b", 1, Translate(2, 0, 0))
	h.record(b, "c", 2, Translate(3, 0, 0))
	h.record(b, "d", 1, Translate(4, 0, 0))
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, h.draw(b)); diff != "" {
		t.Errorf("draw order (-want +got):\n%s", diff)
	}
}

func TestFixedBinClearCurrentStates(t *testing.T) {
	h := newBinHarness()
	b := h.attach("fixed", 0, BinFixed)
	h.record(b, "a", 1, Translate(1, 0, 0))
	b.clearCurrentStates()
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, h.draw(b))
}

func TestBackToFrontBinDrawOrder(t *testing.T) {
	h := newBinHarness()
	b := h.attach("btf", 0, BinBackToFront)
	for _, d := range []float32{5, 1, 9} {
		h.record(b, fmt.Sprint(d), 0, Translate(0, 0, d))
	}
	if diff := cmp.Diff([]string{"9", "5", "1"}, h.draw(b)); diff != "" {
		t.Errorf("draw order (-want +got):\n%s", diff)
	}
}

func TestBackToFrontBinUsesCamera(t *testing.T) {
	h := newBinHarness()
	cam := NewCamera(Rect{Width: 100, Height: 100})
	h.ctx.camera = cam
	b := h.attach("btf", 0, BinBackToFront)
	// Camera at z=10 looking at the origin: larger z is nearer.
	for _, z := range []float32{5, 1, 9} {
		h.record(b, fmt.Sprint(z), 0, Translate(0, 0, z))
	}
	if diff := cmp.Diff([]string{"1", "5", "9"}, h.draw(b)); diff != "" {
		t.Errorf("draw order (-want +got):\n%s", diff)
	}
}

func TestBackToFrontChildBoundsFallback(t *testing.T) {
	g := NewGraph()
	group := g.NewNode("group")
	g.Attach(group, g.NewGeomNode("left", NewQuad(ColorWhite)), Translate(-2, 0, 4))
	g.Attach(group, g.NewGeomNode("right", NewQuad(ColorWhite)), Translate(2, 0, 4))

	c, ok := approxCenter(group)
	require.True(t, ok)
	assert.InDelta(t, 0, c[0], 1e-5)
	assert.InDelta(t, 4, c[2], 1e-5)

	_, ok = approxCenter(g.NewNode("empty"))
	assert.False(t, ok)
}

func TestBackToFrontNoBoundsSortsAtZero(t *testing.T) {
	h := newBinHarness()
	b := h.attach("btf", 0, BinBackToFront)
	cs, _ := h.states.findOrCreate(StateOf(Translate(0, 0, 3)))
	cs.RecordDirect(&Node{Name: "nobounds"})
	b.recordCurrentState(h.ctx, cs, 0)
	h.record(b, "far", 0, Translate(0, 0, 1))
	if diff := cmp.Diff([]string{"far", "nobounds"}, h.draw(b)); diff != "" {
		t.Errorf("draw order (-want +got):\n%s", diff)
	}
}

func TestNormalBinRoutesByTransparency(t *testing.T) {
	h := newBinHarness()
	b := h.attach("default", 0, BinNormal)
	g, ok := b.(*GroupBin)
	require.True(t, ok)
	require.Len(t, g.children, 2)
	opaque := h.bins.get(g.children[0])
	transparent := h.bins.get(g.children[1])
	assert.Equal(t, "default.opaque", opaque.Name())
	assert.Equal(t, "default.transparent", transparent.Name())

	h.record(b, "glass-near", 0, Translate(0, 0, 1), TransparencyTransition(TransparencyAlpha))
	h.record(b, "wall", 0, Translate(0, 0, 2))
	h.record(b, "glass-far", 0, Translate(0, 0, 8), TransparencyTransition(TransparencyAlpha))

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 1, opaque.Len())
	assert.Equal(t, 2, transparent.Len())

	want := []string{"wall", "glass-far", "glass-near"}
	if diff := cmp.Diff(want, h.draw(b)); diff != "" {
		t.Errorf("draw order (-want +got):\n%s", diff)
	}
}

func TestGroupBinSkipsInactiveChild(t *testing.T) {
	h := newBinHarness()
	b := h.attach("default", 0, BinNormal)
	g := b.(*GroupBin)
	h.bins.get(g.children[1]).SetActive(false)

	h.record(b, "wall", 0, Translate(0, 0, 2))
	h.record(b, "glass", 0, TransparencyTransition(TransparencyAlpha))
	assert.Equal(t, []string{"wall"}, h.draw(b))
}

func TestBinRecordSetsStateBin(t *testing.T) {
	h := newBinHarness()
	b := h.attach("u", 0, BinUnsorted)
	cs := h.record(b, "a", 0)
	assert.True(t, cs.HasBin())
	assert.Equal(t, b.base().id, cs.bin)
}

func TestBinRegistrySortOrder(t *testing.T) {
	h := newBinHarness()
	h.attach("c", 30, BinUnsorted)
	h.attach("a", 10, BinUnsorted)
	h.attach("b", 20, BinFixed)
	h.attach("a2", 10, BinUnsorted)

	var names []string
	for _, b := range h.bins.toplevel() {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"a", "a2", "b", "c"}, names)
}

func TestBinRegistryReattachReplaces(t *testing.T) {
	h := newBinHarness()
	old := h.attach("x", 10, BinUnsorted)
	var freed []BinID
	b := newBin(&h.bins, "x", 5, BinFixed)
	h.bins.attach(b, func(id BinID) { freed = append(freed, id) })

	assert.Equal(t, []BinID{old.base().id}, freed)
	require.Len(t, h.bins.toplevel(), 1)
	assert.Equal(t, BinFixed, h.bins.toplevel()[0].Type())
}

func TestBinRegistryDetachGroup(t *testing.T) {
	h := newBinHarness()
	b := h.attach("default", 0, BinNormal)
	var freed []BinID
	h.bins.detach(b.base().id, func(id BinID) { freed = append(freed, id) })
	assert.Len(t, freed, 3)
	assert.Empty(t, h.bins.toplevel())
	assert.Empty(t, h.bins.names)
}

func TestBinRegistryReusesFreedSlots(t *testing.T) {
	tr := NewTraverser(NewGraph(), DefaultConfig())
	size := len(tr.bins.bins)
	for i := 0; i < 10; i++ {
		tr.ClearBins()
		for _, s := range mustParseBinSpecs(t, DefaultConfig().Bins) {
			tr.AttachBinSpec(s)
		}
	}
	assert.Equal(t, size, len(tr.bins.bins))
	assert.Len(t, tr.Bins(), 4)
	assert.Empty(t, tr.bins.free)
}

func mustParseBinSpecs(t *testing.T, directives []string) []BinSpec {
	t.Helper()
	specs, err := ParseBinSpecs(directives)
	require.NoError(t, err)
	return specs
}

func TestBinWrite(t *testing.T) {
	h := newBinHarness()
	b := h.attach("fixed", 30, BinFixed)
	h.record(b, "a", 2, Translate(1, 0, 0))
	b.SetActive(false)

	var buf bytes.Buffer
	b.write(&buf, 0, h.ctx)
	out := buf.String()
	assert.Contains(t, out, `fixed bin "fixed" sort=30 (inactive)`)
	assert.Contains(t, out, "order 2")
}

func TestMergeSortStable(t *testing.T) {
	type item struct{ key, seq int }
	items := []item{{3, 0}, {1, 1}, {2, 2}, {1, 3}, {3, 4}, {2, 5}, {1, 6}}
	le := func(a, b item) bool { return a.key <= b.key }

	var buf []item
	buf = mergeSort(items, buf, le)
	want := []item{{1, 1}, {1, 3}, {1, 6}, {2, 2}, {2, 5}, {3, 0}, {3, 4}}
	assert.Equal(t, want, items)
	assert.GreaterOrEqual(t, cap(buf), len(items))
}
