package canopy

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// Bin receives classified CullStates each frame and renders them in a
// bin-specific order. The set of implementations is closed: unsorted,
// fixed, back-to-front and group bins.
type Bin interface {
	// Name returns the bin's name, unique among toplevel bins.
	Name() string
	// Type returns the bin's kind.
	Type() BinType
	// Sort returns the bin's slot in the traverser's draw sequence.
	Sort() int
	// Active reports whether the bin draws. Inactive bins still classify.
	Active() bool
	// SetActive enables or disables drawing.
	SetActive(active bool)
	// Len returns the number of entries classified this frame.
	Len() int

	base() *binBase
	clearCurrentStates()
	recordCurrentState(ctx *binContext, cs *CullState, drawOrder int)
	draw(ctx *binContext)
	write(w io.Writer, indent int, ctx *binContext)
}

// binBase holds the fields shared by every bin kind.
type binBase struct {
	id     BinID
	name   string
	typ    BinType
	sort   int
	active bool
	// parent is the owning group, noBin for toplevel bins.
	parent BinID
	// seq breaks sort-key ties by attach order.
	seq int
}

func (b *binBase) Name() string          { return b.name }
func (b *binBase) Type() BinType         { return b.typ }
func (b *binBase) Sort() int             { return b.sort }
func (b *binBase) Active() bool          { return b.active }
func (b *binBase) SetActive(active bool) { b.active = active }
func (b *binBase) base() *binBase        { return b }

func (b *binBase) header(w io.Writer, indent int) {
	fmt.Fprintf(w, "%s%s bin %q sort=%d", indentString(indent), b.typ, b.name, b.sort)
	if !b.active {
		fmt.Fprint(w, " (inactive)")
	}
	fmt.Fprintln(w)
}

// binContext is threaded through classification and drawing. It gives bins
// access to the traverser-owned registries without holding pointers to them.
type binContext struct {
	states  *stateRegistry
	bins    *binRegistry
	device  Device
	camera  *Camera
	initial RenderState
	direct  func(n *Node, rs RenderState)
}

// drawState draws every node recorded in cs.
func (ctx *binContext) drawState(cs *CullState) {
	rs := cs.ApplyTo(ctx.initial)
	for _, n := range cs.geom.list {
		ctx.device.DrawGeometry(n, rs)
	}
	for _, n := range cs.direct.list {
		ctx.direct(n, rs)
	}
}

// distance returns the camera-space distance from the camera to p.
func (ctx *binContext) distance(p mgl32.Vec3) float32 {
	if ctx.camera == nil {
		return p.Len()
	}
	return ctx.camera.Distance(p)
}

// newBin constructs an empty bin of type typ. Normal bins also register
// their two children in reg.
func newBin(reg *binRegistry, name string, sort int, typ BinType) Bin {
	base := binBase{name: name, typ: typ, sort: sort, active: true, parent: noBin}
	switch typ {
	case BinFixed:
		return &FixedBin{binBase: base}
	case BinBackToFront:
		return &BackToFrontBin{binBase: base}
	case BinNormal:
		return newNormalBin(reg, base)
	default:
		base.typ = BinUnsorted
		return &UnsortedBin{binBase: base}
	}
}

// --- Bin registry ---

// binRegistry is the arena owning every bin of one Traverser, toplevel bins
// and group children alike.
type binRegistry struct {
	bins   []Bin // indexed by BinID; nil marks a free slot
	free   []BinID
	names  map[string]BinID
	sorted []BinID // toplevel bins by (sort, seq)
	seq    int
}

func newBinRegistry() binRegistry {
	return binRegistry{names: make(map[string]BinID)}
}

func (r *binRegistry) get(id BinID) Bin {
	if id < 0 || int(id) >= len(r.bins) {
		return nil
	}
	return r.bins[id]
}

// add stores b in the arena and returns its handle.
func (r *binRegistry) add(b Bin) BinID {
	var id BinID
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
		r.bins[id] = b
	} else {
		id = BinID(len(r.bins))
		r.bins = append(r.bins, b)
	}
	base := b.base()
	base.id = id
	r.seq++
	base.seq = r.seq
	return id
}

// attach registers b as a toplevel bin, detaching any previous occupant of
// its name.
func (r *binRegistry) attach(b Bin, detached func(id BinID)) BinID {
	if old, ok := r.names[b.Name()]; ok {
		r.detach(old, detached)
	}
	id := r.add(b)
	if g, ok := b.(*GroupBin); ok {
		for _, c := range g.children {
			r.bins[c].base().parent = id
		}
	}
	r.names[b.Name()] = id
	r.insertSorted(id)
	return id
}

func (r *binRegistry) insertSorted(id BinID) {
	b := r.bins[id].base()
	i := len(r.sorted)
	for i > 0 {
		p := r.bins[r.sorted[i-1]].base()
		if p.sort < b.sort || (p.sort == b.sort && p.seq < b.seq) {
			break
		}
		i--
	}
	r.sorted = append(r.sorted, 0)
	copy(r.sorted[i+1:], r.sorted[i:])
	r.sorted[i] = id
}

// detach removes a toplevel bin and, for groups, its children. detached is
// called for every freed handle so CullStates can drop references to it.
func (r *binRegistry) detach(id BinID, detached func(id BinID)) {
	b := r.get(id)
	if b == nil {
		return
	}
	if g, ok := b.(*GroupBin); ok {
		for _, c := range g.children {
			r.release(c, detached)
		}
	}
	if r.names[b.Name()] == id {
		delete(r.names, b.Name())
	}
	for i, s := range r.sorted {
		if s == id {
			r.sorted = append(r.sorted[:i], r.sorted[i+1:]...)
			break
		}
	}
	r.release(id, detached)
}

func (r *binRegistry) release(id BinID, detached func(id BinID)) {
	r.bins[id] = nil
	r.free = append(r.free, id)
	detached(id)
}

// toplevel returns the toplevel bins in draw order.
func (r *binRegistry) toplevel() []Bin {
	out := make([]Bin, 0, len(r.sorted))
	for _, id := range r.sorted {
		out = append(out, r.bins[id])
	}
	return out
}

// --- Merge sort ---

// mergeSort sorts items in place with le as a "sorts before or equal"
// predicate, using buf as scratch space. Bottom-up merge sort: stable, and
// zero allocations once buf reaches its high-water mark. Returns the
// possibly grown buffer.
func mergeSort[T any](items, buf []T, le func(a, b T) bool) []T {
	n := len(items)
	if n <= 1 {
		return buf
	}
	if cap(buf) < n {
		buf = make([]T, n)
	}
	buf = buf[:n]

	a := items
	b := buf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi, le)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(items, buf)
	}
	return buf
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun[T any](src, dst []T, lo, mid, hi int, le func(a, b T) bool) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if le(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
