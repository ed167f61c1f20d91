package canopy

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a single model-space vertex.
type Vertex struct {
	Pos   mgl32.Vec3
	U, V  float32 // texture coordinates in [0, 1]
	Color Color
}

// Geometry is an indexed triangle list.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint16

	bounds      BoundingSphere
	boundsValid bool
}

// NewGeometry creates geometry from vertices and triangle indices.
func NewGeometry(vertices []Vertex, indices []uint16) *Geometry {
	return &Geometry{Vertices: vertices, Indices: indices}
}

// InvalidateBounds forces the bounding sphere to be recomputed on next use.
// Call after mutating Vertices directly.
func (g *Geometry) InvalidateBounds() {
	g.boundsValid = false
}

// Bounds returns the model-space bounding sphere of the vertices.
func (g *Geometry) Bounds() BoundingSphere {
	if !g.boundsValid {
		g.bounds = computeBounds(g.Vertices)
		g.boundsValid = true
	}
	return g.bounds
}

// BoundingSphere is a center/radius bounding volume. A negative radius marks
// an empty volume.
type BoundingSphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Empty reports whether the volume bounds nothing.
func (b BoundingSphere) Empty() bool { return b.Radius < 0 }

// Transform returns the sphere transformed by m. The radius is scaled by the
// largest axis scale so the result still encloses the original volume.
func (b BoundingSphere) Transform(m mgl32.Mat4) BoundingSphere {
	if b.Empty() {
		return b
	}
	c := mgl32.TransformCoordinate(b.Center, m)
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	s := float32(math.Max(float64(sx), math.Max(float64(sy), float64(sz))))
	return BoundingSphere{Center: c, Radius: b.Radius * s}
}

// computeBounds returns the sphere around the AABB of verts.
func computeBounds(verts []Vertex) BoundingSphere {
	if len(verts) == 0 {
		return BoundingSphere{Radius: -1}
	}
	lo := verts[0].Pos
	hi := lo
	for i := 1; i < len(verts); i++ {
		p := verts[i].Pos
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	center := lo.Add(hi).Mul(0.5)
	return BoundingSphere{Center: center, Radius: hi.Sub(center).Len()}
}

// nodeBounds returns n's model-space bounding volume and whether it is
// usable: explicit Bounds first, then the geometry's.
func nodeBounds(n *Node) (BoundingSphere, bool) {
	if n.Bounds != nil {
		return *n.Bounds, !n.Bounds.Empty()
	}
	if n.Geom != nil {
		b := n.Geom.Bounds()
		return b, !b.Empty()
	}
	return BoundingSphere{Radius: -1}, false
}

// approxCenter returns a model-space center for n. Nodes without a usable
// volume fall back to the average center of their immediate children's
// bounds, each placed by its arc's transform. ok is false when neither is
// available.
func approxCenter(n *Node) (mgl32.Vec3, bool) {
	if b, ok := nodeBounds(n); ok {
		return b.Center, true
	}
	var sum mgl32.Vec3
	count := 0
	for _, a := range n.children {
		b, ok := nodeBounds(a.child)
		if !ok {
			continue
		}
		m := StateOf(a.transitions...).Transform()
		sum = sum.Add(mgl32.TransformCoordinate(b.Center, m))
		count++
	}
	if count == 0 {
		return mgl32.Vec3{}, false
	}
	return sum.Mul(1 / float32(count)), true
}

// NewQuad builds a unit quad in the XY plane centered on the origin.
func NewQuad(c Color) *Geometry {
	return NewGeometry([]Vertex{
		{Pos: mgl32.Vec3{-0.5, -0.5, 0}, U: 0, V: 1, Color: c},
		{Pos: mgl32.Vec3{0.5, -0.5, 0}, U: 1, V: 1, Color: c},
		{Pos: mgl32.Vec3{0.5, 0.5, 0}, U: 1, V: 0, Color: c},
		{Pos: mgl32.Vec3{-0.5, 0.5, 0}, U: 0, V: 0, Color: c},
	}, []uint16{0, 1, 2, 0, 2, 3})
}

// NewCube builds a unit cube centered on the origin.
func NewCube(c Color) *Geometry {
	verts := make([]Vertex, 0, 8)
	for i := 0; i < 8; i++ {
		x := float32(i&1) - 0.5
		y := float32(i>>1&1) - 0.5
		z := float32(i>>2&1) - 0.5
		verts = append(verts, Vertex{Pos: mgl32.Vec3{x, y, z}, U: x + 0.5, V: y + 0.5, Color: c})
	}
	inds := []uint16{
		0, 1, 3, 0, 3, 2, // -z
		4, 6, 7, 4, 7, 5, // +z
		0, 4, 5, 0, 5, 1, // -y
		2, 3, 7, 2, 7, 6, // +y
		0, 2, 6, 0, 6, 4, // -x
		1, 5, 7, 1, 7, 3, // +x
	}
	return NewGeometry(verts, inds)
}
