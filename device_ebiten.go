package canopy

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// batchKey groups draws that can be submitted in a single DrawTriangles call.
type batchKey struct {
	texture string
	blend   TransparencyMode
}

func stateBatchKey(rs RenderState) batchKey {
	return batchKey{texture: rs.Texture(), blend: rs.Transparency()}
}

// EbitenDevice draws projected geometry into an *ebiten.Image. Consecutive
// draws sharing a texture and blend mode are merged into one DrawTriangles
// call.
type EbitenDevice struct {
	// Target receives the draws. It may be swapped between frames.
	Target *ebiten.Image
	// Camera projects world-space vertices into Target pixels.
	Camera *Camera

	textures map[string]*ebiten.Image

	verts   []ebiten.Vertex
	inds    []uint16
	key     batchKey
	pending bool

	drawCalls int
	batches   int
}

// NewEbitenDevice creates a device drawing into target through cam.
func NewEbitenDevice(target *ebiten.Image, cam *Camera) *EbitenDevice {
	return &EbitenDevice{
		Target:   target,
		Camera:   cam,
		textures: make(map[string]*ebiten.Image),
	}
}

// RegisterTexture makes img available to states naming it.
func (d *EbitenDevice) RegisterTexture(name string, img *ebiten.Image) {
	d.textures[name] = img
}

// DrawCalls returns the number of DrawGeometry calls issued last frame.
func (d *EbitenDevice) DrawCalls() int { return d.drawCalls }

// Batches returns the number of DrawTriangles submissions issued last frame.
func (d *EbitenDevice) Batches() int { return d.batches }

// BeginFrame resets per-frame counters.
func (d *EbitenDevice) BeginFrame() {
	d.verts = d.verts[:0]
	d.inds = d.inds[:0]
	d.pending = false
	d.drawCalls = 0
	d.batches = 0
}

// DrawGeometry projects n's triangles with rs and queues them.
func (d *EbitenDevice) DrawGeometry(n *Node, rs RenderState) {
	g := n.Geom
	if g == nil || len(g.Vertices) == 0 || len(g.Indices) == 0 || d.Target == nil || d.Camera == nil {
		return
	}
	d.drawCalls++
	key := stateBatchKey(rs)
	if d.pending && (key != d.key || len(d.verts)+len(g.Vertices) > math.MaxUint16) {
		d.flush()
	}
	d.key = key
	d.pending = true

	img := d.resolveTexture(key.texture)
	b := img.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())

	mvp := d.clipMatrix().Mul4(rs.Transform())
	tint := rs.Color()
	base := uint16(len(d.verts))
	for i := range g.Vertices {
		v := &g.Vertices[i]
		x, y, ok := d.Camera.project(mvp, v.Pos)
		if !ok {
			// Behind the eye: drop the whole node rather than emit folded triangles.
			d.verts = d.verts[:base]
			return
		}
		c := v.Color.Mul(tint)
		a := float32(c.A)
		d.verts = append(d.verts, ebiten.Vertex{
			DstX:   x,
			DstY:   y,
			SrcX:   float32(b.Min.X) + v.U*w,
			SrcY:   float32(b.Min.Y) + v.V*h,
			ColorR: float32(c.R) * a,
			ColorG: float32(c.G) * a,
			ColorB: float32(c.B) * a,
			ColorA: a,
		})
	}
	for _, idx := range g.Indices {
		d.inds = append(d.inds, base+idx)
	}
}

// EndFrame submits the last pending batch.
func (d *EbitenDevice) EndFrame() {
	d.flush()
}

func (d *EbitenDevice) clipMatrix() mgl32.Mat4 {
	return d.Camera.ProjectionMatrix().Mul4(d.Camera.ViewMatrix())
}

func (d *EbitenDevice) flush() {
	if !d.pending || len(d.inds) == 0 {
		d.pending = false
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.Blend = d.key.blend.EbitenBlend()
	d.Target.DrawTriangles(d.verts, d.inds, d.resolveTexture(d.key.texture), &op)
	d.batches++
	d.verts = d.verts[:0]
	d.inds = d.inds[:0]
	d.pending = false
}

// resolveTexture returns the registered texture, a white pixel for untextured
// states, or a magenta placeholder for unknown names.
func (d *EbitenDevice) resolveTexture(name string) *ebiten.Image {
	if name == "" {
		return ensureWhitePixel()
	}
	if img, ok := d.textures[name]; ok && img != nil {
		return img
	}
	return ensureMagentaImage()
}

var (
	whitePixelImage *ebiten.Image
	magentaImage    *ebiten.Image
)

// ensureWhitePixel lazily creates the 1x1 white image used for untextured geometry.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// ensureMagentaImage lazily creates the placeholder for missing textures.
func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}
