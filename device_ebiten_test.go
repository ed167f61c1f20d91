package canopy

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func newTestEbitenDevice() *EbitenDevice {
	cam := NewCamera(Rect{Width: 64, Height: 64})
	return NewEbitenDevice(ebiten.NewImage(64, 64), cam)
}

func TestEbitenDeviceBatchesByKey(t *testing.T) {
	dev := newTestEbitenDevice()
	dev.RegisterTexture("bricks", ebiten.NewImage(8, 8))
	n := &Node{Name: "q", Geom: NewQuad(ColorWhite)}

	dev.BeginFrame()
	dev.DrawGeometry(n, StateOf(Translate(-1, 0, 0)))
	dev.DrawGeometry(n, StateOf(Translate(1, 0, 0)))
	dev.DrawGeometry(n, StateOf(TextureTransition("bricks")))
	dev.DrawGeometry(n, StateOf(TextureTransition("bricks"), TransparencyTransition(TransparencyAdditive)))
	dev.EndFrame()

	if dev.DrawCalls() != 4 {
		t.Errorf("DrawCalls = %d, want 4", dev.DrawCalls())
	}
	if dev.Batches() != 3 {
		t.Errorf("Batches = %d, want 3", dev.Batches())
	}
}

func TestEbitenDeviceDropsNodesBehindEye(t *testing.T) {
	dev := newTestEbitenDevice()
	n := &Node{Name: "q", Geom: NewQuad(ColorWhite)}

	dev.BeginFrame()
	dev.DrawGeometry(n, StateOf(Translate(0, 0, 50)))
	dev.EndFrame()

	if dev.Batches() != 0 {
		t.Errorf("Batches = %d, want 0 for geometry behind the eye", dev.Batches())
	}
	if len(dev.verts) != 0 {
		t.Errorf("verts = %d, want 0", len(dev.verts))
	}
}

func TestEbitenDeviceSkipsWithoutGeometryOrCamera(t *testing.T) {
	dev := newTestEbitenDevice()
	dev.BeginFrame()
	dev.DrawGeometry(&Node{Name: "group"}, EmptyState())
	dev.EndFrame()
	if dev.DrawCalls() != 0 {
		t.Errorf("DrawCalls = %d, want 0 for a node without geometry", dev.DrawCalls())
	}

	dev.Camera = nil
	dev.BeginFrame()
	dev.DrawGeometry(&Node{Name: "q", Geom: NewQuad(ColorWhite)}, EmptyState())
	dev.EndFrame()
	if dev.DrawCalls() != 0 {
		t.Errorf("DrawCalls = %d, want 0 without a camera", dev.DrawCalls())
	}
}

func TestEbitenDeviceResolveTexture(t *testing.T) {
	dev := newTestEbitenDevice()
	img := ebiten.NewImage(4, 4)
	dev.RegisterTexture("known", img)

	if dev.resolveTexture("known") != img {
		t.Error("registered texture not returned")
	}
	if dev.resolveTexture("") != ensureWhitePixel() {
		t.Error("untextured state should use the white pixel")
	}
	if dev.resolveTexture("missing") != ensureMagentaImage() {
		t.Error("unknown texture should use the magenta placeholder")
	}
}

func TestEbitenDeviceWithTraverser(t *testing.T) {
	g := NewGraph()
	for i, x := range []float32{-2, 0, 2} {
		n := g.NewGeomNode(string(rune('a'+i)), NewCube(ColorWhite))
		g.Attach(g.Root(), n, Translate(x, 0, 0))
	}
	dev := newTestEbitenDevice()
	tr := NewTraverser(g, DefaultConfig())
	tr.SetCamera(dev.Camera)
	tr.SetDevice(dev)

	tr.Traverse(g.Root(), EmptyState(), EmptyState())

	if dev.DrawCalls() != 3 {
		t.Errorf("DrawCalls = %d, want 3", dev.DrawCalls())
	}
	if dev.Batches() != 1 {
		t.Errorf("Batches = %d, want 1 (same texture and blend)", dev.Batches())
	}
}

func TestTransparencyModeEbitenBlend(t *testing.T) {
	if TransparencyAdditive.EbitenBlend() != ebiten.BlendLighter {
		t.Error("additive should map to BlendLighter")
	}
	if TransparencyAlpha.EbitenBlend() != ebiten.BlendSourceOver {
		t.Error("alpha should map to BlendSourceOver")
	}
}
