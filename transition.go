package canopy

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// TransitionKind identifies what a Transition changes.
type TransitionKind uint8

const (
	TransitionTransform    TransitionKind = iota // multiplies the net transform
	TransitionColor                              // replaces the net color
	TransitionTexture                            // replaces the net texture
	TransitionBin                                // assigns a bin name and draw order
	TransitionTransparency                       // replaces the transparency mode
	TransitionPrune                              // stops traversal below the arc
	TransitionDecal                              // children are decals of the node
	TransitionDirectRender                       // subtree is rendered by a direct pass
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionTransform:
		return "transform"
	case TransitionColor:
		return "color"
	case TransitionTexture:
		return "texture"
	case TransitionBin:
		return "bin"
	case TransitionTransparency:
		return "transparency"
	case TransitionPrune:
		return "prune"
	case TransitionDecal:
		return "decal"
	case TransitionDirectRender:
		return "direct"
	default:
		return fmt.Sprintf("TransitionKind(%d)", uint8(k))
	}
}

// Transition is an incremental state change carried by an arc. A single flat
// struct is used for every kind; only the fields relevant to Kind are read.
type Transition struct {
	Kind         TransitionKind
	Matrix       mgl32.Mat4
	Color        Color
	Texture      string
	BinName      string
	DrawOrder    int
	Transparency TransparencyMode
}

// TransformTransition multiplies the net transform by m.
func TransformTransition(m mgl32.Mat4) Transition {
	return Transition{Kind: TransitionTransform, Matrix: m}
}

// Translate is a TransformTransition for a translation.
func Translate(x, y, z float32) Transition {
	return TransformTransition(mgl32.Translate3D(x, y, z))
}

// Scale is a TransformTransition for a non-uniform scale.
func Scale(x, y, z float32) Transition {
	return TransformTransition(mgl32.Scale3D(x, y, z))
}

// RotateY is a TransformTransition rotating by angle radians about +Y.
func RotateY(angle float32) Transition {
	return TransformTransition(mgl32.HomogRotate3DY(angle))
}

// ColorTransition replaces the net color.
func ColorTransition(c Color) Transition {
	return Transition{Kind: TransitionColor, Color: c}
}

// TextureTransition replaces the net texture.
func TextureTransition(name string) Transition {
	return Transition{Kind: TransitionTexture, Texture: name}
}

// BinTransition assigns geometry below the arc to the named bin with the given
// draw order.
func BinTransition(name string, drawOrder int) Transition {
	return Transition{Kind: TransitionBin, BinName: name, DrawOrder: drawOrder}
}

// TransparencyTransition replaces the transparency mode.
func TransparencyTransition(mode TransparencyMode) Transition {
	return Transition{Kind: TransitionTransparency, Transparency: mode}
}

// Prune stops the cull traversal from descending through the arc.
func Prune() Transition { return Transition{Kind: TransitionPrune} }

// Decal marks the child's own children as decals of the child.
func Decal() Transition { return Transition{Kind: TransitionDecal} }

// DirectRender routes the child subtree to an immediate depth-first render
// pass instead of state-batched bins.
func DirectRender() Transition { return Transition{Kind: TransitionDirectRender} }

func (t Transition) String() string {
	switch t.Kind {
	case TransitionColor:
		return fmt.Sprintf("color(%.3g,%.3g,%.3g,%.3g)", t.Color.R, t.Color.G, t.Color.B, t.Color.A)
	case TransitionTexture:
		return fmt.Sprintf("texture(%s)", t.Texture)
	case TransitionBin:
		return fmt.Sprintf("bin(%s,%d)", t.BinName, t.DrawOrder)
	case TransitionTransparency:
		return fmt.Sprintf("transparency(%s)", t.Transparency)
	case TransitionTransform:
		tr := t.Matrix.Col(3)
		return fmt.Sprintf("transform(t=%.3g,%.3g,%.3g)", tr[0], tr[1], tr[2])
	default:
		return t.Kind.String()
	}
}
