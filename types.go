package canopy

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the device builds vertices.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Mul returns the component-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// TransparencyMode selects how geometry is composited. Any mode other than
// TransparencyNone routes a state to the transparent half of a normal bin.
type TransparencyMode uint8

const (
	TransparencyNone     TransparencyMode = iota // opaque
	TransparencyAlpha                            // source-over alpha blending
	TransparencyAdditive                         // additive / lighter
	TransparencyBinary                           // alpha-tested, still depth sorted
)

func (m TransparencyMode) String() string {
	switch m {
	case TransparencyNone:
		return "none"
	case TransparencyAlpha:
		return "alpha"
	case TransparencyAdditive:
		return "additive"
	case TransparencyBinary:
		return "binary"
	default:
		return fmt.Sprintf("TransparencyMode(%d)", uint8(m))
	}
}

// EbitenBlend returns the ebiten.Blend value corresponding to this mode.
func (m TransparencyMode) EbitenBlend() ebiten.Blend {
	switch m {
	case TransparencyAdditive:
		return ebiten.BlendLighter
	default:
		return ebiten.BlendSourceOver
	}
}

// BinType identifies one of the fixed set of bin implementations.
type BinType uint8

const (
	BinUnsorted    BinType = iota // draws states in encounter order
	BinFixed                      // draws states by ascending draw order
	BinBackToFront                // draws nodes farthest-first from the camera
	BinNormal                     // routes opaque to unsorted, transparent to back-to-front
)

func (t BinType) String() string {
	switch t {
	case BinUnsorted:
		return "unsorted"
	case BinFixed:
		return "fixed"
	case BinBackToFront:
		return "back_to_front"
	case BinNormal:
		return "normal"
	default:
		return fmt.Sprintf("BinType(%d)", uint8(t))
	}
}
