package canopy

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// AttribMask records which attributes a RenderState sets.
type AttribMask uint8

const (
	AttribTransform AttribMask = 1 << iota
	AttribColor
	AttribTexture
	AttribBin
	AttribTransparency
)

// RenderState is an immutable, composable bag of render attributes. It is a
// comparable value, so it can be used directly as a map key; Compare
// provides the total order used for deterministic output.
//
// Unset attributes hold their zero value so that two states built from the
// same transitions compare equal regardless of how they were composed.
type RenderState struct {
	mask         AttribMask
	transform    mgl32.Mat4
	color        Color
	texture      string
	binName      string
	drawOrder    int
	transparency TransparencyMode
}

// EmptyState returns the identity state: no attribute set.
func EmptyState() RenderState { return RenderState{} }

// StateOf returns the state produced by applying ts in order to the empty state.
func StateOf(ts ...Transition) RenderState {
	return RenderState{}.ApplyAll(ts)
}

// Apply returns s with transition t applied on top. Traversal-control kinds
// (prune, decal, direct-render) leave the state unchanged.
func (s RenderState) Apply(t Transition) RenderState {
	switch t.Kind {
	case TransitionTransform:
		if s.mask&AttribTransform != 0 {
			s.transform = s.transform.Mul4(t.Matrix)
		} else {
			s.transform = t.Matrix
		}
		s.mask |= AttribTransform
	case TransitionColor:
		s.color = t.Color
		s.mask |= AttribColor
	case TransitionTexture:
		s.texture = t.Texture
		s.mask |= AttribTexture
	case TransitionBin:
		s.binName = t.BinName
		s.drawOrder = t.DrawOrder
		s.mask |= AttribBin
	case TransitionTransparency:
		s.transparency = t.Transparency
		s.mask |= AttribTransparency
	}
	return s
}

// ApplyAll applies ts in order.
func (s RenderState) ApplyAll(ts []Transition) RenderState {
	for i := range ts {
		s = s.Apply(ts[i])
	}
	return s
}

// Compose returns s followed by o: o's transform is multiplied on the right
// and every attribute o sets replaces the one in s.
func (s RenderState) Compose(o RenderState) RenderState {
	if o.mask == 0 {
		return s
	}
	if s.mask == 0 {
		return o
	}
	if o.mask&AttribTransform != 0 {
		if s.mask&AttribTransform != 0 {
			s.transform = s.transform.Mul4(o.transform)
		} else {
			s.transform = o.transform
		}
	}
	if o.mask&AttribColor != 0 {
		s.color = o.color
	}
	if o.mask&AttribTexture != 0 {
		s.texture = o.texture
	}
	if o.mask&AttribBin != 0 {
		s.binName = o.binName
		s.drawOrder = o.drawOrder
	}
	if o.mask&AttribTransparency != 0 {
		s.transparency = o.transparency
	}
	s.mask |= o.mask
	return s
}

// Has reports whether every attribute in m is set.
func (s RenderState) Has(m AttribMask) bool { return s.mask&m == m }

// IsEmpty reports whether no attribute is set.
func (s RenderState) IsEmpty() bool { return s.mask == 0 }

// Transform returns the net transform, or the identity when unset.
func (s RenderState) Transform() mgl32.Mat4 {
	if s.mask&AttribTransform == 0 {
		return mgl32.Ident4()
	}
	return s.transform
}

// Color returns the net color, or white when unset.
func (s RenderState) Color() Color {
	if s.mask&AttribColor == 0 {
		return ColorWhite
	}
	return s.color
}

// Texture returns the texture name, or "" when unset.
func (s RenderState) Texture() string { return s.texture }

// Bin returns the bin name and draw order assigned to the state.
func (s RenderState) Bin() (name string, drawOrder int, ok bool) {
	return s.binName, s.drawOrder, s.mask&AttribBin != 0
}

// Transparency returns the transparency mode (TransparencyNone when unset).
func (s RenderState) Transparency() TransparencyMode { return s.transparency }

// Transparent reports whether the state needs blending.
func (s RenderState) Transparent() bool { return s.transparency != TransparencyNone }

// Compare defines a total order over states: by mask, then attribute by
// attribute in declaration order.
func (s RenderState) Compare(o RenderState) int {
	if c := cmp.Compare(s.mask, o.mask); c != 0 {
		return c
	}
	for i := range s.transform {
		if c := cmp.Compare(s.transform[i], o.transform[i]); c != 0 {
			return c
		}
	}
	if c := compareColor(s.color, o.color); c != 0 {
		return c
	}
	if c := strings.Compare(s.texture, o.texture); c != 0 {
		return c
	}
	if c := strings.Compare(s.binName, o.binName); c != 0 {
		return c
	}
	if c := cmp.Compare(s.drawOrder, o.drawOrder); c != 0 {
		return c
	}
	return cmp.Compare(s.transparency, o.transparency)
}

func compareColor(a, b Color) int {
	if c := cmp.Compare(a.R, b.R); c != 0 {
		return c
	}
	if c := cmp.Compare(a.G, b.G); c != 0 {
		return c
	}
	if c := cmp.Compare(a.B, b.B); c != 0 {
		return c
	}
	return cmp.Compare(a.A, b.A)
}

func (s RenderState) String() string {
	if s.mask == 0 {
		return "{}"
	}
	var parts []string
	if s.mask&AttribTransform != 0 {
		tr := s.transform.Col(3)
		parts = append(parts, fmt.Sprintf("pos=(%.3g,%.3g,%.3g)", tr[0], tr[1], tr[2]))
	}
	if s.mask&AttribColor != 0 {
		parts = append(parts, fmt.Sprintf("color=(%.3g,%.3g,%.3g,%.3g)", s.color.R, s.color.G, s.color.B, s.color.A))
	}
	if s.mask&AttribTexture != 0 {
		parts = append(parts, "texture="+s.texture)
	}
	if s.mask&AttribBin != 0 {
		parts = append(parts, fmt.Sprintf("bin=%s:%d", s.binName, s.drawOrder))
	}
	if s.mask&AttribTransparency != 0 {
		parts = append(parts, "transparency="+s.transparency.String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}
