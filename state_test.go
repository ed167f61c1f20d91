package canopy

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyState(t *testing.T) {
	s := EmptyState()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, mgl32.Ident4(), s.Transform())
	assert.Equal(t, ColorWhite, s.Color())
	_, _, ok := s.Bin()
	assert.False(t, ok)
	assert.Equal(t, "{}", s.String())
}

func TestStateOfTranslate(t *testing.T) {
	s := StateOf(Translate(1, 2, 3), Translate(1, 0, 0))
	require.True(t, s.Has(AttribTransform))
	pos := s.Transform().Col(3)
	assert.InDelta(t, 2, pos[0], 1e-6)
	assert.InDelta(t, 2, pos[1], 1e-6)
	assert.InDelta(t, 3, pos[2], 1e-6)
}

func TestStateEqualityIsStructural(t *testing.T) {
	a := StateOf(Translate(1, 0, 0), ColorTransition(Color{R: 1, A: 1}))
	b := StateOf(Translate(1, 0, 0), ColorTransition(Color{R: 1, A: 1}))
	assert.Equal(t, a, b)
	assert.Equal(t, 0, a.Compare(b))

	m := map[RenderState]int{a: 1}
	assert.Equal(t, 1, m[b])
}

func TestStateComposeMatchesApply(t *testing.T) {
	ts := []Transition{
		Translate(1, 0, 0),
		ColorTransition(Color{G: 1, A: 1}),
		Scale(2, 2, 2),
		BinTransition("fixed", 3),
		TextureTransition("bricks"),
	}
	for split := 0; split <= len(ts); split++ {
		head := StateOf(ts[:split]...)
		tail := StateOf(ts[split:]...)
		assert.Equal(t, StateOf(ts...), head.Compose(tail), "split at %d", split)
	}
}

func TestStateComposeOverrides(t *testing.T) {
	a := StateOf(ColorTransition(Color{R: 1, A: 1}), BinTransition("a", 1))
	b := StateOf(ColorTransition(Color{B: 1, A: 1}))
	c := a.Compose(b)
	assert.Equal(t, Color{B: 1, A: 1}, c.Color())
	name, order, ok := c.Bin()
	assert.True(t, ok)
	assert.Equal(t, "a", name)
	assert.Equal(t, 1, order)
}

func TestStateTraversalControlIgnored(t *testing.T) {
	s := StateOf(Prune(), Decal(), DirectRender())
	assert.True(t, s.IsEmpty())
}

func TestStateTransparent(t *testing.T) {
	assert.False(t, EmptyState().Transparent())
	assert.True(t, StateOf(TransparencyTransition(TransparencyAlpha)).Transparent())
	assert.False(t, StateOf(TransparencyTransition(TransparencyNone)).Transparent())
}

func TestStateCompareTotalOrder(t *testing.T) {
	states := []RenderState{
		EmptyState(),
		StateOf(Translate(1, 0, 0)),
		StateOf(Translate(2, 0, 0)),
		StateOf(ColorTransition(Color{R: 1, A: 1})),
		StateOf(BinTransition("a", 1)),
		StateOf(BinTransition("a", 2)),
	}
	for i, a := range states {
		for j, b := range states {
			ab, ba := a.Compare(b), b.Compare(a)
			assert.Equal(t, -ab, ba, "antisymmetry %d,%d", i, j)
			if i == j {
				assert.Equal(t, 0, ab)
			} else {
				assert.NotEqual(t, 0, ab, "distinct states %d,%d compare equal", i, j)
			}
		}
	}
}
