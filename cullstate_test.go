package canopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCullStateCheckCurrency(t *testing.T) {
	n := &Node{Name: "n"}
	tests := []struct {
		name     string
		verified Timestamp
		asOf     Timestamp
		want     bool
	}{
		{"equal", Seq(5), Seq(5), true},
		{"newer", Seq(6), Seq(5), true},
		{"older", Seq(4), Seq(5), false},
		{"always valid query", Seq(1), AlwaysValid, true},
		{"stale sentinel", AlwaysStale, AlwaysValid, false},
		{"stale query", Seq(9), AlwaysStale, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := newCullState(0, EmptyState())
			cs.MarkVerified(n, tt.verified)
			assert.Equal(t, tt.want, cs.CheckCurrency(n, tt.asOf))
			_, kept := cs.verified[n]
			assert.Equal(t, tt.want, kept, "failed checks must evict the entry")
		})
	}
}

func TestCullStateCheckCurrencyUnknownNode(t *testing.T) {
	cs := newCullState(0, EmptyState())
	assert.False(t, cs.CheckCurrency(&Node{}, AlwaysValid))
}

func TestCullStateRecordAndClear(t *testing.T) {
	cs := newCullState(0, EmptyState())
	a, b := &Node{Name: "a"}, &Node{Name: "b"}
	assert.True(t, cs.IsEmpty())

	cs.RecordGeom(a)
	cs.RecordGeom(a)
	cs.RecordDirect(b)
	assert.False(t, cs.IsEmpty())
	assert.Equal(t, []*Node{a}, cs.GeomNodes())
	assert.Equal(t, []*Node{b}, cs.DirectNodes())
	assert.True(t, cs.HasGeom(a))
	assert.False(t, cs.HasGeom(b))
	assert.True(t, cs.HasDirect(b))

	cs.ClearCurrent()
	assert.True(t, cs.IsEmpty())
	assert.False(t, cs.HasGeom(a))
}

func TestCullStateApplyTo(t *testing.T) {
	cs := newCullState(0, StateOf(ColorTransition(Color{R: 1, A: 1})))
	initial := StateOf(Translate(0, 0, -3))
	assert.Equal(t, initial.Compose(cs.State()), cs.ApplyTo(initial))
}

func TestCullStateExpired(t *testing.T) {
	cs := newCullState(0, EmptyState())
	cs.emptyFrames = 99
	assert.False(t, cs.expired(100))
	cs.emptyFrames = 100
	assert.True(t, cs.expired(100))

	cs.bin = 3
	assert.False(t, cs.expired(100), "a state held by a bin never expires")
	cs.bin = noBin

	cs.RecordGeom(&Node{})
	assert.False(t, cs.expired(100), "a non-empty state never expires")
}

func TestStateRegistryFindOrCreate(t *testing.T) {
	reg := newStateRegistry()
	s1 := StateOf(Translate(1, 0, 0))
	s2 := StateOf(Translate(2, 0, 0))

	a, created := reg.findOrCreate(s1)
	require.True(t, created)
	again, created := reg.findOrCreate(s1)
	assert.False(t, created)
	assert.Same(t, a, again)

	b, _ := reg.findOrCreate(s2)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, reg.live())

	reg.remove(a)
	assert.Equal(t, 1, reg.live())
	assert.Nil(t, reg.get(a.ID()))

	// Freed slots are reused.
	c, created := reg.findOrCreate(StateOf(Translate(3, 0, 0)))
	assert.True(t, created)
	assert.Equal(t, a.ID(), c.ID())
	assert.Equal(t, 3, reg.created)
	assert.Equal(t, 1, reg.evicted)
}
