package bias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyjake/doomsday-core/internal/world"
)

func TestUpdateAffectedKeepsTopSourcesAndDropsWeak(t *testing.T) {
	e := New()
	e.Sources = []*Source{
		{ID: 0, X: 0, Y: 0, Intensity: world.FixedFromInt(100)},
		{ID: 1, X: world.FixedFromInt(1000000), Y: 0, Intensity: world.FixedFromInt(1)}, // far + weak: dropped
		{ID: 2, X: world.FixedFromInt(10), Y: 0, Intensity: world.FixedFromInt(50)},
	}
	for _, s := range e.Sources {
		e.NoteChanged(s)
	}

	surf := &Surface{Vertices: []Vertex{{X: 0, Y: 0}}}
	e.UpdateAffected(surf)

	require.NotEmpty(t, surf.affecting)
	for _, idx := range surf.affecting {
		assert.NotEqual(t, 1, idx, "the far, weak source should fall below IgnoreLimit and be dropped")
	}
}

func TestUpdateAffectedSkipsRecomputeWhenNothingChanged(t *testing.T) {
	e := New()
	e.Sources = []*Source{{ID: 0, X: 0, Y: 0, Intensity: world.FixedFromInt(100)}}
	e.NoteChanged(e.Sources[0])

	surf := &Surface{Vertices: []Vertex{{X: 0, Y: 0}}}
	e.UpdateAffected(surf)
	firstGen := surf.lastSeenGen

	e.UpdateAffected(surf) // no NoteChanged in between
	assert.Equal(t, firstGen, surf.lastSeenGen)
}

func TestEvalPointInterpolatesTowardTarget(t *testing.T) {
	e := New()
	e.Sources = []*Source{{ID: 0, X: 0, Y: 0, Z: 0, Intensity: world.FixedUnit, Color: Color{R: world.FixedUnit}}}
	e.NoteChanged(e.Sources[0])

	surf := &Surface{Vertices: []Vertex{{X: world.FixedFromInt(10), Y: 0, Z: 0, NX: -world.FixedUnit}}}
	e.UpdateAffected(surf)

	first := e.EvalPoint(surf, 0)
	second := e.EvalPoint(surf, 0)
	assert.NotEqual(t, first, second, "output should ramp over LIGHT_SPEED ticks, not jump immediately")
}

func TestEvalPointRespectsLOS(t *testing.T) {
	e := New()
	e.Sources = []*Source{{ID: 0, X: 0, Y: 0, Intensity: world.FixedUnit, Color: Color{R: world.FixedUnit}}}
	e.NoteChanged(e.Sources[0])

	surf := &Surface{
		Vertices: []Vertex{{X: world.FixedFromInt(10), NX: -world.FixedUnit}},
		LOS:      func(px, py, pz, sx, sy, sz world.Fixed) bool { return false },
	}
	e.UpdateAffected(surf)

	out := e.EvalPoint(surf, 0)
	assert.Equal(t, Color{}, out, "a blocked LOS source should contribute nothing")
}

func TestFlashTogglesBetweenMinAndMax(t *testing.T) {
	arena := world.NewArena()
	arena.Sectors = []world.Sector{{Light: 10}}
	f := NewFlash(0, 10, 200, 1, 1, nil)

	f.Step(arena)
	assert.Equal(t, uint8(200), arena.Sectors[0].Light)
	f.Step(arena)
	assert.Equal(t, uint8(10), arena.Sectors[0].Light)
}

func TestGlowRampsUpThenDown(t *testing.T) {
	arena := world.NewArena()
	arena.Sectors = []world.Sector{{Light: 0}}
	g := NewGlow(0, 0, 10, 5)

	g.Step(arena)
	assert.Equal(t, uint8(5), arena.Sectors[0].Light)
	g.Step(arena)
	assert.Equal(t, uint8(10), arena.Sectors[0].Light)
	g.Step(arena)
	assert.Equal(t, uint8(5), arena.Sectors[0].Light, "glow should reverse direction at the max")
}
