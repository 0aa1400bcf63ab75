package particles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyjake/doomsday-core/internal/world"
)

func testArena() *world.Arena {
	a := world.NewArena()
	a.Sectors = []world.Sector{
		{FloorHeight: 0, CeilingHeight: world.FixedFromInt(200)},
	}
	return a
}

func TestGeneratorRemovedPastMaxAge(t *testing.T) {
	def := &Definition{MaxAge: 2, Stages: []Stage{{Tics: 10}}}
	g := New(def, 1, 0, 0, 0)
	arena := testArena()

	assert.False(t, g.Tick(arena))
	assert.False(t, g.Tick(arena))
	assert.False(t, g.Tick(arena)) // ages 0, 1 and 2 each run; the age-3 check removes it
	assert.True(t, g.Tick(arena), "generator should be removed once age exceeds MaxAge")
}

func TestUnlimitedAgeGeneratorNeverExpires(t *testing.T) {
	def := &Definition{MaxAge: -1, Stages: []Stage{{Tics: 10}}}
	g := New(def, 1, 0, 0, 0)
	arena := testArena()
	for i := 0; i < 100; i++ {
		require.False(t, g.Tick(arena))
	}
}

func TestSpawnAccumulatesAndProducesParticles(t *testing.T) {
	def := &Definition{
		MaxAge: -1,
		Stages: []Stage{{Tics: 5, Resistance: world.FixedUnit}},
		SpawnRate: world.FixedUnit * 2, // 2 per tick
	}
	g := New(def, 42, 0, 0, 0)
	arena := testArena()

	g.Tick(arena)
	assert.GreaterOrEqual(t, len(g.Particles), 2)
}

func TestParticleAdvancesStageOnExpiry(t *testing.T) {
	def := &Definition{
		MaxAge: -1,
		Stages: []Stage{
			{Tics: 1, Resistance: world.FixedUnit},
			{Tics: 5, Resistance: world.FixedUnit},
		},
	}
	g := New(def, 7, 0, 0, 0)
	p := &Particle{Stage: 0, Tics: 1}
	g.Particles = append(g.Particles, p)
	arena := testArena()

	g.stepParticles(arena)
	require.Len(t, g.Particles, 1)
	assert.Equal(t, 1, g.Particles[0].Stage)
}

func TestParticleDiesAfterFinalStage(t *testing.T) {
	def := &Definition{
		MaxAge: -1,
		Stages: []Stage{{Tics: 1, Resistance: world.FixedUnit}},
	}
	g := New(def, 7, 0, 0, 0)
	p := &Particle{Stage: 0, Tics: 1}
	g.Particles = append(g.Particles, p)
	arena := testArena()

	g.stepParticles(arena)
	assert.Empty(t, g.Particles)
}

func TestParticleBouncesOffFloor(t *testing.T) {
	def := &Definition{
		MaxAge: -1,
		Stages: []Stage{{Tics: 100, Resistance: world.FixedUnit, Gravity: world.FixedFromInt(1), Bounce: world.FixedUnit / 2}},
	}
	g := New(def, 7, 0, 0, 0)
	p := &Particle{Stage: 0, Tics: 100, Z: world.FixedFromInt(1), MomZ: -world.FixedFromInt(5)}
	g.Particles = append(g.Particles, p)
	arena := testArena()

	g.stepParticles(arena)
	assert.Equal(t, world.Fixed(0), g.Particles[0].Z)
	assert.Greater(t, int64(g.Particles[0].MomZ), int64(0))
}

func TestGeneratorStopsSpawningWhenSourceMobjGone(t *testing.T) {
	def := &Definition{MaxAge: -1, Stages: []Stage{{Tics: 10}}, Source: SourceMobj, SpawnRate: world.FixedUnit}
	g := New(def, 1, 0, 0, 0)
	g.SourceMobj = world.ThinkerID{} // nil handle: always fails lookup
	arena := testArena()

	g.Tick(arena)
	assert.Empty(t, g.Particles, "no source mobj means no spawns, but generator keeps running")
}

func TestPlaneSpawnSilentlyDropsWhenRetriesExhausted(t *testing.T) {
	def := &Definition{MaxAge: -1, Stages: []Stage{{Tics: 10}}, Source: SourcePlane, SpawnRate: world.FixedUnit}
	g := New(def, 1, 0, 0, 0)
	// No RandomSubspace/RandomPointIn wired: every attempt silently fails.
	arena := testArena()

	g.Tick(arena)
	assert.Empty(t, g.Particles)
}
