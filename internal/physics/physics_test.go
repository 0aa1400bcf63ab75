package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyjake/doomsday-core/internal/world"
)

func newTestArena() *world.Arena {
	a := world.NewArena()
	a.Sectors = []world.Sector{
		{Index: 0, FloorHeight: 0, CeilingHeight: world.FixedFromInt(128)},
	}
	return a
}

func TestFrictionStopsSlowMobj(t *testing.T) {
	arena := newTestArena()
	e := New(arena, 0)

	th := arena.Spawn(world.KindMobj)
	m := &world.Mobj{Thinker: th.ID(), Info: &world.MobjInfo{Height: world.FixedFromInt(56), BounceFactor: world.FixedUnit}, Sector: 0}
	m.MomX = WalkstopThreshold - 1
	th.Mobj = m

	e.applyFriction(arena, m)
	assert.Equal(t, world.Fixed(0), m.MomX)
}

func TestFrictionScalesFastMobj(t *testing.T) {
	arena := newTestArena()
	e := New(arena, 0)
	m := &world.Mobj{Info: &world.MobjInfo{}, Sector: 0}
	m.MomX = world.FixedFromInt(10)

	e.applyFriction(arena, m)
	assert.Less(t, int64(m.MomX), int64(world.FixedFromInt(10)))
	assert.Greater(t, int64(m.MomX), int64(0))
}

func TestSlidingCorpseKeepsMomentum(t *testing.T) {
	arena := newTestArena()
	e := New(arena, 0)
	m := &world.Mobj{Info: &world.MobjInfo{}, Sector: 0, Flags: world.MFCorpse}
	m.MomX = DropoffMomentumThresh + 1

	before := m.MomX
	e.applyFriction(arena, m)
	assert.Equal(t, before, m.MomX)
}

func TestBounceOffOneSidedWall(t *testing.T) {
	arena := newTestArena()
	arena.Lines = []world.Line{
		{Front: 0, Back: -1, V1X: world.FixedFromInt(10), V1Y: world.FixedFromInt(-10), V2X: world.FixedFromInt(10), V2Y: world.FixedFromInt(10)},
	}
	e := New(arena, 0)

	m := &world.Mobj{Info: &world.MobjInfo{BounceFactor: world.FixedUnit}, Sector: 0}
	m.X, m.Y = 0, 0
	m.MomX = world.FixedFromInt(20)

	e.stepXY(arena, m)
	assert.Less(t, int64(m.MomX), int64(0), "momentum should reverse after hitting the one-sided wall")
}

func TestStepZClampsToFloorAndBounces(t *testing.T) {
	arena := newTestArena()
	e := New(arena, world.FixedFromInt(1))

	m := &world.Mobj{Info: &world.MobjInfo{Height: world.FixedFromInt(56), BounceFactor: world.FixedUnit / 2}, Sector: 0}
	m.Z = world.FixedFromInt(1)
	m.MomZ = -world.FixedFromInt(5)

	e.stepZ(arena, m)
	assert.Equal(t, world.Fixed(0), m.Z)
	assert.Greater(t, int64(m.MomZ), int64(0), "momz should reverse on floor impact")
}

func TestFallForwardThrustAppliesAboveDamageLimit(t *testing.T) {
	m := &world.Mobj{}
	ApplyFallForwardThrust(m, FallForwardDamageLimit+10, 0, 0)
	assert.NotEqual(t, world.Fixed(0), m.MomX)
}

func TestFallForwardThrustSkippedBelowLimit(t *testing.T) {
	m := &world.Mobj{}
	ApplyFallForwardThrust(m, FallForwardDamageLimit-1, 0, 0)
	assert.Equal(t, world.Fixed(0), m.MomX)
	assert.Equal(t, world.Fixed(0), m.MomY)
}

func TestSelectAutoWeaponPicksHighestPreferenceWithAmmo(t *testing.T) {
	candidates := []WeaponPreference{
		{Weapon: 1, Preference: 1, AmmoType: 0},
		{Weapon: 2, Preference: 5, AmmoType: 1},
		{Weapon: 3, Preference: 3, AmmoType: 2},
	}
	ammo := map[int]int{0: 10, 1: 0, 2: 4}

	w, ok := SelectAutoWeapon(candidates, ammo)
	require.True(t, ok)
	assert.Equal(t, 3, w, "weapon 2 has no ammo left, so weapon 3 should win despite lower preference")
}

func TestSelectAutoWeaponNoneQualify(t *testing.T) {
	candidates := []WeaponPreference{{Weapon: 1, Preference: 1, AmmoType: 0}}
	_, ok := SelectAutoWeapon(candidates, map[int]int{0: 0})
	assert.False(t, ok)
}
