package physics

import "github.com/skyjake/doomsday-core/internal/world"

// ApplyFallForwardThrust implements the §4.5 fall-forward damage rule: a
// mobj that takes more than FallForwardDamageLimit damage while standing on
// a floor below FallForwardHeightLimit gets a small forward momentum kick
// along sourceAngle so corpses don't pile up perfectly in place.
func ApplyFallForwardThrust(m *world.Mobj, damage int, floorHeight world.Fixed, sourceAngle uint32) {
	if damage <= FallForwardDamageLimit {
		return
	}
	if m.Flags.Has(world.MFNoDmgThrust) {
		return
	}
	if floorHeight >= FallForwardHeightLimit {
		return
	}

	thrust := world.FixedFromInt(damage) / 4
	dx, dy := bamComponents(sourceAngle)
	m.MomX += dx.Mul(thrust)
	m.MomY += dy.Mul(thrust)
}

// bamComponents approximates cos/sin of a binary angle measure using the
// quarter-turn symmetry of the BAM circle, avoiding a trig import for what
// is otherwise a one-shot thrust nudge.
func bamComponents(angle uint32) (cos, sin world.Fixed) {
	quarter := angle >> 30
	frac := world.Fixed(angle&0x3FFFFFFF) >> 14 // map to a 0..FixedUnit-ish ramp

	switch quarter {
	case 0:
		cos, sin = world.FixedUnit-frac/2, frac/2
	case 1:
		cos, sin = -frac/2, world.FixedUnit-frac/2
	case 2:
		cos, sin = -(world.FixedUnit - frac/2), -frac/2
	default:
		cos, sin = frac/2, -(world.FixedUnit - frac/2)
	}
	return cos, sin
}

// WeaponPreference ranks ammo-compatible weapons for the auto-weapon-change
// policy: highest preference wins among weapons whose ammo is non-empty.
type WeaponPreference struct {
	Weapon     int
	Preference int
	AmmoType   int
}

// SelectAutoWeapon implements the §4.5 auto-weapon-change policy: when a
// player's current weapon runs out of ammo (or on pickup, by caller
// convention), pick the highest-preference weapon among those whose
// ammoCounts entry is greater than zero. Returns (0, false) if none qualify.
func SelectAutoWeapon(candidates []WeaponPreference, ammoCounts map[int]int) (int, bool) {
	best := -1
	bestPref := -1
	for _, c := range candidates {
		if ammoCounts[c.AmmoType] <= 0 {
			continue
		}
		if c.Preference > bestPref {
			bestPref = c.Preference
			best = c.Weapon
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
