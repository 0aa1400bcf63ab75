package save

import "github.com/skyjake/doomsday-core/internal/world"

// legacyMobjFlagBit pairs a bit position used by a pre-mobjSaveVersion
// record with the current world.MobjFlags bit it now means, for fields
// whose meaning was renumbered when the flags word was carried over from
// the original engine's layout. Grounded on
// doomv9gamestatereader.cpp's SV_TranslateLegacyMobjFlags call, which
// remaps the vanilla id Software bit layout onto the engine's own
// renumbered ddflags before using it.
type legacyMobjFlagBit struct {
	legacy  world.MobjFlags
	current world.MobjFlags
}

// legacyMobjFlagTable maps a record's Version byte to the bit remapping
// that applies to it. Version 0 predates mobjSaveVersion's bit order:
// MFCorpse and MFDropped were swapped, and MFSkullfly/MFNoDmgThrust were
// not yet split from a single combined bit.
var legacyMobjFlagTable = map[byte][]legacyMobjFlagBit{
	0: {
		{legacy: 1 << 5, current: world.MFDropped},
		{legacy: 1 << 6, current: world.MFCorpse},
		{legacy: 1 << 9, current: world.MFSkullfly | world.MFNoDmgThrust},
	},
}

// translateLegacyMobjFlags remaps a mobj record's flags word from its own
// recorded Version to the current bit layout. Records already at
// mobjSaveVersion pass through untouched; unknown older versions fall
// back to the flags as-read rather than failing the load, since a
// best-effort restore beats refusing the whole file.
func translateLegacyMobjFlags(version byte, flags world.MobjFlags) world.MobjFlags {
	if version >= mobjSaveVersion {
		return flags
	}
	remap, ok := legacyMobjFlagTable[version]
	if !ok {
		return flags
	}

	var out world.MobjFlags
	for _, bit := range remap {
		if flags&bit.legacy != 0 {
			out |= bit.current
		}
	}
	// Bits outside the renumbered range (those unaffected by the legacy
	// layout) keep their position.
	var touched world.MobjFlags
	for _, bit := range remap {
		touched |= bit.legacy
	}
	out |= flags &^ touched
	return out
}
