package save

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyjake/doomsday-core/internal/world"
)

// buildLegacyHeaderBytes assembles a legacyHeaderVersion header by hand: the
// fixed-length fields and the "version N" tag, but with no GameIdentity
// length/bytes trailing it at all, matching a file written before that
// field existed.
func buildLegacyHeaderBytes(h Header) []byte {
	var buf bytes.Buffer
	buf.WriteByte(legacyHeaderVersion)

	var desc [descriptionLen]byte
	copy(desc[:], h.Description)
	buf.Write(desc[:])

	tag := fmt.Sprintf("version %d", legacyHeaderVersion)
	var tagBuf [16]byte
	copy(tagBuf[:], tag)
	buf.Write(tagBuf[:])

	buf.WriteByte(h.GameRules)
	buf.WriteByte(h.Episode)
	buf.WriteByte(h.Map)

	var presentBuf [2]byte
	binary.LittleEndian.PutUint16(presentBuf[:], h.PlayerPresent)
	buf.Write(presentBuf[:])

	buf.WriteByte(byte(h.MapTime >> 16))
	buf.WriteByte(byte(h.MapTime >> 8))
	buf.WriteByte(byte(h.MapTime))

	return buf.Bytes()
}

// TestReadHeaderFieldAppendsMissingGameIdentity encodes §4.12's legacy
// field-appending rule: a legacyHeaderVersion header, which never had a
// GameIdentity field on disk, reads back with GameIdentity defaulted to ""
// instead of erroring on a short read past end of stream.
func TestReadHeaderFieldAppendsMissingGameIdentity(t *testing.T) {
	raw := buildLegacyHeaderBytes(Header{
		Description:   "old save",
		GameRules:     1,
		Episode:       2,
		Map:           3,
		PlayerPresent: 0b01,
		MapTime:       999,
	})

	h, err := readHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, legacyHeaderVersion, h.EngineVersion)
	assert.Equal(t, "old save", h.Description)
	assert.Equal(t, byte(1), h.GameRules)
	assert.Equal(t, "", h.GameIdentity)
}

// TestTranslateLegacyMobjFlagsRemapsOldBits encodes the other half of
// §4.12's legacy support: a mobj record saved under version 0's bit
// layout has its MFDropped/MFCorpse bits swapped and its combined
// skull-fly bit split, matching SV_TranslateLegacyMobjFlags.
func TestTranslateLegacyMobjFlagsRemapsOldBits(t *testing.T) {
	legacyDropped := world.MobjFlags(1 << 5)
	legacyCorpse := world.MobjFlags(1 << 6)
	legacyCombinedSkull := world.MobjFlags(1 << 9)

	got := translateLegacyMobjFlags(0, legacyDropped|world.MFSolid)
	assert.True(t, got.Has(world.MFDropped))
	assert.True(t, got.Has(world.MFSolid), "untouched bits keep their position")
	assert.False(t, got.Has(world.MFCorpse), "a legacy dropped bit must not read back as corpse")

	got = translateLegacyMobjFlags(0, legacyCorpse)
	assert.True(t, got.Has(world.MFCorpse))

	got = translateLegacyMobjFlags(0, legacyCombinedSkull)
	assert.True(t, got.Has(world.MFSkullfly))
	assert.True(t, got.Has(world.MFNoDmgThrust))

	// Current-version records pass through untouched.
	assert.Equal(t, world.MFSolid, translateLegacyMobjFlags(mobjSaveVersion, world.MFSolid))
}
