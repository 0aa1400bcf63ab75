// Package content implements the WAD/PK3 content store (§4.2, §6): named
// lump archives with overlay semantics, flat/sprite namespace groups, and
// an auxiliary-archive side channel. It is grounded on the teacher's
// nitro-core-dx/internal/memory.Cartridge header-and-directory parsing
// idiom, generalized from a single ROM image to a stack of shadowing
// archives.
package content

import (
	"bytes"
	"strings"
)

// GroupTag classifies a lump by the namespace marker range it falls in.
type GroupTag int

const (
	GroupNone GroupTag = iota
	GroupFlats
	GroupSprites
)

func (g GroupTag) String() string {
	switch g {
	case GroupFlats:
		return "flats"
	case GroupSprites:
		return "sprites"
	default:
		return "none"
	}
}

// maxLumpName is the classic WAD 8-byte name field.
const maxLumpName = 8

// normalizeName upper-cases a lump name and truncates it to the classic
// 8-byte limit, the comparison form used by scan_for_name /
// check_num_for_name. Shorter names are not padded.
func normalizeName(name string) string {
	n := strings.ToUpper(name)
	if len(n) > maxLumpName {
		n = n[:maxLumpName]
	}
	return n
}

// Lump is a named byte blob inside some archive.
type Lump struct {
	Name    string
	Group   GroupTag
	Archive int // index into Store.archives, or an auxiliary handle's private index
	Offset  uint32
	Size    uint32
}

func packedEqual(a, b string) bool {
	// Packed 8-byte equality compare: both names are normalized first, so a
	// straightforward string compare reproduces the byte-for-byte semantics
	// of comparing two zero/space-padded char[8] buffers.
	return bytes.Equal([]byte(a), []byte(b))
}

const (
	markerFlatsStart   = "F_START"
	markerFlatsEnd     = "F_END"
	markerSpritesStart = "S_START"
	markerSpritesEnd   = "S_END"
)

func markerGroup(name string) (GroupTag, bool) {
	switch name {
	case markerFlatsStart, markerFlatsEnd:
		return GroupFlats, true
	case markerSpritesStart, markerSpritesEnd:
		return GroupSprites, true
	default:
		return GroupNone, false
	}
}
