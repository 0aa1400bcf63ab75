package content

import (
	"encoding/binary"
	"fmt"

	"github.com/skyjake/doomsday-core/internal/coreerr"
)

// wadHeader is the 12-byte archive header from SPEC_FULL.md §6.
type wadHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOff int32
}

const wadHeaderSize = 12
const wadDirEntrySize = 16

func parseWADHeader(data []byte) (wadHeader, error) {
	var h wadHeader
	if len(data) < wadHeaderSize {
		return h, fmt.Errorf("truncated header: %d bytes", len(data))
	}
	copy(h.Magic[:], data[0:4])
	h.NumLumps = int32(binary.LittleEndian.Uint32(data[4:8]))
	h.InfoTableOff = int32(binary.LittleEndian.Uint32(data[8:12]))
	switch string(h.Magic[:]) {
	case "IWAD", "PWAD", "JWAD":
	default:
		return h, fmt.Errorf("bad magic %q", h.Magic)
	}
	return h, nil
}

// rawEntry is one 16-byte directory entry before namespace grouping.
type rawEntry struct {
	name   string
	group  GroupTag
	offset uint32
	size   uint32
}

// parseWADDirectory walks the flat directory, tagging each entry with its
// namespace group by tracking F_START/F_END and S_START/S_END markers. Per
// §4.2, markers themselves carry the group they open so "every lump between
// F_START and F_END carries group=Flats" holds even at the boundary lumps
// (Testable Property 4).
func parseWADDirectory(data []byte, h wadHeader) ([]rawEntry, error) {
	if h.NumLumps < 0 {
		return nil, fmt.Errorf("negative lump count %d", h.NumLumps)
	}
	need := int(h.InfoTableOff) + int(h.NumLumps)*wadDirEntrySize
	if need < 0 || need > len(data) {
		return nil, fmt.Errorf("directory out of bounds: need %d bytes, have %d", need, len(data))
	}

	entries := make([]rawEntry, 0, h.NumLumps)
	cur := GroupNone
	base := int(h.InfoTableOff)
	for i := 0; i < int(h.NumLumps); i++ {
		off := base + i*wadDirEntrySize
		filepos := binary.LittleEndian.Uint32(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		rawName := data[off+8 : off+16]
		name := normalizeName(trimNulSpace(rawName))

		group := cur
		if mg, isMarker := markerGroup(name); isMarker {
			group = mg
			switch name {
			case markerFlatsStart, markerSpritesStart:
				cur = mg
			case markerFlatsEnd, markerSpritesEnd:
				cur = GroupNone
			}
		}

		entries = append(entries, rawEntry{name: name, group: group, offset: filepos, size: size})

		if int(filepos)+int(size) > len(data) {
			return nil, fmt.Errorf("lump %q data out of bounds", name)
		}
	}
	return entries, nil
}

func trimNulSpace(b []byte) string {
	n := len(b)
	for n > 0 && (b[n-1] == 0 || b[n-1] == ' ') {
		n--
	}
	return string(b[:n])
}

func (s *Store) wrapContentErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &coreerr.ContentError{Op: op, Err: err}
}
