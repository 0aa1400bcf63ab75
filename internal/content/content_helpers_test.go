package content

import (
	"encoding/binary"
)

// testLump is one entry fed to buildTestWAD.
type testLump struct {
	Name string
	Data []byte
}

// buildTestWAD assembles a minimal in-memory PWAD image (header + lump
// bytes + directory) from a list of named lumps, in the format parsed by
// parseWADHeader/parseWADDirectory.
func buildTestWAD(t interface{ Helper() }, lumps []testLump) []byte {
	t.Helper()

	var body []byte
	type placed struct {
		name   string
		offset uint32
		size   uint32
	}
	var dir []placed

	body = append(body, make([]byte, wadHeaderSize)...)
	for _, l := range lumps {
		off := uint32(len(body))
		body = append(body, l.Data...)
		dir = append(dir, placed{name: l.Name, offset: off, size: uint32(len(l.Data))})
	}

	infoTableOff := uint32(len(body))
	for _, d := range dir {
		var entry [wadDirEntrySize]byte
		binary.LittleEndian.PutUint32(entry[0:4], d.offset)
		binary.LittleEndian.PutUint32(entry[4:8], d.size)
		copy(entry[8:16], padName(d.name))
		body = append(body, entry[:]...)
	}

	copy(body[0:4], []byte("PWAD"))
	binary.LittleEndian.PutUint32(body[4:8], uint32(len(dir)))
	binary.LittleEndian.PutUint32(body[8:12], infoTableOff)
	return body
}

func padName(name string) []byte {
	out := make([]byte, 8)
	copy(out, name)
	return out
}
