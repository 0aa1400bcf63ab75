package content

import (
	"os"

	"github.com/skyjake/doomsday-core/internal/coreerr"
	"github.com/skyjake/doomsday-core/internal/debug"
)

// OpenAuxiliary loads an archive into a disjoint index namespace (§4.2,
// §4.15) rather than merging it into the primary lump index. Returns a
// handle used with AuxCheckNumForName/AuxReadLump/CloseAuxiliary.
func (s *Store) OpenAuxiliary(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, s.wrapContentErr("open_auxiliary", err)
	}
	return s.OpenAuxiliaryBytes(path, data)
}

// OpenAuxiliaryBytes is the byte-slice variant of OpenAuxiliary.
func (s *Store) OpenAuxiliaryBytes(path string, data []byte) (int, error) {
	entries, err := s.decodeArchive(path, data)
	if err != nil {
		return 0, s.wrapContentErr("open_auxiliary", err)
	}

	handle := s.nextAuxID
	s.nextAuxID++

	lumps := make([]Lump, 0, len(entries))
	for _, e := range entries {
		lumps = append(lumps, Lump{Name: e.name, Group: e.group, Archive: handle, Offset: e.offset, Size: e.size})
	}

	s.aux[handle] = &auxArchive{
		archive: Archive{Path: path, IsRuntime: true, LumpCount: len(entries), data: data},
		lumps:   lumps,
	}

	if s.log != nil {
		s.log.LogContentf(debug.LogLevelInfo, "opened auxiliary %q as handle %d (%d lumps)", path, handle, len(entries))
	}
	return handle, nil
}

// CloseAuxiliary discards an auxiliary archive. Per the §9 open-question
// resolution, auxiliary lumps are freed outright on close (not demoted to a
// lower purge tag) since nothing outside the auxiliary's own handle can
// reference them once it is gone.
func (s *Store) CloseAuxiliary(handle int) error {
	aux, ok := s.aux[handle]
	if !ok {
		return &coreerr.ContentError{Op: "close_auxiliary", Err: errNoSuchArchive(handle)}
	}
	delete(s.aux, handle)

	if s.onRemoveIndices != nil {
		indices := make([]int, len(aux.lumps))
		for i := range aux.lumps {
			indices[i] = AuxBase + handle*1_000_000 + i
		}
		s.onRemoveIndices(indices)
	}
	return nil
}

// AuxCheckNumForName scans only the given auxiliary archive's private index.
func (s *Store) AuxCheckNumForName(handle int, name string) (int, bool) {
	aux, ok := s.aux[handle]
	if !ok {
		return -1, false
	}
	n := normalizeName(name)
	for i := len(aux.lumps) - 1; i >= 0; i-- {
		if packedEqual(aux.lumps[i].Name, n) {
			return i, true
		}
	}
	return -1, false
}

// AuxReadLump reads lump i from the given auxiliary archive.
func (s *Store) AuxReadLump(handle, i int) ([]byte, error) {
	aux, ok := s.aux[handle]
	if !ok || i < 0 || i >= len(aux.lumps) {
		return nil, &coreerr.ContentError{Op: "aux_read_lump", Err: errNoSuchLump(i)}
	}
	l := aux.lumps[i]
	if int(l.Offset)+int(l.Size) > len(aux.archive.data) {
		return nil, &coreerr.ContentError{Op: "aux_read_lump", Err: errSectionRange(int(l.Offset), int(l.Size), len(aux.archive.data))}
	}
	out := make([]byte, l.Size)
	copy(out, aux.archive.data[l.Offset:l.Offset+l.Size])
	return out, nil
}
