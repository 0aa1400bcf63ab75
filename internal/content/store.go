package content

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/skyjake/doomsday-core/internal/coreerr"
	"github.com/skyjake/doomsday-core/internal/debug"
)

// Archive is one opened WAD/PK3/lmp file contributing lumps to the Store.
type Archive struct {
	Path      string
	IsIWAD    bool
	IsRuntime bool
	LumpCount int

	data []byte
}

// AuxBase offsets the index namespace of an auxiliary archive so its lump
// indices never collide with the primary store's, per §4.2.
const AuxBase = 1 << 24

// auxArchive is a side-loaded archive with its own disjoint lump index,
// opened via OpenAuxiliary. §9's open question on aux cache lifetime is
// resolved here: auxiliary lumps are freed (not merely demoted) on
// CloseAuxiliary, see Store.CloseAuxiliary.
type auxArchive struct {
	archive Archive
	lumps   []Lump
}

// Store is the content archive stack: a global, overlay-ordered lump index
// plus any number of open auxiliary archives.
type Store struct {
	archives []Archive
	lumps    []Lump

	aux       map[int]*auxArchive
	nextAuxID int

	log *debug.Logger

	// onRemoveIndices is invoked with the set of primary lump indices that
	// were excised by RemoveArchive, letting the lump cache demote/invalidate
	// its parallel entries (§4.3).
	onRemoveIndices func(indices []int)
}

// NewStore creates an empty content store.
func NewStore(log *debug.Logger) *Store {
	return &Store{
		aux: make(map[int]*auxArchive),
		log: log,
	}
}

// OnRemoveIndices registers the lump cache's invalidation hook.
func (s *Store) OnRemoveIndices(fn func(indices []int)) {
	s.onRemoveIndices = fn
}

// NumLumps returns the size of the primary lump index.
func (s *Store) NumLumps() int { return len(s.lumps) }

// Lump returns the lump at primary index i.
func (s *Store) Lump(i int) (Lump, bool) {
	if i < 0 || i >= len(s.lumps) {
		return Lump{}, false
	}
	return s.lumps[i], true
}

// AddArchive opens path from disk and merges its lumps into the store. The
// first archive added (or, failing that, the first with an .iwad extension)
// is recorded as the base content archive; at most one archive is marked
// IWAD.
func (s *Store) AddArchive(path string, allowDuplicate bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, s.wrapContentErr("add_archive", err)
	}
	return s.AddArchiveBytes(path, data, allowDuplicate)
}

// AddArchiveBytes adds an already-loaded archive image; exposed so tests and
// embedders that pack content at build time never need a real file.
func (s *Store) AddArchiveBytes(path string, data []byte, allowDuplicate bool) (bool, error) {
	if !allowDuplicate {
		for _, a := range s.archives {
			if a.Path == path {
				return false, nil
			}
		}
	}

	entries, err := s.decodeArchive(path, data)
	if err != nil {
		return false, s.wrapContentErr("add_archive", err)
	}

	archiveIdx := len(s.archives)
	hasIWAD := false
	for _, a := range s.archives {
		hasIWAD = hasIWAD || a.IsIWAD
	}
	isIWAD := !hasIWAD && (archiveIdx == 0 || strings.EqualFold(filepath.Ext(path), ".iwad"))
	s.archives = append(s.archives, Archive{
		Path:      path,
		IsIWAD:    isIWAD,
		IsRuntime: archiveIdx > 0,
		LumpCount: len(entries),
		data:      data,
	})

	s.mergeEntries(archiveIdx, entries)

	if s.log != nil {
		s.log.LogContentf(debug.LogLevelInfo, "added archive %q (%d lumps)", path, len(entries))
	}
	return true, nil
}

// mergeEntries implements the group-aware insertion policy from §4.2: lumps
// in a namespace range are merged into any existing group of the same tag
// (inserted contiguously, "shifting the index array"); lumps outside any
// range are appended; a brand-new namespace range is appended whole,
// including its own markers, only when no prior group of that tag exists.
func (s *Store) mergeEntries(archiveIdx int, entries []rawEntry) {
	i := 0
	for i < len(entries) {
		e := entries[i]
		if e.group == GroupNone {
			s.lumps = append(s.lumps, Lump{Name: e.name, Group: GroupNone, Archive: archiveIdx, Offset: e.offset, Size: e.size})
			i++
			continue
		}

		// Collect the contiguous run sharing this group tag.
		j := i
		for j < len(entries) && entries[j].group == e.group {
			j++
		}
		run := make([]Lump, 0, j-i)
		for _, re := range entries[i:j] {
			run = append(run, Lump{Name: re.name, Group: re.group, Archive: archiveIdx, Offset: re.offset, Size: re.size})
		}

		if insertAt, found := s.lastGroupEnd(e.group); found {
			// The existing group keeps its own markers: drop the incoming
			// ones and insert ahead of the existing end marker.
			inner := make([]Lump, 0, len(run))
			for _, l := range run {
				if _, isMarker := markerGroup(l.Name); !isMarker {
					inner = append(inner, l)
				}
			}
			if last := s.lumps[insertAt-1].Name; last == markerFlatsEnd || last == markerSpritesEnd {
				insertAt--
			}
			s.lumps = append(s.lumps[:insertAt], append(inner, s.lumps[insertAt:]...)...)
		} else {
			s.lumps = append(s.lumps, run...)
		}
		i = j
	}
}

// lastGroupEnd returns the index just past the last lump carrying tag in
// the current global index, for merging a newly-loaded range into it.
func (s *Store) lastGroupEnd(tag GroupTag) (int, bool) {
	last := -1
	for i, l := range s.lumps {
		if l.Group == tag {
			last = i
		}
	}
	if last < 0 {
		return 0, false
	}
	return last + 1, true
}

// RemoveArchive excises every lump belonging to path. Cached entries for the
// removed indices are demoted via the registered invalidation hook.
func (s *Store) RemoveArchive(path string) (bool, error) {
	idx := -1
	for i, a := range s.archives {
		if a.Path == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	var removed []int
	kept := s.lumps[:0]
	for i, l := range s.lumps {
		if l.Archive == idx {
			removed = append(removed, i)
			continue
		}
		kept = append(kept, l)
	}
	s.lumps = kept

	if s.onRemoveIndices != nil && len(removed) > 0 {
		s.onRemoveIndices(removed)
	}

	if s.log != nil {
		s.log.LogContentf(debug.LogLevelInfo, "removed archive %q (%d lumps)", path, len(removed))
	}
	return true, nil
}

// ScanForName performs a forward linear scan from index `from`.
func (s *Store) ScanForName(name string, from int) (int, bool) {
	n := normalizeName(name)
	for i := from; i < len(s.lumps); i++ {
		if packedEqual(s.lumps[i].Name, n) {
			return i, true
		}
	}
	return -1, false
}

// CheckNumForName performs a reverse scan so later archives shadow earlier
// ones (Testable Property 1).
func (s *Store) CheckNumForName(name string) (int, bool) {
	n := normalizeName(name)
	for i := len(s.lumps) - 1; i >= 0; i-- {
		if packedEqual(s.lumps[i].Name, n) {
			return i, true
		}
	}
	return -1, false
}

// LumpLength returns the byte length of lump i.
func (s *Store) LumpLength(i int) (int, error) {
	l, ok := s.Lump(i)
	if !ok {
		return 0, &coreerr.ContentError{Op: "lump_length", Err: errNoSuchLump(i)}
	}
	return int(l.Size), nil
}

// ReadLump returns the full bytes of lump i.
func (s *Store) ReadLump(i int) ([]byte, error) {
	l, ok := s.Lump(i)
	if !ok {
		return nil, &coreerr.ContentError{Op: "read_lump", Err: errNoSuchLump(i)}
	}
	return s.readBytes(l.Archive, l.Offset, l.Size)
}

// ReadLumpSection returns length bytes of lump i starting at offset.
func (s *Store) ReadLumpSection(i, offset, length int) ([]byte, error) {
	l, ok := s.Lump(i)
	if !ok {
		return nil, &coreerr.ContentError{Op: "read_lump_section", Err: errNoSuchLump(i)}
	}
	if offset < 0 || length < 0 || offset+length > int(l.Size) {
		return nil, &coreerr.ContentError{Op: "read_lump_section", Err: errSectionRange(offset, length, int(l.Size))}
	}
	return s.readBytes(l.Archive, l.Offset+uint32(offset), uint32(length))
}

func (s *Store) readBytes(archiveIdx int, offset, size uint32) ([]byte, error) {
	if archiveIdx < 0 || archiveIdx >= len(s.archives) {
		return nil, &coreerr.ContentError{Op: "read_bytes", Err: errNoSuchArchive(archiveIdx)}
	}
	a := s.archives[archiveIdx]
	if int(offset)+int(size) > len(a.data) {
		return nil, &coreerr.ContentError{Op: "read_bytes", Err: errSectionRange(int(offset), int(size), len(a.data))}
	}
	out := make([]byte, size)
	copy(out, a.data[offset:offset+size])
	return out, nil
}

// ArchiveCRC sums size+name bytes for every lump of the given archive. This
// is an identification checksum, not a cryptographic CRC (§4.2).
func (s *Store) ArchiveCRC(archiveIndex int) uint32 {
	var sum uint32
	for _, l := range s.lumps {
		if l.Archive != archiveIndex {
			continue
		}
		sum += l.Size
		for _, c := range []byte(l.Name) {
			sum += uint32(c)
		}
	}
	return sum
}

func (s *Store) decodeArchive(path string, data []byte) ([]rawEntry, error) {
	h, err := parseWADHeader(data)
	if err != nil {
		return nil, err
	}
	return parseWADDirectory(data, h)
}

type errNoSuchLump int

func (e errNoSuchLump) Error() string { return "no such lump index" }

type errNoSuchArchive int

func (e errNoSuchArchive) Error() string { return "no such archive index" }

type sectionRangeErr struct{ offset, length, size int }

func (e sectionRangeErr) Error() string { return "section out of range" }

func errSectionRange(offset, length, size int) error {
	return sectionRangeErr{offset, length, size}
}
