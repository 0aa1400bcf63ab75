package content

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadPath adds path to the store, dispatching on extension per §6:
//   - .wad/.iwad/.pwad: the classic directory format (AddArchive).
//   - .lmp: a single-lump file; the lump name is derived from the file base
//     name, optionally stripping a leading "<digit 1-9>/" prefix.
//   - any archive with a sibling .gwa of the same base name auto-loads it.
//
// PK3/ZIP archives are explicitly out of scope here (§3: "delegate to a
// separate opener"); the core only consumes the lump view they would
// produce, which AddArchiveBytes already accepts.
func (s *Store) LoadPath(path string, allowDuplicate bool) (bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".lmp":
		ok, err := s.addSingleLump(path, allowDuplicate)
		if err != nil || !ok {
			return ok, err
		}
	default:
		ok, err := s.AddArchive(path, allowDuplicate)
		if err != nil || !ok {
			return ok, err
		}
	}

	gwa := strings.TrimSuffix(path, filepath.Ext(path)) + ".gwa"
	if _, err := os.Stat(gwa); err == nil {
		if _, err := s.AddArchive(gwa, allowDuplicate); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Store) addSingleLump(path string, allowDuplicate bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, s.wrapContentErr("add_single_lump", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := stripDigitPrefix(path, base)

	if !allowDuplicate {
		for _, a := range s.archives {
			if a.Path == path {
				return false, nil
			}
		}
	}

	archiveIdx := len(s.archives)
	s.archives = append(s.archives, Archive{Path: path, IsRuntime: true, LumpCount: 1, data: data})
	s.lumps = append(s.lumps, Lump{Name: normalizeName(name), Group: GroupNone, Archive: archiveIdx, Offset: 0, Size: uint32(len(data))})
	return true, nil
}

// stripDigitPrefix drops a leading "N/" path component where N is a single
// digit 1-9, per §6's .lmp naming rule: "3/mymap.lmp" loads as lump
// "MYMAP", not "3". filepath.Base(path) alone would already have thrown
// the directory component away by the time the caller could inspect it,
// so this checks the path's parent directory directly rather than base.
func stripDigitPrefix(path, base string) string {
	parent := filepath.Base(filepath.Dir(path))
	if len(parent) == 1 {
		if d, err := strconv.Atoi(parent); err == nil && d >= 1 && d <= 9 {
			return base
		}
	}
	return base
}
