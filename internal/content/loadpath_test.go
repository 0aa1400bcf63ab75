package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPathSingleLumpUsesBaseName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mymap.lmp")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	s := NewStore(nil)
	ok, err := s.LoadPath(path, false)
	require.NoError(t, err)
	require.True(t, ok)

	i, found := s.CheckNumForName("mymap")
	require.True(t, found)
	l, _ := s.Lump(i)
	assert.Equal(t, uint32(len("payload")), l.Size)
}

// TestLoadPathStripsDigitPrefix encodes §6's ".lmp" naming rule: a lump
// file loaded from a path with a single-digit directory component (1-9)
// registers under its base name alone, with the "N/" prefix dropped.
func TestLoadPathStripsDigitPrefix(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "3")
	require.NoError(t, os.Mkdir(sub, 0o755))
	path := filepath.Join(sub, "mymap.lmp")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	s := NewStore(nil)
	ok, err := s.LoadPath(path, false)
	require.NoError(t, err)
	require.True(t, ok)

	_, found := s.CheckNumForName("3")
	assert.False(t, found, "the digit prefix must not leak into the lump name")

	i, found := s.CheckNumForName("mymap")
	require.True(t, found, "stripped name should be registered")
	l, _ := s.Lump(i)
	assert.Equal(t, uint32(len("payload")), l.Size)
}

func TestLoadPathNonDigitDirectoryLeavesNameAlone(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "extra")
	require.NoError(t, os.Mkdir(sub, 0o755))
	path := filepath.Join(sub, "mymap.lmp")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	s := NewStore(nil)
	ok, err := s.LoadPath(path, false)
	require.NoError(t, err)
	require.True(t, ok)

	_, found := s.CheckNumForName("mymap")
	assert.True(t, found, "a non-digit parent directory is not a prefix and should not affect the name")
}

func TestLoadPathAutoLoadsSiblingGWA(t *testing.T) {
	dir := t.TempDir()
	wad := filepath.Join(dir, "map.wad")
	gwa := filepath.Join(dir, "map.gwa")

	wadData := buildTestWAD(t, []testLump{{Name: "MAP01", Data: []byte("map")}})
	gwaData := buildTestWAD(t, []testLump{{Name: "GL_MAP01", Data: []byte("gl")}})
	require.NoError(t, os.WriteFile(wad, wadData, 0o644))
	require.NoError(t, os.WriteFile(gwa, gwaData, 0o644))

	s := NewStore(nil)
	ok, err := s.LoadPath(wad, false)
	require.NoError(t, err)
	require.True(t, ok)

	_, found := s.CheckNumForName("MAP01")
	assert.True(t, found)
	_, found = s.CheckNumForName("GL_MAP01")
	assert.True(t, found, "sibling .gwa should auto-load alongside the .wad")
}
