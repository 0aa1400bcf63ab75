package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyjake/doomsday-core/internal/zone"
)

// fakeReader hands back canned lump bytes and counts reads per index so
// tests can assert the cache doesn't refetch an already-resident lump.
type fakeReader struct {
	lumps map[int][]byte
	reads map[int]int
	err   error
}

func newFakeReader(lumps map[int][]byte) *fakeReader {
	return &fakeReader{lumps: lumps, reads: make(map[int]int)}
}

func (r *fakeReader) ReadLump(i int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.reads[i]++
	return r.lumps[i], nil
}

func TestCacheLumpMaterializesOnFirstAccess(t *testing.T) {
	z := zone.New()
	src := newFakeReader(map[int][]byte{0: {1, 2, 3, 4}})
	c := New(z, src, nil)

	data, err := c.CacheLump(0, zone.TagLevel)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
	assert.Equal(t, 1, src.reads[0])

	tag, ok := c.Tag(0)
	require.True(t, ok)
	assert.Equal(t, zone.TagLevel, tag)
}

func TestCacheLumpPromotesTagWithoutRefetching(t *testing.T) {
	z := zone.New()
	src := newFakeReader(map[int][]byte{0: {9}})
	c := New(z, src, nil)

	_, err := c.CacheLump(0, zone.TagLevel)
	require.NoError(t, err)
	_, err = c.CacheLump(0, zone.TagCache)
	require.NoError(t, err)

	assert.Equal(t, 1, src.reads[0], "second access should reuse the resident block")
	tag, ok := c.Tag(0)
	require.True(t, ok)
	assert.Equal(t, zone.TagCache, tag)
}

func TestCacheLumpPropagatesSourceError(t *testing.T) {
	z := zone.New()
	src := newFakeReader(nil)
	src.err = errors.New("read failed")
	c := New(z, src, nil)

	_, err := c.CacheLump(0, zone.TagLevel)
	assert.Error(t, err)

	_, ok := c.Tag(0)
	assert.False(t, ok, "a failed fetch must not leave a valid slot behind")
}

func TestCacheLumpRejectsNegativeIndex(t *testing.T) {
	z := zone.New()
	c := New(z, newFakeReader(nil), nil)

	_, err := c.CacheLump(-1, zone.TagLevel)
	assert.Error(t, err)
}

func TestCacheLumpGrowsSlotsOnDemand(t *testing.T) {
	z := zone.New()
	src := newFakeReader(map[int][]byte{3: {7}})
	c := New(z, src, nil)

	data, err := c.CacheLump(3, zone.TagLevel)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, data)
}

func TestInvalidateDemotesWithoutFreeingAndForgetsSlot(t *testing.T) {
	z := zone.New()
	src := newFakeReader(map[int][]byte{0: {1}})
	c := New(z, src, nil)

	_, err := c.CacheLump(0, zone.TagCache)
	require.NoError(t, err)

	c.Invalidate([]int{0})
	_, ok := c.Tag(0)
	assert.False(t, ok, "invalidated slot is forgotten by the cache")

	// A later access must refetch from the source since the cache slot was
	// cleared, even though the underlying zone block was only demoted.
	_, err = c.CacheLump(0, zone.TagLevel)
	require.NoError(t, err)
	assert.Equal(t, 2, src.reads[0])
}

func TestResizePreservesValidSlots(t *testing.T) {
	z := zone.New()
	src := newFakeReader(map[int][]byte{2: {5, 6}})
	c := New(z, src, nil)

	_, err := c.CacheLump(2, zone.TagMap)
	require.NoError(t, err)

	c.Resize(10)

	tag, ok := c.Tag(2)
	require.True(t, ok, "resize must not drop an already-valid slot")
	assert.Equal(t, zone.TagMap, tag)
}

func TestResizeShrinkDropsOutOfRangeSlots(t *testing.T) {
	z := zone.New()
	src := newFakeReader(map[int][]byte{4: {1}})
	c := New(z, src, nil)

	_, err := c.CacheLump(4, zone.TagMap)
	require.NoError(t, err)

	c.Resize(2)
	_, ok := c.Tag(4)
	assert.False(t, ok, "slot beyond the shrunk array must no longer be addressable")
}
