package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocReturnsZeroFilledBlock(t *testing.T) {
	z := New()
	id, data := z.Alloc(8, TagStatic, nil)
	assert.Len(t, data, 8)
	for _, b := range data {
		assert.Equal(t, byte(0), b)
	}

	tag, ok := z.Tag(id)
	require.True(t, ok)
	assert.Equal(t, TagStatic, tag)
}

func TestFreeInvokesClearUser(t *testing.T) {
	z := New()
	cleared := false
	id, _ := z.Alloc(4, TagCache, func() { cleared = true })

	z.Free(id)
	assert.True(t, cleared)

	_, ok := z.Data(id)
	assert.False(t, ok, "freed block data should no longer be reachable")
}

func TestChangeTagUpdatesBlock(t *testing.T) {
	z := New()
	id, _ := z.Alloc(4, TagStatic, nil)

	require.NoError(t, z.ChangeTag(id, TagCache))
	tag, ok := z.Tag(id)
	require.True(t, ok)
	assert.Equal(t, TagCache, tag)

	err := z.ChangeTag(BlockID(9999), TagCache)
	assert.Error(t, err, "unknown block id should error")
}

func TestChangeUserRewiresBackPointer(t *testing.T) {
	z := New()
	firstCalled, secondCalled := false, false
	id, _ := z.Alloc(4, TagMap, func() { firstCalled = true })

	require.NoError(t, z.ChangeUser(id, func() { secondCalled = true }))
	z.Free(id)

	assert.False(t, firstCalled, "old back-pointer must not fire after ChangeUser")
	assert.True(t, secondCalled)
}

// TestPurgeOrdering encodes C1's purge-level invariant: Purge(level) frees
// every block whose tag is >= level (STATIC < MAP < LEVEL < CACHE) and
// leaves blocks below that level untouched.
func TestPurgeOrdering(t *testing.T) {
	z := New()
	staticID, _ := z.Alloc(1, TagStatic, nil)
	mapID, _ := z.Alloc(1, TagMap, nil)
	levelID, _ := z.Alloc(1, TagLevel, nil)
	cacheID, _ := z.Alloc(1, TagCache, nil)

	freed := z.Purge(TagLevel)
	assert.Equal(t, 2, freed, "LEVEL and CACHE tagged blocks should be freed")

	_, ok := z.Data(staticID)
	assert.True(t, ok, "STATIC survives a LEVEL purge")
	_, ok = z.Data(mapID)
	assert.True(t, ok, "MAP survives a LEVEL purge")
	_, ok = z.Data(levelID)
	assert.False(t, ok)
	_, ok = z.Data(cacheID)
	assert.False(t, ok)
}

func TestPurgeInvokesClearUserForEveryFreedBlock(t *testing.T) {
	z := New()
	var cleared []string
	z.Alloc(1, TagCache, func() { cleared = append(cleared, "a") })
	z.Alloc(1, TagCache, func() { cleared = append(cleared, "b") })

	n := z.Purge(TagCache)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"a", "b"}, cleared)
}
