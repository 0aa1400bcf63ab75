// Package zone implements the tagged memory allocator described in
// SPEC_FULL.md §4.1 (C1). Go's garbage collector owns the actual bytes; Zone
// layers the source engine's purge-by-tag discipline and user-back-pointer
// contract on top of plain byte slices so the content store and lump cache
// can keep relying on it.
package zone

import (
	"sync"

	"github.com/skyjake/doomsday-core/internal/coreerr"
)

// Tag is a purgeability level. Levels are ordered STATIC < MAP < LEVEL <
// CACHE; Purge(level) frees every block whose tag is >= level.
type Tag int

const (
	TagStatic Tag = iota
	TagMap
	TagLevel
	TagCache
)

func (t Tag) String() string {
	switch t {
	case TagStatic:
		return "static"
	case TagMap:
		return "map"
	case TagLevel:
		return "level"
	case TagCache:
		return "cache"
	default:
		return "unknown"
	}
}

// BlockID addresses a single Zone allocation.
type BlockID uint64

type block struct {
	tag       Tag
	data      []byte
	clearUser func()
}

// Zone is a single tagged heap. It is not safe to share a Zone across
// goroutines other than the owning sim thread (§5); the mutex here only
// guards against accidental concurrent misuse, not against the logical
// single-writer contract.
type Zone struct {
	mu     sync.Mutex
	blocks map[BlockID]*block
	nextID BlockID
}

// New creates an empty Zone.
func New() *Zone {
	return &Zone{blocks: make(map[BlockID]*block)}
}

// Alloc reserves size zero-filled bytes under tag, recording clearUser as
// the block's back-pointer invalidator. clearUser may be nil if the caller
// keeps no alias that needs to be nulled on free.
func (z *Zone) Alloc(size int, tag Tag, clearUser func()) (BlockID, []byte) {
	z.mu.Lock()
	defer z.mu.Unlock()

	id := z.nextID
	z.nextID++
	b := &block{tag: tag, data: make([]byte, size), clearUser: clearUser}
	z.blocks[id] = b
	return id, b.data
}

// Free releases a block. If the block carried a user back-pointer,
// clearUser is invoked so the alias is invalidated, matching the source
// contract that a freed block's user is written to null.
func (z *Zone) Free(id BlockID) {
	z.mu.Lock()
	b, ok := z.blocks[id]
	if ok {
		delete(z.blocks, id)
	}
	z.mu.Unlock()

	if ok && b.clearUser != nil {
		b.clearUser()
	}
}

// ChangeTag reassigns a block's purgeability level.
func (z *Zone) ChangeTag(id BlockID, tag Tag) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	b, ok := z.blocks[id]
	if !ok {
		return &coreerr.ResourceError{Op: "change_tag", Err: errUnknownBlock(id)}
	}
	b.tag = tag
	return nil
}

// ChangeUser updates the back-reference invoked on free, for callers that
// relocate their own alias to the block (e.g. a resized lump index array).
func (z *Zone) ChangeUser(id BlockID, clearUser func()) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	b, ok := z.blocks[id]
	if !ok {
		return &coreerr.ResourceError{Op: "change_user", Err: errUnknownBlock(id)}
	}
	b.clearUser = clearUser
	return nil
}

// Tag returns the current tag of a block.
func (z *Zone) Tag(id BlockID) (Tag, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	b, ok := z.blocks[id]
	if !ok {
		return 0, false
	}
	return b.tag, true
}

// Data returns the block's backing bytes, or false if it has been freed.
func (z *Zone) Data(id BlockID) ([]byte, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	b, ok := z.blocks[id]
	if !ok {
		return nil, false
	}
	return b.data, true
}

// Purge frees every block whose tag is >= level, invoking each block's
// clearUser. Used at map unload (level=TagMap) and under memory pressure
// (level=TagCache).
func (z *Zone) Purge(level Tag) int {
	z.mu.Lock()
	var freed []*block
	for id, b := range z.blocks {
		if b.tag >= level {
			freed = append(freed, b)
			delete(z.blocks, id)
		}
	}
	z.mu.Unlock()

	for _, b := range freed {
		if b.clearUser != nil {
			b.clearUser()
		}
	}
	return len(freed)
}

type errUnknownBlock BlockID

func (e errUnknownBlock) Error() string { return "unknown zone block" }
