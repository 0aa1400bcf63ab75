package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnLookupAndActiveList(t *testing.T) {
	a := NewArena()
	th := a.Spawn(KindMobj)

	got, ok := a.Lookup(th.ID())
	require.True(t, ok)
	assert.Same(t, th, got)
	assert.Len(t, a.Active(), 1)
}

func TestLookupNilHandleFails(t *testing.T) {
	a := NewArena()
	_, ok := a.Lookup(Nil)
	assert.False(t, ok)
}

// TestRemoveDeferredUntilSweep encodes the retain-then-sweep invariant: a
// removed thinker is immediately unresolvable by handle, but stays in the
// active list (and its slot stays unrecycled) until Sweep runs.
func TestRemoveDeferredUntilSweep(t *testing.T) {
	a := NewArena()
	th := a.Spawn(KindMobj)
	id := th.ID()

	a.Remove(id)
	_, ok := a.Lookup(id)
	assert.False(t, ok, "a removed thinker is no longer resolvable even before Sweep")
	assert.Len(t, a.Active(), 1, "Sweep hasn't run yet, so the slot is still in the active list")

	a.Sweep()
	assert.Len(t, a.Active(), 0)
}

func TestSpawnReusesFreedSlotWithBumpedGeneration(t *testing.T) {
	a := NewArena()
	id1 := a.Spawn(KindMobj).ID()
	a.Remove(id1)
	a.Sweep()

	id2 := a.Spawn(KindMobj).ID()

	_, ok := a.Lookup(id1)
	assert.False(t, ok, "the old handle must never alias the new occupant")
	_, ok = a.Lookup(id2)
	assert.True(t, ok)
}

// TestClearReferencesNullsBackPointersOnRemoval covers the mobj
// target/tracer/on_mobj/generator fixup §3 requires on removal of the
// thing they point to.
func TestClearReferencesNullsBackPointersOnRemoval(t *testing.T) {
	a := NewArena()
	watcher := a.Spawn(KindMobj)
	watcher.Mobj = &Mobj{}
	target := a.Spawn(KindMobj)
	target.Mobj = &Mobj{}

	watcher.Mobj.Target = target.ID()
	watcher.Mobj.Tracer = target.ID()
	watcher.Mobj.OnMobj = target.ID()
	watcher.Mobj.Generator = target.ID()

	a.Remove(target.ID())
	a.Sweep()

	assert.Equal(t, Nil, watcher.Mobj.Target)
	assert.Equal(t, Nil, watcher.Mobj.Tracer)
	assert.Equal(t, Nil, watcher.Mobj.OnMobj)
	assert.Equal(t, Nil, watcher.Mobj.Generator)
}

func TestTickSkipsStasisAndRemovedThinkers(t *testing.T) {
	a := NewArena()
	calls := 0
	a.MobjStep = func(arena *Arena, m *Mobj) { calls++ }

	th := a.Spawn(KindMobj)
	th.Mobj = &Mobj{}

	a.Tick()
	assert.Equal(t, 1, calls)

	th.Stasis = true
	a.Tick()
	assert.Equal(t, 1, calls, "a thinker in stasis must not think")

	th.Stasis = false
	a.Remove(th.ID())
	a.Tick()
	assert.Equal(t, 1, calls, "a removed thinker must not think even before Sweep")
}

func TestTickDoesNotThinkThinkersSpawnedMidPass(t *testing.T) {
	a := NewArena()
	var spawned bool
	calls := 0
	a.MobjStep = func(arena *Arena, m *Mobj) {
		calls++
		if !spawned {
			spawned = true
			child := arena.Spawn(KindMobj)
			child.Mobj = &Mobj{}
		}
	}

	first := a.Spawn(KindMobj)
	first.Mobj = &Mobj{}

	a.Tick()
	assert.Equal(t, 1, calls, "the thinker spawned mid-pass must not think until the next Tick")
	assert.Len(t, a.Active(), 2, "the spawned thinker joins the active list")
}

func TestGeneratorStepRemovalSignal(t *testing.T) {
	a := NewArena()
	a.GeneratorStep = func(arena *Arena, g *Generator) bool { return true }

	th := a.Spawn(KindGenerator)
	th.Generator = &Generator{}

	a.Tick()
	assert.Len(t, a.Active(), 1, "removal is only marked, not applied, until Sweep")
	a.Sweep()
	assert.Len(t, a.Active(), 0)
}
