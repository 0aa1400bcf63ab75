package world

// Arena owns every thinker, sector, line and side for the current map. It
// implements the retain-then-sweep discipline from SPEC_FULL.md §9/§4.4:
// Tick() marks removals, Sweep() unlinks them after the pass, and the
// backing slots are only reused on the *next* tick so cross-references
// made during the current tick never dangle.
//
// Per-kind step dispatch is registered as function values the way the
// teacher's clock.MasterClock registers CPUStep/PPUStep/APUStep — each
// owning package (physics, particles, planes, bias, acs) wires its stepper
// in once at session construction instead of Arena importing any of them.
type Arena struct {
	Sectors []Sector
	Lines   []Line
	Sides   []Side

	thinkers   []*Thinker
	generation []uint32
	free       []int

	active []int // indices into thinkers, in insertion order
	sharp  bool

	MobjStep      func(arena *Arena, m *Mobj)
	GeneratorStep func(arena *Arena, g *Generator) bool
	MoverStep     func(arena *Arena, m *PlaneMover) bool
	LightStep     func(arena *Arena, l *LightFX) bool
	ScriptStep    func(arena *Arena, s *ScriptRef) bool
}

// NewArena creates an empty arena for one map.
func NewArena() *Arena {
	return &Arena{}
}

// IsSharpTick reports whether the scheduler is currently running the
// integer game-tick boundary pass (§4.4), for components that only act on
// sharp ticks (e.g. last-angle snapshotting, fix emission).
func (a *Arena) IsSharpTick() bool { return a.sharp }

// SetSharpTick is called by the scheduler once per real tick.
func (a *Arena) SetSharpTick(v bool) { a.sharp = v }

// Spawn allocates a new thinker slot, reusing a freed slot if one exists so
// IDs stay dense, and bumps that slot's generation so old handles never
// alias the new occupant.
func (a *Arena) Spawn(kind ThinkerKind) *Thinker {
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = len(a.thinkers)
		a.thinkers = append(a.thinkers, nil)
		a.generation = append(a.generation, 0)
	}
	a.generation[idx]++

	t := &Thinker{id: ThinkerID{index: idx, generation: a.generation[idx]}, Kind: kind}
	a.thinkers[idx] = t
	a.active = append(a.active, idx)
	return t
}

// Lookup resolves a handle to its thinker, returning false if the handle is
// stale (freed, or superseded by a later occupant of the same slot).
func (a *Arena) Lookup(id ThinkerID) (*Thinker, bool) {
	if id.IsNil() || id.index < 0 || id.index >= len(a.thinkers) {
		return nil, false
	}
	t := a.thinkers[id.index]
	if t == nil || t.id.generation != id.generation || t.removed {
		return nil, false
	}
	return t, true
}

// Remove marks a thinker for removal; actual unlinking happens at the next
// Sweep, and the slot itself isn't reused until the tick after that so any
// reference captured during the current pass still resolves to "removed",
// never to a different entity (§4.4).
func (a *Arena) Remove(id ThinkerID) {
	if t, ok := a.Lookup(id); ok {
		t.removed = true
	}
}

// Tick dispatches every non-stasis thinker's per-variant think function
// once, over a snapshot of the active list taken at the start of the pass
// (§4.4 step 1). Thinkers spawned mid-pass do not think again until the
// next Tick.
func (a *Arena) Tick() {
	snapshot := append([]int(nil), a.active...)
	for _, idx := range snapshot {
		t := a.thinkers[idx]
		if t == nil || t.removed || t.Stasis {
			continue
		}
		a.step(t)
	}
}

func (a *Arena) step(t *Thinker) {
	switch t.Kind {
	case KindMobj:
		if a.MobjStep != nil && t.Mobj != nil {
			a.MobjStep(a, t.Mobj)
		}
	case KindGenerator:
		if a.GeneratorStep != nil && t.Generator != nil {
			if a.GeneratorStep(a, t.Generator) {
				t.removed = true
			}
		}
	case KindCeiling, KindDoor, KindFloor, KindPlat:
		if a.MoverStep != nil && t.Mover != nil {
			if a.MoverStep(a, t.Mover) {
				t.removed = true
			}
		}
	case KindFlash, KindStrobe, KindGlow:
		if a.LightStep != nil && t.Light != nil {
			if a.LightStep(a, t.Light) {
				t.removed = true
			}
		}
	case KindACScript:
		if a.ScriptStep != nil && t.Script != nil {
			if a.ScriptStep(a, t.Script) {
				t.removed = true
			}
		}
	}
}

// Sweep unlinks every thinker marked for removal during the last Tick. Its
// backing slot is queued for reuse, but only becomes available to Spawn on
// the call *after* this one, matching §4.4's "memory is released at the
// start of the next tick" rule.
func (a *Arena) Sweep() {
	var pendingFree []int
	kept := a.active[:0]
	for _, idx := range a.active {
		t := a.thinkers[idx]
		if t != nil && t.removed {
			a.clearReferences(t.id)
			a.thinkers[idx] = nil
			pendingFree = append(pendingFree, idx)
			continue
		}
		kept = append(kept, idx)
	}
	a.active = kept
	a.free = append(a.free, pendingFree...)
}

// clearReferences nulls every mobj back-reference (target/tracer/on_mobj/
// generator) that pointed at the thinker being removed, per §3's
// invariant that these are either null or reference a live thinker.
func (a *Arena) clearReferences(dead ThinkerID) {
	for _, idx := range a.active {
		t := a.thinkers[idx]
		if t == nil || t.Kind != KindMobj || t.Mobj == nil {
			continue
		}
		m := t.Mobj
		if m.Target == dead {
			m.Target = Nil
		}
		if m.Tracer == dead {
			m.Tracer = Nil
		}
		if m.OnMobj == dead {
			m.OnMobj = Nil
		}
		if m.Generator == dead {
			m.Generator = Nil
		}
	}
}

// Active returns a copy of the currently active thinker list, for save
// iteration and tests.
func (a *Arena) Active() []*Thinker {
	out := make([]*Thinker, 0, len(a.active))
	for _, idx := range a.active {
		if t := a.thinkers[idx]; t != nil {
			out = append(out, t)
		}
	}
	return out
}
