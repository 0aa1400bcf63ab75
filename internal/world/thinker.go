// Package world holds the entity model (§3, §4.4, C4): mobjs, thinkers,
// sectors/lines/sides, and the invariants binding them. Back-references
// that the source engine keeps as raw pointers (target/tracer/on_mobj,
// sector.special_data) are represented as generation-tagged ThinkerID
// handles per SPEC_FULL.md §9, so a stale reference reads as "not found"
// rather than dereferencing freed memory.
package world

// ThinkerID addresses a thinker in an Arena. The generation field changes
// every time a slot is reused, so a handle captured before a removal can
// never alias a newer occupant of the same slot.
type ThinkerID struct {
	index      int
	generation uint32
}

// Nil is the zero ThinkerID; it never compares equal to a live handle
// because live generations start at 1.
var Nil ThinkerID

func (id ThinkerID) IsNil() bool { return id == Nil }

// ThinkerKind discriminates the tagged union of thinker variants (§3, §9:
// "tagged unions over function pointers").
type ThinkerKind int

const (
	KindMobj ThinkerKind = iota
	KindGenerator
	KindCeiling
	KindDoor
	KindFloor
	KindPlat
	KindFlash
	KindStrobe
	KindGlow
	KindACScript
)

// SaveClass is a stable identifier for save/restore (§4.12), independent of
// ThinkerKind's iota order so reordering this enum never breaks old saves.
func (k ThinkerKind) SaveClass() byte {
	switch k {
	case KindMobj:
		return 1
	case KindGenerator:
		return 2
	case KindCeiling:
		return 3
	case KindDoor:
		return 4
	case KindFloor:
		return 5
	case KindPlat:
		return 6
	case KindFlash:
		return 7
	case KindStrobe:
		return 8
	case KindGlow:
		return 9
	case KindACScript:
		return 10
	default:
		return 0
	}
}

// Thinker is any per-tick updating entity. Payload holds exactly one of the
// variant-specific structs selected by Kind.
type Thinker struct {
	id ThinkerID

	Kind    ThinkerKind
	Stasis  bool
	removed bool

	Mobj      *Mobj
	Generator *Generator
	Mover     *PlaneMover
	Light     *LightFX
	Script    *ScriptRef
}

// ID returns the thinker's stable handle.
func (t *Thinker) ID() ThinkerID { return t.id }

// Generator is the forward declaration consumed by the particles package;
// kept here (rather than imported) to avoid a world<->particles cycle,
// since particles need to look thinkers up by ThinkerID too. The particles
// package defines the full struct and this field holds it via an interface
// seam (GeneratorState, declared below) instead of a concrete type.
type Generator struct {
	State GeneratorState
}

// GeneratorState is implemented by particles.Generator.
type GeneratorState interface {
	Tick(arena *Arena) (remove bool)
}

// PlaneMover is the tagged payload for Ceiling/Door/Floor/Plat thinkers; the
// concrete state machine lives in the planes package and is referenced
// through this narrow interface to keep world free of a planes import.
type PlaneMover struct {
	SectorTag int
	State     PlaneMoverState
}

type PlaneMoverState interface {
	Step(arena *Arena) (remove bool)
}

// LightFX is the payload for Flash/Strobe/Glow light thinkers.
type LightFX struct {
	SectorTag int
	State     LightFXState
}

type LightFXState interface {
	Step(arena *Arena) (remove bool)
}

// ScriptRef is the payload for a running ACS script thinker; the bytecode
// VM state lives in the acs package.
type ScriptRef struct {
	ScriptNumber int
	State        ScriptState
}

type ScriptState interface {
	Step(arena *Arena) (remove bool)
}
