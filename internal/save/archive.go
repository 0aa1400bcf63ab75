package save

import (
	"encoding/gob"

	"github.com/skyjake/doomsday-core/internal/acs"
	"github.com/skyjake/doomsday-core/internal/bias"
	"github.com/skyjake/doomsday-core/internal/particles"
	"github.com/skyjake/doomsday-core/internal/planes"
	"github.com/skyjake/doomsday-core/internal/world"
)

func init() {
	// Registered defensively the way the teacher's savestate.go registers
	// every nested state type, even though none of these are ever held in
	// an interface{} value here (each thinker record's concrete type is
	// already known from its class byte before decoding).
	gob.Register(SectorSave{})
	gob.Register(SideSave{})
	gob.Register(LineSave{})
	gob.Register(MobjSave{})
	gob.Register(particles.GeneratorSave{})
	gob.Register(planes.CeilingSave{})
	gob.Register(planes.DoorSave{})
	gob.Register(planes.FloorSave{})
	gob.Register(planes.PlatSave{})
	gob.Register(bias.FlashSave{})
	gob.Register(bias.StrobeSave{})
	gob.Register(bias.GlowSave{})
	gob.Register(acs.ScriptSave{})
}

// SectorSave is the per-sector map array entry (§4.12/§6): floor/ceiling
// heights and materials, light level, special, and tag. SpecialData (the
// active mover, if any) is not stored here — it's reconstructed by the
// thinker-record fixup pass once the mover itself has been read back.
type SectorSave struct {
	Index           int
	Tag             int
	FloorHeight     world.Fixed
	CeilingHeight   world.Fixed
	FloorMaterial   int
	CeilingMaterial int
	Light           uint8
	Special         int
	FloorIsSky      bool
	CeilingIsSky    bool
}

// SideSave is a per-side texture/material assignment, carrying the "per-
// side texture offsets and materials" data that §6 groups under its
// per-line bullet; our Side is independently indexed rather than embedded
// in Line, so it is archived as its own parallel array.
type SideSave struct {
	Index          int
	Sector         int
	TopMaterial    int
	MidMaterial    int
	BottomMaterial int
	OffsetX        world.Fixed
	OffsetY        world.Fixed
}

// LineSave is the per-line map array entry.
type LineSave struct {
	Index    int
	Tag      int
	Flags    int
	V1X, V1Y world.Fixed
	V2X, V2Y world.Fixed
	Front    int
	Back     int
	Special  int
	Args     [5]int
	Blocking bool
}

// MobjSave is one mobj's save record (§4.12): a per-mobj version byte plus
// fields, with target/tracer/on_mobj/generator/owner stored as serial ids
// resolved to live handles by the post-load fixup pass. SerialID 0 means
// "none" throughout this package, matching world.Nil's zero-value
// convention.
type MobjSave struct {
	Version  byte
	SerialID uint32

	Type             int
	X, Y, Z          world.Fixed
	MomX, MomY, MomZ world.Fixed
	Angle            uint32

	State  int
	Tics   int
	Health int
	Flags  world.MobjFlags

	Sector   int
	Subspace int

	OwnerSerial     uint32
	TargetSerial    uint32
	TracerSerial    uint32
	OnMobjSerial    uint32
	GeneratorSerial uint32
}

const mobjSaveVersion byte = 1
